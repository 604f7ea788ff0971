package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii", "Garden Tools", "garden-tools"},
		{"diacritics", "Žalias ąžuolas", "zalias-azuolas"},
		{"polish l", "Łódź", "lodz"},
		{"punctuation runs", "  Paint & Primer -- 2in1!! ", "paint-primer-2in1"},
		{"digits", "Drill 18V", "drill-18v"},
		{"empty", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	slug := Slugify(strings.Repeat("ab ", 100))
	assert.LessOrEqual(t, len(slug), MaxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"))
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("power-tools-2"))
	for _, bad := range []string{"", "Upper", "-lead", "trail-", "double--dash", "space here", "ą"} {
		assert.Error(t, ValidateSlug(bad), bad)
	}
}
