package localization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocales(t *testing.T) *Locales {
	t.Helper()
	l, err := NewLocales([]string{"lt", "en", "en-GB", "ru"}, "lt")
	require.NoError(t, err)
	return l
}

func TestNewLocales(t *testing.T) {
	l := newTestLocales(t)
	assert.Equal(t, "lt", l.Default())
	assert.Equal(t, []string{"lt", "en", "en-GB", "ru"}, l.Supported())
	assert.True(t, l.IsSupported("EN-gb"))
	assert.False(t, l.IsSupported("de"))

	_, err := NewLocales([]string{"en"}, "lt")
	assert.Error(t, err)
	_, err = NewLocales([]string{"lt", "??"}, "lt")
	assert.Error(t, err)
}

func TestNegotiate(t *testing.T) {
	l := newTestLocales(t)

	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"empty header uses default", "", "", "lt"},
		{"exact match", "ru", "", "ru"},
		{"weighted header", "de;q=0.9, en;q=0.8", "", "en"},
		{"regional match", "en-GB,en;q=0.5", "", "en-GB"},
		{"unsupported falls back", "ja", "", "lt"},
		{"query override wins", "ru", "en", "en"},
		{"unsupported override ignored", "ru", "de", "ru"},
		{"regional override of supported base", "ru", "lt-LT", "lt"},
		{"regional override keeps region when served", "ru", "en-GB", "en-GB"},
		{"unparsable override ignored", "ru", "??", "ru"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Negotiate(tt.header, tt.query))
		})
	}
}

func TestFallbackChain(t *testing.T) {
	l := newTestLocales(t)

	assert.Equal(t, []string{"en-GB", "en", "lt"}, l.FallbackChain("en-GB"))
	assert.Equal(t, []string{"ru", "lt"}, l.FallbackChain("ru"))
	assert.Equal(t, []string{"lt"}, l.FallbackChain("lt"))
	assert.Equal(t, []string{"lt"}, l.FallbackChain("de"))
	assert.Equal(t, []string{"en", "lt"}, l.FallbackChain("en-US"))
}
