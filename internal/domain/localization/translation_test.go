package localization

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranslation(t *testing.T) {
	id := uuid.New()
	tr, err := NewTranslation(EntityProduct, id, "EN", "name", "Drill")
	require.NoError(t, err)
	assert.Equal(t, "en", tr.Locale)

	_, err = NewTranslation("order", id, "en", "name", "x")
	assert.Error(t, err)
	_, err = NewTranslation(EntityBrand, id, "en", "seo_title", "x")
	assert.Error(t, err)
	_, err = NewTranslation(EntityBrand, uuid.Nil, "en", "name", "x")
	assert.Error(t, err)
}

func TestPick(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	rows := []Translation{
		{EntityID: a, Locale: "lt", Field: "name", Value: "Grąžtas"},
		{EntityID: a, Locale: "en", Field: "name", Value: "Drill"},
		{EntityID: a, Locale: "en-GB", Field: "description", Value: "   "},
		{EntityID: a, Locale: "lt", Field: "description", Value: "Aprašymas"},
		{EntityID: b, Locale: "ru", Field: "name", Value: "ignored"},
	}

	got := Pick(rows, []string{"en-GB", "en", "lt"})
	assert.Equal(t, "Drill", got[a].Get("name", "base"))
	assert.Equal(t, "Aprašymas", got[a].Get("description", "base"))
	assert.Equal(t, "base", got[a].Get("slug", "base"))
	_, ok := got[b]
	assert.False(t, ok)
	assert.Equal(t, "base", got[b].Get("name", "base"))
}
