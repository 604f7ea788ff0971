package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollection(t *testing.T) {
	c, err := NewCollection("Summer Deals", "", "")
	require.NoError(t, err)
	assert.Equal(t, CollectionTypeManual, c.Type)
	assert.Equal(t, DefaultGalleryColumns, c.GalleryColumns)
	assert.Equal(t, "summer-deals", c.Slug)

	_, err = NewCollection("X", "", "smart")
	assert.Error(t, err)
}

func TestCollectionManualMembers(t *testing.T) {
	c, _ := NewCollection("Picks", "", CollectionTypeManual)
	a, b, d := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, c.SetProducts([]uuid.UUID{b, a, b}))
	assert.Equal(t, []uuid.UUID{b, a}, c.ProductIDs())

	require.NoError(t, c.AddProduct(d))
	require.NoError(t, c.AddProduct(d))
	assert.Equal(t, []uuid.UUID{b, a, d}, c.ProductIDs())

	c.RemoveProduct(a)
	assert.Equal(t, []uuid.UUID{b, d}, c.ProductIDs())
	assert.Equal(t, 1, c.Products[1].Position)

	assert.Error(t, c.SetRules(CollectionRules{}))
}

func TestCollectionRules(t *testing.T) {
	c, _ := NewCollection("Under 50", "", CollectionTypeAutomatic)
	lo, hi := decimal.NewFromInt(60), decimal.NewFromInt(50)

	assert.Error(t, c.SetRules(CollectionRules{MinPrice: &lo, MaxPrice: &hi}))
	require.NoError(t, c.SetRules(CollectionRules{MaxPrice: &hi, FeaturedOnly: true}))
	assert.True(t, c.Rules.FeaturedOnly)

	assert.Error(t, c.SetProducts([]uuid.UUID{uuid.New()}))
	assert.Error(t, c.AddProduct(uuid.New()))
}

func TestCollectionGalleryColumns(t *testing.T) {
	c, _ := NewCollection("Grid", "", "")
	require.NoError(t, c.SetGalleryColumns(4))
	assert.Equal(t, 4, c.GalleryColumns)
	assert.Error(t, c.SetGalleryColumns(0))
	assert.Error(t, c.SetGalleryColumns(7))
}
