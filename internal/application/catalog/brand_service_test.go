package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBrandService_Create(t *testing.T) {
	brands := new(MockBrandRepository)
	svc := NewBrandService(brands, new(MockProductRepository), nil, nil)
	events := &MockEventPublisher{}
	svc.SetEventPublisher(events)

	brands.On("ExistsBySlug", mock.Anything, "zalias-azuolas", mock.Anything).Return(false, nil)
	brands.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Brand")).Return(nil)

	disabled := false
	resp, err := svc.Create(context.Background(), CreateBrandRequest{Name: "Žalias ąžuolas", Website: "https://oak.lt", IsEnabled: &disabled})
	require.NoError(t, err)
	assert.Equal(t, "zalias-azuolas", resp.Slug)
	assert.False(t, resp.IsEnabled)
	assert.Equal(t, "https://oak.lt", resp.Website)
	assert.NotEmpty(t, events.GetEventsByType(catalog.EventTypeBrandChanged))
}

func TestBrandService_Create_DuplicateSlug(t *testing.T) {
	brands := new(MockBrandRepository)
	svc := NewBrandService(brands, new(MockProductRepository), nil, nil)
	brands.On("ExistsBySlug", mock.Anything, "oak", mock.Anything).Return(true, nil)

	_, err := svc.Create(context.Background(), CreateBrandRequest{Name: "Oak"})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
}

func TestBrandService_Delete_InUse(t *testing.T) {
	brands := new(MockBrandRepository)
	products := new(MockProductRepository)
	svc := NewBrandService(brands, products, nil, nil)
	b, _ := catalog.NewBrand("Oak", "")

	brands.On("FindByID", mock.Anything, b.ID).Return(b, nil)
	products.On("CountByBrand", mock.Anything, b.ID).Return(int64(2), nil)

	err := svc.Delete(context.Background(), b.ID)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "BRAND_IN_USE", de.Code)
	brands.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestBrandService_Delete_RemovesLogo(t *testing.T) {
	brands := new(MockBrandRepository)
	products := new(MockProductRepository)
	store := newMemoryStore()
	svc := NewBrandService(brands, products, nil, store)
	b, _ := catalog.NewBrand("Oak", "")
	b.SetLogo("brands/oak.png")
	store.objects["brands/oak.png"] = []byte("x")

	brands.On("FindByID", mock.Anything, b.ID).Return(b, nil)
	products.On("CountByBrand", mock.Anything, b.ID).Return(int64(0), nil)
	brands.On("Delete", mock.Anything, b.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), b.ID))
	assert.Empty(t, store.objects)
}

func TestBrandService_GetBySlug(t *testing.T) {
	brands := new(MockBrandRepository)
	translator := new(MockTranslator)
	store := newMemoryStore()
	svc := NewBrandService(brands, new(MockProductRepository), translator, store)
	b, _ := catalog.NewBrand("Oak", "")
	b.SetLogo("brands/oak.png")

	brands.On("FindBySlug", mock.Anything, "azuolas").Return(nil, shared.ErrNotFound)
	translator.On("FindEntityBySlug", mock.Anything, localization.EntityBrand, "lt", "azuolas").Return(b.ID, nil)
	brands.On("FindByID", mock.Anything, b.ID).Return(b, nil)
	translator.On("Resolve", mock.Anything, localization.EntityBrand, []uuid.UUID{b.ID}, "lt").
		Return(map[uuid.UUID]localization.Values{b.ID: {"name": "Ąžuolas", "slug": "azuolas"}}, nil)

	resp, err := svc.GetBySlug(context.Background(), "azuolas", "lt")
	require.NoError(t, err)
	assert.Equal(t, "Ąžuolas", resp.Name)
	assert.Equal(t, "https://cdn.example.com/brands/oak.png", resp.LogoURL)

	b.Disable()
	_, err = svc.GetBySlug(context.Background(), "azuolas", "lt")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBrandService_List(t *testing.T) {
	brands := new(MockBrandRepository)
	svc := NewBrandService(brands, new(MockProductRepository), nil, nil)
	a, _ := catalog.NewBrand("Alpha", "")
	b, _ := catalog.NewBrand("Beta", "")

	brands.On("List", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 2 && f.OrderBy == "sort_order" && f.OrderDir == "asc"
	}), true).Return([]catalog.Brand{*a, *b}, int64(4), nil)

	page, err := svc.List(context.Background(), BrandListFilter{Page: 2, PageSize: 2}, true, "en")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, 2, page.TotalPages)
}
