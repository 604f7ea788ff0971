package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type productFixture struct {
	svc         *ProductService
	products    *MockProductRepository
	brands      *MockBrandRepository
	categories  *MockCategoryRepository
	collections *MockCollectionRepository
	stock       *MockStockLookup
	translator  *MockTranslator
	events      *MockEventPublisher
}

func newProductFixture(withTranslator bool) *productFixture {
	f := &productFixture{
		products:    new(MockProductRepository),
		brands:      new(MockBrandRepository),
		categories:  new(MockCategoryRepository),
		collections: new(MockCollectionRepository),
		stock:       new(MockStockLookup),
		events:      &MockEventPublisher{},
	}
	deps := ProductServiceDeps{
		Products:    f.products,
		Brands:      f.brands,
		Categories:  f.categories,
		Collections: f.collections,
		Stock:       f.stock,
		Currency:    "EUR",
		Clock:       func() time.Time { return testNow },
	}
	if withTranslator {
		f.translator = new(MockTranslator)
		deps.Translator = f.translator
	}
	f.svc = NewProductService(deps)
	f.svc.SetEventPublisher(f.events)
	return f
}

func publishedProduct(t *testing.T, name, price string, at time.Time) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "", "SKU-"+uuid.NewString()[:8], decimal.RequireFromString(price))
	require.NoError(t, err)
	require.NoError(t, p.Publish(at))
	p.ClearDomainEvents()
	return p
}

func stockFor(t *testing.T, productID uuid.UUID, qty int) inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(productID, 2)
	require.NoError(t, err)
	item.Quantity = qty
	return *item
}

func TestProductService_Create_Success(t *testing.T) {
	f := newProductFixture(false)
	ctx := context.Background()
	brandID := uuid.New()
	brand, _ := catalog.NewBrand("Molis", "")

	f.products.On("ExistsBySlug", mock.Anything, "clay-mug", mock.Anything).Return(false, nil)
	f.products.On("ExistsBySKU", mock.Anything, "MUG-01", mock.Anything).Return(false, nil)
	f.brands.On("FindByID", mock.Anything, brandID).Return(brand, nil)
	f.products.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	sale := decimal.RequireFromString("9.50")
	resp, err := f.svc.Create(ctx, CreateProductRequest{
		Name:      "Clay Mug",
		SKU:       "mug-01",
		Price:     decimal.RequireFromString("12"),
		SalePrice: &sale,
		BrandID:   &brandID,
	})
	require.NoError(t, err)

	assert.Equal(t, "clay-mug", resp.Slug)
	assert.Equal(t, "MUG-01", resp.SKU)
	assert.Equal(t, "draft", resp.Status)
	assert.True(t, resp.OnSale)
	assert.True(t, resp.EffectivePrice.Equal(sale))
	assert.Equal(t, "EUR", resp.Currency)
	assert.NotEmpty(t, f.events.GetEventsByType(catalog.EventTypeProductChanged))
	f.products.AssertExpectations(t)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	f := newProductFixture(false)
	f.products.On("ExistsBySlug", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.products.On("ExistsBySKU", mock.Anything, "MUG-01", mock.Anything).Return(true, nil)

	_, err := f.svc.Create(context.Background(), CreateProductRequest{Name: "Mug", SKU: "MUG-01", Price: decimal.NewFromInt(5)})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
	f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_Create_InvalidBrand(t *testing.T) {
	f := newProductFixture(false)
	brandID := uuid.New()
	f.products.On("ExistsBySlug", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.products.On("ExistsBySKU", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.brands.On("FindByID", mock.Anything, brandID).Return(nil, shared.ErrNotFound)

	_, err := f.svc.Create(context.Background(), CreateProductRequest{Name: "Mug", SKU: "M1", Price: decimal.NewFromInt(5), BrandID: &brandID})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_BRAND", de.Code)
}

func TestProductService_Update_ClearsSalePrice(t *testing.T) {
	f := newProductFixture(false)
	p := publishedProduct(t, "Bowl", "20", testNow.Add(-time.Hour))
	sale := decimal.NewFromInt(15)
	require.NoError(t, p.SetPricing(p.Price, &sale))

	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("ExistsBySlug", mock.Anything, p.Slug, &p.ID).Return(false, nil)
	f.products.On("ExistsBySKU", mock.Anything, p.SKU, &p.ID).Return(false, nil)
	f.products.On("Save", mock.Anything, p).Return(nil)

	name := "Deep Bowl"
	resp, err := f.svc.Update(context.Background(), p.ID, UpdateProductRequest{Name: &name, ClearSalePrice: true})
	require.NoError(t, err)
	assert.Equal(t, "Deep Bowl", resp.Name)
	assert.Nil(t, resp.SalePrice)
	assert.False(t, resp.OnSale)
}

func TestProductService_PublishScheduled(t *testing.T) {
	f := newProductFixture(false)
	p, err := catalog.NewProduct("Vase", "", "VASE", decimal.NewFromInt(30))
	require.NoError(t, err)
	at := testNow.Add(48 * time.Hour)

	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("Save", mock.Anything, p).Return(nil)

	resp, err := f.svc.Publish(context.Background(), p.ID, PublishProductRequest{PublishAt: &at})
	require.NoError(t, err)
	assert.Equal(t, "published", resp.Status)
	require.NotNil(t, resp.PublishedAt)
	assert.True(t, resp.PublishedAt.Equal(at))
	assert.False(t, p.IsStorefrontVisible(testNow))
}

func TestProductService_Unpublish_Draft(t *testing.T) {
	f := newProductFixture(false)
	p, _ := catalog.NewProduct("Vase", "", "VASE", decimal.NewFromInt(30))
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.svc.Unpublish(context.Background(), p.ID)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_PUBLISHED", de.Code)
}

func TestProductService_GetBySlug_Localized(t *testing.T) {
	f := newProductFixture(true)
	ctx := context.Background()
	p := publishedProduct(t, "Clay Mug", "12", testNow.Add(-time.Hour))

	f.products.On("FindBySlug", mock.Anything, "molinis-puodelis").Return(nil, shared.ErrNotFound)
	f.translator.On("FindEntityBySlug", mock.Anything, localization.EntityProduct, "lt", "molinis-puodelis").Return(p.ID, nil)
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.translator.On("Resolve", mock.Anything, localization.EntityProduct, []uuid.UUID{p.ID}, "lt").Return(map[uuid.UUID]localization.Values{
		p.ID: {"name": "Molinis puodelis", "slug": "molinis-puodelis"},
	}, nil)
	f.stock.On("FindByProducts", mock.Anything, []uuid.UUID{p.ID}).Return([]inventory.StockItem{stockFor(t, p.ID, 3)}, nil)

	resp, err := f.svc.GetBySlug(ctx, "molinis-puodelis", "lt")
	require.NoError(t, err)
	assert.Equal(t, "Molinis puodelis", resp.Name)
	assert.Equal(t, "molinis-puodelis", resp.Slug)
	assert.Equal(t, "lt", resp.Locale)
	assert.True(t, resp.InStock)
	assert.Nil(t, resp.Brand)
}

func TestProductService_GetBySlug_HiddenProducts(t *testing.T) {
	f := newProductFixture(false)
	draft, _ := catalog.NewProduct("Draft", "", "D1", decimal.NewFromInt(3))
	scheduled := publishedProduct(t, "Later", "4", testNow.Add(time.Hour))

	f.products.On("FindBySlug", mock.Anything, draft.Slug).Return(draft, nil)
	f.products.On("FindBySlug", mock.Anything, scheduled.Slug).Return(scheduled, nil)

	_, err := f.svc.GetBySlug(context.Background(), draft.Slug, "en")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = f.svc.GetBySlug(context.Background(), scheduled.Slug, "en")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductService_ListStorefront_UnknownBrandIsEmpty(t *testing.T) {
	f := newProductFixture(false)
	f.brands.On("FindBySlugs", mock.Anything, []string{"nope"}).Return([]catalog.Brand{}, nil)

	page, err := f.svc.ListStorefront(context.Background(), ProductListQuery{Brands: []string{"nope"}}, "en")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
	f.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProductService_ListStorefront_CategorySubtree(t *testing.T) {
	f := newProductFixture(false)
	root, _ := catalog.NewCategory("Kitchen", "")
	cups, _ := catalog.NewChildCategory("Cups", "", root)
	hidden, _ := catalog.NewChildCategory("Seconds", "", root)
	hidden.SetVisible(false)
	underHidden, _ := catalog.NewChildCategory("Chipped", "", hidden)
	p := publishedProduct(t, "Cup", "5", testNow.Add(-time.Hour))

	f.categories.On("FindBySlug", mock.Anything, "kitchen").Return(root, nil)
	f.categories.On("FindDescendants", mock.Anything, root).Return([]catalog.Category{*cups, *hidden, *underHidden}, nil)
	f.products.On("List", mock.Anything, mock.MatchedBy(func(filter catalog.ProductFilter) bool {
		return assert.ObjectsAreEqual([]uuid.UUID{root.ID, cups.ID}, filter.CategoryIDs) &&
			filter.StorefrontAt != nil && filter.StorefrontAt.Equal(testNow) &&
			filter.Sort == catalog.ProductSortPriceAsc
	})).Return([]catalog.Product{*p}, int64(1), nil)
	f.stock.On("FindByProducts", mock.Anything, []uuid.UUID{p.ID}).Return([]inventory.StockItem{}, nil)

	page, err := f.svc.ListStorefront(context.Background(), ProductListQuery{Category: "kitchen", Sort: "price_asc"}, "en")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, p.ID, page.Items[0].ID)
	assert.False(t, page.Items[0].InStock)
	f.products.AssertExpectations(t)
}

func TestApplyCollection(t *testing.T) {
	brandA, brandB := uuid.New(), uuid.New()

	t.Run("manual uses members", func(t *testing.T) {
		c, _ := catalog.NewCollection("Picks", "", catalog.CollectionTypeManual)
		id := uuid.New()
		require.NoError(t, c.SetProducts([]uuid.UUID{id}))
		var filter catalog.ProductFilter
		require.True(t, applyCollection(&filter, c))
		assert.Equal(t, []uuid.UUID{id}, filter.ProductIDs)
	})

	t.Run("empty manual collection", func(t *testing.T) {
		c, _ := catalog.NewCollection("Empty", "", catalog.CollectionTypeManual)
		var filter catalog.ProductFilter
		assert.False(t, applyCollection(&filter, c))
	})

	t.Run("automatic rules intersect with query", func(t *testing.T) {
		c, _ := catalog.NewCollection("Auto", "", catalog.CollectionTypeAutomatic)
		minPrice := decimal.NewFromInt(10)
		require.NoError(t, c.SetRules(catalog.CollectionRules{BrandIDs: []uuid.UUID{brandA, brandB}, MinPrice: &minPrice, FeaturedOnly: true}))

		queryMin := decimal.NewFromInt(5)
		filter := catalog.ProductFilter{BrandIDs: []uuid.UUID{brandB}, MinPrice: &queryMin}
		require.True(t, applyCollection(&filter, c))
		assert.Equal(t, []uuid.UUID{brandB}, filter.BrandIDs)
		assert.True(t, filter.MinPrice.Equal(minPrice))
		assert.True(t, filter.FeaturedOnly)
	})

	t.Run("disjoint brands", func(t *testing.T) {
		c, _ := catalog.NewCollection("Auto", "", catalog.CollectionTypeAutomatic)
		require.NoError(t, c.SetRules(catalog.CollectionRules{BrandIDs: []uuid.UUID{brandA}}))
		filter := catalog.ProductFilter{BrandIDs: []uuid.UUID{brandB}}
		assert.False(t, applyCollection(&filter, c))
	})

	t.Run("crossed price bounds", func(t *testing.T) {
		c, _ := catalog.NewCollection("Auto", "", catalog.CollectionTypeAutomatic)
		minPrice := decimal.NewFromInt(50)
		require.NoError(t, c.SetRules(catalog.CollectionRules{MinPrice: &minPrice}))
		maxPrice := decimal.NewFromInt(20)
		filter := catalog.ProductFilter{MaxPrice: &maxPrice}
		assert.False(t, applyCollection(&filter, c))
	})
}

func TestProductService_Delete_RemovesImages(t *testing.T) {
	f := newProductFixture(false)
	store := newMemoryStore()
	f.svc.storage = store
	p := publishedProduct(t, "Plate", "8", testNow)
	_, err := p.AddImage("products/x/1.png", "https://cdn/1.png", "", "image/png", 10)
	require.NoError(t, err)
	store.objects["products/x/1.png"] = []byte("png")

	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("Delete", mock.Anything, p.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), p.ID))
	assert.Empty(t, store.objects)
	assert.Len(t, f.events.GetEventsByType(catalog.EventTypeProductDeleted), 1)
}
