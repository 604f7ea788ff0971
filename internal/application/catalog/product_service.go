package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	eventPublishing
	productRepo    catalog.ProductRepository
	brandRepo      catalog.BrandRepository
	categoryRepo   catalog.CategoryRepository
	collectionRepo catalog.CollectionRepository
	storage        ObjectStorage
	cards          cardBuilder
	now            Clock
	logger         *zap.Logger
}

// ProductServiceDeps groups the collaborators of ProductService
type ProductServiceDeps struct {
	Products    catalog.ProductRepository
	Brands      catalog.BrandRepository
	Categories  catalog.CategoryRepository
	Collections catalog.CollectionRepository
	Stock       StockLookup
	Translator  Translator
	Storage     ObjectStorage
	Currency    string
	Clock       Clock
	Logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(deps ProductServiceDeps) *ProductService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	translator := translatorOrDefault(deps.Translator)
	return &ProductService{
		productRepo:    deps.Products,
		brandRepo:      deps.Brands,
		categoryRepo:   deps.Categories,
		collectionRepo: deps.Collections,
		storage:        deps.Storage,
		cards:          cardBuilder{stock: deps.Stock, translator: translator, currency: deps.Currency},
		now:            now,
		logger:         logger,
	}
}

// Create creates a new draft product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "create")
	defer span.End()

	product, err := catalog.NewProduct(req.Name, req.Slug, req.SKU, req.Price)
	if err != nil {
		return nil, err
	}
	if err := product.UpdateDetails(req.Name, product.Slug, req.Description, req.ShortDescription, req.WeightGrams); err != nil {
		return nil, err
	}
	if err := product.SetPricing(req.Price, req.SalePrice); err != nil {
		return nil, err
	}
	if err := product.UpdateSEO(req.SEOTitle, req.SEODescription); err != nil {
		return nil, err
	}
	product.SetFeatured(req.IsFeatured)
	if req.IsVisible != nil {
		product.SetVisible(*req.IsVisible)
	}

	if err := s.checkUnique(ctx, product.Slug, product.SKU, nil); err != nil {
		return nil, err
	}
	if err := s.checkBrand(ctx, req.BrandID); err != nil {
		return nil, err
	}
	product.AssignBrand(req.BrandID)
	if err := s.checkCategories(ctx, req.CategoryIDs); err != nil {
		return nil, err
	}
	product.AssignCategories(req.CategoryIDs)

	if err := s.productRepo.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishDomainEvents(ctx, product)
	telemetry.SetAttributes(span, telemetry.AttrProductID, product.ID.String())

	resp := ToProductResponse(product, s.cards.currency, nil)
	return &resp, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Slug != nil || req.Description != nil || req.ShortDescription != nil || req.WeightGrams != nil {
		name, slug := product.Name, product.Slug
		description, short, weight := product.Description, product.ShortDescription, product.WeightGrams
		if req.Name != nil {
			name = *req.Name
		}
		if req.Slug != nil {
			slug = *req.Slug
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.ShortDescription != nil {
			short = *req.ShortDescription
		}
		if req.WeightGrams != nil {
			weight = *req.WeightGrams
		}
		if err := product.UpdateDetails(name, slug, description, short, weight); err != nil {
			return nil, err
		}
	}
	if req.SKU != nil {
		if err := product.UpdateSKU(*req.SKU); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(ctx, product.Slug, product.SKU, &product.ID); err != nil {
		return nil, err
	}

	if req.Price != nil || req.SalePrice != nil || req.ClearSalePrice {
		price, sale := product.Price, product.SalePrice
		if req.Price != nil {
			price = *req.Price
		}
		if req.SalePrice != nil {
			sale = req.SalePrice
		}
		if req.ClearSalePrice {
			sale = nil
		}
		if err := product.SetPricing(price, sale); err != nil {
			return nil, err
		}
	}

	if req.SEOTitle != nil || req.SEODescription != nil {
		title, description := product.SEOTitle, product.SEODescription
		if req.SEOTitle != nil {
			title = *req.SEOTitle
		}
		if req.SEODescription != nil {
			description = *req.SEODescription
		}
		if err := product.UpdateSEO(title, description); err != nil {
			return nil, err
		}
	}

	switch {
	case req.ClearBrand:
		product.AssignBrand(nil)
	case req.BrandID != nil:
		if err := s.checkBrand(ctx, req.BrandID); err != nil {
			return nil, err
		}
		product.AssignBrand(req.BrandID)
	}
	if req.CategoryIDs != nil {
		if err := s.checkCategories(ctx, *req.CategoryIDs); err != nil {
			return nil, err
		}
		product.AssignCategories(*req.CategoryIDs)
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}
	if req.IsVisible != nil {
		product.SetVisible(*req.IsVisible)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, product)

	resp := ToProductResponse(product, s.cards.currency, nil)
	return &resp, nil
}

// Publish publishes a product, optionally from a scheduled date
func (s *ProductService) Publish(ctx context.Context, id uuid.UUID, req PublishProductRequest) (*ProductResponse, error) {
	return s.transition(ctx, id, func(p *catalog.Product) error {
		if req.PublishAt != nil {
			p.SchedulePublication(req.PublishAt.UTC())
		}
		return p.Publish(s.now().UTC())
	})
}

// Unpublish moves a published product back to draft
func (s *ProductService) Unpublish(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, id, (*catalog.Product).Unpublish)
}

// Archive retires a product
func (s *ProductService) Archive(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.transition(ctx, id, (*catalog.Product).Archive)
}

func (s *ProductService) transition(ctx context.Context, id uuid.UUID, apply func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, product)

	resp := ToProductResponse(product, s.cards.currency, nil)
	return &resp, nil
}

// Delete deletes a product and its stored images
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.storage != nil {
		for _, img := range product.Images {
			if err := s.storage.Delete(ctx, img.StorageKey); err != nil {
				s.logger.Warn("Failed to delete product image",
					zap.String("product_id", id.String()),
					zap.String("key", img.StorageKey),
					zap.Error(err))
			}
		}
	}
	s.publish(ctx, catalog.NewCatalogChangedEvent(catalog.EventTypeProductDeleted, catalog.AggregateTypeProduct, product.ID, product.Slug))
	return nil
}

// GetByID returns a product for the admin, regardless of status
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.cards.currency, nil)
	if product.BrandID != nil {
		if brand, err := s.brandRepo.FindByID(ctx, *product.BrandID); err == nil {
			resp.Brand = &BrandSummary{ID: brand.ID, Name: brand.Name, Slug: brand.Slug}
		}
	}
	stock, err := s.cards.inStock(ctx, []uuid.UUID{product.ID})
	if err != nil {
		return nil, err
	}
	resp.InStock = stock[product.ID]
	return &resp, nil
}

// GetBySlug returns a storefront-visible product by base or localized slug
func (s *ProductService) GetBySlug(ctx context.Context, slug, locale string) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "get_by_slug", telemetry.AttrLocale, locale)
	defer span.End()

	product, err := findBySlug(ctx, s.cards.translator, localization.EntityProduct, locale, slug, s.productRepo.FindBySlug, s.productRepo.FindByID)
	if err != nil {
		return nil, err
	}
	if !product.IsStorefrontVisible(s.now()) {
		return nil, shared.ErrNotFound
	}

	values, err := s.cards.translator.Resolve(ctx, localization.EntityProduct, []uuid.UUID{product.ID}, locale)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.cards.currency, values[product.ID])
	resp.Locale = locale

	if product.BrandID != nil {
		brand, err := s.brandRepo.FindByID(ctx, *product.BrandID)
		switch {
		case err == nil && brand.IsEnabled:
			brandValues, err := s.cards.translator.Resolve(ctx, localization.EntityBrand, []uuid.UUID{brand.ID}, locale)
			if err != nil {
				return nil, err
			}
			v := brandValues[brand.ID]
			resp.Brand = &BrandSummary{ID: brand.ID, Name: v.Get("name", brand.Name), Slug: v.Get("slug", brand.Slug)}
		case err != nil && !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}

	stock, err := s.cards.inStock(ctx, []uuid.UUID{product.ID})
	if err != nil {
		return nil, err
	}
	resp.InStock = stock[product.ID]
	return &resp, nil
}

// ListStorefront returns visible products as cards, filtered by slugs of
// brands, a category (with its descendants) and a collection.
func (s *ProductService) ListStorefront(ctx context.Context, query ProductListQuery, locale string) (shared.Paginated[ProductCard], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "list_storefront", telemetry.AttrLocale, locale)
	defer span.End()

	now := s.now()
	filter, ok, err := s.buildFilter(ctx, query, locale, true)
	if err != nil {
		return shared.Paginated[ProductCard]{}, err
	}
	filter.StorefrontAt = &now
	page, pageSize := normalizePage(query.Page, query.PageSize)
	if !ok {
		return shared.NewPaginated([]ProductCard{}, 0, page, pageSize), nil
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Paginated[ProductCard]{}, err
	}
	cards, err := s.cards.cards(ctx, products, locale)
	if err != nil {
		return shared.Paginated[ProductCard]{}, err
	}
	return shared.NewPaginated(cards, total, page, pageSize), nil
}

// ListAdmin returns products in any status with base field values
func (s *ProductService) ListAdmin(ctx context.Context, query ProductListQuery) (shared.Paginated[ProductResponse], error) {
	filter, ok, err := s.buildFilter(ctx, query, "", false)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	filter.Status = catalog.ProductStatus(query.Status)
	page, pageSize := normalizePage(query.Page, query.PageSize)
	if !ok {
		return shared.NewPaginated([]ProductResponse{}, 0, page, pageSize), nil
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	stock, err := s.cards.inStock(ctx, ids)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i], s.cards.currency, nil)
		items[i].InStock = stock[products[i].ID]
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}

// buildFilter translates slugs in query into a repository filter. Storefront
// filters ignore disabled brands and hidden categories or collections.
// ok is false when a requested slug matches nothing, so the result is empty.
func (s *ProductService) buildFilter(ctx context.Context, query ProductListQuery, locale string, storefront bool) (catalog.ProductFilter, bool, error) {
	page, pageSize := normalizePage(query.Page, query.PageSize)
	filter := catalog.ProductFilter{
		Search:       query.Search,
		MinPrice:     query.MinPrice,
		MaxPrice:     query.MaxPrice,
		InStock:      query.InStock,
		FeaturedOnly: query.Featured,
		Sort:         catalog.ProductSort(query.Sort),
		Page:         page,
		PageSize:     pageSize,
	}
	if !filter.Sort.IsValid() {
		filter.Sort = catalog.ProductSortNewest
	}

	if len(query.Brands) > 0 {
		ids, err := s.brandIDs(ctx, query.Brands, locale, storefront)
		if err != nil {
			return filter, false, err
		}
		if len(ids) == 0 {
			return filter, false, nil
		}
		filter.BrandIDs = ids
	}

	if query.Category != "" {
		ids, err := s.categoryIDs(ctx, query.Category, locale, storefront)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return filter, false, nil
			}
			return filter, false, err
		}
		filter.CategoryIDs = ids
	}

	if query.Collection != "" {
		collection, err := findBySlug(ctx, s.cards.translator, localization.EntityCollection, locale, query.Collection, s.collectionRepo.FindBySlug, s.collectionRepo.FindByID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return filter, false, nil
			}
			return filter, false, err
		}
		if storefront && !collection.IsVisible {
			return filter, false, nil
		}
		if !applyCollection(&filter, collection) {
			return filter, false, nil
		}
	}
	return filter, true, nil
}

func (s *ProductService) brandIDs(ctx context.Context, slugs []string, locale string, enabledOnly bool) ([]uuid.UUID, error) {
	brands, err := s.brandRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(slugs))
	found := make(map[string]bool, len(brands))
	for i := range brands {
		found[brands[i].Slug] = true
		if !enabledOnly || brands[i].IsEnabled {
			ids = append(ids, brands[i].ID)
		}
	}
	if locale == "" {
		return ids, nil
	}
	// remaining slugs may be translated ones
	for _, slug := range slugs {
		if found[slug] {
			continue
		}
		id, err := s.cards.translator.FindEntityBySlug(ctx, localization.EntityBrand, locale, slug)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		brand, err := s.brandRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if (!enabledOnly || brand.IsEnabled) && !slices.Contains(ids, brand.ID) {
			ids = append(ids, brand.ID)
		}
	}
	return ids, nil
}

func (s *ProductService) categoryIDs(ctx context.Context, slug, locale string, visibleOnly bool) ([]uuid.UUID, error) {
	category, err := findBySlug(ctx, s.cards.translator, localization.EntityCategory, locale, slug, s.categoryRepo.FindBySlug, s.categoryRepo.FindByID)
	if err != nil {
		return nil, err
	}
	if visibleOnly && !category.IsVisible {
		return nil, shared.ErrNotFound
	}
	descendants, err := s.categoryRepo.FindDescendants(ctx, category)
	if err != nil {
		return nil, err
	}

	var hidden []string
	if visibleOnly {
		for i := range descendants {
			if !descendants[i].IsVisible {
				hidden = append(hidden, descendants[i].Path)
			}
		}
	}

	ids := []uuid.UUID{category.ID}
	for i := range descendants {
		d := &descendants[i]
		// a hidden category hides its subtree as well
		if slices.ContainsFunc(hidden, func(path string) bool { return d.Path == path || strings.HasPrefix(d.Path, path+"/") }) {
			continue
		}
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// applyCollection narrows filter to the members or rules of a collection.
// It reports false when the intersection is empty.
func applyCollection(filter *catalog.ProductFilter, c *catalog.Collection) bool {
	if c.IsManual() {
		ids := c.ProductIDs()
		if len(ids) == 0 {
			return false
		}
		filter.ProductIDs = ids
		return true
	}

	rules := c.Rules
	if len(rules.BrandIDs) > 0 {
		filter.BrandIDs = intersect(filter.BrandIDs, rules.BrandIDs)
		if len(filter.BrandIDs) == 0 {
			return false
		}
	}
	if len(rules.CategoryIDs) > 0 {
		filter.CategoryIDs = intersect(filter.CategoryIDs, rules.CategoryIDs)
		if len(filter.CategoryIDs) == 0 {
			return false
		}
	}
	filter.MinPrice = maxBound(filter.MinPrice, rules.MinPrice)
	filter.MaxPrice = minBound(filter.MaxPrice, rules.MaxPrice)
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return false
	}
	filter.FeaturedOnly = filter.FeaturedOnly || rules.FeaturedOnly
	return true
}

// intersect returns b when a is empty, else the members of a also in b
func intersect(a, b []uuid.UUID) []uuid.UUID {
	if len(a) == 0 {
		return slices.Clone(b)
	}
	out := make([]uuid.UUID, 0, len(a))
	for _, id := range a {
		if slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}

func maxBound(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil {
		return b
	}
	if b == nil || a.GreaterThan(*b) {
		return a
	}
	return b
}

func minBound(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil {
		return b
	}
	if b == nil || a.LessThan(*b) {
		return a
	}
	return b
}

func normalizePage(page, pageSize int) (int, int) {
	f := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	return f.Page, f.PageSize
}

func (s *ProductService) checkUnique(ctx context.Context, slug, sku string, excludeID *uuid.UUID) error {
	exists, err := s.productRepo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}
	exists, err = s.productRepo.ExistsBySKU(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}
	return nil
}

func (s *ProductService) checkBrand(ctx context.Context, brandID *uuid.UUID) error {
	if brandID == nil {
		return nil
	}
	if _, err := s.brandRepo.FindByID(ctx, *brandID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_BRAND", "Brand not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) checkCategories(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return err
		}
	}
	return nil
}
