package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
)

// BrandService handles brand-related business operations
type BrandService struct {
	eventPublishing
	brandRepo   catalog.BrandRepository
	productRepo catalog.ProductRepository
	translator  Translator
	storage     ObjectStorage
}

// NewBrandService creates a new BrandService. translator and storage may be nil
func NewBrandService(
	brandRepo catalog.BrandRepository,
	productRepo catalog.ProductRepository,
	translator Translator,
	storage ObjectStorage,
) *BrandService {
	return &BrandService{
		brandRepo:   brandRepo,
		productRepo: productRepo,
		translator:  translatorOrDefault(translator),
		storage:     storage,
	}
}

// Create creates a new brand
func (s *BrandService) Create(ctx context.Context, req CreateBrandRequest) (*BrandResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "brand", "create")
	defer span.End()

	brand, err := catalog.NewBrand(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}
	if err := brand.Update(req.Name, brand.Slug, req.Description, req.Website, req.SortOrder); err != nil {
		return nil, err
	}
	if req.IsEnabled != nil && !*req.IsEnabled {
		brand.Disable()
	}

	// Check if slug already exists
	exists, err := s.brandRepo.ExistsBySlug(ctx, brand.Slug, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Brand with this slug already exists")
	}

	if err := s.brandRepo.Save(ctx, brand); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishDomainEvents(ctx, brand)

	resp := s.toResponse(brand, nil)
	return &resp, nil
}

// Update updates an existing brand
func (s *BrandService) Update(ctx context.Context, id uuid.UUID, req UpdateBrandRequest) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := brand.Update(req.Name, req.Slug, req.Description, req.Website, req.SortOrder); err != nil {
		return nil, err
	}
	exists, err := s.brandRepo.ExistsBySlug(ctx, brand.Slug, &brand.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Brand with this slug already exists")
	}

	if req.IsEnabled != nil {
		if *req.IsEnabled {
			brand.Enable()
		} else {
			brand.Disable()
		}
	}

	if err := s.brandRepo.Save(ctx, brand); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, brand)

	resp := s.toResponse(brand, nil)
	return &resp, nil
}

// Delete deletes a brand that no product references
func (s *BrandService) Delete(ctx context.Context, id uuid.UUID) error {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.productRepo.CountByBrand(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("BRAND_IN_USE", "Brand is assigned to products and cannot be deleted")
	}

	if err := s.brandRepo.Delete(ctx, id); err != nil {
		return err
	}
	if brand.LogoKey != "" && s.storage != nil {
		_ = s.storage.Delete(ctx, brand.LogoKey)
	}
	s.publish(ctx, catalog.NewCatalogChangedEvent(catalog.EventTypeBrandChanged, catalog.AggregateTypeBrand, brand.ID, brand.Slug))
	return nil
}

// GetByID returns a brand by ID with its base field values
func (s *BrandService) GetByID(ctx context.Context, id uuid.UUID) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(brand, nil)
	return &resp, nil
}

// GetBySlug returns an enabled brand for the storefront, matching base or localized slugs
func (s *BrandService) GetBySlug(ctx context.Context, slug, locale string) (*BrandResponse, error) {
	brand, err := findBySlug(ctx, s.translator, localization.EntityBrand, locale, slug, s.brandRepo.FindBySlug, s.brandRepo.FindByID)
	if err != nil {
		return nil, err
	}
	if !brand.IsEnabled {
		return nil, shared.ErrNotFound
	}

	values, err := s.translator.Resolve(ctx, localization.EntityBrand, []uuid.UUID{brand.ID}, locale)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(brand, values[brand.ID])
	return &resp, nil
}

// List returns a page of brands. Storefront callers pass enabledOnly and a locale
func (s *BrandService) List(ctx context.Context, filter BrandListFilter, enabledOnly bool, locale string) (shared.Paginated[BrandResponse], error) {
	f := toFilter(filter.Page, filter.PageSize, filter.Search)
	f.OrderBy = "sort_order"
	f.OrderDir = "asc"

	brands, total, err := s.brandRepo.List(ctx, f, enabledOnly)
	if err != nil {
		return shared.Paginated[BrandResponse]{}, err
	}

	ids := make([]uuid.UUID, len(brands))
	for i := range brands {
		ids[i] = brands[i].ID
	}
	values, err := s.translator.Resolve(ctx, localization.EntityBrand, ids, locale)
	if err != nil {
		return shared.Paginated[BrandResponse]{}, err
	}

	items := make([]BrandResponse, len(brands))
	for i := range brands {
		items[i] = s.toResponse(&brands[i], values[brands[i].ID])
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

func (s *BrandService) toResponse(b *catalog.Brand, values localization.Values) BrandResponse {
	logoURL := ""
	if b.LogoKey != "" && s.storage != nil {
		logoURL = s.storage.URL(b.LogoKey)
	}
	return ToBrandResponse(b, logoURL, values)
}
