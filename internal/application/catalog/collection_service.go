package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
)

// maxGalleryCandidates caps how many products an automatic collection gallery considers
const maxGalleryCandidates = 1000

// candidateBatch is the page size used to collect automatic collection members
const candidateBatch = 100

// CollectionService handles collections and their galleries
type CollectionService struct {
	eventPublishing
	collectionRepo catalog.CollectionRepository
	productRepo    catalog.ProductRepository
	cards          cardBuilder
	now            Clock
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(
	collectionRepo catalog.CollectionRepository,
	productRepo catalog.ProductRepository,
	stock StockLookup,
	translator Translator,
	currency string,
	clock Clock,
) *CollectionService {
	if clock == nil {
		clock = time.Now
	}
	return &CollectionService{
		collectionRepo: collectionRepo,
		productRepo:    productRepo,
		cards:          cardBuilder{stock: stock, translator: translatorOrDefault(translator), currency: currency},
		now:            clock,
	}
}

// Create creates a manual or automatic collection
func (s *CollectionService) Create(ctx context.Context, req CreateCollectionRequest) (*CollectionResponse, error) {
	collection, err := catalog.NewCollection(req.Name, req.Slug, catalog.CollectionType(req.Type))
	if err != nil {
		return nil, err
	}
	if err := collection.Update(req.Name, collection.Slug, req.Description, req.SortOrder); err != nil {
		return nil, err
	}
	if req.GalleryColumns > 0 {
		if err := collection.SetGalleryColumns(req.GalleryColumns); err != nil {
			return nil, err
		}
	}
	if req.IsVisible != nil {
		collection.SetVisible(*req.IsVisible)
	}
	if err := s.applyMembers(ctx, collection, &req.ProductIDs, req.Rules); err != nil {
		return nil, err
	}

	exists, err := s.collectionRepo.ExistsBySlug(ctx, collection.Slug, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Collection with this slug already exists")
	}

	if err := s.collectionRepo.Save(ctx, collection); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, collection)

	resp := ToCollectionResponse(collection, nil)
	return &resp, nil
}

// Update updates a collection. The type of a collection cannot change
func (s *CollectionService) Update(ctx context.Context, id uuid.UUID, req UpdateCollectionRequest) (*CollectionResponse, error) {
	collection, err := s.collectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := collection.Update(req.Name, req.Slug, req.Description, req.SortOrder); err != nil {
		return nil, err
	}
	exists, err := s.collectionRepo.ExistsBySlug(ctx, collection.Slug, &collection.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Collection with this slug already exists")
	}
	if req.GalleryColumns > 0 {
		if err := collection.SetGalleryColumns(req.GalleryColumns); err != nil {
			return nil, err
		}
	}
	if req.IsVisible != nil {
		collection.SetVisible(*req.IsVisible)
	}
	if err := s.applyMembers(ctx, collection, req.ProductIDs, req.Rules); err != nil {
		return nil, err
	}

	if err := s.collectionRepo.Save(ctx, collection); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, collection)

	resp := ToCollectionResponse(collection, nil)
	return &resp, nil
}

// AddProduct appends a product to a manual collection
func (s *CollectionService) AddProduct(ctx context.Context, id, productID uuid.UUID) (*CollectionResponse, error) {
	collection, err := s.collectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	if err := collection.AddProduct(productID); err != nil {
		return nil, err
	}
	return s.save(ctx, collection)
}

// RemoveProduct removes a product from a manual collection
func (s *CollectionService) RemoveProduct(ctx context.Context, id, productID uuid.UUID) (*CollectionResponse, error) {
	collection, err := s.collectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !collection.IsManual() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only manual collections hold product lists")
	}
	collection.RemoveProduct(productID)
	return s.save(ctx, collection)
}

// Delete deletes a collection
func (s *CollectionService) Delete(ctx context.Context, id uuid.UUID) error {
	collection, err := s.collectionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.collectionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, catalog.NewCatalogChangedEvent(catalog.EventTypeCollectionChanged, catalog.AggregateTypeCollection, collection.ID, collection.Slug))
	return nil
}

// GetByID returns a collection with its base field values
func (s *CollectionService) GetByID(ctx context.Context, id uuid.UUID) (*CollectionResponse, error) {
	collection, err := s.collectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCollectionResponse(collection, nil)
	return &resp, nil
}

// List returns a page of collections. Storefront callers pass visibleOnly and a locale
func (s *CollectionService) List(ctx context.Context, page, pageSize int, search string, visibleOnly bool, locale string) (shared.Paginated[CollectionResponse], error) {
	f := toFilter(page, pageSize, search)
	f.OrderBy = "sort_order"
	f.OrderDir = "asc"

	collections, total, err := s.collectionRepo.List(ctx, f, visibleOnly)
	if err != nil {
		return shared.Paginated[CollectionResponse]{}, err
	}
	ids := make([]uuid.UUID, len(collections))
	for i := range collections {
		ids[i] = collections[i].ID
	}
	values, err := s.cards.translator.Resolve(ctx, localization.EntityCollection, ids, locale)
	if err != nil {
		return shared.Paginated[CollectionResponse]{}, err
	}

	items := make([]CollectionResponse, len(collections))
	for i := range collections {
		items[i] = ToCollectionResponse(&collections[i], values[collections[i].ID])
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// Gallery returns one arranged page of a visible collection's products
func (s *CollectionService) Gallery(ctx context.Context, slug string, query GalleryQuery, locale string) (*GalleryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collection", "gallery", telemetry.AttrLocale, locale)
	defer span.End()

	collection, err := findBySlug(ctx, s.cards.translator, localization.EntityCollection, locale, slug, s.collectionRepo.FindBySlug, s.collectionRepo.FindByID)
	if err != nil {
		return nil, err
	}
	if !collection.IsVisible {
		return nil, shared.ErrNotFound
	}

	products, entries, err := s.galleryCandidates(ctx, collection)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	page := catalog.BuildGalleryPage(entries, collection.IsManual(), collection.GalleryColumns, query.After, query.Page, query.PageSize)

	pageProducts := make([]catalog.Product, 0, len(page.ProductIDs))
	for _, id := range page.ProductIDs {
		pageProducts = append(pageProducts, *products[id])
	}
	cards, err := s.cards.cards(ctx, pageProducts, locale)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]ProductCard, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}

	values, err := s.cards.translator.Resolve(ctx, localization.EntityCollection, []uuid.UUID{collection.ID}, locale)
	if err != nil {
		return nil, err
	}
	resp := &GalleryResponse{
		Collection: ToCollectionResponse(collection, values[collection.ID]),
		Columns:    collection.GalleryColumns,
		Rows:       make([]GalleryRowResponse, len(page.Rows)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for i, row := range page.Rows {
		tiles := make([]GalleryTileResponse, len(row.Tiles))
		for j, tile := range row.Tiles {
			tiles[j] = GalleryTileResponse{Span: tile.Span, Product: byID[tile.ProductID]}
		}
		resp.Rows[i] = GalleryRowResponse{Tiles: tiles}
	}
	telemetry.SetAttributes(span, "tiles", len(page.ProductIDs))
	return resp, nil
}

// galleryCandidates loads the storefront-visible products of a collection
func (s *CollectionService) galleryCandidates(ctx context.Context, c *catalog.Collection) (map[uuid.UUID]*catalog.Product, []catalog.GalleryEntry, error) {
	now := s.now()
	byID := make(map[uuid.UUID]*catalog.Product)
	entries := make([]catalog.GalleryEntry, 0)

	add := func(p *catalog.Product, position int) {
		if !p.IsStorefrontVisible(now) {
			return
		}
		byID[p.ID] = p
		entries = append(entries, catalog.GalleryEntry{
			ProductID:   p.ID,
			Featured:    p.IsFeatured,
			Position:    position,
			PublishedAt: *p.PublishedAt,
		})
	}

	if c.IsManual() {
		ids := c.ProductIDs()
		if len(ids) == 0 {
			return byID, entries, nil
		}
		products, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		positions := make(map[uuid.UUID]int, len(ids))
		for i, id := range ids {
			positions[id] = i
		}
		for i := range products {
			add(&products[i], positions[products[i].ID])
		}
		return byID, entries, nil
	}

	filter := catalog.ProductFilter{StorefrontAt: &now, Sort: catalog.ProductSortNewest, PageSize: candidateBatch}
	if !applyCollection(&filter, c) {
		return byID, entries, nil
	}
	for page := 1; len(byID) < maxGalleryCandidates; page++ {
		filter.Page = page
		products, total, err := s.productRepo.List(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		for i := range products {
			add(&products[i], 0)
		}
		if len(products) < candidateBatch || int64(page*candidateBatch) >= total {
			break
		}
	}
	return byID, entries, nil
}

func (s *CollectionService) applyMembers(ctx context.Context, c *catalog.Collection, productIDs *[]uuid.UUID, rules *CollectionRulesRequest) error {
	if c.IsManual() {
		if rules != nil {
			return shared.NewDomainError("INVALID_STATE", "Only automatic collections have rules")
		}
		if productIDs == nil {
			return nil
		}
		if len(*productIDs) > 0 {
			found, err := s.productRepo.FindByIDs(ctx, *productIDs)
			if err != nil {
				return err
			}
			known := make(map[uuid.UUID]bool, len(found))
			for i := range found {
				known[found[i].ID] = true
			}
			for _, id := range *productIDs {
				if !known[id] {
					return shared.NewDomainError("INVALID_PRODUCT", "Product "+id.String()+" not found")
				}
			}
		}
		return c.SetProducts(*productIDs)
	}

	if productIDs != nil && len(*productIDs) > 0 {
		return shared.NewDomainError("INVALID_STATE", "Only manual collections hold product lists")
	}
	if rules == nil {
		return nil
	}
	return c.SetRules(rules.toDomain())
}

func (s *CollectionService) save(ctx context.Context, c *catalog.Collection) (*CollectionResponse, error) {
	if err := s.collectionRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, c)
	resp := ToCollectionResponse(c, nil)
	return &resp, nil
}
