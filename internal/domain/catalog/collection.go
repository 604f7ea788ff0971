package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/shared"
)

// CollectionType defines how a collection selects its products
type CollectionType string

const (
	CollectionTypeManual    CollectionType = "manual"
	CollectionTypeAutomatic CollectionType = "automatic"
)

// Gallery column bounds
const (
	MinGalleryColumns     = 1
	MaxGalleryColumns     = 6
	DefaultGalleryColumns = 3
)

// Collection is a merchandised group of products, either hand-picked or rule based
type Collection struct {
	shared.BaseAggregateRoot
	Name           string          `gorm:"type:varchar(120);not null"`
	Slug           string          `gorm:"type:varchar(160);not null;uniqueIndex"`
	Description    string          `gorm:"type:text"`
	Type           CollectionType  `gorm:"type:varchar(20);not null;default:'manual'"`
	IsVisible      bool            `gorm:"not null;default:true"`
	SortOrder      int             `gorm:"not null;default:0"`
	GalleryColumns int             `gorm:"not null;default:3"`
	Rules          CollectionRules `gorm:"type:text;serializer:json"`

	Products []CollectionProduct `gorm:"foreignKey:CollectionID"`
}

// TableName returns the table name for GORM
func (Collection) TableName() string {
	return "collections"
}

// CollectionRules select products for automatic collections.
// Empty lists and nil bounds do not restrict; all set conditions must match.
type CollectionRules struct {
	BrandIDs     []uuid.UUID      `json:"brand_ids,omitempty"`
	CategoryIDs  []uuid.UUID      `json:"category_ids,omitempty"`
	MinPrice     *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice     *decimal.Decimal `json:"max_price,omitempty"`
	FeaturedOnly bool             `json:"featured_only,omitempty"`
}

// Validate checks the rule bounds
func (r CollectionRules) Validate() error {
	if r.MinPrice != nil && r.MinPrice.IsNegative() {
		return shared.NewDomainError("INVALID_RULES", "Minimum price cannot be negative")
	}
	if r.MinPrice != nil && r.MaxPrice != nil && r.MinPrice.GreaterThan(*r.MaxPrice) {
		return shared.NewDomainError("INVALID_RULES", "Minimum price cannot exceed maximum price")
	}
	return nil
}

// CollectionProduct is a manual collection membership with its display position
type CollectionProduct struct {
	CollectionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position     int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CollectionProduct) TableName() string {
	return "collection_products"
}

// NewCollection creates a visible collection
func NewCollection(name, slug string, collectionType CollectionType) (*Collection, error) {
	name = strings.TrimSpace(name)
	if err := validateName("Collection", name, 120); err != nil {
		return nil, err
	}
	resolved, err := resolveSlug(slug, name)
	if err != nil {
		return nil, err
	}
	if collectionType == "" {
		collectionType = CollectionTypeManual
	}
	if collectionType != CollectionTypeManual && collectionType != CollectionTypeAutomatic {
		return nil, shared.NewDomainError("INVALID_COLLECTION_TYPE", "Collection type must be manual or automatic")
	}

	collection := &Collection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              resolved,
		Type:              collectionType,
		IsVisible:         true,
		GalleryColumns:    DefaultGalleryColumns,
		Products:          make([]CollectionProduct, 0),
	}
	collection.AddDomainEvent(NewCatalogChangedEvent(EventTypeCollectionChanged, AggregateTypeCollection, collection.ID, collection.Slug))
	return collection, nil
}

// Update changes the descriptive fields of the collection
func (c *Collection) Update(name, slug, description string, sortOrder int) error {
	name = strings.TrimSpace(name)
	if err := validateName("Collection", name, 120); err != nil {
		return err
	}
	resolved, err := resolveSlug(slug, name)
	if err != nil {
		return err
	}
	c.Name = name
	c.Slug = resolved
	c.Description = description
	c.SortOrder = sortOrder
	c.changed()
	return nil
}

// SetGalleryColumns sets how many columns the gallery renders per row
func (c *Collection) SetGalleryColumns(columns int) error {
	if columns < MinGalleryColumns || columns > MaxGalleryColumns {
		return shared.NewDomainError("INVALID_GALLERY_COLUMNS", "Gallery columns must be between 1 and 6")
	}
	c.GalleryColumns = columns
	c.changed()
	return nil
}

// SetVisible shows or hides the collection
func (c *Collection) SetVisible(visible bool) {
	c.IsVisible = visible
	c.changed()
}

// SetRules replaces the selection rules of an automatic collection
func (c *Collection) SetRules(rules CollectionRules) error {
	if c.Type != CollectionTypeAutomatic {
		return shared.NewDomainError("INVALID_STATE", "Only automatic collections have rules")
	}
	if err := rules.Validate(); err != nil {
		return err
	}
	c.Rules = rules
	c.changed()
	return nil
}

// SetProducts replaces the members of a manual collection, in display order
func (c *Collection) SetProducts(productIDs []uuid.UUID) error {
	if c.Type != CollectionTypeManual {
		return shared.NewDomainError("INVALID_STATE", "Only manual collections hold product lists")
	}
	members := make([]CollectionProduct, 0, len(productIDs))
	seen := make([]uuid.UUID, 0, len(productIDs))
	for _, id := range productIDs {
		if id == uuid.Nil || slices.Contains(seen, id) {
			continue
		}
		seen = append(seen, id)
		members = append(members, CollectionProduct{CollectionID: c.ID, ProductID: id, Position: len(members)})
	}
	c.Products = members
	c.changed()
	return nil
}

// AddProduct appends a product to a manual collection; adding a member twice is a no-op
func (c *Collection) AddProduct(productID uuid.UUID) error {
	if c.Type != CollectionTypeManual {
		return shared.NewDomainError("INVALID_STATE", "Only manual collections hold product lists")
	}
	if slices.ContainsFunc(c.Products, func(m CollectionProduct) bool { return m.ProductID == productID }) {
		return nil
	}
	c.Products = append(c.Products, CollectionProduct{CollectionID: c.ID, ProductID: productID, Position: len(c.Products)})
	c.changed()
	return nil
}

// RemoveProduct removes a product and closes the gap in positions
func (c *Collection) RemoveProduct(productID uuid.UUID) {
	idx := slices.IndexFunc(c.Products, func(m CollectionProduct) bool { return m.ProductID == productID })
	if idx < 0 {
		return
	}
	c.Products = slices.Delete(c.Products, idx, idx+1)
	for i := range c.Products {
		c.Products[i].Position = i
	}
	c.changed()
}

// IsManual reports whether products are hand-picked
func (c *Collection) IsManual() bool {
	return c.Type == CollectionTypeManual
}

// ProductIDs returns member product IDs in position order
func (c *Collection) ProductIDs() []uuid.UUID {
	members := slices.Clone(c.Products)
	slices.SortFunc(members, func(a, b CollectionProduct) int { return a.Position - b.Position })
	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.ProductID
	}
	return ids
}

func (c *Collection) changed() {
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewCatalogChangedEvent(EventTypeCollectionChanged, AggregateTypeCollection, c.ID, c.Slug))
}
