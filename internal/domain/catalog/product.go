package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

// IsValid reports whether s is a known status
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusArchived:
		return true
	}
	return false
}

// Product is a sellable catalog item
type Product struct {
	shared.BaseAggregateRoot
	Name             string           `gorm:"type:varchar(200);not null"`
	Slug             string           `gorm:"type:varchar(160);not null;uniqueIndex"`
	SKU              string           `gorm:"column:sku;type:varchar(64);not null;uniqueIndex"`
	Description      string           `gorm:"type:text"`
	ShortDescription string           `gorm:"type:varchar(500)"`
	Price            decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	SalePrice        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	BrandID          *uuid.UUID       `gorm:"type:uuid;index"`
	Status           ProductStatus    `gorm:"type:varchar(20);not null;default:'draft';index"`
	IsVisible        bool             `gorm:"not null;default:true"`
	IsFeatured       bool             `gorm:"not null;default:false"`
	PublishedAt      *time.Time       `gorm:"index"`
	WeightGrams      int              `gorm:"not null;default:0"`
	SEOTitle         string           `gorm:"column:seo_title;type:varchar(200)"`
	SEODescription   string           `gorm:"column:seo_description;type:varchar(500)"`
	AverageRating    decimal.Decimal  `gorm:"type:decimal(3,1);not null;default:0"`
	ReviewCount      int              `gorm:"not null;default:0"`

	CategoryIDs []uuid.UUID    `gorm:"-"`
	Images      []ProductImage `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductImage is an ordered picture of a product kept in object storage
type ProductImage struct {
	shared.BaseEntity
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	StorageKey  string    `gorm:"type:varchar(255);not null"`
	URL         string    `gorm:"type:varchar(500);not null"`
	AltText     string    `gorm:"type:varchar(255)"`
	ContentType string    `gorm:"type:varchar(50);not null"`
	SizeBytes   int64     `gorm:"not null;default:0"`
	Position    int       `gorm:"not null;default:0"`
	IsPrimary   bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// ProductCategory links products to categories
type ProductCategory struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (ProductCategory) TableName() string {
	return "product_categories"
}

// NewProduct creates a draft product. An empty slug is derived from the name
func NewProduct(name, slug, sku string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateName("Product", name, 200); err != nil {
		return nil, err
	}
	resolved, err := resolveSlug(slug, name)
	if err != nil {
		return nil, err
	}
	normalizedSKU, err := normalizeSKU(sku)
	if err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              resolved,
		SKU:               normalizedSKU,
		Price:             price.Round(2),
		Status:            ProductStatusDraft,
		IsVisible:         true,
		CategoryIDs:       make([]uuid.UUID, 0),
		Images:            make([]ProductImage, 0),
	}
	product.AddDomainEvent(NewCatalogChangedEvent(EventTypeProductChanged, AggregateTypeProduct, product.ID, product.Slug))
	return product, nil
}

// UpdateDetails changes the descriptive fields of the product
func (p *Product) UpdateDetails(name, slug, description, shortDescription string, weightGrams int) error {
	name = strings.TrimSpace(name)
	if err := validateName("Product", name, 200); err != nil {
		return err
	}
	resolved, err := resolveSlug(slug, name)
	if err != nil {
		return err
	}
	if len([]rune(shortDescription)) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Short description cannot exceed 500 characters")
	}
	if weightGrams < 0 {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}

	p.Name = name
	p.Slug = resolved
	p.Description = description
	p.ShortDescription = shortDescription
	p.WeightGrams = weightGrams
	p.changed()
	return nil
}

// UpdateSKU changes the stock keeping unit
func (p *Product) UpdateSKU(sku string) error {
	normalized, err := normalizeSKU(sku)
	if err != nil {
		return err
	}
	p.SKU = normalized
	p.changed()
	return nil
}

// UpdateSEO sets the search-engine title and description
func (p *Product) UpdateSEO(title, description string) error {
	if len([]rune(title)) > 200 || len([]rune(description)) > 500 {
		return shared.NewDomainError("INVALID_SEO", "SEO title or description is too long")
	}
	p.SEOTitle = title
	p.SEODescription = description
	p.changed()
	return nil
}

// SetPricing sets the regular price and an optional sale price.
// The sale price must be lower than the regular price.
func (p *Product) SetPricing(price decimal.Decimal, salePrice *decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if salePrice != nil {
		if salePrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
		}
		if !salePrice.LessThan(price) {
			return shared.NewDomainError("INVALID_SALE_PRICE", "Sale price must be lower than the regular price")
		}
		rounded := salePrice.Round(2)
		salePrice = &rounded
	}
	if p.Status == ProductStatusPublished && !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Published products must have a positive price")
	}

	p.Price = price.Round(2)
	p.SalePrice = salePrice
	p.changed()
	return nil
}

// EffectivePrice returns the sale price when set, else the regular price
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// IsOnSale reports whether a sale price is active
func (p *Product) IsOnSale() bool {
	return p.SalePrice != nil
}

// AssignBrand sets or clears (nil) the brand
func (p *Product) AssignBrand(brandID *uuid.UUID) {
	p.BrandID = brandID
	p.changed()
}

// AssignCategories replaces the category set, dropping duplicates and keeping order
func (p *Product) AssignCategories(ids []uuid.UUID) {
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil && !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}
	p.CategoryIDs = unique
	p.changed()
}

// SetFeatured flags the product for featured placement
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.changed()
}

// SetVisible shows or hides the product without changing its status
func (p *Product) SetVisible(visible bool) {
	p.IsVisible = visible
	p.changed()
}

// Publish makes the product purchasable. PublishedAt is kept when already set
// so that scheduled publication dates survive re-publishing.
func (p *Product) Publish(at time.Time) error {
	if p.Status == ProductStatusPublished {
		return shared.NewDomainError("ALREADY_PUBLISHED", "Product is already published")
	}
	if !p.Price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Product must have a positive price to be published")
	}
	p.Status = ProductStatusPublished
	if p.PublishedAt == nil {
		published := at
		p.PublishedAt = &published
	}
	p.changed()
	return nil
}

// SchedulePublication sets the date from which a published product becomes visible
func (p *Product) SchedulePublication(at time.Time) {
	p.PublishedAt = &at
	p.changed()
}

// Unpublish moves the product back to draft
func (p *Product) Unpublish() error {
	if p.Status != ProductStatusPublished {
		return shared.NewDomainError("NOT_PUBLISHED", "Product is not published")
	}
	p.Status = ProductStatusDraft
	p.changed()
	return nil
}

// Archive retires the product
func (p *Product) Archive() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Product is already archived")
	}
	p.Status = ProductStatusArchived
	p.changed()
	return nil
}

// IsStorefrontVisible reports whether customers can see and buy the product at now
func (p *Product) IsStorefrontVisible(now time.Time) bool {
	return p.Status == ProductStatusPublished &&
		p.IsVisible &&
		p.PublishedAt != nil &&
		!p.PublishedAt.After(now)
}

// AddImage appends an image; the first image becomes primary
func (p *Product) AddImage(key, url, altText, contentType string, size int64) (*ProductImage, error) {
	if key == "" || url == "" {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image key and URL are required")
	}
	image := ProductImage{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   p.ID,
		StorageKey:  key,
		URL:         url,
		AltText:     altText,
		ContentType: contentType,
		SizeBytes:   size,
		Position:    len(p.Images),
		IsPrimary:   len(p.Images) == 0,
	}
	p.Images = append(p.Images, image)
	p.changed()
	return &p.Images[len(p.Images)-1], nil
}

// RemoveImage deletes an image and returns it; a new primary is promoted when needed
func (p *Product) RemoveImage(imageID uuid.UUID) (*ProductImage, error) {
	idx := slices.IndexFunc(p.Images, func(img ProductImage) bool { return img.ID == imageID })
	if idx < 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "Image not found")
	}
	removed := p.Images[idx]
	p.Images = slices.Delete(p.Images, idx, idx+1)
	for i := range p.Images {
		p.Images[i].Position = i
	}
	if removed.IsPrimary && len(p.Images) > 0 {
		p.Images[0].IsPrimary = true
	}
	p.changed()
	return &removed, nil
}

// SetPrimaryImage marks one image as primary
func (p *Product) SetPrimaryImage(imageID uuid.UUID) error {
	if !slices.ContainsFunc(p.Images, func(img ProductImage) bool { return img.ID == imageID }) {
		return shared.NewDomainError("NOT_FOUND", "Image not found")
	}
	for i := range p.Images {
		p.Images[i].IsPrimary = p.Images[i].ID == imageID
	}
	p.changed()
	return nil
}

// ReorderImages sets image positions to the order of ids, which must list every image once
func (p *Product) ReorderImages(ids []uuid.UUID) error {
	if len(ids) != len(p.Images) {
		return shared.NewDomainError("INVALID_ORDER", "Image order must list every image exactly once")
	}
	ordered := make([]ProductImage, 0, len(ids))
	for pos, id := range ids {
		idx := slices.IndexFunc(p.Images, func(img ProductImage) bool { return img.ID == id })
		if idx < 0 || slices.ContainsFunc(ordered, func(img ProductImage) bool { return img.ID == id }) {
			return shared.NewDomainError("INVALID_ORDER", "Image order must list every image exactly once")
		}
		img := p.Images[idx]
		img.Position = pos
		ordered = append(ordered, img)
	}
	p.Images = ordered
	p.changed()
	return nil
}

// UpdateImageAlt sets the alternative text of an image
func (p *Product) UpdateImageAlt(imageID uuid.UUID, alt string) error {
	for i := range p.Images {
		if p.Images[i].ID == imageID {
			p.Images[i].AltText = alt
			p.changed()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Image not found")
}

// PrimaryImage returns the primary image, or nil
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return nil
}

// RecordRating stores the aggregated approved-review rating
func (p *Product) RecordRating(average decimal.Decimal, count int) {
	p.AverageRating = average.Round(1)
	p.ReviewCount = count
	p.UpdatedAt = time.Now()
}

func (p *Product) changed() {
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewCatalogChangedEvent(EventTypeProductChanged, AggregateTypeProduct, p.ID, p.Slug))
}

func normalizeSKU(sku string) (string, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return "", shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 64 {
		return "", shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 64 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.') {
			return "", shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, dots, underscores and hyphens")
		}
	}
	return sku, nil
}
