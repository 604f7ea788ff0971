package catalog

import (
	"strings"
	"time"

	"github.com/statyba/storefront/internal/domain/shared"
)

// Brand is a product manufacturer or label shown on the storefront
type Brand struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(120);not null"`
	Slug        string `gorm:"type:varchar(160);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	Website     string `gorm:"type:varchar(255)"`
	LogoKey     string `gorm:"type:varchar(255)"`
	IsEnabled   bool   `gorm:"not null;default:true"`
	SortOrder   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Brand) TableName() string {
	return "brands"
}

// NewBrand creates an enabled brand. An empty slug is derived from the name
func NewBrand(name, slug string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if err := validateName("Brand", name, 120); err != nil {
		return nil, err
	}
	resolved, err := resolveSlug(slug, name)
	if err != nil {
		return nil, err
	}

	brand := &Brand{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              resolved,
		IsEnabled:         true,
	}
	brand.AddDomainEvent(NewCatalogChangedEvent(EventTypeBrandChanged, AggregateTypeBrand, brand.ID, brand.Slug))
	return brand, nil
}

// Update changes the descriptive fields of the brand
func (b *Brand) Update(name, slug, description, website string, sortOrder int) error {
	name = strings.TrimSpace(name)
	if err := validateName("Brand", name, 120); err != nil {
		return err
	}
	resolved, err := resolveSlug(slug, name)
	if err != nil {
		return err
	}
	if len(website) > 255 {
		return shared.NewDomainError("INVALID_WEBSITE", "Website URL is too long")
	}

	b.Name = name
	b.Slug = resolved
	b.Description = description
	b.Website = website
	b.SortOrder = sortOrder
	b.changed()
	return nil
}

// SetLogo records the storage key of the brand logo
func (b *Brand) SetLogo(key string) {
	b.LogoKey = key
	b.changed()
}

// Enable shows the brand on the storefront
func (b *Brand) Enable() {
	if b.IsEnabled {
		return
	}
	b.IsEnabled = true
	b.changed()
}

// Disable hides the brand from the storefront
func (b *Brand) Disable() {
	if !b.IsEnabled {
		return
	}
	b.IsEnabled = false
	b.changed()
}

func (b *Brand) changed() {
	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewCatalogChangedEvent(EventTypeBrandChanged, AggregateTypeBrand, b.ID, b.Slug))
}
