package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/localization"
)

// ---------------------------------------------------------------------------
// Brands
// ---------------------------------------------------------------------------

// CreateBrandRequest represents a request to create a brand
type CreateBrandRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Slug        string `json:"slug" binding:"omitempty,slug"`
	Description string `json:"description" binding:"max=5000"`
	Website     string `json:"website" binding:"omitempty,url,max=255"`
	SortOrder   int    `json:"sort_order"`
	IsEnabled   *bool  `json:"is_enabled"`
}

// UpdateBrandRequest represents a request to update a brand
type UpdateBrandRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Slug        string `json:"slug" binding:"omitempty,slug"`
	Description string `json:"description" binding:"max=5000"`
	Website     string `json:"website" binding:"omitempty,url,max=255"`
	SortOrder   int    `json:"sort_order"`
	IsEnabled   *bool  `json:"is_enabled"`
}

// BrandResponse represents a brand in API responses
type BrandResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Website     string    `json:"website,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	IsEnabled   bool      `json:"is_enabled"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// BrandListFilter represents filter options for brand lists
type BrandListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=120"`
	Slug        string     `json:"slug" binding:"omitempty,slug"`
	Description string     `json:"description" binding:"max=5000"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	IsVisible   *bool      `json:"is_visible"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Slug        string `json:"slug" binding:"omitempty,slug"`
	Description string `json:"description" binding:"max=5000"`
	SortOrder   int    `json:"sort_order"`
	IsVisible   *bool  `json:"is_visible"`
}

// MoveCategoryRequest re-parents a category; a nil parent makes it a root
type MoveCategoryRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	ParentID    *uuid.UUID         `json:"parent_id"`
	Level       int                `json:"level"`
	SortOrder   int                `json:"sort_order"`
	IsVisible   bool               `json:"is_visible"`
	Children    []CategoryResponse `json:"children,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Version     int                `json:"version"`
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name             string           `json:"name" binding:"required,min=1,max=200"`
	Slug             string           `json:"slug" binding:"omitempty,slug"`
	SKU              string           `json:"sku" binding:"required,min=1,max=64"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description" binding:"max=500"`
	Price            decimal.Decimal  `json:"price" binding:"required"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
	BrandID          *uuid.UUID       `json:"brand_id"`
	CategoryIDs      []uuid.UUID      `json:"category_ids"`
	IsFeatured       bool             `json:"is_featured"`
	IsVisible        *bool            `json:"is_visible"`
	WeightGrams      int              `json:"weight_grams" binding:"min=0"`
	SEOTitle         string           `json:"seo_title" binding:"max=200"`
	SEODescription   string           `json:"seo_description" binding:"max=500"`
}

// UpdateProductRequest represents a partial product update; nil fields are kept
type UpdateProductRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Slug             *string          `json:"slug" binding:"omitempty,slug"`
	SKU              *string          `json:"sku" binding:"omitempty,min=1,max=64"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"short_description" binding:"omitempty,max=500"`
	Price            *decimal.Decimal `json:"price"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
	ClearSalePrice   bool             `json:"clear_sale_price"`
	BrandID          *uuid.UUID       `json:"brand_id"`
	ClearBrand       bool             `json:"clear_brand"`
	CategoryIDs      *[]uuid.UUID     `json:"category_ids"`
	IsFeatured       *bool            `json:"is_featured"`
	IsVisible        *bool            `json:"is_visible"`
	WeightGrams      *int             `json:"weight_grams" binding:"omitempty,min=0"`
	SEOTitle         *string          `json:"seo_title" binding:"omitempty,max=200"`
	SEODescription   *string          `json:"seo_description" binding:"omitempty,max=500"`
}

// PublishProductRequest optionally schedules publication
type PublishProductRequest struct {
	PublishAt *time.Time `json:"publish_at"`
}

// ImageResponse represents a product image
type ImageResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text"`
	Position  int       `json:"position"`
	IsPrimary bool      `json:"is_primary"`
}

// BrandSummary is the brand shown on a product page
type BrandSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// RatingResponse is the aggregated rating shown with a product
type RatingResponse struct {
	Average decimal.Decimal `json:"average"`
	Count   int             `json:"count"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	SKU              string           `json:"sku"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description"`
	Price            decimal.Decimal  `json:"price"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
	EffectivePrice   decimal.Decimal  `json:"effective_price"`
	OnSale           bool             `json:"on_sale"`
	Currency         string           `json:"currency"`
	Brand            *BrandSummary    `json:"brand,omitempty"`
	BrandID          *uuid.UUID       `json:"brand_id"`
	CategoryIDs      []uuid.UUID      `json:"category_ids"`
	Status           string           `json:"status"`
	IsVisible        bool             `json:"is_visible"`
	IsFeatured       bool             `json:"is_featured"`
	PublishedAt      *time.Time       `json:"published_at"`
	WeightGrams      int              `json:"weight_grams"`
	SEOTitle         string           `json:"seo_title"`
	SEODescription   string           `json:"seo_description"`
	Rating           RatingResponse   `json:"rating"`
	Images           []ImageResponse  `json:"images"`
	InStock          bool             `json:"in_stock"`
	Locale           string           `json:"locale,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Version          int              `json:"version"`
}

// ProductCard is the compact product shown in listings and galleries
type ProductCard struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	ShortDescription string           `json:"short_description"`
	Price            decimal.Decimal  `json:"price"`
	SalePrice        *decimal.Decimal `json:"sale_price"`
	EffectivePrice   decimal.Decimal  `json:"effective_price"`
	OnSale           bool             `json:"on_sale"`
	Currency         string           `json:"currency"`
	Image            *ImageResponse   `json:"image"`
	IsFeatured       bool             `json:"is_featured"`
	Rating           RatingResponse   `json:"rating"`
	InStock          bool             `json:"in_stock"`
}

// ProductListQuery holds storefront and admin listing filters
type ProductListQuery struct {
	Search     string           `form:"search"`
	Brands     []string         `form:"brand"`
	Category   string           `form:"category"`
	Collection string           `form:"collection"`
	MinPrice   *decimal.Decimal `form:"min_price"`
	MaxPrice   *decimal.Decimal `form:"max_price"`
	InStock    bool             `form:"in_stock"`
	Featured   bool             `form:"featured"`
	Status     string           `form:"status" binding:"omitempty,oneof=draft published archived"`
	Sort       string           `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc name rating"`
	Page       int              `form:"page" binding:"omitempty,min=1"`
	PageSize   int              `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

// CollectionRulesRequest mirrors catalog.CollectionRules with JSON tags
type CollectionRulesRequest struct {
	BrandIDs     []uuid.UUID      `json:"brand_ids"`
	CategoryIDs  []uuid.UUID      `json:"category_ids"`
	MinPrice     *decimal.Decimal `json:"min_price"`
	MaxPrice     *decimal.Decimal `json:"max_price"`
	FeaturedOnly bool             `json:"featured_only"`
}

// CreateCollectionRequest represents a request to create a collection
type CreateCollectionRequest struct {
	Name           string                  `json:"name" binding:"required,min=1,max=120"`
	Slug           string                  `json:"slug" binding:"omitempty,slug"`
	Description    string                  `json:"description"`
	Type           string                  `json:"type" binding:"omitempty,oneof=manual automatic"`
	SortOrder      int                     `json:"sort_order"`
	GalleryColumns int                     `json:"gallery_columns" binding:"omitempty,min=1,max=6"`
	IsVisible      *bool                   `json:"is_visible"`
	ProductIDs     []uuid.UUID             `json:"product_ids"`
	Rules          *CollectionRulesRequest `json:"rules"`
}

// UpdateCollectionRequest represents a request to update a collection
type UpdateCollectionRequest struct {
	Name           string                  `json:"name" binding:"required,min=1,max=120"`
	Slug           string                  `json:"slug" binding:"omitempty,slug"`
	Description    string                  `json:"description"`
	SortOrder      int                     `json:"sort_order"`
	GalleryColumns int                     `json:"gallery_columns" binding:"omitempty,min=1,max=6"`
	IsVisible      *bool                   `json:"is_visible"`
	ProductIDs     *[]uuid.UUID            `json:"product_ids"`
	Rules          *CollectionRulesRequest `json:"rules"`
}

// CollectionResponse represents a collection in API responses
type CollectionResponse struct {
	ID             uuid.UUID               `json:"id"`
	Name           string                  `json:"name"`
	Slug           string                  `json:"slug"`
	Description    string                  `json:"description"`
	Type           string                  `json:"type"`
	IsVisible      bool                    `json:"is_visible"`
	SortOrder      int                     `json:"sort_order"`
	GalleryColumns int                     `json:"gallery_columns"`
	ProductIDs     []uuid.UUID             `json:"product_ids,omitempty"`
	Rules          *CollectionRulesRequest `json:"rules,omitempty"`
	UpdatedAt      time.Time               `json:"updated_at"`
	Version        int                     `json:"version"`
}

// GalleryQuery selects one page of a collection gallery
type GalleryQuery struct {
	After    *uuid.UUID `form:"after"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=48"`
}

// GalleryTileResponse is one product in a gallery row
type GalleryTileResponse struct {
	Span    int         `json:"span"`
	Product ProductCard `json:"product"`
}

// GalleryRowResponse is one row of the gallery
type GalleryRowResponse struct {
	Tiles []GalleryTileResponse `json:"tiles"`
}

// GalleryResponse is one arranged gallery page
type GalleryResponse struct {
	Collection CollectionResponse   `json:"collection"`
	Columns    int                  `json:"columns"`
	Rows       []GalleryRowResponse `json:"rows"`
	NextCursor *uuid.UUID           `json:"next_cursor"`
	HasMore    bool                 `json:"has_more"`
}

// ---------------------------------------------------------------------------
// Media
// ---------------------------------------------------------------------------

// UploadImageRequest carries an uploaded image file
type UploadImageRequest struct {
	Filename    string
	ContentType string
	Data        []byte
	AltText     string
}

// UpdateImageRequest changes image metadata
type UpdateImageRequest struct {
	AltText   *string `json:"alt_text" binding:"omitempty,max=255"`
	IsPrimary bool    `json:"is_primary"`
}

// ReorderImagesRequest lists every image ID in the new order
type ReorderImagesRequest struct {
	ImageIDs []uuid.UUID `json:"image_ids" binding:"required,min=1"`
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

// ToBrandResponse converts a domain Brand to BrandResponse
func ToBrandResponse(b *catalog.Brand, logoURL string, values localization.Values) BrandResponse {
	return BrandResponse{
		ID:          b.ID,
		Name:        values.Get("name", b.Name),
		Slug:        values.Get("slug", b.Slug),
		Description: values.Get("description", b.Description),
		Website:     b.Website,
		LogoURL:     logoURL,
		IsEnabled:   b.IsEnabled,
		SortOrder:   b.SortOrder,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

// ToCategoryResponse converts a domain Category to CategoryResponse without children
func ToCategoryResponse(c *catalog.Category, values localization.Values) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        values.Get("name", c.Name),
		Slug:        values.Get("slug", c.Slug),
		Description: values.Get("description", c.Description),
		ParentID:    c.ParentID,
		Level:       c.Level,
		SortOrder:   c.SortOrder,
		IsVisible:   c.IsVisible,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

// ToImageResponse converts a domain ProductImage to ImageResponse
func ToImageResponse(img *catalog.ProductImage) ImageResponse {
	return ImageResponse{
		ID:        img.ID,
		URL:       img.URL,
		AltText:   img.AltText,
		Position:  img.Position,
		IsPrimary: img.IsPrimary,
	}
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product, currency string, values localization.Values) ProductResponse {
	images := make([]ImageResponse, len(p.Images))
	for i := range p.Images {
		images[i] = ToImageResponse(&p.Images[i])
	}
	categoryIDs := p.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = make([]uuid.UUID, 0)
	}
	return ProductResponse{
		ID:               p.ID,
		Name:             values.Get("name", p.Name),
		Slug:             values.Get("slug", p.Slug),
		SKU:              p.SKU,
		Description:      values.Get("description", p.Description),
		ShortDescription: values.Get("short_description", p.ShortDescription),
		Price:            p.Price,
		SalePrice:        p.SalePrice,
		EffectivePrice:   p.EffectivePrice(),
		OnSale:           p.IsOnSale(),
		Currency:         currency,
		BrandID:          p.BrandID,
		CategoryIDs:      categoryIDs,
		Status:           string(p.Status),
		IsVisible:        p.IsVisible,
		IsFeatured:       p.IsFeatured,
		PublishedAt:      p.PublishedAt,
		WeightGrams:      p.WeightGrams,
		SEOTitle:         values.Get("seo_title", p.SEOTitle),
		SEODescription:   values.Get("seo_description", p.SEODescription),
		Rating:           RatingResponse{Average: p.AverageRating, Count: p.ReviewCount},
		Images:           images,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}

// ToProductCard converts a domain Product to a listing card
func ToProductCard(p *catalog.Product, currency string, values localization.Values, inStock bool) ProductCard {
	card := ProductCard{
		ID:               p.ID,
		Name:             values.Get("name", p.Name),
		Slug:             values.Get("slug", p.Slug),
		ShortDescription: values.Get("short_description", p.ShortDescription),
		Price:            p.Price,
		SalePrice:        p.SalePrice,
		EffectivePrice:   p.EffectivePrice(),
		OnSale:           p.IsOnSale(),
		Currency:         currency,
		IsFeatured:       p.IsFeatured,
		Rating:           RatingResponse{Average: p.AverageRating, Count: p.ReviewCount},
		InStock:          inStock,
	}
	if img := p.PrimaryImage(); img != nil {
		resp := ToImageResponse(img)
		card.Image = &resp
	}
	return card
}

// ToCollectionResponse converts a domain Collection to CollectionResponse
func ToCollectionResponse(c *catalog.Collection, values localization.Values) CollectionResponse {
	resp := CollectionResponse{
		ID:             c.ID,
		Name:           values.Get("name", c.Name),
		Slug:           values.Get("slug", c.Slug),
		Description:    values.Get("description", c.Description),
		Type:           string(c.Type),
		IsVisible:      c.IsVisible,
		SortOrder:      c.SortOrder,
		GalleryColumns: c.GalleryColumns,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
	if c.IsManual() {
		resp.ProductIDs = c.ProductIDs()
	} else {
		resp.Rules = &CollectionRulesRequest{
			BrandIDs:     c.Rules.BrandIDs,
			CategoryIDs:  c.Rules.CategoryIDs,
			MinPrice:     c.Rules.MinPrice,
			MaxPrice:     c.Rules.MaxPrice,
			FeaturedOnly: c.Rules.FeaturedOnly,
		}
	}
	return resp
}

func (r *CollectionRulesRequest) toDomain() catalog.CollectionRules {
	if r == nil {
		return catalog.CollectionRules{}
	}
	return catalog.CollectionRules{
		BrandIDs:     r.BrandIDs,
		CategoryIDs:  r.CategoryIDs,
		MinPrice:     r.MinPrice,
		MaxPrice:     r.MaxPrice,
		FeaturedOnly: r.FeaturedOnly,
	}
}
