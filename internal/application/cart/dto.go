package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcatalog "github.com/statyba/storefront/internal/application/catalog"
)

// Owner identifies whose cart a request acts on. A signed-in customer may
// also present the token of a guest cart started before login.
type Owner struct {
	Token      string
	CustomerID *uuid.UUID
}

// IsAnonymous reports whether the owner carries neither token nor customer
func (o Owner) IsAnonymous() bool {
	return o.Token == "" && o.CustomerID == nil
}

// AddItemRequest adds units of a product
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

// UpdateItemRequest sets the quantity of a line; zero removes it
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=99"`
}

// LineView is a priced cart line
type LineView struct {
	Product   appcatalog.ProductCard `json:"product"`
	Quantity  int                    `json:"quantity"`
	LineTotal decimal.Decimal        `json:"line_total"`
	// Unavailable lines are excluded from the subtotal and block checkout
	Unavailable bool `json:"unavailable"`
}

// View is the cart as shown to the customer
type View struct {
	Token          string          `json:"token,omitempty"`
	Lines          []LineView      `json:"lines"`
	ItemCount      int             `json:"item_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Currency       string          `json:"currency"`
	HasUnavailable bool            `json:"has_unavailable"`
}
