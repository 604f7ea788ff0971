package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/shared"
)

// AddressRequest is a postal address form
type AddressRequest struct {
	FullName   string `json:"full_name" binding:"required,max=200"`
	Company    string `json:"company" binding:"max=200"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"required,max=120"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
	Phone      string `json:"phone" binding:"max=40"`
}

func (a *AddressRequest) toDomain() order.Address {
	if a == nil {
		return order.Address{}
	}
	return order.Address{
		FullName:   a.FullName,
		Company:    a.Company,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// CheckoutRequest is the checkout form. The billing address defaults to the
// shipping address.
type CheckoutRequest struct {
	Email           string          `json:"email" binding:"required,email,max=200"`
	ShippingAddress AddressRequest  `json:"shipping_address" binding:"required"`
	BillingAddress  *AddressRequest `json:"billing_address"`
	Notes           string          `json:"notes" binding:"max=1000"`
}

// TransitionRequest moves an order to another status
type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed processing shipped delivered cancelled refunded"`
	Reason string `json:"reason" binding:"max=500"`
}

// ListQuery filters order listings
type ListQuery struct {
	Status   string     `form:"status" binding:"omitempty,oneof=pending confirmed processing shipped delivered cancelled refunded"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Search   string     `form:"search" binding:"max=100"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q ListQuery) toFilter() order.Filter {
	f := shared.DefaultFilter()
	if q.Page > 0 {
		f.Page = q.Page
	}
	if q.PageSize > 0 {
		f.PageSize = q.PageSize
	}
	f = f.Normalize()

	filter := order.Filter{
		Status:   order.Status(q.Status),
		From:     q.From,
		Search:   q.Search,
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if q.To != nil {
		// the end date is inclusive
		end := q.To.AddDate(0, 0, 1)
		filter.To = &end
	}
	return filter
}

// ItemResponse is an order line
type ItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Response is the full order view
type Response struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	Email           string          `json:"email"`
	Status          string          `json:"status"`
	Currency        string          `json:"currency"`
	Items           []ItemResponse  `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingTotal   decimal.Decimal `json:"shipping_total"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	ShippingAddress order.Address   `json:"shipping_address"`
	BillingAddress  order.Address   `json:"billing_address"`
	Locale          string          `json:"locale"`
	Notes           string          `json:"notes,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	PlacedAt        time.Time       `json:"placed_at"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	Version         int             `json:"version"`
}

// SummaryResponse is an order row in listings
type SummaryResponse struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	Email      string          `json:"email"`
	Status     string          `json:"status"`
	ItemCount  int             `json:"item_count"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Currency   string          `json:"currency"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// InvoiceResult carries the rendered invoice
type InvoiceResult struct {
	Filename string
	PDF      []byte
	// URL is a signed download link when the invoice was archived
	URL string
}

// ToResponse converts a domain Order to Response
func ToResponse(o *order.Order) Response {
	items := make([]ItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemResponse{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		}
	}
	return Response{
		ID:              o.ID,
		Number:          o.Number,
		CustomerID:      o.CustomerID,
		Email:           o.Email,
		Status:          string(o.Status),
		Currency:        string(o.Currency),
		Items:           items,
		Subtotal:        o.Subtotal,
		ShippingTotal:   o.ShippingTotal,
		DiscountTotal:   o.DiscountTotal,
		GrandTotal:      o.GrandTotal,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		Locale:          o.Locale,
		Notes:           o.Notes,
		CancelReason:    o.CancelReason,
		PlacedAt:        o.PlacedAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		Version:         o.Version,
	}
}

// ToSummaryResponse converts a domain Order to SummaryResponse
func ToSummaryResponse(o *order.Order) SummaryResponse {
	return SummaryResponse{
		ID:         o.ID,
		Number:     o.Number,
		Email:      o.Email,
		Status:     string(o.Status),
		ItemCount:  o.ItemCount(),
		GrandTotal: o.GrandTotal,
		Currency:   string(o.Currency),
		PlacedAt:   o.PlacedAt,
	}
}
