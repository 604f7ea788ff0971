package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/domain/shared/valueobject"
)

// Address is a postal address snapshot stored on the order
type Address struct {
	FullName   string `gorm:"type:varchar(200)" json:"full_name"`
	Company    string `gorm:"type:varchar(200)" json:"company,omitempty"`
	Line1      string `gorm:"type:varchar(255)" json:"line1"`
	Line2      string `gorm:"type:varchar(255)" json:"line2,omitempty"`
	City       string `gorm:"type:varchar(120)" json:"city"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"type:varchar(2)" json:"country"`
	Phone      string `gorm:"type:varchar(40)" json:"phone,omitempty"`
}

// Validate checks the required address fields
func (a Address) Validate() error {
	if strings.TrimSpace(a.FullName) == "" || strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.PostalCode) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Name, street, city and postal code are required")
	}
	if len(a.Country) != 2 {
		return shared.NewDomainError("INVALID_ADDRESS", "Country must be a two-letter ISO code")
	}
	return nil
}

// IsZero reports whether no field is set
func (a Address) IsZero() bool {
	return a == Address{}
}

// Item is an order line with product data copied at checkout
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"column:sku;type:varchar(64);not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// Order is a placed customer order
type Order struct {
	shared.BaseAggregateRoot
	Number          string               `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID      *uuid.UUID           `gorm:"type:uuid;index"`
	Email           string               `gorm:"type:varchar(200);not null;index"`
	Status          Status               `gorm:"type:varchar(20);not null;index"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null"`
	Subtotal        decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	ShippingTotal   decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	DiscountTotal   decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	GrandTotal      decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	ShippingAddress Address              `gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  Address              `gorm:"embedded;embeddedPrefix:billing_"`
	Locale          string               `gorm:"type:varchar(16)"`
	Notes           string               `gorm:"type:text"`
	CancelReason    string               `gorm:"type:varchar(255)"`
	PlacedAt        time.Time            `gorm:"not null;index"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time

	Items []Item `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// LineInput describes one line placed at checkout
type LineInput struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// PlaceInput carries everything needed to place an order
type PlaceInput struct {
	CustomerID      *uuid.UUID
	Email           string
	Currency        valueobject.Currency
	Lines           []LineInput
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
	ShippingAddress Address
	BillingAddress  Address
	Locale          string
	Notes           string
	PlacedAt        time.Time
}

// Place creates a pending order from checkout data
func Place(in PlaceInput) (*Order, error) {
	if len(in.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot place an order without items")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Order email is required")
	}
	if err := in.ShippingAddress.Validate(); err != nil {
		return nil, err
	}
	billing := in.BillingAddress
	if billing.IsZero() {
		billing = in.ShippingAddress
	} else if err := billing.Validate(); err != nil {
		return nil, err
	}
	if in.Shipping.IsNegative() || in.Discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Shipping and discount cannot be negative")
	}
	if in.Currency == "" {
		in.Currency = valueobject.DefaultCurrency
	}
	if in.PlacedAt.IsZero() {
		in.PlacedAt = time.Now()
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            NewNumber(in.PlacedAt),
		CustomerID:        in.CustomerID,
		Email:             strings.ToLower(strings.TrimSpace(in.Email)),
		Status:            StatusPending,
		Currency:          in.Currency,
		ShippingTotal:     in.Shipping.Round(2),
		DiscountTotal:     in.Discount.Round(2),
		ShippingAddress:   in.ShippingAddress,
		BillingAddress:    billing,
		Locale:            in.Locale,
		Notes:             in.Notes,
		PlacedAt:          in.PlacedAt,
		Items:             make([]Item, 0, len(in.Lines)),
	}

	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		unit := line.UnitPrice.Round(2)
		o.Items = append(o.Items, Item{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			SKU:       line.SKU,
			Name:      line.Name,
			UnitPrice: unit,
			Quantity:  line.Quantity,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	o.recalculateTotals()

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return o, nil
}

// TransitionTo moves the order to target, stamping the matching timestamp
func (o *Order) TransitionTo(target Status, reason string) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	if target == StatusCancelled && strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	switch target {
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = reason
	}
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	if target == StatusDelivered {
		o.AddDomainEvent(NewOrderDeliveredEvent(o))
	}
	return nil
}

// ContainsProduct reports whether any line is for productID
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// ItemCount returns the number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// GrandTotalMoney returns the grand total as Money
func (o *Order) GrandTotalMoney() valueobject.Money {
	m, err := valueobject.NewMoney(o.GrandTotal, o.Currency)
	if err != nil {
		return valueobject.Zero(valueobject.DefaultCurrency)
	}
	return m
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal
	if o.DiscountTotal.GreaterThan(subtotal) {
		o.DiscountTotal = subtotal
	}
	o.GrandTotal = subtotal.Sub(o.DiscountTotal).Add(o.ShippingTotal)
}

// Filter narrows order listings
type Filter struct {
	CustomerID *uuid.UUID
	Status     Status
	From       *time.Time
	To         *time.Time
	Search     string
	Page       int
	PageSize   int
}

// Repository persists orders
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	List(ctx context.Context, filter Filter) ([]Order, int64, error)
	// HasDeliveredProduct reports whether the customer received productID in any delivered order
	HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	CountDelivered(ctx context.Context, customerID uuid.UUID) (int64, error)
	Save(ctx context.Context, order *Order) error
}
