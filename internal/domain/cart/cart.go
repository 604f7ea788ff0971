package cart

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
)

// Quantity bounds of a cart line
const (
	MinItemQuantity = 1
	MaxItemQuantity = 99
	MaxCartLines    = 50
)

// Item is a cart line. Prices are not stored; they are read from the catalog
// whenever the cart is viewed so customers always see current pricing.
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is a shopping cart identified by an opaque token.
// Guest carts have no customer; logging in attaches or merges them.
type Cart struct {
	Token      string     `json:"token"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Items      []Item     `json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// New creates an empty cart with a random token
func New() *Cart {
	now := time.Now()
	return &Cart{
		Token:     NewToken(),
		Items:     make([]Item, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewToken returns a random 32 character hex token
func NewToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Add puts qty units of a product into the cart, merging with an existing line
func (c *Cart) Add(productID uuid.UUID, qty int) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if qty < MinItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	if idx := c.indexOf(productID); idx >= 0 {
		total := c.Items[idx].Quantity + qty
		if total > MaxItemQuantity {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity per product cannot exceed 99")
		}
		c.Items[idx].Quantity = total
		c.UpdatedAt = time.Now()
		return nil
	}

	if qty > MaxItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity per product cannot exceed 99")
	}
	if len(c.Items) >= MaxCartLines {
		return shared.NewDomainError("CART_FULL", "Cart cannot hold more than 50 different products")
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty, AddedAt: time.Now()})
	c.UpdatedAt = time.Now()
	return nil
}

// SetQuantity replaces the quantity of a line; zero removes the line
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return shared.NewDomainError("NOT_FOUND", "Product is not in the cart")
	}
	if qty < 0 || qty > MaxItemQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 0 and 99")
	}
	if qty == 0 {
		c.Items = slices.Delete(c.Items, idx, idx+1)
	} else {
		c.Items[idx].Quantity = qty
	}
	c.UpdatedAt = time.Now()
	return nil
}

// Remove deletes a line; removing an absent product is a no-op
func (c *Cart) Remove(productID uuid.UUID) {
	if idx := c.indexOf(productID); idx >= 0 {
		c.Items = slices.Delete(c.Items, idx, idx+1)
		c.UpdatedAt = time.Now()
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = make([]Item, 0)
	c.UpdatedAt = time.Now()
}

// Merge moves the lines of other into c. Quantities of shared products are
// summed and capped at MaxItemQuantity; lines beyond MaxCartLines are dropped.
func (c *Cart) Merge(other *Cart) {
	if other == nil {
		return
	}
	for _, item := range other.Items {
		if idx := c.indexOf(item.ProductID); idx >= 0 {
			c.Items[idx].Quantity = min(c.Items[idx].Quantity+item.Quantity, MaxItemQuantity)
			continue
		}
		if len(c.Items) >= MaxCartLines {
			break
		}
		c.Items = append(c.Items, item)
	}
	c.UpdatedAt = time.Now()
}

// AssignTo attaches the cart to a customer
func (c *Cart) AssignTo(customerID uuid.UUID) {
	c.CustomerID = &customerID
	c.UpdatedAt = time.Now()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total number of units
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// ProductIDs returns the product of every line
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	return slices.IndexFunc(c.Items, func(i Item) bool { return i.ProductID == productID })
}

// Store persists carts with an expiry
type Store interface {
	Get(ctx context.Context, token string) (*Cart, error)
	// TokenForCustomer returns the token of the customer's cart, or "" when none exists
	TokenForCustomer(ctx context.Context, customerID uuid.UUID) (string, error)
	Save(ctx context.Context, cart *Cart, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}
