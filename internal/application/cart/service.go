// Package cart implements the storefront shopping cart.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcatalog "github.com/statyba/storefront/internal/application/catalog"
	"github.com/statyba/storefront/internal/domain/cart"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultTTL is how long an untouched cart is kept
const DefaultTTL = 7 * 24 * time.Hour

var errProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for purchase")

// ProductLookup loads the products referenced by cart lines
type ProductLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

// StockLookup reports stock levels of cart products
type StockLookup interface {
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]inventory.StockItem, error)
}

// Translator resolves localized product names
type Translator interface {
	Resolve(ctx context.Context, entityType string, ids []uuid.UUID, locale string) (map[uuid.UUID]localization.Values, error)
}

// ServiceConfig holds cart settings
type ServiceConfig struct {
	TTL      time.Duration
	Currency string
}

// Service manages carts
type Service struct {
	store      cart.Store
	products   ProductLookup
	stock      StockLookup
	translator Translator
	config     ServiceConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewService creates a cart service. stock and translator may be nil.
func NewService(store cart.Store, products ProductLookup, stock StockLookup, translator Translator, config ServiceConfig, logger *zap.Logger) *Service {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.Currency == "" {
		config.Currency = "EUR"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		products:   products,
		stock:      stock,
		translator: translator,
		config:     config,
		now:        time.Now,
		logger:     logger,
	}
}

// Resolve returns the owner's cart. A customer's own cart wins over a
// presented guest token; a guest cart seen by a signed-in customer is
// claimed for them.
func (s *Service) Resolve(ctx context.Context, owner Owner) (*cart.Cart, error) {
	if owner.CustomerID != nil {
		token, err := s.store.TokenForCustomer(ctx, *owner.CustomerID)
		if err != nil {
			return nil, err
		}
		if token != "" {
			c, err := s.store.Get(ctx, token)
			if err == nil {
				return c, nil
			}
			if !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
		}
	}
	if owner.Token == "" {
		return nil, shared.ErrNotFound
	}

	c, err := s.store.Get(ctx, owner.Token)
	if err != nil {
		return nil, err
	}
	if c.CustomerID != nil {
		// another customer's cart is never exposed through its token
		if owner.CustomerID == nil || *c.CustomerID != *owner.CustomerID {
			return nil, shared.ErrNotFound
		}
		return c, nil
	}
	if owner.CustomerID != nil {
		c.AssignTo(*owner.CustomerID)
	}
	return c, nil
}

// Get returns the priced cart; an owner without a cart sees an empty one
func (s *Service) Get(ctx context.Context, owner Owner, locale string) (*View, error) {
	c, err := s.Resolve(ctx, owner)
	if errors.Is(err, shared.ErrNotFound) {
		return &View{Lines: []LineView{}, Subtotal: decimal.Zero, Currency: s.config.Currency}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c, locale)
}

// AddItem adds units of a purchasable product, creating the cart when needed
func (s *Service) AddItem(ctx context.Context, owner Owner, req AddItemRequest, locale string) (*View, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errProductUnavailable
		}
		return nil, err
	}
	if !product.IsStorefrontVisible(s.now()) {
		return nil, errProductUnavailable
	}

	c, err := s.Resolve(ctx, owner)
	if errors.Is(err, shared.ErrNotFound) {
		c = cart.New()
		if owner.CustomerID != nil {
			c.AssignTo(*owner.CustomerID)
		}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if err := c.Add(req.ProductID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c, s.config.TTL); err != nil {
		return nil, err
	}
	return s.view(ctx, c, locale)
}

// UpdateItem sets the quantity of a line; zero removes it
func (s *Service) UpdateItem(ctx context.Context, owner Owner, productID uuid.UUID, req UpdateItemRequest, locale string) (*View, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.SetQuantity(productID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c, s.config.TTL); err != nil {
		return nil, err
	}
	return s.view(ctx, c, locale)
}

// RemoveItem drops a line
func (s *Service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, locale string) (*View, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	if err := s.store.Save(ctx, c, s.config.TTL); err != nil {
		return nil, err
	}
	return s.view(ctx, c, locale)
}

// Clear empties the owner's cart
func (s *Service) Clear(ctx context.Context, owner Owner) error {
	c, err := s.Resolve(ctx, owner)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	c.Clear()
	return s.store.Save(ctx, c, s.config.TTL)
}

// Discard deletes a cart after checkout
func (s *Service) Discard(ctx context.Context, c *cart.Cart) error {
	return s.store.Delete(ctx, c.Token)
}

// MergeGuest folds a guest cart into the customer's cart after login.
// When the customer has no cart the guest cart is claimed instead. The
// token of the customer's resulting cart is returned.
func (s *Service) MergeGuest(ctx context.Context, guestToken string, customerID uuid.UUID) (string, error) {
	guest, err := s.store.Get(ctx, guestToken)
	if errors.Is(err, shared.ErrNotFound) {
		token, err := s.store.TokenForCustomer(ctx, customerID)
		return token, err
	}
	if err != nil {
		return "", err
	}
	if guest.CustomerID != nil && *guest.CustomerID != customerID {
		return "", shared.ErrNotFound
	}

	own, err := s.Resolve(ctx, Owner{CustomerID: &customerID})
	if errors.Is(err, shared.ErrNotFound) || (err == nil && own.Token == guest.Token) {
		guest.AssignTo(customerID)
		return guest.Token, s.store.Save(ctx, guest, s.config.TTL)
	}
	if err != nil {
		return "", err
	}

	own.Merge(guest)
	if err := s.store.Save(ctx, own, s.config.TTL); err != nil {
		return "", err
	}
	if err := s.store.Delete(ctx, guest.Token); err != nil {
		s.logger.Warn("failed to delete merged guest cart", zap.Error(err))
	}
	s.logger.Debug("guest cart merged",
		zap.String("customer_id", customerID.String()),
		zap.Int("items", own.ItemCount()),
	)
	return own.Token, nil
}

// view prices the cart with current effective prices
func (s *Service) view(ctx context.Context, c *cart.Cart, locale string) (*View, error) {
	ids := c.ProductIDs()
	byID := make(map[uuid.UUID]*catalog.Product, len(ids))
	values := map[uuid.UUID]localization.Values{}
	stock := map[uuid.UUID]bool{}

	if len(ids) > 0 {
		products, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
		if s.translator != nil {
			if values, err = s.translator.Resolve(ctx, localization.EntityProduct, ids, locale); err != nil {
				return nil, err
			}
		}
		if stock, err = s.inStock(ctx, c); err != nil {
			return nil, err
		}
	}

	now := s.now()
	v := &View{
		Token:    c.Token,
		Lines:    make([]LineView, 0, len(c.Items)),
		Subtotal: decimal.Zero,
		Currency: s.config.Currency,
	}
	for _, item := range c.Items {
		p, ok := byID[item.ProductID]
		if !ok || !p.IsStorefrontVisible(now) {
			line := LineView{Quantity: item.Quantity, LineTotal: decimal.Zero, Unavailable: true}
			line.Product.ID = item.ProductID
			if ok {
				line.Product = appcatalog.ToProductCard(p, s.config.Currency, values[p.ID], false)
			}
			v.Lines = append(v.Lines, line)
			v.HasUnavailable = true
			continue
		}
		total := p.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
		v.Lines = append(v.Lines, LineView{
			Product:   appcatalog.ToProductCard(p, s.config.Currency, values[p.ID], stock[p.ID]),
			Quantity:  item.Quantity,
			LineTotal: total,
		})
		v.Subtotal = v.Subtotal.Add(total)
		v.ItemCount += item.Quantity
	}
	return v, nil
}

// inStock reports per product whether the requested quantity can be
// fulfilled. Products without a stock record are not tracked.
func (s *Service) inStock(ctx context.Context, c *cart.Cart) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(c.Items))
	for _, item := range c.Items {
		out[item.ProductID] = true
	}
	if s.stock == nil {
		return out, nil
	}
	items, err := s.stock.FindByProducts(ctx, c.ProductIDs())
	if err != nil {
		return nil, err
	}
	wanted := make(map[uuid.UUID]int, len(c.Items))
	for _, item := range c.Items {
		wanted[item.ProductID] = item.Quantity
	}
	for i := range items {
		out[items[i].ProductID] = items[i].CanFulfill(wanted[items[i].ProductID])
	}
	return out, nil
}
