package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcart "github.com/statyba/storefront/internal/application/cart"
	appinventory "github.com/statyba/storefront/internal/application/inventory"
	"github.com/statyba/storefront/internal/application/transaction"
	"github.com/statyba/storefront/internal/domain/cart"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/domain/shared/valueobject"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var errCheckoutInProgress = shared.NewDomainError("CHECKOUT_IN_PROGRESS", "A checkout with this idempotency key is already in progress")

// Carts gives checkout access to the owner's cart
type Carts interface {
	Resolve(ctx context.Context, owner appcart.Owner) (*cart.Cart, error)
	Discard(ctx context.Context, c *cart.Cart) error
}

// ProductLookup loads the products in a cart
type ProductLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

// Translator resolves product names in the order locale
type Translator interface {
	Resolve(ctx context.Context, entityType string, ids []uuid.UUID, locale string) (map[uuid.UUID]localization.Values, error)
}

// CheckoutConfig holds pricing rules
type CheckoutConfig struct {
	Currency     valueobject.Currency
	FlatShipping decimal.Decimal
	// FreeShippingThreshold waives shipping when the subtotal reaches it; nil disables
	FreeShippingThreshold *decimal.Decimal
	IdempotencyTTL        time.Duration
}

// ShippingFor returns the shipping charge for subtotal
func (c CheckoutConfig) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if c.FreeShippingThreshold != nil && subtotal.GreaterThanOrEqual(*c.FreeShippingThreshold) {
		return decimal.Zero
	}
	return c.FlatShipping
}

// CheckoutService turns carts into orders
type CheckoutService struct {
	carts          Carts
	products       ProductLookup
	translator     Translator
	orderRepo      order.Repository
	txScope        transaction.Scope
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	metrics        *telemetry.StoreMetrics
	config         CheckoutConfig
	now            func() time.Time
	logger         *zap.Logger
}

// NewCheckoutService creates a checkout service. translator and idempotency may be nil.
func NewCheckoutService(
	carts Carts,
	products ProductLookup,
	translator Translator,
	orderRepo order.Repository,
	txScope transaction.Scope,
	idempotency shared.IdempotencyStore,
	config CheckoutConfig,
	logger *zap.Logger,
) *CheckoutService {
	if config.Currency == "" {
		config.Currency = valueobject.DefaultCurrency
	}
	if config.IdempotencyTTL <= 0 {
		config.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		carts:       carts,
		products:    products,
		translator:  translator,
		orderRepo:   orderRepo,
		txScope:     txScope,
		idempotency: idempotency,
		config:      config,
		now:         time.Now,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the collector fed by placed orders; nil disables it
func (s *CheckoutService) SetBusinessMetrics(m *telemetry.StoreMetrics) {
	s.metrics = m
}

func (s *CheckoutService) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	shared.PublishPending(ctx, s.eventPublisher, aggregates...)
}

// Checkout places an order for the owner's cart. Stock for every line is
// reserved in the same transaction that stores the order. Repeating a
// checkout with the same idempotency key returns the first order.
func (s *CheckoutService) Checkout(ctx context.Context, owner appcart.Owner, req CheckoutRequest, locale, idempotencyKey string) (*Response, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "checkout", telemetry.AttrLocale, locale)
	defer span.End()

	claim := ""
	if idempotencyKey != "" && s.idempotency != nil {
		claim = claimKey(owner, idempotencyKey)
		if resp, err := s.replay(ctx, claim); resp != nil || err != nil {
			return resp, err
		}
		fresh, err := s.idempotency.MarkProcessed(ctx, claim, s.config.IdempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			if resp, err := s.replay(ctx, claim); resp != nil || err != nil {
				return resp, err
			}
			return nil, errCheckoutInProgress
		}
	}

	o, err := s.place(ctx, owner, req, locale)
	if err != nil {
		telemetry.RecordError(span, err)
		if claim != "" {
			if ferr := s.idempotency.Forget(ctx, claim); ferr != nil {
				s.logger.Warn("failed to release checkout key", zap.Error(ferr))
			}
		}
		return nil, err
	}

	if claim != "" {
		if err := s.idempotency.Remember(ctx, claim, o.ID.String(), s.config.IdempotencyTTL); err != nil {
			s.logger.Error("failed to remember checkout result", zap.String("order_number", o.Number), zap.Error(err))
		}
	}
	telemetry.SetAttributes(span, telemetry.AttrOrderNumber, o.Number)

	resp := ToResponse(o)
	return &resp, nil
}

func (s *CheckoutService) place(ctx context.Context, owner appcart.Owner, req CheckoutRequest, locale string) (*order.Order, error) {
	c, err := s.carts.Resolve(ctx, owner)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && c.IsEmpty()) {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot place an order without items")
	}
	if err != nil {
		return nil, err
	}

	lines, err := s.lines(ctx, c, locale)
	if err != nil {
		return nil, err
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Round(2).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	reserve := make([]appinventory.Line, len(c.Items))
	for i, item := range c.Items {
		reserve[i] = appinventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	var (
		o     *order.Order
		stock []shared.AggregateRoot
	)
	err = s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		var err error
		o, err = order.Place(order.PlaceInput{
			CustomerID:      owner.CustomerID,
			Email:           req.Email,
			Currency:        s.config.Currency,
			Lines:           lines,
			Shipping:        s.config.ShippingFor(subtotal),
			ShippingAddress: req.ShippingAddress.toDomain(),
			BillingAddress:  req.BillingAddress.toDomain(),
			Locale:          locale,
			Notes:           req.Notes,
			PlacedAt:        s.now(),
		})
		if err != nil {
			return err
		}
		items, err := appinventory.ApplyLines(ctx, repos, appinventory.OperationReserve, o.Number, reserve)
		if err != nil {
			return err
		}
		for _, item := range items {
			stock = append(stock, item)
		}
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Discard(ctx, c); err != nil {
		s.logger.Warn("failed to discard cart after checkout", zap.String("order_number", o.Number), zap.Error(err))
	}
	s.publishDomainEvents(ctx, o)
	s.publishDomainEvents(ctx, stock...)
	s.metrics.RecordOrderPlaced(ctx, string(o.Currency), locale, o.ItemCount(), o.GrandTotal)

	s.logger.Info("order placed",
		zap.String("order_number", o.Number),
		zap.Int("items", o.ItemCount()),
		zap.Stringer("grand_total", o.GrandTotalMoney()),
	)
	return o, nil
}

// lines snapshots every cart line; any product that can no longer be bought
// fails the checkout
func (s *CheckoutService) lines(ctx context.Context, c *cart.Cart, locale string) ([]order.LineInput, error) {
	ids := c.ProductIDs()
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	values := map[uuid.UUID]localization.Values{}
	if s.translator != nil {
		if values, err = s.translator.Resolve(ctx, localization.EntityProduct, ids, locale); err != nil {
			return nil, err
		}
	}

	now := s.now()
	out := make([]order.LineInput, 0, len(c.Items))
	for _, item := range c.Items {
		p, ok := byID[item.ProductID]
		if !ok || !p.IsStorefrontVisible(now) {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE",
				fmt.Sprintf("Product %s is no longer available", item.ProductID))
		}
		out = append(out, order.LineInput{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      values[p.ID].Get("name", p.Name),
			UnitPrice: p.EffectivePrice(),
			Quantity:  item.Quantity,
		})
	}
	return out, nil
}

// replay returns the order recorded for claim, if any
func (s *CheckoutService) replay(ctx context.Context, claim string) (*Response, error) {
	value, err := s.idempotency.Recall(ctx, claim)
	if err != nil || value == "" {
		return nil, err
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("invalid checkout record %q: %w", value, err)
	}
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("checkout replayed", zap.String("order_number", o.Number))
	resp := ToResponse(o)
	return &resp, nil
}

// claimKey scopes an idempotency key to the customer or guest cart
func claimKey(owner appcart.Owner, key string) string {
	if owner.CustomerID != nil {
		return "checkout:" + owner.CustomerID.String() + ":" + key
	}
	return "checkout:" + owner.Token + ":" + key
}
