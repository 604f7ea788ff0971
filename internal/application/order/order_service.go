// Package order implements checkout, order history and order fulfilment.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/statyba/storefront/internal/application/inventory"
	"github.com/statyba/storefront/internal/application/transaction"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/printing"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var errInvoicesDisabled = shared.NewDomainError("INVOICES_DISABLED", "Invoice rendering is not configured")

// InvoiceGenerator renders order invoices
type InvoiceGenerator interface {
	Generate(ctx context.Context, o *order.Order, locale string) (*printing.Invoice, error)
}

// stockOperations maps a target status to the stock change it triggers
var stockOperations = map[order.Status]appinventory.Operation{
	order.StatusShipped:   appinventory.OperationCommit,
	order.StatusCancelled: appinventory.OperationRelease,
	order.StatusRefunded:  appinventory.OperationRestock,
}

// Service serves order history to customers and fulfilment to the back office
type Service struct {
	orderRepo      order.Repository
	txScope        transaction.Scope
	invoicer       InvoiceGenerator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates an order service. A nil invoicer disables invoices.
func NewService(orderRepo order.Repository, txScope transaction.Scope, invoicer InvoiceGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orderRepo: orderRepo,
		txScope:   txScope,
		invoicer:  invoicer,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *Service) publishDomainEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	shared.PublishPending(ctx, s.eventPublisher, aggregates...)
}

// ListForCustomer lists the customer's own orders, newest first
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, query ListQuery) (shared.Paginated[SummaryResponse], error) {
	filter := query.toFilter()
	filter.CustomerID = &customerID
	return s.list(ctx, filter)
}

// GetForCustomer returns one of the customer's orders by number. Orders of
// other customers are reported as not found.
func (s *Service) GetForCustomer(ctx context.Context, customerID uuid.UUID, number string) (*Response, error) {
	if !order.IsValidNumber(number) {
		return nil, shared.ErrNotFound
	}
	o, err := s.orderRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.CustomerID == nil || *o.CustomerID != customerID {
		return nil, shared.ErrNotFound
	}
	resp := ToResponse(o)
	return &resp, nil
}

// List lists all orders for the back office
func (s *Service) List(ctx context.Context, query ListQuery) (shared.Paginated[SummaryResponse], error) {
	return s.list(ctx, query.toFilter())
}

// Get returns an order by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Response, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(o)
	return &resp, nil
}

// Transition moves an order to another status. Shipping commits the
// reserved stock, cancelling releases it and refunding restocks the units.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, req TransitionRequest, actorID *uuid.UUID) (*Response, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "transition",
		telemetry.AttrOrderID, id.String(),
		"target", req.Status,
	)
	defer span.End()

	target := order.Status(req.Status)
	var (
		o     *order.Order
		from  order.Status
		stock []shared.AggregateRoot
	)
	err := s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.TransitionTo(target, req.Reason); err != nil {
			return err
		}

		if op, ok := stockOperations[target]; ok {
			items, err := appinventory.ApplyLines(ctx, repos, op, o.Number, stockLines(o))
			if err != nil {
				return err
			}
			for _, item := range items {
				stock = append(stock, item)
			}
		}
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, o)
	s.publishDomainEvents(ctx, stock...)

	fields := []zap.Field{
		zap.String("order_number", o.Number),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	}
	if actorID != nil {
		fields = append(fields, zap.String("actor_id", actorID.String()))
	}
	s.logger.Info("order status changed", fields...)

	resp := ToResponse(o)
	return &resp, nil
}

// Invoice renders the invoice PDF of an order in locale, defaulting to the
// order's own locale
func (s *Service) Invoice(ctx context.Context, id uuid.UUID, locale string) (*InvoiceResult, error) {
	if s.invoicer == nil {
		return nil, errInvoicesDisabled
	}
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if locale == "" {
		locale = o.Locale
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	inv, err := s.invoicer.Generate(ctx, o, locale)
	if err != nil {
		var renderErr *printing.RenderError
		if errors.As(err, &renderErr) {
			s.logger.Error("invoice rendering failed",
				zap.String("order_number", o.Number),
				zap.String("code", renderErr.Code),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return &InvoiceResult{Filename: o.Number + ".pdf", PDF: inv.PDF, URL: inv.URL}, nil
}

func (s *Service) list(ctx context.Context, filter order.Filter) (shared.Paginated[SummaryResponse], error) {
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[SummaryResponse]{}, err
	}
	out := make([]SummaryResponse, len(orders))
	for i := range orders {
		out[i] = ToSummaryResponse(&orders[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

func stockLines(o *order.Order) []appinventory.Line {
	lines := make([]appinventory.Line, len(o.Items))
	for i, item := range o.Items {
		lines[i] = appinventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}
