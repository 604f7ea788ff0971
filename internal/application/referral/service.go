// Package referral rewards customers whose invitees complete a first order.
package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/order"
	"github.com/statyba/storefront/internal/domain/referral"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Config holds the reward settings
type Config struct {
	Enabled      bool
	RewardAmount decimal.Decimal
	Currency     valueobject.Currency
}

// StatsResponse summarises a referrer's invitations
type StatsResponse struct {
	Code         string          `json:"code"`
	Total        int             `json:"total"`
	Pending      int             `json:"pending"`
	Completed    int             `json:"completed"`
	TotalRewards decimal.Decimal `json:"total_rewards"`
	Currency     string          `json:"currency"`
}

// Service completes referrals and reports referrer stats
type Service struct {
	repo           referral.Repository
	eventPublisher shared.EventPublisher
	config         Config
	now            func() time.Time
	logger         *zap.Logger
}

// NewService creates a referral service
func NewService(repo referral.Repository, config Config, logger *zap.Logger) *Service {
	if config.Currency == "" {
		config.Currency = valueobject.DefaultCurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, config: config, now: time.Now, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Stats returns the referral summary of a customer
func (s *Service) Stats(ctx context.Context, referrerID uuid.UUID, code string) (*StatsResponse, error) {
	referrals, err := s.repo.ListByReferrer(ctx, referrerID)
	if err != nil {
		return nil, err
	}
	stats := referral.Summarize(referrals)
	return &StatsResponse{
		Code:         code,
		Total:        stats.Total,
		Pending:      stats.Pending,
		Completed:    stats.Completed,
		TotalRewards: stats.TotalRewards,
		Currency:     string(s.config.Currency),
	}, nil
}

// CompleteFor completes the pending referral of refereeID, if any. It
// reports whether a referral was completed.
func (s *Service) CompleteFor(ctx context.Context, refereeID, orderID uuid.UUID) (bool, error) {
	if !s.config.Enabled {
		return false, nil
	}
	r, err := s.repo.FindByReferee(ctx, refereeID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if r.Status != referral.StatusPending {
		return false, nil
	}

	if err := r.Complete(orderID, s.config.RewardAmount, s.now()); err != nil {
		return false, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return false, fmt.Errorf("save referral: %w", err)
	}
	shared.PublishPending(ctx, s.eventPublisher, r)

	s.logger.Info("referral completed",
		zap.String("referrer_id", r.ReferrerID.String()),
		zap.String("referee_id", refereeID.String()),
		zap.Stringer("reward", r.Reward()),
	)
	return true, nil
}

// OrderDeliveredHandler completes a referral when the referee receives an order
type OrderDeliveredHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewOrderDeliveredHandler creates the handler
func NewOrderDeliveredHandler(service *Service, logger *zap.Logger) *OrderDeliveredHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderDeliveredHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderDeliveredHandler) EventTypes() []string {
	return []string{order.EventTypeOrderDelivered}
}

// Handle processes an OrderDeliveredEvent. Guest orders are ignored.
func (h *OrderDeliveredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	delivered, ok := event.(*order.OrderDeliveredEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", order.EventTypeOrderDelivered, event.EventType())
	}
	if delivered.CustomerID == nil {
		return nil
	}
	if _, err := h.service.CompleteFor(ctx, *delivered.CustomerID, delivered.AggregateID()); err != nil {
		h.logger.Error("failed to complete referral",
			zap.String("order_number", delivered.Number),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*OrderDeliveredHandler)(nil)
