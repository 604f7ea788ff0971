package inventory

import (
	"context"
	"fmt"

	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Alert kinds
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
)

// StockAlert describes a product whose stock needs attention
type StockAlert struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Threshold int    `json:"threshold"`
	AlertType string `json:"alert_type"`
}

// StockAlertNotifier delivers stock alerts to back-office staff
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockLowHandler turns StockLow events into alerts
type StockLowHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
	metrics  *telemetry.StoreMetrics
}

// NewStockLowHandler creates a new handler for StockLow events
func NewStockLowHandler(logger *zap.Logger) *StockLowHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockLowHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockLowHandler) WithNotifier(notifier StockAlertNotifier) *StockLowHandler {
	h.notifier = notifier
	return h
}

// WithMetrics counts every alert on m
func (h *StockLowHandler) WithMetrics(m *telemetry.StoreMetrics) *StockLowHandler {
	h.metrics = m
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockLowHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockLow}
}

// Handle processes a StockLowEvent. Notification failures are logged and
// do not fail the event.
func (h *StockLowHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	low, ok := event.(*inventory.StockLowEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", inventory.EventTypeStockLow, event.EventType())
	}

	alert := StockAlert{
		ProductID: low.ProductID.String(),
		Available: low.Available,
		Threshold: low.Threshold,
		AlertType: AlertLowStock,
	}
	if low.Available <= 0 {
		alert.AlertType = AlertOutOfStock
	}

	h.logger.Warn("stock below threshold",
		zap.String("product_id", alert.ProductID),
		zap.Int("available", alert.Available),
		zap.Int("threshold", alert.Threshold),
		zap.String("alert_type", alert.AlertType),
	)
	h.metrics.RecordStockAlert(ctx, alert.AlertType)

	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		h.logger.Error("failed to send stock alert", zap.String("product_id", alert.ProductID), zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*StockLowHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.Int("available", alert.Available),
		zap.Int("threshold", alert.Threshold),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
