package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ErrMeterProviderNil is returned when business metrics are built without a provider
var ErrMeterProviderNil = errors.New("telemetry: meter provider is nil")

// OrderValueBuckets are bucket boundaries for order grand totals in major currency units
var OrderValueBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// StoreMetrics holds the storefront business instruments.
// A nil *StoreMetrics records nothing.
type StoreMetrics struct {
	ordersPlaced *Counter
	orderItems   *Counter
	orderValue   *Histogram
	stockAlerts  *Counter
}

// NewStoreMetrics creates the business instruments on the "storefront" meter
func NewStoreMetrics(mp *MeterProvider) (*StoreMetrics, error) {
	if mp == nil {
		return nil, ErrMeterProviderNil
	}
	meter := mp.Meter("storefront")

	var (
		m   StoreMetrics
		err error
	)
	if m.ordersPlaced, err = NewCounter(meter,
		"storefront_orders_placed_total", "Orders placed through checkout", "{order}"); err != nil {
		return nil, err
	}
	if m.orderItems, err = NewCounter(meter,
		"storefront_order_items_total", "Units sold across placed orders", "{unit}"); err != nil {
		return nil, err
	}
	if m.orderValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "storefront_order_value",
		Description: "Grand total of placed orders",
		Unit:        "{currency}",
		Boundaries:  OrderValueBuckets,
	}); err != nil {
		return nil, err
	}
	if m.stockAlerts, err = NewCounter(meter,
		"storefront_stock_alerts_total", "Products that fell to or below their low stock threshold", "{alert}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordOrderPlaced counts a placed order with its unit count and grand total
func (m *StoreMetrics) RecordOrderPlaced(ctx context.Context, currency, locale string, items int, total decimal.Decimal) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{MetricCurrency.String(currency), MetricLocale.String(locale)}
	m.ordersPlaced.Inc(ctx, attrs...)
	m.orderItems.Add(ctx, int64(items), attrs...)
	m.orderValue.Record(ctx, total.InexactFloat64(), MetricCurrency.String(currency))
}

// RecordStockAlert counts a low or out of stock alert
func (m *StoreMetrics) RecordStockAlert(ctx context.Context, alertType string) {
	if m == nil {
		return
	}
	m.stockAlerts.Inc(ctx, MetricAlertType.String(alertType))
}
