package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"github.com/statyba/storefront/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []StockAlert
	err    error
}

func (n *recordingNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func lowEvent(t *testing.T, qty, threshold int) *inventory.StockLowEvent {
	t.Helper()
	item, err := inventory.NewStockItem(uuid.New(), threshold)
	require.NoError(t, err)
	item.Quantity = qty
	return inventory.NewStockLowEvent(item)
}

func TestStockLowHandler_Handle(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewStockLowHandler(zaptest.NewLogger(t)).WithNotifier(notifier)
	assert.Equal(t, []string{inventory.EventTypeStockLow}, h.EventTypes())

	t.Run("low stock", func(t *testing.T) {
		event := lowEvent(t, 3, 5)
		require.NoError(t, h.Handle(context.Background(), event))
		require.Len(t, notifier.alerts, 1)
		assert.Equal(t, AlertLowStock, notifier.alerts[0].AlertType)
		assert.Equal(t, event.ProductID.String(), notifier.alerts[0].ProductID)
		assert.Equal(t, 3, notifier.alerts[0].Available)
	})

	t.Run("out of stock", func(t *testing.T) {
		require.NoError(t, h.Handle(context.Background(), lowEvent(t, 0, 5)))
		assert.Equal(t, AlertOutOfStock, notifier.alerts[len(notifier.alerts)-1].AlertType)
	})
}

func TestStockLowHandler_NotifierFailureDoesNotFail(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	h := NewStockLowHandler(zaptest.NewLogger(t)).WithNotifier(notifier)

	assert.NoError(t, h.Handle(context.Background(), lowEvent(t, 1, 5)))
	assert.Len(t, notifier.alerts, 1)
}

func TestStockLowHandler_WrongEvent(t *testing.T) {
	h := NewStockLowHandler(nil)
	err := h.Handle(context.Background(), testutil.NewTestEvent("Other"))
	assert.Error(t, err)
}

func TestStockLowHandler_CountsAlerts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProviderWithReader("storefront-test", reader, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := telemetry.NewStoreMetrics(mp)
	require.NoError(t, err)

	h := NewStockLowHandler(zaptest.NewLogger(t)).WithMetrics(metrics)
	require.NoError(t, h.Handle(context.Background(), lowEvent(t, 2, 5)))
	require.NoError(t, h.Handle(context.Background(), lowEvent(t, 0, 5)))
	require.NoError(t, h.Handle(context.Background(), lowEvent(t, 0, 3)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	byType := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "storefront_stock_alerts_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				v, _ := dp.Attributes.Value(telemetry.MetricAlertType)
				byType[v.AsString()] = dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{AlertLowStock: 1, AlertOutOfStock: 2}, byType)
}
