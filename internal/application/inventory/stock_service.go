// Package inventory implements stock adjustment, order reservations and the
// stock reporting used by the back office.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/application/transaction"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultLowStockThreshold applies to stock items created on first adjustment
const DefaultLowStockThreshold = 5

// Operation is a stock change applied to every line of an order
type Operation string

const (
	OperationReserve Operation = "reserve"
	OperationRelease Operation = "release"
	OperationCommit  Operation = "commit"
	OperationRestock Operation = "restock"
)

// StockService handles stock-related business operations
type StockService struct {
	stockRepo      inventory.StockItemRepository
	movementRepo   inventory.StockMovementRepository
	txScope        transaction.Scope
	eventPublisher shared.EventPublisher
	threshold      int
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	stockRepo inventory.StockItemRepository,
	movementRepo inventory.StockMovementRepository,
	txScope transaction.Scope,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		threshold:    DefaultLowStockThreshold,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDefaultThreshold changes the threshold given to newly created stock items
func (s *StockService) SetDefaultThreshold(threshold int) {
	if threshold >= 0 {
		s.threshold = threshold
	}
}

func (s *StockService) publishDomainEvents(ctx context.Context, items ...*inventory.StockItem) {
	shared.PublishPending(ctx, s.eventPublisher, items...)
}

// Get returns the stock item of a product
func (s *StockService) Get(ctx context.Context, productID uuid.UUID) (*StockItemResponse, error) {
	item, err := s.stockRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// AdjustStock changes the on-hand quantity of a product. A product without a
// stock record gets one on its first adjustment. A no-op adjustment is
// reported without a movement.
func (s *StockService) AdjustStock(ctx context.Context, productID uuid.UUID, req AdjustStockRequest, actorID *uuid.UUID) (*AdjustStockResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "adjust",
		telemetry.AttrProductID, productID.String(),
		telemetry.AttrQuantity, req.Quantity,
		"mode", req.Mode,
	)
	defer span.End()

	var (
		item     *inventory.StockItem
		movement *inventory.StockMovement
	)
	err := s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		var err error
		item, err = s.loadOrCreate(ctx, repos, productID)
		if err != nil {
			return err
		}
		movement, err = item.AdjustStock(inventory.AdjustMode(req.Mode), req.Quantity, req.Reason, actorID)
		if err != nil {
			return err
		}
		if movement == nil {
			return nil
		}
		if err := repos.Stock().Save(ctx, item); err != nil {
			return err
		}
		return repos.Movements().Create(ctx, movement)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &AdjustStockResponse{Item: ToStockItemResponse(item)}
	if movement != nil {
		m := ToStockMovementResponse(movement)
		resp.Movement = &m
		telemetry.AddEvent(span, "stock.adjusted", "delta", movement.Delta)
		s.publishDomainEvents(ctx, item)
	}
	return resp, nil
}

// UpdateSettings changes the threshold and policy flags of a product's stock
func (s *StockService) UpdateSettings(ctx context.Context, productID uuid.UUID, req UpdateStockSettingsRequest) (*StockItemResponse, error) {
	var item *inventory.StockItem
	err := s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		var err error
		item, err = s.loadOrCreate(ctx, repos, productID)
		if err != nil {
			return err
		}
		if req.LowStockThreshold != nil {
			if err := item.SetThreshold(*req.LowStockThreshold); err != nil {
				return err
			}
		}
		if req.TrackInventory != nil || req.AllowBackorder != nil {
			track, backorder := item.TrackInventory, item.AllowBackorder
			if req.TrackInventory != nil {
				track = *req.TrackInventory
			}
			if req.AllowBackorder != nil {
				backorder = *req.AllowBackorder
			}
			item.SetPolicy(track, backorder)
		}
		return repos.Stock().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// ListLowStock lists tracked items at or below their threshold, lowest first
func (s *StockService) ListLowStock(ctx context.Context, query ListQuery) (shared.Paginated[StockItemResponse], error) {
	filter := toFilter(query)
	filter.OrderBy, filter.OrderDir = "quantity", "asc"

	items, total, err := s.stockRepo.FindLowStock(ctx, filter)
	if err != nil {
		return shared.Paginated[StockItemResponse]{}, err
	}
	out := make([]StockItemResponse, len(items))
	for i := range items {
		out[i] = ToStockItemResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// ListMovements lists the movement history of a product, newest first
func (s *StockService) ListMovements(ctx context.Context, productID uuid.UUID, query ListQuery) (shared.Paginated[StockMovementResponse], error) {
	filter := toFilter(query)

	movements, total, err := s.movementRepo.ListByProduct(ctx, productID, filter)
	if err != nil {
		return shared.Paginated[StockMovementResponse]{}, err
	}
	out := make([]StockMovementResponse, len(movements))
	for i := range movements {
		out[i] = ToStockMovementResponse(&movements[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// Reserve holds stock for every line of an order in one transaction
func (s *StockService) Reserve(ctx context.Context, reference string, lines []Line) error {
	return s.run(ctx, OperationReserve, reference, lines)
}

// Release returns the reserved stock of a cancelled order
func (s *StockService) Release(ctx context.Context, reference string, lines []Line) error {
	return s.run(ctx, OperationRelease, reference, lines)
}

// CommitSale turns the reservations of a shipped order into sales
func (s *StockService) CommitSale(ctx context.Context, reference string, lines []Line) error {
	return s.run(ctx, OperationCommit, reference, lines)
}

// Restock adds the units of a returned order back to stock
func (s *StockService) Restock(ctx context.Context, reference string, lines []Line) error {
	return s.run(ctx, OperationRestock, reference, lines)
}

func (s *StockService) run(ctx context.Context, op Operation, reference string, lines []Line) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", string(op), "reference", reference)
	defer span.End()

	var items []*inventory.StockItem
	err := s.txScope.Execute(ctx, func(repos transaction.Repositories) error {
		var err error
		items, err = ApplyLines(ctx, repos, op, reference, lines)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.publishDomainEvents(ctx, items...)
	return nil
}

// ApplyLines applies op to every line inside an existing transaction and
// returns the touched items so the caller can publish their events after
// commit. Lines of the same product are merged and rows are locked in
// product id order. Reserving a product without a stock record fails with
// INSUFFICIENT_STOCK; the other operations skip it. Items with inventory
// tracking switched off are never reserved.
func ApplyLines(ctx context.Context, repos transaction.Repositories, op Operation, reference string, lines []Line) ([]*inventory.StockItem, error) {
	merged := mergeLines(lines)
	items := make([]*inventory.StockItem, 0, len(merged))
	movements := make([]*inventory.StockMovement, 0, len(merged))

	for _, line := range merged {
		item, err := repos.Stock().FindByProductForUpdate(ctx, line.ProductID)
		if errors.Is(err, shared.ErrNotFound) {
			// no stock record means nothing on hand, which listings show as out of stock
			if op == OperationReserve {
				return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Product %s has no stock", line.ProductID))
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if skipUntracked(item, op, line.Quantity) {
			continue
		}

		var movement *inventory.StockMovement
		switch op {
		case OperationReserve:
			movement, err = item.Reserve(line.Quantity, reference)
		case OperationRelease:
			movement, err = item.Release(line.Quantity, reference)
		case OperationCommit:
			movement, err = item.CommitSale(line.Quantity, reference)
		case OperationRestock:
			movement, err = item.Restock(line.Quantity, reference)
		default:
			return nil, shared.NewDomainError("INVALID_OPERATION", "Unknown stock operation")
		}
		if err != nil {
			return nil, err
		}
		if err := repos.Stock().Save(ctx, item); err != nil {
			return nil, err
		}
		items = append(items, item)
		movements = append(movements, movement)
	}

	if len(movements) > 0 {
		if err := repos.Movements().Create(ctx, movements...); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *StockService) loadOrCreate(ctx context.Context, repos transaction.Repositories, productID uuid.UUID) (*inventory.StockItem, error) {
	item, err := repos.Stock().FindByProductForUpdate(ctx, productID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if _, err := repos.Products().FindByID(ctx, productID); err != nil {
		return nil, err
	}
	s.logger.Debug("creating stock record", zap.String("product_id", productID.String()))
	return inventory.NewStockItem(productID, s.threshold)
}

// skipUntracked leaves untracked items alone unless they still hold a
// reservation made while tracking was on
func skipUntracked(item *inventory.StockItem, op Operation, qty int) bool {
	if item.TrackInventory {
		return false
	}
	switch op {
	case OperationRelease, OperationCommit:
		return item.Reserved < qty
	case OperationRestock:
		return false
	}
	return true
}

func mergeLines(lines []Line) []Line {
	totals := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, seen := totals[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		totals[l.ProductID] += l.Quantity
	}
	slices.SortFunc(order, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	merged := make([]Line, len(order))
	for i, id := range order {
		merged[i] = Line{ProductID: id, Quantity: totals[id]}
	}
	return merged
}

func toFilter(query ListQuery) shared.Filter {
	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	return filter.Normalize()
}
