package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/telemetry"
)

const (
	// DefaultForecastLookbackDays is the default demand history window
	DefaultForecastLookbackDays = 30
)

// StockService handles inventory and reservation business operations.
// All counter changes go through the repository's guarded conditional
// update; the service never writes counters it read earlier.
type StockService struct {
	stockRepo        inventory.StockRecordRepository
	eventPublisher   shared.EventPublisher
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	lookbackDays     int
}

// NewStockService creates a new StockService
func NewStockService(stockRepo inventory.StockRecordRepository) *StockService {
	return &StockService{
		stockRepo:      stockRepo,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
		lookbackDays:   DefaultForecastLookbackDays,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables reference-based deduplication for
// reserve and release requests.
func (s *StockService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = cfg
}

// SetForecastLookbackDays overrides the demand history window
func (s *StockService) SetForecastLookbackDays(days int) {
	if days > 0 {
		s.lookbackDays = days
	}
}

// publishDomainEvents publishes pending events from the record.
// Errors are handled by the event bus, not propagated.
func (s *StockService) publishDomainEvents(ctx context.Context, record *inventory.StockRecord) {
	if s.eventPublisher == nil {
		return
	}
	events := record.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	record.ClearDomainEvents()
}

// publishEvents publishes ad-hoc events built after a counter mutation
func (s *StockService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// Create creates a stock record for a catalog item
func (s *StockService) Create(ctx context.Context, req CreateStockRecordRequest) (*StockRecordResponse, error) {
	record, err := inventory.NewStockRecord(req.ItemID, req.SKU, req.Quantity, req.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	record.ReorderPoint = req.ReorderPoint
	record.ReorderQuantity = req.ReorderQuantity
	record.AllowBackorders = req.AllowBackorders
	if req.TrackInventory != nil {
		record.TrackInventory = *req.TrackInventory
	}

	if err := s.stockRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, record)
	response := ToStockRecordResponse(record)
	return &response, nil
}

// GetByItemID retrieves the stock record for a catalog item
func (s *StockService) GetByItemID(ctx context.Context, itemID uuid.UUID) (*StockRecordResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	response := ToStockRecordResponse(record)
	return &response, nil
}

// GetAvailableQuantity returns how many units can still be promised
func (s *StockService) GetAvailableQuantity(ctx context.Context, itemID uuid.UUID) (*AvailabilityResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResponse{
		ItemID:           record.ItemID,
		Available:        record.AvailableQuantity(),
		Quantity:         record.Quantity,
		ReservedQuantity: record.ReservedQuantity,
		StockStatus:      record.StockStatus.String(),
		AllowBackorders:  record.AllowBackorders,
	}, nil
}

// isDuplicate checks the idempotency store for a reference whose
// mutation already applied. An empty reference is never deduplicated.
// Store errors fail open so a degraded Redis does not block order flow.
func (s *StockService) isDuplicate(ctx context.Context, op, reference string) bool {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || reference == "" {
		return false
	}
	processed, err := s.idempotencyStore.IsProcessed(ctx, op+":"+reference)
	if err != nil {
		return false
	}
	return processed
}

// markProcessed records a reference once its mutation has applied.
// Marking happens only after success so a guard failure never claims
// the reference; the caller's retry gets a real attempt, not a replay.
func (s *StockService) markProcessed(ctx context.Context, op, reference string) {
	if s.idempotencyStore == nil || !s.idempotencyCfg.Enabled || reference == "" {
		return
	}
	_, _ = s.idempotencyStore.MarkProcessed(ctx, op+":"+reference, s.idempotencyCfg.TTL)
}

// Reserve moves qty units into the reserved pool for an item. Returns
// Reserved=false when available stock does not cover qty; when the
// record allows backorders the response flags the shortfall as a
// permitted backorder instead of a hard failure. Exactly one of any
// set of concurrent reservations competing for the last units wins.
// Discontinued records keep selling through their remaining units;
// the availability guard alone bounds them.
func (s *StockService) Reserve(ctx context.Context, itemID uuid.UUID, req ReserveStockRequest) (*ReserveStockResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_record", "reserve")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemID, itemID.String(),
		telemetry.SpanAttrQuantity, req.Quantity,
		telemetry.SpanAttrReference, req.Reference,
	)

	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Untracked items never run out; nothing to mutate.
	if !record.TrackInventory {
		return &ReserveStockResponse{Reserved: true, Available: record.AvailableQuantity(), Reference: req.Reference}, nil
	}

	if s.isDuplicate(ctx, "reserve", req.Reference) {
		return &ReserveStockResponse{Reserved: true, Available: record.AvailableQuantity(), Reference: req.Reference, Idempotent: true}, nil
	}

	applied, err := s.stockRepo.ApplyMutation(ctx, record.ID, inventory.ReserveMutation(req.Quantity, req.Reference))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	fresh, err := s.stockRepo.FindByID(ctx, record.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !applied {
		telemetry.AddEvent(span, "reservation_rejected",
			telemetry.SpanAttrAvailable, fresh.AvailableQuantity(),
		)
		return &ReserveStockResponse{
			Reserved:  false,
			Backorder: fresh.AllowsBackorder(req.Quantity),
			Available: fresh.AvailableQuantity(),
			Reference: req.Reference,
		}, nil
	}

	s.markProcessed(ctx, "reserve", req.Reference)

	events := []shared.DomainEvent{inventory.NewStockReservedEvent(fresh, req.Quantity, req.Reference)}
	if fresh.NeedsReorder() {
		events = append(events, inventory.NewStockBelowReorderPointEvent(fresh))
	}
	s.publishEvents(ctx, events...)

	return &ReserveStockResponse{Reserved: true, Available: fresh.AvailableQuantity(), Reference: req.Reference}, nil
}

// Release returns qty units from the reserved pool. Releasing more
// than is currently reserved is an error.
func (s *StockService) Release(ctx context.Context, itemID uuid.UUID, req ReleaseStockRequest) error {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return err
	}

	if !record.TrackInventory {
		return nil
	}

	if s.isDuplicate(ctx, "release", req.Reference) {
		return nil
	}

	applied, err := s.stockRepo.ApplyMutation(ctx, record.ID, inventory.ReleaseMutation(req.Quantity, req.Reference))
	if err != nil {
		return err
	}
	if !applied {
		return shared.ErrInsufficientReserved
	}

	s.markProcessed(ctx, "release", req.Reference)

	fresh, err := s.stockRepo.FindByID(ctx, record.ID)
	if err == nil {
		s.publishEvents(ctx, inventory.NewStockReleasedEvent(fresh, req.Quantity, req.Reference))
	}
	return nil
}

// Reduce permanently removes qty units, consuming any matching
// reservation. Returns Reduced=false when on-hand stock does not
// cover qty.
func (s *StockService) Reduce(ctx context.Context, itemID uuid.UUID, req ReduceStockRequest) (*ReduceStockResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_record", "reduce")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemID, itemID.String(),
		telemetry.SpanAttrQuantity, req.Quantity,
		telemetry.SpanAttrReference, req.Reference,
	)

	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !record.TrackInventory {
		return &ReduceStockResponse{Reduced: true, Available: record.AvailableQuantity()}, nil
	}

	applied, err := s.stockRepo.ApplyMutation(ctx, record.ID, inventory.ReduceMutation(req.Quantity, req.Reference))
	if err != nil {
		return nil, err
	}

	fresh, err := s.stockRepo.FindByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	if !applied {
		return &ReduceStockResponse{Reduced: false, Available: fresh.AvailableQuantity()}, nil
	}

	events := []shared.DomainEvent{inventory.NewStockReducedEvent(fresh, req.Quantity, req.Reference)}
	if fresh.NeedsReorder() {
		events = append(events, inventory.NewStockBelowReorderPointEvent(fresh))
	}
	s.publishEvents(ctx, events...)

	return &ReduceStockResponse{Reduced: true, Available: fresh.AvailableQuantity()}, nil
}

// Restock adds qty units and stamps the restock audit fields.
// Restocking never fails a guard, even on discontinued records.
func (s *StockService) Restock(ctx context.Context, itemID uuid.UUID, req RestockRequest) (*StockRecordResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	applied, err := s.stockRepo.ApplyMutation(ctx, record.ID, inventory.RestockMutation(req.Quantity, req.Reference))
	if err != nil {
		return nil, err
	}
	// Restock carries no guard; an unapplied mutation means the row
	// disappeared between the read and the update.
	if !applied {
		return nil, shared.ErrNotFound
	}

	fresh, err := s.stockRepo.FindByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	restockedAt := time.Now().UTC()
	if fresh.LastRestockDate != nil {
		restockedAt = *fresh.LastRestockDate
	}
	s.publishEvents(ctx, inventory.NewStockRestockedEvent(fresh, req.Quantity, restockedAt))

	response := ToStockRecordResponse(fresh)
	return &response, nil
}

// Adjust applies a signed manual correction to on-hand quantity
func (s *StockService) Adjust(ctx context.Context, itemID uuid.UUID, req AdjustStockRequest) (*StockRecordResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	mutation := inventory.AdjustmentMutation(req.Delta, req.Reason, req.Reference)
	applied, err := s.stockRepo.ApplyMutation(ctx, record.ID, mutation)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, mutation.GuardFailureError()
	}

	fresh, err := s.stockRepo.FindByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	response := ToStockRecordResponse(fresh)
	return &response, nil
}

// NeedsReorder reports whether an item's available stock has fallen to
// or below its reorder point.
func (s *StockService) NeedsReorder(ctx context.Context, itemID uuid.UUID) (bool, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return false, err
	}
	return record.NeedsReorder(), nil
}

// GetForecast projects demand over the next forecastDays from recent
// outbound movements.
func (s *StockService) GetForecast(ctx context.Context, itemID uuid.UUID, forecastDays int) (*DemandForecastResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	movements, err := s.stockRepo.ListMovements(ctx, record.ID, inventory.MaxLedgerEntries)
	if err != nil {
		return nil, err
	}

	ledger := inventory.LedgerFromMovements(movements)
	forecast := inventory.ComputeDemandForecast(record, ledger, s.lookbackDays, forecastDays, time.Now().UTC())
	response := ToDemandForecastResponse(forecast)
	return &response, nil
}

// ListMovements returns the newest-first movement ledger for an item
func (s *StockService) ListMovements(ctx context.Context, itemID uuid.UUID, limit int) ([]StockMovementResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > inventory.MaxLedgerEntries {
		limit = inventory.MaxLedgerEntries
	}
	movements, err := s.stockRepo.ListMovements(ctx, record.ID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		responses = append(responses, ToStockMovementResponse(m))
	}
	return responses, nil
}

// List returns stock records matching the filter
func (s *StockService) List(ctx context.Context, filter StockRecordListFilter) ([]StockRecordResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		f.Filters["stock_status"] = filter.Status
	}

	page, err := s.stockRepo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockRecordResponse, 0, len(page.Items))
	for _, r := range page.Items {
		responses = append(responses, ToStockRecordResponse(r))
	}
	return responses, page.Total, nil
}

// ListBelowReorderPoint returns tracked records whose available stock
// is at or below their reorder point.
func (s *StockService) ListBelowReorderPoint(ctx context.Context, filter StockRecordListFilter) ([]StockRecordResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	page, err := s.stockRepo.FindBelowReorderPoint(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockRecordResponse, 0, len(page.Items))
	for _, r := range page.Items {
		responses = append(responses, ToStockRecordResponse(r))
	}
	return responses, page.Total, nil
}

// SetThresholds updates the low-stock threshold and reorder settings
// with optimistic locking.
func (s *StockService) SetThresholds(ctx context.Context, itemID uuid.UUID, req SetThresholdsRequest) (*StockRecordResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := record.SetThresholds(req.LowStockThreshold, req.ReorderPoint, req.ReorderQuantity); err != nil {
		return nil, err
	}

	if err := s.stockRepo.SaveWithLock(ctx, record); err != nil {
		return nil, err
	}

	response := ToStockRecordResponse(record)
	return &response, nil
}

// Discontinue moves an item's record to the terminal discontinued state
func (s *StockService) Discontinue(ctx context.Context, itemID uuid.UUID) (*StockRecordResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := record.Discontinue(); err != nil {
		return nil, err
	}

	if err := s.stockRepo.SaveWithLock(ctx, record); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, record)
	response := ToStockRecordResponse(record)
	return &response, nil
}

// Reinstate returns a discontinued record to automatic status derivation
func (s *StockService) Reinstate(ctx context.Context, itemID uuid.UUID) (*StockRecordResponse, error) {
	record, err := s.stockRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := record.Reinstate(); err != nil {
		return nil, err
	}

	if err := s.stockRepo.SaveWithLock(ctx, record); err != nil {
		return nil, err
	}

	response := ToStockRecordResponse(record)
	return &response, nil
}

// IsNotFound reports whether err is the not-found domain error
func IsNotFound(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == shared.ErrNotFound.Code
	}
	return false
}
