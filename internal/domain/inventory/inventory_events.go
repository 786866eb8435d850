package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockRecord = "StockRecord"

// Event type constants
const (
	EventTypeStockRecordCreated      = "StockRecordCreated"
	EventTypeStockReserved           = "StockReserved"
	EventTypeStockReleased           = "StockReleased"
	EventTypeStockReduced            = "StockReduced"
	EventTypeStockRestocked          = "StockRestocked"
	EventTypeStockBelowReorderPoint  = "StockBelowReorderPoint"
	EventTypeStockRecordDiscontinued = "StockRecordDiscontinued"
)

// StockRecordCreatedEvent is published when a stock record is created
type StockRecordCreatedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ItemID        uuid.UUID `json:"item_id"`
	SKU           string    `json:"sku"`
	Quantity      int64     `json:"quantity"`
}

// NewStockRecordCreatedEvent creates a new StockRecordCreatedEvent
func NewStockRecordCreatedEvent(record *StockRecord) *StockRecordCreatedEvent {
	return &StockRecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRecordCreated, AggregateTypeStockRecord, record.ID),
		StockRecordID:   record.ID,
		ItemID:          record.ItemID,
		SKU:             record.SKU,
		Quantity:        record.Quantity,
	}
}

// StockReservedEvent is published after a successful reservation
type StockReservedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ItemID        uuid.UUID `json:"item_id"`
	Quantity      int64     `json:"quantity"`
	Reference     string    `json:"reference,omitempty"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(record *StockRecord, qty int64, reference string) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockRecord, record.ID),
		StockRecordID:   record.ID,
		ItemID:          record.ItemID,
		Quantity:        qty,
		Reference:       reference,
	}
}

// StockReleasedEvent is published after a reservation is released
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ItemID        uuid.UUID `json:"item_id"`
	Quantity      int64     `json:"quantity"`
	Reference     string    `json:"reference,omitempty"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(record *StockRecord, qty int64, reference string) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeStockRecord, record.ID),
		StockRecordID:   record.ID,
		ItemID:          record.ItemID,
		Quantity:        qty,
		Reference:       reference,
	}
}

// StockReducedEvent is published after on-hand stock is permanently reduced
type StockReducedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ItemID        uuid.UUID `json:"item_id"`
	Quantity      int64     `json:"quantity"`
	Reference     string    `json:"reference,omitempty"`
}

// NewStockReducedEvent creates a new StockReducedEvent
func NewStockReducedEvent(record *StockRecord, qty int64, reference string) *StockReducedEvent {
	return &StockReducedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReduced, AggregateTypeStockRecord, record.ID),
		StockRecordID:   record.ID,
		ItemID:          record.ItemID,
		Quantity:        qty,
		Reference:       reference,
	}
}

// StockRestockedEvent is published after stock arrives
type StockRestockedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ItemID        uuid.UUID `json:"item_id"`
	Quantity      int64     `json:"quantity"`
	RestockedAt   time.Time `json:"restocked_at"`
}

// NewStockRestockedEvent creates a new StockRestockedEvent
func NewStockRestockedEvent(record *StockRecord, qty int64, restockedAt time.Time) *StockRestockedEvent {
	return &StockRestockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRestocked, AggregateTypeStockRecord, record.ID),
		StockRecordID:   record.ID,
		ItemID:          record.ItemID,
		Quantity:        qty,
		RestockedAt:     restockedAt,
	}
}

// StockBelowReorderPointEvent is published when available stock falls
// to or below the reorder point after a mutation
type StockBelowReorderPointEvent struct {
	shared.BaseDomainEvent
	StockRecordID   uuid.UUID `json:"stock_record_id"`
	ItemID          uuid.UUID `json:"item_id"`
	SKU             string    `json:"sku"`
	Available       int64     `json:"available"`
	ReorderPoint    int64     `json:"reorder_point"`
	ReorderQuantity int64     `json:"reorder_quantity"`
}

// NewStockBelowReorderPointEvent creates a new StockBelowReorderPointEvent
func NewStockBelowReorderPointEvent(record *StockRecord) *StockBelowReorderPointEvent {
	return &StockBelowReorderPointEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorderPoint, AggregateTypeStockRecord, record.ID),
		StockRecordID:   record.ID,
		ItemID:          record.ItemID,
		SKU:             record.SKU,
		Available:       record.AvailableQuantity(),
		ReorderPoint:    record.ReorderPoint,
		ReorderQuantity: record.ReorderQuantity,
	}
}

// StockRecordDiscontinuedEvent is published when a record enters the
// terminal discontinued state
type StockRecordDiscontinuedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ItemID        uuid.UUID `json:"item_id"`
	SKU           string    `json:"sku"`
}

// NewStockRecordDiscontinuedEvent creates a new StockRecordDiscontinuedEvent
func NewStockRecordDiscontinuedEvent(record *StockRecord) *StockRecordDiscontinuedEvent {
	return &StockRecordDiscontinuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRecordDiscontinued, AggregateTypeStockRecord, record.ID),
		StockRecordID:   record.ID,
		ItemID:          record.ItemID,
		SKU:             record.SKU,
	}
}
