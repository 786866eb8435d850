package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/backend/internal/domain/shared"
)

// StockRecord is the per-item inventory aggregate. The counter fields
// (Quantity, ReservedQuantity) are only ever changed through guarded
// conditional updates executed by the repository; the remaining fields
// follow the usual load-modify-save path with optimistic locking.
//
// Invariants enforced at the database level as CHECK constraints:
//
//	reserved_quantity >= 0
//	reserved_quantity <= quantity
type StockRecord struct {
	shared.BaseAggregateRoot
	ItemID            uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"item_id"`
	SKU               string      `gorm:"type:varchar(64);not null;index" json:"sku"`
	Quantity          int64       `gorm:"not null;default:0;check:quantity_non_negative,quantity >= 0" json:"quantity"`
	ReservedQuantity  int64       `gorm:"not null;default:0;check:reserved_within_quantity,reserved_quantity >= 0 AND reserved_quantity <= quantity" json:"reserved_quantity"`
	LowStockThreshold int64       `gorm:"not null;default:5" json:"low_stock_threshold"`
	ReorderPoint      int64       `gorm:"not null;default:0" json:"reorder_point"`
	ReorderQuantity   int64       `gorm:"not null;default:0" json:"reorder_quantity"`
	StockStatus       StockStatus `gorm:"type:varchar(20);not null;default:'out_of_stock';index" json:"stock_status"`
	TrackInventory    bool        `gorm:"not null;default:true" json:"track_inventory"`
	AllowBackorders   bool        `gorm:"not null;default:false" json:"allow_backorders"`
	LastRestockDate   *time.Time  `json:"last_restock_date,omitempty"`
	RestockQuantity   int64       `gorm:"not null;default:0" json:"restock_quantity"`
}

// TableName returns the table name for StockRecord
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates a stock record for an item with the given
// starting quantity. Status is derived immediately.
func NewStockRecord(itemID uuid.UUID, sku string, quantity, lowStockThreshold int64) (*StockRecord, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM_ID", "item id is required")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "sku is required")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "quantity cannot be negative")
	}
	if lowStockThreshold < 0 {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "low stock threshold cannot be negative")
	}

	r := &StockRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		SKU:               sku,
		Quantity:          quantity,
		LowStockThreshold: lowStockThreshold,
		TrackInventory:    true,
	}
	r.StockStatus = DeriveStockStatus("", quantity, lowStockThreshold)
	r.AddDomainEvent(NewStockRecordCreatedEvent(r))
	return r, nil
}

// AvailableQuantity returns the units that can still be promised to
// new orders: on-hand minus reserved.
func (r *StockRecord) AvailableQuantity() int64 {
	return r.Quantity - r.ReservedQuantity
}

// IsDiscontinued returns true when the record is in the terminal state
func (r *StockRecord) IsDiscontinued() bool {
	return r.StockStatus == StockStatusDiscontinued
}

// CanFulfill reports whether a reservation of qty units would succeed
// against the current counters.
func (r *StockRecord) CanFulfill(qty int64) bool {
	if qty <= 0 {
		return false
	}
	if !r.TrackInventory {
		return true
	}
	return r.AvailableQuantity() >= qty
}

// AllowsBackorder reports whether an order for qty units may proceed
// even though available stock does not cover it. Purely advisory; it
// does not change any counters.
func (r *StockRecord) AllowsBackorder(qty int64) bool {
	if qty <= 0 {
		return false
	}
	return r.AllowBackorders && !r.IsDiscontinued()
}

// NeedsReorder reports whether available stock has fallen to or below
// the reorder point. A zero reorder point disables the signal.
func (r *StockRecord) NeedsReorder() bool {
	if !r.TrackInventory || r.IsDiscontinued() {
		return false
	}
	if r.ReorderPoint <= 0 {
		return false
	}
	return r.AvailableQuantity() <= r.ReorderPoint
}

// RecomputeStatus re-derives the stock status from the current
// counters. Discontinued records are left untouched.
func (r *StockRecord) RecomputeStatus() {
	r.StockStatus = DeriveStockStatus(r.StockStatus, r.Quantity, r.LowStockThreshold)
}

// SetThresholds updates the low-stock threshold and reorder settings
func (r *StockRecord) SetThresholds(lowStock, reorderPoint, reorderQty int64) error {
	if lowStock < 0 || reorderPoint < 0 || reorderQty < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "thresholds cannot be negative")
	}
	r.LowStockThreshold = lowStock
	r.ReorderPoint = reorderPoint
	r.ReorderQuantity = reorderQty
	r.RecomputeStatus()
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Discontinue moves the record into the terminal discontinued state.
// Existing reservations remain valid and can still be released or
// reduced; only new derivations are frozen.
func (r *StockRecord) Discontinue() error {
	if r.IsDiscontinued() {
		return shared.NewDomainError("ALREADY_DISCONTINUED", "stock record is already discontinued")
	}
	r.StockStatus = StockStatusDiscontinued
	r.UpdatedAt = time.Now().UTC()
	r.AddDomainEvent(NewStockRecordDiscontinuedEvent(r))
	return nil
}

// Reinstate returns a discontinued record to automatic status
// derivation. This is the only way out of the discontinued state.
func (r *StockRecord) Reinstate() error {
	if !r.IsDiscontinued() {
		return shared.NewDomainError("NOT_DISCONTINUED", "stock record is not discontinued")
	}
	r.StockStatus = DeriveStockStatus("", r.Quantity, r.LowStockThreshold)
	r.UpdatedAt = time.Now().UTC()
	return nil
}
