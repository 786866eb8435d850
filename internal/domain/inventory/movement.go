package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/backend/internal/domain/shared"
)

// MovementType classifies a stock movement ledger entry
type MovementType string

const (
	// MovementTypeIn records stock arriving (restock)
	MovementTypeIn MovementType = "in"
	// MovementTypeOut records stock leaving (fulfilled reduction)
	MovementTypeOut MovementType = "out"
	// MovementTypeAdjustment records a manual correction
	MovementTypeAdjustment MovementType = "adjustment"
	// MovementTypeReserved records units moving into the reserved pool
	MovementTypeReserved MovementType = "reserved"
	// MovementTypeUnreserved records units returning from the reserved pool
	MovementTypeUnreserved MovementType = "unreserved"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is one of the known kinds
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment,
		MovementTypeReserved, MovementTypeUnreserved:
		return true
	}
	return false
}

// AffectsOnHand reports whether this movement changed the on-hand
// quantity. Reservation traffic moves units between pools without
// changing what is physically on the shelf.
func (t MovementType) AffectsOnHand() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement is a single ledger entry describing one mutation of a
// stock record. Entries are immutable once written.
type StockMovement struct {
	shared.BaseEntity
	StockRecordID uuid.UUID    `gorm:"type:uuid;not null;index" json:"stock_record_id"`
	MovementType  MovementType `gorm:"type:varchar(20);not null" json:"movement_type"`
	Quantity      int64        `gorm:"not null" json:"quantity"`
	Reason        string       `gorm:"type:varchar(255)" json:"reason"`
	Reference     string       `gorm:"type:varchar(128);index" json:"reference"`
	OccurredAt    time.Time    `gorm:"not null;index" json:"occurred_at"`
}

// TableName returns the table name for StockMovement
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a ledger entry for the given record
func NewStockMovement(recordID uuid.UUID, movementType MovementType, quantity int64, reason, reference string) *StockMovement {
	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		StockRecordID: recordID,
		MovementType:  movementType,
		Quantity:      quantity,
		Reason:        reason,
		Reference:     reference,
		OccurredAt:    time.Now().UTC(),
	}
}
