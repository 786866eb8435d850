package inventory

import "github.com/shopcore/backend/internal/domain/shared"

// GuardKind selects the precondition the repository compiles into the
// conditional update's WHERE clause.
type GuardKind string

const (
	// GuardNone applies the mutation unconditionally
	GuardNone GuardKind = "none"
	// GuardAvailableAtLeast requires quantity - reserved_quantity >= Qty
	GuardAvailableAtLeast GuardKind = "available_at_least"
	// GuardReservedAtLeast requires reserved_quantity >= Qty
	GuardReservedAtLeast GuardKind = "reserved_at_least"
	// GuardQuantityAtLeast requires quantity >= Qty
	GuardQuantityAtLeast GuardKind = "quantity_at_least"
)

// StockMutation describes one atomic change to a stock record's
// counters: a guard that must hold at apply time, the deltas to apply
// when it does, and the ledger entry to append. The repository turns
// the whole thing into a single guarded UPDATE plus a ledger insert in
// one transaction, so concurrent mutations serialize on the row and
// the guard is evaluated against committed state.
type StockMutation struct {
	Guard GuardKind
	// Qty is the operand of the guard comparison
	Qty int64
	// QuantityDelta is added to quantity
	QuantityDelta int64
	// ReservedDelta is added to reserved_quantity. When ClampReserved
	// is set the result is clamped at zero instead of going negative.
	ReservedDelta int64
	ClampReserved bool
	// TouchRestock updates last_restock_date and restock_quantity
	TouchRestock bool

	MovementType MovementType
	Reason       string
	Reference    string
}

// Validate checks the mutation is internally consistent
func (m StockMutation) Validate() error {
	if m.Qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "mutation quantity must be positive")
	}
	if !m.MovementType.IsValid() {
		return shared.NewDomainError("INVALID_MOVEMENT_TYPE", "unknown movement type: "+m.MovementType.String())
	}
	return nil
}

// GuardFailureError maps a failed guard to the matching domain error
func (m StockMutation) GuardFailureError() *shared.DomainError {
	switch m.Guard {
	case GuardAvailableAtLeast:
		return shared.ErrInsufficientStock
	case GuardReservedAtLeast:
		return shared.ErrInsufficientReserved
	case GuardQuantityAtLeast:
		return shared.ErrInsufficientOnHand
	default:
		return shared.ErrInvalidState
	}
}

// ReserveMutation moves qty units from the available pool into the
// reserved pool. Succeeds only while available stock covers qty.
func ReserveMutation(qty int64, reference string) StockMutation {
	return StockMutation{
		Guard:         GuardAvailableAtLeast,
		Qty:           qty,
		ReservedDelta: qty,
		MovementType:  MovementTypeReserved,
		Reason:        "stock reserved",
		Reference:     reference,
	}
}

// ReleaseMutation returns qty units from the reserved pool to the
// available pool. Succeeds only while at least qty units are reserved.
func ReleaseMutation(qty int64, reference string) StockMutation {
	return StockMutation{
		Guard:         GuardReservedAtLeast,
		Qty:           qty,
		ReservedDelta: -qty,
		MovementType:  MovementTypeUnreserved,
		Reason:        "reservation released",
		Reference:     reference,
	}
}

// ReduceMutation permanently removes qty units, consuming any matching
// reservation first. The reserved decrement is clamped at zero so
// reducing unreserved stock works too.
func ReduceMutation(qty int64, reference string) StockMutation {
	return StockMutation{
		Guard:         GuardQuantityAtLeast,
		Qty:           qty,
		QuantityDelta: -qty,
		ReservedDelta: -qty,
		ClampReserved: true,
		MovementType:  MovementTypeOut,
		Reason:        "stock reduced",
		Reference:     reference,
	}
}

// RestockMutation adds qty units to the available pool and stamps the
// restock audit fields. No guard; restocking always succeeds.
func RestockMutation(qty int64, reference string) StockMutation {
	return StockMutation{
		Guard:         GuardNone,
		Qty:           qty,
		QuantityDelta: qty,
		TouchRestock:  true,
		MovementType:  MovementTypeIn,
		Reason:        "stock restocked",
		Reference:     reference,
	}
}

// AdjustmentMutation applies a signed manual correction to on-hand
// quantity. Negative corrections are guarded so quantity cannot go
// below zero.
func AdjustmentMutation(delta int64, reason, reference string) StockMutation {
	m := StockMutation{
		Guard:         GuardNone,
		Qty:           delta,
		QuantityDelta: delta,
		MovementType:  MovementTypeAdjustment,
		Reason:        reason,
		Reference:     reference,
	}
	if delta < 0 {
		m.Guard = GuardQuantityAtLeast
		m.Qty = -delta
	}
	return m
}
