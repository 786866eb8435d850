package inventory

// MaxLedgerEntries bounds how many movements are retained per stock
// record. Older entries are evicted when the cap is reached.
const MaxLedgerEntries = 100

// MovementLedger is a bounded, newest-first view of a record's
// movement history, backed by a fixed-capacity ring. Appends overwrite
// the oldest slot once the ring is full; no per-append allocation or
// shifting happens. The persistence layer enforces the same cap on the
// stored rows.
type MovementLedger struct {
	ring []*StockMovement
	next int
	size int
}

// NewMovementLedger creates an empty ledger with the default cap
func NewMovementLedger() *MovementLedger {
	return NewMovementLedgerWithCap(MaxLedgerEntries)
}

// NewMovementLedgerWithCap creates an empty ledger with a custom cap.
// A non-positive cap falls back to the default.
func NewMovementLedgerWithCap(cap int) *MovementLedger {
	if cap <= 0 {
		cap = MaxLedgerEntries
	}
	return &MovementLedger{ring: make([]*StockMovement, cap)}
}

// LedgerFromMovements builds a ledger from a newest-first slice, the
// order the repository's ListMovements returns. Entries beyond the
// default cap are dropped from the old end.
func LedgerFromMovements(newestFirst []*StockMovement) *MovementLedger {
	l := NewMovementLedger()
	for i := len(newestFirst) - 1; i >= 0; i-- {
		l.Append(newestFirst[i])
	}
	return l
}

// Append records a movement as the newest entry, overwriting the
// oldest entry when the ledger is full.
func (l *MovementLedger) Append(m *StockMovement) {
	if m == nil {
		return
	}
	l.ring[l.next] = m
	l.next = (l.next + 1) % len(l.ring)
	if l.size < len(l.ring) {
		l.size++
	}
}

// Entries returns the movements newest-first. The returned slice is a
// copy; mutating it does not affect the ledger.
func (l *MovementLedger) Entries() []*StockMovement {
	out := make([]*StockMovement, 0, l.size)
	for i := 1; i <= l.size; i++ {
		out = append(out, l.ring[(l.next-i+len(l.ring))%len(l.ring)])
	}
	return out
}

// Len returns the number of retained entries
func (l *MovementLedger) Len() int {
	return l.size
}

// Cap returns the maximum number of retained entries
func (l *MovementLedger) Cap() int {
	return len(l.ring)
}

// Newest returns the most recent entry, or nil when the ledger is empty
func (l *MovementLedger) Newest() *StockMovement {
	if l.size == 0 {
		return nil
	}
	return l.ring[(l.next-1+len(l.ring))%len(l.ring)]
}
