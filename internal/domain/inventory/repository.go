package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopcore/backend/internal/domain/shared"
)

// StockRecordRepository is the persistence port for stock records and
// their movement ledgers.
type StockRecordRepository interface {
	// Create persists a new stock record
	Create(ctx context.Context, record *StockRecord) error

	// FindByID loads a stock record by primary key
	FindByID(ctx context.Context, id uuid.UUID) (*StockRecord, error)

	// FindByItemID loads the stock record for a catalog item
	FindByItemID(ctx context.Context, itemID uuid.UUID) (*StockRecord, error)

	// SaveWithLock persists non-counter field changes with optimistic
	// locking; returns shared.ErrConcurrencyConflict when the version
	// check fails.
	SaveWithLock(ctx context.Context, record *StockRecord) error

	// ApplyMutation executes the mutation as a single guarded
	// conditional update and appends the matching ledger entry in one
	// transaction. Returns applied=false with a nil error when the
	// guard did not hold; a non-nil error means infrastructure failure.
	ApplyMutation(ctx context.Context, recordID uuid.UUID, mutation StockMutation) (applied bool, err error)

	// ListMovements returns the newest-first movement ledger for a
	// record, at most MaxLedgerEntries entries.
	ListMovements(ctx context.Context, recordID uuid.UUID, limit int) ([]*StockMovement, error)

	// FindBelowReorderPoint lists tracked, non-discontinued records
	// whose available stock is at or below their reorder point.
	FindBelowReorderPoint(ctx context.Context, filter shared.Filter) (*shared.Paginated[*StockRecord], error)

	// List returns stock records matching the filter
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*StockRecord], error)
}
