package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopcore/backend/internal/domain/inventory"
	"github.com/shopcore/backend/internal/domain/shared"
)

// GormStockRecordRepository implements StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// Create persists a new stock record
func (r *GormStockRecordRepository) Create(ctx context.Context, record *inventory.StockRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "UNIQUE constraint") {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a stock record by its ID
func (r *GormStockRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockRecord, error) {
	var record inventory.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByItemID finds the stock record for a catalog item
func (r *GormStockRecordRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) (*inventory.StockRecord, error) {
	var record inventory.StockRecord
	if err := r.db.WithContext(ctx).First(&record, "item_id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// SaveWithLock saves non-counter fields with optimistic locking.
// Counter fields are deliberately excluded; they only change through
// ApplyMutation so a stale in-memory copy cannot clobber them.
func (r *GormStockRecordRepository) SaveWithLock(ctx context.Context, record *inventory.StockRecord) error {
	record.IncrementVersion()
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"low_stock_threshold": record.LowStockThreshold,
			"reorder_point":       record.ReorderPoint,
			"reorder_quantity":    record.ReorderQuantity,
			"stock_status":        record.StockStatus,
			"track_inventory":     record.TrackInventory,
			"allow_backorders":    record.AllowBackorders,
			"version":             record.Version,
			"updated_at":          record.UpdatedAt,
		})

	if result.Error != nil {
		record.Version--
		return result.Error
	}
	if result.RowsAffected == 0 {
		record.Version--
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// guardCondition returns the WHERE fragment and arguments for a guard
func guardCondition(recordID uuid.UUID, m inventory.StockMutation) (string, []interface{}) {
	switch m.Guard {
	case inventory.GuardAvailableAtLeast:
		return "id = ? AND quantity - reserved_quantity >= ?", []interface{}{recordID, m.Qty}
	case inventory.GuardReservedAtLeast:
		return "id = ? AND reserved_quantity >= ?", []interface{}{recordID, m.Qty}
	case inventory.GuardQuantityAtLeast:
		return "id = ? AND quantity >= ?", []interface{}{recordID, m.Qty}
	default:
		return "id = ?", []interface{}{recordID}
	}
}

// ApplyMutation executes the mutation as one guarded conditional
// UPDATE. The guard predicate sits in the WHERE clause, so the check
// and the write are a single statement evaluated against committed row
// state; concurrent mutations serialize on the row lock. The derived
// stock status is recomputed inside the same statement. The ledger
// entry is appended, and the ledger trimmed to its cap, in the same
// transaction.
//
// RowsAffected == 0 means the guard did not hold: that is a business
// outcome, reported as applied=false with a nil error.
func (r *GormStockRecordRepository) ApplyMutation(ctx context.Context, recordID uuid.UUID, m inventory.StockMutation) (bool, error) {
	if err := m.Validate(); err != nil {
		return false, err
	}

	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if m.QuantityDelta != 0 {
		updates["quantity"] = gorm.Expr("quantity + ?", m.QuantityDelta)
	}
	if m.ReservedDelta != 0 {
		if m.ClampReserved {
			updates["reserved_quantity"] = gorm.Expr("GREATEST(reserved_quantity + ?, 0)", m.ReservedDelta)
		} else {
			updates["reserved_quantity"] = gorm.Expr("reserved_quantity + ?", m.ReservedDelta)
		}
	}
	// Status derives from the post-mutation quantity. Discontinued is
	// terminal and survives every mutation.
	updates["stock_status"] = gorm.Expr(
		"CASE WHEN stock_status = 'discontinued' THEN stock_status"+
			" WHEN quantity + ? <= 0 THEN 'out_of_stock'"+
			" WHEN quantity + ? <= low_stock_threshold THEN 'low_stock'"+
			" ELSE 'in_stock' END",
		m.QuantityDelta, m.QuantityDelta,
	)
	if m.TouchRestock {
		updates["last_restock_date"] = time.Now().UTC()
		updates["restock_quantity"] = m.Qty
	}

	where, args := guardCondition(recordID, m)

	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&inventory.StockRecord{}).
			Where(where, args...).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true

		movement := inventory.NewStockMovement(recordID, m.MovementType, m.Qty, m.Reason, m.Reference)
		if err := tx.Create(movement).Error; err != nil {
			return err
		}

		// Keep the ledger bounded. Newest entries win.
		return tx.Exec(
			"DELETE FROM stock_movements WHERE stock_record_id = ? AND id NOT IN ("+
				"SELECT id FROM stock_movements WHERE stock_record_id = ? "+
				"ORDER BY occurred_at DESC, id DESC LIMIT ?)",
			recordID, recordID, inventory.MaxLedgerEntries,
		).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// ListMovements returns the newest-first movement ledger for a record
func (r *GormStockRecordRepository) ListMovements(ctx context.Context, recordID uuid.UUID, limit int) ([]*inventory.StockMovement, error) {
	if limit <= 0 || limit > inventory.MaxLedgerEntries {
		limit = inventory.MaxLedgerEntries
	}
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("stock_record_id = ?", recordID).
		Order("occurred_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindBelowReorderPoint lists tracked, non-discontinued records whose
// available stock is at or below their reorder point.
func (r *GormStockRecordRepository) FindBelowReorderPoint(ctx context.Context, filter shared.Filter) (*shared.Paginated[*inventory.StockRecord], error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockRecord{}).
		Where("track_inventory = ? AND stock_status <> ? AND reorder_point > 0 AND quantity - reserved_quantity <= reorder_point",
			true, inventory.StockStatusDiscontinued)

	return r.paginate(query, filter)
}

// List returns stock records matching the filter
func (r *GormStockRecordRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*inventory.StockRecord], error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockRecord{})

	for key, value := range filter.Filters {
		switch key {
		case "stock_status":
			query = query.Where("stock_status = ?", value)
		case "sku":
			query = query.Where("sku = ?", value)
		case "track_inventory":
			query = query.Where("track_inventory = ?", value)
		case "needs_reorder":
			if value == true {
				query = query.Where("reorder_point > 0 AND quantity - reserved_quantity <= reorder_point")
			}
		}
	}

	return r.paginate(query, filter)
}

// paginate applies count, ordering and pagination to a prepared query
func (r *GormStockRecordRepository) paginate(query *gorm.DB, filter shared.Filter) (*shared.Paginated[*inventory.StockRecord], error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	orderBy := ValidateSortField(filter.OrderBy, StockRecordSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var records []*inventory.StockRecord
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(records, total, page, pageSize)
	return &result, nil
}

// Ensure GormStockRecordRepository implements the repository interface
var _ inventory.StockRecordRepository = (*GormStockRecordRepository)(nil)
