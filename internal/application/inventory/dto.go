package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopcore/backend/internal/domain/inventory"
)

// StockRecordResponse represents a stock record in API responses
type StockRecordResponse struct {
	ID                uuid.UUID  `json:"id"`
	ItemID            uuid.UUID  `json:"item_id"`
	SKU               string     `json:"sku"`
	Quantity          int64      `json:"quantity"`
	ReservedQuantity  int64      `json:"reserved_quantity"`
	AvailableQuantity int64      `json:"available_quantity"`
	LowStockThreshold int64      `json:"low_stock_threshold"`
	ReorderPoint      int64      `json:"reorder_point"`
	ReorderQuantity   int64      `json:"reorder_quantity"`
	StockStatus       string     `json:"stock_status"`
	TrackInventory    bool       `json:"track_inventory"`
	AllowBackorders   bool       `json:"allow_backorders"`
	NeedsReorder      bool       `json:"needs_reorder"`
	LastRestockDate   *time.Time `json:"last_restock_date,omitempty"`
	RestockQuantity   int64      `json:"restock_quantity"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
}

// ToStockRecordResponse converts a domain record to its response shape
func ToStockRecordResponse(r *inventory.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:                r.ID,
		ItemID:            r.ItemID,
		SKU:               r.SKU,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.AvailableQuantity(),
		LowStockThreshold: r.LowStockThreshold,
		ReorderPoint:      r.ReorderPoint,
		ReorderQuantity:   r.ReorderQuantity,
		StockStatus:       r.StockStatus.String(),
		TrackInventory:    r.TrackInventory,
		AllowBackorders:   r.AllowBackorders,
		NeedsReorder:      r.NeedsReorder(),
		LastRestockDate:   r.LastRestockDate,
		RestockQuantity:   r.RestockQuantity,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
}

// CreateStockRecordRequest represents a request to create a stock record
type CreateStockRecordRequest struct {
	ItemID            uuid.UUID `json:"item_id" binding:"required"`
	SKU               string    `json:"sku" binding:"required,min=1,max=64"`
	Quantity          int64     `json:"quantity" binding:"min=0"`
	LowStockThreshold int64     `json:"low_stock_threshold" binding:"min=0"`
	ReorderPoint      int64     `json:"reorder_point" binding:"min=0"`
	ReorderQuantity   int64     `json:"reorder_quantity" binding:"min=0"`
	TrackInventory    *bool     `json:"track_inventory"`
	AllowBackorders   bool      `json:"allow_backorders"`
}

// ReserveStockRequest represents a request to reserve stock
type ReserveStockRequest struct {
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	Reference string `json:"reference" binding:"max=128"`
}

// ReserveStockResponse reports the outcome of a reservation attempt
type ReserveStockResponse struct {
	Reserved   bool   `json:"reserved"`
	Backorder  bool   `json:"backorder"`
	Available  int64  `json:"available"`
	Reference  string `json:"reference,omitempty"`
	Idempotent bool   `json:"idempotent,omitempty"`
}

// ReleaseStockRequest represents a request to release reserved stock
type ReleaseStockRequest struct {
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	Reference string `json:"reference" binding:"max=128"`
}

// ReduceStockRequest represents a request to permanently reduce stock
type ReduceStockRequest struct {
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	Reference string `json:"reference" binding:"max=128"`
}

// ReduceStockResponse reports the outcome of a reduction attempt
type ReduceStockResponse struct {
	Reduced   bool  `json:"reduced"`
	Available int64 `json:"available"`
}

// RestockRequest represents a request to add stock
type RestockRequest struct {
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
	Reference string `json:"reference" binding:"max=128"`
}

// AdjustStockRequest represents a signed manual correction
type AdjustStockRequest struct {
	Delta     int64  `json:"delta" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=1,max=255"`
	Reference string `json:"reference" binding:"max=128"`
}

// SetThresholdsRequest updates the low-stock and reorder settings
type SetThresholdsRequest struct {
	LowStockThreshold int64 `json:"low_stock_threshold" binding:"min=0"`
	ReorderPoint      int64 `json:"reorder_point" binding:"min=0"`
	ReorderQuantity   int64 `json:"reorder_quantity" binding:"min=0"`
}

// AvailabilityResponse reports available stock for an item
type AvailabilityResponse struct {
	ItemID           uuid.UUID `json:"item_id"`
	Available        int64     `json:"available"`
	Quantity         int64     `json:"quantity"`
	ReservedQuantity int64     `json:"reserved_quantity"`
	StockStatus      string    `json:"stock_status"`
	AllowBackorders  bool      `json:"allow_backorders"`
}

// StockMovementResponse represents a ledger entry in API responses
type StockMovementResponse struct {
	ID           uuid.UUID `json:"id"`
	MovementType string    `json:"movement_type"`
	Quantity     int64     `json:"quantity"`
	Reason       string    `json:"reason,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ToStockMovementResponse converts a ledger entry to its response shape
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:           m.ID,
		MovementType: m.MovementType.String(),
		Quantity:     m.Quantity,
		Reason:       m.Reason,
		Reference:    m.Reference,
		OccurredAt:   m.OccurredAt,
	}
}

// DemandForecastResponse represents a demand projection in API
// responses. The stock-out fields are omitted when no stock-out is
// projected.
type DemandForecastResponse struct {
	ItemID                     string           `json:"item_id"`
	LookbackDays               int              `json:"lookback_days"`
	ForecastDays               int              `json:"forecast_days"`
	TotalSold                  int64            `json:"total_sold"`
	DailySalesRate             decimal.Decimal  `json:"daily_sales_rate"`
	ProjectedDemand            decimal.Decimal  `json:"projected_demand"`
	AvailableQuantity          int64            `json:"available_quantity"`
	DaysUntilStockout          *decimal.Decimal `json:"days_until_stockout,omitempty"`
	ProjectedStockoutDate      *time.Time       `json:"projected_stockout_date,omitempty"`
	RecommendedReorderQuantity int64            `json:"recommended_reorder_quantity"`
	StockoutExpected           bool             `json:"stockout_expected"`
	GeneratedAt                time.Time        `json:"generated_at"`
}

// ToDemandForecastResponse converts a domain forecast to its response shape
func ToDemandForecastResponse(f *inventory.DemandForecast) DemandForecastResponse {
	return DemandForecastResponse{
		ItemID:                     f.ItemID,
		LookbackDays:               f.LookbackDays,
		ForecastDays:               f.ForecastDays,
		TotalSold:                  f.TotalSold,
		DailySalesRate:             f.DailySalesRate,
		ProjectedDemand:            f.ProjectedDemand,
		AvailableQuantity:          f.AvailableQuantity,
		DaysUntilStockout:          f.DaysUntilStockout,
		ProjectedStockoutDate:      f.ProjectedStockoutDate,
		RecommendedReorderQuantity: f.RecommendedReorderQuantity,
		StockoutExpected:           f.StockoutExpected,
		GeneratedAt:                f.GeneratedAt,
	}
}

// StockRecordListFilter represents filter options for listing records
type StockRecordListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=in_stock low_stock out_of_stock discontinued"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
