package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandForecast projects future demand for one stock record from its
// recent outbound movement history. DaysUntilStockout and
// ProjectedStockoutDate are nil when no stock-out is projected, which
// keeps an idle item distinct from one that is already out.
type DemandForecast struct {
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

// ComputeDemandForecast derives a forecast from the outbound movements
// retained in the ledger. Only 'out' movements count as sales;
// reservations and adjustments do not. When nothing was sold the rate
// is zero, no stock-out is projected, and the reorder recommendation
// falls back to the record's reorder point.
func ComputeDemandForecast(record *StockRecord, ledger *MovementLedger, lookbackDays, forecastDays int, now time.Time) *DemandForecast {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	if forecastDays <= 0 {
		forecastDays = lookbackDays
	}

	cutoff := now.AddDate(0, 0, -lookbackDays)
	var totalSold int64
	if ledger != nil {
		for _, m := range ledger.Entries() {
			if m.MovementType != MovementTypeOut {
				continue
			}
			if m.OccurredAt.Before(cutoff) {
				continue
			}
			totalSold += m.Quantity
		}
	}

	rate := decimal.NewFromInt(totalSold).Div(decimal.NewFromInt(int64(lookbackDays)))
	projected := rate.Mul(decimal.NewFromInt(int64(forecastDays)))
	available := record.AvailableQuantity()

	recommended := rate.Mul(decimal.NewFromInt(int64(lookbackDays))).Ceil().IntPart() - available
	if recommended < record.ReorderPoint {
		recommended = record.ReorderPoint
	}

	f := &DemandForecast{
		ItemID:                     record.ItemID.String(),
		LookbackDays:               lookbackDays,
		ForecastDays:               forecastDays,
		TotalSold:                  totalSold,
		DailySalesRate:             rate,
		ProjectedDemand:            projected,
		AvailableQuantity:          available,
		RecommendedReorderQuantity: recommended,
		GeneratedAt:                now,
	}

	if rate.IsPositive() {
		days := decimal.NewFromInt(available).Div(rate)
		stockoutDate := now.Add(time.Duration(days.InexactFloat64() * float64(24*time.Hour)))
		f.DaysUntilStockout = &days
		f.ProjectedStockoutDate = &stockoutDate
		f.StockoutExpected = days.LessThanOrEqual(decimal.NewFromInt(int64(forecastDays)))
	}
	return f
}
