package inventory

// StockStatus is the coarse availability state derived from quantity
// and the low-stock threshold.
type StockStatus string

const (
	// StockStatusInStock means quantity is above the low-stock threshold
	StockStatusInStock StockStatus = "in_stock"
	// StockStatusLowStock means quantity is positive but at or below the low-stock threshold
	StockStatusLowStock StockStatus = "low_stock"
	// StockStatusOutOfStock means no units are on hand
	StockStatusOutOfStock StockStatus = "out_of_stock"
	// StockStatusDiscontinued is an operator-set terminal state; the
	// automatic derivation never transitions into or out of it
	StockStatusDiscontinued StockStatus = "discontinued"
)

// String returns the string representation of StockStatus
func (s StockStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the known states
func (s StockStatus) IsValid() bool {
	switch s {
	case StockStatusInStock, StockStatusLowStock, StockStatusOutOfStock, StockStatusDiscontinued:
		return true
	}
	return false
}

// IsTerminal returns true for states that the automatic derivation must not overwrite
func (s StockStatus) IsTerminal() bool {
	return s == StockStatusDiscontinued
}

// DeriveStockStatus computes the status for the given quantity and
// low-stock threshold. The current status is passed in so that
// discontinued records stay discontinued regardless of quantity; every
// other input is mapped purely from the numbers.
func DeriveStockStatus(current StockStatus, quantity, lowStockThreshold int64) StockStatus {
	if current.IsTerminal() {
		return current
	}
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case quantity <= lowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
