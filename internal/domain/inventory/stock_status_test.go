package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStockStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   StockStatus
		quantity  int64
		threshold int64
		want      StockStatus
	}{
		{"above threshold is in stock", StockStatusInStock, 10, 3, StockStatusInStock},
		{"at threshold is low stock", StockStatusInStock, 3, 3, StockStatusLowStock},
		{"below threshold is low stock", StockStatusInStock, 1, 3, StockStatusLowStock},
		{"zero is out of stock", StockStatusLowStock, 0, 3, StockStatusOutOfStock},
		{"negative is out of stock", StockStatusLowStock, -2, 3, StockStatusOutOfStock},
		{"zero threshold skips low stock", StockStatusOutOfStock, 1, 0, StockStatusInStock},
		{"discontinued stays discontinued", StockStatusDiscontinued, 100, 3, StockStatusDiscontinued},
		{"empty current derives normally", "", 5, 3, StockStatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStockStatus(tt.current, tt.quantity, tt.threshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStockStatus_IsValid(t *testing.T) {
	assert.True(t, StockStatusInStock.IsValid())
	assert.True(t, StockStatusLowStock.IsValid())
	assert.True(t, StockStatusOutOfStock.IsValid())
	assert.True(t, StockStatusDiscontinued.IsValid())
	assert.False(t, StockStatus("backordered").IsValid())
}

func TestMovementType_IsValid(t *testing.T) {
	assert.True(t, MovementTypeIn.IsValid())
	assert.True(t, MovementTypeOut.IsValid())
	assert.True(t, MovementTypeAdjustment.IsValid())
	assert.True(t, MovementTypeReserved.IsValid())
	assert.True(t, MovementTypeUnreserved.IsValid())
	assert.False(t, MovementType("transfer").IsValid())
}

func TestMovementType_AffectsOnHand(t *testing.T) {
	assert.True(t, MovementTypeIn.AffectsOnHand())
	assert.True(t, MovementTypeOut.AffectsOnHand())
	assert.True(t, MovementTypeAdjustment.AffectsOnHand())
	assert.False(t, MovementTypeReserved.AffectsOnHand())
	assert.False(t, MovementTypeUnreserved.AffectsOnHand())
}
