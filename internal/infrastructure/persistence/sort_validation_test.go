package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE stock_records;--", "DESC"},
		{"whitespace only returns DESC", "   ", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSortOrder(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateSortField(t *testing.T) {
	allowedFields := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"sku":        true,
	}

	tests := []struct {
		name         string
		input        string
		allowedMap   map[string]bool
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", allowedFields, "created_at", "created_at"},
		{"valid field returns field", "sku", allowedFields, "created_at", "sku"},
		{"valid field id returns field", "id", allowedFields, "created_at", "id"},
		{"invalid field returns default", "invalid_field", allowedFields, "created_at", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE stock_records;--", allowedFields, "created_at", "created_at"},
		{"case sensitive - uppercase invalid", "SKU", allowedFields, "created_at", "created_at"},
		{"whitespace only returns default", "   ", allowedFields, "created_at", "created_at"},
		{"whitespace around valid field returns field", "  sku  ", allowedFields, "created_at", "sku"},
		{"field with spaces injection returns default", "sku records", allowedFields, "created_at", "created_at"},
		{"field with quotes injection returns default", "sku'--", allowedFields, "created_at", "created_at"},
		{"empty default with valid field", "sku", allowedFields, "", "sku"},
		{"empty default with invalid field", "invalid", allowedFields, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSortField(tt.input, tt.allowedMap, tt.defaultField)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"CommonSortFields":        CommonSortFields,
		"StockRecordSortFields":   StockRecordSortFields,
		"StockMovementSortFields": StockMovementSortFields,
	}

	commonFields := []string{"id", "created_at", "updated_at"}

	for name, whitelist := range whitelists {
		t.Run(name+" contains common fields", func(t *testing.T) {
			for _, field := range commonFields {
				assert.True(t, whitelist[field], "%s should contain '%s'", name, field)
			}
		})
	}

	t.Run("counter columns are sortable for stock records", func(t *testing.T) {
		assert.True(t, StockRecordSortFields["quantity"])
		assert.True(t, StockRecordSortFields["reserved_quantity"])
	})
}

func TestSQLInjectionPrevention(t *testing.T) {
	injectionPayloads := []string{
		"id; DROP TABLE stock_records;--",
		"id' OR '1'='1",
		"id\"; DROP TABLE stock_records;--",
		"id UNION SELECT * FROM stock_records",
		"id ORDER BY 1",
		"id, (SELECT sku FROM stock_records)",
		"CASE WHEN 1=1 THEN id ELSE sku END",
	}

	for _, payload := range injectionPayloads {
		t.Run("sort field rejects "+payload, func(t *testing.T) {
			result := ValidateSortField(payload, StockRecordSortFields, "created_at")
			assert.Equal(t, "created_at", result)
		})

		t.Run("sort order rejects "+payload, func(t *testing.T) {
			result := ValidateSortOrder(payload)
			assert.Equal(t, "DESC", result)
		})
	}
}
