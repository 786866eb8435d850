package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStubMigrations(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- stub"), 0644))
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create stock records", "create_stock_records"},
		{"Create-Stock-Records", "create_stock_records"},
		{"CREATE_STOCK_RECORDS", "create_stock_records"},
		{"add__reorder__point", "add_reorder_point"},
		{"Add Ledger 100", "add_ledger_100"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add reorder point index", "Index stock_records on reorder_point for alert scans")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// Timestamp version, YYYYMMDDHHMMSS.
	assert.Len(t, mf.Version, 14)

	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add reorder point index")
	assert.Contains(t, string(upContent), "Index stock_records on reorder_point for alert scans")
	assert.Contains(t, string(upContent), "Write your UP migration SQL here")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")
	assert.Contains(t, string(downContent), "Write your DOWN migration SQL here")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	mf, err := CreateMigration(nested, "create stock records", "initial schema")
	require.NoError(t, err)
	require.NotNil(t, mf)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	writeStubMigrations(t, dir,
		"000001_create_inventory.up.sql",
		"000001_create_inventory.down.sql",
		"000002_add_reorder_index.up.sql",
		"000002_add_reorder_index.down.sql",
		"000003_add_forecast_columns.up.sql",
		"000003_add_forecast_columns.down.sql",
	)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Contains(t, migrations, "000001_create_inventory")
	assert.Contains(t, migrations, "000002_add_reorder_index")
	assert.Contains(t, migrations, "000003_add_forecast_columns")
}

func TestListMigrations_EmptyDirectory(t *testing.T) {
	migrations, err := ListMigrations(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestListMigrations_SkipsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeStubMigrations(t, dir,
		"000001_create_inventory.up.sql",
		"000001_create_inventory.down.sql",
		"README.md",
		"config.toml",
		".gitkeep",
	)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Contains(t, migrations, "000001_create_inventory")
}

func TestListMigrations_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	writeStubMigrations(t, dir,
		"000001_create_inventory.up.sql",
		"000001_create_inventory.down.sql",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Len(t, migrations, 1)
}
