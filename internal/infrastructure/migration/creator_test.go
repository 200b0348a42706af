package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Invoice Tables")
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(mf.UpPath), "add_invoice_tables.up.sql")
	assert.Contains(t, filepath.Base(mf.DownPath), "add_invoice_tables.down.sql")
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)

	content, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Add Invoice Tables")
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Invoice Tables", "add_invoice_tables"},
		{"plan-codes", "plan_codes"},
		{"  weird -- name  ", "weird_name"},
		{"v2", "v2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), tt.in)
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "first")
	require.NoError(t, err)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Contains(t, migrations[0], "first")
}

func TestListMigrations_MissingDirIsEmpty(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
