package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	gormDB, mock, _ := newMockDB(t)
	return &Database{DB: gormDB}, mock
}

func TestDatabase_WithTenant(t *testing.T) {
	t.Run("scopes queries to the tenant", func(t *testing.T) {
		db, mock := newMockDatabase(t)

		mock.ExpectQuery(`SELECT \* FROM "plan_codes" WHERE tenant_id = \$1`).
			WithArgs("tenant-1").
			WillReturnRows(sqlmock.NewRows([]string{"code"}))

		var models []PlanCodeModel
		err := db.WithTenant("tenant-1").Find(&models).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("panics on empty tenant ID", func(t *testing.T) {
		db, _ := newMockDatabase(t)

		assert.Panics(t, func() {
			db.WithTenant("")
		})
	})
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		db, mock := newMockDatabase(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "plan_codes"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Exec(`UPDATE "plan_codes" SET active = false`).Error
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		db, mock := newMockDatabase(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _ := newMockDatabase(t)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestDatabase_Close(t *testing.T) {
	db, mock := newMockDatabase(t)

	mock.ExpectClose()
	require.NoError(t, db.Close())
}
