package postgres

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormLogger "gorm.io/gorm/logger"

	"warehouse-manager/internal/infrastructure/database/postgres/models"
)

// newTestDB opens a throwaway SQLite database with the production models.
// Writers wait on each other instead of failing with "database is locked".
func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := Open(sqlite.Open(dsn), gormLogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.WarehouseModel{}))

	t.Cleanup(func() { _ = db.Close() })
	return db
}
