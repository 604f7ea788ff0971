package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(sqlite.Open(":memory:"), nil, gormlogger.Silent, 0)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.DB.AutoMigrate(Models()...))
	return db
}

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
