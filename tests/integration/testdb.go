//go:build integration

// Package integration runs the storefront against a real PostgreSQL started
// with testcontainers.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/statyba/storefront/internal/infrastructure/migration"
	"github.com/statyba/storefront/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testDBName     = "storefront_test"
	testDBUser     = "postgres"
	testDBPassword = "storefront"
)

var (
	sharedContainer *tcpostgres.PostgresContainer
	sharedMu        sync.Mutex
)

// TestDB is a migrated PostgreSQL database
type TestDB struct {
	DB   *gorm.DB
	DSN  string
	Host string
	Port int
	t    *testing.T
}

// NewTestDB returns a connection to the shared container with every table
// truncated. The schema is migrated once per package run.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container := startContainer(t)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), cfg)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tdb := &TestDB{DB: db, DSN: dsn, Host: host, Port: port.Int(), t: t}
	tdb.CleanTables()
	return tdb
}

func startContainer(t *testing.T) *tcpostgres.PostgresContainer {
	t.Helper()
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer != nil {
		return sharedContainer
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migration.UpEmbedded(dsn, migrations.FS, zaptest.NewLogger(t)), "Failed to run migrations")

	sharedContainer = container
	return container
}

// CleanTables truncates every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q CASCADE", table)).Error)
	}
}

// WriteConfig writes a config file pointing at this database and returns its path
func (tdb *TestDB) WriteConfig(extra string) string {
	tdb.t.Helper()

	content := fmt.Sprintf(`
[app]
env = "test"
base_url = "https://shop.example.com"

[database]
host = %q
port = %d
user = %q
password = %q
dbname = %q
sslmode = "disable"

[jwt]
secret = "integration-secret-that-is-long-enough"

[log]
level = "warn"
`, tdb.Host, tdb.Port, testDBUser, testDBPassword, testDBName) + extra

	path := filepath.Join(tdb.t.TempDir(), "config.toml")
	require.NoError(tdb.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TerminateShared stops the shared container; call it from TestMain
func TerminateShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedContainer.Terminate(ctx)
	sharedContainer = nil
}
