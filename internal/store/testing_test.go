package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"drivenpass/internal/config"
	"drivenpass/internal/logging"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name()))
	return openMigrated(t, config.DriverSQLite, dsn)
}

// newPostgresDB returns a migrated database when DRIVENPASS_TEST_POSTGRES_URL is set.
func newPostgresDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := os.Getenv("DRIVENPASS_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("DRIVENPASS_TEST_POSTGRES_URL not set")
	}
	db := openMigrated(t, config.DriverPostgres, dsn)
	_, err := db.ExecContext(context.Background(), "TRUNCATE sessions, secrets, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	return db
}

func openMigrated(t *testing.T, driver, dsn string) *bun.DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := NewMigrator(db, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))
	return db
}
