package store

import (
	"context"
	"path/filepath"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/driftstore/driftstore/internal/config"
	"github.com/driftstore/driftstore/internal/logger"
)

// newTestStore opens a real sqlite database in a temp dir and applies the
// schema. Behavior tests run against it; error paths use sqlmock.
func newTestStore(t *testing.T) *DB {
	t.Helper()

	log := logger.Nop()
	cfg := config.DB{DSN: filepath.Join(t.TempDir(), "cache.db")}

	db, err := NewConnectSQLite(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	return &DB{DB: raw, logger: logger.Nop()}, mock
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}
