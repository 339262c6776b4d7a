package store

import (
	"database/sql"

	"github.com/driftstore/driftstore/internal/logger"
	"github.com/driftstore/driftstore/migrations"
)

// DB wraps the shared cache database handle. One DB backs every collection's
// cache and queue; SQLite serializes writes at the connection level.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
