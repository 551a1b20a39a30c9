package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nexuscore/nexus/internal/logging"
	"github.com/nexuscore/nexus/internal/store/migrations"
)

// Open creates the database directory if needed, opens a single-connection
// WAL-mode SQLite handle, and runs every pending migration.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	// SQLite doesn't tolerate concurrent writers; every access funnels
	// through this single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	logging.Infof("store: database ready at %s", path)
	return db, nil
}
