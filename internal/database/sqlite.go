package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fekuna/cashierpro-core/config"
)

// Open opens (creating if needed) the embedded SQLite database file.
func Open(cfg *config.SQLiteConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, cfg.BusyTimeoutMS)
	if cfg.ForeignKeys {
		dsn += "&_foreign_keys=on"
	}
	if cfg.WAL {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection keeps compound
	// write operations serialized at the storage level.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    sku TEXT NOT NULL,
    unit_price INTEGER NOT NULL,
    quantity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS mutation_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_name TEXT NOT NULL,
    sku TEXT NOT NULL,
    delta INTEGER NOT NULL,
    transaction_id TEXT,
    timestamp TIMESTAMP NOT NULL,
    kind TEXT NOT NULL DEFAULT 'mutation'
);

CREATE TABLE IF NOT EXISTS transaction_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sale_snapshot_json TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    kind TEXT NOT NULL DEFAULT 'transaction'
);

CREATE INDEX IF NOT EXISTS idx_items_sku ON items (sku);
CREATE INDEX IF NOT EXISTS idx_mutation_log_sku ON mutation_log (sku);
CREATE INDEX IF NOT EXISTS idx_mutation_log_timestamp ON mutation_log (timestamp);
CREATE INDEX IF NOT EXISTS idx_transaction_log_timestamp ON transaction_log (timestamp);
`

// InitSchema ensures the three tables and their indexes exist. Safe to call
// on every application start; a failure here is fatal to the caller.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
