// Package driver
package driver

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	busyTimeout     = 5 * time.Second
	pingTimeout     = 5 * time.Second
	maxOpenConns    = 1
	connMaxLifetime = 5 * time.Minute
)

// slotSchema holds the single key-value slot table backing local
// persistence. One row per named slot.
const slotSchema = `
CREATE TABLE IF NOT EXISTS kv_slots (
	name  TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// ConnectSQLite opens (creating if needed) the per-profile sqlite database
// at path and ensures the slot table exists. The parent directory is
// created when missing.
func ConnectSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single writer keeps slot writes whole; sqlite serializes anyway.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err = testSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err = db.Exec(slotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create slot table: %w", err)
	}

	return db, nil
}

// testSQLite pings the database to verify the connection
func testSQLite(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	return db.PingContext(ctx)
}
