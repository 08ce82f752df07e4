// Package sqlite implements the storage backing the development API server.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Markets table
CREATE TABLE IF NOT EXISTS markets (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    street_address TEXT NOT NULL DEFAULT '',
    town TEXT NOT NULL DEFAULT '',
    lga TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Buildings on a market's grounds
CREATE TABLE IF NOT EXISTS buildings (
    id TEXT PRIMARY KEY,
    market_id TEXT NOT NULL,
    name TEXT NOT NULL,
    floors INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (market_id) REFERENCES markets(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_market_buildings ON buildings(market_id);

-- Stalls within a market
CREATE TABLE IF NOT EXISTS stalls (
    id TEXT PRIMARY KEY,
    market_id TEXT NOT NULL,
    code TEXT NOT NULL,
    building_id TEXT,
    occupied INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (market_id) REFERENCES markets(id) ON DELETE CASCADE,
    FOREIGN KEY (building_id) REFERENCES buildings(id)
);
CREATE INDEX IF NOT EXISTS idx_market_stalls ON stalls(market_id);

-- Activities table
CREATE TABLE IF NOT EXISTS activities (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    scheduled_time TIMESTAMP NOT NULL,
    frequency TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('Planned', 'In Progress', 'Completed', 'Overdue')),
    market_id TEXT,
    last_completed TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    FOREIGN KEY (market_id) REFERENCES markets(id)
);
CREATE INDEX IF NOT EXISTS idx_activity_status ON activities(status);
CREATE INDEX IF NOT EXISTS idx_activity_frequency ON activities(frequency);
CREATE INDEX IF NOT EXISTS idx_activity_market ON activities(market_id);
CREATE INDEX IF NOT EXISTS idx_activity_scheduled ON activities(scheduled_time);

-- Users table
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_role ON users(role);
CREATE INDEX IF NOT EXISTS idx_user_status ON users(status);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
