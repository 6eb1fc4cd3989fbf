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

	// Pragmas and in-memory databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the local tables if they do not exist.
func (db *DB) RunMigrations() error {
	migration := `
-- Validator registry
CREATE TABLE IF NOT EXISTS validators (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    reputation_score INTEGER NOT NULL CHECK(reputation_score BETWEEN 0 AND 100),
    registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_validator_reputation ON validators(reputation_score);

-- Validator attestations of impact metrics
CREATE TABLE IF NOT EXISTS attestations (
    project_id INTEGER NOT NULL,
    metric_name TEXT NOT NULL,
    validator_id TEXT NOT NULL,
    attested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (project_id, metric_name, validator_id),
    FOREIGN KEY (validator_id) REFERENCES validators(id)
);

-- Submission journal
CREATE TABLE IF NOT EXISTS journal (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL CHECK(kind IN ('execute', 'read')),
    method TEXT NOT NULL,
    project_id INTEGER,
    status TEXT NOT NULL CHECK(status IN ('ok', 'failed')),
    error TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_journal_project ON journal(project_id);
CREATE INDEX IF NOT EXISTS idx_journal_created_at ON journal(created_at);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
