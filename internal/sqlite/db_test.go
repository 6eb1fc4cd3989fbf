package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"validators",
		"attestations",
		"journal",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	require.NoError(t, db.RunMigrations(), "migrations should be re-runnable")
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestValidatorsTable verifies the reputation score constraint
func TestValidatorsTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO validators (id, display_name, reputation_score) VALUES (?, ?, ?)`,
		"v1", "Field Station", 80)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO validators (id, display_name, reputation_score) VALUES (?, ?, ?)`,
		"v2", "Too Good", 101)
	require.Error(t, err, "should fail with score above 100")

	_, err = db.ExecContext(ctx,
		`INSERT INTO attestations (project_id, metric_name, validator_id) VALUES (?, ?, ?)`,
		1, "trees_planted", "nobody")
	require.Error(t, err, "should fail with unknown validator")
}
