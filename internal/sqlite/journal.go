package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/rpggio/canopy/internal/repository"
)

// JournalRepository implements journal.Repository for SQLite
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new JournalRepository
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Log inserts a new journal entry
func (r *JournalRepository) Log(ctx context.Context, entry *journal.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var projectID sql.NullInt64
	if entry.ProjectID != nil {
		projectID = sql.NullInt64{Int64: int64(*entry.ProjectID), Valid: true}
	}

	query := `
		INSERT INTO journal (
			id, kind, method, project_id, status, error, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.Kind),
		entry.Method,
		projectID,
		string(entry.Status),
		entry.Error,
		entry.Duration,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) || isCheckViolation(err) {
			return fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
		}
		return fmt.Errorf("failed to log journal entry: %w", err)
	}

	entry.CreatedAt = createdAt
	return nil
}

// List returns journal entries matching the given filters, newest first
func (r *JournalRepository) List(ctx context.Context, opts journal.ListOptions) ([]journal.Entry, error) {
	query := `
		SELECT id, kind, method, project_id, status, error, duration_ms, created_at
		FROM journal
	`

	args := []any{}
	conditions := []string{}

	if opts.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, int64(*opts.ProjectID))
	}
	if opts.Method != "" {
		conditions = append(conditions, "method = ?")
		args = append(args, opts.Method)
	}
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(opts.Status))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var entry journal.Entry
		var kind, status string
		var projectID sql.NullInt64
		if err := rows.Scan(
			&entry.ID,
			&kind,
			&entry.Method,
			&projectID,
			&status,
			&entry.Error,
			&entry.Duration,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entry.Kind = journal.Kind(kind)
		entry.Status = journal.Status(status)
		if projectID.Valid {
			id := uint64(projectID.Int64)
			entry.ProjectID = &id
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	return entries, nil
}
