package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/canopy/internal/domain/registry"
	"github.com/rpggio/canopy/internal/repository"
)

// ValidatorRepository implements registry.Repository for SQLite
type ValidatorRepository struct {
	db *DB
}

// NewValidatorRepository creates a new ValidatorRepository
func NewValidatorRepository(db *DB) *ValidatorRepository {
	return &ValidatorRepository{db: db}
}

// Upsert inserts a validator or updates the name and score of an existing
// one. The original registration time is kept.
func (r *ValidatorRepository) Upsert(ctx context.Context, v *registry.Validator) error {
	query := `
		INSERT INTO validators (id, display_name, reputation_score, registered_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			reputation_score = excluded.reputation_score,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.DisplayName,
		v.ReputationScore,
		v.RegisteredAt,
		v.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: reputation score %d", repository.ErrInvalidInput, v.ReputationScore)
		}
		return fmt.Errorf("failed to upsert validator: %w", err)
	}

	stored, err := r.Get(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("failed to reload validator: %w", err)
	}
	v.RegisteredAt = stored.RegisteredAt

	return nil
}

// Get retrieves a validator by ID
func (r *ValidatorRepository) Get(ctx context.Context, id string) (*registry.Validator, error) {
	query := `
		SELECT id, display_name, reputation_score, registered_at, updated_at
		FROM validators
		WHERE id = ?
	`

	var v registry.Validator
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.DisplayName,
		&v.ReputationScore,
		&v.RegisteredAt,
		&v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validator: %w", err)
	}

	return &v, nil
}

// List returns validators, highest reputation first
func (r *ValidatorRepository) List(ctx context.Context, opts registry.ListOptions) ([]registry.Validator, error) {
	query := `
		SELECT id, display_name, reputation_score, registered_at, updated_at
		FROM validators
		WHERE reputation_score >= ?
		ORDER BY reputation_score DESC, id ASC
	`
	args := []any{opts.MinReputation}

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
		return nil, fmt.Errorf("failed to list validators: %w", err)
	}
	defer rows.Close()

	var validators []registry.Validator
	for rows.Next() {
		var v registry.Validator
		if err := rows.Scan(
			&v.ID,
			&v.DisplayName,
			&v.ReputationScore,
			&v.RegisteredAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan validator: %w", err)
		}
		validators = append(validators, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validator rows: %w", err)
	}

	return validators, nil
}
