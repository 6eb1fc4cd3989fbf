package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/canopy/internal/domain/attestation"
	"github.com/rpggio/canopy/internal/repository"
)

// AttestationRepository implements attestation.Repository for SQLite
type AttestationRepository struct {
	db *DB
}

// NewAttestationRepository creates a new AttestationRepository
func NewAttestationRepository(db *DB) *AttestationRepository {
	return &AttestationRepository{db: db}
}

// Record stores an attestation. A repeated attestation keeps the first
// attestation time.
func (r *AttestationRepository) Record(ctx context.Context, a *attestation.Attestation) error {
	attestedAt := a.AttestedAt
	if attestedAt.IsZero() {
		attestedAt = time.Now().UTC()
	}

	query := `
		INSERT OR IGNORE INTO attestations (project_id, metric_name, validator_id, attested_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		int64(a.ProjectID),
		a.MetricName,
		a.ValidatorID,
		attestedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to record attestation: %w", err)
	}

	a.AttestedAt = attestedAt
	return nil
}

// Attesters returns the validators that attested to a project's metric, in
// attestation order.
func (r *AttestationRepository) Attesters(ctx context.Context, projectID uint64, metricName string) ([]string, error) {
	query := `
		SELECT validator_id
		FROM attestations
		WHERE project_id = ? AND metric_name = ?
		ORDER BY attested_at ASC, validator_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, int64(projectID), metricName)
	if err != nil {
		return nil, fmt.Errorf("failed to list attesters: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attester: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attester rows: %w", err)
	}

	return ids, nil
}
