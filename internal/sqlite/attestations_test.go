package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/canopy/internal/domain/attestation"
	"github.com/rpggio/canopy/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestAttestationRepository_RecordAttesters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertValidator(t, db, "v1", 80)
	insertValidator(t, db, "v2", 90)
	insertValidator(t, db, "v3", 85)

	repo := NewAttestationRepository(db)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	record := func(projectID uint64, metric, validator string, offset time.Duration) {
		t.Helper()
		require.NoError(t, repo.Record(ctx, &attestation.Attestation{
			ProjectID:   projectID,
			MetricName:  metric,
			ValidatorID: validator,
			AttestedAt:  base.Add(offset),
		}))
	}

	record(1, "trees_planted", "v2", 0)
	record(1, "trees_planted", "v1", time.Minute)
	record(1, "hectares_restored", "v3", 0)
	record(2, "trees_planted", "v3", 0)

	ids, err := repo.Attesters(ctx, 1, "trees_planted")
	require.NoError(t, err)
	require.Equal(t, []string{"v2", "v1"}, ids)

	ids, err = repo.Attesters(ctx, 3, "trees_planted")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestAttestationRepository_RecordTwiceIsIgnored(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertValidator(t, db, "v1", 80)

	repo := NewAttestationRepository(db)
	a := &attestation.Attestation{ProjectID: 1, MetricName: "trees_planted", ValidatorID: "v1"}
	require.NoError(t, repo.Record(ctx, a))
	require.NoError(t, repo.Record(ctx, &attestation.Attestation{ProjectID: 1, MetricName: "trees_planted", ValidatorID: "v1"}))

	ids, err := repo.Attesters(ctx, 1, "trees_planted")
	require.NoError(t, err)
	require.Equal(t, []string{"v1"}, ids)
}

func TestAttestationRepository_UnknownValidator(t *testing.T) {
	db := NewTestDB(t)

	err := NewAttestationRepository(db).Record(context.Background(), &attestation.Attestation{
		ProjectID: 1, MetricName: "trees_planted", ValidatorID: "ghost",
	})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}
