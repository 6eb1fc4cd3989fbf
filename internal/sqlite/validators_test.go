package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/canopy/internal/domain/registry"
	"github.com/rpggio/canopy/internal/repository"
	"github.com/stretchr/testify/require"
)

func insertValidator(t *testing.T, db *DB, id string, score int) {
	t.Helper()
	now := time.Now().UTC()
	err := NewValidatorRepository(db).Upsert(context.Background(), &registry.Validator{
		ID:              id,
		DisplayName:     "Validator " + id,
		ReputationScore: score,
		RegisteredAt:    now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)
}

func TestValidatorRepository_UpsertGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewValidatorRepository(db)

	registered := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &registry.Validator{
		ID:              "SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE",
		DisplayName:     "Amazon Field Station",
		ReputationScore: 90,
		RegisteredAt:    registered,
		UpdatedAt:       registered,
	}
	require.NoError(t, repo.Upsert(ctx, v))

	got, err := repo.Get(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, v.DisplayName, got.DisplayName)
	require.Equal(t, 90, got.ReputationScore)
	require.True(t, registered.Equal(got.RegisteredAt))

	later := registered.Add(time.Hour)
	update := &registry.Validator{
		ID:              v.ID,
		DisplayName:     "Amazon Field Station II",
		ReputationScore: 70,
		RegisteredAt:    later,
		UpdatedAt:       later,
	}
	require.NoError(t, repo.Upsert(ctx, update))
	require.True(t, registered.Equal(update.RegisteredAt), "registration time should be kept")

	got, err = repo.Get(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, 70, got.ReputationScore)
	require.Equal(t, "Amazon Field Station II", got.DisplayName)
	require.True(t, later.Equal(got.UpdatedAt))
}

func TestValidatorRepository_GetNotFound(t *testing.T) {
	db := NewTestDB(t)

	_, err := NewValidatorRepository(db).Get(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestValidatorRepository_UpsertRejectsScore(t *testing.T) {
	db := NewTestDB(t)
	now := time.Now().UTC()

	err := NewValidatorRepository(db).Upsert(context.Background(), &registry.Validator{
		ID: "v1", ReputationScore: 150, RegisteredAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestValidatorRepository_List(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertValidator(t, db, "low", 50)
	insertValidator(t, db, "high", 95)
	insertValidator(t, db, "mid", 75)

	repo := NewValidatorRepository(db)
	all, err := repo.List(ctx, registry.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "high", all[0].ID)
	require.Equal(t, "mid", all[1].ID)
	require.Equal(t, "low", all[2].ID)

	qualified, err := repo.List(ctx, registry.ListOptions{MinReputation: 75})
	require.NoError(t, err)
	require.Len(t, qualified, 2)

	page, err := repo.List(ctx, registry.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "mid", page[0].ID)
}
