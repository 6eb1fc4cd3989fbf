package journal_test

import (
	"context"
	"testing"

	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/rpggio/canopy/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJournalService_RecordFillsDefaults(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.JournalRepository{}
	repo.On("Log", ctx, mock.MatchedBy(func(e *journal.Entry) bool {
		return e.ID != "" && !e.CreatedAt.IsZero() && e.Method == "add-project-milestones"
	})).Return(nil)

	svc := journal.NewService(repo, nil)
	require.NoError(t, svc.Record(ctx, &journal.Entry{Kind: journal.KindExecute, Method: "add-project-milestones", Status: journal.StatusOK}))
	repo.AssertExpectations(t)

	require.ErrorIs(t, svc.Record(ctx, nil), journal.ErrInvalidInput)
	require.ErrorIs(t, svc.Record(ctx, &journal.Entry{}), journal.ErrInvalidInput)
}

func TestJournalService_RecentAppliesDefaultLimit(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.JournalRepository{}
	repo.On("List", ctx, journal.ListOptions{Limit: journal.DefaultListLimit}).Return([]journal.Entry{}, nil)

	svc := journal.NewService(repo, nil)
	entries, err := svc.Recent(ctx, journal.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, entries)
	repo.AssertExpectations(t)
}
