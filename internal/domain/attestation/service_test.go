package attestation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/canopy/internal/domain/attestation"
	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/repository"
	"github.com/rpggio/canopy/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAttestationService_Record(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.AttestationRepository{}
	repo.On("Record", ctx, mock.MatchedBy(func(a *attestation.Attestation) bool {
		return a.ProjectID == 7 && a.MetricName == "hectares_restored" && a.ValidatorID == "val-1"
	})).Return(nil)

	svc := attestation.NewService(repo, nil)
	a, err := svc.Record(ctx, 7, "hectares_restored", "val-1")
	require.NoError(t, err)
	require.False(t, a.AttestedAt.IsZero())
	repo.AssertExpectations(t)

	_, err = svc.Record(ctx, 7, "", "val-1")
	require.ErrorIs(t, err, attestation.ErrInvalidInput)
}

func TestAttestationService_RecordUnknownValidator(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.AttestationRepository{}
	repo.On("Record", ctx, mock.Anything).Return(repository.ErrForeignKeyViolation)

	svc := attestation.NewService(repo, nil)
	_, err := svc.Record(ctx, 7, "hectares_restored", "ghost")
	require.ErrorIs(t, err, attestation.ErrValidatorNotFound)
	require.ErrorIs(t, err, conservation.ErrValidatorNotFound)
}

func TestAttestationService_CollectApprovalsKeepsValidatorOrder(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.AttestationRepository{}
	repo.On("Attesters", ctx, uint64(7), "trees_planted").
		Return([]string{"val-3", "outsider", "val-1"}, nil)

	svc := attestation.NewService(repo, nil)
	metric := conservation.ImpactMetric{MetricName: "trees_planted"}
	approvals, err := svc.CollectApprovals(ctx, []string{"val-1", "val-2", "val-3"}, 7, metric)
	require.NoError(t, err)
	require.Equal(t, []string{"val-1", "val-3"}, approvals)
}

func TestAttestationService_CollectApprovalsNoneAttested(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.AttestationRepository{}
	repo.On("Attesters", ctx, uint64(7), "trees_planted").Return([]string{}, nil)

	svc := attestation.NewService(repo, nil)
	approvals, err := svc.CollectApprovals(ctx, []string{"val-1"}, 7, conservation.ImpactMetric{MetricName: "trees_planted"})
	require.NoError(t, err)
	require.NotNil(t, approvals)
	require.Empty(t, approvals)
}

func TestAttestationService_CollectApprovalsError(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.AttestationRepository{}
	repo.On("Attesters", ctx, uint64(7), "trees_planted").Return(nil, errors.New("database is locked"))

	svc := attestation.NewService(repo, nil)
	_, err := svc.CollectApprovals(ctx, []string{"val-1"}, 7, conservation.ImpactMetric{MetricName: "trees_planted"})
	require.Error(t, err)
}
