package conservation_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rpggio/canopy/internal/contract"
	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/repository/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const contractAddress = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7.conservation-tracker"

type trackerFixture struct {
	gateway   *mocks.Gateway
	registry  *mocks.ValidatorRegistry
	approvals *mocks.ApprovalCollector
	tracker   *conservation.Tracker
}

func newTrackerFixture(t *testing.T) *trackerFixture {
	t.Helper()
	f := &trackerFixture{
		gateway:   &mocks.Gateway{},
		registry:  &mocks.ValidatorRegistry{},
		approvals: &mocks.ApprovalCollector{},
	}
	f.tracker = conservation.NewTracker(f.gateway, f.registry, f.approvals,
		conservation.Options{ContractAddress: contractAddress}, nil)
	return f
}

func (f *trackerFixture) withScores(scores map[string]int) {
	for id, score := range scores {
		f.registry.On("ValidatorDetails", mock.Anything, id).
			Return(&conservation.ValidatorDetails{ID: id, ReputationScore: score}, nil)
	}
}

func amazonProject() conservation.ConservationProject {
	return conservation.ConservationProject{
		Name:          "Amazon Rainforest Restoration",
		Description:   "Reforest degraded land in the Amazon basin",
		TargetFunding: decimal.RequireFromString("500000.00"),
		Owner:         "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7",
	}
}

func detailsResponse(t *testing.T, details conservation.ProjectDetails) contract.Response {
	t.Helper()
	raw, err := json.Marshal(details)
	require.NoError(t, err)
	return contract.Response{Method: conservation.MethodGetProjectDetails, Result: raw}
}

func TestTracker_CreateProject(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	f.withScores(map[string]int{"validator1": 80, "validator2": 80, "validator3": 50})

	want := contract.Call{
		Method: "create-conservation-project",
		Args: []any{
			"Amazon Rainforest Restoration",
			"Reforest degraded land in the Amazon basin",
			int64(50000000),
			[]string{"validator1", "validator2"},
		},
	}
	resp := contract.Response{Method: want.Method, Result: json.RawMessage(`{"project_id":1}`)}
	f.gateway.On("Execute", mock.Anything, want).Return(resp, nil)

	got, err := f.tracker.CreateProject(ctx, amazonProject(), []string{"validator1", "validator3", "validator2"})
	require.NoError(t, err)
	require.Equal(t, resp, got)
	f.gateway.AssertExpectations(t)
}

func TestTracker_CreateProjectFailsFastOnValidators(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	f.withScores(map[string]int{"validator1": 80, "validator2": 10})

	_, err := f.tracker.CreateProject(ctx, amazonProject(), []string{"validator1", "validator2"})
	require.ErrorIs(t, err, conservation.ErrInsufficientValidators)
	f.gateway.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestTracker_CreateProjectWithoutRegistry(t *testing.T) {
	gateway := &mocks.Gateway{}
	tracker := conservation.NewTracker(gateway, nil, nil, conservation.Options{ContractAddress: contractAddress}, nil)

	_, err := tracker.CreateProject(context.Background(), amazonProject(), []string{"validator1", "validator2"})
	require.ErrorIs(t, err, conservation.ErrValidatorLookup)
	gateway.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestTracker_AddMilestones(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	f.gateway.On("Execute", mock.Anything, mock.MatchedBy(func(c contract.Call) bool {
		return c.Method == conservation.MethodAddMilestones
	})).Return(contract.Response{Method: conservation.MethodAddMilestones}, nil)

	_, err := f.tracker.AddMilestones(ctx, 3, []conservation.Milestone{
		{Description: "A", FundingPercentage: decimal.NewFromInt(40)},
		{Description: "B", FundingPercentage: decimal.NewFromInt(60)},
	})
	require.NoError(t, err)

	_, err = f.tracker.AddMilestones(ctx, 3, []conservation.Milestone{
		{Description: "A", FundingPercentage: decimal.NewFromInt(40)},
		{Description: "B", FundingPercentage: decimal.NewFromInt(50)},
	})
	require.ErrorIs(t, err, conservation.ErrInvalidMilestoneAllocation)
	f.gateway.AssertNumberOfCalls(t, "Execute", 1)
}

func TestTracker_ValidateImpactUsesStoredValidators(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)

	stored := conservation.ProjectDetails{ProjectID: 3, Name: "Amazon Rainforest Restoration", Validators: []string{"val-1", "val-2"}}
	f.gateway.On("Read", mock.Anything, contractAddress, conservation.BuildGetProjectDetails(3)).
		Return(detailsResponse(t, stored), nil)

	metric := conservation.ImpactMetric{MetricName: "hectares_restored", Value: decimal.RequireFromString("12.5")}
	f.approvals.On("CollectApprovals", mock.Anything, []string{"val-1", "val-2"}, conservation.ProjectID(3), metric).
		Return([]string{"val-2"}, nil)

	want := contract.Call{
		Method: conservation.MethodAddImpactMetrics,
		Args: []any{conservation.ProjectID(3), []conservation.MetricArg{
			{MetricName: "hectares_restored", Value: 1250, ValidatorApprovals: []string{"val-2"}},
		}},
	}
	f.gateway.On("Execute", mock.Anything, want).Return(contract.Response{Method: want.Method}, nil)

	_, err := f.tracker.ValidateImpact(ctx, 3, []conservation.ImpactMetric{metric})
	require.NoError(t, err)
	f.gateway.AssertExpectations(t)
	f.approvals.AssertExpectations(t)
}

func TestTracker_ValidateImpactApprovalFailure(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	f.gateway.On("Read", mock.Anything, contractAddress, mock.Anything).
		Return(detailsResponse(t, conservation.ProjectDetails{ProjectID: 3, Validators: []string{"val-1"}}), nil)
	f.approvals.On("CollectApprovals", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("attestation store offline"))

	_, err := f.tracker.ValidateImpact(ctx, 3, []conservation.ImpactMetric{{MetricName: "m"}})
	require.ErrorIs(t, err, conservation.ErrApprovalCollection)
	f.gateway.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestTracker_Contribute(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	amount := decimal.RequireFromString("250")
	f.gateway.On("Execute", mock.Anything, contract.Call{
		Method: conservation.MethodContribute,
		Args:   []any{conservation.ProjectID(3), amount},
	}).Return(contract.Response{Method: conservation.MethodContribute}, nil)

	_, err := f.tracker.Contribute(ctx, 3, amount)
	require.NoError(t, err)

	_, err = f.tracker.Contribute(ctx, 3, decimal.RequireFromString("-5"))
	require.ErrorIs(t, err, conservation.ErrInvalidAmount)
}

func TestTracker_GetProjectDetails(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	stored := conservation.ProjectDetails{
		ProjectID:     3,
		Name:          "Amazon Rainforest Restoration",
		TargetFunding: 50000000,
		Status:        conservation.StatusVoting,
		Validators:    []string{"val-1", "val-2"},
	}
	f.gateway.On("Read", mock.Anything, contractAddress, conservation.BuildGetProjectDetails(3)).
		Return(detailsResponse(t, stored), nil)

	details, err := f.tracker.GetProjectDetails(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, stored.Name, details.Name)
	require.Equal(t, conservation.StatusVoting, details.Status)
}

func TestTracker_GetProjectDetailsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newTrackerFixture(t)
	f.gateway.On("Read", mock.Anything, contractAddress, mock.Anything).
		Return(contract.Response{Method: conservation.MethodGetProjectDetails, Result: json.RawMessage("null")}, nil)

	details, err := f.tracker.GetProjectDetails(ctx, 404)
	require.ErrorIs(t, err, conservation.ErrProjectNotFound)
	require.Nil(t, details)
}

func TestTracker_GatewayFailurePropagatesFromEveryOperation(t *testing.T) {
	transportErr := errors.New("dial tcp 127.0.0.1:20443: connection refused")

	f := newTrackerFixture(t)
	f.withScores(map[string]int{"val-1": 90, "val-2": 90})
	f.gateway.On("Execute", mock.Anything, mock.Anything).Return(contract.Response{}, transportErr)
	f.gateway.On("Read", mock.Anything, mock.Anything, mock.Anything).Return(contract.Response{}, transportErr)

	ctx := context.Background()
	ops := map[string]func(t *testing.T) error{
		"create": func(t *testing.T) error {
			resp, err := f.tracker.CreateProject(ctx, amazonProject(), []string{"val-1", "val-2"})
			require.True(t, resp.IsEmpty())
			return err
		},
		"milestones": func(t *testing.T) error {
			resp, err := f.tracker.AddMilestones(ctx, 1, []conservation.Milestone{{Description: "all", FundingPercentage: decimal.NewFromInt(100)}})
			require.True(t, resp.IsEmpty())
			return err
		},
		"impact": func(t *testing.T) error {
			resp, err := f.tracker.ValidateImpact(ctx, 1, []conservation.ImpactMetric{{MetricName: "m"}})
			require.True(t, resp.IsEmpty())
			return err
		},
		"contribute": func(t *testing.T) error {
			resp, err := f.tracker.Contribute(ctx, 1, decimal.NewFromInt(10))
			require.True(t, resp.IsEmpty())
			return err
		},
		"details": func(t *testing.T) error {
			details, err := f.tracker.GetProjectDetails(ctx, 1)
			require.Nil(t, details)
			return err
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op(t)
			require.Error(t, err)
			var gwErr *conservation.GatewayError
			require.ErrorAs(t, err, &gwErr)
			require.ErrorIs(t, err, transportErr)
			require.False(t, gwErr.Canceled)
			require.NotErrorIs(t, err, conservation.ErrCanceled)
		})
	}
}

func TestTracker_CancellationIsDistinct(t *testing.T) {
	f := newTrackerFixture(t)
	f.gateway.On("Execute", mock.Anything, mock.Anything).Return(contract.Response{}, context.DeadlineExceeded)

	_, err := f.tracker.Contribute(context.Background(), 1, decimal.NewFromInt(10))
	require.ErrorIs(t, err, conservation.ErrCanceled)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var gwErr *conservation.GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "contribute", gwErr.Op)
	require.NotNil(t, gwErr.ProjectID)
	require.Equal(t, conservation.ProjectID(1), *gwErr.ProjectID)
}
