package mocks

import (
	"context"

	"github.com/rpggio/canopy/internal/contract"
	"github.com/rpggio/canopy/internal/domain/attestation"
	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/rpggio/canopy/internal/domain/registry"
	"github.com/stretchr/testify/mock"
)

// Gateway is a mock for conservation.Gateway.
type Gateway struct {
	mock.Mock
}

func (m *Gateway) Execute(ctx context.Context, call contract.Call) (contract.Response, error) {
	args := m.Called(ctx, call)
	if resp, ok := args.Get(0).(contract.Response); ok {
		return resp, args.Error(1)
	}
	return contract.Response{}, args.Error(1)
}

func (m *Gateway) Read(ctx context.Context, contractAddress string, call contract.Call) (contract.Response, error) {
	args := m.Called(ctx, contractAddress, call)
	if resp, ok := args.Get(0).(contract.Response); ok {
		return resp, args.Error(1)
	}
	return contract.Response{}, args.Error(1)
}

// ValidatorRegistry is a mock for conservation.ValidatorRegistry.
type ValidatorRegistry struct {
	mock.Mock
}

func (m *ValidatorRegistry) ValidatorDetails(ctx context.Context, id string) (*conservation.ValidatorDetails, error) {
	args := m.Called(ctx, id)
	if details, ok := args.Get(0).(*conservation.ValidatorDetails); ok {
		return details, args.Error(1)
	}
	return nil, args.Error(1)
}

// ApprovalCollector is a mock for conservation.ApprovalCollector.
type ApprovalCollector struct {
	mock.Mock
}

func (m *ApprovalCollector) CollectApprovals(ctx context.Context, validators []string, projectID conservation.ProjectID, metric conservation.ImpactMetric) ([]string, error) {
	args := m.Called(ctx, validators, projectID, metric)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ValidatorRepository is a mock for registry.Repository.
type ValidatorRepository struct {
	mock.Mock
}

func (m *ValidatorRepository) Upsert(ctx context.Context, v *registry.Validator) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *ValidatorRepository) Get(ctx context.Context, id string) (*registry.Validator, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*registry.Validator); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ValidatorRepository) List(ctx context.Context, opts registry.ListOptions) ([]registry.Validator, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]registry.Validator); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AttestationRepository is a mock for attestation.Repository.
type AttestationRepository struct {
	mock.Mock
}

func (m *AttestationRepository) Record(ctx context.Context, a *attestation.Attestation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *AttestationRepository) Attesters(ctx context.Context, projectID uint64, metricName string) ([]string, error) {
	args := m.Called(ctx, projectID, metricName)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// JournalRepository is a mock for journal.Repository.
type JournalRepository struct {
	mock.Mock
}

func (m *JournalRepository) Log(ctx context.Context, entry *journal.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *JournalRepository) List(ctx context.Context, opts journal.ListOptions) ([]journal.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]journal.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
