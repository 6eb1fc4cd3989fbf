package conservation

import (
	"context"

	"github.com/rpggio/canopy/internal/contract"
)

// Gateway submits calls to, and reads state from, the deployed contract. It is
// the only collaborator that can fail with a transport error.
type Gateway interface {
	Execute(ctx context.Context, call contract.Call) (contract.Response, error)
	Read(ctx context.Context, contractAddress string, call contract.Call) (contract.Response, error)
}

// ValidatorDetails is what the registry knows about a validator.
type ValidatorDetails struct {
	ID              string `json:"id"`
	DisplayName     string `json:"display_name,omitempty"`
	ReputationScore int    `json:"reputation_score"`
}

// ValidatorRegistry looks up validator reputation. An unknown validator is
// reported with an error wrapping ErrValidatorNotFound.
type ValidatorRegistry interface {
	ValidatorDetails(ctx context.Context, id string) (*ValidatorDetails, error)
}

// ApprovalCollector gathers which of the given validators approve a metric.
type ApprovalCollector interface {
	CollectApprovals(ctx context.Context, validators []string, projectID ProjectID, metric ImpactMetric) ([]string, error)
}
