package mcp

import (
	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/rpggio/canopy/internal/domain/registry"
)

// Decimal quantities are passed as strings so they are never rounded through
// floating point.

type CreateProjectParams struct {
	Name          string   `json:"name" jsonschema:"Project name"`
	Description   string   `json:"description" jsonschema:"What the project will do"`
	TargetFunding string   `json:"target_funding" jsonschema:"Funding goal in major currency units as a decimal string such as 500000.00"`
	Owner         string   `json:"owner,omitempty" jsonschema:"Owning principal"`
	Validators    []string `json:"validators" jsonschema:"Proposed validator ids"`
}

type MilestoneInput struct {
	Description       string `json:"description"`
	FundingPercentage string `json:"funding_percentage" jsonschema:"Share of funding released at this milestone as a decimal string"`
}

type AddMilestonesParams struct {
	ProjectID  uint64           `json:"project_id"`
	Milestones []MilestoneInput `json:"milestones" jsonschema:"Milestones whose percentages total exactly 100"`
}

type MetricInput struct {
	MetricName string `json:"metric_name"`
	Value      string `json:"value" jsonschema:"Measured value as a decimal string"`
}

type ValidateImpactParams struct {
	ProjectID uint64        `json:"project_id"`
	Metrics   []MetricInput `json:"metrics"`
}

type ContributeParams struct {
	ProjectID uint64 `json:"project_id"`
	Amount    string `json:"amount" jsonschema:"Contribution as a positive decimal string"`
}

type GetProjectParams struct {
	ProjectID uint64 `json:"project_id"`
}

type RegisterValidatorParams struct {
	ID              string `json:"id" jsonschema:"Validator principal id"`
	DisplayName     string `json:"display_name,omitempty"`
	ReputationScore int    `json:"reputation_score" jsonschema:"Reputation score from 0 to 100"`
}

type ListValidatorsParams struct {
	MinReputation int `json:"min_reputation,omitempty"`
	Limit         int `json:"limit,omitempty"`
	Offset        int `json:"offset,omitempty"`
}

type RecordAttestationParams struct {
	ProjectID   uint64 `json:"project_id"`
	MetricName  string `json:"metric_name"`
	ValidatorID string `json:"validator_id"`
}

type ListSubmissionsParams struct {
	ProjectID *uint64 `json:"project_id,omitempty"`
	Method    string  `json:"method,omitempty"`
	Status    string  `json:"status,omitempty" jsonschema:"ok or failed"`
	Limit     int     `json:"limit,omitempty"`
	Offset    int     `json:"offset,omitempty"`
}

type ListValidatorsResult struct {
	Validators []registry.Validator `json:"validators"`
}

type ListSubmissionsResult struct {
	Entries []journal.Entry `json:"entries"`
}
