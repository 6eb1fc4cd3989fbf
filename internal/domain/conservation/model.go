package conservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectID identifies a project once the contract has stored it.
type ProjectID uint64

// ProjectStatus is a stage of the project lifecycle. Transitions are driven by
// the contract, never by the tracker.
type ProjectStatus int

const (
	StatusProposed ProjectStatus = iota
	StatusVoting
	StatusApproved
	StatusFunding
	StatusActive
	StatusCompleted
	StatusClosed
)

var statusNames = [...]string{
	StatusProposed:  "proposed",
	StatusVoting:    "voting",
	StatusApproved:  "approved",
	StatusFunding:   "funding",
	StatusActive:    "active",
	StatusCompleted: "completed",
	StatusClosed:    "closed",
}

func (s ProjectStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	return s >= StatusProposed && s <= StatusClosed
}

// Next returns the following lifecycle stage. Closed has no successor.
func (s ProjectStatus) Next() (ProjectStatus, bool) {
	if !s.Valid() || s == StatusClosed {
		return s, false
	}
	return s + 1, true
}

// ParseProjectStatus parses a status name, ignoring case.
func ParseProjectStatus(name string) (ProjectStatus, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == name {
			return ProjectStatus(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, name)
}

func (s ProjectStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.String()), nil
}

func (s *ProjectStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseProjectStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Milestone is a funding tranche released when its work is complete.
type Milestone struct {
	Description       string          `json:"description" yaml:"description"`
	FundingPercentage decimal.Decimal `json:"funding_percentage" yaml:"funding_percentage"`
	IsCompleted       bool            `json:"is_completed" yaml:"is_completed"`
	CompletionDate    *time.Time      `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
}

// ImpactMetric is a measured outcome attested by validators.
type ImpactMetric struct {
	MetricName         string          `json:"metric_name" yaml:"metric_name"`
	Value              decimal.Decimal `json:"value" yaml:"value"`
	ValidatorApprovals []string        `json:"validator_approvals,omitempty" yaml:"validator_approvals,omitempty"`
}

// VotingPeriod bounds the governance vote on a proposed project.
type VotingPeriod struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// ConservationProject is the caller-owned description of a project before it
// is submitted. It has no identity until the contract assigns a ProjectID.
type ConservationProject struct {
	Name           string          `json:"name" yaml:"name"`
	Description    string          `json:"description" yaml:"description"`
	TargetFunding  decimal.Decimal `json:"target_funding" yaml:"target_funding"`
	CurrentFunding decimal.Decimal `json:"current_funding" yaml:"current_funding"`
	Status         ProjectStatus   `json:"status" yaml:"status"`
	Owner          string          `json:"owner" yaml:"owner"`
	Validators     []string        `json:"validators,omitempty" yaml:"validators,omitempty"`
	VotingPeriod   *VotingPeriod   `json:"voting_period,omitempty" yaml:"voting_period,omitempty"`
	Milestones     []Milestone     `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	ImpactMetrics  []ImpactMetric  `json:"impact_metrics,omitempty" yaml:"impact_metrics,omitempty"`
}

// StoredMilestone is a milestone as the contract keeps it.
type StoredMilestone struct {
	Description       string     `json:"description"`
	FundingPercentage int64      `json:"funding_percentage"`
	IsCompleted       bool       `json:"is_completed"`
	CompletionDate    *time.Time `json:"completion_date,omitempty"`
}

// StoredMetric is an impact metric as the contract keeps it, with its value
// in fixed-point hundredths.
type StoredMetric struct {
	MetricName         string   `json:"metric_name"`
	Value              int64    `json:"value"`
	ValidatorApprovals []string `json:"validator_approvals"`
}

// ProjectDetails is the contract's authoritative view of a stored project.
// Funding amounts are in minor currency units.
type ProjectDetails struct {
	ProjectID      ProjectID         `json:"project_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	TargetFunding  int64             `json:"target_funding"`
	CurrentFunding int64             `json:"current_funding"`
	Status         ProjectStatus     `json:"status"`
	Owner          string            `json:"owner"`
	Validators     []string          `json:"validators"`
	Milestones     []StoredMilestone `json:"milestones,omitempty"`
	ImpactMetrics  []StoredMetric    `json:"impact_metrics,omitempty"`
}
