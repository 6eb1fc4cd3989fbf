package conservation

import (
	"fmt"

	"github.com/rpggio/canopy/internal/contract"
	"github.com/shopspring/decimal"
)

// Contract method names.
const (
	MethodCreateProject     = "create-conservation-project"
	MethodAddMilestones     = "add-project-milestones"
	MethodAddImpactMetrics  = "add-impact-metrics"
	MethodContribute        = "contribute-to-project"
	MethodGetProjectDetails = "get-project-details"
)

var hundred = decimal.NewFromInt(100)

// MilestoneArg is a milestone in the contract's argument layout.
type MilestoneArg struct {
	Description       string `json:"description"`
	FundingPercentage int64  `json:"funding_percentage"`
}

// MetricArg is an impact metric in the contract's argument layout.
type MetricArg struct {
	MetricName         string   `json:"metric_name"`
	Value              int64    `json:"value"`
	ValidatorApprovals []string `json:"validator_approvals"`
}

// BuildCreateProject prepares the project creation call. The target funding is
// sent in minor currency units.
func BuildCreateProject(project ConservationProject, verified []string, mode RoundingMode) (contract.Call, error) {
	target, err := ToMinorUnits(project.TargetFunding, mode)
	if err != nil {
		return contract.Call{}, fmt.Errorf("target funding: %w", err)
	}
	validators := make([]string, len(verified))
	copy(validators, verified)
	return contract.Call{
		Method: MethodCreateProject,
		Args:   []any{project.Name, project.Description, target, validators},
	}, nil
}

// CheckMilestoneAllocation verifies the percentages sum to exactly 100 and each
// lies in [0, 100].
func CheckMilestoneAllocation(milestones []Milestone) error {
	total := decimal.Zero
	for i, m := range milestones {
		if m.FundingPercentage.IsNegative() || m.FundingPercentage.GreaterThan(hundred) {
			return fmt.Errorf("%w: milestone %d has %s%%",
				ErrInvalidMilestoneAllocation, i, m.FundingPercentage.String())
		}
		total = total.Add(m.FundingPercentage)
	}
	if !total.Equal(hundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidMilestoneAllocation, total.String())
	}
	return nil
}

// BuildAddMilestones prepares the milestone call after checking the
// allocation both before and after each share is rounded.
func BuildAddMilestones(projectID ProjectID, milestones []Milestone, mode RoundingMode) (contract.Call, error) {
	if err := CheckMilestoneAllocation(milestones); err != nil {
		return contract.Call{}, err
	}
	args := make([]MilestoneArg, 0, len(milestones))
	var total int64
	for _, m := range milestones {
		share := Round(m.FundingPercentage, mode).IntPart()
		total += share
		args = append(args, MilestoneArg{
			Description:       m.Description,
			FundingPercentage: share,
		})
	}
	// Shares go on the wire as whole percentages.
	if total != 100 {
		return contract.Call{}, fmt.Errorf("%w: rounded shares total %d", ErrInvalidMilestoneAllocation, total)
	}
	return contract.Call{
		Method: MethodAddMilestones,
		Args:   []any{projectID, args},
	}, nil
}

// BuildAddImpactMetrics prepares the impact metric call. Values are sent as
// fixed-point hundredths.
func BuildAddImpactMetrics(projectID ProjectID, metrics []ImpactMetric, mode RoundingMode) (contract.Call, error) {
	args := make([]MetricArg, 0, len(metrics))
	for _, m := range metrics {
		value, err := ToFixedPoint(m.Value, mode)
		if err != nil {
			return contract.Call{}, fmt.Errorf("metric %q: %w", m.MetricName, err)
		}
		approvals := make([]string, len(m.ValidatorApprovals))
		copy(approvals, m.ValidatorApprovals)
		args = append(args, MetricArg{
			MetricName:         m.MetricName,
			Value:              value,
			ValidatorApprovals: approvals,
		})
	}
	return contract.Call{
		Method: MethodAddImpactMetrics,
		Args:   []any{projectID, args},
	}, nil
}

// BuildContribute prepares a contribution call. The amount is forwarded as
// given; unlike BuildCreateProject it is not converted to minor units.
func BuildContribute(projectID ProjectID, amount decimal.Decimal) (contract.Call, error) {
	if !amount.IsPositive() {
		return contract.Call{}, fmt.Errorf("%w: contribution must be positive, got %s",
			ErrInvalidAmount, amount.String())
	}
	return contract.Call{
		Method: MethodContribute,
		Args:   []any{projectID, amount},
	}, nil
}

// BuildGetProjectDetails prepares the read call for a stored project.
func BuildGetProjectDetails(projectID ProjectID) contract.Call {
	return contract.Call{
		Method: MethodGetProjectDetails,
		Args:   []any{projectID},
	}
}
