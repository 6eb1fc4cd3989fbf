package conservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/canopy/internal/contract"
	"github.com/shopspring/decimal"
)

// Options configures a Tracker. Zero values fall back to the defaults.
type Options struct {
	ContractAddress   string
	MinReputation     int
	MinValidators     int
	LookupConcurrency int
	Rounding          RoundingMode
}

// Tracker sequences validation, request building and gateway calls for each
// project operation. It keeps no state between calls.
type Tracker struct {
	gateway   Gateway
	gate      *Gate
	approvals ApprovalCollector
	opts      Options
	logger    *slog.Logger
}

// NewTracker creates a Tracker.
func NewTracker(gateway Gateway, registry ValidatorRegistry, approvals ApprovalCollector, opts Options, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	gate := NewGate(registry)
	if opts.MinReputation > 0 {
		gate.MinReputation = opts.MinReputation
	}
	if opts.MinValidators > 0 {
		gate.MinValidators = opts.MinValidators
	}
	if opts.LookupConcurrency > 0 {
		gate.Concurrency = opts.LookupConcurrency
	}
	return &Tracker{
		gateway:   gateway,
		gate:      gate,
		approvals: approvals,
		opts:      opts,
		logger:    logger,
	}
}

// CreateProject qualifies the proposed validators and submits the project.
func (t *Tracker) CreateProject(ctx context.Context, project ConservationProject, proposedValidators []string) (contract.Response, error) {
	const op = "create project"
	verified, err := t.gate.Validate(ctx, proposedValidators)
	if err != nil {
		t.logger.Error("project creation failed", "op", op, "name", project.Name, "error", err)
		return contract.Response{}, err
	}
	call, err := BuildCreateProject(project, verified, t.opts.Rounding)
	if err != nil {
		t.logger.Error("project creation failed", "op", op, "name", project.Name, "error", err)
		return contract.Response{}, err
	}
	resp, err := t.execute(ctx, op, nil, call)
	if err != nil {
		return contract.Response{}, err
	}
	t.logger.Info("project created", "name", project.Name, "validators", len(verified))
	return resp, nil
}

// AddMilestones submits milestones whose percentages total 100.
func (t *Tracker) AddMilestones(ctx context.Context, projectID ProjectID, milestones []Milestone) (contract.Response, error) {
	const op = "add milestones"
	call, err := BuildAddMilestones(projectID, milestones, t.opts.Rounding)
	if err != nil {
		t.logger.Error("milestone addition failed", "op", op, "project_id", projectID, "error", err)
		return contract.Response{}, err
	}
	resp, err := t.execute(ctx, op, &projectID, call)
	if err != nil {
		return contract.Response{}, err
	}
	t.logger.Info("milestones added", "project_id", projectID, "count", len(milestones))
	return resp, nil
}

// ValidateImpact collects approvals for each metric from the project's stored
// validator set and submits the approved metrics.
func (t *Tracker) ValidateImpact(ctx context.Context, projectID ProjectID, metrics []ImpactMetric) (contract.Response, error) {
	const op = "validate impact"
	if t.approvals == nil {
		return contract.Response{}, fmt.Errorf("%w: no approval collector configured", ErrApprovalCollection)
	}
	details, err := t.GetProjectDetails(ctx, projectID)
	if err != nil {
		return contract.Response{}, err
	}

	validated := make([]ImpactMetric, 0, len(metrics))
	for _, metric := range metrics {
		approvals, err := t.approvals.CollectApprovals(ctx, details.Validators, projectID, metric)
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", ErrApprovalCollection, metric.MetricName, err)
			t.logger.Error("impact validation failed", "op", op, "project_id", projectID, "error", err)
			return contract.Response{}, err
		}
		metric.ValidatorApprovals = approvals
		validated = append(validated, metric)
	}

	call, err := BuildAddImpactMetrics(projectID, validated, t.opts.Rounding)
	if err != nil {
		t.logger.Error("impact validation failed", "op", op, "project_id", projectID, "error", err)
		return contract.Response{}, err
	}
	resp, err := t.execute(ctx, op, &projectID, call)
	if err != nil {
		return contract.Response{}, err
	}
	t.logger.Info("impact metrics validated", "project_id", projectID, "metrics", len(validated))
	return resp, nil
}

// Contribute submits a contribution of amount to the project.
func (t *Tracker) Contribute(ctx context.Context, projectID ProjectID, amount decimal.Decimal) (contract.Response, error) {
	const op = "contribute"
	call, err := BuildContribute(projectID, amount)
	if err != nil {
		t.logger.Error("contribution failed", "op", op, "project_id", projectID, "error", err)
		return contract.Response{}, err
	}
	resp, err := t.execute(ctx, op, &projectID, call)
	if err != nil {
		return contract.Response{}, err
	}
	t.logger.Info("contribution submitted", "project_id", projectID, "amount", amount.String())
	return resp, nil
}

// GetProjectDetails reads the stored project. A project the contract does not
// know yields ErrProjectNotFound.
func (t *Tracker) GetProjectDetails(ctx context.Context, projectID ProjectID) (*ProjectDetails, error) {
	const op = "get project details"
	call := BuildGetProjectDetails(projectID)
	resp, err := t.gateway.Read(ctx, t.opts.ContractAddress, call)
	if err != nil {
		return nil, t.gatewayError(op, &projectID, call.Method, err)
	}
	if resp.IsEmpty() {
		return nil, fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
	}
	var details ProjectDetails
	if err := resp.Decode(&details); err != nil {
		return nil, t.gatewayError(op, &projectID, call.Method, fmt.Errorf("decoding project details: %w", err))
	}
	return &details, nil
}

func (t *Tracker) execute(ctx context.Context, op string, projectID *ProjectID, call contract.Call) (contract.Response, error) {
	resp, err := t.gateway.Execute(ctx, call)
	if err != nil {
		return contract.Response{}, t.gatewayError(op, projectID, call.Method, err)
	}
	return resp, nil
}

func (t *Tracker) gatewayError(op string, projectID *ProjectID, method string, err error) error {
	gwErr := &GatewayError{
		Op:        op,
		ProjectID: projectID,
		Method:    method,
		Canceled:  errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded),
		Err:       err,
	}
	attrs := []any{"op", op, "method", method, "canceled", gwErr.Canceled, "error", err}
	if projectID != nil {
		attrs = append(attrs, "project_id", *projectID)
	}
	t.logger.Error("gateway call failed", attrs...)
	return gwErr
}
