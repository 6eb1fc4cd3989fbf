package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/rpggio/canopy/internal/domain/registry"
	"github.com/shopspring/decimal"
)

var errInvalidParams = errors.New("invalid tool arguments")

type toolHandlers struct {
	services Services
	logger   *slog.Logger
}

func registerTools(server *sdkmcp.Server, services Services, logger *slog.Logger) {
	h := &toolHandlers{services: services, logger: logger}

	if services.Tracker != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "create_project",
			Description: "Qualify the proposed validators and submit a new conservation project",
		}, h.createProject)
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "add_milestones",
			Description: "Attach funding milestones to a project; percentages must total exactly 100",
		}, h.addMilestones)
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "validate_impact",
			Description: "Collect validator approvals for impact metrics and submit them",
		}, h.validateImpact)
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "contribute",
			Description: "Contribute funds to a project",
		}, h.contribute)
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "get_project",
			Description: "Read a project's stored state from the contract",
		}, h.getProject)
	}
	if services.Validators != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "register_validator",
			Description: "Register a validator or update its reputation score",
		}, h.registerValidator)
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "list_validators",
			Description: "List registered validators, highest reputation first",
		}, h.listValidators)
	}
	if services.Attestations != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "record_attestation",
			Description: "Record that a validator approves a project's impact metric",
		}, h.recordAttestation)
	}
	if services.Journal != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "list_submissions",
			Description: "List recent contract calls, newest first",
		}, h.listSubmissions)
	}
}

func (h *toolHandlers) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, any, error) {
	target, err := parseDecimal("target_funding", in.TargetFunding)
	if err != nil {
		return h.fail(ctx, "create_project", err)
	}
	project := conservation.ConservationProject{
		Name:          in.Name,
		Description:   in.Description,
		TargetFunding: target,
		Owner:         in.Owner,
		Status:        conservation.StatusProposed,
	}
	resp, err := h.services.Tracker.CreateProject(ctx, project, in.Validators)
	if err != nil {
		return h.fail(ctx, "create_project", err)
	}
	return jsonResult(resp)
}

func (h *toolHandlers) addMilestones(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddMilestonesParams) (*sdkmcp.CallToolResult, any, error) {
	milestones := make([]conservation.Milestone, 0, len(in.Milestones))
	for i, m := range in.Milestones {
		pct, err := parseDecimal(fmt.Sprintf("milestones[%d].funding_percentage", i), m.FundingPercentage)
		if err != nil {
			return h.fail(ctx, "add_milestones", err)
		}
		milestones = append(milestones, conservation.Milestone{Description: m.Description, FundingPercentage: pct})
	}
	resp, err := h.services.Tracker.AddMilestones(ctx, conservation.ProjectID(in.ProjectID), milestones)
	if err != nil {
		return h.fail(ctx, "add_milestones", err)
	}
	return jsonResult(resp)
}

func (h *toolHandlers) validateImpact(ctx context.Context, _ *sdkmcp.CallToolRequest, in ValidateImpactParams) (*sdkmcp.CallToolResult, any, error) {
	metrics := make([]conservation.ImpactMetric, 0, len(in.Metrics))
	for i, m := range in.Metrics {
		value, err := parseDecimal(fmt.Sprintf("metrics[%d].value", i), m.Value)
		if err != nil {
			return h.fail(ctx, "validate_impact", err)
		}
		metrics = append(metrics, conservation.ImpactMetric{MetricName: m.MetricName, Value: value})
	}
	resp, err := h.services.Tracker.ValidateImpact(ctx, conservation.ProjectID(in.ProjectID), metrics)
	if err != nil {
		return h.fail(ctx, "validate_impact", err)
	}
	return jsonResult(resp)
}

func (h *toolHandlers) contribute(ctx context.Context, _ *sdkmcp.CallToolRequest, in ContributeParams) (*sdkmcp.CallToolResult, any, error) {
	amount, err := parseDecimal("amount", in.Amount)
	if err != nil {
		return h.fail(ctx, "contribute", err)
	}
	resp, err := h.services.Tracker.Contribute(ctx, conservation.ProjectID(in.ProjectID), amount)
	if err != nil {
		return h.fail(ctx, "contribute", err)
	}
	return jsonResult(resp)
}

func (h *toolHandlers) getProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetProjectParams) (*sdkmcp.CallToolResult, any, error) {
	details, err := h.services.Tracker.GetProjectDetails(ctx, conservation.ProjectID(in.ProjectID))
	if err != nil {
		return h.fail(ctx, "get_project", err)
	}
	return jsonResult(details)
}

func (h *toolHandlers) registerValidator(ctx context.Context, _ *sdkmcp.CallToolRequest, in RegisterValidatorParams) (*sdkmcp.CallToolResult, any, error) {
	v, err := h.services.Validators.Register(ctx, registry.RegisterRequest{
		ID:              in.ID,
		DisplayName:     in.DisplayName,
		ReputationScore: in.ReputationScore,
	})
	if err != nil {
		return h.fail(ctx, "register_validator", err)
	}
	return jsonResult(v)
}

func (h *toolHandlers) listValidators(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListValidatorsParams) (*sdkmcp.CallToolResult, any, error) {
	list, err := h.services.Validators.List(ctx, registry.ListOptions{
		MinReputation: in.MinReputation,
		Limit:         in.Limit,
		Offset:        in.Offset,
	})
	if err != nil {
		return h.fail(ctx, "list_validators", err)
	}
	if list == nil {
		list = []registry.Validator{}
	}
	return jsonResult(ListValidatorsResult{Validators: list})
}

func (h *toolHandlers) recordAttestation(ctx context.Context, _ *sdkmcp.CallToolRequest, in RecordAttestationParams) (*sdkmcp.CallToolResult, any, error) {
	a, err := h.services.Attestations.Record(ctx, conservation.ProjectID(in.ProjectID), in.MetricName, in.ValidatorID)
	if err != nil {
		return h.fail(ctx, "record_attestation", err)
	}
	return jsonResult(a)
}

func (h *toolHandlers) listSubmissions(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListSubmissionsParams) (*sdkmcp.CallToolResult, any, error) {
	opts := journal.ListOptions{
		ProjectID: in.ProjectID,
		Method:    in.Method,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	switch status := journal.Status(strings.ToLower(in.Status)); status {
	case "":
	case journal.StatusOK, journal.StatusFailed:
		opts.Status = status
	default:
		return h.fail(ctx, "list_submissions", fmt.Errorf("%w: unknown status %q", errInvalidParams, in.Status))
	}
	entries, err := h.services.Journal.Recent(ctx, opts)
	if err != nil {
		return h.fail(ctx, "list_submissions", err)
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return jsonResult(ListSubmissionsResult{Entries: entries})
}

// fail reports mapped domain errors as tool results so clients see the code
// and recovery hint. Anything unmapped is returned as a plain tool error.
func (h *toolHandlers) fail(ctx context.Context, tool string, err error) (*sdkmcp.CallToolResult, any, error) {
	apiErr := MapError(err)
	h.logger.WarnContext(ctx, "tool call failed", "tool", tool, "operator", getOperator(ctx), "error", err)
	if apiErr == nil {
		return nil, nil, err
	}
	data, mErr := json.Marshal(apiErr)
	if mErr != nil {
		return nil, nil, err
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is required", errInvalidParams, field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", errInvalidParams, field, err)
	}
	return d, nil
}
