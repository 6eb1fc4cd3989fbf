package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/canopy/internal/contract"
	"github.com/rpggio/canopy/internal/domain/attestation"
	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/rpggio/canopy/internal/domain/registry"
	"github.com/rpggio/canopy/internal/transport"
	"github.com/shopspring/decimal"
)

// ProjectTracker defines the project operations exposed as tools.
type ProjectTracker interface {
	CreateProject(ctx context.Context, project conservation.ConservationProject, proposedValidators []string) (contract.Response, error)
	AddMilestones(ctx context.Context, projectID conservation.ProjectID, milestones []conservation.Milestone) (contract.Response, error)
	ValidateImpact(ctx context.Context, projectID conservation.ProjectID, metrics []conservation.ImpactMetric) (contract.Response, error)
	Contribute(ctx context.Context, projectID conservation.ProjectID, amount decimal.Decimal) (contract.Response, error)
	GetProjectDetails(ctx context.Context, projectID conservation.ProjectID) (*conservation.ProjectDetails, error)
}

// ValidatorService defines validator registry operations needed by MCP.
type ValidatorService interface {
	Register(ctx context.Context, req registry.RegisterRequest) (*registry.Validator, error)
	List(ctx context.Context, opts registry.ListOptions) ([]registry.Validator, error)
}

// AttestationService defines attestation operations needed by MCP.
type AttestationService interface {
	Record(ctx context.Context, projectID conservation.ProjectID, metricName, validatorID string) (*attestation.Attestation, error)
}

// JournalService defines submission journal operations needed by MCP.
type JournalService interface {
	Recent(ctx context.Context, opts journal.ListOptions) ([]journal.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Tracker      ProjectTracker
	Validators   ValidatorService
	Attestations AttestationService
	Journal      JournalService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      transport.OperatorResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "canopy",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio is a local, single-operator transport.
	identify := noAuthMiddleware("local")
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled && cfg.Resolver != nil {
		identify = authMiddleware(cfg.Resolver)
	}
	server.AddReceivingMiddleware(identify, trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services, logger)

	return server
}
