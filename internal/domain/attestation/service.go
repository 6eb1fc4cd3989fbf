package attestation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/repository"
)

// Service records validator attestations and answers approval collection for
// impact validation.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new attestation service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Record stores an attestation. Recording the same attestation twice is not
// an error.
func (s *Service) Record(ctx context.Context, projectID conservation.ProjectID, metricName, validatorID string) (*Attestation, error) {
	metricName = strings.TrimSpace(metricName)
	validatorID = strings.TrimSpace(validatorID)
	if metricName == "" || validatorID == "" {
		return nil, fmt.Errorf("%w: metric name and validator id are required", ErrInvalidInput)
	}
	a := &Attestation{
		ProjectID:   uint64(projectID),
		MetricName:  metricName,
		ValidatorID: validatorID,
		AttestedAt:  time.Now().UTC(),
	}
	if err := s.repo.Record(ctx, a); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, fmt.Errorf("%w: %s", ErrValidatorNotFound, validatorID)
		}
		return nil, fmt.Errorf("recording attestation: %w", err)
	}
	s.logger.Info("attestation recorded", "project_id", projectID, "metric", metricName, "validator", validatorID)
	return a, nil
}

// CollectApprovals implements conservation.ApprovalCollector. It returns the
// members of validators that attested to the metric, in the order given.
func (s *Service) CollectApprovals(ctx context.Context, validators []string, projectID conservation.ProjectID, metric conservation.ImpactMetric) ([]string, error) {
	attesters, err := s.repo.Attesters(ctx, uint64(projectID), metric.MetricName)
	if err != nil {
		return nil, fmt.Errorf("listing attesters: %w", err)
	}
	attested := make(map[string]struct{}, len(attesters))
	for _, id := range attesters {
		attested[id] = struct{}{}
	}

	approvals := make([]string, 0, len(validators))
	for _, id := range validators {
		if _, ok := attested[id]; ok {
			approvals = append(approvals, id)
			delete(attested, id)
		}
	}
	return approvals, nil
}
