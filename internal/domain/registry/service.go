package registry

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

// Service handles validator registration and serves reputation lookups to the
// validator gate.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new registry service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// RegisterRequest defines validator registration inputs.
type RegisterRequest struct {
	ID              string
	DisplayName     string
	ReputationScore int
}

// Register creates a validator or updates its name and score.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Validator, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if req.ReputationScore < MinScore || req.ReputationScore > MaxScore {
		return nil, fmt.Errorf("%w: reputation score %d outside %d..%d",
			ErrInvalidInput, req.ReputationScore, MinScore, MaxScore)
	}

	now := time.Now().UTC()
	v := &Validator{
		ID:              id,
		DisplayName:     strings.TrimSpace(req.DisplayName),
		ReputationScore: req.ReputationScore,
		RegisteredAt:    now,
		UpdatedAt:       now,
	}
	if err := s.repo.Upsert(ctx, v); err != nil {
		return nil, fmt.Errorf("registering validator: %w", err)
	}
	s.logger.Info("validator registered", "id", v.ID, "reputation_score", v.ReputationScore)
	return v, nil
}

// Get fetches a validator by ID.
func (s *Service) Get(ctx context.Context, id string) (*Validator, error) {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrValidatorNotFound, id)
		}
		return nil, fmt.Errorf("getting validator: %w", err)
	}
	return v, nil
}

// List lists validators, highest reputation first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Validator, error) {
	list, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing validators: %w", err)
	}
	return list, nil
}

// ValidatorDetails implements conservation.ValidatorRegistry.
func (s *Service) ValidatorDetails(ctx context.Context, id string) (*conservation.ValidatorDetails, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &conservation.ValidatorDetails{
		ID:              v.ID,
		DisplayName:     v.DisplayName,
		ReputationScore: v.ReputationScore,
	}, nil
}
