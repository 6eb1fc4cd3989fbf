package conservation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Default qualification policy for project validators.
const (
	DefaultMinReputation     = 75
	DefaultMinValidators     = 2
	DefaultLookupConcurrency = 4
)

// Gate filters proposed validators down to those the registry qualifies.
type Gate struct {
	Registry      ValidatorRegistry
	MinReputation int
	MinValidators int
	Concurrency   int
}

// NewGate returns a Gate with the default policy.
func NewGate(registry ValidatorRegistry) *Gate {
	return &Gate{
		Registry:      registry,
		MinReputation: DefaultMinReputation,
		MinValidators: DefaultMinValidators,
		Concurrency:   DefaultLookupConcurrency,
	}
}

// Validate returns the qualified candidates in their original order.
// Duplicate and blank identifiers are ignored. Lookups run concurrently.
func (g *Gate) Validate(ctx context.Context, candidates []string) ([]string, error) {
	if g.Registry == nil {
		return nil, fmt.Errorf("%w: no validator registry configured", ErrValidatorLookup)
	}
	ids := uniqueIDs(candidates)
	qualified := make([]bool, len(ids))

	eg, ctx := errgroup.WithContext(ctx)
	limit := g.Concurrency
	if limit <= 0 {
		limit = DefaultLookupConcurrency
	}
	eg.SetLimit(limit)

	for i, id := range ids {
		eg.Go(func() error {
			details, err := g.Registry.ValidatorDetails(ctx, id)
			if err != nil {
				if errors.Is(err, ErrValidatorNotFound) {
					return nil
				}
				return fmt.Errorf("%w: %s: %w", ErrValidatorLookup, id, err)
			}
			qualified[i] = details != nil && details.ReputationScore >= g.MinReputation
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	verified := make([]string, 0, len(ids))
	for i, id := range ids {
		if qualified[i] {
			verified = append(verified, id)
		}
	}
	if len(verified) < g.MinValidators {
		return nil, fmt.Errorf("%w: %d of %d qualified, need %d",
			ErrInsufficientValidators, len(verified), len(ids), g.MinValidators)
	}
	return verified, nil
}

func uniqueIDs(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		ids = append(ids, c)
	}
	return ids
}
