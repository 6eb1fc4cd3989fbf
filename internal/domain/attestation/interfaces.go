package attestation

import "context"

// Repository provides persistence for attestations.
type Repository interface {
	Record(ctx context.Context, a *Attestation) error
	Attesters(ctx context.Context, projectID uint64, metricName string) ([]string, error)
}
