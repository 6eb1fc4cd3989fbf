package registry

import "context"

// Repository provides persistence for validators.
type Repository interface {
	Upsert(ctx context.Context, v *Validator) error
	Get(ctx context.Context, id string) (*Validator, error)
	List(ctx context.Context, opts ListOptions) ([]Validator, error)
}
