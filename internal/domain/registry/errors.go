package registry

import (
	"errors"

	"github.com/rpggio/canopy/internal/domain/conservation"
)

var (
	// ErrValidatorNotFound indicates the validator isn't registered.
	ErrValidatorNotFound = conservation.ErrValidatorNotFound
	// ErrInvalidInput indicates invalid validator input.
	ErrInvalidInput = errors.New("invalid validator input")
)
