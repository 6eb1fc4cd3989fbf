package attestation

import (
	"errors"

	"github.com/rpggio/canopy/internal/domain/conservation"
)

var (
	// ErrInvalidInput indicates invalid attestation input.
	ErrInvalidInput = errors.New("invalid attestation input")
	// ErrValidatorNotFound indicates the attesting validator is not registered.
	ErrValidatorNotFound = conservation.ErrValidatorNotFound
)
