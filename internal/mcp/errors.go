package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/canopy/internal/domain/attestation"
	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/rpggio/canopy/internal/domain/registry"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var gwErr *conservation.GatewayError
	if errors.As(err, &gwErr) {
		details := map[string]any{"op": gwErr.Op, "method": gwErr.Method}
		if gwErr.ProjectID != nil {
			details["project_id"] = *gwErr.ProjectID
		}
		if errors.Is(err, conservation.ErrCanceled) {
			return &APIError{Code: "GATEWAY_CANCELED", Message: err.Error(), Details: details, RecoveryHint: "Retry; the call may or may not have reached the contract"}
		}
		return &APIError{Code: "GATEWAY_ERROR", Message: err.Error(), Details: details, RecoveryHint: "Check the contract node and list_submissions"}
	}

	switch {
	case errors.Is(err, conservation.ErrInsufficientValidators):
		return &APIError{Code: "INSUFFICIENT_VALIDATORS", Message: err.Error(), RecoveryHint: "Propose more validators with sufficient reputation"}
	case errors.Is(err, conservation.ErrInvalidMilestoneAllocation):
		return &APIError{Code: "INVALID_MILESTONE_ALLOCATION", Message: err.Error(), RecoveryHint: "Milestone percentages must each be 0-100 and total exactly 100"}
	case errors.Is(err, conservation.ErrValidatorLookup):
		return &APIError{Code: "VALIDATOR_LOOKUP_FAILED", Message: err.Error(), RecoveryHint: "Retry once the validator registry is reachable"}
	case errors.Is(err, conservation.ErrApprovalCollection):
		return &APIError{Code: "APPROVAL_COLLECTION_FAILED", Message: err.Error(), RecoveryHint: "Retry once attestations can be read"}
	case errors.Is(err, conservation.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: err.Error(), RecoveryHint: "Check the project id"}
	case errors.Is(err, conservation.ErrValidatorNotFound):
		return &APIError{Code: "VALIDATOR_NOT_FOUND", Message: err.Error(), RecoveryHint: "Register the validator first"}
	case errors.Is(err, conservation.ErrInvalidAmount),
		errors.Is(err, conservation.ErrAmountOutOfRange),
		errors.Is(err, conservation.ErrInvalidStatus),
		errors.Is(err, conservation.ErrInvalidInput),
		errors.Is(err, registry.ErrInvalidInput),
		errors.Is(err, attestation.ErrInvalidInput),
		errors.Is(err, journal.ErrInvalidInput),
		errors.Is(err, errInvalidParams):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Fix the arguments and retry"}
	default:
		return nil
	}
}
