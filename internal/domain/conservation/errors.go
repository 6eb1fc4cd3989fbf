package conservation

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientValidators     = errors.New("insufficient qualified validators")
	ErrInvalidMilestoneAllocation = errors.New("milestone percentages must total 100")
	ErrValidatorLookup            = errors.New("validator lookup failed")
	ErrValidatorNotFound          = errors.New("validator not found")
	ErrApprovalCollection         = errors.New("collecting validator approvals failed")
	ErrProjectNotFound            = errors.New("project not found")
	ErrInvalidAmount              = errors.New("invalid amount")
	ErrAmountOutOfRange           = errors.New("amount out of range")
	ErrInvalidStatus              = errors.New("invalid project status")
	ErrInvalidInput               = errors.New("invalid input")

	// ErrCanceled matches a GatewayError whose call was canceled or timed out.
	ErrCanceled = errors.New("gateway call canceled")
)

// GatewayError is returned by every Tracker operation whose gateway call
// failed.
type GatewayError struct {
	Op        string
	ProjectID *ProjectID
	Method    string
	Canceled  bool
	Err       error
}

func (e *GatewayError) Error() string {
	if e.ProjectID != nil {
		return fmt.Sprintf("%s (project %d, %s): %v", e.Op, *e.ProjectID, e.Method, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Method, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is lets callers test for cancellation with errors.Is(err, ErrCanceled).
func (e *GatewayError) Is(target error) bool {
	return target == ErrCanceled && e.Canceled
}
