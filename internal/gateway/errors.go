package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates the client was configured without a usable endpoint.
	ErrInvalidConfig = errors.New("invalid gateway config")
	// ErrUnexpectedStatus indicates the node answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// Error describes a failed call to the contract node. It wraps the cause,
// which is a *transport.Error when the node returned a JSON-RPC error object.
type Error struct {
	RPCMethod  string
	Method     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: http %d: %v", e.RPCMethod, e.Method, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.RPCMethod, e.Method, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
