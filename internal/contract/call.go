// Package contract holds the wire shape shared by the request builder and the
// contract gateway: a method name plus a positional argument list.
package contract

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrEmptyResult is returned by Decode when the contract returned no value.
var ErrEmptyResult = errors.New("empty contract result")

// Call is a prepared contract invocation.
type Call struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Response is the raw result of a contract call.
type Response struct {
	Method string          `json:"method"`
	Result json.RawMessage `json:"result,omitempty"`
}

// IsEmpty reports whether the contract returned no value or JSON null.
func (r Response) IsEmpty() bool {
	trimmed := bytes.TrimSpace(r.Result)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals the result into v.
func (r Response) Decode(v any) error {
	if r.IsEmpty() {
		return ErrEmptyResult
	}
	return json.Unmarshal(r.Result, v)
}
