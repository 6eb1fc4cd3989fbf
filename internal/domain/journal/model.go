package journal

import "time"

// Kind distinguishes state-changing calls from reads.
type Kind string

const (
	KindExecute Kind = "execute"
	KindRead    Kind = "read"
)

// Status is the outcome of a journaled call.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Entry records one gateway call.
type Entry struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Method    string    `json:"method"`
	ProjectID *uint64   `json:"project_id,omitempty"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
	CreatedAt time.Time `json:"created_at"`
}
