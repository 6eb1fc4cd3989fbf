package journal

import (
	"context"
	"time"

	"github.com/rpggio/canopy/internal/contract"
	"github.com/rpggio/canopy/internal/domain/conservation"
)

// Gateway journals every call made through the wrapped gateway. A failure to
// write the journal is logged and never replaces the call's own result.
type Gateway struct {
	next    conservation.Gateway
	journal *Service
}

// NewGateway wraps next so its calls are recorded in journal.
func NewGateway(next conservation.Gateway, journal *Service) *Gateway {
	return &Gateway{next: next, journal: journal}
}

func (g *Gateway) Execute(ctx context.Context, call contract.Call) (contract.Response, error) {
	start := time.Now()
	resp, err := g.next.Execute(ctx, call)
	g.record(ctx, KindExecute, call, start, err)
	return resp, err
}

func (g *Gateway) Read(ctx context.Context, contractAddress string, call contract.Call) (contract.Response, error) {
	start := time.Now()
	resp, err := g.next.Read(ctx, contractAddress, call)
	g.record(ctx, KindRead, call, start, err)
	return resp, err
}

func (g *Gateway) record(ctx context.Context, kind Kind, call contract.Call, start time.Time, callErr error) {
	entry := &Entry{
		Kind:      kind,
		Method:    call.Method,
		ProjectID: projectIDArg(call),
		Status:    StatusOK,
		Duration:  time.Since(start).Milliseconds(),
	}
	if callErr != nil {
		entry.Status = StatusFailed
		entry.Error = callErr.Error()
	}
	// The caller's context may already be canceled; the journal write should
	// still happen.
	if err := g.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		g.journal.logger.Warn("journal write failed", "method", call.Method, "error", err)
	}
}

// projectIDArg extracts the project ID when it is the call's first argument.
func projectIDArg(call contract.Call) *uint64 {
	if len(call.Args) == 0 {
		return nil
	}
	if id, ok := call.Args[0].(conservation.ProjectID); ok {
		v := uint64(id)
		return &v
	}
	return nil
}
