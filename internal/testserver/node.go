// Package testserver runs an in-process contract node for tests. It speaks the
// same JSON-RPC surface as a real node and keeps projects in memory.
package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/transport"
	"github.com/shopspring/decimal"
)

// Error codes returned for contract-level rejections.
const (
	CodeContractError = -32000
	CodeNotFound      = -32001
)

// Call is a contract call as the node received it.
type Call struct {
	RPCMethod       string
	ContractAddress string
	Method          string
	Args            json.RawMessage
}

// Node is an in-memory contract node.
type Node struct {
	Server *httptest.Server
	Token  string

	mu       sync.Mutex
	nextID   conservation.ProjectID
	projects map[conservation.ProjectID]*conservation.ProjectDetails
	calls    []Call
	failNext *transport.Error
}

// New starts a node. A non-empty token is required as a bearer token on
// every request.
func New(t *testing.T, token string) *Node {
	t.Helper()

	n := &Node{
		Token:    token,
		nextID:   1,
		projects: make(map[conservation.ProjectID]*conservation.ProjectDetails),
	}

	var handler http.Handler = http.HandlerFunc(n.serveRPC)
	if token != "" {
		handler = transport.AuthMiddleware(transport.StaticTokens{token: "test"})(handler)
	}
	n.Server = httptest.NewServer(handler)
	t.Cleanup(n.Server.Close)
	return n
}

// URL returns the node endpoint.
func (n *Node) URL() string {
	return n.Server.URL
}

// FailNext makes the next contract call fail with the given JSON-RPC error.
func (n *Node) FailNext(code int, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failNext = &transport.Error{Code: code, Message: message}
}

// Calls returns the calls received so far.
func (n *Node) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Call, len(n.calls))
	copy(out, n.calls)
	return out
}

// Project returns a copy of a stored project.
func (n *Node) Project(id conservation.ProjectID) (conservation.ProjectDetails, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p, ok := n.projects[id]
	if !ok {
		return conservation.ProjectDetails{}, false
	}
	return *p, true
}

// SetStatus moves a stored project to status.
func (n *Node) SetStatus(id conservation.ProjectID, status conservation.ProjectStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if p, ok := n.projects[id]; ok {
		p.Status = status
	}
}

func (n *Node) serveRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := transport.ParseRequest(r.Body)
	if err != nil {
		transport.WriteError(w, nil, transport.ErrInvalidReq, err.Error(), nil)
		return
	}
	if req.Method != "contract_execute" && req.Method != "contract_read" {
		transport.WriteError(w, req.ID, transport.ErrMethodNotFound, "method not found", req.Method)
		return
	}

	var params []json.RawMessage
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) != 3 {
		transport.WriteError(w, req.ID, transport.ErrInvalidParams, "expected [contract, method, args]", nil)
		return
	}
	call := Call{RPCMethod: req.Method, Args: params[2]}
	if err := json.Unmarshal(params[0], &call.ContractAddress); err != nil {
		transport.WriteError(w, req.ID, transport.ErrInvalidParams, "contract address must be a string", nil)
		return
	}
	if err := json.Unmarshal(params[1], &call.Method); err != nil {
		transport.WriteError(w, req.ID, transport.ErrInvalidParams, "method must be a string", nil)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call)
	if n.failNext != nil {
		rpcErr := n.failNext
		n.failNext = nil
		transport.WriteError(w, req.ID, rpcErr.Code, rpcErr.Message, nil)
		return
	}

	result, rpcErr := n.dispatch(call)
	if rpcErr != nil {
		transport.WriteError(w, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	transport.WriteResult(w, req.ID, result)
}

func (n *Node) dispatch(call Call) (any, *transport.Error) {
	switch call.Method {
	case conservation.MethodCreateProject:
		return n.createProject(call.Args)
	case conservation.MethodAddMilestones:
		return n.addMilestones(call.Args)
	case conservation.MethodAddImpactMetrics:
		return n.addImpactMetrics(call.Args)
	case conservation.MethodContribute:
		return n.contribute(call.Args)
	case conservation.MethodGetProjectDetails:
		return n.projectDetails(call.Args)
	default:
		return nil, &transport.Error{Code: transport.ErrMethodNotFound, Message: "unknown contract method", Data: call.Method}
	}
}

func (n *Node) createProject(raw json.RawMessage) (any, *transport.Error) {
	var (
		name, description string
		target            int64
		validators        []string
	)
	if err := unmarshalArgs(raw, &name, &description, &target, &validators); err != nil {
		return nil, err
	}
	id := n.nextID
	n.nextID++
	n.projects[id] = &conservation.ProjectDetails{
		ProjectID:     id,
		Name:          name,
		Description:   description,
		TargetFunding: target,
		Status:        conservation.StatusProposed,
		Owner:         "tx-sender",
		Validators:    validators,
	}
	return receipt(id), nil
}

func (n *Node) addMilestones(raw json.RawMessage) (any, *transport.Error) {
	var (
		id         conservation.ProjectID
		milestones []conservation.MilestoneArg
	)
	if err := unmarshalArgs(raw, &id, &milestones); err != nil {
		return nil, err
	}
	p, rpcErr := n.lookup(id)
	if rpcErr != nil {
		return nil, rpcErr
	}
	var total int64
	for _, m := range milestones {
		total += m.FundingPercentage
	}
	if total != 100 {
		return nil, &transport.Error{Code: CodeContractError, Message: fmt.Sprintf("milestone percentages sum to %d", total)}
	}
	p.Milestones = p.Milestones[:0]
	for _, m := range milestones {
		p.Milestones = append(p.Milestones, conservation.StoredMilestone{
			Description:       m.Description,
			FundingPercentage: m.FundingPercentage,
		})
	}
	return receipt(id), nil
}

func (n *Node) addImpactMetrics(raw json.RawMessage) (any, *transport.Error) {
	var (
		id      conservation.ProjectID
		metrics []conservation.MetricArg
	)
	if err := unmarshalArgs(raw, &id, &metrics); err != nil {
		return nil, err
	}
	p, rpcErr := n.lookup(id)
	if rpcErr != nil {
		return nil, rpcErr
	}
	for _, m := range metrics {
		p.ImpactMetrics = append(p.ImpactMetrics, conservation.StoredMetric(m))
	}
	return receipt(id), nil
}

func (n *Node) contribute(raw json.RawMessage) (any, *transport.Error) {
	var (
		id     conservation.ProjectID
		amount decimal.Decimal
	)
	if err := unmarshalArgs(raw, &id, &amount); err != nil {
		return nil, err
	}
	p, rpcErr := n.lookup(id)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if !amount.IsPositive() {
		return nil, &transport.Error{Code: CodeContractError, Message: "contribution must be positive"}
	}
	// The node books contributions in minor units.
	p.CurrentFunding += amount.Shift(2).IntPart()
	return receipt(id), nil
}

func (n *Node) projectDetails(raw json.RawMessage) (any, *transport.Error) {
	var id conservation.ProjectID
	if err := unmarshalArgs(raw, &id); err != nil {
		return nil, err
	}
	p, ok := n.projects[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (n *Node) lookup(id conservation.ProjectID) (*conservation.ProjectDetails, *transport.Error) {
	p, ok := n.projects[id]
	if !ok {
		return nil, &transport.Error{Code: CodeNotFound, Message: fmt.Sprintf("project %d not found", id)}
	}
	return p, nil
}

func receipt(id conservation.ProjectID) map[string]any {
	return map[string]any{"project_id": id, "status": "ok"}
}

func unmarshalArgs(raw json.RawMessage, dst ...any) *transport.Error {
	var args []json.RawMessage
	if err := json.Unmarshal(raw, &args); err != nil {
		return &transport.Error{Code: transport.ErrInvalidParams, Message: "args must be an array"}
	}
	if len(args) != len(dst) {
		return &transport.Error{Code: transport.ErrInvalidParams, Message: fmt.Sprintf("expected %d args, got %d", len(dst), len(args))}
	}
	for i := range dst {
		if err := json.Unmarshal(args[i], dst[i]); err != nil {
			return &transport.Error{Code: transport.ErrInvalidParams, Message: fmt.Sprintf("arg %d: %v", i, err)}
		}
	}
	return nil
}
