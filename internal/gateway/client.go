// Package gateway talks to the contract node over JSON-RPC 2.0.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/canopy/internal/contract"
	"github.com/rpggio/canopy/internal/transport"
)

// RPC methods exposed by the contract node.
const (
	RPCExecute = "contract_execute"
	RPCRead    = "contract_read"
)

// DefaultTimeout bounds a single node round trip when none is configured.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a node response is read.
const maxResponseBytes = 4 << 20

// Config configures a Client.
type Config struct {
	Endpoint        string
	ContractAddress string
	Token           string
	Timeout         time.Duration
	HTTPClient      *http.Client
	Logger          *slog.Logger
}

// Client submits contract calls to a node.
type Client struct {
	endpoint        string
	contractAddress string
	token           string
	http            *http.Client
	logger          *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: endpoint %q", ErrInvalidConfig, cfg.Endpoint)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		endpoint:        u.String(),
		contractAddress: cfg.ContractAddress,
		token:           cfg.Token,
		http:            httpClient,
		logger:          logger,
	}, nil
}

// ContractAddress returns the address state-changing calls are sent to.
func (c *Client) ContractAddress() string {
	return c.contractAddress
}

// Execute submits a state-changing call to the configured contract.
func (c *Client) Execute(ctx context.Context, call contract.Call) (contract.Response, error) {
	return c.call(ctx, RPCExecute, c.contractAddress, call)
}

// Read performs a read-only call. An empty address uses the configured contract.
func (c *Client) Read(ctx context.Context, contractAddress string, call contract.Call) (contract.Response, error) {
	if contractAddress == "" {
		contractAddress = c.contractAddress
	}
	return c.call(ctx, RPCRead, contractAddress, call)
}

func (c *Client) call(ctx context.Context, rpcMethod, contractAddress string, call contract.Call) (contract.Response, error) {
	args := call.Args
	if args == nil {
		args = []any{}
	}
	id := uuid.NewString()
	rpcReq, err := transport.NewRequest(id, rpcMethod, []any{contractAddress, call.Method, args})
	if err != nil {
		return contract.Response{}, c.fail(rpcMethod, call.Method, 0, err)
	}
	body, err := json.Marshal(rpcReq)
	if err != nil {
		return contract.Response{}, c.fail(rpcMethod, call.Method, 0, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return contract.Response{}, c.fail(rpcMethod, call.Method, 0, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	transport.SetBearer(httpReq, c.token)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		// Prefer the caller's context error so cancellation stays visible.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return contract.Response{}, c.fail(rpcMethod, call.Method, 0, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return contract.Response{}, c.fail(rpcMethod, call.Method, httpResp.StatusCode,
			fmt.Errorf("%w: %s", ErrUnexpectedStatus, bytes.TrimSpace(snippet)))
	}

	rpcResp, err := transport.DecodeResponse(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return contract.Response{}, c.fail(rpcMethod, call.Method, httpResp.StatusCode, err)
	}
	if got := fmt.Sprint(rpcResp.ID); rpcResp.ID != nil && got != id {
		return contract.Response{}, c.fail(rpcMethod, call.Method, httpResp.StatusCode,
			fmt.Errorf("response id %q does not match request id %q", got, id))
	}

	c.logger.Debug("contract call", "rpc", rpcMethod, "method", call.Method, "id", id,
		"duration_ms", time.Since(start).Milliseconds())
	return contract.Response{Method: call.Method, Result: rpcResp.Result}, nil
}

func (c *Client) fail(rpcMethod, method string, status int, err error) error {
	c.logger.Debug("contract call failed", "rpc", rpcMethod, "method", method, "status", status, "error", err)
	return &Error{RPCMethod: rpcMethod, Method: method, StatusCode: status, Err: err}
}
