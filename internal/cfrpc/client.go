package cfrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

const DefaultURL = "https://mainnet-rpc.chainflip.io"

// Client is a JSON-RPC 2.0 client for a state-chain node's HTTP endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	nextID     atomic.Int64
}

func NewClient(rawURL string) (*Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		rawURL = DefaultURL
	}
	rawURL = strings.TrimRight(rawURL, "/")

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("rpc url parse %q: %w", rawURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("rpc url must be http(s), got %q", rawURL)
	}

	return &Client{
		url: rawURL,
		httpClient: &http.Client{
			Timeout: 12 * time.Second,
		},
	}, nil
}

type request struct {
	ID      int64  `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Error is a decoded JSON-RPC error member.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("rpc error %d: %s (data=%s)", e.Code, e.Message, bytes.TrimSpace(e.Data))
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call performs one request/response round trip and decodes the result member
// into out (which may be nil to discard it). A non-2xx HTTP status or an error
// member both fail the call; there is no retry at this layer.
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(request{
		ID:      c.nextID.Add(1),
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("rpc %s: marshal request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc %s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("rpc %s: read response: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("rpc %s: status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("rpc %s: decode response: %w (body=%s)", method, err, strings.TrimSpace(string(raw)))
	}
	if decoded.Error != nil {
		return fmt.Errorf("rpc %s: %w", method, decoded.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf("rpc %s: decode result: %w", method, err)
	}
	return nil
}
