package control

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client is a JSON-RPC-over-Unix-socket client for talking to a
// running daemon from bridgectl.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient constructs a Client. timeout == 0 uses a 10s default.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{socketPath: socketPath, timeout: timeout}
}

// Call sends one request and waits for its response.
func (c *Client) Call(ctx context.Context, method string, params any) (*JSONRPCResponse, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("control: connecting to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	var paramsJSON json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("control: marshaling params: %w", err)
		}
		paramsJSON = data
	}

	reqID := fmt.Sprintf("req-%d", time.Now().UnixNano())
	req := JSONRPCRequest{JSONRPC: "2.0", Method: method, Params: paramsJSON, ID: reqID}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("control: sending request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("control: reading response: %w", err)
		}
		return nil, fmt.Errorf("control: connection closed without response")
	}

	var resp JSONRPCResponse
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("control: parsing response: %w", err)
	}
	return &resp, nil
}

// Status calls the status method.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	resp, err := c.Call(ctx, MethodStatus, nil)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("control: %s", resp.Error.Message)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, err
	}
	var result StatusResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reload calls the reload method.
func (c *Client) Reload(ctx context.Context) error {
	resp, err := c.Call(ctx, MethodReload, nil)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("control: %s", resp.Error.Message)
	}
	return nil
}

// Stop calls the stop method.
func (c *Client) Stop(ctx context.Context) error {
	resp, err := c.Call(ctx, MethodStop, nil)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("control: %s", resp.Error.Message)
	}
	return nil
}
