// Package notify delivers orchestrator events to an external consumer over
// JSON-RPC. Delivery is fire-and-forget from the orchestrator's point of
// view; callers log and swallow errors.
package notify

import (
	"context"
	"fmt"
	"net"
	"net/rpc/jsonrpc"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	addr        string
	dialTimeout time.Duration
	callTimeout time.Duration
}

// NewClient creates a notification client. An empty baseURL disables delivery.
func NewClient(baseURL string) *Client {
	return &Client{
		addr:        resolveRPCAddr(baseURL),
		dialTimeout: 5 * time.Second,
		callTimeout: 5 * time.Second,
	}
}

// PushRequest represents the request body for event delivery.
type PushRequest struct {
	SessionID string                 `json:"session_id"`
	Event     map[string]interface{} `json:"event"`
}

// PushResponse represents the response for event delivery.
type PushResponse struct {
	OK bool `json:"ok"`
}

// PushEvent delivers one event for a session.
func (c *Client) PushEvent(sessionID string, event map[string]interface{}) error {
	if c.addr == "" {
		return nil
	}

	req := &PushRequest{
		SessionID: sessionID,
		Event:     event,
	}

	var resp PushResponse
	ctx, cancel := context.WithTimeout(context.Background(), c.callTimeout)
	defer cancel()

	if err := c.call(ctx, "Consumer.PushEvent", req, &resp); err != nil {
		return fmt.Errorf("failed to push event: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("event consumer returned ok=false")
	}

	return nil
}

func (c *Client) call(ctx context.Context, method string, args, reply interface{}) error {
	conn, err := net.DialTimeout("tcp", c.addr, c.dialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else if c.callTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.callTimeout))
	}

	client := jsonrpc.NewClient(conn)
	call := client.Go(method, args, reply, nil)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-call.Done:
		return call.Error
	}
}

func resolveRPCAddr(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		parsed, err := url.Parse(raw)
		if err == nil && parsed.Host != "" {
			return parsed.Host
		}
	}
	return raw
}
