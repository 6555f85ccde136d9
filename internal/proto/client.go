// client.go - driver-side link client: dial + retry/backoff
//
// The retry/backoff policy supplements spec.md: the original rmvmain.cpp decides
// at startup (via a CLI flag) whether to wait for a connection at all; here that
// decision is explicit in ClientConfig.Retry, and reconnection uses a bounded
// exponential backoff rather than busy-waiting.

package proto

import (
	"context"
	"fmt"
	"net"
	"time"
)

// ClientConfig configures the driver's outbound connection to the renderer.
type ClientConfig struct {
	Addr       string
	Retry      bool
	MaxBackoff time.Duration
}

// Client maintains the driver's single TCP session to the renderer.
type Client struct {
	cfg  ClientConfig
	conn *Conn
}

// NewClient constructs a client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	return &Client{cfg: cfg}
}

// Dial connects to the renderer, retrying with exponential backoff (capped at
// cfg.MaxBackoff) if cfg.Retry is set and the renderer isn't yet listening.
func (c *Client) Dial(ctx context.Context) (*Conn, error) {
	backoff := 50 * time.Millisecond
	for {
		nc, err := (&net.Dialer{}).DialContext(ctx, "tcp", c.cfg.Addr)
		if err == nil {
			c.conn = NewConn(nc)
			return c.conn, nil
		}
		if !c.cfg.Retry {
			return nil, fmt.Errorf("proto: dial %s: %w", c.cfg.Addr, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.cfg.MaxBackoff {
			backoff = c.cfg.MaxBackoff
		}
	}
}

// Close closes the active connection, if any.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
