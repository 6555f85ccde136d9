// server.go - renderer-side link server: accept the driver's single session
//
// The accept loop is a single-session server (spec.md §6: "the link is a
// statically configured point-to-point TCP connection") built with
// golang.org/x/sync/errgroup so AcceptOne deterministically waits for the accept
// goroutine to exit rather than racing a bare channel close against it.

package proto

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
)

// Server accepts exactly one inbound driver connection at a time.
type Server struct {
	ln net.Listener
}

// Listen binds the renderer's listening socket.
func Listen(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("proto: listen %s: %w", addr, err)
	}
	return &Server{ln: ln}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Close stops accepting connections.
func (s *Server) Close() error { return s.ln.Close() }

// AcceptOne blocks until the driver connects, or ctx is canceled.
func (s *Server) AcceptOne(ctx context.Context) (*Conn, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	var conn *Conn

	g.Go(func() error {
		nc, err := s.ln.Accept()
		if err != nil {
			return err
		}
		conn = NewConn(nc)
		cancel() // wake the watcher below so Wait returns
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		if conn == nil {
			s.ln.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil && conn == nil {
		return nil, err
	}
	return conn, nil
}
