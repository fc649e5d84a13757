package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
)

// connServer accepts bridge connections and hands each to handle. On
// shutdown it closes every live connection and waits for its handler to
// return, so per-agent cleanup runs before shared telemetry is closed.
type connServer struct {
	handle func(context.Context, net.Conn)
	log    *slog.Logger

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

func newConnServer(handle func(context.Context, net.Conn), log *slog.Logger) *connServer {
	if log == nil {
		log = slog.Default()
	}
	return &connServer{handle: handle, log: log, conns: make(map[net.Conn]struct{})}
}

// serve blocks until ctx is cancelled and every handler has returned.
func (s *connServer) serve(ctx context.Context, l net.Listener) {
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}
		_ = l.Close()
		s.closeAll()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Error("failed to accept connection", "error", err)
			continue
		}
		if !s.track(conn) {
			_ = conn.Close()
			continue
		}
		s.log.Info("new connection accepted")
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(ctx, conn)
		}()
	}
	close(stopped)
	s.wg.Wait()
}

func (s *connServer) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *connServer) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *connServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *connServer) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
