package workerpool

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// Config configures a Server.
type Config struct {
	Queues           QueueConfig
	ConnectionConfig ConnectionConfig
	StoppingTimeout  time.Duration
	Scheme           string
}

// DefaultConfig returns a Config with the package's default timeouts and
// an unbounded "request" queue.
func DefaultConfig() Config {
	return Config{
		Queues:           QueueConfig{},
		ConnectionConfig: DefaultConnectionConfig(),
		StoppingTimeout:  wire.DefaultStoppingTimeout,
		Scheme:           "http",
	}
}

// Server accepts connections on one or more listeners and serves each on a
// worker drawn from Queues' "request" queue. It is the Go counterpart of
// BaseServer in shockwave/pkg/shockwave/server/server.go, generalized to
// the named multi-queue admission model Queues describes.
type Server struct {
	cfg     Config
	queues  *Queues
	handler RequestHandler

	mu        sync.Mutex
	listeners []net.Listener

	stopping  atomic.Bool
	activeWG  sync.WaitGroup
	stats     serverStats
}

type serverStats struct {
	accepted atomic.Int64
	active   atomic.Int64
	closed   atomic.Int64
}

// Stats is a point-in-time snapshot of connection counts.
type Stats struct {
	Accepted int64
	Active   int64
	Closed   int64
}

// NewServer builds a Server that dispatches every parsed request to
// handler.
func NewServer(cfg Config, handler RequestHandler) *Server {
	return &Server{
		cfg:     cfg,
		queues:  NewQueues(cfg.Queues),
		handler: handler,
	}
}

// Serve accepts connections from ln until Shutdown is called or ln returns
// a permanent error. It blocks the calling goroutine; callers typically
// invoke it once per listener in its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	for {
		if s.stopping.Load() {
			return nil
		}

		conn, err := ln.Accept()
		if err != nil {
			if s.stopping.Load() {
				return nil
			}
			return err
		}

		release, err := s.queues.Acquire(context.Background(), "request")
		if err != nil {
			conn.Close()
			continue
		}

		s.stats.accepted.Add(1)
		s.stats.active.Add(1)
		s.activeWG.Add(1)
		go func() {
			defer release()
			defer s.activeWG.Done()
			defer s.stats.active.Add(-1)
			defer s.stats.closed.Add(1)

			c := NewConnection(conn, s.cfg.Scheme, s.cfg.ConnectionConfig, s.handler)
			c.Serve(s.stopping.Load)
		}()
	}
}

// Shutdown stops accepting new connections, closes every listener, and
// waits for in-flight connections to finish up to ctx's deadline or the
// server's StoppingTimeout, whichever is sooner.
// Listeners are closed concurrently through an errgroup; in-flight
// connections are awaited through a WaitGroup.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopping.Store(true)

	s.mu.Lock()
	listeners := append([]net.Listener(nil), s.listeners...)
	s.mu.Unlock()

	var g errgroup.Group
	for _, ln := range listeners {
		ln := ln
		g.Go(func() error { return ln.Close() })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	timeout := s.cfg.StoppingTimeout
	if timeout <= 0 {
		timeout = wire.DefaultStoppingTimeout
	}
	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	done := make(chan struct{})
	go func() {
		s.activeWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(time.Until(deadline)):
		return context.DeadlineExceeded
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of connection counters.
func (s *Server) Stats() Stats {
	return Stats{
		Accepted: s.stats.accepted.Load(),
		Active:   s.stats.active.Load(),
		Closed:   s.stats.closed.Load(),
	}
}
