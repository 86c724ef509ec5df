// Package littleweb composes the wire codec, form parser, route dispatcher,
// and worker pool into the embeddable HTTP/1.1 server the rest of this
// module implements one layer at a time. A host registers handlers on a
// RouteController, builds a Server from a HostRouter, and calls Serve on one
// or more listeners.
//
// The subpackages (wire, routepath, routetrie, dispatch, middleware,
// formparse, workerpool, session, mimetable, metrics) each own one part of
// the design and can be used standalone; this file is the glue a typical
// host only needs once.
package littleweb

import (
	"context"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/yourusername/littleweb/pkg/littleweb/dispatch"
	"github.com/yourusername/littleweb/pkg/littleweb/formparse"
	"github.com/yourusername/littleweb/pkg/littleweb/session"
	"github.com/yourusername/littleweb/pkg/littleweb/wire"
	"github.com/yourusername/littleweb/pkg/littleweb/workerpool"
)

// RouteController, RouteHandler, and HostRouter are re-exported so hosts
// only need to import this package for the common case.
type (
	RouteController = dispatch.RouteController
	RouteHandler    = dispatch.RouteHandler
	HostRouter      = dispatch.HostRouter
)

// NewController and NewHostRouter are re-exported constructors.
var (
	NewController = dispatch.NewController
	NewHostRouter = dispatch.NewHostRouter
)

// Config is the full configuration surface for a Server.
type Config struct {
	Queues          workerpool.QueueConfig
	Connection      workerpool.ConnectionConfig
	StoppingTimeout time.Duration
	Scheme          string
	// TempDir is where multipart file parts are spooled.
	TempDir string
	// Logger receives connection- and dispatch-level diagnostics. A nil
	// Logger makes the server silent, which is what tests want.
	Logger *slog.Logger
	// Sessions resolves the session-ID cookie list to a Session. A nil Sessions disables session
	// support: Request.Session always returns nil.
	Sessions session.Manager
}

// DefaultConfig returns a Config with the package's default timeouts, an
// unbounded "request" queue, a reference in-memory session manager, and a
// slog.Logger writing text lines to stderr.
func DefaultConfig() Config {
	return Config{
		Queues:          workerpool.QueueConfig{},
		Connection:      workerpool.DefaultConnectionConfig(),
		StoppingTimeout: wire.DefaultStoppingTimeout,
		Scheme:          "http",
		TempDir:         os.TempDir(),
		Logger:          slog.New(slog.NewTextHandler(os.Stderr, nil)),
		Sessions:        session.NewInMemoryManager(0),
	}
}

// Server is the assembled embeddable HTTP/1.1 server: a HostRouter's
// controllers dispatch requests that a workerpool.Server accepts and drives
// through the keep-alive loop.
type Server struct {
	cfg    Config
	router *HostRouter
	pool   *workerpool.Server
}

// NewServer builds a Server that dispatches every accepted connection's
// requests through router.
func NewServer(cfg Config, router *HostRouter) *Server {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	s := &Server{cfg: cfg, router: router}
	poolCfg := workerpool.Config{
		Queues:           cfg.Queues,
		ConnectionConfig: cfg.Connection,
		StoppingTimeout:  cfg.StoppingTimeout,
		Scheme:           cfg.Scheme,
	}
	s.pool = workerpool.NewServer(poolCfg, s.handle)
	return s
}

// Serve accepts connections from ln until Shutdown is called or ln returns
// a permanent error. Call it once per listener, typically each in its own
// goroutine.
func (s *Server) Serve(ln net.Listener) error {
	return s.pool.Serve(ln)
}

// Shutdown stops accepting new connections and waits for in-flight
// connections to finish, up to ctx's deadline or Config.StoppingTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.pool.Shutdown(ctx)
}

// Stats returns a snapshot of accepted/active/closed connection counts.
func (s *Server) Stats() workerpool.Stats {
	return s.pool.Stats()
}

// handle is the workerpool.RequestHandler: it parses the request body into
// form/upload data, resolves the session, dispatches through router, and
// cleans up any spooled upload files before returning the response to the
// connection loop for writing.
func (s *Server) handle(req *wire.Request) *wire.Response {
	if err := formparse.ApplyBody(req, s.cfg.TempDir); err != nil {
		defer formparse.CleanupUploads(req)
		return errorResponse(err)
	}
	defer formparse.CleanupUploads(req)

	attachSession(req, s.cfg.Sessions)

	resp := dispatch.Dispatch(s.router, req)
	s.logResult(req, resp)
	return resp
}

func (s *Server) logResult(req *wire.Request, resp *wire.Response) {
	if s.cfg.Logger == nil {
		return
	}
	s.cfg.Logger.Debug("request",
		"method", req.Method,
		"path", req.ContextPath,
		"status", resp.Status,
	)
}

// attachSession resolves req's session lazily: it stores a thunk that the
// first Request.Session call evaluates and caches, rather than eagerly
// consulting the manager for requests that never read their session. The
// request holds only a borrowed handle, resolved on first access.
func attachSession(req *wire.Request, mgr session.Manager) {
	if mgr == nil {
		return
	}
	req.SetSessionResolver(func() any {
		var ids []string
		for _, c := range wire.ParseCookieHeader(req.Header.Get(wire.HeaderCookie)) {
			if c.Name == wire.SessionCookieName {
				ids = append(ids, c.Value)
			}
		}
		return mgr.FindOrCreate(ids)
	})
}

// errorResponse maps a *wire.Error raised while parsing a request's form
// body to its disposition status.
func errorResponse(err error) *wire.Response {
	resp := wire.NewResponse()
	resp.Status = 400
	if werr, ok := err.(*wire.Error); ok {
		switch werr.Kind {
		case wire.KindLengthRequired:
			resp.Status = 411
		case wire.KindEntityTooLarge:
			resp.Status = 413
		case wire.KindBadRequest:
			resp.Status = 400
		}
	}
	resp.Body = wire.BytesBody{Data: []byte(resp.ReasonOrDefault()), ContentType: "text/plain"}
	resp.Header.Set(wire.HeaderConnection, "close")
	return resp
}
