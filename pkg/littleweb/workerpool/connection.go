package workerpool

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// RequestHandler parses, dispatches, and returns a response for one
// request. The connection loop sets req.Scheme and req.RemoteAddr before
// calling it and drives the read/parse/write cycle around it.
type RequestHandler func(req *wire.Request) *wire.Response

// ConnectionConfig configures one connection's keep-alive behavior, named
// and shaped after ConnectionConfig in
// shockwave/pkg/shockwave/http11/connection.go.
type ConnectionConfig struct {
	InitialRequestTimeout time.Duration
	BetweenRequestTimeout time.Duration
	MaxRequests           int // 0 = unlimited
}

// DefaultConnectionConfig returns the package's default timeouts.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		InitialRequestTimeout: wire.DefaultInitialRequestTimeout,
		BetweenRequestTimeout: wire.DefaultInitialRequestTimeout,
	}
}

// Connection drives the keep-alive read/dispatch/write loop for one
// accepted client.
type Connection struct {
	conn    net.Conn
	reader  *bufio.Reader
	cfg     ConnectionConfig
	handler RequestHandler
	scheme  string

	requests int
}

// NewConnection wraps conn for serving, with handler invoked once per
// parsed request.
func NewConnection(conn net.Conn, scheme string, cfg ConnectionConfig, handler RequestHandler) *Connection {
	return &Connection{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		cfg:     cfg,
		handler: handler,
		scheme:  scheme,
	}
}

// Serve runs the keep-alive loop until the connection closes, stopping is
// requested, or an unrecoverable error occurs. stopping is
// checked at each loop boundary, satisfying the cooperative-stop-flag
// requirement.
func (c *Connection) Serve(stopping func() bool) error {
	defer c.conn.Close()

	for {
		if stopping() {
			return nil
		}

		timeout := c.cfg.BetweenRequestTimeout
		if c.requests == 0 {
			timeout = c.cfg.InitialRequestTimeout
		}
		if timeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(timeout))
		}

		req, err := wire.ReadRequestHead(c.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if werr, ok := err.(*wire.Error); ok && werr.Kind == wire.KindBadRequest {
				writeErrorResponse(c.conn, &wire.Request{ProtoMajor: 1, ProtoMinor: 1}, err)
			}
			return err
		}
		req.Scheme = c.scheme
		if addr, ok := c.conn.RemoteAddr().(interface{ String() string }); ok {
			req.RemoteAddr = addr.String()
		}

		c.conn.SetReadDeadline(time.Time{})
		if err := wire.SetupBody(req, c.reader); err != nil {
			writeErrorResponse(c.conn, req, err)
			return err
		}

		c.requests++
		willClose := c.cfg.MaxRequests > 0 && c.requests >= c.cfg.MaxRequests

		resp := c.handler(req)
		if willClose {
			resp.Header.Set(wire.HeaderConnection, "close")
		}

		if err := wire.WriteResponse(c.conn, req, resp); err != nil {
			return err
		}

		if shouldCloseAfterRequest(req, resp, willClose) {
			return nil
		}
	}
}

// shouldCloseAfterRequest decides whether to close the request loop:
// true when the client asked for it, the connection has reached
// MaxRequests, the response used a non-current write queue or a
// CallbackBody, or the response carries Connection: close.
func shouldCloseAfterRequest(req *wire.Request, resp *wire.Response, willClose bool) bool {
	if willClose || req.Close {
		return true
	}
	if resp.WriteQueue != "" && resp.WriteQueue != "current" {
		return true
	}
	if _, ok := resp.Body.(wire.CallbackBody); ok {
		return true
	}
	return strings.EqualFold(resp.Header.Get(wire.HeaderConnection), "close")
}

func writeErrorResponse(w io.Writer, req *wire.Request, err error) {
	resp := wire.NewResponse()
	resp.Status = 400
	if werr, ok := err.(*wire.Error); ok {
		switch werr.Kind {
		case wire.KindLengthRequired:
			resp.Status = 411
		case wire.KindBadRequest:
			resp.Status = 400
		case wire.KindEntityTooLarge:
			resp.Status = 413
		}
	}
	resp.Body = wire.BytesBody{Data: []byte(resp.ReasonOrDefault()), ContentType: "text/plain"}
	if req != nil {
		wire.WriteResponse(w, req, resp)
	}
}
