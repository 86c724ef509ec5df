// Package dispatch implements per-host route controllers, virtual host
// selection, and the request dispatcher: OPTIONS auto-discovery, HEAD/GET
// pairing, method routing, and the trailing-slash redirect retry.
package dispatch

import (
	"strings"
	"sync"

	"github.com/yourusername/littleweb/pkg/littleweb/middleware"
	"github.com/yourusername/littleweb/pkg/littleweb/routepath"
	"github.com/yourusername/littleweb/pkg/littleweb/routetrie"
	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// RouteHandler produces a response for a matched request. A returned error
// is treated as a handler failure.
type RouteHandler func(req *wire.Request) (*wire.Response, error)

// ErrorHandler builds the response for a dispatch failure (404 or 500),
// replaceable by the host.
type ErrorHandler func(req *wire.Request, err error) *wire.Response

// RouteController is the set of routes, middleware, and error handlers for
// one virtual host.
type RouteController struct {
	registry *routepath.Registry
	mu       sync.Mutex

	methodTries map[string]*routetrie.Trie
	defaultTrie *routetrie.Trie
	headTrie    *routetrie.Trie

	middleware *middleware.Pipeline

	InternalErrorHandler ErrorHandler
	ResourceNotFoundHandler ErrorHandler

	stats Stats

	scopedMu    sync.Mutex
	scopedTries map[string]*routetrie.Trie
}

// Stats counts requests the controller has dispatched, mirroring the
// teacher's own BaseServer.Stats (shockwave/pkg/shockwave/server/server.go)
// as a supplemented operational surface (SPEC_FULL.md §5).
type Stats struct {
	mu       sync.Mutex
	Total    uint64
	ByStatus map[int]uint64
}

func (s *Stats) record(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Total++
	if s.ByStatus == nil {
		s.ByStatus = make(map[int]uint64)
	}
	s.ByStatus[status]++
}

// Snapshot returns a copy of the current counts.
func (s *Stats) Snapshot() (total uint64, byStatus map[int]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]uint64, len(s.ByStatus))
	for k, v := range s.ByStatus {
		out[k] = v
	}
	return s.Total, out
}

// NewController returns an empty RouteController with default 404/500
// handlers and a fresh transform registry.
func NewController() *RouteController {
	return &RouteController{
		registry:                routepath.NewRegistry(),
		methodTries:             make(map[string]*routetrie.Trie),
		defaultTrie:             routetrie.New(),
		headTrie:                routetrie.New(),
		middleware:              middleware.New(),
		InternalErrorHandler:    defaultInternalErrorHandler,
		ResourceNotFoundHandler: defaultNotFoundHandler,
		scopedTries:             make(map[string]*routetrie.Trie),
	}
}

// Stats returns the controller's request counters; call Snapshot on the
// result for a consistent copy.
func (c *RouteController) Stats() *Stats { return &c.stats }

// Registry exposes the controller's transform registry so hosts can
// register additional named transformers.
func (c *RouteController) Registry() *routepath.Registry { return c.registry }

// Handle registers handler under method for pattern. method "" registers
// the method-agnostic default route, consulted when no per-method route
// matches.
func (c *RouteController) Handle(method, pattern string, handler RouteHandler) error {
	p, err := routepath.Parse(pattern)
	if err != nil {
		return err
	}
	trie := c.trieFor(method)
	trie.Insert(p, handler)
	return nil
}

// HandleHead registers a dedicated HEAD handler, consulted before falling
// back to the GET handler with body suppression.
func (c *RouteController) HandleHead(pattern string, handler RouteHandler) error {
	p, err := routepath.Parse(pattern)
	if err != nil {
		return err
	}
	c.headTrie.Insert(p, handler)
	return nil
}

// Use registers a middleware filter scoped to pattern ("**" for global).
func (c *RouteController) Use(pattern string, f middleware.Filter) {
	c.middleware.Register(pattern, f)
}

func (c *RouteController) trieFor(method string) *routetrie.Trie {
	if method == "" {
		return c.defaultTrie
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.methodTries[method]
	if !ok {
		t = routetrie.New()
		c.methodTries[method] = t
	}
	return t
}

func (c *RouteController) tryLookup(method string, segments []string, req *wire.Request) (RouteHandler, map[string]any, map[string]any, bool) {
	c.mu.Lock()
	t, ok := c.methodTries[method]
	c.mu.Unlock()
	if !ok {
		return nil, nil, nil, false
	}
	m, ok := t.Lookup(segments, req, c.registry)
	if !ok {
		return nil, nil, nil, false
	}
	return m.Handler.(RouteHandler), m.Identities, m.PropertyTransformations, true
}

func (c *RouteController) registeredMethods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.methodTries))
	for m := range c.methodTries {
		out = append(out, m)
	}
	return out
}

func pathSegments(contextPath string) []string {
	return strings.Split(strings.TrimPrefix(contextPath, "/"), "/")
}

// scopedMiddlewareTrie lazily compiles pattern into a single-route trie used
// purely to test path membership for a path-scoped filter.
func (c *RouteController) scopedMiddlewareTrie(pattern string) *routetrie.Trie {
	c.scopedMu.Lock()
	defer c.scopedMu.Unlock()
	if t, ok := c.scopedTries[pattern]; ok {
		return t
	}
	t := routetrie.New()
	if p, err := routepath.Parse(pattern); err == nil {
		t.Insert(p, true)
	}
	c.scopedTries[pattern] = t
	return t
}
