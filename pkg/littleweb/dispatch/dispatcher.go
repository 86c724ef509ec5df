package dispatch

import (
	"sort"
	"strings"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// basicMethods are added to a path's OPTIONS Allow response when the
// method-agnostic default route matches that path. An OPTIONS "*" response
// lists only the explicitly registered methods.
var basicMethods = []string{wire.MethodHEAD, wire.MethodGET, wire.MethodPOST, wire.MethodPUT, wire.MethodDELETE}

// HostRouter selects a RouteController by the request's Host header,
// falling back to a "*" default controller.
type HostRouter struct {
	byHost  map[string]*RouteController
	fallback *RouteController
}

// NewHostRouter returns a HostRouter with no hosts registered. Until Default
// is set or a matching Host is registered, Dispatch answers every request
// with the default 404 handler.
func NewHostRouter() *HostRouter {
	return &HostRouter{byHost: make(map[string]*RouteController)}
}

// Host registers controller for the given host name (port ignored).
func (r *HostRouter) Host(host string, controller *RouteController) {
	r.byHost[strings.ToLower(host)] = controller
}

// Default sets the "*" fallback controller used when the Host header is
// absent or unrecognized.
func (r *HostRouter) Default(controller *RouteController) {
	r.fallback = controller
}

func (r *HostRouter) controllerFor(req *wire.Request) *RouteController {
	host := wire.HostOnly(req.Header.Get(wire.HeaderHost))
	if c, ok := r.byHost[strings.ToLower(host)]; ok {
		return c
	}
	return r.fallback
}

// Dispatch runs the full per-request pipeline: host selection, middleware,
// OPTIONS synthesis, method routing with default-trie fallback and
// trailing-slash retry, and HEAD/GET pairing.
func Dispatch(router *HostRouter, req *wire.Request) *wire.Response {
	controller := router.controllerFor(req)
	if controller == nil {
		return defaultNotFoundHandler(req, nil)
	}

	if req.ContextPath == "*" && req.Method == wire.MethodOPTIONS {
		resp := optionsStar(controller)
		controller.stats.record(resp.Status)
		return resp
	}

	outcome := controller.middleware.Run(req, func(pattern, path string) bool {
		return patternMatchesPath(controller, pattern, path)
	})
	if resp, ok := outcome.IsResponse(); ok {
		controller.stats.record(resp.Status)
		return resp
	}
	if outcome.IsStop() {
		resp := controller.ResourceNotFoundHandler(req, nil)
		resp.Status = 404
		controller.stats.record(resp.Status)
		return resp
	}

	if req.Method == wire.MethodOPTIONS {
		resp := optionsForPath(controller, req)
		controller.stats.record(resp.Status)
		return resp
	}

	resp := dispatchMethod(controller, req)
	if err := resolveIncludes(router, req, resp); err != nil {
		resp = controller.InternalErrorHandler(req, err)
	}
	controller.stats.record(resp.Status)
	return resp
}

func dispatchMethod(controller *RouteController, req *wire.Request) *wire.Response {
	if req.Method == wire.MethodHEAD {
		segments := pathSegments(req.ContextPath)
		if m, ok := controller.headTrie.Lookup(segments, req, controller.registry); ok {
			if resp, ok := invoke(controller, req, m.Handler.(RouteHandler), m.Identities, m.PropertyTransformations); ok {
				return resp
			}
		}
		// Fall through to GET, suppressing the body at write time (the
		// wire codec does this based on req.Method == HEAD).
		getResp, matched := tryMethod(controller, wire.MethodGET, req)
		if matched {
			return getResp
		}
		return controller.ResourceNotFoundHandler(req, nil)
	}

	resp, matched := tryMethod(controller, req.Method, req)
	if matched {
		return resp
	}

	if req.Method == wire.MethodGET && !strings.HasSuffix(req.ContextPath, "/") {
		retryReq := *req
		retryReq.ContextPath = req.ContextPath + "/"
		if _, matched := tryMethod(controller, wire.MethodGET, &retryReq); matched {
			redirect := wire.NewResponse()
			redirect.Status = 301
			redirect.Header.Set(wire.HeaderLocation, retryReq.ContextPath)
			redirect.Body = wire.EmptyBody{}
			return redirect
		}
	}

	return controller.ResourceNotFoundHandler(req, nil)
}

// tryMethod consults the per-method trie, falling back to the
// method-agnostic default trie on miss.
func tryMethod(controller *RouteController, method string, req *wire.Request) (*wire.Response, bool) {
	segments := pathSegments(req.ContextPath)

	if handler, identities, props, ok := controller.tryLookup(method, segments, req); ok {
		return invoke(controller, req, handler, identities, props)
	}

	m, ok := controller.defaultTrie.Lookup(segments, req, controller.registry)
	if !ok {
		return nil, false
	}
	return invoke(controller, req, m.Handler.(RouteHandler), m.Identities, m.PropertyTransformations)
}

func invoke(controller *RouteController, req *wire.Request, handler RouteHandler, identities, props map[string]any) (*wire.Response, bool) {
	req.Identities = identities
	req.PropertyTransformations = props
	resp, err := handler(req)
	if err != nil {
		return controller.InternalErrorHandler(req, err), true
	}
	return resp, true
}

func optionsStar(controller *RouteController) *wire.Response {
	methods := controller.registeredMethods()
	resp := wire.NewResponse()
	resp.Status = 200
	resp.Header.Set(wire.HeaderAllow, strings.Join(sortedMethods(methods), ", "))
	return resp
}

func optionsForPath(controller *RouteController, req *wire.Request) *wire.Response {
	segments := pathSegments(req.ContextPath)
	var allowed []string
	for _, m := range controller.registeredMethods() {
		if _, _, _, ok := controller.tryLookup(m, segments, req); ok {
			allowed = append(allowed, m)
		}
	}
	if _, ok := controller.defaultTrie.Lookup(segments, req, controller.registry); ok {
		allowed = append(allowed, basicMethods...)
	}

	resp := wire.NewResponse()
	if len(allowed) == 0 {
		resp.Status = 404
		return resp
	}
	allowed = append(allowed, wire.MethodOPTIONS)
	resp.Status = 200
	resp.Header.Set(wire.HeaderAllow, strings.Join(sortedMethods(dedupe(allowed)), ", "))
	return resp
}

func sortedMethods(methods []string) []string {
	out := append([]string(nil), methods...)
	sort.Strings(out)
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// patternMatchesPath reports whether a middleware pattern (a route-path
// pattern string, "**" for global) matches path. Non-global patterns are
// parsed and matched the same way a route would be.
func patternMatchesPath(controller *RouteController, pattern, path string) bool {
	if pattern == "**" {
		return true
	}
	t := controller.scopedMiddlewareTrie(pattern)
	_, ok := t.Lookup(pathSegments(path), emptyQuery{}, controller.registry)
	return ok
}

type emptyQuery struct{}

func (emptyQuery) QueryValues(name string) []string { return nil }
