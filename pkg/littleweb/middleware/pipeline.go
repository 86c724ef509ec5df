// Package middleware implements the ordered filter pipeline that runs
// before route dispatch.
package middleware

import "github.com/yourusername/littleweb/pkg/littleweb/wire"

// Outcome is what a Filter decides for the in-flight request.
type Outcome struct {
	kind     outcomeKind
	response *wire.Response
}

type outcomeKind int

const (
	kindContinue outcomeKind = iota
	kindStop
	kindResponse
)

// Continue advances to the next filter.
func Continue() Outcome { return Outcome{kind: kindContinue} }

// Stop terminates the chain without producing a response, letting the
// dispatcher fall through to 404.
func Stop() Outcome { return Outcome{kind: kindStop} }

// Respond short-circuits the chain: r becomes the final response and route
// handlers are skipped.
func Respond(r *wire.Response) Outcome { return Outcome{kind: kindResponse, response: r} }

// Filter is one middleware step. It may mutate req (add identities, rewrite
// the context path); mutations are visible to subsequent filters and to the
// matched route, but the caller is responsible for not persisting them past
// the request.
type Filter func(req *wire.Request) Outcome

// Registration pairs a filter with the pattern it is scoped to. A pattern
// of "**" makes the filter global.
type Registration struct {
	Pattern string
	Filter  Filter
}

// Pipeline holds global and path-scoped filters in registration order.
type Pipeline struct {
	global []Filter
	scoped []Registration
}

// New returns an empty Pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Register adds a filter under pattern. "**" (or "") registers it as
// global.
func (p *Pipeline) Register(pattern string, f Filter) {
	if pattern == "" || pattern == "**" {
		p.global = append(p.global, f)
		return
	}
	p.scoped = append(p.scoped, Registration{Pattern: pattern, Filter: f})
}

// matchFn reports whether pattern applies to path. The dispatcher
// supplies the match predicate (routepath/routetrie already know how);
// matchFn lets this package stay independent of those.
type matchFn = func(pattern, path string) bool

// Run executes global filters first, in registration order, then
// path-scoped filters whose pattern matches req's context path, in
// registration order. The first non-Continue outcome
// short-circuits the rest of the chain.
func (p *Pipeline) Run(req *wire.Request, matches matchFn) Outcome {
	for _, f := range p.global {
		if o := f(req); o.kind != kindContinue {
			return o
		}
	}
	for _, reg := range p.scoped {
		if !matches(reg.Pattern, req.ContextPath) {
			continue
		}
		if o := reg.Filter(req); o.kind != kindContinue {
			return o
		}
	}
	return Continue()
}

// IsResponse reports whether o carries a final response, returning it.
func (o Outcome) IsResponse() (*wire.Response, bool) {
	if o.kind == kindResponse {
		return o.response, true
	}
	return nil, false
}

// IsStop reports whether o is Stop().
func (o Outcome) IsStop() bool { return o.kind == kindStop }
