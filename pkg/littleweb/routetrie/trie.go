// Package routetrie stores route handlers under a trie keyed by pattern
// condition and resolves a request path to a handler while populating
// captures and transformed values.
package routetrie

import (
	"sort"

	"github.com/yourusername/littleweb/pkg/littleweb/routepath"
)

// Handler is the opaque payload stored at a matching node. The dispatcher
// supplies the concrete type (typically a function wrapping a route
// handler); routetrie only needs to know it exists.
type Handler any

// node is one trie node: a condition, an optional handler, and children
// kept sorted fixed < regex < "*" < "**".
type node struct {
	comp     routepath.Component
	handler  Handler
	children []*node
}

// Trie is a route tree for one HTTP method (or the method-agnostic default
// tree).
type Trie struct {
	root *node
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// Insert stores handler under pattern. Re-inserting the same pattern
// replaces its handler.
func (t *Trie) Insert(pattern *routepath.Pattern, handler Handler) {
	cur := t.root
	for i, comp := range pattern.Components {
		cur = cur.childFor(comp)
		if i == len(pattern.Components)-1 {
			cur.handler = handler
		}
	}
	if len(pattern.Components) == 0 {
		cur.handler = handler
	}
}

// childFor returns the child of n matching comp's condition shape,
// creating one (in precedence order) if none exists yet. Two components
// are "the same child" when they have the same condition kind and, for
// fixed/regex, the same literal text/pattern source.
func (n *node) childFor(comp routepath.Component) *node {
	for _, c := range n.children {
		if sameCondition(c.comp.Condition, comp.Condition) {
			return c
		}
	}
	child := &node{comp: comp}
	n.children = append(n.children, child)
	sort.SliceStable(n.children, func(i, j int) bool {
		return n.children[i].comp.Condition.Kind < n.children[j].comp.Condition.Kind
	})
	return child
}

func sameCondition(a, b routepath.Condition) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case routepath.ConditionFixed:
		return a.Fixed == b.Fixed
	case routepath.ConditionRegex:
		return a.Regex.String() == b.Regex.String()
	default:
		return true
	}
}

// Match is one captured binding produced during matching.
type Match struct {
	Handler                 Handler
	Identities              map[string]any
	PropertyTransformations map[string]any
}

// QueryLookup is the subset of request query access the matcher needs to
// evaluate param clauses, satisfied by *wire.Request.
type QueryLookup interface {
	QueryValues(name string) []string
}

// Lookup descends the trie for segments, evaluating param clauses against
// query using registry, and returns the first full match found in
// precedence order, or ok=false.
func (t *Trie) Lookup(segments []string, query QueryLookup, registry *routepath.Registry) (Match, bool) {
	identities := make(map[string]any)
	props := make(map[string]any)
	h, ok := matchNode(t.root, segments, query, registry, identities, props)
	if !ok {
		return Match{}, false
	}
	return Match{Handler: h, Identities: identities, PropertyTransformations: props}, true
}

func matchNode(n *node, segments []string, query QueryLookup, registry *routepath.Registry, identities, props map[string]any) (Handler, bool) {
	if len(segments) == 0 {
		if n.handler != nil {
			return n.handler, true
		}
		return nil, false
	}

	// Children are already kept in precedence order by childFor's sort.
	for _, child := range n.children {
		segment := segments[0]

		if child.comp.Condition.Kind == routepath.ConditionDoubleStar {
			// "**" matches this and all remaining components.
			joined := joinRemaining(segments)
			transformed, ok := evalTransform(child.comp, joined, registry)
			if !ok {
				continue
			}
			if !evalParams(child.comp, query, registry, props) {
				continue
			}
			bindIdentity(child.comp, transformed, identities)
			if child.handler != nil {
				return child.handler, true
			}
			continue
		}

		if !child.comp.Condition.Match(segment) {
			continue
		}
		transformed, ok := evalTransform(child.comp, segment, registry)
		if !ok {
			continue
		}
		if !evalParams(child.comp, query, registry, props) {
			continue
		}

		savedIdentity, hadIdentity := identities[child.comp.Ident]
		bindIdentity(child.comp, transformed, identities)

		if h, ok := matchNode(child, segments[1:], query, registry, identities, props); ok {
			return h, true
		}

		// Backtrack this capture on failure so a sibling retry (at an
		// ancestor level) doesn't see a stale binding.
		if child.comp.Ident != "" {
			if hadIdentity {
				identities[child.comp.Ident] = savedIdentity
			} else {
				delete(identities, child.comp.Ident)
			}
		}
	}

	return nil, false
}

func joinRemaining(segments []string) string {
	out := segments[0]
	for _, s := range segments[1:] {
		out += "/" + s
	}
	return out
}

// evalTransform applies comp's transformer (if any) to raw, returning
// ok=false when the transformer is named but rejects the value or isn't
// registered, either of which fails the component's match.
func evalTransform(comp routepath.Component, raw string, registry *routepath.Registry) (any, bool) {
	if comp.Transform == "" {
		return raw, true
	}
	t, ok := registry.Lookup(comp.Transform)
	if !ok {
		return nil, false
	}
	return t(raw)
}

// bindIdentity stores value under comp.Ident, if the component binds one.
func bindIdentity(comp routepath.Component, value any, identities map[string]any) {
	if comp.Ident == "" {
		return
	}
	identities[comp.Ident] = value
}

func evalParams(comp routepath.Component, query QueryLookup, registry *routepath.Registry, props map[string]any) bool {
	for _, clause := range comp.Params {
		values := query.QueryValues(clause.Name)
		v, ok := clause.Evaluate(values, registry)
		if !ok {
			return false
		}
		if v != nil {
			props[clause.Name] = v
		}
	}
	return true
}
