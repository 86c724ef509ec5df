// Package routepath implements the route-path pattern language: parsing
// pattern strings into structured components with a condition, an optional
// capture identifier, an optional transformer, and optional query/form
// parameter clauses.
package routepath

import "strconv"

// Transform converts a captured string into a typed value. A nil, false
// return means the component fails to match.
type Transform func(raw string) (value any, ok bool)

// Registry maps transform names to Transform functions. Build one with
// NewRegistry, which carries the built-in transformers; the zero value has
// no map, so Register on it panics and Lookup finds nothing.
type Registry struct {
	byName map[string]Transform
}

// NewRegistry returns a Registry pre-populated with the built-in
// transformers.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Transform)}
	r.registerBuiltins()
	return r
}

// Register adds or replaces a named transformer.
func (r *Registry) Register(name string, t Transform) {
	r.byName[name] = t
}

// Lookup returns the transformer registered under name, if any.
func (r *Registry) Lookup(name string) (Transform, bool) {
	t, ok := r.byName[name]
	return t, ok
}

func (r *Registry) registerBuiltins() {
	r.Register("String", func(raw string) (any, bool) { return raw, true })
	r.Register("Bool", func(raw string) (any, bool) {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, false
		}
		return v, true
	})
	r.Register("Float", floatTransform(32))
	r.Register("Double", floatTransform(64))

	for _, bits := range []int{8, 16, 32, 64} {
		r.Register(intName(bits, ""), intTransform(bits, 10, true))
		r.Register(intName(bits, "X"), intTransform(bits, 16, true))
		r.Register(intName(bits, "B"), intTransform(bits, 2, true))
		r.Register(uintName(bits, ""), intTransform(bits, 10, false))
		r.Register(uintName(bits, "X"), intTransform(bits, 16, false))
		r.Register(uintName(bits, "B"), intTransform(bits, 2, false))
	}
}

func intName(bits int, suffix string) string  { return "Int" + suffix + strconv.Itoa(bits) }
func uintName(bits int, suffix string) string { return "Uint" + suffix + strconv.Itoa(bits) }

func floatTransform(bits int) Transform {
	return func(raw string) (any, bool) {
		v, err := strconv.ParseFloat(raw, bits)
		if err != nil {
			return nil, false
		}
		if bits == 32 {
			return float32(v), true
		}
		return v, true
	}
}

func intTransform(bits, base int, signed bool) Transform {
	return func(raw string) (any, bool) {
		if signed {
			v, err := strconv.ParseInt(raw, base, bits)
			if err != nil {
				return nil, false
			}
			switch bits {
			case 8:
				return int8(v), true
			case 16:
				return int16(v), true
			case 32:
				return int32(v), true
			default:
				return v, true
			}
		}
		v, err := strconv.ParseUint(raw, base, bits)
		if err != nil {
			return nil, false
		}
		switch bits {
		case 8:
			return uint8(v), true
		case 16:
			return uint16(v), true
		case 32:
			return uint32(v), true
		default:
			return v, true
		}
	}
}
