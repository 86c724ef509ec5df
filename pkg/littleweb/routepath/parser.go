package routepath

import (
	"fmt"
	"regexp"
	"strings"
)

// Parse parses a full route pattern string into a Pattern. Components are
// separated by '/'; a leading '/' yields a single empty-string component
// for the root path, so a path of "/" matches a component list of one
// empty element.
func Parse(pattern string) (*Pattern, error) {
	trimmed := strings.TrimPrefix(pattern, "/")
	rawParts := strings.Split(trimmed, "/")

	p := &Pattern{Raw: pattern}
	for i, raw := range rawParts {
		comp, err := parseComponent(raw)
		if err != nil {
			return nil, fmt.Errorf("routepath: component %d (%q): %w", i, raw, err)
		}
		if comp.Condition.Kind == ConditionDoubleStar && i != len(rawParts)-1 {
			return nil, fmt.Errorf("routepath: \"**\" only legal as the last component")
		}
		p.Components = append(p.Components, comp)
	}
	return p, nil
}

// parseComponent parses one '/'-delimited segment, either the unbraced
// short form (bare condition text) or the full braced form
// "[:ident]{condition[<transform>][{params}]}".
func parseComponent(raw string) (Component, error) {
	if !strings.HasPrefix(raw, ":") && !strings.HasPrefix(raw, "{") {
		cond, err := parseCondition(raw)
		if err != nil {
			return Component{}, err
		}
		return Component{Condition: cond}, nil
	}

	s := raw
	ident := ""
	if strings.HasPrefix(s, ":") {
		s = s[1:]
		braceIdx := strings.IndexByte(s, '{')
		if braceIdx < 0 {
			return Component{}, fmt.Errorf("expected '{' after identifier")
		}
		ident = s[:braceIdx]
		s = s[braceIdx:]
	}

	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return Component{}, fmt.Errorf("expected braced component body")
	}
	inner := s[1 : len(s)-1]

	condText, rest := inner, ""
	if idx := strings.IndexAny(inner, "<{"); idx >= 0 {
		condText, rest = inner[:idx], inner[idx:]
	}

	cond, err := parseCondition(condText)
	if err != nil {
		return Component{}, err
	}

	comp := Component{Condition: cond, Ident: ident}

	if strings.HasPrefix(rest, "<") {
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return Component{}, fmt.Errorf("unterminated transform '<...>'")
		}
		comp.Transform = rest[1:end]
		rest = rest[end+1:]
	}

	if strings.HasPrefix(rest, "{") {
		if !strings.HasSuffix(rest, "}") {
			return Component{}, fmt.Errorf("unterminated params '{...}'")
		}
		params, err := parseParamList(rest[1 : len(rest)-1])
		if err != nil {
			return Component{}, err
		}
		comp.Params = params
	}

	return comp, nil
}

func parseCondition(text string) (Condition, error) {
	switch text {
	case "**":
		return Condition{Kind: ConditionDoubleStar}, nil
	case "*":
		return Condition{Kind: ConditionStar}, nil
	}
	if strings.HasPrefix(text, "^") && strings.HasSuffix(text, "$") {
		re, err := regexp.Compile(text)
		if err != nil {
			return Condition{}, fmt.Errorf("invalid regex %q: %w", text, err)
		}
		return Condition{Kind: ConditionRegex, Regex: re}, nil
	}
	return Condition{Kind: ConditionFixed, Fixed: text}, nil
}

// parseParamList splits a comma-separated list of "@name: ..." clauses,
// respecting nested '[' ']' and '<' '>' groups so commas inside a condition
// group don't split a clause early.
func parseParamList(s string) ([]ParamClause, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var clauses []ParamClause
	for _, raw := range splitTopLevel(s, ',') {
		clause, err := parseParamClause(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '<':
			depth++
		case ']', '>':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func parseParamClause(s string) (ParamClause, error) {
	clause := ParamClause{}
	if strings.HasPrefix(s, "?") {
		clause.Optional = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "@") {
		return ParamClause{}, fmt.Errorf("expected '@name' in param clause %q", s)
	}
	s = s[1:]
	colonIdx := strings.IndexByte(s, ':')
	if colonIdx < 0 {
		return ParamClause{}, fmt.Errorf("expected ':' in param clause %q", s)
	}
	clause.Name = strings.TrimSpace(s[:colonIdx])
	rest := strings.TrimSpace(s[colonIdx+1:])

	if strings.HasPrefix(rest, "[") {
		end := strings.LastIndexByte(rest, ']')
		if end < 0 {
			return ParamClause{}, fmt.Errorf("unterminated '[...]' in param clause for %q", clause.Name)
		}
		expr, err := parseParamExpr(rest[1:end])
		if err != nil {
			return ParamClause{}, err
		}
		clause.Condition = expr
		rest = strings.TrimSpace(rest[end+1:])
	}

	if strings.HasPrefix(rest, "<") {
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return ParamClause{}, fmt.Errorf("unterminated '<...>' in param clause for %q", clause.Name)
		}
		clause.Transform = rest[1:end]
	}

	return clause, nil
}

// parseParamExpr parses an OR-of-ANDs expression over "{text}" leaf
// conditions joined by "&&" and "||". OR binds loosest.
func parseParamExpr(s string) (ParamExpr, error) {
	orParts := splitOperator(s, "||")
	if len(orParts) > 1 {
		var exprs []ParamExpr
		for _, part := range orParts {
			e, err := parseParamAnd(part)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return ParamOr{Exprs: exprs}, nil
	}
	return parseParamAnd(s)
}

func parseParamAnd(s string) (ParamExpr, error) {
	andParts := splitOperator(s, "&&")
	if len(andParts) > 1 {
		var exprs []ParamExpr
		for _, part := range andParts {
			e, err := parseParamLeaf(part)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
		}
		return ParamAnd{Exprs: exprs}, nil
	}
	return parseParamLeaf(s)
}

func parseParamLeaf(s string) (ParamExpr, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("expected '{condition}', got %q", s)
	}
	text := s[1 : len(s)-1]
	if strings.HasPrefix(text, "^") && strings.HasSuffix(text, "$") {
		re, err := regexp.Compile(text)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", text, err)
		}
		return ParamLeaf{Kind: ParamCondRegex, Regex: re}, nil
	}
	return ParamLeaf{Kind: ParamCondFixed, Fixed: text}, nil
}

// splitOperator splits s on top-level (not inside '{' '}') occurrences of
// op.
func splitOperator(s string, op string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i+len(op) <= len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 && s[i:i+len(op)] == op {
			out = append(out, s[start:i])
			start = i + len(op)
			i += len(op) - 1
		}
	}
	out = append(out, s[start:])
	return out
}
