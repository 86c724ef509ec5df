package routepath

import (
	"regexp"
	"testing"
)

func TestParamLeafFixedEval(t *testing.T) {
	l := ParamLeaf{Kind: ParamCondFixed, Fixed: "en"}
	if !l.eval("en") {
		t.Error("expected fixed leaf to match identical value")
	}
	if l.eval("fr") {
		t.Error("expected fixed leaf to reject different value")
	}
}

func TestParamLeafRegexEval(t *testing.T) {
	l := ParamLeaf{Kind: ParamCondRegex, Regex: regexp.MustCompile(`^[a-z]{2}$`)}
	if !l.eval("en") {
		t.Error("expected regex leaf to match two lowercase letters")
	}
	if l.eval("eng") {
		t.Error("expected regex leaf to reject three letters")
	}
}

func TestParamAndRequiresAll(t *testing.T) {
	a := ParamAnd{Exprs: []ParamExpr{
		ParamLeaf{Kind: ParamCondRegex, Regex: regexp.MustCompile(`^[a-z]+$`)},
		ParamLeaf{Kind: ParamCondFixed, Fixed: "en"},
	}}
	if !a.eval("en") {
		t.Error("expected AND to pass when every sub-expression passes")
	}
	if a.eval("fr") {
		t.Error("expected AND to fail when one sub-expression fails")
	}
}

func TestParamOrRequiresAny(t *testing.T) {
	o := ParamOr{Exprs: []ParamExpr{
		ParamLeaf{Kind: ParamCondFixed, Fixed: "en"},
		ParamLeaf{Kind: ParamCondFixed, Fixed: "fr"},
	}}
	if !o.eval("fr") {
		t.Error("expected OR to pass when any sub-expression passes")
	}
	if o.eval("de") {
		t.Error("expected OR to fail when no sub-expression passes")
	}
}

func TestParamClauseEvaluateNoCondition(t *testing.T) {
	c := ParamClause{Name: "q"}
	r := NewRegistry()
	v, ok := c.Evaluate([]string{"hello"}, r)
	if !ok || v != "hello" {
		t.Errorf("Evaluate() = %v, %v, want hello, true", v, ok)
	}
}

func TestParamClauseEvaluateMissingOptional(t *testing.T) {
	c := ParamClause{Name: "q", Optional: true}
	r := NewRegistry()
	v, ok := c.Evaluate(nil, r)
	if !ok || v != nil {
		t.Errorf("Evaluate() for missing optional = %v, %v, want nil, true", v, ok)
	}
}

func TestParamClauseEvaluateMissingRequired(t *testing.T) {
	c := ParamClause{Name: "q"}
	r := NewRegistry()
	_, ok := c.Evaluate(nil, r)
	if ok {
		t.Error("expected Evaluate to fail when a required parameter is absent")
	}
}

func TestParamClauseEvaluateConditionRejectsThenFallsThrough(t *testing.T) {
	c := ParamClause{
		Name:      "code",
		Condition: ParamLeaf{Kind: ParamCondFixed, Fixed: "en"},
	}
	r := NewRegistry()
	// first value fails the condition, second passes.
	v, ok := c.Evaluate([]string{"fr", "en"}, r)
	if !ok || v != "en" {
		t.Errorf("Evaluate() = %v, %v, want en, true", v, ok)
	}
}

func TestParamClauseEvaluateAllValuesFailCondition(t *testing.T) {
	c := ParamClause{
		Name:      "code",
		Condition: ParamLeaf{Kind: ParamCondFixed, Fixed: "en"},
	}
	r := NewRegistry()
	_, ok := c.Evaluate([]string{"fr", "de"}, r)
	if ok {
		t.Error("expected Evaluate to fail when no value satisfies the condition")
	}
}

func TestParamClauseEvaluateWithTransform(t *testing.T) {
	c := ParamClause{Name: "id", Transform: "Int64"}
	r := NewRegistry()
	v, ok := c.Evaluate([]string{"42"}, r)
	if !ok {
		t.Fatal("expected Evaluate to succeed")
	}
	if i, ok := v.(int64); !ok || i != 42 {
		t.Errorf("Evaluate() = %#v, want int64(42)", v)
	}
}

func TestParamClauseEvaluateUnknownTransform(t *testing.T) {
	c := ParamClause{Name: "id", Transform: "NoSuchTransform"}
	r := NewRegistry()
	_, ok := c.Evaluate([]string{"42"}, r)
	if ok {
		t.Error("expected Evaluate to fail when the named transformer is not registered")
	}
}

func TestParamClauseEvaluateTransformRejectsThenFallsThrough(t *testing.T) {
	c := ParamClause{Name: "id", Transform: "Int64"}
	r := NewRegistry()
	v, ok := c.Evaluate([]string{"notanumber", "7"}, r)
	if !ok {
		t.Fatal("expected Evaluate to fall through to the value the transformer accepts")
	}
	if i, ok := v.(int64); !ok || i != 7 {
		t.Errorf("Evaluate() = %#v, want int64(7)", v)
	}
}
