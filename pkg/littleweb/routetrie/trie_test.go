package routetrie

import (
	"testing"

	"github.com/yourusername/littleweb/pkg/littleweb/routepath"
)

type fakeQuery map[string][]string

func (f fakeQuery) QueryValues(name string) []string { return f[name] }

func mustParse(t *testing.T, pattern string) *routepath.Pattern {
	t.Helper()
	p, err := routepath.Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", pattern, err)
	}
	return p
}

func TestTrieFixedMatch(t *testing.T) {
	trie := New()
	trie.Insert(mustParse(t, "/users/list"), "list-handler")

	m, ok := trie.Lookup([]string{"users", "list"}, fakeQuery{}, routepath.NewRegistry())
	if !ok {
		t.Fatal("expected match")
	}
	if m.Handler != "list-handler" {
		t.Errorf("Handler = %v, want %q", m.Handler, "list-handler")
	}
}

func TestTrieNoMatch(t *testing.T) {
	trie := New()
	trie.Insert(mustParse(t, "/users/list"), "list-handler")

	if _, ok := trie.Lookup([]string{"users", "detail"}, fakeQuery{}, routepath.NewRegistry()); ok {
		t.Fatal("expected no match")
	}
}

func TestTrieFixedBeatsRegexBeatsStar(t *testing.T) {
	trie := New()
	trie.Insert(mustParse(t, "/*"), "star")
	trie.Insert(mustParse(t, `/^[a-z]+$`), "regex")
	trie.Insert(mustParse(t, "/users"), "fixed")

	m, ok := trie.Lookup([]string{"users"}, fakeQuery{}, routepath.NewRegistry())
	if !ok || m.Handler != "fixed" {
		t.Fatalf("Lookup = %+v, %v, want fixed handler", m, ok)
	}

	m, ok = trie.Lookup([]string{"other"}, fakeQuery{}, routepath.NewRegistry())
	if !ok || m.Handler != "regex" {
		t.Fatalf("Lookup = %+v, %v, want regex handler", m, ok)
	}

	m, ok = trie.Lookup([]string{"123"}, fakeQuery{}, routepath.NewRegistry())
	if !ok || m.Handler != "star" {
		t.Fatalf("Lookup = %+v, %v, want star handler", m, ok)
	}
}

func TestTrieDoubleStarConsumesRemainder(t *testing.T) {
	trie := New()
	trie.Insert(mustParse(t, "/static/**"), "assets")

	m, ok := trie.Lookup([]string{"static", "css", "app.css"}, fakeQuery{}, routepath.NewRegistry())
	if !ok || m.Handler != "assets" {
		t.Fatalf("Lookup = %+v, %v, want assets handler", m, ok)
	}
}

func TestTrieCaptureWithTransform(t *testing.T) {
	trie := New()
	trie.Insert(mustParse(t, `/items/:id{^[0-9]+$<Int64>}`), "item-detail")

	m, ok := trie.Lookup([]string{"items", "42"}, fakeQuery{}, routepath.NewRegistry())
	if !ok {
		t.Fatal("expected match")
	}
	id, ok := m.Identities["id"].(int64)
	if !ok || id != 42 {
		t.Errorf("Identities[\"id\"] = %#v, want int64(42)", m.Identities["id"])
	}
}

func TestTrieCaptureTransformRejectsNonNumeric(t *testing.T) {
	trie := New()
	trie.Insert(mustParse(t, `/items/:id{^[0-9]+$<Int64>}`), "item-detail")

	if _, ok := trie.Lookup([]string{"items", "abc"}, fakeQuery{}, routepath.NewRegistry()); ok {
		t.Fatal("expected no match for non-numeric id against a numeric-condition, numeric-transform route")
	}
}

func TestTrieBacktracksCaptureOnSiblingFailure(t *testing.T) {
	trie := New()
	// Both routes share the ":a" capture prefix, but only the second
	// continuation matches "detail"; the first match attempt's capture
	// binding must not leak into the returned identities.
	trie.Insert(mustParse(t, "/:a{*}/only-a"), "only-a")
	trie.Insert(mustParse(t, "/:a{*}/detail"), "detail")

	m, ok := trie.Lookup([]string{"widgets", "detail"}, fakeQuery{}, routepath.NewRegistry())
	if !ok || m.Handler != "detail" {
		t.Fatalf("Lookup = %+v, %v, want detail handler", m, ok)
	}
	if m.Identities["a"] != "widgets" {
		t.Errorf("Identities[\"a\"] = %v, want %q", m.Identities["a"], "widgets")
	}
}

func TestTrieParamClauseGatesMatch(t *testing.T) {
	trie := New()
	trie.Insert(mustParse(t, `/{search{@q: [{^[a-z]+$}]}}`), "search")

	if _, ok := trie.Lookup([]string{"search"}, fakeQuery{"q": {"123"}}, routepath.NewRegistry()); ok {
		t.Fatal("expected no match: q value fails the regex condition")
	}
	m, ok := trie.Lookup([]string{"search"}, fakeQuery{"q": {"abc"}}, routepath.NewRegistry())
	if !ok || m.Handler != "search" {
		t.Fatalf("Lookup = %+v, %v, want search handler", m, ok)
	}
}

func TestTrieOptionalParamClauseAllowsAbsence(t *testing.T) {
	trie := New()
	trie.Insert(mustParse(t, "/{list{?@page: }}"), "list")

	if _, ok := trie.Lookup([]string{"list"}, fakeQuery{}, routepath.NewRegistry()); !ok {
		t.Fatal("expected match with optional param absent")
	}
}
