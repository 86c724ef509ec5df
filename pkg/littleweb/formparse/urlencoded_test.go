package formparse

import (
	"errors"
	"strings"
	"testing"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

func TestParseURLEncodedBasic(t *testing.T) {
	req := wire.NewRequest()
	r := strings.NewReader("name=ada&age=36")
	if err := ParseURLEncoded(req, r, "application/x-www-form-urlencoded", true, 15); err != nil {
		t.Fatalf("ParseURLEncoded failed: %v", err)
	}
	if got := req.QueryValue("name"); got != "ada" {
		t.Errorf("name = %q, want %q", got, "ada")
	}
	if got := req.QueryValue("age"); got != "36" {
		t.Errorf("age = %q, want %q", got, "36")
	}
}

func TestParseURLEncodedPlusIsSpace(t *testing.T) {
	req := wire.NewRequest()
	r := strings.NewReader("q=hello+world")
	if err := ParseURLEncoded(req, r, "application/x-www-form-urlencoded", true, 13); err != nil {
		t.Fatalf("ParseURLEncoded failed: %v", err)
	}
	if got := req.QueryValue("q"); got != "hello world" {
		t.Errorf("q = %q, want %q", got, "hello world")
	}
}

func TestParseURLEncodedAppendsToExistingQuery(t *testing.T) {
	req := wire.NewRequest()
	req.Query = []wire.QueryItem{{Name: "existing", Value: "1"}}
	r := strings.NewReader("name=ada")
	if err := ParseURLEncoded(req, r, "application/x-www-form-urlencoded", true, 8); err != nil {
		t.Fatalf("ParseURLEncoded failed: %v", err)
	}
	if len(req.Query) != 2 {
		t.Fatalf("Query = %+v, want 2 items", req.Query)
	}
}

func TestParseURLEncodedContentLengthExceedsCapRejected(t *testing.T) {
	req := wire.NewRequest()
	r := strings.NewReader("x=1")
	oversized := int64(wire.MaxURLEncodedBodySize) + 1
	err := ParseURLEncoded(req, r, "application/x-www-form-urlencoded", true, oversized)
	if err == nil {
		t.Fatal("expected EntityTooLarge error")
	}
	var werr *wire.Error
	if !errors.As(err, &werr) || werr.Kind != wire.KindEntityTooLarge {
		t.Errorf("error = %v, want KindEntityTooLarge", err)
	}
}

func TestParseURLEncodedUnboundedBodyCappedAtDefault(t *testing.T) {
	req := wire.NewRequest()
	oversized := strings.Repeat("a", wire.MaxURLEncodedBodySize+100)
	r := strings.NewReader("x=" + oversized)
	err := ParseURLEncoded(req, r, "application/x-www-form-urlencoded", false, 0)
	if err == nil {
		t.Fatal("expected EntityTooLarge error for unbounded oversized body")
	}
	var werr *wire.Error
	if !errors.As(err, &werr) || werr.Kind != wire.KindEntityTooLarge {
		t.Errorf("error = %v, want KindEntityTooLarge", err)
	}
}

func TestParseURLEncodedInvalidEscapeRejected(t *testing.T) {
	req := wire.NewRequest()
	r := strings.NewReader("name=100%")
	err := ParseURLEncoded(req, r, "application/x-www-form-urlencoded", true, 9)
	if err == nil {
		t.Fatal("expected BadRequest for truncated percent-escape")
	}
	var werr *wire.Error
	if !errors.As(err, &werr) || werr.Kind != wire.KindBadRequest {
		t.Errorf("error = %v, want KindBadRequest", err)
	}
}

func TestParseURLEncodedEmptyBody(t *testing.T) {
	req := wire.NewRequest()
	r := strings.NewReader("")
	if err := ParseURLEncoded(req, r, "application/x-www-form-urlencoded", true, 0); err != nil {
		t.Fatalf("ParseURLEncoded failed: %v", err)
	}
	if len(req.Query) != 0 {
		t.Errorf("Query = %+v, want empty", req.Query)
	}
}
