package wire

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SameSite is the SameSite cookie attribute.
type SameSite int

const (
	SameSiteDefault SameSite = iota
	SameSiteStrict
	SameSiteLax
	SameSiteNone
)

// Cookie is a parsed Set-Cookie/Cookie attribute set.
//
// Unlike net/http's permissive parser, ParseSetCookie rejects any unknown
// attribute name outright rather than silently ignoring it: any unknown
// attribute aborts parsing and the cookie is rejected.
type Cookie struct {
	Name      string
	Value     string
	Comment   string
	Expires   time.Time
	MaxAge    int
	HasMaxAge bool
	Domain    string
	Path      string
	SameSite  SameSite
	Version   int
	Secure    bool
	HTTPOnly  bool
}

// cookieExpiresLayout is the dashed cookie date format String emits for
// Expires. ParseSetCookie also accepts time.RFC1123 dates.
const cookieExpiresLayout = "Mon, 02-Jan-2006 15:04:05 MST"

// ParseSetCookie parses a single Set-Cookie header value into a Cookie.
// Returns an error (and no cookie) if the name/value pair is malformed or
// any attribute name is unrecognized.
func ParseSetCookie(raw string) (*Cookie, error) {
	parts := strings.Split(raw, ";")
	if len(parts) == 0 {
		return nil, BadRequest(fmt.Errorf("empty cookie"))
	}

	nameValue := strings.TrimSpace(parts[0])
	eq := strings.IndexByte(nameValue, '=')
	if eq < 0 {
		return nil, BadRequest(fmt.Errorf("cookie missing '=': %q", raw))
	}
	c := &Cookie{
		Name:  strings.TrimSpace(nameValue[:eq]),
		Value: strings.TrimSpace(nameValue[eq+1:]),
	}

	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		if attr == "" {
			continue
		}
		key, value, _ := strings.Cut(attr, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch strings.ToLower(key) {
		case "comment":
			c.Comment = value
		case "expires":
			t, err := time.Parse(cookieExpiresLayout, value)
			if err != nil {
				t, err = time.Parse(time.RFC1123, value)
			}
			if err != nil {
				return nil, BadRequest(fmt.Errorf("invalid Expires: %q", value))
			}
			c.Expires = t
		case "max-age":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, BadRequest(fmt.Errorf("invalid Max-Age: %q", value))
			}
			c.MaxAge = n
			c.HasMaxAge = true
		case "domain":
			c.Domain = value
		case "path":
			c.Path = value
		case "samesite":
			switch strings.ToLower(value) {
			case "strict":
				c.SameSite = SameSiteStrict
			case "lax":
				c.SameSite = SameSiteLax
			case "none":
				c.SameSite = SameSiteNone
			default:
				return nil, BadRequest(fmt.Errorf("invalid SameSite: %q", value))
			}
		case "version":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, BadRequest(fmt.Errorf("invalid Version: %q", value))
			}
			c.Version = n
		case "secure":
			c.Secure = true
		case "httponly":
			c.HTTPOnly = true
		default:
			return nil, BadRequest(fmt.Errorf("unknown cookie attribute: %q", key))
		}
	}

	// "Setting SameSite=None forces Secure."
	if c.SameSite == SameSiteNone {
		c.Secure = true
	}

	return c, nil
}

// String renders c as a Set-Cookie header value.
func (c *Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(cookieExpiresLayout))
	}
	if c.HasMaxAge {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	}
	switch c.SameSite {
	case SameSiteStrict:
		b.WriteString("; SameSite=Strict")
	case SameSiteLax:
		b.WriteString("; SameSite=Lax")
	case SameSiteNone:
		b.WriteString("; SameSite=None")
	}
	if c.Version != 0 {
		b.WriteString("; Version=")
		b.WriteString(strconv.Itoa(c.Version))
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	return b.String()
}

// ParseCookieHeader parses a request's Cookie header value ("a=b; c=d")
// into name/value pairs, preserving duplicate names in order since a
// session lookup may see multiple concurrent session-ID candidates.
func ParseCookieHeader(raw string) []Cookie {
	var out []Cookie
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		out = append(out, Cookie{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return out
}
