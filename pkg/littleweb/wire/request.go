package wire

import (
	"io"
	"strings"
	"sync"
)

// QueryItem is a single name/value pair from the URL query string or a
// decoded form body.
type QueryItem struct {
	Name  string
	Value string
}

// UploadedFile is a reference to a spooled multipart file part.
// The spool file at Path is created before the handler runs and must be
// removed when the request completes, success or error.
type UploadedFile struct {
	FieldName   string
	Filename    string
	ContentType string
	Path        string
	Size        int64
}

// Request is the parsed representation of an HTTP request. It is immutable from the handler's perspective except for
// Identities and PropertyTransformations, which the dispatcher populates
// while routing.
type Request struct {
	Scheme      string
	Method      string
	ContextPath string // percent-decoded
	RawQuery    string
	ProtoMajor  int
	ProtoMinor  int
	Header      *Header
	Query       []QueryItem
	Uploads     []*UploadedFile
	Body        io.Reader

	// Close reports whether the client (or an HTTP/1.0 request with no
	// keep-alive) asked for the connection to close after this response.
	Close bool

	// Identities holds named path captures, keyed by capture name; values
	// are the raw matched text or a transformer's typed result.
	Identities map[string]any

	// PropertyTransformations holds named, transformed query/form
	// parameters captured by route param clauses.
	PropertyTransformations map[string]any

	// remoteAddr is informational; set by the connection layer.
	RemoteAddr string

	sessionOnce sync.Once
	sessionFn   func() any
	sessionVal  any
}

// SetSessionResolver installs the thunk Session calls on first access. The
// wire package has no notion of a session store; it only provides the
// lazy-resolution slot a host's composition layer fills in, so wire never
// has to depend on the session package.
func (r *Request) SetSessionResolver(fn func() any) {
	r.sessionFn = fn
}

// Session returns the request's session, resolving it via the installed
// resolver on first call and caching the result.
// Returns nil if no resolver was installed.
func (r *Request) Session() any {
	if r.sessionFn == nil {
		return nil
	}
	r.sessionOnce.Do(func() {
		r.sessionVal = r.sessionFn()
	})
	return r.sessionVal
}

// NewRequest returns a zero Request with its maps initialized.
func NewRequest() *Request {
	return &Request{
		Identities:              make(map[string]any),
		PropertyTransformations: make(map[string]any),
	}
}

// QueryValue returns the first value of the named query item, or "" if
// absent.
func (r *Request) QueryValue(name string) string {
	for _, item := range r.Query {
		if item.Name == name {
			return item.Value
		}
	}
	return ""
}

// QueryValues returns every value recorded under name, in encounter order.
func (r *Request) QueryValues(name string) []string {
	var out []string
	for _, item := range r.Query {
		if item.Name == name {
			out = append(out, item.Value)
		}
	}
	return out
}

// BodyQuery reconstructs form-encoded bytes from Query, substituting spaces
// with '+', for re-serialization.
func (r *Request) BodyQuery() string {
	var b strings.Builder
	for i, item := range r.Query {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeFormComponent(item.Name))
		b.WriteByte('=')
		b.WriteString(encodeFormComponent(item.Value))
	}
	return b.String()
}

func encodeFormComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case isUnreservedFormByte(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			const hex = "0123456789ABCDEF"
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0xf])
		}
	}
	return b.String()
}

func isUnreservedFormByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.':
		return true
	}
	return false
}

// HostOnly returns the host portion of a Host header value, with any
// ":port" suffix stripped.
func HostOnly(hostHeader string) string {
	if idx := strings.LastIndexByte(hostHeader, ':'); idx >= 0 {
		// Guard against IPv6 literals like "[::1]:8080": only strip the
		// port if the colon comes after a closing bracket or there is no
		// bracket at all.
		if b := strings.LastIndexByte(hostHeader, ']'); b < 0 || idx > b {
			return hostHeader[:idx]
		}
	}
	return hostHeader
}
