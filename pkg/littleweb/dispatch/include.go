package dispatch

import (
	"fmt"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// maxIncludeDepth bounds recursive include(path, query) resolution so a
// handler that (accidentally or not) includes its own path can't recurse
// forever.
const maxIncludeDepth = 8

// resolveIncludes rewrites any TextBody chunk carrying an IncludeRef into a
// literal chunk, re-entering the dispatcher with a synthetic GET request
// that inherits req's headers and session. It returns an error if an
// included body is itself a file or custom-callback body, which cannot be
// concatenated into the outer text body.
func resolveIncludes(router *HostRouter, req *wire.Request, resp *wire.Response) error {
	return resolveIncludesDepth(router, req, resp, 0)
}

func resolveIncludesDepth(router *HostRouter, req *wire.Request, resp *wire.Response, depth int) error {
	tb, ok := resp.Body.(wire.TextBody)
	if !ok {
		return nil
	}
	hasInclude := false
	for _, c := range tb.Chunks {
		if c.Include != nil {
			hasInclude = true
			break
		}
	}
	if !hasInclude {
		return nil
	}
	if depth >= maxIncludeDepth {
		return fmt.Errorf("dispatch: include() nesting exceeds %d levels", maxIncludeDepth)
	}

	chunks := make([]wire.TextChunk, 0, len(tb.Chunks))
	for _, c := range tb.Chunks {
		if c.Include == nil {
			chunks = append(chunks, c)
			continue
		}
		literal, err := renderInclude(router, req, c.Include, depth)
		if err != nil {
			return err
		}
		chunks = append(chunks, wire.TextChunk{Literal: literal})
	}
	resp.Body = wire.TextBody{Chunks: chunks, ContentType: tb.ContentType}
	return nil
}

// renderInclude builds a synthetic GET sub-request for ref, dispatches it,
// and returns its body as literal text.
func renderInclude(router *HostRouter, parent *wire.Request, ref *wire.IncludeRef, depth int) (string, error) {
	sub := wire.NewRequest()
	sub.Scheme = parent.Scheme
	sub.Method = wire.MethodGET
	sub.ContextPath = ref.Path
	sub.ProtoMajor, sub.ProtoMinor = parent.ProtoMajor, parent.ProtoMinor
	sub.Header = parent.Header
	sub.Query = ref.Query
	sub.Body = nil
	sub.RemoteAddr = parent.RemoteAddr
	sub.SetSessionResolver(parent.Session)

	resp := Dispatch(router, sub)
	if err := resolveIncludesDepth(router, sub, resp, depth+1); err != nil {
		return "", err
	}

	switch b := resp.Body.(type) {
	case wire.EmptyBody:
		return "", nil
	case wire.BytesBody:
		return string(b.Data), nil
	case wire.TextBody:
		var out string
		for _, c := range b.Chunks {
			out += c.Literal
		}
		return out, nil
	default:
		return "", fmt.Errorf("dispatch: include(%q) body is not text/bytes", ref.Path)
	}
}
