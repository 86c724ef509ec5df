// Package formparse implements the two request-body decoders the wire codec
// hands off to when Content-Type identifies a form body: application/x-www-form-urlencoded and
// multipart/form-data.
package formparse

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// ParseURLEncoded reads an application/x-www-form-urlencoded body from r and
// appends its name/value pairs to the request's query items. contentType is the full Content-Type header value, used to
// recover a non-default charset; hasContentLength/contentLength mirror the
// request's framing so an unbounded body is still capped.
func ParseURLEncoded(req *wire.Request, r io.Reader, contentType string, hasContentLength bool, contentLength int64) error {
	limit := int64(wire.MaxURLEncodedBodySize)
	if hasContentLength {
		if contentLength > limit {
			return wire.EntityTooLarge(fmt.Errorf("formparse: form body %d bytes exceeds %d byte cap", contentLength, limit))
		}
		limit = contentLength
	}

	lr := io.LimitReader(r, limit+1)
	raw, err := io.ReadAll(lr)
	if err != nil {
		return wire.BadRequest(fmt.Errorf("formparse: reading urlencoded body: %w", err))
	}
	if int64(len(raw)) > limit {
		return wire.EntityTooLarge(fmt.Errorf("formparse: form body exceeds %d byte cap", limit))
	}

	decoded, err := decodeCharset(raw, contentType)
	if err != nil {
		return wire.BadRequest(fmt.Errorf("formparse: decoding charset: %w", err))
	}

	items, err := splitFormPairs(decoded)
	if err != nil {
		return err
	}
	req.Query = append(req.Query, items...)
	return nil
}

// splitFormPairs splits on '&', then on the first '=', percent-decodes each
// side, and converts '+' to space in values.
func splitFormPairs(body string) ([]wire.QueryItem, error) {
	if body == "" {
		return nil, nil
	}
	var out []wire.QueryItem
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		decName, err := percentDecodeForm(name, false)
		if err != nil {
			return nil, wire.BadRequest(fmt.Errorf("formparse: invalid name encoding: %w", err))
		}
		decValue, err := percentDecodeForm(value, true)
		if err != nil {
			return nil, wire.BadRequest(fmt.Errorf("formparse: invalid value encoding: %w", err))
		}
		out = append(out, wire.QueryItem{Name: decName, Value: decValue})
	}
	return out, nil
}

// percentDecodeForm decodes %XX escapes and, when plusAsSpace is true (form
// values only), turns '+' into ' '.
func percentDecodeForm(s string, plusAsSpace bool) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '+':
			if plusAsSpace {
				b.WriteByte(' ')
			} else {
				b.WriteByte('+')
			}
		case '%':
			if i+2 >= len(s) {
				return "", fmt.Errorf("truncated escape at offset %d", i)
			}
			hi, ok1 := hexVal(s[i+1])
			lo, ok2 := hexVal(s[i+2])
			if !ok1 || !ok2 {
				return "", fmt.Errorf("invalid escape %q", s[i:i+3])
			}
			b.WriteByte(byte(hi<<4 | lo))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

// decodeCharset converts raw bytes to UTF-8 using the charset named in
// contentType's "charset" parameter, defaulting to UTF-8 when absent or
// unrecognized.
func decodeCharset(raw []byte, contentType string) (string, error) {
	_, params, err := mime.ParseMediaType(contentType)
	charset := ""
	if err == nil {
		charset = strings.ToLower(params["charset"])
	}
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(raw), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		// Unknown charset name: fall back to treating the bytes as UTF-8
		// rather than failing the whole request.
		return string(raw), nil
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
