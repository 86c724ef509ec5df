package wire

import "strings"

// ParseURLQuery splits a raw URL query string on '&', then on the first
// '=', percent-decoding each side and turning '+' into ' ' in values. The
// result is the same QueryItem shape produced from a form-encoded body, so
// a param clause sees identical values whichever source they came from.
func ParseURLQuery(raw string) []QueryItem {
	if raw == "" {
		return nil
	}
	var out []QueryItem
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		out = append(out, QueryItem{
			Name:  percentDecodeFormBestEffort(name, false),
			Value: percentDecodeFormBestEffort(value, true),
		})
	}
	return out
}

// percentDecodeFormBestEffort decodes %XX escapes and, when plusAsSpace is
// true, turns '+' into ' '; malformed escapes are left verbatim rather than
// failing the whole request, since a bad query string should not prevent
// routing on the path alone.
func percentDecodeFormBestEffort(s string, plusAsSpace bool) string {
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
			if i+2 < len(s) {
				if hi, ok1 := hexVal(s[i+1]); ok1 {
					if lo, ok2 := hexVal(s[i+2]); ok2 {
						b.WriteByte(byte(hi<<4 | lo))
						i += 2
						continue
					}
				}
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
