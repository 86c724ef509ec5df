package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var errMissingContentLength = errors.New("wire: request method requires Content-Length or chunked encoding")

func errInvalidContentLength(cl string) error {
	return fmt.Errorf("wire: invalid Content-Length %q", cl)
}

// SetupBody decides how the request body is framed and assigns req.Body
// accordingly:
//
//  1. Transfer-Encoding: chunked present -> chunked decoding, ignoring any
//     Content-Length on the same message (smuggling prevention).
//  2. Content-Length present and valid -> an io.LimitReader over exactly
//     that many bytes.
//  3. Otherwise, if the method is not customarily bodyless -> LengthRequired.
//  4. Otherwise -> an EmptyBody-equivalent empty reader.
func SetupBody(req *Request, br *bufio.Reader) error {
	if transferEncodingIsChunked(req.Header.Get(HeaderTransferEncoding)) {
		req.Body = NewChunkedReader(br)
		return nil
	}

	if cl := req.Header.Get(HeaderContentLength); cl != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			return BadRequest(errInvalidContentLength(cl))
		}
		req.Body = io.LimitReader(br, n)
		return nil
	}

	if IsCustomarilyBodyless(req.Method) {
		req.Body = io.LimitReader(br, 0)
		return nil
	}

	return LengthRequired(errMissingContentLength)
}

// transferEncodingIsChunked reports whether te names "chunked" among its
// comma-separated tokens. A "*" token never counts as chunked on its own;
// an unrecognized or wildcard encoding falls through to length-delimited
// or bodyless framing rather than failing the request.
func transferEncodingIsChunked(te string) bool {
	for _, tok := range strings.Split(te, ",") {
		if strings.EqualFold(strings.TrimSpace(tok), valueChunked) {
			return true
		}
	}
	return false
}
