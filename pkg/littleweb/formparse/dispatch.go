package formparse

import (
	"fmt"
	"mime"
	"strconv"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// ApplyBody inspects the request's Content-Type and, when it names a form
// encoding, fully consumes req.Body into req.Query/req.Uploads. For any other Content-Type, req.Body is
// left untouched for the handler to read as a raw stream (case 3). tempDir
// is where multipart file parts are spooled.
func ApplyBody(req *wire.Request, tempDir string) error {
	contentType := req.Header.Get(wire.HeaderContentType)
	if contentType == "" {
		return nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}

	switch {
	case mediaType == "application/x-www-form-urlencoded":
		hasCL := req.Header.Has(wire.HeaderContentLength)
		var cl int64
		if hasCL {
			cl, err = strconv.ParseInt(req.Header.Get(wire.HeaderContentLength), 10, 64)
			if err != nil {
				return wire.BadRequest(fmt.Errorf("formparse: invalid Content-Length: %w", err))
			}
		}
		return ParseURLEncoded(req, req.Body, contentType, hasCL, cl)

	case mediaType == "multipart/form-data":
		_, params, _ := mime.ParseMediaType(contentType)
		boundary := params["boundary"]
		if boundary == "" {
			return wire.BadRequest(fmt.Errorf("formparse: multipart body missing boundary"))
		}
		return ParseMultipart(req, req.Body, boundary, tempDir)
	}

	return nil
}
