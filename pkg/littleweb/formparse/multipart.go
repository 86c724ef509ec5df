package formparse

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// ParseMultipart runs the multipart/form-data state machine over r,
// appending form fields to req.Query and file parts to req.Uploads.
// Files are spooled to tempDir/<uuid>.
func ParseMultipart(req *wire.Request, r io.Reader, boundary, tempDir string) error {
	if len(boundary) < 2 {
		// Boundaries shorter than 2 bytes are rejected outright.
		return wire.BadRequest(fmt.Errorf("formparse: boundary %q shorter than 2 bytes", boundary))
	}

	br := bufio.NewReaderSize(r, 32*1024)
	delim := "--" + boundary

	// S0: expect a line equal to --BOUNDARY (an optional preamble before it
	// is discarded, mirroring the reference multipart reader's tolerance for
	// leading text outside any part).
	if err := scanToFirstBoundary(br, delim); err != nil {
		return wire.BadRequest(fmt.Errorf("formparse: %w: unable to find boundary", err))
	}

	for {
		done, err := readOnePart(req, br, delim, tempDir)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func scanToFirstBoundary(br *bufio.Reader, delim string) error {
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if len(line) > 0 && strings.TrimRight(line, "\r\n") == delim {
				return nil
			}
			return errUnableToFindBoundary
		}
		if strings.TrimRight(line, "\r\n") == delim {
			return nil
		}
	}
}

var errUnableToFindBoundary = fmt.Errorf("formparse: unable to find boundary")

// readOnePart executes states S1-S4 for a single part. done is true once the
// closing "--BOUNDARY--" terminator has been consumed.
func readOnePart(req *wire.Request, br *bufio.Reader, delim, tempDir string) (done bool, err error) {
	// S1: Content-Disposition line.
	disposition, err := br.ReadString('\n')
	if err != nil {
		return false, wire.BadRequest(fmt.Errorf("formparse: reading part header: %w", err))
	}
	name, filename, err := parseContentDisposition(disposition)
	if err != nil {
		return false, err
	}

	// S2: remaining headers up to a blank line, notably Content-Type.
	partContentType := ""
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return false, wire.BadRequest(fmt.Errorf("formparse: reading part headers: %w", err))
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		headerName, headerValue, ok := strings.Cut(trimmed, ":")
		if ok && strings.EqualFold(strings.TrimSpace(headerName), "Content-Type") {
			partContentType = strings.TrimSpace(headerValue)
		}
	}

	// S3 / S3': stream the part body until the next boundary line, using a
	// sliding window the size of the boundary delimiter so the CRLF
	// belonging to the boundary line is never mistaken for part data.
	var sink partSink
	if filename == "" {
		sink = &fieldSink{}
	} else {
		fs, err := newFileSink(tempDir)
		if err != nil {
			return false, wire.InternalError(err)
		}
		sink = fs
	}

	end, err := copyPartBody(br, sink, delim)
	if err != nil {
		sink.abort()
		return false, err
	}

	if filename == "" {
		req.Query = append(req.Query, wire.QueryItem{Name: name, Value: sink.(*fieldSink).value.String()})
	} else {
		fs := sink.(*fileSink)
		if err := fs.close(); err != nil {
			return false, wire.InternalError(err)
		}
		req.Uploads = append(req.Uploads, &wire.UploadedFile{
			FieldName:   name,
			Filename:    filename,
			ContentType: partContentType,
			Path:        fs.path,
			Size:        fs.size,
		})
	}

	return end == boundaryEnd, nil
}

// parseContentDisposition extracts name and filename (preferring filename*
// over filename) from a Content-Disposition: form-data; ... line.
func parseContentDisposition(line string) (name, filename string, err error) {
	_, params, perr := mime.ParseMediaType(strings.TrimSpace(line[strings.Index(line, ":")+1:]))
	if perr != nil {
		return "", "", wire.BadRequest(fmt.Errorf("formparse: invalid Content-Disposition: %w", perr))
	}
	name = params["name"]
	if name == "" {
		return "", "", wire.BadRequest(fmt.Errorf("formparse: Content-Disposition missing name"))
	}
	if v, ok := params["filename*"]; ok {
		filename = v
	} else {
		filename = params["filename"]
	}
	return name, filename, nil
}

type partSink interface {
	write(p []byte) error
	abort()
}

type fieldSink struct {
	value strings.Builder
}

func (s *fieldSink) write(p []byte) error {
	s.value.Write(p)
	return nil
}
func (s *fieldSink) abort() {}

type fileSink struct {
	f    *os.File
	path string
	size int64
}

func newFileSink(tempDir string) (*fileSink, error) {
	path := filepath.Join(tempDir, uuid.NewString())
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f, path: path}, nil
}

func (s *fileSink) write(p []byte) error {
	n, err := s.f.Write(p)
	s.size += int64(n)
	return err
}

func (s *fileSink) abort() {
	s.f.Close()
	os.Remove(s.path)
}

func (s *fileSink) close() error {
	return s.f.Close()
}

func removeSpoolFile(path string) {
	if path != "" {
		os.Remove(path)
	}
}

type boundaryOutcome int

const (
	boundaryContinue boundaryOutcome = iota
	boundaryEnd
)

// copyPartBody streams bytes into sink until it finds a line consisting of
// the boundary delimiter, optionally followed by "--" (the end terminator).
// It holds back one line at a time so that, once a boundary line is
// recognized, the CRLF trailing the held-back line (part of the boundary
// framing, not the data) can be dropped before the rest is flushed. This
// preserves file contents exactly.
func copyPartBody(br *bufio.Reader, sink partSink, delim string) (boundaryOutcome, error) {
	var pending []byte

	flushPending := func(dropTrailingCRLF bool) error {
		if len(pending) == 0 {
			return nil
		}
		out := pending
		if dropTrailingCRLF {
			out = bytes.TrimSuffix(out, []byte("\r\n"))
			out = bytes.TrimSuffix(out, []byte("\n"))
		}
		if len(out) == 0 {
			return nil
		}
		return sink.write(out)
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return 0, wire.BadRequest(fmt.Errorf("formparse: unexpected end of part: %w", err))
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == delim {
			if err := flushPending(true); err != nil {
				return 0, wire.InternalError(err)
			}
			return boundaryContinue, nil
		}
		if trimmed == delim+"--" {
			if err := flushPending(true); err != nil {
				return 0, wire.InternalError(err)
			}
			return boundaryEnd, nil
		}

		// Not a boundary line: the previously held line is confirmed as
		// data in full, and this line becomes the new pending line.
		if err := flushPending(false); err != nil {
			return 0, wire.InternalError(err)
		}
		pending = append([]byte(nil), line...)
	}
}
