package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

type seekCloser struct {
	*bytes.Reader
}

func (seekCloser) Close() error { return nil }

func newReq(method string) *Request {
	req := NewRequest()
	req.Method = method
	req.ProtoMajor = 1
	req.ProtoMinor = 1
	return req
}

func TestWriteResponseBytesBody(t *testing.T) {
	req := newReq(MethodGET)
	resp := NewResponse()
	resp.Body = BytesBody{Data: []byte("hello"), ContentType: "text/plain"}

	var buf bytes.Buffer
	if err := WriteResponse(&buf, req, resp); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("status line wrong: %q", out)
	}
	if !strings.Contains(out, "Content-Length: 5\r\n") {
		t.Errorf("expected Content-Length: 5, got %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\nhello") {
		t.Errorf("expected body \"hello\" after headers, got %q", out)
	}
}

func TestWriteResponseHeadSuppressesBody(t *testing.T) {
	req := newReq(MethodHEAD)
	resp := NewResponse()
	resp.Body = BytesBody{Data: []byte("hello"), ContentType: "text/plain"}

	var buf bytes.Buffer
	if err := WriteResponse(&buf, req, resp); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "hello") {
		t.Errorf("HEAD response must not include body, got %q", out)
	}
	if !strings.Contains(out, "Content-Length: 5\r\n") {
		t.Errorf("HEAD response must still report Content-Length, got %q", out)
	}
}

func TestWriteResponseEmptyBody(t *testing.T) {
	req := newReq(MethodGET)
	resp := NewResponse()

	var buf bytes.Buffer
	if err := WriteResponse(&buf, req, resp); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Content-Length: 0\r\n") {
		t.Errorf("expected Content-Length: 0, got %q", buf.String())
	}
}

func TestWriteResponseFileBodyFullRange(t *testing.T) {
	data := []byte("0123456789")
	req := newReq(MethodGET)
	resp := NewResponse()
	resp.Body = FileBody{
		Open: func() (io.ReadSeekCloser, error) {
			return seekCloser{bytes.NewReader(data)}, nil
		},
		Size:        int64(len(data)),
		ContentType: "application/octet-stream",
	}

	var buf bytes.Buffer
	if err := WriteResponse(&buf, req, resp); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Content-Length: 10\r\n") {
		t.Errorf("expected Content-Length: 10, got %q", out)
	}
	if !strings.HasSuffix(out, "0123456789") {
		t.Errorf("expected full file body, got %q", out)
	}
}

func TestWriteResponseFileBodyRange(t *testing.T) {
	data := []byte("0123456789")
	req := newReq(MethodGET)
	resp := NewResponse()
	resp.Body = FileBody{
		Open: func() (io.ReadSeekCloser, error) {
			return seekCloser{bytes.NewReader(data)}, nil
		},
		Size:        int64(len(data)),
		ContentType: "application/octet-stream",
		Range:       &ByteRange{Low: 2, High: 5},
	}

	var buf bytes.Buffer
	if err := WriteResponse(&buf, req, resp); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 206 Partial Content\r\n") {
		t.Fatalf("expected 206 status, got %q", out)
	}
	if !strings.Contains(out, "Content-Range: bytes 2-5/10\r\n") {
		t.Errorf("expected Content-Range header, got %q", out)
	}
	if !strings.HasSuffix(out, "2345") {
		t.Errorf("expected ranged body \"2345\", got %q", out)
	}
}

func TestWriteResponseChunkedBody(t *testing.T) {
	req := newReq(MethodGET)
	resp := NewResponse()
	resp.Body = ChunkedBody{Source: strings.NewReader("streamed"), ContentType: "text/plain"}

	var buf bytes.Buffer
	if err := WriteResponse(&buf, req, resp); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Transfer-Encoding: chunked\r\n") {
		t.Errorf("expected Transfer-Encoding: chunked, got %q", out)
	}
	if strings.Contains(out, "Content-Length") {
		t.Errorf("chunked response must not set Content-Length, got %q", out)
	}
	if !strings.HasSuffix(out, "0\r\n\r\n") {
		t.Errorf("expected terminating chunk, got %q", out)
	}
}

func TestWriteResponseSetsDefaultDateAndServer(t *testing.T) {
	req := newReq(MethodGET)
	resp := NewResponse()

	var buf bytes.Buffer
	if err := WriteResponse(&buf, req, resp); err != nil {
		t.Fatalf("WriteResponse failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Date: ") {
		t.Errorf("expected a default Date header, got %q", out)
	}
	if !strings.Contains(out, "Server: littleweb\r\n") {
		t.Errorf("expected a default Server header, got %q", out)
	}
}
