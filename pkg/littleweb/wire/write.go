package wire

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"
)

// WriteResponse serializes resp to w as an HTTP/1.1 message, following req's
// method (HEAD suppresses the body). It does not close w or decide keep-alive; the caller's
// connection loop does that based on req.Close and resp.Header.
func WriteResponse(w io.Writer, req *Request, resp *Response) error {
	if resp.Header == nil {
		resp.Header = NewHeader()
	}

	body := resp.Body
	if body == nil {
		body = EmptyBody{}
	}

	if !resp.Header.Has(HeaderDate) {
		resp.Header.Set(HeaderDate, time.Now().UTC().Format(DateLayout))
	}
	if !resp.Header.Has(HeaderServer) {
		resp.Header.Set(HeaderServer, "littleweb")
	}

	switch b := body.(type) {
	case EmptyBody:
		resp.Header.Set(HeaderContentLength, "0")
	case BytesBody:
		if b.ContentType != "" && !resp.Header.Has(HeaderContentType) {
			resp.Header.Set(HeaderContentType, b.ContentType)
		}
		resp.Header.Set(HeaderContentLength, strconv.Itoa(len(b.Data)))
	case TextBody:
		if b.ContentType != "" && !resp.Header.Has(HeaderContentType) {
			resp.Header.Set(HeaderContentType, b.ContentType)
		}
		// Length is only knowable after includes are resolved; rendered into
		// a buffer below so Content-Length can still be set.
	case FileBody:
		if b.ContentType != "" && !resp.Header.Has(HeaderContentType) {
			resp.Header.Set(HeaderContentType, b.ContentType)
		}
		resp.Header.Set(HeaderAcceptRanges, "bytes")
		if b.Range != nil {
			resp.Status = 206
			length := b.Range.High - b.Range.Low + 1
			resp.Header.Set(HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", b.Range.Low, b.Range.High, b.Size))
			resp.Header.Set(HeaderContentLength, strconv.FormatInt(length, 10))
		} else if b.Size >= 0 {
			resp.Header.Set(HeaderContentLength, strconv.FormatInt(b.Size, 10))
		}
	case ChunkedBody:
		if b.ContentType != "" && !resp.Header.Has(HeaderContentType) {
			resp.Header.Set(HeaderContentType, b.ContentType)
		}
		resp.Header.Set(HeaderTransferEncoding, valueChunked)
		resp.Header.Del(HeaderContentLength)
	case CallbackBody:
		resp.Header.Del(HeaderContentLength)
	}

	// TextBody must be rendered before the header line is written, since its
	// Content-Length depends on resolving includes.
	var rendered []byte
	if tb, ok := body.(TextBody); ok {
		buf, err := renderTextBody(tb)
		if err != nil {
			return err
		}
		rendered = buf
		resp.Header.Set(HeaderContentLength, strconv.Itoa(len(rendered)))
	}

	if err := writeStatusLine(w, req, resp); err != nil {
		return ClientError(err)
	}
	if err := resp.Header.WriteSorted(w); err != nil {
		return ClientError(err)
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return ClientError(err)
	}

	suppressBody := req.Method == MethodHEAD
	if suppressBody {
		return nil
	}

	switch b := body.(type) {
	case EmptyBody:
		return nil
	case BytesBody:
		_, err := w.Write(b.Data)
		return wrapWriteErr(err)
	case TextBody:
		_, err := w.Write(rendered)
		return wrapWriteErr(err)
	case FileBody:
		return writeFileBody(w, b)
	case ChunkedBody:
		return writeChunkedBody(w, b)
	case CallbackBody:
		return wrapWriteErr(b.Write(nil, w))
	default:
		return nil
	}
}

func writeStatusLine(w io.Writer, req *Request, resp *Response) error {
	_, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", resp.Status, resp.ReasonOrDefault())
	return err
}

func wrapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	return ClientError(err)
}

// renderTextBody concatenates literal chunks; include() sub-requests are the
// dispatcher's responsibility to resolve before the chunk reaches the wire
// package (the wire layer has no notion of routing). A chunk still carrying
// a non-nil Include at this point is rendered as an empty string.
func renderTextBody(tb TextBody) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, chunk := range tb.Chunks {
		if chunk.Include != nil {
			continue
		}
		buf.WriteString(chunk.Literal)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func writeFileBody(w io.Writer, b FileBody) error {
	f, err := b.Open()
	if err != nil {
		return InternalError(err)
	}
	defer f.Close()

	var r io.Reader = f
	if b.Range != nil {
		if _, err := f.Seek(b.Range.Low, io.SeekStart); err != nil {
			return InternalError(err)
		}
		r = io.LimitReader(f, b.Range.High-b.Range.Low+1)
	}

	bufSize := DefaultFileStreamBufferSize
	if b.Limiter != nil {
		bufSize = b.Limiter.BufferSize()
	}
	buf := make([]byte, bufSize)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return ClientError(werr)
			}
			if b.Limiter != nil {
				b.Limiter.Wait()
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return InternalError(rerr)
		}
	}
}

func writeChunkedBody(w io.Writer, b ChunkedBody) error {
	cw := NewChunkedWriter(w)
	buf := make([]byte, DefaultFileStreamBufferSize)
	for {
		n, rerr := b.Source.Read(buf)
		if n > 0 {
			if _, werr := cw.Write(buf[:n]); werr != nil {
				return ClientError(werr)
			}
		}
		if rerr == io.EOF {
			return wrapWriteErr(cw.Close())
		}
		if rerr != nil {
			return InternalError(rerr)
		}
	}
}
