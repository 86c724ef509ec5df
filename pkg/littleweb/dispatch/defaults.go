package dispatch

import (
	"fmt"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

func defaultNotFoundHandler(req *wire.Request, err error) *wire.Response {
	resp := wire.NewResponse()
	resp.Status = 404
	resp.Body = wire.BytesBody{Data: []byte("not found"), ContentType: "text/plain"}
	return resp
}

func defaultInternalErrorHandler(req *wire.Request, err error) *wire.Response {
	resp := wire.NewResponse()
	resp.Status = 500
	msg := "internal server error"
	if werr, ok := err.(*wire.Error); ok {
		msg = fmt.Sprintf("internal server error: %s (%s:%d)", werr.Kind, werr.File, werr.Line)
	}
	resp.Body = wire.BytesBody{Data: []byte(msg), ContentType: "text/plain"}
	return resp
}
