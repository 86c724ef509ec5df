// Command helloserver is a minimal embedding of littleweb, demonstrating a
// static route, a path capture with a built-in transformer, and a
// form-encoded POST.
package main

import (
	"fmt"
	"log"
	"net"

	"github.com/yourusername/littleweb/pkg/littleweb"
	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

func main() {
	controller := littleweb.NewController()

	mustHandle(controller, wire.MethodGET, "/echo", func(req *wire.Request) (*wire.Response, error) {
		resp := wire.NewResponse()
		resp.Body = wire.BytesBody{Data: []byte("hello"), ContentType: "text/plain"}
		return resp, nil
	})

	mustHandle(controller, wire.MethodGET, `/items/:id{^[0-9]+$<Int64>}`, func(req *wire.Request) (*wire.Response, error) {
		id := req.Identities["id"]
		resp := wire.NewResponse()
		resp.Body = wire.BytesBody{Data: []byte(fmt.Sprintf("%d", id)), ContentType: "text/plain"}
		return resp, nil
	})

	mustHandle(controller, wire.MethodPOST, "/submit", func(req *wire.Request) (*wire.Response, error) {
		resp := wire.NewResponse()
		resp.Body = wire.BytesBody{
			Data:        []byte(fmt.Sprintf("name=%s;age=%s", req.QueryValue("name"), req.QueryValue("age"))),
			ContentType: "text/plain",
		}
		return resp, nil
	})

	router := littleweb.NewHostRouter()
	router.Default(controller)

	server := littleweb.NewServer(littleweb.DefaultConfig(), router)

	ln, err := net.Listen("tcp", ":8080")
	if err != nil {
		log.Fatal(err)
	}
	log.Println("listening on :8080")
	log.Println(`try: curl localhost:8080/echo`)
	log.Println(`try: curl localhost:8080/items/42`)
	log.Println(`try: curl -d name=ada -d age=36 localhost:8080/submit`)
	log.Fatal(server.Serve(ln))
}

func mustHandle(c *littleweb.RouteController, method, pattern string, h littleweb.RouteHandler) {
	if err := c.Handle(method, pattern, h); err != nil {
		log.Fatalf("register %s %s: %v", method, pattern, err)
	}
}
