package middleware

import (
	"io"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/yourusername/littleweb/pkg/littleweb/wire"
)

// accessLogLine is the structured record one AccessLog invocation emits.
type accessLogLine struct {
	Time     string `json:"time"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	RemoteIP string `json:"remote_ip,omitempty"`
}

// AccessLog returns a global Filter that writes one JSON line per request to
// w before the route handler runs, encoded with goccy/go-json for the same
// low-allocation marshaling the pack reaches for elsewhere. It always
// returns Continue; it never influences routing.
func AccessLog(w io.Writer) Filter {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(req *wire.Request) Outcome {
		mu.Lock()
		enc.Encode(accessLogLine{
			Time:     time.Now().UTC().Format(time.RFC3339),
			Method:   req.Method,
			Path:     req.ContextPath,
			RemoteIP: req.RemoteAddr,
		})
		mu.Unlock()
		return Continue()
	}
}
