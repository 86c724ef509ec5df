// Package metrics defines observability hooks for connections, requests,
// and queue depth. The workerpool and dispatch packages do not call into
// it. The default build is a no-op; building with
// the "prometheus" tag swaps in counters/gauges backed by
// prometheus/client_golang, following the same pattern as
// shockwave/pkg/shockwave/buffer_pool_prometheus.go: an optional
// instrumentation file gated by a build tag.
package metrics

// Metrics receives server-lifecycle observations. Implementations must be
// safe for concurrent use.
type Metrics interface {
	ConnectionAccepted()
	ConnectionClosed()
	RequestHandled(status int, duration float64)
	QueueDepth(queue string, depth int)
}

// NoOp implements Metrics with empty methods; it is the default when the
// host doesn't configure one.
type NoOp struct{}

func (NoOp) ConnectionAccepted()                      {}
func (NoOp) ConnectionClosed()                         {}
func (NoOp) RequestHandled(status int, duration float64) {}
func (NoOp) QueueDepth(queue string, depth int)        {}

// Default is the package-level Metrics used when nothing else is wired in.
var Default Metrics = NoOp{}
