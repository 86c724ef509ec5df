//go:build prometheus

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus implements Metrics with counters and gauges registered against
// reg, mirroring the build-tag-gated instrumentation file pattern in
// shockwave/pkg/shockwave/buffer_pool_prometheus.go. Only built when
// compiling with -tags prometheus; the default build stays dependency-free
// via NoOp.
type Prometheus struct {
	connectionsAccepted prometheus.Counter
	connectionsActive   prometheus.Gauge
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	queueDepth          *prometheus.GaugeVec
}

// NewPrometheus registers littleweb's metrics on reg and returns a Metrics
// implementation backed by them.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		connectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "littleweb",
			Name:      "connections_accepted_total",
			Help:      "Total connections accepted across all listeners.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "littleweb",
			Name:      "connections_active",
			Help:      "Connections currently being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "littleweb",
			Name:      "requests_total",
			Help:      "Requests handled, by status code.",
		}, []string{"status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "littleweb",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency in seconds, by status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "littleweb",
			Name:      "worker_queue_depth",
			Help:      "Current admitted work per worker queue.",
		}, []string{"queue"}),
	}
	reg.MustRegister(p.connectionsAccepted, p.connectionsActive, p.requestsTotal, p.requestDuration, p.queueDepth)
	return p
}

func (p *Prometheus) ConnectionAccepted() {
	p.connectionsAccepted.Inc()
	p.connectionsActive.Inc()
}

func (p *Prometheus) ConnectionClosed() {
	p.connectionsActive.Dec()
}

func (p *Prometheus) RequestHandled(status int, duration float64) {
	label := prometheus.Labels{"status": statusLabel(status)}
	p.requestsTotal.With(label).Inc()
	p.requestDuration.With(label).Observe(duration)
}

func (p *Prometheus) QueueDepth(queue string, depth int) {
	p.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

func statusLabel(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "other"
	}
}
