package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and several consoles in one
// process never collide on the default one. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	remoteCalls   *prometheus.CounterVec
	remoteLatency *prometheus.HistogramVec
	sessionsEnded *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		remoteCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "positions_console",
			Name:      "remote_calls_total",
			Help:      "Total number of calls to the remote API by operation and result.",
		}, []string{"op", "result"}),
		remoteLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "positions_console",
			Name:      "remote_call_duration_seconds",
			Help:      "Latency distribution of calls to the remote API.",
			Buckets: []float64{
				0.005, 0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10, 30,
			},
		}, []string{"op"}),
		sessionsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "positions_console",
			Name:      "sessions_ended_total",
			Help:      "Total number of ended sessions by reason.",
		}, []string{"reason"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "positions_console",
			Name:      "http_requests_total",
			Help:      "Total number of requests served by the web console.",
		}, []string{"method", "status"}),
	}
}

// ObserveRemoteCall records one remote call. result is "ok" or an error kind.
func (m *Metrics) ObserveRemoteCall(op string, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(op, result).Inc()
	m.remoteLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) SessionEnded(reason string) {
	if m == nil {
		return
	}
	m.sessionsEnded.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
