// Package metrics holds the gateway's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var processStartedAt = time.Now().UTC()

// Login outcomes.
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginDenied      = "denied_domain"
	LoginRateLimited = "rate_limited"
)

// Export results.
const (
	ExportCacheHit = "hit"
	ExportFetched  = "fetched"
	ExportDenied   = "denied"
	ExportError    = "error"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	loginAttempts  *prometheus.CounterVec
	exports        *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	networkDenied  prometheus.Counter
}

// New registers the gateway collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "maintex_gateway_uptime_seconds",
		Help: "Process uptime in seconds.",
	}, func() float64 {
		return time.Since(processStartedAt).Seconds()
	}))

	m := &Metrics{
		registry: reg,
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maintex_gateway_login_attempts_total",
			Help: "Login attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maintex_gateway_schedule_exports_total",
			Help: "Schedule export requests by source and result.",
		}, []string{"source", "result"}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maintex_gateway_schedule_upstream_seconds",
			Help:    "Upstream schedule export latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"source"}),
		networkDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maintex_gateway_network_denied_total",
			Help: "Requests rejected by the network allow-list.",
		}),
	}
	reg.MustRegister(m.loginAttempts, m.exports, m.exportDuration, m.networkDenied)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) LoginAttempt(method, outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) Export(source, result string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(source, result).Inc()
}

func (m *Metrics) ObserveUpstream(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.exportDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) NetworkDenied() {
	if m == nil {
		return
	}
	m.networkDenied.Inc()
}
