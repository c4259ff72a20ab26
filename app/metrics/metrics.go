package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a single source lookup
const (
	OutcomeOK         = "ok"
	OutcomeCached     = "cached"
	OutcomeEmpty      = "empty"
	OutcomeError      = "error"
	OutcomeTimeout    = "timeout"
	OutcomeMissingKey = "missing_key"
)

// Collector holds lookup and proxy metrics on a private registry.
// nil Collector is valid and records nothing.
type Collector struct {
	registry       *prometheus.Registry
	sourceResults  *prometheus.CounterVec
	sourceDuration *prometheus.HistogramVec
	proxyRequests  *prometheus.CounterVec
}

// ObserveSource records a single source lookup
func (c *Collector) ObserveSource(source string, outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.sourceResults.WithLabelValues(source, outcome).Inc()
	if outcome != OutcomeCached && outcome != OutcomeMissingKey {
		c.sourceDuration.WithLabelValues(source).Observe(took.Seconds())
	}
}

// ObserveProxy records a single proxy request
func (c *Collector) ObserveProxy(source string, outcome string) {
	if c == nil {
		return
	}
	c.proxyRequests.WithLabelValues(source, outcome).Inc()
}

// Registry returns registry holding all metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves metrics in Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// NewCollector creates Collector with Go runtime and process collectors
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sourceResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookup_source_results_total",
			Help: "Source lookups by outcome.",
		}, []string{"source", "outcome"}),
		sourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lookup_source_duration_seconds",
			Help:    "Upstream source fetch and extraction latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 3, 5, 10},
		}, []string{"source"}),
		proxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_requests_total",
			Help: "Proxied pages by outcome.",
		}, []string{"source", "outcome"}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.sourceResults,
		c.sourceDuration,
		c.proxyRequests,
	)
	return c
}
