// Package metrics exposes Prometheus counters for the sign-in flow and the
// upstream aggregations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services report to. Nop satisfies it for tests and tools.
type Recorder interface {
	RecordFlowStep(step, outcome string)
	RecordUpstreamItems(resource string, count int)
	RecordUpstreamError(kind string)
	RecordAggregation(resource string, duration time.Duration)
}

type Collector struct {
	flowSteps      *prometheus.CounterVec
	upstreamItems  *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	aggregation    *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		flowSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_oauth_flow_total",
			Help: "OAuth2 flow steps by outcome.",
		}, []string{"step", "outcome"}),
		upstreamItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_upstream_items_total",
			Help: "Items returned to callers per resource.",
		}, []string{"resource"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mirror_upstream_errors_total",
			Help: "Failed upstream aggregations by error kind.",
		}, []string{"kind"}),
		aggregation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mirror_aggregation_seconds",
			Help:    "Time spent aggregating a resource for one user.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
	}

	reg.MustRegister(c.flowSteps, c.upstreamItems, c.upstreamErrors, c.aggregation)
	return c
}

func (c *Collector) RecordFlowStep(step, outcome string) {
	c.flowSteps.WithLabelValues(step, outcome).Inc()
}

func (c *Collector) RecordUpstreamItems(resource string, count int) {
	c.upstreamItems.WithLabelValues(resource).Add(float64(count))
}

func (c *Collector) RecordUpstreamError(kind string) {
	c.upstreamErrors.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordAggregation(resource string, duration time.Duration) {
	c.aggregation.WithLabelValues(resource).Observe(duration.Seconds())
}

// Handler serves the gatherer's metrics for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordFlowStep(string, string) {}
func (Nop) RecordUpstreamItems(string, int) {}
func (Nop) RecordUpstreamError(string) {}
func (Nop) RecordAggregation(string, time.Duration) {}
