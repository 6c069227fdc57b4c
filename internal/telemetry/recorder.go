// Package telemetry turns the client's metrics callback into Prometheus
// series. A Recorder owns its own registry so several instances can coexist
// in one process.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_model/go"
)

// Metric names emitted by the client and understood by Observe.
const (
	MetricRequestsTotal     = "coinbasepro_requests_total"
	MetricRequestDurationMS = "coinbasepro_request_duration_ms"
	MetricRateLimitWaitMS   = "coinbasepro_ratelimit_wait_ms"
)

// Recorder holds all Prometheus metrics for the client.
type Recorder struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimitWait   *prometheus.HistogramVec
	Dropped         prometheus.Counter
}

// NewRecorder creates a recorder with a private registry and all client
// metrics registered.
func NewRecorder() *Recorder {
	recorder := &Recorder{
		registry: prometheus.NewRegistry(),

		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRequestsTotal,
				Help: "Total number of dispatched requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRequestDurationMS,
				Help:    "Request round-trip duration in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"endpoint"},
		),

		RateLimitWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRateLimitWaitMS,
				Help:    "Time spent waiting for rate limit admission in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{"endpoint"},
		),

		Dropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coinbasepro_telemetry_dropped_total",
				Help: "Observations discarded because the metric name was not recognized",
			},
		),
	}

	recorder.registry.MustRegister(
		recorder.Requests,
		recorder.RequestDuration,
		recorder.RateLimitWait,
		recorder.Dropped,
	)

	return recorder
}

// Observe routes one client measurement into the matching series. Its
// signature matches the client's MetricsFunc, so a recorder wires in as
//
//	client := coinbasepro.NewBuilder().Metrics(recorder.Observe).Build()
//
// Observe is safe for concurrent use.
func (r *Recorder) Observe(metric string, value float64, tags map[string]string) {
	switch metric {
	case MetricRequestsTotal:
		r.Requests.WithLabelValues(tags["endpoint"], tags["status"]).Add(value)
	case MetricRequestDurationMS:
		r.RequestDuration.WithLabelValues(tags["endpoint"]).Observe(value)
	case MetricRateLimitWaitMS:
		r.RateLimitWait.WithLabelValues(tags["endpoint"]).Observe(value)
	default:
		r.Dropped.Inc()
	}
}

// RequestCount reads back the accumulated request counter for an endpoint
// and status.
func (r *Recorder) RequestCount(endpoint, status string) float64 {
	counter, err := r.Requests.GetMetricWithLabelValues(endpoint, status)
	if err != nil {
		return 0
	}

	metric := &io_prometheus_client.Metric{}
	if err := counter.Write(metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

// Totals gathers every request counter from the registry, keyed
// "endpoint/status". The values are exactly what a Prometheus scrape would
// see.
func (r *Recorder) Totals() map[string]float64 {
	totals := make(map[string]float64)

	families, err := r.registry.Gather()
	if err != nil {
		return totals
	}

	for _, family := range families {
		if family.GetName() != MetricRequestsTotal {
			continue
		}
		for _, metric := range family.GetMetric() {
			var endpoint, status string
			for _, label := range metric.GetLabel() {
				switch label.GetName() {
				case "endpoint":
					endpoint = label.GetValue()
				case "status":
					status = label.GetValue()
				}
			}
			totals[endpoint+"/"+status] = metric.GetCounter().GetValue()
		}
	}

	return totals
}

// Handler exposes the recorder's registry in Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
