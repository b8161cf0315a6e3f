// Package telemetry exposes Prometheus metrics for the imgur-proxy service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all imgur-proxy Prometheus metrics.
type Metrics struct {
	// Proxy traffic
	ProxiedRequests *prometheus.CounterVec // by kind and outcome
	RejectedURLs    prometheus.Counter
	RejectedIDs     prometheus.Counter

	// Origin traffic
	OriginFetchDuration *prometheus.HistogramVec // by target (cdn, api)
	ProbeAttempts       prometheus.Counter
	ActiveStreams       prometheus.Gauge
}

// NewMetrics registers the service metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the service metrics on the given registerer.
// Tests use this with a private registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ProxiedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "imgurproxy_requests_total",
			Help: "Proxied content requests by kind and outcome",
		}, []string{"kind", "outcome"}),
		RejectedURLs: factory.NewCounter(prometheus.CounterOpts{
			Name: "imgurproxy_rejected_urls_total",
			Help: "Submitted URLs rejected by the classifier",
		}),
		RejectedIDs: factory.NewCounter(prometheus.CounterOpts{
			Name: "imgurproxy_rejected_identifiers_total",
			Help: "Path-segment identifiers rejected by the validator",
		}),
		OriginFetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imgurproxy_origin_fetch_duration_seconds",
			Help:    "Origin fetch duration by target",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),
		ProbeAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "imgurproxy_extension_probe_attempts_total",
			Help: "CDN extension probe attempts",
		}),
		ActiveStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "imgurproxy_active_streams",
			Help: "Image streams currently being relayed",
		}),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
