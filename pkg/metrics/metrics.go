package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weather_records"

// Collector owns the application's prometheus registry. A nil *Collector is
// valid and records nothing, which keeps adapters usable in tests.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRetriesTotal    *prometheus.CounterVec
	UpstreamCallsTotal  *prometheus.CounterVec
	ResolutionsTotal    *prometheus.CounterVec
	StoreUp             prometheus.Gauge
}

// NewCollector registers every collector on a private registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"route"},
		),
		HTTPRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_request_retries_total",
				Help:      "Replayed attempts of retried requests by route",
			},
			[]string{"route"},
		),
		UpstreamCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_calls_total",
				Help:      "Calls to external providers by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "location_resolutions_total",
				Help:      "Location resolutions by winning method",
			},
			[]string{"method"},
		),
		StoreUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_up",
				Help:      "1 when the record store answered its last health probe",
			},
		),
	}
}

// Handler exposes the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records a finished request.
func (c *Collector) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordRetry counts a replayed attempt. Each attempt is also observed by
// ObserveHTTP, so requests_total minus retries_total gives client requests.
func (c *Collector) RecordRetry(route string) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.HTTPRetriesTotal.WithLabelValues(route).Inc()
}

// RecordUpstream counts one provider call; err == nil is a success.
func (c *Collector) RecordUpstream(provider string, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.UpstreamCallsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordResolution counts the strategy that resolved a location.
func (c *Collector) RecordResolution(method string) {
	if c == nil {
		return
	}
	c.ResolutionsTotal.WithLabelValues(method).Inc()
}

// SetStoreUp publishes the latest store probe result.
func (c *Collector) SetStoreUp(up bool) {
	if c == nil {
		return
	}
	if up {
		c.StoreUp.Set(1)
		return
	}
	c.StoreUp.Set(0)
}
