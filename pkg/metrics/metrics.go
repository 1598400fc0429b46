package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ragbridge"

// Collector owns every Prometheus metric the proxy exports. A nil *Collector
// is valid and records nothing, so components can be built without metrics.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	backendRequests  *prometheus.CounterVec
	backendDuration  *prometheus.HistogramVec
	streamChunks     *prometheus.CounterVec
	streamsTotal     *prometheus.CounterVec
	assetResolutions *prometheus.CounterVec
	assetFileEvents  *prometheus.CounterVec
	wsConnections    prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh private one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds, including streamed bodies",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 300},
			},
			[]string{"route", "method"},
		),
		backendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Total number of RAG backend calls by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		backendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Time until the RAG backend returned response headers",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"mode"},
		),
		streamChunks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_chunks_total",
				Help:      "Total number of chat completion chunks written to clients",
			},
			[]string{"transcoder"},
		),
		streamsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_total",
				Help:      "Total number of streamed responses by transcoder and final state",
			},
			[]string{"transcoder", "outcome"},
		),
		assetResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "asset_resolutions_total",
				Help:      "Total number of asset resolutions by winning source",
			},
			[]string{"source"},
		),
		assetFileEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "asset_file_events_total",
				Help:      "Filesystem events observed on the asset override file",
			},
			[]string{"op"},
		),
		wsConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_connections",
				Help:      "Number of open WebSocket chat connections",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.backendRequests,
		c.backendDuration,
		c.streamChunks,
		c.streamsTotal,
		c.assetResolutions,
		c.assetFileEvents,
		c.wsConnections,
	)

	return c
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

func (c *Collector) RecordRequest(route, method, code string, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(route, method, code).Inc()
	c.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (c *Collector) RecordBackend(mode, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.backendRequests.WithLabelValues(mode, outcome).Inc()
	c.backendDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (c *Collector) RecordChunks(transcoder string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.streamChunks.WithLabelValues(transcoder).Add(float64(n))
}

func (c *Collector) RecordStream(transcoder, outcome string) {
	if c == nil {
		return
	}
	c.streamsTotal.WithLabelValues(transcoder, outcome).Inc()
}

func (c *Collector) RecordAssetResolution(source string) {
	if c == nil {
		return
	}
	c.assetResolutions.WithLabelValues(source).Inc()
}

func (c *Collector) RecordAssetFileEvent(op string) {
	if c == nil {
		return
	}
	c.assetFileEvents.WithLabelValues(op).Inc()
}

func (c *Collector) WebSocketOpened() {
	if c == nil {
		return
	}
	c.wsConnections.Inc()
}

func (c *Collector) WebSocketClosed() {
	if c == nil {
		return
	}
	c.wsConnections.Dec()
}
