// Package metrics exposes Prometheus counters and gauges for the viewer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the viewer's Prometheus collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	requestsTotal  *prometheus.CounterVec
	errorsTotal    prometheus.Counter
	framesServed   prometheus.Counter
	timelinesBuilt prometheus.Counter
	catalogReloads prometheus.Counter
	sseClients     prometheus.Gauge
	activeSessions prometheus.Gauge
}

// New creates and registers the viewer metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scenaview_requests_total",
			Help: "Total number of HTTP requests received, by route pattern",
		}, []string{"route"}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scenaview_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		framesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scenaview_frames_served_total",
			Help: "Total number of frame metadata lookups answered",
		}),
		timelinesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scenaview_timelines_built_total",
			Help: "Total number of timelines generated",
		}),
		catalogReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scenaview_catalog_reloads_total",
			Help: "Total number of catalog file reloads that changed content",
		}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scenaview_sse_clients",
			Help: "Number of connected event stream clients",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scenaview_active_sessions",
			Help: "Number of live selection sessions",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.framesServed,
		m.timelinesBuilt,
		m.catalogReloads,
		m.sseClients,
		m.activeSessions,
	)
	return m
}

func (m *Metrics) IncRequests(route string) { m.requestsTotal.WithLabelValues(route).Inc() }
func (m *Metrics) IncErrors()               { m.errorsTotal.Inc() }
func (m *Metrics) IncFramesServed()         { m.framesServed.Inc() }
func (m *Metrics) IncTimelinesBuilt()       { m.timelinesBuilt.Inc() }
func (m *Metrics) IncCatalogReloads()       { m.catalogReloads.Inc() }

// SetSSEClients sets the connected clients gauge. It matches the sse broker
// client hook signature.
func (m *Metrics) SetSSEClients(n int) { m.sseClients.Set(float64(n)) }

func (m *Metrics) SetActiveSessions(n int) { m.activeSessions.Set(float64(n)) }

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
