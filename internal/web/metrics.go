package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry served on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastRefresh     prometheus.Gauge
}

// NewMetrics registers the HTTP and refresh collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timespan_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "timespan_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 8),
		}, []string{"method", "route"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timespan_refresh_total",
			Help: "Calendar refreshes by result",
		}, []string{"result"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timespan_refresh_duration_seconds",
			Help:    "Histogram of calendar refresh durations",
			Buckets: prometheus.ExponentialBuckets(1e-2, 4, 7),
		}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timespan_refresh_last_success_timestamp_seconds",
			Help: "Unix time of the last refresh without errors",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.refreshes,
		m.refreshDuration,
		m.lastRefresh,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRefresh records one refresh. It matches agenda.Refresher.OnRefresh.
func (m *Metrics) ObserveRefresh(err error, took time.Duration) {
	m.refreshDuration.Observe(took.Seconds())
	if err != nil {
		m.refreshes.WithLabelValues("error").Inc()
		return
	}
	m.refreshes.WithLabelValues("ok").Inc()
	m.lastRefresh.SetToCurrentTime()
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}
