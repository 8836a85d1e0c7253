package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	events      *prometheus.CounterVec
	renderCache *prometheus.CounterVec
}

func newMetrics(reg *prometheus.Registry, sessions *Sessions) *metrics {
	f := promauto.With(reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "choropleth_sessions_active",
		Help: "Live interaction sessions.",
	}, func() float64 { return float64(sessions.Len()) })

	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "choropleth_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "choropleth_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "choropleth_events_total",
			Help: "Interaction events by map and kind.",
		}, []string{"map", "kind"}),
		renderCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "choropleth_render_cache_total",
			Help: "Render cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *metrics) cacheResult(hit bool) {
	if hit {
		m.renderCache.WithLabelValues("hit").Inc()
		return
	}
	m.renderCache.WithLabelValues("miss").Inc()
}

// instrument records request counts and latency under the matched route
// pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
