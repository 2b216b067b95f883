package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors are the service's Prometheus metrics on a private registry.
type Collectors struct {
	reg               *prometheus.Registry
	transformDuration prometheus.Histogram
	requests          *prometheus.CounterVec
	chartEvents       *prometheus.CounterVec
	activeSessions    prometheus.Gauge
}

func NewCollectors() *Collectors {
	c := &Collectors{
		reg: prometheus.NewRegistry(),
		transformDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "funnel",
			Name:      "transform_duration_seconds",
			Help:      "Time spent turning the raw dataset into period views.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "funnel",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		chartEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "funnel",
			Name:      "chart_events_total",
			Help:      "Chart interaction events by type.",
		}, []string{"type"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "funnel",
			Name:      "active_sessions",
			Help:      "Open dashboard sessions.",
		}),
	}
	c.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.transformDuration,
		c.requests,
		c.chartEvents,
		c.activeSessions,
	)
	return c
}

func (c *Collectors) ObserveTransform(d time.Duration) { c.transformDuration.Observe(d.Seconds()) }

func (c *Collectors) ChartEvent(eventType string) { c.chartEvents.WithLabelValues(eventType).Inc() }

func (c *Collectors) SetActiveSessions(n int) { c.activeSessions.Set(float64(n)) }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Instrument counts requests by chi route pattern so path parameters do
// not explode the label set.
func (c *Collectors) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
