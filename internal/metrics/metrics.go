package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several instances (tests, embedded servers)
// can coexist without duplicate registration panics.
type Metrics struct {
	ServiceName string
	registry    *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	statusCategory *prometheus.CounterVec
	stockMutations *prometheus.CounterVec
	salesRecorded  prometheus.Counter
	wasteLogged    *prometheus.CounterVec
	forecastCalls  *prometheus.CounterVec
	authAttempts   *prometheus.CounterVec
}

func New(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		ServiceName: serviceName,
		registry:    reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path", "status"}),
		statusCategory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		}, []string{"service", "category"}),
		stockMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_stock_mutations_total",
			Help: "Stock mutations by kind (add, remove, correction, sale) and outcome",
		}, []string{"kind", "outcome"}),
		salesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sales_recorded_total",
			Help: "Total number of sales committed",
		}),
		wasteLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waste_logged_total",
			Help: "Waste logs created by reason",
		}, []string{"reason"}),
		forecastCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_requests_total",
			Help: "Forecast lookups by source (cache, upstream) and outcome",
		}, []string{"source", "outcome"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by operation and outcome",
		}, []string{"operation", "outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.statusCategory,
		m.stockMutations,
		m.salesRecorded,
		m.wasteLogged,
		m.forecastCalls,
		m.authAttempts,
	)
	return m
}

// Middleware records request count and latency labelled by the matched chi
// route pattern, which keeps path cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		statusStr := strconv.Itoa(status)
		m.requests.WithLabelValues(m.ServiceName, r.Method, path, statusStr).Inc()
		m.duration.WithLabelValues(m.ServiceName, r.Method, path, statusStr).Observe(time.Since(start).Seconds())
		if category := statusCategory(status); category != "" {
			m.statusCategory.WithLabelValues(m.ServiceName, category).Inc()
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveStockMutation(kind string, err error) {
	if m == nil {
		return
	}
	m.stockMutations.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) ObserveSale() {
	if m == nil {
		return
	}
	m.salesRecorded.Inc()
}

func (m *Metrics) ObserveWaste(reason string) {
	if m == nil {
		return
	}
	m.wasteLogged.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveForecast(source string, err error) {
	if m == nil {
		return
	}
	m.forecastCalls.WithLabelValues(source, outcome(err)).Inc()
}

func (m *Metrics) ObserveAuth(operation string, err error) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}
