// Package metrics exposes ledger and export counters for Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "syndicpulse"

type Metrics struct {
	registry *prometheus.Registry

	PaymentsRecorded *prometheus.CounterVec
	MonthsCovered    prometheus.Counter
	ResidentsAdded   *prometheus.CounterVec
	ExpensesAppended prometheus.Counter
	Exports          *prometheus.CounterVec
	ReportAssembly   prometheus.Histogram
	ReportCache      *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPRejected     *prometheus.CounterVec
}

// New registers every collector on a private registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments recorded, by payment method.",
		}, []string{"method"}),
		MonthsCovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_months_covered_total",
			Help:      "Sum of months covered by recorded payments.",
		}),
		ResidentsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "residents_added_total",
			Help:      "Residents added, by source (form or import).",
		}, []string{"source"}),
		ExpensesAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_appended_total",
			Help:      "Expense journal entries appended.",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Report exports, by format.",
		}, []string{"format"}),
		ReportAssembly: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_assembly_seconds",
			Help:      "Time to load and assemble a building report.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		ReportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_lookups_total",
			Help:      "Report cache lookups, by result (hit or miss).",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_events_published_total",
			Help:      "Ledger change events, by outcome (ok or error).",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status code.",
		}, []string{"method", "code"}),
		HTTPRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rejected_total",
			Help:      "Requests refused before reaching a handler, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PaymentsRecorded,
		m.MonthsCovered,
		m.ResidentsAdded,
		m.ExpensesAppended,
		m.Exports,
		m.ReportAssembly,
		m.ReportCache,
		m.EventsPublished,
		m.HTTPRequests,
		m.HTTPRejected,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePayment(method string, months int) {
	m.PaymentsRecorded.WithLabelValues(method).Inc()
	m.MonthsCovered.Add(float64(months))
}

func (m *Metrics) ObserveAssembly(start time.Time) {
	m.ReportAssembly.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.ReportCache.WithLabelValues("hit").Inc()
		return
	}
	m.ReportCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObservePublish(err error) {
	if err != nil {
		m.EventsPublished.WithLabelValues("error").Inc()
		return
	}
	m.EventsPublished.WithLabelValues("ok").Inc()
}

// ObserveRejected counts a request refused by the rate limiter
// ("rate_limit") or the request screen ("suspicious").
func (m *Metrics) ObserveRejected(reason string) {
	m.HTTPRejected.WithLabelValues(reason).Inc()
}

// Middleware counts requests by method and response status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
