package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PagesFetched     prometheus.Counter
	FetchErrors      *prometheus.CounterVec
	VisitsSubmitted  *prometheus.CounterVec
	DedupSkipped     prometheus.Counter
	DedupCheckErrors prometheus.Counter
	RecordsIngested  prometheus.Counter
	IngestFailures   *prometheus.CounterVec
	FrontierSize     prometheus.Gauge
	CorruptVisits    prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the crawler metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PagesFetched: f.NewCounter(prometheus.CounterOpts{
			Name: "crawler_pages_fetched_total",
			Help: "The total number of pages fetched and handed to the dispatcher",
		}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_fetch_errors_total",
			Help: "The total number of fetch errors",
		}, []string{"type"}), // 'retry', 'gave_up'
		VisitsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_visits_submitted_total",
			Help: "Visits submitted to the frontier by state kind",
		}, []string{"kind"}),
		DedupSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "crawler_dedup_skipped_total",
			Help: "Detail pages skipped because the record is already stored",
		}),
		DedupCheckErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "crawler_dedup_check_errors_total",
			Help: "Existence checks that failed and were admitted anyway",
		}),
		RecordsIngested: f.NewCounter(prometheus.CounterOpts{
			Name: "crawler_records_ingested_total",
			Help: "Transaction records written to the store",
		}),
		IngestFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_ingest_failures_total",
			Help: "Records discarded at ingest",
		}, []string{"reason"}), // 'duplicate', 'error'
		FrontierSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "crawler_frontier_pending",
			Help: "Visits queued or in flight",
		}),
		CorruptVisits: f.NewCounter(prometheus.CounterOpts{
			Name: "crawler_frontier_corrupt_total",
			Help: "Undecodable frontier entries that were dropped",
		}),

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncFetchErrors(errorType string) {
	m.FetchErrors.WithLabelValues(errorType).Inc()
}

func (m *Metrics) IncVisitsSubmitted(kind string) {
	m.VisitsSubmitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncIngestFailures(reason string) {
	m.IngestFailures.WithLabelValues(reason).Inc()
}

// ObserveHTTPRequest records one served API request.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}
