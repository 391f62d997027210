package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resqnet"

// Metrics - счетчики и гистограммы Prometheus для приема отчетов
type Metrics struct {
	ReportsSubmitted *prometheus.CounterVec // labels: severity={Low,Medium,Critical}
	SubmitErrors     *prometheus.CounterVec // labels: stage={storage,persist}
	PriorityScore    prometheus.Histogram

	AnalysisDuration *prometheus.HistogramVec // labels: analyzer
	AnalysisErrors   *prometheus.CounterVec   // labels: analyzer

	ReportsCache      *prometheus.CounterVec // labels: result={hit,miss}
	WebhookDeliveries *prometheus.CounterVec // labels: outcome={success,failed}
	EventsPublished   *prometheus.CounterVec // labels: sink={kafka,webhook}, outcome={success,error}
	KeepAlivePings    *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics создает метрики и регистрирует их в реестре Prometheus по умолчанию
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReportsSubmitted,
		m.SubmitErrors,
		m.PriorityScore,
		m.AnalysisDuration,
		m.AnalysisErrors,
		m.ReportsCache,
		m.WebhookDeliveries,
		m.EventsPublished,
		m.KeepAlivePings,
	)
	return m
}

// NewMetricsForTesting создает метрики без регистрации, чтобы тесты
// не паниковали с "already registered".
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Reports stored, by severity.",
		}, []string{"severity"}),
		SubmitErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_errors_total",
			Help:      "Failed report submissions, by stage.",
		}, []string{"stage"}),
		PriorityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "priority_score",
			Help:      "Distribution of computed priority scores.",
			Buckets:   []float64{0, 10, 25, 40, 55, 70, 85, 100},
		}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Image analysis duration in seconds, by analyzer.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"analyzer"}),
		AnalysisErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_errors_total",
			Help:      "Image analysis failures, by analyzer.",
		}, []string{"analyzer"}),
		ReportsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_cache_total",
			Help:      "Report list cache lookups, by result.",
		}, []string{"result"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook delivery attempts, by final outcome.",
		}, []string{"outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Report events handed to downstream sinks.",
		}, []string{"sink", "outcome"}),
		KeepAlivePings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keepalive_pings_total",
			Help:      "Keep-alive health pings, by outcome.",
		}, []string{"outcome"}),
	}
}
