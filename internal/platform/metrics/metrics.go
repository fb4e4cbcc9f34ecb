package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the registry console.
type Metrics struct {
	ResidentsCreated prometheus.Counter

	// Verification decisions by outcome: approved, denied, restored.
	VerificationDecisions *prometheus.CounterVec

	ReportsAssembled prometheus.Counter
	ChartSeriesBuilt *prometheus.CounterVec

	ActivityRecorded prometheus.Counter
	ActivityPruned   prometheus.Counter

	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ResidentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_residents_created_total",
			Help: "Total number of resident records created",
		}),
		VerificationDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civreg_verification_decisions_total",
			Help: "Total verification workflow transitions by outcome",
		}, []string{"outcome"}),
		ReportsAssembled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_reports_assembled_total",
			Help: "Total resident reports assembled for export",
		}),
		ChartSeriesBuilt: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civreg_chart_series_built_total",
			Help: "Total time series aggregations built, by entity kind",
		}, []string{"kind"}),
		ActivityRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_activity_entries_recorded_total",
			Help: "Total activity log entries recorded",
		}),
		ActivityPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_activity_entries_pruned_total",
			Help: "Total activity log entries removed by retention cleanup",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civreg_http_request_duration_seconds",
			Help:    "HTTP request duration by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
	}
}

// IncrementResidentsCreated increments the residents created counter by 1.
func (m *Metrics) IncrementResidentsCreated() {
	if m != nil {
		m.ResidentsCreated.Inc()
	}
}

// IncrementVerificationDecision records a workflow transition outcome.
func (m *Metrics) IncrementVerificationDecision(outcome string) {
	if m != nil {
		m.VerificationDecisions.WithLabelValues(outcome).Inc()
	}
}

// IncrementReportsAssembled increments the reports assembled counter by 1.
func (m *Metrics) IncrementReportsAssembled() {
	if m != nil {
		m.ReportsAssembled.Inc()
	}
}

// IncrementChartSeriesBuilt records an aggregation by entity kind.
func (m *Metrics) IncrementChartSeriesBuilt(kind string) {
	if m != nil {
		m.ChartSeriesBuilt.WithLabelValues(kind).Inc()
	}
}

// IncrementActivityRecorded increments the activity entries counter by 1.
func (m *Metrics) IncrementActivityRecorded() {
	if m != nil {
		m.ActivityRecorded.Inc()
	}
}

// AddActivityPruned records how many entries a retention pass removed.
func (m *Metrics) AddActivityPruned(n int64) {
	if m != nil && n > 0 {
		m.ActivityPruned.Add(float64(n))
	}
}

// ObserveRequestLatency records the duration of one HTTP request.
func (m *Metrics) ObserveRequestLatency(route, status string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
	}
}
