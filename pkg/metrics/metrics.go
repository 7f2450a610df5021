package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	5, 10, 25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium responses (500ms - 2s) ---
	750, 1000, 1500, 2000,

	// --- Slow responses (2s - 30s) ---
	3000, 5000, 7500, 10000, 15000, 30000,
}

// Metric is a definition for the name, description, type and labels of a
// collector.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates a prometheus.Collector based on Metric.Type.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "gauge_vec":
		metric = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets},
			m.Args,
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	}
	return metric
}

// register adds c to reg, returning the already registered collector when an
// identical one exists.
func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

var MetricsReportDuration = &Metric{
	ID:          "reportDur",
	Name:        "report_dur_ms",
	Description: "report computation latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"kind", "name", "outcome"},
}

var MetricsSnapshotPersist = &Metric{
	ID:          "snapshotPersist",
	Name:        "snapshot_persist_total",
	Description: "billing snapshot persistence attempts by outcome",
	Type:        "counter_vec",
	Args:        []string{"outcome"},
}

// Recorder observes business level metrics.
type Recorder struct {
	reportDur *prometheus.HistogramVec
	persisted *prometheus.CounterVec
}

func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	dur, err := register(reg, NewMetric(MetricsReportDuration, "pulseboard"))
	if err != nil {
		return nil, err
	}
	persisted, err := register(reg, NewMetric(MetricsSnapshotPersist, "pulseboard"))
	if err != nil {
		return nil, err
	}
	return &Recorder{
		reportDur: dur.(*prometheus.HistogramVec),
		persisted: persisted.(*prometheus.CounterVec),
	}, nil
}

// ObserveReport records how long a report took since start. A nil Recorder
// is a no-op.
func (r *Recorder) ObserveReport(kind, name string, start time.Time, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.reportDur.WithLabelValues(kind, name, outcome).Observe(MillisecondsSince(start))
}

func (r *Recorder) SnapshotPersisted(ok bool) {
	if r == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	r.persisted.WithLabelValues(outcome).Inc()
}

func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

func newDefaultRecorder() (*Recorder, error) {
	return NewRecorder(prometheus.DefaultRegisterer)
}

var Module = fx.Options(
	fx.Provide(newDefaultRecorder),
)

const (
	RefererKey = "X-Referer"
)
