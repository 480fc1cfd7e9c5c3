package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records batch outcomes on a private registry so a run can be
// exported as a textfile without touching the global default registry.
type Metrics struct {
	Registry *prometheus.Registry

	siteOutcomes  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	sitesByStatus *prometheus.GaugeVec
	batchAborted  prometheus.Gauge
}

// NewMetrics creates and registers the provisioning metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		siteOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wpfleet",
				Subsystem: "stage",
				Name:      "site_outcomes_total",
				Help:      "Site outcomes per stage by result",
			},
			[]string{"stage", "result"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wpfleet",
				Subsystem: "stage",
				Name:      "duration_seconds",
				Help:      "Wall time of a stage across all sites",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
			},
			[]string{"stage"},
		),
		sitesByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "wpfleet",
				Subsystem: "batch",
				Name:      "sites",
				Help:      "Sites by final status",
			},
			[]string{"status"},
		),
		batchAborted: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wpfleet",
				Subsystem: "batch",
				Name:      "aborted",
				Help:      "1 if the batch stopped before all stages ran",
			},
		),
	}
	m.Registry.MustRegister(m.siteOutcomes, m.stageDuration, m.sitesByStatus, m.batchAborted)
	return m
}

// RecordStage records a finished stage.
func (m *Metrics) RecordStage(summary StageSummary, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(summary.Stage).Observe(duration.Seconds())
	m.siteOutcomes.WithLabelValues(summary.Stage, "success").Add(float64(summary.Successful - summary.Warnings))
	m.siteOutcomes.WithLabelValues(summary.Stage, "warning").Add(float64(summary.Warnings))
	m.siteOutcomes.WithLabelValues(summary.Stage, "failed").Add(float64(summary.Failed))
	m.siteOutcomes.WithLabelValues(summary.Stage, "skipped").Add(float64(summary.Skipped))
}

// RecordBatch records the final outcome of the batch.
func (m *Metrics) RecordBatch(results []ProvisioningResult, aborted bool) {
	if m == nil {
		return
	}
	counts := map[Status]int{
		StatusSuccess:             0,
		StatusSuccessWithWarnings: 0,
		StatusFailed:              0,
		StatusSkipped:             0,
	}
	for _, r := range results {
		counts[r.Status]++
	}
	for status, n := range counts {
		m.sitesByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
	if aborted {
		m.batchAborted.Set(1)
	} else {
		m.batchAborted.Set(0)
	}
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
