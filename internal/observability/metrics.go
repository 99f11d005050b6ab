// Package observability exposes the Prometheus metrics recorded by a run.
//
// platebundle is a batch job, so metrics are not scraped from a listener.
// They are written once per run to a node-exporter textfile.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "platebundle"

// Metrics holds the Prometheus counters, histograms, and gauges for a run.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsConverted *prometheus.CounterVec // labels: strategy={plain,diagram,minimums,geo,supplement}
	DocumentsSkipped   *prometheus.CounterVec // labels: reason={source_missing}
	OutputsWritten     prometheus.Counter

	// Batch processing metrics.
	Batches       *prometheus.CounterVec // labels: outcome={success,failure}
	BatchDuration prometheus.Histogram

	// Packaging metrics.
	BundlesWritten *prometheus.CounterVec   // labels: kind={plates,supplements}
	BundleMembers  *prometheus.HistogramVec // labels: kind
	BundleBytes    *prometheus.GaugeVec     // labels: bundle

	RunDuration     prometheus.Gauge
	LastRunSuccess  prometheus.Gauge
	LastRunUnixTime prometheus.Gauge
}

// NewMetrics creates metrics registered with a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsConverted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_converted_total",
			Help:      "Chart documents converted, by conversion strategy.",
		}, []string{"strategy"}),
		DocumentsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_skipped_total",
			Help:      "Chart documents skipped, by reason.",
		}, []string{"reason"}),
		OutputsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outputs_written_total",
			Help:      "PNG files written.",
		}),
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Dispatcher batches drained, by outcome.",
		}, []string{"outcome"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one dispatcher batch.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		BundlesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bundles_written_total",
			Help:      "Bundle archives written, by kind.",
		}, []string{"kind"}),
		BundleMembers: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bundle_members",
			Help:      "Files per bundle, excluding the manifest.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
		BundleBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bundle_bytes",
			Help:      "Size of the most recent archive per bundle.",
		}, []string{"bundle"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the most recent run.",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 when the most recent run succeeded, 0 otherwise.",
		}),
		LastRunUnixTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Completion time of the most recent run.",
		}),
	}

	m.registry.MustRegister(
		m.DocumentsConverted,
		m.DocumentsSkipped,
		m.OutputsWritten,
		m.Batches,
		m.BatchDuration,
		m.BundlesWritten,
		m.BundleMembers,
		m.BundleBytes,
		m.RunDuration,
		m.LastRunSuccess,
		m.LastRunUnixTime,
	)

	return m
}

// Gatherer exposes the registry, primarily for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveBatch records one drained dispatcher batch.
func (m *Metrics) ObserveBatch(elapsed time.Duration, failed bool) {
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.Batches.WithLabelValues(outcome).Inc()
	m.BatchDuration.Observe(elapsed.Seconds())
}

// ObserveRun records the outcome of a finished run.
func (m *Metrics) ObserveRun(finished time.Time, elapsed time.Duration, success bool) {
	m.RunDuration.Set(elapsed.Seconds())
	m.LastRunUnixTime.Set(float64(finished.Unix()))
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
