package observability_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platebundle/internal/observability"
)

func textfile(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "platebundle.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewMetricsIsolated(t *testing.T) {
	// Private registries mean repeated construction never panics.
	a := observability.NewMetrics()
	b := observability.NewMetrics()

	a.DocumentsConverted.WithLabelValues("geo").Inc()
	b.DocumentsConverted.WithLabelValues("plain").Inc()

	out := textfile(t, a)
	assert.Contains(t, out, `platebundle_documents_converted_total{strategy="geo"} 1`)
	assert.NotContains(t, out, `strategy="plain"`)
}

func TestObserveBatchAndRun(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveBatch(2*time.Second, false)
	m.ObserveBatch(time.Second, true)
	m.ObserveRun(time.Unix(1720000000, 0), 90*time.Second, true)

	out := textfile(t, m)
	assert.Contains(t, out, `platebundle_batches_total{outcome="success"} 1`)
	assert.Contains(t, out, `platebundle_batches_total{outcome="failure"} 1`)
	assert.Contains(t, out, `platebundle_batch_duration_seconds_count 2`)
	assert.Contains(t, out, "platebundle_run_duration_seconds 90")
	assert.Contains(t, out, "platebundle_last_run_success 1")
	assert.Contains(t, out, "platebundle_last_run_timestamp_seconds 1.72e+09")
}

func TestWriteTextfile(t *testing.T) {
	m := observability.NewMetrics()
	m.BundlesWritten.WithLabelValues("plates").Add(9)

	assert.Contains(t, textfile(t, m), `platebundle_bundles_written_total{kind="plates"} 9`)
	require.NoError(t, m.WriteTextfile(""), "empty path is a no-op")
	require.NotNil(t, m.Gatherer())
}
