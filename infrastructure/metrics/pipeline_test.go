package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	appvideo "vtrim/application/video"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineMetrics_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(reg)
	require.NoError(t, err)

	m.ObserveRun(appvideo.RunStats{Seconds: 1.5, BytesIn: 100, BytesOut: 40, Chunks: 2})
	m.ObserveRun(appvideo.RunStats{Kind: "not_found", Seconds: 0.2, BytesIn: 100, Chunks: 2})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("error", "not_found")))
	assert.Equal(t, 200.0, testutil.ToFloat64(m.bytesIn))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.bytesOut))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.chunks))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, count, "two run series plus four single series")
}

func TestNewPipelineMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPipelineMetrics(reg)
	require.NoError(t, err)

	_, err = NewPipelineMetrics(reg)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(reg)
	require.NoError(t, err)
	m.ObserveRun(appvideo.RunStats{Seconds: 0.1, Chunks: 1})

	path := filepath.Join(t.TempDir(), "vtrim.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `vtrim_runs_total{kind="",outcome="success"} 1`), string(data))
}
