// Package metrics exposes Prometheus collectors for trim runs.
package metrics

import (
	"fmt"

	appvideo "vtrim/application/video"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records trim runs. It implements appvideo.Recorder.
type PipelineMetrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	bytesIn  prometheus.Counter
	bytesOut prometheus.Counter
	chunks   prometheus.Counter
}

// NewPipelineMetrics creates the collectors and registers them with reg
func NewPipelineMetrics(reg prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtrim_runs_total",
			Help: "Trim runs by outcome and error kind",
		}, []string{"outcome", "kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vtrim_run_duration_seconds",
			Help:    "Wall time of trim runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vtrim_source_bytes_total",
			Help: "Source bytes handed to the pipeline",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vtrim_output_bytes_total",
			Help: "Trimmed bytes returned by the pipeline",
		}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vtrim_chunks_written_total",
			Help: "Chunks written into engine storage",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.duration, m.bytesIn, m.bytesOut, m.chunks} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return m, nil
}

// ObserveRun implements appvideo.Recorder
func (m *PipelineMetrics) ObserveRun(stats appvideo.RunStats) {
	outcome := "success"
	if stats.Kind != "" {
		outcome = "error"
	}
	m.runs.WithLabelValues(outcome, stats.Kind).Inc()
	m.duration.Observe(stats.Seconds)
	m.bytesIn.Add(float64(stats.BytesIn))
	m.bytesOut.Add(float64(stats.BytesOut))
	m.chunks.Add(float64(stats.Chunks))
}

// WriteTextfile writes every metric gathered by g to path in the node
// exporter textfile format
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

var _ appvideo.Recorder = (*PipelineMetrics)(nil)
