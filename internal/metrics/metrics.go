// Package metrics collects per-run Prometheus metrics and exports them to a
// node_exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the metrics of one bideorai process.
type Recorder struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	UploadsTotal     *prometheus.CounterVec
	SubtitlesTotal   prometheus.Counter
	LastRunTimestamp *prometheus.GaugeVec
	LastRunDuration  prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bideorai_runs_total",
				Help: "Packaging runs by terminal state",
			},
			[]string{"state", "failed_stage"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bideorai_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800, 3600},
			},
			[]string{"stage"},
		),
		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bideorai_uploads_total",
				Help: "Artifact uploads by kind and result",
			},
			[]string{"kind", "result"},
		),
		SubtitlesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bideorai_subtitles_extracted_total",
				Help: "Subtitle streams extracted to WebVTT",
			},
		),
		LastRunTimestamp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bideorai_last_run_timestamp_seconds",
				Help: "Unix time of the last run by terminal state",
			},
			[]string{"state"},
		),
		LastRunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bideorai_last_run_duration_seconds",
				Help: "Wall-clock duration of the last run",
			},
		),
	}
}

// ObserveStage records a stage duration.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveUpload counts one upload attempt.
func (r *Recorder) ObserveUpload(kind string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.UploadsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveSubtitles counts extracted subtitle streams.
func (r *Recorder) ObserveSubtitles(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.SubtitlesTotal.Add(float64(n))
}

// ObserveRun records the terminal state of a run.
func (r *Recorder) ObserveRun(state, failedStage string, finished time.Time, d time.Duration) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(state, failedStage).Inc()
	r.LastRunTimestamp.WithLabelValues(state).Set(float64(finished.Unix()))
	r.LastRunDuration.Set(d.Seconds())
}

// Gatherer exposes the registry for tests and custom exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes the metrics in text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
