package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run metrics
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelart_runs_total",
			Help: "Total number of conversion runs by input kind and outcome",
		},
		[]string{"kind", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixelart_run_duration_seconds",
			Help:    "End-to-end conversion duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"kind"},
	)
)

// Per-frame pipeline metrics
var (
	FramesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixelart_frames_processed_total",
			Help: "Total number of frames pushed through the stage sequence",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pixelart_stage_duration_seconds",
			Help:    "Per-stage processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	FrameWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pixelart_frame_workers",
			Help: "Number of workers in the current parallel frame map",
		},
	)

	SegmentationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pixelart_segmentation_fallbacks_total",
			Help: "Frames processed without background removal after a segmentation failure",
		},
	)
)

// External tool metrics
var (
	TranscoderInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelart_transcoder_invocations_total",
			Help: "FFmpeg invocations by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	TranscoderFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixelart_transcoder_fallbacks_total",
			Help: "Times the fallback FFmpeg command was attempted, by operation",
		},
		[]string{"operation"},
	)
)
