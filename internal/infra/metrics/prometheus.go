package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssetsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visirs_assets_processed_total",
		Help: "Total number of assets hashed, by media type",
	}, []string{"type"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "visirs_stage_duration_seconds",
		Help:    "Duration of grouping pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visirs_frames_sampled_total",
		Help: "Total number of video frames sampled across all assets",
	})

	ComparisonsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visirs_hash_comparisons_total",
		Help: "Total number of pairwise similarity comparisons",
	})

	GroupsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visirs_groups_created_total",
		Help: "Total number of visual groups created",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "visirs_active_workers",
		Help: "Number of currently active hashing workers",
	})
)
