package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "strategist"

var (
	// ProviderCalls counts metadata provider requests by operation and status.
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Total number of video metadata provider calls",
		},
		[]string{"operation", "status"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of video metadata provider calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// GenerationCalls counts text generation requests.
	GenerationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_calls_total",
			Help:      "Total number of text generation calls",
		},
		[]string{"status"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of text generation calls in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	// StageDuration measures each pipeline stage.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs by outcome",
		},
		[]string{"status"},
	)

	// CandidatesFound observes how many candidates each source returned.
	CandidatesFound = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidates_found",
			Help:      "Distribution of candidate set sizes",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 10},
		},
		[]string{"source"},
	)

	AnalysisResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_results_total",
			Help:      "Total number of per-video analysis results",
		},
		[]string{"status"},
	)
)

// Status maps an error to a metric label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func RecordProviderCall(operation string, err error, duration time.Duration) {
	ProviderCalls.WithLabelValues(operation, Status(err)).Inc()
	ProviderDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordGeneration(err error, duration time.Duration) {
	GenerationCalls.WithLabelValues(Status(err)).Inc()
	GenerationDuration.Observe(duration.Seconds())
}

func RecordStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func RecordPipelineRun(err error) {
	PipelineRuns.WithLabelValues(Status(err)).Inc()
}

func RecordCandidates(source string, n int) {
	CandidatesFound.WithLabelValues(source).Observe(float64(n))
}

func RecordAnalysis(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	AnalysisResults.WithLabelValues(status).Inc()
}
