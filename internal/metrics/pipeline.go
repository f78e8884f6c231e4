package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching pipeline metrics.
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total matching pipeline runs by outcome",
		},
		[]string{"outcome"}, // "success" / "not_found" / "unauthenticated" / "error"
	)

	PipelineCandidatesSelected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_candidates_selected",
			Help:      "Candidates passing the heuristic gate per run",
			Buckets:   []float64{0, 1, 2, 5, 10, 15, 20},
		},
	)

	PipelineMatchesPersisted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_matches_persisted_total",
			Help:      "Total match results written",
		},
	)

	PipelineCandidateFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_candidate_failures_total",
			Help:      "Candidates dropped from a run by oracle error kind",
		},
		[]string{"kind"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Match events published by status",
		},
		[]string{"status"},
	)
)
