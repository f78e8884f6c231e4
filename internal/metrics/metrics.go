// Package metrics defines the Prometheus collectors of the matchmaker service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "matchmaker"

var registerOnce sync.Once

// Register registers oracle and pipeline collectors with the default registry.
// Safe to call more than once; HTTP collectors register themselves on import.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			OracleRequestsTotal,
			OracleRequestDuration,
			OracleTokensTotal,
			OracleErrorsTotal,
			OracleBudgetTokensRemaining,
			PipelineRunsTotal,
			PipelineCandidatesSelected,
			PipelineMatchesPersisted,
			PipelineCandidateFailuresTotal,
			EventsPublishedTotal,
		)
	})
}
