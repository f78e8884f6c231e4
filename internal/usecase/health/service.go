// Package health aggregates component checks for the /health endpoint.
package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the oracle is unavailable; matching runs complete with zero results.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unavailable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const checkTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	oracle OracleChecker
}

// New creates a Service. oracle can be nil.
func New(db DBPinger, oracle OracleChecker) *Service {
	return &Service{db: db, oracle: oracle}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	checks := make(map[string]CheckResult, 2)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.oracle != nil {
		if err := s.oracle.HealthCheck(ctx); err != nil {
			checks["oracle"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["oracle"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
