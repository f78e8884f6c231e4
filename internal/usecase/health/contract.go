package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// OracleChecker checks scoring oracle availability.
type OracleChecker interface {
	HealthCheck(ctx context.Context) error
}
