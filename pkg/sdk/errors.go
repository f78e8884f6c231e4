package matchmaker

import "github.com/kailas-cloud/matchmaker/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound            = domain.ErrNotFound
	ErrInvalidEntity       = domain.ErrInvalidEntity
	ErrPersistence         = domain.ErrPersistence
	ErrOracleUnconfigured  = domain.ErrOracleUnconfigured
	ErrOracleTransport     = domain.ErrOracleTransport
	ErrOracleMalformed     = domain.ErrOracleMalformed
	ErrOracleQuotaExceeded = domain.ErrOracleQuotaExceeded
)
