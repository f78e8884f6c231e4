package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated signals a request without a caller identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden signals a caller acting on another entity's profile.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidEntity signals an invalid entity payload.
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrPersistence signals a failed match batch write. Nothing from the batch is stored.
	ErrPersistence = errors.New("persistence failure")

	// ErrOracleUnconfigured signals a missing oracle credential.
	ErrOracleUnconfigured = errors.New("oracle unconfigured")
	// ErrOracleTransport signals a failed call to the oracle service.
	ErrOracleTransport = errors.New("oracle transport failure")
	// ErrOracleMalformed signals an oracle response that failed extraction or validation.
	ErrOracleMalformed = errors.New("oracle malformed response")
	// ErrOracleQuotaExceeded signals an exhausted oracle token budget.
	ErrOracleQuotaExceeded = errors.New("oracle quota exceeded")
)

// OracleErrorKind classifies oracle failures.
type OracleErrorKind string

// Oracle failure kinds.
const (
	OracleUnconfigured      OracleErrorKind = "unconfigured"
	OracleTransportFailure  OracleErrorKind = "transport_failure"
	OracleMalformedResponse OracleErrorKind = "malformed_response"
)

func (k OracleErrorKind) sentinel() error {
	switch k {
	case OracleUnconfigured:
		return ErrOracleUnconfigured
	case OracleTransportFailure:
		return ErrOracleTransport
	default:
		return ErrOracleMalformed
	}
}

// OracleError is a classified oracle failure.
// errors.Is matches both the kind sentinel and the underlying cause.
type OracleError struct {
	Kind OracleErrorKind
	Err  error
}

func (e *OracleError) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.sentinel().Error(), e.Err.Error())
}

func (e *OracleError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// NewOracleError creates a classified oracle error.
func NewOracleError(kind OracleErrorKind, err error) error {
	return &OracleError{Kind: kind, Err: err}
}

// OracleErrorKindOf returns the kind of an oracle error, or "" if err is not one.
func OracleErrorKindOf(err error) OracleErrorKind {
	var oe *OracleError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}
