package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestOracleError_Is(t *testing.T) {
	cause := context.DeadlineExceeded
	err := fmt.Errorf("invoke: %w", NewOracleError(OracleTransportFailure, cause))

	if !errors.Is(err, ErrOracleTransport) {
		t.Error("expected errors.Is(err, ErrOracleTransport)")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be reachable")
	}
	if errors.Is(err, ErrOracleMalformed) {
		t.Error("unexpected match on ErrOracleMalformed")
	}
	if got := OracleErrorKindOf(err); got != OracleTransportFailure {
		t.Errorf("OracleErrorKindOf() = %q", got)
	}
}

func TestOracleError_NilCause(t *testing.T) {
	err := NewOracleError(OracleUnconfigured, nil)
	if err.Error() != ErrOracleUnconfigured.Error() {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrOracleUnconfigured) {
		t.Error("expected errors.Is(err, ErrOracleUnconfigured)")
	}
}

func TestOracleErrorKindOf_Other(t *testing.T) {
	if got := OracleErrorKindOf(errors.New("boom")); got != "" {
		t.Errorf("OracleErrorKindOf() = %q, want empty", got)
	}
}
