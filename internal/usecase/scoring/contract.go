package scoring

import (
	"context"

	"github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// Oracle scores one (subject, candidate) prompt. Implementations must be safe
// for concurrent use and classify failures as *domain.OracleError.
type Oracle interface {
	Invoke(ctx context.Context, prompt string) (match.OracleResult, error)
}
