package matching

import (
	"context"

	"github.com/kailas-cloud/matchmaker/internal/domain/entity"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// EntityReader loads the subject and the population.
type EntityReader interface {
	Get(ctx context.Context, id string) (entity.Entity, error)
	All(ctx context.Context) ([]entity.Entity, error)
}

// Selector applies the heuristic gate.
type Selector interface {
	Select(subject entity.Entity, population []entity.Entity) []match.ScoredCandidate
}

// Scorer fans candidates out to the oracle.
type Scorer interface {
	Run(ctx context.Context, subject entity.Entity, candidates []match.ScoredCandidate) []match.Result
}

// Repository persists and lists match results.
type Repository interface {
	Save(ctx context.Context, subjectID string, results []match.Result) (int, error)
	List(ctx context.Context, subjectID string) ([]match.Result, error)
}

// Publisher announces finished runs. Optional.
type Publisher interface {
	PublishComputed(ctx context.Context, ev match.ComputedEvent) error
}
