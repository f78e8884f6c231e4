package matchmaker

import (
	"context"
	"errors"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// Scorer judges one pair from a prompt. Implementations must be safe for
// concurrent use. Returned verdicts are validated; an invalid verdict drops
// the candidate like any other failure.
type Scorer interface {
	Score(ctx context.Context, prompt string) (Verdict, error)
}

// Verdict is a scorer answer. Score is on a 0-100 scale and at least one
// conversation starter or similar feature is required.
type Verdict struct {
	Summary              string
	Score                float64
	ConversationStarters []string
	SimilarFeatures      map[string]FeatureScore
}

// scorerAdapter wraps a public Scorer to satisfy the internal oracle contract.
type scorerAdapter struct {
	inner Scorer
}

func (a *scorerAdapter) Invoke(ctx context.Context, prompt string) (match.OracleResult, error) {
	v, err := a.inner.Score(ctx, prompt)
	if err != nil {
		var oe *domain.OracleError
		if errors.As(err, &oe) {
			return match.OracleResult{}, err
		}
		return match.OracleResult{}, domain.NewOracleError(domain.OracleTransportFailure, err)
	}

	var features map[string]match.FeatureScore
	if len(v.SimilarFeatures) > 0 {
		features = make(map[string]match.FeatureScore, len(v.SimilarFeatures))
		for k, f := range v.SimilarFeatures {
			features[k] = match.FeatureScore{Score: f.Score, Explanation: f.Explanation}
		}
	}
	return match.OracleResult{
		Summary:              v.Summary,
		Score:                v.Score,
		ConversationStarters: v.ConversationStarters,
		SimilarFeatures:      features,
	}, nil
}
