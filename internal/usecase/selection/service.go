// Package selection picks the candidates worth sending to the oracle.
package selection

import (
	"sort"

	"github.com/kailas-cloud/matchmaker/internal/domain/entity"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	"github.com/kailas-cloud/matchmaker/internal/domain/similarity"
)

// Defaults for the heuristic gate.
const (
	DefaultMinScore = 0.1
	DefaultTopN     = 20
)

// Service ranks a population against a subject by trait overlap.
type Service struct {
	minScore float64
	topN     int
}

// New creates a selector. Non-positive topN falls back to DefaultTopN;
// a negative minScore falls back to DefaultMinScore.
func New(minScore float64, topN int) *Service {
	if minScore < 0 {
		minScore = DefaultMinScore
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Service{minScore: minScore, topN: topN}
}

// Select returns at most topN peers whose Jaccard score is strictly above
// minScore, best first. The subject itself is never returned. Ties keep
// population order. Pairs with no traits on either side are skipped.
func (s *Service) Select(subject entity.Entity, population []entity.Entity) []match.ScoredCandidate {
	subjectTraits := subject.TraitSet()
	subjectID := subject.ID()

	var out []match.ScoredCandidate
	for i := range population {
		peer := population[i]
		if peer.ID() == subjectID {
			continue
		}
		score, ok := similarity.Jaccard(subjectTraits, peer.TraitSet())
		if !ok || score <= s.minScore {
			continue
		}
		out = append(out, match.ScoredCandidate{Entity: peer, Heuristic: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Heuristic > out[j].Heuristic
	})

	if len(out) > s.topN {
		out = out[:s.topN]
	}
	return out
}
