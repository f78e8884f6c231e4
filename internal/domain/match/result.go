package match

import (
	"time"

	"github.com/kailas-cloud/matchmaker/internal/domain/entity"
)

// Fusion weights. The oracle judgment dominates; the heuristic is a stabilizing floor.
const (
	HeuristicWeight = 0.3
	OracleWeight    = 0.7
)

// Fuse combines a heuristic score and a normalized oracle score, both in [0, 1].
func Fuse(heuristic, oracleNormalized float64) float64 {
	return heuristic*HeuristicWeight + oracleNormalized*OracleWeight
}

// ResultID derives the stable match identifier for a (subject, candidate) pair.
func ResultID(subjectID, candidateID string) string {
	return "match_" + subjectID + "_" + candidateID
}

// Result is the fused score for one (subject, candidate) pair.
type Result struct {
	id                   string
	subjectID            string
	candidateID          string
	candidateName        string
	heuristicScore       float64
	oracleScore          float64
	finalScore           float64
	summary              string
	conversationStarters []string
	similarFeatures      map[string]FeatureScore
	computedAt           time.Time
}

// NewResult fuses a scored candidate with its oracle verdict.
func NewResult(subject entity.Entity, cand ScoredCandidate, oracle OracleResult, at time.Time) Result {
	normalized := oracle.NormalizedScore()
	return Result{
		id:                   ResultID(subject.ID(), cand.Entity.ID()),
		subjectID:            subject.ID(),
		candidateID:          cand.Entity.ID(),
		candidateName:        cand.Entity.Username(),
		heuristicScore:       cand.Heuristic,
		oracleScore:          normalized,
		finalScore:           Fuse(cand.Heuristic, normalized),
		summary:              oracle.Summary,
		conversationStarters: oracle.ConversationStarters,
		similarFeatures:      oracle.SimilarFeatures,
		computedAt:           at.UTC(),
	}
}

// Reconstruct creates a Result without recomputation (storage hydration).
func Reconstruct(
	subjectID, candidateID, candidateName string,
	heuristic, oracleScore, finalScore float64,
	summary string, starters []string, features map[string]FeatureScore,
	computedAt time.Time,
) Result {
	return Result{
		id:                   ResultID(subjectID, candidateID),
		subjectID:            subjectID,
		candidateID:          candidateID,
		candidateName:        candidateName,
		heuristicScore:       heuristic,
		oracleScore:          oracleScore,
		finalScore:           finalScore,
		summary:              summary,
		conversationStarters: starters,
		similarFeatures:      features,
		computedAt:           computedAt,
	}
}

// ID returns the derived match identifier.
func (r *Result) ID() string { return r.id }

// SubjectID returns the subject entity identifier.
func (r *Result) SubjectID() string { return r.subjectID }

// CandidateID returns the candidate entity identifier.
func (r *Result) CandidateID() string { return r.candidateID }

// CandidateName returns the candidate's display name at computation time.
func (r *Result) CandidateName() string { return r.candidateName }

// HeuristicScore returns the Jaccard score.
func (r *Result) HeuristicScore() float64 { return r.heuristicScore }

// OracleScore returns the oracle score normalized to [0, 1].
func (r *Result) OracleScore() float64 { return r.oracleScore }

// FinalScore returns the fused score.
func (r *Result) FinalScore() float64 { return r.finalScore }

// Summary returns the oracle's narrative summary.
func (r *Result) Summary() string { return r.summary }

// ConversationStarters returns the oracle's suggested openers.
func (r *Result) ConversationStarters() []string { return r.conversationStarters }

// SimilarFeatures returns the oracle's per-feature scores.
func (r *Result) SimilarFeatures() map[string]FeatureScore { return r.similarFeatures }

// ComputedAt returns when the result was fused (UTC).
func (r *Result) ComputedAt() time.Time { return r.computedAt }
