package matchmaker

import "time"

// Entity is a matchable profile.
type Entity struct {
	ID       string
	Username string
	Traits   []string
	FreeText string
}

// FeatureScore rates one shared feature of a pair.
type FeatureScore struct {
	Score       float64
	Explanation string
}

// Match is a persisted result for one (subject, candidate) pair.
type Match struct {
	ID                   string
	SubjectID            string
	CandidateID          string
	CandidateName        string
	HeuristicScore       float64 // Jaccard similarity of trait sets, [0,1]
	OracleScore          float64 // oracle score / 100, [0,1]
	FinalScore           float64 // 0.3*heuristic + 0.7*oracle
	Summary              string
	ConversationStarters []string
	SimilarFeatures      map[string]FeatureScore
	ComputedAt           time.Time
}

// Outcome is the result of one Compute call.
type Outcome struct {
	RunID        string
	MatchesFound int
}
