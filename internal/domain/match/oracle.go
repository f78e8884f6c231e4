package match

import (
	"fmt"
	"strings"
)

// Oracle score contract bounds.
const (
	MinOracleScore = 0
	MaxOracleScore = 100
)

// FeatureScore is a named sub-feature score with the oracle's explanation.
type FeatureScore struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// OracleResult is the validated output of the external scorer.
// Insights come in one of two shapes: conversation starters or similar features.
type OracleResult struct {
	Summary              string                  `json:"summary"`
	Score                float64                 `json:"score"`
	ConversationStarters []string                `json:"conversationStarters,omitempty"`
	SimilarFeatures      map[string]FeatureScore `json:"similarFeatures,omitempty"`
}

// Validate enforces the result invariants: summary, score in range, and at
// least one populated insight entry.
func (r OracleResult) Validate() error {
	if strings.TrimSpace(r.Summary) == "" {
		return fmt.Errorf("summary is required")
	}
	if r.Score < MinOracleScore || r.Score > MaxOracleScore {
		return fmt.Errorf("score %v out of range [%d, %d]", r.Score, MinOracleScore, MaxOracleScore)
	}
	for name, f := range r.SimilarFeatures {
		if strings.TrimSpace(f.Explanation) == "" {
			return fmt.Errorf("feature %q has no explanation", name)
		}
	}
	if r.InsightCount() == 0 {
		return fmt.Errorf("at least one insight is required")
	}
	return nil
}

// InsightCount returns the number of populated insight entries across both shapes.
// A feature counts only when it carries an explanation.
func (r OracleResult) InsightCount() int {
	n := 0
	for _, s := range r.ConversationStarters {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	for _, f := range r.SimilarFeatures {
		if strings.TrimSpace(f.Explanation) != "" {
			n++
		}
	}
	return n
}

// NormalizedScore maps the 0-100 oracle score to [0, 1].
func (r OracleResult) NormalizedScore() float64 {
	return r.Score / MaxOracleScore
}

// TokenUsage is the token accounting reported by the oracle for one call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
