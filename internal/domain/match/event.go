package match

import "time"

// ComputedEvent announces a finished pipeline run for one subject.
type ComputedEvent struct {
	RunID        string    `json:"runId"`
	SubjectID    string    `json:"subjectId"`
	MatchesFound int       `json:"matchesFound"`
	MatchIDs     []string  `json:"matchIds"`
	ComputedAt   time.Time `json:"computedAt"`
}
