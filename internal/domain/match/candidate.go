// Package match holds the matching pipeline's value types and the score fusion rule.
package match

import "github.com/kailas-cloud/matchmaker/internal/domain/entity"

// ScoredCandidate is a peer that cleared the heuristic gate.
type ScoredCandidate struct {
	Entity    entity.Entity
	Heuristic float64
}
