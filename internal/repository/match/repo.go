// Package match persists fused match results, one hash per subject.
package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	dommatch "github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// store is the consumer interface for match results (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements the result persister on a hash store.
//
// All results of one run are written with a single HSET on the subject's
// hash: the server applies it entirely or not at all, and a repeated
// (subject, candidate) pair overwrites its previous field.
type Repo struct {
	store store
}

// New creates a match repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save writes the batch atomically and returns the number of results saved.
// An empty batch performs no write.
func (r *Repo) Save(ctx context.Context, subjectID string, results []dommatch.Result) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	fields, err := buildHashFields(results)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	key := matchesKey(subjectID)
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return 0, fmt.Errorf("%w: hset %s: %w", domain.ErrPersistence, key, err)
	}
	return len(fields), nil
}

// List returns the subject's stored matches, best first.
func (r *Repo) List(ctx context.Context, subjectID string) ([]dommatch.Result, error) {
	key := matchesKey(subjectID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}

	out := make([]dommatch.Result, 0, len(m))
	for candidateID, raw := range m {
		res, err := parseRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("parse match %s/%s: %w", subjectID, candidateID, err)
		}
		out = append(out, res)
	}
	SortByFinalScore(out)
	return out, nil
}

// SortByFinalScore orders results by final score descending, then candidate ID.
func SortByFinalScore(results []dommatch.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore() != results[j].FinalScore() {
			return results[i].FinalScore() > results[j].FinalScore()
		}
		return results[i].CandidateID() < results[j].CandidateID()
	})
}

func matchesKey(subjectID string) string {
	return domain.KeyPrefix + "matches:" + subjectID
}
