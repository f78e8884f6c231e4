package match

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/matchmaker/internal/domain/entity"
	dommatch "github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetCalls int
	hsetFn    func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	m.hsetCalls++
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testResult(t *testing.T, candidateID string, heuristic, oracleScore float64) dommatch.Result {
	t.Helper()
	subject := entity.Reconstruct("s1", "Subject", []string{"go"}, "")
	cand := dommatch.ScoredCandidate{
		Entity:    entity.Reconstruct(candidateID, "Name "+candidateID, []string{"go"}, ""),
		Heuristic: heuristic,
	}
	oracle := dommatch.OracleResult{
		Summary:              "good fit",
		Score:                oracleScore,
		ConversationStarters: []string{"hello"},
	}
	return dommatch.NewResult(subject, cand, oracle, testTime)
}
