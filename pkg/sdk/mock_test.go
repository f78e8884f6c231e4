package matchmaker

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/matchmaker/internal/db"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	entityuc "github.com/kailas-cloud/matchmaker/internal/usecase/entity"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
)

// --- matchingUseCase mock ---

type mockMatchingUC struct {
	computeFn func(ctx context.Context, callerID string) (matchinguc.Outcome, error)
	listFn    func(ctx context.Context, callerID string) ([]match.Result, error)
}

func (m *mockMatchingUC) Compute(ctx context.Context, callerID string) (matchinguc.Outcome, error) {
	return m.computeFn(ctx, callerID)
}

func (m *mockMatchingUC) List(ctx context.Context, callerID string) ([]match.Result, error) {
	return m.listFn(ctx, callerID)
}

// --- entityUseCase mock ---

type mockEntityUC struct {
	seedFn func(ctx context.Context, id string, in entityuc.UpsertInput) (domentity.Entity, error)
	getFn  func(ctx context.Context, id string) (domentity.Entity, error)
}

func (m *mockEntityUC) Seed(ctx context.Context, id string, in entityuc.UpsertInput) (domentity.Entity, error) {
	return m.seedFn(ctx, id, in)
}

func (m *mockEntityUC) Get(ctx context.Context, id string) (domentity.Entity, error) {
	return m.getFn(ctx, id)
}

// --- Scorer mock ---

type mockScorer struct {
	fn func(ctx context.Context, prompt string) (Verdict, error)
}

func (m *mockScorer) Score(ctx context.Context, prompt string) (Verdict, error) {
	return m.fn(ctx, prompt)
}

// --- in-memory db.Store ---

type memStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	kv     map[string]int64
}

var _ db.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{hashes: map[string]map[string]string{}, kv: map[string]int64{}}
}

func (s *memStore) Ping(context.Context) error                                { return nil }
func (s *memStore) Close()                                                    {}
func (s *memStore) WaitForReady(context.Context, time.Duration) error         { return nil }
func (s *memStore) Expire(context.Context, string, time.Duration, bool) error { return nil }

func (s *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		h = map[string]string{}
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (s *memStore) HGet(_ context.Context, key, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.hashes[key][field]
	if !ok {
		return "", db.ErrKeyNotFound
	}
	return v, nil
}

func (s *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for k, v := range s.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = s.HGetAll(ctx, k)
	}
	return out, nil
}

func (s *memStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, key)
	delete(s.kv, key)
	return nil
}

func (s *memStore) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range s.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (s *memStore) IncrBy(_ context.Context, key string, val int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] += val
	return nil
}
