package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/matchmaker/internal/db"
	"github.com/kailas-cloud/matchmaker/internal/domain"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
)

// --- Put ---

func TestPut_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	e := domentity.Reconstruct("u1", "Ada", []string{"go", "chess"}, "I like puzzles")

	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey, gotFields = key, fields
		return nil
	}

	if err := repo.Put(context.Background(), &e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "matchmaker:entity:u1" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	want := map[string]string{
		"username":  "Ada",
		"traits":    `["go","chess"]`,
		"free_text": "I like puzzles",
	}
	if diff := cmp.Diff(want, gotFields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestPut_NilTraitsStoredAsEmptyArray(t *testing.T) {
	repo, ms := newTestRepo(t)
	e := domentity.Reconstruct("u1", "Ada", nil, "")

	ms.hsetFn = func(_ context.Context, _ string, fields map[string]string) error {
		if fields["traits"] != "[]" {
			t.Errorf("expected [] for nil traits, got %s", fields["traits"])
		}
		return nil
	}
	if err := repo.Put(context.Background(), &e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPut_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	e := domentity.Reconstruct("u1", "Ada", nil, "")

	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error {
		return &db.Error{Op: db.OpHSet, Err: errors.New("READONLY")}
	}
	err := repo.Put(context.Background(), &e)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "matchmaker:entity:u1" {
			t.Errorf("unexpected key: %s", key)
		}
		return map[string]string{
			"username":  "Ada",
			"traits":    `["go","chess"]`,
			"free_text": "hi",
		}, nil
	}

	e, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID() != "u1" || e.Username() != "Ada" || e.FreeText() != "hi" {
		t.Errorf("unexpected entity: %+v", e)
	}
	if diff := cmp.Diff([]string{"go", "chess"}, e.Traits()); diff != "" {
		t.Errorf("traits mismatch (-want +got):\n%s", diff)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_CorruptTraits(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{"username": "Ada", "traits": "not-json"}, nil
	}

	if _, err := repo.Get(context.Background(), "u1"); err == nil {
		t.Fatal("expected parse error")
	}
}

// --- All ---

func TestAll_SortedAndSkipsVanished(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "matchmaker:entity:*" {
			t.Errorf("unexpected pattern: %s", pattern)
		}
		return []string{"matchmaker:entity:c", "matchmaker:entity:a", "matchmaker:entity:b"}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		want := []string{"matchmaker:entity:a", "matchmaker:entity:b", "matchmaker:entity:c"}
		if diff := cmp.Diff(want, keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		return []map[string]string{
			{"username": "A", "traits": `["x"]`},
			{},
			{"username": "C", "traits": `["y"]`},
		}, nil
	}

	all, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(all))
	}
	if all[0].ID() != "a" || all[1].ID() != "c" {
		t.Errorf("unexpected order: %s, %s", all[0].ID(), all[1].ID())
	}
}

func TestAll_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		t.Fatal("HGetAllMulti must not be called for an empty keyspace")
		return nil, nil
	}

	all, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty population, got %d", len(all))
	}
}

func TestAll_ScanError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		return nil, errors.New("LOADING")
	}

	if _, err := repo.All(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
