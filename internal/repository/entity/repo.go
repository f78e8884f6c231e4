// Package entity stores matchable profiles as Redis hashes.
package entity

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
)

// store is the consumer interface for entities (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the entity reader and writer on a hash store.
type Repo struct {
	store store
}

// New creates an entity repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put writes the entity, replacing any previous version.
func (r *Repo) Put(ctx context.Context, e *domentity.Entity) error {
	fields, err := buildHashFields(e)
	if err != nil {
		return err
	}
	key := entityKey(e.ID())
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns an entity by ID.
func (r *Repo) Get(ctx context.Context, id string) (domentity.Entity, error) {
	key := entityKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domentity.Entity{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domentity.Entity{}, domain.ErrNotFound
	}
	return parseHashFields(id, m)
}

// All returns the whole population ordered by ID.
// The order is stable across calls so heuristic ties break the same way.
func (r *Repo) All(ctx context.Context) ([]domentity.Entity, error) {
	keys, err := r.store.Scan(ctx, entityKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan entities: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall entities: %w", err)
	}

	out := make([]domentity.Entity, 0, len(keys))
	for i, m := range hashes {
		// deleted between SCAN and HGETALL
		if len(m) == 0 {
			continue
		}
		e, err := parseHashFields(strings.TrimPrefix(keys[i], keyPrefix()), m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func keyPrefix() string {
	return domain.KeyPrefix + "entity:"
}

func entityKey(id string) string {
	return keyPrefix() + id
}
