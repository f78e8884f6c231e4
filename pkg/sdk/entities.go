package matchmaker

import (
	"context"
	"fmt"
	"time"

	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
	entityuc "github.com/kailas-cloud/matchmaker/internal/usecase/entity"
)

// EntityService reads and writes profiles. The SDK is trusted: any profile may be written.
type EntityService struct {
	svc entityUseCase
	obs *observer
}

// Put creates or replaces a profile and returns it as stored
// (traits trimmed, NFC-normalized and de-duplicated).
func (s *EntityService) Put(ctx context.Context, e Entity) (_ Entity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("entity_put", start, err, "entity_id", e.ID) }()

	stored, err := s.svc.Seed(ctx, e.ID, entityuc.UpsertInput{
		Username: e.Username,
		Traits:   e.Traits,
		FreeText: e.FreeText,
	})
	if err != nil {
		return Entity{}, fmt.Errorf("put entity: %w", err)
	}
	return entityFromDomain(&stored), nil
}

// Get returns a profile. Missing profiles yield ErrNotFound.
func (s *EntityService) Get(ctx context.Context, id string) (_ Entity, err error) {
	start := time.Now()
	defer func() { s.obs.observe("entity_get", start, err, "entity_id", id) }()

	e, err := s.svc.Get(ctx, id)
	if err != nil {
		return Entity{}, fmt.Errorf("get entity: %w", err)
	}
	return entityFromDomain(&e), nil
}

func entityFromDomain(e *domentity.Entity) Entity {
	return Entity{
		ID:       e.ID(),
		Username: e.Username(),
		Traits:   e.Traits(),
		FreeText: e.FreeText(),
	}
}
