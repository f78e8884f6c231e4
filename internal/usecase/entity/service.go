// Package entity manages matchable profiles.
package entity

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
)

// Service handles profile reads and writes.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// New creates a Service.
func New(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Upsert writes the caller's own profile. Writing another entity's profile is forbidden.
func (s *Service) Upsert(ctx context.Context, callerID, id string, in UpsertInput) (domentity.Entity, error) {
	if callerID == "" {
		return domentity.Entity{}, domain.ErrUnauthenticated
	}
	if id != callerID {
		return domentity.Entity{}, fmt.Errorf("write profile %s as %s: %w", id, callerID, domain.ErrForbidden)
	}
	if err := s.validate.Struct(in); err != nil {
		return domentity.Entity{}, fmt.Errorf("%w: %w", domain.ErrInvalidEntity, err)
	}

	e, err := domentity.New(id, in.Username, in.Traits, in.FreeText)
	if err != nil {
		return domentity.Entity{}, fmt.Errorf("%w: %w", domain.ErrInvalidEntity, err)
	}
	if err := s.repo.Put(ctx, &e); err != nil {
		return domentity.Entity{}, fmt.Errorf("put entity %s: %w", id, err)
	}
	return e, nil
}

// Seed writes a profile without the caller check. Used by the seed command.
func (s *Service) Seed(ctx context.Context, id string, in UpsertInput) (domentity.Entity, error) {
	return s.Upsert(ctx, id, id, in)
}

// Get returns a profile by ID.
func (s *Service) Get(ctx context.Context, id string) (domentity.Entity, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return domentity.Entity{}, fmt.Errorf("get entity %s: %w", id, err)
	}
	return e, nil
}
