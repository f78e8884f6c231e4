package entity

import (
	"context"

	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
)

// Repository stores entity profiles.
type Repository interface {
	Put(ctx context.Context, e *domentity.Entity) error
	Get(ctx context.Context, id string) (domentity.Entity, error)
}

// UpsertInput is a profile write request.
type UpsertInput struct {
	Username string   `json:"username" validate:"required,max=64"`
	Traits   []string `json:"traits" validate:"max=64,dive,max=64"`
	FreeText string   `json:"freeText" validate:"max=4000"`
}
