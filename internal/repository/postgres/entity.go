package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
)

// EntityRepo stores entities in the entities table.
type EntityRepo struct {
	db *gorm.DB
}

// NewEntityRepo creates an entity repository.
func NewEntityRepo(d *DB) *EntityRepo {
	return &EntityRepo{db: d.gorm}
}

// Put upserts the entity.
func (r *EntityRepo) Put(ctx context.Context, e *domentity.Entity) error {
	row := entityToRow(e)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert entity %s: %w", e.ID(), err)
	}
	return nil
}

// Get returns an entity by ID.
func (r *EntityRepo) Get(ctx context.Context, id string) (domentity.Entity, error) {
	var row entityRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domentity.Entity{}, domain.ErrNotFound
		}
		return domentity.Entity{}, fmt.Errorf("get entity %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// All returns the whole population ordered by ID.
func (r *EntityRepo) All(ctx context.Context) ([]domentity.Entity, error) {
	var rows []entityRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	out := make([]domentity.Entity, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
