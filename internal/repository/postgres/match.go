package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	dommatch "github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// MatchRepo persists match results in the matches table.
type MatchRepo struct {
	db *gorm.DB
}

// NewMatchRepo creates a match repository.
func NewMatchRepo(d *DB) *MatchRepo {
	return &MatchRepo{db: d.gorm}
}

// Save upserts the batch in one transaction keyed by (subject, candidate).
// An empty batch performs no write.
func (r *MatchRepo) Save(ctx context.Context, subjectID string, results []dommatch.Result) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	rows := make([]matchRow, 0, len(results))
	for i := range results {
		rows = append(rows, matchToRow(&results[i]))
	}
	rows = dedupeRows(rows)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_id"}, {Name: "candidate_id"}},
			UpdateAll: true,
		}).Create(&rows).Error
	})
	if err != nil {
		return 0, fmt.Errorf("%w: upsert matches for %s: %w", domain.ErrPersistence, subjectID, err)
	}
	return len(rows), nil
}

// List returns the subject's stored matches, best first.
func (r *MatchRepo) List(ctx context.Context, subjectID string) ([]dommatch.Result, error) {
	var rows []matchRow
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("final_score DESC").Order("candidate_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list matches for %s: %w", subjectID, err)
	}
	out := make([]dommatch.Result, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
