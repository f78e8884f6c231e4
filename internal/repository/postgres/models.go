package postgres

import (
	"time"

	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
	dommatch "github.com/kailas-cloud/matchmaker/internal/domain/match"
)

type entityRow struct {
	ID        string   `gorm:"primaryKey;size:128"`
	Username  string   `gorm:"size:255"`
	Traits    []string `gorm:"serializer:json"`
	FreeText  string   `gorm:"type:text"`
	UpdatedAt time.Time
}

func (entityRow) TableName() string { return "entities" }

type matchRow struct {
	SubjectID            string                           `gorm:"primaryKey;size:128"`
	CandidateID          string                           `gorm:"primaryKey;size:128"`
	MatchID              string                           `gorm:"size:300"`
	CandidateName        string                           `gorm:"size:255"`
	HeuristicScore       float64
	OracleScore          float64
	FinalScore           float64 `gorm:"index"`
	Summary              string  `gorm:"type:text"`
	ConversationStarters []string                         `gorm:"serializer:json"`
	SimilarFeatures      map[string]dommatch.FeatureScore `gorm:"serializer:json"`
	ComputedAt           time.Time
}

func (matchRow) TableName() string { return "matches" }

func entityToRow(e *domentity.Entity) entityRow {
	return entityRow{
		ID:       e.ID(),
		Username: e.Username(),
		Traits:   e.Traits(),
		FreeText: e.FreeText(),
	}
}

func (r *entityRow) toDomain() domentity.Entity {
	return domentity.Reconstruct(r.ID, r.Username, r.Traits, r.FreeText)
}

func matchToRow(m *dommatch.Result) matchRow {
	return matchRow{
		SubjectID:            m.SubjectID(),
		CandidateID:          m.CandidateID(),
		MatchID:              m.ID(),
		CandidateName:        m.CandidateName(),
		HeuristicScore:       m.HeuristicScore(),
		OracleScore:          m.OracleScore(),
		FinalScore:           m.FinalScore(),
		Summary:              m.Summary(),
		ConversationStarters: m.ConversationStarters(),
		SimilarFeatures:      m.SimilarFeatures(),
		ComputedAt:           m.ComputedAt(),
	}
}

func (r *matchRow) toDomain() dommatch.Result {
	return dommatch.Reconstruct(
		r.SubjectID, r.CandidateID, r.CandidateName,
		r.HeuristicScore, r.OracleScore, r.FinalScore,
		r.Summary, r.ConversationStarters, r.SimilarFeatures,
		r.ComputedAt.UTC(),
	)
}

// dedupeRows keeps the last row per candidate, in first-appearance order.
// A single INSERT ... ON CONFLICT cannot touch the same row twice.
func dedupeRows(rows []matchRow) []matchRow {
	pos := make(map[string]int, len(rows))
	out := make([]matchRow, 0, len(rows))
	for _, r := range rows {
		if i, ok := pos[r.CandidateID]; ok {
			out[i] = r
			continue
		}
		pos[r.CandidateID] = len(out)
		out = append(out, r)
	}
	return out
}
