package match

import (
	"encoding/json"
	"fmt"
	"time"

	dommatch "github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// record is the stored JSON form of one match result.
type record struct {
	ID                   string                           `json:"id"`
	SubjectID            string                           `json:"subjectId"`
	CandidateID          string                           `json:"candidateId"`
	CandidateName        string                           `json:"candidateName"`
	HeuristicScore       float64                          `json:"heuristicScore"`
	OracleScore          float64                          `json:"oracleScore"`
	FinalScore           float64                          `json:"finalScore"`
	Summary              string                           `json:"summary"`
	ConversationStarters []string                         `json:"conversationStarters,omitempty"`
	SimilarFeatures      map[string]dommatch.FeatureScore `json:"similarFeatures,omitempty"`
	ComputedAt           int64                            `json:"computedAt"`
}

func toRecord(r *dommatch.Result) record {
	return record{
		ID:                   r.ID(),
		SubjectID:            r.SubjectID(),
		CandidateID:          r.CandidateID(),
		CandidateName:        r.CandidateName(),
		HeuristicScore:       r.HeuristicScore(),
		OracleScore:          r.OracleScore(),
		FinalScore:           r.FinalScore(),
		Summary:              r.Summary(),
		ConversationStarters: r.ConversationStarters(),
		SimilarFeatures:      r.SimilarFeatures(),
		ComputedAt:           r.ComputedAt().UnixMilli(),
	}
}

func (rec record) toDomain() dommatch.Result {
	return dommatch.Reconstruct(
		rec.SubjectID, rec.CandidateID, rec.CandidateName,
		rec.HeuristicScore, rec.OracleScore, rec.FinalScore,
		rec.Summary, rec.ConversationStarters, rec.SimilarFeatures,
		time.UnixMilli(rec.ComputedAt).UTC(),
	)
}

// buildHashFields maps each result to a hash field keyed by candidate ID.
func buildHashFields(results []dommatch.Result) (map[string]string, error) {
	fields := make(map[string]string, len(results))
	for i := range results {
		data, err := json.Marshal(toRecord(&results[i]))
		if err != nil {
			return nil, fmt.Errorf("marshal match %s: %w", results[i].ID(), err)
		}
		fields[results[i].CandidateID()] = string(data)
	}
	return fields, nil
}

func parseRecord(raw string) (dommatch.Result, error) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return dommatch.Result{}, err
	}
	return rec.toDomain(), nil
}
