package entity

import (
	"encoding/json"
	"fmt"

	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
)

// Hash field names for an entity record.
const (
	fieldUsername = "username"
	fieldTraits   = "traits"
	fieldFreeText = "free_text"
)

// buildHashFields converts a domain Entity into a flat map for HSET.
func buildHashFields(e *domentity.Entity) (map[string]string, error) {
	traits := e.Traits()
	if traits == nil {
		traits = []string{}
	}
	raw, err := json.Marshal(traits)
	if err != nil {
		return nil, fmt.Errorf("marshal traits: %w", err)
	}
	return map[string]string{
		fieldUsername: e.Username(),
		fieldTraits:   string(raw),
		fieldFreeText: e.FreeText(),
	}, nil
}

// parseHashFields converts an HGETALL result back into a domain Entity.
func parseHashFields(id string, m map[string]string) (domentity.Entity, error) {
	var traits []string
	if raw := m[fieldTraits]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &traits); err != nil {
			return domentity.Entity{}, fmt.Errorf("entity %s: parse traits: %w", id, err)
		}
	}
	return domentity.Reconstruct(id, m[fieldUsername], traits, m[fieldFreeText]), nil
}
