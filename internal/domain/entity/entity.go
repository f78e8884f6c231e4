package entity

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Limits for profile fields.
const (
	MaxIDLength       = 128
	MaxTraits         = 64
	MaxTraitLength    = 64
	MaxFreeTextLength = 4000
)

// Entity is a matchable profile (immutable value object).
type Entity struct {
	id       string
	username string
	traits   []string
	freeText string
}

// New validates and creates an Entity.
// Traits are trimmed, NFC-normalized and de-duplicated; order of first appearance is kept.
func New(id, username string, traits []string, freeText string) (Entity, error) {
	if id == "" {
		return Entity{}, fmt.Errorf("entity ID is required")
	}
	if len(id) > MaxIDLength {
		return Entity{}, fmt.Errorf("entity ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Entity{}, fmt.Errorf("entity ID must be alphanumeric with underscores and hyphens")
	}
	if len(freeText) > MaxFreeTextLength {
		return Entity{}, fmt.Errorf("free text too long (max %d bytes)", MaxFreeTextLength)
	}

	normalized := NormalizeTraits(traits)
	if len(normalized) > MaxTraits {
		return Entity{}, fmt.Errorf("too many traits (max %d)", MaxTraits)
	}
	for _, t := range normalized {
		if len(t) > MaxTraitLength {
			return Entity{}, fmt.Errorf("trait %q too long (max %d bytes)", t, MaxTraitLength)
		}
	}

	return Entity{
		id:       id,
		username: strings.TrimSpace(username),
		traits:   normalized,
		freeText: freeText,
	}, nil
}

// Reconstruct creates an Entity without validation (storage hydration).
func Reconstruct(id, username string, traits []string, freeText string) Entity {
	return Entity{id: id, username: username, traits: traits, freeText: freeText}
}

// NormalizeTraits trims, NFC-normalizes and de-duplicates trait labels.
// Empty labels are dropped. Matching stays case-sensitive.
func NormalizeTraits(traits []string) []string {
	out := make([]string, 0, len(traits))
	seen := make(map[string]struct{}, len(traits))
	for _, t := range traits {
		t = norm.NFC.String(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ID returns the entity identifier.
func (e *Entity) ID() string { return e.id }

// Username returns the display name.
func (e *Entity) Username() string { return e.username }

// Traits returns the trait labels.
func (e *Entity) Traits() []string { return e.traits }

// FreeText returns the entity's own description.
func (e *Entity) FreeText() string { return e.freeText }

// TraitSet returns the traits as a set.
func (e *Entity) TraitSet() map[string]struct{} {
	set := make(map[string]struct{}, len(e.traits))
	for _, t := range e.traits {
		set[t] = struct{}{}
	}
	return set
}
