// Package similarity holds the deterministic trait-overlap heuristic.
package similarity

// Jaccard returns |a ∩ b| / |a ∪ b|.
// ok is false when both sets are empty: there is no basis for comparison and
// the pair must be skipped rather than scored as zero.
func Jaccard(a, b map[string]struct{}) (score float64, ok bool) {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for k := range small {
		if _, found := large[k]; found {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0, false
	}
	return float64(intersection) / float64(union), true
}
