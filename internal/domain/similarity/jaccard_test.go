package similarity

import (
	"math"
	"testing"
)

func set(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name   string
		a, b   map[string]struct{}
		want   float64
		wantOK bool
	}{
		{"identical", set("storyteller", "night owl"), set("night owl", "storyteller"), 1, true},
		{"disjoint", set("a", "b"), set("c", "d"), 0, true},
		{"one third", set("storyteller", "night owl"), set("night owl", "observer"), 1.0 / 3.0, true},
		{"one side empty", set("a"), set(), 0, true},
		{"both empty", set(), set(), 0, false},
		{"nil sets", nil, nil, 0, false},
		{"subset", set("a", "b", "c", "d"), set("a", "b"), 0.5, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Jaccard(tc.a, tc.b)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	a := set("x", "y", "z")
	b := set("y", "q")
	ab, _ := Jaccard(a, b)
	ba, _ := Jaccard(b, a)
	if ab != ba {
		t.Errorf("Jaccard not symmetric: %v vs %v", ab, ba)
	}
}
