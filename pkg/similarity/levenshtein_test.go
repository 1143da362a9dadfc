package similarity

import (
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		s1, s2   string
		expected int
	}{
		{"identical", "TABLE_ENTITY", "TABLE_ENTITY", 0},
		{"empty to word", "", "VIEW", 4},
		{"word to empty", "VIEW", "", 4},
		{"single substitution", "TABLE", "CABLE", 1},
		{"insertion", "VIEW", "VIEWS", 1},
		{"unrelated", "abc", "xyz", 3},
		{"transposed chars count as two edits", "FORM", "FROM", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevenshteinDistance(tt.s1, tt.s2); got != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, expected %d", tt.s1, tt.s2, got, tt.expected)
			}
		})
	}
}

func TestNormalizedSimilarity(t *testing.T) {
	if got := NormalizedSimilarity("", ""); got != 1.0 {
		t.Errorf("empty strings should be identical, got %f", got)
	}
	if got := NormalizedSimilarity("TABLE", "TABLE"); got != 1.0 {
		t.Errorf("identical strings should score 1.0, got %f", got)
	}
	// One edit over five characters.
	if got := NormalizedSimilarity("TABLE", "CABLE"); got != 0.8 {
		t.Errorf("expected 0.8, got %f", got)
	}
	if got := NormalizedSimilarity("abc", "xyz"); got != 0.0 {
		t.Errorf("disjoint equal-length strings should score 0, got %f", got)
	}
}
