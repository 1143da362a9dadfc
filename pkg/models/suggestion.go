package models

import "sort"

// SuggestionType classifies what a suggestion proposes.
type SuggestionType string

const (
	SuggestionTable   SuggestionType = "table"
	SuggestionColumn  SuggestionType = "column"
	SuggestionSyntax  SuggestionType = "syntax"
	SuggestionRewrite SuggestionType = "rewrite"
	SuggestionInfo    SuggestionType = "info"
)

// Suggestion is one actionable or informational fix proposal. Immutable
// after creation; a batch is always sorted before being returned.
type Suggestion struct {
	Type        SuggestionType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	// Fix is the rewritten SQL or replacement value; empty when the
	// suggestion is pure guidance.
	Fix        string  `json:"fix,omitempty"`
	Confidence float64 `json:"confidence"`
	CanRun     bool    `json:"can_run"`
	Badge      string  `json:"badge,omitempty"`
}

// IsGuidance reports whether the suggestion carries no runnable payload.
// Guidance suggestions are never auto-run by callers.
func (s Suggestion) IsGuidance() bool {
	return s.Fix == "" || !s.CanRun
}

// SortSuggestions orders a batch actionable-and-high-confidence first,
// pure guidance last. Sorting is stable so equal suggestions keep their
// generation order.
func SortSuggestions(suggestions []Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.CanRun != b.CanRun {
			return a.CanRun
		}
		return a.Confidence > b.Confidence
	})
}
