package analyzer

import (
	"fmt"

	"github.com/mdlh-io/queryassist/pkg/models"
	"github.com/mdlh-io/queryassist/pkg/schemafilter"
)

// Replacement thresholds for preflight query rewriting. A best match below
// acceptable kills the suggested query; one between acceptable and
// confident is offered with a caveat.
const (
	confidentReplacementScore  = 0.6
	acceptableReplacementScore = 0.5
)

// TableCheck is one referenced table's preflight status.
type TableCheck struct {
	Table       string `json:"table"`
	Exists      bool   `json:"exists"`
	RowCount    int64  `json:"row_count"`
	Replacement string `json:"replacement,omitempty"`
}

// PreflightResult reports whether a query's entity tables exist before it
// is run, and proposes a rewritten query when confident replacements cover
// every missing table.
type PreflightResult struct {
	OK             bool                `json:"ok"`
	Checks         []TableCheck        `json:"checks"`
	Suggestions    []models.Suggestion `json:"suggestions,omitempty"`
	SuggestedQuery string              `json:"suggested_query,omitempty"`
}

// Preflight validates a query's entity-table references against the
// snapshot without executing it. An empty snapshot passes everything, same
// as availability gating. When a table is missing, the matcher proposes a
// replacement; a suggested query is built only when every missing table
// has a replacement scoring at least the acceptable threshold.
func (a *Analyzer) Preflight(sqlText string, snapshot models.SchemaSnapshot) PreflightResult {
	referenced := schemafilter.ExtractEntityTables(sqlText)
	result := PreflightResult{OK: true}
	if len(referenced) == 0 || snapshot.Empty() {
		return result
	}

	rewritten := sqlText
	allReplaced := true
	minScore := 1.0

	for _, table := range referenced {
		check := TableCheck{Table: table, Exists: snapshot.Has(table), RowCount: snapshot.RowCount(table)}
		if !check.Exists {
			result.OK = false
			matches := a.matcher.FindSimilar(table, snapshot.TableNames())
			if len(matches) > 0 && matches[0].Score >= acceptableReplacementScore {
				best := matches[0]
				check.Replacement = best.Name
				rewritten = ReplaceObject(rewritten, table, best.Name)
				if best.Score < minScore {
					minScore = best.Score
				}
				result.Suggestions = append(result.Suggestions, models.Suggestion{
					Type:        models.SuggestionTable,
					Title:       fmt.Sprintf("Use %s instead of %s", best.Name, table),
					Description: fmt.Sprintf("%s is not in the current schema; %s is the closest match (%s).", table, best.Name, best.Reason),
					Fix:         best.Name,
					Confidence:  best.Score,
					CanRun:      false,
				})
			} else {
				allReplaced = false
				result.Suggestions = append(result.Suggestions, checkOtherSchemasGuidance(table))
			}
		}
		result.Checks = append(result.Checks, check)
	}

	if !result.OK && allReplaced {
		result.SuggestedQuery = rewritten
		badge := ""
		if minScore < confidentReplacementScore {
			badge = "verify table mapping"
		}
		result.Suggestions = append(result.Suggestions, models.Suggestion{
			Type:        models.SuggestionRewrite,
			Title:       "Run against existing tables",
			Description: "Every missing table has a close match in this schema; this rewrite uses them.",
			Fix:         rewritten,
			Confidence:  minScore,
			CanRun:      true,
			Badge:       badge,
		})
	}

	models.SortSuggestions(result.Suggestions)
	return result
}
