package analyzer

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mdlh-io/queryassist/pkg/datasource"
	"github.com/mdlh-io/queryassist/pkg/logging"
	"github.com/mdlh-io/queryassist/pkg/match"
	"github.com/mdlh-io/queryassist/pkg/models"
)

// DefaultMaxProbes bounds how many candidate tables get a row-count probe
// per analysis.
const DefaultMaxProbes = 5

// Analyzer drives error recovery. The executor is optional; without one,
// data-availability fixes skip row-count probing and rank on match score
// alone.
type Analyzer struct {
	matcher    *match.Matcher
	executor   datasource.QueryExecutor
	logger     *zap.Logger
	probeCount bool
	maxProbes  int
}

// New builds an Analyzer. A nil matcher falls back to default scoring
// thresholds; executor and logger may be nil.
func New(matcher *match.Matcher, executor datasource.QueryExecutor, probeRowCounts bool, maxProbes int, logger *zap.Logger) *Analyzer {
	if matcher == nil {
		matcher = match.New(0, 0)
	}
	if maxProbes <= 0 {
		maxProbes = DefaultMaxProbes
	}
	return &Analyzer{
		matcher:    matcher,
		executor:   executor,
		logger:     logging.OrNop(logger),
		probeCount: probeRowCounts,
		maxProbes:  maxProbes,
	}
}

// Analysis is the result of analyzing one failed execution.
type Analysis struct {
	Category    Category            `json:"category"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Suggestions []models.Suggestion `json:"suggestions"`
	// SuggestedAction is the single best runnable fix, the "run this
	// instead?" prompt. Nil when only guidance is available.
	SuggestedAction *models.Suggestion `json:"suggested_action,omitempty"`
}

// Analyze classifies a raw execution error and generates recovery
// suggestions. It never returns an error: an unrecognized error shape
// degrades to a guidance-only or empty suggestion list.
func (a *Analyzer) Analyze(ctx context.Context, errorText, failedSQL string, snapshot models.SchemaSnapshot) Analysis {
	parsed := Parse(errorText)
	category, title, description := Classify(parsed)

	analysis := Analysis{Category: category, Title: title, Description: description}

	switch category {
	case CategorySyntax:
		switch {
		case parsed.FunctionName != "":
			analysis.Suggestions = functionFixes(parsed, failedSQL)
		case parsed.MissingColumn != "":
			analysis.Suggestions = columnFixes(parsed, failedSQL)
		default:
			analysis.Suggestions = []models.Suggestion{{
				Type:        models.SuggestionSyntax,
				Title:       "Review query syntax",
				Description: locationHint(parsed),
				Confidence:  0.2,
			}}
		}
	case CategoryDataAvailability:
		if parsed.MissingObject != "" {
			analysis.Suggestions = a.alternateTableFixes(ctx, parsed.MissingObject, failedSQL, snapshot)
		}
	case CategoryExecution:
		analysis.Suggestions = []models.Suggestion{{
			Type:        models.SuggestionInfo,
			Title:       "Retry with a narrower query",
			Description: "The query was canceled before completing. Add filters or a LIMIT to reduce the scanned data.",
			Confidence:  0.3,
		}}
	case CategoryAccess:
		analysis.Suggestions = []models.Suggestion{{
			Type:        models.SuggestionInfo,
			Title:       "Check role and grants",
			Description: description,
			Confidence:  0.3,
		}}
	}

	// alternateTableFixes already orders its batch data-present-first with
	// confidence as the tie-break; a plain confidence re-sort here would
	// rank an empty look-alike above a populated table.
	if category != CategoryDataAvailability {
		models.SortSuggestions(analysis.Suggestions)
	}
	for i := range analysis.Suggestions {
		if !analysis.Suggestions[i].CanRun || analysis.Suggestions[i].Fix == "" {
			continue
		}
		if a.probeCount && a.executor != nil && !a.ValidateRewrite(ctx, analysis.Suggestions[i].Fix) {
			continue
		}
		analysis.SuggestedAction = &analysis.Suggestions[i]
		break
	}
	return analysis
}

// ValidateRewrite executes a candidate fix and reports whether it succeeds
// and returns at least one row. Used to promote a rewrite to the suggested
// action only when it demonstrably works; execution failure just means the
// candidate stays in the ranked list.
func (a *Analyzer) ValidateRewrite(ctx context.Context, sqlText string) bool {
	if a.executor == nil {
		return true
	}
	result, err := a.executor.Execute(ctx, sqlText)
	if err != nil {
		a.logger.Debug("rewrite validation failed",
			zap.String("query", logging.SanitizeQuery(sqlText)),
			zap.String("error", logging.SanitizeError(err)))
		return false
	}
	return result.RowCount() > 0
}

// alternateTableFixes ranks existing tables similar to the missing one,
// optionally probing each candidate for actual data. Probe failures are
// swallowed: probing is best-effort, never fatal to fix generation.
func (a *Analyzer) alternateTableFixes(ctx context.Context, missing, failedSQL string, snapshot models.SchemaSnapshot) []models.Suggestion {
	matches := a.matcher.FindSimilar(missing, snapshot.TableNames())
	if len(matches) == 0 {
		return []models.Suggestion{checkOtherSchemasGuidance(missing)}
	}

	type rankedMatch struct {
		match.Match
		hasData bool
		probed  bool
	}
	ranked := make([]rankedMatch, len(matches))
	for i, m := range matches {
		ranked[i] = rankedMatch{Match: m, hasData: snapshot.RowCount(m.Name) > 0}
	}

	if a.probeCount && a.executor != nil {
		for i := range ranked {
			if i >= a.maxProbes {
				break
			}
			count, err := a.probeRowCount(ctx, ranked[i].Name)
			if err != nil {
				a.logger.Debug("row-count probe failed",
					zap.String("table", ranked[i].Name),
					zap.String("error", logging.SanitizeError(err)))
				continue
			}
			ranked[i].probed = true
			ranked[i].hasData = count > 0
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].hasData != ranked[j].hasData {
			return ranked[i].hasData
		}
		return ranked[i].Score > ranked[j].Score
	})

	anyData := false
	suggestions := make([]models.Suggestion, 0, len(ranked)+1)
	for _, r := range ranked {
		badge := ""
		if r.probed || snapshot.RowCount(r.Name) >= 0 {
			if r.hasData {
				badge = "has data"
				anyData = true
			} else {
				badge = "empty"
			}
		}
		suggestions = append(suggestions, models.Suggestion{
			Type:        models.SuggestionTable,
			Title:       fmt.Sprintf("Use %s instead", r.Name),
			Description: fmt.Sprintf("%s does not exist here; %s is the closest match (%s).", missing, r.Name, r.Reason),
			Fix:         ReplaceObject(failedSQL, missing, r.Name),
			Confidence:  r.Score,
			CanRun:      true,
			Badge:       badge,
		})
	}
	if !anyData {
		suggestions = append(suggestions, checkOtherSchemasGuidance(missing))
	}
	return suggestions
}

func (a *Analyzer) probeRowCount(ctx context.Context, table string) (int64, error) {
	result, err := a.executor.Execute(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s LIMIT 1", table))
	if err != nil {
		return 0, err
	}
	for _, row := range result.KeyedRows() {
		for _, v := range row {
			switch n := v.(type) {
			case int64:
				return n, nil
			case int:
				return int64(n), nil
			case float64:
				return int64(n), nil
			}
		}
	}
	return 0, nil
}

func checkOtherSchemasGuidance(missing string) models.Suggestion {
	return models.Suggestion{
		Type:        models.SuggestionInfo,
		Title:       "Check other schemas",
		Description: fmt.Sprintf("No table similar to %s holds data in this schema. The entity may live in a different database or schema.", missing),
		Confidence:  0.2,
	}
}

func locationHint(parsed ParsedError) string {
	if parsed.Line > 0 {
		return fmt.Sprintf("The statement could not be parsed (line %d, position %d).", parsed.Line, parsed.Position)
	}
	return "The statement could not be parsed."
}
