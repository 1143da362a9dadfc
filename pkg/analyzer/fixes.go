package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdlh-io/queryassist/pkg/models"
)

// castRewrites maps conversion functions that choke on VARIANT arguments to
// the cast that handles them. TO_TIMESTAMP(col) becomes col::TIMESTAMP.
var castRewrites = map[string]string{
	"TO_TIMESTAMP": "TIMESTAMP",
	"TO_DATE":      "DATE",
	"TO_NUMBER":    "NUMBER",
	"TO_VARCHAR":   "VARCHAR",
	"TO_BOOLEAN":   "BOOLEAN",
}

// resolveKnownFunction matches a possibly-truncated function name from an
// error message against the rewrite set. Error messages cut long names
// short, so a prefix match of at least four characters is accepted.
func resolveKnownFunction(name string) (string, string, bool) {
	upper := strings.ToUpper(name)
	if cast, ok := castRewrites[upper]; ok {
		return upper, cast, true
	}
	if len(upper) < 4 {
		return "", "", false
	}
	for fn, cast := range castRewrites {
		if strings.HasPrefix(fn, upper) {
			return fn, cast, true
		}
	}
	return "", "", false
}

// RewriteFunctionCast rewrites FUNC(expr) to expr::CAST for a known
// conversion function. Returns the input unchanged and false when the
// function does not appear as a call in the SQL.
func RewriteFunctionCast(sqlText, function, cast string) (string, bool) {
	callPattern := regexp.MustCompile(
		`(?i)\b` + regexp.QuoteMeta(function) + `\s*\(\s*([A-Za-z_"][\w".]*)\s*\)`)
	if !callPattern.MatchString(sqlText) {
		return sqlText, false
	}
	return callPattern.ReplaceAllString(sqlText, "$1::"+cast), true
}

// RemoveProjectionColumn drops an identifier from the SELECT list and
// cleans the dangling comma it leaves behind. Returns the input unchanged
// and false when the identifier is not in the projection.
func RemoveProjectionColumn(sqlText, column string) (string, bool) {
	quoted := regexp.QuoteMeta(column)

	// Trailing comma first ("col," or "t.col,"), then a leading comma for
	// the last projection entry (", col"). Both forms anchor on a word
	// boundary so the column cannot match inside a longer identifier.
	withComma := regexp.MustCompile(`(?i)\b(?:[A-Za-z_][\w]*\.)?` + quoted + `\s*,\s*`)
	if withComma.MatchString(sqlText) {
		return withComma.ReplaceAllString(sqlText, ""), true
	}
	leadingComma := regexp.MustCompile(`(?i),\s*(?:[A-Za-z_][\w]*\.)?` + quoted + `\b`)
	if leadingComma.MatchString(sqlText) {
		return leadingComma.ReplaceAllString(sqlText, ""), true
	}
	return sqlText, false
}

// ReplaceObject substitutes every reference to one object name with
// another, case-insensitively on word boundaries.
func ReplaceObject(sqlText, from, to string) string {
	pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(from) + `\b`)
	return pattern.ReplaceAllString(sqlText, to)
}

// functionFixes builds suggestions for an invalid-argument-types error. A
// recognized conversion function gets a high-confidence cast rewrite; an
// unrecognized one gets guidance only.
func functionFixes(parsed ParsedError, failedSQL string) []models.Suggestion {
	function, cast, known := resolveKnownFunction(parsed.FunctionName)
	if known {
		if rewritten, ok := RewriteFunctionCast(failedSQL, function, cast); ok {
			return []models.Suggestion{{
				Type:  models.SuggestionRewrite,
				Title: fmt.Sprintf("Cast instead of %s()", function),
				Description: fmt.Sprintf(
					"%s does not accept this argument type; a %s cast handles it.", function, cast),
				Fix:        rewritten,
				Confidence: 0.9,
				CanRun:     true,
			}}
		}
	}
	return []models.Suggestion{{
		Type:  models.SuggestionInfo,
		Title: "Check function argument types",
		Description: fmt.Sprintf(
			"%s was called with an incompatible argument type (%s). Cast the argument explicitly.",
			parsed.FunctionName, parsed.ArgTypes),
		Confidence: 0.3,
	}}
}

// columnFixes builds suggestions for an invalid-identifier error: a fix
// that drops the column from the projection plus a guidance note.
func columnFixes(parsed ParsedError, failedSQL string) []models.Suggestion {
	var suggestions []models.Suggestion
	if rewritten, ok := RemoveProjectionColumn(failedSQL, parsed.MissingColumn); ok {
		suggestions = append(suggestions, models.Suggestion{
			Type:        models.SuggestionColumn,
			Title:       fmt.Sprintf("Remove %s from the query", parsed.MissingColumn),
			Description: "The column does not exist on the referenced table; the query runs without it.",
			Fix:         rewritten,
			Confidence:  0.7,
			CanRun:      true,
		})
	}
	suggestions = append(suggestions, models.Suggestion{
		Type:        models.SuggestionInfo,
		Title:       "Check available columns",
		Description: fmt.Sprintf("%q is not a column on the referenced table. DESCRIBE TABLE lists what is.", parsed.MissingColumn),
		Confidence:  0.4,
	})
	return suggestions
}
