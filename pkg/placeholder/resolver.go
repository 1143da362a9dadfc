package placeholder

import (
	"fmt"
	"regexp"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/mdlh-io/queryassist/pkg/apperrors"
	"github.com/mdlh-io/queryassist/pkg/cache"
	"github.com/mdlh-io/queryassist/pkg/models"
)

// curlyTokenRegex matches {{TOKEN}} placeholders in SQL templates.
// Token names must start with a letter or underscore, followed by any
// number of alphanumeric characters or underscores.
var curlyTokenRegex = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)

// angleTokenRegex matches <TOKEN> placeholders. The closing bracket must
// immediately follow the token name, so SQL comparisons like "a < b" never
// match.
var angleTokenRegex = regexp.MustCompile(`<([a-zA-Z_]\w*)>`)

// fqnTokenRegex matches the canonical {{DATABASE}}.{{SCHEMA}}.{{TABLE}}
// pattern that the safe filler collapses into one quoted name.
var fqnTokenRegex = regexp.MustCompile(`\{\{DATABASE\}\}\.\{\{SCHEMA\}\}\.\{\{TABLE\}\}`)

// bareIdentRegex matches identifiers that need no quoting in the target
// dialect: letter or underscore followed by word characters.
var bareIdentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Resolver fills placeholder tokens in SQL templates. It is a pure
// function of its inputs; the optional cache is read but never written.
type Resolver struct {
	registry *Registry
	cache    *cache.SuggestionCache
}

// NewResolver creates a resolver over the given registry. valueCache is
// optional; when present, discovered values fill placeholders the context
// and samples cannot.
func NewResolver(registry *Registry, valueCache *cache.SuggestionCache) *Resolver {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Resolver{registry: registry, cache: valueCache}
}

// ExtractTokens finds all {{TOKEN}} and <TOKEN> placeholders in a template
// and returns a deduplicated list of token names in order of first
// appearance.
func ExtractTokens(template string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, re := range []*regexp.Regexp{curlyTokenRegex, angleTokenRegex} {
		for _, match := range re.FindAllStringSubmatch(template, -1) {
			name := match[1]
			if !seen[name] {
				seen[name] = true
				tokens = append(tokens, name)
			}
		}
	}
	return tokens
}

// HasUnresolved reports whether the string still contains placeholder
// tokens of either syntax.
func HasUnresolved(sqlText string) bool {
	return curlyTokenRegex.MatchString(sqlText) || angleTokenRegex.MatchString(sqlText)
}

// Fill substitutes raw values for every placeholder in the template.
// Intended for human copy/paste; values are not quoted or escaped.
//
// Resolution order per token: explicit context value, then the sample
// entity row for the token's kind, then a cached discovered value, then a
// bracketed <TOKEN> stub marking the template as not yet runnable.
func (r *Resolver) Fill(template string, ctx models.EntityContext, samples models.SampleEntities) string {
	return r.fill(template, ctx, samples, false)
}

// FillSafe substitutes quoted, escaped values. When database, schema and
// table are all resolvable the canonical {{DATABASE}}.{{SCHEMA}}.{{TABLE}}
// pattern is first collapsed into one fully-quoted qualified name; all
// other string values become escaped literals and are never concatenated
// raw into the SQL.
func (r *Resolver) FillSafe(template string, ctx models.EntityContext, samples models.SampleEntities) string {
	if fqn, ok := BuildTableFQN(ctx); ok {
		template = fqnTokenRegex.ReplaceAllLiteralString(template, fqn)
	}
	return r.fill(template, ctx, samples, true)
}

// FillExecutable is FillSafe with a strict contract: it fails instead of
// stubbing when the template cannot be made runnable from the given
// context.
func (r *Resolver) FillExecutable(template string, ctx models.EntityContext, samples models.SampleEntities) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", apperrors.ErrEmptyTemplate
	}
	filled := r.FillSafe(template, ctx, samples)
	if HasUnresolved(filled) {
		return "", fmt.Errorf("%w: %s", apperrors.ErrContextIncomplete,
			strings.Join(ExtractTokens(filled), ", "))
	}
	return filled, nil
}

// CheckValue reports whether a caller-supplied value is safe to embed as a
// SQL literal.
func CheckValue(value string) error {
	if isSQLi, _ := libinjection.IsSQLi(value); isSQLi {
		return apperrors.ErrUnsafeValue
	}
	return nil
}

func (r *Resolver) fill(template string, ctx models.EntityContext, samples models.SampleEntities, safe bool) string {
	replace := func(token string) string {
		value, def, ok := r.resolve(token, ctx, samples)
		if !ok {
			return "<" + strings.ToUpper(token) + ">"
		}
		if !safe {
			return value
		}
		return renderSafe(value, def, token)
	}

	out := curlyTokenRegex.ReplaceAllStringFunc(template, func(match string) string {
		return replace(curlyTokenRegex.FindStringSubmatch(match)[1])
	})
	out = angleTokenRegex.ReplaceAllStringFunc(out, func(match string) string {
		return replace(angleTokenRegex.FindStringSubmatch(match)[1])
	})
	return out
}

// resolve finds a concrete value for one token. The returned Definition is
// zero-valued when the token has no registry entry.
func (r *Resolver) resolve(token string, ctx models.EntityContext, samples models.SampleEntities) (string, Definition, bool) {
	def, known := r.registry.Lookup(token)

	// Explicit context wins. A value that is itself placeholder syntax is
	// treated as absent.
	if known && def.ContextField != "" {
		if v, ok := ctx.Get(def.ContextField); ok && !HasUnresolved(v) {
			return v, def, true
		}
	}
	if !known {
		// Unregistered tokens still honor a context field spelled the
		// same way, so ad-hoc templates keep working.
		for field, v := range ctx {
			if strings.EqualFold(string(field), token) && v != "" && !HasUnresolved(v) {
				return v, Definition{Class: ClassLiteral}, true
			}
		}
		return "", Definition{}, false
	}

	// A representative sample row supplies a guaranteed-real value.
	if def.SampleKind != "" {
		for _, col := range def.SampleColumns {
			if v, ok := samples.Field(def.SampleKind, col); ok {
				return v, def, true
			}
		}
	}

	// Cached discovered values, scoped to the context's database/schema.
	if r.cache != nil {
		db, _ := ctx.Get(models.FieldDatabase)
		schema, _ := ctx.Get(models.FieldSchema)
		if values, ok := r.cache.Get(cache.Key(string(def.Kind), db, schema)); ok && len(values) > 0 {
			return values[0], def, true
		}
	}

	if len(def.Static) > 0 {
		return def.Static[0], def, true
	}

	return "", def, false
}

// renderSafe quotes a resolved value according to its kind's class. A
// literal that fingerprints as SQL injection is refused and degrades to a
// stub, same as an unresolvable token.
func renderSafe(value string, def Definition, token string) string {
	switch def.Class {
	case ClassIdentifier:
		return QuoteIdentifier(value)
	case ClassNumber:
		if isNumeric(value) {
			return value
		}
		return "<" + strings.ToUpper(token) + ">"
	default:
		if CheckValue(value) != nil {
			return "<" + strings.ToUpper(token) + ">"
		}
		return QuoteLiteral(value)
	}
}

// BuildTableFQN builds the fully-quoted database.schema.table name from
// context. Returns false when any of the three identifiers is missing.
func BuildTableFQN(ctx models.EntityContext) (string, bool) {
	db, okDB := ctx.Get(models.FieldDatabase)
	schema, okSchema := ctx.Get(models.FieldSchema)
	table, okTable := ctx.Get(models.FieldTable)
	if !okDB || !okSchema || !okTable {
		return "", false
	}
	if HasUnresolved(db) || HasUnresolved(schema) || HasUnresolved(table) {
		return "", false
	}
	return fmt.Sprintf("%s.%s.%s",
		QuoteIdentifier(db), QuoteIdentifier(schema), QuoteIdentifier(table)), true
}

// QuoteIdentifier quotes a SQL identifier when it contains characters
// outside the bare-identifier shape. Embedded double quotes are doubled.
func QuoteIdentifier(name string) string {
	if bareIdentRegex.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral renders a single-quoted SQL string literal with embedded
// quotes doubled.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
