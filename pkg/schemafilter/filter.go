// Package schemafilter decides whether a query template can execute given
// the tables actually present in the target schema.
//
// Table reference extraction is a best-effort heuristic over the catalog's
// naming convention, not a SQL parser. A table referenced only through a
// computed or aliased expression will not be detected.
package schemafilter

import (
	"regexp"
	"strings"

	"github.com/mdlh-io/queryassist/pkg/models"
	"github.com/mdlh-io/queryassist/pkg/placeholder"
	"github.com/mdlh-io/queryassist/pkg/similarity"
)

var (
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentPattern  = regexp.MustCompile(`(?m)--.*?$`)

	// Fully qualified: database.schema.table after FROM/JOIN.
	fullTablePattern = regexp.MustCompile(
		`(?i)(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)`)

	// schema.table with no database.
	partialTablePattern = regexp.MustCompile(
		`(?i)(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)(?:[^.A-Za-z0-9_]|$)`)

	// Bare table name after FROM/JOIN.
	bareTablePattern = regexp.MustCompile(
		`(?i)(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_]*)(?:[^.A-Za-z0-9_]|$)`)

	// Entity tables referenced as a bare word anywhere in the statement,
	// e.g. inside a subquery hint or a UNION branch the FROM patterns
	// missed.
	bareEntityWordPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*_ENTITY)\b`)
)

var sqlKeywords = map[string]bool{
	"SELECT": true, "WHERE": true, "AND": true, "OR": true, "NOT": true,
	"IN": true, "EXISTS": true, "AS": true, "ON": true, "LEFT": true,
	"RIGHT": true, "INNER": true, "OUTER": true, "CROSS": true,
	"LATERAL": true, "VALUES": true, "UNNEST": true,
}

// systemNamespaces are databases/schemas owned by the platform, never part
// of a user catalog snapshot.
var systemNamespaces = map[string]bool{
	"SNOWFLAKE":             true,
	"SNOWFLAKE_SAMPLE_DATA": true,
	"INFORMATION_SCHEMA":    true,
}

// TableRef is one extracted table reference. Database and Schema are empty
// when the reference was not fully qualified.
type TableRef struct {
	Database string
	Schema   string
	Table    string
}

// FQN renders the reference with the given defaults for missing segments.
func (r TableRef) FQN(defaultDB, defaultSchema string) string {
	db := r.Database
	if db == "" {
		db = defaultDB
	}
	schema := r.Schema
	if schema == "" {
		schema = defaultSchema
	}
	return db + "." + schema + "." + r.Table
}

// ExtractTableRefs extracts every table reference after FROM/JOIN, most
// qualified form first. Comments are stripped before scanning.
func ExtractTableRefs(sqlText string) []TableRef {
	clean := lineCommentPattern.ReplaceAllString(sqlText, "")
	clean = blockCommentPattern.ReplaceAllString(clean, "")

	var refs []TableRef
	seen := func(table string) bool {
		upper := strings.ToUpper(table)
		for _, r := range refs {
			if strings.ToUpper(r.Table) == upper {
				return true
			}
		}
		return false
	}

	for _, m := range fullTablePattern.FindAllStringSubmatch(clean, -1) {
		refs = append(refs, TableRef{Database: m[1], Schema: m[2], Table: m[3]})
	}
	for _, m := range partialTablePattern.FindAllStringSubmatch(clean, -1) {
		if !seen(m[2]) {
			refs = append(refs, TableRef{Schema: m[1], Table: m[2]})
		}
	}
	for _, m := range bareTablePattern.FindAllStringSubmatch(clean, -1) {
		if !sqlKeywords[strings.ToUpper(m[1])] && !seen(m[1]) {
			refs = append(refs, TableRef{Table: m[1]})
		}
	}
	return refs
}

// ExtractEntityTables returns the distinct catalog entity tables a
// template references: identifiers with the _ENTITY suffix or a known
// connector-family prefix, excluding system namespaces. A template whose
// reference still contains placeholder syntax contributes nothing, since
// such templates are schema-agnostic until filled.
func ExtractEntityTables(sqlText string) []string {
	if placeholder.HasUnresolved(sqlText) {
		sqlText = neutralizePlaceholders(sqlText)
	}

	var tables []string
	seen := make(map[string]bool)
	add := func(db, schema, table string) {
		upper := strings.ToUpper(table)
		if seen[upper] {
			return
		}
		if systemNamespaces[strings.ToUpper(db)] || systemNamespaces[strings.ToUpper(schema)] || systemNamespaces[upper] {
			// Remember the exclusion so a later bare-word match of the
			// same table does not slip past the namespace check.
			seen[upper] = true
			return
		}
		if !IsEntityTable(table) {
			return
		}
		seen[upper] = true
		tables = append(tables, upper)
	}

	for _, ref := range ExtractTableRefs(sqlText) {
		add(ref.Database, ref.Schema, ref.Table)
	}

	clean := lineCommentPattern.ReplaceAllString(sqlText, "")
	clean = blockCommentPattern.ReplaceAllString(clean, "")
	for _, m := range bareEntityWordPattern.FindAllStringSubmatch(clean, -1) {
		add("", "", m[1])
	}

	return tables
}

// IsEntityTable reports whether a name follows the catalog entity-table
// convention: the fixed _ENTITY suffix, or a well-known connector-family
// prefix.
func IsEntityTable(name string) bool {
	upper := strings.ToUpper(name)
	if strings.HasSuffix(upper, "_ENTITY") {
		return true
	}
	return similarity.Decompose(upper).Family != ""
}

var placeholderTokenPattern = regexp.MustCompile(`\{\{[A-Za-z_]\w*\}\}|<[A-Za-z_]\w*>`)

// neutralizePlaceholders rewrites placeholder tokens to an inert qualifier
// so a hard-coded table behind placeholder database/schema segments
// ({{DATABASE}}.{{SCHEMA}}.TABLE_ENTITY) is still extracted, while a
// placeholder table name contributes nothing.
func neutralizePlaceholders(sqlText string) string {
	return placeholderTokenPattern.ReplaceAllString(sqlText, "__UNBOUND__")
}

// CanRun reports whether the template's hard-coded entity tables all exist
// in the snapshot.
//
// Fail-open default: an empty snapshot means "not yet scanned", so every
// template passes. Callers surfacing templates on this basis may later see
// them filtered once discovery completes. Otherwise gating is strict: one
// missing table disqualifies the whole template, because a partially
// resolvable query still fails at execution time.
func CanRun(template models.QueryTemplate, snapshot models.SchemaSnapshot) bool {
	referenced := ExtractEntityTables(template.SQLText)
	if len(referenced) == 0 {
		return true
	}
	if snapshot.Empty() {
		return true
	}
	for _, table := range referenced {
		if !snapshot.Has(table) {
			return false
		}
	}
	return true
}
