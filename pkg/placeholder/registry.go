// Package placeholder implements template placeholder resolution: the kind
// registry, display/safe filling, and warehouse value discovery.
package placeholder

import (
	"fmt"
	"strings"

	"github.com/mdlh-io/queryassist/pkg/models"
)

// Kind identifies one placeholder family.
type Kind string

const (
	KindDomain       Kind = "domain"
	KindGlossary     Kind = "glossary"
	KindGUID         Kind = "guid"
	KindTermGUID     Kind = "termGuid"
	KindGlossaryGUID Kind = "glossaryGuid"
	KindDatabase     Kind = "database"
	KindSchema       Kind = "schema"
	KindTable        Kind = "table"
	KindColumn       Kind = "column"
	KindDaysBack     Kind = "daysBack"
	KindOwner        Kind = "ownerUsername"
	KindFilter       Kind = "filter"
	KindSource       Kind = "source"
)

// ValueClass determines how the safe filler inserts a resolved value.
type ValueClass int

const (
	// ClassIdentifier values are SQL identifiers, double-quoted when needed.
	ClassIdentifier ValueClass = iota
	// ClassLiteral values are string literals, single-quoted and escaped.
	ClassLiteral
	// ClassNumber values are inserted bare and must be numeric.
	ClassNumber
)

// QueryScope parameterizes a discovery query.
type QueryScope struct {
	Database string
	Schema   string
	Limit    int
}

// QueryFunc builds the SQL used to enumerate real values for a kind.
type QueryFunc func(scope QueryScope) string

// DisplayValue is a formatted discovered value for autocomplete rendering.
type DisplayValue struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Detail      string `json:"detail,omitempty"`
	InsertValue string `json:"insert_value"`
}

// FormatFunc turns one discovery result row into a DisplayValue.
type FormatFunc func(row map[string]any) DisplayValue

// Definition describes one placeholder kind: the tokens it answers, where
// its real values come from, and how they are rendered. Definitions are
// configuration data; the resolution algorithm never branches on a
// specific kind.
type Definition struct {
	Kind    Kind
	Class   ValueClass
	// Patterns are the uppercase token names this kind answers, e.g.
	// {{DOMAIN}} and {{DOMAIN_NAME}} both resolve through KindDomain.
	Patterns []string
	// ContextField is the EntityContext slot consulted first.
	ContextField models.ContextField
	// SampleKind keys into SampleEntities; SampleColumns are tried in
	// order against the representative row.
	SampleKind    string
	SampleColumns []string
	// SourceTable is the entity table discovery reads from, empty when the
	// kind is context-only or static.
	SourceTable string
	// Query enumerates real values; FallbackQuery is tried when the
	// primary query fails or returns nothing.
	Query         QueryFunc
	FallbackQuery QueryFunc
	// Static values are offered without touching the warehouse.
	Static []string
	// Format renders a discovery row. Nil uses defaultFormat.
	Format FormatFunc
}

// Registry maps placeholder tokens to kind definitions.
type Registry struct {
	defs    []Definition
	byToken map[string]int
}

// NewRegistry builds a registry from explicit definitions.
func NewRegistry(defs []Definition) *Registry {
	r := &Registry{defs: defs, byToken: make(map[string]int)}
	for i, def := range defs {
		for _, pattern := range def.Patterns {
			r.byToken[strings.ToUpper(pattern)] = i
		}
	}
	return r
}

// Lookup resolves a placeholder token name to its kind definition.
func (r *Registry) Lookup(token string) (Definition, bool) {
	i, ok := r.byToken[strings.ToUpper(token)]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// ByKind finds the definition for a kind.
func (r *Registry) ByKind(kind Kind) (Definition, bool) {
	for _, def := range r.defs {
		if def.Kind == kind {
			return def, true
		}
	}
	return Definition{}, false
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []Definition {
	return r.defs
}

// Discoverable returns the definitions that have a discovery query.
func (r *Registry) Discoverable() []Definition {
	var out []Definition
	for _, def := range r.defs {
		if def.Query != nil {
			out = append(out, def)
		}
	}
	return out
}

func distinctQuery(column, table string) QueryFunc {
	return func(scope QueryScope) string {
		return fmt.Sprintf(
			"SELECT DISTINCT %s FROM %s.%s.%s WHERE %s IS NOT NULL ORDER BY %s LIMIT %d",
			column, scope.Database, scope.Schema, table, column, column, scope.Limit)
	}
}

func defaultFormat(row map[string]any) DisplayValue {
	value := firstString(row, "NAME", "VALUE", "GUID")
	detail := firstString(row, "DESCRIPTION", "QUALIFIEDNAME")
	return DisplayValue{Value: value, Label: value, Detail: detail, InsertValue: value}
}

func firstString(row map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := row[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
		if v, ok := row[strings.ToLower(key)]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// DefaultRegistry returns the MDLH catalog registry: entity tables follow
// the _ENTITY naming convention and GUID columns identify catalog assets.
func DefaultRegistry() *Registry {
	return NewRegistry([]Definition{
		{
			Kind:         KindDatabase,
			Class:        ClassIdentifier,
			Patterns:     []string{"DATABASE", "DB"},
			ContextField: models.FieldDatabase,
		},
		{
			Kind:         KindSchema,
			Class:        ClassIdentifier,
			Patterns:     []string{"SCHEMA"},
			ContextField: models.FieldSchema,
		},
		{
			Kind:          KindTable,
			Class:         ClassIdentifier,
			Patterns:      []string{"TABLE", "TABLE_NAME"},
			ContextField:  models.FieldTable,
			SampleKind:    "table",
			SampleColumns: []string{"NAME"},
		},
		{
			Kind:          KindColumn,
			Class:         ClassIdentifier,
			Patterns:      []string{"COLUMN", "COLUMN_NAME"},
			ContextField:  models.FieldColumn,
			SampleKind:    "column",
			SampleColumns: []string{"NAME"},
		},
		{
			Kind:          KindGUID,
			Class:         ClassLiteral,
			Patterns:      []string{"GUID", "ASSET_GUID"},
			ContextField:  models.FieldGUID,
			SampleKind:    "table",
			SampleColumns: []string{"GUID"},
			SourceTable:   "TABLE_ENTITY",
			Query:         distinctQuery("GUID", "TABLE_ENTITY"),
		},
		{
			Kind:          KindTermGUID,
			Class:         ClassLiteral,
			Patterns:      []string{"TERM_GUID", "TERMGUID"},
			ContextField:  models.FieldTermGUID,
			SampleKind:    "term",
			SampleColumns: []string{"GUID"},
			SourceTable:   "GLOSSARY_TERM_ENTITY",
			Query:         distinctQuery("GUID", "GLOSSARY_TERM_ENTITY"),
		},
		{
			Kind:          KindGlossaryGUID,
			Class:         ClassLiteral,
			Patterns:      []string{"GLOSSARY_GUID", "GLOSSARYGUID"},
			ContextField:  models.FieldGlossaryGUID,
			SampleKind:    "glossary",
			SampleColumns: []string{"GUID"},
			SourceTable:   "GLOSSARY_ENTITY",
			Query:         distinctQuery("GUID", "GLOSSARY_ENTITY"),
		},
		{
			Kind:          KindDomain,
			Class:         ClassLiteral,
			Patterns:      []string{"DOMAIN", "DOMAIN_NAME"},
			ContextField:  models.FieldDomain,
			SourceTable:   "DATA_DOMAIN_ENTITY",
			Query:         distinctQuery("NAME", "DATA_DOMAIN_ENTITY"),
			FallbackQuery: distinctQuery("DOMAIN", "TABLE_ENTITY"),
		},
		{
			Kind:          KindGlossary,
			Class:         ClassLiteral,
			Patterns:      []string{"GLOSSARY", "GLOSSARY_NAME"},
			SampleKind:    "glossary",
			SampleColumns: []string{"NAME"},
			SourceTable:   "GLOSSARY_ENTITY",
			Query:         distinctQuery("NAME", "GLOSSARY_ENTITY"),
		},
		{
			Kind:          KindOwner,
			Class:         ClassLiteral,
			Patterns:      []string{"OWNER_USERNAME", "OWNERUSERNAME", "OWNER"},
			ContextField:  models.FieldOwnerUsername,
			SourceTable:   "TABLE_ENTITY",
			Query:         distinctQuery("OWNERUSERNAME", "TABLE_ENTITY"),
			FallbackQuery: distinctQuery("OWNER", "TABLE_ENTITY"),
		},
		{
			Kind:         KindDaysBack,
			Class:        ClassNumber,
			Patterns:     []string{"DAYS_BACK", "DAYSBACK", "DAYS"},
			ContextField: models.FieldDaysBack,
			Static:       []string{"7", "30", "90"},
		},
		{
			Kind:         KindFilter,
			Class:        ClassLiteral,
			Patterns:     []string{"FILTER"},
			ContextField: models.FieldFilter,
		},
		{
			Kind:         KindSource,
			Class:        ClassLiteral,
			Patterns:     []string{"SOURCE", "SOURCE_NAME"},
			ContextField: models.FieldSource,
		},
	})
}
