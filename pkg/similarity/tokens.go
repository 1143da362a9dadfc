package similarity

import (
	"strings"
	"unicode"
)

// connectorFamilies are the well-known connector/tool prefixes used by
// catalog entity tables. When two identifiers share a family they model the
// same source system even if the rest of the name differs.
var connectorFamilies = []string{
	"FIVETRAN",
	"DBT",
	"TABLEAU",
	"POWERBI",
	"LOOKER",
	"AIRFLOW",
	"SNOWFLAKE",
	"MYSQL",
	"POSTGRES",
	"MSSQL",
	"GLOSSARY",
	"ATLAS",
}

// Decomposition is an identifier split into an optional connector family
// prefix and the remaining name parts.
type Decomposition struct {
	Family string
	Parts  []string
}

// Decompose splits an identifier into a connector family (when the name
// starts with one) and uppercase name parts delimited by underscores and
// camel-case boundaries.
func Decompose(name string) Decomposition {
	parts := SplitIdentifier(name)
	if len(parts) == 0 {
		return Decomposition{}
	}

	d := Decomposition{Parts: parts}
	for _, family := range connectorFamilies {
		if parts[0] == family {
			d.Family = family
			d.Parts = parts[1:]
			break
		}
	}
	return d
}

// SplitIdentifier breaks an identifier on underscores and camel-case
// transitions, returning uppercase parts. "dbtModelColumn" and
// "DBT_MODEL_COLUMN" decompose identically.
func SplitIdentifier(name string) []string {
	var parts []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, strings.ToUpper(current.String()))
			current.Reset()
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return parts
}

// SharedParts returns how many parts the two decompositions have in common,
// counting each part once.
func SharedParts(a, b Decomposition) int {
	set := make(map[string]bool, len(a.Parts))
	for _, p := range a.Parts {
		set[p] = true
	}
	shared := 0
	for _, p := range b.Parts {
		if set[p] {
			shared++
			set[p] = false
		}
	}
	return shared
}
