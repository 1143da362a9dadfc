// Package analyzer turns a raw warehouse execution error into a structured
// classification and a ranked list of recovery suggestions. It is stateless
// across calls: Parse -> Classify -> GenerateFixes -> optional Probe -> Rank
// all operate on one error report.
package analyzer

import (
	"regexp"
	"strconv"
	"strings"
)

// Category groups errors by what kind of recovery applies.
type Category string

const (
	CategorySyntax           Category = "syntax"
	CategoryExecution        Category = "execution"
	CategoryDataAvailability Category = "data_availability"
	CategoryAccess           Category = "access"
	CategoryUnknown          Category = "unknown"
)

var (
	// Warehouse errors lead with "NNNNNN (SSSSS):", a six-digit code and a
	// five-character SQLSTATE.
	errorCodePattern = regexp.MustCompile(`(\d{6})\s*\((\w{5})\)`)

	functionTypePattern = regexp.MustCompile(
		`(?i)invalid argument types? for function\s+'([A-Za-z0-9_]+)'?\s*:?\s*\(([^)]*)\)?`)

	missingObjectPattern = regexp.MustCompile(
		`(?i)object\s+'([^']+)'\s+does not exist`)

	invalidIdentifierPattern = regexp.MustCompile(
		`(?i)invalid identifier\s+'([^']+)'`)

	linePositionPattern = regexp.MustCompile(
		`(?i)line\s+(\d+)\s+at\s+position\s+(\d+)`)
)

// ParsedError is the structured form of one raw error string. Zero-valued
// fields mean the corresponding pattern did not match.
type ParsedError struct {
	Code     string
	SQLState string

	FunctionName string
	ArgTypes     string

	MissingObject string
	MissingColumn string

	Line     int
	Position int

	Raw string
}

// Parse extracts whatever structure the error string carries. It never
// fails; an unrecognized message yields a ParsedError holding only Raw.
func Parse(errorText string) ParsedError {
	parsed := ParsedError{Raw: errorText}

	if m := errorCodePattern.FindStringSubmatch(errorText); m != nil {
		parsed.Code = m[1]
		parsed.SQLState = m[2]
	}
	if m := functionTypePattern.FindStringSubmatch(errorText); m != nil {
		parsed.FunctionName = strings.ToUpper(m[1])
		parsed.ArgTypes = strings.TrimSpace(m[2])
	}
	if m := missingObjectPattern.FindStringSubmatch(errorText); m != nil {
		parsed.MissingObject = m[1]
	}
	if m := invalidIdentifierPattern.FindStringSubmatch(errorText); m != nil {
		parsed.MissingColumn = m[1]
	}
	if m := linePositionPattern.FindStringSubmatch(errorText); m != nil {
		parsed.Line, _ = strconv.Atoi(m[1])
		parsed.Position, _ = strconv.Atoi(m[2])
	}
	return parsed
}

type codeInfo struct {
	Category    Category
	Title       string
	Description string
}

// knownCodes maps warehouse error codes to a classification. Codes absent
// here fall back to inference from which regex groups matched.
var knownCodes = map[string]codeInfo{
	"002003": {CategoryDataAvailability, "Object not found",
		"The referenced table or view does not exist in this schema, or you are not authorized to see it."},
	"000904": {CategorySyntax, "Invalid identifier",
		"A column or alias in the query does not exist on the referenced table."},
	"001003": {CategorySyntax, "Syntax error",
		"The statement could not be parsed."},
	"001044": {CategorySyntax, "Invalid argument types",
		"A function was called with an argument type it does not accept."},
	"000604": {CategoryExecution, "Query canceled",
		"Execution was canceled or timed out before completing."},
	"003001": {CategoryAccess, "Insufficient privileges",
		"The current role is not allowed to perform this operation."},
	"390114": {CategoryAccess, "Authentication expired",
		"The session token has expired; re-authenticate and retry."},
}

// Classify resolves the error's category, preferring the known-code table
// and falling back to which patterns matched.
func Classify(parsed ParsedError) (Category, string, string) {
	if info, ok := knownCodes[parsed.Code]; ok {
		return info.Category, info.Title, info.Description
	}

	switch {
	case parsed.FunctionName != "":
		return CategorySyntax, "Invalid argument types",
			"A function was called with an argument type it does not accept."
	case parsed.MissingObject != "":
		return CategoryDataAvailability, "Object not found",
			"The referenced table or view does not exist in this schema."
	case parsed.MissingColumn != "":
		return CategorySyntax, "Invalid identifier",
			"A column or alias in the query does not exist on the referenced table."
	default:
		return CategoryUnknown, "Unrecognized error", "The error did not match any known shape."
	}
}
