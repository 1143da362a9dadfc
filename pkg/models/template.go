// Package models defines the data types shared by the query assistance
// engine: templates, entity context, schema snapshots and suggestions.
package models

// QueryTemplate is a parameterized SQL query from the catalog. Templates are
// created at catalog-load time and never mutated; resolution always returns
// new strings.
type QueryTemplate struct {
	ID             string   `yaml:"id" json:"id"`
	Title          string   `yaml:"title" json:"title"`
	SQLText        string   `yaml:"sql" json:"sql"`
	RequiredFields []string `yaml:"required_fields,omitempty" json:"required_fields,omitempty"`
	Category       string   `yaml:"category,omitempty" json:"category,omitempty"`
	Layer          string   `yaml:"layer,omitempty" json:"layer,omitempty"`
	Warning        string   `yaml:"warning,omitempty" json:"warning,omitempty"`
}

// ContextField names a slot in an EntityContext.
type ContextField string

const (
	FieldDatabase      ContextField = "database"
	FieldSchema        ContextField = "schema"
	FieldTable         ContextField = "table"
	FieldColumn        ContextField = "column"
	FieldGUID          ContextField = "guid"
	FieldTermGUID      ContextField = "termGuid"
	FieldGlossaryGUID  ContextField = "glossaryGuid"
	FieldDaysBack      ContextField = "daysBack"
	FieldOwnerUsername ContextField = "ownerUsername"
	FieldDomain        ContextField = "domain"
	FieldFilter        ContextField = "filter"
	FieldSource        ContextField = "source"
)

// EntityContext carries the caller-supplied values available for filling a
// template. An empty string is indistinguishable from an absent field.
type EntityContext map[ContextField]string

// Get returns the value for a field. Empty values report as absent.
func (c EntityContext) Get(field ContextField) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c[field]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Has reports whether the field carries a non-empty value.
func (c EntityContext) Has(field ContextField) bool {
	_, ok := c.Get(field)
	return ok
}

// CanExecuteQuery reports whether the context satisfies every required
// field of the template. A template with no required fields is always
// executable.
func CanExecuteQuery(template QueryTemplate, ctx EntityContext) bool {
	for _, f := range template.RequiredFields {
		if !ctx.Has(ContextField(f)) {
			return false
		}
	}
	return true
}
