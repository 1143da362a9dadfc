package models

import "strings"

// TableInfo is optional per-table metadata in a schema snapshot.
type TableInfo struct {
	RowCount int64    `json:"row_count"`
	Columns  []string `json:"columns,omitempty"`
}

// SchemaSnapshot is the externally-supplied set of tables known to exist in
// the target database/schema. The engine treats it as read-only; refresh is
// the caller's responsibility. An empty snapshot means "not yet scanned",
// not "nothing exists".
type SchemaSnapshot struct {
	Database string               `json:"database"`
	Schema   string               `json:"schema"`
	Tables   map[string]TableInfo `json:"tables"`
}

// Empty reports whether the snapshot has not been populated.
func (s SchemaSnapshot) Empty() bool {
	return len(s.Tables) == 0
}

// Has reports whether the table exists in the snapshot. Lookup is
// case-insensitive since catalog identifiers are case-folded.
func (s SchemaSnapshot) Has(table string) bool {
	_, ok := s.lookup(table)
	return ok
}

// RowCount returns the known row count for a table, or -1 when the table is
// absent or the snapshot carries no count for it.
func (s SchemaSnapshot) RowCount(table string) int64 {
	info, ok := s.lookup(table)
	if !ok {
		return -1
	}
	return info.RowCount
}

// TableNames returns all table names in the snapshot, in no defined order.
func (s SchemaSnapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	return names
}

func (s SchemaSnapshot) lookup(table string) (TableInfo, bool) {
	if info, ok := s.Tables[table]; ok {
		return info, true
	}
	upper := strings.ToUpper(table)
	for name, info := range s.Tables {
		if strings.ToUpper(name) == upper {
			return info, true
		}
	}
	return TableInfo{}, false
}

// SampleEntity is a representative first row for one entity kind, mapping
// column name to value. Used to substitute a guaranteed-real value when the
// context omits one.
type SampleEntity map[string]string

// SampleEntities holds optional per-kind representative rows: "table",
// "column", "process", "term", "glossary".
type SampleEntities map[string]SampleEntity

// Field extracts a named column from the sample for a kind,
// case-insensitively ("GUID" and "guid" are the same column).
func (s SampleEntities) Field(kind, column string) (string, bool) {
	sample, ok := s[kind]
	if !ok {
		return "", false
	}
	if v, ok := sample[column]; ok && v != "" {
		return v, true
	}
	lower := strings.ToLower(column)
	for name, v := range sample {
		if strings.ToLower(name) == lower && v != "" {
			return v, true
		}
	}
	return "", false
}
