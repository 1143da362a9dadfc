// Package datasource defines the injected query-execution capability the
// engine depends on. The engine never opens connections itself; callers
// supply an executor bound to their warehouse session.
package datasource

import "context"

// QueryExecutor executes SQL against the target warehouse.
// Implementations own their connection and its lifetime; the engine only
// issues bounded, read-only statements through this interface (placeholder
// value discovery and COUNT(*) probes).
type QueryExecutor interface {
	// Execute runs a query and returns results. The error's string form is
	// what the error analyzer parses, so implementations should surface the
	// backend's message verbatim.
	Execute(ctx context.Context, sqlQuery string) (*QueryResult, error)
}

// ColumnInfo describes a result column. Type may be empty when the backend
// reports names only.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// QueryResult holds the results of one execution. Exactly one of Rows or
// PositionalRows is populated by an implementation; KeyedRows normalizes
// either shape.
type QueryResult struct {
	Columns        []ColumnInfo     `json:"columns"`
	Rows           []map[string]any `json:"rows,omitempty"`
	PositionalRows [][]any          `json:"positional_rows,omitempty"`
}

// RowCount returns the number of rows regardless of shape.
func (r *QueryResult) RowCount() int {
	if r == nil {
		return 0
	}
	if len(r.Rows) > 0 {
		return len(r.Rows)
	}
	return len(r.PositionalRows)
}

// KeyedRows returns rows as column-name-keyed maps, converting positional
// rows using the column list. Positional values beyond the declared columns
// are dropped; missing trailing values are left absent.
func (r *QueryResult) KeyedRows() []map[string]any {
	if r == nil {
		return nil
	}
	if len(r.Rows) > 0 {
		return r.Rows
	}
	keyed := make([]map[string]any, 0, len(r.PositionalRows))
	for _, row := range r.PositionalRows {
		m := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i >= len(row) {
				break
			}
			m[col.Name] = row[i]
		}
		keyed = append(keyed, m)
	}
	return keyed
}

// ColumnNames returns the column names in declaration order.
func (r *QueryResult) ColumnNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}
