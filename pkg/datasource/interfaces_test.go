package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRows_PositionalConversion(t *testing.T) {
	result := &QueryResult{
		Columns: []ColumnInfo{{Name: "NAME"}, {Name: "ROW_COUNT"}},
		PositionalRows: [][]any{
			{"TABLE_ENTITY", int64(120)},
			{"COLUMN_ENTITY", int64(3400)},
		},
	}

	rows := result.KeyedRows()
	assert.Len(t, rows, 2)
	assert.Equal(t, "TABLE_ENTITY", rows[0]["NAME"])
	assert.Equal(t, int64(3400), rows[1]["ROW_COUNT"])
}

func TestKeyedRows_AlreadyKeyed(t *testing.T) {
	result := &QueryResult{
		Columns: []ColumnInfo{{Name: "NAME"}},
		Rows:    []map[string]any{{"NAME": "PROCESS_ENTITY"}},
	}

	rows := result.KeyedRows()
	assert.Len(t, rows, 1)
	assert.Equal(t, "PROCESS_ENTITY", rows[0]["NAME"])
}

func TestKeyedRows_RaggedPositionalRow(t *testing.T) {
	result := &QueryResult{
		Columns:        []ColumnInfo{{Name: "A"}, {Name: "B"}},
		PositionalRows: [][]any{{"only"}},
	}

	rows := result.KeyedRows()
	assert.Equal(t, "only", rows[0]["A"])
	_, hasB := rows[0]["B"]
	assert.False(t, hasB)
}

func TestRowCount(t *testing.T) {
	var nilResult *QueryResult
	assert.Equal(t, 0, nilResult.RowCount())

	positional := &QueryResult{PositionalRows: [][]any{{1}, {2}}}
	assert.Equal(t, 2, positional.RowCount())

	keyed := &QueryResult{Rows: []map[string]any{{"x": 1}}}
	assert.Equal(t, 1, keyed.RowCount())
}
