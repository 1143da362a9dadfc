package schemafilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlh-io/queryassist/pkg/models"
)

func TestExtractTableRefs(t *testing.T) {
	t.Run("fully qualified", func(t *testing.T) {
		refs := ExtractTableRefs("SELECT * FROM FIELD_METADATA.PUBLIC.TABLE_ENTITY LIMIT 10")
		require.Len(t, refs, 1)
		assert.Equal(t, TableRef{Database: "FIELD_METADATA", Schema: "PUBLIC", Table: "TABLE_ENTITY"}, refs[0])
	})

	t.Run("partial and bare", func(t *testing.T) {
		refs := ExtractTableRefs("SELECT a.NAME FROM PUBLIC.TABLE_ENTITY a JOIN COLUMN_ENTITY c ON a.GUID = c.TABLE_GUID")
		require.Len(t, refs, 2)
		assert.Equal(t, TableRef{Schema: "PUBLIC", Table: "TABLE_ENTITY"}, refs[0])
		assert.Equal(t, TableRef{Table: "COLUMN_ENTITY"}, refs[1])
	})

	t.Run("comments stripped", func(t *testing.T) {
		sql := `SELECT * -- FROM COMMENTED_ENTITY
FROM TABLE_ENTITY /* JOIN BLOCK_ENTITY */`
		refs := ExtractTableRefs(sql)
		require.Len(t, refs, 1)
		assert.Equal(t, "TABLE_ENTITY", refs[0].Table)
	})

	t.Run("keywords not mistaken for tables", func(t *testing.T) {
		refs := ExtractTableRefs("SELECT 1 FROM TABLE_ENTITY WHERE GUID IN (SELECT TABLE_GUID FROM COLUMN_ENTITY)")
		require.Len(t, refs, 2)
	})

	t.Run("duplicates collapsed by most qualified form", func(t *testing.T) {
		refs := ExtractTableRefs("SELECT * FROM DB.PUBLIC.TABLE_ENTITY t JOIN TABLE_ENTITY u ON t.GUID = u.GUID")
		require.Len(t, refs, 1)
		assert.Equal(t, "DB", refs[0].Database)
	})
}

func TestTableRefFQN(t *testing.T) {
	ref := TableRef{Table: "TABLE_ENTITY"}
	assert.Equal(t, "FIELD_METADATA.PUBLIC.TABLE_ENTITY", ref.FQN("FIELD_METADATA", "PUBLIC"))

	ref = TableRef{Database: "OTHER", Schema: "CORE", Table: "TABLE_ENTITY"}
	assert.Equal(t, "OTHER.CORE.TABLE_ENTITY", ref.FQN("FIELD_METADATA", "PUBLIC"))
}

func TestExtractEntityTables(t *testing.T) {
	t.Run("filters non-entity tables", func(t *testing.T) {
		tables := ExtractEntityTables("SELECT * FROM TABLE_ENTITY t JOIN CUSTOMERS c ON t.NAME = c.NAME")
		assert.Equal(t, []string{"TABLE_ENTITY"}, tables)
	})

	t.Run("connector prefix counts as entity table", func(t *testing.T) {
		tables := ExtractEntityTables("SELECT * FROM FIVETRAN_CONNECTOR_ENTITY JOIN DBT_MODEL_ENTITY ON 1=1")
		assert.Equal(t, []string{"FIVETRAN_CONNECTOR_ENTITY", "DBT_MODEL_ENTITY"}, tables)
	})

	t.Run("system namespaces excluded", func(t *testing.T) {
		tables := ExtractEntityTables("SELECT * FROM SNOWFLAKE.ACCOUNT_USAGE.QUERY_ENTITY JOIN TABLE_ENTITY ON 1=1")
		assert.Equal(t, []string{"TABLE_ENTITY"}, tables)
	})

	t.Run("system namespace as schema qualifier excluded", func(t *testing.T) {
		tables := ExtractEntityTables("SELECT * FROM SNOWFLAKE_SAMPLE_DATA.SAMPLE_ENTITY JOIN TABLE_ENTITY ON 1=1")
		assert.Equal(t, []string{"TABLE_ENTITY"}, tables)
	})

	t.Run("placeholder qualifiers keep hard-coded table visible", func(t *testing.T) {
		tables := ExtractEntityTables("SELECT * FROM {{DATABASE}}.{{SCHEMA}}.TABLE_ENTITY WHERE NAME = '{{TABLE}}'")
		assert.Equal(t, []string{"TABLE_ENTITY"}, tables)
	})

	t.Run("placeholder table contributes nothing", func(t *testing.T) {
		tables := ExtractEntityTables("SELECT * FROM {{DATABASE}}.{{SCHEMA}}.{{TABLE}} LIMIT 5")
		assert.Empty(t, tables)
	})

	t.Run("entity table inside subquery", func(t *testing.T) {
		tables := ExtractEntityTables("SELECT (SELECT COUNT(*) FROM PROCESS_ENTITY), NAME FROM TABLE_ENTITY")
		assert.ElementsMatch(t, []string{"PROCESS_ENTITY", "TABLE_ENTITY"}, tables)
	})

	t.Run("dedup is case-insensitive", func(t *testing.T) {
		tables := ExtractEntityTables("SELECT * FROM table_entity UNION ALL SELECT * FROM TABLE_ENTITY")
		assert.Equal(t, []string{"TABLE_ENTITY"}, tables)
	})
}

func TestIsEntityTable(t *testing.T) {
	assert.True(t, IsEntityTable("TABLE_ENTITY"))
	assert.True(t, IsEntityTable("glossary_term_entity"))
	assert.True(t, IsEntityTable("FIVETRAN_LOG"))
	assert.False(t, IsEntityTable("CUSTOMERS"))
	assert.False(t, IsEntityTable("ORDERS_2024"))
}

func TestCanRun(t *testing.T) {
	snapshot := models.SchemaSnapshot{
		Database: "FIELD_METADATA",
		Schema:   "PUBLIC",
		Tables: map[string]models.TableInfo{
			"TABLE_ENTITY":  {RowCount: 1200},
			"COLUMN_ENTITY": {RowCount: 54000},
		},
	}

	t.Run("all referenced tables present", func(t *testing.T) {
		tmpl := models.QueryTemplate{SQLText: "SELECT * FROM TABLE_ENTITY JOIN COLUMN_ENTITY ON 1=1"}
		assert.True(t, CanRun(tmpl, snapshot))
	})

	t.Run("one missing table disqualifies", func(t *testing.T) {
		tmpl := models.QueryTemplate{SQLText: "SELECT * FROM TABLE_ENTITY JOIN PROCESS_ENTITY ON 1=1"}
		assert.False(t, CanRun(tmpl, snapshot))
	})

	t.Run("no entity references always passes", func(t *testing.T) {
		tmpl := models.QueryTemplate{SQLText: "SELECT CURRENT_TIMESTAMP()"}
		assert.True(t, CanRun(tmpl, snapshot))
	})

	t.Run("empty snapshot fails open", func(t *testing.T) {
		tmpl := models.QueryTemplate{SQLText: "SELECT * FROM PROCESS_ENTITY"}
		assert.True(t, CanRun(tmpl, models.SchemaSnapshot{}))
	})

	t.Run("snapshot lookup is case-insensitive", func(t *testing.T) {
		lower := models.SchemaSnapshot{Tables: map[string]models.TableInfo{"table_entity": {}}}
		tmpl := models.QueryTemplate{SQLText: "SELECT * FROM TABLE_ENTITY"}
		assert.True(t, CanRun(tmpl, lower))
	})
}
