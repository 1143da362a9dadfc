package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlh-io/queryassist/pkg/models"
)

func fullSnapshot() models.SchemaSnapshot {
	return models.SchemaSnapshot{
		Database: "FIELD_METADATA",
		Schema:   "PUBLIC",
		Tables: map[string]models.TableInfo{
			"TABLE_ENTITY":          {RowCount: 1000},
			"COLUMN_ENTITY":         {RowCount: 50},
			"PROCESS_ENTITY":        {RowCount: 200},
			"COLUMN_PROCESS_ENTITY": {RowCount: 30},
			"GLOSSARY_TERM_ENTITY":  {RowCount: 80},
			"DATA_DOMAIN_ENTITY":    {RowCount: 12},
		},
	}
}

func TestRecommendTableContext(t *testing.T) {
	r := New(nil, nil)
	recs := r.Recommend(models.EntityContext{models.FieldTable: "CUSTOMERS"}, fullSnapshot())

	require.NotEmpty(t, recs)
	assert.Equal(t, CategoryStructural, recs[0].Template.Category)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i].Priority, recs[i-1].Priority, "ascending priority")
	}
	categories := make(map[string]bool)
	for _, rec := range recs {
		categories[rec.Template.Category] = true
	}
	assert.True(t, categories[CategoryLineage])
	assert.True(t, categories[CategoryGovernance])
	assert.False(t, categories[CategoryOverview])
}

func TestRecommendColumnContext(t *testing.T) {
	r := New(nil, nil)
	ctx := models.EntityContext{
		models.FieldTable:  "CUSTOMERS",
		models.FieldColumn: "EMAIL",
	}
	recs := r.Recommend(ctx, fullSnapshot())

	require.NotEmpty(t, recs)
	assert.Equal(t, CategoryProfiling, recs[0].Template.Category)
}

func TestRecommendNoContext(t *testing.T) {
	r := New(nil, nil)
	recs := r.Recommend(models.EntityContext{}, fullSnapshot())

	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.Equal(t, CategoryOverview, rec.Template.Category)
	}
}

func TestRecommendRequiredFieldsExcluded(t *testing.T) {
	r := New(nil, nil)
	// Column-only context: column-profile also requires a table, so only
	// column-lineage survives from the profiling set.
	recs := r.Recommend(models.EntityContext{models.FieldColumn: "EMAIL"}, fullSnapshot())

	for _, rec := range recs {
		assert.NotEqual(t, "column-profile", rec.Template.ID)
	}
}

func TestRecommendDropsUnavailableTemplates(t *testing.T) {
	r := New(nil, nil)
	partial := models.SchemaSnapshot{Tables: map[string]models.TableInfo{
		"TABLE_ENTITY":  {RowCount: 1000},
		"COLUMN_ENTITY": {RowCount: 50},
	}}
	recs := r.Recommend(models.EntityContext{models.FieldTable: "CUSTOMERS"}, partial)

	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.True(t, rec.Available)
		assert.NotEqual(t, CategoryLineage, rec.Template.Category,
			"lineage needs PROCESS_ENTITY, absent from snapshot")
	}
}

func TestRecommendEmptySnapshotKeepsEverything(t *testing.T) {
	r := New(nil, nil)
	recs := r.Recommend(models.EntityContext{models.FieldTable: "CUSTOMERS"}, models.SchemaSnapshot{})

	categories := make(map[string]bool)
	for _, rec := range recs {
		assert.False(t, rec.Available, "presence is unconfirmed until the schema is scanned")
		categories[rec.Template.Category] = true
	}
	assert.True(t, categories[CategoryLineage], "fail-open on unscanned schema")
}

func TestRecommendAvailableConfirmedBySnapshot(t *testing.T) {
	r := New(nil, nil)
	recs := r.Recommend(models.EntityContext{models.FieldTable: "CUSTOMERS"}, fullSnapshot())

	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.True(t, rec.Available, "populated snapshot confirms every surfaced template")
	}
}

func TestRecommendDedupsByID(t *testing.T) {
	catalog := []models.QueryTemplate{
		{ID: "dup", Title: "first", Category: CategoryOverview, SQLText: "SELECT 1"},
		{ID: "dup", Title: "second", Category: CategoryOverview, SQLText: "SELECT 2"},
	}
	r := New(catalog, nil)
	recs := r.Recommend(models.EntityContext{}, models.SchemaSnapshot{})

	require.Len(t, recs, 1)
	assert.Equal(t, "first", recs[0].Template.Title)
}

func TestRecommendPopularityTieBreak(t *testing.T) {
	r := New(nil, nil)
	recs := r.Recommend(models.EntityContext{models.FieldTable: "CUSTOMERS"}, fullSnapshot())

	var structural []Recommendation
	for _, rec := range recs {
		if rec.Template.Category == CategoryStructural {
			structural = append(structural, rec)
		}
	}
	require.GreaterOrEqual(t, len(structural), 2)
	assert.Equal(t, "table-row-profile", structural[0].Template.ID,
		"TABLE_ENTITY outweighs COLUMN_ENTITY in row count")
}
