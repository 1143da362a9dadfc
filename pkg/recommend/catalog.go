// Package recommend ranks query templates for the caller's current entity
// context, dropping anything the target schema cannot serve.
package recommend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mdlh-io/queryassist/pkg/apperrors"
	"github.com/mdlh-io/queryassist/pkg/models"
)

// Template categories the recommendation rules key on.
const (
	CategoryStructural = "structural"
	CategoryLineage    = "lineage"
	CategoryGovernance = "governance"
	CategoryProfiling  = "profiling"
	CategoryOverview   = "overview"
)

// DefaultCatalog returns the built-in template set covering the catalog's
// core entity tables.
func DefaultCatalog() []models.QueryTemplate {
	return []models.QueryTemplate{
		{
			ID:       "table-columns",
			Title:    "Columns of this table",
			Category: CategoryStructural,
			SQLText: "SELECT c.NAME, c.DATA_TYPE, c.IS_NULLABLE, c.DESCRIPTION\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.COLUMN_ENTITY c\n" +
				"WHERE c.TABLE_NAME = '{{TABLE}}'\nORDER BY c.ORDINAL",
			RequiredFields: []string{"table"},
		},
		{
			ID:       "table-row-profile",
			Title:    "Size and freshness of this table",
			Category: CategoryStructural,
			SQLText: "SELECT NAME, ROW_COUNT, SIZE_BYTES, LAST_UPDATED\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.TABLE_ENTITY\nWHERE NAME = '{{TABLE}}'",
			RequiredFields: []string{"table"},
		},
		{
			ID:       "table-upstream",
			Title:    "Upstream sources of this table",
			Category: CategoryLineage,
			SQLText: "SELECT p.NAME, p.PROCESS_TYPE, p.INPUTS\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.PROCESS_ENTITY p\n" +
				"WHERE ARRAY_CONTAINS('{{TABLE}}'::VARIANT, p.OUTPUTS)",
			RequiredFields: []string{"table"},
		},
		{
			ID:       "table-downstream",
			Title:    "Downstream consumers of this table",
			Category: CategoryLineage,
			SQLText: "SELECT p.NAME, p.PROCESS_TYPE, p.OUTPUTS\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.PROCESS_ENTITY p\n" +
				"WHERE ARRAY_CONTAINS('{{TABLE}}'::VARIANT, p.INPUTS)",
			RequiredFields: []string{"table"},
		},
		{
			ID:       "table-glossary-terms",
			Title:    "Glossary terms linked to this table",
			Category: CategoryGovernance,
			SQLText: "SELECT g.NAME, g.DESCRIPTION, g.STATUS\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.GLOSSARY_TERM_ENTITY g\n" +
				"JOIN {{DATABASE}}.{{SCHEMA}}.TABLE_ENTITY t ON ARRAY_CONTAINS(t.GUID::VARIANT, g.ASSIGNED_ENTITIES)\n" +
				"WHERE t.NAME = '{{TABLE}}'",
			RequiredFields: []string{"table"},
		},
		{
			ID:       "table-owners",
			Title:    "Ownership and certification",
			Category: CategoryGovernance,
			SQLText: "SELECT NAME, OWNER_USERS, CERTIFICATE_STATUS\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.TABLE_ENTITY\nWHERE NAME = '{{TABLE}}'",
			RequiredFields: []string{"table"},
		},
		{
			ID:       "column-profile",
			Title:    "Profile of this column",
			Category: CategoryProfiling,
			SQLText: "SELECT NAME, DATA_TYPE, DISTINCT_COUNT, NULL_COUNT, MAX_VALUE, MIN_VALUE\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.COLUMN_ENTITY\n" +
				"WHERE TABLE_NAME = '{{TABLE}}' AND NAME = '{{COLUMN}}'",
			RequiredFields: []string{"table", "column"},
		},
		{
			ID:       "column-lineage",
			Title:    "Column-level lineage",
			Category: CategoryProfiling,
			SQLText: "SELECT p.NAME, p.COLUMN_MAPPING\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.COLUMN_PROCESS_ENTITY p\n" +
				"WHERE p.TARGET_COLUMN = '{{COLUMN}}'",
			RequiredFields: []string{"column"},
		},
		{
			ID:       "account-table-count",
			Title:    "Tables by database",
			Category: CategoryOverview,
			SQLText: "SELECT DATABASE_NAME, COUNT(*) AS TABLES\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.TABLE_ENTITY\nGROUP BY DATABASE_NAME ORDER BY TABLES DESC",
		},
		{
			ID:       "account-popular-tables",
			Title:    "Most queried tables",
			Category: CategoryOverview,
			SQLText: "SELECT NAME, POPULARITY_SCORE, QUERY_COUNT\n" +
				"FROM {{DATABASE}}.{{SCHEMA}}.TABLE_ENTITY\n" +
				"ORDER BY POPULARITY_SCORE DESC NULLS LAST LIMIT 25",
		},
		{
			ID:       "account-domains",
			Title:    "Data domains",
			Category: CategoryOverview,
			SQLText: "SELECT NAME, DESCRIPTION\nFROM {{DATABASE}}.{{SCHEMA}}.DATA_DOMAIN_ENTITY\nORDER BY NAME",
		},
	}
}

// LoadCatalog reads additional templates from a YAML file. Templates there
// extend the built-in set; an ID collision replaces the built-in entry.
func LoadCatalog(path string) ([]models.QueryTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Templates []models.QueryTemplate `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	catalog := DefaultCatalog()
	index := make(map[string]int, len(catalog))
	for i, t := range catalog {
		index[t.ID] = i
	}
	fileIDs := make(map[string]bool, len(doc.Templates))
	for _, t := range doc.Templates {
		if t.SQLText == "" {
			return nil, fmt.Errorf("template %q: %w", t.ID, apperrors.ErrEmptyTemplate)
		}
		if fileIDs[t.ID] {
			return nil, fmt.Errorf("template %q: %w", t.ID, apperrors.ErrCatalogDuplicate)
		}
		fileIDs[t.ID] = true
		if i, ok := index[t.ID]; ok {
			catalog[i] = t
		} else {
			catalog = append(catalog, t)
		}
	}
	return catalog, nil
}
