package recommend

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mdlh-io/queryassist/pkg/logging"
	"github.com/mdlh-io/queryassist/pkg/models"
	"github.com/mdlh-io/queryassist/pkg/schemafilter"
)

// Recommendation is one ranked template. Priority is ascending: lower runs
// first in the caller's list. Available reports confirmed table presence;
// it is false when the snapshot has not been scanned yet, since such
// templates pass the gate fail-open and may still fail at execution.
type Recommendation struct {
	Template  models.QueryTemplate `json:"template"`
	Priority  int                  `json:"priority"`
	Available bool                 `json:"available"`
}

// Recommender picks templates for a context shape.
type Recommender struct {
	catalog []models.QueryTemplate
	logger  *zap.Logger
}

// New builds a Recommender over a template catalog. A nil or empty catalog
// falls back to the built-in set.
func New(catalog []models.QueryTemplate, logger *zap.Logger) *Recommender {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Recommender{catalog: catalog, logger: logging.OrNop(logger)}
}

// categoryPriorities maps a context shape to the template categories it
// wants, in rank order.
func categoryPriorities(entityCtx models.EntityContext) map[string]int {
	hasTable := entityCtx.Has(models.FieldTable)
	hasColumn := entityCtx.Has(models.FieldColumn)

	switch {
	case hasColumn:
		return map[string]int{
			CategoryProfiling:  1,
			CategoryStructural: 2,
		}
	case hasTable:
		return map[string]int{
			CategoryStructural: 1,
			CategoryLineage:    2,
			CategoryGovernance: 3,
		}
	default:
		return map[string]int{
			CategoryOverview: 1,
		}
	}
}

// Recommend returns the templates matching the context shape, sorted by
// ascending priority and de-duplicated by template id keeping the first
// occurrence. A template is dropped outright when the snapshot is
// populated and availability gating fails, or when the context lacks one
// of its required fields. Within a priority, templates whose tables hold
// more rows rank first.
func (r *Recommender) Recommend(entityCtx models.EntityContext, snapshot models.SchemaSnapshot) []Recommendation {
	priorities := categoryPriorities(entityCtx)

	var recs []Recommendation
	seen := make(map[string]bool, len(r.catalog))
	for _, tmpl := range r.catalog {
		priority, wanted := priorities[tmpl.Category]
		if !wanted || seen[tmpl.ID] {
			continue
		}
		if !models.CanExecuteQuery(tmpl, entityCtx) {
			continue
		}
		if !schemafilter.CanRun(tmpl, snapshot) {
			r.logger.Debug("template dropped, tables missing from snapshot",
				zap.String("template", tmpl.ID))
			continue
		}
		// With an unscanned snapshot the gate passes fail-open; presence is
		// only confirmed once the snapshot is populated, or when the
		// template references no entity tables at all.
		available := !snapshot.Empty() || len(schemafilter.ExtractEntityTables(tmpl.SQLText)) == 0
		seen[tmpl.ID] = true
		recs = append(recs, Recommendation{Template: tmpl, Priority: priority, Available: available})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority < recs[j].Priority
		}
		return popularity(recs[i].Template, snapshot) > popularity(recs[j].Template, snapshot)
	})
	return recs
}

// popularity is the total known row count across a template's entity
// tables, the tie-breaker inside one priority band.
func popularity(tmpl models.QueryTemplate, snapshot models.SchemaSnapshot) int64 {
	if snapshot.Empty() {
		return 0
	}
	var total int64
	for _, table := range schemafilter.ExtractEntityTables(tmpl.SQLText) {
		if n := snapshot.RowCount(table); n > 0 {
			total += n
		}
	}
	return total
}
