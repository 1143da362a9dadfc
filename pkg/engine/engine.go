// Package engine assembles the query assistance components from one
// configuration: placeholder resolution, availability gating,
// recommendation and error analysis behind a single entry point.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/mdlh-io/queryassist/pkg/analyzer"
	"github.com/mdlh-io/queryassist/pkg/cache"
	"github.com/mdlh-io/queryassist/pkg/config"
	"github.com/mdlh-io/queryassist/pkg/datasource"
	"github.com/mdlh-io/queryassist/pkg/logging"
	"github.com/mdlh-io/queryassist/pkg/match"
	"github.com/mdlh-io/queryassist/pkg/models"
	"github.com/mdlh-io/queryassist/pkg/placeholder"
	"github.com/mdlh-io/queryassist/pkg/recommend"
)

// Engine owns one configured instance of every component. Components stay
// individually usable; the engine only handles wiring and default
// database/schema injection.
type Engine struct {
	Resolver    *placeholder.Resolver
	Discoverer  *placeholder.Discoverer
	Matcher     *match.Matcher
	Analyzer    *analyzer.Analyzer
	Recommender *recommend.Recommender
	Cache       *cache.SuggestionCache

	cfg    *config.Config
	logger *zap.Logger
}

// New wires the components from cfg. The executor is optional: without one,
// value discovery and row-count probing are skipped but every pure
// operation works. A nil cfg uses the built-in defaults.
func New(cfg *config.Config, executor datasource.QueryExecutor, logger *zap.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = logging.OrNop(logger)

	valueCache := cache.New(cfg.Cache.TTL)
	registry := placeholder.DefaultRegistry()
	matcher := match.New(cfg.Matcher.MinScore, cfg.Matcher.MaxResults)

	return &Engine{
		Resolver: placeholder.NewResolver(registry, valueCache),
		Discoverer: placeholder.NewDiscoverer(registry, executor, valueCache,
			cfg.Discovery.BatchSize, cfg.Discovery.ValueLimit, logger),
		Matcher: matcher,
		Analyzer: analyzer.New(matcher, executor,
			cfg.Analyzer.ProbeRowCounts, cfg.Analyzer.MaxProbes, logger),
		Recommender: recommend.New(nil, logger),
		Cache:       valueCache,
		cfg:         cfg,
		logger:      logger,
	}
}

// withDefaults returns the context with the configured database and schema
// filled in when the caller left them out. The caller's map is not
// modified.
func (e *Engine) withDefaults(entityCtx models.EntityContext) models.EntityContext {
	if entityCtx.Has(models.FieldDatabase) && entityCtx.Has(models.FieldSchema) {
		return entityCtx
	}
	out := make(models.EntityContext, len(entityCtx)+2)
	for k, v := range entityCtx {
		out[k] = v
	}
	if !out.Has(models.FieldDatabase) {
		out[models.FieldDatabase] = e.cfg.DefaultDatabase
	}
	if !out.Has(models.FieldSchema) {
		out[models.FieldSchema] = e.cfg.DefaultSchema
	}
	return out
}

// Fill resolves a template for display, with configured database/schema
// defaults applied.
func (e *Engine) Fill(template string, entityCtx models.EntityContext, samples models.SampleEntities) string {
	return e.Resolver.Fill(template, e.withDefaults(entityCtx), samples)
}

// FillSafe resolves a template with quoting and escaping for execution.
func (e *Engine) FillSafe(template string, entityCtx models.EntityContext, samples models.SampleEntities) string {
	return e.Resolver.FillSafe(template, e.withDefaults(entityCtx), samples)
}

// Recommend ranks catalog templates for the context shape.
func (e *Engine) Recommend(entityCtx models.EntityContext, snapshot models.SchemaSnapshot) []recommend.Recommendation {
	return e.Recommender.Recommend(entityCtx, snapshot)
}

// AnalyzeFailure classifies a failed execution and proposes fixes.
func (e *Engine) AnalyzeFailure(ctx context.Context, errorText, failedSQL string, snapshot models.SchemaSnapshot) analyzer.Analysis {
	return e.Analyzer.Analyze(ctx, errorText, failedSQL, snapshot)
}

// Preflight checks a query's table references before running it.
func (e *Engine) Preflight(sqlText string, snapshot models.SchemaSnapshot) analyzer.PreflightResult {
	return e.Analyzer.Preflight(sqlText, snapshot)
}

// DiscoverValues enumerates real placeholder values from the warehouse,
// using the configured default database/schema when the context has none.
func (e *Engine) DiscoverValues(ctx context.Context, entityCtx models.EntityContext) []placeholder.DiscoveredValues {
	scoped := e.withDefaults(entityCtx)
	db, _ := scoped.Get(models.FieldDatabase)
	schema, _ := scoped.Get(models.FieldSchema)
	return e.Discoverer.DiscoverAll(ctx, db, schema)
}
