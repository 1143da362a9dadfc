package placeholder

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mdlh-io/queryassist/pkg/apperrors"
	"github.com/mdlh-io/queryassist/pkg/cache"
	"github.com/mdlh-io/queryassist/pkg/datasource"
	"github.com/mdlh-io/queryassist/pkg/logging"
)

// DefaultBatchSize caps concurrent discovery queries against the backend.
const DefaultBatchSize = 3

// DiscoveredValues is the result of enumerating real values for one kind.
type DiscoveredValues struct {
	Kind   Kind
	Values []DisplayValue
	// FromFallback is true when the primary query failed or returned
	// nothing and the fallback query supplied the values.
	FromFallback bool
	// Err records a discovery failure. Discovery is best-effort; a failed
	// kind leaves Values empty rather than failing the batch.
	Err error
}

// Discoverer enumerates real placeholder values from the warehouse and
// populates the suggestion cache.
type Discoverer struct {
	registry   *Registry
	executor   datasource.QueryExecutor
	cache      *cache.SuggestionCache
	batchSize  int
	valueLimit int
	logger     *zap.Logger
}

// NewDiscoverer wires a discoverer. cache may be nil when callers only
// want the returned values. A batchSize below 1 uses DefaultBatchSize.
func NewDiscoverer(registry *Registry, executor datasource.QueryExecutor, valueCache *cache.SuggestionCache, batchSize, valueLimit int, logger *zap.Logger) *Discoverer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if valueLimit < 1 {
		valueLimit = 25
	}
	return &Discoverer{
		registry:   registry,
		executor:   executor,
		cache:      valueCache,
		batchSize:  batchSize,
		valueLimit: valueLimit,
		logger:     logging.OrNop(logger),
	}
}

// DiscoverAll enumerates values for every discoverable kind in the
// registry, scoped to one database/schema. Kinds are processed in batches
// of at most batchSize concurrent queries; the aggregated result preserves
// registry order regardless of completion order.
func (d *Discoverer) DiscoverAll(ctx context.Context, database, schema string) []DiscoveredValues {
	kinds := d.registry.Discoverable()
	results := make([]DiscoveredValues, len(kinds))

	for start := 0; start < len(kinds); start += d.batchSize {
		end := start + d.batchSize
		if end > len(kinds) {
			end = len(kinds)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(slot int, def Definition) {
				defer wg.Done()
				// Results join back positionally, so an out-of-order
				// completion can never be attributed to the wrong kind.
				results[slot] = d.discoverOne(ctx, def, database, schema)
			}(i, kinds[i])
		}
		wg.Wait()
	}

	return results
}

// DiscoverKind enumerates values for a single kind.
func (d *Discoverer) DiscoverKind(ctx context.Context, kind Kind, database, schema string) DiscoveredValues {
	def, ok := d.registry.ByKind(kind)
	if !ok || def.Query == nil {
		return DiscoveredValues{Kind: kind, Err: apperrors.ErrUnknownKind}
	}
	return d.discoverOne(ctx, def, database, schema)
}

func (d *Discoverer) discoverOne(ctx context.Context, def Definition, database, schema string) DiscoveredValues {
	out := DiscoveredValues{Kind: def.Kind}
	if d.executor == nil {
		out.Err = apperrors.ErrNoExecutor
		return out
	}
	scope := QueryScope{Database: database, Schema: schema, Limit: d.valueLimit}

	rows, err := d.query(ctx, def.Query(scope))
	if err != nil || len(rows) == 0 {
		if def.FallbackQuery == nil {
			out.Err = err
			return out
		}
		rows, err = d.query(ctx, def.FallbackQuery(scope))
		if err != nil {
			out.Err = err
			return out
		}
		out.FromFallback = true
	}

	format := def.Format
	if format == nil {
		format = defaultFormat
	}

	var plain []string
	for _, row := range rows {
		dv := format(row)
		if dv.Value == "" {
			continue
		}
		if isGUIDKind(def.Kind) && uuid.Validate(dv.Value) != nil {
			// Entity GUID columns occasionally carry placeholder junk;
			// only real GUIDs are worth suggesting.
			continue
		}
		out.Values = append(out.Values, dv)
		plain = append(plain, dv.Value)
	}

	if d.cache != nil && len(plain) > 0 {
		d.cache.Set(cache.Key(string(def.Kind), database, schema), plain)
	}

	d.logger.Debug("discovered placeholder values",
		zap.String("kind", string(def.Kind)),
		zap.Int("count", len(out.Values)),
		zap.Bool("fallback", out.FromFallback))

	return out
}

func (d *Discoverer) query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	result, err := d.executor.Execute(ctx, sqlText)
	if err != nil {
		d.logger.Debug("discovery query failed",
			zap.String("query", logging.SanitizeQuery(sqlText)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	return result.KeyedRows(), nil
}

func isGUIDKind(kind Kind) bool {
	switch kind {
	case KindGUID, KindTermGUID, KindGlossaryGUID:
		return true
	}
	return false
}

// NormalizeKindToken maps a raw placeholder token to its kind name, used
// by callers keying caches by token rather than kind.
func (d *Discoverer) NormalizeKindToken(token string) (Kind, bool) {
	def, ok := d.registry.Lookup(strings.ToUpper(token))
	if !ok {
		return "", false
	}
	return def.Kind, true
}
