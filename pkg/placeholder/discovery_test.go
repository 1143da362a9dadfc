package placeholder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlh-io/queryassist/pkg/cache"
	"github.com/mdlh-io/queryassist/pkg/datasource"
)

// stubExecutor answers queries by substring match and records concurrency.
type stubExecutor struct {
	mu         sync.Mutex
	inFlight   int
	maxSeen    int
	calls      []string
	responses  map[string]*datasource.QueryResult
	defaultErr error
}

func (s *stubExecutor) Execute(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	s.calls = append(s.calls, sqlQuery)
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	for needle, result := range s.responses {
		if strings.Contains(sqlQuery, needle) {
			return result, nil
		}
	}
	if s.defaultErr != nil {
		return nil, s.defaultErr
	}
	return &datasource.QueryResult{}, nil
}

func nameRows(names ...string) *datasource.QueryResult {
	rows := make([]map[string]any, len(names))
	for i, n := range names {
		rows[i] = map[string]any{"NAME": n}
	}
	return &datasource.QueryResult{
		Columns: []datasource.ColumnInfo{{Name: "NAME"}},
		Rows:    rows,
	}
}

func TestDiscoverKind_PopulatesCache(t *testing.T) {
	exec := &stubExecutor{responses: map[string]*datasource.QueryResult{
		"DATA_DOMAIN_ENTITY": nameRows("Finance", "Sales"),
	}}
	valueCache := cache.New(time.Minute)
	d := NewDiscoverer(nil, exec, valueCache, 3, 25, nil)

	result := d.DiscoverKind(context.Background(), KindDomain, "PROD_DB", "PUBLIC")
	require.NoError(t, result.Err)
	require.Len(t, result.Values, 2)
	assert.Equal(t, "Finance", result.Values[0].Value)
	assert.False(t, result.FromFallback)

	cached, ok := valueCache.Get(cache.Key("domain", "PROD_DB", "PUBLIC"))
	assert.True(t, ok)
	assert.Equal(t, []string{"Finance", "Sales"}, cached)
}

func TestDiscoverKind_FallbackQuery(t *testing.T) {
	// The primary domain query fails; the fallback against TABLE_ENTITY
	// answers instead.
	exec := &stubExecutor{
		responses: map[string]*datasource.QueryResult{
			"TABLE_ENTITY": nameRows("Operations"),
		},
		defaultErr: errors.New("002003 (42S02): Object 'DATA_DOMAIN_ENTITY' does not exist"),
	}
	d := NewDiscoverer(nil, exec, nil, 3, 25, nil)

	result := d.DiscoverKind(context.Background(), KindDomain, "PROD_DB", "PUBLIC")
	require.NoError(t, result.Err)
	assert.True(t, result.FromFallback)
	require.Len(t, result.Values, 1)
	assert.Equal(t, "Operations", result.Values[0].Value)
}

func TestDiscoverKind_GUIDValidation(t *testing.T) {
	exec := &stubExecutor{responses: map[string]*datasource.QueryResult{
		"GLOSSARY_TERM_ENTITY": {
			Columns: []datasource.ColumnInfo{{Name: "GUID"}},
			Rows: []map[string]any{
				{"GUID": "4fa2b210-9f86-44e5-9c35-0f4bd1f07712"},
				{"GUID": "not-a-guid"},
			},
		},
	}}
	d := NewDiscoverer(nil, exec, nil, 3, 25, nil)

	result := d.DiscoverKind(context.Background(), KindTermGUID, "PROD_DB", "PUBLIC")
	require.Len(t, result.Values, 1)
	assert.Equal(t, "4fa2b210-9f86-44e5-9c35-0f4bd1f07712", result.Values[0].Value)
}

func TestDiscoverAll_BatchCapAndOrder(t *testing.T) {
	exec := &stubExecutor{defaultErr: errors.New("no data")}
	d := NewDiscoverer(nil, exec, nil, 3, 25, nil)

	results := d.DiscoverAll(context.Background(), "PROD_DB", "PUBLIC")

	// At most 3 queries in flight at once.
	assert.LessOrEqual(t, exec.maxSeen, 3)

	// Results preserve registry order for the discoverable kinds.
	var kinds []Kind
	for _, r := range results {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []Kind{KindGUID, KindTermGUID, KindGlossaryGUID, KindDomain, KindGlossary, KindOwner}, kinds)
}

func TestDiscoverAll_FailureIsPerKind(t *testing.T) {
	exec := &stubExecutor{
		responses: map[string]*datasource.QueryResult{
			"GLOSSARY_ENTITY": nameRows("Business Terms"),
		},
		defaultErr: errors.New("backend down"),
	}
	d := NewDiscoverer(nil, exec, nil, 2, 25, nil)

	results := d.DiscoverAll(context.Background(), "PROD_DB", "PUBLIC")

	byKind := make(map[Kind]DiscoveredValues)
	for _, r := range results {
		byKind[r.Kind] = r
	}
	assert.NotEmpty(t, byKind[KindGlossary].Values)
	assert.Error(t, byKind[KindOwner].Err)
}
