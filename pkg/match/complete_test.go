package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletePrefixFirst(t *testing.T) {
	m := New(0, 0)
	names := m.Complete("TAB", []string{"COLUMN_ENTITY", "TABLE_ENTITY", "TABLEAU_WORKBOOK_ENTITY"})
	require.GreaterOrEqual(t, len(names), 2)
	assert.Equal(t, "TABLE_ENTITY", names[0])
	assert.Equal(t, "TABLEAU_WORKBOOK_ENTITY", names[1])
}

func TestCompleteFallsBackToFuzzy(t *testing.T) {
	m := New(0, 0)
	names := m.Complete("GLOSSRY_TERM_ENTITY", []string{"GLOSSARY_TERM_ENTITY", "VIEW_ENTITY"})
	require.NotEmpty(t, names)
	assert.Equal(t, "GLOSSARY_TERM_ENTITY", names[0])
}

func TestCompleteCaseInsensitive(t *testing.T) {
	m := New(0, 0)
	names := m.Complete("tab", []string{"TABLE_ENTITY"})
	require.Len(t, names, 1)
	assert.Equal(t, "TABLE_ENTITY", names[0])
}

func TestCompleteRespectsCap(t *testing.T) {
	m := New(0.01, 2)
	names := m.Complete("ENT", []string{"ENT_A", "ENT_B", "ENT_C"})
	assert.Len(t, names, 2)
}
