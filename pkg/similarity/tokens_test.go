package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"underscores", "TABLE_ENTITY", []string{"TABLE", "ENTITY"}},
		{"camel case", "dbtModelColumn", []string{"DBT", "MODEL", "COLUMN"}},
		{"mixed", "FIVETRAN_connectorLog", []string{"FIVETRAN", "CONNECTOR", "LOG"}},
		{"single", "GLOSSARY", []string{"GLOSSARY"}},
		{"empty", "", nil},
		{"dotted", "PROD.PUBLIC", []string{"PROD", "PUBLIC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitIdentifier(tt.input))
		})
	}
}

func TestDecompose(t *testing.T) {
	d := Decompose("FIVETRAN_CONNECTOR_ENTITY")
	assert.Equal(t, "FIVETRAN", d.Family)
	assert.Equal(t, []string{"CONNECTOR", "ENTITY"}, d.Parts)

	d = Decompose("TABLE_ENTITY")
	assert.Empty(t, d.Family)
	assert.Equal(t, []string{"TABLE", "ENTITY"}, d.Parts)
}

func TestSharedParts(t *testing.T) {
	a := Decompose("DBT_MODEL_ENTITY")
	b := Decompose("DBT_MODEL_COLUMN_ENTITY")
	// MODEL and ENTITY are shared; DBT is the family, not a part.
	assert.Equal(t, 2, SharedParts(a, b))

	// Duplicate parts only count once per occurrence on each side.
	c := Decompose("ENTITY_ENTITY")
	d := Decompose("ENTITY")
	assert.Equal(t, 1, SharedParts(c, d))
}
