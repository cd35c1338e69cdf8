package schema_test

import (
	"testing"

	"db-reconcile/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByDependencies_ComplexCircular(t *testing.T) {
	// A -> B -> C -> D -> E -> A, F -> E, G standalone.
	deps := map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"D"},
		"D": {"E"},
		"E": {"A"},
		"F": {"E"},
	}
	names := []string{"A", "B", "C", "D", "E", "F", "G"}

	sorted := schema.SortByDependencies(names, deps, nil)
	require.Len(t, sorted, len(names))
	assert.ElementsMatch(t, names, sorted)
	assert.Equal(t, "G", sorted[0])

	// Deterministic across runs.
	assert.Equal(t, sorted, schema.SortByDependencies(names, deps, nil))
}

func TestSortByDependencies_Simple(t *testing.T) {
	deps := map[string][]string{
		"ORDER_ITEM":   {"ORDER_HEADER"},
		"ORDER_HEADER": {"CUSTOMER"},
	}
	sorted := schema.SortByDependencies([]string{"ORDER_ITEM", "ORDER_HEADER", "CUSTOMER"}, deps, nil)
	assert.Equal(t, []string{"CUSTOMER", "ORDER_HEADER", "ORDER_ITEM"}, sorted)
}

func TestDependencies(t *testing.T) {
	tables := schema.TableSet{
		"CUSTOMER":     {Name: "CUSTOMER", Type: schema.TypeTable},
		"ORDER_HEADER": {Name: "ORDER_HEADER", Type: schema.TypeTable},
	}
	fks := schema.ForeignKeys{
		"ORDER_HEADER": {
			"PLACINGCUSTOMER": {Name: "PLACINGCUSTOMER", RefTable: "CUSTOMER"},
			"EXTERNAL":        {Name: "EXTERNAL", RefTable: "ELSEWHERE"},
			"SELF":            {Name: "SELF", RefTable: "ORDER_HEADER"},
		},
	}
	assert.Equal(t, map[string][]string{"ORDER_HEADER": {"CUSTOMER"}}, schema.Dependencies(tables, fks))
}
