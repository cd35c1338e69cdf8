package schema

import (
	"sort"
	"strings"
)

// Table is a live table, view or synonym. Name is upper-cased and schema
// qualified; Raw is the name as the catalog reported it.
type Table struct {
	Name string
	Raw  string
	Type string
}

// IsView reports whether the object cannot carry indexes.
func (t Table) IsView() bool {
	return t.Type != TypeTable
}

// Object types kept by ListTables.
const (
	TypeTable   = "TABLE"
	TypeView    = "VIEW"
	TypeAlias   = "ALIAS"
	TypeSynonym = "SYNONYM"
)

// TableSet is keyed by qualified upper-case table name.
type TableSet map[string]Table

// Names returns the qualified names in sorted order.
func (s TableSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the set holds name.
func (s TableSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Clone returns a shallow copy.
func (s TableSet) Clone() TableSet {
	out := make(TableSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Nullable is a tri-state nullability flag.
type Nullable int

const (
	NullUnknown Nullable = iota
	NullYes
	NullNo
)

func parseNullable(s string) Nullable {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "Y":
		return NullYes
	case "NO", "N":
		return NullNo
	default:
		return NullUnknown
	}
}

// Column is a live column. Size, Decimals and MaxBytes are -1 when the
// catalog does not report them.
type Column struct {
	TableName string
	Name      string
	TypeName  string
	Size      int
	Decimals  int
	MaxBytes  int
	Nullable  Nullable
}

// ForeignKey is a live foreign key constraint, columns in key order.
type ForeignKey struct {
	TableName  string
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
}

// Index is a live index. Columns is empty for expression indexes.
type Index struct {
	TableName string
	Name      string
	Unique    bool
	Columns   []string
}

// Columns groups live columns by qualified table, then by upper-case column name.
type Columns map[string]map[string]*Column

// ForeignKeys groups live foreign keys by qualified table, then by upper-case constraint name.
type ForeignKeys map[string]map[string]*ForeignKey

// Indexes groups live indexes by qualified table, then by upper-case index name.
type Indexes map[string]map[string]*Index
