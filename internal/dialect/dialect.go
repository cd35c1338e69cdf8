// Package dialect describes the database products the reconciler can talk to:
// how to recognize them from a live connection, how their catalogs are
// queried, and the DDL templates used to change them.
package dialect

import (
	"strings"
)

// DefaultClipLength is the constraint name length used when a dialect sets none.
const DefaultClipLength = 30

// Case selects how a table name is passed to a per-table catalog query.
type Case int

const (
	// CaseAsIs passes the name as reported by the table listing.
	CaseAsIs Case = iota
	// CaseUpper upper-cases the name.
	CaseUpper
	// CaseAsIsThenLower retries with the lower-cased name when the first query is empty.
	CaseAsIsThenLower
)

// Catalog builds the metadata queries of a product. Every query returns the
// columns documented on the method, in order.
type Catalog interface {
	// TablesQuery returns table_name, table_type.
	TablesQuery(schema string) (string, []any)
	// ColumnsQuery returns table_name, column_name, type_name, column_size,
	// decimal_digits, max_bytes, is_nullable.
	ColumnsQuery(schema string) (string, []any)
	// ForeignKeysQuery returns table_name, constraint_name, column_name,
	// ref_table_name, ref_column_name, key_seq.
	ForeignKeysQuery(schema string) (string, []any)
	// IndexesQuery returns index_name, is_unique (0/1), column_name.
	IndexesQuery(schema, table string) (string, []any)
}

// Dialect is an immutable database product/version profile.
//
// Templates use {name} placeholders, see Template.
type Dialect struct {
	Name       string
	Products   []string
	Versions   VersionPredicate
	OracleLike bool
	ClipLength int
	Schema     func(p Probe) string
	Catalog    Catalog

	AddColumn        Template
	AddColumnLegacy  Template
	ChangeColumnType Template
	AddForeignKey    Template
	InlineForeignKey Template
	CreateIndex      Template
	FunctionIndex    Template
	GeneratedColumn  Template
	DropIndex        Template
	ForUpdate        string
	ClusterForUpdate string

	// AlterForeignKeys is false when foreign keys can only be declared in CREATE TABLE.
	AlterForeignKeys bool
	// ForeignKeyNames is false when the catalog does not report constraint names.
	ForeignKeyNames bool
	// ForeignKeysIndexed is set when adding a foreign key implicitly creates an
	// index named after the constraint.
	ForeignKeysIndexed bool
	// QualifyIndexNames prefixes index names with the schema.
	QualifyIndexNames bool
	IndexTableCase    Case

	// EmptyCatalogErrors are driver message fragments meaning the catalog
	// holds no tables yet, raised by products that fail instead of
	// returning no rows.
	EmptyCatalogErrors []string
}

// Standard DDL templates shared by most dialects.
const (
	stdAddColumn        Template = "ALTER TABLE {table} ADD {column} {type}"
	stdAddColumnLegacy  Template = "ALTER TABLE {table} ADD COLUMN {column} {type}"
	stdAddForeignKey    Template = "ALTER TABLE {table} ADD CONSTRAINT {name} FOREIGN KEY ({columns}) REFERENCES {reftable} ({refcolumns})"
	stdInlineForeignKey Template = "CONSTRAINT {name} FOREIGN KEY ({columns}) REFERENCES {reftable} ({refcolumns})"
	stdCreateIndex      Template = "CREATE {unique}INDEX {index} ON {table} ({columns})"

	// The three drop index shapes.
	DropIndexSchemaIndex      Template = "DROP INDEX {qindex}"
	DropIndexSchemaTableIndex Template = "DROP INDEX {table}.{index}"
	DropIndexAlterTable       Template = "ALTER TABLE {table} DROP INDEX {index}"
)

// standard returns a dialect with the ANSI templates filled in.
func standard(name string, products ...string) *Dialect {
	return &Dialect{
		Name:             name,
		Products:         products,
		AddColumn:        stdAddColumn,
		AddColumnLegacy:  stdAddColumnLegacy,
		AddForeignKey:    stdAddForeignKey,
		InlineForeignKey: stdInlineForeignKey,
		CreateIndex:      stdCreateIndex,
		DropIndex:        DropIndexSchemaIndex,
		ForUpdate:        " FOR UPDATE",
		AlterForeignKeys: true,
		ForeignKeyNames:  true,
	}
}

// Matches reports whether the probed connection belongs to this dialect: the
// product name must start with one of Products (case-insensitive) and the
// version, when a predicate is set, must satisfy it.
func (d *Dialect) Matches(p Probe) bool {
	product := strings.ToLower(strings.TrimSpace(p.ProductName))
	matched := false
	for _, prefix := range d.Products {
		if strings.HasPrefix(product, strings.ToLower(prefix)) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if d.Versions == nil {
		return true
	}
	v, ok := p.Version()
	if !ok {
		return false
	}
	return d.Versions(v)
}

// IsEmptyCatalog reports whether err is how the product says there are no
// tables to list.
func (d *Dialect) IsEmptyCatalog(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToUpper(err.Error())
	for _, fragment := range d.EmptyCatalogErrors {
		if strings.Contains(msg, strings.ToUpper(fragment)) {
			return true
		}
	}
	return false
}

// SchemaName resolves the schema used to qualify table names. An empty result
// means the dialect does not qualify names.
func (d *Dialect) SchemaName(p Probe) string {
	if d.Schema == nil {
		return ""
	}
	return d.Schema(p)
}

// Clip returns the maximum constraint name length.
func (d *Dialect) Clip() int {
	if d.ClipLength <= 0 {
		return DefaultClipLength
	}
	return d.ClipLength
}

// SupportsChangeColumnType reports whether column types can be altered.
func (d *Dialect) SupportsChangeColumnType() bool {
	return d.ChangeColumnType != ""
}

// SupportsFunctionIndexes reports whether expressions can be indexed directly.
func (d *Dialect) SupportsFunctionIndexes() bool {
	return d.FunctionIndex != ""
}

// SupportsGeneratedColumns reports whether virtual columns can be added.
func (d *Dialect) SupportsGeneratedColumns() bool {
	return d.GeneratedColumn != ""
}

// SelectForUpdate returns the row locking suffix for a SELECT.
func (d *Dialect) SelectForUpdate(cluster bool) string {
	if cluster && d.ClusterForUpdate != "" {
		return d.ClusterForUpdate
	}
	return d.ForUpdate
}

// IndexTableNames returns the table names to try, in order, for a per-table
// index query.
func (d *Dialect) IndexTableNames(raw string) []string {
	switch d.IndexTableCase {
	case CaseUpper:
		return []string{strings.ToUpper(raw)}
	case CaseAsIsThenLower:
		if lower := strings.ToLower(raw); lower != raw {
			return []string{raw, lower}
		}
	}
	return []string{raw}
}

func (d *Dialect) String() string { return d.Name }

// fixedSchema returns a resolver that always yields name.
func fixedSchema(name string) func(Probe) string {
	return func(Probe) string { return name }
}

// userSchema resolves the schema to the upper-cased connection user.
func userSchema(p Probe) string {
	return strings.ToUpper(p.UserName)
}
