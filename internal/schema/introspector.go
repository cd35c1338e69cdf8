package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"db-reconcile/internal/dialect"
	"db-reconcile/internal/report"
	"db-reconcile/internal/typedesc"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Introspector reads live metadata through a dialect's catalog queries.
// Every method records its failure in the sink before returning it; a
// failure aborts only the calling phase.
type Introspector struct {
	db      Querier
	dialect *dialect.Dialect
	schema  string
	logger  *zap.Logger
}

// NewIntrospector returns an introspector for the given schema. An empty
// schema leaves table names unqualified.
func NewIntrospector(db Querier, d *dialect.Dialect, schemaName string, logger *zap.Logger) *Introspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Introspector{db: db, dialect: d, schema: schemaName, logger: logger}
}

// Dialect returns the dialect the queries come from.
func (in *Introspector) Dialect() *dialect.Dialect { return in.dialect }

// Schema returns the schema used to qualify table names.
func (in *Introspector) Schema() string { return in.schema }

// Qualify returns the upper-cased, schema qualified form of a table name,
// which is how every live table is keyed.
func (in *Introspector) Qualify(name string) string {
	if in.schema == "" {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(in.schema) + "." + strings.ToUpper(name)
}

// ListTables returns the tables, views, aliases and synonyms of the schema.
func (in *Introspector) ListTables(ctx context.Context, sink report.Sink) (TableSet, error) {
	tables, err := in.listTables(ctx)
	if err != nil {
		report.Addf(sink, report.Error, "Unable to list tables of schema [%s]: %v", in.schema, err)
		return nil, err
	}
	report.Addf(sink, report.Verbose, "Found %d tables in schema [%s]", len(tables), in.schema)
	return tables, nil
}

func (in *Introspector) listTables(ctx context.Context) (tables TableSet, err error) {
	query, args := in.dialect.Catalog.TablesQuery(in.schema)
	rows, err := in.db.QueryContext(ctx, query, args...)
	if in.dialect.IsEmptyCatalog(err) {
		in.logger.Debug("catalog reported no tables", zap.String("schema", in.schema), zap.Error(err))
		return TableSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()

	tables = TableSet{}
	for rows.Next() {
		var name, kind sql.NullString
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		if !name.Valid {
			continue
		}
		t, ok := normalizeTableType(kind.String)
		if !ok {
			continue
		}
		key := in.Qualify(name.String)
		tables[key] = Table{Name: key, Raw: name.String, Type: t}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

func normalizeTableType(kind string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "TABLE", "BASE TABLE":
		return TypeTable, true
	case "VIEW":
		return TypeView, true
	case "ALIAS":
		return TypeAlias, true
	case "SYNONYM":
		return TypeSynonym, true
	default:
		return "", false
	}
}

// ListColumns scans the columns of the whole schema once and keeps those of
// the requested tables.
func (in *Introspector) ListColumns(ctx context.Context, tables TableSet, sink report.Sink) (Columns, error) {
	cols, err := in.listColumns(ctx, tables)
	if err != nil {
		report.Addf(sink, report.Error, "Unable to list columns of schema [%s]: %v", in.schema, err)
		return nil, err
	}
	return cols, nil
}

func (in *Introspector) listColumns(ctx context.Context, tables TableSet) (cols Columns, err error) {
	query, args := in.dialect.Catalog.ColumnsQuery(in.schema)
	rows, err := in.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()

	cols = Columns{}
	for rows.Next() {
		var tName, cName, typeName, size, decimals, maxBytes, nullable sql.NullString
		if err := rows.Scan(&tName, &cName, &typeName, &size, &decimals, &maxBytes, &nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", tName.String, err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}
		key := in.Qualify(tName.String)
		if !tables.Has(key) {
			continue
		}
		col := in.newColumn(key, cName.String, typeName.String, nullable.String)
		if n := parseLength(size); n >= 0 {
			col.Size = n
		}
		if n := parseLength(decimals); n >= 0 {
			col.Decimals = n
		}
		col.MaxBytes = parseLength(maxBytes)

		if cols[key] == nil {
			cols[key] = map[string]*Column{}
		}
		cols[key][col.Name] = col
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	return cols, nil
}

// newColumn normalizes the reported type name. Catalogs that report the
// declared type text ("VARCHAR(60)", "INTEGER NOT NULL") have their size,
// digits and nullability taken from it.
func (in *Introspector) newColumn(table, name, typeName, nullable string) *Column {
	col := &Column{
		TableName: table,
		Name:      strings.ToUpper(name),
		Nullable:  parseNullable(nullable),
	}
	typeName = strings.TrimSpace(typeName)
	if upper := strings.ToUpper(typeName); strings.HasSuffix(upper, " NOT NULL") {
		typeName = strings.TrimSpace(typeName[:len(typeName)-len(" NOT NULL")])
		if col.Nullable == NullUnknown {
			col.Nullable = NullNo
		}
	}
	desc, _ := typedesc.Parse(typeName, in.dialect.OracleLike)
	col.TypeName = desc.Base
	col.Size = desc.Size
	col.Decimals = desc.Decimals
	return col
}

// parseLength reads a numeric catalog value that drivers may return as an
// integer, a decimal or text. Absent values read as -1.
func parseLength(ns sql.NullString) int {
	if !ns.Valid || ns.String == "" {
		return -1
	}
	var length int
	if _, err := fmt.Sscanf(ns.String, "%d", &length); err == nil {
		return length
	}
	var fLength float64
	if _, err := fmt.Sscanf(ns.String, "%f", &fLength); err == nil {
		return int(fLength)
	}
	return -1
}

// ListForeignKeys scans the foreign keys of the whole schema once.
func (in *Introspector) ListForeignKeys(ctx context.Context, tables TableSet, sink report.Sink) (ForeignKeys, error) {
	fks, err := in.listForeignKeys(ctx, tables)
	if err != nil {
		report.Addf(sink, report.Error, "Unable to list foreign keys of schema [%s]: %v", in.schema, err)
		return nil, err
	}
	return fks, nil
}

type keyColumn struct {
	seq       int
	column    string
	refColumn string
}

func (in *Introspector) listForeignKeys(ctx context.Context, tables TableSet) (fks ForeignKeys, err error) {
	query, args := in.dialect.Catalog.ForeignKeysQuery(in.schema)
	rows, err := in.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()

	fks = ForeignKeys{}
	parts := map[*ForeignKey][]keyColumn{}
	for rows.Next() {
		var tName, cName, column, refTable, refColumn, seq sql.NullString
		if err := rows.Scan(&tName, &cName, &column, &refTable, &refColumn, &seq); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}
		key := in.Qualify(tName.String)
		if !tables.Has(key) {
			continue
		}
		name := strings.ToUpper(cName.String)
		if fks[key] == nil {
			fks[key] = map[string]*ForeignKey{}
		}
		fk, ok := fks[key][name]
		if !ok {
			fk = &ForeignKey{TableName: key, Name: name, RefTable: in.Qualify(refTable.String)}
			fks[key][name] = fk
		}
		if column.Valid {
			parts[fk] = append(parts[fk], keyColumn{
				seq:       parseLength(seq),
				column:    strings.ToUpper(column.String),
				refColumn: strings.ToUpper(refColumn.String),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys: %w", err)
	}

	for fk, cols := range parts {
		sort.SliceStable(cols, func(i, j int) bool { return cols[i].seq < cols[j].seq })
		for _, c := range cols {
			fk.Columns = append(fk.Columns, c.column)
			fk.RefColumns = append(fk.RefColumns, c.refColumn)
		}
	}
	return fks, nil
}

// ListIndexes queries the indexes of each requested table. Every table is
// present in the result, with an empty map when it has no indexes. Unique
// indexes are left out unless includeUnique is set.
func (in *Introspector) ListIndexes(ctx context.Context, tables TableSet, includeUnique bool, sink report.Sink) (Indexes, error) {
	out := Indexes{}
	for _, key := range tables.Names() {
		t := tables[key]
		if t.IsView() {
			continue
		}
		idx, err := in.tableIndexes(ctx, t, includeUnique)
		if err != nil {
			report.Addf(sink, report.Error, "Unable to list indexes of table [%s]: %v", key, err)
			return nil, err
		}
		out[key] = idx
	}
	return out, nil
}

func (in *Introspector) tableIndexes(ctx context.Context, t Table, includeUnique bool) (map[string]*Index, error) {
	names := in.dialect.IndexTableNames(t.Raw)
	for i, raw := range names {
		idx, rows, err := in.queryIndexes(ctx, t.Name, raw, includeUnique)
		if err != nil {
			return nil, err
		}
		if rows > 0 || i == len(names)-1 {
			return idx, nil
		}
		in.logger.Debug("no index rows, retrying", zap.String("table", raw), zap.String("next", names[i+1]))
	}
	return map[string]*Index{}, nil
}

// queryIndexes also returns the raw row count, statistics rows included, so
// an empty answer can be told apart from a table without indexes.
func (in *Introspector) queryIndexes(ctx context.Context, table, raw string, includeUnique bool) (idx map[string]*Index, count int, err error) {
	query, args := in.dialect.Catalog.IndexesQuery(in.schema, raw)
	rows, err := in.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()

	idx = map[string]*Index{}
	for rows.Next() {
		var name, column sql.NullString
		var unique sql.NullInt64
		if err := rows.Scan(&name, &unique, &column); err != nil {
			return nil, 0, fmt.Errorf("failed to scan index: %w", err)
		}
		count++
		// Rows without an index name carry table statistics.
		if !name.Valid || name.String == "" {
			continue
		}
		isUnique := unique.Valid && unique.Int64 != 0
		if isUnique && !includeUnique {
			continue
		}
		key := strings.ToUpper(name.String)
		ix, ok := idx[key]
		if !ok {
			ix = &Index{TableName: table, Name: key, Unique: isUnique}
			idx[key] = ix
		}
		if column.Valid {
			ix.Columns = append(ix.Columns, strings.ToUpper(column.String))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating indexes: %w", err)
	}
	return idx, count, nil
}

// Snapshot is the complete live schema.
type Snapshot struct {
	Tables      TableSet
	Columns     Columns
	ForeignKeys ForeignKeys
	Indexes     Indexes
}

// Snapshot reads every kind of metadata. The first failure is returned.
func (in *Introspector) Snapshot(ctx context.Context, sink report.Sink) (*Snapshot, error) {
	var s Snapshot
	var err error
	if s.Tables, err = in.ListTables(ctx, sink); err != nil {
		return nil, err
	}
	if s.Columns, err = in.ListColumns(ctx, s.Tables, sink); err != nil {
		return nil, err
	}
	if s.ForeignKeys, err = in.ListForeignKeys(ctx, s.Tables, sink); err != nil {
		return nil, err
	}
	if s.Indexes, err = in.ListIndexes(ctx, s.Tables, true, sink); err != nil {
		return nil, err
	}
	return &s, nil
}
