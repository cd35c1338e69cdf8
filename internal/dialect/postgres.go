package dialect

// udt_name is used instead of data_type: it reports varchar, int4, bpchar
// rather than the SQL standard spellings.
var postgresCatalog = &queryCatalog{
	tables: `SELECT table_name, table_type FROM information_schema.tables WHERE table_schema = $1`,
	columns: `SELECT
    c.table_name,
    c.column_name,
    c.udt_name,
    COALESCE(c.character_maximum_length, c.numeric_precision),
    c.numeric_scale,
    c.character_octet_length,
    c.is_nullable
FROM information_schema.columns c
WHERE c.table_schema = $1
ORDER BY c.table_name, c.ordinal_position`,
	// information_schema cannot pair the columns of a multi-column key, so the
	// key arrays of pg_constraint are unnested side by side.
	foreignKeys: `SELECT
    cl.relname,
    con.conname,
    a.attname,
    rcl.relname,
    ra.attname,
    k.n
FROM pg_constraint con
JOIN pg_class cl ON cl.oid = con.conrelid
JOIN pg_namespace ns ON ns.oid = cl.relnamespace
JOIN pg_class rcl ON rcl.oid = con.confrelid
CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(col, refcol, n)
JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.col
JOIN pg_attribute ra ON ra.attrelid = con.confrelid AND ra.attnum = k.refcol
WHERE con.contype = 'f' AND ns.nspname = $1`,
	// Expression indexes have attnum 0 and come back with a NULL column.
	indexes: `SELECT
    i.relname,
    CASE WHEN ix.indisunique THEN 1 ELSE 0 END,
    a.attname
FROM pg_index ix
JOIN pg_class t ON t.oid = ix.indrelid
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN pg_namespace n ON n.oid = t.relnamespace
LEFT JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
WHERE t.relname = $1 AND n.nspname = $2 AND NOT ix.indisprimary
ORDER BY i.relname`,
	bindSchema: true,
}

// Before 7.3 there are no schemas; everything outside the system catalog is listed.
var postgres72Catalog = &queryCatalog{
	tables: `SELECT relname, CASE relkind WHEN 'v' THEN 'VIEW' ELSE 'TABLE' END
FROM pg_class WHERE relkind IN ('r', 'v') AND relname NOT LIKE 'pg\_%'`,
	columns: `SELECT
    c.relname,
    a.attname,
    t.typname,
    CASE WHEN a.atttypmod > 4 AND t.typname IN ('varchar', 'bpchar') THEN a.atttypmod - 4
         WHEN a.atttypmod > 4 AND t.typname = 'numeric' THEN ((a.atttypmod - 4) >> 16) & 65535 END,
    CASE WHEN a.atttypmod > 4 AND t.typname = 'numeric' THEN (a.atttypmod - 4) & 65535 END,
    NULL,
    CASE WHEN a.attnotnull THEN 'NO' ELSE 'YES' END
FROM pg_class c
JOIN pg_attribute a ON a.attrelid = c.oid
JOIN pg_type t ON t.oid = a.atttypid
WHERE c.relkind IN ('r', 'v') AND c.relname NOT LIKE 'pg\_%' AND a.attnum > 0
ORDER BY c.relname, a.attnum`,
	// Foreign keys were triggers with the key spelled out in tgargs; only
	// constraint and table names are recovered.
	foreignKeys: `SELECT c.relname, t.tgconstrname, NULL, r.relname, NULL, 1
FROM pg_trigger t
JOIN pg_class c ON c.oid = t.tgrelid
JOIN pg_class r ON r.oid = t.tgconstrrelid
JOIN pg_proc p ON p.oid = t.tgfoid
WHERE p.proname = 'RI_FKey_check_ins'`,
	indexes: `SELECT
    i.relname,
    CASE WHEN ix.indisunique THEN 1 ELSE 0 END,
    a.attname
FROM pg_index ix
JOIN pg_class t ON t.oid = ix.indrelid
JOIN pg_class i ON i.oid = ix.indexrelid
LEFT JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ix.indkey[0]
WHERE t.relname = $1 AND NOT ix.indisprimary`,
}

func postgresFamily(name string, products ...string) *Dialect {
	d := standard(name, products...)
	d.Catalog = postgresCatalog
	d.Schema = fixedSchema("public")
	d.ChangeColumnType = "ALTER TABLE {table} ALTER COLUMN {column} TYPE {type}"
	d.FunctionIndex = "CREATE {unique}INDEX {index} ON {table} (({expression}))"
	d.ClusterForUpdate = " FOR UPDATE NOWAIT"
	d.IndexTableCase = CaseAsIsThenLower
	return d
}

// Postgres72 covers PostgreSQL releases without schemas or ALTER COLUMN TYPE.
func Postgres72() *Dialect {
	d := postgresFamily("postgres72", "PostgreSQL")
	d.Versions = Below(7, 3, 0)
	d.Catalog = postgres72Catalog
	d.Schema = nil
	d.ChangeColumnType = ""
	d.FunctionIndex = ""
	return d
}

// Postgres covers PostgreSQL 7.3 and later.
func Postgres() *Dialect {
	d := postgresFamily("postgres", "PostgreSQL")
	d.Versions = AtLeast(7, 3, 0)
	return d
}

// Cockroach speaks the PostgreSQL dialect and catalog.
func Cockroach() *Dialect {
	d := postgresFamily("cockroach", "CockroachDB")
	d.ClusterForUpdate = ""
	return d
}
