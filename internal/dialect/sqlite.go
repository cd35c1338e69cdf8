package dialect

// SQLite reports declared type strings verbatim ("VARCHAR(60)"); sizes are
// parsed from them. Foreign keys are unnamed, so the list id stands in.
var sqliteCatalog = &queryCatalog{
	tables: `SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'`,
	columns: `SELECT
    m.name,
    p.name,
    p.type,
    NULL,
    NULL,
    NULL,
    CASE WHEN p."notnull" = 1 THEN 'NO' ELSE 'YES' END
FROM sqlite_master m
JOIN pragma_table_info(m.name) p
WHERE m.type IN ('table', 'view') AND m.name NOT LIKE 'sqlite_%'
ORDER BY m.name, p.cid`,
	foreignKeys: `SELECT m.name, CAST(f.id AS TEXT), f."from", f."table", f."to", f.seq + 1
FROM sqlite_master m
JOIN pragma_foreign_key_list(m.name) f
WHERE m.type = 'table'`,
	// origin 'c' keeps CREATE INDEX indexes and drops primary key and UNIQUE autoindexes.
	indexes: `SELECT l.name, l."unique", i.name
FROM pragma_index_list(?) l
LEFT JOIN pragma_index_info(l.name) i
WHERE l.origin = 'c'
ORDER BY l.name, i.seqno`,
}

// SQLite can only declare foreign keys inside CREATE TABLE.
func SQLite() *Dialect {
	d := standard("sqlite", "SQLite")
	d.Catalog = sqliteCatalog
	d.FunctionIndex = "CREATE {unique}INDEX {index} ON {table} ({expression})"
	d.ForUpdate = ""
	d.AlterForeignKeys = false
	d.ForeignKeyNames = false
	return d
}
