package dialect

// go-mssqldb binds @p1, @p2, ... by position.
var mssqlCatalog = &queryCatalog{
	tables: `SELECT TABLE_NAME, TABLE_TYPE FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1`,
	// CHARACTER_MAXIMUM_LENGTH is -1 for the MAX types, which reads as "no size".
	columns: `SELECT
    c.TABLE_NAME,
    c.COLUMN_NAME,
    c.DATA_TYPE,
    COALESCE(c.CHARACTER_MAXIMUM_LENGTH, c.NUMERIC_PRECISION),
    c.NUMERIC_SCALE,
    c.CHARACTER_OCTET_LENGTH,
    c.IS_NULLABLE
FROM INFORMATION_SCHEMA.COLUMNS c
WHERE c.TABLE_SCHEMA = @p1
ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`,
	foreignKeys: `SELECT
    t.name,
    fk.name,
    c.name,
    rt.name,
    rc.name,
    fkc.constraint_column_id
FROM sys.foreign_keys fk
JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
JOIN sys.tables t ON t.object_id = fk.parent_object_id
JOIN sys.schemas s ON s.schema_id = t.schema_id
JOIN sys.columns c ON c.object_id = fkc.parent_object_id AND c.column_id = fkc.parent_column_id
JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
JOIN sys.columns rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
WHERE s.name = @p1`,
	// Heaps show up as an index row without a name.
	indexes: `SELECT
    i.name,
    CAST(i.is_unique AS INT),
    c.name
FROM sys.indexes i
JOIN sys.tables t ON t.object_id = i.object_id
JOIN sys.schemas s ON s.schema_id = t.schema_id
LEFT JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
LEFT JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE t.name = @p1 AND s.name = @p2 AND i.is_primary_key = 0
ORDER BY i.name, ic.key_ordinal`,
	bindSchema: true,
}

// Sybase ASE stores up to sixteen key columns per row in sysreferences; keys
// wider than four columns are truncated here.
var sybaseCatalog = &queryCatalog{
	tables: `SELECT o.name, CASE o.type WHEN 'V' THEN 'VIEW' ELSE 'TABLE' END
FROM sysobjects o
WHERE o.type IN ('U', 'V') AND user_name(o.uid) = @p1`,
	columns: `SELECT
    o.name,
    c.name,
    t.name,
    COALESCE(c.prec, c.length),
    c.scale,
    c.length,
    CASE WHEN c.status & 8 = 8 THEN 'YES' ELSE 'NO' END
FROM syscolumns c
JOIN sysobjects o ON o.id = c.id
JOIN systypes t ON t.usertype = c.usertype
WHERE o.type IN ('U', 'V') AND user_name(o.uid) = @p1
ORDER BY o.name, c.colid`,
	foreignKeys: `SELECT
    o.name,
    object_name(r.constrid),
    col_name(r.tableid, CASE n.seq WHEN 1 THEN r.fokey1 WHEN 2 THEN r.fokey2 WHEN 3 THEN r.fokey3 ELSE r.fokey4 END),
    object_name(r.reftabid),
    col_name(r.reftabid, CASE n.seq WHEN 1 THEN r.refkey1 WHEN 2 THEN r.refkey2 WHEN 3 THEN r.refkey3 ELSE r.refkey4 END),
    n.seq
FROM sysreferences r
JOIN sysobjects o ON o.id = r.tableid
JOIN (SELECT 1 AS seq UNION ALL SELECT 2 UNION ALL SELECT 3 UNION ALL SELECT 4) n ON n.seq <= r.keycnt
WHERE user_name(o.uid) = @p1`,
	// status 2048 marks the primary key index.
	indexes: `SELECT
    i.name,
    CASE WHEN i.status & 2 = 2 THEN 1 ELSE 0 END,
    index_col(o.name, i.indid, n.seq, o.uid)
FROM sysindexes i
JOIN sysobjects o ON o.id = i.id
JOIN (SELECT 1 AS seq UNION ALL SELECT 2 UNION ALL SELECT 3 UNION ALL SELECT 4) n ON n.seq <= i.keycnt
WHERE o.name = @p1 AND user_name(o.uid) = @p2 AND i.indid BETWEEN 1 AND 254 AND i.status & 2048 = 0
ORDER BY i.name, n.seq`,
	bindSchema: true,
}

// MSSQL covers Microsoft SQL Server 2005 and later.
func MSSQL() *Dialect {
	d := standard("mssql", "Microsoft SQL Server")
	d.Catalog = mssqlCatalog
	d.Schema = fixedSchema("dbo")
	d.ChangeColumnType = "ALTER TABLE {table} ALTER COLUMN {column} {type}"
	d.GeneratedColumn = "ALTER TABLE {table} ADD {column} AS ({expression})"
	d.DropIndex = DropIndexSchemaTableIndex
	// Row locks are table hints, not a SELECT suffix.
	d.ForUpdate = ""
	return d
}

// Sybase covers Sybase Adaptive Server Enterprise.
func Sybase() *Dialect {
	d := standard("sybase", "Adaptive Server Enterprise", "Sybase")
	d.Catalog = sybaseCatalog
	d.Schema = fixedSchema("dbo")
	d.ChangeColumnType = "ALTER TABLE {table} MODIFY {column} {type}"
	d.DropIndex = DropIndexSchemaTableIndex
	d.ForUpdate = " FOR UPDATE"
	d.ClusterForUpdate = " FOR UPDATE"
	return d
}
