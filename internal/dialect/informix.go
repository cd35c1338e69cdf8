package dialect

// User tables start at tabid 100. Column types are numeric codes; a code of
// 256 or more marks a NOT NULL column.
var informixCatalog = &queryCatalog{
	tables: `SELECT tabname, CASE tabtype WHEN 'V' THEN 'VIEW' WHEN 'S' THEN 'SYNONYM' WHEN 'P' THEN 'SYNONYM' ELSE 'TABLE' END
FROM systables WHERE tabid >= 100`,
	columns: `SELECT
    t.tabname,
    c.colname,
    CASE MOD(c.coltype, 256)
        WHEN 0 THEN 'CHAR' WHEN 1 THEN 'SMALLINT' WHEN 2 THEN 'INTEGER' WHEN 3 THEN 'FLOAT'
        WHEN 4 THEN 'SMALLFLOAT' WHEN 5 THEN 'DECIMAL' WHEN 6 THEN 'SERIAL' WHEN 7 THEN 'DATE'
        WHEN 8 THEN 'MONEY' WHEN 10 THEN 'DATETIME' WHEN 11 THEN 'BYTE' WHEN 12 THEN 'TEXT'
        WHEN 13 THEN 'VARCHAR' WHEN 14 THEN 'INTERVAL' WHEN 15 THEN 'NCHAR' WHEN 16 THEN 'NVARCHAR'
        WHEN 17 THEN 'INT8' WHEN 18 THEN 'SERIAL8' WHEN 40 THEN 'LVARCHAR' WHEN 41 THEN 'BLOB'
        WHEN 43 THEN 'LVARCHAR' WHEN 52 THEN 'BIGINT' WHEN 53 THEN 'BIGSERIAL'
        ELSE 'UNKNOWN'
    END,
    CASE
        WHEN MOD(c.coltype, 256) IN (5, 8) THEN TRUNC(c.collength / 256)
        WHEN MOD(c.coltype, 256) IN (13, 16) THEN MOD(c.collength, 256)
        ELSE c.collength
    END,
    CASE WHEN MOD(c.coltype, 256) IN (5, 8) THEN MOD(c.collength, 256) END,
    c.collength,
    CASE WHEN c.coltype >= 256 THEN 'NO' ELSE 'YES' END
FROM syscolumns c, systables t
WHERE c.tabid = t.tabid AND t.tabid >= 100
ORDER BY t.tabname, c.colno`,
	foreignKeys: `SELECT t.tabname, c.constrname, CAST(NULL AS VARCHAR(128)), rt.tabname, CAST(NULL AS VARCHAR(128)), 1
FROM sysconstraints c, systables t, sysreferences r, systables rt
WHERE c.constrtype = 'R' AND c.tabid = t.tabid AND r.constrid = c.constrid AND rt.tabid = r.ptabid AND t.tabid >= 100`,
	// Indexes backing constraints have generated names starting with a blank.
	indexes: `SELECT i.idxname, CASE i.idxtype WHEN 'U' THEN 1 ELSE 0 END, c.colname
FROM sysindexes i, systables t, OUTER syscolumns c
WHERE i.tabid = t.tabid AND c.tabid = i.tabid AND c.colno = ABS(i.part1)
    AND t.tabname = ? AND i.idxname NOT LIKE ' %'`,
}

// Informix names the constraint after its definition.
func Informix() *Dialect {
	d := standard("informix", "Informix")
	d.Catalog = informixCatalog
	d.ClipLength = 18
	d.ChangeColumnType = "ALTER TABLE {table} MODIFY ({column} {type})"
	d.AddForeignKey = "ALTER TABLE {table} ADD CONSTRAINT FOREIGN KEY ({columns}) REFERENCES {reftable} ({refcolumns}) CONSTRAINT {name}"
	d.InlineForeignKey = "FOREIGN KEY ({columns}) REFERENCES {reftable} ({refcolumns}) CONSTRAINT {name}"
	return d
}
