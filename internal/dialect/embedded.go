package dialect

// Derby keeps column types as serialized descriptors; their text form is
// "VARCHAR(60) NOT NULL", so size and nullability are parsed from it.
// Foreign key and index columns are only reachable through conglomerate
// descriptors and are not reported.
var derbyCatalog = &queryCatalog{
	tables: `SELECT t.TABLENAME, CASE t.TABLETYPE WHEN 'V' THEN 'VIEW' WHEN 'A' THEN 'SYNONYM' ELSE 'TABLE' END
FROM SYS.SYSTABLES t JOIN SYS.SYSSCHEMAS s ON s.SCHEMAID = t.SCHEMAID
WHERE s.SCHEMANAME = ? AND t.TABLETYPE IN ('T', 'V', 'A')`,
	columns: `SELECT
    t.TABLENAME,
    c.COLUMNNAME,
    CAST(c.COLUMNDATATYPE AS VARCHAR(128)),
    CAST(NULL AS INTEGER),
    CAST(NULL AS INTEGER),
    CAST(NULL AS INTEGER),
    CAST(NULL AS VARCHAR(3))
FROM SYS.SYSCOLUMNS c
JOIN SYS.SYSTABLES t ON t.TABLEID = c.REFERENCEID
JOIN SYS.SYSSCHEMAS s ON s.SCHEMAID = t.SCHEMAID
WHERE s.SCHEMANAME = ?
ORDER BY t.TABLENAME, c.COLUMNNUMBER`,
	foreignKeys: `SELECT t.TABLENAME, c.CONSTRAINTNAME, CAST(NULL AS VARCHAR(128)), rt.TABLENAME, CAST(NULL AS VARCHAR(128)), 1
FROM SYS.SYSCONSTRAINTS c
JOIN SYS.SYSTABLES t ON t.TABLEID = c.TABLEID
JOIN SYS.SYSSCHEMAS s ON s.SCHEMAID = c.SCHEMAID
JOIN SYS.SYSFOREIGNKEYS f ON f.CONSTRAINTID = c.CONSTRAINTID
JOIN SYS.SYSCONSTRAINTS k ON k.CONSTRAINTID = f.KEYCONSTRAINTID
JOIN SYS.SYSTABLES rt ON rt.TABLEID = k.TABLEID
WHERE c.TYPE = 'F' AND s.SCHEMANAME = ?`,
	// Uniqueness lives in the conglomerate descriptor; every index reads as non-unique.
	indexes: `SELECT g.CONGLOMERATENAME, 0, CAST(NULL AS VARCHAR(128))
FROM SYS.SYSCONGLOMERATES g
JOIN SYS.SYSTABLES t ON t.TABLEID = g.TABLEID
JOIN SYS.SYSSCHEMAS s ON s.SCHEMAID = t.SCHEMAID
WHERE g.ISINDEX AND t.TABLENAME = ? AND s.SCHEMANAME = ?
    AND g.CONGLOMERATEID NOT IN (SELECT CONGLOMERATEID FROM SYS.SYSKEYS)`,
	bindSchema: true,
}

var hsqlCatalog = &queryCatalog{
	tables: `SELECT TABLE_NAME, TABLE_TYPE FROM INFORMATION_SCHEMA.SYSTEM_TABLES WHERE TABLE_SCHEM = ?`,
	columns: `SELECT TABLE_NAME, COLUMN_NAME, TYPE_NAME, COLUMN_SIZE, DECIMAL_DIGITS, CHAR_OCTET_LENGTH, IS_NULLABLE
FROM INFORMATION_SCHEMA.SYSTEM_COLUMNS WHERE TABLE_SCHEM = ?
ORDER BY TABLE_NAME, ORDINAL_POSITION`,
	foreignKeys: `SELECT FKTABLE_NAME, FK_NAME, FKCOLUMN_NAME, PKTABLE_NAME, PKCOLUMN_NAME, KEY_SEQ
FROM INFORMATION_SCHEMA.SYSTEM_CROSSREFERENCE WHERE FKTABLE_SCHEM = ?`,
	indexes: `SELECT INDEX_NAME, CASE WHEN NON_UNIQUE THEN 0 ELSE 1 END, COLUMN_NAME
FROM INFORMATION_SCHEMA.SYSTEM_INDEXINFO
WHERE TABLE_NAME = ? AND TABLE_SCHEM = ? AND INDEX_NAME NOT LIKE 'SYS_IDX_SYS_PK%'
ORDER BY INDEX_NAME, ORDINAL_POSITION`,
	bindSchema: true,
}

var h2Catalog = &queryCatalog{
	tables: `SELECT TABLE_NAME, TABLE_TYPE FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ?`,
	columns: `SELECT TABLE_NAME, COLUMN_NAME, TYPE_NAME, CHARACTER_MAXIMUM_LENGTH, NUMERIC_SCALE, CHARACTER_OCTET_LENGTH, IS_NULLABLE
FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME, ORDINAL_POSITION`,
	foreignKeys: `SELECT FKTABLE_NAME, FK_NAME, FKCOLUMN_NAME, PKTABLE_NAME, PKCOLUMN_NAME, ORDINAL_POSITION
FROM INFORMATION_SCHEMA.CROSS_REFERENCES WHERE FKTABLE_SCHEMA = ?`,
	indexes: `SELECT INDEX_NAME, CASE WHEN NON_UNIQUE THEN 0 ELSE 1 END, COLUMN_NAME
FROM INFORMATION_SCHEMA.INDEXES
WHERE TABLE_NAME = ? AND TABLE_SCHEMA = ? AND PRIMARY_KEY = FALSE
ORDER BY INDEX_NAME, ORDINAL_POSITION`,
	bindSchema: true,
}

func embeddedFamily(name string, products ...string) *Dialect {
	d := standard(name, products...)
	d.ChangeColumnType = "ALTER TABLE {table} ALTER COLUMN {column} {type}"
	d.IndexTableCase = CaseUpper
	d.EmptyCatalogErrors = []string{"42X05", "42S02", "object not found"}
	return d
}

// Derby covers Apache Derby and Java DB.
func Derby() *Dialect {
	d := embeddedFamily("derby", "Apache Derby")
	d.Catalog = derbyCatalog
	d.Schema = userSchema
	d.ChangeColumnType = "ALTER TABLE {table} ALTER COLUMN {column} SET DATA TYPE {type}"
	d.GeneratedColumn = "ALTER TABLE {table} ADD COLUMN {column} {type} GENERATED ALWAYS AS ({expression})"
	return d
}

// HSQL covers HSQLDB 1.8 and later.
func HSQL() *Dialect {
	d := embeddedFamily("hsql", "HSQL Database Engine")
	d.Catalog = hsqlCatalog
	d.Schema = fixedSchema("PUBLIC")
	d.GeneratedColumn = "ALTER TABLE {table} ADD COLUMN {column} {type} GENERATED ALWAYS AS ({expression})"
	return d
}

// H2 covers the H2 database engine.
func H2() *Dialect {
	d := embeddedFamily("h2", "H2")
	d.Catalog = h2Catalog
	d.Schema = fixedSchema("PUBLIC")
	return d
}
