package dialect

var db2Catalog = &queryCatalog{
	tables: `SELECT TABNAME, CASE TYPE WHEN 'V' THEN 'VIEW' WHEN 'A' THEN 'ALIAS' ELSE 'TABLE' END
FROM SYSCAT.TABLES WHERE TABSCHEMA = ?`,
	columns: `SELECT TABNAME, COLNAME, TYPENAME, LENGTH, SCALE, LENGTH, NULLS
FROM SYSCAT.COLUMNS WHERE TABSCHEMA = ?
ORDER BY TABNAME, COLNO`,
	foreignKeys: `SELECT r.TABNAME, r.CONSTNAME, k.COLNAME, r.REFTABNAME, pk.COLNAME, k.COLSEQ
FROM SYSCAT.REFERENCES r
JOIN SYSCAT.KEYCOLUSE k ON k.CONSTNAME = r.CONSTNAME AND k.TABSCHEMA = r.TABSCHEMA AND k.TABNAME = r.TABNAME
JOIN SYSCAT.KEYCOLUSE pk ON pk.CONSTNAME = r.REFKEYNAME AND pk.TABSCHEMA = r.REFTABSCHEMA
    AND pk.TABNAME = r.REFTABNAME AND pk.COLSEQ = k.COLSEQ
WHERE r.TABSCHEMA = ?`,
	indexes: `SELECT i.INDNAME, CASE i.UNIQUERULE WHEN 'U' THEN 1 ELSE 0 END, c.COLNAME
FROM SYSCAT.INDEXES i
LEFT JOIN SYSCAT.INDEXCOLUSE c ON c.INDSCHEMA = i.INDSCHEMA AND c.INDNAME = i.INDNAME
WHERE i.TABNAME = ? AND i.TABSCHEMA = ? AND i.UNIQUERULE <> 'P'
ORDER BY i.INDNAME, c.COLSEQ`,
	bindSchema: true,
}

// DB2 covers DB2 for Linux, Unix and Windows.
func DB2() *Dialect {
	d := standard("db2", "DB2")
	d.Catalog = db2Catalog
	d.Schema = userSchema
	d.ClipLength = 18
	d.ChangeColumnType = "ALTER TABLE {table} ALTER COLUMN {column} SET DATA TYPE {type}"
	d.GeneratedColumn = "ALTER TABLE {table} ADD COLUMN {column} {type} GENERATED ALWAYS AS ({expression})"
	d.ForUpdate = " FOR UPDATE WITH RS"
	d.QualifyIndexNames = true
	d.IndexTableCase = CaseUpper
	d.EmptyCatalogErrors = []string{"SQL0204N", "SQLCODE=-204"}
	return d
}
