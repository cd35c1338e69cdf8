package dialect

// Old-style joins and DECODE keep these queries valid on Oracle 8.
func oracleCatalog(charLength bool) *queryCatalog {
	// CHAR_LENGTH appeared with character length semantics in 9i.
	size := "COALESCE(DATA_PRECISION, NULLIF(CHAR_LENGTH, 0))"
	if !charLength {
		size = "COALESCE(DATA_PRECISION, DATA_LENGTH)"
	}
	return &queryCatalog{
		tables: `SELECT OBJECT_NAME, OBJECT_TYPE FROM ALL_OBJECTS
WHERE OWNER = :1 AND OBJECT_TYPE IN ('TABLE', 'VIEW', 'SYNONYM')`,
		columns: `SELECT
    TABLE_NAME,
    COLUMN_NAME,
    DATA_TYPE,
    ` + size + `,
    DATA_SCALE,
    DATA_LENGTH,
    NULLABLE
FROM ALL_TAB_COLUMNS
WHERE OWNER = :1
ORDER BY TABLE_NAME, COLUMN_ID`,
		foreignKeys: `SELECT
    c.TABLE_NAME,
    c.CONSTRAINT_NAME,
    cc.COLUMN_NAME,
    r.TABLE_NAME,
    rc.COLUMN_NAME,
    cc.POSITION
FROM ALL_CONSTRAINTS c, ALL_CONS_COLUMNS cc, ALL_CONSTRAINTS r, ALL_CONS_COLUMNS rc
WHERE c.CONSTRAINT_TYPE = 'R'
    AND c.OWNER = :1
    AND cc.OWNER = c.OWNER AND cc.CONSTRAINT_NAME = c.CONSTRAINT_NAME
    AND r.OWNER = c.R_OWNER AND r.CONSTRAINT_NAME = c.R_CONSTRAINT_NAME
    AND rc.OWNER = r.OWNER AND rc.CONSTRAINT_NAME = r.CONSTRAINT_NAME AND rc.POSITION = cc.POSITION`,
		indexes: `SELECT
    i.INDEX_NAME,
    DECODE(i.UNIQUENESS, 'UNIQUE', 1, 0),
    ic.COLUMN_NAME
FROM ALL_INDEXES i, ALL_IND_COLUMNS ic
WHERE ic.INDEX_OWNER(+) = i.OWNER AND ic.INDEX_NAME(+) = i.INDEX_NAME
    AND i.TABLE_NAME = :1 AND i.TABLE_OWNER = :2
    AND NOT EXISTS (SELECT 1 FROM ALL_CONSTRAINTS k
        WHERE k.OWNER = i.TABLE_OWNER AND k.INDEX_NAME = i.INDEX_NAME AND k.CONSTRAINT_TYPE = 'P')
ORDER BY i.INDEX_NAME, ic.COLUMN_POSITION`,
		bindSchema: true,
	}
}

func oracleFamily(name string) *Dialect {
	d := standard(name, "Oracle")
	d.OracleLike = true
	d.Schema = userSchema
	d.ChangeColumnType = "ALTER TABLE {table} MODIFY ({column} {type})"
	d.FunctionIndex = "CREATE {unique}INDEX {index} ON {table} ({expression})"
	d.ClusterForUpdate = " FOR UPDATE NOWAIT"
	d.QualifyIndexNames = true
	d.IndexTableCase = CaseUpper
	// table or view does not exist
	d.EmptyCatalogErrors = []string{"ORA-00942"}
	return d
}

// Oracle8 covers releases before 9i: byte length semantics only and no
// function-based indexes outside Enterprise Edition.
func Oracle8() *Dialect {
	d := oracleFamily("oracle8")
	d.Versions = Below(9, 0, 0)
	d.Catalog = oracleCatalog(false)
	d.FunctionIndex = ""
	return d
}

// Oracle covers Oracle 9i and later.
func Oracle() *Dialect {
	d := oracleFamily("oracle")
	d.Catalog = oracleCatalog(true)
	return d
}
