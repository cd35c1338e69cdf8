package dialect

// RDB$ names are CHAR columns padded with blanks.
var firebirdCatalog = &queryCatalog{
	tables: `SELECT TRIM(RDB$RELATION_NAME), CASE WHEN RDB$VIEW_BLR IS NULL THEN 'TABLE' ELSE 'VIEW' END
FROM RDB$RELATIONS WHERE COALESCE(RDB$SYSTEM_FLAG, 0) = 0`,
	columns: `SELECT
    TRIM(rf.RDB$RELATION_NAME),
    TRIM(rf.RDB$FIELD_NAME),
    CASE
        WHEN f.RDB$FIELD_SUB_TYPE = 1 AND f.RDB$FIELD_TYPE IN (7, 8, 16) THEN 'NUMERIC'
        WHEN f.RDB$FIELD_SUB_TYPE = 2 AND f.RDB$FIELD_TYPE IN (7, 8, 16) THEN 'DECIMAL'
        WHEN f.RDB$FIELD_TYPE = 7 THEN 'SMALLINT'
        WHEN f.RDB$FIELD_TYPE = 8 THEN 'INTEGER'
        WHEN f.RDB$FIELD_TYPE = 10 THEN 'FLOAT'
        WHEN f.RDB$FIELD_TYPE = 12 THEN 'DATE'
        WHEN f.RDB$FIELD_TYPE = 13 THEN 'TIME'
        WHEN f.RDB$FIELD_TYPE = 14 THEN 'CHAR'
        WHEN f.RDB$FIELD_TYPE = 16 THEN 'BIGINT'
        WHEN f.RDB$FIELD_TYPE = 27 THEN 'DOUBLE PRECISION'
        WHEN f.RDB$FIELD_TYPE = 35 THEN 'TIMESTAMP'
        WHEN f.RDB$FIELD_TYPE = 37 THEN 'VARCHAR'
        WHEN f.RDB$FIELD_TYPE = 261 THEN 'BLOB'
        ELSE 'UNKNOWN'
    END,
    COALESCE(f.RDB$CHARACTER_LENGTH, f.RDB$FIELD_PRECISION),
    -f.RDB$FIELD_SCALE,
    f.RDB$FIELD_LENGTH,
    CASE WHEN COALESCE(rf.RDB$NULL_FLAG, 0) = 1 THEN 'NO' ELSE 'YES' END
FROM RDB$RELATION_FIELDS rf
JOIN RDB$FIELDS f ON f.RDB$FIELD_NAME = rf.RDB$FIELD_SOURCE
JOIN RDB$RELATIONS r ON r.RDB$RELATION_NAME = rf.RDB$RELATION_NAME
WHERE COALESCE(r.RDB$SYSTEM_FLAG, 0) = 0
ORDER BY 1, rf.RDB$FIELD_POSITION`,
	foreignKeys: `SELECT
    TRIM(rc.RDB$RELATION_NAME),
    TRIM(rc.RDB$CONSTRAINT_NAME),
    TRIM(s.RDB$FIELD_NAME),
    TRIM(prc.RDB$RELATION_NAME),
    TRIM(ps.RDB$FIELD_NAME),
    s.RDB$FIELD_POSITION + 1
FROM RDB$RELATION_CONSTRAINTS rc
JOIN RDB$REF_CONSTRAINTS ref ON ref.RDB$CONSTRAINT_NAME = rc.RDB$CONSTRAINT_NAME
JOIN RDB$RELATION_CONSTRAINTS prc ON prc.RDB$CONSTRAINT_NAME = ref.RDB$CONST_NAME_UQ
JOIN RDB$INDEX_SEGMENTS s ON s.RDB$INDEX_NAME = rc.RDB$INDEX_NAME
JOIN RDB$INDEX_SEGMENTS ps ON ps.RDB$INDEX_NAME = prc.RDB$INDEX_NAME AND ps.RDB$FIELD_POSITION = s.RDB$FIELD_POSITION
WHERE rc.RDB$CONSTRAINT_TYPE = 'FOREIGN KEY'`,
	indexes: `SELECT
    TRIM(i.RDB$INDEX_NAME),
    COALESCE(i.RDB$UNIQUE_FLAG, 0),
    TRIM(s.RDB$FIELD_NAME)
FROM RDB$INDICES i
LEFT JOIN RDB$INDEX_SEGMENTS s ON s.RDB$INDEX_NAME = i.RDB$INDEX_NAME
WHERE i.RDB$RELATION_NAME = ?
    AND NOT EXISTS (SELECT 1 FROM RDB$RELATION_CONSTRAINTS c
        WHERE c.RDB$INDEX_NAME = i.RDB$INDEX_NAME AND c.RDB$CONSTRAINT_TYPE = 'PRIMARY KEY')
ORDER BY 1, s.RDB$FIELD_POSITION`,
}

// Firebird covers Firebird 2.0 and later.
func Firebird() *Dialect {
	d := standard("firebird", "Firebird")
	d.Catalog = firebirdCatalog
	d.ChangeColumnType = "ALTER TABLE {table} ALTER COLUMN {column} TYPE {type}"
	d.FunctionIndex = "CREATE {unique}INDEX {index} ON {table} COMPUTED BY ({expression})"
	d.ForUpdate = " FOR UPDATE WITH LOCK"
	d.IndexTableCase = CaseUpper
	return d
}
