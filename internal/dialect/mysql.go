package dialect

// The MySQL schema is the connection's database, so no argument is bound.
var mysqlCatalog = &queryCatalog{
	tables: `SELECT TABLE_NAME, TABLE_TYPE FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE()`,
	columns: `SELECT
    TABLE_NAME,
    COLUMN_NAME,
    DATA_TYPE,
    COALESCE(CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION),
    NUMERIC_SCALE,
    CHARACTER_OCTET_LENGTH,
    IS_NULLABLE
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = DATABASE()
ORDER BY TABLE_NAME, ORDINAL_POSITION`,
	foreignKeys: `SELECT
    TABLE_NAME,
    CONSTRAINT_NAME,
    COLUMN_NAME,
    REFERENCED_TABLE_NAME,
    REFERENCED_COLUMN_NAME,
    ORDINAL_POSITION
FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = DATABASE() AND REFERENCED_TABLE_NAME IS NOT NULL`,
	indexes: `SELECT
    INDEX_NAME,
    CASE NON_UNIQUE WHEN 0 THEN 1 ELSE 0 END,
    COLUMN_NAME
FROM information_schema.STATISTICS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME <> 'PRIMARY'
ORDER BY INDEX_NAME, SEQ_IN_INDEX`,
}

func mysqlFamily(name string, products ...string) *Dialect {
	d := standard(name, products...)
	d.Catalog = mysqlCatalog
	d.ChangeColumnType = "ALTER TABLE {table} MODIFY {column} {type}"
	d.DropIndex = DropIndexAlterTable
	// InnoDB creates an index named after each foreign key constraint.
	d.ForeignKeysIndexed = true
	return d
}

// MariaDB has virtual columns but no functional key parts.
func MariaDB() *Dialect {
	d := mysqlFamily("mariadb", "MariaDB")
	d.GeneratedColumn = "ALTER TABLE {table} ADD {column} {type} AS ({expression}) VIRTUAL"
	return d
}

// MySQL57 covers MySQL before 8.0.13, which cannot index expressions directly.
func MySQL57() *Dialect {
	d := mysqlFamily("mysql57", "MySQL")
	d.Versions = Below(8, 0, 13)
	d.GeneratedColumn = "ALTER TABLE {table} ADD {column} {type} AS ({expression}) VIRTUAL"
	return d
}

// MySQL covers any MySQL version not claimed by MySQL57.
func MySQL() *Dialect {
	d := mysqlFamily("mysql", "MySQL")
	d.FunctionIndex = "CREATE {unique}INDEX {index} ON {table} (({expression}))"
	return d
}
