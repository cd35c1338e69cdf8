package dialect

// queryCatalog is a Catalog made of four fixed queries. When bindSchema is
// set the schema is passed as the single argument of the table, column and
// foreign key queries, and as the second argument of the index query.
type queryCatalog struct {
	tables      string
	columns     string
	foreignKeys string
	indexes     string
	bindSchema  bool
}

func (c *queryCatalog) args(schema string) []any {
	if c.bindSchema {
		return []any{schema}
	}
	return nil
}

func (c *queryCatalog) TablesQuery(schema string) (string, []any) {
	return c.tables, c.args(schema)
}

func (c *queryCatalog) ColumnsQuery(schema string) (string, []any) {
	return c.columns, c.args(schema)
}

func (c *queryCatalog) ForeignKeysQuery(schema string) (string, []any) {
	return c.foreignKeys, c.args(schema)
}

func (c *queryCatalog) IndexesQuery(schema, table string) (string, []any) {
	if c.bindSchema {
		return c.indexes, []any{table, schema}
	}
	return c.indexes, []any{table}
}
