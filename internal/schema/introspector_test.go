package schema_test

import (
	"context"
	"errors"
	"testing"

	"db-reconcile/internal/dialect"
	"db-reconcile/internal/report"
	"db-reconcile/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*schema.Introspector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return schema.NewIntrospector(db, dialect.Postgres(), "public", nil), mock
}

func TestListTables(t *testing.T) {
	in, mock := newMock(t)
	mock.ExpectQuery(`FROM information_schema.tables`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "table_type"}).
			AddRow("customer", "BASE TABLE").
			AddRow("order_view", "VIEW").
			AddRow("tmp", "LOCAL TEMPORARY"))

	var sink report.List
	tables, err := in.ListTables(context.Background(), &sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"PUBLIC.CUSTOMER", "PUBLIC.ORDER_VIEW"}, tables.Names())
	assert.Equal(t, "customer", tables["PUBLIC.CUSTOMER"].Raw)
	assert.True(t, tables["PUBLIC.ORDER_VIEW"].IsView())
	assert.False(t, sink.HasErrors())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTables_Failure(t *testing.T) {
	in, mock := newMock(t)
	mock.ExpectQuery(`FROM information_schema.tables`).WillReturnError(errors.New("permission denied"))

	var sink report.List
	_, err := in.ListTables(context.Background(), &sink)
	require.Error(t, err)
	assert.Equal(t, 1, sink.Count(report.Error))
	assert.True(t, sink.Contains("permission denied"))
}

func TestListTables_EmptyCatalogError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	in := schema.NewIntrospector(db, dialect.Oracle(), "SCOTT", nil)

	mock.ExpectQuery(`FROM ALL_OBJECTS`).
		WithArgs("SCOTT").
		WillReturnError(errors.New("ORA-00942: table or view does not exist"))

	var sink report.List
	tables, err := in.ListTables(context.Background(), &sink)
	require.NoError(t, err)
	assert.Empty(t, tables)
	assert.False(t, sink.HasErrors())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTables_OtherErrorsStayFatal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	in := schema.NewIntrospector(db, dialect.Oracle(), "SCOTT", nil)

	mock.ExpectQuery(`FROM ALL_OBJECTS`).
		WithArgs("SCOTT").
		WillReturnError(errors.New("ORA-01017: invalid username/password; logon denied"))

	var sink report.List
	_, err = in.ListTables(context.Background(), &sink)
	require.Error(t, err)
	assert.True(t, sink.HasErrors())
}

func TestListColumns(t *testing.T) {
	in, mock := newMock(t)
	tables := schema.TableSet{"PUBLIC.CUSTOMER": {Name: "PUBLIC.CUSTOMER", Raw: "customer", Type: schema.TypeTable}}
	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"t", "c", "type", "size", "scale", "bytes", "nullable"}).
			AddRow("customer", "customer_id", "varchar", 20, nil, 80, "NO").
			AddRow("customer", "balance", "numeric", "18", "2", nil, "YES").
			AddRow("customer", "notes", "text", nil, nil, nil, "YES").
			AddRow("other", "x", "int4", 32, 0, nil, "YES"))

	cols, err := in.ListColumns(context.Background(), tables, nil)
	require.NoError(t, err)
	require.Len(t, cols, 1)

	id := cols["PUBLIC.CUSTOMER"]["CUSTOMER_ID"]
	require.NotNil(t, id)
	assert.Equal(t, "VARCHAR", id.TypeName)
	assert.Equal(t, 20, id.Size)
	assert.Equal(t, -1, id.Decimals)
	assert.Equal(t, 80, id.MaxBytes)
	assert.Equal(t, schema.NullNo, id.Nullable)

	bal := cols["PUBLIC.CUSTOMER"]["BALANCE"]
	assert.Equal(t, 18, bal.Size)
	assert.Equal(t, 2, bal.Decimals)

	notes := cols["PUBLIC.CUSTOMER"]["NOTES"]
	assert.Equal(t, "TEXT", notes.TypeName)
	assert.Equal(t, -1, notes.Size)
}

func TestListColumns_DeclaredTypeText(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	in := schema.NewIntrospector(db, dialect.Derby(), "APP", nil)

	tables := schema.TableSet{"APP.CUSTOMER": {Name: "APP.CUSTOMER", Raw: "CUSTOMER", Type: schema.TypeTable}}
	mock.ExpectQuery(`FROM SYS.SYSCOLUMNS`).
		WithArgs("APP").
		WillReturnRows(sqlmock.NewRows([]string{"t", "c", "type", "size", "scale", "bytes", "nullable"}).
			AddRow("CUSTOMER", "NAME", "VARCHAR(60) NOT NULL", nil, nil, nil, nil).
			AddRow("CUSTOMER", "BALANCE", "DECIMAL(18,2)", nil, nil, nil, nil))

	cols, err := in.ListColumns(context.Background(), tables, nil)
	require.NoError(t, err)
	name := cols["APP.CUSTOMER"]["NAME"]
	assert.Equal(t, "VARCHAR", name.TypeName)
	assert.Equal(t, 60, name.Size)
	assert.Equal(t, schema.NullNo, name.Nullable)
	bal := cols["APP.CUSTOMER"]["BALANCE"]
	assert.Equal(t, 18, bal.Size)
	assert.Equal(t, 2, bal.Decimals)
	assert.Equal(t, schema.NullUnknown, bal.Nullable)
}

func TestListForeignKeys_MultiColumnOrder(t *testing.T) {
	in, mock := newMock(t)
	tables := schema.TableSet{"PUBLIC.ORDER_ITEM": {Name: "PUBLIC.ORDER_ITEM", Raw: "order_item", Type: schema.TypeTable}}
	mock.ExpectQuery(`FROM pg_constraint`).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"t", "name", "col", "rt", "rc", "seq"}).
			AddRow("order_item", "item_header", "seq_id", "order_header", "seq_id", 2).
			AddRow("order_item", "item_header", "order_id", "order_header", "order_id", 1).
			AddRow("unrelated", "x", "a", "b", "c", 1))

	fks, err := in.ListForeignKeys(context.Background(), tables, nil)
	require.NoError(t, err)
	fk := fks["PUBLIC.ORDER_ITEM"]["ITEM_HEADER"]
	require.NotNil(t, fk)
	assert.Equal(t, []string{"ORDER_ID", "SEQ_ID"}, fk.Columns)
	assert.Equal(t, []string{"ORDER_ID", "SEQ_ID"}, fk.RefColumns)
	assert.Equal(t, "PUBLIC.ORDER_HEADER", fk.RefTable)
	assert.Len(t, fks, 1)
}

func TestListIndexes_LowerCaseRetry(t *testing.T) {
	in, mock := newMock(t)
	tables := schema.TableSet{
		"PUBLIC.CUSTOMER": {Name: "PUBLIC.CUSTOMER", Raw: "Customer", Type: schema.TypeTable},
		"PUBLIC.V":        {Name: "PUBLIC.V", Raw: "v", Type: schema.TypeView},
	}
	cols := []string{"name", "unique", "column"}
	mock.ExpectQuery(`FROM pg_index`).WithArgs("Customer", "public").WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectQuery(`FROM pg_index`).WithArgs("customer", "public").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(nil, 0, nil).
			AddRow("cust_name_idx", 0, "name").
			AddRow("cust_email_uk", 1, "email").
			AddRow("cust_lname_fidx", 0, nil))

	var sink report.List
	idx, err := in.ListIndexes(context.Background(), tables, false, &sink)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotContains(t, idx, "PUBLIC.V")
	got := idx["PUBLIC.CUSTOMER"]
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"NAME"}, got["CUST_NAME_IDX"].Columns)
	assert.Empty(t, got["CUST_LNAME_FIDX"].Columns)
	assert.NotContains(t, got, "CUST_EMAIL_UK")
}

func TestListIndexes_IncludeUniqueAndEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	in := schema.NewIntrospector(db, dialect.Oracle(), "SCOTT", nil)

	tables := schema.TableSet{
		"SCOTT.CUSTOMER": {Name: "SCOTT.CUSTOMER", Raw: "CUSTOMER", Type: schema.TypeTable},
		"SCOTT.EMPTY":    {Name: "SCOTT.EMPTY", Raw: "empty", Type: schema.TypeTable},
	}
	cols := []string{"name", "unique", "column"}
	mock.ExpectQuery(`FROM ALL_INDEXES`).WithArgs("CUSTOMER", "SCOTT").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("CUST_EMAIL_UK", 1, "EMAIL"))
	mock.ExpectQuery(`FROM ALL_INDEXES`).WithArgs("EMPTY", "SCOTT").WillReturnRows(sqlmock.NewRows(cols))

	idx, err := in.ListIndexes(context.Background(), tables, true, nil)
	require.NoError(t, err)
	assert.True(t, idx["SCOTT.CUSTOMER"]["CUST_EMAIL_UK"].Unique)
	assert.Contains(t, idx, "SCOTT.EMPTY")
	assert.Empty(t, idx["SCOTT.EMPTY"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListIndexes_FailureAbortsPhase(t *testing.T) {
	in, mock := newMock(t)
	tables := schema.TableSet{"PUBLIC.A": {Name: "PUBLIC.A", Raw: "a", Type: schema.TypeTable}}
	mock.ExpectQuery(`FROM pg_index`).WillReturnError(errors.New("boom"))

	var sink report.List
	_, err := in.ListIndexes(context.Background(), tables, false, &sink)
	require.Error(t, err)
	assert.True(t, sink.Contains("PUBLIC.A"))
	assert.True(t, sink.HasErrors())
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "PUBLIC.ORDER_HEADER", schema.NewIntrospector(nil, dialect.Postgres(), "public", nil).Qualify("order_header"))
	assert.Equal(t, "ORDER_HEADER", schema.NewIntrospector(nil, dialect.SQLite(), "", nil).Qualify("Order_Header"))
}
