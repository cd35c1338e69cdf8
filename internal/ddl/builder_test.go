package ddl_test

import (
	"errors"
	"strings"
	"testing"

	"db-reconcile/internal/ddl"
	"db-reconcile/internal/dialect"
	"db-reconcile/internal/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fieldTypes = model.FieldTypes{
	"id":         {Type: "id", SQLType: "VARCHAR(20)"},
	"name":       {Type: "name", SQLType: "VARCHAR(60)"},
	"currency":   {Type: "currency", SQLType: "NUMERIC(18,2)"},
	"short-text": {Type: "short-text", SQLType: "VARCHAR(60)"},
}

func entities() []*model.Entity {
	customer := &model.Entity{
		Name:      "Customer",
		TableName: "CUSTOMER",
		Fields: []*model.Field{
			{Name: "customerId", ColumnName: "CUSTOMER_ID", Type: "id", PrimaryKey: true},
			{Name: "name", ColumnName: "NAME", Type: "name"},
		},
		Indexes:         []*model.Index{{Name: "cust_name_idx", Fields: []string{"name"}}},
		FunctionIndexes: []*model.FunctionIndex{{Name: "cust_lname_fidx", Expression: "LOWER(NAME)", Type: "short-text"}},
	}
	order := &model.Entity{
		Name:      "Order",
		TableName: "ORDER_HEADER",
		Fields: []*model.Field{
			{Name: "orderId", ColumnName: "ORDER_ID", Type: "id", PrimaryKey: true},
			{Name: "customerId", ColumnName: "CUSTOMER_ID", Type: "id"},
			{Name: "grandTotal", ColumnName: "GRAND_TOTAL", Type: "currency", NotNull: true},
		},
		Relations: []*model.Relation{
			{Type: model.RelationOne, Title: "Order", RelEntityName: "Customer", KeyMaps: []model.KeyMap{{FieldName: "customerId"}}},
		},
	}
	return []*model.Entity{customer, order}
}

func TestCreateTable(t *testing.T) {
	es := entities()
	b := ddl.NewBuilder(dialect.Postgres(), "", fieldTypes, es)

	got, err := b.CreateTable(es[1], false)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE ORDER_HEADER (ORDER_ID VARCHAR(20) NOT NULL, CUSTOMER_ID VARCHAR(20), GRAND_TOTAL NUMERIC(18,2) NOT NULL, CONSTRAINT PK_ORDER_HEADER PRIMARY KEY (ORDER_ID))", got)

	got, err = b.CreateTable(es[1], true)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, ", CONSTRAINT ORDERCUSTOMER FOREIGN KEY (CUSTOMER_ID) REFERENCES CUSTOMER (CUSTOMER_ID))"), got)
}

func TestCreateTable_UnknownFieldType(t *testing.T) {
	es := entities()
	es[0].Fields = append(es[0].Fields, &model.Field{Name: "blob", ColumnName: "BLOB", Type: "object"})
	b := ddl.NewBuilder(dialect.Postgres(), "", fieldTypes, es)

	_, err := b.CreateTable(es[0], false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownFieldType))
}

func TestAddColumn(t *testing.T) {
	es := entities()
	b := ddl.NewBuilder(dialect.Postgres(), "public", fieldTypes, es)

	primary, legacy, err := b.AddColumn(es[1], es[1].Field("grandTotal"))
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE public.ORDER_HEADER ADD GRAND_TOTAL NUMERIC(18,2)", primary)
	assert.Equal(t, "ALTER TABLE public.ORDER_HEADER ADD COLUMN GRAND_TOTAL NUMERIC(18,2)", legacy)
}

func TestChangeColumnType(t *testing.T) {
	es := entities()
	got, err := ddl.NewBuilder(dialect.Oracle(), "", fieldTypes, es).ChangeColumnType(es[0], es[0].Field("name"))
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE CUSTOMER MODIFY (NAME VARCHAR(60))", got)

	_, err = ddl.NewBuilder(dialect.SQLite(), "", fieldTypes, es).ChangeColumnType(es[0], es[0].Field("name"))
	assert.ErrorIs(t, err, ddl.ErrUnsupported)
}

func TestAddForeignKey(t *testing.T) {
	es := entities()
	got, err := ddl.NewBuilder(dialect.Postgres(), "", fieldTypes, es).AddForeignKey(es[1], es[1].Relations[0])
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE ORDER_HEADER ADD CONSTRAINT ORDERCUSTOMER FOREIGN KEY (CUSTOMER_ID) REFERENCES CUSTOMER (CUSTOMER_ID)", got)

	got, err = ddl.NewBuilder(dialect.Informix(), "", fieldTypes, es).AddForeignKey(es[1], es[1].Relations[0])
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE ORDER_HEADER ADD CONSTRAINT FOREIGN KEY (CUSTOMER_ID) REFERENCES CUSTOMER (CUSTOMER_ID) CONSTRAINT ORDERCUSTOMER", got)

	_, err = ddl.NewBuilder(dialect.SQLite(), "", fieldTypes, es).AddForeignKey(es[1], es[1].Relations[0])
	assert.ErrorIs(t, err, ddl.ErrUnsupported)
}

func TestFKConstraintName(t *testing.T) {
	b := ddl.NewBuilder(dialect.Postgres(), "", fieldTypes, nil)
	assert.Equal(t, "ORDERCUSTOMER", b.FKConstraintName(&model.Relation{Title: "Order", RelEntityName: "Customer"}))
	assert.Equal(t, "FK_ORDER_CUST", b.FKConstraintName(&model.Relation{Title: "Order", RelEntityName: "Customer", FkName: "fk_order_cust"}))
	assert.Equal(t, "ORDERCUSTOMER", b.FKIndexName(&model.Relation{Title: "Order", RelEntityName: "Customer"}))
}

func TestFKConstraintName_Clip(t *testing.T) {
	faker := gofakeit.New(7)
	for _, d := range []*dialect.Dialect{dialect.Postgres(), dialect.Informix(), dialect.DB2()} {
		b := ddl.NewBuilder(d, "", fieldTypes, nil)
		for i := 0; i < 200; i++ {
			rel := &model.Relation{
				Title:         faker.LetterN(uint(faker.IntRange(0, 25))),
				RelEntityName: faker.LetterN(uint(faker.IntRange(1, 40))),
			}
			want := strings.ToUpper(rel.Title + rel.RelEntityName)
			if len(want) > d.Clip() {
				want = want[:d.Clip()]
			}
			assert.Equal(t, want, b.FKConstraintName(rel))
		}
	}
}

func TestCreateIndexes(t *testing.T) {
	es := entities()
	b := ddl.NewBuilder(dialect.Postgres(), "", fieldTypes, es)

	got, err := b.CreateIndex(es[0], es[0].Indexes[0])
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX CUST_NAME_IDX ON CUSTOMER (NAME)", got)

	got, err = b.CreateIndex(es[0], &model.Index{Name: "cust_name_uk", Unique: true, Fields: []string{"name"}})
	require.NoError(t, err)
	assert.Equal(t, "CREATE UNIQUE INDEX CUST_NAME_UK ON CUSTOMER (NAME)", got)

	_, err = b.CreateIndex(es[0], &model.Index{Name: "bad", Fields: []string{"missing"}})
	assert.Error(t, err)

	got, err = b.CreateFKIndex(es[1], es[1].Relations[0])
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX ORDERCUSTOMER ON ORDER_HEADER (CUSTOMER_ID)", got)

	got, err = ddl.NewBuilder(dialect.Oracle(), "SCOTT", fieldTypes, es).CreateIndex(es[0], es[0].Indexes[0])
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX SCOTT.CUST_NAME_IDX ON SCOTT.CUSTOMER (NAME)", got)
}

func TestCreateFunctionIndex(t *testing.T) {
	es := entities()
	fi := es[0].FunctionIndexes[0]

	got, err := ddl.NewBuilder(dialect.Postgres(), "", fieldTypes, es).CreateFunctionIndex(es[0], fi)
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX CUST_LNAME_FIDX ON CUSTOMER ((LOWER(NAME)))", got)

	got, err = ddl.NewBuilder(dialect.Firebird(), "", fieldTypes, es).CreateFunctionIndex(es[0], fi)
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX CUST_LNAME_FIDX ON CUSTOMER COMPUTED BY (LOWER(NAME))", got)

	// Fallback to a virtual column.
	maria := ddl.NewBuilder(dialect.MariaDB(), "", fieldTypes, es)
	col, err := maria.GeneratedColumn(es[0], fi)
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE CUSTOMER ADD CUST_LNAME_FIDX_VC VARCHAR(60) AS (LOWER(NAME)) VIRTUAL", col)
	got, err = maria.CreateFunctionIndex(es[0], fi)
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX CUST_LNAME_FIDX ON CUSTOMER (CUST_LNAME_FIDX_VC)", got)

	col, err = ddl.NewBuilder(dialect.MSSQL(), "dbo", fieldTypes, es).GeneratedColumn(es[0], &model.FunctionIndex{Name: "x", Expression: "UPPER(NAME)", VirtualColumn: "name_upper"})
	require.NoError(t, err)
	assert.Equal(t, "ALTER TABLE dbo.CUSTOMER ADD NAME_UPPER AS (UPPER(NAME))", col)

	_, err = maria.GeneratedColumn(es[0], &model.FunctionIndex{Name: "x", Expression: "UPPER(NAME)"})
	assert.Error(t, err)

	_, err = ddl.NewBuilder(dialect.H2(), "", fieldTypes, es).CreateFunctionIndex(es[0], fi)
	assert.ErrorIs(t, err, ddl.ErrUnsupported)
}

func TestDropIndex(t *testing.T) {
	es := entities()
	assert.Equal(t, "DROP INDEX SCOTT.CUST_NAME_IDX", ddl.NewBuilder(dialect.Oracle(), "SCOTT", fieldTypes, es).DropIndex(es[0], "cust_name_idx"))
	assert.Equal(t, "DROP INDEX dbo.CUSTOMER.CUST_NAME_IDX", ddl.NewBuilder(dialect.MSSQL(), "dbo", fieldTypes, es).DropIndex(es[0], "cust_name_idx"))
	assert.Equal(t, "ALTER TABLE CUSTOMER DROP INDEX CUST_NAME_IDX", ddl.NewBuilder(dialect.MySQL(), "", fieldTypes, es).DropIndex(es[0], "cust_name_idx"))
}
