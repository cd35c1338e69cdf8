package model_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"db-reconcile/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModel = `
fieldTypes:
  - type: id
    sqlType: VARCHAR(20)
  - type: very-long
    sqlType: VARCHAR(4000)
    sqlTypeAlias: CLOB
entities:
  - name: OrderHeader
    fields:
      - name: orderId
        type: id
        pk: true
      - name: customerId
        type: id
      - name: orderItemSeqId
        type: id
        column: SEQ_ID
    relations:
      - type: one
        title: Placing
        entity: Customer
        keys:
          - field: customerId
    indexes:
      - name: ORDER_CUST_IDX
        fields: [customerId]
`

func TestParse(t *testing.T) {
	m, err := model.Parse([]byte(sampleModel))
	require.NoError(t, err)
	require.Len(t, m.Entities, 1)

	e := m.Entity("OrderHeader")
	require.NotNil(t, e)
	assert.Equal(t, "ORDER_HEADER", e.TableName)
	assert.Equal(t, "ORDER_ID", e.Field("orderId").ColumnName)
	assert.Equal(t, "SEQ_ID", e.Field("orderItemSeqId").ColumnName)
	require.Len(t, e.PrimaryKeyFields(), 1)
	assert.Equal(t, "orderId", e.PrimaryKeyFields()[0].Name)

	rels := e.OneRelations()
	require.Len(t, rels, 1)
	assert.Equal(t, "PlacingCustomer", rels[0].Name())
	assert.Equal(t, "customerId", rels[0].KeyMaps[0].RelatedField())

	ft, err := m.FieldTypes.Resolve("very-long")
	require.NoError(t, err)
	assert.Equal(t, "CLOB", ft.SQLTypeAlias)

	_, err = m.FieldTypes.Resolve("missing")
	assert.True(t, errors.Is(err, model.ErrUnknownFieldType))
}

func TestParse_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"duplicate entity":     "entities:\n  - name: A\n  - name: A\n",
		"unnamed entity":       "entities:\n  - table: X\n",
		"duplicate field type": "fieldTypes:\n  - {type: id, sqlType: INT}\n  - {type: id, sqlType: INT}\n",
		"incomplete type":      "fieldTypes:\n  - {type: id}\n",
		"unknown key":          "entities:\n  - name: A\n    colour: red\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := model.Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoad_FieldTypeOverride(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.yaml")
	typesPath := filepath.Join(dir, "fieldtypes-oracle.yaml")
	require.NoError(t, os.WriteFile(modelPath, []byte(sampleModel), 0o600))
	require.NoError(t, os.WriteFile(typesPath, []byte("fieldTypes:\n  - type: id\n    sqlType: VARCHAR2(20 CHAR)\n"), 0o600))

	m, err := model.Load(modelPath, typesPath)
	require.NoError(t, err)
	assert.Equal(t, "VARCHAR2(20 CHAR)", m.FieldTypes["id"].SQLType)
	assert.Equal(t, "VARCHAR(4000)", m.FieldTypes["very-long"].SQLType)

	_, err = model.Load(filepath.Join(dir, "nope.yaml"), "")
	require.Error(t, err)
}

func TestDBName(t *testing.T) {
	assert.Equal(t, "ORDER_ITEM_SEQ_ID", model.DBName("orderItemSeqId"))
	assert.Equal(t, "PARTY", model.DBName("Party"))
	assert.Equal(t, "ADDRESS1_LINE", model.DBName("address1Line"))
}
