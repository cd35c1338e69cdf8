package typedesc_test

import (
	"testing"

	"db-reconcile/internal/model"
	"db-reconcile/internal/typedesc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		oracle   bool
		want     typedesc.Descriptor
		warnings int
	}{
		{"VARCHAR(255)", false, typedesc.Descriptor{Base: "VARCHAR", Size: 255, Decimals: -1}, 0},
		{"TEXT", false, typedesc.Descriptor{Base: "TEXT", Size: -1, Decimals: -1}, 0},
		{"numeric( 18 , 2 )", false, typedesc.Descriptor{Base: "NUMERIC", Size: 18, Decimals: 2}, 0},
		{"double  precision", false, typedesc.Descriptor{Base: "DOUBLE PRECISION", Size: -1, Decimals: -1}, 0},
		{"VARCHAR2(60 CHAR)", true, typedesc.Descriptor{Base: "VARCHAR2", Size: 60, Decimals: -1, Unit: typedesc.UnitChar}, 0},
		{"VARCHAR2(60 byte)", true, typedesc.Descriptor{Base: "VARCHAR2", Size: 60, Decimals: -1, Unit: typedesc.UnitByte}, 0},
		{"VARCHAR2(60 CHAR)", false, typedesc.Descriptor{Base: "VARCHAR2", Size: 60, Decimals: -1}, 1},
		{"VARCHAR2(60 WORDS)", true, typedesc.Descriptor{Base: "VARCHAR2", Size: 60, Decimals: -1}, 1},
		{"VARCHAR(MAX)", false, typedesc.Descriptor{Base: "VARCHAR", Size: -1, Decimals: -1}, 1},
		{"DECIMAL(18,x)", false, typedesc.Descriptor{Base: "DECIMAL", Size: 18, Decimals: -1}, 1},
		{"VARCHAR(20", false, typedesc.Descriptor{Base: "VARCHAR", Size: -1, Decimals: -1}, 1},
		{"TIMESTAMP(6) WITH TIME ZONE", true, typedesc.Descriptor{Base: "TIMESTAMP", Size: 6, Decimals: -1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, warnings := typedesc.Parse(tt.in, tt.oracle)
			assert.Equal(t, tt.want, got)
			assert.Len(t, warnings, tt.warnings)
		})
	}
}

func TestFromFieldType_Alias(t *testing.T) {
	d, warnings := typedesc.FromFieldType(&model.FieldType{
		Type:         "very-long",
		SQLType:      "VARCHAR2(4000)",
		SQLTypeAlias: "clob",
	}, true)
	require.Empty(t, warnings)
	assert.Equal(t, typedesc.Descriptor{Base: "CLOB", Size: 4000, Decimals: -1}, d)
}

func TestDescriptor_Equality(t *testing.T) {
	a, _ := typedesc.Parse("varchar(20)", false)
	b, _ := typedesc.Parse("VARCHAR (20)", false)
	c, _ := typedesc.Parse("VARCHAR(21)", false)
	assert.True(t, a == b)
	assert.False(t, a == c)
	assert.Equal(t, "VARCHAR(20)", a.String())
}
