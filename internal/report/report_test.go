package report_test

import (
	"testing"

	"db-reconcile/internal/report"

	"github.com/stretchr/testify/assert"
)

func TestList_KeepsOrderAndFiltersBySeverity(t *testing.T) {
	var l report.List
	report.Addf(&l, report.Info, "Table [%s] exists in the database but has no entity", "AUDIT_LOG")
	report.Addf(&l, report.Warning, "Missing index [%s]", "CUST_NAME_IDX")
	report.Addf(&l, report.Verbose, "checked %d tables", 2)
	report.Addf(&l, report.Error, "Could not add column [%s]", "NAME")

	assert.Len(t, l.Messages, 4)
	assert.Equal(t, "[INFO] Table [AUDIT_LOG] exists in the database but has no entity", l.Messages[0].String())

	warnings := l.AtLeast(report.Warning)
	assert.Len(t, warnings, 2)
	assert.Equal(t, report.Warning, warnings[0].Severity)
	assert.Equal(t, report.Error, warnings[1].Severity)

	assert.Equal(t, 1, l.Count(report.Verbose))
	assert.True(t, l.HasErrors())
	assert.True(t, l.Contains("CUST_NAME_IDX"))
	assert.False(t, l.Contains("ORDER_HEADER"))
}

func TestAddf_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		report.Addf(nil, report.Error, "dropped")
	})
	assert.Equal(t, "Severity(9)", report.Severity(9).String())
}
