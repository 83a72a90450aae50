package testkit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"waferplot/domain/measurement"
)

func TestWaferDataGenerator_SiteLayout(t *testing.T) {
	config := DefaultWaferConfig()
	config.DropRate = 0

	rows := NewWaferDataGenerator(config).SiteRows()
	require.Len(t, rows, 3+2*len(config.Devices))
	assert.Len(t, rows[0], 4+config.Sites)
	assert.Equal(t, "LVTN_RO_SDB_Vtsat", rows[3][0])
	assert.Equal(t, "LVTP_RO_SDB_Vtsat", rows[4][0])

	table := Table(SiteSheet, rows)
	records, err := measurement.ParseRecords(table, measurement.DefaultLayout())
	require.NoError(t, err)
	assert.Len(t, records, 1+2*len(config.Devices)) // unit row is a record that fails decoding
	labels, err := measurement.DefaultLayout().IndexLabels(table)
	require.NoError(t, err)
	assert.Equal(t, "1", labels[0].String())
}

func TestWaferDataGenerator_Deterministic(t *testing.T) {
	a := NewWaferDataGenerator(DefaultWaferConfig()).SiteRows()
	b := NewWaferDataGenerator(DefaultWaferConfig()).SiteRows()
	assert.Equal(t, a, b)
}

func TestWaferDataGenerator_WriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wafer.xlsx")
	require.NoError(t, NewWaferDataGenerator(DefaultWaferConfig()).WriteWorkbook(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"summary", SiteSheet, ItemSheet1, ItemSheet2, CornerSheet}, f.GetSheetList())
}
