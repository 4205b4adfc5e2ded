package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"timetracker/entity"
)

func TestWriteXLSX(t *testing.T) {
	rows := []entity.ActivityRow{
		{Employee: "Alice", Action: entity.ActionIn, Timestamp: "2024-01-01 09:00:00"},
		{Employee: "Alice", Action: entity.ActionOut, Timestamp: "2024-01-01 17:00:00"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Employee", "Action", "Timestamp"},
		{"Alice", "In", "2024-01-01 09:00:00"},
		{"Alice", "Out", "2024-01-01 17:00:00"},
	}, got)
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
