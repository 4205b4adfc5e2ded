package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"timetracker/entity"
)

const SheetName = "Activities"

var header = []interface{}{"Employee", "Action", "Timestamp"}

// WriteXLSX writes rows as a single-sheet workbook, in the order given.
func WriteXLSX(w io.Writer, rows []entity.ActivityRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return errors.Wrap(err, "open stream writer")
	}
	if err := sw.SetColWidth(1, 1, 24); err != nil {
		return errors.Wrap(err, "set column width")
	}
	if err := sw.SetColWidth(2, 2, 10); err != nil {
		return errors.Wrap(err, "set column width")
	}
	if err := sw.SetColWidth(3, 3, 22); err != nil {
		return errors.Wrap(err, "set column width")
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{r.Employee, string(r.Action), r.Timestamp}); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "flush sheet")
	}
	_, err = f.WriteTo(w)
	return errors.Wrap(err, "write workbook")
}
