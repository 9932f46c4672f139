package export

import (
	"fmt"
	"io"

	"ledger-engine/internal/core"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Ledger"

// WriteXLSX writes the view as an Excel workbook with a single Ledger
// sheet, mirroring the CSV layout.
func WriteXLSX(w io.Writer, v *core.View) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	writeRow := func(rowNum int, cells []string) error {
		for col, cell := range cells {
			ref, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, ref, cell); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, t := range v.Rows {
		if err := writeRow(i+2, rowCells(t)); err != nil {
			return fmt.Errorf("write xlsx row %s: %w", t.ID, err)
		}
	}
	if err := writeRow(len(v.Rows)+2, totalCells(v)); err != nil {
		return fmt.Errorf("write xlsx totals: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
