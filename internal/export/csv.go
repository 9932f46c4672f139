package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"ledger-engine/internal/core"
)

// WriteCSV writes the view as a CSV report: header, one row per
// transaction, then the totals row.
func WriteCSV(w io.Writer, v *core.View) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range v.Rows {
		if err := cw.Write(rowCells(t)); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.ID, err)
		}
	}
	if err := cw.Write(totalCells(v)); err != nil {
		return fmt.Errorf("write csv totals: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
