// Package export renders a computed ledger view as a downloadable report.
package export

import (
	"ledger-engine/internal/core"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// header is the fixed column order of every exported report.
var header = []string{
	"Date", "Transaction Time", "Description", "Payment Method", "Payment Details",
	"Note", "Added By", "Debit", "Credit", "Balance", "Type", "Reference No",
	"Category", "Source",
}

// rowCells flattens one transaction into the export column order.
func rowCells(t core.Transaction) []string {
	return []string{
		t.DisplayTime.Format(dateLayout),
		t.DisplayTime.Format(timeLayout),
		t.Description,
		t.PaymentMethod,
		t.PaymentDetails,
		t.Note,
		t.AddedBy,
		t.Debit.String(),
		t.Credit.String(),
		t.Balance.String(),
		t.Type,
		t.ReferenceNo,
		t.Category,
		string(t.Source),
	}
}

// totalCells builds the trailing totals row. Only the debit and credit
// columns carry values; everything else stays blank.
func totalCells(v *core.View) []string {
	cells := make([]string, len(header))
	cells[0] = "Total"
	cells[7] = v.TotalDebit.String()
	cells[8] = v.TotalCredit.String()
	return cells
}
