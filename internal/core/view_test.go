package core_test

import (
	"testing"
	"time"

	"ledger-engine/internal/core"

	"github.com/shopspring/decimal"
)

func testStatement(t *testing.T) *core.Statement {
	t.Helper()
	snaps := core.Snapshots{
		Ledger: []core.RawLedgerRecord{
			{ID: "l1", Type: "Income", Description: "Opening sales float", Amount: "200", Date: tp(at(1))},
			{ID: "l2", Type: "Fund Transfer", Description: "To savings", Debit: "50", Date: tp(at(2)), Source: "transfer"},
			{ID: "l3", Type: "Purchase", Description: "Stock purchase", Debit: "500", Date: tp(at(3))},
		},
		Sales: []core.RawSaleRecord{
			{ID: "s1", InvoiceNo: "INV-1", CustomerName: "Aye Chan", PaymentAmount: "300", Date: tp(at(4))},
		},
		Expenses: []core.RawExpenseRecord{
			{ID: "e1", Category: "Fuel", Note: "van refill", PaymentAmount: "40", Date: tp(at(5))},
		},
		Returns: []core.RawReturnRecord{
			{ID: "r1", Source: "sales_return", Description: "Damaged goods", Debit: "30", Date: tp(at(6))},
		},
	}
	return core.ComputeStatement("acct-1", snaps, dec("1000"), testNow)
}

func TestProjectView_OrderBalanceDecoupling(t *testing.T) {
	st := testStatement(t)

	asc := core.ProjectView(st, core.ViewQuery{Direction: core.SortAscending})
	desc := core.ProjectView(st, core.ViewQuery{Direction: core.SortDescending})

	if len(asc.Rows) != len(desc.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(asc.Rows), len(desc.Rows))
	}
	for i := range asc.Rows {
		mirror := desc.Rows[len(desc.Rows)-1-i]
		if asc.Rows[i].ID != mirror.ID {
			t.Errorf("row %d: %s is not mirrored by %s", i, asc.Rows[i].ID, mirror.ID)
		}
		if !asc.Rows[i].Balance.Equal(mirror.Balance) {
			t.Errorf("row %s: balance changed with direction: %s vs %s",
				asc.Rows[i].ID, asc.Rows[i].Balance, mirror.Balance)
		}
	}
	if !asc.CurrentBalance.Equal(desc.CurrentBalance) {
		t.Errorf("current balance depends on direction: %s vs %s", asc.CurrentBalance, desc.CurrentBalance)
	}
}

func TestProjectView_PurchaseRowsHidden(t *testing.T) {
	st := testStatement(t)
	view := core.ProjectView(st, core.ViewQuery{})

	for _, row := range view.Rows {
		if row.ID == "l3" {
			t.Fatal("purchase row leaked into the account book view")
		}
	}
	// The hidden purchase still participates in the running balance.
	if !view.CurrentBalance.Equal(dec("880")) {
		t.Errorf("current balance = %s, want 880", view.CurrentBalance)
	}
}

func TestProjectView_TotalsMatchReturnedRows(t *testing.T) {
	st := testStatement(t)

	queries := []core.ViewQuery{
		{},
		{Search: "fuel"},
		{Category: core.FilterCredit},
		{From: tp(at(2)), To: tp(at(5))},
	}

	for _, q := range queries {
		view := core.ProjectView(st, q)
		var wantDebit, wantCredit decimal.Decimal
		for _, row := range view.Rows {
			wantDebit = wantDebit.Add(row.Debit)
			if row.Source != core.SourceSalesReturn {
				wantCredit = wantCredit.Add(row.Credit)
			}
		}
		if !view.TotalDebit.Equal(wantDebit) {
			t.Errorf("query %+v: total debit %s != sum over rows %s", q, view.TotalDebit, wantDebit)
		}
		if !view.TotalCredit.Equal(wantCredit) {
			t.Errorf("query %+v: total credit %s != sum over rows %s", q, view.TotalCredit, wantCredit)
		}
	}
}

func TestProjectView_SalesReturnCreditNeverCounts(t *testing.T) {
	txs := []core.Transaction{
		{ID: "r", Source: core.SourceSalesReturn, Debit: dec("30"), Credit: dec("30"), DisplayTime: at(1)},
	}
	st := &core.Statement{Transactions: txs}
	view := core.ProjectView(st, core.ViewQuery{})

	if !view.TotalDebit.Equal(dec("30")) {
		t.Errorf("total debit = %s, want 30", view.TotalDebit)
	}
	if !view.TotalCredit.IsZero() {
		t.Errorf("total credit = %s, want 0: a sales return never contributes credit", view.TotalCredit)
	}
}

func TestProjectView_DateRangeIsInclusiveOnDayBoundaries(t *testing.T) {
	st := testStatement(t)

	// Boundaries given as mid-day timestamps must still include the whole day.
	from := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC)
	view := core.ProjectView(st, core.ViewQuery{From: &from, To: &to})

	got := map[string]bool{}
	for _, row := range view.Rows {
		got[row.ID] = true
	}
	if !got["s1"] || !got["e1"] {
		t.Errorf("expected s1 (Mar 4, 10:00) and e1 (Mar 5, 10:00) in range, got %v", got)
	}
	if len(view.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(view.Rows))
	}
}

func TestProjectView_Search(t *testing.T) {
	st := testStatement(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"VAN REFILL", []string{"e1"}}, // note, case-insensitive
		{"aye", []string{"s1"}},        // customer name
		{"savings", []string{"l2"}},    // description
		{"nothing-here", []string{}},   // no match
	}
	for _, tt := range tests {
		view := core.ProjectView(st, core.ViewQuery{Search: tt.query})
		if len(view.Rows) != len(tt.want) {
			t.Errorf("search %q: got %d rows, want %d", tt.query, len(view.Rows), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if view.Rows[i].ID != id {
				t.Errorf("search %q: row %d = %s, want %s", tt.query, i, view.Rows[i].ID, id)
			}
		}
	}
}

func TestProjectView_CategoryFilter(t *testing.T) {
	st := testStatement(t)

	tests := []struct {
		category string
		want     []string
	}{
		{core.FilterDebit, []string{"l2", "e1", "r1"}},
		{core.FilterCredit, []string{"l1", "s1"}},
		{core.FilterTransfer, []string{"l2"}},
		{core.FilterExpense, []string{"e1"}},
		{core.FilterIncome, []string{"l1"}},
		{core.FilterSale, []string{"s1"}},
		{core.FilterSalesReturn, []string{"r1"}},
	}
	for _, tt := range tests {
		view := core.ProjectView(st, core.ViewQuery{Category: tt.category})
		if len(view.Rows) != len(tt.want) {
			t.Errorf("category %q: got %d rows, want %d", tt.category, len(view.Rows), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if view.Rows[i].ID != id {
				t.Errorf("category %q: row %d = %s, want %s", tt.category, i, view.Rows[i].ID, id)
			}
		}
	}
}

func TestProjectView_Pagination(t *testing.T) {
	st := testStatement(t)
	// Five visible rows (purchase hidden).

	page1 := core.ProjectView(st, core.ViewQuery{Page: 1, PageSize: 2})
	if len(page1.Rows) != 2 || page1.PageCount != 3 || page1.TotalRows != 5 {
		t.Errorf("page 1: rows=%d pageCount=%d totalRows=%d", len(page1.Rows), page1.PageCount, page1.TotalRows)
	}

	page3 := core.ProjectView(st, core.ViewQuery{Page: 3, PageSize: 2})
	if len(page3.Rows) != 1 {
		t.Errorf("page 3: got %d rows, want 1", len(page3.Rows))
	}

	// An out-of-range page resets to the first page.
	reset := core.ProjectView(st, core.ViewQuery{Page: 9, PageSize: 2})
	if reset.Page != 1 || reset.Rows[0].ID != page1.Rows[0].ID {
		t.Errorf("out-of-range page: page=%d firstRow=%s", reset.Page, reset.Rows[0].ID)
	}

	// Page size zero disables pagination entirely.
	all := core.ProjectView(st, core.ViewQuery{})
	if len(all.Rows) != 5 || all.PageCount != 1 {
		t.Errorf("unpaginated: rows=%d pageCount=%d", len(all.Rows), all.PageCount)
	}
}

func TestComputeLedgerView_EmptyInputs(t *testing.T) {
	view := core.ComputeLedgerView(core.Computation{
		AccountID:      "acct-1",
		OpeningBalance: dec("750"),
		Now:            testNow,
	})

	if len(view.Rows) != 0 {
		t.Errorf("got %d rows, want none", len(view.Rows))
	}
	if !view.CurrentBalance.Equal(dec("750")) {
		t.Errorf("current balance = %s, want the opening balance", view.CurrentBalance)
	}
}
