package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SortDirection controls presentation order only. Balances are always
// computed ascending; a descending view flips row order, never values.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Category filter values. Debit/Credit select by amount side, Transfer by
// type substring, the rest by the normalized type tag.
const (
	FilterDebit       = "Debit"
	FilterCredit      = "Credit"
	FilterTransfer    = "Transfer"
	FilterExpense     = "Expense"
	FilterIncome      = "Income"
	FilterSale        = "Sale"
	FilterSalesReturn = "Sales Return"
)

// ViewQuery is the caller-supplied projection: date range, search text,
// category filter, presentation order and paging. A zero PageSize disables
// pagination (the export path).
type ViewQuery struct {
	From      *time.Time
	To        *time.Time
	Search    string
	Category  string
	Direction SortDirection
	Page      int
	PageSize  int
}

// View is the computed ledger view handed to presentation code. Totals are
// aggregated over the filtered rows, never the unfiltered superset.
type View struct {
	Rows           []Transaction   `json:"rows"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	TotalRows      int             `json:"total_rows"`
	Page           int             `json:"page"`
	PageCount      int             `json:"page_count"`
}

// Computation is the explicit immutable context for one ledger view pass.
// Now is captured once so the pass is reproducible.
type Computation struct {
	AccountID      string
	OpeningBalance decimal.Decimal
	Snapshots      Snapshots
	Now            time.Time
	Query          ViewQuery
}

// ComputeLedgerView runs the full pipeline (normalize, dedup, sort,
// balance, filter, total, paginate) and returns the view for one account.
func ComputeLedgerView(c Computation) *View {
	st := ComputeStatement(c.AccountID, c.Snapshots, c.OpeningBalance, c.Now)
	return ProjectView(st, c.Query)
}

// ProjectView filters and pages an already-balanced statement. Filtering
// never touches balances; CurrentBalance stays the closing balance of the
// full statement even when the filter hides the closing row.
func ProjectView(st *Statement, q ViewQuery) *View {
	filtered := filterTransactions(st.Transactions, q)
	totalDebit, totalCredit := sumDisplayTotals(filtered)

	rows := filtered
	if q.Direction == SortDescending {
		rows = make([]Transaction, len(filtered))
		for i, t := range filtered {
			rows[len(filtered)-1-i] = t
		}
	}

	page, pageCount := 1, 1
	if q.PageSize > 0 {
		pageCount = (len(rows) + q.PageSize - 1) / q.PageSize
		if pageCount == 0 {
			pageCount = 1
		}
		page = q.Page
		if page < 1 || page > pageCount {
			page = 1
		}
		start := (page - 1) * q.PageSize
		end := start + q.PageSize
		if start > len(rows) {
			start = len(rows)
		}
		if end > len(rows) {
			end = len(rows)
		}
		rows = rows[start:end]
	}

	return &View{
		Rows:           rows,
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		OpeningBalance: st.State.OpeningBalance,
		CurrentBalance: st.State.CurrentBalance,
		TotalRows:      len(filtered),
		Page:           page,
		PageCount:      pageCount,
	}
}

func filterTransactions(txs []Transaction, q ViewQuery) []Transaction {
	out := make([]Transaction, 0, len(txs))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, t := range txs {
		if isPurchase(t) {
			continue
		}
		if !inDateRange(t.DisplayTime, q.From, q.To) {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if q.Category != "" && !matchesCategory(t, q.Category) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// isPurchase hides purchase rows from the account book; purchases are
// tracked in their own view.
func isPurchase(t Transaction) bool {
	return strings.EqualFold(t.Type, "purchase") || strings.EqualFold(string(t.Source), "purchase")
}

// inDateRange compares against day boundaries: the range is inclusive on
// both ends, normalized to start-of-day and end-of-day.
func inDateRange(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(startOfDay(*from)) {
		return false
	}
	if to != nil && ts.After(endOfDay(*to)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// matchesSearch is a case-insensitive substring match over the descriptive
// fields; any single hit keeps the row.
func matchesSearch(t Transaction, search string) bool {
	for _, field := range []string{
		t.Description, t.PaymentMethod, t.AddedBy, t.Note, t.ReferenceNo, t.CustomerName,
	} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func matchesCategory(t Transaction, category string) bool {
	switch {
	case strings.EqualFold(category, FilterDebit):
		return t.Debit.IsPositive()
	case strings.EqualFold(category, FilterCredit):
		return t.Credit.IsPositive()
	case strings.EqualFold(category, FilterTransfer):
		return strings.Contains(strings.ToLower(t.Type), "transfer")
	default:
		return strings.EqualFold(t.Type, category)
	}
}

// sumDisplayTotals aggregates the display debit and credit columns. A
// sales return contributes its debit normally but never a credit, even if
// one survived upstream.
func sumDisplayTotals(txs []Transaction) (totalDebit, totalCredit decimal.Decimal) {
	for _, t := range txs {
		totalDebit = totalDebit.Add(t.Debit)
		if t.Source != SourceSalesReturn {
			totalCredit = totalCredit.Add(t.Credit)
		}
	}
	return totalDebit, totalCredit
}
