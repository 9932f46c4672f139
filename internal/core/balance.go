package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SortChronological orders transactions by display time ascending, with
// creation time as the tie-break. A zero CreatedAt sorts earliest. The sort
// is stable so equal keys keep their merge order across recomputations.
func SortChronological(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].DisplayTime.Equal(txs[j].DisplayTime) {
			return txs[i].DisplayTime.Before(txs[j].DisplayTime)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
}

// ApplyRunningBalance walks the already-sorted transactions in ascending
// order, assigns each its balance-after, and returns the closing balance.
//
// Sign rules:
//   - sales_return: the debit always reduces the balance, even if a credit
//     somehow survived normalization
//   - transaction-credit (capital) entries: credit and debit both add
//   - everything else: ordinary double entry, credit minus debit
func ApplyRunningBalance(txs []Transaction, opening decimal.Decimal) decimal.Decimal {
	balance := opening
	for i := range txs {
		t := &txs[i]
		switch {
		case t.Source == SourceSalesReturn:
			balance = balance.Sub(t.Debit)
		case t.TransactionCredit:
			balance = balance.Add(t.Credit).Add(t.Debit)
		default:
			balance = balance.Add(t.Credit).Sub(t.Debit)
		}
		t.Balance = balance
	}
	return balance
}

// Statement is the full merged, chronologically ordered, balanced
// transaction set for one account, the input the view projector works on.
type Statement struct {
	AccountID    string          `json:"account_id"`
	Transactions []Transaction   `json:"transactions"`
	State        AccountState    `json:"state"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
}

// ComputeStatement runs the merge pipeline: normalize each source list,
// drop sales already booked manually, sort the union and assign running
// balances starting from the opening balance.
func ComputeStatement(accountID string, snaps Snapshots, opening decimal.Decimal, now time.Time) *Statement {
	manual := make([]Transaction, 0, len(snaps.Ledger))
	for _, r := range snaps.Ledger {
		manual = append(manual, NormalizeLedgerRecord(r, now))
	}

	sales := make([]Transaction, 0, len(snaps.Sales))
	for _, r := range snaps.Sales {
		if t, ok := NormalizeSaleRecord(r, accountID, now); ok {
			sales = append(sales, t)
		}
	}
	sales = ExcludeRecordedSales(manual, sales)

	all := make([]Transaction, 0, len(manual)+len(sales)+len(snaps.Expenses)+len(snaps.Returns))
	all = append(all, manual...)
	all = append(all, sales...)
	for _, r := range snaps.Expenses {
		all = append(all, NormalizeExpenseRecord(r, now))
	}
	for _, r := range snaps.Returns {
		if t, ok := NormalizeReturnRecord(r, now); ok {
			all = append(all, t)
		}
	}

	SortChronological(all)
	current := ApplyRunningBalance(all, opening)

	totalDebit, totalCredit := sumDisplayTotals(all)

	return &Statement{
		AccountID:    accountID,
		Transactions: all,
		State: AccountState{
			OpeningBalance: opening,
			CurrentBalance: current,
		},
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	}
}
