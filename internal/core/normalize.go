package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// coerceAmount parses a loosely-typed amount field. Absent, null-ish or
// non-numeric values coerce to zero; per-record input problems are
// absorbed here, never surfaced as errors.
func coerceAmount(a Amount) decimal.Decimal {
	s := strings.TrimSpace(string(a))
	if s == "" || strings.EqualFold(s, "null") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// resolveDisplayTime picks the point in time downstream sorting and
// filtering use: explicit transaction time, then creation time, then the
// business date, then the pass's reference time. now is captured once per
// computation pass so a pass stays deterministic.
func resolveDisplayTime(transactionTime, createdAt, date *time.Time, now time.Time) time.Time {
	for _, t := range []*time.Time{transactionTime, createdAt, date} {
		if t != nil && !t.IsZero() {
			return *t
		}
	}
	return now
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// debitKeyword reports whether a single-amount ledger row books as a debit:
// its type mentions an outflow (expense, payment, return).
func debitKeyword(recordType string) bool {
	lt := strings.ToLower(recordType)
	return strings.Contains(lt, "expense") ||
		strings.Contains(lt, "payment") ||
		strings.Contains(lt, "return")
}

// NormalizeLedgerRecord maps a manual ledger row into a Transaction.
// Explicit debit/credit fields win; otherwise the single amount field is
// booked by the keyword rule on the record type.
func NormalizeLedgerRecord(r RawLedgerRecord, now time.Time) Transaction {
	t := Transaction{
		ID:             r.ID,
		Source:         ledgerSource(r.Source),
		Type:           r.Type,
		Description:    r.Description,
		PaymentMethod:  r.PaymentMethod,
		PaymentDetails: r.PaymentDetails,
		Note:           r.Note,
		AddedBy:        r.AddedBy,
		ReferenceNo:    r.ReferenceNo,
		Category:       r.Category,
		CustomerName:   r.CustomerName,
		RelatedDocID:   r.RelatedDocID,
		SaleID:         r.SaleID,

		Date:              timeOrZero(r.Date),
		CreatedAt:         timeOrZero(r.CreatedAt),
		DisplayTime:       resolveDisplayTime(r.TransactionTime, r.CreatedAt, r.Date, now),
		TransactionCredit: r.TransactionCredit,
	}

	if r.Debit != "" || r.Credit != "" {
		t.Debit = coerceAmount(r.Debit)
		t.Credit = coerceAmount(r.Credit)
		return t
	}

	amount := coerceAmount(r.Amount)
	if debitKeyword(r.Type) {
		t.Debit = amount
		t.Credit = decimal.Zero
	} else {
		t.Debit = decimal.Zero
		t.Credit = amount
	}
	return t
}

// ledgerSource maps the row's own tag to a Source; anything unrecognized
// is a plain manual ledger entry.
func ledgerSource(tag string) Source {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case string(SourceJournal):
		return SourceJournal
	case string(SourceTransfer):
		return SourceTransfer
	default:
		return SourceAccount
	}
}

// NormalizeSaleRecord maps a sale into a credit-only Transaction for the
// account being viewed. A sale with no positive payment amount yields no
// transaction at all; dropping it beats rendering an empty ledger row.
// When the sale carries split payments, the split matching accountID
// overrides both the credit amount and the payment method.
func NormalizeSaleRecord(r RawSaleRecord, accountID string, now time.Time) (Transaction, bool) {
	payment := coerceAmount(r.PaymentAmount)
	if !payment.IsPositive() {
		return Transaction{}, false
	}

	credit := payment
	method := r.PaymentMethod
	for _, p := range r.Payments {
		if p.AccountID == accountID {
			credit = coerceAmount(p.Amount)
			method = p.Method
			break
		}
	}

	description := "Sale"
	if r.InvoiceNo != "" {
		description = "Sale " + r.InvoiceNo
	}

	return Transaction{
		ID:            r.ID,
		Source:        SourceSale,
		Type:          "Sale",
		Description:   description,
		PaymentMethod: method,
		Note:          r.Note,
		AddedBy:       r.AddedBy,
		CustomerName:  r.CustomerName,
		InvoiceNo:     r.InvoiceNo,
		ReferenceNo:   r.InvoiceNo,
		Date:          timeOrZero(r.Date),
		CreatedAt:     timeOrZero(r.CreatedAt),
		DisplayTime:   resolveDisplayTime(r.TransactionTime, r.CreatedAt, r.Date, now),
		Debit:         decimal.Zero,
		Credit:        credit,
	}, true
}

// NormalizeExpenseRecord maps an expense into a debit-only Transaction.
func NormalizeExpenseRecord(r RawExpenseRecord, now time.Time) Transaction {
	category := r.Category
	if category == "" {
		category = "Expense"
	}
	note := r.Note
	if note == "" {
		note = "No description"
	}

	return Transaction{
		ID:            r.ID,
		Source:        SourceExpense,
		Type:          "Expense",
		Description:   category + ": " + note,
		PaymentMethod: r.PaymentMethod,
		Note:          r.Note,
		AddedBy:       r.AddedBy,
		Category:      r.Category,
		Date:          timeOrZero(r.Date),
		CreatedAt:     timeOrZero(r.CreatedAt),
		DisplayTime:   resolveDisplayTime(r.TransactionTime, r.CreatedAt, r.Date, now),
		Debit:         coerceAmount(r.PaymentAmount),
		Credit:        decimal.Zero,
	}
}

// NormalizeReturnRecord maps a sales return into a debit-only Transaction.
// Records not tagged sales_return are dropped; the credit field is forced
// to zero regardless of what the record carries.
func NormalizeReturnRecord(r RawReturnRecord, now time.Time) (Transaction, bool) {
	if !strings.EqualFold(strings.TrimSpace(r.Source), string(SourceSalesReturn)) {
		return Transaction{}, false
	}

	return Transaction{
		ID:           r.ID,
		Source:       SourceSalesReturn,
		Type:         "Sales Return",
		Description:  r.Description,
		ReferenceNo:  r.ReferenceNo,
		CustomerName: r.CustomerName,
		AddedBy:      r.AddedBy,
		RelatedDocID: r.RelatedDocID,
		Date:         timeOrZero(r.Date),
		CreatedAt:    timeOrZero(r.CreatedAt),
		DisplayTime:  resolveDisplayTime(r.TransactionTime, r.CreatedAt, r.Date, now),
		Debit:        coerceAmount(r.Debit),
		Credit:       decimal.Zero,
	}, true
}
