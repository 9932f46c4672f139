package core

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Source tags the provenance of a ledger transaction. It drives the
// sign rule in the balance pass and the dedup logic for sales.
type Source string

const (
	SourceAccount     Source = "account"
	SourceSale        Source = "sale"
	SourceExpense     Source = "expense"
	SourceSalesReturn Source = "sales_return"
	SourceTransfer    Source = "transfer"
	SourceJournal     Source = "journal"
)

// Transaction is the uniform shape every source record is normalized into.
// Balance is derived; it is meaningful only after ApplyRunningBalance has
// run over the full chronological set.
type Transaction struct {
	ID             string `json:"id"`
	Source         Source `json:"source"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	PaymentDetails string `json:"payment_details,omitempty"`
	Note           string `json:"note,omitempty"`
	AddedBy        string `json:"added_by,omitempty"`
	ReferenceNo    string `json:"reference_no,omitempty"`
	Category       string `json:"category,omitempty"`
	CustomerName   string `json:"customer_name,omitempty"`

	// Cross-reference identifiers, used only for dedup matching.
	RelatedDocID string `json:"related_doc_id,omitempty"`
	SaleID       string `json:"sale_id,omitempty"`
	InvoiceNo    string `json:"invoice_no,omitempty"`

	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	DisplayTime time.Time `json:"display_time"`

	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`

	// TransactionCredit marks a capital entry whose debit and credit both
	// increase the balance. The arithmetic is preserved as-is from the
	// legacy books; do not reinterpret it as ordinary double entry.
	TransactionCredit bool `json:"transaction_credit,omitempty"`
}

// AccountState is the opening/current balance pair for one account.
type AccountState struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// Amount is a loosely-typed monetary field as it arrives in a source
// document: a JSON number, a numeric string, null, or absent. It keeps the
// raw text so that normalization, not decoding, decides how malformed
// values are coerced.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(a))), nil
}

// RawLedgerRecord is a manual ledger row as stored in the account book
// collection. Fund transfers and journal entries are recorded here too,
// distinguished by the Source tag.
type RawLedgerRecord struct {
	ID             string `json:"id"`
	Source         string `json:"source,omitempty"`
	Type           string `json:"type,omitempty"`
	Description    string `json:"description,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	PaymentDetails string `json:"payment_details,omitempty"`
	Note           string `json:"note,omitempty"`
	AddedBy        string `json:"added_by,omitempty"`
	ReferenceNo    string `json:"reference_no,omitempty"`
	Category       string `json:"category,omitempty"`
	CustomerName   string `json:"customer_name,omitempty"`
	RelatedDocID   string `json:"related_doc_id,omitempty"`
	SaleID         string `json:"sale_id,omitempty"`

	Amount Amount `json:"amount,omitempty"`
	Debit  Amount `json:"debit,omitempty"`
	Credit Amount `json:"credit,omitempty"`

	TransactionCredit bool `json:"transaction_credit,omitempty"`

	TransactionTime *time.Time `json:"transaction_time,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
}

// SalePayment is one leg of a split payment on a sale, keyed by the
// receiving account.
type SalePayment struct {
	AccountID string `json:"account_id"`
	Amount    Amount `json:"amount"`
	Method    string `json:"method,omitempty"`
}

// RawSaleRecord is a sale as stored in the sales collection.
type RawSaleRecord struct {
	ID            string        `json:"id"`
	InvoiceNo     string        `json:"invoice_no,omitempty"`
	CustomerName  string        `json:"customer_name,omitempty"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Note          string        `json:"note,omitempty"`
	AddedBy       string        `json:"added_by,omitempty"`
	Status        string        `json:"status,omitempty"`
	PaymentAmount Amount        `json:"payment_amount,omitempty"`
	Payments      []SalePayment `json:"payments,omitempty"`

	TransactionTime *time.Time `json:"transaction_time,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
}

// RawExpenseRecord is an expense as stored in the expense collection.
type RawExpenseRecord struct {
	ID            string `json:"id"`
	Category      string `json:"category,omitempty"`
	Note          string `json:"note,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	AddedBy       string `json:"added_by,omitempty"`
	PaymentAmount Amount `json:"payment_amount,omitempty"`

	TransactionTime *time.Time `json:"transaction_time,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
}

// RawReturnRecord is a sales return as stored in the returns collection.
type RawReturnRecord struct {
	ID           string `json:"id"`
	Source       string `json:"source,omitempty"`
	Description  string `json:"description,omitempty"`
	ReferenceNo  string `json:"reference_no,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	AddedBy      string `json:"added_by,omitempty"`
	RelatedDocID string `json:"related_doc_id,omitempty"`
	Debit        Amount `json:"debit,omitempty"`
	Credit       Amount `json:"credit,omitempty"`

	TransactionTime *time.Time `json:"transaction_time,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
}

// Snapshots is the latest known list from each upstream source. A
// computation pass treats it as immutable.
type Snapshots struct {
	Ledger   []RawLedgerRecord
	Sales    []RawSaleRecord
	Expenses []RawExpenseRecord
	Returns  []RawReturnRecord
}
