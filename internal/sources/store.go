package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ledger-engine/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Feed names, as carried in notification payloads ("<feed>:<account_id>").
const (
	FeedLedger   = "ledger"
	FeedSales    = "sales"
	FeedExpenses = "expenses"
	FeedReturns  = "returns"
)

// Feeds returns every feed name in load order.
func Feeds() []string {
	return []string{FeedLedger, FeedSales, FeedExpenses, FeedReturns}
}

// ErrAccountNotFound is returned when an account id resolves to nothing.
var ErrAccountNotFound = errors.New("account not found")

// Store reads source documents from Postgres. Each source table keeps the
// upstream document as a jsonb column; a document that fails to decode is
// logged and skipped, never fatal.
type Store struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

func NewStore(pool *pgxpool.Pool, log *logrus.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// OpeningBalance resolves the account's opening balance.
func (s *Store) OpeningBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT opening_balance::text FROM accounts WHERE id = $1`, accountID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query opening balance: %w", err)
	}
	opening, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse opening balance %q: %w", raw, err)
	}
	return opening, nil
}

// ListLedgerEntries returns the manual ledger documents for an account.
func (s *Store) ListLedgerEntries(ctx context.Context, accountID string) ([]core.RawLedgerRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, doc FROM ledger_entries WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var out []core.RawLedgerRecord
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		var rec core.RawLedgerRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			s.skipCorrupt(FeedLedger, id, err)
			continue
		}
		rec.ID = id
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListSales returns the sale documents for an account. Drafts and cancelled
// sales never reach the ledger.
func (s *Store) ListSales(ctx context.Context, accountID string) ([]core.RawSaleRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, doc FROM sales
		 WHERE account_id = $1
		   AND COALESCE(doc->>'status', '') NOT IN ('draft', 'cancelled')
		 ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var out []core.RawSaleRecord
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		var rec core.RawSaleRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			s.skipCorrupt(FeedSales, id, err)
			continue
		}
		rec.ID = id
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListExpenses returns the expense documents for an account.
func (s *Store) ListExpenses(ctx context.Context, accountID string) ([]core.RawExpenseRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, doc FROM expenses WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.RawExpenseRecord
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		var rec core.RawExpenseRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			s.skipCorrupt(FeedExpenses, id, err)
			continue
		}
		rec.ID = id
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListReturns returns the sales-return documents for an account.
func (s *Store) ListReturns(ctx context.Context, accountID string) ([]core.RawReturnRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, doc FROM sales_returns WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query sales returns: %w", err)
	}
	defer rows.Close()

	var out []core.RawReturnRecord
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan sales return: %w", err)
		}
		var rec core.RawReturnRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			s.skipCorrupt(FeedReturns, id, err)
			continue
		}
		rec.ID = id
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) skipCorrupt(feed, id string, err error) {
	s.log.WithError(err).WithFields(logrus.Fields{
		"feed": feed,
		"id":   id,
	}).Warn("skipping undecodable source document")
}
