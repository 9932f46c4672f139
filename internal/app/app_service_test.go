package app_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"ledger-engine/internal/app"
	"ledger-engine/internal/core"
	"ledger-engine/internal/sources"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory SourceReader.
type fakeStore struct {
	opening  decimal.Decimal
	ledger   []core.RawLedgerRecord
	sales    []core.RawSaleRecord
	expenses []core.RawExpenseRecord
	rets     []core.RawReturnRecord

	failLedger  error
	failOpening error
}

func (f *fakeStore) OpeningBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if f.failOpening != nil {
		return decimal.Zero, f.failOpening
	}
	return f.opening, nil
}

func (f *fakeStore) ListLedgerEntries(ctx context.Context, accountID string) ([]core.RawLedgerRecord, error) {
	if f.failLedger != nil {
		return nil, f.failLedger
	}
	return f.ledger, nil
}

func (f *fakeStore) ListSales(ctx context.Context, accountID string) ([]core.RawSaleRecord, error) {
	return f.sales, nil
}

func (f *fakeStore) ListExpenses(ctx context.Context, accountID string) ([]core.RawExpenseRecord, error) {
	return f.expenses, nil
}

func (f *fakeStore) ListReturns(ctx context.Context, accountID string) ([]core.RawReturnRecord, error) {
	return f.rets, nil
}

func seededStore() *fakeStore {
	return &fakeStore{
		opening: decimal.NewFromInt(1000),
		ledger: []core.RawLedgerRecord{
			{ID: "l1", Type: "Income", Amount: "200", Date: tp(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))},
		},
		expenses: []core.RawExpenseRecord{
			{ID: "e1", Category: "Fuel", Note: "van refill", PaymentAmount: "40",
				Date: tp(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))},
		},
	}
}

func TestService_GetLedgerView(t *testing.T) {
	svc := app.NewAppService(seededStore(), quietLogger(), testWindow)
	defer svc.Close()
	ctx := context.Background()

	if err := svc.WatchAccount(ctx, "acct-1"); err != nil {
		t.Fatalf("WatchAccount: %v", err)
	}
	settle()

	res, err := svc.GetLedgerView(ctx, "acct-1", core.ViewQuery{})
	if err != nil {
		t.Fatalf("GetLedgerView: %v", err)
	}
	if want := decimal.NewFromInt(1160); !res.View.CurrentBalance.Equal(want) {
		t.Errorf("current balance = %s, want %s", res.View.CurrentBalance, want)
	}
	if len(res.View.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(res.View.Rows))
	}
	if res.ComputedAt.IsZero() {
		t.Error("ComputedAt not set")
	}
}

func TestService_WatchAccountFailsWithoutOpeningBalance(t *testing.T) {
	store := seededStore()
	store.failOpening = sources.ErrAccountNotFound
	svc := app.NewAppService(store, quietLogger(), testWindow)
	defer svc.Close()

	err := svc.WatchAccount(context.Background(), "ghost")
	if !errors.Is(err, sources.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestService_RefreshSourceKeepsLastGoodOnFailure(t *testing.T) {
	store := seededStore()
	svc := app.NewAppService(store, quietLogger(), testWindow)
	defer svc.Close()
	ctx := context.Background()

	if err := svc.WatchAccount(ctx, "acct-1"); err != nil {
		t.Fatalf("WatchAccount: %v", err)
	}
	settle()

	store.failLedger = errors.New("connection reset")
	svc.RefreshSource(ctx, sources.FeedLedger, "acct-1")
	settle()

	res, err := svc.GetLedgerView(ctx, "acct-1", core.ViewQuery{})
	if err != nil {
		t.Fatalf("GetLedgerView after failed refresh: %v", err)
	}
	if want := decimal.NewFromInt(1160); !res.View.CurrentBalance.Equal(want) {
		t.Errorf("current balance = %s, want last good %s", res.View.CurrentBalance, want)
	}
}

func TestService_RefreshSourcePicksUpNewRecords(t *testing.T) {
	store := seededStore()
	svc := app.NewAppService(store, quietLogger(), testWindow)
	defer svc.Close()
	ctx := context.Background()

	if err := svc.WatchAccount(ctx, "acct-1"); err != nil {
		t.Fatalf("WatchAccount: %v", err)
	}
	settle()

	store.ledger = append(store.ledger, core.RawLedgerRecord{
		ID: "l2", Type: "Income", Amount: "100", Date: tp(time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)),
	})
	svc.RefreshSource(ctx, sources.FeedLedger, "acct-1")
	settle()

	res, err := svc.GetLedgerView(ctx, "acct-1", core.ViewQuery{})
	if err != nil {
		t.Fatalf("GetLedgerView: %v", err)
	}
	if want := decimal.NewFromInt(1260); !res.View.CurrentBalance.Equal(want) {
		t.Errorf("current balance = %s, want %s", res.View.CurrentBalance, want)
	}
}

func TestService_FetchLedgerView(t *testing.T) {
	svc := app.NewAppService(seededStore(), quietLogger(), testWindow)
	defer svc.Close()

	res, err := svc.FetchLedgerView(context.Background(), "acct-1", core.ViewQuery{})
	if err != nil {
		t.Fatalf("FetchLedgerView: %v", err)
	}
	if want := decimal.NewFromInt(1160); !res.View.CurrentBalance.Equal(want) {
		t.Errorf("current balance = %s, want %s", res.View.CurrentBalance, want)
	}
}

func TestService_ExportLedgerCSV(t *testing.T) {
	svc := app.NewAppService(seededStore(), quietLogger(), testWindow)
	defer svc.Close()

	var buf bytes.Buffer
	err := svc.ExportLedger(context.Background(), "acct-1", core.ViewQuery{PageSize: 1}, "csv", &buf)
	if err != nil {
		t.Fatalf("ExportLedger: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	// Header, both rows despite PageSize 1, totals.
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4: export must ignore pagination", len(records))
	}
}

func TestService_ExportLedgerRejectsUnknownFormat(t *testing.T) {
	svc := app.NewAppService(seededStore(), quietLogger(), testWindow)
	defer svc.Close()

	err := svc.ExportLedger(context.Background(), "acct-1", core.ViewQuery{}, "pdf", &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unsupported export format") {
		t.Fatalf("err = %v, want unsupported format error", err)
	}
}
