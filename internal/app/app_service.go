package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"ledger-engine/internal/core"
	"ledger-engine/internal/export"
	"ledger-engine/internal/sources"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SourceReader is the read side of the source store the service depends
// on. *sources.Store satisfies it; tests substitute a fake.
type SourceReader interface {
	ListLedgerEntries(ctx context.Context, accountID string) ([]core.RawLedgerRecord, error)
	ListSales(ctx context.Context, accountID string) ([]core.RawSaleRecord, error)
	ListExpenses(ctx context.Context, accountID string) ([]core.RawExpenseRecord, error)
	ListReturns(ctx context.Context, accountID string) ([]core.RawReturnRecord, error)
	OpeningBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

type appService struct {
	store  SourceReader
	log    *logrus.Logger
	window time.Duration

	mu       sync.Mutex
	watchers map[string]*Watcher
}

// NewAppService constructs an appService that satisfies ApplicationService.
// window is the debounce window for live recomputation; zero means the
// default.
func NewAppService(store SourceReader, log *logrus.Logger, window time.Duration) ApplicationService {
	return &appService{
		store:    store,
		log:      log,
		window:   window,
		watchers: make(map[string]*Watcher),
	}
}

// WatchAccount starts live tracking of an account. The opening balance
// must resolve before anything else; a ledger computed against an
// undefined opening balance would silently look valid.
func (s *appService) WatchAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	if _, ok := s.watchers[accountID]; ok {
		s.mu.Unlock()
		return nil
	}
	w := NewWatcher(accountID, s.window, s.log)
	s.watchers[accountID] = w
	s.mu.Unlock()

	opening, err := s.store.OpeningBalance(ctx, accountID)
	if err != nil {
		s.mu.Lock()
		delete(s.watchers, accountID)
		s.mu.Unlock()
		w.Close()
		return fmt.Errorf("opening balance for account %s: %w", accountID, err)
	}
	w.SetOpeningBalance(opening)

	for _, feed := range sources.Feeds() {
		s.loadFeed(ctx, w, feed, accountID)
	}
	return nil
}

// GetLedgerView serves the requested projection from the latest
// debounce-computed statement.
func (s *appService) GetLedgerView(ctx context.Context, accountID string, q core.ViewQuery) (*LedgerViewResult, error) {
	if err := s.WatchAccount(ctx, accountID); err != nil {
		return nil, err
	}

	st, err := s.watcher(accountID).Statement()
	if err != nil {
		return nil, err
	}
	return &LedgerViewResult{
		AccountID:  accountID,
		View:       core.ProjectView(st, q),
		ComputedAt: s.watcher(accountID).ComputedAt(),
	}, nil
}

// FetchLedgerView reads every source once and computes the view directly.
func (s *appService) FetchLedgerView(ctx context.Context, accountID string, q core.ViewQuery) (*LedgerViewResult, error) {
	opening, err := s.store.OpeningBalance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("opening balance for account %s: %w", accountID, err)
	}

	snaps := core.Snapshots{}
	if snaps.Ledger, err = s.store.ListLedgerEntries(ctx, accountID); err != nil {
		return nil, fmt.Errorf("ledger entries for account %s: %w", accountID, err)
	}
	if snaps.Sales, err = s.store.ListSales(ctx, accountID); err != nil {
		return nil, fmt.Errorf("sales for account %s: %w", accountID, err)
	}
	if snaps.Expenses, err = s.store.ListExpenses(ctx, accountID); err != nil {
		return nil, fmt.Errorf("expenses for account %s: %w", accountID, err)
	}
	if snaps.Returns, err = s.store.ListReturns(ctx, accountID); err != nil {
		return nil, fmt.Errorf("sales returns for account %s: %w", accountID, err)
	}

	now := time.Now()
	view := core.ComputeLedgerView(core.Computation{
		AccountID:      accountID,
		OpeningBalance: opening,
		Snapshots:      snaps,
		Now:            now,
		Query:          q,
	})
	return &LedgerViewResult{AccountID: accountID, View: view, ComputedAt: now}, nil
}

// ExportLedger writes the unpaginated filtered ledger to w.
func (s *appService) ExportLedger(ctx context.Context, accountID string, q core.ViewQuery, format string, w io.Writer) error {
	q.Page = 0
	q.PageSize = 0

	res, err := s.FetchLedgerView(ctx, accountID, q)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		return export.WriteCSV(w, res.View)
	case "xlsx":
		return export.WriteXLSX(w, res.View)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// RefreshSource re-reads one source list for a watched account.
func (s *appService) RefreshSource(ctx context.Context, feed, accountID string) {
	w := s.watcher(accountID)
	if w == nil {
		return
	}
	s.loadFeed(ctx, w, feed, accountID)
}

// Close stops all watchers.
func (s *appService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.watchers {
		w.Close()
	}
	s.watchers = make(map[string]*Watcher)
}

// ── private helpers ───────────────────────────────────────────────────────────

func (s *appService) watcher(accountID string) *Watcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchers[accountID]
}

// loadFeed reads one source list and pushes it into the watcher. A failed
// read keeps the watcher's last good snapshot for that feed.
func (s *appService) loadFeed(ctx context.Context, w *Watcher, feed, accountID string) {
	switch feed {
	case sources.FeedLedger:
		if recs, err := s.store.ListLedgerEntries(ctx, accountID); err != nil {
			w.KeepLastGood(feed, err)
		} else {
			w.UpdateLedger(recs)
		}
	case sources.FeedSales:
		if recs, err := s.store.ListSales(ctx, accountID); err != nil {
			w.KeepLastGood(feed, err)
		} else {
			w.UpdateSales(recs)
		}
	case sources.FeedExpenses:
		if recs, err := s.store.ListExpenses(ctx, accountID); err != nil {
			w.KeepLastGood(feed, err)
		} else {
			w.UpdateExpenses(recs)
		}
	case sources.FeedReturns:
		if recs, err := s.store.ListReturns(ctx, accountID); err != nil {
			w.KeepLastGood(feed, err)
		} else {
			w.UpdateReturns(recs)
		}
	default:
		s.log.WithField("feed", feed).Warn("ignoring notification for unknown feed")
	}
}
