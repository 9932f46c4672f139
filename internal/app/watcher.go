package app

import (
	"errors"
	"sync"
	"time"

	"ledger-engine/internal/core"
	"ledger-engine/internal/sources"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrNotReady is returned while an account's sources are still loading,
// in particular before the opening balance has resolved. The ledger is
// never computed against an undefined opening balance.
var ErrNotReady = errors.New("ledger sources still loading")

// DefaultDebounceWindow collapses bursts of near-simultaneous source
// updates into one recomputation pass.
const DefaultDebounceWindow = 50 * time.Millisecond

// Watcher holds the last-known-good snapshot of every source feeding one
// account's ledger and recomputes the merged statement on a trailing-edge
// debounce. A source delivery failure keeps that source's previous
// snapshot; it never aborts the whole computation.
type Watcher struct {
	accountID string
	window    time.Duration
	log       *logrus.Entry

	mu         sync.Mutex
	snaps      core.Snapshots
	opening    decimal.Decimal
	openingOK  bool
	loaded     map[string]bool
	timer      *time.Timer
	latest     *core.Statement
	computedAt time.Time
	recomputes int
	closed     bool
}

// NewWatcher creates a watcher for one account. A non-positive window
// falls back to DefaultDebounceWindow.
func NewWatcher(accountID string, window time.Duration, log *logrus.Logger) *Watcher {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Watcher{
		accountID: accountID,
		window:    window,
		log:       log.WithField("account_id", accountID),
		loaded:    make(map[string]bool),
	}
}

// SetOpeningBalance resolves the one-shot opening balance and unblocks
// computation.
func (w *Watcher) SetOpeningBalance(opening decimal.Decimal) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opening = opening
	w.openingOK = true
	w.scheduleLocked()
}

// UpdateLedger replaces the manual-ledger snapshot.
func (w *Watcher) UpdateLedger(recs []core.RawLedgerRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snaps.Ledger = recs
	w.loaded[sources.FeedLedger] = true
	w.scheduleLocked()
}

// UpdateSales replaces the sales snapshot.
func (w *Watcher) UpdateSales(recs []core.RawSaleRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snaps.Sales = recs
	w.loaded[sources.FeedSales] = true
	w.scheduleLocked()
}

// UpdateExpenses replaces the expenses snapshot.
func (w *Watcher) UpdateExpenses(recs []core.RawExpenseRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snaps.Expenses = recs
	w.loaded[sources.FeedExpenses] = true
	w.scheduleLocked()
}

// UpdateReturns replaces the sales-returns snapshot.
func (w *Watcher) UpdateReturns(recs []core.RawReturnRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snaps.Returns = recs
	w.loaded[sources.FeedReturns] = true
	w.scheduleLocked()
}

// KeepLastGood records a failed delivery for one feed. The previous
// snapshot stays in place; the failure is logged and absorbed.
func (w *Watcher) KeepLastGood(feed string, err error) {
	w.log.WithError(err).WithField("feed", feed).
		Warn("source delivery failed, keeping last good snapshot")
}

// scheduleLocked arms (or re-arms) the trailing-edge debounce timer.
// Callers must hold w.mu.
func (w *Watcher) scheduleLocked() {
	if w.closed {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.window, w.recompute)
		return
	}
	w.timer.Reset(w.window)
}

// recompute runs one merge/sort/balance pass over the current snapshots.
// It is a no-op until the watcher is ready; the update that completes
// readiness re-arms the timer.
func (w *Watcher) recompute() {
	w.mu.Lock()
	if w.closed || !w.readyLocked() {
		w.mu.Unlock()
		return
	}
	snaps := w.snaps
	opening := w.opening
	w.mu.Unlock()

	started := time.Now()
	st := core.ComputeStatement(w.accountID, snaps, opening, started)

	w.mu.Lock()
	w.latest = st
	w.computedAt = started
	w.recomputes++
	w.mu.Unlock()

	w.log.WithFields(logrus.Fields{
		"transactions":    len(st.Transactions),
		"current_balance": st.State.CurrentBalance,
		"elapsed":         time.Since(started),
	}).Debug("ledger statement recomputed")
}

func (w *Watcher) readyLocked() bool {
	return w.openingOK &&
		w.loaded[sources.FeedLedger] &&
		w.loaded[sources.FeedSales] &&
		w.loaded[sources.FeedExpenses] &&
		w.loaded[sources.FeedReturns]
}

// Statement returns the latest computed statement, or ErrNotReady before
// the first complete pass. The returned statement is immutable; callers
// must not modify it.
func (w *Watcher) Statement() (*core.Statement, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.latest == nil {
		return nil, ErrNotReady
	}
	return w.latest, nil
}

// ComputedAt reports when the latest statement was computed.
func (w *Watcher) ComputedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.computedAt
}

// Recomputes reports how many passes have run.
func (w *Watcher) Recomputes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.recomputes
}

// Close stops the debounce timer. A closed watcher never recomputes again.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
}
