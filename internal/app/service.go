package app

import (
	"context"
	"io"

	"ledger-engine/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from the computation engine. Implementations
// must contain no fmt.Println, no ANSI codes, and no display logic of any
// kind.
type ApplicationService interface {
	// WatchAccount starts live tracking of an account's sources: resolves
	// the opening balance, loads the initial snapshots and subscribes the
	// account to debounced recomputation. Idempotent.
	WatchAccount(ctx context.Context, accountID string) error

	// GetLedgerView projects the requested filter/page over the latest
	// debounce-computed statement. Returns ErrNotReady until the first
	// complete pass for the account has run.
	GetLedgerView(ctx context.Context, accountID string, q core.ViewQuery) (*LedgerViewResult, error)

	// FetchLedgerView computes a ledger view from a fresh one-shot read of
	// every source, with no watcher involved. Used by the CLI and export paths.
	FetchLedgerView(ctx context.Context, accountID string, q core.ViewQuery) (*LedgerViewResult, error)

	// ExportLedger writes the unpaginated filtered ledger in the given
	// format ("csv" or "xlsx") to w.
	ExportLedger(ctx context.Context, accountID string, q core.ViewQuery, format string, w io.Writer) error

	// RefreshSource re-reads one source list for a watched account and
	// pushes it into the account's watcher. Unwatched accounts are ignored.
	// Called by the notification listener.
	RefreshSource(ctx context.Context, feed, accountID string)

	// Close stops all watchers.
	Close()
}
