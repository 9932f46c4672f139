package app

import (
	"time"

	"ledger-engine/internal/core"
)

// LedgerViewResult is returned by GetLedgerView and FetchLedgerView.
type LedgerViewResult struct {
	AccountID  string     `json:"account_id"`
	View       *core.View `json:"view"`
	ComputedAt time.Time  `json:"computed_at"`
}
