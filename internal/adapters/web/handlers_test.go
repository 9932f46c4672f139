package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ledger-engine/internal/adapters/web"
	"ledger-engine/internal/app"
	"ledger-engine/internal/core"
	"ledger-engine/internal/export"
	"ledger-engine/internal/sources"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// stubService returns canned responses; gotQuery records the last parsed
// query so tests can assert parameter plumbing.
type stubService struct {
	result   *app.LedgerViewResult
	err      error
	gotQuery core.ViewQuery
}

func (s *stubService) WatchAccount(ctx context.Context, accountID string) error { return nil }

func (s *stubService) GetLedgerView(ctx context.Context, accountID string, q core.ViewQuery) (*app.LedgerViewResult, error) {
	s.gotQuery = q
	return s.result, s.err
}

func (s *stubService) FetchLedgerView(ctx context.Context, accountID string, q core.ViewQuery) (*app.LedgerViewResult, error) {
	s.gotQuery = q
	return s.result, s.err
}

func (s *stubService) ExportLedger(ctx context.Context, accountID string, q core.ViewQuery, format string, w io.Writer) error {
	s.gotQuery = q
	if s.err != nil {
		return s.err
	}
	return export.WriteCSV(w, s.result.View)
}

func (s *stubService) RefreshSource(ctx context.Context, feed, accountID string) {}
func (s *stubService) Close()                                                    {}

func newTestHandler(svc app.ApplicationService) http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return web.NewHandler(svc, "", log)
}

func okResult() *app.LedgerViewResult {
	return &app.LedgerViewResult{
		AccountID: "acct-1",
		View: &core.View{
			Rows: []core.Transaction{
				{ID: "l1", Type: "Income", Credit: decimal.NewFromInt(200), Balance: decimal.NewFromInt(1200)},
			},
			CurrentBalance: decimal.NewFromInt(1200),
			Page:           1,
			PageCount:      1,
			TotalRows:      1,
		},
		ComputedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&stubService{}).ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLedgerView(t *testing.T) {
	svc := &stubService{result: okResult()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/api/accounts/acct-1/ledger?from=2024-03-01&to=2024-03-31&q=fuel&category=Expense&dir=desc&page=2&page_size=25", nil)
	newTestHandler(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	q := svc.gotQuery
	if q.Search != "fuel" || q.Category != "Expense" || q.Direction != core.SortDescending {
		t.Errorf("parsed query = %+v", q)
	}
	if q.Page != 2 || q.PageSize != 25 {
		t.Errorf("paging = page %d size %d", q.Page, q.PageSize)
	}
	if q.From == nil || !q.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", q.From)
	}

	var res app.LedgerViewResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.AccountID != "acct-1" || len(res.View.Rows) != 1 {
		t.Errorf("response = %+v", res)
	}
}

func TestLedgerView_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"still loading", app.ErrNotReady, http.StatusServiceUnavailable, "STILL_LOADING"},
		{"unknown account", sources.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"internal", io.ErrUnexpectedEOF, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestHandler(&stubService{err: tt.err}).ServeHTTP(rec,
				httptest.NewRequest("GET", "/api/accounts/acct-1/ledger", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("body = %s, want code %s", rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestLedgerView_BadParams(t *testing.T) {
	for _, url := range []string{
		"/api/accounts/acct-1/ledger?from=tomorrow",
		"/api/accounts/acct-1/ledger?dir=sideways",
		"/api/accounts/acct-1/ledger?page=0",
		"/api/accounts/acct-1/ledger?page_size=lots",
	} {
		rec := httptest.NewRecorder()
		newTestHandler(&stubService{result: okResult()}).ServeHTTP(rec,
			httptest.NewRequest("GET", url, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, rec.Code)
		}
	}
}

func TestLedgerExport(t *testing.T) {
	svc := &stubService{result: okResult()}
	rec := httptest.NewRecorder()
	newTestHandler(svc).ServeHTTP(rec,
		httptest.NewRequest("GET", "/api/accounts/acct-1/ledger/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "ledger-acct-1.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "Date,Transaction Time,") {
		t.Errorf("body does not look like the csv report: %s", rec.Body.String())
	}
}

func TestLedgerExport_RejectsUnknownFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&stubService{result: okResult()}).ServeHTTP(rec,
		httptest.NewRequest("GET", "/api/accounts/acct-1/ledger/export?format=pdf", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
