package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ledger-engine/internal/app"
	"ledger-engine/internal/core"
	"ledger-engine/internal/sources"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc app.ApplicationService
	log *logrus.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log *logrus.Logger) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	r.Route("/api/accounts/{accountID}", func(r chi.Router) {
		r.Get("/ledger", h.ledgerView)
		r.Get("/ledger/export", h.ledgerExport)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// ledgerView serves the filtered, paginated account book.
func (h *Handler) ledgerView(w http.ResponseWriter, r *http.Request) {
	q, err := parseViewQuery(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	res, err := h.svc.GetLedgerView(r.Context(), chi.URLParam(r, "accountID"), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// ledgerExport streams the unpaginated filtered ledger as CSV or XLSX. The
// report is rendered to a buffer first so a failed computation still gets a
// proper error status.
func (h *Handler) ledgerExport(w http.ResponseWriter, r *http.Request) {
	q, err := parseViewQuery(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, r, fmt.Sprintf("unsupported export format %q", format), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	accountID := chi.URLParam(r, "accountID")
	var buf bytes.Buffer
	if err := h.svc.ExportLedger(r.Context(), accountID, q, format, &buf); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ledger-"+accountID+"."+format))
	_, _ = w.Write(buf.Bytes())
}

// writeServiceError maps service-layer errors to HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrNotReady):
		writeError(w, r, "ledger sources still loading, retry shortly", "STILL_LOADING", http.StatusServiceUnavailable)
	case errors.Is(err, sources.ErrAccountNotFound):
		writeError(w, r, "account not found", "ACCOUNT_NOT_FOUND", http.StatusNotFound)
	default:
		h.log.WithError(err).Error("ledger request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// parseViewQuery reads the shared filter/paging parameters:
// from, to, q, category, dir, page, page_size.
func parseViewQuery(r *http.Request) (core.ViewQuery, error) {
	params := r.URL.Query()
	q := core.ViewQuery{
		Search:   params.Get("q"),
		Category: params.Get("category"),
	}

	switch dir := params.Get("dir"); dir {
	case "", "asc":
		q.Direction = core.SortAscending
	case "desc":
		q.Direction = core.SortDescending
	default:
		return q, fmt.Errorf("invalid dir %q: want asc or desc", dir)
	}

	var err error
	if q.From, err = parseDateParam(params.Get("from")); err != nil {
		return q, fmt.Errorf("invalid from: %w", err)
	}
	if q.To, err = parseDateParam(params.Get("to")); err != nil {
		return q, fmt.Errorf("invalid to: %w", err)
	}

	if raw := params.Get("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil || q.Page < 1 {
			return q, fmt.Errorf("invalid page %q", raw)
		}
	}
	if raw := params.Get("page_size"); raw != "" {
		if q.PageSize, err = strconv.Atoi(raw); err != nil || q.PageSize < 0 {
			return q, fmt.Errorf("invalid page_size %q", raw)
		}
	}
	return q, nil
}

// parseDateParam accepts a plain date or a full RFC 3339 timestamp.
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a date", raw)
	}
	return &t, nil
}
