// Package api exposes the ledger core over HTTP. Transport only: every
// handler decodes JSON, calls one core operation and encodes the result.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finbook-dev/finbook/internal/ledger"
	"github.com/finbook-dev/finbook/internal/model"
	"github.com/finbook-dev/finbook/internal/reconcile"
	"github.com/finbook-dev/finbook/internal/reporting"
)

// Server is the finbook HTTP API server.
type Server struct {
	ledger         *ledger.Service
	reporting      *reporting.Service
	reconcile      *reconcile.Service
	companyID      string
	metricsEnabled bool
}

// NewServer creates an API server bound to one company's books.
func NewServer(l *ledger.Service, rep *reporting.Service, rec *reconcile.Service, companyID string) *Server {
	return &Server{ledger: l, reporting: rep, reconcile: rec, companyID: companyID}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/journal-entries", s.handleCreateDraft)
		r.Get("/journal-entries", s.handleListEntries)
		r.Get("/journal-entries/{id}", s.handleGetEntry)
		r.Put("/journal-entries/{id}/lines", s.handleUpdateDraft)
		r.Post("/journal-entries/{id}/post", s.handlePostEntry)
		r.Post("/journal-entries/{id}/reverse", s.handleReverseEntry)
		r.Delete("/journal-entries/{id}", s.handleDiscardDraft)

		r.Get("/accounts/{id}/ledger", s.handleAccountLedger)
		r.Get("/balance-sheet", s.handleBalanceSheet)

		r.Get("/bank-transactions/{id}/suggestions", s.handleSuggestions)
		r.Post("/bank-transactions/{id}/reconcile", s.handleReconcile)
		r.Post("/bank-transactions/{id}/unreconcile", s.handleUnreconcile)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps domain errors onto HTTP statuses with stable codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.Is(err, model.ErrEntryNotFound),
		errors.Is(err, model.ErrAccountNotFound),
		errors.Is(err, model.ErrTransactionNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrUnbalancedEntry):
		status, code = http.StatusBadRequest, "unbalanced_entry"
	case errors.Is(err, model.ErrInvalidAccount):
		status, code = http.StatusBadRequest, "invalid_account"
	case errors.Is(err, model.ErrInvalidEntryType):
		status, code = http.StatusBadRequest, "invalid_entry_type"
	case errors.Is(err, model.ErrNotDraft):
		status, code = http.StatusConflict, "not_draft"
	case errors.Is(err, model.ErrNotPosted):
		status, code = http.StatusConflict, "not_posted"
	case errors.Is(err, model.ErrAlreadyReversed):
		status, code = http.StatusConflict, "already_reversed"
	case errors.Is(err, model.ErrAlreadyReconciled):
		status, code = http.StatusConflict, "already_reconciled"
	case errors.Is(err, model.ErrNotReconciled):
		status, code = http.StatusConflict, "not_reconciled"
	}

	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: "bad_request"})
}
