package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/ledger"
	"github.com/finbook-dev/finbook/internal/model"
)

const apiDateFormat = "2006-01-02"

type lineRequest struct {
	AccountID   string `json:"account_id"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Description string `json:"description"`
}

type createDraftRequest struct {
	JournalDate  string        `json:"journal_date"`
	Description  string        `json:"description"`
	EntryType    string        `json:"entry_type"`
	SourceType   string        `json:"source_type"`
	SourceNumber string        `json:"source_number"`
	Lines        []lineRequest `json:"lines"`
}

type lineResponse struct {
	AccountID   string `json:"account_id"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Description string `json:"description,omitempty"`
}

type entryResponse struct {
	ID                string         `json:"id"`
	JournalNumber     string         `json:"journal_number"`
	JournalDate       string         `json:"journal_date"`
	Description       string         `json:"description"`
	EntryType         string         `json:"entry_type"`
	Status            string         `json:"status"`
	FinancialYear     int            `json:"financial_year"`
	PeriodMonth       int            `json:"period_month"`
	SourceType        string         `json:"source_type,omitempty"`
	SourceNumber      string         `json:"source_number,omitempty"`
	IsReversed        bool           `json:"is_reversed"`
	ReversalOfEntryID string         `json:"reversal_of_entry_id,omitempty"`
	Lines             []lineResponse `json:"lines"`
}

func toEntryResponse(e model.JournalEntry) entryResponse {
	resp := entryResponse{
		ID:                e.ID,
		JournalNumber:     e.JournalNumber,
		JournalDate:       e.JournalDate.Format(apiDateFormat),
		Description:       e.Description,
		EntryType:         string(e.EntryType),
		Status:            string(e.Status),
		FinancialYear:     e.FinancialYear,
		PeriodMonth:       e.PeriodMonth,
		SourceType:        e.SourceType,
		SourceNumber:      e.SourceNumber,
		IsReversed:        e.IsReversed,
		ReversalOfEntryID: e.ReversalOfEntryID,
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, lineResponse{
			AccountID:   l.AccountID,
			Debit:       l.Debit.StringFixed(2),
			Credit:      l.Credit.StringFixed(2),
			Description: l.Description,
		})
	}
	return resp
}

func parseLines(reqs []lineRequest) ([]model.JournalLine, error) {
	lines := make([]model.JournalLine, 0, len(reqs))
	for _, lr := range reqs {
		debit, credit := decimal.Zero, decimal.Zero
		var err error
		if lr.Debit != "" {
			if debit, err = decimal.NewFromString(lr.Debit); err != nil {
				return nil, err
			}
		}
		if lr.Credit != "" {
			if credit, err = decimal.NewFromString(lr.Credit); err != nil {
				return nil, err
			}
		}
		lines = append(lines, model.JournalLine{
			AccountID:   lr.AccountID,
			Debit:       debit,
			Credit:      credit,
			Description: lr.Description,
		})
	}
	return lines, nil
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	date, err := time.Parse(apiDateFormat, req.JournalDate)
	if err != nil {
		badRequest(w, "invalid journal_date: "+err.Error())
		return
	}
	// Reversal and closing entries are engine-assigned, never client-supplied.
	switch model.EntryType(req.EntryType) {
	case "", model.EntryTypeManual, model.EntryTypeAutoPost:
	default:
		badRequest(w, "entry_type must be manual or auto_post")
		return
	}
	lines, err := parseLines(req.Lines)
	if err != nil {
		badRequest(w, "invalid line amount: "+err.Error())
		return
	}

	entry, err := s.ledger.CreateDraft(r.Context(), ledger.DraftParams{
		CompanyID:    s.companyID,
		JournalDate:  date,
		Description:  req.Description,
		EntryType:    model.EntryType(req.EntryType),
		SourceType:   req.SourceType,
		SourceNumber: req.SourceNumber,
		Lines:        lines,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.List(r.Context(), s.companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lines []lineRequest `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	lines, err := parseLines(req.Lines)
	if err != nil {
		badRequest(w, "invalid line amount: "+err.Error())
		return
	}
	if err := s.ledger.UpdateDraft(r.Context(), chi.URLParam(r, "id"), lines); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handlePostEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.ledger.Post(r.Context(), chi.URLParam(r, "id"), actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (s *Server) handleReverseEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason       string `json:"reason"`
		ReversalDate string `json:"reversal_date"`
	}
	// Both fields are optional; an absent body means defaults.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	reversalDate := time.Now().UTC()
	if req.ReversalDate != "" {
		var err error
		if reversalDate, err = time.Parse(apiDateFormat, req.ReversalDate); err != nil {
			badRequest(w, "invalid reversal_date: "+err.Error())
			return
		}
	}

	reversal, err := s.ledger.Reverse(r.Context(), chi.URLParam(r, "id"), req.Reason, actor(r), reversalDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(reversal))
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actor identifies the caller for the audit trail. Authentication belongs to
// the surrounding product; the header is advisory here.
func actor(r *http.Request) string {
	if u := r.Header.Get("X-Finbook-User"); u != "" {
		return u
	}
	return "api"
}
