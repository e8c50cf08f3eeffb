package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type suggestionResponse struct {
	PaymentID        string  `json:"payment_id"`
	Amount           string  `json:"amount"`
	AmountDifference string  `json:"amount_difference"`
	MatchScore       float64 `json:"match_score"`
	PaymentDate      string  `json:"payment_date"`
	ReferenceNumber  string  `json:"reference_number,omitempty"`
	CustomerName     string  `json:"customer_name,omitempty"`
	InvoiceNumber    string  `json:"invoice_number,omitempty"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tolerance := decimal.Zero
	if v := q.Get("tolerance"); v != "" {
		var err error
		if tolerance, err = decimal.NewFromString(v); err != nil {
			badRequest(w, "invalid tolerance: "+err.Error())
			return
		}
	}
	maxResults := 10
	if v := q.Get("max"); v != "" {
		var err error
		if maxResults, err = strconv.Atoi(v); err != nil {
			badRequest(w, "invalid max: "+err.Error())
			return
		}
	}

	suggestions, err := s.reconcile.SuggestMatches(r.Context(), chi.URLParam(r, "id"), tolerance, maxResults)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]suggestionResponse, 0, len(suggestions))
	for _, sg := range suggestions {
		resp = append(resp, suggestionResponse{
			PaymentID:        sg.PaymentID,
			Amount:           sg.Amount.StringFixed(2),
			AmountDifference: sg.AmountDifference.StringFixed(2),
			MatchScore:       sg.MatchScore,
			PaymentDate:      sg.PaymentDate.Format(apiDateFormat),
			ReferenceNumber:  sg.ReferenceNumber,
			CustomerName:     sg.CustomerName,
			InvoiceNumber:    sg.InvoiceNumber,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReconciledType string `json:"reconciled_type"`
		ReconciledID   string `json:"reconciled_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.ReconciledType == "" || req.ReconciledID == "" {
		badRequest(w, "reconciled_type and reconciled_id are required")
		return
	}

	if err := s.reconcile.Reconcile(r.Context(), chi.URLParam(r, "id"), req.ReconciledType, req.ReconciledID, actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}

func (s *Server) handleUnreconcile(w http.ResponseWriter, r *http.Request) {
	if err := s.reconcile.Unreconcile(r.Context(), chi.URLParam(r, "id"), actor(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unreconciled"})
}
