package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type ledgerEntryResponse struct {
	EntryID          string `json:"entry_id"`
	JournalNumber    string `json:"journal_number"`
	JournalDate      string `json:"journal_date"`
	EntryDescription string `json:"entry_description,omitempty"`
	LineDescription  string `json:"line_description,omitempty"`
	Debit            string `json:"debit"`
	Credit           string `json:"credit"`
	RunningBalance   string `json:"running_balance"`
}

type ledgerResponse struct {
	AccountID      string                `json:"account_id"`
	AccountCode    string                `json:"account_code"`
	AccountName    string                `json:"account_name"`
	FromDate       string                `json:"from_date,omitempty"`
	ToDate         string                `json:"to_date,omitempty"`
	OpeningBalance string                `json:"opening_balance"`
	Entries        []ledgerEntryResponse `json:"entries"`
	ClosingBalance string                `json:"closing_balance"`
}

func (s *Server) handleAccountLedger(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	position, err := s.reporting.AccountLedger(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ledgerResponse{
		AccountID:      position.Account.ID,
		AccountCode:    position.Account.Code,
		AccountName:    position.Account.Name,
		OpeningBalance: position.OpeningBalance.StringFixed(2),
		ClosingBalance: position.ClosingBalance.StringFixed(2),
	}
	if !from.IsZero() {
		resp.FromDate = from.Format(apiDateFormat)
	}
	if !to.IsZero() {
		resp.ToDate = to.Format(apiDateFormat)
	}
	for _, e := range position.Entries {
		resp.Entries = append(resp.Entries, ledgerEntryResponse{
			EntryID:          e.EntryID,
			JournalNumber:    e.JournalNumber,
			JournalDate:      e.JournalDate.Format(apiDateFormat),
			EntryDescription: e.EntryDescription,
			LineDescription:  e.LineDescription,
			Debit:            e.Debit.StringFixed(2),
			Credit:           e.Credit.StringFixed(2),
			RunningBalance:   e.RunningBalance.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type balanceSheetRowResponse struct {
	AccountID   string `json:"account_id"`
	AccountCode string `json:"account_code"`
	AccountName string `json:"account_name"`
	Balance     string `json:"balance"`
}

type balanceSheetSectionResponse struct {
	Name  string                    `json:"name"`
	Type  string                    `json:"type"`
	Rows  []balanceSheetRowResponse `json:"rows"`
	Total string                    `json:"total"`
}

type balanceSheetResponse struct {
	AsOfDate         string                        `json:"as_of_date"`
	Sections         []balanceSheetSectionResponse `json:"sections"`
	TotalAssets      string                        `json:"total_assets"`
	TotalLiabilities string                        `json:"total_liabilities"`
	TotalEquity      string                        `json:"total_equity"`
	IsBalanced       bool                          `json:"is_balanced"`
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOfParam := r.URL.Query().Get("as_of")
	asOf := time.Now().UTC()
	if asOfParam != "" {
		var err error
		if asOf, err = time.Parse(apiDateFormat, asOfParam); err != nil {
			badRequest(w, "invalid as_of: "+err.Error())
			return
		}
	}

	sheet, err := s.reporting.GetBalanceSheet(r.Context(), s.companyID, asOf, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := balanceSheetResponse{
		AsOfDate:         sheet.AsOfDate.Format(apiDateFormat),
		TotalAssets:      sheet.TotalAssets.StringFixed(2),
		TotalLiabilities: sheet.TotalLiabilities.StringFixed(2),
		TotalEquity:      sheet.TotalEquity.StringFixed(2),
		IsBalanced:       sheet.IsBalanced,
	}
	for _, sec := range sheet.Sections {
		secResp := balanceSheetSectionResponse{
			Name:  sec.Name,
			Type:  string(sec.Type),
			Total: sec.Total.StringFixed(2),
		}
		for _, row := range sec.Rows {
			secResp.Rows = append(secResp.Rows, balanceSheetRowResponse{
				AccountID:   row.AccountID,
				AccountCode: row.AccountCode,
				AccountName: row.AccountName,
				Balance:     row.Balance.StringFixed(2),
			})
		}
		resp.Sections = append(resp.Sections, secResp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseDateRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	q := r.URL.Query()
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = time.Parse(apiDateFormat, v); err != nil {
			badRequest(w, "invalid from: "+err.Error())
			return from, to, false
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = time.Parse(apiDateFormat, v); err != nil {
			badRequest(w, "invalid to: "+err.Error())
			return from, to, false
		}
	}
	return from, to, true
}
