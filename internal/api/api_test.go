package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbook-dev/finbook/internal/accounts"
	"github.com/finbook-dev/finbook/internal/events"
	"github.com/finbook-dev/finbook/internal/ledger"
	"github.com/finbook-dev/finbook/internal/model"
	"github.com/finbook-dev/finbook/internal/reconcile"
	"github.com/finbook-dev/finbook/internal/reporting"
	"github.com/finbook-dev/finbook/internal/store"
)

const testCompany = "co-1"

type apiFixture struct {
	server  *httptest.Server
	store   *store.Store
	cash    model.Account
	revenue model.Account
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mk := func(code, name string, typ model.AccountType) model.Account {
		a := model.Account{
			ID:        uuid.NewString(),
			CompanyID: testCompany,
			Code:      code,
			Name:      name,
			Type:      typ,
			IsActive:  true,
		}
		require.NoError(t, s.InsertAccount(context.Background(), a))
		return a
	}

	registry := accounts.NewRegistry(s)
	bus := events.NewBus()
	fiscal, err := ledger.NewFiscalCalendar("01-01")
	require.NoError(t, err)

	srv := NewServer(
		ledger.NewService(s, registry, bus, fiscal),
		reporting.NewService(s, registry),
		reconcile.NewService(s, bus),
		testCompany,
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &apiFixture{
		server:  ts,
		store:   s,
		cash:    mk("1010", "Cash", model.AccountTypeAsset),
		revenue: mk("4010", "Sales Revenue", model.AccountTypeIncome),
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func draftBody(f *apiFixture, amount string) map[string]any {
	return map[string]any{
		"journal_date": "2025-03-10",
		"description":  "Cash sale",
		"lines": []map[string]any{
			{"account_id": f.cash.ID, "debit": amount},
			{"account_id": f.revenue.ID, "credit": amount},
		},
	}
}

func TestAPI_DraftLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/journal-entries", draftBody(f, "100.00"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "draft", body["status"])
	assert.Equal(t, "JV-2025-000001", body["journal_number"])
	entryID := body["id"].(string)

	resp, body = f.do(t, http.MethodPost, "/api/journal-entries/"+entryID+"/post", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "posted", body["status"])

	// Posting twice conflicts.
	resp, body = f.do(t, http.MethodPost, "/api/journal-entries/"+entryID+"/post", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not_draft", body["code"])

	// Posted entries cannot be discarded.
	resp, body = f.do(t, http.MethodDelete, "/api/journal-entries/"+entryID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not_draft", body["code"])
}

func TestAPI_UnbalancedDraftRejected(t *testing.T) {
	f := newAPIFixture(t)

	body := draftBody(f, "100.00")
	body["lines"].([]map[string]any)[1]["credit"] = "99.00"
	resp, decoded := f.do(t, http.MethodPost, "/api/journal-entries", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unbalanced_entry", decoded["code"])
}

func TestAPI_EntryTypeRestricted(t *testing.T) {
	f := newAPIFixture(t)

	// Unknown types and engine-assigned types are both rejected.
	for _, entryType := range []string{"banana", "reversal", "closing", "opening"} {
		body := draftBody(f, "100.00")
		body["entry_type"] = entryType
		resp, decoded := f.do(t, http.MethodPost, "/api/journal-entries", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, entryType)
		assert.Equal(t, "bad_request", decoded["code"], entryType)
	}

	body := draftBody(f, "100.00")
	body["entry_type"] = "auto_post"
	resp, decoded := f.do(t, http.MethodPost, "/api/journal-entries", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "auto_post", decoded["entry_type"])
}

func TestAPI_ListEntries(t *testing.T) {
	f := newAPIFixture(t)

	_, first := f.do(t, http.MethodPost, "/api/journal-entries", draftBody(f, "100.00"))
	f.do(t, http.MethodPost, "/api/journal-entries", draftBody(f, "200.00"))
	resp, _ := f.do(t, http.MethodPost, "/api/journal-entries/"+first["id"].(string)+"/post", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/journal-entries", nil)
	require.NoError(t, err)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var entries []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "JV-2025-000001", entries[0]["journal_number"])
	assert.Equal(t, "posted", entries[0]["status"])
	assert.Equal(t, "JV-2025-000002", entries[1]["journal_number"])
	assert.Equal(t, "draft", entries[1]["status"])
}

func TestAPI_GetEntryNotFound(t *testing.T) {
	f := newAPIFixture(t)
	resp, body := f.do(t, http.MethodGet, "/api/journal-entries/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["code"])
}

func TestAPI_ReverseFlow(t *testing.T) {
	f := newAPIFixture(t)

	_, body := f.do(t, http.MethodPost, "/api/journal-entries", draftBody(f, "250.00"))
	entryID := body["id"].(string)
	resp, _ := f.do(t, http.MethodPost, "/api/journal-entries/"+entryID+"/post", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/journal-entries/"+entryID+"/reverse", map[string]any{
		"reason":        "keying error",
		"reversal_date": "2025-03-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "posted", body["status"])
	assert.Equal(t, "reversal", body["entry_type"])
	assert.Equal(t, entryID, body["reversal_of_entry_id"])

	resp, body = f.do(t, http.MethodPost, "/api/journal-entries/"+entryID+"/reverse", map[string]any{
		"reason": "again",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_reversed", body["code"])
}

func TestAPI_ReverseWithoutBody(t *testing.T) {
	f := newAPIFixture(t)

	_, body := f.do(t, http.MethodPost, "/api/journal-entries", draftBody(f, "50.00"))
	entryID := body["id"].(string)
	resp, _ := f.do(t, http.MethodPost, "/api/journal-entries/"+entryID+"/post", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Both reason and reversal_date are optional; no body at all works.
	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/journal-entries/"+entryID+"/reverse", nil)
	require.NoError(t, err)
	reverseResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer reverseResp.Body.Close()
	require.Equal(t, http.StatusCreated, reverseResp.StatusCode)

	var reversal map[string]any
	require.NoError(t, json.NewDecoder(reverseResp.Body).Decode(&reversal))
	assert.Equal(t, "reversal", reversal["entry_type"])
	assert.Equal(t, entryID, reversal["reversal_of_entry_id"])
}

func TestAPI_AccountLedger(t *testing.T) {
	f := newAPIFixture(t)

	_, body := f.do(t, http.MethodPost, "/api/journal-entries", draftBody(f, "100.00"))
	entryID := body["id"].(string)
	resp, _ := f.do(t, http.MethodPost, "/api/journal-entries/"+entryID+"/post", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/api/accounts/"+f.cash.ID+"/ledger?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0.00", body["opening_balance"])
	assert.Equal(t, "100.00", body["closing_balance"])
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "100.00", entries[0].(map[string]any)["running_balance"])
}

func TestAPI_BalanceSheet(t *testing.T) {
	f := newAPIFixture(t)

	_, body := f.do(t, http.MethodPost, "/api/journal-entries", draftBody(f, "100.00"))
	entryID := body["id"].(string)
	resp, _ := f.do(t, http.MethodPost, "/api/journal-entries/"+entryID+"/post", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/api/balance-sheet?as_of=2025-12-31", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "100.00", body["total_assets"])
	// Income is unclosed, so the sheet reports the imbalance as data.
	assert.Equal(t, false, body["is_balanced"])
}

func TestAPI_ReconcileFlow(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	txn := model.BankTransaction{
		ID:              uuid.NewString(),
		CompanyID:       testCompany,
		BankAccountID:   "bank-1",
		TransactionDate: mustDate(t, "2025-05-10"),
		Amount:          mustDecimal(t, "5000.00"),
		Type:            model.TransactionCredit,
		ReferenceNumber: "REF123",
	}
	require.NoError(t, f.store.InsertBankTransaction(ctx, txn))
	payment := model.Payment{
		ID:              uuid.NewString(),
		CompanyID:       testCompany,
		Amount:          mustDecimal(t, "5000.00"),
		PaymentDate:     mustDate(t, "2025-05-10"),
		ReferenceNumber: "REF123",
	}
	require.NoError(t, f.store.InsertPayment(ctx, payment))

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/bank-transactions/"+txn.ID+"/suggestions?tolerance=10", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var suggestions []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, payment.ID, suggestions[0]["payment_id"])
	assert.Equal(t, 100.0, suggestions[0]["match_score"])

	resp2, body := f.do(t, http.MethodPost, "/api/bank-transactions/"+txn.ID+"/reconcile", map[string]any{
		"reconciled_type": "payment",
		"reconciled_id":   payment.ID,
	})
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, "reconciled", body["status"])

	resp2, body = f.do(t, http.MethodPost, "/api/bank-transactions/"+txn.ID+"/reconcile", map[string]any{
		"reconciled_type": "payment",
		"reconciled_id":   payment.ID,
	})
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
	assert.Equal(t, "already_reconciled", body["code"])

	resp2, body = f.do(t, http.MethodPost, "/api/bank-transactions/"+txn.ID+"/unreconcile", nil)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, "unreconciled", body["status"])

	resp2, body = f.do(t, http.MethodPost, "/api/bank-transactions/"+txn.ID+"/unreconcile", nil)
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
	assert.Equal(t, "not_reconciled", body["code"])
}

func TestAPI_ReconcileMissingFields(t *testing.T) {
	f := newAPIFixture(t)
	resp, body := f.do(t, http.MethodPost, "/api/bank-transactions/t1/reconcile", map[string]any{
		"reconciled_type": "payment",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_request", body["code"])
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestAPI_Health(t *testing.T) {
	f := newAPIFixture(t)
	resp, body := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
