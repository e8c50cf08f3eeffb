package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbook-dev/finbook/internal/model"
)

const testCompany = "co-1"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func seedAccount(t *testing.T, s *Store, code string, typ model.AccountType) model.Account {
	t.Helper()
	a := model.Account{
		ID:        uuid.NewString(),
		CompanyID: testCompany,
		Code:      code,
		Name:      "Account " + code,
		Type:      typ,
		IsActive:  true,
	}
	require.NoError(t, s.InsertAccount(context.Background(), a))
	return a
}

func draftEntry(cash, revenue string, amount string) *model.JournalEntry {
	return &model.JournalEntry{
		ID:            uuid.NewString(),
		CompanyID:     testCompany,
		JournalDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EntryType:     model.EntryTypeManual,
		Status:        model.StatusDraft,
		FinancialYear: 2025,
		PeriodMonth:   3,
		Lines: []model.JournalLine{
			{AccountID: cash, Debit: dec(amount)},
			{AccountID: revenue, Credit: dec(amount)},
		},
	}
}

func TestJournalNumbers_MonotonicPerCompany(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cash := seedAccount(t, s, "1010", model.AccountTypeAsset)
	revenue := seedAccount(t, s, "4010", model.AccountTypeIncome)

	first := draftEntry(cash.ID, revenue.ID, "100.00")
	require.NoError(t, s.CreateEntry(ctx, first))
	assert.Equal(t, "JV-2025-000001", first.JournalNumber)

	second := draftEntry(cash.ID, revenue.ID, "200.00")
	require.NoError(t, s.CreateEntry(ctx, second))
	assert.Equal(t, "JV-2025-000002", second.JournalNumber)

	// Another company runs its own sequence.
	other := draftEntry(cash.ID, revenue.ID, "50.00")
	other.CompanyID = "co-2"
	require.NoError(t, s.CreateEntry(ctx, other))
	assert.Equal(t, "JV-2025-000001", other.JournalNumber)
}

func TestDiscardDraft_NumberConsumed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cash := seedAccount(t, s, "1010", model.AccountTypeAsset)
	revenue := seedAccount(t, s, "4010", model.AccountTypeIncome)

	first := draftEntry(cash.ID, revenue.ID, "100.00")
	require.NoError(t, s.CreateEntry(ctx, first))
	require.NoError(t, s.DiscardDraft(ctx, first.ID))

	_, err := s.GetEntry(ctx, first.ID)
	assert.ErrorIs(t, err, model.ErrEntryNotFound)

	// The discarded number is gone for good.
	next := draftEntry(cash.ID, revenue.ID, "200.00")
	require.NoError(t, s.CreateEntry(ctx, next))
	assert.Equal(t, "JV-2025-000002", next.JournalNumber)
}

func TestPostEntry_ValidateSeesStoredLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cash := seedAccount(t, s, "1010", model.AccountTypeAsset)
	revenue := seedAccount(t, s, "4010", model.AccountTypeIncome)

	e := draftEntry(cash.ID, revenue.ID, "100.00")
	require.NoError(t, s.CreateEntry(ctx, e))

	var seen model.JournalEntry
	_, err := s.PostEntry(ctx, e.ID, "tester", func(stored model.JournalEntry) error {
		seen = stored
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen.Lines, 2)
	assert.True(t, seen.Lines[0].Debit.Equal(dec("100.00")))
}

func TestPostEntry_SecondPostLoses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cash := seedAccount(t, s, "1010", model.AccountTypeAsset)
	revenue := seedAccount(t, s, "4010", model.AccountTypeIncome)

	e := draftEntry(cash.ID, revenue.ID, "100.00")
	require.NoError(t, s.CreateEntry(ctx, e))

	noop := func(model.JournalEntry) error { return nil }
	_, err := s.PostEntry(ctx, e.ID, "tester", noop)
	require.NoError(t, err)
	_, err = s.PostEntry(ctx, e.ID, "tester", noop)
	assert.ErrorIs(t, err, model.ErrNotDraft)
}

func TestUpdateDraftLines_PostedRefused(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cash := seedAccount(t, s, "1010", model.AccountTypeAsset)
	revenue := seedAccount(t, s, "4010", model.AccountTypeIncome)

	e := draftEntry(cash.ID, revenue.ID, "100.00")
	require.NoError(t, s.CreateEntry(ctx, e))
	_, err := s.PostEntry(ctx, e.ID, "tester", func(model.JournalEntry) error { return nil })
	require.NoError(t, err)

	err = s.UpdateDraftLines(ctx, e.ID, e.Lines)
	assert.ErrorIs(t, err, model.ErrNotDraft)
}

func TestLedgerLines_ExcludeDraftsIncludeReversed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cash := seedAccount(t, s, "1010", model.AccountTypeAsset)
	revenue := seedAccount(t, s, "4010", model.AccountTypeIncome)

	posted := draftEntry(cash.ID, revenue.ID, "100.00")
	require.NoError(t, s.CreateEntry(ctx, posted))
	_, err := s.PostEntry(ctx, posted.ID, "tester", func(model.JournalEntry) error { return nil })
	require.NoError(t, err)

	stillDraft := draftEntry(cash.ID, revenue.ID, "999.00")
	require.NoError(t, s.CreateEntry(ctx, stillDraft))

	_, err = s.ReverseEntry(ctx, posted.ID, "tester", "", func(original model.JournalEntry) (model.JournalEntry, error) {
		rev := original
		rev.ID = uuid.NewString()
		rev.EntryType = model.EntryTypeReversal
		rev.Status = model.StatusPosted
		rev.ReversalOfEntryID = original.ID
		rev.IsReversed = false
		rev.Lines = []model.JournalLine{
			{AccountID: cash.ID, Credit: dec("100.00")},
			{AccountID: revenue.ID, Debit: dec("100.00")},
		}
		return rev, nil
	})
	require.NoError(t, err)

	lines, err := s.LedgerLines(ctx, cash.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	// Original (now reversed) and its reversal are both visible; the draft is
	// not.
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Debit.Equal(dec("100.00")))
	assert.True(t, lines[1].Credit.Equal(dec("100.00")))
}

func TestReverseEntry_GuardOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cash := seedAccount(t, s, "1010", model.AccountTypeAsset)
	revenue := seedAccount(t, s, "4010", model.AccountTypeIncome)

	e := draftEntry(cash.ID, revenue.ID, "100.00")
	require.NoError(t, s.CreateEntry(ctx, e))

	build := func(original model.JournalEntry) (model.JournalEntry, error) {
		rev := original
		rev.ID = uuid.NewString()
		rev.Status = model.StatusPosted
		rev.IsReversed = false
		rev.ReversalOfEntryID = original.ID
		return rev, nil
	}

	// Draft cannot be reversed.
	_, err := s.ReverseEntry(ctx, e.ID, "tester", "", build)
	assert.ErrorIs(t, err, model.ErrNotPosted)

	_, err = s.PostEntry(ctx, e.ID, "tester", func(model.JournalEntry) error { return nil })
	require.NoError(t, err)
	_, err = s.ReverseEntry(ctx, e.ID, "tester", "", build)
	require.NoError(t, err)

	// A second reversal reports the prior reversal, not a status mismatch.
	_, err = s.ReverseEntry(ctx, e.ID, "tester", "", build)
	assert.ErrorIs(t, err, model.ErrAlreadyReversed)
}

func TestReconcileTransaction_FirstWriterWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	txn := model.BankTransaction{
		ID:              uuid.NewString(),
		CompanyID:       testCompany,
		BankAccountID:   "bank-1",
		TransactionDate: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		Amount:          dec("5000.00"),
		Type:            model.TransactionCredit,
	}
	require.NoError(t, s.InsertBankTransaction(ctx, txn))

	require.NoError(t, s.ReconcileTransaction(ctx, txn.ID, "payment", "p1", "user1"))
	err := s.ReconcileTransaction(ctx, txn.ID, "payment", "p2", "user2")
	assert.ErrorIs(t, err, model.ErrAlreadyReconciled)

	// The winner's link is intact.
	got, err := s.GetBankTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ReconciledID)
	assert.Equal(t, "user1", got.ReconciledBy)
}

func TestUnreconcileTransaction_Missing(t *testing.T) {
	s := newTestStore(t)
	err := s.UnreconcileTransaction(context.Background(), "missing", "user1")
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
}

func TestSetAccountActive_Unknown(t *testing.T) {
	s := newTestStore(t)
	err := s.SetAccountActive(context.Background(), "missing", false)
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}

func TestAuditTrail_AppendAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendAudit(ctx, AuditEntry{
		Actor: "user1", Action: "posted", EntityType: "journal_entry", EntityID: "e1",
	}))
	require.NoError(t, s.AppendAudit(ctx, AuditEntry{
		Actor: "user2", Action: "reversed", EntityType: "journal_entry", EntityID: "e1", Details: "keying error",
	}))
	require.NoError(t, s.AppendAudit(ctx, AuditEntry{
		Actor: "user1", Action: "reconciled", EntityType: "bank_transaction", EntityID: "t1",
	}))

	trail, err := s.AuditTrail(ctx, "journal_entry", "e1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "posted", trail[0].Action)
	assert.Equal(t, "reversed", trail[1].Action)
	assert.Equal(t, "keying error", trail[1].Details)
	assert.False(t, trail[0].Timestamp.IsZero())
	assert.Less(t, trail[0].ID, trail[1].ID)
}
