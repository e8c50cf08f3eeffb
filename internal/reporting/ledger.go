// Package reporting derives balances by replaying posted journal lines.
// Nothing here is cached or stored; every balance is a pure function of the
// ledger of record and a date range.
package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/model"
	"github.com/finbook-dev/finbook/internal/store"
)

// AccountGetter resolves accounts from the registry.
type AccountGetter interface {
	Get(ctx context.Context, accountID string) (model.Account, error)
	All(ctx context.Context, companyID string) ([]model.Account, error)
}

// Service computes ledger positions and balance sheets.
type Service struct {
	store    *store.Store
	accounts AccountGetter
}

// NewService creates a reporting Service.
func NewService(s *store.Store, accounts AccountGetter) *Service {
	return &Service{store: s, accounts: accounts}
}

// LedgerEntry is one replayed line annotated with the balance after it.
type LedgerEntry struct {
	EntryID          string
	JournalNumber    string
	JournalDate      time.Time
	EntryDescription string
	LineDescription  string
	Debit            decimal.Decimal
	Credit           decimal.Decimal
	RunningBalance   decimal.Decimal
}

// LedgerPosition is an account's ledger for a date range: opening balance,
// replayed lines with running balances, and the closing balance.
type LedgerPosition struct {
	Account        model.Account
	FromDate       time.Time
	ToDate         time.Time
	OpeningBalance decimal.Decimal
	Entries        []LedgerEntry
	ClosingBalance decimal.Decimal
}

// AccountLedger computes an account's position over [from, to].
//
// The opening balance is the signed sum of all ledger-visible lines dated
// before from. Lines inside the range replay in (journalDate, journalNumber)
// order, so same-day entries accumulate in creation order and the running
// balance is reproducible. Closing balances compose: the closing balance of
// [a, b] equals the opening balance of [b+1, c].
func (s *Service) AccountLedger(ctx context.Context, accountID string, from, to time.Time) (LedgerPosition, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return LedgerPosition{}, err
	}

	opening := decimal.Zero
	if !from.IsZero() {
		before, err := s.store.LedgerLines(ctx, accountID, time.Time{}, from.AddDate(0, 0, -1))
		if err != nil {
			return LedgerPosition{}, err
		}
		for _, l := range before {
			opening = opening.Add(signed(account.Type, l.Debit, l.Credit))
		}
	}

	lines, err := s.store.LedgerLines(ctx, accountID, from, to)
	if err != nil {
		return LedgerPosition{}, err
	}

	position := LedgerPosition{
		Account:        account,
		FromDate:       from,
		ToDate:         to,
		OpeningBalance: opening,
		ClosingBalance: opening,
	}
	running := opening
	for _, l := range lines {
		running = running.Add(signed(account.Type, l.Debit, l.Credit))
		position.Entries = append(position.Entries, LedgerEntry{
			EntryID:          l.EntryID,
			JournalNumber:    l.JournalNumber,
			JournalDate:      l.JournalDate,
			EntryDescription: l.EntryDescription,
			LineDescription:  l.LineDescription,
			Debit:            l.Debit,
			Credit:           l.Credit,
			RunningBalance:   running,
		})
	}
	position.ClosingBalance = running
	return position, nil
}

// signed converts one line's debit/credit into a balance delta for the
// account's normal side.
func signed(t model.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if t.NormalSide() == model.SideDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
