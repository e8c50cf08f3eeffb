// Package ledger is the journal posting engine: draft -> posted -> reversed,
// with the balanced-entry invariant enforced at creation and again inside the
// posting transaction.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/events"
	"github.com/finbook-dev/finbook/internal/model"
	"github.com/finbook-dev/finbook/internal/store"
)

// Service provides the journal posting operations.
type Service struct {
	store    *store.Store
	accounts AccountLookup
	bus      *events.Bus
	fiscal   FiscalCalendar
}

// NewService creates a posting Service.
func NewService(s *store.Store, accounts AccountLookup, bus *events.Bus, fiscal FiscalCalendar) *Service {
	return &Service{store: s, accounts: accounts, bus: bus, fiscal: fiscal}
}

// DraftParams holds the inputs for a new draft entry.
type DraftParams struct {
	CompanyID    string
	JournalDate  time.Time
	Description  string
	EntryType    model.EntryType
	SourceType   string
	SourceNumber string
	Lines        []model.JournalLine
}

// CreateDraft validates and stores a draft entry, assigning its journal
// number. The number is consumed permanently even if the draft is discarded.
func (s *Service) CreateDraft(ctx context.Context, p DraftParams) (model.JournalEntry, error) {
	if err := ValidateLines(ctx, p.Lines, s.accounts); err != nil {
		return model.JournalEntry{}, err
	}

	entryType := p.EntryType
	if entryType == "" {
		entryType = model.EntryTypeManual
	}
	if !entryType.Valid() {
		return model.JournalEntry{}, fmt.Errorf("%w: %q", model.ErrInvalidEntryType, entryType)
	}
	year, period := s.fiscal.YearAndPeriod(p.JournalDate)

	e := model.JournalEntry{
		ID:            uuid.NewString(),
		CompanyID:     p.CompanyID,
		JournalDate:   p.JournalDate,
		Description:   p.Description,
		EntryType:     entryType,
		Status:        model.StatusDraft,
		FinancialYear: year,
		PeriodMonth:   period,
		SourceType:    p.SourceType,
		SourceNumber:  p.SourceNumber,
		Lines:         p.Lines,
	}
	if err := s.store.CreateEntry(ctx, &e); err != nil {
		return model.JournalEntry{}, err
	}
	return e, nil
}

// UpdateDraft replaces a draft's lines after re-validation.
func (s *Service) UpdateDraft(ctx context.Context, entryID string, lines []model.JournalLine) error {
	if err := ValidateLines(ctx, lines, s.accounts); err != nil {
		return err
	}
	return s.store.UpdateDraftLines(ctx, entryID, lines)
}

// Get returns an entry with its lines.
func (s *Service) Get(ctx context.Context, entryID string) (model.JournalEntry, error) {
	return s.store.GetEntry(ctx, entryID)
}

// List returns a company's entries in journal-number order.
func (s *Service) List(ctx context.Context, companyID string) ([]model.JournalEntry, error) {
	return s.store.ListEntries(ctx, companyID)
}

// Post transitions a draft to posted. Lines are re-validated inside the
// posting transaction since drafts may have been edited. On success the entry
// becomes visible to balance replay and a JournalPosted event fires.
func (s *Service) Post(ctx context.Context, entryID, actor string) (model.JournalEntry, error) {
	posted, err := s.store.PostEntry(ctx, entryID, actor, func(e model.JournalEntry) error {
		return ValidateLines(ctx, e.Lines, s.accounts)
	})
	if err != nil {
		return model.JournalEntry{}, err
	}

	s.bus.Publish(events.JournalPosted{
		EntryID:       posted.ID,
		CompanyID:     posted.CompanyID,
		JournalNumber: posted.JournalNumber,
		JournalDate:   posted.JournalDate,
		TotalDebit:    posted.TotalDebit(),
	})
	return posted, nil
}

// Reverse creates and immediately posts an offsetting entry with every line's
// debit/credit swapped, then marks the original reversed. The reversal is
// dated reversalDate so the original period's figures stay historically
// accurate.
func (s *Service) Reverse(ctx context.Context, entryID, reason, actor string, reversalDate time.Time) (model.JournalEntry, error) {
	reversal, err := s.store.ReverseEntry(ctx, entryID, actor, reason, func(original model.JournalEntry) (model.JournalEntry, error) {
		lines := make([]model.JournalLine, len(original.Lines))
		for i, l := range original.Lines {
			lines[i] = model.JournalLine{
				AccountID:   l.AccountID,
				Debit:       l.Credit,
				Credit:      l.Debit,
				Description: l.Description,
			}
		}

		year, period := s.fiscal.YearAndPeriod(reversalDate)
		description := "Reversal of " + original.JournalNumber
		if reason != "" {
			description += ": " + reason
		}
		return model.JournalEntry{
			ID:                uuid.NewString(),
			CompanyID:         original.CompanyID,
			JournalDate:       reversalDate,
			Description:       description,
			EntryType:         model.EntryTypeReversal,
			Status:            model.StatusPosted,
			FinancialYear:     year,
			PeriodMonth:       period,
			SourceType:        original.SourceType,
			SourceNumber:      original.SourceNumber,
			ReversalOfEntryID: original.ID,
			Lines:             lines,
		}, nil
	})
	if err != nil {
		return model.JournalEntry{}, err
	}

	s.bus.Publish(events.JournalReversed{
		EntryID:         entryID,
		ReversalEntryID: reversal.ID,
		CompanyID:       reversal.CompanyID,
		Reason:          reason,
	})
	return reversal, nil
}

// Discard deletes a draft without side effects. Its journal number is not
// reused.
func (s *Service) Discard(ctx context.Context, entryID string) error {
	return s.store.DiscardDraft(ctx, entryID)
}

// CloseFiscalYear books the closing entry for a financial year: every income
// and expense account is zeroed out as of the year-end date and the net
// result lands in the retained-earnings account. The entry posts immediately.
func (s *Service) CloseFiscalYear(ctx context.Context, companyID string, year int, retainedEarningsID, actor string) (model.JournalEntry, error) {
	yearEnd := s.fiscal.YearEnd(year)

	all, err := s.store.AccountsByCompany(ctx, companyID)
	if err != nil {
		return model.JournalEntry{}, err
	}

	var lines []model.JournalLine
	net := decimal.Zero // credit-normal: income minus expense
	for _, a := range all {
		if a.Type != model.AccountTypeIncome && a.Type != model.AccountTypeExpense {
			continue
		}
		balance, err := s.accountBalance(ctx, a, yearEnd)
		if err != nil {
			return model.JournalEntry{}, err
		}
		if balance.IsZero() {
			continue
		}

		line := model.JournalLine{AccountID: a.ID, Description: "Year-end close " + a.Name}
		if a.Type == model.AccountTypeIncome {
			// Credit-normal: a positive balance closes with a debit.
			if balance.IsPositive() {
				line.Debit = balance
			} else {
				line.Credit = balance.Neg()
			}
			net = net.Add(balance)
		} else {
			// Debit-normal: a positive balance closes with a credit.
			if balance.IsPositive() {
				line.Credit = balance
			} else {
				line.Debit = balance.Neg()
			}
			net = net.Sub(balance)
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return model.JournalEntry{}, fmt.Errorf("no income or expense balances to close for FY %d", year)
	}

	// Balance the entry against retained earnings: profit credits equity.
	reLine := model.JournalLine{AccountID: retainedEarningsID, Description: fmt.Sprintf("FY %d net result", year)}
	if net.IsPositive() {
		reLine.Credit = net
	} else {
		reLine.Debit = net.Neg()
	}
	if !net.IsZero() {
		lines = append(lines, reLine)
	}

	draft, err := s.CreateDraft(ctx, DraftParams{
		CompanyID:   companyID,
		JournalDate: yearEnd,
		Description: fmt.Sprintf("Closing entry FY %d", year),
		EntryType:   model.EntryTypeClosing,
		Lines:       lines,
	})
	if err != nil {
		return model.JournalEntry{}, err
	}
	return s.Post(ctx, draft.ID, actor)
}

// accountBalance replays all ledger-visible lines for an account up to and
// including asOf, sign-adjusted by the account's normal side.
func (s *Service) accountBalance(ctx context.Context, a model.Account, asOf time.Time) (decimal.Decimal, error) {
	lines, err := s.store.LedgerLines(ctx, a.ID, time.Time{}, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, l := range lines {
		if a.Type.NormalSide() == model.SideDebit {
			balance = balance.Add(l.Debit).Sub(l.Credit)
		} else {
			balance = balance.Add(l.Credit).Sub(l.Debit)
		}
	}
	return balance, nil
}
