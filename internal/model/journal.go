package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus represents the lifecycle state of a journal entry.
// Transitions only move forward: draft -> posted -> reversed.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "draft"
	StatusPosted   EntryStatus = "posted"
	StatusReversed EntryStatus = "reversed"
)

// EntryType classifies how a journal entry originated.
type EntryType string

const (
	EntryTypeManual   EntryType = "manual"
	EntryTypeAutoPost EntryType = "auto_post"
	EntryTypeReversal EntryType = "reversal"
	EntryTypeOpening  EntryType = "opening"
	EntryTypeClosing  EntryType = "closing"
)

// Valid reports whether t is one of the five entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeManual, EntryTypeAutoPost, EntryTypeReversal, EntryTypeOpening, EntryTypeClosing:
		return true
	}
	return false
}

// JournalLine is one side of a double-entry. Exactly one of Debit/Credit is
// non-zero.
type JournalLine struct {
	AccountID   string
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Description string
}

// Amount returns the non-zero side of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if !l.Debit.IsZero() {
		return l.Debit
	}
	return l.Credit
}

// JournalEntry is a balanced set of journal lines. Once posted, the entry and
// its lines are permanent history; the only way to undo its effect is a
// reversal entry with every line's debit/credit swapped.
type JournalEntry struct {
	ID                string
	CompanyID         string
	JournalNumber     string // company-scoped, monotonic, assigned at draft creation
	JournalDate       time.Time
	Description       string
	EntryType         EntryType
	Status            EntryStatus
	FinancialYear     int
	PeriodMonth       int // 1-12, fiscal calendar
	SourceType        string
	SourceNumber      string
	IsReversed        bool
	ReversalOfEntryID string
	Lines             []JournalLine
	CreatedAt         time.Time
}

// TotalDebit sums the debit side of all lines.
func (e JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit side of all lines.
func (e JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}
