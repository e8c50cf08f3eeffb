package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/id"
	"github.com/finbook-dev/finbook/internal/model"
)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CreateEntry inserts a draft entry and its lines, assigning the next
// company-scoped journal number. The number is consumed even if the draft is
// later discarded; numbers are never reused.
func (s *Store) CreateEntry(ctx context.Context, e *model.JournalEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		number, err := nextJournalNumber(ctx, tx, e.CompanyID, e.FinancialYear)
		if err != nil {
			return err
		}
		e.JournalNumber = number
		return insertEntry(ctx, tx, *e)
	})
}

// GetEntry retrieves an entry and its lines by ID.
func (s *Store) GetEntry(ctx context.Context, entryID string) (model.JournalEntry, error) {
	return getEntry(ctx, s.db, entryID)
}

// ListEntries returns a company's entries ordered by journal number, lines
// included.
func (s *Store) ListEntries(ctx context.Context, companyID string) ([]model.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM journal_entries WHERE company_id = ? ORDER BY journal_number
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var entryID string
		if err := rows.Scan(&entryID); err != nil {
			return nil, err
		}
		ids = append(ids, entryID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]model.JournalEntry, 0, len(ids))
	for _, entryID := range ids {
		e, err := getEntry(ctx, s.db, entryID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// UpdateDraftLines replaces the lines of a draft entry. Fails with NotDraft
// once the entry has been posted.
func (s *Store) UpdateDraftLines(ctx context.Context, entryID string, lines []model.JournalLine) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if e.Status != model.StatusDraft {
			return model.ErrNotDraft
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM journal_lines WHERE entry_id = ?`, entryID); err != nil {
			return fmt.Errorf("clearing draft lines: %w", err)
		}
		return insertLines(ctx, tx, entryID, lines)
	})
}

// PostEntry transitions a draft entry to posted. The validate callback runs
// inside the transaction against the stored lines, so edits racing with the
// post cannot slip past validation. Concurrent posts of the same draft are
// first-writer-wins; the loser gets NotDraft. The audit row commits in the
// same transaction as the status change.
func (s *Store) PostEntry(ctx context.Context, entryID, actor string, validate func(model.JournalEntry) error) (model.JournalEntry, error) {
	var posted model.JournalEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if e.Status != model.StatusDraft {
			return model.ErrNotDraft
		}
		if err := validate(e); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE journal_entries SET status = ? WHERE id = ? AND status = ?
		`, string(model.StatusPosted), entryID, string(model.StatusDraft))
		if err != nil {
			return fmt.Errorf("posting entry %s: %w", entryID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return model.ErrNotDraft
		}
		if err := appendAudit(ctx, tx, AuditEntry{
			Actor:      actor,
			Action:     "posted",
			EntityType: "journal_entry",
			EntityID:   entryID,
			Details:    e.JournalNumber,
		}); err != nil {
			return err
		}
		e.Status = model.StatusPosted
		posted = e
		return nil
	})
	return posted, err
}

// ReverseEntry atomically marks the original entry reversed, inserts the
// offsetting entry built by the build callback (posting it immediately) and
// appends the audit row, all in one transaction. Returns the stored reversal.
func (s *Store) ReverseEntry(ctx context.Context, originalID, actor, reason string, build func(original model.JournalEntry) (model.JournalEntry, error)) (model.JournalEntry, error) {
	var reversal model.JournalEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		original, err := getEntry(ctx, tx, originalID)
		if err != nil {
			return err
		}
		if original.IsReversed || original.Status == model.StatusReversed {
			return model.ErrAlreadyReversed
		}
		if original.Status != model.StatusPosted {
			return model.ErrNotPosted
		}

		reversal, err = build(original)
		if err != nil {
			return err
		}
		reversal.JournalNumber, err = nextJournalNumber(ctx, tx, reversal.CompanyID, reversal.FinancialYear)
		if err != nil {
			return err
		}
		if err := insertEntry(ctx, tx, reversal); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE journal_entries SET status = ?, is_reversed = 1 WHERE id = ? AND status = ?
		`, string(model.StatusReversed), originalID, string(model.StatusPosted))
		if err != nil {
			return fmt.Errorf("marking entry %s reversed: %w", originalID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return model.ErrNotPosted
		}
		return appendAudit(ctx, tx, AuditEntry{
			Actor:      actor,
			Action:     "reversed",
			EntityType: "journal_entry",
			EntityID:   originalID,
			Details:    reason,
		})
	})
	return reversal, err
}

// DiscardDraft deletes a draft entry without side effects. Posted and
// reversed entries are permanent history and cannot be discarded.
func (s *Store) DiscardDraft(ctx context.Context, entryID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if e.Status != model.StatusDraft {
			return model.ErrNotDraft
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, entryID)
		return err
	})
}

// LedgerLine is one ledger-visible journal line annotated with its entry's
// date and number, the unit of balance replay.
type LedgerLine struct {
	EntryID          string
	JournalNumber    string
	JournalDate      time.Time
	EntryDescription string
	LineDescription  string
	Debit            decimal.Decimal
	Credit           decimal.Decimal
}

// LedgerLines returns the ledger-visible (posted or reversed, never draft)
// lines for an account, ordered by journal date then journal number. Zero
// from/to bounds are open-ended.
func (s *Store) LedgerLines(ctx context.Context, accountID string, from, to time.Time) ([]LedgerLine, error) {
	query := `
		SELECT je.id, je.journal_number, je.journal_date, je.description, jl.description, jl.debit, jl.credit
		FROM journal_lines jl
		JOIN journal_entries je ON je.id = jl.entry_id
		WHERE jl.account_id = ? AND je.status != ?`
	args := []any{accountID, string(model.StatusDraft)}

	if !from.IsZero() {
		query += ` AND je.journal_date >= ?`
		args = append(args, from.Format(dateFormat))
	}
	if !to.IsZero() {
		query += ` AND je.journal_date <= ?`
		args = append(args, to.Format(dateFormat))
	}
	query += ` ORDER BY je.journal_date, je.journal_number, jl.line_no`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger lines: %w", err)
	}
	defer rows.Close()

	var lines []LedgerLine
	for rows.Next() {
		var l LedgerLine
		var date, debit, credit string
		if err := rows.Scan(&l.EntryID, &l.JournalNumber, &date, &l.EntryDescription, &l.LineDescription, &debit, &credit); err != nil {
			return nil, fmt.Errorf("scanning ledger line: %w", err)
		}
		if l.JournalDate, err = time.Parse(dateFormat, date); err != nil {
			return nil, fmt.Errorf("parsing journal date %q: %w", date, err)
		}
		if l.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("parsing debit %q: %w", debit, err)
		}
		if l.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("parsing credit %q: %w", credit, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func nextJournalNumber(ctx context.Context, tx *sql.Tx, companyID string, financialYear int) (string, error) {
	var seq int
	err := tx.QueryRowContext(ctx, `SELECT next_seq FROM journal_sequences WHERE company_id = ?`, companyID).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		seq = 1
		if _, err := tx.ExecContext(ctx, `INSERT INTO journal_sequences (company_id, next_seq) VALUES (?, 2)`, companyID); err != nil {
			return "", fmt.Errorf("initializing journal sequence: %w", err)
		}
		return id.FormatJournalNumber(financialYear, seq), nil
	}
	if err != nil {
		return "", fmt.Errorf("reading journal sequence: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE journal_sequences SET next_seq = next_seq + 1 WHERE company_id = ?`, companyID); err != nil {
		return "", fmt.Errorf("advancing journal sequence: %w", err)
	}
	return id.FormatJournalNumber(financialYear, seq), nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, e model.JournalEntry) error {
	var reversalOf any
	if e.ReversalOfEntryID != "" {
		reversalOf = e.ReversalOfEntryID
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO journal_entries
			(id, company_id, journal_number, journal_date, description, entry_type, status,
			 financial_year, period_month, source_type, source_number, is_reversed, reversal_of_entry_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.CompanyID, e.JournalNumber, e.JournalDate.Format(dateFormat), e.Description,
		string(e.EntryType), string(e.Status), e.FinancialYear, e.PeriodMonth,
		e.SourceType, e.SourceNumber, boolInt(e.IsReversed), reversalOf)
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.JournalNumber, err)
	}
	return insertLines(ctx, tx, e.ID, e.Lines)
}

func insertLines(ctx context.Context, tx *sql.Tx, entryID string, lines []model.JournalLine) error {
	for i, l := range lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO journal_lines (entry_id, line_no, account_id, debit, credit, description)
			VALUES (?, ?, ?, ?, ?, ?)
		`, entryID, i+1, l.AccountID, l.Debit.String(), l.Credit.String(), l.Description)
		if err != nil {
			return fmt.Errorf("inserting line %d: %w", i+1, err)
		}
	}
	return nil
}

func getEntry(ctx context.Context, q querier, entryID string) (model.JournalEntry, error) {
	var e model.JournalEntry
	var date, createdAt, entryType, status string
	var isReversed int
	var reversalOf sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, company_id, journal_number, journal_date, description, entry_type, status,
		       financial_year, period_month, source_type, source_number, is_reversed,
		       reversal_of_entry_id, created_at
		FROM journal_entries WHERE id = ?
	`, entryID).Scan(&e.ID, &e.CompanyID, &e.JournalNumber, &date, &e.Description, &entryType,
		&status, &e.FinancialYear, &e.PeriodMonth, &e.SourceType, &e.SourceNumber,
		&isReversed, &reversalOf, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.JournalEntry{}, model.ErrEntryNotFound
	}
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("scanning entry %s: %w", entryID, err)
	}

	e.EntryType = model.EntryType(entryType)
	e.Status = model.EntryStatus(status)
	e.IsReversed = isReversed == 1
	e.ReversalOfEntryID = reversalOf.String
	if e.JournalDate, err = time.Parse(dateFormat, date); err != nil {
		return model.JournalEntry{}, fmt.Errorf("parsing journal date %q: %w", date, err)
	}
	if e.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAt); err != nil {
		// datetime('now') format; tolerate RFC3339 written by tests.
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return model.JournalEntry{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
	}

	rows, err := q.QueryContext(ctx, `
		SELECT account_id, debit, credit, description
		FROM journal_lines WHERE entry_id = ? ORDER BY line_no
	`, entryID)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("querying lines for %s: %w", entryID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.JournalLine
		var debit, credit string
		if err := rows.Scan(&l.AccountID, &debit, &credit, &l.Description); err != nil {
			return model.JournalEntry{}, fmt.Errorf("scanning line: %w", err)
		}
		if l.Debit, err = decimal.NewFromString(debit); err != nil {
			return model.JournalEntry{}, fmt.Errorf("parsing debit %q: %w", debit, err)
		}
		if l.Credit, err = decimal.NewFromString(credit); err != nil {
			return model.JournalEntry{}, fmt.Errorf("parsing credit %q: %w", credit, err)
		}
		e.Lines = append(e.Lines, l)
	}
	return e, rows.Err()
}
