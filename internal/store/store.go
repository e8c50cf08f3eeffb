// Package store is the durable ledger of record, backed by SQLite.
//
// Posting, reversal and reconciliation are the only mutating operations and
// run as single transactions with check-then-set status guards, so a
// half-written entry is never observable and the first writer wins.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path and applies
// schema migrations.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrations returns the schema statements. Each string is a single SQL
// statement (SQLite executes one at a time).
func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id         TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			code       TEXT NOT NULL,
			name       TEXT NOT NULL,
			type       TEXT NOT NULL,
			is_active  INTEGER NOT NULL DEFAULT 1,
			UNIQUE(company_id, code)
		)`,

		`CREATE TABLE IF NOT EXISTS journal_entries (
			id                   TEXT PRIMARY KEY,
			company_id           TEXT NOT NULL,
			journal_number       TEXT NOT NULL UNIQUE,
			journal_date         TEXT NOT NULL,
			description          TEXT NOT NULL DEFAULT '',
			entry_type           TEXT NOT NULL,
			status               TEXT NOT NULL,
			financial_year       INTEGER NOT NULL,
			period_month         INTEGER NOT NULL,
			source_type          TEXT NOT NULL DEFAULT '',
			source_number        TEXT NOT NULL DEFAULT '',
			is_reversed          INTEGER NOT NULL DEFAULT 0,
			reversal_of_entry_id TEXT,
			created_at           TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_company_date ON journal_entries(company_id, journal_date)`,

		`CREATE TABLE IF NOT EXISTS journal_lines (
			entry_id    TEXT NOT NULL REFERENCES journal_entries(id) ON DELETE CASCADE,
			line_no     INTEGER NOT NULL,
			account_id  TEXT NOT NULL REFERENCES accounts(id),
			debit       TEXT NOT NULL DEFAULT '0',
			credit      TEXT NOT NULL DEFAULT '0',
			description TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (entry_id, line_no)
		)`,
		// Range replay by account is the hot read path.
		`CREATE INDEX IF NOT EXISTS idx_lines_account ON journal_lines(account_id)`,

		`CREATE TABLE IF NOT EXISTS journal_sequences (
			company_id TEXT PRIMARY KEY,
			next_seq   INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS bank_transactions (
			id               TEXT PRIMARY KEY,
			company_id       TEXT NOT NULL,
			bank_account_id  TEXT NOT NULL,
			transaction_date TEXT NOT NULL,
			amount           TEXT NOT NULL,
			type             TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			reference_number TEXT NOT NULL DEFAULT '',
			cheque_number    TEXT NOT NULL DEFAULT '',
			is_reconciled    INTEGER NOT NULL DEFAULT 0,
			reconciled_type  TEXT NOT NULL DEFAULT '',
			reconciled_id    TEXT NOT NULL DEFAULT '',
			reconciled_by    TEXT NOT NULL DEFAULT '',
			reconciled_at    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bank_txns_company ON bank_transactions(company_id, is_reconciled)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id               TEXT PRIMARY KEY,
			company_id       TEXT NOT NULL,
			amount           TEXT NOT NULL,
			payment_date     TEXT NOT NULL,
			reference_number TEXT NOT NULL DEFAULT '',
			customer_name    TEXT NOT NULL DEFAULT '',
			invoice_number   TEXT NOT NULL DEFAULT '',
			is_reconciled    INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_company ON payments(company_id, is_reconciled)`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   TEXT NOT NULL DEFAULT (datetime('now')),
			actor       TEXT NOT NULL DEFAULT '',
			action      TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id   TEXT NOT NULL,
			details     TEXT NOT NULL DEFAULT ''
		)`,
	}
}

func (s *Store) migrate() error {
	for _, stmt := range migrations() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("applying migration: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back on
// error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// dateFormat is the stored form of date-only columns. Lexicographic order
// matches chronological order.
const dateFormat = "2006-01-02"
