package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/model"
)

// InsertBankTransaction records an imported statement line.
func (s *Store) InsertBankTransaction(ctx context.Context, t model.BankTransaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_transactions
			(id, company_id, bank_account_id, transaction_date, amount, type,
			 description, reference_number, cheque_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.CompanyID, t.BankAccountID, t.TransactionDate.Format(dateFormat),
		t.Amount.String(), string(t.Type), t.Description, t.ReferenceNumber, t.ChequeNumber)
	if err != nil {
		return fmt.Errorf("inserting bank transaction: %w", err)
	}
	return nil
}

// GetBankTransaction retrieves a bank transaction by ID.
func (s *Store) GetBankTransaction(ctx context.Context, txnID string) (model.BankTransaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, bank_account_id, transaction_date, amount, type,
		       description, reference_number, cheque_number, is_reconciled,
		       reconciled_type, reconciled_id, reconciled_by, reconciled_at
		FROM bank_transactions WHERE id = ?
	`, txnID)
	return scanBankTransaction(row)
}

// ReconcileTransaction links a bank transaction to a ledger item. The link is
// written with a check-then-set guard so two concurrent accepts cannot both
// win; the loser gets AlreadyReconciled. When the link targets a payment the
// payment leaves the candidate pool, and the audit row commits, in the same
// transaction.
func (s *Store) ReconcileTransaction(ctx context.Context, txnID, reconciledType, reconciledID, reconciledBy string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bank_transactions
			SET is_reconciled = 1, reconciled_type = ?, reconciled_id = ?, reconciled_by = ?,
			    reconciled_at = ?
			WHERE id = ? AND is_reconciled = 0
		`, reconciledType, reconciledID, reconciledBy, time.Now().UTC().Format(time.RFC3339), txnID)
		if err != nil {
			return fmt.Errorf("reconciling transaction %s: %w", txnID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return reconcileConflict(ctx, tx, txnID)
		}
		if reconciledType == "payment" {
			if _, err := tx.ExecContext(ctx, `UPDATE payments SET is_reconciled = 1 WHERE id = ?`, reconciledID); err != nil {
				return fmt.Errorf("marking payment reconciled: %w", err)
			}
		}
		return appendAudit(ctx, tx, AuditEntry{
			Actor:      reconciledBy,
			Action:     "reconciled",
			EntityType: "bank_transaction",
			EntityID:   txnID,
			Details:    reconciledType + ":" + reconciledID,
		})
	})
}

// UnreconcileTransaction clears a reconciliation link. Always permitted when
// a link exists; reconciliation is soft and never mutates the ledger.
func (s *Store) UnreconcileTransaction(ctx context.Context, txnID, actor string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var rtype, rid string
		err := tx.QueryRowContext(ctx, `
			SELECT reconciled_type, reconciled_id FROM bank_transactions
			WHERE id = ? AND is_reconciled = 1
		`, txnID).Scan(&rtype, &rid)
		if errors.Is(err, sql.ErrNoRows) {
			return unreconcileConflict(ctx, tx, txnID)
		}
		if err != nil {
			return fmt.Errorf("reading reconciliation link: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bank_transactions
			SET is_reconciled = 0, reconciled_type = '', reconciled_id = '', reconciled_by = '',
			    reconciled_at = NULL
			WHERE id = ?
		`, txnID)
		if err != nil {
			return fmt.Errorf("unreconciling transaction %s: %w", txnID, err)
		}
		if rtype == "payment" {
			if _, err := tx.ExecContext(ctx, `UPDATE payments SET is_reconciled = 0 WHERE id = ?`, rid); err != nil {
				return fmt.Errorf("returning payment to pool: %w", err)
			}
		}
		return appendAudit(ctx, tx, AuditEntry{
			Actor:      actor,
			Action:     "unreconciled",
			EntityType: "bank_transaction",
			EntityID:   txnID,
		})
	})
}

// UnreconciledTransactions lists a company's unreconciled statement lines,
// oldest first.
func (s *Store) UnreconciledTransactions(ctx context.Context, companyID string) ([]model.BankTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, bank_account_id, transaction_date, amount, type,
		       description, reference_number, cheque_number, is_reconciled,
		       reconciled_type, reconciled_id, reconciled_by, reconciled_at
		FROM bank_transactions
		WHERE company_id = ? AND is_reconciled = 0
		ORDER BY transaction_date, id
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("querying unreconciled transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.BankTransaction
	for rows.Next() {
		t, err := scanBankTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// InsertPayment records a payment in the reconciliation candidate pool.
func (s *Store) InsertPayment(ctx context.Context, p model.Payment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, company_id, amount, payment_date, reference_number, customer_name, invoice_number, is_reconciled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.CompanyID, p.Amount.String(), p.PaymentDate.Format(dateFormat),
		p.ReferenceNumber, p.CustomerName, p.InvoiceNumber, boolInt(p.IsReconciled))
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

// UnreconciledPayments returns a company's unreconciled payments.
func (s *Store) UnreconciledPayments(ctx context.Context, companyID string) ([]model.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, amount, payment_date, reference_number, customer_name, invoice_number, is_reconciled
		FROM payments WHERE company_id = ? AND is_reconciled = 0
		ORDER BY payment_date, id
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("querying unreconciled payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		var amount, date string
		var reconciled int
		if err := rows.Scan(&p.ID, &p.CompanyID, &amount, &date, &p.ReferenceNumber, &p.CustomerName, &p.InvoiceNumber, &reconciled); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parsing payment amount %q: %w", amount, err)
		}
		if p.PaymentDate, err = time.Parse(dateFormat, date); err != nil {
			return nil, fmt.Errorf("parsing payment date %q: %w", date, err)
		}
		p.IsReconciled = reconciled == 1
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func reconcileConflict(ctx context.Context, tx *sql.Tx, txnID string) error {
	var reconciled int
	err := tx.QueryRowContext(ctx, `SELECT is_reconciled FROM bank_transactions WHERE id = ?`, txnID).Scan(&reconciled)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrTransactionNotFound
	}
	if err != nil {
		return err
	}
	return model.ErrAlreadyReconciled
}

func unreconcileConflict(ctx context.Context, tx *sql.Tx, txnID string) error {
	var reconciled int
	err := tx.QueryRowContext(ctx, `SELECT is_reconciled FROM bank_transactions WHERE id = ?`, txnID).Scan(&reconciled)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrTransactionNotFound
	}
	if err != nil {
		return err
	}
	return model.ErrNotReconciled
}

func scanBankTransaction(row rowScanner) (model.BankTransaction, error) {
	var t model.BankTransaction
	var date, amount, typ string
	var reconciled int
	var reconciledAt sql.NullString
	err := row.Scan(&t.ID, &t.CompanyID, &t.BankAccountID, &date, &amount, &typ,
		&t.Description, &t.ReferenceNumber, &t.ChequeNumber, &reconciled,
		&t.ReconciledType, &t.ReconciledID, &t.ReconciledBy, &reconciledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BankTransaction{}, model.ErrTransactionNotFound
	}
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("scanning bank transaction: %w", err)
	}

	t.Type = model.TransactionType(typ)
	t.IsReconciled = reconciled == 1
	if t.TransactionDate, err = time.Parse(dateFormat, date); err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing transaction date %q: %w", date, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	if reconciledAt.Valid {
		at, err := time.Parse(time.RFC3339, reconciledAt.String)
		if err != nil {
			return model.BankTransaction{}, fmt.Errorf("parsing reconciled_at %q: %w", reconciledAt.String, err)
		}
		t.ReconciledAt = &at
	}
	return t, nil
}
