package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finbook-dev/finbook/internal/model"
)

// InsertAccount adds an account to the chart of accounts.
func (s *Store) InsertAccount(ctx context.Context, a model.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, company_id, code, name, type, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.CompanyID, a.Code, a.Name, string(a.Type), boolInt(a.IsActive))
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", a.Code, err)
	}
	return nil
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, code, name, type, is_active
		FROM accounts WHERE id = ?
	`, accountID)
	return scanAccount(row)
}

// AccountsByCompany returns the chart of accounts for a company, ordered by
// code.
func (s *Store) AccountsByCompany(ctx context.Context, companyID string) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, code, name, type, is_active
		FROM accounts WHERE company_id = ? ORDER BY code
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SetAccountActive flips an account's active flag.
func (s *Store) SetAccountActive(ctx context.Context, accountID string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET is_active = ? WHERE id = ?`, boolInt(active), accountID)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", accountID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	var typ string
	var active int
	err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &typ, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("scanning account: %w", err)
	}
	a.Type = model.AccountType(typ)
	a.IsActive = active == 1
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
