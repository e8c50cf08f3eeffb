package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/model"
)

// AccountLookup resolves a journal line's account reference. The second
// return is false for inactive accounts.
type AccountLookup interface {
	Lookup(ctx context.Context, accountID string) (model.Account, bool, error)
}

var hundred = decimal.NewFromInt(100)

// ValidateLines enforces the entry invariants:
//
//  1. at least two lines
//  2. exactly one of debit/credit non-zero per line, and non-negative
//  3. amounts exact to the smallest currency unit (two decimal places)
//  4. every account known and active
//  5. sum(debits) == sum(credits)
//
// Violations of 4 return ErrInvalidAccount; 1, 2, 3 and 5 return
// ErrUnbalancedEntry. Wrapped messages carry the detail.
func ValidateLines(ctx context.Context, lines []model.JournalLine, accounts AccountLookup) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: entry needs at least two lines, got %d", model.ErrUnbalancedEntry, len(lines))
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, l := range lines {
		hasDebit := !l.Debit.IsZero()
		hasCredit := !l.Credit.IsZero()
		if hasDebit == hasCredit {
			return fmt.Errorf("%w: line %d must have exactly one of debit or credit", model.ErrUnbalancedEntry, i+1)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", model.ErrUnbalancedEntry, i+1)
		}
		amount := l.Amount()
		if !amount.Mul(hundred).Equal(amount.Mul(hundred).Floor()) {
			return fmt.Errorf("%w: line %d amount %s has more than 2 decimal places", model.ErrUnbalancedEntry, i+1, amount)
		}

		_, active, err := accounts.Lookup(ctx, l.AccountID)
		if err != nil {
			return fmt.Errorf("looking up account %s: %w", l.AccountID, err)
		}
		if !active {
			return fmt.Errorf("%w: line %d account %s", model.ErrInvalidAccount, i+1, l.AccountID)
		}

		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("%w: debits %s != credits %s", model.ErrUnbalancedEntry,
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return nil
}
