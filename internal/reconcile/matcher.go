// Package reconcile links bank statement lines to ledger-side items: scored
// suggestions for incoming receipts, and soft reconcile/unreconcile links.
package reconcile

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/model"
)

// Score weights. An exact amount on the same day with an exact reference
// match totals 100.
const (
	amountWeight       = 50.0
	dateWeight         = 30.0
	datePenaltyPerDay  = 2.0
	refExactWeight     = 20.0
	refSubstringWeight = 10.0
)

// Suggestion is one scored reconciliation candidate. Derived, never stored.
type Suggestion struct {
	PaymentID        string
	Amount           decimal.Decimal
	AmountDifference decimal.Decimal
	MatchScore       float64
	PaymentDate      time.Time
	ReferenceNumber  string
	CustomerName     string
	InvoiceNumber    string
}

// SuggestMatches scores unreconciled payments against a bank transaction and
// returns the best maxResults candidates, highest score first. Only credit
// transactions (incoming receipts) have a payment-side candidate pool; for
// debits the result is empty and reconciliation is manual.
func (s *Service) SuggestMatches(ctx context.Context, bankTransactionID string, amountTolerance decimal.Decimal, maxResults int) ([]Suggestion, error) {
	txn, err := s.store.GetBankTransaction(ctx, bankTransactionID)
	if err != nil {
		return nil, err
	}
	if txn.Type != model.TransactionCredit || txn.IsReconciled {
		return nil, nil
	}

	pool, err := s.store.UnreconciledPayments(ctx, txn.CompanyID)
	if err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	for _, p := range pool {
		diff := p.Amount.Sub(txn.Amount).Abs()
		if diff.GreaterThan(amountTolerance) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			PaymentID:        p.ID,
			Amount:           p.Amount,
			AmountDifference: diff,
			MatchScore:       score(txn, p, diff, amountTolerance),
			PaymentDate:      p.PaymentDate,
			ReferenceNumber:  p.ReferenceNumber,
			CustomerName:     p.CustomerName,
			InvoiceNumber:    p.InvoiceNumber,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].MatchScore != suggestions[j].MatchScore {
			return suggestions[i].MatchScore > suggestions[j].MatchScore
		}
		return suggestions[i].PaymentDate.Before(suggestions[j].PaymentDate)
	})

	if maxResults > 0 && len(suggestions) > maxResults {
		suggestions = suggestions[:maxResults]
	}
	return suggestions, nil
}

func score(txn model.BankTransaction, p model.Payment, diff, tolerance decimal.Decimal) float64 {
	total := amountScore(diff, tolerance)
	total += dateScore(txn.TransactionDate, p.PaymentDate)
	total += referenceScore(txn, p)
	return total
}

// amountScore gives full weight to an exact match and decays linearly to zero
// across the tolerance window.
func amountScore(diff, tolerance decimal.Decimal) float64 {
	if diff.IsZero() {
		return amountWeight
	}
	if tolerance.IsZero() {
		return 0
	}
	ratio, _ := diff.Div(tolerance).Float64()
	if ratio > 1 {
		return 0
	}
	return amountWeight * (1 - ratio)
}

// dateScore decays with day-distance between payment and transaction.
func dateScore(txnDate, paymentDate time.Time) float64 {
	days := txnDate.Sub(paymentDate).Hours() / 24
	if days < 0 {
		days = -days
	}
	s := dateWeight - datePenaltyPerDay*days
	if s < 0 {
		return 0
	}
	return s
}

// referenceScore compares the payment reference against the transaction's
// reference, cheque number and description: exact > substring > none.
func referenceScore(txn model.BankTransaction, p model.Payment) float64 {
	ref := strings.TrimSpace(strings.ToLower(p.ReferenceNumber))
	if ref == "" {
		return 0
	}
	txnRef := strings.TrimSpace(strings.ToLower(txn.ReferenceNumber))
	txnCheque := strings.TrimSpace(strings.ToLower(txn.ChequeNumber))
	if ref == txnRef || ref == txnCheque {
		return refExactWeight
	}
	haystack := txnRef + " " + txnCheque + " " + strings.ToLower(txn.Description)
	if strings.Contains(haystack, ref) {
		return refSubstringWeight
	}
	return 0
}
