package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a bank statement line from the bank's
// point of view: credit = money in, debit = money out.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// BankTransaction is one imported bank statement line. Rows are created by
// statement import and never deleted; only the reconciliation link mutates.
type BankTransaction struct {
	ID              string
	CompanyID       string
	BankAccountID   string
	TransactionDate time.Time
	Amount          decimal.Decimal
	Type            TransactionType
	Description     string
	ReferenceNumber string
	ChequeNumber    string
	IsReconciled    bool
	ReconciledType  string // payment, expense, payroll, transfer, ...
	ReconciledID    string
	ReconciledBy    string
	ReconciledAt    *time.Time
}

// Payment is a receivable-side payment record from the billing module, used
// as the reconciliation candidate pool.
type Payment struct {
	ID              string
	CompanyID       string
	Amount          decimal.Decimal
	PaymentDate     time.Time
	ReferenceNumber string
	CustomerName    string
	InvoiceNumber   string
	IsReconciled    bool
}
