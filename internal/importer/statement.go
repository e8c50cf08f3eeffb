package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbook-dev/finbook/internal/model"
)

// StatementParser parses the generic statement export format:
// date,description,amount,type,reference,cheque — with a header row.
// Type is "credit" or "debit"; amount is always positive.
type StatementParser struct{}

const (
	stmtDateFormat = "2006-01-02"
	stmtNumFields  = 6
	stmtColDate    = 0
	stmtColDesc    = 1
	stmtColAmount  = 2
	stmtColType    = 3
	stmtColRef     = 4
	stmtColCheque  = 5
)

// Format returns the parser name.
func (p *StatementParser) Format() string { return "generic" }

// Parse reads a statement CSV and returns BankTransactions.
func (p *StatementParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = stmtNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		txn, err := parseStatementRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseStatementRow(rec []string) (model.BankTransaction, error) {
	date, err := time.Parse(stmtDateFormat, rec[stmtColDate])
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date %q: %w", rec[stmtColDate], err)
	}

	amount, err := decimal.NewFromString(rec[stmtColAmount])
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[stmtColAmount], err)
	}
	if amount.IsNegative() {
		return model.BankTransaction{}, fmt.Errorf("amount %s must be positive; direction comes from the type column", amount)
	}

	var txnType model.TransactionType
	switch strings.ToLower(rec[stmtColType]) {
	case "credit", "cr":
		txnType = model.TransactionCredit
	case "debit", "dr":
		txnType = model.TransactionDebit
	default:
		return model.BankTransaction{}, fmt.Errorf("unknown transaction type %q", rec[stmtColType])
	}

	return model.BankTransaction{
		TransactionDate: date,
		Description:     rec[stmtColDesc],
		Amount:          amount,
		Type:            txnType,
		ReferenceNumber: rec[stmtColRef],
		ChequeNumber:    rec[stmtColCheque],
	}, nil
}
