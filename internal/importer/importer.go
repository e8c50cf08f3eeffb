// Package importer parses bank statement CSVs into bank transactions and
// feeds them to the store, where the reconciliation matcher picks them up.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/finbook-dev/finbook/internal/model"
	"github.com/finbook-dev/finbook/internal/store"
)

// Parser converts a bank statement CSV into transactions.
type Parser interface {
	Parse(r io.Reader) ([]model.BankTransaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&StatementParser{})
	return r
}

// Importer writes parsed statements into the ledger store.
type Importer struct {
	store    *store.Store
	registry *Registry
}

// NewImporter creates an Importer.
func NewImporter(s *store.Store, registry *Registry) *Importer {
	return &Importer{store: s, registry: registry}
}

// Import parses r with the named format and records each transaction for the
// given company and bank account. Returns the number of rows imported.
func (im *Importer) Import(ctx context.Context, format, companyID, bankAccountID string, r io.Reader) (int, error) {
	parser := im.registry.Get(format)
	if parser == nil {
		return 0, fmt.Errorf("unknown statement format %q", format)
	}

	txns, err := parser.Parse(r)
	if err != nil {
		return 0, err
	}

	for i := range txns {
		txns[i].ID = uuid.NewString()
		txns[i].CompanyID = companyID
		txns[i].BankAccountID = bankAccountID
		if err := im.store.InsertBankTransaction(ctx, txns[i]); err != nil {
			return i, fmt.Errorf("importing row %d: %w", i+1, err)
		}
	}
	return len(txns), nil
}
