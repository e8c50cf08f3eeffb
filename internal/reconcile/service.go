package reconcile

import (
	"context"

	"github.com/finbook-dev/finbook/internal/events"
	"github.com/finbook-dev/finbook/internal/model"
	"github.com/finbook-dev/finbook/internal/store"
)

// Service provides reconciliation suggestions and link management.
type Service struct {
	store *store.Store
	bus   *events.Bus
}

// NewService creates a reconciliation Service.
func NewService(s *store.Store, bus *events.Bus) *Service {
	return &Service{store: s, bus: bus}
}

// Reconcile links a bank transaction to a ledger item. The type/id pair may
// come from a suggestion or be entered manually for items the matcher cannot
// enumerate (expenses, payroll, transfers). Fails with AlreadyReconciled if a
// link exists; concurrent accepts are serialized per transaction.
func (s *Service) Reconcile(ctx context.Context, transactionID, reconciledType, reconciledID, reconciledBy string) error {
	if err := s.store.ReconcileTransaction(ctx, transactionID, reconciledType, reconciledID, reconciledBy); err != nil {
		return err
	}

	txn, err := s.store.GetBankTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	s.bus.Publish(events.TransactionReconciled{
		TransactionID:  transactionID,
		CompanyID:      txn.CompanyID,
		ReconciledType: reconciledType,
		ReconciledID:   reconciledID,
	})
	return nil
}

// Unreconcile clears a reconciliation link. Always permitted when a link
// exists; the link is soft and never mutates the ledger. Fails with
// NotReconciled when there is nothing to clear.
func (s *Service) Unreconcile(ctx context.Context, transactionID, actor string) error {
	if err := s.store.UnreconcileTransaction(ctx, transactionID, actor); err != nil {
		return err
	}

	txn, err := s.store.GetBankTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	s.bus.Publish(events.TransactionReconciled{
		TransactionID: transactionID,
		CompanyID:     txn.CompanyID,
		Unreconciled:  true,
	})
	return nil
}

// Transaction returns a bank transaction by ID.
func (s *Service) Transaction(ctx context.Context, transactionID string) (model.BankTransaction, error) {
	return s.store.GetBankTransaction(ctx, transactionID)
}
