// Package accounts is the chart-of-accounts registry.
package accounts

import (
	"context"
	"errors"

	"github.com/finbook-dev/finbook/internal/model"
	"github.com/finbook-dev/finbook/internal/store"
)

// Registry provides lookup over the chart of accounts.
type Registry struct {
	store *store.Store
}

// NewRegistry creates a Registry backed by the ledger store.
func NewRegistry(s *store.Store) *Registry {
	return &Registry{store: s}
}

// Get returns an account by ID.
func (r *Registry) Get(ctx context.Context, accountID string) (model.Account, error) {
	return r.store.GetAccount(ctx, accountID)
}

// Lookup returns an account and whether it exists and is active, the check
// the posting engine runs per journal line.
func (r *Registry) Lookup(ctx context.Context, accountID string) (model.Account, bool, error) {
	a, err := r.store.GetAccount(ctx, accountID)
	if errors.Is(err, model.ErrAccountNotFound) {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, err
	}
	return a, a.IsActive, nil
}

// All returns a company's chart of accounts ordered by code.
func (r *Registry) All(ctx context.Context, companyID string) ([]model.Account, error) {
	return r.store.AccountsByCompany(ctx, companyID)
}

// ByType returns a company's accounts of the given type.
func (r *Registry) ByType(ctx context.Context, companyID string, accountType model.AccountType) ([]model.Account, error) {
	all, err := r.store.AccountsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var result []model.Account
	for _, a := range all {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result, nil
}

// Create adds an account to the chart.
func (r *Registry) Create(ctx context.Context, a model.Account) error {
	return r.store.InsertAccount(ctx, a)
}

// Deactivate retires an account. Posted history referencing it is untouched;
// new journal lines may no longer use it.
func (r *Registry) Deactivate(ctx context.Context, accountID string) error {
	return r.store.SetAccountActive(ctx, accountID, false)
}
