package model

import "errors"

// Sentinel errors for the ledger core. All are local validation failures
// returned synchronously; none are retried internally.
var (
	// Posting engine
	ErrUnbalancedEntry  = errors.New("journal entry debits do not equal credits")
	ErrInvalidAccount   = errors.New("journal line references an unknown or inactive account")
	ErrInvalidEntryType = errors.New("journal entry has an unknown entry type")
	ErrNotDraft         = errors.New("journal entry is not in draft status")
	ErrNotPosted        = errors.New("journal entry is not in posted status")
	ErrAlreadyReversed  = errors.New("journal entry has already been reversed")

	// Reconciliation
	ErrAlreadyReconciled = errors.New("bank transaction is already reconciled")
	ErrNotReconciled     = errors.New("bank transaction is not reconciled")

	// Lookups
	ErrEntryNotFound       = errors.New("journal entry not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("bank transaction not found")
)
