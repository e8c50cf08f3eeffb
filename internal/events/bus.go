// Package events is the in-process domain event bus. The ledger core emits
// events on every mutating operation; it never depends on any consumer.
package events

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a domain event emitted by a mutating ledger operation.
type Event interface {
	Name() string
}

// JournalPosted is emitted when a draft entry becomes posted, and for
// reversal and closing entries which post immediately.
type JournalPosted struct {
	EntryID       string
	CompanyID     string
	JournalNumber string
	JournalDate   time.Time
	TotalDebit    decimal.Decimal
}

func (JournalPosted) Name() string { return "journal.posted" }

// JournalReversed is emitted when a posted entry is reversed.
type JournalReversed struct {
	EntryID         string
	ReversalEntryID string
	CompanyID       string
	Reason          string
}

func (JournalReversed) Name() string { return "journal.reversed" }

// TransactionReconciled is emitted when a bank transaction is linked to a
// ledger item, and on unlink with Unreconciled=true.
type TransactionReconciled struct {
	TransactionID  string
	CompanyID      string
	ReconciledType string
	ReconciledID   string
	Unreconciled   bool
}

func (TransactionReconciled) Name() string { return "transaction.reconciled" }

// Handler receives published events.
type Handler func(Event)

// Bus fans events out to subscribers. Publish is synchronous; subscribers
// must not block.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all events.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers an event to every subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(e)
	}
}
