// Package metrics exposes prometheus counters for ledger activity, driven
// off the domain event bus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/finbook-dev/finbook/internal/events"
)

// Metrics holds the ledger counters.
type Metrics struct {
	EntriesPosted   prometheus.Counter
	EntriesReversed prometheus.Counter
	Reconciled      prometheus.Counter
	Unreconciled    prometheus.Counter
}

// New registers the counters with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EntriesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finbook_journal_entries_posted_total",
			Help: "Journal entries posted, including reversals and closing entries.",
		}),
		EntriesReversed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finbook_journal_entries_reversed_total",
			Help: "Journal entries reversed.",
		}),
		Reconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finbook_bank_transactions_reconciled_total",
			Help: "Bank transactions reconciled.",
		}),
		Unreconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finbook_bank_transactions_unreconciled_total",
			Help: "Reconciliation links cleared.",
		}),
	}
	reg.MustRegister(m.EntriesPosted, m.EntriesReversed, m.Reconciled, m.Unreconciled)
	return m
}

// Observe subscribes the counters to the event bus.
func (m *Metrics) Observe(bus *events.Bus) {
	bus.Subscribe(func(e events.Event) {
		switch ev := e.(type) {
		case events.JournalPosted:
			m.EntriesPosted.Inc()
		case events.JournalReversed:
			m.EntriesReversed.Inc()
		case events.TransactionReconciled:
			if ev.Unreconciled {
				m.Unreconciled.Inc()
			} else {
				m.Reconciled.Inc()
			}
		}
	})
}
