package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AuditEntry is one row in the append-only audit trail.
type AuditEntry struct {
	ID         int64
	Timestamp  time.Time
	Actor      string
	Action     string // posted, reversed, reconciled, unreconciled
	EntityType string // journal_entry, bank_transaction
	EntityID   string
	Details    string
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppendAudit records an action in the audit trail.
func (s *Store) AppendAudit(ctx context.Context, e AuditEntry) error {
	return appendAudit(ctx, s.db, e)
}

// appendAudit writes one audit row. Mutating operations call it with their
// own transaction so the audit row commits atomically with the state change.
func appendAudit(ctx context.Context, db execer, e AuditEntry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO audit_log (timestamp, actor, action, entity_type, entity_id, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ts.Format(time.RFC3339), e.Actor, e.Action, e.EntityType, e.EntityID, e.Details)
	if err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// AuditTrail returns the audit rows for one entity, oldest first.
func (s *Store) AuditTrail(ctx context.Context, entityType, entityID string) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, actor, action, entity_type, entity_id, details
		FROM audit_log WHERE entity_type = ? AND entity_id = ? ORDER BY id
	`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying audit trail: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Actor, &e.Action, &e.EntityType, &e.EntityID, &e.Details); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("parsing audit timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
