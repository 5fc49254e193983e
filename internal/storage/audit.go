package storage

import (
	"context"
	"fmt"
	"time"
)

// AuditEntry is one row of the expense audit trail written by the worker.
// OccurredAt is when the API performed the action; RecordedAt is when the
// worker persisted the entry.
type AuditEntry struct {
	ID         int64
	ExpenseID  int64
	Action     string
	OccurredAt time.Time
	RecordedAt time.Time
}

// InsertAuditEntry appends an entry to the audit trail.
func (s *SQLiteStore) InsertAuditEntry(ctx context.Context, expenseID int64, action string, occurredAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expense_audit (expense_id, action, occurred_at, recorded_at)
		 VALUES (?, ?, ?, ?)`,
		expenseID, action, occurredAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns the most recent limit entries, newest first.
func (s *SQLiteStore) ListAuditEntries(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_id, action, occurred_at, recorded_at
		 FROM expense_audit ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var a AuditEntry
		if err := rows.Scan(&a.ID, &a.ExpenseID, &a.Action, &a.OccurredAt, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
