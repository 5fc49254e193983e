// Package worker records the audit trail of expense mutations.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendtrack/internal/amqp"
	"spendtrack/internal/storage"
)

// AuditWorker consumes expense events and appends them to the audit table.
// It is fully decoupled from the API request path: a lost or delayed entry
// never affects the original mutation.
type AuditWorker struct {
	store *storage.SQLiteStore
}

func NewAuditWorker(store *storage.SQLiteStore) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent records one expense event. Returning an error requeues the
// message for a later attempt.
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	switch msg.Action {
	case amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted:
	default:
		// Unknown actions are logged and dropped rather than requeued forever.
		slog.WarnContext(ctx, "Dropping event with unknown action",
			"id", msg.ID,
			"action", msg.Action)
		return nil
	}

	if err := w.store.InsertAuditEntry(ctx, msg.ID, msg.Action, msg.Timestamp); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Audit entry recorded",
		"expense_id", msg.ID,
		"action", msg.Action)
	return nil
}
