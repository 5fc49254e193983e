package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/amqp"
	"spendtrack/internal/storage"
)

func newTestWorker(t *testing.T) (*AuditWorker, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewAuditWorker(store), store
}

func TestHandleEventRecordsAuditEntry(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	msg := amqp.NewExpenseEventMessage(9, amqp.ActionUpdated)
	require.NoError(t, w.HandleEvent(ctx, msg))

	entries, err := store.ListAuditEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(9), entries[0].ExpenseID)
	assert.Equal(t, "updated", entries[0].Action)
}

func TestHandleEventOrdersEntriesNewestFirst(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, amqp.NewExpenseEventMessage(1, amqp.ActionCreated)))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewExpenseEventMessage(1, amqp.ActionDeleted)))

	entries, err := store.ListAuditEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "deleted", entries[0].Action)
	assert.Equal(t, "created", entries[1].Action)
}

func TestHandleEventDropsUnknownAction(t *testing.T) {
	w, store := newTestWorker(t)
	ctx := context.Background()

	msg := &amqp.ExpenseEventMessage{ID: 3, Action: "exploded", Timestamp: time.Now()}

	// No error: the message must be acked, not requeued forever.
	require.NoError(t, w.HandleEvent(ctx, msg))

	entries, err := store.ListAuditEntries(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
