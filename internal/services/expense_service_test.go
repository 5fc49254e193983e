package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishExpenseEvent(ctx context.Context, id int64, action string) error {
	p.events = append(p.events, action)
	return nil
}

func ptr[T any](v T) *T { return &v }

func validExpense() core.Expense {
	return core.Expense{
		Title:       "Groceries",
		Amount:      42.50,
		Category:    core.CategoryFood,
		ExpenseDate: core.NewDate(2025, time.March, 14),
	}
}

func TestCreateThenGetReturnsEqualRecord(t *testing.T) {
	svc := NewExpenseService(newTestStore(t), nil)
	ctx := context.Background()

	in := core.Expense{
		Title:       "Dinner",
		Amount:      55.20,
		Category:    core.CategoryFood,
		Description: "birthday",
		ExpenseDate: core.NewDate(2025, time.May, 2),
	}
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Amount, got.Amount)
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, in.ExpenseDate.String(), got.ExpenseDate.String())
	assert.Positive(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := NewExpenseService(newTestStore(t), nil)
	ctx := context.Background()

	bad := validExpense()
	bad.Amount = -1
	_, err := svc.Create(ctx, bad)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	bad = validExpense()
	bad.Title = ""
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
}

func TestListDefaultsAndBounds(t *testing.T) {
	store := newTestStore(t)
	svc := NewExpenseService(store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, validExpense())
		require.NoError(t, err)
	}

	// Zero limit falls back to the default page size.
	out, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	// Oversized limits are capped, not rejected.
	out, err = svc.List(ctx, 0, MaxListLimit+500)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	_, err = svc.List(ctx, -1, 10)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestUpdateEmptyPatchRejected(t *testing.T) {
	svc := NewExpenseService(newTestStore(t), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, core.ExpensePatch{})
	assert.ErrorIs(t, err, core.ErrNoFields)
}

func TestPartialUpdateLeavesOtherFieldsUntouched(t *testing.T) {
	svc := NewExpenseService(newTestStore(t), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Expense{
		Title:       "Gym",
		Amount:      35.00,
		Category:    core.CategoryHealth,
		Description: "monthly",
		ExpenseDate: core.NewDate(2025, time.January, 5),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, core.ExpensePatch{Amount: ptr(40.0)})
	require.NoError(t, err)

	assert.Equal(t, 40.0, updated.Amount)
	assert.Equal(t, "Gym", updated.Title)
	assert.Equal(t, core.CategoryHealth, updated.Category)
	assert.Equal(t, "monthly", updated.Description)
	assert.Equal(t, "2025-01-05", updated.ExpenseDate.String())
	assert.NotNil(t, updated.UpdatedAt)
}

func TestUpdateMissingExpense(t *testing.T) {
	svc := NewExpenseService(newTestStore(t), nil)

	_, err := svc.Update(context.Background(), 404, core.ExpensePatch{Amount: ptr(1.0)})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteIsNotIdempotent(t *testing.T) {
	svc := NewExpenseService(newTestStore(t), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), core.ErrNotFound)
}

func TestMutationsPublishEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewExpenseService(newTestStore(t), pub)
	ctx := context.Background()

	created, err := svc.Create(ctx, validExpense())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, core.ExpensePatch{Amount: ptr(50.0)})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	assert.Equal(t, []string{"created", "updated", "deleted"}, pub.events)
}

func TestFailedMutationPublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewExpenseService(newTestStore(t), pub)

	bad := validExpense()
	bad.Amount = 0
	_, err := svc.Create(context.Background(), bad)
	require.Error(t, err)
	assert.Empty(t, pub.events)
}
