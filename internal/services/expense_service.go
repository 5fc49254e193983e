package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

// Pagination defaults and bounds for listing expenses.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ErrInvalidOffset and ErrInvalidLimit reject out-of-range pagination input.
var (
	ErrInvalidOffset = fmt.Errorf("%w: offset must not be negative", core.ErrValidation)
	ErrInvalidLimit  = fmt.Errorf("%w: limit must be at least 1", core.ErrValidation)
)

// EventPublisher publishes expense mutation events. The AMQP client
// satisfies it; a nil publisher disables event publishing entirely.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, id int64, action string) error
}

// ExpenseService wraps the store with the API-level contracts: validation
// on create, the empty-update guard, and best-effort event publishing.
type ExpenseService struct {
	store     *storage.SQLiteStore
	publisher EventPublisher
}

func NewExpenseService(store *storage.SQLiteStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// Create validates the expense and persists it. The returned record carries
// the assigned id and creation timestamp.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.publishEvent(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

// Get returns the expense with the given id, or core.ErrNotFound.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// List returns a page of expenses, newest-created first. A zero limit
// falls back to the default; limits above the maximum are capped.
func (s *ExpenseService) List(ctx context.Context, offset, limit int) ([]core.Expense, error) {
	if offset < 0 {
		return nil, ErrInvalidOffset
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.store.ListExpenses(ctx, offset, limit)
}

// Update merges the supplied patch fields into the stored record. PUT and
// PATCH both land here: all fields are independently optional and an
// entirely empty patch is rejected with core.ErrNoFields.
func (s *ExpenseService) Update(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error) {
	if err := patch.Validate(); err != nil {
		return core.Expense{}, err
	}

	updated, err := s.store.UpdateExpense(ctx, id, patch)
	if err != nil {
		return core.Expense{}, err
	}

	s.publishEvent(ctx, id, amqp.ActionUpdated)
	return updated, nil
}

// Delete removes the expense permanently. Deleting twice yields
// core.ErrNotFound the second time.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.publishEvent(ctx, id, amqp.ActionDeleted)
	return nil
}

// publishEvent is best-effort: the mutation already committed, so publish
// failures are logged and never surfaced to the caller.
func (s *ExpenseService) publishEvent(ctx context.Context, id int64, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id,
			"action", action,
			"error", err)
	}
}
