package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendtrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore owns all expense records. Every read in the system goes
// through it; no other component keeps an independent copy.
type SQLiteStore struct {
	db *sql.DB
}

// busyTimeoutDSN makes writers wait out a held lock instead of failing
// immediately. The API and the worker open the same file from separate
// processes.
const busyTimeoutDSN = "?_pragma=busy_timeout(5000)"

// NewSQLiteStore opens (creating if necessary) the database at dbPath and
// applies pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+busyTimeoutDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const expenseColumns = "id, title, amount, category, description, expense_date, created_at, updated_at"

// InsertExpense assigns an id and creation timestamp to e and persists it.
// The stored record is returned with all server-assigned fields populated.
func (s *SQLiteStore) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = nil

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (title, amount, category, description, expense_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Title, e.Amount, string(e.Category), e.Description, e.ExpenseDate.String(), e.CreatedAt,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"title", e.Title,
		"amount", e.Amount,
		"category", e.Category)

	return e, nil
}

// GetExpense retrieves a single expense by id. Returns core.ErrNotFound if
// no record matches.
func (s *SQLiteStore) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)

	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, fmt.Errorf("expense id %d: %w", id, core.ErrNotFound)
		}
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns at most limit records, newest-created first,
// skipping the first offset records.
func (s *SQLiteStore) ListExpenses(ctx context.Context, offset, limit int) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// UpdateExpense applies the supplied patch fields to the stored record,
// leaving the rest untouched, and stamps updated_at. The merge happens
// inside a transaction so concurrent updates to the same row cannot
// interleave between read and write.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, fmt.Errorf("expense id %d: %w", id, core.ErrNotFound)
		}
		return core.Expense{}, fmt.Errorf("get expense for update: %w", err)
	}

	patch.Apply(&e)
	now := time.Now().UTC()
	e.UpdatedAt = &now

	_, err = tx.ExecContext(ctx,
		`UPDATE expenses
		 SET title = ?, amount = ?, category = ?, description = ?, expense_date = ?, updated_at = ?
		 WHERE id = ?`,
		e.Title, e.Amount, string(e.Category), e.Description, e.ExpenseDate.String(), now, id,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "id", id)
	return e, nil
}

// DeleteExpense removes the record permanently. A second delete of the same
// id reports core.ErrNotFound.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense id %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// AllExpenses is the aggregate scan: an unfiltered read of the full current
// set. Only the dashboard aggregator uses it.
func (s *SQLiteStore) AllExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses")
	if err != nil {
		return nil, fmt.Errorf("scan all expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e         core.Expense
		category  string
		dateStr   string
		updatedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.Title, &e.Amount, &category, &e.Description, &dateStr, &e.CreatedAt, &updatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.Category = core.Category(category)
	e.ExpenseDate, err = core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored expense_date %q: %w", dateStr, err)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		e.UpdatedAt = &t
	}
	return e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
