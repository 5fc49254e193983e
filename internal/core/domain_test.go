package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func validExpense() Expense {
	return Expense{
		Title:       "Groceries",
		Amount:      42.50,
		Category:    CategoryFood,
		Description: "weekly shop",
		ExpenseDate: NewDate(2025, time.March, 14),
	}
}

func TestExpenseValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{"valid", func(e *Expense) {}, nil},
		{"empty title", func(e *Expense) { e.Title = "" }, ErrEmptyTitle},
		{"whitespace title", func(e *Expense) { e.Title = "   " }, ErrEmptyTitle},
		{"title too long", func(e *Expense) { e.Title = strings.Repeat("x", MaxTitleLength+1) }, ErrTitleTooLong},
		{"zero amount", func(e *Expense) { e.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(e *Expense) { e.Amount = -5 }, ErrInvalidAmount},
		{"unknown category", func(e *Expense) { e.Category = "snacks" }, ErrInvalidCategory},
		{"empty category", func(e *Expense) { e.Category = "" }, ErrInvalidCategory},
		{"description too long", func(e *Expense) { e.Description = strings.Repeat("y", MaxDescriptionLength+1) }, ErrDescriptionTooLong},
		{"missing date", func(e *Expense) { e.ExpenseDate = Date{} }, ErrMissingDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected %v to wrap ErrValidation", err)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("category %q should be valid", c)
		}
	}
	if Category("groceries").Valid() {
		t.Error("free-text category should not be valid")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, time.November, 3)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-11-03"` {
		t.Fatalf("unexpected JSON form: %s", data)
	}

	var parsed Date
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", parsed, d)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("03/11/2025"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
