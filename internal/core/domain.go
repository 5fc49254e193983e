package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is the fixed set of expense categories. Free-text categories are
// rejected at validation time.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryBills,
	CategoryHealth,
	CategoryEducation,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// ErrValidation is the base error for all input validation failures.
// Specific failures wrap it so callers can match the whole class with
// errors.Is(err, ErrValidation).
var ErrValidation = errors.New("validation failed")

var (
	ErrEmptyTitle         = fmt.Errorf("%w: title must not be empty", ErrValidation)
	ErrTitleTooLong       = fmt.Errorf("%w: title exceeds %d characters", ErrValidation, MaxTitleLength)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrInvalidCategory    = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	ErrMissingDate        = fmt.Errorf("%w: expense date is required", ErrValidation)
)

// ErrNoFields is returned when an update carries no applicable fields.
// It is deliberately not part of the ErrValidation class: the HTTP layer
// maps it to 400 rather than 422.
var ErrNoFields = errors.New("no fields provided for update")

// ErrNotFound is returned when no expense matches the requested id.
var ErrNotFound = errors.New("expense not found")

// Date is a calendar date without a time component. It marshals to and from
// the "2006-01-02" JSON form.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid expense date %q", ErrValidation, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Expense is a single recorded monetary outflow. ID and CreatedAt are
// assigned by the store; UpdatedAt is nil until the first mutation.
type Expense struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Amount      float64    `json:"amount"`
	Category    Category   `json:"category"`
	Description string     `json:"description,omitempty"`
	ExpenseDate Date       `json:"expense_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Validate checks every field constraint for a complete expense.
func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if len(e.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if e.ExpenseDate.IsZero() {
		return ErrMissingDate
	}
	return nil
}
