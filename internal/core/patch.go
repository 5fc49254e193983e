package core

import "strings"

// ExpensePatch carries the fields of an update request. Every field is a
// pointer so that "absent" and "set to zero value" stay distinguishable.
// PUT and PATCH both decode into this type: the update layer treats all
// fields as independently optional and merges only what was supplied.
type ExpensePatch struct {
	Title       *string   `json:"title"`
	Amount      *float64  `json:"amount"`
	Category    *Category `json:"category"`
	Description *string   `json:"description"`
	ExpenseDate *Date     `json:"expense_date"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p ExpensePatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Amount == nil &&
		p.Category == nil &&
		p.Description == nil &&
		p.ExpenseDate == nil
}

// Validate checks the constraints of every supplied field. Absent fields
// are not checked; the merged record stays valid because the stored record
// was valid before.
func (p ExpensePatch) Validate() error {
	if p.IsEmpty() {
		return ErrNoFields
	}
	if p.Title != nil {
		if len(strings.TrimSpace(*p.Title)) == 0 {
			return ErrEmptyTitle
		}
		if len(*p.Title) > MaxTitleLength {
			return ErrTitleTooLong
		}
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Category != nil && !p.Category.Valid() {
		return ErrInvalidCategory
	}
	if p.Description != nil && len(*p.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if p.ExpenseDate != nil && p.ExpenseDate.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Apply merges the supplied fields into e, field by field, leaving absent
// fields untouched.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.ExpenseDate != nil {
		e.ExpenseDate = *p.ExpenseDate
	}
}
