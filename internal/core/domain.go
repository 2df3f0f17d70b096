package core

import (
	"strings"
	"time"
)

// AccountType classifies an account. The nil type marks the singleton
// sentinel account standing in for the outside world.
type AccountType string

const (
	AccountDebit  AccountType = "debit"
	AccountCredit AccountType = "credit"
	AccountNil    AccountType = "nil"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountDebit, AccountCredit, AccountNil:
		return true
	}
	return false
}

type (
	// Project is the top of the containment tree: budgets and transactions
	// belong to exactly one project, accounts attach to many.
	Project struct {
		ID        string
		Name      string
		IsDefault bool
		CreatedAt time.Time
	}

	// Account is a tracked pot of money. CurrentBalance is a cache updated
	// inside every transaction mutation; InitialBalance is the opening state
	// before any recorded flow.
	Account struct {
		ID             string
		Name           string
		Type           AccountType
		InitialBalance Money
		CurrentBalance Money
	}

	// Category is a global tag used to match forecasts against actuals.
	Category struct {
		ID        string
		Name      string
		CreatedAt time.Time
	}

	// Transaction is one row of a double-entry pair. The primary row carries
	// the value as the user stated it; the counterpart carries the negated
	// value with source and destination swapped. Both rows share a PairID.
	// Each row credits its destination account with its signed value.
	Transaction struct {
		ID            string
		PairID        string
		Value         Money
		Description   string
		Date          time.Time
		Tags          []string
		SourceID      string
		DestinationID string
		CategoryID    string // empty means uncategorized
		ProjectID     string
		IsCounterpart bool
		CreatedAt     time.Time
	}

	// Budget is a calendar month of planning inside a project. Name is the
	// YYYY-MM form, StartDate and EndDate its first and last day.
	Budget struct {
		ID        string
		Name      string
		StartDate time.Time
		EndDate   time.Time
		ProjectID string
		CreatedAt time.Time
	}

	// Forecast is a planned line item in a budget. A one-time forecast
	// applies only to its owning budget's month; a recurrent one applies to
	// every month of its window.
	Forecast struct {
		ID             string
		BudgetID       string
		Description    string
		Value          Money
		MinValue       *Money
		MaxValue       *Money
		Tags           []string
		CategoryID     string
		IsRecurrent    bool
		RecurrentStart Month // zero means the owning budget's month
		RecurrentEnd   Month // zero means unbounded
		CreatedAt      time.Time
	}
)

// Mirror returns the counterpart row for t: negated value, swapped endpoints,
// inverted flag. ID and PairID are left for the caller to assign.
func (t Transaction) Mirror() Transaction {
	c := t
	c.Value = -t.Value
	c.SourceID = t.DestinationID
	c.DestinationID = t.SourceID
	c.IsCounterpart = !t.IsCounterpart
	return c
}

// Month returns the calendar month the transaction falls in.
func (t Transaction) Month() Month {
	return MonthOf(t.Date)
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return &ValidationError{Field: "type", Ref: string(a.Type), Reason: "must be debit, credit or nil"}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 500 {
		return &ValidationError{Field: "description", Reason: "too long (max 500 characters)"}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "must be set"}
	}
	if t.SourceID == "" && t.DestinationID == "" {
		return &ValidationError{Field: "accounts", Reason: "at least one of source and destination is required"}
	}
	if t.ProjectID == "" {
		return &ValidationError{Field: "project", Reason: "must be set"}
	}
	return nil
}

// Month returns the budget's calendar month, derived from its start date.
func (b Budget) Month() Month {
	return MonthOf(b.StartDate)
}

func (b Budget) Validate() error {
	if _, err := ParseMonth(b.Name); err != nil {
		return err
	}
	if b.ProjectID == "" {
		return &ValidationError{Field: "project", Reason: "must be set"}
	}
	return nil
}

func (f Forecast) Validate() error {
	if f.BudgetID == "" {
		return &ValidationError{Field: "budget", Reason: "must be set"}
	}
	if len(f.Description) > 500 {
		return &ValidationError{Field: "description", Reason: "too long (max 500 characters)"}
	}
	if f.MinValue != nil && f.MaxValue != nil {
		if *f.MinValue > *f.MaxValue {
			return &ValidationError{Field: "bounds", Reason: "min must not exceed max"}
		}
		if f.Value < *f.MinValue || f.Value > *f.MaxValue {
			return &ValidationError{Field: "value", Ref: f.Value.String(), Reason: "outside min/max bounds"}
		}
	}
	if !f.RecurrentStart.IsZero() && !f.RecurrentEnd.IsZero() && f.RecurrentEnd.Before(f.RecurrentStart) {
		return &ValidationError{Field: "recurrence", Reason: "end must not precede start"}
	}
	if !f.IsRecurrent && (!f.RecurrentStart.IsZero() || !f.RecurrentEnd.IsZero()) {
		return &ValidationError{Field: "recurrence", Reason: "window set on a one-time forecast"}
	}
	return nil
}

// AppliesTo reports whether the forecast counts for month m, given the month
// of its owning budget. One-time forecasts apply only to the owning month.
// Recurrent ones apply from their window start (owning month when unset)
// through their window end (unbounded when unset), both inclusive.
func (f Forecast) AppliesTo(m, owning Month) bool {
	if !f.IsRecurrent {
		return m.Compare(owning) == 0
	}
	start := f.RecurrentStart
	if start.IsZero() {
		start = owning
	}
	if m.Before(start) {
		return false
	}
	if !f.RecurrentEnd.IsZero() && m.After(f.RecurrentEnd) {
		return false
	}
	return true
}
