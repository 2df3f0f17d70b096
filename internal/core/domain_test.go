package core

import (
	"testing"
	"time"
)

func money(c int64) *Money {
	m := Money(c)
	return &m
}

func TestTransactionMirror(t *testing.T) {
	primary := Transaction{
		ID:            "t1",
		PairID:        "p1",
		Value:         300000,
		Description:   "salary",
		Date:          time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC),
		SourceID:      "nil-acct",
		DestinationID: "bank",
		ProjectID:     "proj",
	}

	c := primary.Mirror()
	if c.Value != -primary.Value {
		t.Errorf("counterpart value = %d, want %d", c.Value, -primary.Value)
	}
	if c.SourceID != primary.DestinationID || c.DestinationID != primary.SourceID {
		t.Errorf("counterpart endpoints not swapped: src=%s dst=%s", c.SourceID, c.DestinationID)
	}
	if !c.IsCounterpart {
		t.Error("counterpart flag not inverted")
	}
	if c.Description != primary.Description || !c.Date.Equal(primary.Date) {
		t.Error("counterpart should mirror logical fields")
	}

	// Mirroring twice yields the primary again.
	back := c.Mirror()
	if back.Value != primary.Value || back.SourceID != primary.SourceID || back.IsCounterpart {
		t.Error("double mirror should reproduce the primary row")
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Description:   "groceries",
		Date:          time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		Value:         -4500,
		SourceID:      "bank",
		DestinationID: "nil-acct",
		ProjectID:     "proj",
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "empty description", mutate: func(tx *Transaction) { tx.Description = "  " }, wantErr: true},
		{name: "zero date", mutate: func(tx *Transaction) { tx.Date = time.Time{} }, wantErr: true},
		{name: "no endpoints", mutate: func(tx *Transaction) { tx.SourceID, tx.DestinationID = "", "" }, wantErr: true},
		{name: "only destination", mutate: func(tx *Transaction) { tx.SourceID = "" }},
		{name: "only source", mutate: func(tx *Transaction) { tx.DestinationID = "" }},
		{name: "no project", mutate: func(tx *Transaction) { tx.ProjectID = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestForecastValidate(t *testing.T) {
	tests := []struct {
		name     string
		forecast Forecast
		wantErr  bool
	}{
		{
			name:     "plain forecast",
			forecast: Forecast{BudgetID: "b1", Value: -20000},
		},
		{
			name:     "value within bounds",
			forecast: Forecast{BudgetID: "b1", Value: -20000, MinValue: money(-30000), MaxValue: money(-10000)},
		},
		{
			name:     "value below min",
			forecast: Forecast{BudgetID: "b1", Value: -40000, MinValue: money(-30000), MaxValue: money(-10000)},
			wantErr:  true,
		},
		{
			name:     "min above max",
			forecast: Forecast{BudgetID: "b1", Value: -20000, MinValue: money(-10000), MaxValue: money(-30000)},
			wantErr:  true,
		},
		{
			name: "recurrence end before start",
			forecast: Forecast{
				BudgetID: "b1", Value: -20000, IsRecurrent: true,
				RecurrentStart: Month{Year: 2025, Mon: time.June},
				RecurrentEnd:   Month{Year: 2025, Mon: time.January},
			},
			wantErr: true,
		},
		{
			name: "open-ended recurrence",
			forecast: Forecast{
				BudgetID: "b1", Value: -20000, IsRecurrent: true,
				RecurrentStart: Month{Year: 2025, Mon: time.January},
			},
		},
		{
			name: "window on one-time forecast",
			forecast: Forecast{
				BudgetID: "b1", Value: -20000,
				RecurrentStart: Month{Year: 2025, Mon: time.January},
			},
			wantErr: true,
		},
		{
			name:     "missing budget",
			forecast: Forecast{Value: -20000},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.forecast.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestForecastAppliesTo(t *testing.T) {
	jan := Month{Year: 2025, Mon: time.January}
	feb := Month{Year: 2025, Mon: time.February}
	apr := Month{Year: 2025, Mon: time.April}
	jun := Month{Year: 2025, Mon: time.June}

	oneTime := Forecast{BudgetID: "b1", Value: -20000}
	if !oneTime.AppliesTo(feb, feb) {
		t.Error("one-time forecast should apply to its owning month")
	}
	if oneTime.AppliesTo(apr, feb) {
		t.Error("one-time forecast should not apply outside its owning month")
	}

	recurrent := Forecast{BudgetID: "b1", Value: -20000, IsRecurrent: true, RecurrentStart: jan}
	for _, m := range []Month{jan, feb, apr, jun} {
		if !recurrent.AppliesTo(m, jan) {
			t.Errorf("open-ended recurrent forecast should apply to %s", m)
		}
	}
	if recurrent.AppliesTo(Month{Year: 2024, Mon: time.December}, jan) {
		t.Error("recurrent forecast should not apply before its window start")
	}

	bounded := Forecast{BudgetID: "b1", Value: -20000, IsRecurrent: true, RecurrentStart: jan, RecurrentEnd: apr}
	if !bounded.AppliesTo(apr, jan) {
		t.Error("window end is inclusive")
	}
	if bounded.AppliesTo(jun, jan) {
		t.Error("recurrent forecast should not apply after its window end")
	}

	// Start unset: the owning budget's month opens the window.
	implicit := Forecast{BudgetID: "b1", Value: -20000, IsRecurrent: true}
	if implicit.AppliesTo(jan, feb) {
		t.Error("implicit window should open at the owning month")
	}
	if !implicit.AppliesTo(jun, feb) {
		t.Error("implicit window should run onward from the owning month")
	}
}

func TestAccountValidate(t *testing.T) {
	a := Account{Name: "Bank", Type: AccountDebit}
	if err := a.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	a.Type = "savings"
	if err := a.Validate(); err == nil {
		t.Error("unknown account type should be rejected")
	}
	a = Account{Name: "", Type: AccountDebit}
	if err := a.Validate(); err == nil {
		t.Error("empty name should be rejected")
	}
}

func TestBudgetMonth(t *testing.T) {
	b := Budget{
		Name:      "2024-02",
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		ProjectID: "proj",
	}
	if err := b.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if got := b.Month(); got != (Month{Year: 2024, Mon: time.February}) {
		t.Errorf("Month() = %v", got)
	}
}
