package core

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Month
		wantErr bool
	}{
		{name: "valid month", input: "2024-02", want: Month{Year: 2024, Mon: time.February}},
		{name: "december", input: "2025-12", want: Month{Year: 2025, Mon: time.December}},
		{name: "missing month", input: "2024", wantErr: true},
		{name: "month out of range", input: "2024-13", wantErr: true},
		{name: "month zero", input: "2024-00", wantErr: true},
		{name: "garbage", input: "febbraio", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "full date", input: "2024-02-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMonth(%q) expected error, got %v", tt.input, got)
				}
				if !IsValidation(err) {
					t.Errorf("ParseMonth(%q) error = %v, want ValidationError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name      string
		month     string
		wantStart string
		wantEnd   string
	}{
		{name: "leap february", month: "2024-02", wantStart: "2024-02-01", wantEnd: "2024-02-29"},
		{name: "regular february", month: "2025-02", wantStart: "2025-02-01", wantEnd: "2025-02-28"},
		{name: "thirty days", month: "2025-04", wantStart: "2025-04-01", wantEnd: "2025-04-30"},
		{name: "thirtyone days", month: "2025-01", wantStart: "2025-01-01", wantEnd: "2025-01-31"},
		{name: "december", month: "2025-12", wantStart: "2025-12-01", wantEnd: "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMonth(tt.month)
			if err != nil {
				t.Fatalf("ParseMonth(%q): %v", tt.month, err)
			}
			start, end := m.Bounds()
			if got := start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestMonthNext(t *testing.T) {
	m := Month{Year: 2025, Mon: time.December}
	if got := m.Next(); got != (Month{Year: 2026, Mon: time.January}) {
		t.Errorf("Next() across year = %v", got)
	}
	m = Month{Year: 2025, Mon: time.April}
	if got := m.Next(); got != (Month{Year: 2025, Mon: time.May}) {
		t.Errorf("Next() = %v", got)
	}
}

func TestMonthCompare(t *testing.T) {
	a := Month{Year: 2025, Mon: time.January}
	b := Month{Year: 2025, Mon: time.April}
	c := Month{Year: 2024, Mon: time.December}

	if !a.Before(b) {
		t.Error("2025-01 should be before 2025-04")
	}
	if !b.After(a) {
		t.Error("2025-04 should be after 2025-01")
	}
	if !c.Before(a) {
		t.Error("2024-12 should be before 2025-01")
	}
	if a.Compare(a) != 0 {
		t.Error("month should equal itself")
	}
}

func TestMonthString(t *testing.T) {
	m := Month{Year: 2025, Mon: time.March}
	if got := m.String(); got != "2025-03" {
		t.Errorf("String() = %q, want 2025-03", got)
	}
}

func TestMonthOf(t *testing.T) {
	d := time.Date(2025, time.July, 14, 9, 30, 0, 0, time.UTC)
	if got := MonthOf(d); got != (Month{Year: 2025, Mon: time.July}) {
		t.Errorf("MonthOf() = %v", got)
	}
	if !MonthOf(d).Contains(d) {
		t.Error("month should contain its own day")
	}
}
