package core

import (
	"fmt"
	"time"
)

// Month identifies a calendar month, the only budgeting period the system
// knows about. The zero value is not a valid month.
type Month struct {
	Year int
	Mon  time.Month
}

// ParseMonth parses a YYYY-MM string into a Month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, &ValidationError{Field: "month", Ref: s, Reason: "must be YYYY-MM"}
	}
	return Month{Year: t.Year(), Mon: t.Month()}, nil
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

// IsZero reports whether m is the zero value, used for optional months.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Mon == 0
}

// Bounds returns the first and last calendar day of the month. The end is the
// last day, not the first of the next month, so February bounds are
// 2024-02-01..2024-02-29 on a leap year.
func (m Month) Bounds() (start, end time.Time) {
	start = time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// Next returns the month immediately after m.
func (m Month) Next() Month {
	if m.Mon == time.December {
		return Month{Year: m.Year + 1, Mon: time.January}
	}
	return Month{Year: m.Year, Mon: m.Mon + 1}
}

// Compare orders months chronologically: -1 if m < other, 0 if equal, 1 if m > other.
func (m Month) Compare(other Month) int {
	if m.Year != other.Year {
		if m.Year < other.Year {
			return -1
		}
		return 1
	}
	if m.Mon != other.Mon {
		if m.Mon < other.Mon {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	return m.Compare(other) < 0
}

// After reports whether m is strictly later than other.
func (m Month) After(other Month) bool {
	return m.Compare(other) > 0
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Mon
}
