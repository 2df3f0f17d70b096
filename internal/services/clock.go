package services

import (
	"time"

	"github.com/cardosoccc/bud/internal/core"
)

// Clock provides the current calendar month. Reports take it as a dependency
// so projections are deterministic under test.
type Clock interface {
	CurrentMonth() core.Month
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) CurrentMonth() core.Month {
	return core.MonthOf(time.Now())
}

// FixedClock always reports the same month.
type FixedClock struct {
	Month core.Month
}

func (c FixedClock) CurrentMonth() core.Month {
	return c.Month
}
