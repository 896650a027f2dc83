// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// DateWindow is the half-open range [After, Before) of calendar dates that
// scopes every adapter call. Both bounds are UTC midnights.
type DateWindow struct {
	After  time.Time
	Before time.Time
}

// ParseDateWindow parses two literal YYYY-MM-DD dates and checks after <= before.
func ParseDateWindow(after, before string) (DateWindow, error) {
	a, err := time.Parse(DateLayout, after)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid after date %q: %w", after, err)
	}
	b, err := time.Parse(DateLayout, before)
	if err != nil {
		return DateWindow{}, fmt.Errorf("invalid before date %q: %w", before, err)
	}
	if b.Before(a) {
		return DateWindow{}, fmt.Errorf("date window %s..%s: after is later than before", after, before)
	}
	return DateWindow{After: a, Before: b}, nil
}

// AfterString returns the lower bound as YYYY-MM-DD.
func (w DateWindow) AfterString() string { return w.After.Format(DateLayout) }

// BeforeString returns the exclusive upper bound as YYYY-MM-DD.
func (w DateWindow) BeforeString() string { return w.Before.Format(DateLayout) }

// LastDay returns the last calendar day inside the window (Before - 1 day).
// For an empty window it returns After.
func (w DateWindow) LastDay() time.Time {
	if !w.Before.After(w.After) {
		return w.After
	}
	return w.Before.AddDate(0, 0, -1)
}

// Contains reports whether t falls on a calendar day inside [After, Before).
func (w DateWindow) Contains(t time.Time) bool {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(w.After) && day.Before(w.Before)
}

// String formats the window as "after..before".
func (w DateWindow) String() string {
	return w.AfterString() + ".." + w.BeforeString()
}
