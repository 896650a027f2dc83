// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package weekly

import (
	"time"

	"github.com/pdiddy/weekly-radar/pkg/types"
)

// MaxBackfillWeeks bounds the weeks enumerated by one backfill.
const MaxBackfillWeeks = 1000

// WeekStart returns the UTC midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekKey returns the archive key of the week containing t.
func WeekKey(t time.Time) string {
	return WeekStart(t).Format(types.DateLayout)
}

// WindowFor returns the half-open window [monday, monday+7d) of the week
// containing monday.
func WindowFor(monday time.Time) types.DateWindow {
	start := WeekStart(monday)
	return types.DateWindow{After: start, Before: start.AddDate(0, 0, 7)}
}

// WeekEnd returns the Sunday closing the week containing t.
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 6)
}

// WeeksBetween returns every Monday from the week of since through the
// week of until, oldest first, at most MaxBackfillWeeks of them.
func WeeksBetween(since, until time.Time) []time.Time {
	first, last := WeekStart(since), WeekStart(until)
	var weeks []time.Time
	for w := first; !w.After(last) && len(weeks) < MaxBackfillWeeks; w = w.AddDate(0, 0, 7) {
		weeks = append(weeks, w)
	}
	return weeks
}
