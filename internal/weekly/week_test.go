// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package weekly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2025-01-06", "2025-01-06"}, // Monday
		{"2025-01-08", "2025-01-06"},
		{"2025-01-12", "2025-01-06"}, // Sunday
		{"2025-01-13", "2025-01-13"},
		{"2025-01-01", "2024-12-30"}, // crosses the year
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(date(tt.in)).Format("2006-01-02"))
		})
	}
}

func TestWeekStartNormalizesZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// Sunday 22:00 at UTC-5 is Monday 03:00 UTC.
	in := time.Date(2025, 1, 12, 22, 0, 0, 0, loc)
	assert.Equal(t, "2025-01-13", WeekKey(in))
}

func TestWindowFor(t *testing.T) {
	w := WindowFor(date("2025-01-09"))
	assert.Equal(t, "2025-01-06", w.AfterString())
	assert.Equal(t, "2025-01-13", w.BeforeString())
	assert.True(t, w.Contains(date("2025-01-12")))
	assert.False(t, w.Contains(date("2025-01-13")))
	assert.Equal(t, "2025-01-12", WeekEnd(date("2025-01-06")).Format("2006-01-02"))
}

func TestWeeksBetween(t *testing.T) {
	weeks := WeeksBetween(date("2025-01-01"), date("2025-01-20"))
	require.Len(t, weeks, 4)
	assert.Equal(t, "2024-12-30", weeks[0].Format("2006-01-02"))
	assert.Equal(t, "2025-01-20", weeks[3].Format("2006-01-02"))

	assert.Empty(t, WeeksBetween(date("2025-02-01"), date("2025-01-01")))
	assert.Len(t, WeeksBetween(date("1990-01-01"), date("2025-01-01")), MaxBackfillWeeks)
}
