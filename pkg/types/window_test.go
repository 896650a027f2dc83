// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateWindow(t *testing.T) {
	w, err := ParseDateWindow("2025-01-06", "2025-01-13")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", w.AfterString())
	assert.Equal(t, "2025-01-13", w.BeforeString())
	assert.Equal(t, "2025-01-12", w.LastDay().Format(DateLayout))
	assert.Equal(t, "2025-01-06..2025-01-13", w.String())
}

func TestParseDateWindowRejects(t *testing.T) {
	tests := []struct {
		name          string
		after, before string
	}{
		{"reversed", "2025-01-13", "2025-01-06"},
		{"not a date", "yesterday", "2025-01-06"},
		{"timestamp", "2025-01-06T00:00:00Z", "2025-01-13"},
		{"short form", "2025-1-6", "2025-01-13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDateWindow(tt.after, tt.before)
			assert.Error(t, err)
		})
	}
}

func TestDateWindowContains(t *testing.T) {
	w, err := ParseDateWindow("2025-01-06", "2025-01-13")
	require.NoError(t, err)

	assert.True(t, w.Contains(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2025, 1, 12, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC)))
}

func TestEmptyWindowLastDay(t *testing.T) {
	w, err := ParseDateWindow("2025-01-06", "2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, w.After, w.LastDay())
	assert.False(t, w.Contains(w.After))
}

func TestSourceIDValidAndPriority(t *testing.T) {
	assert.True(t, SourceArxiv.Valid())
	assert.True(t, SourceWeb.Valid())
	assert.False(t, SourceID("zhihu.com").Valid())

	assert.Less(t, SourceArxiv.Priority(), SourceOrganizations.Priority())
	assert.Less(t, SourceOrganizations.Priority(), SourceGitHub.Priority())
	assert.Less(t, SourceGitHub.Priority(), SourceHuggingFace.Priority())
	assert.Less(t, SourceHuggingFace.Priority(), SourceWeb.Priority())
	assert.Equal(t, len(KnownSources), SourceID("other").Priority())
}

func TestRecordValid(t *testing.T) {
	assert.True(t, Record{SourceID: SourceGitHub, URL: "https://github.com/a/b"}.Valid())
	assert.False(t, Record{SourceID: SourceGitHub}.Valid())
	assert.False(t, Record{SourceID: "nope", URL: "https://x"}.Valid())
}

func TestSummaryTotalsAndBlock(t *testing.T) {
	s := &WeeklySummary{Sites: []SiteBlock{
		{SourceID: SourceArxiv, Items: []Record{{URL: "a"}, {URL: "b"}}},
		{SourceID: SourceGitHub},
	}}
	assert.Equal(t, 2, s.TotalItems())
	require.NotNil(t, s.Block(SourceGitHub))
	assert.Nil(t, s.Block(SourceWeb))

	var nilSummary *WeeklySummary
	assert.Equal(t, 0, nilSummary.TotalItems())
}
