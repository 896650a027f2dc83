// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/weekly-radar/internal/search"
	"github.com/pdiddy/weekly-radar/internal/weekly"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, defaultQuery, cfg.Search.Query)
	assert.Equal(t, []string{"zhihu.com"}, cfg.Search.WebSites)
	assert.Equal(t, 10, cfg.Search.MaxResultsPerSite)
	assert.Equal(t, 1200*time.Millisecond, cfg.Search.PreprintPageDelay)
	assert.Equal(t, 3*time.Second, cfg.Enrich.TranslateDelay)
	assert.Equal(t, 30, cfg.Aggregate.PerSourceCap)
	assert.Equal(t, 100, cfg.Aggregate.OrganizationCap)
	assert.Equal(t, []types.SourceID{types.SourceArxiv, types.SourceGitHub, types.SourceHuggingFace}, cfg.Aggregate.AlwaysShown)
	assert.Equal(t, types.ArchiveFile, cfg.Archive.Backend)
	assert.Equal(t, "2025-12-01", cfg.Backfill.Since)

	assert.Equal(t, []string{"arxiv_daily", "arxiv-daily", "paper-daily", "ai-daily", "ai_daily", "awesome", "blog"},
		cfg.Search.Denylist)
	assert.Equal(t, "VLA", cfg.Search.HuggingFaceQuery)
	assert.Equal(t, []string{"vla"}, cfg.Search.HuggingFaceRequireAll)
	assert.Equal(t, []string{"drive", "robot"}, cfg.Search.HuggingFaceRequireAny)
}

func TestDefaultFiltersDropAggregatorsAndOffTopicModels(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.True(t, search.Denied(cfg.Search.Denylist, "someone/Awesome-VLA", "curated list"))
	assert.True(t, search.Denied(cfg.Search.Denylist, "bot/arxiv-daily", ""))
	assert.False(t, search.Denied(cfg.Search.Denylist, "lab/openvla", "vision-language-action model"))

	all, anyOf := cfg.Search.HuggingFaceRequireAll, cfg.Search.HuggingFaceRequireAny
	assert.True(t, search.MatchesKeywords("lab/openvla-7b robotics", all, anyOf))
	assert.True(t, search.MatchesKeywords("team/VLA-drive planner", all, anyOf))
	assert.False(t, search.MatchesKeywords("team/vla-chat text-generation", all, anyOf))
	assert.False(t, search.MatchesKeywords("lab/robot-policy", all, anyOf))
}

func TestLoadConfigFromYAML(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
search:
  query: "humanoid robots"
  organizations: [DeepMind, "Physical Intelligence"]
  page_delay: 2s
archive:
  backend: sqlite
  data_dir: /tmp/radar
`)))

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "humanoid robots", cfg.Search.Query)
	assert.Equal(t, []string{"DeepMind", "Physical Intelligence"}, cfg.Search.Organizations)
	assert.Equal(t, 2*time.Second, cfg.Search.PageDelay)
	assert.Equal(t, types.ArchiveSQLite, cfg.Archive.Backend)
}

func TestExampleConfigLoads(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile("../../weekly-radar.example.yaml")
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Search.Organizations)
	assert.Contains(t, cfg.Search.Organizations, "Waymo")
	assert.Equal(t, `(VLA OR "vision language action")`, cfg.Search.OrganizationQuery)
	assert.Contains(t, cfg.Search.Denylist, "awesome")
	assert.Equal(t, []string{"drive", "robot"}, cfg.Search.HuggingFaceRequireAny)
	assert.Equal(t, 1200*time.Millisecond, cfg.Search.PreprintPageDelay)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"unknown backend", "archive.backend", "postgres"},
		{"empty query", "search.query", ""},
		{"bad since", "backfill.since", "last monday"},
		{"zero cap", "aggregate.per_source_cap", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			v.Set(tt.key, tt.val)
			_, err := loadConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, weekly.Report{
		WeekKey:        "2025-01-06",
		State:          weekly.Persisted,
		RecordsFetched: 12,
		ItemsWritten:   9,
		SourcesSkipped: []string{"zhihu.com"},
		RateLimited:    []string{"google"},
	})
	out := buf.String()
	assert.Contains(t, out, "week 2025-01-06: persisted (12 records fetched, 9 items written)")
	assert.Contains(t, out, "sources skipped: zhihu.com")
	assert.Contains(t, out, "rate limited: google")
}
