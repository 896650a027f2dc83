// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate folds a run's records into a Weekly Summary: one block
// per source, ordered by provider rank, truncated to a cap and laid out in
// a fixed presentation order.
package aggregate

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/pdiddy/weekly-radar/pkg/types"
)

// Defaults applied to zero Options fields.
const (
	DefaultPerSourceCap    = 30
	DefaultOrganizationCap = 100
	DefaultTopic           = "VLA"
)

// DefaultAlwaysShown are the sources rendered even in an empty week.
var DefaultAlwaysShown = []types.SourceID{
	types.SourceArxiv,
	types.SourceGitHub,
	types.SourceHuggingFace,
}

// Options controls aggregation.
type Options struct {
	Topic           string
	PerSourceCap    int
	OrganizationCap int
	AlwaysShown     []types.SourceID
}

// OptionsFrom converts configuration into Options, applying defaults.
func OptionsFrom(cfg types.AggregateConfig) Options {
	o := Options{
		Topic:           cfg.Topic,
		PerSourceCap:    cfg.PerSourceCap,
		OrganizationCap: cfg.OrganizationCap,
		AlwaysShown:     cfg.AlwaysShown,
	}
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Topic == "" {
		o.Topic = DefaultTopic
	}
	if o.PerSourceCap <= 0 {
		o.PerSourceCap = DefaultPerSourceCap
	}
	if o.OrganizationCap <= 0 {
		o.OrganizationCap = DefaultOrganizationCap
	}
	if o.AlwaysShown == nil {
		o.AlwaysShown = DefaultAlwaysShown
	}
	return o
}

// Aggregate groups records by source and builds the summary. It is pure:
// the same records, options and now always give the same document. Week
// fields are left for the caller.
func Aggregate(records []types.Record, opts Options, now time.Time) types.WeeklySummary {
	opts = opts.withDefaults()

	groups := make(map[types.SourceID][]types.Record)
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		groups[r.SourceID] = append(groups[r.SourceID], r)
	}
	for _, id := range opts.AlwaysShown {
		if _, ok := groups[id]; !ok {
			groups[id] = nil
		}
	}

	ids := make([]types.SourceID, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b types.SourceID) int {
		if c := cmp.Compare(a.Priority(), b.Priority()); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	summary := types.WeeklySummary{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Sites:       make([]types.SiteBlock, 0, len(ids)),
	}
	for _, id := range ids {
		limit := opts.PerSourceCap
		if id == types.SourceOrganizations {
			limit = opts.OrganizationCap
		}
		items := truncate(dedupe(SortByRank(groups[id])), limit)

		block := types.SiteBlock{
			SourceID:    id,
			SiteSummary: siteSummary(id, opts.Topic, len(items)),
			Items:       items,
		}
		if id == types.SourceOrganizations {
			block.OrganizationStats = organizationStats(items)
			block.SiteSummary = organizationSummary(opts.Topic, len(items), len(block.OrganizationStats))
		}
		summary.Sites = append(summary.Sites, block)
	}
	return summary
}

// SortByRank returns a copy of recs sorted ascending by rank. Equal ranks
// from different sites, as in the web block fed by several sites, order
// by site. The sort is stable and records without a rank follow ranked
// ones in arrival order.
func SortByRank(recs []types.Record) []types.Record {
	out := slices.Clone(recs)
	slices.SortStableFunc(out, func(a, b types.Record) int {
		if c := cmp.Compare(rankKey(a), rankKey(b)); c != 0 || !a.HasRank() {
			return c
		}
		return cmp.Compare(a.Site, b.Site)
	})
	return out
}

func rankKey(r types.Record) int {
	if r.HasRank() {
		return r.Rank
	}
	return math.MaxInt
}

// dedupe keeps the first record of every URL.
func dedupe(recs []types.Record) []types.Record {
	seen := make(map[string]bool, len(recs))
	out := recs[:0:0]
	for _, r := range recs {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}

func truncate(recs []types.Record, n int) []types.Record {
	if recs == nil {
		return []types.Record{}
	}
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}

func organizationStats(items []types.Record) map[string]int {
	stats := make(map[string]int)
	for _, r := range items {
		if r.Organization != "" {
			stats[r.Organization]++
		}
	}
	return stats
}

func siteSummary(id types.SourceID, topic string, n int) string {
	if n == 0 {
		return fmt.Sprintf("No %s updates were found on %s this week.", topic, id)
	}
	return fmt.Sprintf("%d %s updates found on %s this week (ordered by search relevance, top %d shown).", n, topic, id, n)
}

func organizationSummary(topic string, n, orgs int) string {
	if n == 0 {
		return fmt.Sprintf("No %s updates from tracked organizations this week.", topic)
	}
	return fmt.Sprintf("%d %s updates from %d organizations this week (ordered by search relevance).", n, topic, orgs)
}
