// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich resolves canonical metadata for preprint records and
// attaches translated abstracts. Enrichment is best effort: a failure
// degrades the record to the best text available and never removes it.
// Only preprint records without a resolvable identifier are dropped.
package enrich

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/internal/observability"
	"github.com/pdiddy/weekly-radar/internal/search"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// Enricher enriches the preprint records of a run.
type Enricher struct {
	Resolver Resolver

	// Translator may be nil, in which case the translated abstract mirrors
	// the original.
	Translator Translator
	SourceLang string
	TargetLang string

	// MetadataDelay and TranslateDelay space successive calls to each
	// capability; the first call of each never waits.
	MetadataDelay  time.Duration
	TranslateDelay time.Duration

	// Limit, when positive, bounds how many preprint records are enriched.
	// Lower-ranked preprints beyond it would be truncated by aggregation
	// and are discarded here to save calls.
	Limit int

	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// Enrich returns records with every preprint record enriched. Other
// records pass through unchanged and keep their relative order.
func (e *Enricher) Enrich(ctx context.Context, records []types.Record) []types.Record {
	var others, preprints []types.Record
	for _, r := range records {
		if r.SourceID == types.SourceArxiv {
			preprints = append(preprints, r)
		} else {
			others = append(others, r)
		}
	}
	preprints = e.selectPreprints(preprints)

	metaPacer := httputil.NewPacer(e.MetadataDelay)
	translatePacer := httputil.NewPacer(e.TranslateDelay)

	out := others
	for _, r := range preprints {
		out = append(out, e.enrichOne(ctx, r, metaPacer, translatePacer))
	}
	return out
}

// selectPreprints drops records without an arXiv id, collapses duplicate
// ids keeping the best-ranked one and applies Limit.
func (e *Enricher) selectPreprints(recs []types.Record) []types.Record {
	slices.SortStableFunc(recs, func(a, b types.Record) int {
		return cmp.Compare(rankKey(a), rankKey(b))
	})

	seen := make(map[string]bool)
	var out []types.Record
	for _, r := range recs {
		id := search.ExtractArxivID(r.URL)
		if id == "" {
			e.Logger.Warn().Str("url", r.URL).Str("title", r.Title).Msg("dropping preprint record without arXiv identifier")
			e.Metrics.RecordDropped("no_arxiv_id")
			continue
		}
		if seen[id] {
			e.Metrics.RecordDropped("duplicate_arxiv_id")
			continue
		}
		seen[id] = true
		if r.Extra == nil {
			r.Extra = &types.Extra{}
		} else {
			x := *r.Extra
			r.Extra = &x
		}
		r.Extra.ArxivID = id
		out = append(out, r)
		if e.Limit > 0 && len(out) >= e.Limit {
			break
		}
	}
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, r types.Record, metaPacer, translatePacer *httputil.Pacer) types.Record {
	log := e.Logger.With().Str("arxiv_id", r.Extra.ArxivID).Logger()

	if e.Resolver == nil {
		return r
	}
	if err := metaPacer.Wait(ctx); err != nil {
		return r
	}
	md, found, err := e.Resolver.Resolve(ctx, r.Extra.ArxivID)
	if err != nil || !found {
		ev := log.Warn()
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("metadata resolution failed, keeping provider text")
		e.Metrics.RecordEnrichmentFailure("metadata")
		return r
	}

	if md.Title != "" {
		r.Title = md.Title
	}
	if len(md.Authors) > 0 {
		r.Authors = md.Authors
	}
	if md.Abstract == "" {
		return r
	}
	r.Extra.Abstract = md.Abstract
	r.Extra.AbstractTranslated = md.Abstract

	if e.Translator == nil {
		return r
	}
	if err := translatePacer.Wait(ctx); err != nil {
		return r
	}
	translated, err := e.Translator.Translate(ctx, md.Abstract, e.SourceLang, e.TargetLang)
	if err != nil || translated == "" {
		log.Warn().Err(err).Msg("translation failed, keeping original abstract")
		e.Metrics.RecordEnrichmentFailure("translate")
		return r
	}
	r.Extra.AbstractTranslated = translated
	return r
}

// rankKey orders ranked records first, by rank.
func rankKey(r types.Record) int {
	if r.HasRank() {
		return r.Rank
	}
	return math.MaxInt
}
