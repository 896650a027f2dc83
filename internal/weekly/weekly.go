// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package weekly drives one week through the pipeline: collect, enrich,
// aggregate and persist, with the idempotence check and backfill over a
// historical range. A week's document is written whole or not at all, and
// only a persistence failure is fatal.
package weekly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/weekly-radar/internal/aggregate"
	"github.com/pdiddy/weekly-radar/internal/archive"
	"github.com/pdiddy/weekly-radar/internal/collect"
	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/internal/observability"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// ErrPersist marks a failure to write the archive.
var ErrPersist = errors.New("persisting week")

// State is the processing state of one week.
type State int

const (
	Unprocessed State = iota
	Fetching
	Enriching
	Aggregated
	Persisted
	SkippedEmpty
	SkippedAlreadyPopulated
)

var stateNames = map[State]string{
	Unprocessed:             "unprocessed",
	Fetching:                "fetching",
	Enriching:               "enriching",
	Aggregated:              "aggregated",
	Persisted:               "persisted",
	SkippedEmpty:            "skipped_empty",
	SkippedAlreadyPopulated: "skipped_already_populated",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name in JSON reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Collector runs the retrieval pipeline for a window.
type Collector interface {
	Collect(ctx context.Context, window types.DateWindow) collect.Result
}

// Enricher enriches collected records.
type Enricher interface {
	Enrich(ctx context.Context, records []types.Record) []types.Record
}

// Archive is the subset of the archive the driver needs.
type Archive interface {
	Read(ctx context.Context, key string) (*types.WeeklySummary, bool, error)
	Write(ctx context.Context, key string, s types.WeeklySummary) error
}

// Report is what the caller of a run sees.
type Report struct {
	RunID          string   `json:"run_id"`
	WeekKey        string   `json:"week_key"`
	State          State    `json:"state"`
	RecordsFetched int      `json:"records_fetched"`
	ItemsWritten   int      `json:"items_written"`
	SourcesSkipped []string `json:"sources_skipped,omitempty"`
	RateLimited    []string `json:"rate_limited,omitempty"`
}

// Runner processes weeks.
type Runner struct {
	Collector Collector
	// Enricher may be nil.
	Enricher  Enricher
	Archive   Archive
	Aggregate aggregate.Options

	Logger  zerolog.Logger
	Metrics *observability.Metrics

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// RunWeek processes the week containing monday. Unless force is set, a
// week whose stored document is already populated is left untouched.
func (r *Runner) RunWeek(ctx context.Context, monday time.Time, force bool) (Report, error) {
	monday = WeekStart(monday)
	key := monday.Format(types.DateLayout)
	rep := Report{RunID: uuid.NewString(), WeekKey: key, State: Unprocessed}
	log := observability.WithRunContext(r.Logger, rep.RunID, key)

	if !force && r.populated(ctx, log, key) {
		rep.State = SkippedAlreadyPopulated
		log.Info().Msg("week already populated, skipping")
		r.Metrics.RecordWeek(rep.State.String(), 0)
		return rep, nil
	}
	return r.process(ctx, log, monday, rep)
}

// populated reads the stored document. A read failure is logged and
// treated as absent so the week is recomputed.
func (r *Runner) populated(ctx context.Context, log zerolog.Logger, key string) bool {
	existing, found, err := r.Archive.Read(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("reading stored week failed, recomputing")
		return false
	}
	return found && archive.IsPopulated(existing)
}

func (r *Runner) process(ctx context.Context, log zerolog.Logger, monday time.Time, rep Report) (Report, error) {
	start := time.Now()
	defer func() {
		r.Metrics.RecordWeek(rep.State.String(), time.Since(start).Seconds())
	}()

	window := WindowFor(monday)

	rep.State = Fetching
	log.Info().Str("window", window.String()).Msg("collecting")
	res := r.Collector.Collect(ctx, window)
	rep.RecordsFetched = len(res.Records)
	rep.SourcesSkipped = res.Skipped()
	for _, p := range res.RateLimited {
		rep.RateLimited = append(rep.RateLimited, string(p))
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	if len(res.Records) == 0 {
		rep.State = SkippedEmpty
		log.Warn().Strs("sources_skipped", rep.SourcesSkipped).Msg("no records found, week left unpopulated")
		return rep, nil
	}

	records := res.Records
	if r.Enricher != nil {
		rep.State = Enriching
		records = r.Enricher.Enrich(ctx, records)
	}

	now := r.now()
	summary := aggregate.Aggregate(records, r.Aggregate, now)
	summary.WeekStart = rep.WeekKey
	summary.WeekEnd = WeekEnd(monday).Format(types.DateLayout)
	summary.LastUpdated = now.Format(types.DateLayout)
	rep.State = Aggregated

	if summary.TotalItems() == 0 {
		rep.State = SkippedEmpty
		log.Warn().Int("records_fetched", rep.RecordsFetched).Msg("no records survived enrichment, week left unpopulated")
		return rep, nil
	}

	if err := r.Archive.Write(ctx, rep.WeekKey, summary); err != nil {
		log.Error().Err(err).Msg("writing week failed")
		return rep, fmt.Errorf("%w %s: %w", ErrPersist, rep.WeekKey, err)
	}
	rep.State = Persisted
	rep.ItemsWritten = summary.TotalItems()
	log.Info().
		Int("records_fetched", rep.RecordsFetched).
		Int("items_written", rep.ItemsWritten).
		Strs("sources_skipped", rep.SourcesSkipped).
		Msg("week persisted")
	return rep, nil
}

// BackfillOptions controls a backfill.
type BackfillOptions struct {
	// Since is any date inside the first week considered.
	Since time.Time

	// Until is any date inside the last week considered; zero means now.
	Until time.Time

	// MaxWeeks, when positive, keeps only the most recent N weeks that
	// need processing. Populated weeks do not count unless Force is set.
	MaxWeeks int

	// Force recomputes populated weeks too.
	Force bool

	// WeekDelay separates weeks that run the pipeline.
	WeekDelay time.Duration
}

// BackfillReport summarizes a backfill.
type BackfillReport struct {
	Weeks     []Report `json:"weeks"`
	Persisted int      `json:"persisted"`
	Skipped   int      `json:"skipped"`
	Empty     int      `json:"empty"`
}

// Backfill runs every Monday-aligned week from Since through Until,
// oldest first, recomputing only absent or empty weeks unless forced.
// Populated weeks are reported before the weeks that run the pipeline. It
// stops at the first persistence failure or cancellation and returns the
// weeks processed so far.
func (r *Runner) Backfill(ctx context.Context, opts BackfillOptions) (BackfillReport, error) {
	until := opts.Until
	if until.IsZero() {
		until = r.now()
	}
	weeks := WeeksBetween(opts.Since, until)
	if len(weeks) == MaxBackfillWeeks && WeekStart(until).After(weeks[len(weeks)-1]) {
		r.Logger.Warn().Int("max_weeks", MaxBackfillWeeks).Msg("backfill range truncated")
	}

	var br BackfillReport
	var candidates []time.Time
	for _, monday := range weeks {
		if err := ctx.Err(); err != nil {
			return br, err
		}
		key := monday.Format(types.DateLayout)
		if opts.Force {
			candidates = append(candidates, monday)
			continue
		}
		rep := Report{RunID: uuid.NewString(), WeekKey: key, State: SkippedAlreadyPopulated}
		log := observability.WithRunContext(r.Logger, rep.RunID, key)
		if !r.populated(ctx, log, key) {
			candidates = append(candidates, monday)
			continue
		}
		log.Info().Msg("week already populated, skipping")
		r.Metrics.RecordWeek(rep.State.String(), 0)
		br.add(rep)
	}
	if opts.MaxWeeks > 0 && len(candidates) > opts.MaxWeeks {
		candidates = candidates[len(candidates)-opts.MaxWeeks:]
	}

	r.Logger.Info().
		Int("weeks", len(weeks)).
		Int("candidates", len(candidates)).
		Bool("force", opts.Force).
		Msg("starting backfill")

	pacer := httputil.NewPacer(opts.WeekDelay)
	for _, monday := range candidates {
		if err := ctx.Err(); err != nil {
			return br, err
		}
		key := monday.Format(types.DateLayout)
		rep := Report{RunID: uuid.NewString(), WeekKey: key, State: Unprocessed}
		log := observability.WithRunContext(r.Logger, rep.RunID, key)

		if err := pacer.Wait(ctx); err != nil {
			return br, err
		}
		rep, err := r.process(ctx, log, monday, rep)
		br.add(rep)
		if err != nil {
			return br, err
		}
	}
	return br, nil
}

func (b *BackfillReport) add(rep Report) {
	b.Weeks = append(b.Weeks, rep)
	switch rep.State {
	case Persisted:
		b.Persisted++
	case SkippedAlreadyPopulated:
		b.Skipped++
	case SkippedEmpty:
		b.Empty++
	}
}
