// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect is the fallback orchestrator. It walks a Plan of logical
// sources one after another, tries each chain's adapters in priority order,
// remembers throttled providers for the rest of the run and never lets one
// failing source abort the run.
package collect

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/internal/observability"
	"github.com/pdiddy/weekly-radar/internal/search"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// Status tags an Outcome.
type Status int

const (
	// Success means one adapter answered, possibly with zero records.
	Success Status = iota
	// Skipped means no adapter of the chain answered.
	Skipped
)

func (s Status) String() string {
	if s == Skipped {
		return "skipped"
	}
	return "success"
}

// Outcome is the tagged result of one chain.
type Outcome struct {
	Source types.SourceID
	Label  string
	Status Status

	// Adapter names the adapter that answered, for Success.
	Adapter string

	Records []types.Record

	// Reason explains a Skipped outcome.
	Reason string

	// Err is the last adapter error seen, if any.
	Err error
}

// Result is everything one collection pass produced.
type Result struct {
	Records     []types.Record
	Outcomes    []Outcome
	RateLimited []search.Provider
}

// Skipped returns the labels of chains that contributed no records.
func (r Result) Skipped() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == Skipped || len(o.Records) == 0 {
			out = append(out, o.Label)
		}
	}
	return out
}

// Collector runs a Plan.
type Collector struct {
	Plan Plan

	// InterSourceDelay separates successive chains that make calls.
	InterSourceDelay time.Duration

	Logger  zerolog.Logger
	Metrics *observability.Metrics

	// Now stamps fetched_at; nil means time.Now.
	Now func() time.Time
}

// Collect runs the per-site chains, then the organization chains, sharing
// one RunState. It returns whatever was collected; failures are reported
// through Outcomes and logs.
func (c *Collector) Collect(ctx context.Context, window types.DateWindow) Result {
	state := NewRunState()
	pacer := httputil.NewPacer(c.InterSourceDelay)

	var res Result
	run := func(chains []Chain) {
		for _, chain := range chains {
			var o Outcome
			switch {
			case ctx.Err() != nil:
				o = skipped(chain, "cancelled", ctx.Err())
			case len(chain.Adapters) == 0:
				o = skipped(chain, "no adapter configured", nil)
			case state.exhausted(chain):
				o = skipped(chain, "all providers rate limited", nil)
			default:
				if err := pacer.Wait(ctx); err != nil {
					o = skipped(chain, "cancelled", err)
					break
				}
				o = c.runChain(ctx, state, chain, window)
			}
			c.logOutcome(o)
			c.Metrics.RecordSource(string(o.Source), len(o.Records))
			res.Outcomes = append(res.Outcomes, o)
			res.Records = append(res.Records, o.Records...)
		}
	}

	run(c.Plan.Sources)
	run(c.Plan.Organizations)

	res.RateLimited = state.Limited()
	return res
}

// runChain executes the shared fallback loop for one chain.
func (c *Collector) runChain(ctx context.Context, state *RunState, chain Chain, window types.DateWindow) Outcome {
	log := observability.WithSourceContext(c.Logger, chain.Source, chain.Query).
		With().Str("chain", chain.Label).Logger()

	req := search.Request{
		Source:     chain.Source,
		Query:      chain.Query,
		Site:       chain.Site,
		MaxResults: chain.MaxResults,
		Window:     window,
	}

	var (
		lastErr   error
		emptyFrom string
	)
	for i, a := range chain.Adapters {
		alog := log.With().Str("adapter", a.Name()).Str("provider", string(a.Provider())).Logger()

		if state.RateLimited(a.Provider()) {
			alog.Debug().Msg("provider rate limited earlier in run, skipping adapter")
			c.Metrics.RecordAdapterSkipped(string(a.Provider()))
			continue
		}

		start := time.Now()
		recs, err := a.Search(ctx, req)
		elapsed := time.Since(start).Seconds()

		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return skipped(chain, "cancelled", ctx.Err())
			}
			if httputil.IsRateLimited(err) {
				c.Metrics.RecordAdapterCall(string(a.Provider()), "rate_limited", elapsed)
				if state.MarkRateLimited(a.Provider()) {
					c.Metrics.RecordRateLimited(string(a.Provider()))
				}
				alog.Warn().Err(err).Int("status", httputil.StatusOf(err)).Msg("provider rate limited, flagged for the rest of the run")
				continue
			}
			c.Metrics.RecordAdapterCall(string(a.Provider()), "unavailable", elapsed)
			alog.Warn().Err(err).Int("status", httputil.StatusOf(err)).Msg("adapter failed, trying next")
			continue
		}

		if len(recs) == 0 {
			c.Metrics.RecordAdapterCall(string(a.Provider()), "empty", elapsed)
			if chain.FallbackOnEmpty && i < len(chain.Adapters)-1 {
				alog.Info().Msg("adapter returned no records, trying next")
				emptyFrom = a.Name()
				continue
			}
			return Outcome{Source: chain.Source, Label: chain.Label, Status: Success, Adapter: a.Name()}
		}

		c.Metrics.RecordAdapterCall(string(a.Provider()), "success", elapsed)
		return Outcome{
			Source:  chain.Source,
			Label:   chain.Label,
			Status:  Success,
			Adapter: a.Name(),
			Records: c.stamp(chain, recs),
		}
	}

	if emptyFrom != "" {
		return Outcome{Source: chain.Source, Label: chain.Label, Status: Success, Adapter: emptyFrom, Err: lastErr}
	}
	return skipped(chain, "all adapters failed", lastErr)
}

// stamp sets the orchestrator-owned fields on every record.
func (c *Collector) stamp(chain Chain, recs []types.Record) []types.Record {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	fetched := now().UTC()

	out := make([]types.Record, 0, len(recs))
	for _, r := range recs {
		r.SourceID = chain.Source
		if !r.Valid() {
			c.Logger.Warn().Str("chain", chain.Label).Str("url", r.URL).Msg("dropping malformed record")
			c.Metrics.RecordDropped("invalid_record")
			continue
		}
		r.FetchedAt = fetched
		if chain.Organization != "" {
			r.Organization = chain.Organization
			r.Site = string(types.SourceOrganizations)
		}
		if r.Site == "" {
			r.Site = chain.Site
		}
		out = append(out, r)
	}
	return out
}

func (c *Collector) logOutcome(o Outcome) {
	ev := c.Logger.Info()
	if o.Status == Skipped {
		ev = c.Logger.Warn().Str("reason", o.Reason)
		if o.Err != nil {
			ev = ev.Err(o.Err)
		}
	}
	ev.Str("source", string(o.Source)).
		Str("chain", o.Label).
		Str("adapter", o.Adapter).
		Int("records", len(o.Records)).
		Msgf("source %s", o.Status)
}

func skipped(chain Chain, reason string, err error) Outcome {
	return Outcome{Source: chain.Source, Label: chain.Label, Status: Skipped, Reason: reason, Err: err}
}
