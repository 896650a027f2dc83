// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/pdiddy/weekly-radar/internal/aggregate"
	"github.com/pdiddy/weekly-radar/internal/archive"
	"github.com/pdiddy/weekly-radar/internal/collect"
	"github.com/pdiddy/weekly-radar/internal/enrich"
	"github.com/pdiddy/weekly-radar/internal/observability"
	"github.com/pdiddy/weekly-radar/internal/search"
	"github.com/pdiddy/weekly-radar/internal/weekly"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

const metricsNamespace = "weekly_radar"

// pipeline is the wired set of components shared by the commands.
type pipeline struct {
	runner   *weekly.Runner
	archive  *archive.Archive
	registry *prometheus.Registry
	closer   io.Closer
}

func (p *pipeline) Close() error {
	return p.closer.Close()
}

// newPipeline wires every stage from cfg.
func newPipeline(cfg types.Config, logger zerolog.Logger) (*pipeline, error) {
	a, closer, err := archive.Open(cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(metricsNamespace, reg)

	searchClient := &http.Client{Timeout: cfg.Search.Timeout}
	plan := collect.BuildPlan(cfg.Search, searchClient)
	if !cfg.Search.HasGoogle() {
		logger.Info().Msg("google search not configured, web chains use duckduckgo only")
	}

	enrichClient := &http.Client{Timeout: cfg.Enrich.Timeout}
	enricher := &enrich.Enricher{
		Resolver: &enrich.ArxivResolver{
			Backend: &search.ArxivBackend{Client: enrichClient, UserAgent: cfg.Enrich.UserAgent},
		},
		SourceLang:     cfg.Enrich.SourceLang,
		TargetLang:     cfg.Enrich.TargetLang,
		MetadataDelay:  cfg.Enrich.MetadataDelay,
		TranslateDelay: cfg.Enrich.TranslateDelay,
		Limit:          cfg.Aggregate.PerSourceCap,
		Logger:         logger.With().Str("component", "enrich").Logger(),
		Metrics:        metrics,
	}
	switch {
	case !cfg.Enrich.Translate:
	case cfg.Enrich.TranslateAPIKey == "":
		logger.Warn().Msg("translation enabled but no translate-api-key, abstracts stay untranslated")
	default:
		enricher.Translator = &enrich.GoogleTranslator{
			Client:    enrichClient,
			APIKey:    cfg.Enrich.TranslateAPIKey,
			UserAgent: cfg.Enrich.UserAgent,
		}
	}

	runner := &weekly.Runner{
		Collector: &collect.Collector{
			Plan:             plan,
			InterSourceDelay: cfg.Search.InterSourceDelay,
			Logger:           logger.With().Str("component", "collect").Logger(),
			Metrics:          metrics,
		},
		Enricher:  enricher,
		Archive:   a,
		Aggregate: aggregate.OptionsFrom(cfg.Aggregate),
		Logger:    logger.With().Str("component", "weekly").Logger(),
		Metrics:   metrics,
	}

	return &pipeline{runner: runner, archive: a, registry: reg, closer: closer}, nil
}

// signalContext is cancelled on interrupt or termination.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// printReport writes the operator-facing summary of one week.
func printReport(w io.Writer, rep weekly.Report) {
	fmt.Fprintf(w, "week %s: %s (%d records fetched", rep.WeekKey, rep.State, rep.RecordsFetched)
	if rep.State == weekly.Persisted {
		fmt.Fprintf(w, ", %d items written", rep.ItemsWritten)
	}
	fmt.Fprintln(w, ")")
	if len(rep.SourcesSkipped) > 0 {
		fmt.Fprintf(w, "  sources skipped: %s\n", strings.Join(rep.SourcesSkipped, ", "))
	}
	if len(rep.RateLimited) > 0 {
		fmt.Fprintf(w, "  rate limited: %s\n", strings.Join(rep.RateLimited, ", "))
	}
}
