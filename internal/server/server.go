// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the weekly archive over HTTP: a trigger endpoint
// for scheduled runs, a JSON read API, Prometheus metrics and a health
// check.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/weekly-radar/internal/archive"
	"github.com/pdiddy/weekly-radar/internal/weekly"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Runner processes one week.
type Runner interface {
	RunWeek(ctx context.Context, monday time.Time, force bool) (weekly.Report, error)
}

// Weeks is the read side of the archive.
type Weeks interface {
	List(ctx context.Context) ([]archive.WeekInfo, error)
	Read(ctx context.Context, key string) (*types.WeeklySummary, bool, error)
}

// Server is the HTTP surface.
type Server struct {
	cfg      types.ServerConfig
	runner   Runner
	weeks    Weeks
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	now      func() time.Time

	// running serializes triggered runs.
	running sync.Mutex

	router chi.Router
}

// New builds a Server. gatherer may be nil to disable /metrics; now may be
// nil for time.Now.
func New(cfg types.ServerConfig, runner Runner, weeks Weeks, gatherer prometheus.Gatherer, logger zerolog.Logger, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	s := &Server{
		cfg:      cfg,
		runner:   runner,
		weeks:    weeks,
		gatherer: gatherer,
		logger:   logger.With().Str("component", "http-server").Logger(),
		now:      now,
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/weeks", func(r chi.Router) {
		r.Get("/", s.listWeeks)
		r.Get("/{key}", s.getWeek)
	})

	r.With(s.checkToken).Get("/run-weekly", s.runWeekly)
	r.With(s.checkToken).Post("/run-weekly", s.runWeekly)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.cfg.Addr).Msg("HTTP server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// checkToken enforces the shared secret when one is configured.
func (s *Server) checkToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.TriggerToken != "" {
			got := r.URL.Query().Get("token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.TriggerToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := s.weeks.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("listing weeks failed")
		writeError(w, http.StatusInternalServerError, "listing weeks failed")
		return
	}
	if weeks == nil {
		weeks = []archive.WeekInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeks": weeks})
}

func (s *Server) getWeek(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !archive.ValidKey(key) {
		writeError(w, http.StatusBadRequest, "week key must be YYYY-MM-DD")
		return
	}
	summary, found, err := s.weeks.Read(r.Context(), key)
	if err != nil {
		s.logger.Error().Err(err).Str("week", key).Msg("reading week failed")
		writeError(w, http.StatusInternalServerError, "reading week failed")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "week not found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// runWeekly processes the current week, or ?week=YYYY-MM-DD, and reports
// the outcome. ?force=true recomputes a populated week.
func (s *Server) runWeekly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := s.now()
	if v := q.Get("week"); v != "" {
		t, err := time.Parse(types.DateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "week must be YYYY-MM-DD")
			return
		}
		target = t
	}
	force := false
	if v := q.Get("force"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		force = b
	}

	if !s.running.TryLock() {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer s.running.Unlock()

	rep, err := s.runner.RunWeek(r.Context(), target, force)
	if err != nil {
		s.logger.Error().Err(err).Str("week", rep.WeekKey).Msg("triggered run failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": "error",
			"error":  err.Error(),
			"report": rep,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"report": rep,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
