// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive is the weekly archive writer: one Weekly Summary per
// week key (the Monday's date), written whole over a Document Store.
// Idempotence is decided by callers through IsPopulated; the writer itself
// always overwrites.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/weekly-radar/pkg/types"
)

// ErrInvalidKey is returned for keys that are not YYYY-MM-DD dates.
var ErrInvalidKey = errors.New("invalid week key")

// Archive reads and writes Weekly Summaries.
type Archive struct {
	store Store
}

// New wraps store.
func New(store Store) *Archive {
	return &Archive{store: store}
}

// Open builds the archive selected by cfg. The returned closer releases
// the store and is never nil.
func Open(cfg types.ArchiveConfig) (*Archive, io.Closer, error) {
	switch cfg.Backend {
	case types.ArchiveSQLite:
		s, err := NewSQLiteStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return New(s), s, nil
	case types.ArchiveFile, "":
		s, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return New(s), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ValidKey reports whether key is a literal YYYY-MM-DD date.
func ValidKey(key string) bool {
	t, err := time.Parse(types.DateLayout, key)
	return err == nil && t.Format(types.DateLayout) == key
}

// Write unconditionally replaces the document stored under key.
func (a *Archive) Write(ctx context.Context, key string, s types.WeeklySummary) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding week %s: %w", key, err)
	}
	return a.store.Put(ctx, key, data)
}

// Read returns the document stored under key; found is false when absent.
func (a *Archive) Read(ctx context.Context, key string) (*types.WeeklySummary, bool, error) {
	if !ValidKey(key) {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	data, found, err := a.store.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	var s types.WeeklySummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, fmt.Errorf("decoding week %s: %w", key, err)
	}
	return &s, true, nil
}

// ListKeys returns every stored week key, most recent first.
func (a *Archive) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := a.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(keys, func(x, y string) int { return strings.Compare(y, x) })
	return keys, nil
}

// WeekInfo is the listing metadata of one stored week.
type WeekInfo struct {
	Key         string `json:"week_key" yaml:"week_key"`
	WeekStart   string `json:"week_start" yaml:"week_start"`
	WeekEnd     string `json:"week_end" yaml:"week_end"`
	LastUpdated string `json:"last_updated" yaml:"last_updated"`
	TotalItems  int    `json:"total_items" yaml:"total_items"`
}

// List returns metadata for every stored week, most recent first.
// Unreadable documents are reported with zero items rather than failing
// the whole listing.
func (a *Archive) List(ctx context.Context) ([]WeekInfo, error) {
	keys, err := a.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WeekInfo, 0, len(keys))
	for _, k := range keys {
		info := WeekInfo{Key: k, WeekStart: k}
		if s, found, err := a.Read(ctx, k); err == nil && found {
			info.WeekEnd = s.WeekEnd
			info.LastUpdated = s.LastUpdated
			info.TotalItems = s.TotalItems()
		}
		out = append(out, info)
	}
	return out, nil
}

// IsPopulated reports whether s has at least one block with at least one
// item. Only populated weeks are skipped by non-forced runs.
func IsPopulated(s *types.WeeklySummary) bool {
	if s == nil {
		return false
	}
	for _, b := range s.Sites {
		if len(b.Items) > 0 {
			return true
		}
	}
	return false
}

// Encode writes v as indented JSON or YAML.
func Encode(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
