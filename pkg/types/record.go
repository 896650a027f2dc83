// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the weekly-radar pipeline:
// the normalized Record produced by every source adapter, the date window that
// scopes a run, and the Weekly Summary document persisted per week.
package types

import (
	"slices"
	"time"
)

// SourceID names a logical source. Every record leaving an adapter carries one
// of the known values below.
type SourceID string

const (
	SourceArxiv         SourceID = "arxiv.org"
	SourceOrganizations SourceID = "organizations"
	SourceGitHub        SourceID = "github.com"
	SourceHuggingFace   SourceID = "huggingface.co"
	SourceWeb           SourceID = "web"
)

// KnownSources lists every valid SourceID in presentation priority order.
var KnownSources = []SourceID{
	SourceArxiv,
	SourceOrganizations,
	SourceGitHub,
	SourceHuggingFace,
	SourceWeb,
}

// Valid reports whether s is one of the known sources.
func (s SourceID) Valid() bool {
	return slices.Contains(KnownSources, s)
}

// Priority returns the presentation position of s. Unknown sources sort
// after every known one.
func (s SourceID) Priority() int {
	if i := slices.Index(KnownSources, s); i >= 0 {
		return i
	}
	return len(KnownSources)
}

// Extra carries preprint-only enrichment fields.
type Extra struct {
	// ArxivID is the identifier resolved from the record URL (e.g. "2406.09246").
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// Abstract is the canonical abstract from the metadata API.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// AbstractTranslated is the translated abstract, or the original abstract
	// when translation was unavailable.
	AbstractTranslated string `json:"abstract_translated,omitempty" yaml:"abstract_translated,omitempty"`
}

// IsZero reports whether no enrichment field is set.
func (e Extra) IsZero() bool {
	return e == Extra{}
}

// Record is one discovered item from any source.
type Record struct {
	// SourceID is the logical source that produced the record.
	SourceID SourceID `json:"source_id" yaml:"source_id"`

	// Title is the provider title, overwritten by canonical metadata for preprints.
	Title string `json:"title" yaml:"title"`

	// URL is the natural key of the record within its source.
	URL string `json:"url" yaml:"url"`

	// Snippet is a short provider-supplied description.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Site is the domain a web search was restricted to, if any.
	Site string `json:"site,omitempty" yaml:"site,omitempty"`

	// Rank is the 1-based position within the adapter's accumulated list.
	// Zero means the provider gave no order.
	Rank int `json:"rank,omitempty" yaml:"rank,omitempty"`

	// PublishedAt is the provider timestamp as returned (format varies).
	PublishedAt string `json:"published_at,omitempty" yaml:"published_at,omitempty"`

	// FetchedAt is set by the orchestrator, never by an adapter.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// Authors lists authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Organization is set only for organization-scoped queries.
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`

	// Extra holds preprint enrichment.
	Extra *Extra `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// HasRank reports whether the provider assigned a rank.
func (r Record) HasRank() bool { return r.Rank > 0 }

// Valid reports whether the record may leave an adapter: it needs a URL and
// a known source.
func (r Record) Valid() bool {
	return r.URL != "" && r.SourceID.Valid()
}
