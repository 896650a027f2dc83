// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search implements the source adapters. Each adapter queries one
// external provider, pages through its results under the provider's etiquette,
// and normalizes them into types.Record. Failures are reported as
// httputil.ProviderError so the orchestrator can tell throttling apart from
// plain unavailability.
package search

import (
	"context"
	"net/http"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// Provider names an external backend. Several adapters or sources may share
// one provider; rate-limit state is tracked per provider.
type Provider string

const (
	ProviderGoogle          Provider = "google"
	ProviderDuckDuckGo      Provider = "duckduckgo"
	ProviderGitHub          Provider = "github"
	ProviderHuggingFace     Provider = "huggingface"
	ProviderArxiv           Provider = "arxiv"
	ProviderSemanticScholar Provider = "semantic_scholar"
)

// Adapter searches a single provider. Each adapter implements this interface
// per the Strategy pattern.
type Adapter interface {
	Name() string
	Provider() Provider
	Search(ctx context.Context, req Request) ([]types.Record, error)
}

// Request holds the parameters of one adapter call.
type Request struct {
	// Source is stamped on every returned record.
	Source types.SourceID

	// Query is the shared free-text query.
	Query string

	// Site restricts web search to one domain; empty means unrestricted.
	Site string

	// MaxResults bounds the accumulated list.
	MaxResults int

	// Window scopes results to [After, Before).
	Window types.DateWindow
}

const defaultMaxResults = 10

func (r Request) max(limit int) int {
	n := r.MaxResults
	if n <= 0 {
		n = defaultMaxResults
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}

// finalize stamps the source, drops records without a URL, truncates to
// max and assigns 1-based ranks within the adapter's own list.
func finalize(req Request, max int, recs []types.Record) []types.Record {
	out := make([]types.Record, 0, len(recs))
	for _, r := range recs {
		if r.URL == "" {
			continue
		}
		r.SourceID = req.Source
		if !r.Valid() {
			continue
		}
		out = append(out, r)
		if len(out) >= max {
			break
		}
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// fetch executes req with transient retry and classifies the response.
// classify may be nil, in which case httputil.CheckResponse is used. On
// success the caller owns the response body.
func fetch(ctx context.Context, client *http.Client, provider Provider, req *http.Request, classify func(*http.Response) error) (*http.Response, error) {
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, httputil.Unavailable(string(provider), 0, err)
	}
	if classify == nil {
		classify = func(r *http.Response) error { return httputil.CheckResponse(string(provider), r) }
	}
	if err := classify(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}
