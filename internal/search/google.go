// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// googleAPIBase is the Custom Search JSON API endpoint. Declared as a var so
// tests can substitute an httptest server.
var googleAPIBase = "https://www.googleapis.com/customsearch/v1"

const (
	googlePageSize   = 10
	googleMaxResults = 30
)

// googleQuotaReasons are error reasons Google reports with HTTP 403 when a
// quota, not a permission, is exhausted.
var googleQuotaReasons = []string{"rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded", "quotaExceeded"}

// ErrNotConfigured is returned by adapters missing required credentials.
var ErrNotConfigured = errors.New("adapter not configured")

// GoogleBackend queries the Google Custom Search API, restricted to one site
// or unrestricted for organization queries.
type GoogleBackend struct {
	Client    *http.Client
	APIKey    string
	CSEID     string
	Language  string
	UserAgent string
	PageDelay time.Duration
}

// Name returns the adapter identifier.
func (b *GoogleBackend) Name() string { return string(ProviderGoogle) }

// Provider returns the backend shared by every Google-backed source.
func (b *GoogleBackend) Provider() Provider { return ProviderGoogle }

// Search pages through Custom Search results 10 at a time, up to 30.
func (b *GoogleBackend) Search(ctx context.Context, req Request) ([]types.Record, error) {
	if b.APIKey == "" || b.CSEID == "" {
		return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("missing API key or engine id: %w", ErrNotConfigured))
	}
	q := buildGoogleQuery(req)
	if strings.TrimSpace(q) == "" {
		return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("empty query"))
	}

	max := req.max(googleMaxResults)
	pacer := httputil.NewPacer(b.PageDelay)
	var results []types.Record

	for start := 1; len(results) < max; {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		num := min(googlePageSize, max-len(results))

		params := url.Values{
			"key":   {b.APIKey},
			"cx":    {b.CSEID},
			"q":     {q},
			"num":   {strconv.Itoa(num)},
			"start": {strconv.Itoa(start)},
		}
		if b.Language != "" {
			params.Set("hl", b.Language)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, googleAPIBase+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("User-Agent", b.UserAgent)

		resp, err := fetch(ctx, b.Client, ProviderGoogle, httpReq, classifyGoogle)
		if err != nil {
			return nil, err
		}
		var gr googleResponse
		err = json.NewDecoder(resp.Body).Decode(&gr)
		resp.Body.Close()
		if err != nil {
			return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("parsing response: %w", err))
		}

		if len(gr.Items) == 0 {
			break
		}
		for _, item := range gr.Items {
			results = append(results, types.Record{
				Title:   item.Title,
				URL:     item.Link,
				Snippet: item.Snippet,
				Site:    req.Site,
			})
		}
		if len(gr.Items) < num {
			break
		}
		start += len(gr.Items)
	}

	return finalize(req, max, results), nil
}

// buildGoogleQuery appends site and date operators to the shared query.
func buildGoogleQuery(req Request) string {
	parts := []string{strings.TrimSpace(req.Query)}
	if req.Site != "" {
		parts = append(parts, "site:"+req.Site)
	}
	if !req.Window.After.IsZero() {
		parts = append(parts, "after:"+req.Window.AfterString())
	}
	if !req.Window.Before.IsZero() {
		parts = append(parts, "before:"+req.Window.BeforeString())
	}
	return strings.Join(parts, " ")
}

// classifyGoogle treats 429 and quota-reason 403s as throttling.
func classifyGoogle(resp *http.Response) error {
	if resp.StatusCode == http.StatusForbidden {
		body := httputil.BodyExcerpt(resp)
		for _, reason := range googleQuotaReasons {
			if strings.Contains(body, reason) {
				return httputil.RateLimited(string(ProviderGoogle), resp.StatusCode, errors.New(reason))
			}
		}
		return httputil.Unavailable(string(ProviderGoogle), resp.StatusCode, errors.New(body))
	}
	return httputil.CheckResponse(string(ProviderGoogle), resp)
}

// Custom Search API JSON structures.
type googleResponse struct {
	Items []googleItem `json:"items"`
}

type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
