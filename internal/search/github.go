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

// githubAPIBase is the repository search endpoint. Declared as a var so
// tests can substitute an httptest server.
var githubAPIBase = "https://api.github.com/search/repositories"

const (
	githubPageSize   = 100
	githubMaxResults = 100
	// Repository search rejects queries with more than five boolean operators.
	githubMaxOperators = 5
)

// GitHubBackend searches repositories updated inside the window.
type GitHubBackend struct {
	Client    *http.Client
	Token     string
	UserAgent string
	PageDelay time.Duration

	// Query overrides the simplified shared query when set.
	Query    string
	MinStars int
	Denylist []string
}

// Name returns the backend identifier.
func (b *GitHubBackend) Name() string { return string(ProviderGitHub) }

// Provider returns the backend identifier.
func (b *GitHubBackend) Provider() Provider { return ProviderGitHub }

// Search pages repository results sorted by last update, dropping
// denylisted repositories before the cap is applied.
func (b *GitHubBackend) Search(ctx context.Context, req Request) ([]types.Record, error) {
	q := b.buildQuery(req)
	if q == "" {
		return nil, httputil.Unavailable(b.Name(), 0, errors.New("empty GitHub query"))
	}

	max := req.max(githubMaxResults)
	pacer := httputil.NewPacer(b.PageDelay)
	var results []types.Record

	for page := 1; len(results) < max; page++ {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		params := url.Values{
			"q":        {q},
			"sort":     {"updated"},
			"order":    {"desc"},
			"per_page": {strconv.Itoa(githubPageSize)},
			"page":     {strconv.Itoa(page)},
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, githubAPIBase+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("User-Agent", b.UserAgent)
		httpReq.Header.Set("Accept", "application/vnd.github+json")
		if b.Token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+b.Token)
		}

		resp, err := fetch(ctx, b.Client, ProviderGitHub, httpReq, classifyGitHub)
		if err != nil {
			return nil, err
		}
		var gr githubResponse
		err = json.NewDecoder(resp.Body).Decode(&gr)
		resp.Body.Close()
		if err != nil {
			return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("parsing response: %w", err))
		}

		for _, repo := range gr.Items {
			if Denied(b.Denylist, repo.FullName, repo.Description, repo.Name) {
				continue
			}
			snippet := repo.Description
			if snippet == "" {
				snippet = repo.Name
			}
			r := types.Record{
				Title:       repo.FullName,
				URL:         repo.HTMLURL,
				Snippet:     snippet,
				Site:        string(types.SourceGitHub),
				PublishedAt: formatDate(repo.PushedAt),
			}
			if repo.Owner.Login != "" {
				r.Authors = []string{repo.Owner.Login}
			}
			results = append(results, r)
		}
		if len(gr.Items) < githubPageSize {
			break
		}
	}

	return finalize(req, max, results), nil
}

func (b *GitHubBackend) buildQuery(req Request) string {
	base := strings.TrimSpace(b.Query)
	if base == "" {
		base = SimplifyBoolean(req.Query, githubMaxOperators)
	}
	if base == "" {
		return ""
	}
	parts := []string{base, "in:name,description,readme"}
	if b.MinStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>%d", b.MinStars))
	}
	if !req.Window.After.IsZero() {
		parts = append(parts, "pushed:"+req.Window.AfterString()+".."+req.Window.LastDay().Format(types.DateLayout))
	}
	return strings.Join(parts, " ")
}

// classifyGitHub reports primary and secondary rate limits. GitHub signals
// both with 403 plus either an exhausted quota header or Retry-After.
func classifyGitHub(resp *http.Response) error {
	if resp.StatusCode == http.StatusForbidden {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.Header.Get("Retry-After") != "" {
			return httputil.RateLimited(string(ProviderGitHub), resp.StatusCode, errors.New(httputil.BodyExcerpt(resp)))
		}
	}
	return httputil.CheckResponse(string(ProviderGitHub), resp)
}

// GitHub search API JSON structures.
type githubResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []githubRepo `json:"items"`
}

type githubRepo struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description"`
	Stars       int       `json:"stargazers_count"`
	PushedAt    time.Time `json:"pushed_at"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}
