// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// huggingFaceAPIBase is the Hub model listing endpoint. Declared as a var
// so tests can substitute an httptest server.
var huggingFaceAPIBase = "https://huggingface.co/api/models"

// huggingFaceModelBase prefixes model ids to form public URLs.
var huggingFaceModelBase = "https://huggingface.co/"

const (
	huggingFacePageSize   = 100
	huggingFaceMaxResults = 100
	// The Hub cannot filter by date or boolean terms, so the adapter
	// over-fetches and filters client-side.
	huggingFaceOverFetch = 3
)

var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// HuggingFaceBackend lists Hub models matching a plain search term and
// keeps those modified inside the window that pass the keyword gate.
type HuggingFaceBackend struct {
	Client    *http.Client
	Token     string
	UserAgent string
	PageDelay time.Duration

	// Query overrides the primary term of the shared query when set.
	Query      string
	RequireAll []string
	RequireAny []string
	Denylist   []string
}

// Name returns the backend identifier.
func (b *HuggingFaceBackend) Name() string { return string(ProviderHuggingFace) }

// Provider returns the backend identifier.
func (b *HuggingFaceBackend) Provider() Provider { return ProviderHuggingFace }

// Search fetches up to three times the requested count sorted by
// downloads, then filters by date, denylist and keywords.
func (b *HuggingFaceBackend) Search(ctx context.Context, req Request) ([]types.Record, error) {
	term := strings.TrimSpace(b.Query)
	if term == "" {
		term = PrimaryTerm(req.Query)
	}
	if term == "" {
		return nil, httputil.Unavailable(b.Name(), 0, errors.New("empty Hugging Face query"))
	}

	max := req.max(huggingFaceMaxResults)
	budget := max * huggingFaceOverFetch
	params := url.Values{
		"search":    {term},
		"limit":     {strconv.Itoa(min(huggingFacePageSize, budget))},
		"sort":      {"downloads"},
		"direction": {"-1"},
		"full":      {"true"},
	}
	next := huggingFaceAPIBase + "?" + params.Encode()

	pacer := httputil.NewPacer(b.PageDelay)
	var models []hfModel
	for next != "" && len(models) < budget {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		page, link, err := b.page(ctx, next)
		if err != nil {
			return nil, err
		}
		models = append(models, page...)
		if len(page) == 0 {
			break
		}
		next = link
	}
	if len(models) > budget {
		models = models[:budget]
	}

	var results []types.Record
	for _, m := range models {
		id := m.ID
		if id == "" {
			id = m.ModelID
		}
		if id == "" {
			continue
		}
		modified := m.modified()
		if !modified.IsZero() && !req.Window.After.IsZero() && !req.Window.Contains(modified) {
			continue
		}
		snippet := m.PipelineTag
		if len(m.Tags) > 0 {
			snippet = strings.TrimSpace(snippet + " " + strings.Join(m.Tags, " "))
		}
		if Denied(b.Denylist, id, snippet) {
			continue
		}
		if !MatchesKeywords(id+" "+snippet, b.RequireAll, b.RequireAny) {
			continue
		}
		r := types.Record{
			Title:       id,
			URL:         huggingFaceModelBase + id,
			Snippet:     snippet,
			Site:        string(types.SourceHuggingFace),
			PublishedAt: formatDate(modified),
		}
		if m.Author != "" {
			r.Authors = []string{m.Author}
		}
		results = append(results, r)
	}

	return finalize(req, max, results), nil
}

func (b *HuggingFaceBackend) page(ctx context.Context, pageURL string) ([]hfModel, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", b.UserAgent)
	if b.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.Token)
	}

	resp, err := fetch(ctx, b.Client, ProviderHuggingFace, httpReq, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var models []hfModel
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, "", httputil.Unavailable(b.Name(), 0, fmt.Errorf("parsing response: %w", err))
	}
	var next string
	if m := linkNextPattern.FindStringSubmatch(resp.Header.Get("Link")); m != nil {
		next = m[1]
	}
	return models, next, nil
}

// Hub model listing JSON structure.
type hfModel struct {
	ID           string   `json:"id"`
	ModelID      string   `json:"modelId"`
	Author       string   `json:"author"`
	PipelineTag  string   `json:"pipeline_tag"`
	Tags         []string `json:"tags"`
	Downloads    int      `json:"downloads"`
	LastModified string   `json:"lastModified"`
	CreatedAt    string   `json:"createdAt"`
}

// modified returns the last modification time, falling back to creation.
// Unparsable timestamps yield the zero time and the model is kept.
func (m hfModel) modified() time.Time {
	for _, s := range []string{m.LastModified, m.CreatedAt} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
