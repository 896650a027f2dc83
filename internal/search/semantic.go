// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const (
	semanticFields     = "title,abstract,authors,externalIds,publicationDate"
	semanticPageSize   = 100
	semanticMaxResults = 300
)

// SemanticScholarBackend is the secondary preprint provider. Only papers
// with an arXiv identifier are kept so downstream enrichment still applies.
type SemanticScholarBackend struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	PageDelay time.Duration
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return string(ProviderSemanticScholar) }

// Provider returns the backend identifier.
func (b *SemanticScholarBackend) Provider() Provider { return ProviderSemanticScholar }

// Search queries paper search by relevance within the publication window.
func (b *SemanticScholarBackend) Search(ctx context.Context, req Request) ([]types.Record, error) {
	q := PlainQuery(req.Query)
	if q == "" {
		return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("empty Semantic Scholar query"))
	}

	max := req.max(semanticMaxResults)
	pacer := httputil.NewPacer(b.PageDelay)
	var results []types.Record

	for offset := 0; len(results) < max; {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		params := url.Values{
			"query":  {q},
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(semanticPageSize)},
			"fields": {semanticFields},
		}
		if !req.Window.After.IsZero() {
			params.Set("publicationDateOrYear", req.Window.AfterString()+":"+req.Window.LastDay().Format(types.DateLayout))
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		httpReq.Header.Set("User-Agent", b.UserAgent)
		if b.APIKey != "" {
			httpReq.Header.Set("x-api-key", b.APIKey)
		}

		resp, err := fetch(ctx, b.Client, ProviderSemanticScholar, httpReq, nil)
		if err != nil {
			return nil, err
		}
		var sr semanticResponse
		err = json.NewDecoder(resp.Body).Decode(&sr)
		resp.Body.Close()
		if err != nil {
			return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("parsing response: %w", err))
		}

		for _, paper := range sr.Data {
			if paper.ExternalIDs.ArXiv == "" {
				continue
			}
			r := types.Record{
				Title:       cleanText(paper.Title),
				URL:         "https://arxiv.org/abs/" + paper.ExternalIDs.ArXiv,
				Snippet:     cleanText(paper.Abstract),
				Site:        string(types.SourceArxiv),
				PublishedAt: paper.PublicationDate,
			}
			for _, a := range paper.Authors {
				r.Authors = append(r.Authors, a.Name)
			}
			results = append(results, r)
		}

		if len(sr.Data) == 0 || sr.Next == 0 {
			break
		}
		offset = sr.Next
	}

	return finalize(req, max, results), nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Next   int             `json:"next"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	PublicationDate string              `json:"publicationDate"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
