// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

const sampleSemanticResponse = `{"total":3,"offset":0,"data":[
 {"paperId":"a","title":"Drive VLA","abstract":"abs a","publicationDate":"2025-01-07",
  "authors":[{"name":"A. One"}],"externalIds":{"ArXiv":"2501.00001"}},
 {"paperId":"b","title":"Journal only","abstract":"abs b","publicationDate":"2025-01-08",
  "authors":[],"externalIds":{"DOI":"10.1/x"}},
 {"paperId":"c","title":"Robot VLA","abstract":"abs c","publicationDate":"2025-01-09",
  "authors":[{"name":"C. Three"}],"externalIds":{"ArXiv":"2501.00003"}}
]}`

func TestSemanticSearchKeepsArxivPapers(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleSemanticResponse)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	w, err := types.ParseDateWindow("2025-01-06", "2025-01-13")
	if err != nil {
		t.Fatal(err)
	}
	b := &SemanticScholarBackend{Client: ts.Client(), APIKey: "test-key-123"}
	got, err := b.Search(context.Background(), Request{Source: types.SourceArxiv, Query: testQuery, MaxResults: 10, Window: w})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(got))
	}
	if got[0].URL != "https://arxiv.org/abs/2501.00001" {
		t.Errorf("URL = %q", got[0].URL)
	}
	if got[1].Rank != 2 {
		t.Errorf("Rank = %d, want 2", got[1].Rank)
	}
	if got[1].PublishedAt != "2025-01-09" {
		t.Errorf("PublishedAt = %q", got[1].PublishedAt)
	}

	q := captured.URL.Query()
	if v := q.Get("query"); v != "VLA drive" {
		t.Errorf("query param = %q, want %q", v, "VLA drive")
	}
	if v := q.Get("publicationDateOrYear"); v != "2025-01-06:2025-01-12" {
		t.Errorf("publicationDateOrYear = %q", v)
	}
	if v := captured.Header.Get("x-api-key"); v != "test-key-123" {
		t.Errorf("x-api-key = %q", v)
	}
}

func TestSemanticSearchFollowsNextOffset(t *testing.T) {
	var offsets []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		off := r.URL.Query().Get("offset")
		offsets = append(offsets, off)
		if off == "0" {
			fmt.Fprint(w, `{"total":2,"offset":0,"next":100,"data":[{"title":"p1","externalIds":{"ArXiv":"2501.00001"}}]}`)
			return
		}
		fmt.Fprint(w, `{"total":2,"offset":100,"data":[{"title":"p2","externalIds":{"ArXiv":"2501.00002"}}]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b := &SemanticScholarBackend{Client: ts.Client()}
	got, err := b.Search(context.Background(), Request{Source: types.SourceArxiv, Query: "VLA", MaxResults: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(got))
	}
	if len(offsets) != 2 || offsets[1] != "100" {
		t.Errorf("offsets = %v, want [0 100]", offsets)
	}
}

func TestSemanticSearchRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b := &SemanticScholarBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), Request{Source: types.SourceArxiv, Query: "VLA"})
	if !httputil.IsRateLimited(err) {
		t.Errorf("err = %v, want rate limited", err)
	}
}
