// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// duckDuckGoBase is the HTML-only results endpoint. Declared as a var so
// tests can substitute an httptest server.
var duckDuckGoBase = "https://html.duckduckgo.com/html/"

const duckDuckGoMaxResults = 30

// DuckDuckGoBackend scrapes the DuckDuckGo HTML results page. It is the
// secondary web-search provider used when Google is throttled or absent.
type DuckDuckGoBackend struct {
	Client    *http.Client
	UserAgent string
	PageDelay time.Duration
}

// Name returns the adapter identifier.
func (b *DuckDuckGoBackend) Name() string { return string(ProviderDuckDuckGo) }

// Provider returns the backend identifier.
func (b *DuckDuckGoBackend) Provider() Provider { return ProviderDuckDuckGo }

// Search pages through the HTML results by offset until max results are
// collected or a page yields nothing new.
func (b *DuckDuckGoBackend) Search(ctx context.Context, req Request) ([]types.Record, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, httputil.Unavailable(b.Name(), 0, errors.New("empty query"))
	}
	if req.Site != "" {
		q += " site:" + req.Site
	}

	max := req.max(duckDuckGoMaxResults)
	pacer := httputil.NewPacer(b.PageDelay)
	seen := make(map[string]bool)
	var results []types.Record

	for offset := 0; len(results) < max; {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}

		params := url.Values{"q": {q}}
		if !req.Window.After.IsZero() && req.Window.Before.After(req.Window.After) {
			params.Set("df", req.Window.AfterString()+".."+req.Window.LastDay().Format(types.DateLayout))
		}
		if offset > 0 {
			params.Set("s", strconv.Itoa(offset))
		}

		doc, err := b.page(ctx, duckDuckGoBase+"?"+params.Encode())
		if err != nil {
			return nil, err
		}

		page := parseDuckDuckGo(doc)
		added := 0
		for _, r := range page {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			r.Site = req.Site
			results = append(results, r)
			added++
		}
		if added == 0 {
			break
		}
		offset += len(page)
	}

	return finalize(req, max, results), nil
}

func (b *DuckDuckGoBackend) page(ctx context.Context, pageURL string) (*goquery.Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", b.UserAgent)

	resp, err := fetch(ctx, b.Client, ProviderDuckDuckGo, httpReq, classifyDuckDuckGo)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("parsing document: %w", err))
	}
	// The bot challenge is served with 200.
	if doc.Find(".anomaly-modal__modal, #challenge-form").Length() > 0 {
		return nil, httputil.RateLimited(b.Name(), resp.StatusCode, errors.New("bot challenge served"))
	}
	return doc, nil
}

// classifyDuckDuckGo treats 202 (throttle interstitial) and 429 as
// throttling.
func classifyDuckDuckGo(resp *http.Response) error {
	if resp.StatusCode == http.StatusAccepted {
		return httputil.RateLimited(string(ProviderDuckDuckGo), resp.StatusCode, errors.New("throttle interstitial"))
	}
	return httputil.CheckResponse(string(ProviderDuckDuckGo), resp)
}

func parseDuckDuckGo(doc *goquery.Document) []types.Record {
	var out []types.Record
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		target := resolveDuckDuckGoLink(href)
		if target == "" {
			return
		}
		out = append(out, types.Record{
			Title:   cleanText(link.Text()),
			URL:     target,
			Snippet: cleanText(s.Find(".result__snippet").First().Text()),
		})
	})
	return out
}

// resolveDuckDuckGoLink unwraps the //duckduckgo.com/l/?uddg=<target>
// redirect links used on the HTML page.
func resolveDuckDuckGoLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}
