// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	arxivPageSize   = 100
	arxivMaxResults = 300
)

// arxivIDPattern matches new-style identifiers in abs, html and pdf URLs.
var arxivIDPattern = regexp.MustCompile(`arxiv\.org/(?:abs|html|pdf)/(\d{4}\.\d{4,5})`)

// ExtractArxivID returns the versionless arXiv identifier in u, or "" when
// u is not an arXiv paper URL.
func ExtractArxivID(u string) string {
	m := arxivIDPattern.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return m[1]
}

// ArxivPaper is the metadata of one arXiv entry.
type ArxivPaper struct {
	ID        string
	Title     string
	Abstract  string
	URL       string
	Authors   []string
	Published time.Time
}

// ArxivBackend queries the arXiv API. arXiv asks clients to wait at least
// three seconds between bursts; PageDelay spaces successive pages.
type ArxivBackend struct {
	Client    *http.Client
	UserAgent string
	PageDelay time.Duration
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return string(ProviderArxiv) }

// Provider returns the backend identifier.
func (b *ArxivBackend) Provider() Provider { return ProviderArxiv }

// Search runs the boolean query restricted to the submission window and
// pages through results 100 at a time.
func (b *ArxivBackend) Search(ctx context.Context, req Request) ([]types.Record, error) {
	q := ArxivQuery(req.Query)
	if q == "" {
		return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("empty arXiv query"))
	}
	if !req.Window.After.IsZero() {
		q = fmt.Sprintf("%s AND submittedDate:[%s0000 TO %s2359]", q,
			req.Window.After.Format("20060102"), req.Window.LastDay().Format("20060102"))
	}

	max := req.max(arxivMaxResults)
	pacer := httputil.NewPacer(b.PageDelay)
	var results []types.Record

	for start := 0; len(results) < max; {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		size := min(arxivPageSize, max-len(results))
		params := url.Values{
			"search_query": {q},
			"start":        {strconv.Itoa(start)},
			"max_results":  {strconv.Itoa(size)},
			"sortBy":       {"relevance"},
			"sortOrder":    {"descending"},
		}

		papers, err := b.query(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, p := range papers {
			results = append(results, types.Record{
				Title:       p.Title,
				URL:         p.URL,
				Snippet:     p.Abstract,
				Site:        string(types.SourceArxiv),
				PublishedAt: formatDate(p.Published),
				Authors:     p.Authors,
			})
		}
		if len(papers) < size {
			break
		}
		start += size
	}

	return finalize(req, max, results), nil
}

// Lookup fetches metadata for the given identifiers via id_list. Entries
// arXiv cannot resolve are absent from the returned map.
func (b *ArxivBackend) Lookup(ctx context.Context, ids ...string) (map[string]ArxivPaper, error) {
	if len(ids) == 0 {
		return map[string]ArxivPaper{}, nil
	}
	params := url.Values{
		"id_list":     {strings.Join(ids, ",")},
		"max_results": {strconv.Itoa(len(ids))},
	}
	papers, err := b.query(ctx, params)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ArxivPaper, len(papers))
	for _, p := range papers {
		out[p.ID] = p
	}
	return out, nil
}

func (b *ArxivBackend) query(ctx context.Context, params url.Values) ([]ArxivPaper, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", b.UserAgent)

	resp, err := fetch(ctx, b.Client, ProviderArxiv, httpReq, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, httputil.Unavailable(b.Name(), 0, fmt.Errorf("parsing feed: %w", err))
	}
	return parseArxivFeed(feed), nil
}

func parseArxivFeed(feed *gofeed.Feed) []ArxivPaper {
	var out []ArxivPaper
	for _, item := range feed.Items {
		// Malformed queries come back as a single error entry.
		if strings.Contains(item.GUID, "/api/errors") {
			continue
		}
		link := item.Link
		if link == "" {
			link = item.GUID
		}
		id := ExtractArxivID(link)
		if id == "" {
			id = ExtractArxivID(item.GUID)
		}
		if id == "" {
			continue
		}

		p := ArxivPaper{
			ID:       id,
			Title:    cleanText(item.Title),
			Abstract: cleanText(item.Description),
			URL:      link,
		}
		for _, a := range item.Authors {
			if a != nil && a.Name != "" {
				p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
			}
		}
		if item.PublishedParsed != nil {
			p.Published = item.PublishedParsed.UTC()
		}
		out = append(out, p)
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(types.DateLayout)
}
