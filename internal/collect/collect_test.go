// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/weekly-radar/internal/httputil"
	"github.com/pdiddy/weekly-radar/internal/observability"
	"github.com/pdiddy/weekly-radar/internal/search"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// mockAdapter is a testify mock implementing search.Adapter.
type mockAdapter struct {
	mock.Mock
	name     string
	provider search.Provider
}

func newMockAdapter(name string, p search.Provider) *mockAdapter {
	return &mockAdapter{name: name, provider: p}
}

func (m *mockAdapter) Name() string              { return m.name }
func (m *mockAdapter) Provider() search.Provider { return m.provider }

func (m *mockAdapter) Search(ctx context.Context, req search.Request) ([]types.Record, error) {
	args := m.Called(ctx, req)
	recs, _ := args.Get(0).([]types.Record)
	return recs, args.Error(1)
}

var fixedNow = time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC)

func testWindow(t *testing.T) types.DateWindow {
	t.Helper()
	w, err := types.ParseDateWindow("2025-01-06", "2025-01-13")
	require.NoError(t, err)
	return w
}

func recs(urls ...string) []types.Record {
	var out []types.Record
	for i, u := range urls {
		out = append(out, types.Record{Title: u, URL: u, Rank: i + 1})
	}
	return out
}

func newCollector(plan Plan) *Collector {
	return &Collector{Plan: plan, Logger: zerolog.Nop(), Now: func() time.Time { return fixedNow }}
}

func TestFallbackOnRateLimit(t *testing.T) {
	a := newMockAdapter("google", search.ProviderGoogle)
	b := newMockAdapter("duckduckgo", search.ProviderDuckDuckGo)
	a.On("Search", mock.Anything, mock.Anything).Return(nil, httputil.RateLimited("google", 429, errors.New("slow down"))).Once()
	b.On("Search", mock.Anything, mock.Anything).Return(recs("https://b/1", "https://b/2"), nil).Once()

	c := newCollector(Plan{Sources: []Chain{
		{Source: types.SourceWeb, Label: "zhihu.com", Site: "zhihu.com", Query: "VLA", Adapters: []search.Adapter{a, b}},
	}})
	res := c.Collect(context.Background(), testWindow(t))

	require.Len(t, res.Records, 2)
	assert.Equal(t, "https://b/1", res.Records[0].URL)
	assert.Equal(t, fixedNow, res.Records[0].FetchedAt)
	assert.Equal(t, types.SourceWeb, res.Records[0].SourceID)
	assert.Equal(t, "zhihu.com", res.Records[0].Site)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, Success, res.Outcomes[0].Status)
	assert.Equal(t, "duckduckgo", res.Outcomes[0].Adapter)
	assert.Equal(t, []search.Provider{search.ProviderGoogle}, res.RateLimited)
	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestRateLimitedProviderSkippedForRestOfRun(t *testing.T) {
	google := newMockAdapter("google", search.ProviderGoogle)
	ddg := newMockAdapter("duckduckgo", search.ProviderDuckDuckGo)
	google.On("Search", mock.Anything, mock.Anything).Return(nil, httputil.RateLimited("google", 429, nil)).Once()
	ddg.On("Search", mock.Anything, mock.Anything).Return(recs("https://d/1"), nil).Times(3)

	chains := []Chain{
		{Source: types.SourceWeb, Label: "zhihu.com", Adapters: []search.Adapter{google, ddg}},
		{Source: types.SourceWeb, Label: "36kr.com", Adapters: []search.Adapter{google, ddg}},
	}
	orgs := []Chain{
		{Source: types.SourceOrganizations, Label: "Waymo", Organization: "Waymo", Adapters: []search.Adapter{google, ddg}},
	}
	c := newCollector(Plan{Sources: chains, Organizations: orgs})
	res := c.Collect(context.Background(), testWindow(t))

	// Google is called exactly once across the per-site and organization passes.
	google.AssertNumberOfCalls(t, "Search", 1)
	ddg.AssertNumberOfCalls(t, "Search", 3)
	require.Len(t, res.Records, 3)
	org := res.Records[2]
	assert.Equal(t, "Waymo", org.Organization)
	assert.Equal(t, types.SourceOrganizations, org.SourceID)
	assert.Equal(t, "organizations", org.Site)
}

func TestUnavailableTriesNextAdapter(t *testing.T) {
	a := newMockAdapter("arxiv", search.ProviderArxiv)
	b := newMockAdapter("google", search.ProviderGoogle)
	a.On("Search", mock.Anything, mock.Anything).Return(nil, httputil.Unavailable("arxiv", 500, nil)).Once()
	b.On("Search", mock.Anything, mock.Anything).Return(recs("https://arxiv.org/abs/2501.00001"), nil).Once()

	c := newCollector(Plan{Sources: []Chain{
		{Source: types.SourceArxiv, Label: "arxiv.org", Adapters: []search.Adapter{a, b}},
	}})
	res := c.Collect(context.Background(), testWindow(t))

	require.Len(t, res.Records, 1)
	assert.Empty(t, res.RateLimited, "unavailable does not flag the provider")
}

func TestAllAdaptersFailSkipsSourceOnly(t *testing.T) {
	bad := newMockAdapter("github", search.ProviderGitHub)
	good := newMockAdapter("huggingface", search.ProviderHuggingFace)
	failure := httputil.Unavailable("github", 502, nil)
	bad.On("Search", mock.Anything, mock.Anything).Return(nil, failure).Once()
	good.On("Search", mock.Anything, mock.Anything).Return(recs("https://huggingface.co/x"), nil).Once()

	c := newCollector(Plan{Sources: []Chain{
		{Source: types.SourceGitHub, Label: "github.com", Adapters: []search.Adapter{bad}},
		{Source: types.SourceHuggingFace, Label: "huggingface.co", Adapters: []search.Adapter{good}},
	}})
	res := c.Collect(context.Background(), testWindow(t))

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, Skipped, res.Outcomes[0].Status)
	assert.ErrorIs(t, res.Outcomes[0].Err, failure)
	assert.Equal(t, Success, res.Outcomes[1].Status)
	assert.Equal(t, []string{"github.com"}, res.Skipped())
	require.Len(t, res.Records, 1)
}

func TestFallbackOnEmpty(t *testing.T) {
	arxiv := newMockAdapter("arxiv", search.ProviderArxiv)
	web := newMockAdapter("google", search.ProviderGoogle)
	arxiv.On("Search", mock.Anything, mock.Anything).Return([]types.Record{}, nil).Once()
	web.On("Search", mock.Anything, mock.Anything).Return(recs("https://arxiv.org/abs/2501.00001"), nil).Once()

	c := newCollector(Plan{Sources: []Chain{
		{Source: types.SourceArxiv, Label: "arxiv.org", Adapters: []search.Adapter{arxiv, web}, FallbackOnEmpty: true},
	}})
	res := c.Collect(context.Background(), testWindow(t))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "google", res.Outcomes[0].Adapter)
}

func TestEmptyIsAnAnswerWithoutFallbackOnEmpty(t *testing.T) {
	gh := newMockAdapter("github", search.ProviderGitHub)
	other := newMockAdapter("duckduckgo", search.ProviderDuckDuckGo)
	gh.On("Search", mock.Anything, mock.Anything).Return(nil, nil).Once()

	c := newCollector(Plan{Sources: []Chain{
		{Source: types.SourceGitHub, Label: "github.com", Adapters: []search.Adapter{gh, other}},
	}})
	res := c.Collect(context.Background(), testWindow(t))

	assert.Empty(t, res.Records)
	assert.Equal(t, Success, res.Outcomes[0].Status)
	other.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestEmptyEverywhereWithFallbackOnEmpty(t *testing.T) {
	a := newMockAdapter("arxiv", search.ProviderArxiv)
	b := newMockAdapter("google", search.ProviderGoogle)
	a.On("Search", mock.Anything, mock.Anything).Return(nil, nil).Once()
	b.On("Search", mock.Anything, mock.Anything).Return(nil, httputil.RateLimited("google", 429, nil)).Once()

	c := newCollector(Plan{Sources: []Chain{
		{Source: types.SourceArxiv, Label: "arxiv.org", Adapters: []search.Adapter{a, b}, FallbackOnEmpty: true},
	}})
	res := c.Collect(context.Background(), testWindow(t))
	assert.Equal(t, Success, res.Outcomes[0].Status)
	assert.Equal(t, "arxiv", res.Outcomes[0].Adapter)
}

func TestRequestCarriesChainParameters(t *testing.T) {
	a := newMockAdapter("google", search.ProviderGoogle)
	w := testWindow(t)
	want := search.Request{Source: types.SourceWeb, Query: "VLA", Site: "zhihu.com", MaxResults: 7, Window: w}
	a.On("Search", mock.Anything, want).Return(recs("https://z/1"), nil).Once()

	c := newCollector(Plan{Sources: []Chain{
		{Source: types.SourceWeb, Label: "zhihu.com", Query: "VLA", Site: "zhihu.com", MaxResults: 7, Adapters: []search.Adapter{a}},
	}})
	c.Collect(context.Background(), w)
	a.AssertExpectations(t)
}

func TestMalformedRecordsDropped(t *testing.T) {
	a := newMockAdapter("github", search.ProviderGitHub)
	a.On("Search", mock.Anything, mock.Anything).Return([]types.Record{{Title: "no url"}, {URL: "https://ok"}}, nil).Once()

	c := newCollector(Plan{Sources: []Chain{{Source: types.SourceGitHub, Label: "github.com", Adapters: []search.Adapter{a}}}})
	res := c.Collect(context.Background(), testWindow(t))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "https://ok", res.Records[0].URL)
}

func TestCancelledContextSkipsRemaining(t *testing.T) {
	a := newMockAdapter("github", search.ProviderGitHub)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newCollector(Plan{Sources: []Chain{{Source: types.SourceGitHub, Label: "github.com", Adapters: []search.Adapter{a}}}})
	res := c.Collect(ctx, testWindow(t))
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, Skipped, res.Outcomes[0].Status)
	assert.Equal(t, "cancelled", res.Outcomes[0].Reason)
	a.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestExhaustedChainDoesNotWaitOrCall(t *testing.T) {
	google := newMockAdapter("google", search.ProviderGoogle)
	google.On("Search", mock.Anything, mock.Anything).Return(nil, httputil.RateLimited("google", 429, nil)).Once()

	c := newCollector(Plan{
		Sources:       []Chain{{Source: types.SourceWeb, Label: "zhihu.com", Adapters: []search.Adapter{google}}},
		Organizations: []Chain{{Source: types.SourceOrganizations, Label: "Waymo", Adapters: []search.Adapter{google}}},
	})
	c.InterSourceDelay = time.Hour

	start := time.Now()
	res := c.Collect(context.Background(), testWindow(t))
	assert.Less(t, time.Since(start), time.Minute)
	assert.Equal(t, "all providers rate limited", res.Outcomes[1].Reason)
	google.AssertNumberOfCalls(t, "Search", 1)
}

func TestCollectorMetrics(t *testing.T) {
	m := observability.NewMetrics("collect_test", prometheus.NewRegistry())
	a := newMockAdapter("google", search.ProviderGoogle)
	b := newMockAdapter("duckduckgo", search.ProviderDuckDuckGo)
	a.On("Search", mock.Anything, mock.Anything).Return(nil, httputil.RateLimited("google", 429, nil)).Once()
	b.On("Search", mock.Anything, mock.Anything).Return(recs("https://b/1"), nil).Twice()

	c := newCollector(Plan{Sources: []Chain{
		{Source: types.SourceWeb, Label: "a", Adapters: []search.Adapter{a, b}},
		{Source: types.SourceWeb, Label: "b", Adapters: []search.Adapter{a, b}},
	}})
	c.Metrics = m
	c.Collect(context.Background(), testWindow(t))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("google")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdapterCalls.WithLabelValues("google", "skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AdapterCalls.WithLabelValues("duckduckgo", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsCollected.WithLabelValues("web")))
}

func TestBuildPlan(t *testing.T) {
	cfg := types.SearchConfig{
		Query:                 "(VLA) AND (robot)",
		WebSites:              []string{"zhihu.com", "36kr.com"},
		MaxResultsPerSite:     10,
		Organizations:         []string{"Waymo", "Tesla"},
		GoogleAPIKey:          "k",
		GoogleCSEID:           "cx",
		EnableDuckDuckGo:      true,
		EnableSemanticScholar: true,
	}
	plan := BuildPlan(cfg, http.DefaultClient)

	require.Len(t, plan.Sources, 5)
	assert.Equal(t, 7, plan.Len())

	arxiv := plan.Sources[0]
	assert.Equal(t, types.SourceArxiv, arxiv.Source)
	assert.True(t, arxiv.FallbackOnEmpty)
	var names []string
	for _, a := range arxiv.Adapters {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"arxiv", "semantic_scholar", "google", "duckduckgo"}, names)
	assert.GreaterOrEqual(t, arxiv.Adapters[0].(*search.ArxivBackend).PageDelay, time.Second)

	assert.Len(t, plan.Sources[1].Adapters, 1)
	assert.False(t, plan.Sources[1].FallbackOnEmpty)
	assert.Equal(t, "36kr.com", plan.Sources[4].Site)
	assert.Equal(t, types.SourceWeb, plan.Sources[4].Source)

	waymo := plan.Organizations[0]
	assert.Equal(t, `"Waymo" AND (VLA) AND (robot)`, waymo.Query)
	assert.Empty(t, waymo.Site)
	assert.Equal(t, "Waymo", waymo.Organization)
}

func TestBuildPlanWithoutWebProviders(t *testing.T) {
	plan := BuildPlan(types.SearchConfig{Query: "VLA", WebSites: []string{"zhihu.com"}}, http.DefaultClient)
	require.Len(t, plan.Sources, 4)
	assert.Len(t, plan.Sources[0].Adapters, 1, "arxiv only")
	assert.Empty(t, plan.Sources[3].Adapters)

	res := newCollector(Plan{Sources: plan.Sources[3:]}).Collect(context.Background(), types.DateWindow{})
	assert.Equal(t, "no adapter configured", res.Outcomes[0].Reason)
}

func TestRunState(t *testing.T) {
	s := NewRunState()
	assert.False(t, s.RateLimited(search.ProviderGoogle))
	assert.True(t, s.MarkRateLimited(search.ProviderGoogle))
	assert.False(t, s.MarkRateLimited(search.ProviderGoogle))
	s.MarkRateLimited(search.ProviderGitHub)
	assert.True(t, s.RateLimited(search.ProviderGoogle))
	assert.Equal(t, []search.Provider{search.ProviderGoogle, search.ProviderGitHub}, s.Limited())
}
