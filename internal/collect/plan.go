// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/weekly-radar/internal/search"
	"github.com/pdiddy/weekly-radar/pkg/types"
)

// minPreprintPageDelay bounds arXiv paging to roughly one request per second.
const minPreprintPageDelay = time.Second

// Chain is one logical source: an ordered list of adapters tried until one
// succeeds.
type Chain struct {
	// Source is stamped on every record of the chain.
	Source types.SourceID

	// Label identifies the chain in logs and reports, e.g. the site or
	// organization name.
	Label string

	// Query, Site and MaxResults parameterize every adapter call.
	Query      string
	Site       string
	MaxResults int

	// Organization is set on every record of an organization chain.
	Organization string

	// Adapters are tried in order.
	Adapters []search.Adapter

	// FallbackOnEmpty moves on to the next adapter when one returns no
	// records. Without it an empty result is a valid answer.
	FallbackOnEmpty bool
}

// Plan is the declarative run layout: per-site chains first, then one
// chain per organization.
type Plan struct {
	Sources       []Chain
	Organizations []Chain
}

// Len returns the number of chains in the plan.
func (p Plan) Len() int { return len(p.Sources) + len(p.Organizations) }

// BuildPlan wires the configured adapters into chains. The preprint chain
// degrades from the arXiv API to Semantic Scholar and then to site-scoped
// web search; code-hosting and model-hub chains have a single adapter.
func BuildPlan(cfg types.SearchConfig, client *http.Client) Plan {
	ua := cfg.UserAgent
	preprintDelay := cfg.PreprintPageDelay
	if preprintDelay < minPreprintPageDelay {
		preprintDelay = minPreprintPageDelay
	}

	var web []search.Adapter
	if cfg.HasGoogle() {
		web = append(web, &search.GoogleBackend{
			Client:    client,
			APIKey:    cfg.GoogleAPIKey,
			CSEID:     cfg.GoogleCSEID,
			Language:  cfg.WebLanguage,
			UserAgent: ua,
			PageDelay: cfg.PageDelay,
		})
	}
	if cfg.EnableDuckDuckGo {
		web = append(web, &search.DuckDuckGoBackend{Client: client, UserAgent: ua, PageDelay: cfg.PageDelay})
	}

	preprint := []search.Adapter{&search.ArxivBackend{Client: client, UserAgent: ua, PageDelay: preprintDelay}}
	if cfg.EnableSemanticScholar {
		preprint = append(preprint, &search.SemanticScholarBackend{
			Client:    client,
			APIKey:    cfg.SemanticScholarAPIKey,
			UserAgent: ua,
			PageDelay: preprintDelay,
		})
	}
	preprint = append(preprint, web...)

	plan := Plan{Sources: []Chain{
		{
			Source: types.SourceArxiv, Label: string(types.SourceArxiv),
			Query: cfg.Query, Site: string(types.SourceArxiv), MaxResults: cfg.MaxResultsPerSite,
			Adapters: preprint, FallbackOnEmpty: true,
		},
		{
			Source: types.SourceGitHub, Label: string(types.SourceGitHub),
			Query: cfg.Query, Site: string(types.SourceGitHub), MaxResults: cfg.MaxResultsPerSite,
			Adapters: []search.Adapter{&search.GitHubBackend{
				Client: client, Token: cfg.GitHubToken, UserAgent: ua, PageDelay: cfg.PageDelay,
				Query: cfg.GitHubQuery, MinStars: cfg.GitHubMinStars, Denylist: cfg.Denylist,
			}},
		},
		{
			Source: types.SourceHuggingFace, Label: string(types.SourceHuggingFace),
			Query: cfg.Query, Site: string(types.SourceHuggingFace), MaxResults: cfg.MaxResultsPerSite,
			Adapters: []search.Adapter{&search.HuggingFaceBackend{
				Client: client, Token: cfg.HuggingFaceToken, UserAgent: ua, PageDelay: cfg.PageDelay,
				Query: cfg.HuggingFaceQuery, RequireAll: cfg.HuggingFaceRequireAll,
				RequireAny: cfg.HuggingFaceRequireAny, Denylist: cfg.Denylist,
			}},
		},
	}}

	for _, site := range cfg.WebSites {
		plan.Sources = append(plan.Sources, Chain{
			Source: types.SourceWeb, Label: site,
			Query: cfg.Query, Site: site, MaxResults: cfg.MaxResultsPerSite,
			Adapters: web,
		})
	}

	base := cfg.OrganizationQuery
	if base == "" {
		base = cfg.Query
	}
	for _, org := range cfg.Organizations {
		plan.Organizations = append(plan.Organizations, Chain{
			Source: types.SourceOrganizations, Label: org,
			Query: OrganizationQuery(org, base), MaxResults: cfg.MaxResultsPerSite,
			Organization: org, Adapters: web,
		})
	}
	return plan
}

// OrganizationQuery scopes the base topic query to one organization name.
func OrganizationQuery(org, base string) string {
	return fmt.Sprintf("%q AND %s", org, base)
}
