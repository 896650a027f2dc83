// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "weekly-radar/0.1"

	defaultQuery = `(VLA OR "vision language action") AND (robot OR robotics OR "autonomous driving" OR "self-driving" OR "autonomous vehicle" OR "robotic manipulation" OR "embodied AI" OR "robot control")`
)

var (
	// defaultDenylist drops paper-digest and link-collection accounts from
	// code-hosting and model-hub results.
	defaultDenylist = []string{
		"arxiv_daily", "arxiv-daily", "paper-daily",
		"ai-daily", "ai_daily", "awesome", "blog",
	}

	defaultHuggingFaceRequireAll = []string{"vla"}
	defaultHuggingFaceRequireAny = []string{"drive", "robot"}
)

// setDefaults registers every configuration key so that environment
// variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	for _, section := range []string{"search", "enrich"} {
		v.SetDefault(section+".timeout", defaultTimeout)
		v.SetDefault(section+".user_agent", defaultUserAgent)
	}

	v.SetDefault("search.query", defaultQuery)
	v.SetDefault("search.web_sites", []string{"zhihu.com"})
	v.SetDefault("search.max_results_per_site", 10)
	v.SetDefault("search.organizations", []string{})
	v.SetDefault("search.organization_query", "")
	v.SetDefault("search.github_query", "")
	v.SetDefault("search.github_min_stars", 100)
	v.SetDefault("search.huggingface_query", "VLA")
	v.SetDefault("search.huggingface_require_all", defaultHuggingFaceRequireAll)
	v.SetDefault("search.huggingface_require_any", defaultHuggingFaceRequireAny)
	v.SetDefault("search.denylist", defaultDenylist)
	v.SetDefault("search.web_language", "zh-CN")
	v.SetDefault("search.enable_duckduckgo", true)
	v.SetDefault("search.enable_semantic_scholar", true)
	v.SetDefault("search.page_delay", 500*time.Millisecond)
	v.SetDefault("search.preprint_page_delay", 1200*time.Millisecond)
	v.SetDefault("search.inter_source_delay", time.Second)
	v.SetDefault("search.google_api_key", "")
	v.SetDefault("search.google_cse_id", "")
	v.SetDefault("search.github_token", "")
	v.SetDefault("search.huggingface_token", "")
	v.SetDefault("search.semantic_scholar_api_key", "")

	v.SetDefault("enrich.translate", true)
	v.SetDefault("enrich.source_lang", "en")
	v.SetDefault("enrich.target_lang", "zh-CN")
	v.SetDefault("enrich.metadata_delay", time.Second)
	v.SetDefault("enrich.translate_delay", 3*time.Second)
	v.SetDefault("enrich.translate_api_key", "")

	v.SetDefault("aggregate.topic", "VLA")
	v.SetDefault("aggregate.per_source_cap", 30)
	v.SetDefault("aggregate.organization_cap", 100)
	v.SetDefault("aggregate.always_shown", []string{"arxiv.org", "github.com", "huggingface.co"})

	v.SetDefault("archive.backend", "file")
	v.SetDefault("archive.data_dir", "data")

	v.SetDefault("backfill.since", "2025-12-01")
	v.SetDefault("backfill.week_delay", 2*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.trigger_token", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}
