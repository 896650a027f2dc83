// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every stage that makes
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "weekly-radar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the source adapters and the fallback
// orchestrator.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Query is the shared free-text topic query.
	Query string `json:"query" yaml:"query" mapstructure:"query" validate:"required"`

	// WebSites are the domains searched through the general web-search chain.
	WebSites []string `json:"web_sites" yaml:"web_sites" mapstructure:"web_sites" validate:"dive,hostname"`

	// MaxResultsPerSite bounds each adapter call (default 10).
	MaxResultsPerSite int `json:"max_results_per_site" yaml:"max_results_per_site" mapstructure:"max_results_per_site" validate:"gte=1,lte=100"`

	// Organizations are searched in an extra pass after the per-site sources.
	Organizations []string `json:"organizations" yaml:"organizations" mapstructure:"organizations"`

	// OrganizationQuery is the base topic query combined with each
	// organization name. Empty means Query.
	OrganizationQuery string `json:"organization_query,omitempty" yaml:"organization_query,omitempty" mapstructure:"organization_query"`

	// GitHubQuery overrides the simplified query sent to GitHub.
	GitHubQuery string `json:"github_query,omitempty" yaml:"github_query,omitempty" mapstructure:"github_query"`

	// GitHubMinStars is the popularity threshold (default 100).
	GitHubMinStars int `json:"github_min_stars" yaml:"github_min_stars" mapstructure:"github_min_stars" validate:"gte=0"`

	// HuggingFaceQuery overrides the plain search term sent to the model hub.
	HuggingFaceQuery string `json:"huggingface_query,omitempty" yaml:"huggingface_query,omitempty" mapstructure:"huggingface_query"`

	// HuggingFaceRequireAll lists terms that must all appear in id+summary.
	HuggingFaceRequireAll []string `json:"huggingface_require_all,omitempty" yaml:"huggingface_require_all,omitempty" mapstructure:"huggingface_require_all"`

	// HuggingFaceRequireAny lists terms of which at least one must appear.
	HuggingFaceRequireAny []string `json:"huggingface_require_any,omitempty" yaml:"huggingface_require_any,omitempty" mapstructure:"huggingface_require_any"`

	// Denylist holds case-insensitive substrings of aggregator accounts
	// excluded from code-hosting and model-hub results.
	Denylist []string `json:"denylist" yaml:"denylist" mapstructure:"denylist"`

	// WebLanguage is the interface language hint passed to the web search (hl).
	WebLanguage string `json:"web_language,omitempty" yaml:"web_language,omitempty" mapstructure:"web_language"`

	// EnableDuckDuckGo adds the secondary web-search provider to web chains.
	EnableDuckDuckGo bool `json:"enable_duckduckgo" yaml:"enable_duckduckgo" mapstructure:"enable_duckduckgo"`

	// EnableSemanticScholar adds the secondary preprint adapter.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar" mapstructure:"enable_semantic_scholar"`

	// PageDelay separates page requests of one adapter call (min 500ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay" mapstructure:"page_delay" validate:"gte=0"`

	// PreprintPageDelay separates preprint page requests (min 1s).
	PreprintPageDelay time.Duration `json:"preprint_page_delay" yaml:"preprint_page_delay" mapstructure:"preprint_page_delay" validate:"gte=0"`

	// InterSourceDelay separates source-to-source and organization calls.
	InterSourceDelay time.Duration `json:"inter_source_delay" yaml:"inter_source_delay" mapstructure:"inter_source_delay" validate:"gte=0"`

	GoogleAPIKey          string `json:"-" yaml:"-" mapstructure:"google_api_key"`
	GoogleCSEID           string `json:"-" yaml:"-" mapstructure:"google_cse_id"`
	GitHubToken           string `json:"-" yaml:"-" mapstructure:"github_token"`
	HuggingFaceToken      string `json:"-" yaml:"-" mapstructure:"huggingface_token"`
	SemanticScholarAPIKey string `json:"-" yaml:"-" mapstructure:"semantic_scholar_api_key"`
}

// HasGoogle reports whether the general web-search provider is configured.
func (c SearchConfig) HasGoogle() bool {
	return c.GoogleAPIKey != "" && c.GoogleCSEID != ""
}

// EnrichConfig holds settings for the preprint enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Translate enables abstract translation.
	Translate bool `json:"translate" yaml:"translate" mapstructure:"translate"`

	// SourceLang and TargetLang are translation language codes.
	SourceLang string `json:"source_lang" yaml:"source_lang" mapstructure:"source_lang"`
	TargetLang string `json:"target_lang" yaml:"target_lang" mapstructure:"target_lang"`

	// MetadataDelay separates successive metadata API calls (default 1s).
	MetadataDelay time.Duration `json:"metadata_delay" yaml:"metadata_delay" mapstructure:"metadata_delay" validate:"gte=0"`

	// TranslateDelay separates successive translation calls (default 3s).
	TranslateDelay time.Duration `json:"translate_delay" yaml:"translate_delay" mapstructure:"translate_delay" validate:"gte=0"`

	TranslateAPIKey string `json:"-" yaml:"-" mapstructure:"translate_api_key"`
}

// AggregateConfig holds settings for grouping and truncation.
type AggregateConfig struct {
	// Topic is the human-readable topic name used in block summaries.
	Topic string `json:"topic" yaml:"topic" mapstructure:"topic"`

	// PerSourceCap bounds the items of each block (default 30).
	PerSourceCap int `json:"per_source_cap" yaml:"per_source_cap" mapstructure:"per_source_cap" validate:"gte=1"`

	// OrganizationCap bounds the combined organization block (default 100).
	OrganizationCap int `json:"organization_cap" yaml:"organization_cap" mapstructure:"organization_cap" validate:"gte=1"`

	// AlwaysShown sources get a block even when empty.
	AlwaysShown []SourceID `json:"always_shown" yaml:"always_shown" mapstructure:"always_shown"`
}

// ArchiveBackend selects the Document Store implementation.
type ArchiveBackend string

const (
	ArchiveFile   ArchiveBackend = "file"
	ArchiveSQLite ArchiveBackend = "sqlite"
)

// ArchiveConfig holds settings for the weekly archive.
type ArchiveConfig struct {
	// Backend selects file or sqlite storage.
	Backend ArchiveBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=file sqlite"`

	// DataDir is the base directory; weeks live under DataDir/weeks.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir" validate:"required"`
}

// BackfillConfig holds defaults for the backfill driver.
type BackfillConfig struct {
	// Since is the first date (YYYY-MM-DD) considered by backfill.
	Since string `json:"since" yaml:"since" mapstructure:"since" validate:"omitempty,datetime=2006-01-02"`

	// WeekDelay separates successive weeks.
	WeekDelay time.Duration `json:"week_delay" yaml:"week_delay" mapstructure:"week_delay" validate:"gte=0"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`

	// TriggerToken is the shared secret for the trigger endpoint. Empty
	// disables the check.
	TriggerToken string `json:"-" yaml:"-" mapstructure:"trigger_token"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console pretty"`
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
}

// Config groups all stage configurations.
type Config struct {
	Search    SearchConfig    `json:"search" yaml:"search" mapstructure:"search"`
	Enrich    EnrichConfig    `json:"enrich" yaml:"enrich" mapstructure:"enrich"`
	Aggregate AggregateConfig `json:"aggregate" yaml:"aggregate" mapstructure:"aggregate"`
	Archive   ArchiveConfig   `json:"archive" yaml:"archive" mapstructure:"archive"`
	Backfill  BackfillConfig  `json:"backfill" yaml:"backfill" mapstructure:"backfill"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`
}
