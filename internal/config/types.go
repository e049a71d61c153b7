// internal/config/types.go

// Package config provides configuration loading and validation for the
// harvester. A configuration document enumerates the shows to scrape, the
// username alias table used to reconcile people across shows, and the
// title-to-episode-number exception table for the legacy archive.
package config

import (
	"time"
)

// ScrapeMode selects between a full-archive run and a latest-only run.
type ScrapeMode string

const (
	// ModeFull walks the entire archive of every show.
	ModeFull ScrapeMode = "full"

	// ModeLatest limits each show to its most recent episodes. Used by the
	// scheduled daily run so it finishes in minutes instead of hours.
	ModeLatest ScrapeMode = "latest"
)

// DefaultLatestOnlyLimit is the number of most-recent items processed per
// show in latest-only mode when the configuration does not override it.
const DefaultLatestOnlyLimit = 5

// FeedSource identifies the wire format of a show's primary feed.
type FeedSource string

const (
	FeedSourceJSON FeedSource = "json"
	FeedSourceRSS  FeedSource = "rss"
)

// Config is the root configuration document.
type Config struct {
	// Shows maps show slug to its per-show settings
	Shows map[string]ShowConfig `yaml:"shows" json:"shows"`

	// UsernamesMap maps raw profile-URL slugs to canonical usernames
	UsernamesMap map[string]string `yaml:"usernames_map,omitempty" json:"usernames_map,omitempty"`

	// TitleExceptions maps literal legacy-archive card titles to episode
	// numbers for entries whose titles do not embed a parseable number
	TitleExceptions map[string]float64 `yaml:"title_exceptions,omitempty" json:"title_exceptions,omitempty"`

	// DataDontOverride lists output filenames that a latest-only run must
	// never overwrite, even though latest-only normally refreshes files
	DataDontOverride []string `yaml:"data_dont_override,omitempty" json:"data_dont_override,omitempty"`

	// Scraper holds request/concurrency tuning
	Scraper ScraperSettings `yaml:"scraper,omitempty" json:"scraper,omitempty"`

	// Output holds filesystem output settings
	Output OutputSettings `yaml:"output,omitempty" json:"output,omitempty"`

	// Monitoring holds the optional debug/metrics listener settings
	Monitoring MonitoringSettings `yaml:"monitoring,omitempty" json:"monitoring,omitempty"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// ShowConfig describes one show and its two data sources.
type ShowConfig struct {
	// FiresideURL is the show's site on the podcast host, e.g.
	// "https://coder.show". The primary feed lives at <FiresideURL>/json
	// (or the RSS feed URL for rss-sourced shows).
	FiresideURL string `yaml:"fireside_url" json:"fireside_url"`

	// FiresideSlug is the show's internal slug on the host's feed backend,
	// used to template the chapters endpoint
	FiresideSlug string `yaml:"fireside_slug" json:"fireside_slug"`

	// JBURL is the show's archive on the legacy site, e.g.
	// "https://www.jupiterbroadcasting.com/show/coderradio". Empty means
	// the show has no legacy archive.
	JBURL string `yaml:"jb_url,omitempty" json:"jb_url,omitempty"`

	// Acronym disambiguates identities and sponsors across shows ("cr")
	Acronym string `yaml:"acronym" json:"acronym"`

	// Name is the display name ("Coder Radio")
	Name string `yaml:"name" json:"name"`

	// FeedSource selects the primary feed wire format; defaults to json
	FeedSource FeedSource `yaml:"feed_source,omitempty" json:"feed_source,omitempty"`

	// RSSURL is the feed URL for rss-sourced shows
	RSSURL string `yaml:"rss_url,omitempty" json:"rss_url,omitempty"`
}

// ScraperSettings tunes the HTTP client and per-stage concurrency.
type ScraperSettings struct {
	RequestTimeout  time.Duration `yaml:"request_timeout,omitempty" json:"request_timeout,omitempty"`
	RetryAttempts   int           `yaml:"retry_attempts,omitempty" json:"retry_attempts,omitempty"`
	RetryDelay      time.Duration `yaml:"retry_delay,omitempty" json:"retry_delay,omitempty"`
	RateLimit       float64       `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`
	RateBurst       int           `yaml:"rate_burst,omitempty" json:"rate_burst,omitempty"`
	MaxConcurrency  int           `yaml:"max_concurrency,omitempty" json:"max_concurrency,omitempty"`
	LatestOnlyLimit int           `yaml:"latest_only_limit,omitempty" json:"latest_only_limit,omitempty"`
	UserAgents      []string      `yaml:"user_agents,omitempty" json:"user_agents,omitempty"`
}

// OutputSettings controls where content files are written.
type OutputSettings struct {
	// DataDir is the root the Hugo content tree is written under
	DataDir string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`

	// DumpLegacyIndex writes the full legacy-site index as a JSON document
	// next to the content tree, useful for file migrations and debugging
	DumpLegacyIndex bool `yaml:"dump_legacy_index,omitempty" json:"dump_legacy_index,omitempty"`
}

// MonitoringSettings controls the optional HTTP listener exposing health,
// Prometheus metrics and the legacy-index debug view during long runs.
type MonitoringSettings struct {
	Enabled       bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	ListenAddress string `yaml:"listen_address,omitempty" json:"listen_address,omitempty"`
}
