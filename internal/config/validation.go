// internal/config/validation.go
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Validate checks the configuration for completeness. A failed validation
// aborts the run before any network activity.
func (c *Config) Validate() error {
	var errs []ValidationError

	if len(c.Shows) == 0 {
		errs = append(errs, ValidationError{
			Field:   "shows",
			Message: "at least one show must be configured",
		})
	}

	for slug, show := range c.Shows {
		errs = append(errs, show.validate(slug)...)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Value:   c.LogLevel,
			Message: "must be one of debug, info, warn, error",
		})
	}

	if len(errs) == 0 {
		return nil
	}

	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Errorf("configuration validation failed:\n  - %s",
		strings.Join(messages, "\n  - "))
}

func (s ShowConfig) validate(slug string) []ValidationError {
	var errs []ValidationError

	field := func(name string) string { return fmt.Sprintf("shows.%s.%s", slug, name) }

	if s.Name == "" {
		errs = append(errs, ValidationError{Field: field("name"), Message: "display name is required"})
	}
	if s.Acronym == "" {
		errs = append(errs, ValidationError{Field: field("acronym"), Message: "acronym is required"})
	}
	if s.FiresideURL == "" {
		errs = append(errs, ValidationError{Field: field("fireside_url"), Message: "fireside_url is required"})
	} else if !isValidURL(s.FiresideURL) {
		errs = append(errs, ValidationError{Field: field("fireside_url"), Value: s.FiresideURL, Message: "must be an absolute http(s) URL"})
	}
	if s.JBURL != "" && !isValidURL(s.JBURL) {
		errs = append(errs, ValidationError{Field: field("jb_url"), Value: s.JBURL, Message: "must be an absolute http(s) URL"})
	}

	switch s.FeedSource {
	case "", FeedSourceJSON:
	case FeedSourceRSS:
		if s.RSSURL == "" {
			errs = append(errs, ValidationError{Field: field("rss_url"), Message: "rss_url is required for feed_source: rss"})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   field("feed_source"),
			Value:   string(s.FeedSource),
			Message: "must be json or rss",
		})
	}

	return errs
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
