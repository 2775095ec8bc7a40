// Package config holds the scoring configuration, the table-driven
// extraction vocabularies, and the loader that merges a user-provided
// correlator.yaml over the built-in defaults.
package config

import "fmt"

// Top-results bounds for ranking display.
const (
	DefaultTopResults = 20
	MinTopResults     = 5
	MaxTopResults     = 200
)

// Config is the full application configuration.
type Config struct {
	// TrackerURL is the base URL of the ticket tracker.
	TrackerURL string `yaml:"tracker_url" json:"tracker_url"`

	// FetchConcurrency is the worker count of the candidate fetch pool.
	FetchConcurrency int `yaml:"fetch_concurrency" json:"fetch_concurrency"`

	// TopResults is the default ranking display size.
	TopResults int `yaml:"top_results" json:"top_results"`

	Scoring      Scoring      `yaml:"scoring" json:"scoring"`
	Tables       Tables       `yaml:"tables" json:"tables"`
	CustomFields CustomFields `yaml:"custom_fields" json:"custom_fields"`
}

// Default returns the complete built-in configuration.
func Default() *Config {
	return &Config{
		TrackerURL:       "https://hosting-jira.1and1.org",
		FetchConcurrency: 8,
		TopResults:       DefaultTopResults,
		Scoring:          DefaultScoring(),
		Tables:           DefaultTables(),
		CustomFields:     DefaultCustomFields(),
	}
}

// Validate checks every range constraint of the configuration.
func (c *Config) Validate() error {
	if c.TrackerURL == "" {
		return &Error{Field: "tracker_url", Message: "must not be empty"}
	}
	if c.FetchConcurrency < 1 {
		return &Error{Field: "fetch_concurrency", Message: fmt.Sprintf("must be at least 1, got %d", c.FetchConcurrency)}
	}
	if c.TopResults < MinTopResults || c.TopResults > MaxTopResults {
		return &Error{Field: "top_results", Message: fmt.Sprintf("must be in [%d,%d], got %d", MinTopResults, MaxTopResults, c.TopResults)}
	}
	return c.Scoring.Validate()
}
