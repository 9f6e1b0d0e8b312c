// Package config defines the gharvest configuration and its loading rules.
package config

import (
	"fmt"
	"time"
)

type Config struct {
	// LogLevel controls slog verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	Archive    ArchiveConfig    `koanf:"archive"`
	Storage    StorageConfig    `koanf:"storage"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Cleaning   CleaningConfig   `koanf:"cleaning"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Server     ServerConfig     `koanf:"server"`
}

type ArchiveConfig struct {
	// BaseURL is the root of the hourly archive, one .json.gz per hour.
	BaseURL string `koanf:"base_url"`

	// TimeoutSeconds is the fixed transport timeout for one hour fetch.
	// There is no retry policy: failed hours are skipped and re-runs are
	// the retry mechanism.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

type StorageConfig struct {
	// DataDir holds the single events database. ":memory:" is accepted
	// for tests.
	DataDir string `koanf:"data_dir"`
}

type ExtractionConfig struct {
	// Repos are repository full names (owner/name). Matching is
	// case-insensitive.
	Repos []string `koanf:"repos"`

	// StartDate (inclusive) and EndDate (exclusive), YYYY-MM-DD.
	StartDate string `koanf:"start_date"`
	EndDate   string `koanf:"end_date"`

	// EventTypes is the exact-match event-kind allowlist.
	EventTypes []string `koanf:"event_types"`
}

type CleaningConfig struct {
	// MinTokens drops cleaned records with fewer tokens.
	MinTokens int `koanf:"min_tokens"`

	// DropTrivial enables the optional trivial-phrase filter. The
	// canonical workflow ships with it off.
	DropTrivial bool `koanf:"drop_trivial"`

	// BotPatterns and TrivialPhrases override the built-in vocabularies
	// when non-empty.
	BotPatterns    []string `koanf:"bot_patterns"`
	TrivialPhrases []string `koanf:"trivial_phrases"`
}

type ClassifierConfig struct {
	// BaseURL of the external text-classification service. The service is
	// a black box: texts in, label/score pairs out.
	BaseURL string `koanf:"base_url"`

	// BatchSize is the number of texts sent per request.
	BatchSize int `koanf:"batch_size"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

func defaults() Config {
	return Config{
		LogLevel: "info",
		Archive: ArchiveConfig{
			BaseURL:        "https://data.gharchive.org",
			TimeoutSeconds: 60,
		},
		Storage: StorageConfig{
			DataDir: "./data/raw",
		},
		Extraction: ExtractionConfig{
			Repos:     []string{"expressjs/express"},
			StartDate: "2024-02-01",
			EndDate:   "2024-02-02",
			EventTypes: []string{
				"PullRequestEvent",
				"PullRequestReviewEvent",
				"PullRequestReviewCommentEvent",
				"IssueCommentEvent",
			},
		},
		Cleaning: CleaningConfig{
			MinTokens: 2,
		},
		Classifier: ClassifierConfig{
			BaseURL:   "http://localhost:8901",
			BatchSize: 32,
		},
		Server: ServerConfig{
			Port: 4400,
		},
	}
}

// Timeout returns the archive transport timeout as a duration.
func (a ArchiveConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// DateRange parses the configured extraction window.
func (e ExtractionConfig) DateRange() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", e.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start_date %q: %w", e.StartDate, err)
	}
	end, err = time.Parse("2006-01-02", e.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing end_date %q: %w", e.EndDate, err)
	}
	return start, end, nil
}

// Validate rejects configurations that must fail before any I/O happens:
// empty repository list, empty event-kind list, or a start date at or past
// the end date.
func (c Config) Validate() error {
	if len(c.Extraction.Repos) == 0 {
		return fmt.Errorf("extraction.repos must not be empty")
	}
	if len(c.Extraction.EventTypes) == 0 {
		return fmt.Errorf("extraction.event_types must not be empty")
	}
	start, end, err := c.Extraction.DateRange()
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return fmt.Errorf("extraction start_date %s must be before end_date %s", c.Extraction.StartDate, c.Extraction.EndDate)
	}
	if c.Cleaning.MinTokens < 0 {
		return fmt.Errorf("cleaning.min_tokens must not be negative")
	}
	return nil
}
