// Package config loads and validates the shipyard.yaml pipeline configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// durations are stored as strings in YAML ("30s", "24h") and parsed with
// time.ParseDuration; Validate rejects malformed values before accessors run.

// Config represents the application configuration
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Coverage CoverageConfig `yaml:"coverage"`
	Docs     DocsConfig     `yaml:"docs"`
	Publish  PublishConfig  `yaml:"publish"`
	Daemon   DaemonConfig   `yaml:"daemon,omitempty"`
	Retry    RetryConfig    `yaml:"retry,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	History  HistoryConfig  `yaml:"history,omitempty"`
}

// ProjectConfig identifies the project being released.
type ProjectConfig struct {
	Name string `yaml:"name"`
	// Version overrides git-derived versioning when set.
	Version string `yaml:"version,omitempty"`
	// Root is the project root directory; defaults to the current directory.
	Root string `yaml:"root,omitempty"`
}

// CoverageConfig controls the cov target.
type CoverageConfig struct {
	// Command is the test command to run; it must write a Go cover profile to Profile.
	Command []string `yaml:"command,omitempty"`
	Profile string   `yaml:"profile,omitempty"`
	// MinPercent fails the target when total coverage is below it (0 disables).
	MinPercent float64 `yaml:"min_percent,omitempty"`
	HTML       bool    `yaml:"html,omitempty"`
	HTMLOutput string  `yaml:"html_output,omitempty"`
}

// DocsConfig controls the docs target.
type DocsConfig struct {
	Source      string `yaml:"source,omitempty"`
	Output      string `yaml:"output,omitempty"`
	Title       string `yaml:"title,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	VerifyLinks bool   `yaml:"verify_links,omitempty"`
}

// PublishConfig controls the publish target.
type PublishConfig struct {
	BuildDir    string `yaml:"build_dir,omitempty"`
	DistDir     string `yaml:"dist_dir,omitempty"`
	RegistryURL string `yaml:"registry_url,omitempty"`
	Token       string `yaml:"token,omitempty"`
	// Include lists paths (relative to project root) staged into each archive.
	Include []string `yaml:"include,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
	// KeepArtifacts skips the post-upload removal of build/dist directories.
	KeepArtifacts bool `yaml:"keep_artifacts,omitempty"`
	// ArchiveStore retains uploaded archives by content hash when set.
	ArchiveStore string `yaml:"archive_store,omitempty"`
}

// Schedule describes a periodic daemon run of a target.
type Schedule struct {
	Name     string `yaml:"name"`
	Target   string `yaml:"target"`
	Interval string `yaml:"interval"`
}

// IntervalDuration returns the parsed schedule interval. Call after Validate.
func (s Schedule) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		return 0
	}
	return d
}

// NATSConfig configures optional run-event publishing.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	Stream  string `yaml:"stream,omitempty"`
}

// DaemonConfig controls daemon mode.
type DaemonConfig struct {
	Listen    string     `yaml:"listen,omitempty"`
	DataDir   string     `yaml:"data_dir,omitempty"`
	Schedules []Schedule `yaml:"schedules,omitempty"`
	NATS      NATSConfig `yaml:"nats,omitempty"`
}

// RetryConfig controls retry/backoff for retryable steps (uploads).
type RetryConfig struct {
	Backoff    string `yaml:"backoff,omitempty"` // fixed|linear|exponential
	Initial    string `yaml:"initial,omitempty"`
	Max        string `yaml:"max,omitempty"`
	MaxRetries int    `yaml:"max_retries,omitempty"`
}

// InitialDelay returns the parsed initial backoff delay. Call after Validate.
func (r RetryConfig) InitialDelay() time.Duration {
	d, err := time.ParseDuration(r.Initial)
	if err != nil {
		return 0
	}
	return d
}

// MaxDelay returns the parsed backoff delay cap. Call after Validate.
func (r RetryConfig) MaxDelay() time.Duration {
	d, err := time.ParseDuration(r.Max)
	if err != nil {
		return 0
	}
	return d
}

// MetricsConfig enables Prometheus metrics in daemon mode.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
}

// HistoryConfig controls the run-history store.
type HistoryConfig struct {
	// Path to the SQLite database; empty disables history recording.
	Path string `yaml:"path,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
