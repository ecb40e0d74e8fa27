package config

import (
	"strings"
	"time"

	serrors "git.home.luguber.info/inful/shipyard/internal/errors"
)

// KnownTargets lists the targets a schedule or run may reference.
var KnownTargets = []string{"cov", "docs", "publish", "run"}

// Validate checks the configuration for fields that cannot be defaulted away.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Project.Name) == "" {
		return serrors.ConfigRequired("project.name")
	}

	if c.Coverage.MinPercent < 0 || c.Coverage.MinPercent > 100 {
		return serrors.ValidationFailed("coverage.min_percent", "must be between 0 and 100")
	}

	for _, f := range c.Publish.Formats {
		switch f {
		case "tar.gz", "zip":
		default:
			return serrors.ValidationFailed("publish.formats", "unsupported format "+f)
		}
	}

	if NormalizeRetryBackoff(c.Retry.Backoff) == "" {
		return serrors.ValidationFailed("retry.backoff", "must be fixed, linear or exponential")
	}
	initDur, err := time.ParseDuration(c.Retry.Initial)
	if err != nil {
		return serrors.ValidationFailed("retry.initial", "invalid duration "+c.Retry.Initial)
	}
	maxDur, err := time.ParseDuration(c.Retry.Max)
	if err != nil {
		return serrors.ValidationFailed("retry.max", "invalid duration "+c.Retry.Max)
	}
	if maxDur < initDur {
		return serrors.ValidationFailed("retry.max", "must be >= retry.initial")
	}
	if c.Retry.MaxRetries < 0 {
		return serrors.ValidationFailed("retry.max_retries", "cannot be negative")
	}

	for _, s := range c.Daemon.Schedules {
		if strings.TrimSpace(s.Name) == "" {
			return serrors.ValidationFailed("daemon.schedules", "schedule name is required")
		}
		if !isKnownTarget(s.Target) {
			return serrors.ValidationFailed("daemon.schedules", "unknown target "+s.Target)
		}
		d, err := time.ParseDuration(s.Interval)
		if err != nil {
			return serrors.ValidationFailed("daemon.schedules", "invalid interval "+s.Interval)
		}
		if d < time.Minute {
			return serrors.ValidationFailed("daemon.schedules", "interval must be at least 1m")
		}
	}

	if c.Daemon.NATS.Enabled && strings.TrimSpace(c.Daemon.NATS.URL) == "" {
		return serrors.ConfigRequired("daemon.nats.url")
	}

	return nil
}

func isKnownTarget(t string) bool {
	for _, k := range KnownTargets {
		if t == k {
			return true
		}
	}
	return false
}
