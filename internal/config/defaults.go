package config

// applyDefaults fills unset fields with working defaults so a minimal
// shipyard.yaml (just a project name) produces a runnable pipeline.
func (c *Config) applyDefaults() {
	if c.Project.Root == "" {
		c.Project.Root = "."
	}

	if len(c.Coverage.Command) == 0 {
		c.Coverage.Command = []string{"go", "test", "-coverprofile=coverage.out", "./..."}
	}
	if c.Coverage.Profile == "" {
		c.Coverage.Profile = "coverage.out"
	}
	if c.Coverage.HTMLOutput == "" {
		c.Coverage.HTMLOutput = "coverage.html"
	}

	if c.Docs.Source == "" {
		c.Docs.Source = "docs"
	}
	if c.Docs.Output == "" {
		c.Docs.Output = "./site"
	}
	if c.Docs.Title == "" {
		c.Docs.Title = c.Project.Name + " documentation"
	}
	if c.Docs.BaseURL == "" {
		c.Docs.BaseURL = "/"
	}

	if c.Publish.BuildDir == "" {
		c.Publish.BuildDir = "build"
	}
	if c.Publish.DistDir == "" {
		c.Publish.DistDir = "dist"
	}
	if len(c.Publish.Formats) == 0 {
		c.Publish.Formats = []string{"tar.gz"}
	}

	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":8787"
	}
	if c.Daemon.DataDir == "" {
		c.Daemon.DataDir = "./daemon-data"
	}
	if c.Daemon.NATS.Subject == "" {
		c.Daemon.NATS.Subject = "shipyard.runs"
	}
	if c.Daemon.NATS.Stream == "" {
		c.Daemon.NATS.Stream = "SHIPYARD"
	}

	if c.Retry.Backoff == "" {
		c.Retry.Backoff = string(RetryBackoffLinear)
	}
	if c.Retry.Initial == "" {
		c.Retry.Initial = "1s"
	}
	if c.Retry.Max == "" {
		c.Retry.Max = "30s"
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 2
	}
}
