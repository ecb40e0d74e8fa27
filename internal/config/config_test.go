package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shipyard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MinimalConfig(t *testing.T) {
	path := writeConfig(t, `
project:
  name: myproject
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "myproject", cfg.Project.Name)
	assert.Equal(t, ".", cfg.Project.Root)

	// Defaults
	assert.Equal(t, []string{"go", "test", "-coverprofile=coverage.out", "./..."}, cfg.Coverage.Command)
	assert.Equal(t, "coverage.out", cfg.Coverage.Profile)
	assert.Equal(t, "docs", cfg.Docs.Source)
	assert.Equal(t, "./site", cfg.Docs.Output)
	assert.Equal(t, "myproject documentation", cfg.Docs.Title)
	assert.Equal(t, "build", cfg.Publish.BuildDir)
	assert.Equal(t, "dist", cfg.Publish.DistDir)
	assert.Equal(t, []string{"tar.gz"}, cfg.Publish.Formats)
	assert.Equal(t, string(RetryBackoffLinear), cfg.Retry.Backoff)
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("SHIPYARD_TEST_TOKEN", "sekrit")
	path := writeConfig(t, `
project:
  name: myproject
publish:
  registry_url: https://registry.example.com/upload
  token: ${SHIPYARD_TEST_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.Publish.Token)
}

func TestValidate_MissingProjectName(t *testing.T) {
	path := writeConfig(t, `
coverage:
  min_percent: 50
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_BadThreshold(t *testing.T) {
	path := writeConfig(t, `
project:
  name: p
coverage:
  min_percent: 150
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_BadFormat(t *testing.T) {
	path := writeConfig(t, `
project:
  name: p
publish:
  formats: [rar]
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_Schedules(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		wantErr bool
	}{
		{"valid", "    - {name: nightly, target: cov, interval: 24h}", false},
		{"unknown target", "    - {name: x, target: deploy, interval: 24h}", true},
		{"too frequent", "    - {name: x, target: cov, interval: 5s}", true},
		{"bad duration", "    - {name: x, target: cov, interval: sometimes}", true},
		{"missing name", "    - {target: cov, interval: 24h}", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeConfig(t, `
project:
  name: p
daemon:
  schedules:
`+test.snippet+"\n")
			_, err := Load(path)
			if test.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetryDurationAccessors(t *testing.T) {
	path := writeConfig(t, `
project:
  name: p
retry:
  backoff: exponential
  initial: 2s
  max: 1m
  max_retries: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2s", cfg.Retry.Initial)
	assert.Equal(t, float64(2), cfg.Retry.InitialDelay().Seconds())
	assert.Equal(t, float64(60), cfg.Retry.MaxDelay().Seconds())
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
}

func TestNormalizeRetryBackoff(t *testing.T) {
	assert.Equal(t, RetryBackoffFixed, NormalizeRetryBackoff(" Fixed "))
	assert.Equal(t, RetryBackoffLinear, NormalizeRetryBackoff("linear"))
	assert.Equal(t, RetryBackoffExponential, NormalizeRetryBackoff("EXPONENTIAL"))
	assert.Equal(t, RetryBackoffMode(""), NormalizeRetryBackoff("bogus"))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipyard.yaml")

	require.NoError(t, Init(path, false))

	// Written file must round-trip through Load.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "myproject", cfg.Project.Name)

	// Second init without force fails.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}
