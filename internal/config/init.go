package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Project: ProjectConfig{
			Name: "myproject",
		},
		Coverage: CoverageConfig{
			Command:    []string{"go", "test", "-coverprofile=coverage.out", "./..."},
			Profile:    "coverage.out",
			MinPercent: 80,
			HTML:       true,
		},
		Docs: DocsConfig{
			Source:      "docs",
			Output:      "./site",
			Title:       "My Project Documentation",
			VerifyLinks: true,
		},
		Publish: PublishConfig{
			DistDir:     "dist",
			BuildDir:    "build",
			RegistryURL: "https://registry.example.com/upload",
			Token:       "${SHIPYARD_REGISTRY_TOKEN}",
			Include:     []string{"."},
			Formats:     []string{"tar.gz"},
		},
		Daemon: DaemonConfig{
			Listen: ":8787",
			Schedules: []Schedule{
				{Name: "nightly-coverage", Target: "cov", Interval: "24h"},
			},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
