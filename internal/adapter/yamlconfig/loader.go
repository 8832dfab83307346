// Package yamlconfig loads engine configuration and target lists from
// YAML files.
package yamlconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bytemomo/scylla/internal/domain"
)

// LoadConfig reads a configuration file, fills defaults, and validates
// the result. An empty path yields the stock configuration.
func LoadConfig(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTargets reads a YAML target list and validates every entry before
// any scan starts.
func LoadTargets(path string) ([]domain.ScanTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var targets []domain.ScanTarget
	if err := yaml.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("failed to parse targets: %w", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("target list %s is empty", path)
	}

	for i, target := range targets {
		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("invalid target at index %d: %w", i, err)
		}
	}
	return targets, nil
}
