package domain

import (
	"fmt"
	"time"
)

// ScannerSettings configure how the external probing tool is driven.
type ScannerSettings struct {
	// Binary is the probing tool executable, resolved via PATH.
	Binary string `yaml:"binary,omitempty"`

	// RateLimit is the ceiling of scan operations per rolling minute.
	RateLimit int `yaml:"rate_limit,omitempty"`

	// DefaultIntensity applies when a request does not specify one.
	DefaultIntensity ScanIntensity `yaml:"default_intensity,omitempty"`
}

// NarrativeSettings configure the optional narrative-analysis collaborator.
type NarrativeSettings struct {
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model,omitempty"`
	Authorization string        `yaml:"authorization,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	MaxTokens     int           `yaml:"max_tokens,omitempty"`
}

// LogSettings configure structured logging.
type LogSettings struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// Config is the full engine configuration.
type Config struct {
	Scanner   ScannerSettings    `yaml:"scanner,omitempty"`
	Risk      RiskWeights        `yaml:"risk,omitempty"`
	Narrative *NarrativeSettings `yaml:"narrative,omitempty"`
	Log       LogSettings        `yaml:"log,omitempty"`
}

// DefaultConfig returns a configuration with stock values.
func DefaultConfig() Config {
	return Config{
		Scanner: ScannerSettings{
			Binary:           "nmap",
			RateLimit:        100,
			DefaultIntensity: IntensityNormal,
		},
		Risk: DefaultRiskWeights(),
		Log:  LogSettings{Level: "info"},
	}
}

// ApplyDefaults fills unset fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.Scanner.Binary == "" {
		c.Scanner.Binary = def.Scanner.Binary
	}
	if c.Scanner.RateLimit == 0 {
		c.Scanner.RateLimit = def.Scanner.RateLimit
	}
	if c.Scanner.DefaultIntensity == "" {
		c.Scanner.DefaultIntensity = def.Scanner.DefaultIntensity
	}
	c.Risk.ApplyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Scanner.RateLimit < 1 {
		return fmt.Errorf("scanner.rate_limit must be at least 1, got %d", c.Scanner.RateLimit)
	}
	switch c.Scanner.DefaultIntensity {
	case IntensityLight, IntensityNormal, IntensityAggressive, IntensityInsane:
	default:
		return fmt.Errorf("scanner.default_intensity %q is not a known intensity", c.Scanner.DefaultIntensity)
	}
	if c.Narrative != nil && c.Narrative.Endpoint == "" {
		return fmt.Errorf("narrative.endpoint is required when narrative analysis is configured")
	}
	return nil
}
