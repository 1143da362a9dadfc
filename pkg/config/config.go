// Package config loads engine tunables from YAML and environment
// variables. Environment variables override YAML values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all tunables for the query assistance engine.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// DefaultDatabase and DefaultSchema resolve unqualified table
	// references when the caller's context doesn't carry them.
	DefaultDatabase string `yaml:"default_database" env:"QA_DEFAULT_DATABASE" env-default:"FIELD_METADATA"`
	DefaultSchema   string `yaml:"default_schema" env:"QA_DEFAULT_SCHEMA" env-default:"PUBLIC"`

	// Cache configuration for resolved placeholder values.
	Cache CacheConfig `yaml:"cache"`

	// Discovery configuration for placeholder value enumeration.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Matcher thresholds for fuzzy entity matching.
	Matcher MatcherConfig `yaml:"matcher"`

	// Analyzer behavior toggles.
	Analyzer AnalyzerConfig `yaml:"analyzer"`
}

// CacheConfig controls the suggestion value cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"QA_CACHE_TTL" env-default:"5m"`
}

// DiscoveryConfig controls placeholder value discovery against the
// warehouse.
type DiscoveryConfig struct {
	// BatchSize caps concurrent discovery queries to bound backend load.
	BatchSize int `yaml:"batch_size" env:"QA_DISCOVERY_BATCH_SIZE" env-default:"3"`
	// ValueLimit caps how many distinct values one discovery query returns.
	ValueLimit int `yaml:"value_limit" env:"QA_DISCOVERY_VALUE_LIMIT" env-default:"25"`
}

// MatcherConfig controls fuzzy entity matching.
type MatcherConfig struct {
	MinScore   float64 `yaml:"min_score" env:"QA_MATCHER_MIN_SCORE" env-default:"0.25"`
	MaxResults int     `yaml:"max_results" env:"QA_MATCHER_MAX_RESULTS" env-default:"8"`
}

// AnalyzerConfig controls error analysis.
type AnalyzerConfig struct {
	// ProbeRowCounts enables COUNT(*) probes of candidate replacement
	// tables through the injected executor.
	ProbeRowCounts bool `yaml:"probe_row_counts" env:"QA_ANALYZER_PROBE" env-default:"true"`
	// MaxProbes caps how many candidates get probed per analysis.
	MaxProbes int `yaml:"max_probes" env:"QA_ANALYZER_MAX_PROBES" env-default:"5"`
}

// Load reads configuration from the given YAML path (optional) and the
// environment. A missing file is not an error; env vars and defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			return &cfg, cfg.validate()
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}
	return &cfg, cfg.validate()
}

// Default returns the built-in configuration without touching the
// filesystem or environment.
func Default() *Config {
	return &Config{
		Env:             "local",
		DefaultDatabase: "FIELD_METADATA",
		DefaultSchema:   "PUBLIC",
		Cache:           CacheConfig{TTL: 5 * time.Minute},
		Discovery:       DiscoveryConfig{BatchSize: 3, ValueLimit: 25},
		Matcher:         MatcherConfig{MinScore: 0.25, MaxResults: 8},
		Analyzer:        AnalyzerConfig{ProbeRowCounts: true, MaxProbes: 5},
	}
}

func (c *Config) validate() error {
	if c.Discovery.BatchSize < 1 {
		return fmt.Errorf("discovery batch_size must be >= 1, got %d", c.Discovery.BatchSize)
	}
	if c.Matcher.MinScore < 0 || c.Matcher.MinScore > 1 {
		return fmt.Errorf("matcher min_score must be in [0,1], got %f", c.Matcher.MinScore)
	}
	if c.Matcher.MaxResults < 1 {
		return fmt.Errorf("matcher max_results must be >= 1, got %d", c.Matcher.MaxResults)
	}
	return nil
}
