package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultWidth is the counter width used when none is configured.
const DefaultWidth = 5

// Config represents padcount configuration options
type Config struct {
	// Width is the number of digits counters are padded to
	Width int `yaml:"width"`

	// DryRun announces renames without performing them
	DryRun bool `yaml:"dry_run"`

	// LogLevel sets the diagnostic verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// ExcludeDirs lists directory names whose subtrees are not walked
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// MaxDepth limits recursion (0 = unlimited, 1 = root directory only)
	MaxDepth int `yaml:"max_depth"`

	// SkipHidden skips directories whose names start with "."
	SkipHidden bool `yaml:"skip_hidden"`

	// Journal is the path of the SQLite rename journal ("" = no journal)
	Journal string `yaml:"journal"`

	// Lock takes an exclusive per-root run lock before walking
	Lock bool `yaml:"lock"`

	// LockWait waits for a held run lock instead of failing
	LockWait bool `yaml:"lock_wait"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Width:    DefaultWidth,
		DryRun:   false,
		LogLevel: "warn",
		MaxDepth: 0, // Unlimited
		Lock:     false,
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointers distinguish an explicit zero (width: 0) from an absent key.
	type yamlConfig struct {
		Width       *int     `yaml:"width"`
		DryRun      *bool    `yaml:"dry_run"`
		LogLevel    string   `yaml:"log_level"`
		ExcludeDirs []string `yaml:"exclude_dirs"`
		MaxDepth    *int     `yaml:"max_depth"`
		SkipHidden  *bool    `yaml:"skip_hidden"`
		Journal     string   `yaml:"journal"`
		Lock        *bool    `yaml:"lock"`
		LockWait    *bool    `yaml:"lock_wait"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Width != nil {
		cfg.Width = *yamlCfg.Width
	}
	if yamlCfg.DryRun != nil {
		cfg.DryRun = *yamlCfg.DryRun
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = NormalizeLogLevel(yamlCfg.LogLevel)
	}
	if len(yamlCfg.ExcludeDirs) > 0 {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}
	if yamlCfg.MaxDepth != nil {
		cfg.MaxDepth = *yamlCfg.MaxDepth
	}
	if yamlCfg.SkipHidden != nil {
		cfg.SkipHidden = *yamlCfg.SkipHidden
	}
	if yamlCfg.Journal != "" {
		cfg.Journal = yamlCfg.Journal
	}
	if yamlCfg.Lock != nil {
		cfg.Lock = *yamlCfg.Lock
	}
	if yamlCfg.LockWait != nil {
		cfg.LockWait = *yamlCfg.LockWait
	}

	return cfg, nil
}

// NormalizeLogLevel lowercases and trims a log level from a file or flag.
func NormalizeLogLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Width < 0 {
		return fmt.Errorf("width must be >= 0, got %d", c.Width)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	for _, dir := range c.ExcludeDirs {
		if dir == "" || strings.ContainsRune(dir, os.PathSeparator) {
			return fmt.Errorf("exclude_dirs entries must be plain directory names, got %q", dir)
		}
	}

	return nil
}
