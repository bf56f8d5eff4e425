package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInputTooLarge is returned when an input exceeds analysis.max_file_size
var ErrInputTooLarge = errors.New("input exceeds maximum file size")

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// AnalysisConfig configures analysis behavior
type AnalysisConfig struct {
	LatencyThresholdMs     float64       `yaml:"latency_threshold_ms" json:"latency_threshold_ms"`         // record threshold
	InteractionThresholdMs float64       `yaml:"interaction_threshold_ms" json:"interaction_threshold_ms"` // backend call threshold
	DisplayLimit           int           `yaml:"display_limit" json:"display_limit"`                       // entries per bucket
	InteractionLimit       int           `yaml:"interaction_limit" json:"interaction_limit"`               // flat interaction list
	MaxRepairIterations    int           `yaml:"max_repair_iterations" json:"max_repair_iterations"`
	MaxFileSize            int64         `yaml:"max_file_size" json:"max_file_size"` // bytes
	StrictMode             bool          `yaml:"strict_mode" json:"strict_mode"`
	Timeout                time.Duration `yaml:"timeout" json:"timeout"`
	TimelineBucket         time.Duration `yaml:"timeline_bucket" json:"timeline_bucket"`
	WatchInterval          time.Duration `yaml:"watch_interval" json:"watch_interval"` // minimum gap between watch runs
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	CompactMode   bool   `yaml:"compact_mode" json:"compact_mode"`     // compact output mode
}

// LoggingConfig configures the optional rotated log file
type LoggingConfig struct {
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			LatencyThresholdMs:     600,
			InteractionThresholdMs: 0,
			DisplayLimit:           50,
			InteractionLimit:       100,
			MaxRepairIterations:    20,
			MaxFileSize:            100 * 1024 * 1024, // 100MB
			StrictMode:             false,
			Timeout:                60 * time.Second,
			TimelineBucket:         5 * time.Minute,
			WatchInterval:          2 * time.Second,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			CompactMode:   false,
		},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateAnalysisConfig(); err != nil {
		return err
	}
	if err := c.validateTimeoutConfig(); err != nil {
		return err
	}
	if err := c.validateLoggingConfig(); err != nil {
		return err
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// validateAnalysisConfig validates analysis-related configuration
func (c *Config) validateAnalysisConfig() error {
	if c.Analysis.LatencyThresholdMs < 0 {
		return fmt.Errorf("latency_threshold_ms must be non-negative")
	}
	if c.Analysis.InteractionThresholdMs < 0 {
		return fmt.Errorf("interaction_threshold_ms must be non-negative")
	}
	if c.Analysis.DisplayLimit < 1 {
		return fmt.Errorf("display_limit must be greater than 0")
	}
	if c.Analysis.InteractionLimit < 1 {
		return fmt.Errorf("interaction_limit must be greater than 0")
	}
	if c.Analysis.MaxRepairIterations < 1 {
		return fmt.Errorf("max_repair_iterations must be greater than 0")
	}
	if c.Analysis.MaxFileSize < 1 {
		return fmt.Errorf("max_file_size must be greater than 0")
	}
	return nil
}

// validateTimeoutConfig validates timeout-related configuration
func (c *Config) validateTimeoutConfig() error {
	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if c.Analysis.TimelineBucket < 0 {
		return fmt.Errorf("timeline_bucket must be non-negative")
	}
	if c.Analysis.WatchInterval < 0 {
		return fmt.Errorf("watch_interval must be non-negative")
	}
	return nil
}

// validateLoggingConfig validates log file rotation settings
func (c *Config) validateLoggingConfig() error {
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("logging rotation limits must be non-negative")
	}
	return nil
}

// CheckSize returns ErrInputTooLarge when size exceeds the configured cap
func (c *Config) CheckSize(size int64) error {
	if size > c.Analysis.MaxFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrInputTooLarge, size, c.Analysis.MaxFileSize)
	}
	return nil
}
