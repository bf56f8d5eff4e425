package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.diagsum.yaml",               // Project-specific config (highest priority)
	"~/.config/diagsum/config.yaml", // User config
	"/etc/diagsum/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.diagsum.yaml
// 4. ~/.config/diagsum/config.yaml
// 5. /etc/diagsum/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If custom path is provided, use only that path
	if customPath != "" {
		// Validate the custom path for security
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load from standard paths in reverse priority order (lowest to highest)
		paths := make([]string, len(l.configPaths))
		copy(paths, l.configPaths)
		// Reverse the slice to load lowest priority first
		for i := len(paths)/2 - 1; i >= 0; i-- {
			opp := len(paths) - 1 - i
			paths[i], paths[opp] = paths[opp], paths[i]
		}

		for _, path := range paths {
			expandedPath := expandPath(path)
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					// Log warning but continue with other config files
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	// Apply environment variable overrides
	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Create a temporary config to unmarshal into
	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Merge the file config into the existing config
	mergeConfigs(config, &fileConfig)

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// Analysis Config
		"DIAGSUM_ANALYSIS_LATENCY_THRESHOLD_MS":     func(v string) error { return parseFloat(v, &config.Analysis.LatencyThresholdMs) },
		"DIAGSUM_ANALYSIS_INTERACTION_THRESHOLD_MS": func(v string) error { return parseFloat(v, &config.Analysis.InteractionThresholdMs) },
		"DIAGSUM_ANALYSIS_DISPLAY_LIMIT":            func(v string) error { return parseInt(v, &config.Analysis.DisplayLimit) },
		"DIAGSUM_ANALYSIS_INTERACTION_LIMIT":        func(v string) error { return parseInt(v, &config.Analysis.InteractionLimit) },
		"DIAGSUM_ANALYSIS_MAX_REPAIR_ITERATIONS":    func(v string) error { return parseInt(v, &config.Analysis.MaxRepairIterations) },
		"DIAGSUM_ANALYSIS_MAX_FILE_SIZE":            func(v string) error { return parseInt64(v, &config.Analysis.MaxFileSize) },
		"DIAGSUM_ANALYSIS_STRICT_MODE":              func(v string) error { return parseBool(v, &config.Analysis.StrictMode) },
		"DIAGSUM_ANALYSIS_TIMEOUT":                  func(v string) error { return parseDuration(v, &config.Analysis.Timeout) },
		"DIAGSUM_ANALYSIS_TIMELINE_BUCKET":          func(v string) error { return parseDuration(v, &config.Analysis.TimelineBucket) },
		"DIAGSUM_ANALYSIS_WATCH_INTERVAL":           func(v string) error { return parseDuration(v, &config.Analysis.WatchInterval) },

		// Output Config
		"DIAGSUM_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"DIAGSUM_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"DIAGSUM_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"DIAGSUM_OUTPUT_COMPACT_MODE":   func(v string) error { return parseBool(v, &config.Output.CompactMode) },

		// Logging Config
		"DIAGSUM_LOGGING_FILE":         func(v string) error { config.Logging.File = v; return nil },
		"DIAGSUM_LOGGING_MAX_SIZE_MB":  func(v string) error { return parseInt(v, &config.Logging.MaxSizeMB) },
		"DIAGSUM_LOGGING_MAX_BACKUPS":  func(v string) error { return parseInt(v, &config.Logging.MaxBackups) },
		"DIAGSUM_LOGGING_MAX_AGE_DAYS": func(v string) error { return parseInt(v, &config.Logging.MaxAgeDays) },
		"DIAGSUM_LOGGING_COMPRESS":     func(v string) error { return parseBool(v, &config.Logging.Compress) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	// Clean the path to resolve any ".." components
	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Ensure it's a YAML file
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	// Convert to absolute path for additional validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Basic sanity check - ensure it's not in sensitive system directories
	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath is the exported form of expandPath
func ExpandPath(path string) string {
	return expandPath(path)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config
// Only non-zero values from source overwrite destination
func mergeConfigs(dst, src *Config) {
	// Version
	if src.Version != "" {
		dst.Version = src.Version
	}

	mergeAnalysisConfig(&dst.Analysis, &src.Analysis)
	mergeOutputConfig(&dst.Output, &src.Output)
	mergeLoggingConfig(&dst.Logging, &src.Logging)
}

// mergeAnalysisConfig merges analysis configuration
func mergeAnalysisConfig(dst, src *AnalysisConfig) {
	if src.LatencyThresholdMs != 0 {
		dst.LatencyThresholdMs = src.LatencyThresholdMs
	}
	if src.InteractionThresholdMs != 0 {
		dst.InteractionThresholdMs = src.InteractionThresholdMs
	}
	if src.DisplayLimit != 0 {
		dst.DisplayLimit = src.DisplayLimit
	}
	if src.InteractionLimit != 0 {
		dst.InteractionLimit = src.InteractionLimit
	}
	if src.MaxRepairIterations != 0 {
		dst.MaxRepairIterations = src.MaxRepairIterations
	}
	if src.MaxFileSize != 0 {
		dst.MaxFileSize = src.MaxFileSize
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.TimelineBucket != 0 {
		dst.TimelineBucket = src.TimelineBucket
	}
	if src.WatchInterval != 0 {
		dst.WatchInterval = src.WatchInterval
	}
	mergeIfSet(&dst.StrictMode, src.StrictMode)
}

// mergeOutputConfig merges output configuration
func mergeOutputConfig(dst, src *OutputConfig) {
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	// For boolean fields, we need to check if they were explicitly set
	// This is a limitation of YAML unmarshaling, but we'll handle it in env overrides
	mergeIfSet(&dst.Verbose, src.Verbose)
	mergeIfSet(&dst.CompactMode, src.CompactMode)
}

// mergeLoggingConfig merges log file configuration
func mergeLoggingConfig(dst, src *LoggingConfig) {
	if src.File != "" {
		dst.File = src.File
	}
	if src.MaxSizeMB != 0 {
		dst.MaxSizeMB = src.MaxSizeMB
	}
	if src.MaxBackups != 0 {
		dst.MaxBackups = src.MaxBackups
	}
	if src.MaxAgeDays != 0 {
		dst.MaxAgeDays = src.MaxAgeDays
	}
	mergeIfSet(&dst.Compress, src.Compress)
}

// mergeIfSet only merges boolean values if they appear to be explicitly set
// This is a simple heuristic, but works for most cases
func mergeIfSet(dst *bool, src bool) {
	// For now, always merge - this could be improved with custom unmarshaling
	*dst = src
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseFloat(s string, dst *float64) error {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
