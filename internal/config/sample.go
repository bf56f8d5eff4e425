package config

// SampleConfig returns a fully documented configuration file
func SampleConfig() string {
	return `# DiagSum configuration
version: "1.0"

analysis:
  # Records slower than this (ms) are reported as high latency
  latency_threshold_ms: 600
  # Backend calls of the dominant operation slower than this (ms) are grouped
  interaction_threshold_ms: 0
  # Ranked entries kept per group and per percentile range
  display_limit: 50
  # Entries kept in the flat interaction list
  interaction_limit: 100
  # Truncate-and-repair attempts per malformed line
  max_repair_iterations: 20
  # Largest accepted input in bytes (after decompression)
  max_file_size: 104857600
  # Reject malformed lines instead of repairing them
  strict_mode: false
  # Abandon an analysis run after this long
  timeout: 60s
  # Width of timeline buckets; 0 disables the timeline
  timeline_bucket: 5m
  # Minimum gap between runs in watch mode
  watch_interval: 2s

output:
  default_format: text   # text|json|markdown|csv
  color_mode: auto       # auto|always|never
  verbose: false
  compact_mode: false

logging:
  # Rotated JSON log file; empty logs to stderr only
  file: ""
  max_size_mb: 10
  max_backups: 3
  max_age_days: 28
  compress: false
`
}

// MinimalSampleConfig returns a configuration with only the essential keys
func MinimalSampleConfig() string {
	return `version: "1.0"

analysis:
  latency_threshold_ms: 600

output:
  default_format: text
`
}
