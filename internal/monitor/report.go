package monitor

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ReportFormat selects how a snapshot is rendered
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// StageMetrics summarizes the timings of one stage
type StageMetrics struct {
	Stage  Stage         `json:"stage"`
	Count  int64         `json:"count"`
	Errors int64         `json:"errors"`
	Total  time.Duration `json:"total_ns"`
	Min    time.Duration `json:"min_ns"`
	Max    time.Duration `json:"max_ns"`
	Avg    time.Duration `json:"avg_ns"`
}

// Snapshot represents a point-in-time view of a collector
type Snapshot struct {
	Timestamp      time.Time      `json:"timestamp"`
	Elapsed        time.Duration  `json:"elapsed_ns"`
	Lines          int64          `json:"lines"`
	Bytes          int64          `json:"bytes"`
	Records        int64          `json:"records"`
	LinesPerSecond float64        `json:"lines_per_second"`
	BytesPerSecond float64        `json:"bytes_per_second"`
	Memory         MemoryMetrics  `json:"memory"`
	Stages         []StageMetrics `json:"stages"`
}

// Slowest returns the stage with the largest total time
func (s Snapshot) Slowest() (StageMetrics, bool) {
	var slowest StageMetrics
	found := false
	for _, st := range s.Stages {
		if !found || st.Total > slowest.Total {
			slowest, found = st, true
		}
	}
	return slowest, found
}

// Format renders the snapshot
func (s Snapshot) Format(format ReportFormat) (string, error) {
	switch format {
	case ReportFormatJSON:
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(s, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal profile: %w", err)
		}
		return string(data) + "\n", nil
	case ReportFormatText, "":
		return s.formatText(), nil
	default:
		return "", fmt.Errorf("unsupported profile format: %s", format)
	}
}

func (s Snapshot) formatText() string {
	var sb strings.Builder

	sb.WriteString("Run Profile\n")
	sb.WriteString("===========\n")
	sb.WriteString(fmt.Sprintf("Elapsed: %s\n", s.Elapsed.Round(time.Microsecond)))
	sb.WriteString(fmt.Sprintf("Input: %d lines, %s, %d records\n", s.Lines, formatBytes(s.Bytes), s.Records))
	sb.WriteString(fmt.Sprintf("Throughput: %.0f lines/sec, %s/sec\n", s.LinesPerSecond, formatBytes(int64(s.BytesPerSecond))))
	sb.WriteString(fmt.Sprintf("Heap: %s (total allocated %s, %d GC)\n",
		formatBytes(int64(s.Memory.HeapAlloc)), formatBytes(int64(s.Memory.TotalAlloc)), s.Memory.NumGC)) // #nosec G115

	if len(s.Stages) > 0 {
		sb.WriteString("\nStages:\n")
		sb.WriteString(fmt.Sprintf("  %-10s %6s %12s %12s %12s\n", "stage", "runs", "total", "avg", "max"))
		for _, st := range s.Stages {
			sb.WriteString(fmt.Sprintf("  %-10s %6d %12s %12s %12s\n", st.Stage, st.Count,
				st.Total.Round(time.Microsecond), st.Avg.Round(time.Microsecond), st.Max.Round(time.Microsecond)))
		}
	}

	if slowest, ok := s.Slowest(); ok && s.Elapsed > 0 {
		share := float64(slowest.Total) / float64(s.Elapsed) * 100
		sb.WriteString(fmt.Sprintf("\nSlowest stage: %s (%.0f%% of elapsed)\n", slowest.Stage, share))
	}
	return sb.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
