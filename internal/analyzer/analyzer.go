package analyzer

import (
	"context"
	"time"

	"github.com/yildizm/DiagSum/internal/logger"
	"github.com/yildizm/DiagSum/internal/monitor"
	"github.com/yildizm/DiagSum/internal/parser"
)

// DefaultLatencyThreshold is the record duration (ms) above which a record
// counts as high latency
const DefaultLatencyThreshold = 600

// Analyzer performs diagnostics analysis
type Analyzer interface {
	// Analyze parses newline-delimited diagnostics and aggregates them
	Analyze(ctx context.Context, content string) (*Analysis, error)

	// AnalyzeBatch aggregates an already parsed batch
	AnalyzeBatch(ctx context.Context, batch *parser.Batch) (*Analysis, error)
}

// Engine provides configurable analysis
type Engine interface {
	Analyzer

	// WithThresholds sets the record and interaction latency thresholds (ms)
	WithThresholds(latency, interaction float64) Engine

	// WithLimits sets the per-bucket display limit and the flat list limit
	WithLimits(display, interactions int) Engine

	// WithParser replaces the line parser
	WithParser(p parser.Parser) Engine

	// WithTimeline enables timeline analysis with the given bucket width
	WithTimeline(bucketSize time.Duration) Engine

	// WithSource names the analysed input
	WithSource(name string) Engine

	// WithLogger attaches a logger for stage progress
	WithLogger(log *logger.Logger) Engine

	// WithCollector records stage timings and throughput
	WithCollector(c *monitor.Collector) Engine
}

// Analyze runs a default engine over content with the given record
// threshold. It never fails; unusable lines are counted, not returned.
func Analyze(content string, thresholdMs float64) *Analysis {
	analysis, err := NewEngine().WithThresholds(thresholdMs, 0).Analyze(context.Background(), content)
	if err != nil {
		return &Analysis{LatencyThreshold: thresholdMs}
	}
	return analysis
}
