package analyzer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/DiagSum/internal/logger"
	"github.com/yildizm/DiagSum/internal/monitor"
	"github.com/yildizm/DiagSum/internal/network"
	"github.com/yildizm/DiagSum/internal/parser"
	"github.com/yildizm/DiagSum/internal/stats"
)

// Options configures an AnalyzerEngine
type Options struct {
	LatencyThreshold     float64
	InteractionThreshold float64
	DisplayLimit         int
	InteractionLimit     int
	MaxRepairIterations  int
	StrictMode           bool
	TimelineBucket       time.Duration
	Source               string
}

// DefaultOptions returns the options used by NewEngine
func DefaultOptions() Options {
	return Options{
		LatencyThreshold: DefaultLatencyThreshold,
		DisplayLimit:     DefaultDisplayLimit,
		InteractionLimit: DefaultInteractionLimit,
		TimelineBucket:   DefaultTimelineBucket,
	}
}

// AnalyzerEngine implements the Analyzer and Engine interfaces. An engine
// holds no per-run state and may be shared by concurrent runs.
type AnalyzerEngine struct {
	opts        Options
	parser      parser.Parser
	timelineGen *TimelineGenerator
	log         *logger.Logger
	metrics     *monitor.Collector
	now         func() time.Time
}

// NewEngine creates an engine with default options and the lenient parser
func NewEngine() *AnalyzerEngine {
	return &AnalyzerEngine{
		opts:        DefaultOptions(),
		parser:      parser.NewLenientParser(parser.DefaultMaxRepairIterations),
		timelineGen: NewTimelineGenerator(),
		now:         time.Now,
	}
}

// NewEngineWithOptions creates an engine, selecting the parser from opts
func NewEngineWithOptions(opts Options) (*AnalyzerEngine, error) {
	p, err := parser.New(opts.StrictMode, opts.MaxRepairIterations)
	if err != nil {
		return nil, err
	}

	e := NewEngine()
	e.parser = p
	e.opts = opts
	if e.opts.DisplayLimit <= 0 {
		e.opts.DisplayLimit = DefaultDisplayLimit
	}
	if e.opts.InteractionLimit <= 0 {
		e.opts.InteractionLimit = DefaultInteractionLimit
	}
	return e, nil
}

// WithThresholds sets the record and interaction latency thresholds (ms)
func (e *AnalyzerEngine) WithThresholds(latency, interaction float64) Engine {
	e.opts.LatencyThreshold = latency
	e.opts.InteractionThreshold = interaction
	return e
}

// WithLimits sets the display limits; non-positive values keep defaults
func (e *AnalyzerEngine) WithLimits(display, interactions int) Engine {
	if display > 0 {
		e.opts.DisplayLimit = display
	}
	if interactions > 0 {
		e.opts.InteractionLimit = interactions
	}
	return e
}

// WithParser replaces the line parser
func (e *AnalyzerEngine) WithParser(p parser.Parser) Engine {
	if p != nil {
		e.parser = p
	}
	return e
}

// WithTimeline enables timeline analysis with specified bucket size; zero
// disables it
func (e *AnalyzerEngine) WithTimeline(bucketSize time.Duration) Engine {
	e.opts.TimelineBucket = bucketSize
	return e
}

// WithSource names the analysed input
func (e *AnalyzerEngine) WithSource(name string) Engine {
	e.opts.Source = name
	return e
}

// WithLogger attaches a logger for stage progress
func (e *AnalyzerEngine) WithLogger(log *logger.Logger) Engine {
	e.log = log
	return e
}

// WithCollector records stage timings into c
func (e *AnalyzerEngine) WithCollector(c *monitor.Collector) Engine {
	e.metrics = c
	return e
}

// Options returns the effective options
func (e *AnalyzerEngine) Options() Options {
	return e.opts
}

// Analyze parses content line by line and aggregates the result
func (e *AnalyzerEngine) Analyze(ctx context.Context, content string) (*Analysis, error) {
	start := e.now()
	lines := parser.SplitLines(content)
	batch := e.parser.ParseLines(lines)
	e.metrics.Observe(monitor.StageParse, e.now().Sub(start))
	e.metrics.RecordInput(batch.TotalLines, len(content))
	e.metrics.RecordRecords(batch.Parsed())
	e.debug("parsed input", logger.F("parser", e.parser.Name()), logger.F("lines", batch.TotalLines),
		logger.F("parsed", batch.Parsed()), logger.F("repaired", batch.Repaired), logger.Duration(e.now().Sub(start)))

	return e.AnalyzeBatch(ctx, batch)
}

// AnalyzeBatch aggregates a parsed batch. The context is checked between
// stages; a cancelled run returns the partial analysis with ctx.Err().
func (e *AnalyzerEngine) AnalyzeBatch(ctx context.Context, batch *parser.Batch) (*Analysis, error) {
	analysis := e.newAnalysis(batch)
	if batch == nil || batch.Parsed() == 0 {
		return analysis, ctx.Err()
	}

	if err := checkContext(ctx); err != nil {
		return analysis, err
	}

	// High-latency records and operation buckets
	stage := e.now()
	slow := HighLatency(batch.Entries, e.opts.LatencyThreshold)
	analysis.HighLatencyEntries = len(slow)
	if e.opts.TimelineBucket > 0 {
		analysis.Timeline = e.timelineGen.GenerateTimeline(batch.Entries, e.opts.LatencyThreshold, e.opts.TimelineBucket)
		analysis.Trends = e.timelineGen.DetectTrends(analysis.Timeline)
	}
	if len(slow) == 0 {
		return analysis, nil
	}

	analysis.LatencyStats = stats.Summarize(Durations(slow, entryDuration))
	analysis.HighLatency = capped(Rank(slow, entryDuration), e.opts.DisplayLimit)
	analysis.Operations = OperationBuckets(slow, e.opts.DisplayLimit)
	analysis.TargetOperation = TargetOperation(analysis.Operations)
	analysis.Calls = SummarizeCalls(slow)
	e.metrics.Observe(monitor.StageBucket, e.now().Sub(stage))
	e.debug("bucketed operations", logger.Count(len(analysis.Operations)), logger.F("target", analysis.TargetOperation))

	if err := checkContext(ctx); err != nil {
		return analysis, err
	}

	// Backend calls of the dominant operation
	stage = e.now()
	interactions := network.Extract(entriesFor(slow, analysis.TargetOperation))
	analysis.ExtractedInteractions = len(interactions)
	e.metrics.Observe(monitor.StageExtract, e.now().Sub(stage))

	if err := checkContext(ctx); err != nil {
		return analysis, err
	}

	stage = e.now()
	agg := Aggregate(interactions, e.opts.InteractionThreshold, e.opts.DisplayLimit)
	analysis.TotalInteractions = len(agg.Interactions)
	analysis.InteractionStats = agg.Stats
	analysis.Interactions = capped(Rank(agg.Interactions, interactionDuration), e.opts.InteractionLimit)
	analysis.Groupings = agg.Groupings
	e.metrics.Observe(monitor.StageAggregate, e.now().Sub(stage))
	e.debug("aggregated interactions", logger.Count(analysis.TotalInteractions))

	if err := checkContext(ctx); err != nil {
		return analysis, err
	}

	stage = e.now()
	analysis.System, analysis.ClientConfig = Snapshots(slow)
	e.metrics.Observe(monitor.StageSnapshots, e.now().Sub(stage))
	return analysis, nil
}

func (e *AnalyzerEngine) newAnalysis(batch *parser.Batch) *Analysis {
	analysis := &Analysis{
		ID:                   uuid.NewString(),
		Source:               e.opts.Source,
		GeneratedAt:          e.now().UTC(),
		Parser:               e.parser.Name(),
		LatencyThreshold:     e.opts.LatencyThreshold,
		InteractionThreshold: e.opts.InteractionThreshold,
		HighLatency:          []*parser.Entry{},
		Interactions:         []*network.Interaction{},
	}
	if batch == nil {
		return analysis
	}

	analysis.TotalLines = batch.TotalLines
	analysis.ParsedEntries = batch.Parsed()
	analysis.RepairedEntries = batch.Repaired
	if len(batch.Failures) > 0 {
		analysis.FailedEntries = make(map[parser.Reason]int, len(batch.Failures))
		for reason, n := range batch.Failures {
			analysis.FailedEntries[reason] = n
		}
	}
	return analysis
}

func (e *AnalyzerEngine) debug(msg string, fields ...logger.Field) {
	if e.log != nil {
		e.log.DebugWithFields(msg, fields)
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
