package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/config"
	"github.com/yildizm/DiagSum/internal/formatter"
	"github.com/yildizm/DiagSum/internal/monitor"
	"github.com/yildizm/DiagSum/internal/ui"
)

var (
	analyzeThreshold            float64
	analyzeInteractionThreshold float64
	analyzeStrict               bool
	analyzeMaxSize              int64
	analyzeTimelineBucket       time.Duration
	analyzeTimeout              time.Duration
	analyzeNoTUI                bool
	analyzeOutputFile           string
	analyzeProfile              bool
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Analyze diagnostics files or stdin",
		Long: `Analyze newline-delimited Cosmos DB diagnostics for high-latency records.

If no file is specified, reads from stdin. Files ending in .gz, .zst or .br
are decompressed; gzip and zstd input is also detected from its content.
Several files are analysed concurrently and reported in argument order.

Examples:
  diagsum analyze diagnostics.log
  diagsum analyze --threshold 1000 -o json diagnostics.log.gz
  cat diagnostics.log | diagsum analyze --no-tui
  diagsum analyze -o markdown --output-file report.md day1.log day2.log`,
		RunE: runAnalyze,
	}

	cmd.Flags().Float64VarP(&analyzeThreshold, "threshold", "t", analyzer.DefaultLatencyThreshold, "record latency threshold in ms")
	cmd.Flags().Float64Var(&analyzeInteractionThreshold, "interaction-threshold", 0, "backend call latency threshold in ms")
	cmd.Flags().BoolVar(&analyzeStrict, "strict", false, "reject malformed lines instead of repairing them")
	cmd.Flags().Int64Var(&analyzeMaxSize, "max-size", 0, "maximum input size in bytes after decompression")
	cmd.Flags().DurationVar(&analyzeTimelineBucket, "timeline-bucket", analyzer.DefaultTimelineBucket, "timeline bucket width (0 disables)")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 60*time.Second, "analysis timeout")
	cmd.Flags().BoolVar(&analyzeNoTUI, "no-tui", false, "disable terminal UI, output to stdout")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().BoolVar(&analyzeProfile, "profile", false, "print stage timings and throughput to stderr")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := analyzeConfig(cmd, GetGlobalConfig())
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Analysis.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Analysis.Timeout)
		defer cancel()
	}

	var metrics *monitor.Collector
	if analyzeProfile {
		metrics = monitor.New()
		defer writeProfile(cmd.ErrOrStderr(), metrics)
	}

	if shouldUseTUIMode() && len(args) <= 1 {
		in, err := readSingle(args, cmd.InOrStdin(), cfg, metrics)
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg, in.name, metrics)
		if err != nil {
			return err
		}
		log.Debug("launching interactive terminal UI")
		return ui.RunAnalysis(ctx, engine, in.content)
	}

	analyses, err := analyzeInputs(ctx, args, cmd.InOrStdin(), cfg, metrics)
	if err != nil {
		return err
	}

	var output []byte
	err = metrics.Track(monitor.StageFormat, func() error {
		output, err = formatResults(analyses)
		return err
	})
	if err != nil {
		return err
	}
	return handleOutputDestination(cmd.OutOrStdout(), output)
}

func writeProfile(w io.Writer, metrics *monitor.Collector) {
	report, err := metrics.Snapshot().Format(monitor.ReportFormatText)
	if err != nil {
		log.Warn("failed to render profile: %v", err)
		return
	}
	fmt.Fprint(w, "\n"+report)
}

// analyzeConfig copies cfg and applies the analyze flags the user set
func analyzeConfig(cmd *cobra.Command, base *config.Config) *config.Config {
	cfg := *base
	flags := cmd.Flags()

	if flags.Changed("threshold") {
		cfg.Analysis.LatencyThresholdMs = analyzeThreshold
	}
	if flags.Changed("interaction-threshold") {
		cfg.Analysis.InteractionThresholdMs = analyzeInteractionThreshold
	}
	if flags.Changed("strict") {
		cfg.Analysis.StrictMode = analyzeStrict
	}
	if flags.Changed("max-size") {
		cfg.Analysis.MaxFileSize = analyzeMaxSize
	}
	if flags.Changed("timeline-bucket") {
		cfg.Analysis.TimelineBucket = analyzeTimelineBucket
	}
	if flags.Changed("timeout") {
		cfg.Analysis.Timeout = analyzeTimeout
	}
	return &cfg
}

// shouldUseTUIMode reports whether results go to the interactive UI
func shouldUseTUIMode() bool {
	return !analyzeNoTUI && analyzeOutputFile == "" && getOutputFormat() == "text" && !isVerbose()
}

func readSingle(args []string, stdin io.Reader, cfg *config.Config, metrics *monitor.Collector) (*input, error) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	return trackedRead(path, stdin, cfg, metrics)
}

func trackedRead(path string, stdin io.Reader, cfg *config.Config, metrics *monitor.Collector) (*input, error) {
	var in *input
	err := metrics.Track(monitor.StageRead, func() error {
		var err error
		in, err = readInput(path, stdin, cfg)
		return err
	})
	return in, err
}

// newEngine builds an engine from the effective configuration
func newEngine(cfg *config.Config, source string, metrics *monitor.Collector) (analyzer.Engine, error) {
	engine, err := analyzer.NewEngineWithOptions(analyzer.Options{
		LatencyThreshold:     cfg.Analysis.LatencyThresholdMs,
		InteractionThreshold: cfg.Analysis.InteractionThresholdMs,
		DisplayLimit:         cfg.Analysis.DisplayLimit,
		InteractionLimit:     cfg.Analysis.InteractionLimit,
		MaxRepairIterations:  cfg.Analysis.MaxRepairIterations,
		StrictMode:           cfg.Analysis.StrictMode,
		TimelineBucket:       cfg.Analysis.TimelineBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	return engine.WithSource(source).WithLogger(log.WithComponent("analyzer")).WithCollector(metrics), nil
}

// analyzeInputs analyses every source concurrently and returns the results
// in argument order. The first failure cancels the remaining runs.
func analyzeInputs(ctx context.Context, paths []string, stdin io.Reader, cfg *config.Config, metrics *monitor.Collector) ([]*analyzer.Analysis, error) {
	if len(paths) == 0 {
		paths = []string{""}
	}

	analyses := make([]*analyzer.Analysis, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			in, err := trackedRead(path, stdin, cfg, metrics)
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg, in.name, metrics)
			if err != nil {
				return err
			}
			analysis, err := engine.Analyze(gctx, in.content)
			if err != nil {
				return fmt.Errorf("analysis of %s failed: %w", in.name, err)
			}
			analyses[i] = analysis
			log.Debug("analysed %s: %d records, %d above threshold", in.name, analysis.ParsedEntries, analysis.HighLatencyEntries)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// formatResults formats each analysis in order; text reports of several
// sources get a header per source
func formatResults(analyses []*analyzer.Analysis) ([]byte, error) {
	f, err := formatter.New(getOutputFormat(), colorEnabled() && analyzeOutputFile == "")
	if err != nil {
		return nil, fmt.Errorf("failed to get formatter: %w", err)
	}

	var output []byte
	for i, analysis := range analyses {
		formatted, err := f.Format(analysis)
		if err != nil {
			return nil, fmt.Errorf("failed to format output: %w", err)
		}
		if len(analyses) > 1 && getOutputFormat() != "json" && getOutputFormat() != "csv" {
			if i > 0 {
				output = append(output, '\n')
			}
			output = append(output, fmt.Sprintf("==> %s <==\n", analysis.Source)...)
		}
		output = append(output, formatted...)
	}
	return output, nil
}

// handleOutputDestination writes output to file or w
func handleOutputDestination(w io.Writer, output []byte) error {
	if analyzeOutputFile == "" {
		_, err := w.Write(output)
		return err
	}

	if err := writeOutputBytesToFile(output, analyzeOutputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	log.Info("output saved to %s", analyzeOutputFile)
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Debug("failed to close output file: %v", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}
