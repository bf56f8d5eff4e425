package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/config"
	"github.com/yildizm/DiagSum/internal/emoji"
)

var (
	watchThreshold float64
	watchInterval  time.Duration
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Re-analyze a diagnostics file whenever it changes",
		Long: `Monitor a diagnostics file and re-run the analysis each time it is written.

Runs are throttled to at most one per interval; writes that arrive while a
run is pending are folded into it. Each run prints a one-line summary.
Press Ctrl+C to stop watching.

Examples:
  diagsum watch diagnostics.log
  diagsum watch --threshold 1000 --interval 5s diagnostics.log`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().Float64VarP(&watchThreshold, "threshold", "t", analyzer.DefaultLatencyThreshold, "record latency threshold in ms")
	cmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "minimum time between analysis runs")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := filepath.Clean(args[0])
	if err := validateWatchFilePath(filename); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	cfg := *GetGlobalConfig()
	if cmd.Flags().Changed("threshold") {
		cfg.Analysis.LatencyThresholdMs = watchThreshold
	}
	if cmd.Flags().Changed("interval") {
		cfg.Analysis.WatchInterval = watchInterval
	}

	watcher, err := createWatcher(filename)
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	run := func(ctx context.Context) error {
		return analyzeAndSummarize(ctx, out, filename, &cfg)
	}

	log.Info("watching %s", filename)
	fmt.Fprintf(out, "%s Watching %s (Ctrl+C to stop)\n", emoji.GetEmoji("watch"), filename)

	// Report the current contents before waiting for changes
	if err := run(ctx); err != nil {
		log.Warn("analysis failed: %v", err)
	}

	return watchLoop(ctx, watcher.Events, watcher.Errors, newWatchLimiter(cfg.Analysis.WatchInterval), run)
}

// newWatchLimiter allows one run per interval; zero disables throttling
func newWatchLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// watchLoop runs fn after write events until ctx is done. Events that pile
// up while waiting on the limiter are drained into a single run.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, limiter *rate.Limiter, fn func(context.Context) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			drainEvents(events)
			if err := fn(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Warn("analysis failed: %v", err)
			}

		case err, ok := <-errs:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Warn("watcher error: %v", err)
		}
	}
}

func drainEvents(events <-chan fsnotify.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// analyzeAndSummarize re-reads the whole file and prints a summary line
func analyzeAndSummarize(ctx context.Context, w io.Writer, filename string, cfg *config.Config) error {
	in, err := readInput(filename, nil, cfg)
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, in.name, nil)
	if err != nil {
		return err
	}
	analysis, err := engine.Analyze(ctx, in.content)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, summaryLine(time.Now(), analysis))
	return err
}

// summaryLine renders one compact line per analysis run
func summaryLine(at time.Time, a *analyzer.Analysis) string {
	var b strings.Builder

	marker := emoji.GetEmoji("success")
	if a.HighLatencyEntries > 0 {
		marker = emoji.GetEmoji("latency")
	}
	fmt.Fprintf(&b, "[%s] %s %d records, %d above %.0f ms", at.Format("15:04:05"), marker,
		a.ParsedEntries, a.HighLatencyEntries, a.LatencyThreshold)

	if failed := a.Failed(); failed > 0 {
		fmt.Fprintf(&b, ", %d unparsed", failed)
	}
	if a.TargetOperation != "" {
		fmt.Fprintf(&b, " | %s %s p95 %.1f ms", emoji.GetEmoji("target"), a.TargetOperation, a.LatencyStats.P95)
	}
	if len(a.Groupings.Statuses) > 0 {
		top := a.Groupings.Statuses[0]
		fmt.Fprintf(&b, " | %s top status %s x%d", emoji.ForStatus(top.Key), top.Key, top.Count)
	}
	return b.String()
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil {
		log.Debug("failed to close watcher: %v", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
