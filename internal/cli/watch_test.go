package cli

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/config"
	"github.com/yildizm/DiagSum/internal/emoji"
)

func TestWatchLoopRunsOnWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	events := make(chan fsnotify.Event, 8)
	errs := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	ran := make(chan struct{}, 8)
	fn := func(context.Context) error {
		runs.Add(1)
		ran <- struct{}{}
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, newWatchLimiter(0), fn)
	}()

	events <- fsnotify.Event{Name: "diag.log", Op: fsnotify.Chmod}
	events <- fsnotify.Event{Name: "diag.log", Op: fsnotify.Write}
	<-ran

	errs <- errors.New("transient")
	events <- fsnotify.Event{Name: "diag.log", Op: fsnotify.Create}
	<-ran

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(2), runs.Load())
}

func TestWatchLoopFoldsQueuedWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	events := make(chan fsnotify.Event, 8)
	for i := 0; i < 5; i++ {
		events <- fsnotify.Event{Name: "diag.log", Op: fsnotify.Write}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	fn := func(context.Context) error {
		runs.Add(1)
		cancel()
		return errors.New("ignored after cancel")
	}

	require.NoError(t, watchLoop(ctx, events, make(chan error), newWatchLimiter(time.Hour), fn))
	assert.Equal(t, int32(1), runs.Load())
	assert.Empty(t, events)
}

func TestWatchLoopClosedChannels(t *testing.T) {
	defer goleak.VerifyNone(t)

	events := make(chan fsnotify.Event)
	close(events)
	err := watchLoop(context.Background(), events, make(chan error), newWatchLimiter(0), nil)
	assert.EqualError(t, err, "watcher events channel closed")

	errs := make(chan error)
	close(errs)
	err = watchLoop(context.Background(), make(chan fsnotify.Event), errs, newWatchLimiter(0), nil)
	assert.EqualError(t, err, "watcher errors channel closed")
}

func TestSummaryLine(t *testing.T) {
	emoji.SetEmojiDisabled(true)
	defer emoji.SetEmojiDisabled(false)

	a := analyzer.Analyze(strings.Join([]string{
		diagLine("Query", 900, "429"),
		diagLine("Query", 700, "429"),
		"garbage",
	}, "\n"), 600)

	at := time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC)
	line := summaryLine(at, a)

	assert.True(t, strings.HasPrefix(line, "[10:11:12] [SLOW] 2 records, 2 above 600 ms, 1 unparsed"), line)
	assert.Contains(t, line, "[>] Query p95")
	assert.Contains(t, line, "[429] top status 429/0 x2")

	quiet := summaryLine(at, analyzer.Analyze(diagLine("Query", 100, "200"), 600))
	assert.Equal(t, "[10:11:12] [OK] 1 records, 0 above 600 ms", quiet)
}

func TestAnalyzeAndSummarize(t *testing.T) {
	path := writeTemp(t, "diag.log", diagLine("ReadItem", 800, "200"))

	var out strings.Builder
	require.NoError(t, analyzeAndSummarize(context.Background(), &out, path, config.DefaultConfig()))
	assert.Contains(t, out.String(), "1 records, 1 above 600 ms")
}

func TestValidateWatchFilePath(t *testing.T) {
	assert.Error(t, validateWatchFilePath(" "))
	assert.Error(t, validateWatchFilePath("../diag.log"))
	assert.Error(t, validateWatchFilePath(t.TempDir()))
	assert.NoError(t, validateWatchFilePath(writeTemp(t, "diag.log", "")))
}
