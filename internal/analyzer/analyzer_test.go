package analyzer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/DiagSum/internal/monitor"
	"github.com/yildizm/DiagSum/internal/parser"
)

const slowLine = `{"name":"X","start datetime":"2024-05-01T10:00:00Z","duration in milliseconds":1000,` +
	`"data":{"System Info":{"systemHistory":[{"dateUtc":"2024-05-01T09:59:50Z","cpu":35.5,"memory":1024,` +
	`"threadInfo":{"isThreadStarving":"True","availableThreads":10},"numberOfOpenTcpConnection":4}]},` +
	`"Client Configuration":{"Client Created Time Utc":"2024-05-01T09:00:00Z","NumberOfClientsCreated":2,"ConnectionMode":"Direct","ProcessorCount":"8"}},` +
	`"children":[{"name":"Transport","duration in milliseconds":990,"data":{"Client Side Request Stats":{"StoreResponseStatistics":[` +
	`{"DurationInMs":980,"ResourceType":"Document","OperationType":"Read","StoreResult":{"StatusCode":"408","SubStatusCode":"0",` +
	`"StorePhysicalAddress":"rntbd://h:1/apps/a/services/s/partitions/p1/replicas/r1p/","BELatencyInMs":"12.5",` +
	`"TransportException":"Receive timed out (Time: 2024-05-01T10:00:00Z) error code: ReceiveTimeout",` +
	`"transportRequestTimeline":{"requestTimeline":[{"event":"Created","startTimeUtc":"t0","durationInMs":1},` +
	`{"event":"Transit Time","startTimeUtc":"t1","durationInMs":970}]}}},` +
	`{"DurationInMs":5,"StoreResult":{"StatusCode":"200"}}]}}}],"Summary":{"DirectCalls":{"(408, 0)":1}}}`

const truncatedSlowLine = `{"name":"X","start datetime":"2024-05-01T10:00:01Z","duration in milliseconds":700,"data":{},` +
	`"children":[{"name":"Transport","duration in milliseconds":690,"data":{"Client Side Req`

func TestAnalyzeEndToEnd(t *testing.T) {
	content := strings.Join([]string{slowLine, truncatedSlowLine, "###"}, "\n")

	analysis := Analyze(content, 600)

	assert.Equal(t, 3, analysis.TotalLines)
	assert.Equal(t, 2, analysis.ParsedEntries)
	assert.Equal(t, 1, analysis.RepairedEntries)
	assert.Equal(t, 2, analysis.HighLatencyEntries)
	assert.Equal(t, 1, analysis.FailedEntries[parser.ReasonUnparseable])
	assert.Equal(t, 1, analysis.Failed())
	assert.NotEmpty(t, analysis.ID)

	require.Len(t, analysis.Operations, 1)
	op := analysis.Operations[0]
	assert.Equal(t, "X", op.Key)
	assert.Equal(t, 2, op.Count)
	assert.Equal(t, 700.0, op.Stats.Min)
	assert.Equal(t, 1000.0, op.Stats.Max)
	assert.Equal(t, "X", analysis.TargetOperation)

	require.Len(t, analysis.HighLatency, 2)
	assert.Equal(t, 1000.0, analysis.HighLatency[0].Duration())

	require.Len(t, analysis.Interactions, 1)
	it := analysis.Interactions[0]
	assert.Equal(t, 980.0, it.Duration)
	assert.Equal(t, "Receive timed out", it.ExceptionMessage)
	assert.Equal(t, "ReceiveTimeout", it.ErrorCode)
	assert.Equal(t, 1, analysis.TotalInteractions)
	assert.Equal(t, 1, analysis.ExtractedInteractions)

	g := analysis.Groupings
	require.Len(t, g.Statuses, 1)
	assert.Equal(t, "408/0", g.Statuses[0].Key)
	require.Len(t, g.Resources, 1)
	assert.Equal(t, "Document/Read", g.Resources[0].Key)
	require.Len(t, g.Exceptions, 1)
	assert.Equal(t, "Receive timed out", g.Exceptions[0].Key)
	require.Len(t, g.TransportEvents, 1)
	assert.Equal(t, "Transit Time", g.TransportEvents[0].Key)
	require.Len(t, g.Bottlenecks, 1)
	assert.Equal(t, "Transit Time", g.Bottlenecks[0].Key)

	assert.Equal(t, 1, analysis.Calls.Direct["(408, 0)"])
	assert.Equal(t, 1, analysis.Calls.DirectTotal)

	require.Len(t, analysis.System, 1)
	assert.Equal(t, 35.5, analysis.System[0].CPU)
	assert.True(t, analysis.System[0].ThreadStarving)
	assert.Equal(t, 4, analysis.System[0].OpenTCPConnections)

	require.Len(t, analysis.ClientConfig, 1)
	assert.Equal(t, "Direct", analysis.ClientConfig[0].ConnectionMode)
	assert.Equal(t, 8, analysis.ClientConfig[0].ProcessorCount)
}

func TestAnalyzeDegenerateInput(t *testing.T) {
	for _, content := range []string{"", "\n\n", "###\n@@@"} {
		analysis := Analyze(content, 600)
		require.NotNil(t, analysis)
		assert.Zero(t, analysis.ParsedEntries)
		assert.Zero(t, analysis.HighLatencyEntries)
		assert.Empty(t, analysis.Operations)
		assert.Empty(t, analysis.Interactions)
		assert.Empty(t, analysis.TargetOperation)
	}
}

func TestAnalyzeNothingAboveThreshold(t *testing.T) {
	analysis := Analyze(slowLine, 5000)

	assert.Equal(t, 1, analysis.ParsedEntries)
	assert.Zero(t, analysis.HighLatencyEntries)
	assert.Empty(t, analysis.Operations)
	assert.True(t, analysis.LatencyStats.IsZero())
}

func TestInteractionThreshold(t *testing.T) {
	engine := NewEngine()
	engine.WithThresholds(600, 990)

	analysis, err := engine.Analyze(context.Background(), slowLine)
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.ExtractedInteractions)
	assert.Zero(t, analysis.TotalInteractions)
	assert.Empty(t, analysis.Groupings.Statuses)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analysis, err := NewEngine().Analyze(ctx, slowLine)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, analysis)
	assert.Equal(t, 1, analysis.ParsedEntries)
}

func TestStrictEngine(t *testing.T) {
	engine, err := NewEngineWithOptions(Options{LatencyThreshold: 600, StrictMode: true})
	require.NoError(t, err)

	content := strings.Join([]string{slowLine, truncatedSlowLine}, "\n")
	analysis, err := engine.Analyze(context.Background(), content)
	require.NoError(t, err)

	assert.Equal(t, "strict", analysis.Parser)
	assert.Equal(t, 1, analysis.ParsedEntries)
	assert.Equal(t, 1, analysis.Failed())
	assert.Equal(t, DefaultDisplayLimit, engine.Options().DisplayLimit)
}

func TestTargetOperationPrefersCount(t *testing.T) {
	entry := func(name string, d float64) *parser.Entry {
		return &parser.Entry{Record: &parser.Record{Name: name, Duration: d}}
	}
	entries := []*parser.Entry{
		entry("A", 700), entry("B", 9000), entry("A", 650), entry("A", 800), entry("C", 7000),
	}

	buckets := OperationBuckets(entries, 0)
	assert.Equal(t, "A", TargetOperation(buckets))
	assert.Equal(t, []string{"A", "B", "C"}, bucketKeys(buckets))
	assert.Empty(t, TargetOperation(nil))
}

func TestHighLatencyIsStrict(t *testing.T) {
	entries := []*parser.Entry{
		{Record: &parser.Record{Duration: 600}},
		{Record: &parser.Record{Duration: 600.5}},
		{Record: nil},
	}
	assert.Len(t, HighLatency(entries, 600), 1)
}

func TestTimeline(t *testing.T) {
	at := func(ts string, d float64) *parser.Entry {
		return &parser.Entry{Record: &parser.Record{StartTime: ts, Duration: d}}
	}
	entries := []*parser.Entry{
		at("2024-05-01T10:00:00Z", 700),
		at("2024-05-01T10:01:30.1234567Z", 100),
		at("2024-05-01T10:07:00Z", 900),
		at("not a time", 5000),
	}

	gen := NewTimelineGenerator()
	timeline := gen.GenerateTimeline(entries, 600, 5*time.Minute)
	require.Len(t, timeline.Buckets, 2)
	assert.Equal(t, 2, timeline.Buckets[0].EntryCount)
	assert.Equal(t, 1, timeline.Buckets[0].HighLatencyCount)
	assert.Equal(t, 700.0, timeline.Buckets[0].MaxDuration)
	assert.Equal(t, 1, timeline.Buckets[1].EntryCount)

	stats := gen.GetTimelineStats(timeline)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.TotalHighLatency)
	assert.Equal(t, timeline.Buckets[0].Start, stats.PeakActivityTime)

	assert.Empty(t, gen.GenerateTimeline(entries, 600, 0).Buckets)
	assert.Empty(t, gen.GenerateTimeline(nil, 600, time.Minute).Buckets)
}

func TestDetectTrends(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	timeline := &Timeline{BucketSize: time.Minute}
	for i := 0; i < 5; i++ {
		timeline.Buckets = append(timeline.Buckets, TimeBucket{
			Start:      base.Add(time.Duration(i) * time.Minute),
			End:        base.Add(time.Duration(i+1) * time.Minute),
			EntryCount: 10 * (i + 1),
		})
	}

	trends := NewTimelineGenerator().DetectTrends(timeline)
	require.NotEmpty(t, trends)
	assert.Equal(t, "entry_count", trends[0].Name)
	assert.Equal(t, "increasing", trends[0].Type)
	assert.InDelta(t, 1.0, trends[0].Strength, 1e-9)

	assert.Nil(t, NewTimelineGenerator().DetectTrends(&Timeline{Buckets: timeline.Buckets[:2]}))
}

func TestSnapshotsDeduplicate(t *testing.T) {
	batch := parser.NewLenientParser(0).ParseLines([]string{slowLine, slowLine})

	system, configs := Snapshots(batch.Entries)
	assert.Len(t, system, 1)
	assert.Len(t, configs, 1)

	system, configs = Snapshots(nil)
	assert.Nil(t, system)
	assert.Nil(t, configs)
}

func TestEngineRecordsStageTimings(t *testing.T) {
	c := monitor.New()
	engine := NewEngine()
	engine.WithCollector(c)

	_, err := engine.Analyze(context.Background(), strings.Join([]string{slowLine, "###"}, "\n"))
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.Lines)
	assert.Equal(t, int64(1), snap.Records)

	var stages []monitor.Stage
	for _, st := range snap.Stages {
		stages = append(stages, st.Stage)
	}
	assert.Equal(t, []monitor.Stage{
		monitor.StageParse, monitor.StageBucket, monitor.StageExtract, monitor.StageAggregate, monitor.StageSnapshots,
	}, stages)
}
