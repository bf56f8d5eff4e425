package analyzer

import (
	"math"
	"sort"
	"time"

	"github.com/yildizm/DiagSum/internal/parser"
)

// DefaultTimelineBucket is the default timeline bucket width
const DefaultTimelineBucket = 5 * time.Minute

// Timeline represents temporal analysis
type Timeline struct {
	Buckets    []TimeBucket  `json:"buckets"`
	BucketSize time.Duration `json:"bucket_size"`
}

// TimeBucket represents a time window of diagnostics records
type TimeBucket struct {
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	EntryCount       int       `json:"entry_count"`
	HighLatencyCount int       `json:"high_latency_count"`
	MaxDuration      float64   `json:"max_duration_ms"`
}

// HighLatencyRate is the share of slow records in the bucket
func (b TimeBucket) HighLatencyRate() float64 {
	if b.EntryCount == 0 {
		return 0
	}
	return float64(b.HighLatencyCount) / float64(b.EntryCount)
}

// TimelineGenerator buckets records by their start time
type TimelineGenerator struct{}

// NewTimelineGenerator creates a new timeline generator
func NewTimelineGenerator() *TimelineGenerator {
	return &TimelineGenerator{}
}

type timedEntry struct {
	at    time.Time
	entry *parser.Entry
}

// GenerateTimeline buckets entries by start time. Entries without a
// parseable start time are left out.
func (g *TimelineGenerator) GenerateTimeline(entries []*parser.Entry, threshold float64, bucketSize time.Duration) *Timeline {
	timeline := &Timeline{Buckets: []TimeBucket{}, BucketSize: bucketSize}
	if bucketSize <= 0 {
		return timeline
	}

	timed := make([]timedEntry, 0, len(entries))
	for _, e := range entries {
		if at, ok := StartTime(e); ok {
			timed = append(timed, timedEntry{at: at, entry: e})
		}
	}
	if len(timed) == 0 {
		return timeline
	}

	sort.Slice(timed, func(i, j int) bool { return timed[i].at.Before(timed[j].at) })

	start := timed[0].at.Truncate(bucketSize)
	end := timed[len(timed)-1].at.Truncate(bucketSize).Add(bucketSize)
	for current := start; current.Before(end); current = current.Add(bucketSize) {
		timeline.Buckets = append(timeline.Buckets, TimeBucket{Start: current, End: current.Add(bucketSize)})
	}

	for _, t := range timed {
		idx := int(t.at.Sub(start) / bucketSize)
		if idx >= len(timeline.Buckets) {
			idx = len(timeline.Buckets) - 1
		}
		b := &timeline.Buckets[idx]
		b.EntryCount++
		d := t.entry.Duration()
		if d > threshold {
			b.HighLatencyCount++
		}
		if d > b.MaxDuration {
			b.MaxDuration = d
		}
	}
	return timeline
}

// StartTime parses the record's start datetime
func StartTime(e *parser.Entry) (time.Time, bool) {
	if e == nil || e.Record == nil || e.Record.StartTime == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.9999999", "2006-01-02 15:04:05.9999999"} {
		if t, err := time.Parse(layout, e.Record.StartTime); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// TimelineStats provides statistical summary of timeline data
type TimelineStats struct {
	TotalBuckets        int           `json:"total_buckets"`
	ActiveBuckets       int           `json:"active_buckets"`
	TotalEntries        int           `json:"total_entries"`
	TotalHighLatency    int           `json:"total_high_latency"`
	BucketSize          time.Duration `json:"bucket_size"`
	AvgEntriesPerBucket float64       `json:"avg_entries_per_bucket"`
	MaxEntriesPerBucket int           `json:"max_entries_per_bucket"`
	MaxSlowPerBucket    int           `json:"max_slow_per_bucket"`
	HighLatencyRate     float64       `json:"high_latency_rate"`
	PeakActivityTime    time.Time     `json:"peak_activity_time"`
	PeakLatencyTime     time.Time     `json:"peak_latency_time"`
}

// GetTimelineStats returns statistical summary of the timeline
func (g *TimelineGenerator) GetTimelineStats(timeline *Timeline) TimelineStats {
	if timeline == nil || len(timeline.Buckets) == 0 {
		return TimelineStats{}
	}

	stats := TimelineStats{
		TotalBuckets: len(timeline.Buckets),
		BucketSize:   timeline.BucketSize,
	}

	for _, bucket := range timeline.Buckets {
		stats.TotalEntries += bucket.EntryCount
		stats.TotalHighLatency += bucket.HighLatencyCount

		if bucket.EntryCount > 0 {
			stats.ActiveBuckets++
		}
		if bucket.EntryCount > stats.MaxEntriesPerBucket {
			stats.MaxEntriesPerBucket = bucket.EntryCount
			stats.PeakActivityTime = bucket.Start
		}
		if bucket.HighLatencyCount > stats.MaxSlowPerBucket {
			stats.MaxSlowPerBucket = bucket.HighLatencyCount
			stats.PeakLatencyTime = bucket.Start
		}
	}

	if stats.ActiveBuckets > 0 {
		stats.AvgEntriesPerBucket = float64(stats.TotalEntries) / float64(stats.ActiveBuckets)
	}
	if stats.TotalEntries > 0 {
		stats.HighLatencyRate = float64(stats.TotalHighLatency) / float64(stats.TotalEntries)
	}
	return stats
}

// TimelineTrend represents a detected trend in timeline data
type TimelineTrend struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`     // "increasing", "decreasing", "stable"
	Strength  float64   `json:"strength"` // 0-1, confidence in trend
	Slope     float64   `json:"slope"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// DetectTrends identifies trends in record volume and slow-record share
func (g *TimelineGenerator) DetectTrends(timeline *Timeline) []TimelineTrend {
	if timeline == nil || len(timeline.Buckets) < 3 {
		return nil
	}

	var trends []TimelineTrend

	volume := g.detectTrendInSeries("entry_count", timeline.Buckets, func(b TimeBucket) float64 {
		return float64(b.EntryCount)
	})
	if volume.Strength > 0.3 {
		trends = append(trends, volume)
	}

	latency := g.detectTrendInSeries("high_latency_rate", timeline.Buckets, TimeBucket.HighLatencyRate)
	if latency.Strength > 0.3 {
		trends = append(trends, latency)
	}

	return trends
}

// detectTrendInSeries fits a least-squares line; strength is |r|
func (g *TimelineGenerator) detectTrendInSeries(name string, buckets []TimeBucket, value func(TimeBucket) float64) TimelineTrend {
	n := float64(len(buckets))

	var sumX, sumY float64
	for i, b := range buckets {
		sumX += float64(i)
		sumY += value(b)
	}
	meanX, meanY := sumX/n, sumY/n

	var ssX, ssY, ssXY float64
	for i, b := range buckets {
		dx := float64(i) - meanX
		dy := value(b) - meanY
		ssX += dx * dx
		ssY += dy * dy
		ssXY += dx * dy
	}

	trend := TimelineTrend{
		Name:      name,
		Type:      "stable",
		StartTime: buckets[0].Start,
		EndTime:   buckets[len(buckets)-1].End,
	}
	if ssX == 0 {
		return trend
	}

	trend.Slope = ssXY / ssX
	if ssY > 0 {
		trend.Strength = math.Abs(ssXY / math.Sqrt(ssX*ssY))
	}

	switch {
	case trend.Slope > 0.1:
		trend.Type = "increasing"
	case trend.Slope < -0.1:
		trend.Type = "decreasing"
	}
	return trend
}
