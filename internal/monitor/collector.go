package monitor

import (
	"time"
)

// Collector accumulates stage timings and throughput counters across one or
// more analysis runs. It is safe for concurrent use.
type Collector struct {
	timers  map[Stage]*Timer
	lines   Counter
	bytes   Counter
	records Counter
	start   time.Time
	now     func() time.Time
}

// New creates a collector with a timer for every stage
func New() *Collector {
	c := &Collector{
		timers: make(map[Stage]*Timer, len(Stages())),
		now:    time.Now,
	}
	for _, s := range Stages() {
		c.timers[s] = NewTimer()
	}
	c.start = c.now()
	return c
}

// Track times fn under stage. A nil collector just runs fn.
func (c *Collector) Track(stage Stage, fn func() error) error {
	if c == nil {
		return fn()
	}
	start := c.now()
	err := fn()
	c.Observe(stage, c.now().Sub(start))
	if err != nil {
		if t, ok := c.timers[stage]; ok {
			t.errors.Add(1)
		}
	}
	return err
}

// Observe records an externally measured stage duration
func (c *Collector) Observe(stage Stage, d time.Duration) {
	if c == nil {
		return
	}
	if t, ok := c.timers[stage]; ok {
		t.Record(d)
	}
}

// RecordInput counts lines and bytes handed to the parser
func (c *Collector) RecordInput(lines int, bytes int) {
	if c == nil {
		return
	}
	c.lines.Add(int64(lines))
	c.bytes.Add(int64(bytes))
}

// RecordRecords counts successfully parsed records
func (c *Collector) RecordRecords(n int) {
	if c == nil {
		return
	}
	c.records.Add(int64(n))
}

// Timer returns the timer of stage
func (c *Collector) Timer(stage Stage) *Timer {
	return c.timers[stage]
}

// Snapshot returns a point-in-time view of the collected metrics
func (c *Collector) Snapshot() Snapshot {
	elapsed := c.now().Sub(c.start)

	snap := Snapshot{
		Timestamp: c.now(),
		Elapsed:   elapsed,
		Lines:     c.lines.Get(),
		Bytes:     c.bytes.Get(),
		Records:   c.records.Get(),
		Memory:    collectMemory(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		snap.LinesPerSecond = float64(snap.Lines) / secs
		snap.BytesPerSecond = float64(snap.Bytes) / secs
	}

	for _, s := range Stages() {
		t := c.timers[s]
		if t.Count() == 0 {
			continue
		}
		snap.Stages = append(snap.Stages, StageMetrics{
			Stage:  s,
			Count:  t.Count(),
			Errors: t.errors.Load(),
			Total:  t.TotalTime(),
			Min:    t.MinTime(),
			Max:    t.MaxTime(),
			Avg:    t.AvgTime(),
		})
	}
	return snap
}
