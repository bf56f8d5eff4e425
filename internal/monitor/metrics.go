package monitor

import (
	"math"
	"runtime"
	"sync/atomic"
	"time"
)

// Stage names one step of an analysis run
type Stage string

const (
	StageRead      Stage = "read"
	StageParse     Stage = "parse"
	StageBucket    Stage = "bucket"
	StageExtract   Stage = "extract"
	StageAggregate Stage = "aggregate"
	StageSnapshots Stage = "snapshots"
	StageFormat    Stage = "format"
)

// Stages lists every stage in pipeline order
func Stages() []Stage {
	return []Stage{StageRead, StageParse, StageBucket, StageExtract, StageAggregate, StageSnapshots, StageFormat}
}

// Counter is a thread-safe counter metric
type Counter struct {
	value atomic.Int64
}

// Add adds the given value to the counter
func (c *Counter) Add(value int64) {
	c.value.Add(value)
}

// Get returns the current counter value
func (c *Counter) Get() int64 {
	return c.value.Load()
}

// Timer is a thread-safe timer for measuring stage durations
type Timer struct {
	count     atomic.Int64
	errors    atomic.Int64
	totalTime atomic.Int64
	minTime   atomic.Int64
	maxTime   atomic.Int64
}

// NewTimer creates a new timer metric
func NewTimer() *Timer {
	t := &Timer{}
	t.minTime.Store(math.MaxInt64)
	return t
}

// Record records a duration measurement
func (t *Timer) Record(duration time.Duration) {
	nanos := duration.Nanoseconds()

	t.count.Add(1)
	t.totalTime.Add(nanos)

	for {
		current := t.minTime.Load()
		if nanos >= current || t.minTime.CompareAndSwap(current, nanos) {
			break
		}
	}
	for {
		current := t.maxTime.Load()
		if nanos <= current || t.maxTime.CompareAndSwap(current, nanos) {
			break
		}
	}
}

// Count returns the number of recorded measurements
func (t *Timer) Count() int64 {
	return t.count.Load()
}

// TotalTime returns the total time of all measurements
func (t *Timer) TotalTime() time.Duration {
	return time.Duration(t.totalTime.Load())
}

// MinTime returns the minimum recorded time
func (t *Timer) MinTime() time.Duration {
	minTime := t.minTime.Load()
	if minTime == math.MaxInt64 {
		return 0
	}
	return time.Duration(minTime)
}

// MaxTime returns the maximum recorded time
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(t.maxTime.Load())
}

// AvgTime returns the average time of all measurements
func (t *Timer) AvgTime() time.Duration {
	count := t.count.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(t.totalTime.Load() / count)
}

// MemoryMetrics holds memory-related performance metrics
type MemoryMetrics struct {
	HeapAlloc    uint64 `json:"heap_alloc"`     // bytes allocated in heap
	TotalAlloc   uint64 `json:"total_alloc"`    // total bytes allocated
	Sys          uint64 `json:"sys"`            // total bytes from system
	NumGC        uint32 `json:"num_gc"`         // number of garbage collections
	PauseTotalNs uint64 `json:"pause_total_ns"` // total GC pause time
	Goroutines   int    `json:"goroutines"`
}

// collectMemory reads current memory metrics from the Go runtime
func collectMemory() MemoryMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryMetrics{
		HeapAlloc:    m.HeapAlloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		Goroutines:   runtime.NumGoroutine(),
	}
}
