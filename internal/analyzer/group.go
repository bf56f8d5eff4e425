package analyzer

import (
	"sort"

	"github.com/yildizm/DiagSum/internal/stats"
)

// DefaultDisplayLimit caps ranked samples inside a bucket
const DefaultDisplayLimit = 50

// noKey labels members whose grouping key is empty
const noKey = "(none)"

// Range labels of the percentile slices, in order
const (
	RangeUpToP50  = "<=P50"
	RangeP50ToP75 = "P50-P75"
	RangeP75ToP90 = "P75-P90"
	RangeP90ToP95 = "P90-P95"
	RangeAboveP95 = ">P95"
)

// Slice is the part of a bucket whose durations fall in (Lower, Upper].
// The first slice has no lower bound.
type Slice[T any] struct {
	Label   string  `json:"label"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Count   int     `json:"count"`
	Entries []T     `json:"entries"`
}

// Bucket is a named group with statistics and ranked, capped samples
type Bucket[T any] struct {
	Key     string        `json:"key"`
	Count   int           `json:"count"`
	Stats   stats.Summary `json:"stats"`
	Entries []T           `json:"entries"`
	Slices  []Slice[T]    `json:"slices"`
}

// GroupBy partitions items by key and summarizes each partition. Buckets are
// ordered by member count descending, ties broken by key. Entry lists are
// ranked by duration descending and capped at limit.
func GroupBy[T any](items []T, key func(T) string, duration func(T) float64, limit int) []*Bucket[T] {
	if len(items) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}

	members := make(map[string][]T)
	var order []string
	for _, item := range items {
		k := key(item)
		if k == "" {
			k = noKey
		}
		if _, ok := members[k]; !ok {
			order = append(order, k)
		}
		members[k] = append(members[k], item)
	}

	buckets := make([]*Bucket[T], 0, len(order))
	for _, k := range order {
		buckets = append(buckets, newBucket(k, members[k], duration, limit))
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

func newBucket[T any](key string, members []T, duration func(T) float64, limit int) *Bucket[T] {
	summary := stats.Summarize(Durations(members, duration))

	ranked := Rank(members, duration)
	return &Bucket[T]{
		Key:     key,
		Count:   len(members),
		Stats:   summary,
		Entries: capped(ranked, limit),
		Slices:  slicesOf(ranked, duration, summary, limit),
	}
}

// slicesOf distributes ranked members into contiguous percentile ranges.
// Every member lands in exactly one slice.
func slicesOf[T any](ranked []T, duration func(T) float64, s stats.Summary, limit int) []Slice[T] {
	slices := []Slice[T]{
		{Label: RangeUpToP50, Lower: s.Min, Upper: s.P50},
		{Label: RangeP50ToP75, Lower: s.P50, Upper: s.P75},
		{Label: RangeP75ToP90, Lower: s.P75, Upper: s.P90},
		{Label: RangeP90ToP95, Lower: s.P90, Upper: s.P95},
		{Label: RangeAboveP95, Lower: s.P95, Upper: s.Max},
	}

	for _, m := range ranked {
		d := duration(m)
		idx := len(slices) - 1
		switch {
		case d <= s.P50:
			idx = 0
		case d <= s.P75:
			idx = 1
		case d <= s.P90:
			idx = 2
		case d <= s.P95:
			idx = 3
		}
		slices[idx].Count++
		if len(slices[idx].Entries) < limit {
			slices[idx].Entries = append(slices[idx].Entries, m)
		}
	}
	return slices
}

// Rank returns a copy of items ordered by duration descending. Equal
// durations keep their input order.
func Rank[T any](items []T, duration func(T) float64) []T {
	ranked := make([]T, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return duration(ranked[i]) > duration(ranked[j])
	})
	return ranked
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Durations extracts the duration of every item
func Durations[T any](items []T, duration func(T) float64) []float64 {
	values := make([]float64, len(items))
	for i, item := range items {
		values[i] = duration(item)
	}
	return values
}
