package analyzer

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	key string
	ms  float64
}

func itemKey(i item) string       { return i.key }
func itemDuration(i item) float64 { return i.ms }

func bucketKeys[T any](buckets []*Bucket[T]) []string {
	keys := make([]string, len(buckets))
	for i, b := range buckets {
		keys[i] = b.Key
	}
	return keys
}

func TestGroupByOrdering(t *testing.T) {
	items := []item{
		{"b", 1}, {"c", 2}, {"a", 3}, {"c", 4}, {"b", 5}, {"a", 6}, {"c", 7}, {"", 8},
	}

	buckets := GroupBy(items, itemKey, itemDuration, 0)
	if diff := cmp.Diff([]string{"c", "a", "b", noKey}, bucketKeys(buckets)); diff != "" {
		t.Errorf("bucket order mismatch (-want +got):\n%s", diff)
	}

	c := buckets[0]
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, []item{{"c", 7}, {"c", 4}, {"c", 2}}, c.Entries)
	assert.Equal(t, 2.0, c.Stats.Min)
	assert.Equal(t, 7.0, c.Stats.Max)

	assert.Nil(t, GroupBy(nil, itemKey, itemDuration, 10))
}

func TestGroupByCapsEntries(t *testing.T) {
	items := make([]item, 0, 120)
	for i := 0; i < 120; i++ {
		items = append(items, item{key: "k", ms: float64(i)})
	}

	buckets := GroupBy(items, itemKey, itemDuration, 50)
	require.Len(t, buckets, 1)
	b := buckets[0]

	assert.Equal(t, 120, b.Count)
	assert.Len(t, b.Entries, 50)
	assert.Equal(t, 119.0, b.Entries[0].ms)
	for _, s := range b.Slices {
		assert.LessOrEqual(t, len(s.Entries), 50)
	}
}

func TestSlicesCoverEveryMember(t *testing.T) {
	durations := []float64{601, 650, 700, 700, 720, 810, 990, 1000, 1500, 2400, 3000, 650, 601, 8000, 777}
	items := make([]item, len(durations))
	for i, d := range durations {
		items[i] = item{key: "op" + strconv.Itoa(i%2), ms: d}
	}

	for _, b := range GroupBy(items, itemKey, itemDuration, 1000) {
		require.Len(t, b.Slices, 5)

		total := 0
		seen := make(map[float64]int)
		for n, s := range b.Slices {
			total += s.Count
			for _, e := range s.Entries {
				seen[e.ms]++
				assert.LessOrEqual(t, e.ms, s.Upper, "slice %s", s.Label)
				if n > 0 {
					assert.Greater(t, e.ms, s.Lower, "slice %s", s.Label)
				}
			}
			for i := 1; i < len(s.Entries); i++ {
				assert.GreaterOrEqual(t, s.Entries[i-1].ms, s.Entries[i].ms)
			}
		}
		assert.Equal(t, b.Count, total)

		members := make(map[float64]int)
		for _, e := range b.Entries {
			members[e.ms]++
		}
		assert.Equal(t, members, seen)
	}
}

func TestSingleMemberSlices(t *testing.T) {
	buckets := GroupBy([]item{{"x", 750}}, itemKey, itemDuration, 0)
	require.Len(t, buckets, 1)

	slices := buckets[0].Slices
	assert.Equal(t, 1, slices[0].Count)
	for _, s := range slices[1:] {
		assert.Zero(t, s.Count)
	}
}

func TestRankIsStable(t *testing.T) {
	items := []item{{"a", 1}, {"b", 5}, {"c", 1}, {"d", 5}}
	got := Rank(items, itemDuration)

	assert.Equal(t, []item{{"b", 5}, {"d", 5}, {"a", 1}, {"c", 1}}, got)
	assert.Equal(t, item{"a", 1}, items[0], "input must not be reordered")
}
