package components

import (
	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/stats"
)

// Group is a display copy of an analyzer bucket with samples rendered to text
type Group struct {
	Key     string
	Count   int
	Stats   stats.Summary
	Slices  []GroupSlice
	Samples []Sample
}

// GroupSlice is one percentile slice of a group
type GroupSlice struct {
	Label   string
	Lower   float64
	Upper   float64
	Count   int
	Samples []Sample
}

// Sample is one ranked member of a group
type Sample struct {
	Text     string
	Duration float64
}

// GroupsOf converts buckets for display; sample renders a member
func GroupsOf[T any](buckets []*analyzer.Bucket[T], sample func(T) Sample) []Group {
	groups := make([]Group, 0, len(buckets))
	for _, b := range buckets {
		g := Group{
			Key:     b.Key,
			Count:   b.Count,
			Stats:   b.Stats,
			Samples: samplesOf(b.Entries, sample),
			Slices:  make([]GroupSlice, 0, len(b.Slices)),
		}
		for _, s := range b.Slices {
			g.Slices = append(g.Slices, GroupSlice{
				Label:   s.Label,
				Lower:   s.Lower,
				Upper:   s.Upper,
				Count:   s.Count,
				Samples: samplesOf(s.Entries, sample),
			})
		}
		groups = append(groups, g)
	}
	return groups
}

func samplesOf[T any](items []T, sample func(T) Sample) []Sample {
	out := make([]Sample, 0, len(items))
	for _, it := range items {
		out = append(out, sample(it))
	}
	return out
}
