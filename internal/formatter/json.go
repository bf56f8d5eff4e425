package formatter

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/network"
	"github.com/yildizm/DiagSum/internal/parser"
	"github.com/yildizm/DiagSum/internal/stats"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(analysis *analyzer.Analysis) ([]byte, error) {
	output := &EnhancedJSONOutput{
		Summary:         createSummary(analysis),
		Operations:      createGroupOutputs(analysis.Operations, entryLine),
		Interactions:    analysis.Interactions,
		Groupings:       createGroupingOutputs(analysis.Groupings),
		Calls:           analysis.Calls,
		System:          analysis.System,
		ClientConfig:    analysis.ClientConfig,
		Timeline:        createTimelineOutput(analysis.Timeline),
		Trends:          analysis.Trends,
		Recommendations: generateRecommendations(analysis),
	}

	return jsonAPI.MarshalIndent(output, "", "  ")
}

// EnhancedJSONOutput represents the JSON report
type EnhancedJSONOutput struct {
	Summary         *SummaryOutput                  `json:"summary"`
	Operations      []*GroupOutput                  `json:"operations"`
	Interactions    []*network.Interaction          `json:"interactions"`
	Groupings       map[string][]*GroupOutput       `json:"groupings"`
	Calls           analyzer.CallSummary            `json:"calls"`
	System          []analyzer.SystemSnapshot       `json:"system,omitempty"`
	ClientConfig    []analyzer.ClientConfigSnapshot `json:"client_config,omitempty"`
	Timeline        *TimelineOutput                 `json:"timeline,omitempty"`
	Trends          []analyzer.TimelineTrend        `json:"trends,omitempty"`
	Recommendations []string                        `json:"recommendations"`
}

// SummaryOutput represents the summary section
type SummaryOutput struct {
	ID                   string                `json:"id"`
	Source               string                `json:"source,omitempty"`
	GeneratedAt          time.Time             `json:"generated_at"`
	Parser               string                `json:"parser"`
	LatencyThreshold     float64               `json:"latency_threshold_ms"`
	InteractionThreshold float64               `json:"interaction_threshold_ms"`
	TotalLines           int                   `json:"total_lines"`
	ParsedEntries        int                   `json:"parsed_entries"`
	RepairedEntries      int                   `json:"repaired_entries"`
	FailedEntries        map[parser.Reason]int `json:"failed_entries,omitempty"`
	HighLatencyEntries   int                   `json:"high_latency_entries"`
	TargetOperation      string                `json:"target_operation,omitempty"`
	LatencyStats         stats.Summary         `json:"latency_stats"`
	ExtractedCalls       int                   `json:"extracted_interactions"`
	TotalInteractions    int                   `json:"total_interactions"`
	InteractionStats     stats.Summary         `json:"interaction_stats"`
}

// GroupOutput is a bucket with its samples reduced to line numbers
type GroupOutput struct {
	Key    string         `json:"key"`
	Count  int            `json:"count"`
	Stats  stats.Summary  `json:"stats"`
	Lines  []int          `json:"lines"`
	Slices []*SliceOutput `json:"slices"`
}

// SliceOutput is one percentile slice of a group
type SliceOutput struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
	Lines []int   `json:"lines"`
}

// TimelineOutput represents timeline data
type TimelineOutput struct {
	BucketSize string                `json:"bucket_size"`
	Buckets    []analyzer.TimeBucket `json:"buckets"`
}

func createSummary(analysis *analyzer.Analysis) *SummaryOutput {
	return &SummaryOutput{
		ID:                   analysis.ID,
		Source:               analysis.Source,
		GeneratedAt:          analysis.GeneratedAt,
		Parser:               analysis.Parser,
		LatencyThreshold:     analysis.LatencyThreshold,
		InteractionThreshold: analysis.InteractionThreshold,
		TotalLines:           analysis.TotalLines,
		ParsedEntries:        analysis.ParsedEntries,
		RepairedEntries:      analysis.RepairedEntries,
		FailedEntries:        analysis.FailedEntries,
		HighLatencyEntries:   analysis.HighLatencyEntries,
		TargetOperation:      analysis.TargetOperation,
		LatencyStats:         analysis.LatencyStats,
		ExtractedCalls:       analysis.ExtractedInteractions,
		TotalInteractions:    analysis.TotalInteractions,
		InteractionStats:     analysis.InteractionStats,
	}
}

func entryLine(e *parser.Entry) int { return e.LineNumber }

func interactionLine(i *network.Interaction) int { return i.LineNumber }

// createGroupOutputs reduces buckets to line references
func createGroupOutputs[T any](buckets []*analyzer.Bucket[T], line func(T) int) []*GroupOutput {
	outputs := make([]*GroupOutput, 0, len(buckets))
	for _, b := range buckets {
		out := &GroupOutput{
			Key:    b.Key,
			Count:  b.Count,
			Stats:  b.Stats,
			Lines:  lines(b.Entries, line),
			Slices: make([]*SliceOutput, 0, len(b.Slices)),
		}
		for _, s := range b.Slices {
			out.Slices = append(out.Slices, &SliceOutput{
				Label: s.Label,
				Lower: s.Lower,
				Upper: s.Upper,
				Count: s.Count,
				Lines: lines(s.Entries, line),
			})
		}
		outputs = append(outputs, out)
	}
	return outputs
}

func lines[T any](items []T, line func(T) int) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, line(it))
	}
	return out
}

func createGroupingOutputs(g analyzer.Groupings) map[string][]*GroupOutput {
	return map[string][]*GroupOutput{
		"operations":       createGroupOutputs(g.Operations, interactionLine),
		"resources":        createGroupOutputs(g.Resources, interactionLine),
		"statuses":         createGroupOutputs(g.Statuses, interactionLine),
		"exceptions":       createGroupOutputs(g.Exceptions, interactionLine),
		"transport_events": createGroupOutputs(g.TransportEvents, interactionLine),
		"bottlenecks":      createGroupOutputs(g.Bottlenecks, interactionLine),
	}
}

func createTimelineOutput(timeline *analyzer.Timeline) *TimelineOutput {
	if timeline == nil {
		return nil
	}

	return &TimelineOutput{
		BucketSize: timeline.BucketSize.String(),
		Buckets:    timeline.Buckets,
	}
}
