package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/DiagSum/internal/analyzer"
)

// markdownInteractionRows caps the interaction table
const markdownInteractionRows = 20

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(analysis *analyzer.Analysis) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Diagnostics Latency Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", analysis.GeneratedAt.Format("2006-01-02 15:04:05"))
	if analysis.Source != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", analysis.Source)
	}

	f.writeTableOfContents(&b, analysis)
	f.writeSummaryTable(&b, analysis)

	if len(analysis.Operations) > 0 {
		f.writeOperations(&b, analysis)
	}

	if analysis.TotalInteractions > 0 {
		f.writeGroupings(&b, analysis.Groupings)
		f.writeInteractions(&b, analysis)
	}

	if len(analysis.System) > 0 || len(analysis.ClientConfig) > 0 {
		f.writeClient(&b, analysis)
	}

	if analysis.Timeline != nil && len(analysis.Timeline.Buckets) > 0 {
		f.writeTimelineSection(&b, analysis)
	}

	f.writeRecommendations(&b, analysis)

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeTableOfContents(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Table of Contents\n")
	b.WriteString("- [Summary](#summary)\n")

	if len(analysis.Operations) > 0 {
		b.WriteString("- [Operations](#operations)\n")
	}

	if analysis.TotalInteractions > 0 {
		b.WriteString("- [Interaction Groups](#interaction-groups)\n")
		b.WriteString("- [Slowest Interactions](#slowest-interactions)\n")
	}

	if len(analysis.System) > 0 || len(analysis.ClientConfig) > 0 {
		b.WriteString("- [Client Environment](#client-environment)\n")
	}

	if analysis.Timeline != nil && len(analysis.Timeline.Buckets) > 0 {
		b.WriteString("- [Timeline Analysis](#timeline-analysis)\n")
	}

	b.WriteString("- [Recommendations](#recommendations)\n\n")
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Summary\n\n")

	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Total Lines | %s |\n", formatNumber(analysis.TotalLines))
	fmt.Fprintf(b, "| Parsed | %s |\n", formatNumber(analysis.ParsedEntries))
	fmt.Fprintf(b, "| Repaired | %s |\n", formatNumber(analysis.RepairedEntries))
	fmt.Fprintf(b, "| Failed | %s |\n", formatNumber(analysis.Failed()))
	fmt.Fprintf(b, "| Latency Threshold | %s |\n", formatMs(analysis.LatencyThreshold))
	fmt.Fprintf(b, "| High Latency | %d (%.1f%%) |\n",
		analysis.HighLatencyEntries, percent(analysis.HighLatencyEntries, analysis.ParsedEntries))
	if analysis.TargetOperation != "" {
		fmt.Fprintf(b, "| Target Operation | %s |\n", escapeMarkdown(analysis.TargetOperation))
	}
	fmt.Fprintf(b, "| Interactions | %d of %d |\n\n", analysis.TotalInteractions, analysis.ExtractedInteractions)

	if !analysis.LatencyStats.IsZero() {
		fmt.Fprintf(b, "High latency records: `%s`\n\n", statsLine(analysis.LatencyStats))
	}
}

func (f *markdownFormatter) writeOperations(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Operations\n\n")
	writeStatsHeader(b, "Operation")
	for _, op := range analysis.Operations {
		writeStatsRow(b, op.Key, op.Count, op.Stats.Min, op.Stats.P50, op.Stats.P75, op.Stats.P90, op.Stats.P95, op.Stats.Max)
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeGroupings(b *strings.Builder, g analyzer.Groupings) {
	b.WriteString("## Interaction Groups\n\n")

	for _, section := range g.Sections() {
		if len(section.Buckets) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", section.Name)
		writeStatsHeader(b, "Key")
		for _, bucket := range section.Buckets {
			s := bucket.Stats
			writeStatsRow(b, bucket.Key, bucket.Count, s.Min, s.P50, s.P75, s.P90, s.P95, s.Max)
		}
		b.WriteString("\n")
	}
}

func writeStatsHeader(b *strings.Builder, key string) {
	fmt.Fprintf(b, "| %s | Count | Min | P50 | P75 | P90 | P95 | Max |\n", key)
	b.WriteString("|-----|------:|----:|----:|----:|----:|----:|----:|\n")
}

func writeStatsRow(b *strings.Builder, key string, count int, values ...float64) {
	fmt.Fprintf(b, "| %s | %d |", escapeMarkdown(key), count)
	for _, v := range values {
		fmt.Fprintf(b, " %.1f |", v)
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeInteractions(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Slowest Interactions\n\n")
	b.WriteString("| Line | Resource | Status | Duration | Bottleneck | Terminal Event | Partition | Exception |\n")
	b.WriteString("|-----:|----------|--------|---------:|------------|----------------|-----------|-----------|\n")

	rows := analysis.Interactions
	if len(rows) > markdownInteractionRows {
		rows = rows[:markdownInteractionRows]
	}
	for _, it := range rows {
		fmt.Fprintf(b, "| %d | %s | %s | %.1f | %s | %s | %s | %s |\n",
			it.LineNumber,
			escapeMarkdown(it.Resource()),
			it.Status(),
			it.Duration,
			escapeMarkdown(it.BottleneckPhase),
			escapeMarkdown(it.TerminalEvent),
			escapeMarkdown(it.PartitionKeyRangeID),
			escapeMarkdown(it.ExceptionMessage))
	}
	if len(analysis.Interactions) > len(rows) {
		fmt.Fprintf(b, "\n%d more interactions omitted.\n", len(analysis.Interactions)-len(rows))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeClient(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Client Environment\n\n")

	if len(analysis.System) > 0 {
		b.WriteString("| Time | CPU | Memory (KB) | Thread Starving | Available Threads | Open TCP |\n")
		b.WriteString("|------|----:|------------:|-----------------|------------------:|---------:|\n")
		for _, s := range analysis.System {
			fmt.Fprintf(b, "| %s | %.1f | %.0f | %t | %d | %d |\n",
				s.Time, s.CPU, s.MemoryKB, s.ThreadStarving, s.AvailableThreads, s.OpenTCPConnections)
		}
		b.WriteString("\n")
	}

	for _, c := range analysis.ClientConfig {
		fmt.Fprintf(b, "- **Client created** %s: mode %s, %d created, %d active, %d processors\n",
			c.CreatedTime, c.ConnectionMode, c.ClientsCreated, c.ActiveClients, c.ProcessorCount)
		if c.UserAgent != "" {
			fmt.Fprintf(b, "  - User agent: `%s`\n", c.UserAgent)
		}
	}
	if len(analysis.ClientConfig) > 0 {
		b.WriteString("\n")
	}
}

// writeTimelineSection writes timeline analysis with ASCII chart
func (f *markdownFormatter) writeTimelineSection(b *strings.Builder, analysis *analyzer.Analysis) {
	timeline := analysis.Timeline
	b.WriteString("## Timeline Analysis\n\n")

	fmt.Fprintf(b, "**Bucket Size**: %s\n\n", timeline.BucketSize.String())

	b.WriteString("```\n")
	b.WriteString("Activity Timeline:\n")

	maxEntries := 0
	for _, bucket := range timeline.Buckets {
		if bucket.EntryCount > maxEntries {
			maxEntries = bucket.EntryCount
		}
	}

	for _, bucket := range timeline.Buckets {
		barLength := 20
		if maxEntries > 0 {
			barLength = int(float64(bucket.EntryCount) / float64(maxEntries) * 20)
		}

		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 20-barLength)
		fmt.Fprintf(b, "%s │%s│ %d entries, %d slow\n",
			bucket.Start.Format("15:04"), bar, bucket.EntryCount, bucket.HighLatencyCount)
	}
	b.WriteString("```\n\n")

	for _, trend := range analysis.Trends {
		fmt.Fprintf(b, "- %s is %s (strength %.2f)\n", trend.Name, trend.Type, trend.Strength)
	}
	if len(analysis.Trends) > 0 {
		b.WriteString("\n")
	}
}

// writeRecommendations writes actionable recommendations
func (f *markdownFormatter) writeRecommendations(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Recommendations\n\n")

	recommendations := generateRecommendations(analysis)

	for i, rec := range recommendations {
		fmt.Fprintf(b, "%d. %s\n", i+1, rec)
	}

	b.WriteString("\n---\n")
	b.WriteString("*Report generated by DiagSum*\n")
}

// escapeMarkdown keeps table cells on one line
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
