package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/parser"
	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := emojiOptions()
	opts.Color = color
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(analysis *analyzer.Analysis) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)
	f.writeStatistics(&b, analysis)

	if analysis.HighLatencyEntries > 0 {
		f.writeLatency(&b, analysis)
		f.writeOperations(&b, analysis.Operations)
	}

	if analysis.TotalInteractions > 0 {
		f.writeGroupings(&b, analysis)
	}

	if analysis.Calls.DirectTotal+analysis.Calls.GatewayTotal > 0 {
		f.writeCalls(&b, analysis.Calls)
	}

	if len(analysis.System) > 0 || len(analysis.ClientConfig) > 0 {
		f.writeClient(&b, analysis)
	}

	f.writeTextRecommendations(&b, analysis)

	return []byte(b.String()), nil
}

// writeHeader writes the boxed report title
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Diagnostics Latency Summary"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeStatistics writes the line accounting as a tree
func (f *terminalFormatter) writeStatistics(b *strings.Builder, analysis *analyzer.Analysis) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Statistics\n")

	items := []termfmt.TreeItem{
		{Label: "Total Lines", Value: formatNumber(analysis.TotalLines)},
		{Label: "Parsed", Value: formatNumber(analysis.ParsedEntries)},
		{Label: "Repaired", Value: formatNumber(analysis.RepairedEntries)},
		{Label: "Failed", Value: formatNumber(analysis.Failed())},
		{
			Label: fmt.Sprintf("Above %.0f ms", analysis.LatencyThreshold),
			Value: fmt.Sprintf("%d (%.1f%%)", analysis.HighLatencyEntries, percent(analysis.HighLatencyEntries, analysis.ParsedEntries)),
			Last:  true,
		},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeLatency writes the duration percentiles of slow records
func (f *terminalFormatter) writeLatency(b *strings.Builder, analysis *analyzer.Analysis) {
	symbol := termfmt.GetEmoji("perf_pattern", f.opts)
	b.WriteString(symbol + " High Latency Records\n")
	b.WriteString("   " + statsLine(analysis.LatencyStats) + "\n")
	if analysis.TargetOperation != "" {
		target := termfmt.GetEmoji("target", f.opts)
		fmt.Fprintf(b, "   %s Target operation: %s\n", target, analysis.TargetOperation)
	}
	b.WriteString("\n")
}

// writeOperations lists the slowest operation names
func (f *terminalFormatter) writeOperations(b *strings.Builder, operations []*analyzer.Bucket[*parser.Entry]) {
	opts := termfmt.DefaultOptions()
	opts.Emoji = false
	symbol := termfmt.GetEmoji("help", opts)
	b.WriteString(symbol + " Operations\n")

	top := topBuckets(operations, topGroups)
	for i, op := range top {
		branch := "├─"
		if i == len(top)-1 {
			branch = "└─"
		}
		fmt.Fprintf(b, "%s %s (%d) p50 %.1f ms, max %.1f ms\n", branch, op.Key, op.Count, op.Stats.P50, op.Stats.Max)
	}
	b.WriteString("\n")
}

// writeGroupings writes each interaction breakdown as a tree with
// percentile slices as children
func (f *terminalFormatter) writeGroupings(b *strings.Builder, analysis *analyzer.Analysis) {
	symbol := termfmt.GetEmoji("insights", f.opts)
	fmt.Fprintf(b, "%s Backend Interactions (%d above %.0f ms)\n", symbol, analysis.TotalInteractions, analysis.InteractionThreshold)
	b.WriteString("   " + statsLine(analysis.InteractionStats) + "\n\n")

	for _, section := range analysis.Groupings.Sections() {
		if len(section.Buckets) == 0 {
			continue
		}
		b.WriteString(section.Name + "\n")

		top := topBuckets(section.Buckets, topGroups)
		items := make([]termfmt.TreeItem, 0, len(top))
		for i, bucket := range top {
			items = append(items, termfmt.TreeItem{
				Label:    f.bucketLabel(section.Name, bucket.Key),
				Value:    fmt.Sprintf("%d calls, p95 %.1f ms", bucket.Count, bucket.Stats.P95),
				Children: f.sliceItems(bucket),
				Last:     i == len(top)-1,
			})
		}

		tree := termfmt.TreeViewWithOptions(items, f.opts)
		b.WriteString(tree + "\n\n")
	}
}

func (f *terminalFormatter) bucketLabel(section, key string) string {
	switch section {
	case "Status / Sub-status":
		return getStatusEmoji(key) + " " + key
	case "Terminal Transport Event", "Bottleneck Phase":
		return getPhaseEmoji(key) + " " + key
	default:
		return key
	}
}

// sliceItems renders the non-empty percentile slices of a bucket
func (f *terminalFormatter) sliceItems(bucket *analyzer.InteractionBucket) []termfmt.TreeItem {
	var items []termfmt.TreeItem
	for _, s := range bucket.Slices {
		if s.Count == 0 {
			continue
		}
		items = append(items, termfmt.TreeItem{
			Label: s.Label,
			Value: fmt.Sprintf("%d (%.1f-%.1f ms)", s.Count, s.Lower, s.Upper),
		})
	}
	if len(items) > 0 {
		items[len(items)-1].Last = true
	}
	return items
}

// writeCalls writes the backend call counts from the record summaries
func (f *terminalFormatter) writeCalls(b *strings.Builder, calls analyzer.CallSummary) {
	symbol := termfmt.GetEmoji("number", f.opts)
	b.WriteString(symbol + " Backend Calls\n")

	items := []termfmt.TreeItem{
		{Label: "Direct", Value: formatNumber(calls.DirectTotal), Children: callItems(calls.Direct)},
		{Label: "Gateway", Value: formatNumber(calls.GatewayTotal), Children: callItems(calls.Gateway), Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

func callItems(m map[string]int) []termfmt.TreeItem {
	keys := sortedKeys(m)
	items := make([]termfmt.TreeItem, 0, len(keys))
	for i, k := range keys {
		items = append(items, termfmt.TreeItem{Label: k, Value: formatNumber(m[k]), Last: i == len(keys)-1})
	}
	return items
}

// writeClient writes the latest system sample and client configuration
func (f *terminalFormatter) writeClient(b *strings.Builder, analysis *analyzer.Analysis) {
	symbol := termfmt.GetEmoji("summary", f.opts)
	b.WriteString(symbol + " Client Environment\n")

	var items []termfmt.TreeItem
	if n := len(analysis.System); n > 0 {
		s := analysis.System[n-1]
		items = append(items, termfmt.TreeItem{
			Label: "System",
			Value: fmt.Sprintf("%d samples, latest %s", n, s.Time),
			Children: []termfmt.TreeItem{
				{Label: "CPU", Value: fmt.Sprintf("%.1f%%", s.CPU)},
				{Label: "Memory", Value: fmt.Sprintf("%.0f KB", s.MemoryKB)},
				{Label: "Thread Starving", Value: fmt.Sprintf("%t", s.ThreadStarving)},
				{Label: "Open TCP Connections", Value: formatNumber(s.OpenTCPConnections), Last: true},
			},
		})
	}
	if n := len(analysis.ClientConfig); n > 0 {
		c := analysis.ClientConfig[n-1]
		items = append(items, termfmt.TreeItem{
			Label: "Client",
			Value: c.ConnectionMode,
			Children: []termfmt.TreeItem{
				{Label: "Clients Created", Value: formatNumber(c.ClientsCreated)},
				{Label: "Active Clients", Value: formatNumber(c.ActiveClients)},
				{Label: "Processors", Value: formatNumber(c.ProcessorCount)},
				{Label: "User Agent", Value: c.UserAgent, Last: true},
			},
		})
	}
	items[len(items)-1].Last = true

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeTextRecommendations writes recommendations for text format using go-termfmt
func (f *terminalFormatter) writeTextRecommendations(b *strings.Builder, analysis *analyzer.Analysis) {
	recommendations := generateRecommendations(analysis)

	symbol := termfmt.GetEmoji("recommendations", f.opts)
	b.WriteString(symbol + " Recommendations\n")

	for i, rec := range recommendations {
		if i < 3 {
			b.WriteString("• " + rec + "\n")
		}
	}
}
