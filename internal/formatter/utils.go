package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/emoji"
	"github.com/yildizm/DiagSum/internal/network"
	"github.com/yildizm/DiagSum/internal/stats"
	"github.com/yildizm/go-termfmt"
)

// topGroups is how many groups summary views show per section
const topGroups = 5

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

func formatMs(v float64) string {
	return fmt.Sprintf("%.1f ms", v)
}

// statsLine renders a summary on one line
func statsLine(s stats.Summary) string {
	return fmt.Sprintf("min %.1f | p50 %.1f | p75 %.1f | p90 %.1f | p95 %.1f | max %.1f",
		s.Min, s.P50, s.P75, s.P90, s.P95, s.Max)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// topBuckets returns at most n buckets
func topBuckets[T any](buckets []*analyzer.Bucket[T], n int) []*analyzer.Bucket[T] {
	if len(buckets) > n {
		return buckets[:n]
	}
	return buckets
}

// sortedKeys returns map keys ordered by count desc then key
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// emojiOptions honours the process-wide --no-emoji setting
func emojiOptions() *termfmt.TerminalOptions {
	opts := termfmt.DefaultOptions()
	opts.Emoji = !emoji.IsEmojiDisabled()
	return opts
}

// getPhaseEmoji returns emoji for transport phases using go-termfmt
func getPhaseEmoji(phase string) string {
	opts := emojiOptions()
	switch phase {
	case network.EventTransitTime:
		return termfmt.GetEmoji("perf_pattern", opts)
	case network.EventChannelAcquisitionStarted:
		return termfmt.GetEmoji("warning", opts)
	default:
		return termfmt.GetEmoji("info", opts)
	}
}

// getStatusEmoji returns emoji for a "status/substatus" key
func getStatusEmoji(status string) string {
	opts := emojiOptions()
	switch {
	case strings.HasPrefix(status, "2"), strings.HasPrefix(status, "304"):
		return termfmt.GetEmoji("success", opts)
	case strings.HasPrefix(status, "4"):
		return termfmt.GetEmoji("warning", opts)
	default:
		return termfmt.GetEmoji("error", opts)
	}
}

// generateRecommendations derives follow-ups from the analysis
func generateRecommendations(analysis *analyzer.Analysis) []string {
	var recommendations []string

	if analysis.HighLatencyEntries == 0 {
		return []string{
			fmt.Sprintf("No operation exceeded %.0f ms; lower the threshold to inspect faster requests", analysis.LatencyThreshold),
		}
	}

	if len(analysis.Groupings.Bottlenecks) > 0 {
		top := analysis.Groupings.Bottlenecks[0]
		switch top.Key {
		case network.EventTransitTime:
			recommendations = append(recommendations,
				fmt.Sprintf("%d slow calls spent most time in transit; check backend latency and cross-region traffic", top.Count))
		case network.EventChannelAcquisitionStarted:
			recommendations = append(recommendations,
				fmt.Sprintf("%d slow calls waited for a channel; review connection limits per endpoint", top.Count))
		case network.EventReceived:
			recommendations = append(recommendations,
				fmt.Sprintf("%d slow calls stalled after the response arrived; look for client-side CPU or thread pool pressure", top.Count))
		}
	}

	for _, b := range analysis.Groupings.Statuses {
		switch {
		case strings.HasPrefix(b.Key, "429/"):
			recommendations = append(recommendations,
				fmt.Sprintf("%d calls were throttled (429); review provisioned throughput", b.Count))
		case strings.HasPrefix(b.Key, "408/"):
			recommendations = append(recommendations,
				fmt.Sprintf("%d calls timed out (408); inspect transport exceptions and network health", b.Count))
		case strings.HasPrefix(b.Key, "410/"):
			recommendations = append(recommendations,
				fmt.Sprintf("%d calls hit gone/partition moves (410); expect retries during splits or failovers", b.Count))
		}
	}

	for _, s := range analysis.System {
		if s.ThreadStarving {
			recommendations = append(recommendations, "Thread starvation was reported by the client; avoid blocking calls on the thread pool")
			break
		}
	}
	for _, s := range analysis.System {
		if s.CPU >= 90 {
			recommendations = append(recommendations, fmt.Sprintf("Client CPU reached %.0f%%; high CPU inflates observed latency", s.CPU))
			break
		}
	}

	if len(analysis.ClientConfig) > 0 && analysis.ClientConfig[len(analysis.ClientConfig)-1].ClientsCreated > 1 {
		recommendations = append(recommendations, "More than one client instance was created; reuse a single client per account")
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Drill into %s: it accounts for the most slow requests", analysis.TargetOperation))
	}

	return recommendations
}
