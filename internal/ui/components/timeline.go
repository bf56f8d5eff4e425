package components

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/ui/theme"
)

// TimelineStrip renders record volume and slow-record share as sparklines
type TimelineStrip struct {
	Timeline *analyzer.Timeline
	Width    int
}

// NewTimelineStrip creates a new timeline strip
func NewTimelineStrip(timeline *analyzer.Timeline, width int) *TimelineStrip {
	return &TimelineStrip{Timeline: timeline, Width: width}
}

// Render renders the strip; empty timelines render nothing
func (t *TimelineStrip) Render() string {
	if t.Timeline == nil || len(t.Timeline.Buckets) < 2 {
		return ""
	}
	styles := theme.GetStyles()

	volume := make([]float64, 0, len(t.Timeline.Buckets))
	slow := make([]float64, 0, len(t.Timeline.Buckets))
	total, totalSlow := 0, 0
	for _, b := range t.Timeline.Buckets {
		volume = append(volume, float64(b.EntryCount))
		slow = append(slow, b.HighLatencyRate())
		total += b.EntryCount
		totalSlow += b.HighLatencyCount
	}

	width := t.Width - 12
	if width < 10 {
		width = 10
	}

	first := t.Timeline.Buckets[0].Start
	last := t.Timeline.Buckets[len(t.Timeline.Buckets)-1].End

	lines := []string{
		styles.Info.Render("Volume   ") + NewSparklineChart(volume, width).Render(),
		styles.Warning.UnsetBold().Render("Slow %   ") + NewSparklineChart(slow, width).Render(),
		styles.Muted.Render(fmt.Sprintf("%s - %s, %d buckets of %s, %d records, %d slow",
			first.Format("15:04"), last.Format("15:04"), len(t.Timeline.Buckets),
			formatDuration(t.Timeline.BucketSize), total, totalSlow)),
	}
	return strings.Join(lines, "\n")
}

// SparklineChart represents a compact sparkline chart
type SparklineChart struct {
	Values []float64
	Width  int
	Min    float64
	Max    float64
}

// NewSparklineChart creates a new sparkline chart
func NewSparklineChart(values []float64, width int) *SparklineChart {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)

	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	return &SparklineChart{
		Values: values,
		Width:  width,
		Min:    minVal,
		Max:    maxVal,
	}
}

// Render renders the sparkline chart
func (s *SparklineChart) Render() string {
	if len(s.Values) == 0 || s.Width <= 0 {
		return ""
	}

	chars := []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

	var result strings.Builder

	step := len(s.Values) / s.Width
	if step == 0 {
		step = 1
	}

	for i := 0; i < s.Width && i*step < len(s.Values); i++ {
		value := s.Values[i*step]

		normalized := 0.0
		if s.Max > s.Min {
			normalized = (value - s.Min) / (s.Max - s.Min)
		}

		charIndex := int(normalized * float64(len(chars)-1))
		if charIndex >= len(chars) {
			charIndex = len(chars) - 1
		}

		result.WriteString(chars[charIndex])
	}

	return result.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	case d < 24*time.Hour:
		return fmt.Sprintf("%.1fh", d.Hours())
	default:
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
}
