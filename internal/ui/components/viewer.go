package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/DiagSum/internal/ui/theme"
)

// detailSamples caps the ranked members listed in a group detail
const detailSamples = 10

// DetailViewer represents a detailed view of a specific item
type DetailViewer struct {
	Title   string
	Content []DetailSection
	Width   int
}

// DetailSection represents a section in the detail view
type DetailSection struct {
	Title   string
	Content []string
	Style   string // "info", "warning", "error", "success"
}

// NewDetailViewer creates a new detail viewer
func NewDetailViewer(title string, width int) *DetailViewer {
	return &DetailViewer{
		Title: title,
		Width: width,
	}
}

// AddSection adds a section to the detail view
func (d *DetailViewer) AddSection(section DetailSection) {
	d.Content = append(d.Content, section)
}

// Render renders the detail viewer
func (d *DetailViewer) Render() string {
	styles := theme.GetStyles()

	content := make([]string, 0, len(d.Content)+2)
	content = append(content, styles.Header.Render(d.Title), "")

	for _, section := range d.Content {
		content = append(content, d.renderSection(styles, section)...)
		content = append(content, "")
	}

	joined := lipgloss.JoinVertical(lipgloss.Left, content...)
	if d.Width > 0 {
		return styles.Panel.Width(d.Width).Render(joined)
	}
	return styles.Panel.Render(joined)
}

// renderSection renders a detail section
func (d *DetailViewer) renderSection(styles *theme.Styles, section DetailSection) []string {
	lines := make([]string, 0, len(section.Content)+1)

	var titleStyle lipgloss.Style
	switch section.Style {
	case "success":
		titleStyle = styles.Success
	case "warning":
		titleStyle = styles.Warning
	case "error":
		titleStyle = styles.Error
	case "info":
		titleStyle = styles.Info.Bold(true)
	default:
		titleStyle = styles.Subheader
	}

	lines = append(lines, titleStyle.Render(section.Title))
	for _, line := range section.Content {
		lines = append(lines, "  "+line)
	}

	return lines
}

// NewGroupDetail builds the detail view of one group: statistics,
// percentile slices and the slowest members
func NewGroupDetail(section string, g Group, width int) *DetailViewer {
	styles := theme.GetStyles()
	d := NewDetailViewer(fmt.Sprintf("%s: %s", section, g.Key), width)

	s := g.Stats
	d.AddSection(DetailSection{
		Title: "Statistics",
		Style: "info",
		Content: []string{
			fmt.Sprintf("count %d   avg %.1f ms", g.Count, s.Avg),
			fmt.Sprintf("min %.1f   p50 %.1f   p75 %.1f", s.Min, s.P50, s.P75),
			fmt.Sprintf("p90 %.1f   p95 %.1f   max %.1f", s.P90, s.P95, s.Max),
		},
	})

	slices := make([]string, 0, len(g.Slices))
	for _, sl := range g.Slices {
		line := fmt.Sprintf("%-8s %6d  (%.1f, %.1f] ms", sl.Label, sl.Count, sl.Lower, sl.Upper)
		if sl.Count == 0 {
			line = styles.Muted.Render(line)
		}
		slices = append(slices, line)
	}
	d.AddSection(DetailSection{Title: "Percentile Slices", Content: slices})

	samples := g.Samples
	if len(samples) > detailSamples {
		samples = samples[:detailSamples]
	}
	lines := make([]string, 0, len(samples))
	for _, sample := range samples {
		lines = append(lines, styles.Latency(sample.Duration, s).Render(sample.Text))
	}
	title := "Slowest"
	if g.Count > len(samples) {
		title = fmt.Sprintf("Slowest %d of %d", len(samples), g.Count)
	}
	d.AddSection(DetailSection{Title: title, Style: "warning", Content: lines})

	return d
}
