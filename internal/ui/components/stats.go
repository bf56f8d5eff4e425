package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/ui/theme"
)

// StatsCard represents a statistics card component
type StatsCard struct {
	Title       string
	Value       string
	Description string
	Status      string // "success", "warning", "error", "info"
	Width       int
}

// NewStatsCard creates a new stats card
func NewStatsCard(title, value, description string) *StatsCard {
	return &StatsCard{
		Title:       title,
		Value:       value,
		Description: description,
		Status:      "info",
		Width:       20,
	}
}

// SetStatus sets the status color of the card
func (s *StatsCard) SetStatus(status string) *StatsCard {
	s.Status = status
	return s
}

// Render renders the stats card
func (s *StatsCard) Render() string {
	styles := theme.GetStyles()

	var valueStyle lipgloss.Style
	switch s.Status {
	case "success":
		valueStyle = styles.Success
	case "warning":
		valueStyle = styles.Warning
	case "error":
		valueStyle = styles.Error
	default:
		valueStyle = styles.Info.Bold(true)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		styles.Header.Render(s.Title),
		valueStyle.Render(s.Value),
		styles.Muted.Render(s.Description),
	)

	return styles.Panel.Width(s.Width).Align(lipgloss.Center).Render(content)
}

// StatsDashboard represents a row-wrapped collection of stats cards
type StatsDashboard struct {
	cards     []*StatsCard
	columns   int
	cardWidth int
}

// NewStatsDashboard creates a new stats dashboard
func NewStatsDashboard(columns int) *StatsDashboard {
	return &StatsDashboard{
		columns:   columns,
		cardWidth: 20,
	}
}

// AddCard adds a stats card to the dashboard
func (d *StatsDashboard) AddCard(card *StatsCard) {
	card.Width = d.cardWidth
	d.cards = append(d.cards, card)
}

// Render renders the stats dashboard
func (d *StatsDashboard) Render() string {
	if len(d.cards) == 0 {
		return ""
	}

	var rows []string
	for i := 0; i < len(d.cards); i += d.columns {
		end := i + d.columns
		if end > len(d.cards) {
			end = len(d.cards)
		}

		var rowCards []string
		for j := i; j < end; j++ {
			rowCards = append(rowCards, d.cards[j].Render())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// CreateAnalysisStats creates stats cards from analysis results
func CreateAnalysisStats(analysis *analyzer.Analysis) *StatsDashboard {
	dashboard := NewStatsDashboard(5)

	dashboard.AddCard(NewStatsCard(
		"Parsed",
		formatNumber(analysis.ParsedEntries),
		fmt.Sprintf("of %s lines", formatNumber(analysis.TotalLines)),
	))

	repairStatus := "success"
	if analysis.RepairedEntries > 0 {
		repairStatus = "warning"
	}
	dashboard.AddCard(NewStatsCard(
		"Repaired",
		formatNumber(analysis.RepairedEntries),
		"recovered lines",
	).SetStatus(repairStatus))

	failStatus := "success"
	if analysis.Failed() > 0 {
		failStatus = "error"
	}
	dashboard.AddCard(NewStatsCard(
		"Failed",
		formatNumber(analysis.Failed()),
		"lines skipped",
	).SetStatus(failStatus))

	slowStatus := "success"
	if analysis.HighLatencyEntries > 0 {
		slowStatus = "warning"
	}
	dashboard.AddCard(NewStatsCard(
		"High Latency",
		formatNumber(analysis.HighLatencyEntries),
		fmt.Sprintf("above %.0f ms", analysis.LatencyThreshold),
	).SetStatus(slowStatus))

	dashboard.AddCard(NewStatsCard(
		"Interactions",
		formatNumber(analysis.TotalInteractions),
		fmt.Sprintf("of %s extracted", formatNumber(analysis.ExtractedInteractions)),
	))

	return dashboard
}

// formatNumber formats large numbers with commas
func formatNumber(n int) string {
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String()
}
