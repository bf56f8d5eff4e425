package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/parser"
)

const sampleLine = `{"name":"ReadItem","start datetime":"2024-05-01T10:00:00Z","duration in milliseconds":1000,"data":{},` +
	`"children":[{"name":"Transport","duration in milliseconds":990,"data":{"Client Side Request Stats":{"StoreResponseStatistics":[` +
	`{"DurationInMs":980,"ResourceType":"Document","OperationType":"Read","StoreResult":{"StatusCode":"408","SubStatusCode":"0",` +
	`"StorePhysicalAddress":"rntbd://h:1/apps/a/services/s/partitions/p1/replicas/r1p/",` +
	`"transportRequestTimeline":{"requestTimeline":[{"event":"Created","startTimeUtc":"t0","durationInMs":1},` +
	`{"event":"Transit Time","startTimeUtc":"t1","durationInMs":970}]}}}]}}}]}`

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *InteractiveModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func TestNavigation(t *testing.T) {
	m := NewInteractiveModel(analyzer.Analyze(sampleLine, 600))
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	require.Equal(t, ViewSections, m.currentView)
	require.Len(t, m.sections, 6)
	assert.Contains(t, m.View(), "Operations")

	press(m, "enter")
	assert.Equal(t, ViewGroups, m.currentView)
	assert.Contains(t, m.View(), "ReadItem")

	press(m, "enter")
	assert.Equal(t, ViewDetail, m.currentView)
	assert.Contains(t, m.View(), "Percentile Slices")

	press(m, "esc")
	assert.Equal(t, ViewGroups, m.currentView)
	press(m, "backspace")
	assert.Equal(t, ViewSections, m.currentView)

	// status section is third: operations, resources, statuses
	press(m, "j", "down", "enter")
	assert.Equal(t, "Status / Sub-status", m.sections[m.current].name)
	assert.Contains(t, m.View(), "408/0")

	press(m, "esc", "k", "up", "up")
	assert.Equal(t, 0, m.sectionList.Selected)
}

func TestHelpReturnsToPreviousView(t *testing.T) {
	m := NewInteractiveModel(analyzer.Analyze(sampleLine, 600))

	press(m, "enter", "?")
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "open section or group")

	press(m, "esc")
	assert.Equal(t, ViewGroups, m.currentView)
}

func TestQuit(t *testing.T) {
	m := NewInteractiveModel(analyzer.Analyze("", 600))

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestEmptyAnalysisDoesNotOpen(t *testing.T) {
	m := NewInteractiveModel(analyzer.Analyze("", 600))

	press(m, "enter")
	require.Equal(t, ViewGroups, m.currentView)
	press(m, "enter")
	assert.Equal(t, ViewGroups, m.currentView)
	assert.Contains(t, m.View(), "Nothing to show")
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, string) (*analyzer.Analysis, error) {
	return nil, errors.New("boom")
}

func (failingAnalyzer) AnalyzeBatch(context.Context, *parser.Batch) (*analyzer.Analysis, error) {
	return nil, errors.New("boom")
}

func TestAnalyzingModel(t *testing.T) {
	m := NewAnalyzingModel(context.Background(), analyzer.NewEngine(), sampleLine)
	require.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Analyzing diagnostics")

	m.Update(m.analyze())
	assert.Equal(t, ViewSections, m.currentView)
	assert.Equal(t, 1, m.analysis.ParsedEntries)

	failed := NewAnalyzingModel(context.Background(), failingAnalyzer{}, sampleLine)
	failed.Update(failed.analyze())
	assert.Equal(t, ViewError, failed.currentView)
	assert.Contains(t, failed.View(), "boom")
}
