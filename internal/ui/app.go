package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/DiagSum/internal/analyzer"
	"github.com/yildizm/DiagSum/internal/ui/components"
	"github.com/yildizm/DiagSum/internal/ui/theme"
)

// InteractiveModel browses an analysis: sections, then the groups of a
// section, then one group's statistics and slowest members
type InteractiveModel struct {
	width    int
	height   int
	ready    bool
	quitting bool

	analyze  tea.Cmd
	analysis *analyzer.Analysis
	err      error

	currentView View
	previous    View
	sections    []section
	current     int

	sectionList *components.List
	groupList   *components.List
	detail      *components.DetailViewer
	spinner     *components.Spinner
}

// NewInteractiveModel creates a viewer over a finished analysis
func NewInteractiveModel(analysis *analyzer.Analysis) *InteractiveModel {
	m := &InteractiveModel{width: 100, height: 30}
	m.setAnalysis(analysis)
	return m
}

// NewAnalyzingModel creates a viewer that runs the analysis itself
func NewAnalyzingModel(ctx context.Context, a analyzer.Analyzer, content string) *InteractiveModel {
	return &InteractiveModel{
		width:       100,
		height:      30,
		analyze:     CreateAnalysisCommand(ctx, a, content),
		currentView: ViewAnalyzing,
		spinner:     components.NewSpinner("Analyzing diagnostics"),
	}
}

// Init initializes the interactive model
func (m *InteractiveModel) Init() tea.Cmd {
	if m.analyze != nil {
		return tea.Batch(m.analyze, tick())
	}
	return nil
}

// Update handles messages and navigation
func (m *InteractiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tickMsg:
		if m.currentView == ViewAnalyzing {
			m.spinner.Tick()
			return m, tick()
		}
	case analysisCompleteMsg:
		m.setAnalysis(msg.analysis)
	case analysisErrorMsg:
		m.err = msg.err
		m.currentView = ViewError
	}
	return m, nil
}

func (m *InteractiveModel) setAnalysis(analysis *analyzer.Analysis) {
	m.analysis = analysis
	m.sections = sectionsOf(analysis)
	m.currentView = ViewSections

	m.sectionList = components.NewList("Sections", m.listWidth(), m.listHeight())
	for i, s := range m.sections {
		status := "info"
		if len(s.groups) == 0 {
			status = "muted"
		}
		m.sectionList.AddItem(&components.ListItem{
			ID:          s.name,
			Title:       s.name,
			Description: fmt.Sprintf("%d groups", len(s.groups)),
			Status:      status,
			Data:        i,
		})
	}
}

func (m *InteractiveModel) listWidth() int {
	return max(40, min(m.width-4, 120))
}

func (m *InteractiveModel) listHeight() int {
	return max(6, m.height-14)
}

func (m *InteractiveModel) resize() {
	for _, l := range []*components.List{m.sectionList, m.groupList} {
		if l != nil {
			l.SetSize(m.listWidth(), m.listHeight())
		}
	}
	if m.detail != nil {
		m.detail.Width = m.listWidth()
	}
}

// handleKeyPress handles keyboard input
func (m *InteractiveModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc", "backspace":
		m.back()
	case "?", "h":
		if m.analysis != nil && m.currentView != ViewHelp {
			m.previous = m.currentView
			m.currentView = ViewHelp
		}
	case "up", "k":
		if l := m.activeList(); l != nil {
			l.MoveUp()
		}
	case "down", "j":
		if l := m.activeList(); l != nil {
			l.MoveDown()
		}
	case "enter":
		m.open()
	}
	return m, nil
}

func (m *InteractiveModel) activeList() *components.List {
	switch m.currentView {
	case ViewSections:
		return m.sectionList
	case ViewGroups:
		return m.groupList
	default:
		return nil
	}
}

// open descends one level from the current selection
func (m *InteractiveModel) open() {
	switch m.currentView {
	case ViewSections:
		item := m.sectionList.GetSelectedItem()
		if item == nil {
			return
		}
		m.current = item.Data.(int)
		s := m.sections[m.current]
		m.groupList = components.NewGroupList(s.name, s.groups, m.listWidth(), m.listHeight())
		m.currentView = ViewGroups
	case ViewGroups:
		item := m.groupList.GetSelectedItem()
		if item == nil {
			return
		}
		s := m.sections[m.current]
		m.detail = components.NewGroupDetail(s.name, s.groups[item.Data.(int)], m.listWidth())
		m.currentView = ViewDetail
	}
}

// back returns one level up
func (m *InteractiveModel) back() {
	switch m.currentView {
	case ViewGroups:
		m.currentView = ViewSections
	case ViewDetail:
		m.currentView = ViewGroups
	case ViewHelp:
		m.currentView = m.previous
	}
}

// View renders the interactive model
func (m *InteractiveModel) View() string {
	if m.quitting {
		return ""
	}

	styles := theme.GetStyles()

	var body string
	switch m.currentView {
	case ViewAnalyzing:
		body = m.spinner.Render()
	case ViewError:
		body = styles.Error.Render("Analysis failed: "+m.err.Error()) + "\n\n" + styles.Muted.Render("q quit")
	case ViewSections:
		body = m.renderSections()
	case ViewGroups:
		body = m.groupList.Render()
	case ViewDetail:
		body = m.detail.Render()
	case ViewHelp:
		body = m.renderHelp()
	}

	parts := []string{styles.Title.Render("DiagSum"), body}
	if m.currentView != ViewAnalyzing && m.currentView != ViewError {
		parts = append(parts, styles.Muted.Render(m.footer()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *InteractiveModel) renderSections() string {
	styles := theme.GetStyles()
	a := m.analysis

	lines := []string{components.CreateAnalysisStats(a).Render()}
	if a.TargetOperation != "" {
		lines = append(lines, styles.Info.Render(fmt.Sprintf("Target operation: %s   p95 %.1f ms", a.TargetOperation, a.LatencyStats.P95)))
	}
	if strip := components.NewTimelineStrip(a.Timeline, m.listWidth()).Render(); strip != "" {
		lines = append(lines, strip)
	}
	lines = append(lines, m.sectionList.Render())
	return strings.Join(lines, "\n")
}

func (m *InteractiveModel) renderHelp() string {
	d := components.NewDetailViewer("Keys", m.listWidth())
	d.AddSection(components.DetailSection{
		Title: "Navigation",
		Content: []string{
			"↑/k  ↓/j   move selection",
			"enter      open section or group",
			"esc/⌫      go back",
			"?/h        this help",
			"q          quit",
		},
	})
	d.AddSection(components.DetailSection{
		Title: "Slices",
		Content: []string{
			"Each group splits its calls by duration at the group's P50, P75, P90 and P95.",
		},
	})
	return d.Render()
}

func (m *InteractiveModel) footer() string {
	switch m.currentView {
	case ViewSections:
		return "↑/↓ move • enter open • ? help • q quit"
	case ViewGroups:
		return "↑/↓ move • enter details • esc back • q quit"
	default:
		return "esc back • q quit"
	}
}

// Run shows a finished analysis
func Run(analysis *analyzer.Analysis) error {
	p := tea.NewProgram(NewInteractiveModel(analysis), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunAnalysis analyses content behind a spinner, then shows the result
func RunAnalysis(ctx context.Context, a analyzer.Analyzer, content string) error {
	m := NewAnalyzingModel(ctx, a, content)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.err
}
