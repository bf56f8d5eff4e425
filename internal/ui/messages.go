package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/DiagSum/internal/analyzer"
)

// Common message types shared across UI models
type analysisCompleteMsg struct {
	analysis *analyzer.Analysis
}

type analysisErrorMsg struct {
	err error
}

type tickMsg time.Time

// tick drives the spinner while analysis runs
func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// CreateAnalysisCommand creates a tea command that performs analysis
func CreateAnalysisCommand(ctx context.Context, a analyzer.Analyzer, content string) tea.Cmd {
	return func() tea.Msg {
		analysis, err := a.Analyze(ctx, content)
		if err != nil {
			return analysisErrorMsg{err: err}
		}
		return analysisCompleteMsg{analysis: analysis}
	}
}
