package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/DiagSum/internal/ui/theme"
)

// ListItem represents an item in a list
type ListItem struct {
	ID          string
	Title       string
	Description string
	Status      string
	Icon        string
	Data        interface{}
}

// List represents a navigable list component
type List struct {
	Title       string
	Items       []ListItem
	Selected    int
	Focused     bool
	Width       int
	Height      int
	ShowNumbers bool
	ShowIcons   bool
}

// NewList creates a new list component
func NewList(title string, width, height int) *List {
	return &List{
		Title:       title,
		Width:       width,
		Height:      height,
		ShowNumbers: true,
		ShowIcons:   true,
		Focused:     true,
	}
}

// AddItem adds an item to the list
func (l *List) AddItem(item *ListItem) {
	l.Items = append(l.Items, *item)
}

// SetItems sets all items in the list
func (l *List) SetItems(items []ListItem) {
	l.Items = items
	l.Selected = 0
}

// SetSize updates the list dimensions
func (l *List) SetSize(width, height int) {
	l.Width = width
	l.Height = height
}

// GetSelectedItem returns the currently selected item
func (l *List) GetSelectedItem() *ListItem {
	if l.Selected < 0 || l.Selected >= len(l.Items) {
		return nil
	}
	return &l.Items[l.Selected]
}

// MoveUp moves selection up
func (l *List) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
	}
}

// MoveDown moves selection down
func (l *List) MoveDown() {
	if l.Selected < len(l.Items)-1 {
		l.Selected++
	}
}

// Render renders the list
func (l *List) Render() string {
	styles := theme.GetStyles()

	content := []string{styles.Header.Render(l.Title), ""}

	if len(l.Items) == 0 {
		content = append(content, styles.Muted.Render("Nothing to show"))
	}

	maxVisible := l.Height - 4
	if maxVisible < 1 {
		maxVisible = 1
	}

	startIndex := 0
	if l.Selected >= maxVisible {
		startIndex = l.Selected - maxVisible + 1
	}

	endIndex := startIndex + maxVisible
	if endIndex > len(l.Items) {
		endIndex = len(l.Items)
	}

	for i := startIndex; i < endIndex; i++ {
		item := l.Items[i]
		content = append(content, l.renderItem(styles, &item, i+1, l.Focused && i == l.Selected))
	}

	if len(l.Items) > maxVisible {
		scrollInfo := fmt.Sprintf("(%d-%d of %d)", startIndex+1, endIndex, len(l.Items))
		content = append(content, "", styles.Muted.Render(scrollInfo))
	}

	joined := lipgloss.JoinVertical(lipgloss.Left, content...)
	if l.Width > 0 {
		return styles.Panel.Width(l.Width).Render(joined)
	}
	return styles.Panel.Render(joined)
}

// renderItem renders a single list item
func (l *List) renderItem(styles *theme.Styles, item *ListItem, number int, selected bool) string {
	var parts []string

	if l.ShowNumbers {
		parts = append(parts, fmt.Sprintf("%2d.", number))
	}

	if l.ShowIcons && item.Icon != "" {
		parts = append(parts, item.Icon)
	}

	title := item.Title
	if item.Description != "" {
		title += " - " + item.Description
	}
	parts = append(parts, title)

	line := strings.Join(parts, " ")

	if selected {
		return styles.Selected.Render("> " + line)
	}

	style := styles.Body
	switch item.Status {
	case "success":
		style = styles.Success.UnsetBold()
	case "warning":
		style = styles.Warning.UnsetBold()
	case "error":
		style = styles.Error.UnsetBold()
	case "muted":
		style = styles.Muted
	}
	return style.Render("  " + line)
}

// NewGroupList creates a list of groups; items carry their index in Data
func NewGroupList(title string, groups []Group, width, height int) *List {
	list := NewList(title, width, height)

	for i, g := range groups {
		status := "info"
		if i == 0 && len(groups) > 1 {
			status = "warning"
		}
		list.AddItem(&ListItem{
			ID:          g.Key,
			Title:       g.Key,
			Description: fmt.Sprintf("%d, p50 %.1f ms, p95 %.1f ms, max %.1f ms", g.Count, g.Stats.P50, g.Stats.P95, g.Stats.Max),
			Status:      status,
			Data:        i,
		})
	}

	return list
}
