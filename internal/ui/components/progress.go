package components

import (
	"fmt"
	"time"

	"github.com/yildizm/DiagSum/internal/ui/theme"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner represents a spinning progress indicator
type Spinner struct {
	Frame     int
	StartTime time.Time
	Label     string
}

// NewSpinner creates a new spinner
func NewSpinner(label string) *Spinner {
	return &Spinner{
		StartTime: time.Now(),
		Label:     label,
	}
}

// Tick advances the spinner animation
func (s *Spinner) Tick() {
	s.Frame = (s.Frame + 1) % len(spinnerFrames)
}

// Render renders the spinner with the elapsed time
func (s *Spinner) Render() string {
	styles := theme.GetStyles()
	char := styles.Progress.Render(string(spinnerFrames[s.Frame]))

	elapsed := time.Since(s.StartTime).Round(100 * time.Millisecond)
	if s.Label != "" {
		return fmt.Sprintf("%s %s (%s)", char, s.Label, elapsed)
	}
	return fmt.Sprintf("%s %s", char, elapsed)
}
