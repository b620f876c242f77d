// Package tui is an interactive browser over collected dependencies.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/types"
)

// Run opens the browser full screen and blocks until the user quits.
func Run(deps []types.Dependency, violations []report.Violation) error {
	m := NewModel(deps, violations, LoadPrefs())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
