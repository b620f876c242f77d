package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleKey runs browser actions. handled is false for keys the table
// should see, such as cursor movement.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	m.statusMsg = ""
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "?":
		m.showHelp = !m.showHelp
		return m, nil, true
	case "esc":
		if m.showHelp {
			m.showHelp = false
		} else if m.query != "" {
			m.query = ""
			m.search.SetValue("")
			m.refresh()
		}
		return m, nil, true
	case "/":
		m.searchMode = true
		cmd := m.search.Focus()
		return m, cmd, true
	case "enter", "tab":
		m.showDetail = !m.showDetail
		m.layout()
		return m, nil, true
	case "u":
		m.unknownOnly = !m.unknownOnly
		m.refresh()
		return m, nil, true
	case "s":
		m.prefs.SortBy = m.prefs.SortBy.Next()
		m.refresh()
		m.persist()
		m.statusMsg = "sorted by " + string(m.prefs.SortBy)
		return m, nil, true
	case "p":
		m.prefs.HidePrivate = !m.prefs.HidePrivate
		m.refresh()
		m.persist()
		return m, nil, true
	case "c":
		return m.copySelected(false), nil, true
	case "y":
		return m.copySelected(true), nil, true
	}
	return m, nil, false
}

func (m Model) copySelected(key bool) Model {
	d, ok := m.Selected()
	if !ok {
		m.statusMsg = "nothing selected"
		return m
	}
	text, what := d.LicenseText, "license text"
	switch {
	case key:
		text, what = d.Key(), d.Key()
	case text == "":
		text, what = d.License(), "license id"
	}
	if text == "" {
		m.statusMsg = "no license information for " + d.Key()
		return m
	}
	if err := m.copyToClip(text); err != nil {
		m.statusMsg = "copy failed: " + err.Error()
		return m
	}
	m.statusMsg = "copied " + what
	return m
}

func (m *Model) persist() {
	if m.savePrefsFn == nil {
		return
	}
	if err := m.savePrefsFn(m.prefs); err != nil {
		m.statusMsg = "cannot save preferences: " + err.Error()
	}
}
