package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []types.Dependency {
	return []types.Dependency{
		{Name: "zod", Version: "3.0.0", Licenses: []string{"MIT"}, LicenseText: "MIT License\n\nCopyright zod"},
		{Name: "acorn", Version: "8.0.0", Licenses: []string{"MIT"}},
		{Name: "left-pad", Version: "1.3.0"},
		{Name: "internal-ui", Version: "0.1.0", Licenses: []string{"ISC"}, Private: true},
	}
}

func newTestModel(t *testing.T) (Model, *[]string) {
	t.Helper()
	m := NewModel(sample(), []report.Violation{{Key: "left-pad@1.3.0", Kind: report.Unlicensed}}, DefaultPrefs())
	var copied []string
	m.copyToClip = func(s string) error { copied = append(copied, s); return nil }
	m.savePrefsFn = nil
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), &copied
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_SortedByNameInitially(t *testing.T) {
	m, _ := newTestModel(t)
	d, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "acorn", d.Name)
	assert.Len(t, m.visible, 4)
}

func TestModel_SortByLicense(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "s")
	assert.Equal(t, SortByLicense, m.prefs.SortBy)
	// the unlicensed package sorts first
	assert.Equal(t, "left-pad", m.visible[0].Name)
	assert.Equal(t, "sorted by license", m.statusMsg)
}

func TestModel_SearchFilters(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "/", "z", "o")
	assert.True(t, m.searchMode)
	require.Len(t, m.visible, 1)
	assert.Equal(t, "zod", m.visible[0].Name)

	m = press(t, m, "enter")
	assert.False(t, m.searchMode)
	assert.Len(t, m.visible, 1)

	m = press(t, m, "esc")
	assert.Len(t, m.visible, 4)
}

func TestModel_SearchMatchesLicense(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "/", "i", "s", "c")
	require.Len(t, m.visible, 1)
	assert.Equal(t, "internal-ui", m.visible[0].Name)
}

func TestModel_UnknownOnlyAndHidePrivate(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "u")
	require.Len(t, m.visible, 1)
	assert.Equal(t, "left-pad", m.visible[0].Name)

	m = press(t, m, "u", "p")
	assert.Len(t, m.visible, 3)
	for _, d := range m.visible {
		assert.False(t, d.Private)
	}
}

func TestModel_CopyLicense(t *testing.T) {
	m, copied := newTestModel(t)
	// acorn has no text, so the id is copied
	m = press(t, m, "c")
	assert.Equal(t, []string{"MIT"}, *copied)
	assert.Equal(t, "copied license id", m.statusMsg)

	m = press(t, m, "y")
	assert.Equal(t, "acorn@8.0.0", (*copied)[1])
}

func TestModel_CopyWithoutLicense(t *testing.T) {
	m, copied := newTestModel(t)
	m = press(t, m, "/", "l", "e", "f", "t", "enter", "c")
	assert.Empty(t, *copied)
	assert.Contains(t, m.statusMsg, "no license information")
}

func TestModel_CopyFailure(t *testing.T) {
	m, _ := newTestModel(t)
	m.copyToClip = func(string) error { return errors.New("no clipboard") }
	m = press(t, m, "c")
	assert.Equal(t, "copy failed: no clipboard", m.statusMsg)
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, next.(Model).quitting)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
