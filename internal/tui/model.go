package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	violationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the dependency browser state.
type Model struct {
	table    table.Model
	viewport viewport.Model
	search   textinput.Model

	deps       []types.Dependency
	visible    []types.Dependency
	violations map[string]report.Violation
	prefs      Prefs

	searchMode   bool
	query        string
	unknownOnly  bool
	showDetail   bool
	showHelp     bool
	ready        bool
	width        int
	height       int
	statusMsg    string
	copyToClip   func(string) error
	savePrefsFn  func(Prefs) error
	quitting     bool
}

// NewModel builds a browser over deps. Violations are flagged per row.
func NewModel(deps []types.Dependency, violations []report.Violation, prefs Prefs) Model {
	ti := textinput.New()
	ti.Placeholder = "name or license"
	ti.Prompt = "/ "

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(s)

	vs := make(map[string]report.Violation, len(violations))
	for _, v := range violations {
		vs[v.Key] = v
	}
	m := Model{
		table:       t,
		viewport:    viewport.New(80, 10),
		search:      ti,
		deps:        slices.Clone(deps),
		violations:  vs,
		prefs:       prefs,
		copyToClip:  clipboard.WriteAll,
		savePrefsFn: SavePrefs,
	}
	m.refresh()
	return m
}

func columns(width int) []table.Column {
	name := max(20, width-50)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Version", Width: 12},
		{Title: "License", Width: 24},
		{Title: "Flags", Width: 8},
	}
}

// refresh applies filter and sort to the table rows.
func (m *Model) refresh() {
	q := strings.ToLower(m.query)
	m.visible = nil
	for _, d := range m.deps {
		if m.prefs.HidePrivate && d.Private {
			continue
		}
		if m.unknownOnly && len(d.Licenses) > 0 {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(d.Name), q) && !strings.Contains(strings.ToLower(d.License()), q) {
			continue
		}
		m.visible = append(m.visible, d)
	}
	sortDeps(m.visible, m.prefs.SortBy)

	rows := make([]table.Row, 0, len(m.visible))
	for _, d := range m.visible {
		lic := d.License()
		if lic == "" {
			lic = report.UnknownLicense
		}
		rows = append(rows, table.Row{d.Name, d.Version, lic, m.flags(d)})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
	m.syncDetail()
}

func (m Model) flags(d types.Dependency) string {
	var f []string
	if d.Private {
		f = append(f, "P")
	}
	if _, ok := m.violations[d.Key()]; ok {
		f = append(f, "!")
	}
	return strings.Join(f, " ")
}

func sortDeps(deps []types.Dependency, by SortBy) {
	slices.SortStableFunc(deps, func(a, b types.Dependency) int {
		if by == SortByLicense {
			if c := strings.Compare(a.License(), b.License()); c != 0 {
				return c
			}
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Version, b.Version)
	})
}

// Selected returns the dependency under the cursor.
func (m Model) Selected() (types.Dependency, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return types.Dependency{}, false
	}
	return m.visible[i], true
}

func (m *Model) syncDetail() {
	d, ok := m.Selected()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.detail(d))
	m.viewport.GotoTop()
}

func (m Model) detail(d types.Dependency) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", keyStyle.Render(d.Name), d.Version)
	line := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&sb, "%s %s\n", keyStyle.Render(k+":"), v)
		}
	}
	line("License", d.License())
	line("Description", d.Description)
	line("Repository", d.Repository)
	line("Homepage", d.Homepage)
	line("Author", d.Author)
	line("PURL", d.PURL)
	people := make([]string, 0, len(d.Contributors))
	for _, c := range d.Contributors {
		people = append(people, c.String())
	}
	line("Contributors", strings.Join(people, ", "))
	if v, ok := m.violations[d.Key()]; ok {
		sb.WriteString(violationStyle.Render(v.String()))
		sb.WriteString("\n")
	}
	if d.LicenseText != "" {
		sb.WriteString("\n")
		sb.WriteString(d.LicenseText)
	}
	return sb.String()
}

func (m *Model) layout() {
	tableH := m.height - 4
	if m.showDetail {
		tableH = m.height/2 - 2
		m.viewport.Width = m.width - 2
		m.viewport.Height = m.height - tableH - 7
	}
	m.table.SetHeight(max(3, tableH))
	m.table.SetColumns(columns(m.width - 4))
	m.table.SetWidth(m.width - 2)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil
	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg)
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}
	var cmd tea.Cmd
	prev := m.table.Cursor()
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != prev {
		m.syncDetail()
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searchMode = false
		m.search.Blur()
		m.search.SetValue("")
		m.query = ""
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.refresh()
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}
	if m.showHelp {
		return helpText
	}
	var sb strings.Builder
	title := fmt.Sprintf("Dependencies %d/%d", len(m.visible), len(m.deps))
	if m.unknownOnly {
		title += " (unknown license)"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	if len(m.visible) == 0 {
		sb.WriteString(emptyTextStyle.Width(m.width).Render("No third-party dependencies match"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(tableBorderStyle.Render(m.table.View()))
		sb.WriteString("\n")
	}
	if m.showDetail {
		sb.WriteString(detailPaneBorderStyle.Render(m.viewport.View()))
		sb.WriteString("\n")
	}
	if m.searchMode {
		sb.WriteString(m.search.View())
	} else {
		status := m.statusMsg
		if status == "" {
			status = "enter detail · / search · u unknown · s sort · p private · c copy license · ? help · q quit"
		}
		sb.WriteString(statusStyle.Width(m.width).Render(status))
	}
	return sb.String()
}

const helpText = `Keys

  up/down, j/k   move
  enter, tab     toggle the detail pane
  /              search by name or license
  esc            clear the search
  u              only dependencies without a license
  s              sort by name or license
  p              hide or show private packages
  c              copy the license text
  y              copy name@version
  ?              close this help
  q, ctrl+c      quit
`
