package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/redengine/internal/project"
	"github.com/vovakirdan/redengine/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show script list sidebar
	sidebarWidth       = 24  // Width of script list sidebar
	maxSessions        = 200 // Max sessions to load
	allScripts         = "All scripts"
)

// HistoryKeyMap defines the key bindings for the run history screen.
type HistoryKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextScript key.Binding
	PrevScript key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextScript, k.PrevScript, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextScript, k.PrevScript},
		{k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextScript: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next script"),
		),
		PrevScript: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev script"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing the run history.
type HistoryModel struct {
	all         []storage.SessionRecord
	scripts     []string // allScripts first, then script names
	cursor      int
	sessions    []storage.SessionRecord
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	theme       Theme
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewHistoryModel creates a history browser over already loaded records.
func NewHistoryModel(records []storage.SessionRecord, width, height int) HistoryModel {
	seen := make(map[string]bool)
	var scripts []string
	for _, r := range records {
		if !seen[r.Script] {
			seen[r.Script] = true
			scripts = append(scripts, r.Script)
		}
	}
	sort.Strings(scripts)

	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		all:         records,
		scripts:     append([]string{allScripts}, scripts...),
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		theme:       DefaultTheme(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.filter()
	return m
}

// createTable creates a new table with columns fitted to the window.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Started", Width: 14},
		{Title: "Script", Width: 16},
		{Title: "Reason", Width: 9},
		{Title: "Frames", Width: 8},
		{Title: "Took", Width: 8},
		{Title: "Error", Width: 20},
	}

	tableWidth := m.width - 6 // Margins and border
	if m.showSidebar {
		tableWidth -= sidebarWidth + 4
	}
	fixed := 0
	for _, c := range columns[:len(columns)-1] {
		fixed += c.Width + 2
	}
	columns[len(columns)-1].Width = max(tableWidth-fixed, 10)

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Script returns the selected script filter.
func (m HistoryModel) Script() string {
	return m.scripts[m.cursor]
}

// Sessions returns the sessions currently listed.
func (m HistoryModel) Sessions() []storage.SessionRecord {
	return m.sessions
}

// filter applies the selected script to the table rows.
func (m *HistoryModel) filter() {
	m.sessions = nil
	for _, r := range m.all {
		if m.cursor == 0 || r.Script == m.Script() {
			m.sessions = append(m.sessions, r)
		}
	}

	rows := make([]table.Row, len(m.sessions))
	for i, r := range m.sessions {
		rows[i] = HistoryRow(r)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// HistoryRow formats one record as table cells.
func HistoryRow(r storage.SessionRecord) table.Row {
	return table.Row{
		humanize.Time(r.StartedAt),
		r.Script,
		r.Reason,
		humanize.Comma(int64(r.Frames)),
		r.Duration().Round(10 * time.Millisecond).String(),
		r.Error,
	}
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextScript):
			m.cursor = (m.cursor + 1) % len(m.scripts)
			m.filter()
			return m, nil

		case key.Matches(msg, m.keys.PrevScript):
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.scripts) - 1
			}
			m.filter()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.filter()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf("RUN HISTORY - %s", m.Script())
	b.WriteString(m.theme.Title.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	tableRendered := tableStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", tableRendered))
	} else {
		b.WriteString(centerText(fmt.Sprintf("< %s >", m.Script()), m.width))
		b.WriteString("\n\n")
		b.WriteString(tableRendered)
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(m.help.View(m.keys)))

	return b.String()
}

func (m HistoryModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Scripts\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, s := range m.scripts {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(project.Truncate(cursor+s, sidebarWidth-2)))
		sidebar.WriteString("\n")
	}

	return sidebarStyle.Render(sidebar.String())
}

// renderTableContent renders the table or empty message.
func (m HistoryModel) renderTableContent() string {
	if len(m.sessions) == 0 {
		return m.theme.Empty.Render("No runs recorded yet.\nPlay a script to fill the history!")
	}
	return m.table.View()
}

// RunHistory runs the history browser until the user quits.
func RunHistory(store *storage.Store, width, height int) error {
	records, err := store.RecentSessions(maxSessions)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		NewHistoryModel(records, width, height),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}
