package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme contains the visual styles of the editor shell.
type Theme struct {
	// Pane frames
	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style

	// Explorer
	ExplorerItem   lipgloss.Style
	ExplorerCursor lipgloss.Style
	ExplorerFolder lipgloss.Style

	// Editor
	EditorDirty lipgloss.Style

	// Log pane
	LogText lipgloss.Style

	// Status bar
	StatusRunning lipgloss.Style
	StatusIdle    lipgloss.Style
	StatusText    lipgloss.Style
	StatusError   lipgloss.Style

	// Help bar and history screen
	Help  lipgloss.Style
	Title lipgloss.Style
	Empty lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	border := lipgloss.RoundedBorder()
	return Theme{
		Pane:        lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("240")),
		PaneFocused: lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("205")),
		PaneTitle:   lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),

		ExplorerItem:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		ExplorerCursor: lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		ExplorerFolder: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),

		EditorDirty: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

		LogText: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),

		StatusRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("46")).Bold(true).Padding(0, 1),
		StatusIdle:    lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("245")).Padding(0, 1),
		StatusText:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1),

		Help:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).MarginBottom(1),
		Empty: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Padding(2, 4),
	}
}

// MonochromeTheme returns a grayscale theme.
func MonochromeTheme() Theme {
	theme := DefaultTheme()
	theme.PaneFocused = theme.PaneFocused.BorderForeground(lipgloss.Color("255"))
	theme.PaneTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	theme.ExplorerCursor = lipgloss.NewStyle().Reverse(true)
	theme.ExplorerFolder = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	theme.StatusRunning = theme.StatusRunning.Background(lipgloss.Color("255"))
	return theme
}

// centerText pads text so it is centered within width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
