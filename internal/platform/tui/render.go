package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/redengine/internal/core"
)

// cellStyle returns the lipgloss style for a cell's colors. Zero alpha
// leaves the terminal default in place.
func cellStyle(fg, bg core.RGBA) lipgloss.Style {
	style := lipgloss.NewStyle()
	if fg.A != 0 {
		style = style.Foreground(lipgloss.Color(fg.Hex()))
	}
	if bg.A != 0 {
		style = style.Background(lipgloss.Color(bg.Hex()))
	}
	return style
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colors to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*4 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same colors for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			fg, bg := cell.FG, cell.BG

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.FG != fg || cell.BG != bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			if fg.A == 0 && bg.A == 0 {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(cellStyle(fg, bg).Render(run.String()))
		}
	}
	return sb.String()
}
