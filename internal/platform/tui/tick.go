// Package tui provides the Bubble Tea editor shell: project explorer, script
// editor, viewport and log pane, plus the SSH server that shares it.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/redengine/internal/engine"
	"github.com/vovakirdan/redengine/internal/project"
)

// TickMsg is sent to trigger a repaint.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 30
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// TreeMsg carries a reloaded project tree.
type TreeMsg struct {
	Tree *project.Item
}

// OutcomeMsg reports a finished session.
type OutcomeMsg struct {
	Outcome engine.Outcome
}
