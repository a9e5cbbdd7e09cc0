package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// Focus identifies the pane receiving keys.
type Focus int

const (
	FocusExplorer Focus = iota
	FocusEditor
	FocusViewport
	FocusLog
	focusCount
)

func (f Focus) String() string {
	switch f {
	case FocusExplorer:
		return "explorer"
	case FocusEditor:
		return "editor"
	case FocusViewport:
		return "viewport"
	case FocusLog:
		return "log"
	default:
		return "unknown"
	}
}

// Next returns the focus after f, wrapping around.
func (f Focus) Next() Focus {
	return (f + 1) % focusCount
}

// Prev returns the focus before f, wrapping around.
func (f Focus) Prev() Focus {
	return (f + focusCount - 1) % focusCount
}

// KeyMap defines the key bindings of the editor shell.
type KeyMap struct {
	Play      key.Binding
	Stop      key.Binding
	Save      key.Binding
	Snapshot  key.Binding
	NextFocus key.Binding
	PrevFocus key.Binding
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Stop, k.Save, k.Snapshot, k.NextFocus, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.Snapshot},
		{k.Save, k.Open, k.Up, k.Down},
		{k.NextFocus, k.PrevFocus, k.Help, k.Quit},
	}
}

// SetRunning enables Play only while nothing runs and Stop only while a
// script runs.
func (k *KeyMap) SetRunning(running bool) {
	k.Play.SetEnabled(!running)
	k.Stop.SetEnabled(running)
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	k := KeyMap{
		Play: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "play"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "stop"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save"),
		),
		Snapshot: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "snapshot"),
		),
		NextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		PrevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev pane"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open/expand"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
	k.SetRunning(false)
	return k
}
