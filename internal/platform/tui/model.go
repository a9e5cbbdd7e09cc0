package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	logview "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/redengine/internal/config"
	"github.com/vovakirdan/redengine/internal/core"
	"github.com/vovakirdan/redengine/internal/engine"
	"github.com/vovakirdan/redengine/internal/project"
	"github.com/vovakirdan/redengine/internal/viewers"
	"github.com/vovakirdan/redengine/internal/viewport"
)

// Layout constants
const (
	explorerWidth  = 28 // explorer pane width including border
	minPaneWidth   = 12
	logPaneHeight  = 8 // log pane height including border
	snapshotSubdir = "snapshots"
)

// Options configures an editor shell.
type Options struct {
	// Root is the project directory.
	Root string

	// Config supplies tick rate, editor and explorer settings.
	Config config.Config

	// Theme styles the panes.
	Theme Theme

	// StopOnQuit stops a running script when the shell quits. Shared SSH
	// shells leave it running for the other viewers.
	StopOnQuit bool

	// Events delivers notifications from the other shells sharing the
	// engine. Nil for a local shell.
	Events <-chan viewers.Event

	// Detached closes when the shell's viewer disconnects and stops the
	// event listener.
	Detached <-chan struct{}
}

// Model is the Bubble Tea model of the editor shell.
type Model struct {
	app       *engine.App
	presenter *viewport.Presenter
	logs      *LogSink
	logger    *log.Logger
	opts      Options

	manifest *project.Manifest
	explorer *Explorer
	editor   *Editor
	logView  logview.Model
	help     help.Model
	keys     KeyMap
	focus    Focus
	screen   *core.Screen
	release  func()

	width  int
	height int

	status     string
	statusErr  bool
	logVersion uint64
	quitting   bool
}

// NewModel creates the editor shell over a shared engine. logs may be nil
// when log output goes elsewhere.
func NewModel(app *engine.App, logs *LogSink, logger *log.Logger, opts Options) (Model, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return Model{}, fmt.Errorf("tui: %w", err)
	}
	opts.Root = root

	manifest, err := project.LoadManifest(root)
	if err != nil {
		return Model{}, fmt.Errorf("tui: %w", err)
	}
	tree, err := project.Load(root, project.LoadOptions{ShowHidden: opts.Config.Explorer.ShowHidden})
	if err != nil {
		return Model{}, fmt.Errorf("tui: %w", err)
	}

	presenter := viewport.NewPresenter(app.Slot)

	h := help.New()
	h.ShowAll = false

	m := Model{
		app:       app,
		presenter: presenter,
		logs:      logs,
		logger:    logger,
		opts:      opts,
		manifest:  manifest,
		explorer:  NewExplorer(tree),
		editor:    NewEditor(opts.Config.Editor.Theme, opts.Config.Editor.TabWidth),
		logView:   logview.New(0, 0),
		help:      h,
		keys:      DefaultKeyMap(),
		focus:     FocusExplorer,
		screen:    core.NewScreen(0, 0),
		release:   app.Controller.OnForget(presenter.Forget),
	}

	if entry := manifest.EntryPath(); fileExists(entry) {
		if err := m.editor.Open(entry); err != nil {
			logger.Warn("cannot open entry script", "path", entry, "err", err)
		}
	}
	m.setStatus(false, "project %s", manifest.Name)
	return m, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Init starts the repaint loop and, for shared shells, the event listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.opts.Config.TickRate), m.waitForEvent())
}

// waitForEvent returns a command that waits for the next viewer event.
func (m Model) waitForEvent() tea.Cmd {
	if m.opts.Events == nil {
		return nil
	}
	events, detached := m.opts.Events, m.opts.Detached
	return func() tea.Msg {
		select {
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			return evt
		case <-detached:
			return nil
		}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case TickMsg:
		return m.handleTick()

	case TreeMsg:
		m.explorer.SetTree(msg.Tree)
		return m, nil

	case OutcomeMsg:
		m.reportOutcome(msg.Outcome)
		return m, nil

	case viewers.OutcomeEvent:
		m.reportOutcome(msg.Outcome)
		return m, m.waitForEvent()

	case viewers.JoinedEvent:
		m.setStatus(false, "%s joined (%d connected)", msg.Viewer, msg.Count)
		return m, m.waitForEvent()

	case viewers.LeftEvent:
		m.setStatus(false, "%s left (%d connected)", msg.Viewer, msg.Count)
		return m, m.waitForEvent()
	}

	if m.focus == FocusEditor {
		return m, m.editor.Update(msg)
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.opts.StopOnQuit && m.app.Controller.State().Running {
			m.app.Controller.Stop()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		m.play()
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		m.app.Controller.Stop()
		m.setStatus(false, "stopping")
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil

	case key.Matches(msg, m.keys.Snapshot):
		m.snapshot()
		return m, nil

	case key.Matches(msg, m.keys.NextFocus):
		return m, m.setFocus(m.focus.Next())

	case key.Matches(msg, m.keys.PrevFocus):
		return m, m.setFocus(m.focus.Prev())

	case key.Matches(msg, m.keys.Help) && m.focus != FocusEditor:
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	}

	switch m.focus {
	case FocusEditor:
		return m, m.editor.Update(msg)

	case FocusExplorer:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.explorer.Up()
		case key.Matches(msg, m.keys.Down):
			m.explorer.Down()
		case key.Matches(msg, m.keys.Open):
			if file := m.explorer.Activate(); file != nil {
				m.open(file.Path)
			}
		}
		return m, nil

	case FocusLog:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleTick refreshes everything that changes behind the model's back.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.keys.SetRunning(m.app.Controller.State().Running)

	if m.logs != nil {
		if v := m.logs.Version(); v != m.logVersion {
			atBottom := m.logView.AtBottom() || m.logVersion == 0
			m.logVersion = v
			m.logView.SetContent(m.theme().LogText.Render(m.logs.String()))
			if atBottom {
				m.logView.GotoBottom()
			}
		}
	}

	return m, tickCmd(m.opts.Config.TickRate)
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	if f == FocusEditor {
		return m.editor.Focus()
	}
	m.editor.Blur()
	return nil
}

func (m *Model) setStatus(isErr bool, format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = isErr
}

func (m Model) theme() Theme {
	return m.opts.Theme
}

// script returns the name and source to run: the open file, or the
// manifest entry when nothing is open.
func (m *Model) script() (string, string, error) {
	if m.editor.Path() != "" {
		return m.editor.Name(), m.editor.Value(), nil
	}
	entry := m.manifest.EntryPath()
	data, err := os.ReadFile(entry)
	if err != nil {
		return "", "", err
	}
	return filepath.Base(entry), string(data), nil
}

func (m *Model) play() {
	name, source, err := m.script()
	if err != nil {
		m.setStatus(true, "nothing to run: %v", err)
		return
	}
	if err := m.app.Controller.Start(name, source); err != nil {
		m.setStatus(true, "cannot start %s: %v", name, err)
		return
	}
	m.keys.SetRunning(true)
	m.setStatus(false, "running %s", name)
}

func (m *Model) save() {
	if err := m.editor.Save(); err != nil {
		m.setStatus(true, "%v", err)
		return
	}
	m.setStatus(false, "saved %s", m.editor.Name())
}

func (m *Model) open(path string) {
	if m.editor.Dirty() {
		m.setStatus(true, "unsaved changes in %s", m.editor.Name())
		return
	}
	if err := m.editor.Open(path); err != nil {
		m.setStatus(true, "%v", err)
		return
	}
	m.setStatus(false, "opened %s", m.editor.Name())
}

// snapshot saves the latest frame as a PNG under the project's snapshots
// directory.
func (m *Model) snapshot() {
	dir := filepath.Join(m.opts.Root, snapshotSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.setStatus(true, "snapshot: %v", err)
		return
	}

	name := strings.TrimSuffix(m.editor.Name(), filepath.Ext(m.editor.Name()))
	if name == "" {
		name = "frame"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", name, time.Now().Format("20060102_150405")))

	if err := SaveSnapshot(m.presenter, path); err != nil {
		m.setStatus(true, "snapshot: %v", err)
		return
	}
	m.setStatus(false, "snapshot saved to %s", path)
}

// SaveSnapshot writes the presenter's latest frame to path.
func SaveSnapshot(p *viewport.Presenter, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Snapshot(f); err != nil {
		f.Close()
		//nolint:errcheck // Best-effort cleanup of the empty file
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (m *Model) reportOutcome(o engine.Outcome) {
	switch {
	case o.Err != nil:
		m.setStatus(true, "%s failed: %v", o.Script, o.Err)
	default:
		m.setStatus(false, "%s %s after %s frames", o.Script, o.Reason, humanize.Comma(int64(o.Frames)))
	}
}

// Pane geometry derived from the window size.
type panes struct {
	explorerW, editorW, viewW int
	topH, logH                int
}

func (m Model) geometry() panes {
	helpH := lipgloss.Height(m.help.View(m.keys))
	logH := logPaneHeight
	topH := max(m.height-logH-helpH-1, 3) // one line for the status bar

	explorerW := min(explorerWidth, max(m.width/4, minPaneWidth))
	rest := max(m.width-explorerW, 2*minPaneWidth)
	editorW := rest / 2
	return panes{
		explorerW: explorerW,
		editorW:   editorW,
		viewW:     rest - editorW,
		topH:      topH,
		logH:      logH,
	}
}

// layout resizes the inner widgets to the current window.
func (m *Model) layout() {
	g := m.geometry()
	m.editor.SetSize(max(g.editorW-2, 1), max(g.topH-3, 1))
	m.logView.Width = max(m.width-2, 1)
	m.logView.Height = max(g.logH-3, 1)
}

// pane frames body with a border and a title line.
func (m Model) pane(title, body string, w, h int, focused bool) string {
	style := m.theme().Pane
	if focused {
		style = m.theme().PaneFocused
	}
	content := ansi.Truncate(m.theme().PaneTitle.Render(title), max(w-2, 0), "") + "\n" + body
	return style.
		Width(max(w-2, 0)).
		Height(max(h-2, 0)).
		MaxHeight(h).
		Render(content)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	g := m.geometry()
	innerH := max(g.topH-3, 0)

	// Explorer
	explorer := m.pane("Explorer", m.explorer.View(m.theme(), max(g.explorerW-2, 0), innerH),
		g.explorerW, g.topH, m.focus == FocusExplorer)

	// Editor
	title := "Scripting"
	if name := m.editor.Name(); name != "" {
		title += " - " + name
		if m.editor.Dirty() {
			title += m.theme().EditorDirty.Render(" *")
		}
	}
	editor := m.pane(title, m.editor.View(max(g.editorW-2, 0), innerH),
		g.editorW, g.topH, m.focus == FocusEditor)

	// Viewport
	state := m.app.Controller.State()
	cols, rows := max(g.viewW-2, 0), innerH
	view := m.presenter.Tick(state, cols, rows)
	m.screen.Resize(cols, rows)
	view.Render(m.screen)
	vp := m.pane("Viewport", RenderScreen(m.screen), g.viewW, g.topH, m.focus == FocusViewport)

	top := lipgloss.JoinHorizontal(lipgloss.Top, explorer, editor, vp)

	// Log
	logs := m.pane("Log", m.logView.View(), m.width, g.logH, m.focus == FocusLog)

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		logs,
		m.statusBar(state),
		m.theme().Help.Render(m.help.View(m.keys)),
	)
}

func (m Model) statusBar(state core.GameState) string {
	t := m.theme()
	var parts []string

	switch {
	case state.Stopping:
		parts = append(parts, t.StatusRunning.Render("STOPPING"))
	case state.Running:
		parts = append(parts, t.StatusRunning.Render("RUNNING"))
	default:
		parts = append(parts, t.StatusIdle.Render("IDLE"))
	}

	if state.Running {
		parts = append(parts, t.StatusText.Render(fmt.Sprintf("%s frames @ %s",
			humanize.Comma(int64(state.Frames)), state.Size)))
	} else if last := m.app.Controller.Last(); last.SessionID != "" {
		parts = append(parts, t.StatusText.Render(fmt.Sprintf("last: %s %s, %s",
			last.Script, last.Reason, humanize.Time(last.EndedAt))))
	}

	msgStyle := t.StatusText
	if m.statusErr {
		msgStyle = t.StatusError
	}
	parts = append(parts, msgStyle.Render(m.status))

	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return ansi.Truncate(bar, m.width, "")
}

// Close detaches the model from the engine's hooks.
func (m Model) Close() {
	m.release()
}

// Focused returns the focused pane.
func (m Model) Focused() Focus {
	return m.focus
}

// Status returns the status line message and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// Run starts the editor shell in the current terminal and blocks until the
// user quits. Finished sessions are reported in the status bar and the
// project tree reloads on file changes.
func Run(app *engine.App, logs *LogSink, logger *log.Logger, opts Options) error {
	model, err := NewModel(app, logs, logger, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	defer model.Close()
	defer app.Controller.OnFinish(func(o engine.Outcome) {
		p.Send(OutcomeMsg{Outcome: o})
	})()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := project.Watch(ctx, model.opts.Root,
			project.LoadOptions{ShowHidden: opts.Config.Explorer.ShowHidden}, logger,
			func(tree *project.Item) { p.Send(TreeMsg{Tree: tree}) })
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("project watch stopped", "err", err)
		}
	}()

	_, err = p.Run()
	return err
}
