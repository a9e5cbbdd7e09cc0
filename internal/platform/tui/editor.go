package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DefaultStyleName is the chroma style used when the configured one is unknown.
const DefaultStyleName = "monokai"

// ErrNoFile is returned by Save when no file is open.
var ErrNoFile = errors.New("editor: no file open")

// Editor is the script pane: a textarea while focused and a highlighted
// preview otherwise.
type Editor struct {
	area     textarea.Model
	path     string
	saved    string
	style    *chroma.Style
	tabWidth int
}

// NewEditor creates an empty editor. theme names a chroma style.
func NewEditor(theme string, tabWidth int) *Editor {
	area := textarea.New()
	area.ShowLineNumbers = true
	area.Prompt = ""
	area.CharLimit = 0
	area.MaxHeight = 0
	area.Placeholder = "// open a script from the explorer"

	if tabWidth <= 0 {
		tabWidth = 4
	}
	return &Editor{
		area:     area,
		style:    chromaStyle(theme),
		tabWidth: tabWidth,
	}
}

// chromaStyle resolves a style name to a Chroma style, falling back to the default.
func chromaStyle(name string) *chroma.Style {
	if name == "" {
		name = DefaultStyleName
	}
	return styles.Get(name)
}

// Open loads a file into the editor.
func (e *Editor) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	e.path = path
	e.saved = string(data)
	e.area.SetValue(e.saved)
	e.area.CursorStart()
	return nil
}

// Save writes the buffer back to its file.
func (e *Editor) Save() error {
	if e.path == "" {
		return ErrNoFile
	}
	value := e.area.Value()
	if err := os.WriteFile(e.path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	e.saved = value
	return nil
}

// Path returns the open file, or empty.
func (e *Editor) Path() string {
	return e.path
}

// Name returns the base name of the open file.
func (e *Editor) Name() string {
	if e.path == "" {
		return ""
	}
	return filepath.Base(e.path)
}

// Value returns the buffer contents.
func (e *Editor) Value() string {
	return e.area.Value()
}

// Dirty reports unsaved changes.
func (e *Editor) Dirty() bool {
	return e.path != "" && e.area.Value() != e.saved
}

// SetSize resizes the editing area.
func (e *Editor) SetSize(width, height int) {
	e.area.SetWidth(width)
	e.area.SetHeight(height)
}

// Focus gives the textarea keyboard focus.
func (e *Editor) Focus() tea.Cmd {
	return e.area.Focus()
}

// Blur removes keyboard focus.
func (e *Editor) Blur() {
	e.area.Blur()
}

// Update forwards a message to the textarea.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	return cmd
}

// View renders the textarea when focused and the highlighted preview otherwise.
func (e *Editor) View(width, height int) string {
	if e.area.Focused() {
		return e.area.View()
	}
	if e.path == "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(e.area.Placeholder)
	}
	source := strings.ReplaceAll(e.area.Value(), "\t", strings.Repeat(" ", e.tabWidth))
	lines := strings.Split(Highlight(source, e.path, e.style), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, width, "")
	}
	return strings.Join(lines, "\n")
}

// Highlight renders source with ANSI colors chosen by the file name, or by
// content when the name is not recognised.
func Highlight(source, filename string, style *chroma.Style) string {
	lexer := getLexer(filename, source)
	lexer = chroma.Coalesce(lexer)

	tokens, err := chroma.Tokenise(lexer, nil, source)
	if err != nil {
		return source
	}

	baseColour := style.Get(chroma.Text).Colour

	var sb strings.Builder
	sb.Grow(len(source) * 2)
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		ls := tokenStyle(style.Get(tok.Type), baseColour)

		// Render per line so styles never span a newline.
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				sb.WriteByte('\n')
			}
			if part != "" {
				sb.WriteString(ls.Render(part))
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// tokenStyle converts a chroma style entry to a lipgloss style.
func tokenStyle(entry chroma.StyleEntry, baseColour chroma.Colour) lipgloss.Style {
	s := lipgloss.NewStyle()
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		s = s.Underline(true)
	}
	if entry.Colour.IsSet() && entry.Colour != baseColour {
		s = s.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	return s
}

// getLexer returns a Chroma lexer for the file name, or auto-detects from content.
func getLexer(filename, text string) chroma.Lexer {
	if filename != "" {
		if l := lexers.Match(filepath.Base(filename)); l != nil {
			return l
		}
	}
	if l := lexers.Analyse(text); l != nil {
		return l
	}
	return lexers.Fallback
}
