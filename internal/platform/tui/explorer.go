package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/redengine/internal/project"
)

// explorerRow is one visible line of the explorer.
type explorerRow struct {
	item  *project.Item
	depth int
}

// Explorer is the project tree pane. The root starts expanded; expanded
// folders are remembered by path so a reload keeps them open.
type Explorer struct {
	root     *project.Item
	expanded map[string]bool
	rows     []explorerRow
	cursor   int
	offset   int
}

// NewExplorer creates an explorer over a loaded tree. tree may be nil.
func NewExplorer(tree *project.Item) *Explorer {
	e := &Explorer{expanded: make(map[string]bool)}
	e.SetTree(tree)
	return e
}

// SetTree replaces the tree, keeping the cursor on the same path if it
// still exists.
func (e *Explorer) SetTree(tree *project.Item) {
	var current string
	if sel := e.Selected(); sel != nil {
		current = sel.Path
	}

	e.root = tree
	if tree != nil {
		e.expanded[tree.Path] = true
	}
	e.rebuild()

	e.cursor = 0
	for i, r := range e.rows {
		if r.item.Path == current {
			e.cursor = i
			break
		}
	}
}

// Root returns the tree root.
func (e *Explorer) Root() *project.Item {
	return e.root
}

func (e *Explorer) rebuild() {
	e.rows = e.rows[:0]
	if e.root == nil {
		return
	}
	e.root.Walk(func(it *project.Item, depth int) bool {
		e.rows = append(e.rows, explorerRow{item: it, depth: depth})
		return it.IsDir() && e.expanded[it.Path]
	})
	if e.cursor >= len(e.rows) {
		e.cursor = max(len(e.rows)-1, 0)
	}
}

// Up moves the cursor up.
func (e *Explorer) Up() {
	if e.cursor > 0 {
		e.cursor--
	}
}

// Down moves the cursor down.
func (e *Explorer) Down() {
	if e.cursor < len(e.rows)-1 {
		e.cursor++
	}
}

// Selected returns the item under the cursor, or nil.
func (e *Explorer) Selected() *project.Item {
	if e.cursor < 0 || e.cursor >= len(e.rows) {
		return nil
	}
	return e.rows[e.cursor].item
}

// Activate toggles a folder under the cursor. For a file it returns the
// file so the caller can open it.
func (e *Explorer) Activate() *project.Item {
	sel := e.Selected()
	if sel == nil {
		return nil
	}
	if !sel.IsDir() {
		return sel
	}
	if project.IsRoot(e.root, sel) {
		return nil
	}
	e.expanded[sel.Path] = !e.expanded[sel.Path]
	e.rebuild()
	return nil
}

// View renders the visible rows into width×height cells.
func (e *Explorer) View(theme Theme, width, height int) string {
	if e.root == nil {
		return theme.Empty.UnsetPadding().Render(project.Truncate("no project", width))
	}
	if height <= 0 {
		return ""
	}

	// Keep the cursor visible.
	if e.cursor < e.offset {
		e.offset = e.cursor
	}
	if e.cursor >= e.offset+height {
		e.offset = e.cursor - height + 1
	}

	end := min(e.offset+height, len(e.rows))
	lines := make([]string, 0, end-e.offset)
	for i := e.offset; i < end; i++ {
		r := e.rows[i]
		label := project.Label(e.root, r.item, r.depth, e.expanded[r.item.Path], width)
		label += strings.Repeat(" ", max(width-lipgloss.Width(label), 0))

		style := theme.ExplorerItem
		if r.item.IsDir() {
			style = theme.ExplorerFolder
		}
		if i == e.cursor {
			style = theme.ExplorerCursor
		}
		lines = append(lines, style.Render(label))
	}
	return strings.Join(lines, "\n")
}
