package project

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Folder glyphs.
const (
	FolderClosed = "▸"
	FolderOpen   = "▾"
	RootLabel    = "Project"
)

// fileIcons maps extensions to two-cell badges.
var fileIcons = map[string]string{
	"pdf":  "PF",
	"c":    "C ",
	"cs":   "C#",
	"cpp":  "C+",
	"css":  "CS",
	"csv":  "CV",
	"doc":  "DC",
	"html": "HT",
	"ini":  "IN",
	"jpg":  "JP",
	"js":   "JS",
	"jsx":  "JX",
	"md":   "MD",
	"png":  "PN",
	"ppt":  "PT",
	"py":   "PY",
	"rs":   "RS",
	"sql":  "SQ",
	"svg":  "SV",
	"toml": "TM",
	"ts":   "TS",
	"tsx":  "TX",
	"txt":  "TT",
	"vue":  "VU",
	"xls":  "XL",
	"yaml": "YM",
	"zip":  "ZP",
}

const defaultFileIcon = "··"

// Icon returns the glyph for an item. Folders show their open state.
func Icon(it *Item, open bool) string {
	if it.IsDir() {
		if open {
			return FolderOpen
		}
		return FolderClosed
	}
	if icon, ok := fileIcons[strings.ToLower(it.Extension)]; ok {
		return icon
	}
	return defaultFileIcon
}

// Label returns the explorer line for an item, indented by depth and cut
// to fit width terminal cells.
func Label(root, it *Item, depth int, open bool, width int) string {
	name := it.Name
	if IsRoot(root, it) {
		name = RootLabel
	}
	line := strings.Repeat("  ", depth) + Icon(it, open) + " " + name
	return Truncate(line, width)
}

// Truncate cuts s to at most width terminal cells, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
