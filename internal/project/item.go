// Package project loads a project directory into an explorer tree, reads
// and writes its redengine.toml manifest, and watches it for changes.
package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Kind tells folders and files apart.
type Kind int

const (
	File Kind = iota
	Folder
)

func (k Kind) String() string {
	if k == Folder {
		return "Folder"
	}
	return "File"
}

// sniffSize is how much of a file is read for language detection.
const sniffSize = 8 << 10

// Item is one node of the project tree.
type Item struct {
	Path      string
	Name      string
	Kind      Kind
	Extension string // without the dot, empty if none
	Language  string // detected language, empty for folders and binaries
	Children  []*Item
}

// IsDir reports whether the item is a folder.
func (it *Item) IsDir() bool {
	return it.Kind == Folder
}

func (it *Item) String() string {
	return fmt.Sprintf("Path: %s, Name: %s, Item Type: %s", it.Path, it.Name, it.Kind)
}

// LoadOptions controls tree loading.
type LoadOptions struct {
	ShowHidden bool
}

// Load reads root recursively. Children are ordered folders first, then by
// name. Hidden entries are skipped unless opts.ShowHidden is set. Entries
// that disappear or cannot be read while loading are left out.
func Load(root string, opts LoadOptions) (*Item, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("project: cannot resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project: %s is not a directory", abs)
	}
	return load(abs, info, opts), nil
}

func load(path string, info os.FileInfo, opts LoadOptions) *Item {
	it := &Item{Path: path, Name: info.Name()}

	if !info.IsDir() {
		it.Kind = File
		it.Extension = strings.TrimPrefix(filepath.Ext(it.Name), ".")
		it.Language = detectLanguage(path, it.Name)
		return it
	}

	it.Kind = Folder
	entries, err := os.ReadDir(path)
	if err != nil {
		return it
	}
	for _, e := range entries {
		if !opts.ShowHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		childInfo, err := e.Info()
		if err != nil {
			continue
		}
		it.Children = append(it.Children, load(filepath.Join(path, e.Name()), childInfo, opts))
	}
	sortItems(it.Children)
	return it
}

func sortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Kind != b.Kind {
			return a.Kind == Folder
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

func detectLanguage(path, name string) string {
	f, err := os.Open(path)
	if err != nil {
		return enry.GetLanguage(name, nil)
	}
	defer f.Close()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return enry.GetLanguage(name, nil)
	}
	head = head[:n]
	if enry.IsBinary(head) {
		return ""
	}
	return enry.GetLanguage(name, head)
}

// IsRoot reports whether item is the root of the tree.
func IsRoot(root, item *Item) bool {
	return root != nil && item != nil && root.Path == item.Path
}

// Find returns the item at path, or nil.
func (it *Item) Find(path string) *Item {
	if it.Path == path {
		return it
	}
	if !it.IsDir() || !strings.HasPrefix(path, it.Path+string(filepath.Separator)) {
		return nil
	}
	for _, c := range it.Children {
		if found := c.Find(path); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits the tree depth first in display order. Returning false from
// fn skips the item's children.
func (it *Item) Walk(fn func(it *Item, depth int) bool) {
	it.walk(fn, 0)
}

func (it *Item) walk(fn func(*Item, int) bool, depth int) {
	if !fn(it, depth) {
		return
	}
	for _, c := range it.Children {
		c.walk(fn, depth+1)
	}
}

// Scripts returns the paths of all JavaScript files in the tree.
func (it *Item) Scripts() []string {
	var out []string
	it.Walk(func(c *Item, _ int) bool {
		if !c.IsDir() && c.Language == "JavaScript" {
			out = append(out, c.Path)
		}
		return true
	})
	return out
}
