// Package registry provides a global registry for script templates.
// Templates register themselves in init() functions, allowing the CLI and
// the editor to list and scaffold scripts without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Template is a ready-to-run script honoring the entry object contract.
type Template struct {
	// ID is a unique identifier used by the CLI (e.g., "bounce").
	ID string

	// Title is a human-readable name for display.
	Title string

	// Description is a one-line summary shown in listings.
	Description string

	// Source is the script text.
	Source []byte
}

// FileName returns the file name a scaffolded template is written to.
func (t Template) FileName() string {
	return t.ID + ".js"
}

// TemplateInfo contains metadata about a registered template.
type TemplateInfo struct {
	ID          string
	Title       string
	Description string
}

var (
	templates = make(map[string]Template)
	mu        sync.RWMutex
)

// Register adds a template to the registry.
// Typically called from an init() function.
// Panics if a template with the same ID is already registered.
func Register(t Template) {
	mu.Lock()
	defer mu.Unlock()

	if t.ID == "" {
		panic("registry: template without id")
	}
	if _, exists := templates[t.ID]; exists {
		panic(fmt.Sprintf("registry: template %q already registered", t.ID))
	}

	templates[t.ID] = t
}

// List returns information about all registered templates, sorted by ID.
func List() []TemplateInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]TemplateInfo, 0, len(templates))
	for _, t := range templates {
		result = append(result, TemplateInfo{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Get returns a copy of a template by its ID.
// Returns an error if the template ID is not registered.
func Get(id string) (Template, error) {
	mu.RLock()
	defer mu.RUnlock()

	t, ok := templates[id]
	if !ok {
		return Template{}, fmt.Errorf("registry: unknown template %q", id)
	}

	t.Source = append([]byte(nil), t.Source...)
	return t, nil
}

// Exists checks if a template with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := templates[id]
	return ok
}
