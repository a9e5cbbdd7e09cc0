package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/vovakirdan/redengine/internal/core"
)

// ManifestName is the project manifest file name.
const ManifestName = "redengine.toml"

// DefaultEntry is the script run when the manifest names none.
const DefaultEntry = "main.js"

// Manifest is the redengine.toml project configuration.
type Manifest struct {
	Name  string     `toml:"name"`
	Entry string     `toml:"entry"`
	Frame *core.Size `toml:"frame,omitempty"` // overrides the configured frame size

	// Dir is the directory containing the manifest (set at load time).
	Dir string `toml:"-"`
}

// EntryPath returns the absolute path of the entry script.
func (m *Manifest) EntryPath() string {
	if filepath.IsAbs(m.Entry) {
		return m.Entry
	}
	return filepath.Join(m.Dir, m.Entry)
}

// LoadManifest reads redengine.toml from dir. A missing manifest yields
// defaults named after the directory.
func LoadManifest(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("project: cannot resolve path %s: %w", dir, err)
	}

	m := &Manifest{Name: filepath.Base(abs), Entry: DefaultEntry}
	path := filepath.Join(abs, ManifestName)
	if _, err := toml.DecodeFile(path, m); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project: parse error in %s: %w", path, err)
		}
	}
	m.Dir = abs

	if m.Entry == "" {
		m.Entry = DefaultEntry
	}
	if m.Frame != nil && !m.Frame.Valid() {
		return nil, fmt.Errorf("project: invalid frame size %s in %s", m.Frame, path)
	}
	return m, nil
}

// SaveManifest writes m to dir/redengine.toml.
func SaveManifest(dir string, m *Manifest) error {
	path := filepath.Join(dir, ManifestName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("project: cannot create %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("project: cannot write %s: %w", path, err)
	}
	return f.Close()
}
