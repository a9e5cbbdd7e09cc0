// Package config provides YAML-based application configuration for the
// editor, the engine and the run history.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/redengine/internal/core"
)

// ErrInvalid is returned when a loaded config fails validation.
var ErrInvalid = errors.New("config: invalid")

// Config contains all application settings.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	DBPath   string         `yaml:"db_path"`
	TickRate int            `yaml:"tick_rate"` // UI repaints per second
	Frame    FrameConfig    `yaml:"frame"`
	Session  SessionConfig  `yaml:"session"`
	Editor   EditorConfig   `yaml:"editor"`
	Explorer ExplorerConfig `yaml:"explorer"`
}

// FrameConfig defines the default frame a script renders into.
type FrameConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Attribute string `yaml:"attribute"` // frame buffer attribute on the entry object
}

// Size returns the configured frame size.
func (f FrameConfig) Size() core.Size {
	return core.Size{W: f.Width, H: f.Height}
}

// SessionConfig defines how a session advances.
type SessionConfig struct {
	// FrameInterval paces the step loop. Zero runs as fast as the script yields.
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// EditorConfig defines editor pane settings.
type EditorConfig struct {
	Theme    string `yaml:"theme"` // chroma style name
	TabWidth int    `yaml:"tab_width"`
}

// ExplorerConfig defines project explorer settings.
type ExplorerConfig struct {
	ShowHidden bool `yaml:"show_hidden"`
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if !c.Frame.Size().Valid() {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalid, c.Frame.Width, c.Frame.Height)
	}
	if c.Frame.Attribute == "" {
		return fmt.Errorf("%w: empty frame attribute", ErrInvalid)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalid)
	}
	if c.Session.FrameInterval < 0 {
		return fmt.Errorf("%w: negative frame_interval", ErrInvalid)
	}
	if c.Editor.TabWidth < 0 {
		return fmt.Errorf("%w: negative tab_width", ErrInvalid)
	}
	return nil
}
