package config

import (
	_ "embed"
)

//go:embed defaults/redengine.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		DBPath:   "~/.redengine/history.db",
		TickRate: 30,
		Frame: FrameConfig{
			Width:     1280,
			Height:    720,
			Attribute: "_frame_buffer",
		},
		Editor: EditorConfig{
			Theme:    "monokai",
			TabWidth: 4,
		},
	}
}

// DefaultYAML returns the embedded default config file.
func DefaultYAML() []byte {
	return defaultYAML
}
