package tui

import (
	"time"

	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme       themes.Theme
	Loader      dataset.Loader
	Recorder    *Recorder
	Mode        filter.Mode
	LoadTimeout time.Duration
	Width       int
	Height      int
	ShowHelp    bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:       themes.Default,
		Mode:        filter.ModeLive,
		LoadTimeout: 30 * time.Second,
		Width:       120,
		Height:      30,
		ShowHelp:    true,
	}
}

// WithLoader sets the dataset source.
func WithLoader(loader dataset.Loader) Option {
	return func(c *Config) {
		c.Loader = loader
	}
}

// WithMode selects live filtering or explicit search.
func WithMode(mode filter.Mode) Option {
	return func(c *Config) {
		c.Mode = mode
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithLoadTimeout bounds how long the initial load may take.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.LoadTimeout = d
	}
}

// WithRecorder captures every update to r for debugging.
func WithRecorder(r *Recorder) Option {
	return func(c *Config) {
		c.Recorder = r
	}
}
