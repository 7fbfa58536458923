// Package progress shows the steps of a build on the terminal.
package progress

import (
	"io"
	"time"
)

// Type defines the type of progress indicator.
type Type string

const (
	// TypeSpinner shows a spinner per step.
	TypeSpinner Type = "spinner"
	// TypeNone disables progress indicators.
	TypeNone Type = "none"
)

// Progress is the interface for all progress indicators.
type Progress interface {
	// Start starts the progress indicator with a message.
	Start(message string) error

	// Update updates the progress message.
	Update(message string) error

	// Success marks the progress as successful.
	Success(message string) error

	// Failure marks the progress as failed.
	Failure(message string) error

	// Stop stops the progress indicator.
	Stop() error

	// IsActive returns true if the progress indicator is active.
	IsActive() bool
}

// Config contains configuration for progress indicators.
type Config struct {
	// Type is the type of progress indicator to use.
	Type Type

	// Enabled determines if progress indicators are shown.
	Enabled bool

	// ShowDuration appends the elapsed time to success messages.
	ShowDuration bool

	// Writer is where to write progress output (default: stdout).
	Writer io.Writer

	// RefreshRate is how often to refresh the display.
	RefreshRate time.Duration
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Type:         TypeSpinner,
		Enabled:      true,
		ShowDuration: true,
		RefreshRate:  100 * time.Millisecond,
	}
}

// New returns the indicator selected by config.
func New(config *Config) Progress {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Type == TypeNone {
		config.Enabled = false
	}
	return NewSpinner(config)
}
