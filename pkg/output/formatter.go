// Package output prints command results as tables, JSON or YAML.
package output

import "io"

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format formats the given data and writes the output to w.
	Format(w io.Writer, data any, config *FormatConfig) error

	// Name returns the name of the formatter (e.g., "json", "yaml", "table").
	Name() string
}

// Tabular is data the table formatter can print.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// FormatConfig contains configuration options for formatting output.
type FormatConfig struct {
	// Pretty enables pretty-printing (for JSON)
	Pretty bool

	// Colors enables colored output
	Colors bool

	// ShowHeaders controls header display (for tables)
	ShowHeaders bool
}

// NewFormatConfig creates a new FormatConfig with sensible defaults.
func NewFormatConfig() *FormatConfig {
	return &FormatConfig{
		Pretty:      true,
		Colors:      true,
		ShowHeaders: true,
	}
}

// WithPretty sets the pretty-printing option.
func (c *FormatConfig) WithPretty(pretty bool) *FormatConfig {
	c.Pretty = pretty
	return c
}

// WithColors sets the colors option.
func (c *FormatConfig) WithColors(colors bool) *FormatConfig {
	c.Colors = colors
	return c
}
