package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Manager selects a formatter by name.
type Manager struct {
	formatters    map[string]Formatter
	defaultFormat string
	config        *FormatConfig
}

// NewManager creates a manager with the json, yaml and table formatters.
func NewManager() *Manager {
	m := &Manager{
		formatters:    make(map[string]Formatter),
		defaultFormat: "table",
		config:        NewFormatConfig(),
	}
	m.RegisterFormatter(NewJSONFormatter())
	m.RegisterFormatter(NewYAMLFormatter())
	m.RegisterFormatter(NewTableFormatter())
	return m
}

// RegisterFormatter registers a formatter under its name.
func (m *Manager) RegisterFormatter(formatter Formatter) {
	m.formatters[formatter.Name()] = formatter
}

// GetFormatter returns the formatter registered under name.
func (m *Manager) GetFormatter(name string) (Formatter, error) {
	formatter, ok := m.formatters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s (supported: %s)", name, strings.Join(m.GetSupportedFormats(), ", "))
	}
	return formatter, nil
}

// SetConfig sets the config passed to every formatter.
func (m *Manager) SetConfig(config *FormatConfig) {
	m.config = config
}

// GetConfig returns the current config.
func (m *Manager) GetConfig() *FormatConfig {
	return m.config
}

// Format writes data to w in format, or the default format when empty.
func (m *Manager) Format(w io.Writer, data any, format string) error {
	if format == "" {
		format = m.defaultFormat
	}
	formatter, err := m.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(w, data, m.config)
}

// Print writes data to stdout.
func (m *Manager) Print(data any, format string) error {
	return m.Format(os.Stdout, data, format)
}

// IsFormatSupported reports whether format has a formatter.
func (m *Manager) IsFormatSupported(format string) bool {
	_, ok := m.formatters[strings.ToLower(format)]
	return ok
}

// GetSupportedFormats returns the registered format names, sorted.
func (m *Manager) GetSupportedFormats() []string {
	formats := make([]string, 0, len(m.formatters))
	for name := range m.formatters {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}
