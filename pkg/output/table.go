package output

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// TableFormatter formats Tabular data as a table using pterm.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Format formats the data as a table and writes it to the writer.
func (f *TableFormatter) Format(w io.Writer, data any, config *FormatConfig) error {
	if config == nil {
		config = NewFormatConfig()
	}

	tab, ok := data.(Tabular)
	if !ok {
		return fmt.Errorf("cannot format %T as table", data)
	}

	rows := tab.Rows()
	tableData := make([][]string, 0, len(rows)+1)
	if config.ShowHeaders {
		tableData = append(tableData, tab.Header())
	}
	tableData = append(tableData, rows...)

	if len(tableData) == 0 {
		_, err := fmt.Fprintln(w, "No results found")
		return err
	}

	table := pterm.DefaultTable.WithHasHeader(config.ShowHeaders).WithData(tableData)
	if config.Colors {
		table = table.WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold))
	} else {
		table = table.WithHeaderStyle(pterm.NewStyle()).WithSeparatorStyle(pterm.NewStyle())
	}

	rendered, err := table.Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	if !config.Colors {
		rendered = pterm.RemoveColorFromString(rendered)
	}
	_, err = fmt.Fprintln(w, rendered)
	return err
}
