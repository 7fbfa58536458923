// Package emit holds what the bash and batch printers share: the input of
// one emission, the Emitter contract and an indenting line writer.
package emit

import (
	"context"
	"fmt"
	"strings"

	"github.com/CliForge/remotecli/internal/banner"
	"github.com/CliForge/remotecli/internal/builder"
	"github.com/CliForge/remotecli/internal/fragments"
	"github.com/CliForge/remotecli/pkg/cli"
)

// Input is everything an emitter needs for one build.
type Input struct {
	Spec *cli.Specification
	// Tables holds one table per menu, in document order.
	Tables []*builder.Table
	// Levels are the declared auth levels, ascending.
	Levels   []cli.AuthLevel
	Registry *fragments.Registry
	Renderer banner.Renderer
}

// NewInput builds the tables of spec and bundles them with the build context.
func NewInput(spec *cli.Specification, registry *fragments.Registry, renderer banner.Renderer) (*Input, error) {
	levels, err := spec.AuthLevels()
	if err != nil {
		return nil, err
	}
	tables, err := builder.BuildAll(spec)
	if err != nil {
		return nil, err
	}
	return &Input{
		Spec:     spec,
		Tables:   tables,
		Levels:   levels,
		Registry: registry,
		Renderer: renderer,
	}, nil
}

// Menu returns the menu declaration behind a table.
func (in *Input) Menu(table *builder.Table) *cli.Menu {
	menu, _ := in.Spec.Menus.Get(table.Menu)
	return &menu
}

// LevelNumbers returns the auth levels as plain integers.
func (in *Input) LevelNumbers() []int {
	out := make([]int, len(in.Levels))
	for i, l := range in.Levels {
		out[i] = l.Level
	}
	return out
}

// HelpRegistry returns the fragment registry as a builder.Registry. A nil
// registry knows no fragments.
func (in *Input) HelpRegistry() builder.Registry {
	if in.Registry == nil {
		return nil
	}
	return in.Registry
}

// Resolve resolves an entry for backend against the build's fragments.
func (in *Input) Resolve(entry *builder.Entry, backend cli.Backend) builder.Resolution {
	return builder.Resolve(entry, backend, in.HelpRegistry())
}

// Emitter prints the complete script of one backend.
type Emitter interface {
	Backend() cli.Backend
	Emit(ctx context.Context, in *Input) (string, error)
}

// Ident turns a command name into an identifier usable in function and
// label names.
func Ident(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Comment flattens text for use in a single-line comment.
func Comment(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Writer accumulates indented lines.
type Writer struct {
	b      strings.Builder
	indent int
	unit   string
}

// NewWriter creates a writer indenting with unit.
func NewWriter(unit string) *Writer {
	return &Writer{unit: unit}
}

// Line writes one line at the current indentation. Empty lines carry no
// indentation.
func (w *Writer) Line(s string) {
	if s != "" {
		w.b.WriteString(strings.Repeat(w.unit, w.indent))
	}
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

// Linef writes one formatted line.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Lines writes several lines.
func (w *Writer) Lines(lines ...string) {
	for _, l := range lines {
		w.Line(l)
	}
}

// Verbatim writes text without indentation, so heredocs and labels in
// included fragments keep their meaning.
func (w *Writer) Verbatim(text string) {
	if text == "" {
		return
	}
	w.b.WriteString(text)
	w.b.WriteByte('\n')
}

// Blank writes an empty line.
func (w *Writer) Blank() {
	w.b.WriteByte('\n')
}

// Indent increases the indentation by one unit.
func (w *Writer) Indent() {
	w.indent++
}

// Dedent decreases the indentation by one unit.
func (w *Writer) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.b.String()
}
