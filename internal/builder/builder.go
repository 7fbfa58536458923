// Package builder assembles the command table of every menu.
//
// A Table is the intermediate representation shared by both emitters: the
// menu's declared commands in document order followed by the synthesized
// built-ins. Bodies stay backend-neutral until Resolve picks one for a
// target backend.
package builder

import (
	"fmt"
	"strings"

	"github.com/CliForge/remotecli/pkg/cli"
)

// Kind classifies an entry of a command table.
type Kind int

const (
	// KindDeclared is a command written in the specification.
	KindDeclared Kind = iota
	// KindClear redraws the current menu.
	KindClear
	// KindExit leaves the generated CLI.
	KindExit
	// KindHelp prints the tiered command listing.
	KindHelp
	// KindAuth raises the session's auth level.
	KindAuth
	// KindCatchAll reports an unknown command.
	KindCatchAll
)

// String returns the kind name used by inspect output.
func (k Kind) String() string {
	switch k {
	case KindDeclared:
		return "declared"
	case KindClear:
		return "clear"
	case KindExit:
		return "exit"
	case KindHelp:
		return "help"
	case KindAuth:
		return "auth"
	case KindCatchAll:
		return "catch-all"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Names of the synthesized built-ins.
const (
	ClearCommand    = "clear"
	ExitCommand     = "exit"
	HelpCommand     = "help"
	AuthCommand     = "auth"
	CatchAllCommand = "*"

	// AuthArg is the positional argument of the auth built-in.
	AuthArg = "level"
)

// Reserved lists every name a specification may not declare itself,
// mapped to the aliases the built-in claims.
var Reserved = map[string][]string{
	ClearCommand:    {"cls", "c"},
	ExitCommand:     {"ex", "e"},
	HelpCommand:     {"?", "h"},
	AuthCommand:     nil,
	CatchAllCommand: nil,
}

// Param is a positional argument bound to its declared position.
type Param struct {
	Name     string
	Position int
	Arg      cli.Arg
}

// Placeholder returns the help placeholder: [name] when optional, <name> when required.
func (p Param) Placeholder() string {
	if p.Arg.HasDefault() {
		return "[" + p.Name + "]"
	}
	return "<" + p.Name + ">"
}

// Entry is one command of a menu's table.
type Entry struct {
	Name        string
	Description string
	Aliases     []string
	Params      []Param
	Access      int
	Visible     bool
	Kind        Kind

	// Script is the referenced fragment name, without extension.
	Script string
	// Inline holds the declared per-backend inline bodies.
	Inline map[cli.Backend]*cli.Inline
}

// Patterns returns the canonical name followed by every alias.
func (e *Entry) Patterns() []string {
	return append([]string{e.Name}, e.Aliases...)
}

// IsBuiltin reports whether the entry was synthesized.
func (e *Entry) IsBuiltin() bool {
	return e.Kind != KindDeclared
}

// Term returns the help term: name, |-joined aliases and argument placeholders.
func (e *Entry) Term() string {
	var b strings.Builder
	b.WriteString(strings.Join(e.Patterns(), "|"))
	for _, p := range e.Params {
		b.WriteString(" ")
		b.WriteString(p.Placeholder())
	}
	return b.String()
}

// Table is the ordered command table of one menu.
type Table struct {
	Menu    string
	Entries []*Entry
}

// Lookup resolves a token (name or alias) to its entry. The catch-all is
// never returned, since it only matches when nothing else does.
func (t *Table) Lookup(token string) (*Entry, bool) {
	for _, e := range t.Entries {
		if e.Kind == KindCatchAll {
			continue
		}
		for _, p := range e.Patterns() {
			if p == token {
				return e, true
			}
		}
	}
	return nil, false
}

// Declared returns the entries written in the specification.
func (t *Table) Declared() []*Entry {
	var out []*Entry
	for _, e := range t.Entries {
		if e.Kind == KindDeclared {
			out = append(out, e)
		}
	}
	return out
}

// Build assembles the table of one menu. Declared commands keep document
// order; built-ins follow in the order clear, exit, help, auth (only when
// auth levels exist) and the catch-all.
func Build(menuName string, menu *cli.Menu, auth []cli.AuthLevel) (*Table, error) {
	table := &Table{Menu: menuName}
	claimed := make(map[string]string)

	claim := func(owner string, patterns []string) error {
		for _, p := range patterns {
			if other, exists := claimed[p]; exists {
				return fmt.Errorf("menu %s: %q is used by both %s and %s", menuName, p, other, owner)
			}
			claimed[p] = owner
		}
		return nil
	}

	// Reserve built-in names first so collisions are reported against them
	for name, aliases := range Reserved {
		if err := claim(name, append([]string{name}, aliases...)); err != nil {
			return nil, err
		}
	}

	for name, command := range menu.Commands.All() {
		entry := declaredEntry(name, command)
		if err := claim(name, entry.Patterns()); err != nil {
			return nil, err
		}
		table.Entries = append(table.Entries, entry)
	}

	table.Entries = append(table.Entries,
		&Entry{
			Name:        ClearCommand,
			Description: "Clear the screen.",
			Aliases:     Reserved[ClearCommand],
			Visible:     true,
			Kind:        KindClear,
		},
		&Entry{
			Name:        ExitCommand,
			Description: "Exit the CLI.",
			Aliases:     Reserved[ExitCommand],
			Visible:     true,
			Kind:        KindExit,
		},
		&Entry{
			Name:        HelpCommand,
			Description: fmt.Sprintf("Show all the commands for the %s menu.", menuName),
			Aliases:     Reserved[HelpCommand],
			Visible:     true,
			Kind:        KindHelp,
		},
	)

	if len(auth) > 0 {
		table.Entries = append(table.Entries, authEntry(auth))
	}

	table.Entries = append(table.Entries, &Entry{
		Name:        CatchAllCommand,
		Description: "Invalid command.",
		Kind:        KindCatchAll,
	})

	return table, nil
}

// declaredEntry converts a specification command into a table entry.
func declaredEntry(name string, command cli.Command) *Entry {
	entry := &Entry{
		Name:        name,
		Description: command.Description,
		Aliases:     append([]string(nil), command.Aliases...),
		Access:      command.AccessLevel(),
		Visible:     command.IsVisible(),
		Kind:        KindDeclared,
		Script:      command.Script,
		Inline:      make(map[cli.Backend]*cli.Inline),
	}

	position := 1
	for argName, arg := range command.Args.All() {
		entry.Params = append(entry.Params, Param{Name: argName, Position: position, Arg: arg})
		position++
	}

	for _, backend := range cli.Backends {
		if inline := command.Inline(backend); inline != nil {
			entry.Inline[backend] = inline
		}
	}
	return entry
}

// authEntry creates the auth built-in. Its level argument accepts
// 1 <= level < max(declared levels)+1.
func authEntry(levels []cli.AuthLevel) *Entry {
	highest := 0
	for _, l := range levels {
		if l.Level > highest {
			highest = l.Level
		}
	}
	minValue, maxValue := 1, highest+1

	return &Entry{
		Name:        AuthCommand,
		Description: "Authenticate to an access level.",
		Visible:     true,
		Kind:        KindAuth,
		Params: []Param{{
			Name:     AuthArg,
			Position: 1,
			Arg:      cli.Arg{MinValue: &minValue, MaxValue: &maxValue},
		}},
	}
}

// BuildAll builds the table of every menu in document order.
func BuildAll(spec *cli.Specification) ([]*Table, error) {
	levels, err := spec.AuthLevels()
	if err != nil {
		return nil, err
	}

	tables := make([]*Table, 0, spec.Menus.Len())
	for name, menu := range spec.Menus.All() {
		table, err := Build(name, &menu, levels)
		if err != nil {
			return nil, fmt.Errorf("failed to build menu %s: %w", name, err)
		}
		tables = append(tables, table)
	}
	return tables, nil
}
