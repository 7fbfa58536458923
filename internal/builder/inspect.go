package builder

import (
	"strconv"
	"strings"

	"github.com/CliForge/remotecli/pkg/cli"
)

// CommandView is one table entry as seen on a backend.
type CommandView struct {
	Name        string   `json:"name" yaml:"name"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Args        []string `json:"args,omitempty" yaml:"args,omitempty"`
	Access      int      `json:"access" yaml:"access"`
	Kind        string   `json:"kind" yaml:"kind"`
	Method      string   `json:"method" yaml:"method"`
	Listed      bool     `json:"listed" yaml:"listed"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Inspection describes how a menu behaves on one backend at one tier.
type Inspection struct {
	Menu      string        `json:"menu" yaml:"menu"`
	Backend   string        `json:"backend" yaml:"backend"`
	AuthLevel int           `json:"authLevel" yaml:"authLevel"`
	Commands  []CommandView `json:"commands" yaml:"commands"`
}

// Inspect resolves every entry of table for backend. Listed marks the
// entries help prints at authLevel.
func Inspect(table *Table, backend cli.Backend, registry Registry, authLevel int) *Inspection {
	listed := make(map[*Entry]bool)
	for _, e := range FilterForHelp(table, registry, backend.Extension(), authLevel) {
		listed[e] = true
	}

	in := &Inspection{
		Menu:      table.Menu,
		Backend:   string(backend),
		AuthLevel: authLevel,
		Commands:  make([]CommandView, 0, len(table.Entries)),
	}
	for _, e := range table.Entries {
		view := CommandView{
			Name:        e.Name,
			Aliases:     e.Aliases,
			Access:      e.Access,
			Kind:        e.Kind.String(),
			Method:      Resolve(e, backend, registry).Method.String(),
			Listed:      listed[e],
			Description: e.Description,
		}
		for _, p := range e.Params {
			view.Args = append(view.Args, p.Placeholder())
		}
		in.Commands = append(in.Commands, view)
	}
	return in
}

// Header implements output.Tabular.
func (in *Inspection) Header() []string {
	return []string{"COMMAND", "ALIASES", "ARGS", "ACCESS", "METHOD", "LISTED", "DESCRIPTION"}
}

// Rows implements output.Tabular.
func (in *Inspection) Rows() [][]string {
	rows := make([][]string, 0, len(in.Commands))
	for _, c := range in.Commands {
		access := "-"
		if c.Access > 0 {
			access = strconv.Itoa(c.Access)
		}
		listed := "no"
		if c.Listed {
			listed = "yes"
		}
		rows = append(rows, []string{
			c.Name,
			strings.Join(c.Aliases, ", "),
			strings.Join(c.Args, " "),
			access,
			c.Method,
			listed,
			c.Description,
		})
	}
	return rows
}
