package batch

import (
	"fmt"

	"github.com/CliForge/remotecli/internal/builder"
	"github.com/CliForge/remotecli/internal/emit"
	"github.com/CliForge/remotecli/internal/help"
	"github.com/CliForge/remotecli/internal/sanitize"
	"github.com/CliForge/remotecli/pkg/cli"
)

// commandLabel is the label of an entry's body inside a process routine.
func commandLabel(menu string, entry *builder.Entry) string {
	if entry.Kind == builder.KindCatchAll {
		return "process_" + menu + "_invalid"
	}
	return "process_" + menu + "_cmd_" + emit.Ident(entry.Name)
}

// writeProcess prints the dispatch routine of a menu. A chain of
// comparisons jumps to the label of the matching entry; every body ends by
// jumping to the routine's end.
func writeProcess(w *emit.Writer, in *emit.Input, table *builder.Table) {
	menu := table.Menu
	routine := "process_" + menu
	function(w, routine, fmt.Sprintf("Process a %s command.", menu))

	for _, entry := range table.Entries {
		if entry.Kind == builder.KindCatchAll {
			continue
		}
		writeMatch(w, menu, entry)
	}
	w.Linef("goto %s", commandLabel(menu, catchAll(table)))
	w.Blank()

	for _, entry := range table.Entries {
		w.Linef(": %s", emit.Comment(entry.Description))
		w.Linef(":%s", commandLabel(menu, entry))
		writeBody(w, in, table, entry)
		w.Linef("goto end_%s", routine)
		w.Blank()
	}

	w.Linef(":end_%s", routine)
	end(w, routine)
}

// catchAll returns the table's catch-all entry.
func catchAll(table *builder.Table) *builder.Entry {
	for _, e := range table.Entries {
		if e.Kind == builder.KindCatchAll {
			return e
		}
	}
	return &builder.Entry{Name: builder.CatchAllCommand, Kind: builder.KindCatchAll}
}

// writeMatch compares the first argument against an entry's names. An entry
// with aliases raises a match flag so every name leads to one label.
func writeMatch(w *emit.Writer, menu string, entry *builder.Entry) {
	label := commandLabel(menu, entry)
	if len(entry.Aliases) == 0 {
		w.Linef(`if "%%~1" == "%s" goto %s`, entry.Name, label)
		return
	}

	flag := "is_command_" + emit.Ident(entry.Name)
	w.Linef("set %s=0", flag)
	for _, p := range entry.Patterns() {
		w.Linef(`if "%%~1" == "%s" set %s=1`, p, flag)
	}
	w.Linef(`if "%%%s%%" == "1" goto %s`, flag, label)
}

func writeBody(w *emit.Writer, in *emit.Input, table *builder.Table, entry *builder.Entry) {
	menu := table.Menu
	res := in.Resolve(entry, cli.BackendBatch)
	if res.Method == builder.MethodUnsupported {
		call(w, "error", quote(fmt.Sprintf("The '%s' command is not supported for %s.", entry.Name, cli.BackendBatch.Platform())))
		return
	}

	writeAuthCheck(w, menu, entry)
	for _, p := range entry.Params {
		writeArgCheck(w, menu, commandLabel(menu, entry), p)
	}

	switch res.Method {
	case builder.MethodScript:
		args := make([]string, 0, len(entry.Params))
		for _, p := range entry.Params {
			args = append(args, `"%`+p.Name+`%"`)
		}
		call(w, fragmentFunction(menu, entry), args...)
	case builder.MethodInline:
		w.Lines(cli.BodyLines(res.Body)...)
	case builder.MethodBuiltin:
		writeBuiltin(w, in, table, entry)
	}
}

// writeAuthCheck challenges the user unless the session is already at the
// command's access level. A failed challenge ends the command only.
func writeAuthCheck(w *emit.Writer, menu string, entry *builder.Entry) {
	if entry.Access == 0 {
		return
	}
	authed := commandLabel(menu, entry) + "_authed"
	w.Linef(`if "%%%s%%" == "%d" goto %s`, sanitize.VarAuthLevel, entry.Access, authed)
	call(w, fmt.Sprintf("auth_%d", entry.Access))
	w.Linef("if errorlevel 1 goto end_process_%s", menu)
	w.Linef(":%s", authed)
}

// writeArgCheck binds one positional argument, filling it from its default
// or a prompt, and enforces min <= value < max. The first argument is the
// command itself, so argument n is %n+1.
func writeArgCheck(w *emit.Writer, menu, label string, p builder.Param) {
	name := p.Name
	w.Linef("set %s=%%~%d", name, p.Position+1)
	if p.Arg.HasDefault() {
		w.Linef(`if "%%%s%%" == "" set "%s=%s"`, name, name, sanitize.BatchQuoted(p.Arg.Default.String()))
	} else {
		writeReadArg(w, label+"_"+name+"_set", name, p.Arg.Prompt(name), p.Arg.Secret)
	}

	if !p.Arg.HasBounds() {
		return
	}

	w.Linef(`echo %%%s%%| findstr /r /x "[0-9][0-9]* -[0-9][0-9]*" >nul`, name)
	w.Line("if errorlevel 1 (")
	w.Indent()
	fail(w, menu, fmt.Sprintf("Arg '%s' must be a number", name))
	w.Dedent()
	w.Line(")")

	if p.Arg.MinValue != nil {
		w.Linef("if %%%s%% LSS %d (", name, *p.Arg.MinValue)
		w.Indent()
		fail(w, menu, fmt.Sprintf("Arg '%s' must be at least %d", name, *p.Arg.MinValue))
		w.Dedent()
		w.Line(")")
	}
	if p.Arg.MaxValue != nil {
		w.Linef("if %%%s%% GEQ %d (", name, *p.Arg.MaxValue)
		w.Indent()
		fail(w, menu, fmt.Sprintf("Arg '%s' must be less than %d", name, *p.Arg.MaxValue))
		w.Dedent()
		w.Line(")")
	}
}

// writeReadArg prompts for an argument left empty.
func writeReadArg(w *emit.Writer, filled, name, message string, secret bool) {
	w.Linef(`if NOT "%%%s%%" == "" goto %s`, name, filled)
	if secret {
		w.Linef(`<nul set /p "=%s"`, sanitize.BatchQuoted(message))
		call(w, "read_secret", name)
		w.Line("echo.")
	} else {
		w.Linef("set /p %s=%s", name, sanitize.BatchText(message))
	}
	w.Line(`<nul set /p "=%RESET%"`)
	w.Linef(":%s", filled)
}

func writeBuiltin(w *emit.Writer, in *emit.Input, table *builder.Table, entry *builder.Entry) {
	menu := table.Menu
	switch entry.Kind {
	case builder.KindClear:
		call(w, menu, "true")
	case builder.KindExit:
		w.Line("echo %RED%Exiting...%RESET%")
		w.Line("set exit=1")
	case builder.KindHelp:
		writeHelp(w, in, table)
	case builder.KindAuth:
		for _, level := range in.Levels {
			w.Linef(`if "%%%s%%" == "%d" (`, builder.AuthArg, level.Level)
			w.Indent()
			call(w, fmt.Sprintf("auth_%d", level.Level))
			w.Linef("goto end_process_%s", menu)
			w.Dedent()
			w.Line(")")
		}
		call(w, "error", fmt.Sprintf(`"Auth level %%%s%% does not exist."`, builder.AuthArg))
	case builder.KindCatchAll:
		call(w, "error", `"'%~1' is not a valid command."`)
	}
}

// writeHelp prints the tier 0 listing, then each auth tier's listing when
// the session is at exactly that level. Tiers are skipped with goto since
// echo lines inside a block would break on parentheses.
func writeHelp(w *emit.Writer, in *emit.Input, table *builder.Table) {
	sections := help.Sections(table, in.HelpRegistry(), cli.BackendBatch.Extension(), in.LevelNumbers())
	for _, section := range sections {
		if section.Level == 0 {
			echo(w, sanitize.BatchText(section.Text))
			continue
		}
		skip := fmt.Sprintf("process_%s_help_tier_%d", table.Menu, section.Level)
		w.Linef(`if NOT "%%%s%%" == "%d" goto %s`, sanitize.VarAuthLevel, section.Level, skip)
		echo(w, sanitize.BatchText(section.Text))
		w.Linef(":%s", skip)
	}
}
