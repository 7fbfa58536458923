package bash

import (
	"fmt"
	"strings"

	"github.com/CliForge/remotecli/internal/builder"
	"github.com/CliForge/remotecli/internal/emit"
	"github.com/CliForge/remotecli/internal/help"
	"github.com/CliForge/remotecli/internal/sanitize"
	"github.com/CliForge/remotecli/pkg/cli"
)

// writeProcess prints the dispatch function of a menu. The first word of
// the input selects a case branch; the remaining words are the arguments.
func writeProcess(w *emit.Writer, in *emit.Input, table *builder.Table) {
	function(w, "process_"+table.Menu, fmt.Sprintf("Process a %s command.", table.Menu))
	w.Line(`IFS=' ' read -ra parts <<< "$1"`)
	w.Line(`case "${parts[0]}" in`)
	w.Indent()

	for _, entry := range table.Entries {
		w.Linef("# %s", emit.Comment(entry.Description))
		w.Line(pattern(entry))
		w.Indent()
		writeBody(w, in, table, entry)
		w.Line(";;")
		w.Dedent()
	}

	w.Dedent()
	w.Line("esac")
	end(w)
}

// pattern returns the case pattern of an entry. Names are quoted so that
// aliases like ? match literally.
func pattern(entry *builder.Entry) string {
	if entry.Kind == builder.KindCatchAll {
		return "*)"
	}
	quoted := make([]string, 0, len(entry.Aliases)+1)
	for _, p := range entry.Patterns() {
		quoted = append(quoted, `"`+sanitize.BashQuoted(p)+`"`)
	}
	return strings.Join(quoted, " | ") + ")"
}

func writeBody(w *emit.Writer, in *emit.Input, table *builder.Table, entry *builder.Entry) {
	res := in.Resolve(entry, cli.BackendBash)
	if res.Method == builder.MethodUnsupported {
		w.Linef(`error "The '%s' command is not supported for %s."`, entry.Name, cli.BackendBash.Platform())
		return
	}

	writeAuthCheck(w, entry)
	for _, p := range entry.Params {
		writeArgCheck(w, p)
	}

	switch res.Method {
	case builder.MethodScript:
		call := []string{fragmentFunction(table.Menu, entry)}
		for _, p := range entry.Params {
			call = append(call, `"$`+p.Name+`"`)
		}
		w.Line(strings.Join(call, " "))
	case builder.MethodInline:
		w.Lines(cli.BodyLines(res.Body)...)
	case builder.MethodBuiltin:
		writeBuiltin(w, in, table, entry)
	}
}

// writeAuthCheck challenges the user when the session is not at the
// command's access level. A failed challenge ends the command only.
func writeAuthCheck(w *emit.Writer, entry *builder.Entry) {
	if entry.Access == 0 {
		return
	}
	w.Linef(`if [ "$%s" != "%d" ]`, sanitize.VarAuthLevel, entry.Access)
	w.Line("then")
	w.Indent()
	w.Linef("auth_%d", entry.Access)
	w.Line(`if [ "$?" != "0" ]`)
	w.Line("then")
	w.Indent()
	w.Line("return 1")
	w.Dedent()
	w.Line("fi")
	w.Dedent()
	w.Line("fi")
}

// writeArgCheck binds one positional argument, filling it from its default
// or a prompt, and enforces min <= value < max.
func writeArgCheck(w *emit.Writer, p builder.Param) {
	name := p.Name
	w.Linef(`local %s="${parts[%d]}"`, name, p.Position)
	w.Linef(`if [ "$%s" == "" ]`, name)
	w.Line("then")
	w.Indent()
	if p.Arg.HasDefault() {
		w.Linef(`%s="%s"`, name, sanitize.BashQuoted(p.Arg.Default.String()))
	} else {
		writeReadArg(w, name, p.Arg.Prompt(name), p.Arg.Secret)
	}
	w.Dedent()
	w.Line("fi")

	if !p.Arg.HasBounds() {
		return
	}

	w.Linef(`if ! [[ "$%s" =~ ^-?[0-9]+$ ]]`, name)
	fail(w, fmt.Sprintf("Arg '%s' must be a number", name))

	if p.Arg.MinValue != nil {
		w.Linef(`if [ "$%s" -lt "%d" ]`, name, *p.Arg.MinValue)
		fail(w, fmt.Sprintf("Arg '%s' must be at least %d", name, *p.Arg.MinValue))
	}
	if p.Arg.MaxValue != nil {
		w.Linef(`if [ "$%s" -ge "%d" ]`, name, *p.Arg.MaxValue)
		fail(w, fmt.Sprintf("Arg '%s' must be less than %d", name, *p.Arg.MaxValue))
	}
}

// writeReadArg prompts for a missing argument.
func writeReadArg(w *emit.Writer, name, message string, secret bool) {
	w.Linef(`printf "%%s" "%s"`, sanitize.BashArg(message))
	if secret {
		w.Linef(`read -r -s -p "" %s < /dev/tty`, name)
		w.Line(`printf "\n"`)
	} else {
		w.Linef(`read -r -p "" %s < /dev/tty`, name)
	}
	w.Line(`printf "${RESET}"`)
}

// fail closes a condition that reports message and aborts the command.
func fail(w *emit.Writer, message string) {
	w.Line("then")
	w.Indent()
	w.Linef(`error "%s"`, sanitize.BashQuoted(message))
	w.Line("return")
	w.Dedent()
	w.Line("fi")
}

func writeBuiltin(w *emit.Writer, in *emit.Input, table *builder.Table, entry *builder.Entry) {
	switch entry.Kind {
	case builder.KindClear:
		w.Linef("%s true", table.Menu)
	case builder.KindExit:
		w.Line("clear")
		w.Line("exit 0")
	case builder.KindHelp:
		writeHelp(w, in, table)
	case builder.KindAuth:
		w.Linef(`if declare -f "auth_$%s" > /dev/null`, builder.AuthArg)
		w.Line("then")
		w.Indent()
		w.Linef(`"auth_$%s"`, builder.AuthArg)
		w.Dedent()
		w.Line("else")
		w.Indent()
		w.Linef(`error "Auth level $%s does not exist."`, builder.AuthArg)
		w.Dedent()
		w.Line("fi")
	case builder.KindCatchAll:
		w.Line(`error "\"${parts[0]}\" is not a valid command."`)
	}
}

// writeHelp prints the tier 0 listing, then each auth tier's listing when
// the session is at exactly that level.
func writeHelp(w *emit.Writer, in *emit.Input, table *builder.Table) {
	sections := help.Sections(table, in.HelpRegistry(), cli.BackendBash.Extension(), in.LevelNumbers())
	for _, section := range sections {
		if section.Level == 0 {
			printText(w, section.Text)
			continue
		}
		w.Linef(`if [ "$%s" == "%d" ]`, sanitize.VarAuthLevel, section.Level)
		w.Line("then")
		w.Indent()
		printText(w, section.Text)
		w.Dedent()
		w.Line("fi")
	}
}
