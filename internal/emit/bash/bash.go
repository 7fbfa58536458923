// Package bash prints the bash backend of a remotecli specification.
package bash

import (
	"context"
	"fmt"
	"strings"

	"github.com/CliForge/remotecli/internal/banner"
	"github.com/CliForge/remotecli/internal/builder"
	"github.com/CliForge/remotecli/internal/emit"
	"github.com/CliForge/remotecli/internal/sanitize"
	"github.com/CliForge/remotecli/pkg/cli"
)

// Shebang is the first line of every generated script.
const Shebang = "#!/usr/bin/env bash"

// Emitter prints bash scripts.
type Emitter struct{}

// New creates a bash emitter.
func New() *Emitter {
	return &Emitter{}
}

// Backend returns cli.BackendBash.
func (e *Emitter) Backend() cli.Backend {
	return cli.BackendBash
}

// Emit prints the complete script: variables, shared routines, auth
// challenges, fragment routines, one process/prompt/menu triple per menu
// and the entry point.
func (e *Emitter) Emit(ctx context.Context, in *emit.Input) (string, error) {
	w := emit.NewWriter("    ")

	w.Line(Shebang)
	w.Blank()
	writeVariables(w, in.Spec)
	writeMessages(w)

	if err := writeAuth(w, in.Levels); err != nil {
		return "", err
	}
	writeFragments(w, in)

	for _, table := range in.Tables {
		menu := in.Menu(table)
		writeProcess(w, in, table)
		writePrompt(w, table.Menu, menu)
		if err := writeMenu(ctx, w, in, table.Menu, menu); err != nil {
			return "", fmt.Errorf("failed to emit menu %s: %w", table.Menu, err)
		}
	}

	writeEntryPoint(w, in.Spec.MainMenu)
	return w.String(), nil
}

// function opens a commented bash function.
func function(w *emit.Writer, name, description string) {
	w.Linef("# %s", emit.Comment(description))
	w.Linef("%s ()", name)
	w.Line("{")
	w.Indent()
}

// end closes a function opened with function.
func end(w *emit.Writer) {
	w.Dedent()
	w.Line("}")
	w.Blank()
}

// printText writes text as one printf statement per line. The text is an
// argument, so expanded placeholders are printed as data.
func printText(w *emit.Writer, text string) {
	for _, line := range strings.Split(text, "\n") {
		w.Linef(`printf "%%s\n" "%s"`, sanitize.BashArg(line))
	}
}

func writeVariables(w *emit.Writer, spec *cli.Specification) {
	w.Line("# Variables")
	w.Linef("%s=0", sanitize.VarAuthLevel)
	w.Linef(`%s="%s"`, sanitize.VarTitle, sanitize.BashQuoted(spec.Title))
	w.Linef("%s=$(whoami)", sanitize.VarUser)
	for _, c := range sanitize.Colors {
		w.Linef(`%s=$'\e[%dm'`, c.Name, c.Code)
	}
	w.Blank()
}

func writeMessages(w *emit.Writer) {
	function(w, "error", "Print an error message.")
	w.Line(`printf "%s\n" "${RED}Error: $1${RESET}"`)
	end(w)

	function(w, "success", "Print a success message.")
	w.Line(`printf "${GREEN}%s${RESET}\n" "$1"`)
	end(w)
}

// shasum returns the digest command for an algorithm.
func shasum(algorithm cli.HashAlgorithm) (string, error) {
	switch algorithm {
	case cli.HashSHA1:
		return "shasum", nil
	case cli.HashSHA256:
		return "shasum -a 256", nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

func writeAuth(w *emit.Writer, levels []cli.AuthLevel) error {
	for _, level := range levels {
		if level.Method.Type != cli.AuthTypeHash {
			return fmt.Errorf("auth type '%s' is invalid", level.Method.Type)
		}
		digest, err := shasum(level.Method.Digest())
		if err != nil {
			return fmt.Errorf("auth level %d: %w", level.Level, err)
		}

		function(w, fmt.Sprintf("auth_%d", level.Level), fmt.Sprintf("Authenticate to level %d.", level.Level))
		w.Line("local key hashed_key")
		w.Line("if ! command -v shasum &> /dev/null")
		w.Line("then")
		w.Indent()
		w.Line(`error "shasum was not found"`)
		w.Line("return 1")
		w.Dedent()
		w.Line("fi")
		w.Line(`printf "Key: "`)
		w.Line(`read -r -s -p "" key < /dev/tty`)
		w.Line(`printf "\n"`)
		w.Linef(`hashed_key=$(printf "%%s" "$key" | %s | awk '{print $1}')`, digest)
		w.Linef(`if [ "$hashed_key" != "%s" ]`, strings.ToLower(level.Method.Hash))
		w.Line("then")
		w.Indent()
		w.Line(`error "Invalid Key"`)
		w.Line("return 1")
		w.Dedent()
		w.Line("fi")
		w.Linef("%s=%d", sanitize.VarAuthLevel, level.Level)
		w.Linef(`success "Authenticated to level %d access."`, level.Level)
		w.Line("return 0")
		end(w)
	}
	return nil
}

// fragmentFunction names the routine wrapping a command's fragment.
func fragmentFunction(menu string, entry *builder.Entry) string {
	return "run_" + emit.Ident(menu) + "_" + emit.Ident(entry.Name)
}

// writeFragments wraps every included fragment in a function whose
// positional parameters are bound to the command's argument names.
func writeFragments(w *emit.Writer, in *emit.Input) {
	for _, table := range in.Tables {
		for _, entry := range table.Declared() {
			res := in.Resolve(entry, cli.BackendBash)
			if res.Method != builder.MethodScript {
				continue
			}
			frag, ok := in.Registry.Lookup(entry.Script, cli.BackendBash)
			if !ok {
				continue
			}

			function(w, fragmentFunction(table.Menu, entry), entry.Description)
			for _, p := range entry.Params {
				w.Linef(`local %s="$%d"`, p.Name, p.Position)
			}
			if frag.Body == "" {
				w.Line(":")
			}
			w.Verbatim(frag.Body)
			end(w)
		}
	}
}

func writeEntryPoint(w *emit.Writer, mainMenu string) {
	w.Line("# Run a single command when one is given.")
	w.Line(`if [ "$c" != "" ]`)
	w.Line("then")
	w.Indent()
	w.Linef(`process_%s "${c//,/ }"`, mainMenu)
	w.Line("exit")
	w.Dedent()
	w.Line("fi")
	w.Blank()
	w.Line(`if [ "$#" -gt 0 ]`)
	w.Line("then")
	w.Indent()
	w.Linef(`process_%s "$*"`, mainMenu)
	w.Line("exit")
	w.Dedent()
	w.Line("fi")
	w.Blank()
	w.Line(mainMenu)
}

// writeMenu prints the menu function: clear, header, banner, then the
// prompt loop unless the first argument is true.
func writeMenu(ctx context.Context, w *emit.Writer, in *emit.Input, name string, menu *cli.Menu) error {
	splash, err := banner.Render(ctx, sanitize.BashText, menu.Splash, in.Renderer)
	if err != nil {
		return err
	}

	function(w, name, fmt.Sprintf("The %s menu.", name))
	w.Line("clear")
	if menu.Header != "" {
		w.Linef(`%s=$(date "+%%m/%%d/%%Y %%H:%%M:%%S")`, sanitize.VarTime)
		w.Linef(`printf "%%s\n" "${BG_DARK_GREY}%s ${RESET}"`, sanitize.BashArg(menu.Header))
	}
	if splash != "" {
		for _, line := range strings.Split(splash, "\n") {
			w.Linef(`printf "%s\n"`, line)
		}
	}
	w.Line(`printf "\n"`)
	w.Line(`if [ "$1" != true ]`)
	w.Line("then")
	w.Indent()
	w.Linef("prompt_%s", name)
	w.Dedent()
	w.Line("fi")
	end(w)
	return nil
}

// writePrompt prints the prompt function, which reads one line, dispatches
// it when non-empty and calls itself again.
func writePrompt(w *emit.Writer, name string, menu *cli.Menu) {
	function(w, "prompt_"+name, fmt.Sprintf("Create the %s prompt.", name))
	w.Linef(`printf "%%s" "%s"`, sanitize.BashArg(menu.PromptPrefix()))
	w.Line(`read -r -p "" input < /dev/tty || exit 0`)
	w.Line(`printf "${RESET}"`)
	w.Line(`if [ "$input" != "" ]`)
	w.Line("then")
	w.Indent()
	w.Linef(`process_%s "$input"`, name)
	w.Dedent()
	w.Line("fi")
	w.Blank()
	w.Linef("prompt_%s", name)
	end(w)
}
