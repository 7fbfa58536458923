// Package batch prints the Windows batch backend of a remotecli
// specification.
//
// Batch has no functions, so every routine is a label guarded by the func
// variable: falling through a definition skips it, and a routine only runs
// when called with func set to its name. Delayed expansion stays off; each
// %VAR% read sits on its own line or label so earlier assignments are seen.
package batch

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

// Header is the first line of every generated script.
const Header = "@echo off"

// esc is the ANSI escape byte written into color variables.
const esc = "\x1b"

// KeyFile is the temporary file hashed by certutil.
const KeyFile = `%TEMP%\remotecli_key.txt`

// Emitter prints batch scripts.
type Emitter struct{}

// New creates a batch emitter.
func New() *Emitter {
	return &Emitter{}
}

// Backend returns cli.BackendBatch.
func (e *Emitter) Backend() cli.Backend {
	return cli.BackendBatch
}

// Emit prints the complete script in the same order as the bash backend.
func (e *Emitter) Emit(ctx context.Context, in *emit.Input) (string, error) {
	w := emit.NewWriter("    ")

	w.Line(Header)
	w.Line("setlocal")
	w.Blank()
	writeVariables(w, in.Spec)
	writeMessages(w)

	if needsSecret(in) {
		writeReadSecret(w)
	}
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

// function opens a guarded routine.
func function(w *emit.Writer, name, description string) {
	w.Linef(": %s", emit.Comment(description))
	w.Linef(":func_%s", name)
	w.Linef(`if NOT "%%func%%" == "%s" goto end_func_%s`, name, name)
}

// end closes a routine opened with function.
func end(w *emit.Writer, name string) {
	w.Line("exit /b")
	w.Linef(":end_func_%s", name)
	w.Blank()
}

// call invokes a routine with already quoted arguments.
func call(w *emit.Writer, name string, args ...string) {
	w.Linef("set func=%s", name)
	w.Line(strings.TrimRight(fmt.Sprintf("call :func_%s %s", name, strings.Join(args, " ")), " "))
}

// quote wraps a literal in double quotes for a call argument.
func quote(s string) string {
	return `"` + sanitize.BatchQuoted(s) + `"`
}

// echo writes text as one echo statement per line.
func echo(w *emit.Writer, text string) {
	for _, line := range strings.Split(text, "\n") {
		echoLine(w, line)
	}
}

// echoLine prints one already escaped line; blank lines use echo. since a
// bare echo prints its state.
func echoLine(w *emit.Writer, line string) {
	if strings.TrimSpace(line) == "" {
		w.Line("echo.")
		return
	}
	w.Line("echo " + line)
}

func writeVariables(w *emit.Writer, spec *cli.Specification) {
	w.Line(": Variables")
	w.Line("set func=")
	w.Line("set exit=0")
	w.Linef("set %s=0", sanitize.VarAuthLevel)
	w.Linef(`set "%s=%s"`, sanitize.VarTitle, sanitize.BatchValue(spec.Title))
	w.Linef("set %s=%%USERNAME%%", sanitize.VarUser)
	for _, c := range sanitize.Colors {
		w.Linef("set %s=%s[%dm", c.Name, esc, c.Code)
	}
	w.Blank()
}

func writeMessages(w *emit.Writer) {
	// FOR variables expand after redirection is parsed, so the message
	// may hold > or | safely.
	function(w, "error", "Print an error message.")
	w.Line(`for /f "delims=" %%m in ("%~1") do echo %RED%Error: %%m%RESET%`)
	end(w, "error")

	function(w, "success", "Print a success message.")
	w.Line(`for /f "delims=" %%m in ("%~1") do echo %GREEN%%%m%RESET%`)
	end(w, "success")
}

// fail reports message and leaves the current process routine.
func fail(w *emit.Writer, menu, message string) {
	call(w, "error", quote(message))
	w.Linef("goto end_process_%s", menu)
}

// needsSecret reports whether hidden input is read anywhere.
func needsSecret(in *emit.Input) bool {
	if len(in.Levels) > 0 {
		return true
	}
	for _, table := range in.Tables {
		for _, entry := range table.Entries {
			for _, p := range entry.Params {
				if p.Arg.Secret && !p.Arg.HasDefault() {
					return true
				}
			}
		}
	}
	return false
}

// writeReadSecret reads a line without echoing it into the variable named
// by the first argument.
func writeReadSecret(w *emit.Writer) {
	function(w, "read_secret", "Read hidden input into a variable.")
	w.Line(`set "%~1="`)
	w.Line("for /f \"usebackq delims=\" %%p in (`powershell -NoProfile -Command \"$s = Read-Host -AsSecureString; [Runtime.InteropServices.Marshal]::PtrToStringAuto([Runtime.InteropServices.Marshal]::SecureStringToBSTR($s))\"`) do set \"%~1=%%p\"")
	end(w, "read_secret")
}

// certutilAlgorithm returns the certutil name of an algorithm.
func certutilAlgorithm(algorithm cli.HashAlgorithm) (string, error) {
	switch algorithm {
	case cli.HashSHA1:
		return "SHA1", nil
	case cli.HashSHA256:
		return "SHA256", nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}
}

func writeAuth(w *emit.Writer, levels []cli.AuthLevel) error {
	for _, level := range levels {
		if level.Method.Type != cli.AuthTypeHash {
			return fmt.Errorf("auth type '%s' is invalid", level.Method.Type)
		}
		algorithm, err := certutilAlgorithm(level.Method.Digest())
		if err != nil {
			return fmt.Errorf("auth level %d: %w", level.Level, err)
		}

		name := fmt.Sprintf("auth_%d", level.Level)
		function(w, name, fmt.Sprintf("Authenticate to level %d.", level.Level))
		w.Line("where certutil >nul 2>nul")
		w.Line("if errorlevel 1 (")
		w.Indent()
		call(w, "error", quote("certutil was not found"))
		w.Line("exit /b 1")
		w.Dedent()
		w.Line(")")
		w.Line(`<nul set /p "=Key: "`)
		call(w, "read_secret", "key")
		w.Line("echo.")
		w.Line("set hashed_key=")
		w.Linef(`<nul set /p "=%%key%%" > "%s"`, KeyFile)
		w.Linef(`for /f "skip=1 delims=" %%%%h in ('certutil -hashfile "%s" %s') do if not defined hashed_key set "hashed_key=%%%%h"`, KeyFile, algorithm)
		w.Linef(`del "%s" >nul 2>nul`, KeyFile)
		w.Line("set key=")
		w.Line("if not defined hashed_key (")
		w.Indent()
		call(w, "error", quote("Invalid Key"))
		w.Line("exit /b 1")
		w.Dedent()
		w.Line(")")
		w.Line(`set "hashed_key=%hashed_key: =%"`)
		w.Linef(`if /i NOT "%%hashed_key%%" == "%s" (`, strings.ToLower(level.Method.Hash))
		w.Indent()
		call(w, "error", quote("Invalid Key"))
		w.Line("exit /b 1")
		w.Dedent()
		w.Line(")")
		w.Linef("set %s=%d", sanitize.VarAuthLevel, level.Level)
		call(w, "success", quote(fmt.Sprintf("Authenticated to level %d access.", level.Level)))
		w.Line("exit /b 0")
		w.Linef(":end_func_%s", name)
		w.Blank()
	}
	return nil
}

// fragmentFunction names the routine wrapping a command's fragment.
func fragmentFunction(menu string, entry *builder.Entry) string {
	return "run_" + emit.Ident(menu) + "_" + emit.Ident(entry.Name)
}

// writeFragments wraps every included fragment in a routine. Fragments
// read their arguments positionally as %1, %2 and so on.
func writeFragments(w *emit.Writer, in *emit.Input) {
	for _, table := range in.Tables {
		for _, entry := range table.Declared() {
			res := in.Resolve(entry, cli.BackendBatch)
			if res.Method != builder.MethodScript {
				continue
			}
			frag, ok := in.Registry.Lookup(entry.Script, cli.BackendBatch)
			if !ok {
				continue
			}

			name := fragmentFunction(table.Menu, entry)
			function(w, name, entry.Description)
			w.Verbatim(frag.Body)
			end(w, name)
		}
	}
}

func writeEntryPoint(w *emit.Writer, mainMenu string) {
	w.Line(": Run a single command when one is given.")
	w.Line(`if NOT "%c%" == "" (`)
	w.Indent()
	call(w, "process_"+mainMenu, "%c%")
	w.Line("exit /b 0")
	w.Dedent()
	w.Line(")")
	w.Line(`if NOT "%~1" == "" (`)
	w.Indent()
	call(w, "process_"+mainMenu, "%*")
	w.Line("exit /b 0")
	w.Dedent()
	w.Line(")")
	w.Blank()
	call(w, mainMenu)
	w.Blank()
	w.Line(":cleanup")
	w.Line("cls")
	w.Line("exit /b 0")
}

// writeMenu prints the menu routine: clear, header, banner, then the prompt
// loop unless the first argument is true.
func writeMenu(ctx context.Context, w *emit.Writer, in *emit.Input, name string, menu *cli.Menu) error {
	splash, err := banner.Render(ctx, sanitize.BatchText, menu.Splash, in.Renderer)
	if err != nil {
		return err
	}

	function(w, name, fmt.Sprintf("The %s menu.", name))
	w.Line("cls")
	if menu.Header != "" {
		// TIME shadows the dynamic variable once set, so clear it first.
		w.Linef("set %s=", sanitize.VarTime)
		w.Linef("set %s=%%date%% %%time%%", sanitize.VarTime)
		w.Linef("echo %%BG_DARK_GREY%%%s %%RESET%%", sanitize.BatchText(menu.Header))
	}
	if splash != "" {
		for _, line := range strings.Split(splash, "\n") {
			echoLine(w, line)
		}
	}
	w.Line("echo.")
	w.Line(`if "%~1" == "true" exit /b`)
	call(w, "prompt_"+name)
	end(w, name)
	return nil
}

// writePrompt prints the prompt routine. It reads one line, dispatches it
// when non-empty and calls itself again until the exit flag is raised.
func writePrompt(w *emit.Writer, name string, menu *cli.Menu) {
	routine := "prompt_" + name
	function(w, routine, fmt.Sprintf("Create the %s prompt.", name))
	w.Line("set input=NO_INPUT")
	w.Linef("set /p input=%s", sanitize.BatchText(menu.PromptPrefix()))
	w.Line(`<nul set /p "=%RESET%"`)
	w.Linef(`if "%%input%%" == "NO_INPUT" goto %s_next`, routine)
	call(w, "process_"+name, "%input%")
	w.Linef(":%s_next", routine)
	w.Line(`if "%exit%" == "0" (`)
	w.Indent()
	call(w, routine)
	w.Dedent()
	w.Line(")")
	end(w, routine)
}
