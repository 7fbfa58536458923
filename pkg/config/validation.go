package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/CliForge/remotecli/internal/builder"
	"github.com/CliForge/remotecli/internal/sanitize"
	"github.com/CliForge/remotecli/pkg/cli"
)

// ValidationError represents a specification validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Fields returns the field of every error, in report order.
func (e ValidationErrors) Fields() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Field
	}
	return out
}

var (
	menuNamePattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	commandNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_-]*$`)
	aliasPattern       = regexp.MustCompile(`^[^\s"'$%^&|<>]+$`)
	argNamePattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	hexPattern         = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	scriptPattern      = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)
)

// reservedMenuNames collide with functions, labels or commands the
// generated scripts rely on.
var reservedMenuNames = []string{
	"clear", "exit", "error", "success", "read", "printf", "echo", "date",
	"whoami", "shasum", "awk", "declare", "command", "return", "local",
	"set", "call", "goto", "if", "cls", "cleanup", "read_secret", "main_menu",
}

// reservedMenuPrefixes start the names of generated routines.
var reservedMenuPrefixes = []string{"prompt_", "process_", "auth_", "run_", "end_", "func_", "is_command_"}

// reservedArgNames are variables the generated scripts assign themselves
// or that batch treats as environment.
var reservedArgNames = []string{
	"parts", "input", "func", "exit", "valid_command", "key", "hashed_key",
	"c", "level", "path", "pathext", "comspec", "temp", "tmp", "systemroot",
	"windir", "username", "userprofile", "errorlevel", "cd", "date", "time",
	"random", "ifs",
}

// hashLengths is the hex digest length of each algorithm.
var hashLengths = map[cli.HashAlgorithm]int{
	cli.HashSHA1:   40,
	cli.HashSHA256: 64,
}

// Validator applies the semantic rules a schema cannot express.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates a complete specification.
func (v *Validator) Validate(spec *cli.Specification) error {
	v.errors = make(ValidationErrors, 0)

	v.validateDocument(spec)
	levels := v.validateAuth(spec)

	for name, menu := range spec.Menus.All() {
		v.validateMenu(name, &menu, levels)
	}

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// validateDocument validates the top-level fields.
func (v *Validator) validateDocument(spec *cli.Specification) {
	if strings.TrimSpace(spec.Title) == "" {
		v.addError("title", "title is required")
	}

	if spec.URI == "" {
		v.addError("uri", "uri is required")
	} else if !isValidHost(spec.URI) {
		v.addError("uri", "uri must be a host name such as cli.example.com")
	}

	if spec.Menus.Len() == 0 {
		v.addError("menus", "at least one menu is required")
	}

	if spec.MainMenu == "" {
		v.addError("mainMenu", "mainMenu is required")
	} else if !spec.Menus.Has(spec.MainMenu) {
		v.addError("mainMenu", fmt.Sprintf("menu '%s' does not exist", spec.MainMenu))
	}
}

// validateAuth validates the auth levels and returns the valid ones.
func (v *Validator) validateAuth(spec *cli.Specification) map[int]bool {
	levels := make(map[int]bool)
	for key, method := range spec.Auth.All() {
		field := "auth." + key

		level, err := strconv.Atoi(key)
		if err != nil || level < 1 {
			v.addError(field, "auth level must be a positive integer")
			continue
		}

		if method.Type != cli.AuthTypeHash {
			v.addError(field+".type", fmt.Sprintf("auth type '%s' is invalid", method.Type))
		}

		algorithm := method.Digest()
		want, known := hashLengths[algorithm]
		if !known {
			v.addError(field+".algorithm", "algorithm must be one of: sha1, sha256")
		}

		switch {
		case method.Hash == "":
			v.addError(field+".hash", "hash is required")
		case !hexPattern.MatchString(method.Hash):
			v.addError(field+".hash", "hash must be hexadecimal")
		case known && len(method.Hash) != want:
			v.addError(field+".hash", fmt.Sprintf("a %s hash has %d hex digits, got %d", algorithm, want, len(method.Hash)))
		}

		levels[level] = true
	}
	return levels
}

// validateMenu validates one menu and its commands.
func (v *Validator) validateMenu(name string, menu *cli.Menu, levels map[int]bool) {
	field := "menus." + name

	if !menuNamePattern.MatchString(name) {
		v.addError(field, "menu name must start with a letter or underscore and contain only letters, digits and underscores")
	} else if isReservedMenu(name) {
		v.addError(field, fmt.Sprintf("menu name '%s' is reserved", name))
	}

	if menu.Splash != nil && !menu.Splash.IsLiteral() {
		if menu.Splash.Text == "" {
			v.addError(field+".splash.text", "text is required")
		}
		color := menu.Splash.Color
		if color != "" && !strings.EqualFold(color, cli.RainbowColor) && !sanitize.IsColor(color) {
			v.addError(field+".splash.color", fmt.Sprintf("unknown color '%s'", color))
		}
	}

	claimed := make(map[string]string)
	for reserved, aliases := range builder.Reserved {
		for _, p := range append([]string{reserved}, aliases...) {
			claimed[p] = reserved
		}
	}
	idents := make(map[string]string)

	for cmdName, command := range menu.Commands.All() {
		cmdField := field + ".commands." + cmdName

		if owner, taken := claimed[cmdName]; taken {
			v.addError(cmdField, fmt.Sprintf("'%s' is already used by %s", cmdName, owner))
		} else if !commandNamePattern.MatchString(cmdName) {
			v.addError(cmdField, "command name must contain only letters, digits, underscores and hyphens, and not start with a hyphen")
		}
		claimed[cmdName] = cmdName

		ident := strings.ReplaceAll(cmdName, "-", "_")
		if other, dup := idents[ident]; dup {
			v.addError(cmdField, fmt.Sprintf("'%s' and '%s' produce the same routine name", other, cmdName))
		}
		idents[ident] = cmdName

		for _, alias := range command.Aliases {
			if owner, taken := claimed[alias]; taken {
				v.addError(cmdField+".aliases", fmt.Sprintf("'%s' is already used by %s", alias, owner))
				continue
			}
			if !aliasPattern.MatchString(alias) {
				v.addError(cmdField+".aliases", fmt.Sprintf("alias '%s' contains invalid characters", alias))
			}
			claimed[alias] = cmdName
		}

		v.validateCommand(cmdField, &command, levels)
	}
}

// validateCommand validates the body, access and arguments of a command.
func (v *Validator) validateCommand(field string, command *cli.Command, levels map[int]bool) {
	if strings.TrimSpace(command.Description) == "" {
		v.addError(field+".description", "description is required")
	}

	if command.Script != "" && !scriptPattern.MatchString(command.Script) {
		v.addError(field+".script", "script must be a fragment name without directories")
	}

	if command.Access != nil {
		level := *command.Access
		switch {
		case level < 1:
			v.addError(field+".access", "access must be at least 1")
		case !levels[level]:
			v.addError(field+".access", fmt.Sprintf("auth level %d is not declared", level))
		}
	}

	for argName, arg := range command.Args.All() {
		v.validateArg(field+".args."+argName, argName, &arg)
	}
}

// validateArg validates one argument's name, bounds and default.
func (v *Validator) validateArg(field, name string, arg *cli.Arg) {
	if !argNamePattern.MatchString(name) {
		v.addError(field, "argument name must be a valid identifier")
	} else if contains(reservedArgNames, strings.ToLower(name)) || isVariable(name) {
		v.addError(field, fmt.Sprintf("argument name '%s' is reserved", name))
	}

	if arg.MinValue != nil && arg.MaxValue != nil && *arg.MinValue >= *arg.MaxValue {
		v.addError(field, fmt.Sprintf("minValue %d must be less than maxValue %d", *arg.MinValue, *arg.MaxValue))
	}

	if !arg.HasDefault() || !arg.HasBounds() {
		return
	}

	value, err := strconv.Atoi(arg.Default.String())
	if err != nil {
		v.addError(field+".default", "default must be an integer when bounds are set")
		return
	}
	if arg.MinValue != nil && value < *arg.MinValue {
		v.addError(field+".default", fmt.Sprintf("default %d is below minValue %d", value, *arg.MinValue))
	}
	if arg.MaxValue != nil && value >= *arg.MaxValue {
		v.addError(field+".default", fmt.Sprintf("default %d must be less than maxValue %d", value, *arg.MaxValue))
	}
}

// addError adds a validation error.
func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// isValidHost reports whether uri names a host, with or without a scheme.
func isValidHost(uri string) bool {
	if strings.ContainsAny(uri, " \t\"'") {
		return false
	}
	candidate := uri
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	return err == nil && u.Host != ""
}

// isReservedMenu reports whether a menu name collides with a generated routine.
func isReservedMenu(name string) bool {
	lower := strings.ToLower(name)
	if contains(reservedMenuNames, lower) {
		return true
	}
	for _, prefix := range reservedMenuPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// isVariable reports whether name is a variable every script declares.
func isVariable(name string) bool {
	upper := strings.ToUpper(name)
	if sanitize.IsColor(upper) {
		return true
	}
	for _, shared := range append(sanitize.SharedVariables, sanitize.BatchAdditionalVariables...) {
		if strings.EqualFold(shared, upper) {
			return true
		}
	}
	return false
}

// contains checks whether a string slice contains a value.
func contains(slice []string, value string) bool {
	for _, s := range slice {
		if s == value {
			return true
		}
	}
	return false
}
