package sanitize

import "strings"

// Color is an ANSI SGR color available to both backends as a variable.
type Color struct {
	Name string
	Code int
}

// Colors lists every color variable in declaration order.
var Colors = []Color{
	{"RESET", 0},
	{"BLACK", 30},
	{"RED", 31},
	{"GREEN", 32},
	{"YELLOW", 33},
	{"BLUE", 34},
	{"MAGENTA", 35},
	{"CYAN", 36},
	{"GREY", 37},
	{"DARK_GREY", 90},
	{"BRIGHT_RED", 91},
	{"BRIGHT_GREEN", 92},
	{"BRIGHT_YELLOW", 93},
	{"BRIGHT_BLUE", 94},
	{"BRIGHT_PURPLE", 95},
	{"BRIGHT_CYAN", 96},
	{"WHITE", 97},
	{"BG_BLACK", 40},
	{"BG_RED", 41},
	{"BG_GREEN", 42},
	{"BG_YELLOW", 43},
	{"BG_BLUE", 44},
	{"BG_MAGENTA", 45},
	{"BG_CYAN", 46},
	{"BG_GREY", 47},
	{"BG_DARK_GREY", 100},
	{"BG_BRIGHT_RED", 101},
	{"BG_BRIGHT_GREEN", 102},
	{"BG_BRIGHT_YELLOW", 103},
	{"BG_BRIGHT_BLUE", 104},
	{"BG_BRIGHT_PURPLE", 105},
	{"BG_BRIGHT_CYAN", 106},
	{"BG_WHITE", 107},
}

// IsColor reports whether name (case-insensitive) is a known color variable.
func IsColor(name string) bool {
	upper := strings.ToUpper(name)
	for _, c := range Colors {
		if c.Name == upper {
			return true
		}
	}
	return false
}

// Variables shared by every generated script.
const (
	VarAuthLevel = "AUTH_LEVEL"
	VarTitle     = "TITLE"
	VarUser      = "USER"
	VarTime      = "TIME"
)

// SharedVariables are declared by both backends.
var SharedVariables = []string{VarAuthLevel, VarTitle, VarUser}

// BatchAdditionalVariables exist in the batch runtime without being part
// of the variables block.
var BatchAdditionalVariables = []string{VarTime, "input", "errMsg"}

// BatchVariableNames returns every name the batch dialect rewrites.
func BatchVariableNames() []string {
	names := append([]string(nil), SharedVariables...)
	for _, c := range Colors {
		names = append(names, c.Name)
	}
	return append(names, BatchAdditionalVariables...)
}

// Reserved characters per dialect.
var (
	BashEscapeChar = `\`
	BashReserved   = []string{`\`, `"`, "`", "'"}

	BatchEscapeChar = "^"
	BatchReserved   = []string{"^", "&", ">", "<", "|"}
)

// Bash is the escaping dialect of the bash backend.
var Bash = NewDialect("bash", BashEscapeChar, BashReserved, nil)

// Batch is the escaping dialect of the batch backend.
var Batch = NewDialect("batch", BatchEscapeChar, BatchReserved, BatchVariableNames())

// BashText prepares text for a printf format inside double quotes.
// Literal % is doubled and backslashes are pre-doubled so that a single
// backslash survives both the double-quote and the format layers.
func BashText(text string) string {
	text = Sanitize(text, "%", []string{"%"})
	text = Sanitize(text, BashEscapeChar, []string{`\`})
	return Bash.Escape(text)
}

// BashArg prepares text for a double-quoted printf argument. Placeholders
// still expand, and their values are printed as data.
func BashArg(text string) string {
	return Sanitize(text, BashEscapeChar, []string{`\`, `"`, "`"})
}

// BashQuoted prepares a literal for a plain double-quoted bash word.
func BashQuoted(text string) string {
	return Sanitize(text, BashEscapeChar, []string{`\`, `"`, "`", "$"})
}

// BatchText prepares text for echo, set and set /p in batch. Literal %
// is doubled before placeholders are rewritten, then reserved characters
// are escaped with a caret.
func BatchText(text string) string {
	text = Sanitize(text, "%", []string{"%"})
	text = Batch.ConvertVariables(text)
	return Batch.Escape(text)
}

// BatchValue prepares a literal for set "NAME=value" when the variable is
// later expanded on an echo or set /p line, where the expanded text is
// parsed again. Every reserved character gets one caret: outside inner
// quotes it survives the set line and escapes the echo, inside them the
// set line consumes it. An unbalanced double quote becomes a single quote.
func BatchValue(text string) string {
	if strings.Count(text, `"`)%2 == 1 {
		text = strings.ReplaceAll(text, `"`, "'")
	}
	text = Sanitize(text, "%", []string{"%"})
	return Batch.Escape(text)
}

// BatchQuoted prepares a literal for a double-quoted batch argument. Carets
// and redirections are literal inside quotes, but % still expands and a
// double quote cannot be escaped, so it becomes a single quote.
func BatchQuoted(text string) string {
	text = strings.ReplaceAll(text, `"`, "'")
	return Sanitize(text, "%", []string{"%"})
}
