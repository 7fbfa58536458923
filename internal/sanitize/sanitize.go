// Package sanitize escapes literal text for a target shell dialect.
//
// Text shared between backends (headers, banners, help listings, prompts)
// is written once with bash-style variable placeholders ($NAME or ${NAME}).
// Each dialect escapes its reserved characters and, for batch, rewrites the
// placeholders it knows into %NAME% substitutions.
package sanitize

import (
	"regexp"
	"sort"
	"strings"
)

// Sanitize replaces every literal occurrence of each reserved character with
// escapeChar followed by the character. Characters are processed in order,
// so a reserved escape character must come first to avoid double escaping.
func Sanitize(text, escapeChar string, reserved []string) string {
	for _, character := range reserved {
		if character == "" {
			continue
		}
		text = strings.ReplaceAll(text, character, escapeChar+character)
	}
	return text
}

// Dialect describes how a backend escapes its literal text.
type Dialect struct {
	// Name of the dialect, for diagnostics.
	Name string
	// EscapeChar prefixes each reserved character.
	EscapeChar string
	// Reserved lists the characters escaped by Text, in processing order.
	Reserved []string
	// Variables are the names rewritten by ConvertVariables. A nil slice
	// means the dialect expands placeholders natively.
	Variables []string

	pattern *regexp.Regexp
}

// NewDialect creates a dialect and precompiles its placeholder pattern.
func NewDialect(name, escapeChar string, reserved, variables []string) *Dialect {
	d := &Dialect{
		Name:       name,
		EscapeChar: escapeChar,
		Reserved:   reserved,
		Variables:  variables,
	}
	if len(variables) > 0 {
		d.pattern = placeholderPattern(variables)
	}
	return d
}

// placeholderPattern matches ${NAME} and $NAME for the given names. Longer
// names are tried first and $NAME must end on a word boundary, so $RED in
// $RED_ZONE is left alone.
func placeholderPattern(names []string) *regexp.Regexp {
	sorted := append([]string(nil), names...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	quoted := make([]string, len(sorted))
	for i, n := range sorted {
		quoted[i] = regexp.QuoteMeta(n)
	}
	alternation := strings.Join(quoted, "|")
	return regexp.MustCompile(`\$\{(` + alternation + `)\}|\$(` + alternation + `)\b`)
}

// ConvertVariables rewrites known placeholders into %NAME% syntax.
func (d *Dialect) ConvertVariables(text string) string {
	if d.pattern == nil {
		return text
	}
	return d.pattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := d.pattern.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[2]
		}
		return "%" + name + "%"
	})
}

// Escape applies the dialect's reserved character escaping only.
func (d *Dialect) Escape(text string) string {
	return Sanitize(text, d.EscapeChar, d.Reserved)
}
