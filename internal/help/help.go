// Package help renders the aligned command listings printed by the
// generated help built-in.
package help

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/CliForge/remotecli/internal/builder"
)

// Gutter is the number of spaces between the widest term and the descriptions.
const Gutter = 4

// Render produces the listing for entries under heading. Each line is the
// entry's term padded to the widest term plus Gutter, followed by the
// description in cyan. The text uses $NAME placeholders and is left to the
// emitters to escape.
func Render(heading string, entries []*builder.Entry) string {
	terms := make([]string, len(entries))
	width := 0
	for i, e := range entries {
		terms[i] = e.Term()
		if n := utf8.RuneCountInString(terms[i]); n > width {
			width = n
		}
	}

	lines := []string{heading, ""}
	for i, e := range entries {
		pad := width + Gutter - utf8.RuneCountInString(terms[i])
		lines = append(lines, terms[i]+strings.Repeat(" ", pad)+"${CYAN}"+e.Description+"${RESET}")
	}
	return strings.Join(lines, "\n")
}

// Section is the listing of one auth tier.
type Section struct {
	// Level is 0 for the always-visible listing.
	Level int
	Text  string
}

// MenuHeading introduces the tier 0 listing.
func MenuHeading(menu string) string {
	return fmt.Sprintf("Showing commands for the %s menu.", menu)
}

// TierHeading introduces the listing of one auth tier.
func TierHeading(level int) string {
	return fmt.Sprintf("\nAuth level %d commands.", level)
}

// Sections returns the help listings of a menu for one backend: the tier 0
// listing first, then one section per auth level that lists at least one
// entry, in ascending order.
func Sections(table *builder.Table, registry builder.Registry, extension string, levels []int) []Section {
	sections := []Section{{
		Level: 0,
		Text:  Render(MenuHeading(table.Menu), builder.FilterForHelp(table, registry, extension, 0)),
	}}

	for _, level := range levels {
		entries := builder.FilterForHelp(table, registry, extension, level)
		if len(entries) == 0 {
			continue
		}
		sections = append(sections, Section{Level: level, Text: Render(TierHeading(level), entries)})
	}
	return sections
}
