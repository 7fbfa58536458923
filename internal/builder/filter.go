package builder

import "github.com/CliForge/remotecli/pkg/cli"

// Registry reports which script fragments exist for the current build.
// File names carry their backend extension, e.g. "deploy.sh".
type Registry interface {
	Known(file string) bool
}

// FilterForHelp returns the entries listed by help at one auth tier.
//
// The catch-all, hidden entries and script entries whose fragment is not
// known for the backend are left out. At tier 0 only ungated entries are
// listed; at tier n > 0 only entries whose access is exactly n, so every
// entry appears in a single tier.
func FilterForHelp(table *Table, registry Registry, extension string, authLevel int) []*Entry {
	var out []*Entry
	for _, e := range table.Entries {
		if e.Kind == KindCatchAll || !e.Visible {
			continue
		}
		if e.Script != "" && !known(registry, e.Script+"."+extension) {
			continue
		}
		if (authLevel == 0 && e.Access == 0) || (authLevel > 0 && e.Access == authLevel) {
			out = append(out, e)
		}
	}
	return out
}

func known(registry Registry, file string) bool {
	return registry != nil && registry.Known(file)
}

// Method is how an entry runs on one backend.
type Method int

const (
	// MethodUnsupported produces a "not supported on this platform" stub.
	MethodUnsupported Method = iota
	// MethodScript calls an included fragment routine.
	MethodScript
	// MethodInline runs the declared inline lines.
	MethodInline
	// MethodBuiltin runs the backend's built-in body.
	MethodBuiltin
)

// String returns the method name used by inspect output.
func (m Method) String() string {
	switch m {
	case MethodScript:
		return "script"
	case MethodInline:
		return "inline"
	case MethodBuiltin:
		return "builtin"
	default:
		return "unsupported"
	}
}

// Resolution is an entry's body for one backend.
type Resolution struct {
	Method Method
	// Body is a cli.ScriptRef, cli.SingleLine or cli.MultiLine; nil for
	// built-ins and unsupported entries.
	Body cli.Body
}

// Resolve picks the body of an entry for a backend: a known script
// fragment wins, then the backend's inline body, then the built-in kind.
// Anything else is unsupported.
func Resolve(entry *Entry, backend cli.Backend, registry Registry) Resolution {
	if entry.Script != "" && known(registry, entry.Script+"."+backend.Extension()) {
		return Resolution{Method: MethodScript, Body: cli.ScriptRef{Name: entry.Script}}
	}
	if inline := entry.Inline[backend]; inline != nil {
		return Resolution{Method: MethodInline, Body: inline.Body()}
	}
	if entry.IsBuiltin() {
		return Resolution{Method: MethodBuiltin}
	}
	return Resolution{Method: MethodUnsupported}
}
