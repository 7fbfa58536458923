package builder

import (
	"strings"
	"testing"

	"github.com/CliForge/remotecli/pkg/cli"
)

type fakeRegistry map[string]bool

func (f fakeRegistry) Known(file string) bool { return f[file] }

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func testMenu() *cli.Menu {
	menu := &cli.Menu{Commands: cli.NewOrderedMap[cli.Command]()}
	menu.Commands.Set("ping", cli.Command{
		Description: "Ping",
		BashCommand: cli.NewSingleLine("echo pong"),
	})
	greetArgs := cli.NewOrderedMap[cli.Arg]()
	greetArgs.Set("name", cli.Arg{})
	greetArgs.Set("times", cli.Arg{Default: cli.NumberValue(1)})
	menu.Commands.Set("greet", cli.Command{
		Description: "Greet someone",
		Aliases:     []string{"g", "hi"},
		Args:        greetArgs,
		Script:      "greet",
	})
	menu.Commands.Set("secret", cli.Command{
		Description: "Hidden",
		Visible:     boolPtr(false),
		BashCommand: cli.NewSingleLine("echo hidden"),
	})
	menu.Commands.Set("deploy", cli.Command{
		Description:  "Deploy",
		Access:       intPtr(2),
		BatchCommand: cli.NewMultiLine("echo one", "echo two"),
	})
	return menu
}

func testLevels() []cli.AuthLevel {
	return []cli.AuthLevel{
		{Level: 1, Method: cli.AuthMethod{Type: cli.AuthTypeHash, Hash: "a"}},
		{Level: 2, Method: cli.AuthMethod{Type: cli.AuthTypeHash, Hash: "b"}},
	}
}

func entryNames(entries []*Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestBuild_Order(t *testing.T) {
	table, err := Build("main", testMenu(), testLevels())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	got := strings.Join(entryNames(table.Entries), ",")
	want := "ping,greet,secret,deploy,clear,exit,help,auth,*"
	if got != want {
		t.Errorf("Expected order %s, got %s", want, got)
	}

	last := table.Entries[len(table.Entries)-1]
	if last.Kind != KindCatchAll {
		t.Errorf("Expected catch-all last, got %s", last.Kind)
	}
}

func TestBuild_NoAuth(t *testing.T) {
	table, err := Build("main", testMenu(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, ok := table.Lookup(AuthCommand); ok {
		t.Error("Expected no auth entry without auth levels")
	}
}

func TestBuild_AuthBounds(t *testing.T) {
	levels := []cli.AuthLevel{{Level: 3}, {Level: 1}}
	table, err := Build("main", testMenu(), levels)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	entry, ok := table.Lookup(AuthCommand)
	if !ok {
		t.Fatal("Expected auth entry")
	}
	if len(entry.Params) != 1 || entry.Params[0].Name != AuthArg {
		t.Fatalf("Expected a single level param, got %+v", entry.Params)
	}

	arg := entry.Params[0].Arg
	if *arg.MinValue != 1 {
		t.Errorf("Expected min 1, got %d", *arg.MinValue)
	}
	if *arg.MaxValue != 4 {
		t.Errorf("Expected max 4, got %d", *arg.MaxValue)
	}
}

func TestBuild_Collisions(t *testing.T) {
	tests := []struct {
		name    string
		command string
		aliases []string
	}{
		{"builtin name", "help", nil},
		{"builtin alias", "run", []string{"h"}},
		{"catch-all", "*", nil},
		{"alias of declared command", "other", []string{"ping"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menu := testMenu()
			menu.Commands.Set(tt.command, cli.Command{Description: "x", Aliases: tt.aliases})

			if _, err := Build("main", menu, nil); err == nil {
				t.Errorf("Expected collision error for %s", tt.command)
			}
		})
	}
}

func TestTable_Lookup(t *testing.T) {
	table, err := Build("main", testMenu(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, token := range []string{"greet", "g", "hi"} {
		entry, ok := table.Lookup(token)
		if !ok || entry.Name != "greet" {
			t.Errorf("Expected %q to resolve to greet, got %v", token, entry)
		}
	}

	for _, token := range []string{"*", "nope", ""} {
		if _, ok := table.Lookup(token); ok {
			t.Errorf("Expected %q not to resolve", token)
		}
	}
}

func TestEntry_Term(t *testing.T) {
	table, err := Build("main", testMenu(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	greet, _ := table.Lookup("greet")
	if got := greet.Term(); got != "greet|g|hi <name> [times]" {
		t.Errorf("Unexpected term %q", got)
	}
	if greet.Params[1].Position != 2 {
		t.Errorf("Expected times at position 2, got %d", greet.Params[1].Position)
	}

	clearEntry, _ := table.Lookup("cls")
	if got := clearEntry.Term(); got != "clear|cls|c" {
		t.Errorf("Unexpected term %q", got)
	}
}

func TestFilterForHelp(t *testing.T) {
	table, err := Build("main", testMenu(), testLevels())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	tests := []struct {
		name      string
		registry  Registry
		extension string
		level     int
		want      string
	}{
		{"tier 0 without fragment", fakeRegistry{}, "sh", 0, "ping,clear,exit,help,auth"},
		{"tier 0 with fragment", fakeRegistry{"greet.sh": true}, "sh", 0, "ping,greet,clear,exit,help,auth"},
		{"fragment for other backend", fakeRegistry{"greet.bat": true}, "sh", 0, "ping,clear,exit,help,auth"},
		{"nil registry", nil, "bat", 0, "ping,clear,exit,help,auth"},
		{"tier 1 empty", fakeRegistry{}, "sh", 1, ""},
		{"tier 2 exact match", fakeRegistry{}, "bat", 2, "deploy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(entryNames(FilterForHelp(table, tt.registry, tt.extension, tt.level)), ",")
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFilterForHelp_Tiers(t *testing.T) {
	table, err := Build("main", testMenu(), testLevels())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	registry := fakeRegistry{"greet.sh": true}
	for level := 0; level <= 2; level++ {
		for _, e := range FilterForHelp(table, registry, "sh", level) {
			if e.Kind == KindCatchAll {
				t.Errorf("Catch-all listed at tier %d", level)
			}
			if level == 0 && e.Access != 0 {
				t.Errorf("Gated entry %s listed at tier 0", e.Name)
			}
			if level > 0 && e.Access != level {
				t.Errorf("Entry %s with access %d listed at tier %d", e.Name, e.Access, level)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	table, err := Build("main", testMenu(), testLevels())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	registry := fakeRegistry{"greet.sh": true}

	tests := []struct {
		command string
		backend cli.Backend
		want    Method
	}{
		{"ping", cli.BackendBash, MethodInline},
		{"ping", cli.BackendBatch, MethodUnsupported},
		{"greet", cli.BackendBash, MethodScript},
		{"greet", cli.BackendBatch, MethodUnsupported},
		{"deploy", cli.BackendBatch, MethodInline},
		{"help", cli.BackendBash, MethodBuiltin},
		{"auth", cli.BackendBatch, MethodBuiltin},
	}

	for _, tt := range tests {
		t.Run(tt.command+"/"+string(tt.backend), func(t *testing.T) {
			entry, ok := table.Lookup(tt.command)
			if !ok {
				t.Fatalf("Entry %s not found", tt.command)
			}
			got := Resolve(entry, tt.backend, registry)
			if got.Method != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Method)
			}
		})
	}
}

func TestResolve_Bodies(t *testing.T) {
	table, err := Build("main", testMenu(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	greet, _ := table.Lookup("greet")
	res := Resolve(greet, cli.BackendBash, fakeRegistry{"greet.sh": true})
	if ref, ok := res.Body.(cli.ScriptRef); !ok || ref.Name != "greet" {
		t.Errorf("Expected script ref greet, got %#v", res.Body)
	}

	deploy, _ := table.Lookup("deploy")
	res = Resolve(deploy, cli.BackendBatch, nil)
	multi, ok := res.Body.(cli.MultiLine)
	if !ok || len(multi.Lines) != 2 {
		t.Errorf("Expected two inline lines, got %#v", res.Body)
	}

	ping, _ := table.Lookup("ping")
	res = Resolve(ping, cli.BackendBash, nil)
	if single, ok := res.Body.(cli.SingleLine); !ok || single.Text != "echo pong" {
		t.Errorf("Expected single line echo pong, got %#v", res.Body)
	}
}

func TestBuildAll(t *testing.T) {
	spec := &cli.Specification{MainMenu: "main", Menus: cli.NewOrderedMap[cli.Menu]()}
	spec.Menus.Set("main", *testMenu())
	spec.Menus.Set("admin", cli.Menu{})

	tables, err := BuildAll(spec)
	if err != nil {
		t.Fatalf("BuildAll failed: %v", err)
	}
	if len(tables) != 2 || tables[0].Menu != "main" || tables[1].Menu != "admin" {
		t.Errorf("Expected tables in document order, got %v", tables)
	}
	if got := len(tables[1].Entries); got != 4 {
		t.Errorf("Expected 4 built-ins for an empty menu, got %d", got)
	}
}
