package document

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/CliForge/remotecli/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestParser_JSON(t *testing.T) {
	spec, err := NewParser().Parse("cli.json", readFixture(t, "cli.json"))
	require.NoError(t, err)

	assert.Equal(t, "Demo CLI", spec.Title)
	assert.Equal(t, []string{"main", "tools"}, spec.Menus.Keys())

	main, ok := spec.Menus.Get("main")
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "admin"}, main.Commands.Keys())
	assert.Equal(t, "rainbow", main.Splash.Color)

	alpha, _ := main.Commands.Get("alpha")
	assert.Equal(t, []string{"times", "name"}, alpha.Args.Keys())
	times, _ := alpha.Args.Get("times")
	assert.Equal(t, "2", times.Default.String())
	assert.Equal(t, "alpha", alpha.Script)

	admin, _ := main.Commands.Get("admin")
	assert.Equal(t, 1, admin.AccessLevel())
	assert.Equal(t, []string{"echo one", "echo two"}, cli.BodyLines(admin.BatchCommand.Body()))

	tools, _ := spec.Menus.Get("tools")
	require.NotNil(t, tools.Splash)
	assert.True(t, tools.Splash.IsLiteral())
	assert.Equal(t, 0, tools.Commands.Len())
}

func TestParser_YAML(t *testing.T) {
	spec, err := NewParser().Parse("cli.yaml", readFixture(t, "cli.yaml"))
	require.NoError(t, err)

	main, _ := spec.Menus.Get("main")
	assert.Equal(t, []string{"zeta", "alpha"}, main.Commands.Keys())
	assert.Equal(t, "$ ", main.PromptPrefix())
}

func TestParser_JSONSyntax(t *testing.T) {
	_, err := NewParser().Parse("cli.json", []byte("{\n  \"title\": }"))

	var serr *SyntaxError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.Equal(t, 2, serr.Line)
	assert.Equal(t, 12, serr.Column)
	assert.Equal(t, "cli.json", serr.Path)
	assert.True(t, strings.HasPrefix(err.Error(), "InvalidJSONSyntax: "))
}

func TestParser_YAMLSyntax(t *testing.T) {
	_, err := NewParser().Parse("cli.yml", []byte("title: a\n  bad: b\n"))

	var serr *SyntaxError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.Greater(t, serr.Line, 0)
	assert.NotContains(t, serr.Reason, "yaml: ")
}

func TestParser_Schema(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		data    string
		contain string
	}{
		{
			name:    "missing title",
			path:    "cli.json",
			data:    `{"uri": "cli.example.com", "mainMenu": "main", "menus": {"main": {}}}`,
			contain: "title",
		},
		{
			name:    "unknown property",
			path:    "cli.json",
			data:    `{"title": "T", "uri": "u.io", "mainMenu": "m", "menus": {"m": {}}, "color": "red"}`,
			contain: "color",
		},
		{
			name:    "command without description",
			path:    "cli.json",
			data:    `{"title": "T", "uri": "u.io", "mainMenu": "m", "menus": {"m": {"commands": {"go": {}}}}}`,
			contain: "description",
		},
		{
			name:    "non-string keys",
			path:    "cli.yaml",
			data:    "1: x\n",
			contain: "mapping keys must be strings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(tt.path, []byte(tt.data))

			var serr *SchemaError
			require.True(t, errors.As(err, &serr), "got %v", err)
			require.NotEmpty(t, serr.Details)
			assert.Contains(t, strings.Join(serr.Details, "\n"), tt.contain)
			assert.Equal(t, NameSchema+": "+serr.Reason, err.Error())
		})
	}
}

func TestParser_Semantic(t *testing.T) {
	data := `{"title": "T", "uri": "not a host", "mainMenu": "m", "menus": {"m": {}}}`

	_, err := NewParser().Parse("cli.json", []byte(data))
	var verrs config.ValidationErrors
	require.True(t, errors.As(err, &verrs), "got %v", err)
	assert.Equal(t, []string{"uri"}, verrs.Fields())
	assert.True(t, strings.HasPrefix(err.Error(), "cli.json: "))

	p := NewParser()
	p.SkipSemantic = true
	spec, err := p.Parse("cli.json", []byte(data))
	require.NoError(t, err)
	assert.Equal(t, "not a host", spec.URI)
}

func TestParser_JSONEscapes(t *testing.T) {
	data := `{
  "title": "Smile \ud83d\ude00",
  "uri": "cli.example.com",
  "description": "slash \/ path",
  "mainMenu": "m",
  "menus": {
    "m": {
      "header": "tab\there \"quoted\" \u00e9",
      "commands": {
        "b": {"description": "B", "bashCommand": "echo b"},
        "a": {"description": "A", "bashCommand": ["echo a", "echo 2"], "args": {"n": {"default": 3}, "s": {"default": "3"}}}
      }
    }
  }
}`

	spec, err := NewParser().Parse("cli.json", []byte(data))
	require.NoError(t, err)
	assert.Equal(t, "Smile \U0001F600", spec.Title)
	assert.Equal(t, "slash / path", spec.Description)

	m, _ := spec.Menus.Get("m")
	assert.Equal(t, "tab\there \"quoted\" é", m.Header)
	assert.Equal(t, []string{"b", "a"}, m.Commands.Keys())

	a, _ := m.Commands.Get("a")
	assert.Equal(t, []string{"echo a", "echo 2"}, cli.BodyLines(a.BashCommand.Body()))
	n, _ := a.Args.Get("n")
	s, _ := a.Args.Get("s")
	assert.Equal(t, cli.ValueNumber, n.Default.Kind)
	assert.Equal(t, cli.ValueString, s.Default.Kind)
}

func TestParser_JSONDuplicateKey(t *testing.T) {
	data := "{\"title\": \"T\", \"uri\": \"cli.example.com\", \"mainMenu\": \"m\",\n \"menus\": {\"m\": {}, \"m\": {}}}"

	_, err := NewParser().Parse("cli.json", []byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
