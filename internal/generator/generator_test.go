package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CliForge/remotecli/internal/banner"
	"github.com/CliForge/remotecli/pkg/cli"
)

type stubRenderer struct{ calls int }

func (s *stubRenderer) Render(text, font string) *banner.Future {
	s.calls++
	return banner.Resolved(text)
}

func testSpec() *cli.Specification {
	spec := &cli.Specification{
		Title:    "Demo",
		URI:      "https://demo.example.com",
		MainMenu: "main",
		Menus:    cli.NewOrderedMap[cli.Menu](),
	}
	args := cli.NewOrderedMap[cli.Arg]()
	args.Set("name", cli.Arg{})

	commands := cli.NewOrderedMap[cli.Command]()
	commands.Set("ping", cli.Command{
		Description:  "Reply with pong",
		BashCommand:  cli.NewSingleLine("echo pong"),
		BatchCommand: cli.NewSingleLine("echo pong"),
	})
	commands.Set("greet", cli.Command{Description: "Greet someone", Args: args, Script: "greet"})

	spec.Menus.Set("main", cli.Menu{
		Header:   "$TITLE",
		Splash:   &cli.Splash{Text: "Demo"},
		Commands: commands,
	})
	return spec
}

func TestBuild(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "funcs/greet.sh", []byte(`echo "Hello $name"`+"\n"), 0o644))

	renderer := &stubRenderer{}
	g := New(Options{Fs: fs, Lint: true, Renderer: renderer})

	artifacts, err := g.Build(context.Background(), testSpec())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(artifacts.Bash, "#!/usr/bin/env bash\n"))
	assert.True(t, strings.HasPrefix(artifacts.Batch, "@echo off\n"))
	assert.Contains(t, artifacts.Bash, "run_main_greet ()")
	assert.Contains(t, artifacts.Batch, "The 'greet' command is not supported for Windows.")
	assert.Equal(t, artifacts.Bash, artifacts.Script(cli.BackendBash))
	assert.Equal(t, artifacts.Batch, artifacts.Script(cli.BackendBatch))

	require.Len(t, artifacts.Tables, 1)
	assert.Equal(t, "main", artifacts.Tables[0].Menu)
	assert.True(t, artifacts.Fragments.Known("greet.sh"))
	assert.False(t, artifacts.Fragments.Known("greet.bat"))

	// One splash rendered per backend
	assert.Equal(t, 2, renderer.calls)
}

func TestBuild_FreshRegistryPerBuild(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := New(Options{Fs: fs, Renderer: &stubRenderer{}})

	first, err := g.Build(context.Background(), testSpec())
	require.NoError(t, err)
	assert.False(t, first.Fragments.Known("greet.sh"))

	require.NoError(t, afero.WriteFile(fs, "funcs/greet.sh", []byte("echo hi"), 0o644))
	second, err := g.Build(context.Background(), testSpec())
	require.NoError(t, err)
	assert.True(t, second.Fragments.Known("greet.sh"))
	assert.NotContains(t, first.Bash, "run_main_greet")
	assert.Contains(t, second.Bash, "run_main_greet")
}

func TestBuild_FigletSplash(t *testing.T) {
	g := New(Options{Fs: afero.NewMemMapFs(), Lint: true})

	artifacts, err := g.Build(context.Background(), testSpec())
	require.NoError(t, err)
	assert.Contains(t, artifacts.Bash, `printf "%s\n" "${BG_DARK_GREY}$TITLE ${RESET}"`)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*cli.Specification)
		wantErr string
	}{
		{
			name: "bad auth key",
			mutate: func(s *cli.Specification) {
				s.Auth = cli.NewOrderedMap[cli.AuthMethod]()
				s.Auth.Set("admin", cli.AuthMethod{Type: cli.AuthTypeHash, Hash: "ab"})
			},
			wantErr: "failed to build command tables",
		},
		{
			name: "unsupported auth type",
			mutate: func(s *cli.Specification) {
				s.Auth = cli.NewOrderedMap[cli.AuthMethod]()
				s.Auth.Set("1", cli.AuthMethod{Type: "oauth"})
			},
			wantErr: "failed to emit bash script: auth type 'oauth' is invalid",
		},
		{
			name: "unknown splash color",
			mutate: func(s *cli.Specification) {
				menu, _ := s.Menus.Get("main")
				menu.Splash = &cli.Splash{Text: "x", Color: "chartreuse"}
				s.Menus.Set("main", menu)
			},
			wantErr: "unknown splash color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec()
			tt.mutate(spec)

			artifacts, err := New(Options{Fs: afero.NewMemMapFs(), Renderer: &stubRenderer{}}).Build(context.Background(), spec)
			assert.Nil(t, artifacts)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{Fs: afero.NewMemMapFs(), Renderer: &stubRenderer{}}).Build(ctx, testSpec())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLint(t *testing.T) {
	assert.NoError(t, Lint("#!/usr/bin/env bash\necho ok\n"))

	err := Lint("if [ 1 ]\nthen\n")
	require.Error(t, err)
	var lintErr *LintError
	assert.True(t, errors.As(err, &lintErr))
	assert.Contains(t, err.Error(), "generated bash script does not parse")
}
