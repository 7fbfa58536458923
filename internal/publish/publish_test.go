package publish

import (
	"context"
	"strings"
	"testing"

	"github.com/CliForge/remotecli/internal/generator"
	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuild() (*cli.Specification, *generator.Artifacts) {
	spec := &cli.Specification{
		Title:    `Demo "CLI"`,
		URI:      "cli.example.com",
		MainMenu: "main",
		Menus:    cli.NewOrderedMap[cli.Menu](),
	}
	artifacts := &generator.Artifacts{
		Bash:  "#!/usr/bin/env bash\n\necho hi\n",
		Batch: "@echo off\nsetlocal\necho hi\n",
	}
	return spec, artifacts
}

func TestRender(t *testing.T) {
	spec, artifacts := testBuild()

	site, err := Render(spec, artifacts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		CNAME, BatchScript, BashScript, BatchPage, BashPage,
		BashReadability, BatchReadability, Accessor,
	}, site.Paths())

	assert.Equal(t, "cli.example.com", string(site[CNAME]))
	assert.Equal(t, artifacts.Bash, string(site[BashScript]))
	assert.Equal(t, "@echo off\r\nsetlocal\r\necho hi\r\n", string(site[BatchScript]))

	page := string(site[BashPage])
	assert.True(t, strings.HasPrefix(page, "#!/usr/bin/env bash\n\n## <script src=\"./readability_bash.js\"></script>\n"))
	assert.Equal(t, 1, strings.Count(page, "#!/usr/bin/env bash"))
	assert.Contains(t, page, "prism-bash.min.js")
	assert.Contains(t, page, "# "+DefaultDescription+"\n")
	assert.Contains(t, page, ": curl -sL https://cli.example.com | bash\n")
	assert.Contains(t, page, "\necho hi\n")

	cmd := string(site[BatchPage])
	assert.True(t, strings.HasPrefix(cmd, "@echo off\r\n\r\nREM <script src=\"./readability_cmd.js\"></script>\r\n"))
	assert.Equal(t, 1, strings.Count(cmd, "@echo off"))
	assert.Contains(t, cmd, "prism-batch.min.js")
	assert.Contains(t, cmd, "\r\nsetlocal\r\n")
	assert.NotContains(t, strings.ReplaceAll(cmd, "\r\n", ""), "\n")

	accessor := string(site[Accessor])
	assert.Contains(t, accessor, "powershell (Invoke-WebRequest https://cli.example.com/cmd.html).content > %temp%\\shell.bat\r\n")
	assert.Contains(t, accessor, "start %temp%\\shell.bat\r\nexit\r\n")

	js := string(site[BashReadability])
	assert.Contains(t, js, `line.startsWith("##")`)
	assert.Contains(t, js, "line.slice(2)")
	assert.Contains(t, js, `$title.textContent = "Demo \"CLI\"";`)
	assert.Contains(t, js, "Prism.languages.bash")

	js = string(site[BatchReadability])
	assert.Contains(t, js, `line.startsWith("REM")`)
	assert.Contains(t, js, "line.slice(3)")
	assert.Contains(t, js, "Prism.languages.batch")
}

func TestRender_Description(t *testing.T) {
	spec, artifacts := testBuild()
	spec.Description = "Tools for the team."

	site, err := Render(spec, artifacts)
	require.NoError(t, err)
	assert.Contains(t, string(site[BashPage]), "# Tools for the team.\n")
	assert.Contains(t, string(site[BatchPage]), ": Tools for the team.\r\n")
}

func TestPublisher_Publish(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := New(fs, nil)
	spec, artifacts := testBuild()
	ctx := context.Background()

	site, err := p.Publish(ctx, "/site/out", spec, artifacts)
	require.NoError(t, err)

	for _, rel := range site.Paths() {
		data, err := afero.ReadFile(fs, "/site/out/"+rel)
		require.NoError(t, err, rel)
		assert.Equal(t, site[rel], data, rel)
	}

	// A second publish replaces the earlier output.
	artifacts.Bash = "#!/usr/bin/env bash\necho again\n"
	_, err = p.Publish(ctx, "/site/out", spec, artifacts)
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, "/site/out/cli.sh")
	require.NoError(t, err)
	assert.Equal(t, artifacts.Bash, string(data))

	entries, err := afero.ReadDir(fs, "/site")
	require.NoError(t, err)
	require.Len(t, entries, 1, "staging directory left behind")
	assert.Equal(t, "out", entries[0].Name())
}

func TestPublisher_RefusesForeignDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/project/cli.json", []byte("{}"), 0o644))
	spec, artifacts := testBuild()

	_, err := New(fs, nil).Publish(context.Background(), "/project", spec, artifacts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to replace")

	ok, _ := afero.Exists(fs, "/project/cli.json")
	assert.True(t, ok)
}

func TestPublisher_Canceled(t *testing.T) {
	fs := afero.NewMemMapFs()
	spec, artifacts := testBuild()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fs, nil).Publish(ctx, "/site/out", spec, artifacts)
	require.ErrorIs(t, err, context.Canceled)

	ok, _ := afero.Exists(fs, "/site/out")
	assert.False(t, ok)
}

func TestHost(t *testing.T) {
	tests := []struct {
		uri  string
		want string
		base string
	}{
		{"cli.example.com", "cli.example.com", "https://cli.example.com"},
		{"https://cli.example.com/", "cli.example.com", "https://cli.example.com"},
		{"http://localhost:8080", "localhost", "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, Host(tt.uri))
			assert.Equal(t, tt.base, BaseURL(tt.uri))
		})
	}
}
