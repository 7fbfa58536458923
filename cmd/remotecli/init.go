package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/CliForge/remotecli/pkg/config"
	"github.com/CliForge/remotecli/pkg/document"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// sampleKey unlocks the admin level of the sample specification.
const sampleKey = "changeme"

const sampleSpec = `title: {{title}}
uri: {{uri}}
description: Tools for the team.
mainMenu: main
menus:
  main:
    header: Pick a command, or type help.
    prefix: "$ "
    splash:
      text: {{title}}
      color: rainbow
    commands:
      hello:
        description: Greet someone
        aliases: [hi]
        args:
          name:
            default: world
        script: hello
      roll:
        description: Roll a die
        args:
          sides:
            promptMessage: How many sides
            minValue: 2
            maxValue: 101
        bashCommand: echo $(( RANDOM % sides + 1 ))
        batchCommand:
          - set /a "roll=%random% %% sides + 1"
          - echo %roll%
      admin:
        description: Admin tools
        access: 1
        bashCommand: echo "Welcome, admin."
        batchCommand: echo Welcome, admin.
auth:
  "1":
    type: hash
    # key: {{key}} (replace with the output of remotecli hash)
    hash: {{hash}}
`

const sampleBash = `echo "Hello, ${1:-world}!"
`

const sampleBatch = `echo Hello, %~1!
`

func newInitCmd() *cobra.Command {
	var (
		title string
		uri   string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a sample project",
		Long: `Create a sample project: a cli.yaml specification, a remotecli.yaml
settings file and one script fragment per backend. Existing files are
never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return initProject(afero.NewOsFs(), dir, title, uri)
		},
	}

	cmd.Flags().StringVar(&title, "title", "Demo", "CLI title")
	cmd.Flags().StringVar(&uri, "uri", "cli.example.com", "Host the site is published to")

	return cmd
}

// initProject writes the sample project into dir. It refuses to start
// when any target already exists.
func initProject(fs afero.Fs, dir, title, uri string) error {
	hash, err := cli.HashSHA1.Sum(sampleKey)
	if err != nil {
		return err
	}

	spec := strings.NewReplacer(
		"{{title}}", strconv.Quote(title),
		"{{uri}}", strconv.Quote(uri),
		"{{key}}", sampleKey,
		"{{hash}}", hash,
	).Replace(sampleSpec)

	funcs := config.Defaults().FuncsDir
	files := []struct {
		path string
		data string
	}{
		{filepath.Join(dir, config.FileName+".yaml"), ""},
		{filepath.Join(dir, "cli.yaml"), spec},
		{filepath.Join(dir, funcs, "hello."+cli.BackendBash.Extension()), sampleBash},
		{filepath.Join(dir, funcs, "hello."+cli.BackendBatch.Extension()), sampleBatch},
	}

	for _, name := range document.FileNames {
		if ok, _ := afero.Exists(fs, filepath.Join(dir, name)); ok {
			return fmt.Errorf("%s already holds a specification (%s)", dir, name)
		}
	}
	for _, f := range files {
		if ok, _ := afero.Exists(fs, f.path); ok {
			return fmt.Errorf("%s already exists", f.path)
		}
	}

	if _, err := config.WriteDefault(fs, dir); err != nil {
		return err
	}
	for _, f := range files[1:] {
		if err := fs.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(f.path), err)
		}
		if err := afero.WriteFile(fs, f.path, []byte(f.data), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}

	for _, f := range files {
		pterm.Success.Printfln("Created %s", f.path)
	}
	pterm.Info.Printfln("Build it with: remotecli build %s", dir)
	return nil
}
