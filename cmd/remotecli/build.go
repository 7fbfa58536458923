package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/CliForge/remotecli/internal/generator"
	"github.com/CliForge/remotecli/internal/publish"
	"github.com/CliForge/remotecli/internal/watch"
	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/CliForge/remotecli/pkg/progress"
	"github.com/pterm/pterm"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var (
		watchMode bool
		openPage  bool
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Compile the specification and publish the site",
		Long: `Compile the menu specification of a project into a bash script and a
batch script, and publish both as a static site.

This command:
  1. Loads and validates cli.json or cli.yaml (or --spec)
  2. Includes the script fragments referenced by commands
  3. Generates and lints both scripts
  4. Replaces the output directory with the rendered site`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := p.build(ctx, refresh); err != nil {
				if !watchMode {
					return err
				}
				printError(err)
			} else if openPage {
				page := filepath.Join(p.settings.OutDir, publish.BashPage)
				if err := open.Run(page); err != nil {
					pterm.Warning.Printfln("Failed to open %s: %v", page, err)
				}
			}

			if !watchMode {
				return nil
			}
			return p.watch(ctx)
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output directory (default \"out\")")
	cmd.Flags().String("spec", "", "Specification file or URL (default cli.json or cli.yaml in dir)")
	cmd.Flags().String("funcs", "", "Script fragments directory (default \"funcs\")")
	cmd.Flags().String("fonts", "", "Extra figlet fonts directory (default \"fonts\")")
	cmd.Flags().Bool("no-lint", false, "Skip parsing the generated bash script")
	cmd.Flags().Duration("cache-ttl", 0, "How long a fetched specification is reused (default 5m)")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Rebuild when the specification or fragments change")
	cmd.Flags().BoolVar(&openPage, "open", false, "Open the published page in a browser")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch a remote specification even when cached")

	return cmd
}

// build runs one load, generate and publish pass.
func (p *project) build(ctx context.Context, refresh bool) error {
	var (
		spec      *cli.Specification
		artifacts *generator.Artifacts
		site      publish.Site
	)

	cfg := progress.DefaultConfig()
	cfg.Writer = os.Stderr
	err := progress.RunSteps(progress.New(cfg),
		progress.Step{
			Message: "Loading specification",
			Run: func() (err error) {
				spec, err = p.load(ctx, refresh)
				return err
			},
		},
		progress.Step{
			Message: "Generating scripts",
			Run: func() (err error) {
				artifacts, err = p.generator().Build(ctx, spec)
				return err
			},
		},
		progress.Step{
			Message: "Publishing site",
			Run: func() (err error) {
				site, err = publish.New(p.fs, p.logger).Publish(ctx, p.settings.OutDir, spec, artifacts)
				return err
			},
		},
	)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Published %d files to %s", len(site), p.settings.OutDir)
	pterm.Info.Printfln("Run it with: curl -sL %s | bash", publish.BaseURL(spec.URI))
	return nil
}

// watch rebuilds on every change to the document, the fragments or the
// fonts until ctx is done.
func (p *project) watch(ctx context.Context) error {
	patterns := watch.BuildPatterns(p.dir, p.specPath(), p.settings.FuncsDir, p.settings.FontsDir)
	w, err := watch.New(watch.Config{
		BaseDir:  p.dir,
		Patterns: patterns,
		Ignore:   watch.BuildPatterns(p.dir, "", p.settings.OutDir),
		Logger:   p.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			pterm.Info.Printfln("Changed: %v", changed)
			if err := p.build(ctx, false); err != nil {
				printError(err)
			}
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	pterm.Info.Printfln("Watching %s for changes (Ctrl+C to stop)", p.dir)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
