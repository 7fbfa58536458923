package main

import (
	"fmt"
	"strings"

	"github.com/CliForge/remotecli/internal/builder"
	"github.com/CliForge/remotecli/internal/fragments"
	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/CliForge/remotecli/pkg/output"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var (
		menuName  string
		backend   string
		authLevel int
		format    string
	)

	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Show the command table of a menu",
		Long: `Show how every command of a menu resolves on one backend: its
aliases, arguments, access level, how it runs and whether help lists it
at the given auth level.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := output.NewManager()
			if !manager.IsFormatSupported(format) {
				return fmt.Errorf("unsupported output format %q (supported: %s)",
					format, strings.Join(manager.GetSupportedFormats(), ", "))
			}
			target, err := cli.ParseBackend(backend)
			if err != nil {
				return err
			}
			if authLevel < 0 {
				return fmt.Errorf("auth level must be non-negative, got %d", authLevel)
			}

			p, err := loadProject(cmd, args)
			if err != nil {
				return err
			}
			spec, err := p.load(cmd.Context(), false)
			if err != nil {
				return err
			}

			if menuName == "" {
				menuName = spec.MainMenu
			}
			tables, err := builder.BuildAll(spec)
			if err != nil {
				return err
			}
			var table *builder.Table
			for _, t := range tables {
				if t.Menu == menuName {
					table = t
					break
				}
			}
			if table == nil {
				return fmt.Errorf("menu %q is not defined (menus: %s)", menuName, strings.Join(spec.Menus.Keys(), ", "))
			}

			registry := fragments.NewRegistry(p.fs, p.settings.FuncsDir)
			if err := registry.Scan(spec, target); err != nil {
				return fmt.Errorf("failed to scan fragments: %w", err)
			}

			inspection := builder.Inspect(table, target, registry, authLevel)
			return manager.Format(cmd.OutOrStdout(), inspection, format)
		},
	}

	cmd.Flags().StringVarP(&menuName, "menu", "m", "", "Menu to inspect (default: the main menu)")
	cmd.Flags().StringVarP(&backend, "backend", "b", string(cli.BackendBash), "Backend: bash or batch")
	cmd.Flags().IntVarP(&authLevel, "auth", "a", 0, "Session auth level used for the listed column")
	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table, json, yaml")
	cmd.Flags().String("spec", "", "Specification file or URL (default cli.json or cli.yaml in dir)")
	cmd.Flags().String("funcs", "", "Script fragments directory (default \"funcs\")")

	return cmd
}
