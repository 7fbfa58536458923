package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate the specification without publishing",
		Long: `Validate the menu specification of a project.

This command checks:
  - Document syntax (JSON or YAML)
  - The document schema
  - Menu references, names and argument bounds
  - That both scripts generate and the bash script parses`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			spec, err := p.load(ctx, false)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Specification is valid: %s (%d menus)", spec.Title, spec.Menus.Len())

			artifacts, err := p.generator().Build(ctx, spec)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Scripts generate: %d bash bytes, %d batch bytes", len(artifacts.Bash), len(artifacts.Batch))
			return nil
		},
	}

	cmd.Flags().String("spec", "", "Specification file or URL (default cli.json or cli.yaml in dir)")
	cmd.Flags().String("funcs", "", "Script fragments directory (default \"funcs\")")
	cmd.Flags().String("fonts", "", "Extra figlet fonts directory (default \"fonts\")")
	cmd.Flags().Bool("no-lint", false, "Skip parsing the generated bash script")

	return cmd
}
