// Package main implements the remotecli compiler CLI.
package main

import (
	"fmt"
	"os"

	"github.com/CliForge/remotecli/pkg/document"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	version = "0.1.0"
	// BuildDate is set at build time
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remotecli",
		Short: "remotecli - Compile menu CLIs into bash and batch scripts",
		Long: `remotecli compiles one declarative menu specification into a bash
script and a Windows batch script with the same behavior, and publishes
both as a static site that can be piped straight into a shell.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug mode")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newHashCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// printError reports err on stderr. File errors are also printed as a CI
// annotation so build logs point at the offending line.
func printError(err error) {
	if line, ok := document.Annotation(err); ok {
		fmt.Fprintln(os.Stderr, line)
	}
	pterm.Error.WithWriter(os.Stderr).Println(err.Error())
}
