package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CliForge/remotecli/internal/generator"
	"github.com/CliForge/remotecli/pkg/cache"
	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/CliForge/remotecli/pkg/config"
	"github.com/CliForge/remotecli/pkg/document"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// project is the resolved working state of one command invocation.
type project struct {
	dir      string
	fs       afero.Fs
	settings config.Settings
	logger   *pterm.Logger
	loader   *document.Loader
}

// loadProject resolves the project directory from args and loads its
// settings, with cmd's flags layered on top.
func loadProject(cmd *cobra.Command, args []string) (*project, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	fs := afero.NewOsFs()
	settings, err := config.NewLoader(fs).Load(abs, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	resolved := settings.Resolve(abs)
	logger := newLogger(cmd, resolved.LogLevel)

	loader := document.NewLoader(fs, nil)
	loader.CacheTTL = resolved.CacheTTL
	loader.UserAgent = "remotecli/" + version
	if c, err := cache.New(fs, cache.DefaultDir()); err != nil {
		logger.Warn("document cache disabled", logger.Args("error", err.Error()))
	} else {
		loader.Cache = c
	}

	logger.Debug("loaded settings", logger.Args(
		"dir", abs,
		"spec", resolved.SpecFile,
		"funcs", resolved.FuncsDir,
		"out", resolved.OutDir,
	))

	return &project{
		dir:      abs,
		fs:       fs,
		settings: resolved,
		logger:   logger,
		loader:   loader,
	}, nil
}

// source returns the document location: the configured spec file or URL,
// else the project directory.
func (p *project) source() string {
	if p.settings.SpecFile != "" {
		return p.settings.SpecFile
	}
	return p.dir
}

// remote reports whether the document is fetched over HTTP.
func (p *project) remote() bool {
	s := p.source()
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// specPath returns the local document file, or "" for remote documents.
func (p *project) specPath() string {
	if p.remote() {
		return ""
	}
	if p.settings.SpecFile != "" {
		return p.settings.SpecFile
	}
	file, err := p.loader.Find(p.dir)
	if err != nil {
		return ""
	}
	return file
}

// load reads and validates the specification. refresh drops any cached
// copy of a remote document first.
func (p *project) load(ctx context.Context, refresh bool) (*cli.Specification, error) {
	source := p.source()
	if refresh && p.remote() {
		return p.loader.RefreshCache(ctx, source)
	}
	return p.loader.Load(ctx, source)
}

func (p *project) generator() *generator.Generator {
	return generator.New(generator.Options{
		Fs:       p.fs,
		FuncsDir: p.settings.FuncsDir,
		FontsDir: p.settings.FontsDir,
		Lint:     p.settings.Lint,
		Logger:   p.logger,
	})
}

// newLogger builds the structured logger. --debug and --verbose override
// the configured level.
func newLogger(cmd *cobra.Command, level string) *pterm.Logger {
	logLevel := parseLogLevel(level)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logLevel = pterm.LogLevelInfo
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logLevel = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.WithLevel(logLevel).WithWriter(os.Stderr)
}

func parseLogLevel(level string) pterm.LogLevel {
	switch strings.ToLower(level) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "info":
		return pterm.LogLevelInfo
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelWarn
	}
}
