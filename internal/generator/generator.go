// Package generator turns a specification into its two scripts.
//
// A Generator owns the build environment: the filesystem fragments and fonts
// are read from, the logger and the lint switch. Every Build starts from a
// fresh fragment registry, so one CLI build never sees the fragments of
// another.
//
// # Build Flow
//
//	1. Scan the fragments directory for both backends
//	2. Build the command table of every menu
//	3. Emit the bash script, then the batch script
//	4. Parse the bash script to catch emission defects
//
// Any failure returns no artifacts.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/syntax"

	"github.com/CliForge/remotecli/internal/banner"
	"github.com/CliForge/remotecli/internal/builder"
	"github.com/CliForge/remotecli/internal/emit"
	"github.com/CliForge/remotecli/internal/emit/bash"
	"github.com/CliForge/remotecli/internal/emit/batch"
	"github.com/CliForge/remotecli/internal/fragments"
	"github.com/CliForge/remotecli/pkg/cli"
)

// Options configures a Generator.
type Options struct {
	// Fs is the filesystem fragments and fonts are read from.
	Fs afero.Fs
	// FuncsDir holds the script fragments, e.g. "funcs".
	FuncsDir string
	// FontsDir holds extra .flf fonts. Optional.
	FontsDir string
	// Lint parses the generated bash script before returning it.
	Lint bool
	// Logger receives build progress. Defaults to a no-op logger.
	Logger *pterm.Logger
	// Renderer overrides the figlet renderer, mainly for tests.
	Renderer banner.Renderer
}

// Generator builds scripts from specifications.
type Generator struct {
	opts     Options
	emitters []emit.Emitter
}

// Artifacts is the output of one build.
type Artifacts struct {
	Bash  string
	Batch string
	// Tables are the command tables both scripts were printed from.
	Tables []*builder.Table
	// Fragments is the registry scanned for this build.
	Fragments *fragments.Registry
}

// Script returns the artifact of one backend.
func (a *Artifacts) Script(backend cli.Backend) string {
	switch backend {
	case cli.BackendBash:
		return a.Bash
	case cli.BackendBatch:
		return a.Batch
	default:
		return ""
	}
}

// LintError reports a generated bash script that does not parse.
type LintError struct {
	Err error
}

func (e *LintError) Error() string {
	return fmt.Sprintf("generated bash script does not parse: %v", e.Err)
}

func (e *LintError) Unwrap() error {
	return e.Err
}

// New creates a generator.
func New(opts Options) *Generator {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.FuncsDir == "" {
		opts.FuncsDir = "funcs"
	}
	if opts.Logger == nil {
		opts.Logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &Generator{
		opts:     opts,
		emitters: []emit.Emitter{bash.New(), batch.New()},
	}
}

// Build generates both scripts for spec.
func (g *Generator) Build(ctx context.Context, spec *cli.Specification) (*Artifacts, error) {
	log := g.opts.Logger

	registry := fragments.NewRegistry(g.opts.Fs, g.opts.FuncsDir)
	for _, backend := range cli.Backends {
		if err := registry.Scan(spec, backend); err != nil {
			return nil, fmt.Errorf("failed to scan fragments: %w", err)
		}
		log.Debug("scanned fragments", log.Args(
			"backend", string(backend),
			"dir", g.opts.FuncsDir,
			"found", len(registry.Fragments(backend)),
		))
	}

	renderer := g.opts.Renderer
	if renderer == nil {
		renderer = banner.NewFigletRenderer(g.opts.Fs, g.opts.FontsDir)
	}

	in, err := emit.NewInput(spec, registry, renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to build command tables: %w", err)
	}
	log.Debug("built command tables", log.Args("menus", len(in.Tables), "auth_levels", len(in.Levels)))

	artifacts := &Artifacts{Tables: in.Tables, Fragments: registry}
	for _, e := range g.emitters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		script, err := e.Emit(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to emit %s script: %w", e.Backend(), err)
		}
		switch e.Backend() {
		case cli.BackendBash:
			artifacts.Bash = script
		case cli.BackendBatch:
			artifacts.Batch = script
		}
		log.Debug("emitted script", log.Args("backend", string(e.Backend()), "bytes", len(script)))
	}

	if g.opts.Lint {
		if err := Lint(artifacts.Bash); err != nil {
			return nil, err
		}
		log.Debug("bash script parsed cleanly")
	}

	return artifacts, nil
}

// Lint parses a bash script and returns a *LintError when it is malformed.
func Lint(script string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(script), "cli.sh"); err != nil {
		return &LintError{Err: err}
	}
	return nil
}
