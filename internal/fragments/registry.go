// Package fragments tracks the script fragments included in one build.
//
// A fragment is a file <funcs dir>/<script>.<ext> referenced by a command's
// script field. The registry is created per build, scanned once per
// backend before emission and only read afterwards.
package fragments

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/CliForge/remotecli/pkg/cli"
)

// Fragment is one included script file.
type Fragment struct {
	// Script is the referenced name, without extension.
	Script  string
	Backend cli.Backend
	Path    string
	Body    string
}

// File returns the fragment's file name, e.g. "deploy.sh".
func (f *Fragment) File() string {
	return f.Script + "." + f.Backend.Extension()
}

// Registry records the fragments known to exist for the current build.
type Registry struct {
	fs    afero.Fs
	dir   string
	files map[string]*Fragment
}

// NewRegistry creates an empty registry over dir.
func NewRegistry(fsys afero.Fs, dir string) *Registry {
	return &Registry{
		fs:    fsys,
		dir:   dir,
		files: make(map[string]*Fragment),
	}
}

// Scan records every fragment referenced by spec that exists for backend.
// Missing fragments are skipped; only unexpected read errors fail.
func (r *Registry) Scan(spec *cli.Specification, backend cli.Backend) error {
	for _, menu := range spec.Menus.All() {
		for _, command := range menu.Commands.All() {
			if command.Script == "" {
				continue
			}
			if err := r.add(command.Script, backend); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) add(script string, backend cli.Backend) error {
	frag := &Fragment{Script: script, Backend: backend}
	if _, seen := r.files[frag.File()]; seen {
		return nil
	}
	frag.Path = filepath.Join(r.dir, frag.File())

	data, err := afero.ReadFile(r.fs, frag.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read fragment %s: %w", frag.Path, err)
	}

	body := strings.ReplaceAll(string(data), "\r\n", "\n")
	frag.Body = strings.TrimRight(body, "\n")
	r.files[frag.File()] = frag
	return nil
}

// Known reports whether a fragment file (name with extension) exists.
func (r *Registry) Known(file string) bool {
	_, ok := r.files[file]
	return ok
}

// Lookup returns the fragment of script for backend.
func (r *Registry) Lookup(script string, backend cli.Backend) (*Fragment, bool) {
	f, ok := r.files[script+"."+backend.Extension()]
	return f, ok
}

// Fragments returns the known fragments of a backend sorted by file name.
func (r *Registry) Fragments(backend cli.Backend) []*Fragment {
	var out []*Fragment
	for _, f := range r.files {
		if f.Backend == backend {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File() < out[j].File() })
	return out
}

// Dir returns the scanned directory.
func (r *Registry) Dir() string {
	return r.dir
}
