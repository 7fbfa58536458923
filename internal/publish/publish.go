// Package publish lays the generated scripts out as a static site.
//
// Both scripts are wrapped in a shell that is at once a valid script and a
// readable web page: hidden tag lines load a highlighter in the browser and
// are comments to the shell. The site is written to a staging directory
// next to the output directory and swapped in once every file is written.
package publish

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/CliForge/remotecli/internal/emit/bash"
	"github.com/CliForge/remotecli/internal/emit/batch"
	"github.com/CliForge/remotecli/internal/generator"
	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
)

// Output file names, relative to the output directory.
const (
	BashPage         = "index.html"
	BatchPage        = "cmd.html"
	BashReadability  = "readability_bash.js"
	BatchReadability = "readability_cmd.js"
	Accessor         = "w/index.html"
	CNAME            = "CNAME"
	BashScript       = "cli.sh"
	BatchScript      = "cli.bat"
)

// DefaultDescription introduces a specification without a description.
const DefaultDescription = "Remote CLI."

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("publish").ParseFS(templateFS, "templates/*.tmpl"))

// shell describes how one backend is wrapped.
type shell struct {
	Kind      string
	Language  string
	FirstLine string
	Comment   string
	Tag       string
	CRLF      bool
}

var shells = map[cli.Backend]shell{
	cli.BackendBash: {
		Kind:      "bash",
		Language:  "bash",
		FirstLine: bash.Shebang,
		Comment:   "#",
		Tag:       "##",
	},
	cli.BackendBatch: {
		Kind:      "cmd",
		Language:  "batch",
		FirstLine: batch.Header,
		Comment:   ":",
		Tag:       "REM",
		CRLF:      true,
	},
}

type pageData struct {
	shell
	Description  string
	RunCommand   string
	ShortCommand string
	Script       string
}

type readabilityData struct {
	shell
	TitleJSON string
}

// Site is the rendered output, keyed by path relative to the output
// directory.
type Site map[string][]byte

// Paths returns the file paths of the site, sorted.
func (s Site) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Publisher writes sites to a filesystem.
type Publisher struct {
	fs     afero.Fs
	logger *pterm.Logger
}

// New creates a publisher. A nil logger disables logging.
func New(fsys afero.Fs, logger *pterm.Logger) *Publisher {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &Publisher{fs: fsys, logger: logger}
}

// Render renders every output file of a build.
func Render(spec *cli.Specification, artifacts *generator.Artifacts) (Site, error) {
	base := BaseURL(spec.URI)
	description := spec.Description
	if description == "" {
		description = DefaultDescription
	}

	site := Site{
		CNAME:       []byte(Host(spec.URI)),
		BashScript:  []byte(artifacts.Bash),
		BatchScript: crlf(artifacts.Batch),
		Accessor:    crlf(accessor(base)),
	}

	pages := []struct {
		backend cli.Backend
		page    string
		js      string
		run     string
		short   string
	}{
		{cli.BackendBash, BashPage, BashReadability,
			fmt.Sprintf("curl -sL %s | bash", base),
			fmt.Sprintf("curl -sL %s | c=help bash", base)},
		{cli.BackendBatch, BatchPage, BatchReadability,
			fmt.Sprintf("curl -sL %s/%s -o %%temp%%\\shell.bat && %%temp%%\\shell.bat", base, BatchPage),
			fmt.Sprintf(`set "c=help" && %s`, BatchScript)},
	}

	title, err := json.Marshal(spec.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to encode title: %w", err)
	}

	for _, p := range pages {
		sh := shells[p.backend]

		page, err := execute("shell.tmpl", pageData{
			shell:        sh,
			Description:  description,
			RunCommand:   p.run,
			ShortCommand: p.short,
			Script:       stripFirstLine(artifacts.Script(p.backend), sh.FirstLine),
		})
		if err != nil {
			return nil, err
		}
		if sh.CRLF {
			page = crlf(string(page))
		}
		site[p.page] = page

		js, err := execute("readability.js.tmpl", readabilityData{shell: sh, TitleJSON: string(title)})
		if err != nil {
			return nil, err
		}
		site[p.js] = js
	}

	return site, nil
}

// Publish renders a build and replaces outDir with it.
func (p *Publisher) Publish(ctx context.Context, outDir string, spec *cli.Specification, artifacts *generator.Artifacts) (Site, error) {
	site, err := Render(spec, artifacts)
	if err != nil {
		return nil, err
	}
	if err := p.Write(ctx, outDir, site); err != nil {
		return nil, err
	}
	return site, nil
}

// Write stages site beside outDir and swaps it in. An existing outDir is
// only replaced when it looks like an earlier output.
func (p *Publisher) Write(ctx context.Context, outDir string, site Site) error {
	outDir = filepath.Clean(outDir)
	if err := p.checkReplaceable(outDir); err != nil {
		return err
	}

	parent := filepath.Dir(outDir)
	if err := p.fs.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", parent, err)
	}
	staging, err := afero.TempDir(p.fs, parent, "."+filepath.Base(outDir)+"-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() { _ = p.fs.RemoveAll(staging) }()

	for _, rel := range site.Paths() {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(staging, filepath.FromSlash(rel))
		if err := p.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := afero.WriteFile(p.fs, target, site[rel], 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
		p.logger.Trace("staged file", p.logger.Args("path", rel, "bytes", len(site[rel])))
	}

	if err := p.fs.RemoveAll(outDir); err != nil {
		return fmt.Errorf("failed to remove previous output: %w", err)
	}
	if err := p.fs.Rename(staging, outDir); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	p.logger.Debug("published site", p.logger.Args("dir", outDir, "files", len(site)))
	return nil
}

// checkReplaceable refuses to replace a non-empty directory that holds
// no earlier output.
func (p *Publisher) checkReplaceable(outDir string) error {
	info, err := p.fs.Stat(outDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", outDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output %s is not a directory", outDir)
	}

	empty, err := afero.IsEmpty(p.fs, outDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", outDir, err)
	}
	if empty {
		return nil
	}
	for _, marker := range []string{CNAME, BashScript} {
		if ok, _ := afero.Exists(p.fs, filepath.Join(outDir, marker)); ok {
			return nil
		}
	}
	return fmt.Errorf("refusing to replace %s: it does not hold remotecli output", outDir)
}

// BaseURL returns uri with an https scheme when it has none.
func BaseURL(uri string) string {
	uri = strings.TrimSuffix(uri, "/")
	if strings.Contains(uri, "://") {
		return uri
	}
	return "https://" + uri
}

// Host returns the host name of uri.
func Host(uri string) string {
	u, err := url.Parse(BaseURL(uri))
	if err != nil || u.Hostname() == "" {
		return uri
	}
	return u.Hostname()
}

func accessor(base string) string {
	return fmt.Sprintf("powershell (Invoke-WebRequest %s/%s).content > %%temp%%\\shell.bat\nstart %%temp%%\\shell.bat\nexit\n", base, BatchPage)
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// stripFirstLine drops the script's own first line, which the page shell
// already starts with.
func stripFirstLine(script, line string) string {
	if rest, ok := strings.CutPrefix(script, line+"\n"); ok {
		return rest
	}
	return script
}

func crlf(s string) []byte {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}
