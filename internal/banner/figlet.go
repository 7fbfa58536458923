package banner

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/afero"
)

// FigletRenderer renders figlet art with go-figure. Fonts found as
// <name>.flf in the fonts directory take precedence over the bundled ones.
// Results are memoized, so a renderer should live for a single build.
type FigletRenderer struct {
	fs       afero.Fs
	fontsDir string

	mu    sync.Mutex
	cache map[string]*Future
}

// NewFigletRenderer creates a renderer. fontsDir may be empty.
func NewFigletRenderer(fs afero.Fs, fontsDir string) *FigletRenderer {
	return &FigletRenderer{
		fs:       fs,
		fontsDir: fontsDir,
		cache:    make(map[string]*Future),
	}
}

// Render starts rendering text in font, or returns the pending result of an
// identical earlier request.
func (r *FigletRenderer) Render(text, font string) *Future {
	key := font + "\x00" + text

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.cache[key]; ok {
		return f
	}
	f := Go(func() (string, error) { return r.render(text, font) })
	r.cache[key] = f
	return f
}

// render draws one banner. go-figure panics on fonts it cannot load.
func (r *FigletRenderer) render(text, font string) (art string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unknown font %q: %v", font, rec)
		}
	}()

	if r.fontsDir != "" && r.fs != nil {
		path := filepath.Join(r.fontsDir, font+".flf")
		if file, openErr := r.fs.Open(path); openErr == nil {
			defer file.Close()
			return figure.NewFigureWithFont(text, file, false).String(), nil
		}
	}

	return figure.NewFigure(text, font, false).String(), nil
}
