// Package banner renders menu splash banners.
package banner

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/CliForge/remotecli/internal/sanitize"
	"github.com/CliForge/remotecli/pkg/cli"
)

// Renderer draws text in a figlet font.
type Renderer interface {
	Render(text, font string) *Future
}

// DefaultFont is used when a splash names no font.
const DefaultFont = "standard"

// Palette is the rainbow color order.
var Palette = []string{"RED", "YELLOW", "GREEN", "CYAN", "BLUE", "MAGENTA"}

// Render returns the banner text of a splash, passed through sanitizeFn.
// A nil splash renders as empty text and a literal one is sanitized as is.
// Figlet splashes wait for the renderer, then get colored before being
// sanitized.
func Render(ctx context.Context, sanitizeFn func(string) string, splash *cli.Splash, renderer Renderer) (string, error) {
	if splash == nil {
		return "", nil
	}
	if splash.IsLiteral() {
		return sanitizeFn(splash.Literal), nil
	}
	if renderer == nil {
		return "", fmt.Errorf("no font renderer for splash %q", splash.Text)
	}

	font := splash.Font
	if font == "" {
		font = DefaultFont
	}

	art, err := renderer.Render(splash.Text, font).Await(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render splash %q: %w", splash.Text, err)
	}

	colored, err := Colorize(art, splash.Color)
	if err != nil {
		return "", err
	}
	return sanitizeFn(colored), nil
}

// Colorize applies a splash color to rendered art. An empty color leaves the
// art untouched and "rainbow" bands the lines through Palette.
func Colorize(art, color string) (string, error) {
	art = strings.TrimRight(art, "\n")

	switch {
	case color == "":
		return art, nil
	case strings.EqualFold(color, cli.RainbowColor):
		return strings.Join(Rainbow(strings.Split(art, "\n")), "\n"), nil
	case sanitize.IsColor(color):
		return "${" + strings.ToUpper(color) + "}" + art + "${RESET}", nil
	default:
		return "", fmt.Errorf("unknown splash color %q", color)
	}
}

// Stride is the number of lines per rainbow band.
func Stride(lines int) int {
	stride := int(math.Round(float64(lines) / float64(len(Palette))))
	if stride < 1 {
		return 1
	}
	return stride
}

// Band returns the palette index of line i.
func Band(i, stride int) int {
	return min(i/stride, len(Palette)-1)
}

// Rainbow prefixes every line with its band color and ends the last line
// with a reset.
func Rainbow(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}

	stride := Stride(len(lines))
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = "${" + Palette[Band(i, stride)] + "}" + line
	}
	out[len(out)-1] += "${RESET}"
	return out
}
