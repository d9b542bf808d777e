// Package clrs decides whether CLI output should carry ANSI color and
// exposes the small palette internal/diag and the REPL render with.
package clrs

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Palette is the fixed set of roles diagnostics and the REPL colorize.
// Each role method returns its text unchanged when color is disabled.
type Palette struct {
	enabled bool
}

// New builds a Palette, respecting an explicit --no-color flag first, then
// NO_COLOR, then whether stdout is actually a terminal.
func New(noColorFlag bool) *Palette {
	return &Palette{enabled: ShouldUseColor(noColorFlag)}
}

// Forced builds a Palette with color unconditionally on, bypassing NO_COLOR
// and the TTY check — the "always" side of the auto|always|never contract.
func Forced() *Palette {
	return &Palette{enabled: true}
}

// ShouldUseColor applies the standard precedence: an explicit flag wins,
// then the NO_COLOR convention, then a TTY check on stdout.
func ShouldUseColor(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return term.IsTerminal(int(fd)) || isatty.IsTerminal(fd)
}

func (p *Palette) colorize(c *color.Color, text string) string {
	if !p.enabled {
		return text
	}
	return c.Sprint(text)
}

func (p *Palette) Error(text string) string   { return p.colorize(color.New(color.FgRed, color.Bold), text) }
func (p *Palette) Warning(text string) string  { return p.colorize(color.New(color.FgYellow, color.Bold), text) }
func (p *Palette) Location(text string) string { return p.colorize(color.New(color.FgCyan), text) }
func (p *Palette) Gutter(text string) string   { return p.colorize(color.New(color.FgBlue), text) }
func (p *Palette) Caret(text string) string    { return p.colorize(color.New(color.FgGreen, color.Bold), text) }
func (p *Palette) Dim(text string) string      { return p.colorize(color.New(color.FgHiBlack), text) }
