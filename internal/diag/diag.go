// Package diag renders compiler diagnostics — lex, parse, and semantic
// errors and warnings — as framed, caret-annotated text blocks, the single
// rendering path every pipeline stage's diagnostics funnel through.
package diag

import (
	"fmt"
	"strings"

	"github.com/portugol-lang/portugol/internal/clrs"
	"github.com/portugol-lang/portugol/internal/lexer"
	"github.com/portugol-lang/portugol/internal/parser"
	"github.com/portugol-lang/portugol/internal/sema"
)

// Severity distinguishes a blocking diagnostic from a non-blocking one.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) label() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is the normalized shape every stage's error/warning type is
// converted to before rendering.
type Diagnostic struct {
	Category string // "LEX", "PARSE", "SEMANTIC"
	Severity Severity
	Message  string
	Line     int
	Column   int
}

func FromLexError(e *lexer.Error) Diagnostic {
	return Diagnostic{Category: "LEX", Severity: SeverityError, Message: e.Message, Line: e.Line, Column: e.Column}
}

func FromParseError(e *parser.Error) Diagnostic {
	return Diagnostic{Category: "PARSE", Severity: SeverityError, Message: e.Message, Line: e.Token.Line, Column: e.Token.Column}
}

func FromSemaError(e *sema.Error) Diagnostic {
	return Diagnostic{Category: "SEMANTIC", Severity: SeverityError, Message: e.Message, Line: e.Pos.Line, Column: e.Pos.Column}
}

func FromSemaWarning(w *sema.Warning) Diagnostic {
	return Diagnostic{Category: "SEMANTIC", Severity: SeverityWarning, Message: w.Message, Line: w.Pos.Line, Column: w.Pos.Column}
}

// Render formats one diagnostic as a Rust/Clang-style block: a header line
// naming the category and position, a numbered source line for context, and
// a caret under the offending column. pal may be nil, which renders without
// color.
func Render(d Diagnostic, source string, pal *clrs.Palette) string {
	var b strings.Builder

	header := fmt.Sprintf("%s: %s (%d:%d): %s", d.Category, d.Severity.label(), d.Line, d.Column, d.Message)
	if pal != nil {
		if d.Severity == SeverityWarning {
			header = pal.Warning(header)
		} else {
			header = pal.Error(header)
		}
	}
	b.WriteString(header)
	b.WriteByte('\n')

	lines := strings.Split(source, "\n")
	if d.Line < 1 || d.Line > len(lines) {
		return b.String()
	}
	lineText := lines[d.Line-1]

	gutter := fmt.Sprintf("%d", d.Line)
	pad := strings.Repeat(" ", len(gutter))

	sep := pad + " |"
	if pal != nil {
		sep = pal.Gutter(sep)
	}
	b.WriteString(sep)
	b.WriteByte('\n')

	srcLine := fmt.Sprintf("%s | %s", gutter, lineText)
	if pal != nil {
		srcLine = pal.Gutter(gutter+" |") + " " + lineText
	}
	b.WriteString(srcLine)
	b.WriteByte('\n')

	caretLine := pad + " | "
	if d.Column >= 1 && d.Column <= len(lineText)+1 {
		caretLine += strings.Repeat(" ", d.Column-1) + "^"
	}
	if pal != nil {
		caretLine = pal.Gutter(pad+" | ") + strings.Repeat(" ", max(d.Column-1, 0)) + pal.Caret("^")
	}
	b.WriteString(caretLine)
	b.WriteByte('\n')

	return b.String()
}

// Collector accumulates diagnostics across a compilation run and renders
// them all, in the order received (source order, per stage).
type Collector struct {
	diagnostics []Diagnostic
}

func (c *Collector) Add(d Diagnostic) { c.diagnostics = append(c.diagnostics, d) }

func (c *Collector) AddLexError(e *lexer.Error)       { c.Add(FromLexError(e)) }
func (c *Collector) AddParseError(e *parser.Error)    { c.Add(FromParseError(e)) }
func (c *Collector) AddSemaError(e *sema.Error)       { c.Add(FromSemaError(e)) }
func (c *Collector) AddSemaWarning(w *sema.Warning)   { c.Add(FromSemaWarning(w)) }

// HasErrors reports whether any accumulated diagnostic is blocking.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (c *Collector) Diagnostics() []Diagnostic { return c.diagnostics }

// RenderAll renders every accumulated diagnostic against source, separated
// by blank lines.
func (c *Collector) RenderAll(source string, pal *clrs.Palette) string {
	var b strings.Builder
	for i, d := range c.diagnostics {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Render(d, source, pal))
	}
	return b.String()
}
