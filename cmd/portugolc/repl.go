package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/portugol-lang/portugol/internal/emit"
	"github.com/portugol-lang/portugol/internal/lexer"
	"github.com/portugol-lang/portugol/internal/parser"
	"github.com/portugol-lang/portugol/internal/sema"
)

var (
	replBlue   = color.New(color.FgBlue)
	replYellow = color.New(color.FgYellow)
	replRed    = color.New(color.FgRed)
	replGreen  = color.New(color.FgGreen)
	replCyan   = color.New(color.FgCyan)
)

const replBanner = `
 ____            _                       _
|  _ \ ___  _ __| |_ _   _  __ _  ___ | |
| |_) / _ \| '__| __| | | |/ _\ |/ _ \| |
|  __/ (_) | |  | |_| |_| | (_| | (_) | |
|_|   \___/|_|   \__|\__,_|\__, |\___/|_|
                           |___/
`

const replLine = "------------------------------------------------------------"

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-compile-run loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepl(cmd.OutOrStdout())
			return nil
		},
	}
}

// session accumulates every declaration and statement typed so far inside one
// implicit principal body. The language has no notion of separate
// compilation, so each submission recompiles the whole accumulated program
// and re-executes it, which keeps variables and function declarations live
// across lines the way a user expects from a REPL.
type session struct {
	decls []string
}

func (s *session) source() string {
	var b strings.Builder
	b.WriteString("funcao principal() {\n")
	for _, d := range s.decls {
		b.WriteString(d)
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func runRepl(writer io.Writer) {
	printReplBanner(writer)

	rl, err := readline.New("portugol> ")
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	sess := &session{}

	for {
		line, err := rl.Readline()
		if err != nil {
			fmt.Fprintln(writer, "Ate logo!")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".sair" || line == ".exit" {
			fmt.Fprintln(writer, "Ate logo!")
			return
		}

		rl.SaveHistory(line)
		evalLine(writer, sess, line)
	}
}

func printReplBanner(writer io.Writer) {
	replBlue.Fprintf(writer, "%s\n", replLine)
	replGreen.Fprintf(writer, "%s\n", replBanner)
	replBlue.Fprintf(writer, "%s\n", replLine)
	replCyan.Fprintln(writer, "Digite uma linha de Portugol e pressione enter.")
	replCyan.Fprintln(writer, "Digite '.sair' para encerrar.")
	replBlue.Fprintf(writer, "%s\n", replLine)
}

// evalLine tentatively appends line to the accumulated session, recompiles
// the whole program, and rolls the append back on any failure so one bad
// line never corrupts the session for the next attempt. A panic from deep
// inside the pipeline is reported like any other error instead of killing
// the loop.
func evalLine(writer io.Writer, sess *session, line string) {
	defer func() {
		if r := recover(); r != nil {
			replRed.Fprintf(writer, "[erro interno] %v\n", r)
		}
	}()

	candidate := append(append([]string{}, sess.decls...), line)
	trial := &session{decls: candidate}
	src := trial.source()

	toks, err := lexer.Tokenize(src)
	if err != nil {
		replRed.Fprintf(writer, "%s\n", err)
		return
	}

	prog, perrs := parser.Parse(toks)
	if len(perrs) > 0 {
		for _, e := range perrs {
			replRed.Fprintf(writer, "%s\n", e)
		}
		return
	}

	ok, serrs, warnings := sema.Analyze(prog)
	for _, w := range warnings {
		replYellow.Fprintf(writer, "%s\n", w)
	}
	if !ok {
		for _, e := range serrs {
			replRed.Fprintf(writer, "%s\n", e)
		}
		return
	}

	emitted := emit.Program(prog)
	sess.decls = candidate

	if execute(emitted) == 0 {
		return
	}
	replRed.Fprintln(writer, "[a execucao terminou com erro]")
}
