// Command portugolc compiles Portugol source to Python and, on request,
// executes the result.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/portugol-lang/portugol/internal/cache"
	"github.com/portugol-lang/portugol/internal/clrs"
	"github.com/portugol-lang/portugol/internal/config"
	"github.com/portugol-lang/portugol/internal/diag"
	"github.com/portugol-lang/portugol/internal/emit"
	"github.com/portugol-lang/portugol/internal/lexer"
	"github.com/portugol-lang/portugol/internal/parser"
	"github.com/portugol-lang/portugol/internal/sema"
)

// demoProgram is executed when portugolc is invoked with no source file.
const demoProgram = `funcao principal() {
	escreva("Ola do Portugol")
	var soma: inteiro = 0
	para i de 1 ate 5 {
		soma = soma + i
	}
	escreva(soma)
}
`

var log zerolog.Logger

func main() {
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		run      bool
		output   string
		noColor  bool
		watch    bool
		noCache  bool
		cacheDir string
	)

	cmd := &cobra.Command{
		Use:           "portugolc [source-file]",
		Short:         "Compile Portugol source to Python",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Discover(".")
			if err != nil {
				return err
			}
			if cacheDir != "" {
				cfg.CacheDir = cacheDir
			}
			if noColor {
				cfg.Color = "never"
			}
			if output == "" {
				output = cfg.OutputPath
			}
			pal := paletteFor(cfg)

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				run = true
			}

			if watch {
				if path == "" {
					return fmt.Errorf("--watch requires a source file")
				}
				return runWatch(cmd.Context(), path, run, output, pal, cfg, noCache)
			}

			source, err := readSource(path)
			if err != nil {
				return err
			}
			exitCode := compileOnce(source, path, run, output, pal, cfg, noCache)
			if exitCode != 0 {
				return fmt.Errorf("compile failed")
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&run, "run", "r", false, "execute the emitted program after a successful compile")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write the emitted Python source to this path")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	cmd.PersistentFlags().BoolVar(&watch, "watch", false, "recompile and rerun on source file changes")
	cmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the compile cache")
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "override the compile cache directory")

	cmd.AddCommand(newTokensCmd(), newASTCmd(), newReplCmd())

	ctx, cancel := signalContext()
	defer cancel()
	cmd.SetContext(ctx)

	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func paletteFor(cfg *config.Config) *clrs.Palette {
	switch cfg.Color {
	case "always":
		return clrs.Forced()
	case "never":
		return clrs.New(true)
	default:
		return clrs.New(false)
	}
}

func readSource(path string) (string, error) {
	if path == "" {
		return demoProgram, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(raw), nil
}

// pipelineResult is the outcome of compiling one program.
type pipelineResult struct {
	emitted     string
	diagnostics *diag.Collector
}

// compile runs lex → parse → analyze → emit, collecting every diagnostic
// regardless of which stage produced it. Lex failures abort immediately, as
// the contract requires; parse and semantic diagnostics accumulate.
func compile(source string) *pipelineResult {
	coll := &diag.Collector{}

	toks, lexErr := lexer.Tokenize(source)
	if lexErr != nil {
		if le, ok := lexErr.(*lexer.Error); ok {
			coll.AddLexError(le)
		}
		return &pipelineResult{diagnostics: coll}
	}

	prog, perrs := parser.Parse(toks)
	for _, e := range perrs {
		coll.AddParseError(e)
	}
	if len(perrs) > 0 {
		return &pipelineResult{diagnostics: coll}
	}

	ok, serrs, warnings := sema.Analyze(prog)
	for _, e := range serrs {
		coll.AddSemaError(e)
	}
	for _, w := range warnings {
		coll.AddSemaWarning(w)
	}
	if !ok {
		return &pipelineResult{diagnostics: coll}
	}

	return &pipelineResult{emitted: emit.Program(prog), diagnostics: coll}
}

// compileOnce runs one compilation, rendering diagnostics, honoring the
// compile cache, writing --output, and executing with --run. Returns the
// process exit code.
func compileOnce(source, path string, run bool, output string, pal *clrs.Palette, cfg *config.Config, noCache bool) int {
	start := time.Now()

	var cached *cache.Cache
	var digest string
	if !noCache {
		c, err := cache.Open(cfg.CacheDir, []byte("portugolc-v1"))
		if err == nil {
			cached = c
			if d, err := cache.Digest(source); err == nil {
				digest = d
			}
		}
	}

	var result *pipelineResult
	fromCache := false
	if cached != nil && digest != "" {
		if entry, ok, _ := cached.Get(digest); ok {
			result = &pipelineResult{emitted: entry.Emitted, diagnostics: &diag.Collector{}}
			fromCache = true
		}
	}

	if result == nil {
		result = compile(source)
		if cached != nil && digest != "" && len(result.diagnostics.Diagnostics()) == 0 {
			_ = cached.Put(digest, &cache.Entry{Emitted: result.emitted, CompiledAt: time.Now()})
		}
	}

	if len(result.diagnostics.Diagnostics()) > 0 {
		fmt.Fprint(os.Stderr, result.diagnostics.RenderAll(source, pal))
	}
	if result.diagnostics.HasErrors() {
		return 1
	}
	if cfg.WarningsAsErr && len(result.diagnostics.Diagnostics()) > 0 {
		return 1
	}

	log.Debug().
		Str("file", path).
		Bool("cache_hit", fromCache).
		Dur("elapsed", time.Since(start)).
		Msg("compiled")

	if output != "" {
		if err := os.WriteFile(output, []byte(result.emitted), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if run {
		return execute(result.emitted)
	}
	if output == "" {
		fmt.Print(result.emitted)
	}
	return 0
}
