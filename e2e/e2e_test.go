// Package e2e drives the six concrete compile-and-run scenarios named in
// the compiler's testable-properties section, exercising lex → parse →
// analyze → emit end to end and, when python3 is present, executing the
// emitted program.
package e2e

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portugol-lang/portugol/internal/emit"
	"github.com/portugol-lang/portugol/internal/lexer"
	"github.com/portugol-lang/portugol/internal/parser"
	"github.com/portugol-lang/portugol/internal/sema"
	"github.com/portugol-lang/portugol/internal/testharness"
)

type compileResult struct {
	ok      bool
	errs    []*sema.Error
	emitted string
}

func compile(t *testing.T, src string) compileResult {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)
	ok, errs, _ := sema.Analyze(prog)
	if !ok {
		return compileResult{ok: false, errs: errs}
	}
	return compileResult{ok: true, emitted: emit.Program(prog)}
}

func runAndExpect(t *testing.T, src, wantStdout string) {
	t.Helper()
	res := compile(t, src)
	require.True(t, res.ok, "%v", res.errs)
	if !testharness.HasPython() {
		t.Skip("python3 not available on PATH")
	}
	out, err := testharness.RunPython(res.emitted)
	require.NoError(t, err)
	require.True(t, out.Success(), "stderr: %s", out.Stderr)
	require.Equal(t, wantStdout, out.Stdout)
}

func TestHello(t *testing.T) {
	runAndExpect(t, `funcao principal(){ escreva("Ola") }`, "Ola\n")
}

func TestArithmeticAndPrecedence(t *testing.T) {
	runAndExpect(t, `funcao principal(){ escreva(2 + 3 * 4) }`, "14\n")
}

func TestInclusiveForAndAccumulator(t *testing.T) {
	src := `funcao principal(){ var s:inteiro=0
para i de 1 ate 10 { s = s + i }
escreva(s) }`
	runAndExpect(t, src, "55\n")
}

func TestRecursion(t *testing.T) {
	src := `funcao fat(n:inteiro):inteiro{ se (n<=1){ retorna 1 }
retorna n*fat(n-1) }
funcao principal(){ escreva(fat(5)) }`
	runAndExpect(t, src, "120\n")
}

func TestTypeErrorProducesNoEmission(t *testing.T) {
	res := compile(t, `funcao principal(){ var x:inteiro = "hi" }`)
	require.False(t, res.ok)
	require.Len(t, res.errs, 1)
	require.Equal(t, 1, res.errs[0].Pos.Line)
	require.Empty(t, res.emitted)
}

func TestAssignmentToConstantFails(t *testing.T) {
	src := `funcao principal(){ const P:real=3.14
P = 2.0 }`
	res := compile(t, src)
	require.False(t, res.ok)
	require.NotEmpty(t, res.errs)
	found := false
	for _, e := range res.errs {
		if strings.Contains(e.Message, "P") {
			found = true
		}
	}
	require.True(t, found, "expected an error naming P, got %v", res.errs)
}
