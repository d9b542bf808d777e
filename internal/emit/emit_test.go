package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portugol-lang/portugol/internal/lexer"
	"github.com/portugol-lang/portugol/internal/parser"
	"github.com/portugol-lang/portugol/internal/sema"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	prog, perrs := parser.Parse(toks)
	require.Empty(t, perrs)
	ok, errs, _ := sema.Analyze(prog)
	require.True(t, ok, "%v", errs)
	return Program(prog)
}

func TestEmitHello(t *testing.T) {
	out := compile(t, `funcao principal(){ escreva("Ola") }`)
	require.Contains(t, out, `print("Ola", sep="")`)
	require.Contains(t, out, "def principal():")
	require.True(t, strings.HasSuffix(out, "principal()\n"))
}

func TestEmitArithmeticPrecedenceParenthesized(t *testing.T) {
	out := compile(t, `funcao principal(){ escreva(2 + 3 * 4) }`)
	require.Contains(t, out, "(2 + (3 * 4))")
}

func TestEmitInclusiveForAddsOne(t *testing.T) {
	out := compile(t, `funcao principal(){ var s:inteiro=0
para i de 1 ate 10 { s = s + i }
escreva(s) }`)
	require.Contains(t, out, "range(1, 11)")
}

func TestEmitForWithStep(t *testing.T) {
	out := compile(t, `funcao principal(){ para i de 0 ate 10 passo 2 { escreva(i) } }`)
	require.Contains(t, out, "range(0, 11, 2)")
}

func TestEmitRecursion(t *testing.T) {
	out := compile(t, `funcao fat(n:inteiro):inteiro{ se (n<=1){ retorna 1 } senao { retorna n*fat(n-1) } }
funcao principal(){ escreva(fat(5)) }`)
	require.Contains(t, out, "def fat(n):")
	require.Contains(t, out, "fat((n - 1))")
}

func TestEmitSenaoSeAsElif(t *testing.T) {
	out := compile(t, `funcao principal(){
se (1 < 2) { escreva(1) }
senaose (2 < 3) { escreva(2) }
senao { escreva(3) }
}`)
	require.Contains(t, out, "elif")
	require.NotContains(t, out, "else:\n    if")
}

func TestEmitVarDeclDefaultValue(t *testing.T) {
	out := compile(t, `funcao principal(){ var x: inteiro
escreva(x) }`)
	require.Contains(t, out, "x = 0")
}

func TestEmitInputWithPrompt(t *testing.T) {
	out := compile(t, `funcao principal(){ var x: texto
leia("nome:", x)
escreva(x) }`)
	require.Contains(t, out, `x = input("nome:")`)
}

func TestEmitBoolLiterals(t *testing.T) {
	out := compile(t, `funcao principal(){ var b: logico = verdadeiro
escreva(b) }`)
	require.Contains(t, out, "b = True")
}

func TestEmitTextEscaping(t *testing.T) {
	out := compile(t, `funcao principal(){ escreva("a\nb") }`)
	require.Contains(t, out, `"a\nb"`)
}

func TestEmitPreambleDefinesBuiltins(t *testing.T) {
	out := compile(t, `funcao principal(){ escreva(raiz(4.0)) }`)
	require.Contains(t, out, "def raiz(v):")
	require.Contains(t, out, "def paraInteiro(v):")
}

func TestEmitNoPrincipalOmitsTrailer(t *testing.T) {
	out := compile(t, `var x = 1`)
	require.False(t, strings.Contains(out, "principal()\n"))
}

func TestEmitIntegerValuedRealKeepsFractionalMarker(t *testing.T) {
	out := compile(t, `funcao principal(){ var r: real = 3.0
escreva(r) }`)
	require.Contains(t, out, "r = 3.0")
	require.NotContains(t, out, "r = 3\n")
}

func TestEmitEmptyPrintIsValidPython(t *testing.T) {
	out := compile(t, `funcao principal(){ escreva() }`)
	require.Contains(t, out, `print(sep="")`)
	require.NotContains(t, out, "print(, ")
}
