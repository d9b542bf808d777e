package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portugol-lang/portugol/internal/ast"
	"github.com/portugol-lang/portugol/internal/lexer"
	"github.com/portugol-lang/portugol/internal/token"
)

func parse(t *testing.T, src string) (*ast.Program, []*Error) {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	return Parse(toks)
}

func TestParseVarDeclWithTypeAndInitializer(t *testing.T) {
	prog, errs := parse(t, `var x: inteiro = 10`)
	require.Empty(t, errs)
	require.Len(t, prog.Decls, 1)
	decl := prog.Decls[0].(*ast.VarDecl)
	require.Equal(t, "x", decl.Name)
	require.False(t, decl.IsConst)
	lit := decl.Initializer.(*ast.Literal)
	require.Equal(t, int64(10), lit.Value)
}

func TestParseConstRequiresNoTypeInference(t *testing.T) {
	prog, errs := parse(t, `const P = 3.14`)
	require.Empty(t, errs)
	decl := prog.Decls[0].(*ast.VarDecl)
	require.True(t, decl.IsConst)
}

func TestParsePrecedence(t *testing.T) {
	prog, errs := parse(t, `escreva(2 + 3 * 4)`)
	require.Empty(t, errs)
	stmt := prog.Decls[0].(*ast.Print)
	bin := stmt.Exprs[0].(*ast.Binary)
	require.Equal(t, token.PLUS, bin.Op)
	rhs := bin.Right.(*ast.Binary)
	require.Equal(t, token.STAR, rhs.Op)
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	prog, errs := parse(t, `escreva(2 ** 3 ** 2)`)
	require.Empty(t, errs)
	stmt := prog.Decls[0].(*ast.Print)
	bin := stmt.Exprs[0].(*ast.Binary)
	require.Equal(t, token.POWER, bin.Op)
	// 2 ** (3 ** 2): left is literal 2, right is another POWER binary.
	_, leftIsLit := bin.Left.(*ast.Literal)
	require.True(t, leftIsLit)
	rhs, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, token.POWER, rhs.Op)
}

func TestParseCompoundAssignmentLowering(t *testing.T) {
	prog, errs := parse(t, `x += 1`)
	require.Empty(t, errs)
	stmt := prog.Decls[0].(*ast.ExpressionStmt)
	assign := stmt.Expr.(*ast.Assignment)
	require.Equal(t, "x", assign.Name)
	bin := assign.Value.(*ast.Binary)
	require.Equal(t, token.PLUS, bin.Op)
	require.Equal(t, "x", bin.Left.(*ast.Variable).Name)
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	_, errs := parse(t, `1 + 1 = 2`)
	require.NotEmpty(t, errs)
}

func TestParseIfSenaoSeChain(t *testing.T) {
	prog, errs := parse(t, `se (a) { escreva(1) } senaose (b) { escreva(2) } senao { escreva(3) }`)
	require.Empty(t, errs)
	ifStmt := prog.Decls[0].(*ast.If)
	elseIf, ok := ifStmt.Else.(*ast.If)
	require.True(t, ok)
	require.NotNil(t, elseIf.Else)
}

func TestParseForHeader(t *testing.T) {
	prog, errs := parse(t, `para i de 1 ate 10 passo 2 { escreva(i) }`)
	require.Empty(t, errs)
	forStmt := prog.Decls[0].(*ast.For)
	require.Equal(t, "i", forStmt.VarName)
	require.NotNil(t, forStmt.Step)
}

func TestParseFunctionDecl(t *testing.T) {
	prog, errs := parse(t, `funcao soma(a: inteiro, b: inteiro): inteiro { retorna a + b }`)
	require.Empty(t, errs)
	fn := prog.Decls[0].(*ast.FunctionDecl)
	require.Equal(t, "soma", fn.Name)
	require.Len(t, fn.Params, 2)
}

func TestParseInputWithPrompt(t *testing.T) {
	prog, errs := parse(t, `leia("idade:", x)`)
	require.Empty(t, errs)
	in := prog.Decls[0].(*ast.Input)
	require.Equal(t, "x", in.VarName)
	require.NotNil(t, in.Prompt)
}

func TestParseInputWithoutPrompt(t *testing.T) {
	prog, errs := parse(t, `leia(x)`)
	require.Empty(t, errs)
	in := prog.Decls[0].(*ast.Input)
	require.Equal(t, "x", in.VarName)
	require.Nil(t, in.Prompt)
}

func TestParseSemicolonsOptional(t *testing.T) {
	prog, errs := parse(t, `var a = 1; var b = 2`)
	require.Empty(t, errs)
	require.Len(t, prog.Decls, 2)
}

func TestParsePanicModeRecoversAndReportsMultipleErrors(t *testing.T) {
	_, errs := parse(t, `var = ; var b = 2 ; var = ;`)
	require.GreaterOrEqual(t, len(errs), 2)
}

func TestParseTooManyArguments(t *testing.T) {
	src := "f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ","
		}
		src += "1"
	}
	src += ")"
	_, errs := parse(t, src)
	require.NotEmpty(t, errs)
}

func TestParseIndexExpression(t *testing.T) {
	prog, errs := parse(t, `escreva(o[i])`)
	require.Empty(t, errs)
	stmt := prog.Decls[0].(*ast.Print)
	_, ok := stmt.Exprs[0].(*ast.Index)
	require.True(t, ok)
}
