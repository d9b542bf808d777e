package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/portugol-lang/portugol/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	toks, err := Tokenize("var x: inteiro = 10")
	require.NoError(t, err)

	want := []token.Kind{token.VAR, token.IDENTIFIER, token.COLON, token.TYPE_INT, token.ASSIGN, token.INT_LITERAL, token.EOF}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
		val  any
	}{
		{"42", token.INT_LITERAL, int64(42)},
		{"3.14", token.REAL_LITERAL, 3.14},
		{"3.", token.INT_LITERAL, int64(3)}, // trailing dot not consumed
		{"1e10", token.REAL_LITERAL, 1e10},
		{"2.5e-3", token.REAL_LITERAL, 2.5e-3},
	}
	for _, c := range cases {
		toks, err := Tokenize(c.src)
		require.NoError(t, err, c.src)
		require.Equal(t, c.kind, toks[0].Kind, c.src)
		require.Equal(t, c.val, toks[0].Value, c.src)
	}
}

func TestTokenizeTrailingDotLeavesDotToken(t *testing.T) {
	toks, err := Tokenize("3.x")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.INT_LITERAL, token.DOT, token.IDENTIFIER, token.EOF}, kinds(toks))
}

func TestTokenizeExponentNoDigitsFails(t *testing.T) {
	_, err := Tokenize("1e")
	require.Error(t, err)
}

func TestTokenizeString(t *testing.T) {
	toks, err := Tokenize(`"Ola, \"mundo\"!\n"`)
	require.NoError(t, err)
	require.Equal(t, "Ola, \"mundo\"!\n", toks[0].Value)
}

func TestTokenizeStringUnknownEscapePreserved(t *testing.T) {
	toks, err := Tokenize(`"a\qb"`)
	require.NoError(t, err)
	require.Equal(t, `a\qb`, toks[0].Value)
}

func TestTokenizeUnterminatedStringFails(t *testing.T) {
	_, err := Tokenize("\"unterminated\n")
	require.Error(t, err)
	_, err = Tokenize(`"unterminated`)
	require.Error(t, err)
}

func TestTokenizeCompoundAssignOperators(t *testing.T) {
	toks, err := Tokenize("+= -= *= /= ** -> == != <= >=")
	require.NoError(t, err)
	want := []token.Kind{
		token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ,
		token.POWER, token.ARROW, token.EQ, token.NE, token.LE, token.GE, token.EOF,
	}
	require.Equal(t, want, kinds(toks))
}

func TestTokenizeBareBangFails(t *testing.T) {
	_, err := Tokenize("a ! b")
	require.Error(t, err)
}

func TestTokenizeLineComment(t *testing.T) {
	toks, err := Tokenize("1 // comentario\n2")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.INT_LITERAL, token.INT_LITERAL, token.EOF}, kinds(toks))
}

func TestTokenizeUnterminatedBlockCommentFails(t *testing.T) {
	_, err := Tokenize("/* nunca fecha")
	require.Error(t, err)
}

func TestTokenizeBlockComment(t *testing.T) {
	toks, err := Tokenize("1 /* bloco\nmulti-linha */ 2")
	require.NoError(t, err)
	require.Equal(t, []token.Kind{token.INT_LITERAL, token.INT_LITERAL, token.EOF}, kinds(toks))
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	toks, err := Tokenize("SE Se sE se")
	require.NoError(t, err)
	for _, tk := range toks[:4] {
		require.Equal(t, token.IF, tk.Kind)
	}
}

func TestPositionMonotonicity(t *testing.T) {
	toks, err := Tokenize("var a = 1\nvar b = 2\n")
	require.NoError(t, err)
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		if cur.Line < prev.Line || (cur.Line == prev.Line && cur.Column < prev.Column) {
			t.Fatalf("positions not monotone: %v then %v", prev, cur)
		}
	}
}

func TestEveryTokenExceptEOFHasLexeme(t *testing.T) {
	toks, err := Tokenize(`funcao principal() { escreva("oi") }`)
	require.NoError(t, err)
	for _, tk := range toks {
		if tk.Kind != token.EOF && tk.Lexeme == "" {
			t.Fatalf("non-EOF token with empty lexeme: %v", tk)
		}
	}
	require.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}
