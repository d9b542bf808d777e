package diag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portugol-lang/portugol/internal/sema"
	"github.com/portugol-lang/portugol/internal/token"
)

func TestRenderSemanticErrorIncludesCaret(t *testing.T) {
	src := "var x: inteiro = \"hi\""
	d := FromSemaError(&sema.Error{Message: "tipo incompativel", Pos: token.Position{Line: 1, Column: 5}})
	out := Render(d, src, nil)
	require.Contains(t, out, "SEMANTIC: error (1:5)")
	require.Contains(t, out, src)
	require.Contains(t, out, "^")
}

func TestCollectorHasErrorsDistinguishesWarnings(t *testing.T) {
	c := &Collector{}
	c.AddSemaWarning(&sema.Warning{Message: "uso antes de inicializar", Pos: token.Position{Line: 2, Column: 1}})
	require.False(t, c.HasErrors())
	c.AddSemaError(&sema.Error{Message: "variavel nao declarada", Pos: token.Position{Line: 3, Column: 1}})
	require.True(t, c.HasErrors())
	require.Len(t, c.Diagnostics(), 2)
}
