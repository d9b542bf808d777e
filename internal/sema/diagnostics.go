package sema

import (
	"fmt"

	"github.com/portugol-lang/portugol/internal/token"
)

// Error is a blocking semantic diagnostic: undeclared symbol, duplicate
// declaration, type mismatch, wrong arity, assignment to a constant,
// return outside a function, or a wrong-typed condition.
type Error struct {
	Message string
	Pos     token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("erro semantico (%d:%d): %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Warning is a non-blocking semantic diagnostic: an uninitialized read, a
// missing `principal`, or a missing return on some non-void path.
type Warning struct {
	Message string
	Pos     token.Position
}

func (w *Warning) String() string {
	return fmt.Sprintf("aviso semantico (%d:%d): %s", w.Pos.Line, w.Pos.Column, w.Message)
}
