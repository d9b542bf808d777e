package parser

import (
	"fmt"

	"github.com/portugol-lang/portugol/internal/token"
)

// Error is an accumulated parse diagnostic: unexpected token, missing
// terminator, invalid assignment target, or too many arguments.
type Error struct {
	Message string
	Token   token.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("erro de sintaxe (%d:%d): %s", e.Token.Line, e.Token.Column, e.Message)
}
