// Package parser builds an AST from a token stream by recursive descent,
// accumulating diagnostics and resynchronizing in panic mode rather than
// aborting on the first syntax error.
package parser

import (
	"github.com/portugol-lang/portugol/internal/ast"
	"github.com/portugol-lang/portugol/internal/token"
	"github.com/portugol-lang/portugol/internal/types"
)

const maxArgs = 255

// Parser consumes a token slice ending in EOF and produces a Program.
type Parser struct {
	tokens []token.Token
	pos    int
	errors []*Error
}

// New constructs a Parser over a complete token stream (as produced by
// lexer.Tokenize, including the trailing EOF).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse runs the parser to completion. It always returns a non-nil Program;
// callers must check len(errors) == 0 before trusting it (mirroring the
// semantic analyzer's success-iff-no-errors contract).
func Parse(tokens []token.Token) (*ast.Program, []*Error) {
	p := New(tokens)
	prog := p.parseProgram()
	return prog, p.errors
}

func (p *Parser) current() token.Token  { return p.tokens[p.pos] }
func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }
func (p *Parser) isAtEnd() bool         { return p.current().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(k token.Kind) bool {
	return !p.isAtEnd() && p.current().Kind == k
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(k token.Kind, message string) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	p.addError(message, p.current())
	return token.Token{}, false
}

func (p *Parser) addError(message string, tok token.Token) {
	p.errors = append(p.errors, &Error{Message: message, Token: tok})
}

// synchronize discards tokens until just after a ';' or until the next
// token starts a new declaration, per the panic-mode recovery rule.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMI {
			return
		}
		switch p.current().Kind {
		case token.FUNCTION, token.VAR, token.CONST, token.IF, token.WHILE, token.FOR, token.RETURN, token.PRINT:
			return
		}
		p.advance()
	}
}

func (p *Parser) optionalSemi() {
	p.match(token.SEMI)
}

// --- program / declarations ----------------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.isAtEnd() {
		decl, ok := p.declaration()
		if !ok {
			p.synchronize()
			continue
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog
}

func (p *Parser) declaration() (ast.Stmt, bool) {
	switch {
	case p.check(token.FUNCTION):
		return p.functionDecl()
	case p.check(token.VAR), p.check(token.CONST):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) varDecl() (ast.Stmt, bool) {
	isConst := p.current().Kind == token.CONST
	pos := p.current().Position()
	p.advance() // var|const

	nameTok, ok := p.consume(token.IDENTIFIER, "esperado nome de variavel")
	if !ok {
		return nil, false
	}

	declaredType := types.Unknown
	hasDeclaredType := false
	if p.match(token.COLON) {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		declaredType = t
		hasDeclaredType = true
	}

	var initializer ast.Expr
	if p.match(token.ASSIGN) {
		e, ok := p.expression()
		if !ok {
			return nil, false
		}
		initializer = e
	}

	p.optionalSemi()

	if !hasDeclaredType {
		declaredType = types.Unknown
	}
	return &ast.VarDecl{
		Name:         nameTok.Lexeme,
		DeclaredType: declaredType,
		Initializer:  initializer,
		IsConst:      isConst,
		P:            token.Position{Line: pos.Line, Column: pos.Column},
	}, true
}

func (p *Parser) parseType() (types.Type, bool) {
	tok := p.current()
	switch tok.Kind {
	case token.TYPE_INT:
		p.advance()
		return types.Int, true
	case token.TYPE_REAL:
		p.advance()
		return types.Real, true
	case token.TYPE_TEXT:
		p.advance()
		return types.Text, true
	case token.TYPE_BOOL:
		p.advance()
		return types.Bool, true
	case token.TYPE_VOID:
		p.advance()
		return types.Void, true
	default:
		p.addError("esperado um tipo (inteiro, real, texto, logico, vazio)", tok)
		return types.Unknown, false
	}
}

func (p *Parser) functionDecl() (ast.Stmt, bool) {
	pos := p.current().Position()
	p.advance() // funcao

	nameTok, ok := p.consume(token.IDENTIFIER, "esperado nome de funcao")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.LPAREN, "esperado '(' apos nome de funcao"); !ok {
		return nil, false
	}

	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			pnTok, ok := p.consume(token.IDENTIFIER, "esperado nome de parametro")
			if !ok {
				return nil, false
			}
			if _, ok := p.consume(token.COLON, "esperado ':' apos nome de parametro"); !ok {
				return nil, false
			}
			pt, ok := p.parseType()
			if !ok {
				return nil, false
			}
			params = append(params, ast.Param{Name: pnTok.Lexeme, Type: pt})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(token.RPAREN, "esperado ')' apos parametros"); !ok {
		return nil, false
	}

	returnType := types.Void
	if p.match(token.COLON) {
		t, ok := p.parseType()
		if !ok {
			return nil, false
		}
		returnType = t
	}

	body, ok := p.block()
	if !ok {
		return nil, false
	}

	return &ast.FunctionDecl{
		Name:       nameTok.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		P:          token.Position{Line: pos.Line, Column: pos.Column},
	}, true
}

// --- statements -------------------------------------------------------

func (p *Parser) statement() (ast.Stmt, bool) {
	switch {
	case p.check(token.IF):
		return p.ifStmt()
	case p.check(token.WHILE):
		return p.whileStmt()
	case p.check(token.FOR):
		return p.forStmt()
	case p.check(token.PRINT):
		return p.printStmt()
	case p.check(token.INPUT):
		return p.inputStmt()
	case p.check(token.RETURN):
		return p.returnStmt()
	case p.check(token.LBRACE):
		return p.block()
	default:
		return p.exprStmt()
	}
}

func (p *Parser) block() (*ast.Block, bool) {
	pos := p.current().Position()
	if _, ok := p.consume(token.LBRACE, "esperado '{'"); !ok {
		return nil, false
	}
	blk := &ast.Block{P: token.Position{Line: pos.Line, Column: pos.Column}}
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		decl, ok := p.declaration()
		if !ok {
			p.synchronize()
			continue
		}
		blk.Stmts = append(blk.Stmts, decl)
	}
	if _, ok := p.consume(token.RBRACE, "esperado '}'"); !ok {
		return nil, false
	}
	return blk, true
}

func (p *Parser) ifStmt() (ast.Stmt, bool) {
	pos := p.current().Position()
	p.advance() // se
	if _, ok := p.consume(token.LPAREN, "esperado '(' apos 'se'"); !ok {
		return nil, false
	}
	cond, ok := p.expression()
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.RPAREN, "esperado ')' apos condicao"); !ok {
		return nil, false
	}
	then, ok := p.statement()
	if !ok {
		return nil, false
	}

	node := &ast.If{Cond: cond, Then: then, P: token.Position{Line: pos.Line, Column: pos.Column}}

	if p.match(token.ELSE) {
		els, ok := p.statement()
		if !ok {
			return nil, false
		}
		node.Else = els
	} else if p.check(token.ELSEIF) {
		p.advance()
		elseIf, ok := p.ifStmtFromElseIf()
		if !ok {
			return nil, false
		}
		node.Else = elseIf
	}
	return node, true
}

// ifStmtFromElseIf parses the tail of a senaose as a nested if (the
// "senaose" token has already been consumed).
func (p *Parser) ifStmtFromElseIf() (ast.Stmt, bool) {
	pos := p.previous().Position()
	if _, ok := p.consume(token.LPAREN, "esperado '(' apos 'senaose'"); !ok {
		return nil, false
	}
	cond, ok := p.expression()
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.RPAREN, "esperado ')' apos condicao"); !ok {
		return nil, false
	}
	then, ok := p.statement()
	if !ok {
		return nil, false
	}
	node := &ast.If{Cond: cond, Then: then, P: token.Position{Line: pos.Line, Column: pos.Column}}
	if p.match(token.ELSE) {
		els, ok := p.statement()
		if !ok {
			return nil, false
		}
		node.Else = els
	} else if p.check(token.ELSEIF) {
		p.advance()
		elseIf, ok := p.ifStmtFromElseIf()
		if !ok {
			return nil, false
		}
		node.Else = elseIf
	}
	return node, true
}

func (p *Parser) whileStmt() (ast.Stmt, bool) {
	pos := p.current().Position()
	p.advance() // enquanto
	if _, ok := p.consume(token.LPAREN, "esperado '(' apos 'enquanto'"); !ok {
		return nil, false
	}
	cond, ok := p.expression()
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.RPAREN, "esperado ')' apos condicao"); !ok {
		return nil, false
	}
	body, ok := p.statement()
	if !ok {
		return nil, false
	}
	return &ast.While{Cond: cond, Body: body, P: token.Position{Line: pos.Line, Column: pos.Column}}, true
}

func (p *Parser) forStmt() (ast.Stmt, bool) {
	pos := p.current().Position()
	p.advance() // para
	nameTok, ok := p.consume(token.IDENTIFIER, "esperado nome de variavel apos 'para'")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.FROM, "esperado 'de' apos variavel do 'para'"); !ok {
		return nil, false
	}
	start, ok := p.expression()
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.TO, "esperado 'ate' apos expressao inicial"); !ok {
		return nil, false
	}
	end, ok := p.expression()
	if !ok {
		return nil, false
	}
	var step ast.Expr
	if p.match(token.STEP) {
		s, ok := p.expression()
		if !ok {
			return nil, false
		}
		step = s
	}
	body, ok := p.statement()
	if !ok {
		return nil, false
	}
	return &ast.For{
		VarName: nameTok.Lexeme, Start: start, End: end, Step: step, Body: body,
		P: token.Position{Line: pos.Line, Column: pos.Column},
	}, true
}

func (p *Parser) printStmt() (ast.Stmt, bool) {
	pos := p.current().Position()
	p.advance() // escreva
	if _, ok := p.consume(token.LPAREN, "esperado '(' apos 'escreva'"); !ok {
		return nil, false
	}
	var exprs []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			e, ok := p.expression()
			if !ok {
				return nil, false
			}
			exprs = append(exprs, e)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(token.RPAREN, "esperado ')' apos argumentos de 'escreva'"); !ok {
		return nil, false
	}
	p.optionalSemi()
	return &ast.Print{Exprs: exprs, P: token.Position{Line: pos.Line, Column: pos.Column}}, true
}

func (p *Parser) inputStmt() (ast.Stmt, bool) {
	pos := p.current().Position()
	p.advance() // leia
	if _, ok := p.consume(token.LPAREN, "esperado '(' apos 'leia'"); !ok {
		return nil, false
	}
	var prompt ast.Expr
	if p.check(token.TEXT_LITERAL) && p.peekIsCommaAfterString() {
		lit := p.current()
		p.advance()
		prompt = &ast.Literal{Value: lit.Value, Kind: ast.LitText, P: token.Position{Line: lit.Line, Column: lit.Column}}
		if _, ok := p.consume(token.COMMA, "esperado ',' apos mensagem de 'leia'"); !ok {
			return nil, false
		}
	}
	nameTok, ok := p.consume(token.IDENTIFIER, "esperado nome de variavel em 'leia'")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.RPAREN, "esperado ')' apos 'leia'"); !ok {
		return nil, false
	}
	p.optionalSemi()
	return &ast.Input{VarName: nameTok.Lexeme, Prompt: prompt, P: token.Position{Line: pos.Line, Column: pos.Column}}, true
}

// peekIsCommaAfterString disambiguates `leia("msg", x)` from `leia(x)` by
// checking whether the token after the string literal is a comma.
func (p *Parser) peekIsCommaAfterString() bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos+1].Kind == token.COMMA
}

func (p *Parser) returnStmt() (ast.Stmt, bool) {
	pos := p.current().Position()
	p.advance() // retorna
	var value ast.Expr
	if !p.check(token.SEMI) && !p.check(token.RBRACE) && !p.isAtEnd() {
		e, ok := p.expression()
		if !ok {
			return nil, false
		}
		value = e
	}
	p.optionalSemi()
	return &ast.Return{Value: value, P: token.Position{Line: pos.Line, Column: pos.Column}}, true
}

func (p *Parser) exprStmt() (ast.Stmt, bool) {
	pos := p.current().Position()
	e, ok := p.expression()
	if !ok {
		return nil, false
	}
	p.optionalSemi()
	return &ast.ExpressionStmt{Expr: e, P: token.Position{Line: pos.Line, Column: pos.Column}}, true
}

// --- expressions --------------------------------------------------------

var compoundOps = map[token.Kind]token.Kind{
	token.PLUS_EQ:  token.PLUS,
	token.MINUS_EQ: token.MINUS,
	token.STAR_EQ:  token.STAR,
	token.SLASH_EQ: token.SLASH,
}

func (p *Parser) expression() (ast.Expr, bool) { return p.assignment() }

func (p *Parser) assignment() (ast.Expr, bool) {
	left, ok := p.logicalOr()
	if !ok {
		return nil, false
	}

	if p.check(token.ASSIGN) || p.check(token.PLUS_EQ) || p.check(token.MINUS_EQ) ||
		p.check(token.STAR_EQ) || p.check(token.SLASH_EQ) {
		opTok := p.advance()

		value, ok := p.assignment()
		if !ok {
			return nil, false
		}

		variable, isVar := left.(*ast.Variable)
		if !isVar {
			p.addError("alvo de atribuicao invalido", opTok)
			return nil, false
		}

		// Compound-assignment lowering: x op= e  =>  x = x op e, with the
		// original operator token kept only for diagnostic position.
		if baseOp, isCompound := compoundOps[opTok.Kind]; isCompound {
			value = &ast.Binary{
				Left:  &ast.Variable{Name: variable.Name, P: variable.P},
				Op:    baseOp,
				Right: value,
				P:     token.Position{Line: opTok.Line, Column: opTok.Column},
			}
		}

		return &ast.Assignment{Name: variable.Name, Value: value, P: variable.P}, true
	}

	return left, true
}

func (p *Parser) logicalOr() (ast.Expr, bool) {
	left, ok := p.logicalAnd()
	if !ok {
		return nil, false
	}
	for p.check(token.OR) {
		opTok := p.advance()
		right, ok := p.logicalAnd()
		if !ok {
			return nil, false
		}
		left = &ast.Logical{Left: left, Op: token.OR, Right: right, P: token.Position{Line: opTok.Line, Column: opTok.Column}}
	}
	return left, true
}

func (p *Parser) logicalAnd() (ast.Expr, bool) {
	left, ok := p.equality()
	if !ok {
		return nil, false
	}
	for p.check(token.AND) {
		opTok := p.advance()
		right, ok := p.equality()
		if !ok {
			return nil, false
		}
		left = &ast.Logical{Left: left, Op: token.AND, Right: right, P: token.Position{Line: opTok.Line, Column: opTok.Column}}
	}
	return left, true
}

func (p *Parser) equality() (ast.Expr, bool) {
	return p.binaryLevel(p.comparison, token.EQ, token.NE)
}

func (p *Parser) comparison() (ast.Expr, bool) {
	return p.binaryLevel(p.term, token.LT, token.LE, token.GT, token.GE)
}

func (p *Parser) term() (ast.Expr, bool) {
	return p.binaryLevel(p.factor, token.PLUS, token.MINUS)
}

func (p *Parser) factor() (ast.Expr, bool) {
	return p.binaryLevel(p.power, token.STAR, token.SLASH, token.PERCENT)
}

func (p *Parser) binaryLevel(next func() (ast.Expr, bool), ops ...token.Kind) (ast.Expr, bool) {
	left, ok := next()
	if !ok {
		return nil, false
	}
	for p.checkAny(ops...) {
		opTok := p.advance()
		right, ok := next()
		if !ok {
			return nil, false
		}
		left = &ast.Binary{Left: left, Op: opTok.Kind, Right: right, P: token.Position{Line: opTok.Line, Column: opTok.Column}}
	}
	return left, true
}

func (p *Parser) checkAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

// power is right-associative: a ** b ** c == a ** (b ** c).
func (p *Parser) power() (ast.Expr, bool) {
	left, ok := p.unary()
	if !ok {
		return nil, false
	}
	if p.check(token.POWER) {
		opTok := p.advance()
		right, ok := p.power()
		if !ok {
			return nil, false
		}
		return &ast.Binary{Left: left, Op: token.POWER, Right: right, P: token.Position{Line: opTok.Line, Column: opTok.Column}}, true
	}
	return left, true
}

func (p *Parser) unary() (ast.Expr, bool) {
	if p.check(token.NOT) || p.check(token.MINUS) {
		opTok := p.advance()
		operand, ok := p.unary()
		if !ok {
			return nil, false
		}
		return &ast.Unary{Op: opTok.Kind, Operand: operand, P: token.Position{Line: opTok.Line, Column: opTok.Column}}, true
	}
	return p.call()
}

func (p *Parser) call() (ast.Expr, bool) {
	expr, ok := p.primary()
	if !ok {
		return nil, false
	}
	for {
		switch {
		case p.check(token.LPAREN):
			e, ok := p.finishCall(expr)
			if !ok {
				return nil, false
			}
			expr = e
		case p.check(token.LBRACK):
			pos := p.current().Position()
			p.advance()
			idx, ok := p.expression()
			if !ok {
				return nil, false
			}
			if _, ok := p.consume(token.RBRACK, "esperado ']' apos indice"); !ok {
				return nil, false
			}
			expr = &ast.Index{Object: expr, Idx: idx, P: token.Position{Line: pos.Line, Column: pos.Column}}
		default:
			return expr, true
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, bool) {
	variable, isVar := callee.(*ast.Variable)
	if !isVar {
		p.addError("apenas nomes podem ser chamados como funcao", p.current())
		return nil, false
	}
	pos := p.current().Position()
	p.advance() // (
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			if len(args) >= maxArgs {
				p.addError("excesso de argumentos na chamada (maximo 255)", p.current())
				return nil, false
			}
			a, ok := p.expression()
			if !ok {
				return nil, false
			}
			args = append(args, a)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(token.RPAREN, "esperado ')' apos argumentos"); !ok {
		return nil, false
	}
	return &ast.Call{Callee: variable.Name, Args: args, P: token.Position{Line: pos.Line, Column: pos.Column}}, true
}

func (p *Parser) primary() (ast.Expr, bool) {
	tok := p.current()
	switch tok.Kind {
	case token.INT_LITERAL:
		p.advance()
		return &ast.Literal{Value: tok.Value, Kind: ast.LitInt, P: token.Position{Line: tok.Line, Column: tok.Column}}, true
	case token.REAL_LITERAL:
		p.advance()
		return &ast.Literal{Value: tok.Value, Kind: ast.LitReal, P: token.Position{Line: tok.Line, Column: tok.Column}}, true
	case token.TEXT_LITERAL:
		p.advance()
		return &ast.Literal{Value: tok.Value, Kind: ast.LitText, P: token.Position{Line: tok.Line, Column: tok.Column}}, true
	case token.TRUE:
		p.advance()
		return &ast.Literal{Value: true, Kind: ast.LitBool, P: token.Position{Line: tok.Line, Column: tok.Column}}, true
	case token.FALSE:
		p.advance()
		return &ast.Literal{Value: false, Kind: ast.LitBool, P: token.Position{Line: tok.Line, Column: tok.Column}}, true
	case token.IDENTIFIER:
		p.advance()
		return &ast.Variable{Name: tok.Lexeme, P: token.Position{Line: tok.Line, Column: tok.Column}}, true
	case token.LPAREN:
		p.advance()
		inner, ok := p.expression()
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.RPAREN, "esperado ')' apos expressao"); !ok {
			return nil, false
		}
		return &ast.Grouping{Inner: inner, P: token.Position{Line: tok.Line, Column: tok.Column}}, true
	default:
		p.addError("token inesperado: "+tok.Kind.String(), tok)
		return nil, false
	}
}
