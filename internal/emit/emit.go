// Package emit turns a semantically-validated AST into an equivalent Python
// program: a pure function of the tree, with no diagnostics of its own.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/portugol-lang/portugol/internal/ast"
	"github.com/portugol-lang/portugol/internal/token"
	"github.com/portugol-lang/portugol/internal/types"
)

const indentUnit = "    "

// preamble defines the built-in conversion, math, and string functions in
// terms of Python primitives.
const preamble = `def paraInteiro(v):
    return int(v)

def paraReal(v):
    return float(v)

def paraTexto(v):
    return str(v)

def raiz(v):
    return v ** 0.5

def absoluto(v):
    return abs(v)

def arredonda(v):
    return round(v)

def tamanho(v):
    return len(v)

`

var binaryOps = map[token.Kind]string{
	token.PLUS:    "+",
	token.MINUS:   "-",
	token.STAR:    "*",
	token.SLASH:   "/",
	token.PERCENT: "%",
	token.POWER:   "**",
	token.EQ:      "==",
	token.NE:      "!=",
	token.LT:      "<",
	token.LE:      "<=",
	token.GT:      ">",
	token.GE:      ">=",
}

var logicalOps = map[token.Kind]string{
	token.AND: "and",
	token.OR:  "or",
}

// Emitter walks an AST and renders it as indented Python source.
type Emitter struct {
	buf          strings.Builder
	depth        int
	sawPrincipal bool
}

// Program renders a complete program, wrapping it in the built-ins preamble
// and a trailer that invokes `principal` when one was defined.
func Program(prog *ast.Program) string {
	e := &Emitter{}
	e.buf.WriteString(preamble)
	for _, d := range prog.Decls {
		e.emitStmt(d)
	}
	if e.sawPrincipal {
		e.buf.WriteString("\nprincipal()\n")
	}
	return e.buf.String()
}

func (e *Emitter) indent() string { return strings.Repeat(indentUnit, e.depth) }

func (e *Emitter) writeLine(format string, args ...any) {
	e.buf.WriteString(e.indent())
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *Emitter) emitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		e.emitVarDecl(n)
	case *ast.Block:
		e.emitBlockBody(n)
	case *ast.If:
		e.emitIf(n)
	case *ast.While:
		e.writeLine("while %s:", e.expr(n.Cond))
		e.emitIndentedBody(n.Body)
	case *ast.For:
		e.emitFor(n)
	case *ast.FunctionDecl:
		e.emitFunctionDecl(n)
	case *ast.Return:
		e.emitReturn(n)
	case *ast.Print:
		e.emitPrint(n)
	case *ast.Input:
		e.emitInput(n)
	case *ast.ExpressionStmt:
		e.emitExpressionStmt(n)
	}
}

// emitIndentedBody emits s as the indented suite of a preceding header line,
// expanding a bare statement into a single-line block when it isn't already
// a Block.
func (e *Emitter) emitIndentedBody(s ast.Stmt) {
	e.depth++
	if blk, ok := s.(*ast.Block); ok {
		if len(blk.Stmts) == 0 {
			e.writeLine("pass")
		}
		for _, st := range blk.Stmts {
			e.emitStmt(st)
		}
	} else {
		e.emitStmt(s)
	}
	e.depth--
}

// emitBlockBody emits a Block encountered as a standalone statement (not a
// control-flow suite): a bare `{ ... }` simply inlines its statements.
func (e *Emitter) emitBlockBody(b *ast.Block) {
	if len(b.Stmts) == 0 {
		e.writeLine("pass")
		return
	}
	for _, st := range b.Stmts {
		e.emitStmt(st)
	}
}

func (e *Emitter) emitVarDecl(n *ast.VarDecl) {
	if n.Initializer != nil {
		e.writeLine("%s = %s", n.Name, e.expr(n.Initializer))
		return
	}
	e.writeLine("%s = %s", n.Name, types.Default(n.DeclaredType))
}

func (e *Emitter) emitIf(n *ast.If) {
	e.writeLine("if %s:", e.expr(n.Cond))
	e.emitIndentedBody(n.Then)
	e.emitElse(n.Else)
}

// emitElse renders an else branch, collapsing a nested senaose If into a
// Python `elif` chain rather than a nested `else: if`.
func (e *Emitter) emitElse(branch ast.Stmt) {
	if branch == nil {
		return
	}
	if nested, ok := branch.(*ast.If); ok {
		e.writeLine("elif %s:", e.expr(nested.Cond))
		e.emitIndentedBody(nested.Then)
		e.emitElse(nested.Else)
		return
	}
	e.writeLine("else:")
	e.emitIndentedBody(branch)
}

func (e *Emitter) emitFor(n *ast.For) {
	start := e.expr(n.Start)
	end := e.expr(n.End)
	bound := fmt.Sprintf("%s + 1", end)
	if lit, ok := n.End.(*ast.Literal); ok {
		if iv, ok := lit.Value.(int64); ok {
			bound = strconv.FormatInt(iv+1, 10)
		}
	}
	if n.Step != nil {
		e.writeLine("for %s in range(%s, %s, %s):", n.VarName, start, bound, e.expr(n.Step))
	} else {
		e.writeLine("for %s in range(%s, %s):", n.VarName, start, bound)
	}
	e.emitIndentedBody(n.Body)
}

func (e *Emitter) emitFunctionDecl(n *ast.FunctionDecl) {
	if n.Name == "principal" {
		e.sawPrincipal = true
	}
	names := make([]string, len(n.Params))
	for i, p := range n.Params {
		names[i] = p.Name
	}
	e.writeLine("def %s(%s):", n.Name, strings.Join(names, ", "))
	e.depth++
	if len(n.Body.Stmts) == 0 {
		e.writeLine("pass")
	}
	for _, st := range n.Body.Stmts {
		e.emitStmt(st)
	}
	e.depth--
	e.buf.WriteByte('\n')
}

// emitExpressionStmt special-cases a top-level assignment so it emits as a
// plain Python statement (`name = value`) instead of the walrus form used
// when an assignment appears nested inside a larger expression.
func (e *Emitter) emitExpressionStmt(n *ast.ExpressionStmt) {
	if assign, ok := n.Expr.(*ast.Assignment); ok {
		e.writeLine("%s = %s", assign.Name, e.expr(assign.Value))
		return
	}
	e.writeLine("%s", e.expr(n.Expr))
}

func (e *Emitter) emitReturn(n *ast.Return) {
	if n.Value == nil {
		e.writeLine("return")
		return
	}
	e.writeLine("return %s", e.expr(n.Value))
}

func (e *Emitter) emitPrint(n *ast.Print) {
	if len(n.Exprs) == 0 {
		e.writeLine(`print(sep="")`)
		return
	}
	parts := make([]string, len(n.Exprs))
	for i, ex := range n.Exprs {
		parts[i] = e.expr(ex)
	}
	e.writeLine(`print(%s, sep="")`, strings.Join(parts, ", "))
}

func (e *Emitter) emitInput(n *ast.Input) {
	if n.Prompt != nil {
		e.writeLine("%s = input(%s)", n.VarName, e.expr(n.Prompt))
		return
	}
	e.writeLine("%s = input()", n.VarName)
}

// expr renders an expression as a single Python fragment. Every binary,
// unary, and logical sub-expression is unconditionally parenthesized so
// precedence survives translation without replicating the grammar's
// precedence ladder in the target language.
func (e *Emitter) expr(x ast.Expr) string {
	switch n := x.(type) {
	case *ast.Literal:
		return literal(n)
	case *ast.Variable:
		return n.Name
	case *ast.Binary:
		return fmt.Sprintf("(%s %s %s)", e.expr(n.Left), binaryOps[n.Op], e.expr(n.Right))
	case *ast.Unary:
		if n.Op == token.NOT {
			return fmt.Sprintf("(not %s)", e.expr(n.Operand))
		}
		return fmt.Sprintf("(-%s)", e.expr(n.Operand))
	case *ast.Grouping:
		return fmt.Sprintf("(%s)", e.expr(n.Inner))
	case *ast.Assignment:
		// Used only in expression position (`x = e` as a statement is routed
		// through ExpressionStmt); Python assignment is not an expression, so
		// a walrus operator stands in for assignment-as-value.
		return fmt.Sprintf("(%s := %s)", n.Name, e.expr(n.Value))
	case *ast.Logical:
		return fmt.Sprintf("(%s %s %s)", e.expr(n.Left), logicalOps[n.Op], e.expr(n.Right))
	case *ast.Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = e.expr(a)
		}
		return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(args, ", "))
	case *ast.Index:
		return fmt.Sprintf("%s[%s]", e.expr(n.Object), e.expr(n.Idx))
	default:
		return ""
	}
}

func literal(n *ast.Literal) string {
	switch n.Kind {
	case ast.LitInt:
		return strconv.FormatInt(n.Value.(int64), 10)
	case ast.LitReal:
		return formatReal(n.Value.(float64))
	case ast.LitText:
		return pyString(n.Value.(string))
	case ast.LitBool:
		if n.Value.(bool) {
			return "True"
		}
		return "False"
	default:
		return "None"
	}
}

// formatReal mirrors Python's str(float): an integer-valued real still
// carries its fractional marker, so 2.0 emits as "2.0" rather than "2".
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEInN") {
		s += ".0"
	}
	return s
}

// pyString renders s as a Python double-quoted string literal with the
// standard escapes re-applied.
func pyString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
