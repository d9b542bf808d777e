// Package sema implements the semantic analyzer: a single traversal over
// the AST that computes an expression type for every node, enforces scope
// and type discipline, and accumulates diagnostics rather than aborting.
package sema

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/portugol-lang/portugol/internal/ast"
	"github.com/portugol-lang/portugol/internal/token"
	"github.com/portugol-lang/portugol/internal/types"
)

// funcContext tracks the signature of the function currently being
// traversed, for return-discipline checks.
type funcContext struct {
	name string
	sig  *types.FunctionSignature
}

// Analyzer holds the mutable state threaded through one analysis run: the
// symbol table, accumulated diagnostics, and the stack of enclosing
// function signatures (non-empty only while visiting a function body).
type Analyzer struct {
	Table        *SymbolTable
	errors       []*Error
	warnings     []*Warning
	funcStack    []*funcContext
	sawPrincipal bool
}

// Analyze runs the analyzer over a Program. Success (no emission-blocking
// failures) iff the returned error slice is empty.
func Analyze(prog *ast.Program) (ok bool, errs []*Error, warnings []*Warning) {
	a := &Analyzer{Table: NewSymbolTable()}
	for _, d := range prog.Decls {
		a.analyzeStmt(d)
	}
	if !a.sawPrincipal {
		a.warn(prog.Pos(), "funcao 'principal' nao foi encontrada")
	}
	return len(a.errors) == 0, a.errors, a.warnings
}

func (a *Analyzer) errorf(pos token.Position, format string, args ...any) {
	a.errors = append(a.errors, &Error{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (a *Analyzer) warn(pos token.Position, format string, args ...any) {
	a.warnings = append(a.warnings, &Warning{Message: fmt.Sprintf(format, args...), Pos: pos})
}

// suggest scores name against candidates and returns a "voce quis dizer"
// hint when a close match exists, or "" otherwise.
func suggest(name string, candidates []string) string {
	matches := fuzzy.RankFindFold(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	sort.Sort(matches)
	return fmt.Sprintf(" (voce quis dizer '%s'?)", matches[0].Target)
}

// --- statements ------------------------------------------------------

// analyzeStmt visits s and returns whether it unconditionally returns from
// the enclosing function (the "has_return" discipline from the spec).
func (a *Analyzer) analyzeStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.VarDecl:
		a.analyzeVarDecl(n)
		return false
	case *ast.FunctionDecl:
		a.analyzeFunctionDecl(n)
		return false
	case *ast.Block:
		a.Table.Push()
		defer a.Table.Pop()
		return a.analyzeStmtList(n.Stmts)
	case *ast.If:
		return a.analyzeIf(n)
	case *ast.While:
		a.checkCondition(n.Cond)
		a.analyzeStmt(n.Body)
		return false
	case *ast.For:
		a.analyzeFor(n)
		return false
	case *ast.Return:
		return a.analyzeReturn(n)
	case *ast.Print:
		for _, e := range n.Exprs {
			a.typeOf(e)
		}
		return false
	case *ast.Input:
		a.analyzeInput(n)
		return false
	case *ast.ExpressionStmt:
		a.typeOf(n.Expr)
		return false
	default:
		return false
	}
}

// analyzeStmtList runs analyzeStmt over a sequence, accumulating whether
// any statement unconditionally returns.
func (a *Analyzer) analyzeStmtList(stmts []ast.Stmt) bool {
	ret := false
	for _, s := range stmts {
		if a.analyzeStmt(s) {
			ret = true
		}
	}
	return ret
}

func (a *Analyzer) analyzeVarDecl(n *ast.VarDecl) {
	if existing, ok := a.Table.DeclaredInCurrent(n.Name); ok {
		a.errorf(n.P, "'%s' ja foi declarado na linha %d", n.Name, existing.Line)
	}

	var initType types.Type
	hasInit := n.Initializer != nil
	if hasInit {
		initType = a.typeOf(n.Initializer)
	}

	declared := n.DeclaredType
	hasDeclared := declared != types.Unknown

	var symType types.Type
	switch {
	case hasDeclared && hasInit:
		if !types.Compatible(declared, initType) {
			a.errorf(n.P, "tipo incompativel na inicializacao de '%s': esperado %s, recebeu %s", n.Name, declared, initType)
		}
		symType = declared
	case hasDeclared:
		symType = declared
	case hasInit:
		symType = initType
	default:
		symType = types.Unknown
	}
	if n.IsConst && !hasInit {
		a.errorf(n.P, "constante '%s' deve ser inicializada", n.Name)
	}

	category := CategoryVariable
	if n.IsConst {
		category = CategoryConstant
	}

	a.Table.Declare(&Symbol{
		Name:        n.Name,
		Type:        symType,
		Category:    category,
		Line:        n.P.Line,
		Column:      n.P.Column,
		Initialized: hasInit,
		IsConst:     n.IsConst,
	})
}

func (a *Analyzer) analyzeFunctionDecl(n *ast.FunctionDecl) {
	if n.Name == "principal" {
		a.sawPrincipal = true
	}

	if existing, ok := a.Table.DeclaredInCurrent(n.Name); ok {
		a.errorf(n.P, "'%s' ja foi declarado na linha %d", n.Name, existing.Line)
	}

	sig := &types.FunctionSignature{Return: n.ReturnType}
	for _, p := range n.Params {
		sig.Params = append(sig.Params, p.Type)
		sig.ParamNames = append(sig.ParamNames, p.Name)
	}

	a.Table.Declare(&Symbol{
		Name:      n.Name,
		Type:      types.Function,
		Category:  CategoryFunction,
		Line:      n.P.Line,
		Column:    n.P.Column,
		Signature: sig,
	})

	a.Table.Push()
	for _, p := range n.Params {
		a.Table.Declare(&Symbol{
			Name: p.Name, Type: p.Type, Category: CategoryParameter,
			Initialized: true, Line: n.P.Line, Column: n.P.Column,
		})
	}
	a.funcStack = append(a.funcStack, &funcContext{name: n.Name, sig: sig})

	guaranteed := a.analyzeStmtList(n.Body.Stmts)

	a.funcStack = a.funcStack[:len(a.funcStack)-1]
	a.Table.Pop()

	if n.ReturnType != types.Void && !guaranteed {
		a.warn(n.P, "funcao '%s' pode nao retornar um valor em todos os caminhos", n.Name)
	}
}

func (a *Analyzer) analyzeIf(n *ast.If) bool {
	a.checkCondition(n.Cond)
	thenRet := a.analyzeStmt(n.Then)
	if n.Else != nil {
		elseRet := a.analyzeStmt(n.Else)
		return thenRet && elseRet
	}
	return false
}

func (a *Analyzer) checkCondition(cond ast.Expr) {
	t := a.typeOf(cond)
	if t != types.Bool && t != types.Error {
		a.errorf(cond.Pos(), "condicao deve ser do tipo logico, recebeu %s", t)
	}
}

func (a *Analyzer) analyzeFor(n *ast.For) {
	startType := a.typeOf(n.Start)
	if startType != types.Error && !startType.Numeric() {
		a.errorf(n.Start.Pos(), "valor inicial de 'para' deve ser numerico, recebeu %s", startType)
	}
	endType := a.typeOf(n.End)
	if endType != types.Error && !endType.Numeric() {
		a.errorf(n.End.Pos(), "valor final de 'para' deve ser numerico, recebeu %s", endType)
	}
	if n.Step != nil {
		stepType := a.typeOf(n.Step)
		if stepType != types.Error && !stepType.Numeric() {
			a.errorf(n.Step.Pos(), "passo de 'para' deve ser numerico, recebeu %s", stepType)
		}
	}

	a.Table.Push()
	a.Table.Declare(&Symbol{
		Name: n.VarName, Type: types.Int, Category: CategoryVariable,
		Initialized: true, Line: n.P.Line, Column: n.P.Column,
	})
	a.analyzeStmt(n.Body)
	a.Table.Pop()
}

func (a *Analyzer) analyzeReturn(n *ast.Return) bool {
	if len(a.funcStack) == 0 {
		a.errorf(n.P, "'retorna' fora de uma funcao")
		if n.Value != nil {
			a.typeOf(n.Value)
		}
		return true
	}
	ctx := a.funcStack[len(a.funcStack)-1]
	if n.Value == nil {
		if ctx.sig.Return != types.Void {
			a.errorf(n.P, "funcao '%s' espera um valor de retorno do tipo %s", ctx.name, ctx.sig.Return)
		}
		return true
	}
	valType := a.typeOf(n.Value)
	if ctx.sig.Return == types.Void {
		a.errorf(n.P, "funcao '%s' e vazio e nao pode retornar um valor", ctx.name)
	} else if valType != types.Error && !types.Compatible(ctx.sig.Return, valType) {
		a.errorf(n.P, "retorno de '%s' incompativel: esperado %s, recebeu %s", ctx.name, ctx.sig.Return, valType)
	}
	return true
}

func (a *Analyzer) analyzeInput(n *ast.Input) {
	if n.Prompt != nil {
		pt := a.typeOf(n.Prompt)
		if pt != types.Error && pt != types.Text {
			a.errorf(n.Prompt.Pos(), "mensagem de 'leia' deve ser do tipo texto, recebeu %s", pt)
		}
	}
	sym, ok := a.Table.Lookup(n.VarName)
	if !ok {
		a.errorf(n.P, "variavel '%s' nao declarada%s", n.VarName, suggest(n.VarName, a.Table.Names()))
		return
	}
	if sym.IsConst {
		a.errorf(n.P, "nao e possivel ler para a constante '%s'", n.VarName)
		return
	}
	sym.Initialized = true
}

// --- expressions -------------------------------------------------------

func (a *Analyzer) typeOf(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.LitInt:
			n.Type = types.Int
		case ast.LitReal:
			n.Type = types.Real
		case ast.LitText:
			n.Type = types.Text
		case ast.LitBool:
			n.Type = types.Bool
		}
		return n.Type
	case *ast.Variable:
		return a.typeOfVariable(n)
	case *ast.Binary:
		return a.typeOfBinary(n)
	case *ast.Unary:
		return a.typeOfUnary(n)
	case *ast.Grouping:
		n.Type = a.typeOf(n.Inner)
		return n.Type
	case *ast.Assignment:
		return a.typeOfAssignment(n)
	case *ast.Logical:
		return a.typeOfLogical(n)
	case *ast.Call:
		return a.typeOfCall(n)
	case *ast.Index:
		return a.typeOfIndex(n)
	default:
		return types.Error
	}
}

func (a *Analyzer) typeOfVariable(n *ast.Variable) types.Type {
	sym, ok := a.Table.Lookup(n.Name)
	if !ok {
		a.errorf(n.P, "variavel '%s' nao declarada%s", n.Name, suggest(n.Name, a.Table.Names()))
		n.Type = types.Error
		return types.Error
	}
	if !sym.Initialized && sym.Category != CategoryFunction {
		a.warn(n.P, "uso de variavel '%s' antes de ser inicializada", n.Name)
	}
	n.Type = sym.Type
	return sym.Type
}

func (a *Analyzer) typeOfBinary(n *ast.Binary) types.Type {
	lt := a.typeOf(n.Left)
	rt := a.typeOf(n.Right)
	if lt == types.Error || rt == types.Error {
		n.Type = types.Error
		return types.Error
	}

	switch n.Op {
	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		if types.Compatible(lt, rt) {
			n.Type = types.Bool
			return types.Bool
		}
		a.errorf(n.P, "operandos incompativeis para '%s': %s e %s", n.Op, lt, rt)
		n.Type = types.Error
		return types.Error
	default: // arithmetic: + - * / % **
		if lt.Numeric() && rt.Numeric() {
			if n.Op == token.SLASH {
				n.Type = types.Real
			} else {
				n.Type = types.Promote(lt, rt)
			}
			return n.Type
		}
		if n.Op == token.PLUS && lt == types.Text && rt == types.Text {
			n.Type = types.Text
			return types.Text
		}
		a.errorf(n.P, "operandos incompativeis para '%s': %s e %s", n.Op, lt, rt)
		n.Type = types.Error
		return types.Error
	}
}

func (a *Analyzer) typeOfUnary(n *ast.Unary) types.Type {
	ot := a.typeOf(n.Operand)
	if ot == types.Error {
		n.Type = types.Error
		return types.Error
	}
	if n.Op == token.NOT {
		if ot == types.Bool {
			n.Type = types.Bool
			return types.Bool
		}
		a.errorf(n.P, "'nao' requer operando logico, recebeu %s", ot)
	} else { // MINUS
		if ot.Numeric() {
			n.Type = ot
			return ot
		}
		a.errorf(n.P, "'-' unario requer operando numerico, recebeu %s", ot)
	}
	n.Type = types.Error
	return types.Error
}

func (a *Analyzer) typeOfAssignment(n *ast.Assignment) types.Type {
	valType := a.typeOf(n.Value)
	sym, ok := a.Table.Lookup(n.Name)
	if !ok {
		a.errorf(n.P, "variavel '%s' nao declarada%s", n.Name, suggest(n.Name, a.Table.Names()))
		n.Type = types.Error
		return types.Error
	}
	if sym.IsConst {
		a.errorf(n.P, "atribuicao a constante '%s'", n.Name)
		n.Type = types.Error
		return types.Error
	}
	if valType != types.Error && !types.Compatible(sym.Type, valType) {
		a.errorf(n.P, "tipo incompativel na atribuicao a '%s': esperado %s, recebeu %s", n.Name, sym.Type, valType)
	}
	sym.Initialized = true
	n.Type = valType
	return valType
}

func (a *Analyzer) typeOfLogical(n *ast.Logical) types.Type {
	lt := a.typeOf(n.Left)
	rt := a.typeOf(n.Right)
	if lt == types.Error || rt == types.Error {
		n.Type = types.Error
		return types.Error
	}
	if lt == types.Bool && rt == types.Bool {
		n.Type = types.Bool
		return types.Bool
	}
	a.errorf(n.P, "operandos de '%s' devem ser do tipo logico", n.Op)
	n.Type = types.Error
	return types.Error
}

func (a *Analyzer) typeOfCall(n *ast.Call) types.Type {
	sym, ok := a.Table.Lookup(n.Callee)
	if !ok {
		a.errorf(n.P, "funcao '%s' nao declarada%s", n.Callee, suggest(n.Callee, a.Table.Names()))
		for _, arg := range n.Args {
			a.typeOf(arg)
		}
		n.Type = types.Error
		return types.Error
	}
	if sym.Category != CategoryFunction {
		a.errorf(n.P, "'%s' nao e uma funcao", n.Callee)
		for _, arg := range n.Args {
			a.typeOf(arg)
		}
		n.Type = types.Error
		return types.Error
	}

	sig := sym.Signature
	if len(n.Args) != len(sig.Params) {
		a.errorf(n.P, "funcao '%s' espera %d argumento(s), recebeu %d", n.Callee, len(sig.Params), len(n.Args))
		for _, arg := range n.Args {
			a.typeOf(arg)
		}
		n.Type = types.Error
		return types.Error
	}

	for i, arg := range n.Args {
		at := a.typeOf(arg)
		want := sig.Params[i]
		if want != types.Unknown && at != types.Error && !types.Compatible(want, at) {
			a.errorf(arg.Pos(), "argumento %d de '%s' tem tipo incompativel: esperado %s, recebeu %s", i+1, n.Callee, want, at)
		}
	}

	n.Type = sig.Return
	return sig.Return
}

func (a *Analyzer) typeOfIndex(n *ast.Index) types.Type {
	a.typeOf(n.Object)
	idxType := a.typeOf(n.Idx)
	if idxType != types.Error && idxType != types.Int && idxType != types.Unknown {
		a.errorf(n.Idx.Pos(), "indice deve ser do tipo inteiro, recebeu %s", idxType)
	}
	n.Type = types.Unknown
	return types.Unknown
}
