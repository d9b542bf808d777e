package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/portugol-lang/portugol/internal/ast"
	"github.com/portugol-lang/portugol/internal/lexer"
	"github.com/portugol-lang/portugol/internal/parser"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <source-file>",
		Short: "Print the token stream for a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}
			toks, err := lexer.Tokenize(source)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return fmt.Errorf("lex failed")
			}
			for _, t := range toks {
				fmt.Println(t.String())
			}
			return nil
		},
	}
}

func newASTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast <source-file>",
		Short: "Print the parsed syntax tree for a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}
			toks, err := lexer.Tokenize(source)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return fmt.Errorf("lex failed")
			}
			prog, errs := parser.Parse(toks)
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			if len(errs) > 0 {
				return fmt.Errorf("parse failed")
			}
			printProgram(os.Stdout, prog)
			return nil
		},
	}
}

// printProgram renders a Program as a tree, using the same guide characters
// diagnostics and plan displays elsewhere in this lineage use.
func printProgram(w *os.File, prog *ast.Program) {
	fmt.Fprintln(w, "Program")
	for i, d := range prog.Decls {
		printStmt(w, "", d, i == len(prog.Decls)-1)
	}
}

func printStmt(w *os.File, prefix string, s ast.Stmt, last bool) {
	branch, nextPrefix := guide(prefix, last)
	switch n := s.(type) {
	case *ast.VarDecl:
		kind := "var"
		if n.IsConst {
			kind = "const"
		}
		fmt.Fprintf(w, "%s%s %s(%s)\n", prefix, branch, kind, n.Name)
		if n.Initializer != nil {
			printExpr(w, nextPrefix, n.Initializer, true)
		}
	case *ast.FunctionDecl:
		fmt.Fprintf(w, "%s%sFunctionDecl(%s)\n", prefix, branch, n.Name)
		for i, st := range n.Body.Stmts {
			printStmt(w, nextPrefix, st, i == len(n.Body.Stmts)-1)
		}
	case *ast.Block:
		fmt.Fprintf(w, "%s%sBlock\n", prefix, branch)
		for i, st := range n.Stmts {
			printStmt(w, nextPrefix, st, i == len(n.Stmts)-1)
		}
	case *ast.If:
		fmt.Fprintf(w, "%s%sIf\n", prefix, branch)
		printExpr(w, nextPrefix, n.Cond, n.Else == nil)
		printStmt(w, nextPrefix, n.Then, n.Else == nil)
		if n.Else != nil {
			printStmt(w, nextPrefix, n.Else, true)
		}
	case *ast.While:
		fmt.Fprintf(w, "%s%sWhile\n", prefix, branch)
		printExpr(w, nextPrefix, n.Cond, false)
		printStmt(w, nextPrefix, n.Body, true)
	case *ast.For:
		fmt.Fprintf(w, "%s%sFor(%s)\n", prefix, branch, n.VarName)
		printStmt(w, nextPrefix, n.Body, true)
	case *ast.Return:
		fmt.Fprintf(w, "%s%sReturn\n", prefix, branch)
		if n.Value != nil {
			printExpr(w, nextPrefix, n.Value, true)
		}
	case *ast.Print:
		fmt.Fprintf(w, "%s%sPrint\n", prefix, branch)
		for i, e := range n.Exprs {
			printExpr(w, nextPrefix, e, i == len(n.Exprs)-1)
		}
	case *ast.Input:
		fmt.Fprintf(w, "%s%sInput(%s)\n", prefix, branch, n.VarName)
	case *ast.ExpressionStmt:
		fmt.Fprintf(w, "%s%sExpressionStmt\n", prefix, branch)
		printExpr(w, nextPrefix, n.Expr, true)
	default:
		fmt.Fprintf(w, "%s%s?\n", prefix, branch)
	}
}

func printExpr(w *os.File, prefix string, e ast.Expr, last bool) {
	branch, nextPrefix := guide(prefix, last)
	switch n := e.(type) {
	case *ast.Literal:
		fmt.Fprintf(w, "%s%sLiteral(%v)\n", prefix, branch, n.Value)
	case *ast.Variable:
		fmt.Fprintf(w, "%s%sVariable(%s)\n", prefix, branch, n.Name)
	case *ast.Binary:
		fmt.Fprintf(w, "%s%sBinary(%s)\n", prefix, branch, n.Op)
		printExpr(w, nextPrefix, n.Left, false)
		printExpr(w, nextPrefix, n.Right, true)
	case *ast.Unary:
		fmt.Fprintf(w, "%s%sUnary(%s)\n", prefix, branch, n.Op)
		printExpr(w, nextPrefix, n.Operand, true)
	case *ast.Grouping:
		fmt.Fprintf(w, "%s%sGrouping\n", prefix, branch)
		printExpr(w, nextPrefix, n.Inner, true)
	case *ast.Assignment:
		fmt.Fprintf(w, "%s%sAssignment(%s)\n", prefix, branch, n.Name)
		printExpr(w, nextPrefix, n.Value, true)
	case *ast.Logical:
		fmt.Fprintf(w, "%s%sLogical(%s)\n", prefix, branch, n.Op)
		printExpr(w, nextPrefix, n.Left, false)
		printExpr(w, nextPrefix, n.Right, true)
	case *ast.Call:
		fmt.Fprintf(w, "%s%sCall(%s)\n", prefix, branch, n.Callee)
		for i, a := range n.Args {
			printExpr(w, nextPrefix, a, i == len(n.Args)-1)
		}
	case *ast.Index:
		fmt.Fprintf(w, "%s%sIndex\n", prefix, branch)
		printExpr(w, nextPrefix, n.Object, false)
		printExpr(w, nextPrefix, n.Idx, true)
	default:
		fmt.Fprintf(w, "%s%s?\n", prefix, branch)
	}
}

func guide(prefix string, last bool) (branch, nextPrefix string) {
	if last {
		return "└─ ", prefix + "   "
	}
	return "├─ ", prefix + "│  "
}
