// Package ast defines the typed abstract syntax tree produced by the
// parser: declarations (functions, global and local variables) and the
// statement/expression trees that make up function bodies. Every node
// carries its source Pos for diagnostics and, for expressions, the
// types.Type attached once its operands are known.
//
// The Node/Visitor/Walk/Printer machinery mirrors the teacher's lang/ast
// package: nodes implement fmt.Formatter for a compact one-line
// description, Span() for source ranges, and Walk() to drive a Visitor.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"ccompile/lang/token"
	"ccompile/lang/types"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements fmt.Formatter so it can print a one-line
	// description of itself via the %v or %s verb. The '#' flag additionally
	// prints child-count information where relevant.
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk visits the node's direct children, implementing the Visitor
	// pattern together with the package-level Walk function.
	Walk(v Visitor)
}

// Expr represents a typed expression.
type Expr interface {
	Node
	expr()

	// Type returns the expression's attached type. It is only valid to call
	// after the parser has finished building the expression.
	Type() types.Type
	// SetType attaches ty as the expression's type.
	SetType(ty types.Type)
}

// Stmt represents a statement.
type Stmt interface {
	Node
	stmt()
}

// ExprBase is embedded by every Expr implementation to provide the common
// Pos and Ty fields along with Type/SetType.
type ExprBase struct {
	Pos token.Pos
	Ty  types.Type
}

func (b *ExprBase) Type() types.Type     { return b.Ty }
func (b *ExprBase) SetType(ty types.Type) { b.Ty = ty }
func (b *ExprBase) expr()                {}

// StmtBase is embedded by every Stmt implementation to provide the common
// Pos field.
type StmtBase struct {
	Pos token.Pos
}

func (b *StmtBase) stmt() {}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
