package ast

import (
	"fmt"

	"ccompile/lang/token"
	"ccompile/lang/types"
)

// Unwrap strips away any wrapping this AST doesn't introduce; kept for
// symmetry with call sites that expect an Unwrap helper, currently the
// identity function since this AST has no ParenExpr node (parentheses only
// affect precedence during parsing and leave no trace in the tree).
func Unwrap(e Expr) Expr { return e }

type (
	// NumExpr is an integer literal.
	NumExpr struct {
		ExprBase
		Val int64
	}

	// VarExpr references a variable: a local, a parameter, or a global
	// (including the synthetic globals created for string literals).
	VarExpr struct {
		ExprBase
		Decl *VarDecl
	}

	// CastExpr explicitly converts X to the expression's own attached type.
	CastExpr struct {
		ExprBase
		X Expr
	}

	// AddrExpr takes the address of X ("&x").
	AddrExpr struct {
		ExprBase
		X Expr
	}

	// DerefExpr dereferences a pointer X ("*x").
	DerefExpr struct {
		ExprBase
		X Expr
	}

	// NotExpr is the logical-not operator ("!x").
	NotExpr struct {
		ExprBase
		X Expr
	}

	// BitNotExpr is the bitwise-complement operator ("~x").
	BitNotExpr struct {
		ExprBase
		X Expr
	}

	// BinaryExpr is a binary operator expression: arithmetic, comparison,
	// bitwise, shift, or logical and/or. Op is the token kind of the
	// operator (token.PLUS, token.LOGAND, etc). Pointer arithmetic scaling
	// (p+1 meaning p+sizeof(*p)) is resolved by the parser before this node
	// is built, by wrapping the scalar side in a synthesized multiply.
	BinaryExpr struct {
		ExprBase
		Op   token.Kind
		X, Y Expr
	}

	// AssignExpr assigns Right to Left, yielding Right's value. Compound
	// assignment (+=, -=, ...) is desugared by the parser into
	// Left = Left <op> Right (to_assign in chibicc's terms), so this node
	// only ever represents plain "=".
	AssignExpr struct {
		ExprBase
		Left, Right Expr
	}

	// CondExpr is the ternary conditional operator ("cond ? then : els").
	CondExpr struct {
		ExprBase
		Cond, Then, Else Expr
	}

	// CommaExpr is the comma operator ("x, y"), evaluating X for effect and
	// yielding Y's value and type.
	CommaExpr struct {
		ExprBase
		X, Y Expr
	}

	// MemberExpr accesses a struct member of X (".", or "->" which the
	// parser desugars into DerefExpr+MemberExpr). Member is the resolved
	// types.Member describing the field's offset and type.
	MemberExpr struct {
		ExprBase
		X      Expr
		Member *types.Member
	}

	// CallExpr calls a function by name with the given arguments. This
	// subset of C has no function pointers, so calls always resolve to a
	// named, statically-known function.
	CallExpr struct {
		ExprBase
		Name string
		Args []Expr
		Func *FuncDecl // nil unless the callee's definition was parsed before the call
	}

	// StmtExpr is a GNU statement expression: "({ ... })". Its value and
	// type are those of the last statement in Body, which must be an
	// ExprStmt.
	StmtExpr struct {
		ExprBase
		Body *BlockStmt
	}
)

func (n *NumExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, fmt.Sprintf("%d", n.Val), nil)
}
func (n *NumExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *NumExpr) Walk(v Visitor)                {}

func (n *VarExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "var "+n.Decl.Name, nil)
}
func (n *VarExpr) Span() (start, end token.Pos) {
	return n.Pos, n.Pos + token.Pos(len(n.Decl.Name))
}
func (n *VarExpr) Walk(v Visitor) {}

func (n *CastExpr) Format(f fmt.State, verb rune) {
	lbl := "cast"
	if n.Ty != nil {
		lbl += " " + n.Ty.String()
	}
	format(f, verb, n, lbl, nil)
}
func (n *CastExpr) Span() (start, end token.Pos) {
	start = n.Pos
	_, end = n.X.Span()
	return start, end
}
func (n *CastExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *AddrExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "& (addr-of)", nil) }
func (n *AddrExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.Pos, end
}
func (n *AddrExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *DerefExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "* (deref)", nil) }
func (n *DerefExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.Pos, end
}
func (n *DerefExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *NotExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "!", nil) }
func (n *NotExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.Pos, end
}
func (n *NotExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *BitNotExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "~", nil) }
func (n *BitNotExpr) Span() (start, end token.Pos) {
	_, end = n.X.Span()
	return n.Pos, end
}
func (n *BitNotExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Op.GoString(), nil)
}
func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Y.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Y)
}

func (n *AssignExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "assign", nil) }
func (n *AssignExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *AssignExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *CondExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "cond ? :", nil) }
func (n *CondExpr) Span() (start, end token.Pos) {
	start, _ = n.Cond.Span()
	_, end = n.Else.Span()
	return start, end
}
func (n *CondExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}

func (n *CommaExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "comma", nil) }
func (n *CommaExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	_, end = n.Y.Span()
	return start, end
}
func (n *CommaExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Y)
}

func (n *MemberExpr) Format(f fmt.State, verb rune) {
	lbl := "member"
	if n.Member != nil {
		lbl += " ." + n.Member.Name
	}
	format(f, verb, n, lbl, nil)
}
func (n *MemberExpr) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.Pos
}
func (n *MemberExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call "+n.Name, map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	start = n.Pos
	end = n.Pos + token.Pos(len(n.Name))
	if len(n.Args) > 0 {
		_, end = n.Args[len(n.Args)-1].Span()
	}
	return start, end
}
func (n *CallExpr) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *StmtExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "stmt-expr", map[string]int{"stmts": len(n.Body.Stmts)})
}
func (n *StmtExpr) Span() (start, end token.Pos) { return n.Body.Span() }
func (n *StmtExpr) Walk(v Visitor)               { Walk(v, n.Body) }
