package ast

import (
	"fmt"

	"ccompile/lang/token"
	"ccompile/lang/types"
)

// Program is the root of a compiled translation unit: the ordered list of
// top-level function definitions and global variables, in declaration
// order (codegen emits functions in this order but sorts .data by name).
type Program struct {
	Funcs   []*FuncDecl
	Globals []*VarDecl
}

func (n *Program) Format(f fmt.State, verb rune) {
	format(f, verb, n, "program", map[string]int{"funcs": len(n.Funcs), "globals": len(n.Globals)})
}
func (n *Program) Span() (start, end token.Pos) {
	if len(n.Funcs) > 0 {
		start, _ = n.Funcs[0].Span()
		_, end = n.Funcs[len(n.Funcs)-1].Span()
	}
	return start, end
}
func (n *Program) Walk(v Visitor) {
	for _, g := range n.Globals {
		Walk(v, g)
	}
	for _, fn := range n.Funcs {
		Walk(v, fn)
	}
}

// VarDecl is a variable: a global, a local, or a function parameter. Locals
// and parameters carry a stack Offset (negative, relative to rbp) assigned
// once the enclosing function's frame size is known; globals carry an
// optional compile-time Init value instead.
type VarDecl struct {
	Pos      token.Pos
	Name     string
	Ty       types.Type
	IsGlobal bool
	IsStatic bool

	// Offset is the byte offset from rbp for a local/parameter, assigned by
	// the parser once the function's locals are all known.
	Offset int

	// InitData holds a global's compile-time initializer bytes (e.g. a
	// decoded string literal) or nil for a zero-initialized/extern global.
	InitData []byte
}

func (n *VarDecl) Format(f fmt.State, verb rune) {
	lbl := "var " + n.Name
	if n.Ty != nil {
		lbl += " " + n.Ty.String()
	}
	format(f, verb, n, lbl, nil)
}
func (n *VarDecl) Span() (start, end token.Pos) {
	return n.Pos, n.Pos + token.Pos(len(n.Name))
}
func (n *VarDecl) Walk(v Visitor) {}

// FuncDecl is a function definition: its signature, its locals (including
// parameters, which occupy the front of Locals), and its body.
type FuncDecl struct {
	Pos      token.Pos
	Name     string
	Ty       *types.Func
	Params   []*VarDecl
	Locals   []*VarDecl
	Body     *BlockStmt
	IsStatic bool

	// StackSize is the frame size in bytes, a multiple of 8, assigned once
	// all locals have been allocated offsets.
	StackSize int
}

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "func "+n.Name, map[string]int{"params": len(n.Params), "locals": len(n.Locals)})
}
func (n *FuncDecl) Span() (start, end token.Pos) {
	if n.Body != nil {
		_, end = n.Body.Span()
	} else {
		end = n.Pos
	}
	return n.Pos, end
}
func (n *FuncDecl) Walk(v Visitor) {
	if n.Body != nil {
		Walk(v, n.Body)
	}
}
