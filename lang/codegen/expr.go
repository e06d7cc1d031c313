package codegen

import (
	"ccompile/lang/ast"
	"ccompile/lang/token"
	"ccompile/lang/types"
)

// genExpr evaluates e, leaving exactly one 8-byte value on the stack.
func (g *Generator) genExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.NumExpr:
		g.genNum(e.Val)

	case *ast.VarExpr:
		g.genLoad(e, e.Type())

	case *ast.CastExpr:
		g.genExpr(e.X)
		g.pop("rax")
		g.truncate(e.Type())
		g.push("rax")

	case *ast.AddrExpr:
		g.genAddr(e.X)
		g.push("rax")

	case *ast.DerefExpr:
		g.genLoad(e, e.Type())

	case *ast.NotExpr:
		g.genExpr(e.X)
		g.pop("rax")
		g.emit("  cmp rax, 0")
		g.emit("  sete al")
		g.emit("  movzx rax, al")
		g.push("rax")

	case *ast.BitNotExpr:
		g.genExpr(e.X)
		g.pop("rax")
		g.emit("  not rax")
		g.push("rax")

	case *ast.BinaryExpr:
		g.genBinary(e)

	case *ast.AssignExpr:
		g.genAssign(e)

	case *ast.CondExpr:
		g.genCond(e)

	case *ast.CommaExpr:
		g.genExpr(e.X)
		g.emit("  add rsp, 8")
		g.genExpr(e.Y)

	case *ast.MemberExpr:
		g.genLoad(e, e.Type())

	case *ast.CallExpr:
		g.genCall(e)

	case *ast.StmtExpr:
		g.genStmtExpr(e)

	default:
		g.fail("internal: unhandled expression %T", e)
	}
}

func (g *Generator) genNum(v int64) {
	if v >= -(1<<31) && v < (1<<31) {
		g.emit("  push %d", v)
		return
	}
	// push only takes a 32-bit immediate; anything wider needs a scratch
	// register.
	g.emit("  movabs rax, %d", v)
	g.push("rax")
}

// genLoad evaluates an lvalue expression's address and, unless it names an
// array or struct (whose "value" is its own address), loads and re-pushes
// the pointed-to value.
func (g *Generator) genLoad(e ast.Expr, ty types.Type) {
	g.genAddr(e)
	if ty.Kind() == types.ARRAY || ty.Kind() == types.STRUCT {
		g.push("rax")
		return
	}
	g.load(ty)
	g.push("rax")
}

// truncate narrows/extends rax in place to match ty's width.
func (g *Generator) truncate(ty types.Type) {
	if ty == types.BoolType {
		g.emit("  cmp rax, 0")
		g.emit("  setne al")
		g.emit("  movzx rax, al")
		return
	}
	switch ty.Kind() {
	case types.VOID, types.ARRAY, types.STRUCT, types.FUNC:
		return
	}
	switch ty.Size() {
	case 1:
		g.emit("  movsx rax, al")
	case 2:
		g.emit("  movsx rax, ax")
	case 4:
		g.emit("  movsxd rax, eax")
	}
}

func (g *Generator) genAssign(e *ast.AssignExpr) {
	g.genAddr(e.Left)
	g.push("rax")
	g.genExpr(e.Right)
	g.pop("rdi")
	g.pop("rax")
	g.store(e.Left.Type())
	g.push("rdi")
}

var binOps = map[token.Kind]string{
	token.PLUS:  "add rax, rdi",
	token.MINUS: "sub rax, rdi",
	token.STAR:  "imul rax, rdi",
	token.AMP:   "and rax, rdi",
	token.PIPE:  "or rax, rdi",
	token.CARET: "xor rax, rdi",
}

var setccOps = map[token.Kind]string{
	token.EQ: "sete al",
	token.NE: "setne al",
	token.LT: "setl al",
	token.LE: "setle al",
	token.GT: "setg al",
	token.GE: "setge al",
}

func (g *Generator) genBinary(e *ast.BinaryExpr) {
	if e.Op == token.LOGAND || e.Op == token.LOGOR {
		g.genShortCircuit(e)
		return
	}

	g.genExpr(e.X)
	g.genExpr(e.Y)
	g.pop("rdi")
	g.pop("rax")

	switch {
	case e.Op == token.SLASH:
		g.emit("  cqo")
		g.emit("  idiv rdi")
	case e.Op == token.PERCENT:
		g.emit("  cqo")
		g.emit("  idiv rdi")
		g.emit("  mov rax, rdx")
	case e.Op == token.SHL:
		g.emit("  mov rcx, rdi")
		g.emit("  shl rax, cl")
	case e.Op == token.SHR:
		g.emit("  mov rcx, rdi")
		g.emit("  sar rax, cl")
	case binOps[e.Op] != "":
		g.emit("  " + binOps[e.Op])
	case setccOps[e.Op] != "":
		g.emit("  cmp rax, rdi")
		g.emit("  " + setccOps[e.Op])
		g.emit("  movzx rax, al")
	default:
		g.fail("internal: unhandled binary operator %s", e.Op.GoString())
	}
	g.push("rax")
}

// genShortCircuit evaluates lhs and, without evaluating rhs, jumps straight
// to the result if it already decides the outcome (false for &&, true for
// ||); otherwise it falls through to evaluate rhs and coerces that to 0/1.
func (g *Generator) genShortCircuit(e *ast.BinaryExpr) {
	seq := g.nextSeq()
	g.genExpr(e.X)
	g.pop("rax")
	g.emit("  cmp rax, 0")

	if e.Op == token.LOGAND {
		g.emit("  je .L.false.%d", seq)
	} else {
		g.emit("  jne .L.true.%d", seq)
	}

	g.genExpr(e.Y)
	g.pop("rax")
	g.emit("  cmp rax, 0")
	g.emit("  je .L.false.%d", seq)
	g.emit("  mov rax, 1")
	g.emit("  jmp .L.end.%d", seq)

	if e.Op == token.LOGOR {
		g.emit(".L.true.%d:", seq)
		g.emit("  mov rax, 1")
		g.emit("  jmp .L.end.%d", seq)
	}

	g.emit(".L.false.%d:", seq)
	g.emit("  mov rax, 0")
	g.emit(".L.end.%d:", seq)
	g.push("rax")
}

func (g *Generator) genCond(e *ast.CondExpr) {
	seq := g.nextSeq()
	g.genExpr(e.Cond)
	g.pop("rax")
	g.emit("  cmp rax, 0")
	g.emit("  je .L.else.%d", seq)
	g.genExpr(e.Then)
	g.emit("  jmp .L.end.%d", seq)
	g.emit(".L.else.%d:", seq)
	g.genExpr(e.Else)
	g.emit(".L.end.%d:", seq)
}

func (g *Generator) genCall(e *ast.CallExpr) {
	if len(e.Args) > len(argRegs) {
		g.fail("call to %q passes %d arguments, at most %d are supported", e.Name, len(e.Args), len(argRegs))
		return
	}
	for _, a := range e.Args {
		g.genExpr(a)
	}
	for i := len(e.Args) - 1; i >= 0; i-- {
		g.pop(argRegs[i].q)
	}

	// The call-site RSP-alignment dance: the ABI requires RSP%16==0 at the
	// point of `call`, but this stack machine's own push/pop traffic can
	// leave RSP misaligned by 8 when a call is reached. Test at runtime and
	// take whichever path restores 16-byte alignment.
	seq := g.nextSeq()
	g.emit("  mov rax, rsp")
	g.emit("  and rax, 15")
	g.emit("  jnz .L.call.%d", seq)
	g.emit("  mov rax, 0")
	g.emit("  call %s", e.Name)
	g.emit("  jmp .L.end.%d", seq)
	g.emit(".L.call.%d:", seq)
	g.emit("  sub rsp, 8")
	g.emit("  mov rax, 0")
	g.emit("  call %s", e.Name)
	g.emit("  add rsp, 8")
	g.emit(".L.end.%d:", seq)
	g.push("rax")
}

// genStmtExpr emits every statement but the last (a plain ExprStmt already
// discards its value per the normal statement rule) and, for the last,
// emits its expression's value without discarding it: that value is the
// statement expression's own result.
func (g *Generator) genStmtExpr(e *ast.StmtExpr) {
	stmts := e.Body.Stmts
	if len(stmts) == 0 {
		g.emit("  push 0")
		return
	}
	for _, s := range stmts[:len(stmts)-1] {
		g.genStmt(s)
	}
	last, ok := stmts[len(stmts)-1].(*ast.ExprStmt)
	if !ok || last.X == nil {
		g.fail("internal: statement expression does not end in a value-producing statement")
		g.emit("  push 0")
		return
	}
	g.genExpr(last.X)
}
