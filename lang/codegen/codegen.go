// Package codegen translates a typed ast.Program into x86-64 assembly text
// in Intel syntax. It is a stack-machine translator: every expression pushes
// exactly one 8-byte value, every statement leaves the stack pointer where
// it found it.
//
// Grounded on the teacher's lang/compiler package shape (a pcomp-per-program,
// fcomp-per-function split, each holding its own compile-time state) and on
// lang/machine's per-opcode switch dispatch, re-purposed to emit text
// instead of bytecode: there is no runtime VM in this system, only a single
// assembly-text output pass (see DESIGN.md for why lang/machine itself isn't
// carried forward as a component).
package codegen

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"

	"ccompile/lang/ast"
	"ccompile/lang/types"
)

// argRegs are the System V AMD64 integer argument registers, in order; this
// subset never passes more than six scalar arguments.
var argRegs = [6]reg{
	{"rdi", "edi", "di", "dil"},
	{"rsi", "esi", "si", "sil"},
	{"rdx", "edx", "dx", "dl"},
	{"rcx", "ecx", "cx", "cl"},
	{"r8", "r8d", "r8w", "r8b"},
	{"r9", "r9d", "r9w", "r9b"},
}

// reg names one register at its four usable widths.
type reg struct{ q, d, w, b string }

func (r reg) sized(size int) string {
	switch size {
	case 1:
		return r.b
	case 2:
		return r.w
	case 4:
		return r.d
	default:
		return r.q
	}
}

var raxReg = reg{"rax", "eax", "ax", "al"}
var rdiReg = argRegs[0]

// Generator holds the state for one Program compilation: the output writer,
// the monotonic label counter shared across every function (the spec calls
// this out explicitly as process-wide mutable state), and the error sink.
type Generator struct {
	w   *bufio.Writer
	seq int

	curFunc string

	breakLabels    []string
	continueLabels []string

	err error
}

// Generate writes prog as assembly text to w. The returned error is the
// first codegen-time error encountered (a break or continue outside any
// enclosing loop or switch, a call with more than six arguments, a function
// with more than six parameters, or an internal unhandled-node error);
// generation does not stop at that error, and the whole output is still
// flushed. goto targets are not checked here.
func Generate(w io.Writer, prog *ast.Program) error {
	g := &Generator{w: bufio.NewWriter(w)}
	g.emit(".intel_syntax noprefix")
	g.genData(prog.Globals)
	g.emit(".text")
	for _, fn := range prog.Funcs {
		g.genFunc(fn)
	}
	if ferr := g.w.Flush(); ferr != nil && g.err == nil {
		g.err = ferr
	}
	return g.err
}

func (g *Generator) emit(format string, args ...any) {
	fmt.Fprintf(g.w, format+"\n", args...)
}

func (g *Generator) fail(format string, args ...any) {
	if g.err == nil {
		g.err = fmt.Errorf(format, args...)
	}
}

func (g *Generator) nextSeq() int {
	g.seq++
	return g.seq
}

// ---- global data ----

// genData emits every global sorted by name rather than in declaration
// order: the order has no effect on the compiled program (each global gets
// its own unique label) but a stable, sorted order makes golden-file output
// reproducible regardless of how the parser happened to collect them (string
// literals, for instance, are appended to the list as they're encountered
// deep inside expression parsing).
func (g *Generator) genData(globals []*ast.VarDecl) {
	sorted := slices.Clone(globals)
	slices.SortFunc(sorted, func(a, b *ast.VarDecl) int { return strings.Compare(a.Name, b.Name) })

	g.emit(".data")
	for _, v := range sorted {
		if !v.IsStatic {
			g.emit(".global %s", v.Name)
		}
		g.emit("%s:", v.Name)
		if v.InitData != nil {
			for _, b := range v.InitData {
				g.emit("  .byte %d", b)
			}
			continue
		}
		g.emit("  .zero %d", v.Ty.Size())
	}
}

// ---- functions ----

func (g *Generator) genFunc(fn *ast.FuncDecl) {
	g.curFunc = fn.Name
	if !fn.IsStatic {
		g.emit(".global %s", fn.Name)
	}
	g.emit("%s:", fn.Name)
	g.emit("  push rbp")
	g.emit("  mov rbp, rsp")
	g.emit("  sub rsp, %d", fn.StackSize)

	for i, p := range fn.Params {
		if i >= len(argRegs) {
			g.fail("function %q has more than %d parameters", fn.Name, len(argRegs))
			break
		}
		g.emit("  lea rax, [rbp-%d]", -p.Offset)
		g.storeFrom(p.Ty, argRegs[i])
	}

	g.genStmt(fn.Body)

	g.emit(".L.return.%s:", fn.Name)
	g.emit("  mov rsp, rbp")
	g.emit("  pop rbp")
	g.emit("  ret")
}

// ---- addresses and loads/stores ----

// genAddr evaluates an lvalue, leaving its address in rax.
func (g *Generator) genAddr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.VarExpr:
		if e.Decl.IsGlobal {
			g.emit("  lea rax, [rip+%s]", e.Decl.Name)
		} else {
			g.emit("  lea rax, [rbp-%d]", -e.Decl.Offset)
		}
	case *ast.DerefExpr:
		g.genExpr(e.X)
		g.pop("rax")
	case *ast.MemberExpr:
		g.genAddr(e.X)
		if e.Member.Offset != 0 {
			g.emit("  add rax, %d", e.Member.Offset)
		}
	default:
		g.fail("internal: %T is not an lvalue", e)
	}
}

// load reads from [rax] into rax, sign/zero-extending to 8 bytes per ty's
// size. An array's "value" is its own address, so loading one is a no-op.
func (g *Generator) load(ty types.Type) {
	if ty.Kind() == types.ARRAY || ty.Kind() == types.STRUCT {
		return
	}
	if ty == types.BoolType {
		g.emit("  movzx eax, byte ptr [rax]")
		return
	}
	switch ty.Size() {
	case 1:
		g.emit("  movsx rax, byte ptr [rax]")
	case 2:
		g.emit("  movsx rax, word ptr [rax]")
	case 4:
		g.emit("  movsxd rax, dword ptr [rax]")
	default:
		g.emit("  mov rax, [rax]")
	}
}

// store writes rdi to [rax], sized per ty, coercing to 0/1 first for _Bool.
func (g *Generator) store(ty types.Type) {
	if ty == types.BoolType {
		g.emit("  cmp rdi, 0")
		g.emit("  setne dil")
		g.emit("  movzx rdi, dil")
	}
	g.emit("  mov [rax], %s", rdiReg.sized(ty.Size()))
}

// storeFrom writes a parameter register to [rax], used only by the
// prologue where the source register isn't always rdi.
func (g *Generator) storeFrom(ty types.Type, r reg) {
	if ty == types.BoolType {
		g.emit("  cmp %s, 0", r.q)
		g.emit("  setne %s", r.b)
		g.emit("  movzx %s, %s", r.q, r.b)
	}
	g.emit("  mov [rax], %s", r.sized(ty.Size()))
}

func (g *Generator) push(r string) { g.emit("  push %s", r) }
func (g *Generator) pop(r string)  { g.emit("  pop %s", r) }

// ---- statements ----

func (g *Generator) genStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.BlockStmt:
		for _, c := range s.Stmts {
			g.genStmt(c)
		}
	case *ast.ExprStmt:
		if s.X != nil {
			g.genExpr(s.X)
			g.emit("  add rsp, 8")
		}
	case *ast.ReturnStmt:
		if s.X != nil {
			g.genExpr(s.X)
			g.pop("rax")
		}
		g.emit("  jmp .L.return.%s", g.curFunc)
	case *ast.IfStmt:
		g.genIf(s)
	case *ast.WhileStmt:
		g.genWhile(s)
	case *ast.ForStmt:
		g.genFor(s)
	case *ast.DoStmt:
		g.genDo(s)
	case *ast.SwitchStmt:
		g.genSwitch(s)
	case *ast.CaseStmt:
		g.emit(".L.case.%d:", s.Label)
		g.genStmt(s.Body)
	case *ast.LabelStmt:
		g.emit(".L.label.%s.%s:", g.curFunc, s.Name)
		g.genStmt(s.Body)
	case *ast.GotoStmt:
		g.emit("  jmp .L.label.%s.%s", g.curFunc, s.Name)
	case *ast.BreakStmt:
		if len(g.breakLabels) == 0 {
			g.fail("break statement not within a loop or switch")
			return
		}
		g.emit("  jmp %s", g.breakLabels[len(g.breakLabels)-1])
	case *ast.ContinueStmt:
		if len(g.continueLabels) == 0 {
			g.fail("continue statement not within a loop")
			return
		}
		g.emit("  jmp %s", g.continueLabels[len(g.continueLabels)-1])
	case *ast.DeclStmt:
		for _, init := range s.Inits {
			g.genExpr(init)
			g.emit("  add rsp, 8")
		}
	default:
		g.fail("internal: unhandled statement %T", s)
	}
}

func (g *Generator) genIf(s *ast.IfStmt) {
	seq := g.nextSeq()
	s.Seq = seq
	g.genExpr(s.Cond)
	g.pop("rax")
	g.emit("  cmp rax, 0")
	if s.Else == nil {
		g.emit("  je .L.end.%d", seq)
		g.genStmt(s.Then)
		g.emit(".L.end.%d:", seq)
		return
	}
	g.emit("  je .L.else.%d", seq)
	g.genStmt(s.Then)
	g.emit("  jmp .L.end.%d", seq)
	g.emit(".L.else.%d:", seq)
	g.genStmt(s.Else)
	g.emit(".L.end.%d:", seq)
}

func (g *Generator) pushLoop(breakLabel, continueLabel string) {
	g.breakLabels = append(g.breakLabels, breakLabel)
	g.continueLabels = append(g.continueLabels, continueLabel)
}

func (g *Generator) popLoop() {
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]
	g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]
}

func (g *Generator) genWhile(s *ast.WhileStmt) {
	seq := g.nextSeq()
	s.Seq = seq
	begin := fmt.Sprintf(".L.begin.%d", seq)
	end := fmt.Sprintf(".L.end.%d", seq)

	g.emit("%s:", begin)
	g.genExpr(s.Cond)
	g.pop("rax")
	g.emit("  cmp rax, 0")
	g.emit("  je %s", end)

	g.pushLoop(end, begin)
	g.genStmt(s.Body)
	g.popLoop()

	g.emit("  jmp %s", begin)
	g.emit("%s:", end)
}

func (g *Generator) genFor(s *ast.ForStmt) {
	seq := g.nextSeq()
	s.Seq = seq
	begin := fmt.Sprintf(".L.begin.%d", seq)
	cont := fmt.Sprintf(".L.continue.%d", seq)
	end := fmt.Sprintf(".L.end.%d", seq)

	if s.Init != nil {
		g.genStmt(s.Init)
	}
	g.emit("%s:", begin)
	if s.Cond != nil {
		g.genExpr(s.Cond)
		g.pop("rax")
		g.emit("  cmp rax, 0")
		g.emit("  je %s", end)
	}

	g.pushLoop(end, cont)
	g.genStmt(s.Body)
	g.popLoop()

	g.emit("%s:", cont)
	if s.Inc != nil {
		g.genExpr(s.Inc)
		g.emit("  add rsp, 8")
	}
	g.emit("  jmp %s", begin)
	g.emit("%s:", end)
}

func (g *Generator) genDo(s *ast.DoStmt) {
	seq := g.nextSeq()
	s.Seq = seq
	begin := fmt.Sprintf(".L.begin.%d", seq)
	cont := fmt.Sprintf(".L.continue.%d", seq)
	end := fmt.Sprintf(".L.end.%d", seq)

	g.emit("%s:", begin)
	g.pushLoop(end, cont)
	g.genStmt(s.Body)
	g.popLoop()

	g.emit("%s:", cont)
	g.genExpr(s.Cond)
	g.pop("rax")
	g.emit("  cmp rax, 0")
	g.emit("  jne %s", begin)
	g.emit("%s:", end)
}

// genSwitch assigns the switch's own seq and every case/default label's seq
// (the parser leaves these at zero; the spec describes the label counter as
// process-wide state advanced by code generation, not by parsing).
func (g *Generator) genSwitch(s *ast.SwitchStmt) {
	s.Seq = g.nextSeq()
	end := fmt.Sprintf(".L.end.%d", s.Seq)

	for _, c := range s.Cases {
		c.Label = g.nextSeq()
	}
	if s.Default != nil {
		s.Default.Label = g.nextSeq()
	}

	g.genExpr(s.Cond)
	g.pop("rax")
	for _, c := range s.Cases {
		g.emit("  cmp rax, %d", c.Val)
		g.emit("  je .L.case.%d", c.Label)
	}
	if s.Default != nil {
		g.emit("  jmp .L.case.%d", s.Default.Label)
	} else {
		g.emit("  jmp %s", end)
	}

	// A switch introduces a new break target but not a new continue target:
	// continue inside a switch's body still reaches the enclosing loop.
	g.breakLabels = append(g.breakLabels, end)
	g.genStmt(s.Body)
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]

	g.emit("%s:", end)
}
