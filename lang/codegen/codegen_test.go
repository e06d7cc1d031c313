package codegen_test

import (
	"strings"
	"testing"

	"ccompile/lang/codegen"
	"ccompile/lang/diag"
	"ccompile/lang/parser"
	"ccompile/lang/token"
)

// compile parses src and generates its assembly text, failing the test on
// any parse or codegen error.
func compile(t *testing.T, src string) string {
	t.Helper()
	fset := token.NewFileSet()
	errs := diag.NewList(fset)
	prog, err := parser.ParseFile(fset, "test.c", []byte(src), errs)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var sb strings.Builder
	if err := codegen.Generate(&sb, prog); err != nil {
		t.Fatalf("codegen error: %v", err)
	}
	return sb.String()
}

func contains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q; got:\n%s", want, out)
	}
}

func TestGenerateHeader(t *testing.T) {
	out := compile(t, "int main() { return 0; }")
	contains(t, out, ".intel_syntax noprefix")
	contains(t, out, ".data")
	contains(t, out, ".text")
	contains(t, out, ".global main")
	contains(t, out, "main:")
}

func TestGenerateReturnConstant(t *testing.T) {
	out := compile(t, "int main() { return 42; }")
	contains(t, out, "  push 42")
	contains(t, out, "  jmp .L.return.main")
	contains(t, out, ".L.return.main:")
	contains(t, out, "  mov rsp, rbp")
	contains(t, out, "  pop rbp")
	contains(t, out, "  ret")
}

func TestGenerateArithmetic(t *testing.T) {
	out := compile(t, "int main() { return 1 + 2 * 3; }")
	contains(t, out, "  imul rax, rdi")
	contains(t, out, "  add rax, rdi")
}

func TestGenerateLocalVariable(t *testing.T) {
	out := compile(t, "int main() { int x; x = 5; return x; }")
	contains(t, out, "  lea rax, [rbp-4]")
	contains(t, out, "  mov [rax], edi")
}

func TestGenerateGlobalVariable(t *testing.T) {
	out := compile(t, "int g; int main() { g = 1; return g; }")
	contains(t, out, ".global g")
	contains(t, out, "g:")
	contains(t, out, "  .zero 4")
	contains(t, out, "  lea rax, [rip+g]")
}

func TestGenerateStringLiteral(t *testing.T) {
	out := compile(t, `int main() { char *p; p = "hi"; return 0; }`)
	contains(t, out, ".L.data.0:")
	contains(t, out, "  .byte 104")
	contains(t, out, "  .byte 105")
	contains(t, out, "  .byte 0")
}

func TestGenerateIfElse(t *testing.T) {
	out := compile(t, "int main() { if (1) return 1; else return 2; }")
	contains(t, out, "  je .L.else.")
	contains(t, out, "  jmp .L.end.")
}

func TestGenerateWhileLoop(t *testing.T) {
	out := compile(t, "int main() { int i; i = 0; while (i < 10) i = i + 1; return i; }")
	contains(t, out, ".L.begin.")
	contains(t, out, "  setl al")
	contains(t, out, ".L.end.")
}

func TestGenerateForLoopContinue(t *testing.T) {
	out := compile(t, `
int main() {
	int i;
	int sum;
	sum = 0;
	for (i = 0; i < 10; i = i + 1) {
		if (i == 5) continue;
		sum = sum + i;
	}
	return sum;
}`)
	contains(t, out, ".L.continue.")
	contains(t, out, "  jmp .L.continue.")
}

func TestGenerateBreakInSwitchTargetsSwitchEnd(t *testing.T) {
	// break inside the switch must target the switch's own end label, while
	// a continue inside it (if present) would still target the loop.
	out := compile(t, `
int main() {
	int i;
	for (i = 0; i < 3; i = i + 1) {
		switch (i) {
		case 0:
			break;
		default:
			break;
		}
	}
	return i;
}`)
	contains(t, out, ".L.case.")
	// the for loop takes seq 1 and the switch seq 2, so both breaks jump to
	// the switch's end label rather than the loop's .L.end.1.
	contains(t, out, "  jmp .L.end.2")
}

func TestGenerateFunctionCall(t *testing.T) {
	out := compile(t, `
int add(int a, int b) { return a + b; }
int main() { return add(1, 2); }`)
	contains(t, out, "  pop rsi")
	contains(t, out, "  pop rdi")
	contains(t, out, "  call add")
}

func TestGenerateStructMember(t *testing.T) {
	out := compile(t, `
struct point { int x; int y; };
int main() {
	struct point p;
	p.x = 1;
	p.y = 2;
	return p.x + p.y;
}`)
	contains(t, out, "  add rax, 4")
}

func TestGenerateSizeofAndCast(t *testing.T) {
	out := compile(t, "int main() { return (int)sizeof(long); }")
	contains(t, out, "  push 8")
}

func TestGeneratePointerArithmeticScaling(t *testing.T) {
	out := compile(t, `
int main() {
	int arr[4];
	int *p;
	p = arr;
	p = p + 1;
	return *p;
}`)
	contains(t, out, "  push 4")
	contains(t, out, "  imul rax, rdi")
}

func TestGenerateCommaOperator(t *testing.T) {
	out := compile(t, "int main() { int x; return (x = 1, x = 2); }")
	contains(t, out, "  add rsp, 8")
}

func TestGenerateStatementExpression(t *testing.T) {
	out := compile(t, "int main() { return ({ int x; x = 3; x + 1; }); }")
	contains(t, out, "  add rax, rdi")
}

func TestGenerateLogicalShortCircuit(t *testing.T) {
	out := compile(t, "int main() { return 1 && 0; }")
	contains(t, out, ".L.false.")
	contains(t, out, "  je .L.false.")
}

func TestGenerateGotoLabel(t *testing.T) {
	out := compile(t, `
int main() {
	goto done;
	return 1;
done:
	return 2;
}`)
	contains(t, out, "  jmp .L.label.main.done")
	contains(t, out, ".L.label.main.done:")
}
