package parser_test

import (
	"testing"

	"ccompile/lang/ast"
	"ccompile/lang/diag"
	"ccompile/lang/parser"
	"ccompile/lang/token"
	"ccompile/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.Program, *diag.List) {
	t.Helper()
	fset := token.NewFileSet()
	errs := diag.NewList(fset)
	prog, _ := parser.ParseFile(fset, "test.c", []byte(src), errs)
	return prog, errs
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := parse(t, src)
	require.False(t, errs.HasErrors(), "unexpected parse errors")
	return prog
}

func TestParseGlobalAndFunction(t *testing.T) {
	prog := mustParse(t, "int g; int main() { return g; }")
	require.Len(t, prog.Globals, 1)
	assert.Equal(t, "g", prog.Globals[0].Name)
	assert.Equal(t, types.IntType, prog.Globals[0].Ty)

	require.Len(t, prog.Funcs, 1)
	fn := prog.Funcs[0]
	assert.Equal(t, "main", fn.Name)
	assert.Empty(t, fn.Params)
}

func TestParseFunctionParams(t *testing.T) {
	prog := mustParse(t, "int add(int a, int b) { return a + b; }")
	fn := prog.Funcs[0]
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)
}

func TestParseLocalOffsetsAreDistinct(t *testing.T) {
	prog := mustParse(t, "int main() { int a; int b; return 0; }")
	fn := prog.Funcs[0]
	require.Len(t, fn.Locals, 2)
	assert.NotEqual(t, fn.Locals[0].Offset, fn.Locals[1].Offset)
	assert.True(t, fn.Locals[0].Offset < 0)
	assert.True(t, fn.Locals[1].Offset < 0)
}

func TestParseStackSizeRoundedTo8(t *testing.T) {
	prog := mustParse(t, "int main() { char a; return 0; }")
	fn := prog.Funcs[0]
	assert.Equal(t, 0, fn.StackSize%8)
	assert.Equal(t, 8, fn.StackSize)
}

func TestParsePointerDeclarator(t *testing.T) {
	prog := mustParse(t, "int main() { int *p; int x; p = &x; return *p; }")
	fn := prog.Funcs[0]
	require.Len(t, fn.Locals, 2)
	_, isPtr := fn.Locals[0].Ty.(*types.Pointer)
	assert.True(t, isPtr)
}

func TestParseArrayDeclaratorAndElemType(t *testing.T) {
	prog := mustParse(t, "int main() { int a[3]; a[0] = 1; return a[0]; }")
	fn := prog.Funcs[0]
	arr, ok := fn.Locals[0].Ty.(*types.Array)
	require.True(t, ok)
	assert.Equal(t, 3, arr.Len)
	assert.Equal(t, types.IntType, arr.Base)
}

func TestParseStructMemberOffsets(t *testing.T) {
	prog := mustParse(t, "struct P { int x; int y; }; int main() { struct P p; p.y = 1; return p.y; }")
	fn := prog.Funcs[0]
	st, ok := fn.Locals[0].Ty.(*types.Struct)
	require.True(t, ok)
	require.Len(t, st.Members, 2)
	assert.Equal(t, 0, st.Members[0].Offset)
	assert.Equal(t, 4, st.Members[1].Offset)
}

func TestParseEnumConstantsFoldToNumExpr(t *testing.T) {
	prog := mustParse(t, "enum { A, B, C = 10, D }; int main() { return D; }")
	fn := prog.Funcs[0]
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	num, ok := ret.X.(*ast.NumExpr)
	require.True(t, ok)
	assert.Equal(t, int64(11), num.Val)
}

func TestParseTypedef(t *testing.T) {
	prog := mustParse(t, "typedef int myint; int main() { myint x; x = 1; return x; }")
	fn := prog.Funcs[0]
	assert.Equal(t, types.IntType, fn.Locals[0].Ty)
}

func TestParseStringLiteralBecomesGlobal(t *testing.T) {
	prog := mustParse(t, `int main() { return *"hi"; }`)
	require.Len(t, prog.Globals, 1)
	assert.Equal(t, []byte{'h', 'i', 0}, prog.Globals[0].InitData)
}

func TestParseIfElseShape(t *testing.T) {
	prog := mustParse(t, "int main() { if (1) return 1; else return 2; return 0; }")
	fn := prog.Funcs[0]
	ifStmt, ok := fn.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	assert.NotNil(t, ifStmt.Then)
	assert.NotNil(t, ifStmt.Else)
}

func TestParseForLoopShape(t *testing.T) {
	prog := mustParse(t, "int main() { int i; for (i = 0; i < 10; i = i + 1) ; return 0; }")
	fn := prog.Funcs[0]
	_, ok := fn.Body.Stmts[1].(*ast.ForStmt)
	assert.True(t, ok)
}

func TestParseSwitchCaseLabelsAttachToInnermostSwitch(t *testing.T) {
	prog := mustParse(t, `int main() {
		switch (1) {
		case 1: return 1;
		case 2: return 2;
		default: return 0;
		}
	}`)
	fn := prog.Funcs[0]
	sw, ok := fn.Body.Stmts[0].(*ast.SwitchStmt)
	require.True(t, ok)
	assert.Len(t, sw.Cases, 2)
	assert.NotNil(t, sw.Default)
}

func TestParseUndeclaredIdentifierIsError(t *testing.T) {
	_, errs := parse(t, "int main() { return x; }")
	assert.True(t, errs.HasErrors())
}

func TestParseScopeDisciplineUnresolvableAfterBlock(t *testing.T) {
	_, errs := parse(t, "int main() { { int x; x = 1; } return x; }")
	assert.True(t, errs.HasErrors())
}

func TestParseIncompleteGlobalTypeIsError(t *testing.T) {
	_, errs := parse(t, "struct S s;")
	assert.True(t, errs.HasErrors())
}

func TestParseSizeofConstantFolding(t *testing.T) {
	prog := mustParse(t, "int main() { return sizeof(long); }")
	fn := prog.Funcs[0]
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	num, ok := ret.X.(*ast.NumExpr)
	require.True(t, ok)
	assert.Equal(t, int64(8), num.Val)
}

func TestParsePointerArithmeticScalesByElementSize(t *testing.T) {
	prog := mustParse(t, "int main() { int *p; int x; x = p + 1; return 0; }")
	fn := prog.Funcs[0]
	assign := fn.Body.Stmts[2].(*ast.ExprStmt).X.(*ast.AssignExpr)
	add, ok := assign.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, add.Op)
	scaled, ok := add.Y.(*ast.BinaryExpr)
	require.True(t, ok, "scaled offset should be a multiply by the pointee size")
	assert.Equal(t, token.STAR, scaled.Op)
	n, ok := scaled.Y.(*ast.NumExpr)
	require.True(t, ok)
	assert.Equal(t, int64(4), n.Val)
}

func TestParseCommaOperator(t *testing.T) {
	prog := mustParse(t, "int main() { int a; return (a = 1, a + 1); }")
	fn := prog.Funcs[0]
	ret := fn.Body.Stmts[1].(*ast.ReturnStmt)
	_, ok := ret.X.(*ast.CommaExpr)
	assert.True(t, ok)
}
