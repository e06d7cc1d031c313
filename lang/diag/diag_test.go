package diag_test

import (
	"bytes"
	"testing"

	"ccompile/lang/diag"
	"ccompile/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFile(t *testing.T, fs *token.FileSet, name, src string) *token.File {
	t.Helper()
	f := fs.AddFile(name, -1, len(src))
	f.SetContent([]byte(src))
	for i, b := range []byte(src) {
		if b == '\n' {
			f.AddLine(i + 1)
		}
	}
	return f
}

func TestListErrSortedAndCollated(t *testing.T) {
	fs := token.NewFileSet()
	f := newFile(t, fs, "t.c", "int x;\nint y\n")

	l := diag.NewList(fs)
	l.Error(f.Pos(11), "expected ';'")
	l.Error(f.Pos(0), "redeclaration")
	require.True(t, l.HasErrors())
	l.Sort()

	err := l.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redeclaration")
	assert.Contains(t, err.Error(), "expected ';'")
}

func TestWarnDoesNotFailErr(t *testing.T) {
	fs := token.NewFileSet()
	f := newFile(t, fs, "t.c", "foo();\n")

	l := diag.NewList(fs)
	l.Warn(f.Pos(0), "implicit declaration of function 'foo'")
	assert.False(t, l.HasErrors())
	assert.NoError(t, l.Err())
}

func TestPrintCaret(t *testing.T) {
	fs := token.NewFileSet()
	f := newFile(t, fs, "t.c", "int main(){ return x; }\n")

	l := diag.NewList(fs)
	l.Error(f.Pos(20), "undefined: x")

	var buf bytes.Buffer
	diag.PrintCaret(&buf, fs, l)

	out := buf.String()
	assert.Contains(t, out, "t.c:1:21")
	assert.Contains(t, out, "int main(){ return x; }")
	assert.Contains(t, out, "undefined: x")
}
