package token_test

import (
	"testing"

	"ccompile/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSetPosition(t *testing.T) {
	fs := token.NewFileSet()
	src := []byte("int x;\nint y;\n")
	f := fs.AddFile("test.c", -1, len(src))
	for i, b := range src {
		if b == '\n' {
			f.AddLine(i + 1)
		}
	}

	pos := f.Pos(0)
	got := f.Position(pos)
	assert.Equal(t, 1, got.Line)
	assert.Equal(t, 1, got.Column)

	pos2 := f.Pos(7) // 'i' of second "int"
	got2 := f.Position(pos2)
	assert.Equal(t, 2, got2.Line)
	assert.Equal(t, 1, got2.Column)

	require.Same(t, f, fs.File(pos))
}

func TestFormatPos(t *testing.T) {
	fs := token.NewFileSet()
	src := []byte("abc\ndef\n")
	f := fs.AddFile("x.c", -1, len(src))
	for i, b := range src {
		if b == '\n' {
			f.AddLine(i + 1)
		}
	}

	p := f.Pos(4) // 'd'
	assert.Equal(t, "x.c:2:1", token.FormatPos(token.PosLong, f, p, true))
	assert.Equal(t, "4", token.FormatPos(token.PosOffsets, f, p, true))
}

func TestMultipleFilesDisjoint(t *testing.T) {
	fs := token.NewFileSet()
	f1 := fs.AddFile("a.c", -1, 10)
	f2 := fs.AddFile("b.c", -1, 10)

	assert.Same(t, f1, fs.File(f1.Pos(5)))
	assert.Same(t, f2, fs.File(f2.Pos(5)))
	assert.NotEqual(t, f1.Pos(5), f2.Pos(5))
}
