package scanner_test

import (
	"testing"

	"ccompile/lang/diag"
	"ccompile/lang/scanner"
	"ccompile/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]token.Kind, []token.Value, *diag.List) {
	t.Helper()
	fset := token.NewFileSet()
	f := fset.AddFile("test.c", -1, len(src))
	errs := diag.NewList(fset)

	var sc scanner.Scanner
	sc.Init(f, []byte(src), errs)

	var kinds []token.Kind
	var vals []token.Value
	for {
		var v token.Value
		k := sc.Scan(&v)
		kinds = append(kinds, k)
		vals = append(vals, v)
		if k == token.EOF {
			break
		}
	}
	return kinds, vals, errs
}

func TestScanKeywordsAndIdents(t *testing.T) {
	kinds, vals, errs := scanAll(t, "int x = foo_bar;")
	require.False(t, errs.HasErrors())
	require.Equal(t, []token.Kind{token.INT, token.IDENT, token.ASSIGN, token.IDENT, token.SEMI, token.EOF}, kinds)
	assert.Equal(t, "x", vals[1].Raw)
	assert.Equal(t, "foo_bar", vals[3].Raw)
}

func TestScanPunctuators(t *testing.T) {
	kinds, _, errs := scanAll(t, "a+=1; b<<=2; c->d; e--; f==g; h!=i; j&&k; l||m;")
	require.False(t, errs.HasErrors())
	want := []token.Kind{
		token.IDENT, token.ADDEQ, token.NUM, token.SEMI,
		token.IDENT, token.SHLEQ, token.NUM, token.SEMI,
		token.IDENT, token.ARROW, token.IDENT, token.SEMI,
		token.IDENT, token.DEC, token.SEMI,
		token.IDENT, token.EQ, token.IDENT, token.SEMI,
		token.IDENT, token.NE, token.IDENT, token.SEMI,
		token.IDENT, token.LOGAND, token.IDENT, token.SEMI,
		token.IDENT, token.LOGOR, token.IDENT, token.SEMI,
		token.EOF,
	}
	assert.Equal(t, want, kinds)
}

func TestScanComments(t *testing.T) {
	kinds, _, errs := scanAll(t, "int x; // trailing\n/* block\ncomment */ int y;")
	require.False(t, errs.HasErrors())
	assert.Equal(t, []token.Kind{
		token.INT, token.IDENT, token.SEMI,
		token.INT, token.IDENT, token.SEMI,
		token.EOF,
	}, kinds)
}

func TestScanStringEscapes(t *testing.T) {
	kinds, vals, errs := scanAll(t, `"a\nb\t\0\x41"`)
	require.False(t, errs.HasErrors())
	require.Equal(t, []token.Kind{token.STR, token.EOF}, kinds)
	assert.Equal(t, []byte{'a', '\n', 'b', '\t', 0, 'A', 0}, vals[0].Str)
}

func TestScanUnterminatedString(t *testing.T) {
	_, _, errs := scanAll(t, `"abc`)
	assert.True(t, errs.HasErrors())
}

func TestScanIntegerLiterals(t *testing.T) {
	// Integer literals are read via a plain base-10 scan (spec.md), so a
	// leading zero does not trigger octal interpretation.
	kinds, vals, errs := scanAll(t, "42 010 0")
	require.False(t, errs.HasErrors())
	require.Equal(t, []token.Kind{token.NUM, token.NUM, token.NUM, token.EOF}, kinds)
	assert.Equal(t, int64(42), vals[0].Int)
	assert.Equal(t, int64(10), vals[1].Int)
	assert.Equal(t, int64(0), vals[2].Int)
}

func TestScanPositionsAdvanceAcrossLines(t *testing.T) {
	fset := token.NewFileSet()
	f := fset.AddFile("test.c", -1, len("int\nx;"))
	errs := diag.NewList(fset)

	var sc scanner.Scanner
	sc.Init(f, []byte("int\nx;"), errs)

	var v token.Value
	sc.Scan(&v) // int
	sc.Scan(&v) // x
	pos := fset.Position(v.Pos)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 1, pos.Column)
}
