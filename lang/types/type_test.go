package types_test

import (
	"testing"

	"ccompile/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignTo(t *testing.T) {
	assert.Equal(t, 0, types.AlignTo(0, 8))
	assert.Equal(t, 8, types.AlignTo(1, 8))
	assert.Equal(t, 8, types.AlignTo(8, 8))
	assert.Equal(t, 16, types.AlignTo(9, 8))
	assert.Equal(t, 4, types.AlignTo(1, 4))
}

func TestScalarSizesAndAlignments(t *testing.T) {
	cases := []struct {
		ty          types.Type
		size, align int
	}{
		{types.CharType, 1, 1},
		{types.ShortType, 2, 2},
		{types.IntType, 4, 4},
		{types.LongType, 8, 8},
		{types.PointerTo(types.IntType), 8, 8},
	}
	for _, c := range cases {
		assert.Equal(t, c.size, c.ty.Size())
		assert.Equal(t, c.align, c.ty.Align())
	}
}

func TestIsInteger(t *testing.T) {
	assert.True(t, types.IsInteger(types.IntType))
	assert.True(t, types.IsInteger(types.BoolType))
	assert.True(t, types.IsInteger(types.NewEnum("")))
	assert.False(t, types.IsInteger(types.PointerTo(types.IntType)))
}

func TestArrayOf(t *testing.T) {
	a := types.ArrayOf(types.IntType, 3)
	assert.Equal(t, 12, a.Size())
	assert.Equal(t, 4, a.Align())
	assert.False(t, a.IsIncomplete())

	incomplete := types.ArrayOf(types.IntType, -1)
	assert.True(t, incomplete.IsIncomplete())
	assert.Equal(t, 0, incomplete.Size())
}

func TestStructLayout(t *testing.T) {
	// struct { char a; int b; char c; } -- a@0, b@4 (rounded to int align),
	// c@8, size rounded up to struct align (4) -> 12.
	s := types.NewStruct("P")
	s.AddMember("a", types.CharType, 0)
	s.AddMember("b", types.IntType, 0)
	s.AddMember("c", types.CharType, 0)
	s.Finish()

	require.Len(t, s.Members, 3)
	assert.Equal(t, 0, s.Member("a").Offset)
	assert.Equal(t, 4, s.Member("b").Offset)
	assert.Equal(t, 8, s.Member("c").Offset)
	assert.Equal(t, 12, s.Size())
	assert.Equal(t, 4, s.Align())
	assert.Equal(t, 0, s.Size()%s.Align())

	for _, m := range s.Members {
		assert.Equal(t, 0, m.Offset%m.Type.Align())
	}
}

func TestIncompleteStructBeforeFinish(t *testing.T) {
	s := types.NewStruct("Node")
	assert.True(t, s.IsIncomplete())
	ptr := types.PointerTo(s)
	assert.Equal(t, 8, ptr.Size()) // pointer to incomplete type is itself complete
	s.AddMember("next", ptr, 0)
	s.Finish()
	assert.False(t, s.IsIncomplete())
}
