package types

import "strconv"

// Array is an ARRAY type: Len contiguous elements of type Base. An array
// declared with an empty "[]" (e.g. a function parameter's "int a[]") is
// incomplete (Len == 0, IsIncomplete() == true); using an incomplete array
// as a variable's or member's type is a semantic error (spec section 7).
type Array struct {
	base
	Base Type
	Len  int
}

// ArrayOf returns a fresh array type of len elements of base. If len is
// negative, the array is incomplete (size 0) the way a bare "T x[]" is in
// spec section 4.4.
func ArrayOf(elem Type, length int) *Array {
	a := &Array{Base: elem, Len: length}
	a.kind = ARRAY
	a.align = elem.Align()
	if length < 0 {
		a.incomplete = true
		a.size = 0
		a.Len = 0
		return a
	}
	a.size = elem.Size() * length
	return a
}

func (a *Array) String() string {
	return a.Base.String() + "[" + strconv.Itoa(a.Len) + "]"
}
