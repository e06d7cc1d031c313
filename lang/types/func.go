package types

// Func is a FUNC type: the compile-time type of a function's *name*, used
// for typedef'd function-pointer-less declarators. It is incomplete, with a
// placeholder size and alignment of 1 (functions are not storable objects in
// this subset of C), and exists
// mainly so declarator parsing can attach a type to a function declaration
// uniformly with every other declarator.
type Func struct {
	base
	Return Type
}

// FuncReturning returns a fresh FUNC type wrapping the given return type.
func FuncReturning(ret Type) *Func {
	return &Func{base: base{kind: FUNC, size: 1, align: 1, incomplete: true}, Return: ret}
}

func (f *Func) String() string { return f.Return.String() + "()" }
