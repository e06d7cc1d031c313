// Package types implements the compiler's type system: construction and
// comparison of C types, and the size/alignment/offset arithmetic the parser
// needs to lay out structs and the code generator needs to choose
// instruction widths.
//
// Grounded on the teacher's lang/types package shape (one file per kind,
// each satisfying a small shared interface) but holding compile-time type
// descriptors instead of runtime values.
package types

// Kind identifies which of the fixed set of C type shapes a Type is.
type Kind int

const (
	VOID Kind = iota
	BOOL
	CHAR
	SHORT
	INT
	LONG
	ENUM
	PTR
	ARRAY
	STRUCT
	FUNC
)

func (k Kind) String() string {
	switch k {
	case VOID:
		return "void"
	case BOOL:
		return "_Bool"
	case CHAR:
		return "char"
	case SHORT:
		return "short"
	case INT:
		return "int"
	case LONG:
		return "long"
	case ENUM:
		return "enum"
	case PTR:
		return "pointer"
	case ARRAY:
		return "array"
	case STRUCT:
		return "struct"
	case FUNC:
		return "function"
	default:
		return "unknown"
	}
}

// Type is implemented by every type shape in the system. Kind, Size and
// Align are always meaningful; Base/Len/Members/Return are meaningful only
// for the kinds that carry them (PTR/ARRAY for Base, ARRAY for Len, STRUCT
// for Members, FUNC for Return), and callers type-assert to the concrete
// type (*Pointer, *Array, *Struct, *Func) when they need those fields,
// mirroring how the teacher's value kinds expose kind-specific behavior
// through type assertions rather than a single bloated interface.
type Type interface {
	Kind() Kind
	Size() int
	Align() int
	IsIncomplete() bool
	String() string
}

// base implements the common fields shared by every concrete Type.
type base struct {
	kind       Kind
	size       int
	align      int
	incomplete bool
}

func (b *base) Kind() Kind         { return b.kind }
func (b *base) Size() int          { return b.size }
func (b *base) Align() int         { return b.align }
func (b *base) IsIncomplete() bool { return b.incomplete }

// IsInteger reports whether ty is one of the integer-like kinds: BOOL, CHAR,
// SHORT, INT, LONG or ENUM.
func IsInteger(ty Type) bool {
	switch ty.Kind() {
	case BOOL, CHAR, SHORT, INT, LONG, ENUM:
		return true
	default:
		return false
	}
}

// IsPointerLike reports whether ty decays to or already is an address, i.e.
// PTR or ARRAY.
func IsPointerLike(ty Type) bool {
	return ty.Kind() == PTR || ty.Kind() == ARRAY
}

// AlignTo rounds n up to the next multiple of align, which must be a power
// of two. This is the single piece of manual alignment arithmetic the whole
// type system relies on; callers must not substitute a general-purpose
// packer since the exact rounding here determines observable struct layout
// and stack frame sizes.
func AlignTo(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// Singletons for the base scalar types, shared by reference exactly like the
// teacher's canonical base types.
var (
	VoidType  Type = &base{kind: VOID, size: 1, align: 1, incomplete: true}
	BoolType  Type = &base{kind: BOOL, size: 1, align: 1}
	CharType  Type = &base{kind: CHAR, size: 1, align: 1}
	ShortType Type = &base{kind: SHORT, size: 2, align: 2}
	IntType   Type = &base{kind: INT, size: 4, align: 4}
	LongType  Type = &base{kind: LONG, size: 8, align: 8}
)
