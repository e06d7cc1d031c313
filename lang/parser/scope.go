package parser

import (
	"github.com/dolthub/swiss"

	"ccompile/lang/ast"
	"ccompile/lang/types"
)

// binding is an entry in the ordinary namespace: a variable (Var non-nil), a
// typedef name (Typedef non-nil) or an enum constant (IsEnum set).
type binding struct {
	Var     *ast.VarDecl
	Typedef types.Type
	EnumVal int64
	IsEnum  bool
}

// tagBinding is an entry in the tag namespace: a named struct or enum type.
type tagBinding struct {
	Ty types.Type
}

// scopeLevel is one nested level of the scope stack, holding the bindings
// introduced strictly at this depth (chibicc's VarScope/TagScope linked
// list, reshaped here as one swiss.Map per namespace per level).
type scopeLevel struct {
	ordinary *swiss.Map[string, *binding]
	tags     *swiss.Map[string, *tagBinding]
}

// scope is the parser's scope stack: a slice of scopeLevel, innermost last.
// enter/leave push and pop one level; lookups walk from the end backwards,
// matching enter_scope/leave_scope's snapshot-depth discipline from the
// spec's scope description, but expressed as an explicit stack rather than
// linked-list-plus-saved-head since Go's swiss.Map has no cheap structural
// sharing to snapshot.
type scope struct {
	levels []*scopeLevel
}

func newScope() *scope {
	s := &scope{}
	s.enter()
	return s
}

func (s *scope) enter() {
	s.levels = append(s.levels, &scopeLevel{
		ordinary: swiss.NewMap[string, *binding](8),
		tags:     swiss.NewMap[string, *tagBinding](4),
	})
}

func (s *scope) leave() {
	s.levels = s.levels[:len(s.levels)-1]
}

func (s *scope) depth() int { return len(s.levels) }

func (s *scope) top() *scopeLevel { return s.levels[len(s.levels)-1] }

// declareVar binds name to v in the current (innermost) scope level.
func (s *scope) declareVar(name string, v *ast.VarDecl) {
	s.top().ordinary.Put(name, &binding{Var: v})
}

// declareTypedef binds name as a typedef for ty in the current scope level.
func (s *scope) declareTypedef(name string, ty types.Type) {
	s.top().ordinary.Put(name, &binding{Typedef: ty})
}

// declareEnumConst binds name as an enum constant with value val.
func (s *scope) declareEnumConst(name string, val int64) {
	s.top().ordinary.Put(name, &binding{IsEnum: true, EnumVal: val})
}

// lookup searches the ordinary namespace from innermost to outermost scope.
func (s *scope) lookup(name string) (*binding, bool) {
	for i := len(s.levels) - 1; i >= 0; i-- {
		if b, ok := s.levels[i].ordinary.Get(name); ok {
			return b, true
		}
	}
	return nil, false
}

// lookupTag searches the tag namespace from innermost to outermost scope.
func (s *scope) lookupTag(name string) (*tagBinding, bool) {
	for i := len(s.levels) - 1; i >= 0; i-- {
		if b, ok := s.levels[i].tags.Get(name); ok {
			return b, true
		}
	}
	return nil, false
}

// lookupTagCurrent searches only the innermost scope level, used to decide
// whether redeclaring a tag completes the existing type (same level) or
// shadows it with a fresh incomplete one (strictly inner level).
func (s *scope) lookupTagCurrent(name string) (*tagBinding, bool) {
	return s.top().tags.Get(name)
}

// declareTag binds name to ty in the current scope level's tag namespace.
func (s *scope) declareTag(name string, ty types.Type) {
	s.top().tags.Put(name, &tagBinding{Ty: ty})
}
