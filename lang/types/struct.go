package types

import (
	"strings"

	"ccompile/lang/token"
)

// Member is a single named field of a Struct, laid out at a fixed byte
// Offset from the start of the struct.
type Member struct {
	Name   string
	Type   Type
	Offset int
	Decl   token.Pos // the token that declared this member, for diagnostics
}

// Struct is a STRUCT type. A struct declared with a tag but no body starts
// out incomplete (IsIncomplete() == true, Size()==0, Align()==1) so that a
// pointer to it can be used (e.g. a self-referential "struct T *next;"
// member) before its layout is known; NewStruct and AddMember together
// implement the layout pass from spec section 4.4.
type Struct struct {
	base
	Tag     string
	Members []*Member
}

// NewStruct returns a fresh, initially incomplete struct type.
func NewStruct(tag string) *Struct {
	return &Struct{base: base{kind: STRUCT, size: 0, align: 1, incomplete: true}, Tag: tag}
}

// AddMember appends a member to the struct, rounding the running offset up
// to the member's own alignment and extending the struct's size and
// alignment to account for it. Members must be added in declaration order;
// call Finish once all members have been added.
func (s *Struct) AddMember(name string, ty Type, decl token.Pos) *Member {
	offset := AlignTo(s.size, ty.Align())
	m := &Member{Name: name, Type: ty, Offset: offset, Decl: decl}
	s.Members = append(s.Members, m)
	s.size = offset + ty.Size()
	if ty.Align() > s.align {
		s.align = ty.Align()
	}
	return m
}

// Finish rounds the struct's running size up to its own alignment and marks
// it complete. Called once the closing '}' of the struct body is parsed.
func (s *Struct) Finish() {
	s.size = AlignTo(s.size, s.align)
	s.incomplete = false
}

// Member looks up a member by name, returning nil if there is none.
func (s *Struct) Member(name string) *Member {
	for _, m := range s.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (s *Struct) String() string {
	if s.Tag != "" {
		return "struct " + s.Tag
	}
	names := make([]string, len(s.Members))
	for i, m := range s.Members {
		names[i] = m.Name
	}
	return "struct{" + strings.Join(names, ";") + "}"
}
