// Package parser implements the merged parser and semantic analysis pass:
// a hand-written recursive-descent parser that builds a typed ast.Program
// directly, attaching types.Type to every expression and resolving every
// identifier against a scope stack as it goes (there is no separate
// resolver pass, matching how chibicc itself interleaves parsing and
// typing in a single traversal).
package parser

import (
	"errors"
	"fmt"

	"ccompile/lang/ast"
	"ccompile/lang/diag"
	"ccompile/lang/scanner"
	"ccompile/lang/token"
	"ccompile/lang/types"
)

var errPanicMode = errors.New("parser: panic mode")

// ParseFile parses a single source file into a typed ast.Program. Errors
// encountered are recorded in errs; the returned error, if non-nil, is
// errs.Err() (a *diag.multiError exposing Unwrap() []error). Even on error
// the returned Program is non-nil and reflects whatever could be recovered.
func ParseFile(fset *token.FileSet, filename string, src []byte, errs *diag.List) (*ast.Program, error) {
	var p parser
	p.errs = errs
	p.file = fset.AddFile(filename, -1, len(src))
	p.file.SetContent(src)
	p.scanner.Init(p.file, src, errs)
	p.sc = newScope()
	p.advance()

	prog := p.program()
	return prog, errs.Err()
}

type parser struct {
	scanner scanner.Scanner
	errs    *diag.List
	file    *token.File

	tok token.Kind
	val token.Value

	sc *scope

	globals []*ast.VarDecl
	funcs   []*ast.FuncDecl

	// locals accumulates the current function's locals (parameters first)
	// while its body is parsed; reset per function.
	locals []*ast.VarDecl

	strCount int

	// switches is a stack of the switch statements currently being parsed,
	// innermost last, so that a nested case/default attaches to the right
	// switch (mirrors the "current switch" thread the spec describes).
	switches []*ast.SwitchStmt
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

func (p *parser) at(k token.Kind) bool { return p.tok == k }

func (p *parser) consume(k token.Kind) bool {
	if p.tok == k {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(k token.Kind) token.Pos {
	pos := p.val.Pos
	if p.tok != k {
		p.errorf(pos, "expected %s, found %s", k.GoString(), p.tok.GoString())
		panic(errPanicMode)
	}
	p.advance()
	return pos
}

func (p *parser) expectIdent() (string, token.Pos) {
	if p.tok != token.IDENT {
		p.errorf(p.val.Pos, "expected identifier, found %s", p.tok.GoString())
		panic(errPanicMode)
	}
	name, pos := p.val.Raw, p.val.Pos
	p.advance()
	return name, pos
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.errs.Error(pos, format, args...)
}

// snapshot/restore support the top-level function-vs-global disambiguation
// and the label-vs-expression-statement disambiguation, both of which must
// tentatively parse and roll back the token cursor and scanner state.
type snapshot struct {
	sc      scanner.Scanner
	tok     token.Kind
	val     token.Value
	nGlobal int
}

func (p *parser) snapshot() snapshot {
	return snapshot{sc: p.scanner, tok: p.tok, val: p.val, nGlobal: len(p.globals)}
}

func (p *parser) restore(s snapshot) {
	p.scanner = s.sc
	p.tok = s.tok
	p.val = s.val
	p.globals = p.globals[:s.nGlobal]
}

// program = (global-var | function)*
func (p *parser) program() *ast.Program {
	for !p.at(token.EOF) {
		p.topLevel()
	}
	return &ast.Program{Funcs: p.funcs, Globals: p.globals}
}

func (p *parser) topLevel() {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			p.syncToTopLevel()
		}
	}()

	isStatic, isTypedef, base := p.basetype()
	if isTypedef {
		p.typedefDecl(base)
		return
	}

	snap := p.snapshot()
	name, _ := p.tentativeDeclaratorName(base)
	isFunc := name != "" && p.at(token.LPAREN)
	p.restore(snap)

	if isFunc {
		p.function(base, isStatic)
	} else {
		p.globalVarDecl(base, isStatic)
	}
}

// tentativeDeclaratorName parses just enough of a declarator to learn its
// name, for the function-vs-global lookahead; the caller always restores
// the cursor afterwards regardless of what this returns.
func (p *parser) tentativeDeclaratorName(base types.Type) (string, bool) {
	defer func() { recover() }() //nolint:errcheck // tentative parse, errors are discarded
	for p.consume(token.STAR) {
	}
	if p.tok != token.IDENT {
		return "", false
	}
	name := p.val.Raw
	p.advance()
	return name, true
}

// syncToTopLevel discards tokens until a plausible top-level boundary, so a
// single malformed declaration doesn't cascade into unrelated errors.
func (p *parser) syncToTopLevel() {
	for !p.at(token.EOF) {
		if p.at(token.SEMI) || p.at(token.RBRACE) {
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *parser) typedefDecl(base types.Type) {
	for {
		name, ty, pos := p.declarator(base)
		ty = p.typeSuffix(ty)
		p.sc.declareTypedef(name, ty)
		_ = pos
		if !p.consume(token.COMMA) {
			break
		}
	}
	p.expect(token.SEMI)
}

func (p *parser) globalVarDecl(base types.Type, isStatic bool) {
	if p.consume(token.SEMI) {
		return // bare "struct T {...};" or "enum {...};": declares only the type
	}
	for {
		name, ty, pos := p.declarator(base)
		ty = p.typeSuffix(ty)
		if ty.IsIncomplete() {
			p.errorf(pos, "variable %q has incomplete type", name)
		}
		v := &ast.VarDecl{Pos: pos, Name: name, Ty: ty, IsGlobal: true, IsStatic: isStatic}
		p.sc.declareVar(name, v)
		p.globals = append(p.globals, v)
		if !p.consume(token.COMMA) {
			break
		}
	}
	p.expect(token.SEMI)
}

func (p *parser) function(retBase types.Type, isStatic bool) {
	name, ty, pos := p.declarator(retBase)
	fn := &ast.FuncDecl{Pos: pos, Name: name, Ty: types.FuncReturning(ty), IsStatic: isStatic}
	// declare the function name itself so recursive calls resolve; this
	// compiler has no function-pointer type, so the ordinary-scope binding
	// only supplies the return type to callExpr for calls made before the
	// function is appended to p.funcs (its own body, or after a prototype).
	p.sc.declareVar(name, &ast.VarDecl{Pos: pos, Name: name, Ty: fn.Ty})

	p.sc.enter()
	defer p.sc.leave()

	p.locals = nil
	p.expect(token.LPAREN)
	if !p.at(token.RPAREN) {
		for {
			base := p.basetypeNoStorage()
			pname, pty, ppos := p.declarator(base)
			pty = p.typeSuffix(pty)
			if arr, ok := pty.(*types.Array); ok {
				pty = types.PointerTo(arr.Base)
			}
			pv := &ast.VarDecl{Pos: ppos, Name: pname, Ty: pty}
			p.sc.declareVar(pname, pv)
			fn.Params = append(fn.Params, pv)
			p.locals = append(p.locals, pv)
			if !p.consume(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN)

	if p.consume(token.SEMI) {
		return // prototype, not a definition; only its scope binding is kept
	}

	fn.Body = p.compoundStmt()
	fn.Locals = p.locals
	assignLocalOffsets(fn)
	p.funcs = append(p.funcs, fn)
}

// assignLocalOffsets lays out the function's locals on the stack, each
// occupying Size() bytes below rbp in declaration order, and rounds the
// total frame size up to a multiple of 8. This is unrelated to the 16-byte
// RSP alignment a call site enforces at runtime (codegen's genCall dance);
// that's a property of the call instruction, not of this frame's own size.
func assignLocalOffsets(fn *ast.FuncDecl) {
	offset := 0
	for _, l := range fn.Locals {
		offset += l.Ty.Size()
		offset = types.AlignTo(offset, l.Ty.Align())
		l.Offset = -offset
	}
	fn.StackSize = types.AlignTo(offset, 8)
}

// ---- basetype ----

// basetype = storage? (builtin | struct-decl | enum-specifier | typedef-name)...
func (p *parser) basetype() (isStatic, isTypedef bool, ty types.Type) {
	isStatic, isTypedef, ty = p.basetypeStorage(true)
	return
}

func (p *parser) basetypeNoStorage() types.Type {
	_, _, ty := p.basetypeStorage(false)
	return ty
}

const (
	bVoid  = 1 << 0
	bBool  = 1 << 2
	bChar  = 1 << 4
	bShort = 1 << 6
	bInt   = 1 << 8
	bLong  = 1 << 10
	bOther = 1 << 12
)

func (p *parser) basetypeStorage(allowStorage bool) (isStatic, isTypedef bool, ty types.Type) {
	counter := 0
	var other types.Type

	for p.isBaseTypeToken(other != nil) {
		if allowStorage && p.at(token.TYPEDEF) {
			isTypedef = true
			p.advance()
			continue
		}
		if allowStorage && p.at(token.STATIC) {
			isStatic = true
			p.advance()
			continue
		}

		switch {
		case p.at(token.STRUCT):
			other = p.structDecl()
			counter += bOther
			continue
		case p.at(token.ENUM):
			other = p.enumSpecifier()
			counter += bOther
			continue
		case p.tok == token.IDENT:
			if b, ok := p.sc.lookup(p.val.Raw); ok && b.Typedef != nil {
				other = b.Typedef
				counter += bOther
				p.advance()
				continue
			}
			// not a typedef name: stop reading the basetype
			goto done
		}

		switch p.tok {
		case token.VOID:
			counter += bVoid
		case token.BOOL:
			counter += bBool
		case token.CHAR:
			counter += bChar
		case token.SHORT:
			counter += bShort
		case token.INT:
			counter += bInt
		case token.LONG:
			counter += bLong
		}
		p.advance()
	}
done:

	if other != nil {
		return isStatic, isTypedef, other
	}

	switch counter {
	case 0:
		// no type keyword at all; default to int, matching chibicc's leniency
		return isStatic, isTypedef, types.IntType
	case bVoid:
		return isStatic, isTypedef, types.VoidType
	case bBool:
		return isStatic, isTypedef, types.BoolType
	case bChar:
		return isStatic, isTypedef, types.CharType
	case bShort, bShort + bInt:
		return isStatic, isTypedef, types.ShortType
	case bInt:
		return isStatic, isTypedef, types.IntType
	case bLong, bLong + bInt, bLong + bLong, bLong + bLong + bInt:
		return isStatic, isTypedef, types.LongType
	default:
		p.errorf(p.val.Pos, "invalid type")
		return isStatic, isTypedef, types.IntType
	}
}

// isBaseTypeToken reports whether the current token can still extend a
// basetype being read. Once an "other" (struct/enum/typedef) component has
// been seen, only storage-class keywords may follow it.
func (p *parser) isBaseTypeToken(haveOther bool) bool {
	switch p.tok {
	case token.TYPEDEF, token.STATIC:
		return true
	case token.VOID, token.BOOL, token.CHAR, token.SHORT, token.INT, token.LONG:
		return !haveOther
	case token.STRUCT, token.ENUM:
		return !haveOther
	case token.IDENT:
		if haveOther {
			return false
		}
		_, ok := p.sc.lookup(p.val.Raw)
		if !ok {
			return false
		}
		b, _ := p.sc.lookup(p.val.Raw)
		return b.Typedef != nil
	default:
		return false
	}
}

func (p *parser) isTypename() bool {
	switch p.tok {
	case token.VOID, token.BOOL, token.CHAR, token.SHORT, token.INT, token.LONG,
		token.STRUCT, token.ENUM, token.TYPEDEF, token.STATIC:
		return true
	case token.IDENT:
		b, ok := p.sc.lookup(p.val.Raw)
		return ok && b.Typedef != nil
	default:
		return false
	}
}

// structDecl = "struct" ident? ( "{" struct-members "}" )?
func (p *parser) structDecl() types.Type {
	p.expect(token.STRUCT)
	return p.tagBody(true)
}

func (p *parser) enumSpecifier() types.Type {
	p.expect(token.ENUM)
	return p.tagBody(false)
}

func (p *parser) tagBody(isStruct bool) types.Type {
	var tagName string
	if p.tok == token.IDENT {
		tagName = p.val.Raw
		p.advance()
	}

	if tagName != "" && !p.at(token.LBRACE) {
		// reference to a previously declared tag
		if tb, ok := p.sc.lookupTag(tagName); ok {
			return tb.Ty
		}
		// forward reference: register a fresh incomplete type
		var ty types.Type
		if isStruct {
			ty = types.NewStruct(tagName)
		} else {
			ty = types.NewEnum(tagName)
		}
		p.sc.declareTag(tagName, ty)
		return ty
	}

	var ty types.Type
	if tagName != "" {
		if tb, ok := p.sc.lookupTagCurrent(tagName); ok {
			ty = tb.Ty // redeclare-complete at the same depth
		}
	}
	if ty == nil {
		if isStruct {
			ty = types.NewStruct(tagName)
		} else {
			ty = types.NewEnum(tagName)
		}
		if tagName != "" {
			p.sc.declareTag(tagName, ty)
		}
	}

	p.expect(token.LBRACE)
	if isStruct {
		p.structMembers(ty.(*types.Struct))
	} else {
		p.enumConsts(ty.(*types.Enum))
	}
	p.expect(token.RBRACE)
	return ty
}

func (p *parser) structMembers(st *types.Struct) {
	for !p.at(token.RBRACE) {
		base := p.basetypeNoStorage()
		for {
			name, ty, pos := p.declarator(base)
			ty = p.typeSuffix(ty)
			if ty.IsIncomplete() {
				p.errorf(pos, "member %q has incomplete type", name)
			}
			st.AddMember(name, ty, pos)
			if !p.consume(token.COMMA) {
				break
			}
		}
		p.expect(token.SEMI)
	}
	st.Finish()
}

func (p *parser) enumConsts(en *types.Enum) {
	var val int64
	for !p.at(token.RBRACE) {
		name, pos := p.expectIdent()
		if p.consume(token.ASSIGN) {
			val = p.constExpr()
		}
		p.sc.declareEnumConst(name, val)
		_ = pos
		val++
		if !p.consume(token.COMMA) {
			break
		}
	}
}

// ---- declarators ----

// declarator = "*"* ( "(" declarator ")" | ident ) type-suffix
func (p *parser) declarator(base types.Type) (name string, ty types.Type, pos token.Pos) {
	ty = base
	for p.consume(token.STAR) {
		ty = types.PointerTo(ty)
	}

	if p.consume(token.LPAREN) {
		// "(" declarator ")": this subset's grammar never nests parenthesized
		// declarators with a following type-suffix in practice (no function
		// pointers), so we parse the inner declarator directly against base.
		name, ty, pos = p.declarator(ty)
		p.expect(token.RPAREN)
		return name, ty, pos
	}

	name, pos = p.expectIdent()
	return name, ty, pos
}

// abstractDeclarator = "*"* ( "(" abstract-declarator ")" )? type-suffix
func (p *parser) abstractDeclarator(base types.Type) types.Type {
	ty := base
	for p.consume(token.STAR) {
		ty = types.PointerTo(ty)
	}
	if p.consume(token.LPAREN) {
		ty = p.abstractDeclarator(ty)
		p.expect(token.RPAREN)
		return p.typeSuffix(ty)
	}
	return p.typeSuffix(ty)
}

// typeSuffix = ( "[" const-expr? "]" type-suffix )?
func (p *parser) typeSuffix(base types.Type) types.Type {
	if !p.consume(token.LBRACK) {
		return base
	}
	length := -1
	if !p.at(token.RBRACK) {
		length = int(p.constExpr())
	}
	p.expect(token.RBRACK)
	elem := p.typeSuffix(base)
	return types.ArrayOf(elem, length)
}

// typeName = basetype abstract-declarator type-suffix
func (p *parser) typeName() types.Type {
	base := p.basetypeNoStorage()
	return p.abstractDeclarator(base)
}
