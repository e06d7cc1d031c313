package parser

import (
	"ccompile/lang/ast"
	"ccompile/lang/token"
	"ccompile/lang/types"
)

func exprBaseAt(pos token.Pos, ty types.Type) ast.ExprBase {
	return ast.ExprBase{Pos: pos, Ty: ty}
}

// expr = assign ("," assign)*
func (p *parser) expr() ast.Expr {
	x := p.assign()
	for p.at(token.COMMA) {
		pos := p.val.Pos
		p.advance()
		y := p.assign()
		x = &ast.CommaExpr{ExprBase: exprBaseAt(pos, y.Type()), X: x, Y: y}
	}
	return x
}

var compoundAssignOps = map[token.Kind]token.Kind{
	token.ADDEQ: token.PLUS,
	token.SUBEQ: token.MINUS,
	token.MULEQ: token.STAR,
	token.DIVEQ: token.SLASH,
	token.SHLEQ: token.SHL,
	token.SHREQ: token.SHR,
	token.ANDEQ: token.AMP,
	token.OREQ:  token.PIPE,
	token.XOREQ: token.CARET,
}

// assign = conditional (assign-op assign)?
func (p *parser) assign() ast.Expr {
	x := p.conditional()

	if p.at(token.ASSIGN) {
		pos := p.val.Pos
		p.advance()
		y := p.assign()
		return p.toAssign(pos, x, y)
	}
	if op, ok := compoundAssignOps[p.tok]; ok {
		pos := p.val.Pos
		p.advance()
		y := p.assign()
		return p.toAssign(pos, x, p.newBinary(pos, op, x, y))
	}
	return x
}

// toAssign builds a plain assignment node, checking that the left side is
// an assignable lvalue (a variable, a dereference, or a member access).
func (p *parser) toAssign(pos token.Pos, lhs, rhs ast.Expr) ast.Expr {
	switch lhs.(type) {
	case *ast.VarExpr, *ast.DerefExpr, *ast.MemberExpr:
	default:
		p.errorf(pos, "left-hand side of assignment is not assignable")
	}
	return &ast.AssignExpr{ExprBase: exprBaseAt(pos, lhs.Type()), Left: lhs, Right: rhs}
}

// conditional = logor ("?" expr ":" conditional)?
func (p *parser) conditional() ast.Expr {
	x := p.logor()
	if !p.at(token.QUESTION) {
		return x
	}
	pos := p.val.Pos
	p.advance()
	then := p.expr()
	p.expect(token.COLON)
	els := p.conditional()

	ty := then.Type()
	if ty == nil || (els.Type() != nil && els.Type().Size() > ty.Size()) {
		ty = els.Type()
	}
	return &ast.CondExpr{ExprBase: exprBaseAt(pos, ty), Cond: x, Then: then, Else: els}
}

func (p *parser) binChain(next func() ast.Expr, ty types.Type, toks ...token.Kind) ast.Expr {
	x := next()
	for {
		matched := false
		for _, t := range toks {
			if p.tok == t {
				pos := p.val.Pos
				p.advance()
				y := next()
				rty := ty
				if rty == nil {
					rty = resultArithType(x, y)
				}
				x = &ast.BinaryExpr{ExprBase: exprBaseAt(pos, rty), Op: t, X: x, Y: y}
				matched = true
				break
			}
		}
		if !matched {
			return x
		}
	}
}

func (p *parser) logor() ast.Expr  { return p.binChain(p.logand, types.IntType, token.LOGOR) }
func (p *parser) logand() ast.Expr { return p.binChain(p.bitor, types.IntType, token.LOGAND) }
func (p *parser) bitor() ast.Expr  { return p.binChain(p.bitxor, nil, token.PIPE) }
func (p *parser) bitxor() ast.Expr { return p.binChain(p.bitand, nil, token.CARET) }
func (p *parser) bitand() ast.Expr { return p.binChain(p.equality, nil, token.AMP) }
func (p *parser) equality() ast.Expr {
	return p.binChain(p.relational, types.IntType, token.EQ, token.NE)
}
func (p *parser) relational() ast.Expr {
	return p.binChain(p.shift, types.IntType, token.LT, token.LE, token.GT, token.GE)
}
func (p *parser) shift() ast.Expr { return p.binChain(p.add, nil, token.SHL, token.SHR) }

// add = mul ( ("+"|"-") mul )*
func (p *parser) add() ast.Expr {
	x := p.mul()
	for {
		switch p.tok {
		case token.PLUS:
			pos := p.val.Pos
			p.advance()
			x = p.newAdd(pos, x, p.mul())
		case token.MINUS:
			pos := p.val.Pos
			p.advance()
			x = p.newSub(pos, x, p.mul())
		default:
			return x
		}
	}
}

func (p *parser) mul() ast.Expr {
	return p.binChain(p.cast, nil, token.STAR, token.SLASH, token.PERCENT)
}

// cast = "(" type-name ")" cast | unary
func (p *parser) cast() ast.Expr {
	if p.at(token.LPAREN) {
		snap := p.snapshot()
		pos := p.val.Pos
		p.advance()
		if p.isTypename() {
			ty := p.typeName()
			p.expect(token.RPAREN)
			x := p.cast()
			return &ast.CastExpr{ExprBase: exprBaseAt(pos, ty), X: x}
		}
		p.restore(snap)
	}
	return p.unary()
}

// unary = ("+"|"-"|"*"|"&"|"!"|"~") cast | ("++"|"--") unary | postfix
func (p *parser) unary() ast.Expr {
	switch p.tok {
	case token.PLUS:
		p.advance()
		return p.cast()
	case token.MINUS:
		pos := p.val.Pos
		p.advance()
		zero := &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType)}
		return p.newSub(pos, zero, p.cast())
	case token.STAR:
		pos := p.val.Pos
		p.advance()
		return p.newDeref(pos, p.cast())
	case token.AMP:
		pos := p.val.Pos
		p.advance()
		x := p.cast()
		return &ast.AddrExpr{ExprBase: exprBaseAt(pos, types.PointerTo(x.Type())), X: x}
	case token.BANG:
		pos := p.val.Pos
		p.advance()
		x := p.cast()
		return &ast.NotExpr{ExprBase: exprBaseAt(pos, types.IntType), X: x}
	case token.TILDE:
		pos := p.val.Pos
		p.advance()
		x := p.cast()
		return &ast.BitNotExpr{ExprBase: exprBaseAt(pos, resultArithType(x, x)), X: x}
	case token.INC:
		pos := p.val.Pos
		p.advance()
		x := p.unary()
		one := &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType), Val: 1}
		return p.toAssign(pos, x, p.newAdd(pos, x, one))
	case token.DEC:
		pos := p.val.Pos
		p.advance()
		x := p.unary()
		one := &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType), Val: 1}
		return p.toAssign(pos, x, p.newSub(pos, x, one))
	default:
		return p.postfix()
	}
}

// postfix = primary ( "[" expr "]" | "." ident | "->" ident | "++" | "--" )*
func (p *parser) postfix() ast.Expr {
	x := p.primary()
	for {
		switch p.tok {
		case token.LBRACK:
			pos := p.val.Pos
			p.advance()
			idx := p.expr()
			p.expect(token.RBRACK)
			x = p.newDeref(pos, p.newAdd(pos, x, idx))
		case token.DOT:
			p.advance()
			name, pos := p.expectIdent()
			x = p.member(pos, x, name)
		case token.ARROW:
			p.advance()
			name, pos := p.expectIdent()
			x = p.member(pos, p.newDeref(pos, x), name)
		case token.INC:
			pos := p.val.Pos
			p.advance()
			x = p.newIncDec(pos, x, 1)
		case token.DEC:
			pos := p.val.Pos
			p.advance()
			x = p.newIncDec(pos, x, -1)
		default:
			return x
		}
	}
}

func (p *parser) member(pos token.Pos, x ast.Expr, name string) ast.Expr {
	st, ok := x.Type().(*types.Struct)
	if !ok {
		p.errorf(pos, "not a struct")
		return &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType)}
	}
	m := st.Member(name)
	if m == nil {
		p.errorf(pos, "no member named %q", name)
		return &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType)}
	}
	return &ast.MemberExpr{ExprBase: exprBaseAt(pos, m.Type), X: x, Member: m}
}

// primary = "(" "{" stmt+ "}" ")" | "(" expr ")"
//         | "sizeof" ( "(" type-name ")" | unary )
//         | ident func-args? | string-literal | number
func (p *parser) primary() ast.Expr {
	pos := p.val.Pos

	switch p.tok {
	case token.LPAREN:
		p.advance()
		if p.at(token.LBRACE) {
			blk := p.compoundStmt()
			p.expect(token.RPAREN)
			return p.newStmtExpr(pos, blk)
		}
		x := p.expr()
		p.expect(token.RPAREN)
		return x

	case token.SIZEOF:
		p.advance()
		if p.at(token.LPAREN) {
			snap := p.snapshot()
			p.advance()
			if p.isTypename() {
				ty := p.typeName()
				p.expect(token.RPAREN)
				return &ast.NumExpr{ExprBase: exprBaseAt(pos, types.LongType), Val: int64(ty.Size())}
			}
			p.restore(snap)
		}
		x := p.unary()
		sz := 0
		if x.Type() != nil {
			sz = x.Type().Size()
		}
		return &ast.NumExpr{ExprBase: exprBaseAt(pos, types.LongType), Val: int64(sz)}

	case token.IDENT:
		name := p.val.Raw
		p.advance()
		if p.at(token.LPAREN) {
			return p.callExpr(pos, name)
		}
		if b, ok := p.sc.lookup(name); ok {
			if b.IsEnum {
				return &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType), Val: b.EnumVal}
			}
			if b.Var != nil {
				return &ast.VarExpr{ExprBase: exprBaseAt(pos, b.Var.Ty), Decl: b.Var}
			}
		}
		p.errorf(pos, "undeclared identifier %q", name)
		return &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType)}

	case token.STR:
		v := p.val
		p.advance()
		decl := p.newStringLiteral(pos, v)
		return &ast.VarExpr{ExprBase: exprBaseAt(pos, decl.Ty), Decl: decl}

	case token.NUM:
		v := p.val.Int
		p.advance()
		return &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType), Val: v}

	default:
		p.errorf(pos, "expected an expression, found %s", p.tok.GoString())
		panic(errPanicMode)
	}
}

func (p *parser) callExpr(pos token.Pos, name string) ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	if !p.at(token.RPAREN) {
		for {
			args = append(args, p.assign())
			if !p.consume(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN)

	var fn *ast.FuncDecl
	for _, f := range p.funcs {
		if f.Name == name {
			fn = f
			break
		}
	}
	ty := types.Type(types.IntType)
	if fn != nil {
		ty = fn.Ty.Return
	} else if b, ok := p.sc.lookup(name); ok && b.Var != nil {
		if ft, ok := b.Var.Ty.(*types.Func); ok {
			ty = ft.Return
		}
	}
	return &ast.CallExpr{ExprBase: exprBaseAt(pos, ty), Name: name, Args: args, Func: fn}
}

func (p *parser) newStmtExpr(pos token.Pos, blk *ast.BlockStmt) ast.Expr {
	var ty types.Type = types.VoidType
	if len(blk.Stmts) > 0 {
		if last, ok := blk.Stmts[len(blk.Stmts)-1].(*ast.ExprStmt); ok && last.X != nil {
			ty = last.X.Type()
		} else {
			p.errorf(pos, "statement expression returning void")
		}
	}
	return &ast.StmtExpr{ExprBase: exprBaseAt(pos, ty), Body: blk}
}

func (p *parser) newStringLiteral(pos token.Pos, v token.Value) *ast.VarDecl {
	name := fmtDataLabel(p.strCount)
	p.strCount++
	ty := types.ArrayOf(types.CharType, len(v.Str))
	decl := &ast.VarDecl{Pos: pos, Name: name, Ty: ty, IsGlobal: true, IsStatic: true, InitData: v.Str}
	p.globals = append(p.globals, decl)
	return decl
}

func fmtDataLabel(n int) string {
	digits := "0123456789"
	if n == 0 {
		return ".L.data.0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return ".L.data." + string(buf)
}

// newDeref builds a pointer dereference, type-checking that x is pointer-like.
func (p *parser) newDeref(pos token.Pos, x ast.Expr) ast.Expr {
	var base types.Type
	switch t := x.Type().(type) {
	case *types.Pointer:
		base = t.Base
	case *types.Array:
		base = t.Base
	default:
		p.errorf(pos, "cannot dereference non-pointer type %s", typeString(x.Type()))
		base = types.IntType
	}
	return &ast.DerefExpr{ExprBase: exprBaseAt(pos, base), X: x}
}

func typeString(ty types.Type) string {
	if ty == nil {
		return "<unknown>"
	}
	return ty.String()
}

// newBinary builds a plain (non-pointer-scaled) binary expression; used for
// compound-assignment desugaring of operators other than + and -, which go
// through newAdd/newSub instead for pointer scaling.
func (p *parser) newBinary(pos token.Pos, op token.Kind, x, y ast.Expr) ast.Expr {
	switch op {
	case token.PLUS:
		return p.newAdd(pos, x, y)
	case token.MINUS:
		return p.newSub(pos, x, y)
	default:
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, resultArithType(x, y)), Op: op, X: x, Y: y}
	}
}

// newAdd resolves "+" per the spec's pointer-arithmetic rule: int+int is a
// plain add; pointer+int scales the int by the pointee size and keeps the
// pointer's type, normalizing so the pointer ends up on the left.
func (p *parser) newAdd(pos token.Pos, x, y ast.Expr) ast.Expr {
	xp, xIsPtr := elemSize(x.Type())
	yp, yIsPtr := elemSize(y.Type())

	switch {
	case !xIsPtr && !yIsPtr:
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, resultArithType(x, y)), Op: token.PLUS, X: x, Y: y}
	case xIsPtr && !yIsPtr:
		scaled := p.scale(pos, y, xp)
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, x.Type()), Op: token.PLUS, X: x, Y: scaled}
	case !xIsPtr && yIsPtr:
		scaled := p.scale(pos, x, yp)
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, y.Type()), Op: token.PLUS, X: y, Y: scaled}
	default:
		p.errorf(pos, "invalid operands to binary +")
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, types.IntType), Op: token.PLUS, X: x, Y: y}
	}
}

// newSub resolves "-": int-int is plain; pointer-int scales like newAdd;
// pointer-pointer yields the byte difference divided by the element size
// (an ordinary integer division once the raw subtraction is done, so
// codegen needs no pointer-specific case for it).
func (p *parser) newSub(pos token.Pos, x, y ast.Expr) ast.Expr {
	xp, xIsPtr := elemSize(x.Type())
	_, yIsPtr := elemSize(y.Type())

	switch {
	case !xIsPtr && !yIsPtr:
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, resultArithType(x, y)), Op: token.MINUS, X: x, Y: y}
	case xIsPtr && !yIsPtr:
		scaled := p.scale(pos, y, xp)
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, x.Type()), Op: token.MINUS, X: x, Y: scaled}
	case xIsPtr && yIsPtr:
		diff := &ast.BinaryExpr{ExprBase: exprBaseAt(pos, types.LongType), Op: token.MINUS, X: x, Y: y}
		sz := &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType), Val: int64(xp)}
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, types.IntType), Op: token.SLASH, X: diff, Y: sz}
	default:
		p.errorf(pos, "invalid operands to binary -")
		return &ast.BinaryExpr{ExprBase: exprBaseAt(pos, types.IntType), Op: token.MINUS, X: x, Y: y}
	}
}

// scale multiplies n by size for pointer arithmetic, done in long width so
// the multiply can't overflow a 32-bit index before it's added to an
// address.
func (p *parser) scale(pos token.Pos, n ast.Expr, size int) ast.Expr {
	if size == 1 {
		return &ast.CastExpr{ExprBase: exprBaseAt(pos, types.LongType), X: n}
	}
	return &ast.BinaryExpr{
		ExprBase: exprBaseAt(pos, types.LongType),
		Op:       token.STAR,
		X:        n,
		Y:        &ast.NumExpr{ExprBase: exprBaseAt(pos, types.LongType), Val: int64(size)},
	}
}

// elemSize reports whether ty is pointer-like and, if so, its pointee size.
func elemSize(ty types.Type) (size int, isPtr bool) {
	switch t := ty.(type) {
	case *types.Pointer:
		return t.Base.Size(), true
	case *types.Array:
		return t.Base.Size(), true
	default:
		return 0, false
	}
}

// resultArithType implements the spec's simplified usual-arithmetic-
// conversion: the wider of the two operand types, defaulting to int.
func resultArithType(x, y ast.Expr) types.Type {
	xt, yt := x.Type(), y.Type()
	if xt != nil && xt.Size() >= 8 {
		return types.LongType
	}
	if yt != nil && yt.Size() >= 8 {
		return types.LongType
	}
	return types.IntType
}

// newIncDec builds the postfix ++/-- value: bump x by addend, but yield x's
// value from before the bump. Prefix ++/-- doesn't need this trick (it
// assigns and yields the new value directly, in unary()); postfix has to
// recover the old value, so it assigns x+addend and then adds back -addend,
// scaled the same way addend itself was for a pointer operand.
func (p *parser) newIncDec(pos token.Pos, x ast.Expr, addend int64) ast.Expr {
	origTy := x.Type()
	addendExpr := &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType), Val: addend}
	var bumped ast.Expr
	if addend >= 0 {
		bumped = p.newAdd(pos, x, addendExpr)
	} else {
		bumped = p.newSub(pos, x, &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType), Val: -addend})
	}
	assigned := p.toAssign(pos, x, bumped)
	back := &ast.NumExpr{ExprBase: exprBaseAt(pos, types.IntType), Val: -addend}
	// restored goes through newAdd again, exactly like the bump above, so a
	// pointer's correction is scaled by its pointee size the same way the
	// increment itself was.
	restored := p.newAdd(pos, assigned, back)
	return &ast.CastExpr{ExprBase: exprBaseAt(pos, origTy), X: restored}
}
