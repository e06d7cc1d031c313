package parser

import (
	"ccompile/lang/ast"
	"ccompile/lang/token"
)

// constExpr parses a conditional expression and evaluates it immediately
// over a fixed subset of node kinds, used for array sizes, enum values and
// case labels. Anything outside that subset is a diagnostic.
func (p *parser) constExpr() int64 {
	pos := p.val.Pos
	e := p.conditional()
	v, ok := evalConst(e)
	if !ok {
		p.errorf(pos, "not a compile-time constant expression")
		return 0
	}
	return v
}

func evalConst(e ast.Expr) (int64, bool) {
	switch e := e.(type) {
	case *ast.NumExpr:
		return e.Val, true
	case *ast.BinaryExpr:
		x, ok := evalConst(e.X)
		if !ok {
			return 0, false
		}
		y, ok := evalConst(e.Y)
		if !ok {
			return 0, false
		}
		return evalConstBinary(e.Op, x, y)
	case *ast.CondExpr:
		c, ok := evalConst(e.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return evalConst(e.Then)
		}
		return evalConst(e.Else)
	case *ast.CommaExpr:
		_, ok := evalConst(e.X)
		if !ok {
			return 0, false
		}
		return evalConst(e.Y)
	case *ast.NotExpr:
		x, ok := evalConst(e.X)
		if !ok {
			return 0, false
		}
		if x == 0 {
			return 1, true
		}
		return 0, true
	case *ast.BitNotExpr:
		x, ok := evalConst(e.X)
		if !ok {
			return 0, false
		}
		return ^x, true
	default:
		return 0, false
	}
}

func evalConstBinary(op token.Kind, x, y int64) (int64, bool) {
	switch op {
	case token.PLUS:
		return x + y, true
	case token.MINUS:
		return x - y, true
	case token.STAR:
		return x * y, true
	case token.SLASH:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	case token.PERCENT:
		if y == 0 {
			return 0, false
		}
		return x % y, true
	case token.AMP:
		return x & y, true
	case token.PIPE:
		return x | y, true
	case token.CARET:
		return x ^ y, true
	case token.SHL:
		return x << uint(y), true
	case token.SHR:
		return x >> uint(y), true
	case token.EQ:
		return boolToInt(x == y), true
	case token.NE:
		return boolToInt(x != y), true
	case token.LT:
		return boolToInt(x < y), true
	case token.LE:
		return boolToInt(x <= y), true
	case token.GT:
		return boolToInt(x > y), true
	case token.GE:
		return boolToInt(x >= y), true
	case token.LOGAND:
		return boolToInt(x != 0 && y != 0), true
	case token.LOGOR:
		return boolToInt(x != 0 || y != 0), true
	default:
		return 0, false
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
