package token_test

import (
	"testing"

	"ccompile/lang/token"
	"github.com/stretchr/testify/assert"
)

func TestLookupKeyword(t *testing.T) {
	assert.Equal(t, token.RETURN, token.LookupKeyword("return"))
	assert.Equal(t, token.STATIC, token.LookupKeyword("static"))
	assert.Equal(t, token.IDENT, token.LookupKeyword("returning"))
	assert.Equal(t, token.IDENT, token.LookupKeyword("x"))
}

func TestLookupPunct(t *testing.T) {
	cases := map[string]token.Kind{
		"+": token.PLUS, "++": token.INC, "<<=": token.SHLEQ,
		"->": token.ARROW, "&&": token.LOGAND, "==": token.EQ,
	}
	for lit, want := range cases {
		assert.Equal(t, want, token.LookupPunct(lit), lit)
	}
	assert.Equal(t, token.ILLEGAL, token.LookupPunct(".."))
}

func TestGoString(t *testing.T) {
	assert.Equal(t, "'+'", token.PLUS.GoString())
	assert.Equal(t, "'return'", token.RETURN.GoString())
	assert.Equal(t, "identifier", token.IDENT.GoString())
}

func TestIsBuiltinType(t *testing.T) {
	assert.True(t, token.IsBuiltinType(token.INT))
	assert.True(t, token.IsBuiltinType(token.BOOL))
	assert.False(t, token.IsBuiltinType(token.STRUCT))
	assert.False(t, token.IsBuiltinType(token.IDENT))
}
