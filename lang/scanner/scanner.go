// Package scanner implements the lexer: it turns a source buffer into a
// stream of token.Kind + token.Value pairs, one Scan call at a time.
//
// Grounded on the teacher's lang/scanner package: the same Init/advance/peek
// state machine, the same fast-path-ASCII / slow-path-UTF8 advance, and the
// same per-rune error helper, re-themed from the source language's
// lexical grammar to C's.
package scanner

import (
	"strconv"
	"unicode/utf8"

	"ccompile/lang/diag"
	"ccompile/lang/token"
)

// Scanner tokenizes a single source file for the parser to consume.
type Scanner struct {
	file *token.File
	src  []byte
	errs *diag.List

	sb  []byte // scratch buffer for decoding string literals
	cur rune   // current character, -1 at end of file
	off int    // byte offset of cur
	roff int   // offset just past cur
}

// Init (re)initializes the scanner to tokenize src, which must be exactly
// file.Size() bytes long (file must already be registered with a FileSet).
// Diagnostics are recorded in errs.
func (s *Scanner) Init(file *token.File, src []byte, errs *diag.List) {
	s.file = file
	s.src = src
	s.errs = errs
	s.sb = s.sb[:0]
	s.off = 0
	s.roff = 0
	s.cur = ' '
	s.advance()
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
		}
	}
	s.roff += w
	s.cur = r
}

// advanceIf advances and returns true if the current char equals want.
func (s *Scanner) advanceIf(want byte) bool {
	if s.cur == rune(want) {
		s.advance()
		return true
	}
	return false
}

func (s *Scanner) error(off int, format string, args ...any) {
	s.errs.Error(s.file.Pos(off), format, args...)
}

// Scan returns the next token, filling val with its kind-specific payload.
func (s *Scanner) Scan(val *token.Value) token.Kind {
	s.skipWhitespaceAndComments()

	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		kind := token.LookupKeyword(lit)
		*val = token.Value{Pos: pos, Raw: lit}
		return kind

	case isDigit(cur):
		lit := s.number()
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			s.error(start, "invalid integer literal %q", lit)
		}
		*val = token.Value{Pos: pos, Raw: lit, Int: n}
		return token.NUM

	default:
		s.advance() // always make progress
		switch cur {
		case '"':
			lit, decoded := s.shortString()
			*val = token.Value{Pos: pos, Raw: lit, Str: decoded, StrLen: len(decoded)}
			return token.STR

		case '=':
			if s.advanceIf('=') {
				*val = token.Value{Pos: pos, Raw: "=="}
				return token.EQ
			}
			*val = token.Value{Pos: pos, Raw: "="}
			return token.ASSIGN

		case '!':
			if s.advanceIf('=') {
				*val = token.Value{Pos: pos, Raw: "!="}
				return token.NE
			}
			*val = token.Value{Pos: pos, Raw: "!"}
			return token.BANG

		case '<':
			if s.advanceIf('<') {
				if s.advanceIf('=') {
					*val = token.Value{Pos: pos, Raw: "<<="}
					return token.SHLEQ
				}
				*val = token.Value{Pos: pos, Raw: "<<"}
				return token.SHL
			}
			if s.advanceIf('=') {
				*val = token.Value{Pos: pos, Raw: "<="}
				return token.LE
			}
			*val = token.Value{Pos: pos, Raw: "<"}
			return token.LT

		case '>':
			if s.advanceIf('>') {
				if s.advanceIf('=') {
					*val = token.Value{Pos: pos, Raw: ">>="}
					return token.SHREQ
				}
				*val = token.Value{Pos: pos, Raw: ">>"}
				return token.SHR
			}
			if s.advanceIf('=') {
				*val = token.Value{Pos: pos, Raw: ">="}
				return token.GE
			}
			*val = token.Value{Pos: pos, Raw: ">"}
			return token.GT

		case '-':
			if s.advanceIf('>') {
				*val = token.Value{Pos: pos, Raw: "->"}
				return token.ARROW
			}
			if s.advanceIf('-') {
				*val = token.Value{Pos: pos, Raw: "--"}
				return token.DEC
			}
			if s.advanceIf('=') {
				*val = token.Value{Pos: pos, Raw: "-="}
				return token.SUBEQ
			}
			*val = token.Value{Pos: pos, Raw: "-"}
			return token.MINUS

		case '+':
			if s.advanceIf('+') {
				*val = token.Value{Pos: pos, Raw: "++"}
				return token.INC
			}
			if s.advanceIf('=') {
				*val = token.Value{Pos: pos, Raw: "+="}
				return token.ADDEQ
			}
			*val = token.Value{Pos: pos, Raw: "+"}
			return token.PLUS

		case '&':
			if s.advanceIf('&') {
				*val = token.Value{Pos: pos, Raw: "&&"}
				return token.LOGAND
			}
			if s.advanceIf('=') {
				*val = token.Value{Pos: pos, Raw: "&="}
				return token.ANDEQ
			}
			*val = token.Value{Pos: pos, Raw: "&"}
			return token.AMP

		case '|':
			if s.advanceIf('|') {
				*val = token.Value{Pos: pos, Raw: "||"}
				return token.LOGOR
			}
			if s.advanceIf('=') {
				*val = token.Value{Pos: pos, Raw: "|="}
				return token.OREQ
			}
			*val = token.Value{Pos: pos, Raw: "|"}
			return token.PIPE

		case '*', '/', '%', '^':
			if s.advanceIf('=') {
				kind := token.LookupPunct(string(s.src[start:s.off]))
				*val = token.Value{Pos: pos, Raw: string(s.src[start:s.off])}
				return kind
			}
			kind := token.LookupPunct(string(cur))
			*val = token.Value{Pos: pos, Raw: string(cur)}
			return kind

		case '(', ')', '{', '}', '[', ']', ',', ';', ':', '.', '~', '?':
			kind := token.LookupPunct(string(cur))
			*val = token.Value{Pos: pos, Raw: string(cur)}
			return kind

		case -1:
			*val = token.Value{Pos: pos}
			return token.EOF

		default:
			s.error(start, "cannot tokenize: %q", cur)
			*val = token.Value{Pos: pos, Raw: string(cur)}
			return token.ILLEGAL
		}
	}
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// number scans a plain decimal digit sequence; spec.md is explicit that
// integer literals are read via a standard base-10 scan, matching
// original_source/tokenize.c's strtol(p, &p, 10).
func (s *Scanner) number() string {
	start := s.off
	for isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '/' && s.peek() == '/':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		case s.cur == '/' && s.peek() == '*':
			start := s.off
			s.advance()
			s.advance()
			closed := false
			for s.cur != -1 {
				if s.cur == '*' && s.peek() == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.error(start, "unclosed block comment")
			}
		default:
			return
		}
	}
}

func isWhitespace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }
func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}
func isDigit(r rune) bool { return '0' <= r && r <= '9' }
