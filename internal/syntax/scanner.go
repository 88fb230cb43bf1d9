package syntax

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Scanner performs lexical analysis on mycc source code.
type Scanner struct {
	source

	tok    Token
	lit    string
	tokPos Pos

	litBuf strings.Builder
}

// NewScanner creates a Scanner for src. errh is called for each lexical
// error; if nil, errors are silently ignored.
func NewScanner(filename string, src io.Reader, errh func(line, col uint32, msg string)) *Scanner {
	return &Scanner{source: *newSource(filename, src, errh)}
}

// Next advances to the next token.
func (s *Scanner) Next() {
	s.skipBlank()

	s.tokPos = s.pos()

	switch {
	case s.ch < 0:
		s.tok = _EOF
		s.lit = ""

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch):
		s.scanNumber()

	case isOperatorStart(s.ch):
		s.scanOperator()

	default:
		s.error(fmt.Sprintf("unexpected character %q", s.ch))
		s.tok = _Error
		s.lit = string(s.ch)
		s.nextch()
	}
}

// Token returns the current token type.
func (s *Scanner) Token() Token { return s.tok }

// Literal returns the spelling of the current token.
func (s *Scanner) Literal() string { return s.lit }

// Pos returns the start position of the current token.
func (s *Scanner) Pos() Pos { return s.tokPos }

func (s *Scanner) scanIdent() {
	s.litBuf.Reset()
	s.collect(&s.litBuf, isIdentChar)
	s.lit = s.litBuf.String()
	s.tok = LookupKeyword(s.lit)
}

// scanNumber scans an integer literal: decimal, 0x hex, 0o octal or
// 0b binary. Leading zeros on a decimal literal do not make it octal.
func (s *Scanner) scanNumber() {
	s.litBuf.Reset()
	s.tok = _Literal

	if s.ch == '0' {
		s.litBuf.WriteRune(s.ch)
		s.nextch()
		switch lower(s.ch) {
		case 'x':
			s.litBuf.WriteRune(s.ch)
			s.nextch()
			s.scanDigits(isHexDigit, "hex")
		case 'o':
			s.litBuf.WriteRune(s.ch)
			s.nextch()
			s.scanDigits(isOctalDigit, "octal")
		case 'b':
			s.litBuf.WriteRune(s.ch)
			s.nextch()
			s.scanDigits(isBinaryDigit, "binary")
		default:
			s.scanDigits(isDigit, "")
		}
	} else {
		s.scanDigits(isDigit, "")
	}

	s.lit = s.litBuf.String()

	if isIdentChar(s.ch) {
		s.error(fmt.Sprintf("invalid character %q in number literal", s.ch))
		s.tok = _Error
		return
	}
	if _, err := ParseIntLit(s.lit); err != nil {
		s.errorAt(s.tokPos, err.Error())
		s.tok = _Error
	}
}

// scanDigits consumes digits accepted by ok. A non-empty what means at
// least one digit is required (after a base prefix).
func (s *Scanner) scanDigits(ok func(rune) bool, what string) {
	if what != "" && !ok(s.ch) {
		s.error("invalid " + what + " digit")
		return
	}
	s.collect(&s.litBuf, ok)
}

// ParseIntLit converts an integer literal spelling to its value.
func ParseIntLit(lit string) (uint64, error) {
	base := 10
	digits := lit
	if len(lit) > 2 && lit[0] == '0' {
		switch lower(rune(lit[1])) {
		case 'x':
			base, digits = 16, lit[2:]
		case 'o':
			base, digits = 8, lit[2:]
		case 'b':
			base, digits = 2, lit[2:]
		}
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, fmt.Errorf("integer literal %s overflows 64 bits", lit)
		}
		return 0, fmt.Errorf("malformed integer literal %s", lit)
	}
	return v, nil
}

// scanOperator scans an operator or punctuation token.
func (s *Scanner) scanOperator() {
	ch := s.ch
	s.nextch()

	switch ch {
	case '+':
		s.tok = _Add
		if s.accept('=') {
			s.tok = _AddAssign
		}
	case '-':
		s.tok = _Sub
		if s.accept('=') {
			s.tok = _SubAssign
		}
	case '*':
		s.tok = _Mul
	case '/':
		s.tok = _Div
	case '<':
		s.tok = _Lss
		if s.accept('=') {
			s.tok = _Leq
		}
	case '>':
		s.tok = _Gtr
		if s.accept('=') {
			s.tok = _Geq
		}
	case '=':
		s.tok = _Assign
		if s.accept('=') {
			s.tok = _Eql
		}
	case '!':
		if !s.accept('=') {
			s.errorAt(s.tokPos, "unexpected character '!'")
			s.tok = _Error
			s.lit = "!"
			return
		}
		s.tok = _Neq
	case '(':
		s.tok = _Lparen
	case ')':
		s.tok = _Rparen
	case '{':
		s.tok = _Lbrace
	case '}':
		s.tok = _Rbrace
	case ',':
		s.tok = _Comma
	case ';':
		s.tok = _Semi
	}

	s.lit = s.tok.String()
}

func (s *Scanner) errorAt(pos Pos, msg string) {
	if s.errh != nil {
		s.errh(pos.line, pos.col, msg)
	}
}

// skipBlank skips whitespace, // line comments and /* block */ comments.
func (s *Scanner) skipBlank() {
	for {
		s.skip(isWhitespace)
		if s.ch != '/' {
			return
		}
		switch s.peek() {
		case '/':
			s.skip(notNewline)
		case '*':
			s.skipBlockComment()
		default:
			return
		}
	}
}

func notNewline(r rune) bool { return r != '\n' }

// skipBlockComment skips a comment starting at the '/' of "/*".
func (s *Scanner) skipBlockComment() {
	s.nextch()
	s.nextch()
	for s.ch >= 0 {
		if s.accept('*') && s.accept('/') {
			return
		}
		s.skip(func(r rune) bool { return r != '*' })
	}
	s.error("comment not terminated")
}

// Tokenize scans all of src and returns its tokens, terminated by a single
// EOF lexeme. Scanning stops at the first lexical error, which is returned
// as an *Error.
func Tokenize(filename string, src io.Reader) ([]Lexeme, error) {
	var first *Error
	errh := func(line, col uint32, msg string) {
		if first == nil {
			first = &Error{Pos: NewPos(filename, line, col), Msg: msg}
		}
	}

	s := NewScanner(filename, src, errh)
	var toks []Lexeme
	for {
		s.Next()
		if first != nil {
			return nil, first
		}
		toks = append(toks, Lexeme{Tok: s.Token(), Lit: s.Literal(), Pos: s.Pos()})
		if s.Token().IsEOF() {
			return toks, nil
		}
	}
}
