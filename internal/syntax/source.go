package syntax

import (
	"io"
	"strings"
	"unicode/utf8"
)

// source hands the scanner one character at a time from a fully buffered
// input and remembers where that character sits in the file.
type source struct {
	buf  []byte
	next int // byte offset of the character after ch

	filename  string
	line, col uint32 // position of ch, 1-based
	ch        rune   // -1 at EOF

	errh func(line, col uint32, msg string)
}

func newSource(filename string, r io.Reader, errh func(line, col uint32, msg string)) *source {
	s := &source{filename: filename, line: 1, ch: -1, errh: errh}

	buf, err := io.ReadAll(r)
	if err != nil {
		s.col = 1
		s.error("error reading source: " + err.Error())
		return s
	}
	s.buf = buf
	s.nextch()
	return s
}

// nextch moves to the following character. At EOF ch is -1 and the
// position stays one column past the last character read, so an EOF token
// after a trailing newline lands on column 1 of the empty last line.
func (s *source) nextch() {
	switch {
	case s.ch == '\n':
		s.line++
		s.col = 1
	case s.col == 0 || s.ch >= 0:
		s.col++
	}
	if s.next >= len(s.buf) {
		s.ch = -1
		return
	}

	c := s.buf[s.next]
	if c < utf8.RuneSelf {
		s.ch = rune(c)
		s.next++
		return
	}
	r, w := utf8.DecodeRune(s.buf[s.next:])
	if r == utf8.RuneError && w == 1 {
		s.error("invalid UTF-8 encoding")
	}
	s.ch = r
	s.next += w
}

// peek returns the character after ch without consuming it.
func (s *source) peek() rune {
	if s.next >= len(s.buf) {
		return -1
	}
	r, _ := utf8.DecodeRune(s.buf[s.next:])
	return r
}

// accept consumes ch if it equals want.
func (s *source) accept(want rune) bool {
	if s.ch != want {
		return false
	}
	s.nextch()
	return true
}

// skip consumes characters while in reports true. It never consumes EOF.
func (s *source) skip(in func(rune) bool) {
	for s.ch >= 0 && in(s.ch) {
		s.nextch()
	}
}

// collect is skip that also appends what it consumes to b.
func (s *source) collect(b *strings.Builder, in func(rune) bool) {
	for s.ch >= 0 && in(s.ch) {
		b.WriteRune(s.ch)
		s.nextch()
	}
}

func (s *source) pos() Pos { return NewPos(s.filename, s.line, s.col) }

func (s *source) error(msg string) {
	if s.errh != nil {
		s.errh(s.line, s.col, msg)
	}
}

// Character classes. Source text is ASCII; anything outside the table
// belongs to no class and is reported by the scanner.
const (
	clsLetter uint8 = 1 << iota
	clsDigit
	clsHex
	clsSpace
	clsOperator
)

var classes = func() (t [utf8.RuneSelf]uint8) {
	for c := 'a'; c <= 'z'; c++ {
		t[c] |= clsLetter
		t[c-'a'+'A'] |= clsLetter
	}
	t['_'] |= clsLetter
	for c := '0'; c <= '9'; c++ {
		t[c] |= clsDigit | clsHex
	}
	for c := 'a'; c <= 'f'; c++ {
		t[c] |= clsHex
		t[c-'a'+'A'] |= clsHex
	}
	for _, c := range " \t\r\n" {
		t[c] |= clsSpace
	}
	for _, c := range "+-*/<>=!(){},;" {
		t[c] |= clsOperator
	}
	return t
}()

func is(r rune, cls uint8) bool {
	return r >= 0 && r < utf8.RuneSelf && classes[r]&cls != 0
}

func isLetter(r rune) bool { return is(r, clsLetter) }
func isDigit(r rune) bool { return is(r, clsDigit) }
func isIdentChar(r rune) bool { return is(r, clsLetter|clsDigit) }
func isHexDigit(r rune) bool { return is(r, clsHex) }
func isOctalDigit(r rune) bool { return '0' <= r && r <= '7' }
func isBinaryDigit(r rune) bool { return r == '0' || r == '1' }
func isWhitespace(r rune) bool { return is(r, clsSpace) }
func isOperatorStart(r rune) bool { return is(r, clsOperator) }

// lower folds an ASCII letter to lower case. Other runes get bit 0x20 set,
// which keeps them out of the a-z range.
func lower(r rune) rune {
	return ('a' - 'A') | r
}
