// Package syntax implements lexical and syntactic analysis for the mycc
// language: a small C-like language of int variables, expressions, calls,
// if/for statements and single-result functions.
package syntax

import "fmt"

// Token represents the type of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF   Token = iota // end of input
	_Error              // lexical error

	// Literals
	_Name    // identifier: foo, bar, main
	_Literal // integer literal: 42, 0x2a

	// Operators (ordered by precedence, low to high)
	// Assignment
	_Assign    // =
	_AddAssign // +=
	_SubAssign // -=

	// Equality
	_Eql // ==
	_Neq // !=

	// Relational
	_Lss // <
	_Leq // <=
	_Gtr // >
	_Geq // >=

	// Additive
	_Add // +
	_Sub // -

	// Multiplicative
	_Mul // *
	_Div // /

	// Punctuation
	_Lparen // (
	_Rparen // )
	_Lbrace // {
	_Rbrace // }
	_Comma  // ,
	_Semi   // ;

	// Keywords
	_Else
	_For
	_If
	_Int
	_Return

	tokenCount
)

var tokenNames = [...]string{
	_EOF:   "EOF",
	_Error: "ERROR",

	_Name:    "NAME",
	_Literal: "LITERAL",

	_Assign:    "=",
	_AddAssign: "+=",
	_SubAssign: "-=",

	_Eql: "==",
	_Neq: "!=",

	_Lss: "<",
	_Leq: "<=",
	_Gtr: ">",
	_Geq: ">=",

	_Add: "+",
	_Sub: "-",

	_Mul: "*",
	_Div: "/",

	_Lparen: "(",
	_Rparen: ")",
	_Lbrace: "{",
	_Rbrace: "}",
	_Comma:  ",",
	_Semi:   ";",

	_Else:   "else",
	_For:    "for",
	_If:     "if",
	_Int:    "int",
	_Return: "return",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// Kind classifies a token into its lexical category.
type Kind uint8

const (
	KindSpecial Kind = iota // EOF and error tokens
	KindIdent
	KindInt
	KindKeyword
	KindOperator
	KindPunct
)

var kindNames = [...]string{
	KindSpecial:  "special",
	KindIdent:    "identifier",
	KindInt:      "integer",
	KindKeyword:  "keyword",
	KindOperator: "operator",
	KindPunct:    "punctuation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Kind returns the lexical category of t.
func (t Token) Kind() Kind {
	switch {
	case t == _Name:
		return KindIdent
	case t == _Literal:
		return KindInt
	case t.IsKeyword():
		return KindKeyword
	case t.IsOperator():
		return KindOperator
	case t >= _Lparen && t <= _Semi:
		return KindPunct
	}
	return KindSpecial
}

// Precedence returns the binding level of a binary operator token, or 0
// for tokens that are not binary operators.
//
//	1: = += -=     (right associative)
//	2: == !=
//	3: < <= > >=
//	4: + -
//	5: * /
func (t Token) Precedence() int {
	switch t {
	case _Assign, _AddAssign, _SubAssign:
		return 1
	case _Eql, _Neq:
		return 2
	case _Lss, _Leq, _Gtr, _Geq:
		return 3
	case _Add, _Sub:
		return 4
	case _Mul, _Div:
		return 5
	}
	return 0
}

// IsKeyword reports whether t is a keyword token.
func (t Token) IsKeyword() bool {
	return t >= _Else && t <= _Return
}

// IsOperator reports whether t is an operator token.
func (t Token) IsOperator() bool {
	return t >= _Assign && t <= _Div
}

// IsAssign reports whether t is one of the assignment operators.
func (t Token) IsAssign() bool {
	return t == _Assign || t == _AddAssign || t == _SubAssign
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// keywords maps keyword spellings to their token.
var keywords = map[string]Token{
	"else":   _Else,
	"for":    _For,
	"if":     _If,
	"int":    _Int,
	"return": _Return,
}

// LookupKeyword returns the keyword token for ident, or _Name.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return _Name
}

// Lexeme is one scanned token together with its spelling and position.
// A token stream produced by Tokenize always ends with an EOF lexeme.
type Lexeme struct {
	Tok Token
	Lit string
	Pos Pos
}

func (l Lexeme) String() string {
	switch l.Tok {
	case _Name, _Literal:
		return fmt.Sprintf("%s %s %q", l.Pos, l.Tok, l.Lit)
	}
	return fmt.Sprintf("%s %s", l.Pos, l.Tok)
}

// describe renders a lexeme for "found ..." diagnostics.
func (l Lexeme) describe() string {
	switch l.Tok {
	case _EOF:
		return "EOF"
	case _Name:
		return "identifier " + l.Lit
	case _Literal:
		return "literal " + l.Lit
	}
	return "'" + l.Tok.String() + "'"
}
