package syntax

import "io"

// Parser turns a token stream into a Module.
//
// Parsing is fail-fast: the first syntax error is recorded, the parser
// switches to EOF so every production unwinds, and Parse returns that
// error. There is no recovery and no second diagnostic.
type Parser struct {
	toks []Lexeme
	cur  int // index of the current token in toks

	// Current token info (cached from toks[cur])
	tok Token
	lit string
	pos Pos

	errh  func(pos Pos, msg string)
	first *Error
	abort bool
}

// NewParser creates a Parser over toks. If toks does not end in an EOF
// lexeme, one is appended. errh, if non-nil, is called with the error
// that stops the parse.
func NewParser(toks []Lexeme, errh func(pos Pos, msg string)) *Parser {
	if n := len(toks); n == 0 || !toks[n-1].Tok.IsEOF() {
		var eof Lexeme
		if n > 0 {
			eof.Pos = toks[n-1].Pos
		}
		toks = append(toks[:n:n], eof)
	}
	p := &Parser{toks: toks, errh: errh}
	p.load()
	return p
}

// Parse parses toks as a complete module.
func Parse(toks []Lexeme) (*Module, error) {
	return NewParser(toks, nil).Parse()
}

// ParseFile tokenizes and parses src.
func ParseFile(filename string, src io.Reader) (*Module, error) {
	toks, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// ----------------------------------------------------------------------------
// Token navigation

func (p *Parser) load() {
	l := p.toks[p.cur]
	p.tok, p.lit, p.pos = l.Tok, l.Lit, l.Pos
}

// next advances to the next token. It never moves past EOF.
func (p *Parser) next() {
	if p.abort {
		return
	}
	if p.cur < len(p.toks)-1 {
		p.cur++
	}
	p.load()
}

// got reports whether the current token is tok and, if so, consumes it.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes tok or reports that it was expected.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.errorExpected("'" + tok.String() + "'")
	}
}

// ----------------------------------------------------------------------------
// Error handling

// errorExpected reports that what was expected at the current token.
func (p *Parser) errorExpected(what string) {
	p.syntaxErrorAt(p.pos, "expected "+what+", found "+p.toks[p.cur].describe())
}

// syntaxErrorAt records the first error and aborts the parse.
func (p *Parser) syntaxErrorAt(pos Pos, msg string) {
	if p.abort {
		return
	}
	p.first = &Error{Pos: pos, Msg: msg}
	p.abort = true
	if p.errh != nil {
		p.errh(pos, msg)
	}
	p.tok = _EOF
}

// ----------------------------------------------------------------------------
// Parsing entry point

// Parse parses the whole token stream. On error the module is nil.
func (p *Parser) Parse() (*Module, error) {
	m := &Module{}
	m.pos = p.pos

	for !p.abort && p.tok != _EOF {
		m.Stmts = append(m.Stmts, p.stmt())
	}

	if p.first != nil {
		return nil, p.first
	}
	return m, nil
}

// ----------------------------------------------------------------------------
// Declarations

// funcDecl parses: int Name ( [int a {, int b}] ) { Body }
func (p *Parser) funcDecl() *FuncDecl {
	d := &FuncDecl{}
	d.pos = p.pos

	d.Result = p.type_()
	d.Name = p.name()

	p.want(_Lparen)
	if p.tok != _Rparen {
		d.Params = p.paramList()
	}
	p.want(_Rparen)

	if p.tok != _Lbrace {
		p.errorExpected("'{' to start function body")
		return d
	}
	d.Body = p.block()
	return d
}

// paramList parses a comma-separated list of "type name" pairs.
func (p *Parser) paramList() []*Param {
	var params []*Param
	for {
		f := &Param{}
		f.pos = p.pos
		f.Type = p.type_()
		f.Name = p.name()
		params = append(params, f)

		if !p.got(_Comma) {
			return params
		}
	}
}

// type_ parses a type keyword.
func (p *Parser) type_() Type {
	if p.got(_Int) {
		return Int
	}
	p.errorExpected("type")
	return Invalid
}

// name parses an identifier.
func (p *Parser) name() string {
	if p.tok != _Name {
		p.errorExpected("identifier")
		return "_"
	}
	name := p.lit
	p.next()
	return name
}

// ----------------------------------------------------------------------------
// Statements

// stmt dispatches on the current token.
func (p *Parser) stmt() Stmt {
	switch p.tok {
	case _If:
		return p.ifStmt()
	case _For:
		return p.forStmt()
	case _Return:
		return p.returnStmt()
	case _Int:
		return p.funcDecl()
	default:
		return p.exprStmt()
	}
}

// exprStmt parses: expr ;
func (p *Parser) exprStmt() *ExprStmt {
	s := &ExprStmt{}
	s.pos = p.pos
	s.X = p.expr()
	p.want(_Semi)
	return s
}

// block parses { stmts... }
func (p *Parser) block() []Stmt {
	p.want(_Lbrace)

	list := []Stmt{}
	for p.tok != _Rbrace && p.tok != _EOF {
		list = append(list, p.stmt())
	}

	p.want(_Rbrace)
	return list
}

// body parses the body of if/else/for: a block or a single statement.
func (p *Parser) body() []Stmt {
	if p.tok == _Lbrace {
		return p.block()
	}
	return []Stmt{p.stmt()}
}

// ifStmt parses: if ( cond ) body [else body]
func (p *Parser) ifStmt() *IfStmt {
	s := &IfStmt{}
	s.pos = p.pos

	p.want(_If)
	p.want(_Lparen)
	s.Cond = p.expr()
	p.want(_Rparen)
	s.Then = p.body()

	if p.got(_Else) {
		s.Else = p.body()
	}
	return s
}

// forStmt parses: for ( [init] ; [cond] ; [post] ) body
func (p *Parser) forStmt() *ForStmt {
	s := &ForStmt{}
	s.pos = p.pos

	p.want(_For)
	p.want(_Lparen)
	if p.tok != _Semi {
		s.Init = p.expr()
	}
	p.want(_Semi)
	if p.tok != _Semi {
		s.Cond = p.expr()
	}
	p.want(_Semi)
	if p.tok != _Rparen {
		s.Post = p.expr()
	}
	p.want(_Rparen)

	s.Body = p.body()
	return s
}

// returnStmt parses: return [expr] ;
func (p *Parser) returnStmt() *ReturnStmt {
	s := &ReturnStmt{}
	s.pos = p.pos

	p.want(_Return)
	if p.tok != _Semi {
		s.Result = p.expr()
	}
	p.want(_Semi)
	return s
}

// ----------------------------------------------------------------------------
// Expressions

// expr parses an expression. Assignment binds loosest and associates to
// the right: a = b = 3 is a = (b = 3).
func (p *Parser) expr() Expr {
	x := p.binaryExpr(_Assign.Precedence())

	if p.tok.IsAssign() {
		op := &BinaryExpr{Op: binaryOps[p.tok], X: x}
		op.pos = x.Pos()
		p.next()
		op.Y = p.expr()
		return op
	}
	return x
}

// binaryExpr parses a left-associative binary expression whose operators
// all bind tighter than prec (precedence climbing).
func (p *Parser) binaryExpr(prec int) Expr {
	x := p.unaryExpr()

	for {
		oprec := p.tok.Precedence()
		if oprec <= prec {
			return x
		}

		op := &BinaryExpr{Op: binaryOps[p.tok], X: x}
		op.pos = x.Pos()
		p.next()

		op.Y = p.binaryExpr(oprec)
		x = op
	}
}

// unaryExpr parses prefix + and -.
func (p *Parser) unaryExpr() Expr {
	switch p.tok {
	case _Add, _Sub:
		op := &UnaryExpr{Op: Plus}
		if p.tok == _Sub {
			op.Op = Minus
		}
		op.pos = p.pos
		p.next()
		op.X = p.unaryExpr()
		return op
	}
	return p.operand()
}

// operand parses a name, call, number or parenthesized expression.
func (p *Parser) operand() Expr {
	switch p.tok {
	case _Name:
		pos, name := p.pos, p.lit
		p.next()
		if p.tok == _Lparen {
			return p.callExpr(pos, name)
		}
		n := &Name{Value: name}
		n.pos = pos
		return n

	case _Literal:
		lit := &NumberLit{Lit: p.lit}
		lit.pos = p.pos
		v, err := ParseIntLit(p.lit)
		if err != nil {
			p.syntaxErrorAt(p.pos, err.Error())
			return lit
		}
		lit.Value = v
		p.next()
		return lit

	case _Lparen:
		p.next()
		x := p.expr()
		p.want(_Rparen)
		return x

	default:
		p.errorExpected("expression")
		n := &Name{Value: "_"}
		n.pos = p.pos
		return n
	}
}

// callExpr parses the argument list of Name(Args...).
func (p *Parser) callExpr(pos Pos, name string) Expr {
	call := &CallExpr{Name: name}
	call.pos = pos

	p.want(_Lparen)
	if p.tok != _Rparen {
		call.Args = p.exprList()
	}
	p.want(_Rparen)
	return call
}

// exprList parses a comma-separated list of expressions.
func (p *Parser) exprList() []Expr {
	list := []Expr{p.expr()}
	for p.got(_Comma) {
		list = append(list, p.expr())
	}
	return list
}
