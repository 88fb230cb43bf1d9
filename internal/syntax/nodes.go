package syntax

import "fmt"

// ----------------------------------------------------------------------------
// Interfaces
//
// Nodes form a tree: every node owns its children and nothing is shared
// between parents. The parser builds the tree once and never mutates it.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos
	aNode()
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) aNode()   {}

type expr struct{ node }

func (*expr) aExpr() {}

type stmt struct{ node }

func (*stmt) aStmt() {}

// ----------------------------------------------------------------------------
// Types

// Type is a value type of the language. Only Int exists today; new types
// are added as new constants.
type Type uint8

const (
	Invalid Type = iota
	Int
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Invalid:
		return "invalid"
	}
	return fmt.Sprintf("Type(%d)", t)
}

// ----------------------------------------------------------------------------
// Operators

// UnaryOp is a prefix operator.
type UnaryOp uint8

const (
	Plus UnaryOp = iota
	Minus
)

var unaryOpNames = [...]string{
	Plus:  "Plus",
	Minus: "Minus",
}

func (op UnaryOp) String() string {
	if int(op) < len(unaryOpNames) {
		return unaryOpNames[op]
	}
	return fmt.Sprintf("UnaryOp(%d)", op)
}

// BinaryOp is an infix operator. Inc and Dec are the compound
// assignments += and -=.
type BinaryOp uint8

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Assign
	Inc
	Dec
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
)

var binaryOpNames = [...]string{
	Add:    "Add",
	Sub:    "Sub",
	Mul:    "Mul",
	Div:    "Div",
	Assign: "Assign",
	Inc:    "Inc",
	Dec:    "Dec",
	Eq:     "Eq",
	Ne:     "Ne",
	Lt:     "Lt",
	Le:     "Le",
	Gt:     "Gt",
	Ge:     "Ge",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", op)
}

// IsComparison reports whether op yields a 0/1 truth value.
func (op BinaryOp) IsComparison() bool {
	return op >= Eq && op <= Ge
}

// IsAssign reports whether op stores into its left operand.
func (op BinaryOp) IsAssign() bool {
	return op == Assign || op == Inc || op == Dec
}

// binaryOps maps operator tokens to AST operators.
var binaryOps = map[Token]BinaryOp{
	_Assign:    Assign,
	_AddAssign: Inc,
	_SubAssign: Dec,
	_Eql:       Eq,
	_Neq:       Ne,
	_Lss:       Lt,
	_Leq:       Le,
	_Gtr:       Gt,
	_Geq:       Ge,
	_Add:       Add,
	_Sub:       Sub,
	_Mul:       Mul,
	_Div:       Div,
}

// ----------------------------------------------------------------------------
// Module and declarations

// Module is a complete translation unit: an ordered list of top-level
// statements. Well-formed modules contain only *FuncDecl at the top level.
type Module struct {
	node
	Stmts []Stmt
}

// FuncDecl is a function declaration: Result Name(Params) { Body }
type FuncDecl struct {
	stmt
	Name   string
	Params []*Param
	Body   []Stmt
	Result Type
}

// Param is one function parameter. Parameter order is significant.
type Param struct {
	node
	Name string
	Type Type
}

// ----------------------------------------------------------------------------
// Expressions

// Name is a reference to a variable or parameter.
type Name struct {
	expr
	Value string
}

// NumberLit is an integer constant.
type NumberLit struct {
	expr
	Value uint64
	Lit   string // spelling in the source
}

// CallExpr is a call Name(Args...). Arguments are evaluated left to right.
type CallExpr struct {
	expr
	Name string
	Args []Expr
}

// UnaryExpr is a prefix operation Op X.
type UnaryExpr struct {
	expr
	Op UnaryOp
	X  Expr
}

// BinaryExpr is an infix operation X Op Y.
type BinaryExpr struct {
	expr
	Op BinaryOp
	X  Expr
	Y  Expr
}

// ----------------------------------------------------------------------------
// Statements

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	stmt
	X Expr
}

// IfStmt is if (Cond) Then [else Else].
// Else is nil when there is no else branch; an empty else branch is a
// non-nil, zero-length slice.
type IfStmt struct {
	stmt
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// ForStmt is for (Init; Cond; Post) Body. Each clause may be nil; a nil
// Cond loops forever.
type ForStmt struct {
	stmt
	Init Expr
	Cond Expr
	Post Expr
	Body []Stmt
}

// ReturnStmt is return [Result]. Result is nil for a bare return.
type ReturnStmt struct {
	stmt
	Result Expr
}
