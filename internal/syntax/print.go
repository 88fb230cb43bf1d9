package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// field prints a labelled child one level deeper.
func (p *printer) field(label string, n Node) {
	p.printf("%s:\n", label)
	p.indent++
	p.print(n)
	p.indent--
}

// stmts prints a labelled statement list one level deeper.
func (p *printer) stmts(label string, list []Stmt) {
	p.printf("%s:\n", label)
	p.indent++
	for _, s := range list {
		p.print(s)
	}
	p.indent--
}

func (p *printer) print(node Node) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *Module:
		p.printf("Module %s\n", n.pos)
		p.indent++
		for _, s := range n.Stmts {
			p.print(s)
		}
		p.indent--

	case *FuncDecl:
		p.printf("FuncDecl %s\n", n.pos)
		p.indent++
		p.printf("Name: %s\n", n.Name)
		for _, f := range n.Params {
			p.print(f)
		}
		p.printf("Result: %s\n", n.Result)
		p.stmts("Body", n.Body)
		p.indent--

	case *Param:
		p.printf("Param %s %s %s\n", n.pos, n.Name, n.Type)

	case *ExprStmt:
		p.printf("ExprStmt %s\n", n.pos)
		p.indent++
		p.print(n.X)
		p.indent--

	case *IfStmt:
		p.printf("IfStmt %s\n", n.pos)
		p.indent++
		p.field("Cond", n.Cond)
		p.stmts("Then", n.Then)
		if n.Else != nil {
			p.stmts("Else", n.Else)
		}
		p.indent--

	case *ForStmt:
		p.printf("ForStmt %s\n", n.pos)
		p.indent++
		if n.Init != nil {
			p.field("Init", n.Init)
		}
		if n.Cond != nil {
			p.field("Cond", n.Cond)
		}
		if n.Post != nil {
			p.field("Post", n.Post)
		}
		p.stmts("Body", n.Body)
		p.indent--

	case *ReturnStmt:
		p.printf("ReturnStmt %s\n", n.pos)
		if n.Result != nil {
			p.indent++
			p.print(n.Result)
			p.indent--
		}

	case *Name:
		p.printf("Name %s %s\n", n.pos, n.Value)

	case *NumberLit:
		p.printf("NumberLit %s %s\n", n.pos, n.Lit)

	case *CallExpr:
		p.printf("CallExpr %s %s\n", n.pos, n.Name)
		p.indent++
		for _, a := range n.Args {
			p.print(a)
		}
		p.indent--

	case *UnaryExpr:
		p.printf("UnaryExpr %s %s\n", n.pos, n.Op)
		p.indent++
		p.print(n.X)
		p.indent--

	case *BinaryExpr:
		p.printf("BinaryExpr %s %s\n", n.pos, n.Op)
		p.indent++
		p.print(n.X)
		p.print(n.Y)
		p.indent--

	default:
		p.printf("<%T>\n", node)
	}
}

// ----------------------------------------------------------------------------
// Compact form

// String returns a one-line rendering of node without positions, e.g.
//
//	Assign{Id(x), Add{Num(1), Mul{Num(2), Num(3)}}}
//
// Two trees with the same String have the same shape.
func String(node Node) string {
	var b strings.Builder
	writeNode(&b, node)
	return b.String()
}

func writeNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("<nil>")

	case *Module:
		b.WriteString("Module")
		writeBlock(b, n.Stmts)

	case *FuncDecl:
		b.WriteString("Fn(")
		b.WriteString(n.Name)
		b.WriteString(", [")
		for i, f := range n.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
		}
		b.WriteString("]) -> ")
		b.WriteString(n.Result.String())
		b.WriteByte(' ')
		writeBlock(b, n.Body)

	case *Param:
		b.WriteString(n.Name)

	case *ExprStmt:
		b.WriteString("Expr(")
		writeNode(b, n.X)
		b.WriteByte(')')

	case *IfStmt:
		b.WriteString("If(")
		writeNode(b, n.Cond)
		b.WriteByte(')')
		writeBlock(b, n.Then)
		if n.Else != nil {
			b.WriteString(" Else ")
			writeBlock(b, n.Else)
		}

	case *ForStmt:
		b.WriteString("For(")
		writeOpt(b, n.Init)
		b.WriteString("; ")
		writeOpt(b, n.Cond)
		b.WriteString("; ")
		writeOpt(b, n.Post)
		b.WriteByte(')')
		writeBlock(b, n.Body)

	case *ReturnStmt:
		b.WriteString("Return(")
		writeOpt(b, n.Result)
		b.WriteByte(')')

	case *Name:
		fmt.Fprintf(b, "Id(%s)", n.Value)

	case *NumberLit:
		fmt.Fprintf(b, "Num(%d)", n.Value)

	case *CallExpr:
		fmt.Fprintf(b, "Call(%s", n.Name)
		for _, a := range n.Args {
			b.WriteString(", ")
			writeNode(b, a)
		}
		b.WriteByte(')')

	case *UnaryExpr:
		b.WriteString(n.Op.String())
		b.WriteByte('{')
		writeNode(b, n.X)
		b.WriteByte('}')

	case *BinaryExpr:
		b.WriteString(n.Op.String())
		b.WriteByte('{')
		writeNode(b, n.X)
		b.WriteString(", ")
		writeNode(b, n.Y)
		b.WriteByte('}')

	default:
		fmt.Fprintf(b, "<%T>", node)
	}
}

// writeOpt writes an optional expression; a missing one is left empty.
func writeOpt(b *strings.Builder, x Expr) {
	if x != nil {
		writeNode(b, x)
	}
}

func writeBlock(b *strings.Builder, list []Stmt) {
	b.WriteByte('{')
	for i, s := range list {
		if i > 0 {
			b.WriteString("; ")
		}
		writeNode(b, s)
	}
	b.WriteByte('}')
}
