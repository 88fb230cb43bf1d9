package codegen

import (
	"fmt"

	"github.com/you-not-fish/mycc/internal/abi"
	"github.com/you-not-fish/mycc/internal/syntax"
)

// genBlock emits a statement list. Each statement must leave the
// evaluation stack as it found it.
func (g *Generator) genBlock(list []syntax.Stmt) {
	for _, s := range list {
		g.genStmt(s)
		if g.failed() {
			return
		}
		if g.depth != 0 {
			g.errorf(s.Pos(), "internal error: %d values left on the evaluation stack", g.depth)
			return
		}
	}
}

func (g *Generator) genStmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.ExprStmt:
		g.genDiscard(s.X)
	case *syntax.IfStmt:
		g.genIf(s)
	case *syntax.ForStmt:
		g.genFor(s)
	case *syntax.ReturnStmt:
		g.genReturn(s)
	case *syntax.FuncDecl:
		g.errorf(s.Pos(), "function %s declared inside function %s", s.Name, g.fn.Name)
	default:
		g.errorf(s.Pos(), "unexpected statement %T", s)
	}
}

// genDiscard evaluates x for its side effects.
func (g *Generator) genDiscard(x syntax.Expr) {
	g.genExpr(x)
	g.pop(abi.RegReturn)
}

// newLabel reserves a label index. It is taken before any nested
// statement is generated, so nested constructs get higher indices.
func (g *Generator) newLabel() int {
	n := g.label
	g.label++
	return n
}

func labelName(kind string, n int) string {
	return fmt.Sprintf(".L%s_%d", kind, n)
}

// genCondJump evaluates cond and jumps to target when it is zero.
func (g *Generator) genCondJump(cond syntax.Expr, target string) {
	g.genExpr(cond)
	g.pop("rax")
	g.e.emitInst("cmp rax, 0")
	g.e.emitInst("je %s", target)
}

func (g *Generator) genIf(s *syntax.IfStmt) {
	n := g.newLabel()
	end := labelName("end", n)

	if s.Else == nil {
		g.genCondJump(s.Cond, end)
		g.genBlock(s.Then)
		g.e.emitLabel(end)
		return
	}

	els := labelName("else", n)
	g.genCondJump(s.Cond, els)
	g.genBlock(s.Then)
	g.e.emitInst("jmp %s", end)
	g.e.emitLabel(els)
	g.genBlock(s.Else)
	g.e.emitLabel(end)
}

func (g *Generator) genFor(s *syntax.ForStmt) {
	n := g.newLabel()
	begin, end := labelName("for_begin", n), labelName("for_end", n)

	if s.Init != nil {
		g.genDiscard(s.Init)
	}
	g.e.emitLabel(begin)
	if s.Cond != nil {
		g.genCondJump(s.Cond, end)
	}
	g.genBlock(s.Body)
	if s.Post != nil {
		g.genDiscard(s.Post)
	}
	g.e.emitInst("jmp %s", begin)
	g.e.emitLabel(end)
}

func (g *Generator) genReturn(s *syntax.ReturnStmt) {
	if s.Result != nil {
		g.genExpr(s.Result)
		g.pop(abi.RegReturn)
	} else {
		g.e.emitInst("mov %s, 0", abi.RegReturn)
	}
	g.genLeave()
}
