package codegen

import (
	"math"
	"strconv"

	"github.com/you-not-fish/mycc/internal/abi"
	"github.com/you-not-fish/mycc/internal/syntax"
)

// push and pop move one value between a register and the evaluation
// stack, keeping the static depth in step with the emitted code.
func (g *Generator) push(operand string) {
	g.e.emitInst("push %s", operand)
	g.depth++
}

func (g *Generator) pop(reg string) {
	g.e.emitInst("pop %s", reg)
	g.depth--
}

// genLvalue pushes the address of the variable named by x. With allocOK
// an unbound name gets a fresh slot; otherwise it is an error.
func (g *Generator) genLvalue(x syntax.Expr, allocOK bool) {
	id, ok := x.(*syntax.Name)
	if !ok {
		g.errorf(x.Pos(), "cannot assign to %s: not a variable", syntax.String(x))
		return
	}

	off, bound := g.env.Lookup(id.Value)
	if !bound {
		if !allocOK {
			g.errorf(id.Pos(), "undefined variable %s", id.Value)
			return
		}
		off = g.env.Allocate(id.Value)
	}

	g.e.emitInst("mov rax, %s", abi.RegFrame)
	g.e.emitInst("sub rax, %d", slotAddr(off))
	g.push("rax")
}

// genExpr pushes the value of x.
func (g *Generator) genExpr(x syntax.Expr) {
	if g.failed() {
		return
	}

	switch x := x.(type) {
	case *syntax.Name:
		g.genLvalue(x, false)
		g.pop("rax")
		g.e.emitInst("mov rax, [rax]")
		g.push("rax")

	case *syntax.NumberLit:
		if x.Value <= math.MaxInt32 {
			g.push(strconv.FormatUint(x.Value, 10))
		} else {
			g.e.emitInst("mov rax, %d", int64(x.Value))
			g.push("rax")
		}

	case *syntax.UnaryExpr:
		g.genExpr(x.X)
		g.pop("rdi")
		g.e.emitInst("mov rax, 0")
		if x.Op == syntax.Minus {
			g.e.emitInst("sub rax, rdi")
		} else {
			g.e.emitInst("add rax, rdi")
		}
		g.push("rax")

	case *syntax.BinaryExpr:
		g.genBinary(x)

	case *syntax.CallExpr:
		g.genCall(x)

	default:
		g.errorf(x.Pos(), "unexpected expression %T", x)
	}
}

// setcc maps comparison operators to the x86 set instruction.
var setcc = map[syntax.BinaryOp]string{
	syntax.Eq: "sete",
	syntax.Ne: "setne",
	syntax.Lt: "setl",
	syntax.Le: "setle",
	syntax.Gt: "setg",
	syntax.Ge: "setge",
}

func (g *Generator) genBinary(x *syntax.BinaryExpr) {
	if x.Op.IsAssign() {
		g.genAssign(x)
		return
	}

	g.genExpr(x.X)
	g.genExpr(x.Y)
	g.pop("rdi")
	g.pop("rax")

	if x.Op.IsComparison() {
		g.e.emitInst("cmp rax, rdi")
		g.e.emitInst("%s al", setcc[x.Op])
		g.e.emitInst("movzx rax, al")
		g.push("rax")
		return
	}

	switch x.Op {
	case syntax.Add:
		g.e.emitInst("add rax, rdi")
	case syntax.Sub:
		g.e.emitInst("sub rax, rdi")
	case syntax.Mul:
		g.e.emitInst("imul rax, rdi")
	case syntax.Div:
		g.e.emitInst("cqo")
		g.e.emitInst("idiv rdi")
	default:
		g.errorf(x.Pos(), "unexpected operator %s", x.Op)
		return
	}
	g.push("rax")
}

// genAssign stores into the left operand and pushes the right operand's
// value. For += and -= that is the increment, not the updated variable:
// (x += 2) evaluates to 2.
func (g *Generator) genAssign(x *syntax.BinaryExpr) {
	g.genLvalue(x.X, x.Op == syntax.Assign)
	g.genExpr(x.Y)
	g.pop("rdi")
	g.pop("rax")
	switch x.Op {
	case syntax.Assign:
		g.e.emitInst("mov [rax], rdi")
	case syntax.Inc, syntax.Dec:
		g.e.emitInst("mov rcx, [rax]")
		if x.Op == syntax.Inc {
			g.e.emitInst("add rcx, rdi")
		} else {
			g.e.emitInst("sub rcx, rdi")
		}
		g.e.emitInst("mov [rax], rcx")
	}
	g.push("rdi")
}

// genCall evaluates the arguments left to right, moves them into the
// argument registers and pushes the result. Functions declared in the
// module are called directly; anything else goes through the PLT.
func (g *Generator) genCall(c *syntax.CallExpr) {
	if _, declared := g.funcs[c.Name]; !declared && c.Name == abi.BuiltinPrint {
		g.genPrint(c)
		return
	}
	if abi.IsReserved(c.Name) {
		g.errorf(c.Pos(), "function name %s is reserved by the assembler", c.Name)
		return
	}
	if len(c.Args) > abi.MaxRegArgs {
		g.errorf(c.Pos(), "call of %s has %d arguments; at most %d are supported",
			c.Name, len(c.Args), abi.MaxRegArgs)
		return
	}

	for _, a := range c.Args {
		g.genExpr(a)
	}
	for i := len(c.Args) - 1; i >= 0; i-- {
		g.pop(abi.ArgRegs[i])
	}

	if _, declared := g.funcs[c.Name]; declared {
		g.emitCall(c.Name)
	} else {
		g.e.emitInst("mov rax, 0")
		g.emitCall(abi.PLT(c.Name))
	}
	g.push(abi.RegReturn)
}

// genPrint lowers print(x) to printf("%d\n", x).
func (g *Generator) genPrint(c *syntax.CallExpr) {
	if len(c.Args) != 1 {
		g.errorf(c.Pos(), "print takes exactly 1 argument, got %d", len(c.Args))
		return
	}

	g.genExpr(c.Args[0])
	g.pop(abi.ArgRegs[1])
	g.e.emitInst("lea %s, [rip + %s]", abi.ArgRegs[0], abi.FmtLabel)
	g.e.emitInst("mov rax, 0")
	g.emitCall(abi.PLT(abi.FnPrintf))
	g.push(abi.RegReturn)
}

// emitCall emits a call with rsp 16-byte aligned. At function entry, after
// the frame is set up, rsp is aligned, so an odd evaluation depth needs
// one slot of padding.
func (g *Generator) emitCall(target string) {
	pad := g.depth%2 != 0
	if pad {
		g.e.emitInst("sub rsp, %d", abi.SlotSize)
	}
	g.e.emitInst("call %s", target)
	if pad {
		g.e.emitInst("add rsp, %d", abi.SlotSize)
	}
}
