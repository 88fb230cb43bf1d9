// Package codegen translates a parsed module into x86-64 assembly for the
// GNU assembler (Intel syntax).
//
// The generator is a single-pass tree walker. It uses the machine stack as
// an evaluation stack: every expression pushes exactly one 8-byte value and
// every operator pops its operands. Local variables live in 8-byte frame
// slots below rbp, assigned by Env in order of first assignment.
package codegen

import (
	"github.com/tliron/commonlog"

	"github.com/you-not-fish/mycc/internal/abi"
	"github.com/you-not-fish/mycc/internal/syntax"
)

// Generator produces assembly for one module at a time. A Generator may
// be reused for several modules but must not be shared between
// goroutines.
type Generator struct {
	e   emitter
	log commonlog.Logger

	label int // next label index, shared by all functions of a module
	depth int // evaluation stack entries pushed by the current statement

	funcs map[string]*syntax.FuncDecl // functions declared in the module
	fn    *syntax.FuncDecl            // function being generated
	env   *Env

	first *Error
}

// Option configures a Generator.
type Option func(*Generator)

// WithComments enables or disables the "# function ... begin/end"
// comments. They are on by default.
func WithComments(on bool) Option {
	return func(g *Generator) { g.e.comments = on }
}

// WithLogger sets the logger used for debug output.
func WithLogger(log commonlog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		e:   emitter{comments: true},
		log: commonlog.GetLogger("mycc.codegen"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the assembly lines for m. Every call starts from a
// clean state, so generating the same module twice yields identical
// output. On error no lines are returned.
func (g *Generator) Generate(m *syntax.Module) ([]string, error) {
	g.e.reset()
	g.label = 0
	g.depth = 0
	g.funcs = make(map[string]*syntax.FuncDecl)
	g.fn = nil
	g.env = nil
	g.first = nil

	g.genModule(m)

	if g.first != nil {
		return nil, g.first
	}
	lines := g.e.lines
	g.e.reset()
	return lines, nil
}

// genModule emits the file prologue, every function and the file
// epilogue.
func (g *Generator) genModule(m *syntax.Module) {
	for _, s := range m.Stmts {
		fn, ok := s.(*syntax.FuncDecl)
		if !ok {
			g.errorf(s.Pos(), "only function declarations are allowed at module scope")
			return
		}
		if abi.IsReserved(fn.Name) {
			g.errorf(fn.Pos(), "function name %s is reserved by the assembler", fn.Name)
			return
		}
		if prev, dup := g.funcs[fn.Name]; dup {
			g.errorf(fn.Pos(), "function %s redeclared (previous declaration at %s)", fn.Name, prev.Pos())
			return
		}
		g.funcs[fn.Name] = fn
	}

	g.genModulePrologue()
	for _, s := range m.Stmts {
		g.genFunc(s.(*syntax.FuncDecl))
		if g.failed() {
			return
		}
	}
	g.e.emitLine()
	g.e.emit("%s", abi.NoExecStack)
}

func (g *Generator) genModulePrologue() {
	g.e.emit("%s", abi.Syntax)
	g.e.emit(".section .rodata")
	g.e.emitLabel(abi.FmtLabel)
	g.e.emitInst(".string %s", abi.FmtString)
	g.e.emit(".text")
	g.e.emit(".globl %s", abi.EntryPoint)
}

// genFunc emits one function: prologue, parameter spills, body and the
// fall-through epilogue, which returns 0.
func (g *Generator) genFunc(fn *syntax.FuncDecl) {
	if len(fn.Params) > abi.MaxRegArgs {
		g.errorf(fn.Pos(), "function %s has %d parameters; at most %d are supported",
			fn.Name, len(fn.Params), abi.MaxRegArgs)
		return
	}

	g.fn = fn
	g.env = NewEnv()
	for _, p := range fn.Params {
		if _, dup := g.env.Lookup(p.Name); dup {
			g.errorf(p.Pos(), "duplicate parameter %s in function %s", p.Name, fn.Name)
			return
		}
		g.env.Allocate(p.Name)
	}

	frame := frameSize(fn)
	g.log.Debugf("function %s: %d params, frame %d bytes", fn.Name, len(fn.Params), frame)

	g.e.emitLine()
	g.e.emitLabel(fn.Name)
	g.e.emitInst("push %s", abi.RegFrame)
	g.e.emitInst("mov %s, %s", abi.RegFrame, abi.RegStack)
	if frame > 0 {
		g.e.emitInst("sub %s, %d", abi.RegStack, frame)
	}
	g.e.emitComment("function '%s' begin", fn.Name)
	for i, p := range fn.Params {
		off, _ := g.env.Lookup(p.Name)
		g.e.emitInst("mov [%s-%d], %s", abi.RegFrame, slotAddr(off), abi.ArgRegs[i])
	}

	g.genBlock(fn.Body)
	if g.failed() {
		return
	}

	g.e.emitComment("function '%s' end", fn.Name)
	g.e.emitInst("mov %s, 0", abi.RegReturn)
	g.genLeave()
}

// genLeave tears down the frame and returns; the result is already in rax.
func (g *Generator) genLeave() {
	g.e.emitInst("mov %s, %s", abi.RegStack, abi.RegFrame)
	g.e.emitInst("pop %s", abi.RegFrame)
	g.e.emitInst("ret")
}

// ----------------------------------------------------------------------------
// Frame sizing

// frameSize returns the bytes of local storage fn needs. It replays the
// allocations generation will perform (parameters, then every assignment
// target in evaluation order) on a scratch Env, without emitting anything.
func frameSize(fn *syntax.FuncDecl) int {
	env := NewEnv()
	for _, p := range fn.Params {
		env.Allocate(p.Name)
	}
	for _, s := range fn.Body {
		syntax.Inspect(s, func(n syntax.Node) bool {
			switch n := n.(type) {
			case *syntax.FuncDecl:
				return false
			case *syntax.BinaryExpr:
				if id, ok := n.X.(*syntax.Name); ok && n.Op == syntax.Assign {
					env.Allocate(id.Value)
				}
			}
			return true
		})
	}
	return env.FrameSize()
}
