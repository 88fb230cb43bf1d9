package codegen

import "github.com/you-not-fish/mycc/internal/abi"

// Env maps the variables of one function to stack slots.
//
// Scope is flat: a name bound anywhere in a function body stays bound for
// the rest of the function, whatever block introduced it. Offsets are
// handed out in allocation order, slot*8, and never change.
type Env struct {
	offsets map[string]int
	n       int
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{offsets: make(map[string]int)}
}

// Allocate binds name to the next free slot and returns its offset.
// Allocating a name that is already bound returns the existing offset.
func (e *Env) Allocate(name string) int {
	if off, ok := e.offsets[name]; ok {
		return off
	}
	off := e.n * abi.SlotSize
	e.offsets[name] = off
	e.n++
	return off
}

// Lookup returns the offset bound to name.
func (e *Env) Lookup(name string) (int, bool) {
	off, ok := e.offsets[name]
	return off, ok
}

// Len returns the number of bound names.
func (e *Env) Len() int { return e.n }

// FrameSize returns the bytes needed for all slots, rounded up to the
// stack alignment.
func (e *Env) FrameSize() int {
	return abi.AlignUp(e.n*abi.SlotSize, abi.StackAlign)
}

// slotAddr returns the frame-relative displacement of the slot at off.
// Slot 0 sits just below the saved frame pointer.
func slotAddr(off int) int {
	return off + abi.SlotSize
}
