// Package abi defines the target constants shared by the code generator
// and its tests: the x86-64 System V calling convention and the C library
// symbols that generated code links against.
package abi

import (
	"strconv"
	"strings"
)

// Target configuration
const (
	// Syntax is the assembler dialect directive emitted first in every file.
	Syntax = ".intel_syntax noprefix"

	// NoExecStack marks the object as not needing an executable stack.
	NoExecStack = `.section .note.GNU-stack,"",@progbits`

	// EntryPoint is the symbol exported for the C runtime.
	EntryPoint = "main"
)

// Stack layout
const (
	// SlotSize is the size of one local variable slot and of one
	// evaluation stack entry.
	SlotSize = 8

	// StackAlign is the required rsp alignment at a call instruction.
	StackAlign = 16
)

// Registers
const (
	RegReturn = "rax"
	RegFrame  = "rbp"
	RegStack  = "rsp"
)

// ArgRegs lists the integer argument registers in order.
var ArgRegs = [...]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// MaxRegArgs is the number of arguments passed in registers. Stack
// arguments are not supported.
const MaxRegArgs = len(ArgRegs)

// C library interface
const (
	// FnPrintf is the libc function behind the print builtin.
	FnPrintf = "printf"

	// BuiltinPrint is the source-level name of the print builtin.
	BuiltinPrint = "print"

	// FmtLabel labels the read-only "%d\n" format string.
	FmtLabel = ".LC0"

	// FmtString is the format string printed by the print builtin.
	FmtString = `"%d\n"`
)

// PLT returns the symbol used to call an external function through the
// procedure linkage table.
func PLT(name string) string {
	return name + "@PLT"
}

// AlignUp rounds n up to a multiple of align, which must be a power of two.
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// IsReserved reports whether name would be read by the assembler as a
// register or an Intel syntax keyword rather than a symbol. Such a name
// must never be emitted as a label or call target: "call rax" is an
// indirect call through the register. Registers are matched without
// regard to case, as the assembler does.
func IsReserved(name string) bool {
	return reserved[strings.ToLower(name)]
}

var reserved = func() map[string]bool {
	m := map[string]bool{}
	add := func(names ...string) {
		for _, n := range names {
			m[n] = true
		}
	}
	for _, r := range []string{"a", "b", "c", "d"} {
		add("r"+r+"x", "e"+r+"x", r+"x", r+"l", r+"h")
	}
	for _, r := range []string{"si", "di", "bp", "sp"} {
		add("r"+r, "e"+r, r, r+"l")
	}
	for i := 8; i <= 15; i++ {
		r := "r" + strconv.Itoa(i)
		add(r, r+"d", r+"w", r+"b", r+"l")
	}
	for i := 0; i < 32; i++ {
		n := strconv.Itoa(i)
		add("xmm"+n, "ymm"+n, "zmm"+n)
		if i < 16 {
			add("cr"+n, "dr"+n)
		}
		if i < 8 {
			add("mm"+n, "k"+n, "st"+n)
		}
	}
	add("rip", "eip", "ip", "st", "cs", "ds", "es", "fs", "gs", "ss")
	add("byte", "word", "dword", "fword", "qword", "tbyte", "oword",
		"xmmword", "ymmword", "zmmword", "ptr", "offset", "short", "flat",
		"and", "or", "xor", "not", "shl", "shr", "mod",
		"eq", "ne", "lt", "le", "gt", "ge")
	return m
}()
