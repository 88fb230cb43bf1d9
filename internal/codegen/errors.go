package codegen

import (
	"fmt"

	"github.com/you-not-fish/mycc/internal/syntax"
)

// Error is a code generation error.
type Error struct {
	Pos syntax.Pos
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// errorf records a generation error. Only the first one is kept; after
// it the generator unwinds without emitting anything useful.
func (g *Generator) errorf(pos syntax.Pos, format string, args ...interface{}) {
	if g.first != nil {
		return
	}
	g.first = &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	g.log.Debugf("generation error: %s", g.first)
}

// failed reports whether an error has been recorded.
func (g *Generator) failed() bool {
	return g.first != nil
}
