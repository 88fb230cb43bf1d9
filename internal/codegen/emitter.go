package codegen

import (
	"bufio"
	"fmt"
	"io"
)

// emitter accumulates assembly source lines. Directives and labels are
// unindented; instructions and comments are indented by two spaces.
type emitter struct {
	lines    []string
	comments bool
}

// reset discards everything emitted so far.
func (e *emitter) reset() {
	e.lines = nil
}

// emit appends a formatted line with no indentation.
func (e *emitter) emit(format string, args ...interface{}) {
	e.lines = append(e.lines, fmt.Sprintf(format, args...))
}

// emitLine appends a blank line.
func (e *emitter) emitLine() {
	e.lines = append(e.lines, "")
}

// emitInst appends an indented instruction line.
func (e *emitter) emitInst(format string, args ...interface{}) {
	e.lines = append(e.lines, "  "+fmt.Sprintf(format, args...))
}

// emitComment appends an indented comment, if comments are enabled.
func (e *emitter) emitComment(format string, args ...interface{}) {
	if e.comments {
		e.emitInst("# "+format, args...)
	}
}

// emitLabel appends a label definition.
func (e *emitter) emitLabel(name string) {
	e.emit("%s:", name)
}

// WriteLines writes lines to w, each terminated by a newline.
func WriteLines(w io.Writer, lines []string) error {
	lw := &lineWriter{w: bufio.NewWriter(w)}
	for _, l := range lines {
		lw.writeLine(l)
	}
	return lw.flush()
}

// lineWriter keeps the first write error and ignores later writes.
type lineWriter struct {
	w   *bufio.Writer
	err error
}

func (lw *lineWriter) writeLine(s string) {
	if lw.err != nil {
		return
	}
	if _, lw.err = lw.w.WriteString(s); lw.err == nil {
		lw.err = lw.w.WriteByte('\n')
	}
}

func (lw *lineWriter) flush() error {
	if lw.err != nil {
		return lw.err
	}
	return lw.w.Flush()
}
