package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/you-not-fish/mycc/internal/codegen"
	"github.com/you-not-fish/mycc/internal/syntax"
)

type colorMode int

const (
	colorAuto colorMode = iota
	colorAlways
	colorNever
)

func parseColorMode(s string) (colorMode, error) {
	switch s {
	case "", "auto":
		return colorAuto, nil
	case "always":
		return colorAlways, nil
	case "never":
		return colorNever, nil
	}
	return colorNever, fmt.Errorf("invalid --color value %q (want auto, always or never)", s)
}

// diagnostics prints errors in the form "file:line:col: error: msg".
type diagnostics struct {
	w     io.Writer
	pos   *color.Color
	label *color.Color
}

func newDiagnostics(w io.Writer, mode colorMode) *diagnostics {
	d := &diagnostics{
		pos:   color.New(color.Bold),
		label: color.New(color.FgRed, color.Bold),
	}

	f, isFile := w.(*os.File)
	on := mode == colorAlways
	if mode == colorAuto && isFile {
		on = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	switch {
	case on && isFile:
		d.w = colorable.NewColorable(f)
	case on:
		d.w = w
	default:
		d.w = colorable.NewNonColorable(w)
	}

	if on {
		d.pos.EnableColor()
		d.label.EnableColor()
	} else {
		d.pos.DisableColor()
		d.label.DisableColor()
	}
	return d
}

// report prints err. Positional errors from the compiler get their
// position in front of the severity label.
func (d *diagnostics) report(err error) {
	var (
		serr *syntax.Error
		gerr *codegen.Error
	)
	switch {
	case errors.As(err, &serr):
		d.print(serr.Pos.String(), serr.Msg)
	case errors.As(err, &gerr) && gerr.Pos.IsValid():
		d.print(gerr.Pos.String(), gerr.Msg)
	default:
		d.print("mycc", err.Error())
	}
}

func (d *diagnostics) print(where, msg string) {
	d.pos.Fprintf(d.w, "%s:", where)
	d.label.Fprint(d.w, " error:")
	fmt.Fprintf(d.w, " %s\n", msg)
}
