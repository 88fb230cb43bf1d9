package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rjeczalik/notify"
	"gopkg.in/urfave/cli.v1"

	"github.com/you-not-fish/mycc/internal/driver"
)

// runWatch builds the input file and rebuilds it on every change until
// interrupted.
func (s *session) runWatch(ctx *cli.Context) error {
	if err := s.setup(ctx); err != nil {
		return err
	}
	filename, err := singleInput(ctx)
	if err != nil {
		return err
	}

	c := s.compiler(ctx)
	out := c.OutputPath(filename, outputPath(ctx))

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(s.stdout, "watching %s (Ctrl-C to stop)\n", filename)
	return watch(sigctx, c, filename, out, s.diag.report)
}

// watch compiles file to out, then again after every write to file, until
// ctx is done. Compilation errors go to report and do not stop watching.
//
// The containing directory is watched rather than the file itself, since
// editors often save by writing a new file and renaming it over the old.
func watch(ctx context.Context, c *driver.Compiler, file, out string, report func(error)) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	events := make(chan notify.EventInfo, 16)
	if err := notify.Watch(filepath.Dir(abs), events, notify.Write, notify.Create, notify.Rename); err != nil {
		return fmt.Errorf("cannot watch %s: %w", file, err)
	}
	defer notify.Stop(events)

	rebuild := func() {
		if err := c.CompileFile(file, out); err != nil {
			report(err)
			return
		}
		c.Log.Noticef("built %s", out)
	}

	rebuild()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if filepath.Base(ev.Path()) != filepath.Base(abs) {
				continue
			}
			c.Log.Debugf("%s: %s", ev.Event(), ev.Path())
			rebuild()
		}
	}
}
