// Package driver runs the compilation pipeline: tokenize, parse, generate
// and write the assembly file.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/you-not-fish/mycc/internal/codegen"
	"github.com/you-not-fish/mycc/internal/config"
	"github.com/you-not-fish/mycc/internal/syntax"
)

// Compiler compiles source files according to a configuration. It holds no
// per-file state, so one Compiler may compile several files at once.
type Compiler struct {
	Config *config.Config
	Log    commonlog.Logger
}

// New returns a Compiler for cfg. A nil cfg means config.Default().
func New(cfg *config.Config) *Compiler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Compiler{
		Config: cfg,
		Log:    commonlog.GetLogger("mycc.driver"),
	}
}

// CompileSource compiles src and returns the assembly lines. Errors are
// *syntax.Error or *codegen.Error.
func (c *Compiler) CompileSource(filename string, src io.Reader) ([]string, error) {
	toks, err := syntax.Tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	p := syntax.NewParser(toks, func(pos syntax.Pos, msg string) {
		c.Log.Debugf("%s: parse stopped: %s", pos, msg)
	})
	m, err := p.Parse()
	if err != nil {
		return nil, err
	}

	gen := codegen.New(
		codegen.WithComments(c.Config.Build.Comments),
		codegen.WithLogger(commonlog.GetLogger("mycc.codegen")),
	)
	return gen.Generate(m)
}

// OutputPath returns where the assembly for src goes. An explicit out
// wins; otherwise the extension of src is replaced by .s, inside the
// configured output directory if there is one.
func (c *Compiler) OutputPath(src, out string) string {
	if out != "" {
		return out
	}
	asm := strings.TrimSuffix(src, filepath.Ext(src)) + ".s"
	if c.Config.Build.OutDir != "" {
		return filepath.Join(c.Config.Build.OutDir, filepath.Base(asm))
	}
	return asm
}

// CompileFile compiles the file at path and writes the result to out. The
// output is written to a temporary file and renamed into place, so a
// failed compilation never leaves a partial or stale-looking file behind.
func (c *Compiler) CompileFile(path, out string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()

	lines, err := c.CompileSource(path, f)
	if err != nil {
		return err
	}

	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".mycc-*.s")
	if err != nil {
		return fmt.Errorf("cannot write %s: %w", out, err)
	}
	if err := writeAndClose(tmp, lines); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write %s: %w", out, err)
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cannot write %s: %w", out, err)
	}

	c.Log.Infof("compiled %s -> %s (%d lines)", path, out, len(lines))
	return nil
}

func writeAndClose(f *os.File, lines []string) error {
	werr := codegen.WriteLines(f, lines)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// CompileAll compiles every path to its default output path, running at
// most jobs compilations at a time. The first failure cancels the
// compilations that have not started yet and is returned.
func (c *Compiler) CompileAll(ctx context.Context, paths []string, jobs int) error {
	if jobs < 1 {
		jobs = 1
	}

	outs := make(map[string]string, len(paths))
	for _, path := range paths {
		out := c.OutputPath(path, "")
		if prev, dup := outs[out]; dup {
			return fmt.Errorf("%s and %s would both be written to %s", prev, path, out)
		}
		outs[out] = path
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return c.CompileFile(path, c.OutputPath(path, ""))
		})
	}
	return g.Wait()
}
