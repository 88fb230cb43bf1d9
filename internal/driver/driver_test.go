package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-not-fish/mycc/internal/codegen"
	"github.com/you-not-fish/mycc/internal/config"
	"github.com/you-not-fish/mycc/internal/syntax"
)

// fixtures copies testdata into a fresh directory and returns it.
func fixtures(t *testing.T) string {
	t.Helper()
	// CopyAll creates dst itself and fails if it exists.
	dir := filepath.Join(t.TempDir(), "ws")
	require.NoError(t, cp.CopyAll(dir, "testdata"))
	return dir
}

func TestCompileSource(t *testing.T) {
	c := New(nil)
	lines, err := c.CompileSource("x.c", strings.NewReader("int main() { return 0; }"))
	require.NoError(t, err)
	assert.Equal(t, ".intel_syntax noprefix", lines[0])
	assert.Contains(t, lines, "  # function 'main' begin")
}

func TestCompileSourceNoComments(t *testing.T) {
	cfg := config.Default()
	cfg.Build.Comments = false
	lines, err := New(cfg).CompileSource("x.c", strings.NewReader("int main() { return 0; }"))
	require.NoError(t, err)
	for _, l := range lines {
		assert.NotContains(t, l, "#")
	}
}

func TestCompileSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
		syntax  bool
	}{
		{"lexical", "int main() { return 1 @ 2; }", "x.c:1:23: ", true},
		{"syntax", "int main() { return 1 +; }", "x.c:1:24: expected expression, found ';'", true},
		{"generation", "int main() { return y; }", "x.c:1:21: undefined variable y", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := New(nil).CompileSource("x.c", strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Nil(t, lines)
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantErr), "got %q", err)

			var serr *syntax.Error
			var gerr *codegen.Error
			if tt.syntax {
				assert.True(t, errors.As(err, &serr))
			} else {
				assert.True(t, errors.As(err, &gerr))
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "dir/a.s", c.OutputPath("dir/a.c", ""))
	assert.Equal(t, "b.s", c.OutputPath("b", ""))
	assert.Equal(t, "x.s", c.OutputPath("dir/a.c", "x.s"))

	cfg := config.Default()
	cfg.Build.OutDir = "build"
	c = New(cfg)
	assert.Equal(t, filepath.Join("build", "a.s"), c.OutputPath("dir/a.c", ""))
	assert.Equal(t, "x.s", c.OutputPath("dir/a.c", "x.s"))
}

func TestCompileFile(t *testing.T) {
	dir := fixtures(t)
	src := filepath.Join(dir, "fib.c")
	out := filepath.Join(dir, "fib.s")

	require.NoError(t, New(nil).CompileFile(src, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, ".intel_syntax noprefix\n"))
	assert.True(t, strings.HasSuffix(text, ".section .note.GNU-stack,\"\",@progbits\n"))
	assert.Contains(t, text, "\nfib:\n")
	assert.Contains(t, text, "call printf@PLT")
}

func TestCompileFileFailureLeavesNoOutput(t *testing.T) {
	dir := fixtures(t)

	for _, name := range []string{"syntax_err", "gen_err"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(dir, name+".s")
			err := New(nil).CompileFile(filepath.Join(dir, name+".c"), out)
			require.Error(t, err)

			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr), "output file should not exist")
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".mycc-"), "temp file %s left behind", e.Name())
	}
}

func TestCompileFileKeepsOldOutputOnFailure(t *testing.T) {
	dir := fixtures(t)
	out := filepath.Join(dir, "gen_err.s")
	require.NoError(t, os.WriteFile(out, []byte("old\n"), 0o644))

	require.Error(t, New(nil).CompileFile(filepath.Join(dir, "gen_err.c"), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))
}

func TestCompileFileMissing(t *testing.T) {
	err := New(nil).CompileFile(filepath.Join(t.TempDir(), "nope.c"), "nope.s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompileAll(t *testing.T) {
	dir := fixtures(t)
	paths := []string{filepath.Join(dir, "fib.c"), filepath.Join(dir, "sum.c")}

	require.NoError(t, New(nil).CompileAll(context.Background(), paths, 2))

	for _, p := range paths {
		_, err := os.Stat(strings.TrimSuffix(p, ".c") + ".s")
		assert.NoError(t, err)
	}
}

func TestCompileAllOutDir(t *testing.T) {
	dir := fixtures(t)
	cfg := config.Default()
	cfg.Build.OutDir = filepath.Join(dir, "out", "asm")

	require.NoError(t, New(cfg).CompileAll(context.Background(), []string{filepath.Join(dir, "sum.c")}, 1))

	_, err := os.Stat(filepath.Join(cfg.Build.OutDir, "sum.s"))
	assert.NoError(t, err)
}

func TestCompileAllReportsFailure(t *testing.T) {
	dir := fixtures(t)
	paths := []string{filepath.Join(dir, "gen_err.c")}

	err := New(nil).CompileAll(context.Background(), paths, 0)
	require.Error(t, err)
	var gerr *codegen.Error
	assert.True(t, errors.As(err, &gerr))
	assert.Equal(t, "undefined variable missing", gerr.Msg)
}

func TestCompileAllCancelled(t *testing.T) {
	dir := fixtures(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(nil).CompileAll(ctx, []string{filepath.Join(dir, "fib.c")}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(filepath.Join(dir, "fib.s"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompileAllOutputCollision(t *testing.T) {
	dir := fixtures(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, cp.CopyFile(filepath.Join(dir, "sub", "fib.c"), filepath.Join(dir, "fib.c")))

	cfg := config.Default()
	cfg.Build.OutDir = filepath.Join(dir, "out")
	err := New(cfg).CompileAll(context.Background(),
		[]string{filepath.Join(dir, "fib.c"), filepath.Join(dir, "sub", "fib.c")}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would both be written to")
}
