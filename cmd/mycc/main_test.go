package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cespare/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-not-fish/mycc/internal/config"
	"github.com/you-not-fish/mycc/internal/driver"
)

// workspace copies testdata into a temp dir with an empty mycc.toml, so
// tests never pick up a configuration from the surrounding tree.
func workspace(t *testing.T) string {
	t.Helper()
	// CopyAll creates dst itself and fails if it exists.
	dir := filepath.Join(t.TempDir(), "ws")
	require.NoError(t, cp.CopyAll(dir, "testdata"))
	writeFile(t, filepath.Join(dir, config.FileName), "")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// runMycc runs the command line with the workspace configuration and
// colours off, and returns the exit code and captured output.
func runMycc(t *testing.T, dir string, args ...string) (code int, stdout string, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	argv := append([]string{"mycc", "--config", filepath.Join(dir, config.FileName), "--color", "never"}, args...)
	code = run(argv, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestBuildDefaultAction(t *testing.T) {
	dir := workspace(t)
	src := filepath.Join(dir, "hello.c")

	code, _, errOut := runMycc(t, dir, src)
	require.Equal(t, 0, code, "stderr:\n%s", errOut)

	data, err := os.ReadFile(filepath.Join(dir, "hello.s"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "call printf@PLT")
	assert.Contains(t, string(data), "# function 'main' begin")
}

func TestBuildCommand(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "custom.s")

	code, _, errOut := runMycc(t, dir, "build", "-o", out, "--no-comments", filepath.Join(dir, "square.c"))
	require.Equal(t, 0, code, "stderr:\n%s", errOut)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\nsquare:\n")
	assert.NotContains(t, string(data), "#")
}

func TestBuildFlagsBeforeCommand(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "early.s")

	code, _, errOut := runMycc(t, dir, "-o", out, "--no-comments", "build", filepath.Join(dir, "square.c"))
	require.Equal(t, 0, code, "stderr:\n%s", errOut)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\nsquare:\n")
	assert.NotContains(t, string(data), "#")
	_, err = os.Stat(filepath.Join(dir, "square.s"))
	assert.True(t, os.IsNotExist(err), "square.s written despite -o")

	// The command's own flag wins.
	late := filepath.Join(dir, "late.s")
	code, _, errOut = runMycc(t, dir, "-o", out, "build", "-o", late, filepath.Join(dir, "hello.c"))
	require.Equal(t, 0, code, "stderr:\n%s", errOut)
	_, err = os.Stat(late)
	assert.NoError(t, err)
}

func TestBuildFlagsBeforeCommandMultipleFiles(t *testing.T) {
	dir := workspace(t)

	code, _, errOut := runMycc(t, dir, "-o", "x.s", "build", filepath.Join(dir, "hello.c"), filepath.Join(dir, "square.c"))
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(errOut, "mycc: error: -o cannot be used with multiple input files\n"), "stderr:\n%s", errOut)

	code, _, errOut = runMycc(t, dir, "--jobs", "1", "build", filepath.Join(dir, "hello.c"), filepath.Join(dir, "square.c"))
	require.Equal(t, 0, code, "stderr:\n%s", errOut)
}

func TestBuildMultipleFiles(t *testing.T) {
	dir := workspace(t)

	code, _, errOut := runMycc(t, dir, "build", "--jobs", "2",
		filepath.Join(dir, "hello.c"), filepath.Join(dir, "square.c"))
	require.Equal(t, 0, code, "stderr:\n%s", errOut)

	for _, name := range []string{"hello.s", "square.s"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestBuildUsesConfig(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, config.FileName), "[build]\nout-dir = \"asm\"\ncomments = false\n")

	code, _, errOut := runMycc(t, dir, "build", filepath.Join(dir, "hello.c"))
	require.Equal(t, 0, code, "stderr:\n%s", errOut)

	data, err := os.ReadFile(filepath.Join(dir, "asm", "hello.s"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "#")
}

func TestBuildErrors(t *testing.T) {
	dir := workspace(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no_input", []string{"build"}, "mycc: error: no input file\n"},
		{"o_with_many", []string{"build", "-o", "x.s", filepath.Join(dir, "hello.c"), filepath.Join(dir, "square.c")},
			"mycc: error: -o cannot be used with multiple input files\n"},
		{"syntax", []string{"build", filepath.Join(dir, "bad.c")},
			filepath.Join(dir, "bad.c") + ":2:13: error: expected expression, found ';'\n"},
		{"missing", []string{"build", filepath.Join(dir, "nope.c")}, "mycc: error: cannot read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runMycc(t, dir, tt.args...)
			assert.Equal(t, 1, code)
			assert.True(t, strings.HasPrefix(errOut, tt.want), "stderr:\n%s", errOut)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "bad.s"))
	assert.True(t, os.IsNotExist(err))
}

func TestBadConfig(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, config.FileName), "[build\n")

	code, _, errOut := runMycc(t, dir, filepath.Join(dir, "hello.c"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "parse error in")
}

func TestColorModes(t *testing.T) {
	dir := workspace(t)
	bad := filepath.Join(dir, "bad.c")

	var out, errOut bytes.Buffer
	code := run([]string{"mycc", "--config", filepath.Join(dir, config.FileName), "--color", "always", bad}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "\x1b[")

	errOut.Reset()
	code = run([]string{"mycc", "--config", filepath.Join(dir, config.FileName), "--color", "auto", bad}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.NotContains(t, errOut.String(), "\x1b[", "a buffer is not a terminal")

	errOut.Reset()
	code = run([]string{"mycc", "--color", "sometimes", bad}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), `invalid --color value "sometimes"`)
}

func TestTokens(t *testing.T) {
	dir := workspace(t)

	code, out, errOut := runMycc(t, dir, "tokens", filepath.Join(dir, "square.c"))
	require.Equal(t, 0, code, "stderr:\n%s", errOut)

	assert.Contains(t, out, "Position")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, `"square"`)
	assert.Contains(t, out, "EOF")
	assert.Contains(t, out, filepath.Join(dir, "square.c")+":1:5")
}

func TestFormatLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", `""`},
		{"abc", `"abc"`},
		{"a\nb", `"a\nb"`},
		{"q\"\\", `"q\"\\"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatLiteral(tt.in))
	}
}

func TestAST(t *testing.T) {
	dir := workspace(t)
	src := filepath.Join(dir, "square.c")

	t.Run("text", func(t *testing.T) {
		code, out, errOut := runMycc(t, dir, "ast", src)
		require.Equal(t, 0, code, "stderr:\n%s", errOut)
		assert.Contains(t, out, "FuncDecl")
		assert.Contains(t, out, "Name: square")
	})

	t.Run("brief", func(t *testing.T) {
		code, out, _ := runMycc(t, dir, "ast", "--format", "brief", src)
		require.Equal(t, 0, code)
		assert.Equal(t,
			"Module{Fn(square, [x]) -> int {Return(Mul{Id(x), Id(x)})}; Fn(main, []) -> int {Return(Call(square, Num(7)))}}\n",
			out)
	})

	t.Run("json", func(t *testing.T) {
		code, out, _ := runMycc(t, dir, "ast", "--format", "json", src)
		require.Equal(t, 0, code)
		var v map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &v))
		assert.Equal(t, "Module", v["type"])
	})

	t.Run("dump", func(t *testing.T) {
		code, out, _ := runMycc(t, dir, "ast", "--format", "dump", src)
		require.Equal(t, 0, code)
		assert.Contains(t, out, "syntax.Module")
		assert.Contains(t, out, `Name: (string) (len=6) "square"`)
	})

	t.Run("unknown_format", func(t *testing.T) {
		code, _, errOut := runMycc(t, dir, "ast", "--format", "xml", src)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, `unknown AST format "xml"`)
	})

	t.Run("two_files", func(t *testing.T) {
		code, _, errOut := runMycc(t, dir, "ast", src, src)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "expected one input file, got 2")
	})
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatchRebuilds(t *testing.T) {
	if testing.Short() {
		t.Skip("watch test uses the filesystem notifier")
	}
	dir := workspace(t)
	src := filepath.Join(dir, "hello.c")
	out := filepath.Join(dir, "hello.s")
	c := driver.New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 16)
	done := make(chan error, 1)
	go func() { done <- watch(ctx, c, src, out, func(err error) { errs <- err }) }()

	contains := func(s string) func() bool {
		return func() bool {
			data, err := os.ReadFile(out)
			return err == nil && strings.Contains(string(data), s)
		}
	}
	waitFor(t, contains("\nmain:\n"))

	writeFile(t, src, "int helper() { return 1; }\nint main() { return helper(); }\n")
	waitFor(t, contains("\nhelper:\n"))

	writeFile(t, src, "int main() { return ; ; }\n")
	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "expected expression")
	case <-time.After(10 * time.Second):
		t.Fatal("no error reported for broken source")
	}

	cancel()
	assert.NoError(t, <-done)
}
