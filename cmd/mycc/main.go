// Package main implements the mycc compiler entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"gopkg.in/urfave/cli.v1"

	"github.com/you-not-fish/mycc/internal/config"
	"github.com/you-not-fish/mycc/internal/driver"
	"github.com/you-not-fish/mycc/internal/syntax"
)

// Version information
const Version = "0.1.0-dev"

// Global flags
var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "configuration `FILE` (default: nearest mycc.toml)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity: 0 warnings, 1 info, 2 debug (default from config)",
	}
	colorFlag = cli.StringFlag{
		Name:  "color",
		Value: "auto",
		Usage: "colour diagnostics: auto, always or never",
	}
)

// Build flags
var (
	outputFlag = cli.StringFlag{
		Name:  "o",
		Usage: "write assembly to `FILE` (single input only)",
	}
	jobsFlag = cli.IntFlag{
		Name:  "jobs",
		Usage: "compile at most `N` files in parallel (default from config)",
	}
	noCommentsFlag = cli.BoolFlag{
		Name:  "no-comments",
		Usage: "omit the function begin/end comments",
	}
	formatFlag = cli.StringFlag{
		Name:  "format",
		Value: "text",
		Usage: "AST output format: text, brief, json or dump",
	}
)

var buildFlags = []cli.Flag{outputFlag, jobsFlag, noCommentsFlag}

var errNoInput = errors.New("no input file")

// session holds what the commands share: output streams, the loaded
// configuration and the diagnostics printer.
type session struct {
	stdout, stderr io.Writer

	cfg  *config.Config
	diag *diagnostics
	log  commonlog.Logger
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	s := &session{
		stdout: stdout,
		stderr: stderr,
		diag:   newDiagnostics(stderr, colorNever),
		log:    commonlog.GetLogger("mycc"),
	}
	if err := s.newApp().Run(args); err != nil {
		s.diag.report(err)
		return 1
	}
	return 0
}

func (s *session) newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "mycc"
	app.Usage = "compile a small C subset to x86-64 assembly"
	app.Version = fmt.Sprintf("%s (%s)", Version, runtime.Version())
	app.Writer = s.stdout
	app.ErrWriter = s.stderr
	app.ArgsUsage = "FILE..."
	app.Flags = append([]cli.Flag{configFlag, verbosityFlag, colorFlag}, buildFlags...)
	app.Action = s.runBuild
	app.Commands = []cli.Command{
		{
			Name:      "build",
			Usage:     "Compile source files to .s files",
			ArgsUsage: "FILE...",
			Flags:     buildFlags,
			Action:    s.runBuild,
		},
		{
			Name:      "tokens",
			Usage:     "Print the token stream of a source file",
			ArgsUsage: "FILE",
			Action:    s.runTokens,
		},
		{
			Name:      "ast",
			Usage:     "Print the syntax tree of a source file",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{formatFlag},
			Action:    s.runAST,
		},
		{
			Name:      "watch",
			Usage:     "Build a source file and rebuild it whenever it changes",
			ArgsUsage: "FILE",
			Flags:     []cli.Flag{outputFlag, noCommentsFlag},
			Action:    s.runWatch,
		},
	}
	return app
}

// setup applies the global flags: colour mode, configuration file and
// logging. Every command calls it first.
func (s *session) setup(ctx *cli.Context) error {
	mode, err := parseColorMode(ctx.GlobalString(colorFlag.Name))
	if err != nil {
		return err
	}
	s.diag = newDiagnostics(s.stderr, mode)

	var cfg *config.Config
	if file := ctx.GlobalString(configFlag.Name); file != "" {
		cfg, err = config.Load(file)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return err
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.GlobalInt(verbosityFlag.Name)
	}
	s.cfg = cfg

	var path *string
	if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, path)
	if cfg.Path != "" {
		s.log.Infof("using configuration %s", cfg.Path)
	}
	return nil
}

// compiler returns a driver configured from the session and the command's
// flags.
func (s *session) compiler(ctx *cli.Context) *driver.Compiler {
	cfg := *s.cfg
	if ctx.Bool(noCommentsFlag.Name) || ctx.GlobalBool(noCommentsFlag.Name) {
		cfg.Build.Comments = false
	}
	return driver.New(&cfg)
}

// singleInput returns the only positional argument.
func singleInput(ctx *cli.Context) (string, error) {
	switch ctx.NArg() {
	case 0:
		return "", errNoInput
	case 1:
		return ctx.Args().First(), nil
	}
	return "", fmt.Errorf("expected one input file, got %d", ctx.NArg())
}

// outputPath returns the -o flag. The build flags are accepted before the
// command name too ("mycc -o x.s build f.c"); the command's own flag wins.
func outputPath(ctx *cli.Context) string {
	if ctx.IsSet(outputFlag.Name) {
		return ctx.String(outputFlag.Name)
	}
	return ctx.GlobalString(outputFlag.Name)
}

// runBuild compiles every input file.
func (s *session) runBuild(ctx *cli.Context) error {
	if err := s.setup(ctx); err != nil {
		return err
	}
	files := []string(ctx.Args())
	if len(files) == 0 {
		return errNoInput
	}

	c := s.compiler(ctx)
	if out := outputPath(ctx); out != "" {
		if len(files) > 1 {
			return errors.New("-o cannot be used with multiple input files")
		}
		return c.CompileFile(files[0], out)
	}

	jobs := s.cfg.Build.Jobs
	switch {
	case ctx.IsSet(jobsFlag.Name):
		jobs = ctx.Int(jobsFlag.Name)
	case ctx.GlobalIsSet(jobsFlag.Name):
		jobs = ctx.GlobalInt(jobsFlag.Name)
	}
	return c.CompileAll(context.Background(), files, jobs)
}

// runTokens scans the input file and prints all tokens with positions.
func (s *session) runTokens(ctx *cli.Context) error {
	if err := s.setup(ctx); err != nil {
		return err
	}
	filename, err := singleInput(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", filename, err)
	}
	defer f.Close()

	toks, err := syntax.Tokenize(filename, f)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(s.stdout)
	table.SetHeader([]string{"Position", "Token", "Literal"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, l := range toks {
		table.Append([]string{l.Pos.String(), l.Tok.String(), formatLiteral(l.Lit)})
	}
	table.Render()
	return nil
}

// formatLiteral formats a literal for display, escaping special characters.
func formatLiteral(lit string) string {
	if lit == "" {
		return `""`
	}

	var b strings.Builder
	b.WriteRune('"')
	for _, r := range lit {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune('"')
	return b.String()
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// runAST parses the input file and prints the syntax tree.
func (s *session) runAST(ctx *cli.Context) error {
	if err := s.setup(ctx); err != nil {
		return err
	}
	format := ctx.String(formatFlag.Name)
	switch format {
	case "text", "brief", "json", "dump":
	default:
		return fmt.Errorf("unknown AST format %q (want text, brief, json or dump)", format)
	}

	filename, err := singleInput(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", filename, err)
	}
	defer f.Close()

	m, err := syntax.ParseFile(filename, f)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return syntax.FprintJSON(s.stdout, m)
	case "brief":
		_, err = fmt.Fprintln(s.stdout, syntax.String(m))
		return err
	case "dump":
		dumpConfig.Fdump(s.stdout, m)
	default:
		syntax.Fprint(s.stdout, m)
	}
	return nil
}
