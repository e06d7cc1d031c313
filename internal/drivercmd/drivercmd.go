// Package drivercmd implements the CLI ambient layer around the compiler
// core: argument parsing, file reading, and diagnostic printing, none of
// which spec.md's core treats as its own concern (spec.md section 6 calls
// these out as external to the core, giving only the interface the core
// expects a driver to provide).
//
// Grounded on the teacher's internal/maincmd: a single Cmd struct driven by
// github.com/mna/mainer's Parser/Stdio/ExitCode, with one method per
// subcommand discovered by buildCmds's reflection-based convention.
package drivercmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"

	"ccompile/lang/token"
)

const binName = "ccompile"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <source-file>
       %[1]s tokenize|parse <source-file>...
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <source-file>
       %[1]s tokenize|parse <source-file>...
       %[1]s -h|--help
       %[1]s -v|--version

Compiles a single file from a subset of C to x86-64 assembly (Intel syntax,
System V AMD64 ABI), written to standard output.

The <command> can be one of:
       tokenize                  Run only the lexer and print the resulting
                                  token stream, one token per line.
       parse                     Run the lexer and parser and print the
                                  resulting typed abstract syntax tree.

With no command, %[1]s runs the full pipeline (tokenize, parse, generate)
and writes assembly text to standard output.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --config <path>           Use this config file instead of looking for
                                  .ccompile.yaml next to the source file.
`, binName)
)

// Cmd is the CLI's argument and dispatch surface, driven by mainer.Parser.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help       bool   `flag:"h,help"`
	Version    bool   `flag:"v,version"`
	ConfigPath string `flag:"config"`

	args    []string
	flags   map[string]bool
	cmdFn   func(context.Context, mainer.Stdio, []string) error
	cmdArgs []string // the slice of c.args actually meant for cmdFn
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

// Validate resolves which subcommand (if any) was requested and checks its
// argument count, matching the teacher's Validate discipline of failing
// fast before Main does any real work.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no source file specified")
	}

	switch c.args[0] {
	case "tokenize", "parse":
		cmdName := c.args[0]
		commands := buildCmds(c)
		c.cmdFn = commands[cmdName]
		c.cmdArgs = c.args[1:]
		if len(c.cmdArgs) == 0 {
			return fmt.Errorf("%s: at least one file must be provided", cmdName)
		}
	default:
		if len(c.args) != 1 {
			return errors.New("exactly one source file must be provided")
		}
		c.cmdArgs = c.args
		c.cmdFn = func(ctx context.Context, stdio mainer.Stdio, args []string) error {
			return Compile(ctx, stdio, c.config(args[0]), args[0])
		}
	}
	return nil
}

// config resolves the project config (if any) for the given source file,
// silently falling back to defaults on any error: config is pure ambient
// convenience per SPEC_FULL's config module, never a hard requirement.
func (c *Cmd) config(sourceFile string) Config {
	path := c.ConfigPath
	if path == "" {
		path = defaultConfigPath(sourceFile)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return Config{PosMode: token.PosLong}
	}
	return cfg
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.cmdArgs); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds discovers Cmd's subcommand methods by the same reflection
// convention as the teacher's maincmd.buildCmds: any exported method taking
// (context.Context, mainer.Stdio, []string) and returning error becomes a
// subcommand named after the lowercased method name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
