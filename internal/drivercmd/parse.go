package drivercmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"ccompile/lang/ast"
	"ccompile/lang/diag"
	"ccompile/lang/parser"
	"ccompile/lang/token"
)

// Parse is the "parse" subcommand: run the lexer and parser over each file
// and print the resulting typed AST, one function/global declaration tree
// per top-level entry.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, file := range args {
		if err := parseFile(stdio, c.config(file).PosMode, file); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func parseFile(stdio mainer.Stdio, posMode token.PosMode, file string) error {
	src, err := readSource(file)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	fset := token.NewFileSet()
	errs := diag.NewList(fset)
	prog, perr := parser.ParseFile(fset, file, src, errs)

	printer := ast.Printer{Output: stdio.Stdout, Pos: posMode}
	files := fset.Files()
	var f *token.File
	if len(files) > 0 {
		f = files[0]
	}
	if err := printer.Print(prog, f); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if errs.HasErrors() {
		errs.Sort()
		diag.PrintCaret(stdio.Stderr, fset, errs)
		return errs.Err()
	}
	return perr
}
