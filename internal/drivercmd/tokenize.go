package drivercmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"ccompile/lang/diag"
	"ccompile/lang/scanner"
	"ccompile/lang/token"
)

// Tokenize is the "tokenize" subcommand: run only the lexer over each file
// and print its token stream, one token per line.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, file := range args {
		if err := tokenizeFile(stdio, c.config(file).PosMode, file); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func tokenizeFile(stdio mainer.Stdio, posMode token.PosMode, file string) error {
	src, err := readSource(file)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	fset := token.NewFileSet()
	f := fset.AddFile(file, -1, len(src))
	f.SetContent(src)
	errs := diag.NewList(fset)

	var sc scanner.Scanner
	sc.Init(f, src, errs)

	var val token.Value
	for {
		k := sc.Scan(&val)
		fmt.Fprintf(stdio.Stdout, "%s: %s", token.FormatPos(posMode, f, val.Pos, true), k)
		if lit := k.Literal(val); lit != "" {
			fmt.Fprintf(stdio.Stdout, " %s", lit)
		}
		fmt.Fprintln(stdio.Stdout)
		if k == token.EOF {
			break
		}
	}

	if errs.HasErrors() {
		errs.Sort()
		diag.PrintCaret(stdio.Stderr, fset, errs)
		return errs.Err()
	}
	return nil
}
