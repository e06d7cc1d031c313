package drivercmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"ccompile/lang/codegen"
	"ccompile/lang/diag"
	"ccompile/lang/parser"
	"ccompile/lang/token"
)

// Compile runs the full pipeline (tokenize, parse, generate) over file and
// writes the resulting assembly to stdio.Stdout, per spec.md section 6's
// driver/core split: the driver's job is reading the file,
// newline-terminating it, and reporting diagnostics; the core's job is
// everything from tokenize() through codegen().
func Compile(ctx context.Context, stdio mainer.Stdio, cfg Config, file string) error {
	src, err := readSource(file)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	fset := token.NewFileSet()
	errs := diag.NewList(fset)
	prog, _ := parser.ParseFile(fset, file, src, errs)
	if cfg.WarningsAsErrors {
		errs.PromoteWarnings()
	}
	if errs.HasErrors() {
		errs.Sort()
		diag.PrintCaret(stdio.Stderr, fset, errs)
		return errs.Err()
	}

	if genErr := codegen.Generate(stdio.Stdout, prog); genErr != nil {
		fmt.Fprintln(stdio.Stderr, genErr)
		return genErr
	}
	return nil
}

// readSource reads file in full and appends a trailing newline if missing,
// per spec.md section 6. The original driver this is grounded on also
// NUL-terminates the buffer for a C-string-style scanner lookahead; this
// scanner instead bounds every read against len(src) directly, so no
// sentinel byte is needed (or wanted: appending one would surface as a
// spurious trailing byte in diagnostics quoting the last line).
func readSource(file string) ([]byte, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if len(src) == 0 || src[len(src)-1] != '\n' {
		src = append(src, '\n')
	}
	return src, nil
}
