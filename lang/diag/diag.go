// Package diag implements the diagnostic sinks used by every compiler pass:
// formatted fatal errors that abort the pipeline, and caret-annotated
// source-location errors and warnings that point at the offending token or
// byte offset.
package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"ccompile/lang/token"
)

// Diagnostic is a single error or warning tied to a source position.
type Diagnostic struct {
	Pos     token.Position
	Message string
	Warn    bool
}

func (d Diagnostic) String() string {
	kind := "error"
	if d.Warn {
		kind = "warning"
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos, kind, d.Message)
}

// List collects diagnostics produced while compiling a single file. It is
// modeled on go/scanner.ErrorList's Add/Sort/Err discipline: errors
// accumulate during a pass, are sorted by position, and collapse to a single
// error (or nil) at the end.
type List struct {
	fset  *token.FileSet
	diags []Diagnostic
}

// NewList creates an empty diagnostic list resolving positions against fset.
func NewList(fset *token.FileSet) *List {
	return &List{fset: fset}
}

// Error records a fatal diagnostic at p.
func (l *List) Error(p token.Pos, format string, args ...any) {
	l.add(p, fmt.Sprintf(format, args...), false)
}

// Warn records a non-fatal diagnostic at p.
func (l *List) Warn(p token.Pos, format string, args ...any) {
	l.add(p, fmt.Sprintf(format, args...), true)
}

func (l *List) add(p token.Pos, msg string, warn bool) {
	l.diags = append(l.diags, Diagnostic{Pos: l.fset.Position(p), Message: msg, Warn: warn})
}

// Len, Swap and Less implement sort.Interface, ordering by filename then
// line then column.
func (l *List) Len() int      { return len(l.diags) }
func (l *List) Swap(i, j int) { l.diags[i], l.diags[j] = l.diags[j], l.diags[i] }
func (l *List) Less(i, j int) bool {
	a, b := l.diags[i].Pos, l.diags[j].Pos
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

// PromoteWarnings turns every recorded warning into a fatal diagnostic, for
// a driver's "warnings-as-errors" mode; it has no effect on diagnostics
// recorded after it's called.
func (l *List) PromoteWarnings() {
	for i := range l.diags {
		l.diags[i].Warn = false
	}
}

// Sort orders the diagnostics by position, for stable, reproducible output.
func (l *List) Sort() { sort.Sort(l) }

// HasErrors reports whether at least one fatal (non-warning) diagnostic was
// recorded.
func (l *List) HasErrors() bool {
	for _, d := range l.diags {
		if !d.Warn {
			return true
		}
	}
	return false
}

// Err returns a combined error for all fatal diagnostics, or nil if there
// are none. Warnings never contribute to the returned error.
func (l *List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return &multiError{diags: l.diags}
}

type multiError struct{ diags []Diagnostic }

func (e *multiError) Error() string {
	var b strings.Builder
	for i, d := range e.diags {
		if d.Warn {
			continue
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// Unwrap exposes the individual diagnostics as errors, matching the
// errors.Is/As discipline go/scanner.ErrorList also supports.
func (e *multiError) Unwrap() []error {
	errs := make([]error, 0, len(e.diags))
	for _, d := range e.diags {
		if d.Warn {
			continue
		}
		d := d
		errs = append(errs, fmt.Errorf("%s", d.String()))
	}
	return errs
}

// PrintCaret writes every recorded diagnostic to w in the
// "filename:line:column: <source line>" + caret-underline form required by
// the compiler's error reporting (spec section 7): the position prefix and
// the source line it falls on, followed by a line with a caret under the
// offending column, then the message on that same caret line. When the
// source line is unavailable, the prefix is followed directly by the
// message. fset must be the same FileSet used to resolve the positions
// originally recorded, with File.SetContent called for every file so the
// source line is available to quote.
func PrintCaret(w io.Writer, fset *token.FileSet, l *List) {
	for _, d := range l.diags {
		prefix := fmt.Sprintf("%s: ", d.Pos)
		if f := fileByName(fset, d.Pos.Filename); f != nil {
			if line := f.Line(d.Pos.Line); line != nil {
				fmt.Fprintf(w, "%s%s\n", prefix, line)
				fmt.Fprintf(w, "%s^ ", strings.Repeat(" ", len(prefix)+d.Pos.Column-1))
				fmt.Fprintln(w, errOrWarn(d))
				continue
			}
		}
		fmt.Fprintf(w, "%s%s\n", prefix, errOrWarn(d))
	}
}

func errOrWarn(d Diagnostic) string {
	if d.Warn {
		return "warning: " + d.Message
	}
	return d.Message
}

func fileByName(fset *token.FileSet, name string) *token.File {
	// FileSet only resolves by Pos, so diag keeps a small side index instead
	// of walking every registered file on every print; List.add would be the
	// natural place to cache it, but a lookup by name is rare enough (once
	// per diagnostic, at the very end of a run) that a linear scan via
	// fset.Files is simpler and avoids extra bookkeeping on the hot path.
	for _, f := range fset.Files() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}
