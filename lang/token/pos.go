// Package token defines the lexical tokens of the compiled language and the
// position-tracking types used to report diagnostics against the original
// source text.
package token

import "sort"

// Pos is a compact, comparable reference to a byte offset in some File
// registered with a FileSet. The zero Pos is NoPos, meaning "no position".
type Pos int

// NoPos is the zero value of Pos; it means "unknown position".
const NoPos Pos = 0

// IsValid reports whether p is a valid position, i.e. not NoPos.
func (p Pos) IsValid() bool { return p != NoPos }

// Position is a human-readable source location, the result of resolving a
// Pos against the File it belongs to.
type Position struct {
	Filename string
	Offset   int // byte offset, 0-based
	Line     int // line number, 1-based
	Column   int // column number, 1-based (byte count, not rune count)
}

// IsValid reports whether the position contains usable line information.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	s := p.Filename
	if p.IsValid() {
		if s != "" {
			s += ":"
		}
		s += itoa(p.Line) + ":" + itoa(p.Column)
	} else if s == "" {
		s = "-"
	}
	return s
}

// File represents the source text of a single compiled file, registered in a
// FileSet so that Pos values can be resolved back to line/column pairs.
type File struct {
	name  string
	base  int // offset of Pos 0 of this file within the owning FileSet
	size  int
	lines []int // sorted byte offsets of the starts of lines 2, 3, ... (line 1 starts at 0)
	src   []byte
}

// SetContent attaches the raw source bytes to the file, enabling Line and
// caret-style diagnostics to quote the offending source text.
func (f *File) SetContent(src []byte) { f.src = src }

// Line returns the raw bytes of the given 1-based line number, excluding the
// trailing newline. It returns nil if the content was never set via
// SetContent or the line number is out of range.
func (f *File) Line(line int) []byte {
	if f.src == nil {
		return nil
	}
	start, end := f.LineBounds(line)
	if start < 0 || end > len(f.src) || start > end {
		return nil
	}
	return f.src[start:end]
}

// Name returns the file name as registered with the FileSet.
func (f *File) Name() string { return f.name }

// Size returns the size in bytes of the file content.
func (f *File) Size() int { return f.size }

// Pos returns the Pos value for the given byte offset within the file.
func (f *File) Pos(offset int) Pos { return Pos(f.base + offset) }

// Offset returns the byte offset of p within the file.
func (f *File) Offset(p Pos) int { return int(p) - f.base }

// AddLine records that a new line begins at the given byte offset. Offsets
// must be added in increasing order; out-of-order or duplicate offsets are
// ignored.
func (f *File) AddLine(offset int) {
	if n := len(f.lines); (n == 0 || f.lines[n-1] < offset) && offset < f.size {
		f.lines = append(f.lines, offset)
	}
}

// Position resolves p, which must belong to this file, to a line/column
// Position.
func (f *File) Position(p Pos) Position {
	offset := f.Offset(p)
	if offset < 0 {
		offset = 0
	}
	if offset > f.size {
		offset = f.size
	}
	// lines[i] is the offset of the first byte of line i+2 (lines[0] is the
	// start of line 2, since line 1 always starts at offset 0).
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset })
	line := i + 1
	lineStart := 0
	if i > 0 {
		lineStart = f.lines[i-1]
	}
	return Position{
		Filename: f.name,
		Offset:   offset,
		Line:     line,
		Column:   offset - lineStart + 1,
	}
}

// LineStart returns the Pos of the first byte of the given 1-based line
// number, or NoPos if line is out of range.
func (f *File) LineStart(line int) Pos {
	if line < 1 {
		return NoPos
	}
	if line == 1 {
		return f.Pos(0)
	}
	if line-2 >= len(f.lines) {
		return NoPos
	}
	return f.Pos(f.lines[line-2])
}

// LineBounds returns the byte offsets [start, end) of the given 1-based line
// number within the file content, excluding the trailing newline.
func (f *File) LineBounds(line int) (start, end int) {
	if line < 1 {
		return 0, 0
	}
	start = 0
	if line >= 2 {
		if line-2 >= len(f.lines) {
			return f.size, f.size
		}
		start = f.lines[line-2]
	}
	end = f.size
	if line-1 < len(f.lines) {
		end = f.lines[line-1]
	}
	if end > start && end <= len(f.src) && f.src[end-1] == '\n' {
		end--
	}
	return start, end
}

// FileSet tracks a set of source Files, assigning each a disjoint range of
// Pos values so that a single Pos is enough to identify both a file and an
// offset within it.
type FileSet struct {
	base  int
	files []*File
}

// NewFileSet creates a new, empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{base: 1}
}

// AddFile registers a new file of the given size (number of bytes) in the
// set and returns it. If base is negative, the next available base is used.
func (s *FileSet) AddFile(name string, base, size int) *File {
	if base < 0 {
		base = s.base
	}
	f := &File{name: name, base: base, size: size}
	s.base = base + size + 1 // +1 so Pos values never straddle files
	s.files = append(s.files, f)
	return f
}

// File returns the File containing p, or nil if p belongs to no registered
// file.
func (s *FileSet) File(p Pos) *File {
	i := sort.Search(len(s.files), func(i int) bool { return s.files[i].base > int(p) })
	if i == 0 {
		return nil
	}
	return s.files[i-1]
}

// Files returns every File registered in the set, in registration order.
func (s *FileSet) Files() []*File { return s.files }

// Position resolves p using whichever File in the set contains it.
func (s *FileSet) Position(p Pos) Position {
	if f := s.File(p); f != nil {
		return f.Position(p)
	}
	return Position{}
}

// PosMode selects how FormatPos renders a position.
type PosMode int

const (
	// PosNone suppresses position printing altogether.
	PosNone PosMode = iota
	// PosLong renders "filename:line:column".
	PosLong
	// PosOffsets renders the raw byte offset into the file.
	PosOffsets
)

// FormatPos renders p according to mode. If withFilename is false, the
// filename is omitted even in PosLong mode.
func FormatPos(mode PosMode, f *File, p Pos, withFilename bool) string {
	if mode == PosNone {
		return ""
	}
	if f == nil {
		return "-"
	}
	switch mode {
	case PosOffsets:
		return itoa(f.Offset(p))
	default:
		pos := f.Position(p)
		if !withFilename {
			return itoa(pos.Line) + ":" + itoa(pos.Column)
		}
		return pos.String()
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
