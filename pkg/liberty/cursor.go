package liberty

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/mmap"
)

// Lines is an immutable, pre-loaded sequence of lines from one file.
type Lines struct {
	name  string
	lines []string
}

// LinesFromString splits text into lines. A trailing newline does not
// produce an extra empty line and carriage returns are dropped.
func LinesFromString(name, text string) *Lines {
	if text == "" {
		return &Lines{name: name}
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &Lines{name: name, lines: lines}
}

// LinesFromReader reads r to the end and splits it into lines.
func LinesFromReader(name string, r io.Reader) (*Lines, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewError("load").File(name).Cause(err).Err()
	}
	return LinesFromString(name, string(data)), nil
}

// LoadLines maps the file at path and splits it into lines. The mapping is
// released before returning.
func LoadLines(path string) (*Lines, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, NewError("load").File(path).Cause(err).Err()
	}
	defer r.Close()

	buf := make([]byte, r.Len())
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, NewError("load").File(path).Cause(fmt.Errorf("read mapped file: %w", err)).Err()
	}
	return LinesFromString(path, string(buf)), nil
}

// Name returns the source name the lines were loaded from.
func (l *Lines) Name() string {
	return l.name
}

// Len returns the number of lines.
func (l *Lines) Len() int {
	return len(l.lines)
}

// Cursor returns a cursor positioned at line 1.
func (l *Lines) Cursor() Cursor {
	return Cursor{lines: l}
}

// Cursor is a position over a Lines sequence. It is a value type: Advance
// returns a new cursor and leaves the receiver untouched.
type Cursor struct {
	lines *Lines
	pos   int
}

// Peek returns the line under the cursor, or false at end of file.
func (c Cursor) Peek() (string, bool) {
	if c.lines == nil || c.pos >= len(c.lines.lines) {
		return "", false
	}
	return c.lines.lines[c.pos], true
}

// Advance returns a cursor one line further on. Advancing past the end of
// file is a no-op.
func (c Cursor) Advance() Cursor {
	if c.lines != nil && c.pos < len(c.lines.lines) {
		c.pos++
	}
	return c
}

// LineNumber returns the 1-indexed line under the cursor. At end of file it
// is one past the last line.
func (c Cursor) LineNumber() int {
	return c.pos + 1
}

// AtEOF reports whether the cursor has consumed every line.
func (c Cursor) AtEOF() bool {
	_, ok := c.Peek()
	return !ok
}
