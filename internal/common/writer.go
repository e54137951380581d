package common

import (
	"fmt"
	"strings"
)

// Writer accumulates generated source with indentation. Indentation is
// applied at the start of every non-empty line.
type Writer struct {
	width  int
	level  int
	sb     strings.Builder
	atLine bool
}

func NewWriter(indentWidth int) *Writer {
	return &Writer{width: indentWidth, atLine: true}
}

func (w *Writer) Indent() {
	w.level++
}

func (w *Writer) Unindent() {
	if w.level > 0 {
		w.level--
	}
}

// Emit writes formatted text, indenting each new line.
func (w *Writer) Emit(format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}

	for len(text) > 0 {
		line, rest, found := strings.Cut(text, "\n")
		if line != "" {
			if w.atLine {
				w.sb.WriteString(strings.Repeat(" ", w.level*w.width))
			}
			w.sb.WriteString(line)
			w.atLine = false
		}
		if found {
			w.sb.WriteString("\n")
			w.atLine = true
		}
		text = rest
	}
}

// Line writes one full line.
func (w *Writer) Line(format string, args ...any) {
	w.Emit(format, args...)
	w.Emit("\n")
}

// Open writes header followed by " {" and indents.
func (w *Writer) Open(format string, args ...any) {
	w.Emit(format, args...)
	w.Emit(" {\n")
	w.Indent()
}

// Close unindents and writes the closing brace plus suffix.
func (w *Writer) Close(suffix string) {
	w.Unindent()
	w.Emit("}" + suffix + "\n")
}

func (w *Writer) String() string {
	return w.sb.String()
}
