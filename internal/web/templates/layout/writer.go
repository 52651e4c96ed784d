package layout

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer writes HTML fragments, escaping every interpolated value. The first
// write error sticks and later writes are skipped.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup as-is
func (hw *Writer) Raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// Text writes escaped text
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Printf formats trusted markup, escaping each argument
func (hw *Writer) Printf(format string, args ...any) {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = templ.EscapeString(fmt.Sprint(a))
	}
	hw.Raw(fmt.Sprintf(format, escaped...))
}

// Component renders a child component
func (hw *Writer) Component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Err returns the first write error
func (hw *Writer) Err() error {
	return hw.err
}

// Attr returns name when on is true, for boolean attributes
func Attr(name string, on bool) string {
	if on {
		return " " + name
	}
	return ""
}
