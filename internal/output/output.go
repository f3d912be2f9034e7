// Package output handles CLI result formatting.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Writer writes command results in the selected format.
type Writer struct {
	format Format
	out    io.Writer
}

// New creates a writer to stdout.
func New(format Format) *Writer {
	return NewTo(os.Stdout, format)
}

// NewTo creates a writer to the given destination.
func NewTo(out io.Writer, format Format) *Writer {
	if format != FormatJSON {
		format = FormatText
	}
	return &Writer{format: format, out: out}
}

// Format returns the writer's format.
func (w *Writer) Format() Format {
	return w.format
}

// Write emits v. JSON output is indented; text output prints strings and
// Stringers verbatim and falls back to JSON for structured values.
func (w *Writer) Write(v any) error {
	if w.format == FormatJSON {
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	switch t := v.(type) {
	case string:
		_, err := fmt.Fprintln(w.out, t)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w.out, t.String())
		return err
	default:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// PrettyJSON indents a raw JSON body for display. Non-JSON bodies are
// returned unchanged.
func PrettyJSON(raw []byte) string {
	var buf []byte
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(buf)
}

// IsTerminal reports whether f is attached to a TTY. Styled output and the
// progress UI are disabled when it is not.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
