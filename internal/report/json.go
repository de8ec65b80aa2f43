package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/auditsheet/internal/model"
)

// JSONWriter renders a sheet as a single JSON document for other tools.
// Comments are written as typed: characters such as <, > and & are not
// turned into \u escapes.
//
// Design decision: encoding/json is enough here. The sheet is a tree of
// tagged structs, and the history database decodes the same tags with
// the same package.
type JSONWriter struct {
	baseWriter
	prefix string
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents nested values with indent and starts every line
// after the first with prefix. Without it output is a single line.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.prefix, w.indent = prefix, indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter returns a JSONWriter on output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes the sheet.
func (w *JSONWriter) Write(sheet *model.Sheet) (int, error) {
	return w.WriteValue(sheet)
}

// WriteValue encodes any value the same way as Write. The listing and
// compare commands use it for their --json output.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	cw := &countingWriter{w: w.output}
	enc := json.NewEncoder(cw)
	enc.SetEscapeHTML(false)
	if w.prefix != "" || w.indent != "" {
		enc.SetIndent(w.prefix, w.indent)
	}
	err := enc.Encode(v)
	return cw.n, err
}
