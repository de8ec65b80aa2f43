package report

import (
	"io"

	"github.com/nao1215/auditsheet/internal/model"
)

// Writer renders one audit sheet in one output format.
type Writer interface {
	// Write renders sheet and reports how many bytes reached the output.
	Write(sheet *model.Sheet) (int, error)
}

// WriterFunc adapts a function to the Writer interface, for output that
// accompanies a sheet without being a format of its own.
type WriterFunc func(sheet *model.Sheet) (int, error)

// Write calls f(sheet).
func (f WriterFunc) Write(sheet *model.Sheet) (int, error) {
	return f(sheet)
}

// MultiWriter renders the same sheet through several Writers, in the
// order given. The first failure aborts the remaining writers.
//
// Design decision: io.MultiWriter fans out bytes, but each format here
// needs the sheet itself, so the fan-out happens one level up.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a MultiWriter over writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write implements Writer. The returned count is the sum over all
// writers that ran.
func (m *MultiWriter) Write(sheet *model.Sheet) (int, error) {
	sum := 0
	for _, w := range m.writers {
		n, err := w.Write(sheet)
		sum += n
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// baseWriter holds the destination shared by every format writer.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter records how many bytes passed through it, for writers
// that hand their destination to an encoder.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
