package report

import (
	"bytes"
	"encoding/csv"
	"io"

	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/nao1215/auditsheet/internal/model"
)

// DelimitedText encodes records as comma-separated UTF-8 text.
//
// The first row holds the column names in the given order, followed by
// one row per record. Fields containing a comma, a double quote or a line
// break are quoted and embedded quotes are doubled. Lines end with "\n".
// The output depends only on the input, so the same records always give
// byte-identical text.
//
// An empty column list selects model.DefaultColumns. A column that does not
// name a record field fails with *ColumnError before anything is encoded.
func DelimitedText(records []model.Record, columns []string) ([]byte, error) {
	if len(columns) == 0 {
		columns = model.DefaultColumns
	}
	if err := ValidateColumns(columns); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, err
	}

	row := make([]string, len(columns))
	for _, r := range records {
		for i, col := range columns {
			row[i], _ = r.Field(col)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ValidateColumns returns a *ColumnError for the first unknown column.
func ValidateColumns(columns []string) error {
	for _, col := range columns {
		if !model.IsColumn(col) {
			return &ColumnError{Column: col}
		}
	}
	return nil
}

// CSVWriter outputs sheets as delimited text.
type CSVWriter struct {
	baseWriter

	// columns selects and orders the output columns.
	columns []string

	// bom prepends a UTF-8 byte order mark. Some spreadsheet applications
	// need it to detect UTF-8 when opening the file directly.
	bom bool
}

// CSVWriterOption configures a CSVWriter.
type CSVWriterOption func(*CSVWriter)

// WithColumns selects the output columns.
func WithColumns(columns ...string) CSVWriterOption {
	return func(w *CSVWriter) {
		w.columns = append([]string(nil), columns...)
	}
}

// WithBOM enables the UTF-8 byte order mark.
func WithBOM(bom bool) CSVWriterOption {
	return func(w *CSVWriter) {
		w.bom = bom
	}
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer, opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		baseWriter: newBaseWriter(output),
		columns:    model.DefaultColumns,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the sheet's records as delimited text.
// Nothing is written if encoding fails.
func (w *CSVWriter) Write(sheet *model.Sheet) (int, error) {
	data, err := DelimitedText(sheet.Records, w.columns)
	if err != nil {
		return 0, err
	}

	if w.bom {
		data, err = xunicode.UTF8BOM.NewEncoder().Bytes(data)
		if err != nil {
			return 0, err
		}
	}

	return w.output.Write(data)
}
