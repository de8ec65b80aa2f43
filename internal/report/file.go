package report

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/width"

	"github.com/nao1215/auditsheet/internal/model"
)

// Output formats and their file extensions.
const (
	FormatCSV      = "csv"
	FormatPDF      = "pdf"
	FormatMarkdown = "md"
	FormatJSON     = "json"
)

// FileName returns the output file name for an audit:
// <prefix>_<YYYY-MM-DD>_<auditor>.<ext>.
//
// Spaces in the auditor name become underscores. Full-width characters
// are narrowed first so an ideographic space is replaced too. Path
// separators are replaced so the name always stays in the output directory.
func FileName(prefix string, header model.Header, ext string) string {
	auditor := width.Narrow.String(strings.TrimSpace(header.Auditor))
	auditor = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '/', '\\':
			return '_'
		}
		return r
	}, auditor)

	return prefix + "_" + header.DateString() + "_" + auditor + "." + ext
}

// filePerm is the permission of exported files.
const filePerm = 0o644

// SaveFile writes data to path atomically.
//
// The data is written to a temporary file in the same directory and renamed
// over path, so readers see either the previous file or the complete new
// one. Missing parent directories are created. Any failure is returned as
// *ExportWriteError.
func SaveFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return &ExportWriteError{Path: path, Err: err}
	}
	if err := renameio.WriteFile(path, data, filePerm); err != nil {
		return &ExportWriteError{Path: path, Err: err}
	}
	return nil
}

// Digest returns the hex BLAKE2b-256 digest of exported bytes.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
