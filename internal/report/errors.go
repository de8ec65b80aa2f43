package report

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is matched by every *ColumnError.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrExportWrite is matched by every *ExportWriteError.
	ErrExportWrite = errors.New("export write failed")
)

// ColumnError is returned when a requested column has no corresponding
// record field.
type ColumnError struct {
	Column string
}

// Error implements the error interface.
func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownColumn, e.Column)
}

// Is reports whether target is ErrUnknownColumn.
func (e *ColumnError) Is(target error) bool {
	return target == ErrUnknownColumn
}

// ExportWriteError is returned when rendered output cannot be persisted.
// The destination is left untouched: either the previous file or nothing.
type ExportWriteError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ExportWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying file system error.
func (e *ExportWriteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExportWrite.
func (e *ExportWriteError) Is(target error) bool {
	return target == ErrExportWrite
}
