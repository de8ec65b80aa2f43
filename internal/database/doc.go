// Package database provides SQLite-based audit history for auditsheet.
//
// This package implements the AuditDB, which stores:
//   - Exported sheets as JSON, with their header fields as columns
//   - The files produced by each export, with their content digests
//
// The history lets an auditor list past audits, compare two of them,
// re-export stored sheets in another format, and trace an exported file
// back to the audit it came from.
//
// Design decision: the history is a single SQLite file opened through the
// pure Go modernc.org/sqlite driver, so the binary builds without cgo and
// the auditor has nothing to install. WAL mode lets `history` read while
// an export is writing.
package database
