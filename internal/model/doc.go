// Package model defines the data structures shared by every stage of an
// audit export.
//
// This package contains the following main types:
//   - Status: The state recorded for a single checklist item
//   - Response: An item's status and free-text comment
//   - Header: Auditor name, audit date and notes for the whole audit
//   - Record: One flattened output row (item + response + header)
//   - Sheet: A complete, exportable audit (header + ordered records)
//
// Design decision: We keep these types free of checklist and export logic
// so that the collector, record builder, report writers and history
// database can all share them without import cycles.
//
// The models are designed to be serializable to JSON for history storage.
package model
