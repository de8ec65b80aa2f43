// Package report turns audit sheets into output documents.
//
// This package contains writers for different output formats:
//   - CSVWriter: Delimited text, one row per checklist item
//   - PDFWriter: A paginated A4 document with a font fallback chain
//   - MarkdownWriter: GitHub Flavored Markdown for sharing and review
//   - JSONWriter: Structured JSON output for tool integration
//   - SimpleWriter: Human-readable text summary for terminal display
//
// It also provides the output file naming convention, atomic persistence
// of rendered bytes, and content digests used for traceability.
//
// Design decision: We separate report writing from the sheet data
// structures (which are in the model package) so new output formats can
// be added without touching the record builder.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
