// Package main provides the entry point for the auditsheet CLI.
//
// auditsheet turns a filled-in audit checklist into traceable records:
// a CSV file named after the auditor and date, with optional PDF,
// Markdown and JSON renderings, and a local history of every export.
//
// Usage:
//
//	auditsheet fill cro-internal
//	auditsheet export cro-internal -r responses.yaml --pdf
//
// See --help for all available options.
package main

// main is the entry point for auditsheet.
func main() {
	Execute()
}
