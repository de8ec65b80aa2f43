package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/auditsheet/internal/model"
)

// SimpleWriter outputs a human-readable text summary of a sheet.
// This format is designed for terminal display after an export.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because the summary is often piped into logs or mail, and
// the history command already owns colored output.
type SimpleWriter struct {
	baseWriter

	// showAll lists every item, not only the ones with a comment or
	// without a status.
	showAll bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowAll lists every item in the summary.
func WithShowAll(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showAll = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the sheet summary.
func (w *SimpleWriter) Write(sheet *model.Sheet) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, sheet)
	w.writeCounts(&sb, sheet)
	w.writeItems(&sb, sheet)
	w.writeNotes(&sb, sheet)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the title and audit metadata.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, sheet *model.Sheet) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(sheet.Title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Checklist:  %s\n", sheet.Checklist)
	fmt.Fprintf(sb, "Auditor:    %s\n", sheet.Header.Auditor)
	fmt.Fprintf(sb, "Audit Date: %s\n", sheet.Header.DateString())
	if sheet.ID != "" {
		fmt.Fprintf(sb, "Audit ID:   %s\n", sheet.ID)
	}
	sb.WriteString("\n")
}

// writeCounts writes the number of items per status.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, sheet *model.Sheet) {
	sb.WriteString("STATUS SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")

	counts := sheet.StatusCounts()
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		fmt.Fprintf(sb, "  %-20s %d\n", label, counts[label])
	}
	fmt.Fprintf(sb, "  %-20s %d\n", "total", len(sheet.Records))
	sb.WriteString("\n")
}

// writeItems lists items that need attention: those with a comment or no
// status. All items are listed when showAll is set.
func (w *SimpleWriter) writeItems(sb *strings.Builder, sheet *model.Sheet) {
	var listed []model.Record
	for _, r := range sheet.Records {
		if w.showAll || !r.Status.IsSet() || strings.TrimSpace(r.Comment) != "" {
			listed = append(listed, r)
		}
	}
	if len(listed) == 0 {
		return
	}

	sb.WriteString("ITEMS\n")
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")

	for _, r := range listed {
		fmt.Fprintf(sb, "  [%s] %s %s\n", r.Status.Label(), r.ItemID, r.ItemTitle)
		if c := strings.TrimSpace(r.Comment); c != "" {
			fmt.Fprintf(sb, "      %s\n", strings.ReplaceAll(c, "\n", "\n      "))
		}
	}
	sb.WriteString("\n")
}

// writeNotes writes the free-text notes block when present.
func (w *SimpleWriter) writeNotes(sb *strings.Builder, sheet *model.Sheet) {
	notes := strings.TrimSpace(sheet.Header.Notes)
	if notes == "" {
		return
	}
	sb.WriteString("NOTES\n")
	sb.WriteString(strings.Repeat("-", 40))
	sb.WriteString("\n")
	sb.WriteString(notes)
	sb.WriteString("\n")
}
