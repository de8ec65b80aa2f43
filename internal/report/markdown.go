package report

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/auditsheet/internal/model"
)

// MarkdownWriter outputs sheets in Markdown format.
// This format is designed for sharing audits in issue trackers and wikis.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe table generation
// 2. Collapsible details blocks for item descriptions
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the sheet in Markdown format.
func (w *MarkdownWriter) Write(sheet *model.Sheet) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, sheet)
	w.writeSummary(md, sheet)
	w.writeItems(md, sheet)
	w.writeNotes(md, sheet)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the sheet title and audit metadata.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, sheet *model.Sheet) {
	md.H1(sheet.Title)
	md.PlainText("")

	rows := [][]string{
		{"Checklist", "`" + sheet.Checklist + "`"},
		{"Auditor", cell(sheet.Header.Auditor)},
		{"Audit Date", cell(sheet.Header.DateString())},
	}
	if sheet.ID != "" {
		rows = append(rows, []string{"Audit ID", "`" + sheet.ID + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the number of items per status.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, sheet *model.Sheet) {
	md.H2("Summary")
	md.PlainText("")

	counts := sheet.StatusCounts()
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([][]string, 0, len(labels)+1)
	for _, label := range labels {
		rows = append(rows, []string{label, strconv.Itoa(counts[label])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(sheet.Records)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	unanswered := len(sheet.Records) - sheet.Answered()
	if unanswered > 0 {
		md.Warningf("%d of %d item(s) have no status recorded.", unanswered, len(sheet.Records))
	} else {
		md.Tip("Every item has a status recorded.")
	}
	md.PlainText("")
}

// writeItems writes one table per category.
func (w *MarkdownWriter) writeItems(md *markdown.Markdown, sheet *model.Sheet) {
	md.H2("Items")
	md.PlainText("")

	for _, category := range sheet.Categories() {
		if category != "" {
			md.PlainText("### " + category)
			md.PlainText("")
		}

		records := sheet.RecordsIn(category)
		rows := make([][]string, len(records))
		for i, r := range records {
			rows[i] = []string{r.ItemID, cell(r.ItemTitle), r.Status.Label(), cell(r.Comment)}
		}

		md.Table(markdown.TableSet{
			Header: []string{"ID", "Item", "Status", "Comment"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, r := range records {
			if r.ItemDescription != "" {
				md.Details(r.ItemTitle, r.ItemDescription)
			}
		}
	}
}

// writeNotes writes the free-text notes block.
func (w *MarkdownWriter) writeNotes(md *markdown.Markdown, sheet *model.Sheet) {
	md.H2("Notes")
	md.PlainText("")

	notes := strings.TrimSpace(sheet.Header.Notes)
	if notes == "" {
		md.PlainText("No notes.")
	} else {
		md.PlainText(notes)
	}
	md.PlainText("")
}

// writeFooter writes the document footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [auditsheet](https://github.com/nao1215/auditsheet)*")
}

// cell flattens text for a single table cell.
// Line breaks would end the table row, so they become spaces.
func cell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	return strings.Join(strings.Fields(s), " ")
}
