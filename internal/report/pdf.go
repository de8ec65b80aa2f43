package report

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/nao1215/auditsheet/internal/model"
)

// Rendering describes how a PDF document was rendered.
type Rendering struct {
	// Font is the family the document text was set in.
	Font string

	// Attempts lists every font source that was probed, in order.
	Attempts []FontAttempt

	// Degraded is non-nil when the document fell back to CoreFont.
	Degraded *RenderDegraded
}

// documentConfig holds Document options.
type documentConfig struct {
	fonts   []FontSource
	created time.Time
	logger  *slog.Logger
}

// DocumentOption configures Document.
type DocumentOption func(*documentConfig)

// WithFontSources sets the font files to try, in order.
// DefaultFontSources are used when no sources are given.
func WithFontSources(sources ...FontSource) DocumentOption {
	return func(c *documentConfig) {
		c.fonts = append([]FontSource(nil), sources...)
	}
}

// WithCreationDate sets the document creation date recorded in the PDF
// metadata. Fixing it makes repeated renders comparable.
func WithCreationDate(t time.Time) DocumentOption {
	return func(c *documentConfig) {
		c.created = t
	}
}

// WithDocumentLogger sets the logger that receives the RenderDegraded
// warning.
func WithDocumentLogger(logger *slog.Logger) DocumentOption {
	return func(c *documentConfig) {
		c.logger = logger
	}
}

// Page layout in millimetres (A4 portrait).
const (
	pageMargin   = 15.0
	lineHeight   = 6.0
	labelWidth   = 28.0
	titleSize    = 16.0
	headingSize  = 12.0
	bodySize     = 10.0
	smallSize    = 8.5
	sectionSpace = 3.0
)

// Document renders records as an A4 PDF.
//
// Layout: a title block, the header metadata (auditor, date), a block per
// record (item title, description, status, comment) grouped under category
// headings, and a trailing notes section.
//
// Fonts are resolved through a fallback chain: each configured source is
// probed in order and the first usable one is embedded. If none is usable
// the document is set in CoreFont and the returned Rendering carries a
// *RenderDegraded value, which is also logged as a warning. The export still
// succeeds in that case.
func Document(records []model.Record, header model.Header, title string, opts ...DocumentOption) ([]byte, Rendering, error) {
	cfg := documentConfig{
		fonts:   DefaultFontSources,
		created: time.Now(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(cfg.created)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	rendering := Rendering{}
	choice, attempts := resolveFont(cfg.fonts)
	rendering.Attempts = attempts

	tr := func(s string) string { return s }
	if choice != nil {
		pdf.AddUTF8FontFromBytes(choice.name, "", choice.data)
		rendering.Font = choice.name
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
		rendering.Font = CoreFont
		rendering.Degraded = &RenderDegraded{Attempts: attempts, Fallback: CoreFont}
		cfg.logger.Warn("RenderDegraded: PDF rendered without an embedded font",
			"fallback", CoreFont,
			"attempts", len(attempts),
			"detail", rendering.Degraded.String(),
		)
	}

	d := &document{pdf: pdf, font: rendering.Font, tr: tr}
	d.render(records, header, title)

	if pdf.Err() {
		return nil, rendering, fmt.Errorf("failed to render PDF: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, rendering, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buf.Bytes(), rendering, nil
}

// document holds the state of one PDF render.
type document struct {
	pdf  *fpdf.Fpdf
	font string
	tr   func(string) string
}

func (d *document) render(records []model.Record, header model.Header, title string) {
	pdf := d.pdf

	pdf.SetTitle(title, true)
	pdf.SetAuthor(header.Auditor, true)
	pdf.SetCreator("auditsheet", false)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin + 3)
		pdf.SetFont(d.font, "", smallSize)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()

	// Title block
	pdf.SetFont(d.font, "", titleSize)
	pdf.MultiCell(0, lineHeight+2, d.tr(title), "", "L", false)
	pdf.Ln(sectionSpace)

	// Header metadata
	pdf.SetFont(d.font, "", bodySize)
	d.labelled("Auditor", header.Auditor)
	d.labelled("Date", header.DateString())
	pdf.Ln(sectionSpace)

	// Items
	category := "\x00"
	for _, r := range records {
		if r.Category != category {
			category = r.Category
			if category != "" {
				d.heading(category)
			}
		}
		d.item(r)
	}

	// Notes
	d.heading("Notes")
	pdf.SetFont(d.font, "", bodySize)
	notes := strings.TrimSpace(header.Notes)
	if notes == "" {
		notes = "-"
	}
	pdf.MultiCell(0, lineHeight, d.tr(notes), "", "L", false)
}

func (d *document) heading(text string) {
	pdf := d.pdf
	pdf.Ln(1)
	pdf.SetFont(d.font, "", headingSize)
	pdf.SetFillColor(230, 234, 240)
	pdf.MultiCell(0, lineHeight+1, d.tr(text), "", "L", true)
	pdf.Ln(1)
}

func (d *document) item(r model.Record) {
	pdf := d.pdf

	pdf.SetFont(d.font, "", bodySize+1)
	pdf.MultiCell(0, lineHeight, d.tr(r.ItemTitle), "", "L", false)

	if r.ItemDescription != "" {
		pdf.SetFont(d.font, "", smallSize)
		pdf.SetTextColor(90, 90, 90)
		pdf.MultiCell(0, lineHeight-1, d.tr(r.ItemDescription), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont(d.font, "", bodySize)
	d.labelled("Status", r.Status.Label())
	comment := r.Comment
	if strings.TrimSpace(comment) == "" {
		comment = "-"
	}
	d.labelled("Comment", comment)

	pdf.SetDrawColor(210, 210, 210)
	x, y := pdf.GetXY()
	w, _ := pdf.GetPageSize()
	pdf.Line(x, y+1, w-pageMargin, y+1)
	pdf.Ln(sectionSpace)
}

// labelled writes "label  value" with the value wrapping under itself.
func (d *document) labelled(label, value string) {
	pdf := d.pdf
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(labelWidth, lineHeight, d.tr(label), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, lineHeight, d.tr(value), "", "L", false)
}

// PDFWriter outputs sheets as PDF documents.
type PDFWriter struct {
	baseWriter

	opts []DocumentOption

	// last is the rendering of the most recent Write.
	last Rendering
}

// NewPDFWriter creates a PDFWriter that outputs to the given writer.
func NewPDFWriter(output io.Writer, opts ...DocumentOption) *PDFWriter {
	return &PDFWriter{
		baseWriter: newBaseWriter(output),
		opts:       opts,
	}
}

// Write renders the sheet and writes the document.
// The document title is the sheet title; the creation date is the sheet's
// export time when set.
func (w *PDFWriter) Write(sheet *model.Sheet) (int, error) {
	opts := w.opts
	if !sheet.CreatedAt.IsZero() {
		opts = append(append([]DocumentOption(nil), opts...), WithCreationDate(sheet.CreatedAt))
	}

	data, rendering, err := Document(sheet.Records, sheet.Header, sheet.Title, opts...)
	w.last = rendering
	if err != nil {
		return 0, err
	}

	return w.output.Write(data)
}

// Rendering returns how the most recent Write rendered its document.
func (w *PDFWriter) Rendering() Rendering {
	return w.last
}
