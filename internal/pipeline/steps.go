package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/auditsheet/internal/database"
	"github.com/nao1215/auditsheet/internal/model"
	"github.com/nao1215/auditsheet/internal/record"
	"github.com/nao1215/auditsheet/internal/report"
)

// ErrNothingToRender is returned by render steps that run before a sheet
// has been built.
var ErrNothingToRender = errors.New("no sheet to render: the build step has not run")

// BuildStep projects the collected responses into a sheet.
// A job that already carries a sheet (a re-export) is left untouched.
type BuildStep struct {
	// now returns the export time recorded on the sheet.
	now func() time.Time

	// assignID gives the sheet a new id before rendering, so every output
	// format shows the id under which the history stores it.
	assignID bool

	// logger for structured logging.
	logger *slog.Logger
}

// BuildStepOption configures a BuildStep.
type BuildStepOption func(*BuildStep)

// WithClock sets the function returning the export time.
func WithClock(now func() time.Time) BuildStepOption {
	return func(s *BuildStep) {
		s.now = now
	}
}

// WithAssignID makes the step give the sheet a new UUID.
func WithAssignID(assign bool) BuildStepOption {
	return func(s *BuildStep) {
		s.assignID = assign
	}
}

// WithBuildLogger sets a custom logger for the build step.
func WithBuildLogger(logger *slog.Logger) BuildStepOption {
	return func(s *BuildStep) {
		s.logger = logger
	}
}

// NewBuildStep creates a new build step.
func NewBuildStep(opts ...BuildStepOption) *BuildStep {
	s := &BuildStep{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *BuildStep) Name() string {
	return "build"
}

// Do builds the sheet.
func (s *BuildStep) Do(_ context.Context, job *Job) error {
	if job.Sheet != nil {
		return nil
	}

	sheet, err := record.NewSheet(job.Definition, job.Collector, job.Header, s.now())
	if err != nil {
		return err
	}
	if s.assignID {
		sheet.ID = uuid.NewString()
	}
	job.Sheet = sheet

	s.logger.Debug("sheet built",
		"checklist", sheet.Checklist,
		"records", len(sheet.Records),
		"answered", sheet.Answered(),
		"notes", sheet.Header.Notes,
	)
	for _, r := range sheet.Records {
		if !r.Status.IsSet() {
			s.logger.Debug("item has no status", "item_id", r.ItemID, "comment", r.Comment)
		}
	}

	return nil
}

// RenderStep renders the sheet in one format into memory.
// Nothing is written to disk; PersistStep does that once every render
// has succeeded.
type RenderStep struct {
	// format is the output file extension.
	format string

	// newWriter creates the report writer for one render.
	newWriter func(buf *bytes.Buffer) report.Writer

	// logger for structured logging.
	logger *slog.Logger
}

// newRenderStep creates a render step for a format.
func newRenderStep(format string, logger *slog.Logger, newWriter func(buf *bytes.Buffer) report.Writer) *RenderStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderStep{format: format, newWriter: newWriter, logger: logger}
}

// NewCSVRenderStep creates a step rendering delimited text.
func NewCSVRenderStep(logger *slog.Logger, opts ...report.CSVWriterOption) *RenderStep {
	return newRenderStep(report.FormatCSV, logger, func(buf *bytes.Buffer) report.Writer {
		return report.NewCSVWriter(buf, opts...)
	})
}

// NewMarkdownRenderStep creates a step rendering Markdown.
func NewMarkdownRenderStep(logger *slog.Logger) *RenderStep {
	return newRenderStep(report.FormatMarkdown, logger, func(buf *bytes.Buffer) report.Writer {
		return report.NewMarkdownWriter(buf)
	})
}

// NewJSONRenderStep creates a step rendering pretty-printed JSON.
func NewJSONRenderStep(logger *slog.Logger) *RenderStep {
	return newRenderStep(report.FormatJSON, logger, func(buf *bytes.Buffer) report.Writer {
		return report.NewJSONWriter(buf, report.WithPrettyPrint())
	})
}

// PDFRenderStep renders the sheet as a PDF document and records how its
// font was resolved.
type PDFRenderStep struct {
	opts   []report.DocumentOption
	logger *slog.Logger
}

// NewPDFRenderStep creates a step rendering a PDF document.
func NewPDFRenderStep(logger *slog.Logger, opts ...report.DocumentOption) *PDFRenderStep {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]report.DocumentOption{report.WithDocumentLogger(logger)}, opts...)
	return &PDFRenderStep{opts: opts, logger: logger}
}

// Name returns the step name.
func (s *PDFRenderStep) Name() string {
	return "render_" + report.FormatPDF
}

// Do renders the PDF.
func (s *PDFRenderStep) Do(_ context.Context, job *Job) error {
	if job.Sheet == nil {
		return ErrNothingToRender
	}

	var buf bytes.Buffer
	w := report.NewPDFWriter(&buf, s.opts...)
	if _, err := w.Write(job.Sheet); err != nil {
		return err
	}

	rendering := w.Rendering()
	job.Rendering = &rendering
	job.Artifacts = append(job.Artifacts, newArtifact(job.Sheet, report.FormatPDF, buf.Bytes()))

	s.logger.Debug("rendered", "format", report.FormatPDF, "bytes", buf.Len(), "font", rendering.Font)
	return nil
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return "render_" + s.format
}

// Do renders the sheet.
func (s *RenderStep) Do(_ context.Context, job *Job) error {
	if job.Sheet == nil {
		return ErrNothingToRender
	}

	var buf bytes.Buffer
	if _, err := s.newWriter(&buf).Write(job.Sheet); err != nil {
		return err
	}
	job.Artifacts = append(job.Artifacts, newArtifact(job.Sheet, s.format, buf.Bytes()))

	s.logger.Debug("rendered", "format", s.format, "bytes", buf.Len())
	return nil
}

func newArtifact(sheet *model.Sheet, format string, data []byte) Artifact {
	return Artifact{
		Format: format,
		Name:   report.FileName(sheet.Prefix, sheet.Header, format),
		Data:   data,
	}
}

// PersistStep writes every rendered artifact to the output directory.
//
// Each file is written atomically. If a later file fails, every file this
// step already wrote is put back: new files are removed and files that
// existed before get their previous contents again. An export therefore
// never leaves a new CSV next to an old PDF.
type PersistStep struct {
	outDir string
	logger *slog.Logger
}

// NewPersistStep creates a step writing artifacts into outDir.
func NewPersistStep(outDir string, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{outDir: outDir, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// replaced remembers what was at path before PersistStep wrote it.
// A nil previous means the file did not exist.
type replaced struct {
	path     string
	previous []byte
}

// Do writes the artifacts.
func (s *PersistStep) Do(ctx context.Context, job *Job) error {
	var written []replaced

	for i := range job.Artifacts {
		a := &job.Artifacts[i]
		path := filepath.Join(s.outDir, a.Name)

		if err := ctx.Err(); err != nil {
			s.rollback(written)
			return err
		}
		previous, err := s.snapshot(path)
		if err != nil {
			s.rollback(written)
			return &report.ExportWriteError{Path: path, Err: err}
		}
		if err := report.SaveFile(path, a.Data); err != nil {
			s.rollback(written)
			return err
		}
		written = append(written, replaced{path: path, previous: previous})

		a.Path = path
		a.Digest = report.Digest(a.Data)
		s.logger.Info("exported", "format", a.Format, "path", path)
	}

	return nil
}

// snapshot reads the current contents of path. A missing file yields nil
// without error. Directories are left for SaveFile to reject.
func (s *PersistStep) snapshot(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the output directory
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// rollback undoes written in reverse order.
func (s *PersistStep) rollback(written []replaced) {
	for i := len(written) - 1; i >= 0; i-- {
		w := written[i]
		var err error
		if w.previous == nil {
			err = os.Remove(w.path)
		} else {
			err = report.SaveFile(w.path, w.previous)
		}
		if err != nil {
			s.logger.Warn("failed to undo partial export", "path", w.path, "error", err)
		}
	}
}

// Store is the part of the audit history used by HistoryStep.
type Store interface {
	SaveSheet(ctx context.Context, sheet *model.Sheet) (string, error)
	SaveArtifact(ctx context.Context, a database.Artifact) error
}

// HistoryStep stores the sheet and the digests of its files.
// Sheets loaded from the history only get their new artifacts recorded.
type HistoryStep struct {
	store  Store
	logger *slog.Logger
}

// NewHistoryStep creates a step storing exports in store.
func NewHistoryStep(store Store, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do stores the sheet and artifacts.
func (s *HistoryStep) Do(ctx context.Context, job *Job) error {
	if job.Sheet == nil {
		return ErrNothingToRender
	}

	if !job.FromHistory {
		if _, err := s.store.SaveSheet(ctx, job.Sheet); err != nil {
			return fmt.Errorf("failed to store audit: %w", err)
		}
	}

	for _, a := range job.Artifacts {
		if a.Path == "" {
			continue
		}
		err := s.store.SaveArtifact(ctx, database.Artifact{
			AuditID: job.Sheet.ID,
			Format:  a.Format,
			Path:    a.Path,
			Digest:  a.Digest,
		})
		if err != nil {
			return fmt.Errorf("failed to store artifact: %w", err)
		}
	}

	s.logger.Debug("stored in history", "audit_id", job.Sheet.ID, "artifacts", len(job.Artifacts))
	return nil
}

// ExportOptions selects the steps of a default export pipeline.
type ExportOptions struct {
	// OutputDir is where files are written.
	OutputDir string

	// Columns selects the CSV columns; empty means the defaults.
	Columns []string

	// BOM prepends a UTF-8 byte order mark to the CSV.
	BOM bool

	// PDF, Markdown and JSON enable the additional formats.
	PDF      bool
	Markdown bool
	JSON     bool

	// Fonts are tried before report.DefaultFontSources for PDF output.
	Fonts []report.FontSource

	// Store receives the sheet and artifacts; nil disables history.
	Store Store

	// Now returns the export time; nil means time.Now.
	Now func() time.Time

	// Logger is used by the pipeline and its steps.
	Logger *slog.Logger
}

// DefaultPipeline assembles the export steps: build, one render per
// format (CSV first), persist, and history when a store is given.
func DefaultPipeline(opts ExportOptions) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	buildOpts := []BuildStepOption{
		WithBuildLogger(logger),
		WithAssignID(opts.Store != nil),
	}
	if opts.Now != nil {
		buildOpts = append(buildOpts, WithClock(opts.Now))
	}

	renders := []Step{NewCSVRenderStep(logger, report.WithColumns(opts.Columns...), report.WithBOM(opts.BOM))}
	if opts.PDF {
		fonts := append(append([]report.FontSource(nil), opts.Fonts...), report.DefaultFontSources...)
		renders = append(renders, NewPDFRenderStep(logger, report.WithFontSources(fonts...)))
	}
	if opts.Markdown {
		renders = append(renders, NewMarkdownRenderStep(logger))
	}
	if opts.JSON {
		renders = append(renders, NewJSONRenderStep(logger))
	}

	p := New(WithLogger(logger))
	p.AddStep(NewBuildStep(buildOpts...))
	p.AddSteps(renders...)
	p.AddStep(NewPersistStep(opts.OutputDir, logger))
	if opts.Store != nil {
		p.AddStep(NewHistoryStep(opts.Store, logger))
	}

	logger.Debug("export pipeline assembled", "steps", p.StepNames())
	return p
}
