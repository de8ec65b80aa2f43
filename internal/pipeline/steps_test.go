package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/auditsheet/internal/database"
	"github.com/nao1215/auditsheet/internal/model"
	"github.com/nao1215/auditsheet/internal/record"
	"github.com/nao1215/auditsheet/internal/report"
)

var fixedNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// fakeStore records history calls.
type fakeStore struct {
	sheets    []*model.Sheet
	artifacts []database.Artifact
	err       error
}

func (f *fakeStore) SaveSheet(_ context.Context, sheet *model.Sheet) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sheets = append(f.sheets, sheet)
	return sheet.ID, nil
}

func (f *fakeStore) SaveArtifact(_ context.Context, a database.Artifact) error {
	if f.err != nil {
		return f.err
	}
	f.artifacts = append(f.artifacts, a)
	return nil
}

func TestBuildStep(t *testing.T) {
	t.Parallel()

	t.Run("builds the sheet", func(t *testing.T) {
		t.Parallel()

		job := newTestJob(t)
		step := NewBuildStep(WithClock(fixedClock), WithBuildLogger(discardLogger()))
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if job.Sheet == nil {
			t.Fatal("expected sheet")
		}
		if len(job.Sheet.Records) != 2 {
			t.Errorf("expected 2 records, got %d", len(job.Sheet.Records))
		}
		if !job.Sheet.CreatedAt.Equal(fixedNow) {
			t.Errorf("expected created_at %v, got %v", fixedNow, job.Sheet.CreatedAt)
		}
		if job.Sheet.ID != "" {
			t.Errorf("expected no id, got %q", job.Sheet.ID)
		}
	})

	t.Run("assigns an id", func(t *testing.T) {
		t.Parallel()

		job := newTestJob(t)
		step := NewBuildStep(WithAssignID(true), WithBuildLogger(discardLogger()))
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(job.Sheet.ID) != 36 {
			t.Errorf("expected a UUID, got %q", job.Sheet.ID)
		}
	})

	t.Run("keeps an existing sheet", func(t *testing.T) {
		t.Parallel()

		sheet := &model.Sheet{ID: "stored"}
		job := NewRebuildJob(sheet)
		if err := NewBuildStep(WithAssignID(true)).Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Sheet != sheet || sheet.ID != "stored" {
			t.Error("expected stored sheet to be kept")
		}
	})

	t.Run("fails on missing auditor", func(t *testing.T) {
		t.Parallel()

		job := newTestJob(t)
		job.Header.Auditor = " "
		err := NewBuildStep(WithBuildLogger(discardLogger())).Do(context.Background(), job)
		if !errors.Is(err, record.ErrMissingHeader) {
			t.Errorf("expected ErrMissingHeader, got %v", err)
		}
	})
}

func TestRenderSteps(t *testing.T) {
	t.Parallel()

	t.Run("renders nothing without a sheet", func(t *testing.T) {
		t.Parallel()

		steps := []Step{
			NewCSVRenderStep(discardLogger()),
			NewPDFRenderStep(discardLogger()),
			NewMarkdownRenderStep(discardLogger()),
			NewJSONRenderStep(discardLogger()),
		}
		for _, s := range steps {
			if err := s.Do(context.Background(), &Job{}); !errors.Is(err, ErrNothingToRender) {
				t.Errorf("%s: expected ErrNothingToRender, got %v", s.Name(), err)
			}
		}
	})

	t.Run("names follow the format", func(t *testing.T) {
		t.Parallel()

		want := map[Step]string{
			NewCSVRenderStep(nil):      "render_csv",
			NewPDFRenderStep(nil):      "render_pdf",
			NewMarkdownRenderStep(nil): "render_md",
			NewJSONRenderStep(nil):     "render_json",
		}
		for s, name := range want {
			if s.Name() != name {
				t.Errorf("expected %q, got %q", name, s.Name())
			}
		}
	})

	t.Run("records PDF rendering", func(t *testing.T) {
		t.Parallel()

		job := newTestJob(t)
		if err := NewBuildStep(WithBuildLogger(discardLogger())).Do(context.Background(), job); err != nil {
			t.Fatal(err)
		}

		step := NewPDFRenderStep(discardLogger(), report.WithFontSources())
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Degraded() == nil {
			t.Error("expected degraded rendering without font sources")
		}
		if len(job.Artifacts) != 1 || job.Artifacts[0].Name != "audit_2024-01-15_Jane_Doe.pdf" {
			t.Errorf("unexpected artifacts %+v", job.Artifacts)
		}
	})
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("step order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(ExportOptions{
			OutputDir: t.TempDir(),
			PDF:       true,
			Markdown:  true,
			JSON:      true,
			Store:     &fakeStore{},
			Logger:    discardLogger(),
		})

		want := []string{"build", "render_csv", "render_pdf", "render_md", "render_json", "persist", "history"}
		got := p.StepNames()
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("exports CSV", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p := DefaultPipeline(ExportOptions{OutputDir: dir, Now: fixedClock, Logger: discardLogger()})

		job := newTestJob(t)
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		path := filepath.Join(dir, "audit_2024-01-15_Jane_Doe.csv")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected CSV file: %v", err)
		}
		want := "category,item_title,status,comment\n" +
			"Docs,Backup policy,confirmed,\"ok, see log\"\n" +
			"Docs,Retention schedule,,\n"
		if string(data) != want {
			t.Errorf("got %q, want %q", data, want)
		}
		if job.Artifacts[0].Digest != report.Digest(data) {
			t.Error("expected digest of the written file")
		}
	})

	t.Run("exports every format", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p := DefaultPipeline(ExportOptions{
			OutputDir: dir,
			PDF:       true,
			Markdown:  true,
			JSON:      true,
			Logger:    discardLogger(),
		})

		job := newTestJob(t)
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, ext := range []string{"csv", "pdf", "md", "json"} {
			path := filepath.Join(dir, "audit_2024-01-15_Jane_Doe."+ext)
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected %s: %v", path, err)
			}
		}
		if job.Rendering == nil {
			t.Error("expected PDF rendering to be recorded")
		}
	})

	t.Run("writes no file when a render fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p := DefaultPipeline(ExportOptions{
			OutputDir: dir,
			Columns:   []string{"status", "score"},
			Markdown:  true,
			Logger:    discardLogger(),
		})

		err := p.Execute(context.Background(), newTestJob(t))
		if !errors.Is(err, report.ErrUnknownColumn) {
			t.Fatalf("expected ErrUnknownColumn, got %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no files, got %d", len(entries))
		}
	})

	t.Run("writes no file when the header is incomplete", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p := DefaultPipeline(ExportOptions{OutputDir: dir, Logger: discardLogger()})

		job := newTestJob(t)
		job.Header.Date = time.Time{}
		if err := p.Execute(context.Background(), job); !errors.Is(err, record.ErrMissingHeader) {
			t.Fatalf("expected ErrMissingHeader, got %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no files, got %d", len(entries))
		}
	})

	t.Run("stores history", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		p := DefaultPipeline(ExportOptions{OutputDir: t.TempDir(), JSON: true, Store: store, Logger: discardLogger()})

		job := newTestJob(t)
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(store.sheets) != 1 || store.sheets[0].ID == "" {
			t.Fatalf("expected one stored sheet with an id, got %+v", store.sheets)
		}
		if len(store.artifacts) != 2 {
			t.Fatalf("expected 2 artifacts, got %d", len(store.artifacts))
		}
		for _, a := range store.artifacts {
			if a.AuditID != store.sheets[0].ID || a.Digest == "" {
				t.Errorf("unexpected artifact %+v", a)
			}
		}
	})

	t.Run("stores history in the audit database", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		p := DefaultPipeline(ExportOptions{OutputDir: t.TempDir(), Store: db, Logger: discardLogger()})
		job := newTestJob(t)
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		artifact, err := db.FindArtifactByDigest(context.Background(), job.Artifacts[0].Digest)
		if err != nil {
			t.Fatalf("expected artifact in history: %v", err)
		}
		if artifact.AuditID != job.Sheet.ID {
			t.Errorf("expected audit %s, got %s", job.Sheet.ID, artifact.AuditID)
		}
	})
}

func TestPersistStep(t *testing.T) {
	t.Parallel()

	t.Run("removes earlier files when a later one fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		// A directory where the second file should go makes its write fail.
		if err := os.Mkdir(filepath.Join(dir, "b.md"), 0o750); err != nil {
			t.Fatal(err)
		}

		job := &Job{Artifacts: []Artifact{
			{Format: "csv", Name: "a.csv", Data: []byte("a")},
			{Format: "md", Name: "b.md", Data: []byte("b")},
		}}
		err := NewPersistStep(dir, discardLogger()).Do(context.Background(), job)
		if !errors.Is(err, report.ErrExportWrite) {
			t.Fatalf("expected ErrExportWrite, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "a.csv")); !os.IsNotExist(err) {
			t.Error("expected a.csv to be removed")
		}
	})

	t.Run("restores overwritten files when a later one fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := filepath.Join(dir, "a.csv")
		if err := os.WriteFile(existing, []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.Mkdir(filepath.Join(dir, "b.md"), 0o750); err != nil {
			t.Fatal(err)
		}

		job := &Job{Artifacts: []Artifact{
			{Format: "csv", Name: "a.csv", Data: []byte("new")},
			{Format: "md", Name: "b.md", Data: []byte("b")},
		}}
		if err := NewPersistStep(dir, discardLogger()).Do(context.Background(), job); err == nil {
			t.Fatal("expected error")
		}
		got, err := os.ReadFile(existing)
		if err != nil {
			t.Fatalf("expected %s to be kept: %v", existing, err)
		}
		if string(got) != "old" {
			t.Errorf("expected previous contents %q, got %q", "old", got)
		}
	})

	t.Run("overwrites existing files on success", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := filepath.Join(dir, "a.csv")
		if err := os.WriteFile(existing, []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}

		job := &Job{Artifacts: []Artifact{{Format: "csv", Name: "a.csv", Data: []byte("new")}}}
		if err := NewPersistStep(dir, discardLogger()).Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := os.ReadFile(existing)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "new" {
			t.Errorf("expected %q, got %q", "new", got)
		}
	})
}

func TestHistoryStep(t *testing.T) {
	t.Parallel()

	t.Run("stored sheets only record artifacts", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		job := NewRebuildJob(&model.Sheet{ID: "stored"})
		job.Artifacts = []Artifact{{Format: "pdf", Path: "x.pdf", Digest: "d"}}

		if err := NewHistoryStep(store, discardLogger()).Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(store.sheets) != 0 {
			t.Error("expected sheet not to be stored again")
		}
		if len(store.artifacts) != 1 || store.artifacts[0].AuditID != "stored" {
			t.Errorf("unexpected artifacts %+v", store.artifacts)
		}
	})

	t.Run("wraps store errors", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("disk full")
		job := &Job{Sheet: &model.Sheet{}}
		err := NewHistoryStep(&fakeStore{err: failure}, discardLogger()).Do(context.Background(), job)
		if !errors.Is(err, failure) {
			t.Errorf("expected wrapped store error, got %v", err)
		}
	})
}
