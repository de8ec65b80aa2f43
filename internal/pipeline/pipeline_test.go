package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/collector"
	"github.com/nao1215/auditsheet/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *Job) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *Job) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDefinition creates a two-item checklist for testing.
func newTestDefinition(t *testing.T) *checklist.Definition {
	t.Helper()

	def, err := checklist.New("test", "Test Checklist", []checklist.Category{
		{Name: "Docs", Items: []checklist.Item{
			{ID: "d1", Title: "Backup policy"},
			{ID: "d2", Title: "Retention schedule"},
		}},
	})
	if err != nil {
		t.Fatalf("failed to create definition: %v", err)
	}
	return def
}

// newTestJob creates a job with one answered item.
func newTestJob(t *testing.T) *Job {
	t.Helper()

	def := newTestDefinition(t)
	col := collector.New(def)
	if err := col.Set("d1", "confirmed", "ok, see log"); err != nil {
		t.Fatalf("failed to set response: %v", err)
	}
	header := model.Header{
		Auditor: "Jane Doe",
		Date:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	return NewJob(def, col, header)
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.StepCount() != 0 {
		t.Errorf("expected 0 steps, got %d", p.StepCount())
	}
	if p.logger == nil {
		t.Error("expected default logger")
	}
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "a"})
	p.AddSteps(&mockStep{name: "b"}, &mockStep{name: "c"})

	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}
	names := p.StepNames()
	for i, want := range []string{"a", "b", "c"} {
		if names[i] != want {
			t.Errorf("step %d: expected %q, got %q", i, want, names[i])
		}
	}
}

// TestPipelineExecute tests step execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *Job) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(record("first"), record("second"))

		job := &Job{}
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected order %v", order)
		}
		if len(job.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %v", job.PerformedSteps)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("render failed")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Job) error { return failure }}
		after := &mockStep{name: "after"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(failing, after)

		job := &Job{}
		err := p.Execute(context.Background(), job)
		if !errors.Is(err, failure) {
			t.Fatalf("expected render failure, got %v", err)
		}
		if !errors.Is(job.Err, failure) {
			t.Errorf("expected job error to be recorded, got %v", job.Err)
		}
		if after.callCount != 0 {
			t.Error("expected later steps to be skipped")
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "step"}
		p := New(WithLogger(discardLogger()))
		p.AddStep(step)

		err := p.Execute(ctx, &Job{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
	})
}

func TestJobHelpers(t *testing.T) {
	t.Parallel()

	job := &Job{Artifacts: []Artifact{{Path: "a.csv"}, {}}}
	if paths := job.Paths(); len(paths) != 1 || paths[0] != "a.csv" {
		t.Errorf("unexpected paths %v", paths)
	}
	if job.Degraded() != nil {
		t.Error("expected no degraded rendering")
	}
	if jobChecklist(job) != "" {
		t.Error("expected empty checklist name")
	}
}
