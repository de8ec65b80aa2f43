package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/auditsheet/internal/database"
	"github.com/nao1215/auditsheet/internal/model"
)

// newStoredSheet creates a sheet as loaded from the history.
func newStoredSheet(id, auditor string) *model.Sheet {
	return &model.Sheet{
		ID:        id,
		Checklist: "test",
		Title:     "Test Checklist",
		Prefix:    "audit",
		Header: model.Header{
			Auditor: auditor,
			Date:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		Records: []model.Record{
			{Category: "Docs", ItemID: "d1", ItemTitle: "Backup policy", Status: "confirmed"},
		},
		CreatedAt: fixedNow,
	}
}

func TestNewBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0))
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
	})
}

func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("re-exports every sheet", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := &lockedStore{}
		factory := func() *Pipeline {
			return DefaultPipeline(ExportOptions{OutputDir: dir, Store: store, Logger: discardLogger()})
		}

		sheets := []*model.Sheet{
			newStoredSheet("a", "Ann"),
			newStoredSheet("b", "Ben"),
			newStoredSheet("c", "Cy"),
		}
		jobs, err := NewBatchProcessor(factory, WithConcurrency(2), WithBatchLogger(discardLogger())).
			ProcessBatch(context.Background(), sheets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(jobs) != 3 {
			t.Fatalf("expected 3 jobs, got %d", len(jobs))
		}
		for i, job := range jobs {
			if job.Sheet != sheets[i] {
				t.Errorf("job %d: expected input order", i)
			}
			if job.Err != nil {
				t.Errorf("job %d: unexpected error %v", i, job.Err)
			}
			path := filepath.Join(dir, fmt.Sprintf("audit_2024-01-15_%s.csv", sheets[i].Header.Auditor))
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected %s: %v", path, err)
			}
		}
		if got := store.sheets.Load(); got != 0 {
			t.Errorf("expected no sheets to be stored again, got %d", got)
		}
		if got := store.artifacts.Load(); got != 3 {
			t.Errorf("expected 3 artifacts, got %d", got)
		}
	})

	t.Run("records failures and continues", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("render failed")
		factory := func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "maybe_fail", doFunc: func(_ context.Context, job *Job) error {
				if job.Sheet.ID == "bad" {
					return failure
				}
				return nil
			}})
			return p
		}

		jobs, err := NewBatchProcessor(factory, WithBatchLogger(discardLogger())).
			ProcessBatch(context.Background(), []*model.Sheet{newStoredSheet("good", "a"), newStoredSheet("bad", "b")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if jobs[0].Err != nil {
			t.Errorf("expected first job to succeed, got %v", jobs[0].Err)
		}
		if !errors.Is(jobs[1].Err, failure) {
			t.Errorf("expected second job to fail, got %v", jobs[1].Err)
		}
	})

	t.Run("limits concurrency", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		factory := func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "slow", doFunc: func(context.Context, *Job) error {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return nil
			}})
			return p
		}

		sheets := make([]*model.Sheet, 8)
		for i := range sheets {
			sheets[i] = newStoredSheet(fmt.Sprint(i), "a")
		}
		if _, err := NewBatchProcessor(factory, WithConcurrency(2), WithBatchLogger(discardLogger())).
			ProcessBatch(context.Background(), sheets); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent exports, got %d", peak.Load())
		}
	})

	t.Run("returns error when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		jobs, err := NewBatchProcessor(func() *Pipeline { return New(WithLogger(discardLogger())) }, WithBatchLogger(discardLogger())).
			ProcessBatch(ctx, []*model.Sheet{newStoredSheet("a", "a")})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(jobs) != 1 || jobs[0].Err == nil {
			t.Error("expected the job to record the cancellation")
		}
	})
}

// lockedStore counts history calls from concurrent exports.
type lockedStore struct {
	sheets    atomic.Int32
	artifacts atomic.Int32
}

func (s *lockedStore) SaveSheet(_ context.Context, sheet *model.Sheet) (string, error) {
	s.sheets.Add(1)
	return sheet.ID, nil
}

func (s *lockedStore) SaveArtifact(context.Context, database.Artifact) error {
	s.artifacts.Add(1)
	return nil
}
