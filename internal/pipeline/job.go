package pipeline

import (
	"time"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/collector"
	"github.com/nao1215/auditsheet/internal/model"
	"github.com/nao1215/auditsheet/internal/report"
)

// Artifact is one rendered output of an export.
type Artifact struct {
	// Format is the file extension of the output (csv, pdf, md, json).
	Format string

	// Name is the output file name, without directory.
	Name string

	// Data holds the rendered bytes.
	Data []byte

	// Path is where the file was written. Empty until persisted.
	Path string

	// Digest is the hex BLAKE2b-256 digest of Data. Empty until persisted.
	Digest string
}

// Job carries the state of one export through the pipeline.
type Job struct {
	// Definition is the checklist being exported.
	Definition *checklist.Definition

	// Collector holds the responses to export.
	Collector *collector.Collector

	// Header holds the audit metadata.
	Header model.Header

	// Sheet is the built sheet. BuildStep sets it; a re-export of a stored
	// sheet sets it up front and leaves Definition and Collector nil.
	Sheet *model.Sheet

	// FromHistory marks a sheet loaded from the audit history, which must
	// not be stored again.
	FromHistory bool

	// Artifacts lists the rendered outputs in step order.
	Artifacts []Artifact

	// Rendering describes the PDF render, if one was made.
	Rendering *report.Rendering

	// PerformedSteps lists the names of the steps that completed.
	PerformedSteps []string

	// Err is the error that stopped the job, if any.
	Err error

	// Duration is how long the pipeline ran.
	Duration time.Duration
}

// NewJob creates a job for a fresh export.
func NewJob(def *checklist.Definition, col *collector.Collector, header model.Header) *Job {
	return &Job{
		Definition: def,
		Collector:  col,
		Header:     header,
	}
}

// NewRebuildJob creates a job that re-exports a stored sheet.
func NewRebuildJob(sheet *model.Sheet) *Job {
	return &Job{
		Header:      sheet.Header,
		Sheet:       sheet,
		FromHistory: true,
	}
}

// Degraded returns the PDF font fallback warning, or nil.
func (j *Job) Degraded() *report.RenderDegraded {
	if j.Rendering == nil {
		return nil
	}
	return j.Rendering.Degraded
}

// Paths returns the paths of the persisted artifacts.
func (j *Job) Paths() []string {
	paths := make([]string, 0, len(j.Artifacts))
	for _, a := range j.Artifacts {
		if a.Path != "" {
			paths = append(paths, a.Path)
		}
	}
	return paths
}
