package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Step is one stage of an export: building the sheet, rendering a format,
// writing files or recording history. A step reads what earlier steps left
// on the Job and adds its own results.
//
// Design decision: steps are values with a Name so that each one can hold
// its own settings (output directory, fonts, store) and so that logs and
// Job.PerformedSteps can say which stage ran or failed.
type Step interface {
	// Do runs the stage. A non-nil error aborts the export.
	Do(ctx context.Context, job *Job) error

	// Name is a short identifier such as "render_csv".
	Name() string
}

// Pipeline runs an ordered list of steps against a Job.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger replaces slog.Default() as the pipeline's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New returns an empty Pipeline. Add stages with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends step to the end of the run order.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps, keeping their order.
func (p *Pipeline) AddSteps(steps ...Step) {
	for _, s := range steps {
		p.AddStep(s)
	}
}

// Execute runs the steps in order. The first error stops the run and is
// also stored in job.Err. Job.Duration is set whatever the outcome.
//
// Cancellation is only observed between steps. No step is interrupted
// half way, so an export either wrote its files or it did not.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	start := time.Now()
	defer func() { job.Duration = time.Since(start) }()

	fail := func(err error) error {
		job.Err = err
		return err
	}

	for _, step := range p.steps {
		name := step.Name()
		if err := ctx.Err(); err != nil {
			p.logger.Warn("export cancelled", "step", name, "reason", err)
			return fail(err)
		}

		log := p.logger.With("step", name, "checklist", jobChecklist(job))
		log.Debug("running export step")
		if err := step.Do(ctx, job); err != nil {
			log.Error("export step failed", "error", err)
			return fail(err)
		}
		job.PerformedSteps = append(job.PerformedSteps, name)
	}

	p.logger.Debug("export finished",
		"checklist", jobChecklist(job),
		"steps", p.StepCount(),
		"elapsed", time.Since(start),
	)
	return nil
}

// StepCount reports how many steps the pipeline holds.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames lists the step names in run order.
func (p *Pipeline) StepNames() []string {
	out := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		out = append(out, s.Name())
	}
	return out
}

// jobChecklist names the checklist for log lines, before or after the
// sheet has been built.
func jobChecklist(job *Job) string {
	if job.Sheet != nil {
		return job.Sheet.Checklist
	}
	if job.Definition != nil {
		return job.Definition.Name()
	}
	return ""
}
