package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/thronescan/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the batch as left by the
// previous step.
type Step interface {
	// Do executes the pipeline step.
	// Problems limited to single lines or images are recorded in the batch;
	// only failures that leave nothing to continue with are returned.
	Do(ctx context.Context, batch *model.Batch) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps over one batch.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddSteps after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked before each step, not during one; steps handle
// their own cancellation.
//
// The first step error stops the pipeline. It is returned and also
// recorded in the batch, as is a cancellation.
func (p *Pipeline) Execute(ctx context.Context, batch *model.Batch) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			batch.Error = ctx.Err()
			batch.ErrorMessage = ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name(), "date", batch.Date)

		if err := step.Do(ctx, batch); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"error", err,
			)
			batch.Error = err
			batch.ErrorMessage = err.Error()
			return err
		}

		p.logger.Debug("step completed", "step", step.Name())
		batch.PerformedSteps = append(batch.PerformedSteps, step.Name())
	}

	return nil
}
