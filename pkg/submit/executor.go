package submit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Doer performs one backend call, decoding the response into out when out is
// non-nil.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// Recorder observes step outcomes.
type Recorder interface {
	ObserveStep(step, outcome string)
}

// Step outcomes reported to a Recorder.
const (
	OutcomeOK                 = "ok"
	OutcomeSkipped            = "skipped"
	OutcomeFailed             = "failed"
	OutcomeCompensated        = "compensated"
	OutcomeCompensationFailed = "compensation_failed"
)

// Outcome summarises a successful run.
type Outcome struct {
	ID        string
	Completed []string
	Skipped   []string
}

// Executor runs plans sequentially, stopping at the first failure.
type Executor struct {
	doer       Doer
	logger     *slog.Logger
	recorder   Recorder
	compensate bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder reports step outcomes, typically to metrics.
func WithRecorder(recorder Recorder) Option {
	return func(e *Executor) {
		e.recorder = recorder
	}
}

// WithCompensation enables rollback of completed steps, in reverse order,
// when a later step fails.
func WithCompensation(enabled bool) Option {
	return func(e *Executor) {
		e.compensate = enabled
	}
}

// NewExecutor builds an executor over the given transport.
func NewExecutor(doer Doer, opts ...Option) *Executor {
	e := &Executor{doer: doer, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Execute runs the plan. id is the record id when editing and may be empty
// for new records, in which case a CaptureID step must provide it. Failures
// are returned as *PartialError.
func (e *Executor) Execute(ctx context.Context, plan Plan, values map[string]any, id string) (Outcome, error) {
	if e.doer == nil {
		return Outcome{}, fmt.Errorf("submit: executor has no transport")
	}
	out := Outcome{ID: id}
	var done []Step

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return out, e.fail(ctx, step.Name, done, out.ID, err)
		}

		var payload any
		if step.Build != nil {
			built, skip, err := step.Build(values)
			if err != nil {
				return out, e.fail(ctx, step.Name, done, out.ID, err)
			}
			if skip {
				out.Skipped = append(out.Skipped, step.Name)
				e.observe(step.Name, OutcomeSkipped)
				continue
			}
			payload = built
		}

		path, err := expandPath(step.Path, out.ID)
		if err != nil {
			return out, e.fail(ctx, step.Name, done, out.ID, err)
		}

		var response map[string]any
		var target any
		if step.CaptureID {
			target = &response
		}
		e.logger.DebugContext(ctx, "submit: step", "step", step.Name, "method", step.Method, "path", path)
		if err := e.doer.Do(ctx, step.Method, path, payload, target); err != nil {
			return out, e.fail(ctx, step.Name, done, out.ID, err)
		}
		if step.CaptureID {
			field := step.IDField
			if field == "" {
				field = "id"
			}
			newID := schema.NormalizeID(response[field])
			if newID == "" {
				return out, e.fail(ctx, step.Name, done, out.ID, fmt.Errorf("%w: response has no %q", ErrMissingID, field))
			}
			out.ID = newID
		}

		e.observe(step.Name, OutcomeOK)
		done = append(done, step)
		out.Completed = append(out.Completed, step.Name)
	}
	return out, nil
}

func (e *Executor) fail(ctx context.Context, name string, done []Step, id string, cause error) error {
	e.observe(name, OutcomeFailed)
	perr := &PartialError{Failed: name, Err: cause}
	for _, step := range done {
		perr.Completed = append(perr.Completed, step.Name)
	}
	e.logger.WarnContext(ctx, "submit: step failed", "step", name, "completed", perr.Completed, "error", cause)

	if !e.compensate {
		return perr
	}
	// Compensation runs even if ctx was cancelled.
	rollbackCtx := context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		comp := done[i].Compensate
		if comp == nil {
			continue
		}
		path, err := expandPath(comp.Path, id)
		if err == nil {
			err = e.doer.Do(rollbackCtx, comp.Method, path, nil, nil)
		}
		if err != nil {
			e.observe(comp.Name, OutcomeCompensationFailed)
			perr.CompensationErr = fmt.Errorf("%s: %w", comp.Name, err)
			e.logger.ErrorContext(ctx, "submit: compensation failed", "step", comp.Name, "error", err)
			break
		}
		e.observe(comp.Name, OutcomeCompensated)
		perr.Compensated = append(perr.Compensated, done[i].Name)
	}
	return perr
}

func (e *Executor) observe(step, outcome string) {
	if e.recorder != nil {
		e.recorder.ObserveStep(step, outcome)
	}
}

func expandPath(path, id string) (string, error) {
	if !strings.Contains(path, schema.IDPlaceholder) {
		return path, nil
	}
	if id == "" {
		return "", fmt.Errorf("%w for %s", ErrMissingID, path)
	}
	return strings.ReplaceAll(path, schema.IDPlaceholder, url.PathEscape(id)), nil
}
