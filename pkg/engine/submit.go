package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/submit"
)

// SubmitFunc receives the outcome of an asynchronous write on the owning
// goroutine.
type SubmitFunc func(out submit.Outcome, err error)

// submission returns the declared submission block, the variant's taking
// precedence over the base document's.
func (e *Engine) submission() *schema.Submission {
	if e.variantDoc != nil && e.variantDoc.Submission != nil {
		return e.variantDoc.Submission
	}
	return e.doc.Submission
}

// Plan builds the write plan for the current values without running it.
func (e *Engine) Plan() (submit.Plan, map[string]any, error) {
	sub := e.submission()
	values := e.Values()
	creator := e.creator()

	nested, unmapped := e.composer.Unflatten(e.context(), values)
	for _, u := range unmapped {
		e.logger.Warn("engine: unmapped entry on submit", "entry", u.String())
	}

	if sub != nil && (sub.Create != nil || sub.Update != nil) {
		for k, v := range nested {
			values[k] = v
		}
		if sub.CreatorField != "" && creator != nil {
			values[sub.CreatorField] = creator
		}
		plan, err := submit.BuildPlan(sub, submit.PlanOptions{Editing: e.editing(), Variant: e.variant})
		if err != nil {
			return submit.Plan{}, nil, fmt.Errorf("engine: %w", err)
		}
		return plan, values, nil
	}

	creatorField := ""
	if sub != nil {
		creatorField = sub.CreatorField
	}
	payload := submit.Generic(e.Controls(), creatorField, creator)
	for k, v := range nested {
		payload[k] = v
	}
	endpoint := strings.TrimRight(e.doc.Endpoint, "/")
	if e.editing() {
		return submit.SinglePlan("update", http.MethodPut, endpoint+"/"+schema.IDPlaceholder, payload, false), payload, nil
	}
	return submit.SinglePlan("create", http.MethodPost, endpoint, payload, true), payload, nil
}

// Submit writes the record. The plan is computed on the calling goroutine;
// the calls run on the pool and done is invoked on the owning goroutine.
func (e *Engine) Submit(ctx context.Context, done SubmitFunc) {
	if done == nil {
		done = func(submit.Outcome, error) {}
	}
	if e.locked {
		done(submit.Outcome{ID: e.recordID}, ErrLocked)
		return
	}
	if e.store == nil {
		done(submit.Outcome{}, ErrNoStore)
		return
	}
	plan, values, err := e.Plan()
	if err != nil {
		done(submit.Outcome{}, err)
		return
	}

	exec := submit.NewExecutor(e.store,
		submit.WithCompensation(e.compensate),
		submit.WithLogger(e.logger),
		submit.WithRecorder(e.recorder),
	)
	id := e.recordID
	e.runWith(ctx, func(ctx context.Context) func() {
		out, err := exec.Execute(ctx, plan, values, id)
		return func() {
			switch {
			case err == nil:
				if out.ID != "" {
					e.recordID = out.ID
				}
				e.invalidate(ctx)
			case id == "" && out.ID != "" && createKept(plan, err):
				// The primary record exists on the backend; a retry updates it.
				e.recordID = out.ID
			}
			done(out, err)
		}
	})
}

// createKept reports whether the id-capturing step of plan was written and
// not rolled back before err stopped the run.
func createKept(plan submit.Plan, err error) bool {
	var perr *submit.PartialError
	if !errors.As(err, &perr) {
		return false
	}
	for _, step := range plan.Steps {
		if step.CaptureID {
			return slices.Contains(perr.Completed, step.Name) && !slices.Contains(perr.Compensated, step.Name)
		}
	}
	return false
}

// ChangeStatus moves the record to state: PUT <endpoint>/{id}/estado.
func (e *Engine) ChangeStatus(ctx context.Context, state, comment string, done SubmitFunc) {
	if done == nil {
		done = func(submit.Outcome, error) {}
	}
	if !e.editing() {
		done(submit.Outcome{}, fmt.Errorf("engine: change status: %w", submit.ErrMissingID))
		return
	}
	if e.store == nil {
		done(submit.Outcome{}, ErrNoStore)
		return
	}
	path := e.workflow.StatusEndpoint
	if path == "" {
		path = strings.TrimRight(e.doc.Endpoint, "/") + "/" + schema.IDPlaceholder + "/estado"
	}
	path = strings.ReplaceAll(path, schema.IDPlaceholder, e.recordID)
	body := map[string]any{"estado": state}
	if strings.TrimSpace(comment) != "" {
		body["comentario"] = comment
	}

	store := e.store
	e.runWith(ctx, func(ctx context.Context) func() {
		err := store.Do(ctx, http.MethodPut, path, body, nil)
		return func() {
			if err == nil {
				e.state = state
				if e.isLockedState(state) {
					e.lock()
				}
				e.invalidate(ctx)
				e.notify()
			} else {
				err = fmt.Errorf("engine: change status: %w", err)
			}
			done(submit.Outcome{ID: e.recordID, Completed: []string{"estado"}}, err)
		}
	})
}

// Send submits the record for review.
func (e *Engine) Send(ctx context.Context, done SubmitFunc) {
	e.ChangeStatus(ctx, e.workflow.ReviewState, "", done)
}

// Review approves or rejects a sent record.
func (e *Engine) Review(ctx context.Context, approve bool, comment string, done SubmitFunc) {
	state := StateRejected
	if approve {
		state = StateApproved
	}
	e.ChangeStatus(ctx, state, comment, done)
}

func (e *Engine) runWith(ctx context.Context, task func(ctx context.Context) func()) {
	if ctx == nil {
		ctx = e.context()
	}
	e.pool.Go(func() {
		apply := task(ctx)
		e.dispatcher.Post(apply)
	})
}

func (e *Engine) invalidate(ctx context.Context) {
	sub := e.submission()
	if e.invalidator == nil || sub == nil || len(sub.Invalidates) == 0 {
		return
	}
	if err := e.invalidator.Invalidate(ctx, sub.Invalidates...); err != nil {
		e.logger.Warn("engine: cache invalidation failed", "keys", sub.Invalidates, "error", err)
	}
}

func (e *Engine) creator() any {
	if e.identity == nil {
		return nil
	}
	if id := e.identity.UserID(); id != "" {
		return id
	}
	return nil
}
