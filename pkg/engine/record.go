package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/compose"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Default workflow states.
const (
	StateEditing  = "EN_EDICION"
	StateSent     = "ENVIADO"
	StateApproved = "APROBADO"
	StateRejected = "RECHAZADO"
)

func effectiveWorkflow(wf *schema.Workflow) schema.Workflow {
	out := schema.Workflow{
		StateKey:      "estado",
		EditableState: StateEditing,
		ReviewState:   StateSent,
		LockedStates:  []string{StateSent, StateApproved, StateRejected},
	}
	if wf == nil {
		return out
	}
	if wf.StateKey != "" {
		out.StateKey = wf.StateKey
	}
	if wf.EditableState != "" {
		out.EditableState = wf.EditableState
	}
	if wf.ReviewState != "" {
		out.ReviewState = wf.ReviewState
	}
	if len(wf.LockedStates) > 0 {
		out.LockedStates = append([]string(nil), wf.LockedStates...)
	}
	out.StatusEndpoint = wf.StatusEndpoint
	return out
}

// State returns the record's workflow state, "" for new records.
func (e *Engine) State() string {
	return e.state
}

// Locked reports whether the record is in an immutable state.
func (e *Engine) Locked() bool {
	return e.locked
}

// PendingValues returns record values not yet applied, typically selects
// waiting for their options.
func (e *Engine) PendingValues() map[string]any {
	out := make(map[string]any, len(e.pending))
	for k, v := range e.pending {
		out[k] = v
	}
	return out
}

// recordPath is <endpoint>/<id>, or <endpoint>/<id>/full when the schema
// asks for the denormalised view.
func (e *Engine) recordPath() string {
	path := strings.TrimRight(e.doc.Endpoint, "/") + "/" + e.recordID
	if e.doc.EndpointEditFull {
		path += "/full"
	}
	return path
}

func (e *Engine) fetchRecord() {
	if e.store == nil {
		e.recordErr = ErrNoStore
		e.loadDone()
		return
	}
	path := e.recordPath()
	store := e.store
	e.logger.Debug("engine: load record", "path", path)
	e.run(func(ctx context.Context) func() {
		var record map[string]any
		err := store.Do(ctx, http.MethodGet, path, nil, &record)
		return func() {
			if err != nil {
				e.recordErr = fmt.Errorf("engine: load record %s: %w", path, err)
			} else {
				e.record = record
			}
			e.loadDone()
		}
	})
}

func (e *Engine) loadDone() {
	if e.pendingLoads > 0 {
		e.pendingLoads--
	}
	if e.pendingLoads == 0 && !e.loaded {
		e.finishLoad()
	}
}

// finishLoad applies the fetched record once every initial load completed.
func (e *Engine) finishLoad() {
	e.loaded = true
	if e.recordErr != nil {
		e.fail(e.recordErr)
		e.notify()
		return
	}
	if e.record != nil {
		e.applyRecord(e.record)
	}
	e.observers.loaded()
	e.notify()
}

func (e *Engine) applyRecord(record map[string]any) {
	ctx := e.context()
	result := e.composer.Flatten(ctx, record)
	e.unmapped = result.Unmapped
	values := compose.ApplyAliases(result.Values, e.doc.Aliases)

	e.state = schema.NormalizeID(values[e.workflow.StateKey])
	if e.isLockedState(e.state) {
		e.lock()
	}

	for k, v := range values {
		e.pending[k] = v
	}
	// The discriminator goes first so the graft is under way before
	// variant fields look for their controls.
	if e.variants != nil {
		e.applyPending(e.variants.Discriminator)
	}
	for _, key := range e.registry.Keys() {
		e.applyPending(key)
	}
}

// applyPending assigns a pending value to its control. Values a select
// cannot match yet stay pending for the next option arrival.
func (e *Engine) applyPending(key string) {
	value, ok := e.pending[key]
	if !ok {
		return
	}
	c, ok := e.registry.Lookup(key)
	if !ok {
		return
	}
	err := c.SetValue(value)
	switch {
	case err == nil:
		delete(e.pending, key)
	case isNoMatch(err):
		e.logger.Debug("engine: value awaiting options", "field", key, "state", e.DependencyState(key).String())
	default:
		delete(e.pending, key)
		e.logger.Warn("engine: record value rejected", "field", key, "error", err)
	}
}

func (e *Engine) isLockedState(state string) bool {
	for _, locked := range e.workflow.LockedStates {
		if strings.EqualFold(state, locked) {
			return true
		}
	}
	return false
}

func (e *Engine) lock() {
	e.locked = true
	for _, c := range e.Controls() {
		c.SetEnabled(false)
	}
}
