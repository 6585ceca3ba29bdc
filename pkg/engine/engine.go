// Package engine builds a stateful multi-step wizard from a form schema.
//
// An Engine owns the live controls of one record dialog. It evaluates
// visibility rules, tracks required-field progress, reloads dependent combos
// when their trigger changes, grafts and prunes variant sections driven by a
// discriminator field, and composes records on load and submission.
//
// The engine is single-owner: every method must be called from the goroutine
// that drains its Dispatcher. Network work runs on a Pool and its results are
// posted back through the Dispatcher, so mutations never happen off the
// owning goroutine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/compose"
	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/variants"
	"github.com/goliatone/go-formwizard/pkg/visibility"
)

// Engine is the live wizard for one record.
type Engine struct {
	doc       *schema.Document
	form      *FormState
	registry  *Registry
	factories *controls.Registry
	evaluator visibility.Evaluator
	nav       *Navigator
	workflow  schema.Workflow

	variants     *variants.Table
	variant      string
	variantDoc   *schema.Document
	expansionGen uint64

	options       OptionSource
	store         RecordStore
	variantLoader VariantLoader
	dispatcher    Dispatcher
	pool          *Pool
	composer      compose.Composer
	identity      Identity
	invalidator   Invalidator
	observers     observers
	logger        *slog.Logger
	recorder      submit.Recorder
	compensate    bool

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	recordID     string
	pendingLoads int
	record       map[string]any
	recordErr    error
	loaded       bool
	pending      map[string]any
	unmapped     []compose.Unmapped
	state        string
	locked       bool

	loads   map[string]*loadTracker
	prefill map[string]uint64
}

// New builds an engine over a validated document. Base sections are built
// immediately; call Start to begin loading options and the record.
func New(doc *schema.Document, opts ...Option) (*Engine, error) {
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e := &Engine{
		doc:        doc,
		form:       newFormState(doc),
		registry:   newRegistry(),
		evaluator:  visibility.Equality,
		nav:        &Navigator{},
		dispatcher: NewQueueDispatcher(),
		composer:   compose.Identity{},
		logger:     slog.Default(),
		pending:    make(map[string]any),
		loads:      make(map[string]*loadTracker),
		prefill:    make(map[string]uint64),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.factories == nil {
		e.factories = controls.NewRegistry()
	}
	if e.pool == nil {
		e.pool = NewPool(DefaultPoolSize)
	}
	e.workflow = effectiveWorkflow(doc.Workflow)

	table, err := variants.FromExpansion(doc.Expansion)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.variants = table

	for idx, section := range e.form.sections {
		if err := e.buildSection(idx, section); err != nil {
			return nil, err
		}
		e.nav.AddStep(section.Title)
	}
	return e, nil
}

// Start begins initial population: every independent remote combo and, in
// edit mode, the record itself. Record values are applied once all of them
// have completed.
func (e *Engine) Start(ctx context.Context) {
	if e.ctx != nil {
		return
	}
	e.ctx, e.cancel = context.WithCancel(ctx)

	combos := e.remoteCombos(e.registry.Keys())
	e.pendingLoads = len(combos)
	if e.editing() {
		e.pendingLoads++
		e.fetchRecord()
	}
	for _, field := range combos {
		e.fetchOptions(field, field.Source, field.EffectiveCacheKey(), true)
	}
	if e.pendingLoads == 0 {
		e.finishLoad()
	}
	e.notify()
}

// Close drops every later completion.
func (e *Engine) Close() {
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}
}

// Settle waits for background work and drains completions until both are
// idle. It only drains dispatchers implementing Drainer.
func (e *Engine) Settle() {
	d, ok := e.dispatcher.(Drainer)
	for {
		e.pool.Wait()
		if !ok || d.Drain() == 0 {
			return
		}
	}
}

// Document returns the immutable base document.
func (e *Engine) Document() *schema.Document {
	return e.doc
}

// Registry exposes read access to the bound controls and edges.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Navigator returns the wizard step navigator.
func (e *Engine) Navigator() *Navigator {
	return e.nav
}

// Sections returns the live section list, base sections first.
func (e *Engine) Sections() []schema.Section {
	return e.form.Sections()
}

// Lookup returns the control bound to key.
func (e *Engine) Lookup(key string) (controls.Control, bool) {
	return e.registry.Lookup(key)
}

// Variant reports the grafted variant name, "" when none.
func (e *Engine) Variant() string {
	return e.variant
}

// RecordID returns the record id; empty for unsaved records.
func (e *Engine) RecordID() string {
	return e.recordID
}

// Editing reports whether the engine edits an existing record.
func (e *Engine) Editing() bool {
	return e.editing()
}

// Loaded reports whether record values have been applied.
func (e *Engine) Loaded() bool {
	return e.loaded
}

// LoadErr returns the record fetch error, if any.
func (e *Engine) LoadErr() error {
	return e.recordErr
}

// Unmapped returns nested entries the composer could not place.
func (e *Engine) Unmapped() []compose.Unmapped {
	return append([]compose.Unmapped(nil), e.unmapped...)
}

// Set assigns a value to a control as a user edit would.
func (e *Engine) Set(key string, value any) error {
	c, ok := e.registry.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if e.locked || !c.Enabled() {
		return fmt.Errorf("%w: %s", ErrLocked, key)
	}
	delete(e.pending, key)
	return c.SetValue(value)
}

// Values returns the payload value of every bound control.
func (e *Engine) Values() map[string]any {
	out := make(map[string]any, e.registry.Len())
	for _, key := range e.registry.Keys() {
		c, _ := e.registry.Lookup(key)
		out[key] = controls.Payload(c)
	}
	return out
}

// Controls returns the bound controls in build order.
func (e *Engine) Controls() []controls.Control {
	keys := e.registry.Keys()
	out := make([]controls.Control, 0, len(keys))
	for _, key := range keys {
		c, _ := e.registry.Lookup(key)
		out = append(out, c)
	}
	return out
}

func (e *Engine) editing() bool {
	return strings.TrimSpace(e.recordID) != ""
}

func (e *Engine) context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// run executes task on the pool and posts apply back to the owning
// goroutine unless the engine was closed meanwhile.
func (e *Engine) run(task func(ctx context.Context) func()) {
	ctx := e.context()
	e.pool.Go(func() {
		apply := task(ctx)
		if apply == nil {
			return
		}
		e.dispatcher.Post(func() {
			if e.closed {
				e.logger.Debug("engine: completion after close", "error", ErrStale)
				return
			}
			apply()
		})
	})
}

// handleChange is wired to every control's change signal.
func (e *Engine) handleChange(c controls.Control) {
	key := c.Key()
	e.evaluateSource(key)
	if len(e.registry.dependents[key]) > 0 {
		e.reloadDependents(c)
	}
	if e.variants != nil && key == e.variants.Discriminator {
		e.switchVariant(c)
	}
	e.runPrefill(c)
	e.notify()
}

// notify pushes progress and navigation state to observers.
func (e *Engine) notify() {
	if len(e.observers) == 0 {
		return
	}
	report := e.Progress()
	e.observers.progress(report)
	e.observers.navigation(e.navState(report))
}

func (e *Engine) fail(err error) {
	e.logger.Error("engine: load failed", "error", err)
	e.observers.failed(err)
}

func isNoMatch(err error) bool {
	return errors.Is(err, controls.ErrNoMatch)
}
