package engine

import (
	"log/slog"

	"github.com/goliatone/go-formwizard/pkg/compose"
	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/submit"
	"github.com/goliatone/go-formwizard/pkg/visibility"
)

// Option configures an Engine.
type Option func(*Engine)

// WithOptionSource sets the option-list collaborator.
func WithOptionSource(src OptionSource) Option {
	return func(e *Engine) {
		e.options = src
	}
}

// WithRecordStore sets the record transport.
func WithRecordStore(store RecordStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithVariantLoader sets how variant schemas are loaded.
func WithVariantLoader(loader VariantLoader) Option {
	return func(e *Engine) {
		e.variantLoader = loader
	}
}

// WithDispatcher sets the completion dispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		if d != nil {
			e.dispatcher = d
		}
	}
}

// WithPool sets the background pool.
func WithPool(p *Pool) Option {
	return func(e *Engine) {
		if p != nil {
			e.pool = p
		}
	}
}

// WithControls overrides the control factory registry.
func WithControls(reg *controls.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.factories = reg
		}
	}
}

// WithEvaluator overrides the visibility rule evaluator.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(e *Engine) {
		if eval != nil {
			e.evaluator = eval
		}
	}
}

// WithComposer sets the record flatten/unflatten strategy.
func WithComposer(c compose.Composer) Option {
	return func(e *Engine) {
		if c != nil {
			e.composer = c
		}
	}
}

// WithIdentity supplies the signed-in user.
func WithIdentity(id Identity) Option {
	return func(e *Engine) {
		e.identity = id
	}
}

// WithInvalidator sets the catalog cache invalidator used after mutations.
func WithInvalidator(inv Invalidator) Option {
	return func(e *Engine) {
		e.invalidator = inv
	}
}

// WithObserver registers an observer.
func WithObserver(obs Observer) Option {
	return func(e *Engine) {
		if obs != nil {
			e.observers = append(e.observers, obs)
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecordID opens the engine in edit mode for the given record.
func WithRecordID(id string) Option {
	return func(e *Engine) {
		e.recordID = id
	}
}

// WithCompensation enables rollback of completed submission steps.
func WithCompensation(enabled bool) Option {
	return func(e *Engine) {
		e.compensate = enabled
	}
}

// WithRecorder reports submission step outcomes.
func WithRecorder(rec submit.Recorder) Option {
	return func(e *Engine) {
		e.recorder = rec
	}
}
