package engine

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// LoadState is the option-load state of one combo.
type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Loaded
	LoadError
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadError:
		return "error"
	default:
		return "unloaded"
	}
}

type loadTracker struct {
	state    LoadState
	token    uint64
	endpoint string
	err      error
}

// DependencyState reports the option-load state of a combo.
func (e *Engine) DependencyState(key string) LoadState {
	if t, ok := e.loads[key]; ok {
		return t.state
	}
	return Unloaded
}

// LastEndpoint returns the endpoint of the most recent option load for key.
func (e *Engine) LastEndpoint(key string) string {
	if t, ok := e.loads[key]; ok {
		return t.endpoint
	}
	return ""
}

// reloadDependents clears every dependent of trigger and fetches its options
// for the trigger's current identifier.
func (e *Engine) reloadDependents(trigger controls.Control) {
	value := triggerValue(trigger)
	for _, key := range e.registry.Dependents(trigger.Key()) {
		cfg, ok := e.registry.config(key)
		if !ok {
			continue
		}
		dependent, ok := e.registry.Lookup(key)
		if !ok {
			continue
		}
		endpoint := expandTemplate(cfg.DependencyEndpointTemplate, value)
		// Cleared before dispatch so stale options are never shown.
		setOptions(dependent, nil)
		e.fetchOptions(cfg, endpoint, "", false)
	}
}

// expandTemplate substitutes the trigger value, path-escaped before the
// query string and query-escaped inside it.
func expandTemplate(template, value string) string {
	path, query, hasQuery := strings.Cut(template, "?")
	out := strings.ReplaceAll(path, schema.ValuePlaceholder, url.PathEscape(value))
	if hasQuery {
		out += "?" + strings.ReplaceAll(query, schema.ValuePlaceholder, url.QueryEscape(value))
	}
	return out
}

// fetchOptions loads options for field on the pool. initial marks loads
// counted by the pending counter.
func (e *Engine) fetchOptions(field schema.Field, endpoint, cacheKey string, initial bool) {
	key := field.Key
	tracker, ok := e.loads[key]
	if !ok {
		tracker = &loadTracker{}
		e.loads[key] = tracker
	}
	tracker.token++
	tracker.state = Loading
	tracker.endpoint = endpoint
	tracker.err = nil
	token := tracker.token
	gen := e.registry.Generation(key)

	if e.options == nil {
		e.logger.Warn("engine: no option source", "field", key)
		tracker.state = LoadError
		tracker.err = ErrNoStore
		if initial {
			e.loadDone()
		}
		return
	}

	e.logger.Debug("engine: load options", "field", key, "endpoint", endpoint)
	src := e.options
	e.run(func(ctx context.Context) func() {
		opts, err := src.Options(ctx, endpoint, cacheKey)
		return func() {
			if initial {
				defer e.loadDone()
			}
			if !e.registry.current(key, gen) || e.loads[key] != tracker || tracker.token != token {
				e.logger.Debug("engine: dropped option load", "field", key, "endpoint", endpoint, "error", ErrStale)
				return
			}
			if err != nil {
				tracker.state = LoadError
				tracker.err = err
				e.logger.Warn("engine: option load failed", "field", key, "endpoint", endpoint, "error", err)
				e.notify()
				return
			}
			c, _ := e.registry.Lookup(key)
			setOptions(c, opts)
			tracker.state = Loaded
			e.applyPending(key)
			e.notify()
		}
	})
}
