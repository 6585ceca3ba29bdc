package engine

import (
	"github.com/goliatone/go-formwizard/pkg/controls"
)

// Visible reports whether key is shown relative to its page: its own block
// and every enclosing group block must be shown. Unknown keys are not
// visible.
func (e *Engine) Visible(key string) bool {
	blk, ok := e.registry.blocks[key]
	if !ok {
		return false
	}
	for ; blk != nil; blk = blk.parent {
		if !blk.shown {
			return false
		}
	}
	return true
}

// evaluateSource re-evaluates every block gated by source.
func (e *Engine) evaluateSource(source string) {
	edges := e.registry.visibility[source]
	if len(edges) == 0 {
		return
	}
	var live any
	if c, ok := e.registry.Lookup(source); ok {
		live = controls.Live(c)
	}
	for _, edge := range edges {
		blk, ok := e.registry.blocks[edge.target]
		if !ok {
			continue
		}
		shown := e.evaluator.Eval(edge.rule, live)
		if shown != blk.shown {
			e.logger.Debug("engine: visibility", "target", edge.target, "source", source, "shown", shown)
		}
		blk.shown = shown
	}
}

// removeKeys unbinds keys. Blocks gated by a removed source fall back to the
// state their rule gives an unset value.
func (e *Engine) removeKeys(keys ...string) {
	for _, edge := range e.registry.remove(keys...) {
		if blk, ok := e.registry.blocks[edge.target]; ok {
			blk.shown = e.evaluator.Eval(edge.rule, nil)
		}
	}
}

// evaluateFor evaluates the rules touching freshly built keys, as targets or
// as sources.
func (e *Engine) evaluateFor(keys []string) {
	sources := make(map[string]struct{})
	for _, key := range keys {
		if _, ok := e.registry.visibility[key]; ok {
			sources[key] = struct{}{}
		}
	}
	fresh := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		fresh[key] = struct{}{}
	}
	for source, edges := range e.registry.visibility {
		for _, edge := range edges {
			if _, ok := fresh[edge.target]; ok {
				sources[source] = struct{}{}
				break
			}
		}
	}
	for source := range sources {
		e.evaluateSource(source)
	}
}
