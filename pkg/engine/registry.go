package engine

import (
	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// block is the visibility container of one field: its label, description
// and control, or a whole group.
type block struct {
	key     string
	parent  *block
	section int
	shown   bool
}

type binding struct {
	control    controls.Control
	generation uint64
}

// visibilityEdge shows or hides target when the source value changes.
type visibilityEdge struct {
	target string
	rule   schema.Rule
}

// Registry binds field keys to live controls and tracks the dependency and
// visibility edges between them. It is owned by one Engine and is not safe
// for concurrent use.
type Registry struct {
	bindings   map[string]binding
	order      []string
	blocks     map[string]*block
	dependents map[string][]string
	configs    map[string]schema.Field
	visibility map[string][]visibilityEdge
	generation uint64
}

func newRegistry() *Registry {
	return &Registry{
		bindings:   make(map[string]binding),
		blocks:     make(map[string]*block),
		dependents: make(map[string][]string),
		configs:    make(map[string]schema.Field),
		visibility: make(map[string][]visibilityEdge),
	}
}

// Lookup returns the control bound to key. Pruned keys are not found.
func (r *Registry) Lookup(key string) (controls.Control, bool) {
	b, ok := r.bindings[key]
	if !ok {
		return nil, false
	}
	return b.control, true
}

// Keys returns the bound leaf keys in build order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Len reports the number of bound controls.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// Dependents returns the keys reloaded when trigger changes.
func (r *Registry) Dependents(trigger string) []string {
	return append([]string(nil), r.dependents[trigger]...)
}

// VisibilityTargets returns the block keys gated by source.
func (r *Registry) VisibilityTargets(source string) []string {
	edges := r.visibility[source]
	out := make([]string, 0, len(edges))
	for _, edge := range edges {
		out = append(out, edge.target)
	}
	return out
}

// Generation returns the generation a key was bound at, 0 when unbound.
func (r *Registry) Generation(key string) uint64 {
	return r.bindings[key].generation
}

func (r *Registry) bind(c controls.Control) uint64 {
	r.generation++
	r.bindings[c.Key()] = binding{control: c, generation: r.generation}
	r.order = append(r.order, c.Key())
	return r.generation
}

func (r *Registry) addBlock(b *block) {
	r.blocks[b.key] = b
}

func (r *Registry) addDependents(trigger string, keys []string) {
	for _, key := range keys {
		if !contains(r.dependents[trigger], key) {
			r.dependents[trigger] = append(r.dependents[trigger], key)
		}
	}
}

func (r *Registry) addConfig(field schema.Field) {
	r.configs[field.Key] = field
}

func (r *Registry) config(key string) (schema.Field, bool) {
	f, ok := r.configs[key]
	return f, ok
}

func (r *Registry) addVisibility(target string, rule schema.Rule) {
	r.visibility[rule.Field] = append(r.visibility[rule.Field], visibilityEdge{target: target, rule: rule})
}

// current reports whether key is still bound at generation gen.
func (r *Registry) current(key string, gen uint64) bool {
	b, ok := r.bindings[key]
	return ok && b.generation == gen
}

// remove purges keys from every map, both as source and as target. It
// returns the edges of removed sources whose targets are still bound.
func (r *Registry) remove(keys ...string) []visibilityEdge {
	if len(keys) == 0 {
		return nil
	}
	gone := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		gone[key] = struct{}{}
	}
	var orphaned []visibilityEdge
	for _, key := range keys {
		for _, edge := range r.visibility[key] {
			if _, ok := gone[edge.target]; !ok {
				orphaned = append(orphaned, edge)
			}
		}
		delete(r.bindings, key)
		delete(r.blocks, key)
		delete(r.dependents, key)
		delete(r.configs, key)
		delete(r.visibility, key)
	}

	order := r.order[:0]
	for _, key := range r.order {
		if _, ok := gone[key]; !ok {
			order = append(order, key)
		}
	}
	r.order = order

	for trigger, deps := range r.dependents {
		kept := deps[:0]
		for _, dep := range deps {
			if _, ok := gone[dep]; !ok {
				kept = append(kept, dep)
			}
		}
		if len(kept) == 0 {
			delete(r.dependents, trigger)
			continue
		}
		r.dependents[trigger] = kept
	}

	for source, edges := range r.visibility {
		kept := edges[:0]
		for _, edge := range edges {
			if _, ok := gone[edge.target]; !ok {
				kept = append(kept, edge)
			}
		}
		if len(kept) == 0 {
			delete(r.visibility, source)
			continue
		}
		r.visibility[source] = kept
	}
	return orphaned
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
