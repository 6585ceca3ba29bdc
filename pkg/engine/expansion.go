package engine

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/variants"
)

// switchVariant grafts or prunes variant sections for the discriminator's
// current id. Re-selecting an id of the current variant is a no-op.
func (e *Engine) switchVariant(discriminator controls.Control) {
	target, ok := e.variants.Resolve(triggerValue(discriminator))
	name := ""
	if ok {
		name = target.Name
	}
	if name == e.variant {
		return
	}

	e.expansionGen++
	gen := e.expansionGen
	if e.variant != "" {
		e.prune()
	}
	e.variant = name
	e.logger.Debug("engine: variant switch", "variant", name, "generation", gen)
	if !ok {
		return
	}
	e.graft(gen, target)
}

// prune removes every section past the base prefix, purging their keys from
// the registry and their steps from navigation, last first.
func (e *Engine) prune() {
	base := e.variants.BaseSections
	for e.form.Len() > base {
		section := e.form.pop()
		keys := sectionKeys(section)
		e.removeKeys(keys...)
		for _, key := range keys {
			delete(e.loads, key)
			delete(e.pending, key)
		}
		e.nav.RemoveLast()
	}
	e.variantDoc = nil
}

func (e *Engine) graft(gen uint64, target variants.Variant) {
	if e.variantLoader == nil {
		e.variant = ""
		e.fail(fmt.Errorf("engine: no variant loader for %q", target.Name))
		return
	}
	loader := e.variantLoader
	e.run(func(ctx context.Context) func() {
		doc, err := loader.LoadVariant(ctx, target.Schema)
		return func() {
			if gen != e.expansionGen {
				e.logger.Debug("engine: dropped graft", "variant", target.Name, "error", ErrStale)
				return
			}
			if err != nil {
				e.variant = ""
				e.fail(fmt.Errorf("engine: load variant %s: %w", target.Name, err))
				return
			}
			if err := e.applyGraft(target, doc); err != nil {
				e.variant = ""
				e.fail(err)
			}
			e.notify()
		}
	})
}

// applyGraft appends the variant sections past the base prefix.
func (e *Engine) applyGraft(target variants.Variant, doc *schema.Document) error {
	base := e.variants.BaseSections
	if doc == nil || len(doc.Sections) <= base {
		return fmt.Errorf("engine: variant %s adds no sections", target.Name)
	}
	extra := doc.Sections[base:]
	for _, section := range extra {
		for _, key := range sectionKeys(section) {
			if _, live := e.registry.blocks[key]; live {
				return fmt.Errorf("%w: %s in variant %s", ErrKeyCollision, key, target.Name)
			}
		}
	}

	var built []string
	for _, section := range extra {
		idx := e.form.append(section)
		if err := e.buildSection(idx, section); err != nil {
			e.form.pop()
			e.prune()
			return err
		}
		e.nav.AddStep(section.Title)
		built = append(built, sectionKeys(section)...)
	}
	e.variantDoc = doc
	e.logger.Info("engine: grafted variant", "variant", target.Name, "sections", len(extra))

	for _, field := range e.remoteCombos(built) {
		e.fetchOptions(field, field.Source, field.EffectiveCacheKey(), false)
	}
	for _, key := range built {
		e.applyPending(key)
	}
	return nil
}
