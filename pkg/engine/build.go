package engine

import (
	"fmt"

	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// buildSection binds one control per leaf of section idx, flattening groups
// into the global key space, and evaluates visibility once so default-hidden
// blocks start hidden.
func (e *Engine) buildSection(idx int, section schema.Section) error {
	var built []string
	var walkErr error
	parents := make(map[string]*block)

	schema.Walk(section.Fields, func(field schema.Field, chain []schema.Field) {
		if walkErr != nil {
			return
		}
		blk := &block{key: field.Key, section: idx, shown: true}
		if n := len(chain); n > 0 {
			blk.parent = parents[chain[n-1].Key]
		}
		if field.IsGroup() {
			parents[field.Key] = blk
		}
		e.registry.addBlock(blk)
		if field.VisibleIf != nil {
			e.registry.addVisibility(field.Key, *field.VisibleIf)
		}
		built = append(built, field.Key)
		if field.IsGroup() {
			return
		}

		c, err := e.factories.Build(field)
		if err != nil {
			walkErr = fmt.Errorf("engine: section %q: %w", section.Title, err)
			return
		}
		if len(field.Options) > 0 {
			setOptions(c, field.Options)
		}
		if e.locked {
			c.SetEnabled(false)
		}
		e.registry.bind(c)
		if len(field.TriggersReload) > 0 {
			e.registry.addDependents(field.Key, field.TriggersReload)
		}
		if field.DependencyEndpointTemplate != "" {
			e.registry.addConfig(field)
		}
		c.OnChange(e.handleChange)
	})
	if walkErr != nil {
		e.removeKeys(built...)
		return walkErr
	}
	e.evaluateFor(built)
	return nil
}

// sectionKeys returns every field key of a section, groups included.
func sectionKeys(section schema.Section) []string {
	var keys []string
	schema.Walk(section.Fields, func(field schema.Field, _ []schema.Field) {
		keys = append(keys, field.Key)
	})
	return keys
}

// remoteCombos selects the independent remote combos among keys.
func (e *Engine) remoteCombos(keys []string) []schema.Field {
	var out []schema.Field
	for _, key := range keys {
		c, ok := e.registry.Lookup(key)
		if !ok {
			continue
		}
		if field := c.Field(); field.IsRemoteCombo() {
			out = append(out, field)
		}
	}
	return out
}

func setOptions(c controls.Control, options []schema.Option) bool {
	switch v := c.(type) {
	case *controls.Select:
		v.SetOptions(options)
	case *controls.MultiSelect:
		v.SetOptions(options)
	default:
		return false
	}
	return true
}

func optionsOf(c controls.Control) []schema.Option {
	switch v := c.(type) {
	case *controls.Select:
		return v.Options()
	case *controls.MultiSelect:
		return v.Options()
	default:
		return nil
	}
}

// triggerValue is the identifier substituted into dependency templates.
func triggerValue(c controls.Control) string {
	switch v := c.(type) {
	case *controls.Select:
		return v.SelectedID()
	case *controls.MultiSelect:
		ids := v.IDs()
		if len(ids) == 0 {
			return ""
		}
		return ids[0]
	case nil:
		return ""
	default:
		return schema.NormalizeID(controls.Payload(c))
	}
}
