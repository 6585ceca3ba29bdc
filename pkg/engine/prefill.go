package engine

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/controls"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// runPrefill fetches the record referenced by every prefill rule triggered
// by c and copies the mapped values into their controls.
func (e *Engine) runPrefill(c controls.Control) {
	for _, rule := range e.prefillRules() {
		if rule.Trigger != c.Key() {
			continue
		}
		e.prefill[rule.Trigger]++
		token := e.prefill[rule.Trigger]

		ref := triggerValue(c)
		if ref == "" || e.store == nil {
			continue
		}
		path := strings.ReplaceAll(rule.Endpoint, schema.ValuePlaceholder, ref)
		if !strings.Contains(rule.Endpoint, schema.ValuePlaceholder) {
			path = strings.TrimRight(rule.Endpoint, "/") + "/" + ref
		}

		store, current := e.store, rule
		e.run(func(ctx context.Context) func() {
			var record map[string]any
			err := store.Do(ctx, http.MethodGet, path, nil, &record)
			return func() {
				if e.prefill[current.Trigger] != token {
					e.logger.Debug("engine: dropped prefill", "trigger", current.Trigger, "error", ErrStale)
					return
				}
				if err != nil {
					e.logger.Warn("engine: prefill failed", "trigger", current.Trigger, "path", path, "error", err)
					return
				}
				e.applyPrefill(current, record)
			}
		})
	}
}

func (e *Engine) applyPrefill(rule schema.PrefillRule, record map[string]any) {
	for formKey, remoteKey := range rule.Fields {
		c, ok := e.registry.Lookup(formKey)
		if !ok {
			continue
		}
		if err := c.SetValue(record[remoteKey]); err != nil {
			e.logger.Warn("engine: prefill value rejected", "field", formKey, "error", err)
			continue
		}
		if rule.Lock {
			c.SetEnabled(false)
		}
	}
	e.notify()
}

func (e *Engine) prefillRules() []schema.PrefillRule {
	if e.variantDoc != nil && len(e.variantDoc.Prefill) > 0 {
		return append(append([]schema.PrefillRule(nil), e.doc.Prefill...), e.variantDoc.Prefill...)
	}
	return e.doc.Prefill
}
