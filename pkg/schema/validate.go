package schema

import (
	"fmt"
	"sort"
	"strings"
)

var knownTypes = map[FieldType]struct{}{
	FieldTypeText:        {},
	FieldTypeTextArea:    {},
	FieldTypeCombo:       {},
	FieldTypeComboStatic: {},
	FieldTypeDate:        {},
	FieldTypeFile:        {},
	FieldTypeFileText:    {},
	FieldTypeRiskMatrix:  {},
	FieldTypeGroup:       {},
}

// Validate checks structural invariants: globally unique keys (groups
// included), known field types, and edges that point at existing fields.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidSchema)
	}
	if len(doc.Sections) == 0 {
		return fmt.Errorf("%w: %s declares no sections", ErrInvalidSchema, doc.source)
	}

	leaves := make(map[string]Field)
	groups := make(map[string]struct{})
	var problems []string

	for idx, section := range doc.Sections {
		if strings.TrimSpace(section.Title) == "" {
			problems = append(problems, fmt.Sprintf("section %d has no title", idx))
		}
		Walk(section.Fields, func(field Field, _ []Field) {
			key := strings.TrimSpace(field.Key)
			if _, ok := knownTypes[field.Type]; !ok {
				problems = append(problems, fmt.Sprintf("field %q has unknown type %q", key, field.Type))
			}
			if field.IsGroup() {
				if len(field.Fields) == 0 {
					problems = append(problems, fmt.Sprintf("group %q has no fields", key))
				}
				if key == "" {
					return
				}
				if _, dup := groups[key]; dup {
					problems = append(problems, fmt.Sprintf("duplicate key %q", key))
				}
				groups[key] = struct{}{}
				return
			}
			if key == "" {
				problems = append(problems, fmt.Sprintf("section %q has a field without key", section.Title))
				return
			}
			if _, dup := leaves[key]; dup {
				problems = append(problems, fmt.Sprintf("duplicate key %q", key))
				return
			}
			leaves[key] = field
		})
	}

	for key := range groups {
		if _, clash := leaves[key]; clash {
			problems = append(problems, fmt.Sprintf("duplicate key %q (group and field)", key))
		}
	}

	for key, field := range leaves {
		if field.VisibleIf != nil {
			if _, ok := leaves[field.VisibleIf.Field]; !ok {
				problems = append(problems, fmt.Sprintf("field %q visible_if references unknown field %q", key, field.VisibleIf.Field))
			}
		}
		for _, dependent := range field.TriggersReload {
			target, ok := leaves[dependent]
			if !ok {
				problems = append(problems, fmt.Sprintf("field %q triggers_reload unknown field %q", key, dependent))
				continue
			}
			if strings.TrimSpace(target.DependencyEndpointTemplate) == "" {
				problems = append(problems, fmt.Sprintf("field %q is reloaded by %q but has no dependency_endpoint_template", dependent, key))
			}
		}
		if field.Type == FieldTypeComboStatic && field.Source != "" {
			problems = append(problems, fmt.Sprintf("field %q is combo_static but declares a source", key))
		}
	}

	if exp := doc.Expansion; exp != nil {
		problems = append(problems, validateExpansion(exp, leaves, len(doc.Sections))...)
	}
	if sub := doc.Submission; sub != nil {
		problems = append(problems, validateSubmission(sub)...)
	}
	for _, rule := range doc.Prefill {
		if _, ok := leaves[rule.Trigger]; !ok {
			problems = append(problems, fmt.Sprintf("prefill trigger %q is not a field", rule.Trigger))
		}
		if strings.TrimSpace(rule.Endpoint) == "" {
			problems = append(problems, fmt.Sprintf("prefill for %q has no endpoint", rule.Trigger))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		joined := strings.Join(problems, "; ")
		if strings.Contains(joined, "duplicate key") {
			return fmt.Errorf("%w: %w: %s: %s", ErrInvalidSchema, ErrDuplicateKey, doc.source, joined)
		}
		return fmt.Errorf("%w: %s: %s", ErrInvalidSchema, doc.source, joined)
	}
	return nil
}

func validateExpansion(exp *Expansion, leaves map[string]Field, sections int) []string {
	var problems []string
	if _, ok := leaves[exp.Discriminator]; !ok {
		problems = append(problems, fmt.Sprintf("expansion discriminator %q is not a field", exp.Discriminator))
	}
	if exp.BaseSections <= 0 || exp.BaseSections > sections {
		problems = append(problems, fmt.Sprintf("expansion base_sections %d out of range (1..%d)", exp.BaseSections, sections))
	}
	seen := make(map[string]string)
	for _, variant := range exp.Variants {
		if strings.TrimSpace(variant.Name) == "" {
			problems = append(problems, "expansion variant without name")
		}
		if strings.TrimSpace(variant.Schema) == "" {
			problems = append(problems, fmt.Sprintf("expansion variant %q has no schema", variant.Name))
		}
		for _, id := range variant.IDs {
			if owner, dup := seen[id]; dup {
				problems = append(problems, fmt.Sprintf("expansion id %q mapped by %q and %q", id, owner, variant.Name))
				continue
			}
			seen[id] = variant.Name
		}
	}
	return problems
}

func validateSubmission(sub *Submission) []string {
	var problems []string
	check := func(call Call) {
		if strings.TrimSpace(call.Method) == "" || strings.TrimSpace(call.Path) == "" {
			problems = append(problems, fmt.Sprintf("submission call %q needs method and path", call.Name))
		}
	}
	if sub.Create != nil {
		check(*sub.Create)
	}
	if sub.Update != nil {
		check(*sub.Update)
	}
	for _, step := range sub.Steps {
		check(step)
	}
	return problems
}
