package schema

// Walk visits every field in order, descending into groups. The parent chain
// holds the enclosing group fields, outermost first.
func Walk(fields []Field, fn func(field Field, parents []Field)) {
	walk(fields, nil, fn)
}

func walk(fields []Field, parents []Field, fn func(Field, []Field)) {
	for _, field := range fields {
		fn(field, parents)
		if field.IsGroup() {
			walk(field.Fields, append(append([]Field(nil), parents...), field), fn)
		}
	}
}

// Leaves returns the leaf fields of the given sections in schema order.
func Leaves(sections ...Section) []Field {
	var out []Field
	for _, section := range sections {
		Walk(section.Fields, func(field Field, _ []Field) {
			if !field.IsGroup() {
				out = append(out, field)
			}
		})
	}
	return out
}

// Keys returns the leaf keys of the given sections in schema order.
func Keys(sections ...Section) []string {
	leaves := Leaves(sections...)
	out := make([]string, 0, len(leaves))
	for _, field := range leaves {
		out = append(out, field.Key)
	}
	return out
}

// Find returns the leaf field with the given key.
func (d *Document) Find(key string) (Field, bool) {
	if d == nil {
		return Field{}, false
	}
	for _, field := range Leaves(d.Sections...) {
		if field.Key == key {
			return field, true
		}
	}
	return Field{}, false
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Sections = CloneSections(d.Sections)
	if d.Aliases != nil {
		out.Aliases = make(map[string]string, len(d.Aliases))
		for k, v := range d.Aliases {
			out.Aliases[k] = v
		}
	}
	if d.Expansion != nil {
		exp := *d.Expansion
		exp.Variants = make([]VariantRef, len(d.Expansion.Variants))
		for i, variant := range d.Expansion.Variants {
			variant.IDs = append([]string(nil), variant.IDs...)
			exp.Variants[i] = variant
		}
		out.Expansion = &exp
	}
	if d.Workflow != nil {
		wf := *d.Workflow
		wf.LockedStates = append([]string(nil), d.Workflow.LockedStates...)
		out.Workflow = &wf
	}
	if d.Submission != nil {
		sub := *d.Submission
		sub.Steps = append([]Call(nil), d.Submission.Steps...)
		sub.Invalidates = append([]string(nil), d.Submission.Invalidates...)
		out.Submission = &sub
	}
	out.Prefill = append([]PrefillRule(nil), d.Prefill...)
	return &out
}

// CloneSections deep copies sections and their fields.
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, section := range sections {
		section.Fields = cloneFields(section.Fields)
		out[i] = section
	}
	return out
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		field.Options = append([]Option(nil), field.Options...)
		field.TriggersReload = append([]string(nil), field.TriggersReload...)
		field.Rows = append([]string(nil), field.Rows...)
		if field.VisibleIf != nil {
			rule := *field.VisibleIf
			field.VisibleIf = &rule
		}
		field.Fields = cloneFields(field.Fields)
		out[i] = field
	}
	return out
}
