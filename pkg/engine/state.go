package engine

import "github.com/goliatone/go-formwizard/pkg/schema"

// FormState is the working, append/remove-able section list. It starts as a
// clone of the base document and never aliases it.
type FormState struct {
	sections []schema.Section
}

func newFormState(doc *schema.Document) *FormState {
	return &FormState{sections: schema.CloneSections(doc.Sections)}
}

// Len reports the number of live sections.
func (s *FormState) Len() int {
	return len(s.sections)
}

// Sections returns a copy of the live sections.
func (s *FormState) Sections() []schema.Section {
	return schema.CloneSections(s.sections)
}

func (s *FormState) section(idx int) (schema.Section, bool) {
	if idx < 0 || idx >= len(s.sections) {
		return schema.Section{}, false
	}
	return s.sections[idx], true
}

func (s *FormState) append(sections ...schema.Section) int {
	start := len(s.sections)
	s.sections = append(s.sections, schema.CloneSections(sections)...)
	return start
}

// pop removes and returns the last section.
func (s *FormState) pop() schema.Section {
	last := s.sections[len(s.sections)-1]
	s.sections = s.sections[:len(s.sections)-1]
	return last
}
