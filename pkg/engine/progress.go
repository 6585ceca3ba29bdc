package engine

import "fmt"

// SectionProgress counts the visible required fields of one section.
type SectionProgress struct {
	Title   string
	Filled  int
	Total   int
	Percent int
}

// Label renders the per-step counter.
func (p SectionProgress) Label() string {
	return fmt.Sprintf("%d/%d requeridos", p.Filled, p.Total)
}

// Report aggregates progress over every live section.
type Report struct {
	Sections []SectionProgress
	Filled   int
	Total    int
	Percent  int
}

// Label renders the global counter.
func (r Report) Label() string {
	return fmt.Sprintf("Progreso: %d%% (%d/%d campos requeridos)", r.Percent, r.Filled, r.Total)
}

// Progress computes completion over required fields visible relative to
// their page. Hidden required fields are not counted. It reads control
// state only and may be called at any time.
func (e *Engine) Progress() Report {
	var report Report
	for _, section := range e.form.sections {
		sp := SectionProgress{Title: section.Title}
		for _, key := range sectionKeys(section) {
			c, ok := e.registry.Lookup(key)
			if !ok || !c.Field().Required || !e.Visible(key) {
				continue
			}
			sp.Total++
			if !c.IsEmpty() {
				sp.Filled++
			}
		}
		sp.Percent = percent(sp.Filled, sp.Total)
		report.Filled += sp.Filled
		report.Total += sp.Total
		report.Sections = append(report.Sections, sp)
	}
	report.Percent = percent(report.Filled, report.Total)
	return report
}

func percent(filled, total int) int {
	if total == 0 {
		return 100
	}
	return filled * 100 / total
}
