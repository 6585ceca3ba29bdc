package engine

import "fmt"

// Action is a footer button.
type Action string

const (
	ActionNext    Action = "next"
	ActionSave    Action = "save"
	ActionSend    Action = "send"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionClose   Action = "close"
)

// Navigator tracks the wizard steps and the current position.
type Navigator struct {
	steps   []string
	current int
}

// AddStep appends a step.
func (n *Navigator) AddStep(title string) {
	n.steps = append(n.steps, title)
}

// RemoveLast drops the last step, clamping the current index.
func (n *Navigator) RemoveLast() {
	if len(n.steps) == 0 {
		return
	}
	n.steps = n.steps[:len(n.steps)-1]
	if n.current >= len(n.steps) {
		n.current = len(n.steps) - 1
	}
	if n.current < 0 {
		n.current = 0
	}
}

// Len reports the number of steps.
func (n *Navigator) Len() int {
	return len(n.steps)
}

// Steps returns the step titles.
func (n *Navigator) Steps() []string {
	return append([]string(nil), n.steps...)
}

// Current returns the current step index.
func (n *Navigator) Current() int {
	return n.current
}

// IsLast reports whether the current step is the last one.
func (n *Navigator) IsLast() bool {
	return n.current == len(n.steps)-1
}

// Next advances one step; false on the last step.
func (n *Navigator) Next() bool {
	if n.current+1 >= len(n.steps) {
		return false
	}
	n.current++
	return true
}

// Prev goes back one step; false on the first step.
func (n *Navigator) Prev() bool {
	if n.current == 0 {
		return false
	}
	n.current--
	return true
}

// Goto jumps to step idx.
func (n *Navigator) Goto(idx int) error {
	if idx < 0 || idx >= len(n.steps) {
		return fmt.Errorf("engine: step %d out of range (0..%d)", idx, len(n.steps)-1)
	}
	n.current = idx
	return nil
}

// Footer returns the actions shown on step idx: Next on every step but the
// last, which shows final.
func (n *Navigator) Footer(idx int, final []Action) []Action {
	if idx < len(n.steps)-1 {
		return []Action{ActionNext}
	}
	return append([]Action(nil), final...)
}

// StepState is one navigation entry as shown to the user.
type StepState struct {
	Title string
	Label string
}

// NavState is the navigation snapshot pushed to observers.
type NavState struct {
	Steps   []StepState
	Current int
	Actions []Action
}

// FinalActions returns the actions of the last step for the current
// workflow state and role.
func (e *Engine) FinalActions() []Action {
	if e.doc.Workflow == nil {
		if e.locked {
			return []Action{ActionClose}
		}
		return []Action{ActionSave}
	}
	switch {
	case !e.editing() || e.state == "" || e.state == e.workflow.EditableState:
		return []Action{ActionSave, ActionSend}
	case e.state == e.workflow.ReviewState && e.identity != nil && e.identity.IsAdmin():
		return []Action{ActionApprove, ActionReject}
	case e.locked:
		return []Action{ActionClose}
	default:
		return []Action{ActionSave, ActionSend}
	}
}

// Footer returns the actions of the current step.
func (e *Engine) Footer() []Action {
	return e.nav.Footer(e.nav.Current(), e.FinalActions())
}

func (e *Engine) navState(report Report) NavState {
	ns := NavState{Current: e.nav.Current(), Actions: e.Footer()}
	for idx, title := range e.nav.Steps() {
		step := StepState{Title: title}
		if idx < len(report.Sections) {
			step.Label = report.Sections[idx].Label()
		}
		ns.Steps = append(ns.Steps, step)
	}
	return ns
}
