package submit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoPlan indicates the schema declares no primary call for the mode.
	ErrNoPlan = errors.New("submit: no primary call declared")
	// ErrMissingID indicates a step path needs {id} before one is known.
	ErrMissingID = errors.New("submit: record id not available")
	// ErrUnknownTransform indicates a mapping names an unsupported transform.
	ErrUnknownTransform = errors.New("submit: unknown transform")
)

// PartialError reports a plan that stopped after some steps had already been
// written to the backend.
type PartialError struct {
	Failed      string
	Completed   []string
	Compensated []string
	// CompensationErr is set when a rollback step itself failed.
	CompensationErr error
	Err             error
}

func (e *PartialError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "submit: step %q failed", e.Failed)
	if len(e.Completed) > 0 {
		fmt.Fprintf(&b, " after [%s]", strings.Join(e.Completed, ", "))
	}
	if len(e.Compensated) > 0 {
		fmt.Fprintf(&b, "; compensated [%s]", strings.Join(e.Compensated, ", "))
	}
	if e.CompensationErr != nil {
		fmt.Fprintf(&b, "; compensation failed: %v", e.CompensationErr)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// Partial reports whether any step reached the backend before the failure
// and was not rolled back.
func (e *PartialError) Partial() bool {
	return len(e.Completed) > len(e.Compensated)
}
