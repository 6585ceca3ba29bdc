package controls

import "errors"

var (
	// ErrNoMatch signals a select value that is not among the loaded options.
	ErrNoMatch = errors.New("controls: value does not match any option")
	// ErrInvalidValue signals a value of the wrong shape for the variant.
	ErrInvalidValue = errors.New("controls: invalid value")
	// ErrNoFactory is returned when no registered factory handles a field.
	ErrNoFactory = errors.New("controls: no factory for field")
)
