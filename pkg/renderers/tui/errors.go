package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrUnsettled is returned when a write completion was not delivered by
	// Settle, which happens when the engine runs on a non-draining dispatcher.
	ErrUnsettled = errors.New("tui: completion not delivered")
	// errCancelled marks an action the user backed out of at a confirmation.
	errCancelled = errors.New("tui: action cancelled")
)
