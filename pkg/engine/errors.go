package engine

import "errors"

var (
	// ErrNotFound indicates a key is not registered, or was pruned.
	ErrNotFound = errors.New("engine: field not found")
	// ErrLocked indicates the record is in an immutable workflow state.
	ErrLocked = errors.New("engine: record is locked")
	// ErrStale marks a completion whose originating control or switch no
	// longer exists. It never reaches callers.
	ErrStale = errors.New("engine: stale completion")
	// ErrNoStore indicates an operation needs a RecordStore.
	ErrNoStore = errors.New("engine: no record store configured")
	// ErrKeyCollision indicates a grafted variant reuses a key already live.
	ErrKeyCollision = errors.New("engine: variant key collides with a live field")
)
