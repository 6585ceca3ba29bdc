package schema

import "errors"

var (
	// ErrInvalidSchema wraps every parse or validation failure. Callers treat
	// it as fatal at dialog construction.
	ErrInvalidSchema = errors.New("schema: invalid document")
	// ErrDuplicateKey reports a field key declared more than once.
	ErrDuplicateKey = errors.New("schema: duplicate field key")
)
