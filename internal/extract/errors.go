package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrNotObject is the cause when a block decodes to something other than an object.
	ErrNotObject = errors.New("top-level value is not an object")
	// ErrInvalidJSON is the fallback cause when a block is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
)

// DecodeError is a per-block failure. File is filled in by callers that know
// where the block came from.
type DecodeError struct {
	File  string
	Block string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("failed to decode block from file %s: %v", e.File, e.Cause)
	}
	return fmt.Sprintf("failed to decode block: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
