package ingestion

import (
	"errors"
	"fmt"
)

// ErrUnknownEncoding means the content is neither UTF-8 nor plausible UTF-16.
var ErrUnknownEncoding = errors.New("content is neither UTF-8 nor UTF-16")

// ReadError represents an error reading or decoding a file.
type ReadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ReadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Message, e.Path)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}
