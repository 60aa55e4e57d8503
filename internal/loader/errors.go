package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedFormat means the artifact is neither an array nor an object.
	ErrUnexpectedFormat = errors.New("unexpected JSON format: expected an array or an object")
	// ErrNotDocument means an array element is not an object.
	ErrNotDocument = errors.New("value is not a document")
)

// LoadError represents an error during artifact I/O or decoding
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Message, e.Path)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
