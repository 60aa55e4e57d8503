package records

import "fmt"

// ScanError is an input access failure: a missing directory or unreadable file.
type ScanError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ScanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Message, e.Path)
}

func (e *ScanError) Unwrap() error {
	return e.Cause
}

// ArtifactError is a failure reading or writing the JSON artifact.
type ArtifactError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ArtifactError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Message, e.Path)
}

func (e *ArtifactError) Unwrap() error {
	return e.Cause
}
