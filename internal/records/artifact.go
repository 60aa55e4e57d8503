package records

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteArtifact writes coll to path as a JSON array with four-space
// indentation. Any previous file at path is removed first; removed reports
// whether there was one. The new content goes to a temporary file in the same
// directory and is renamed into place.
func WriteArtifact(path string, coll Collection) (removed bool, err error) {
	if coll == nil {
		coll = Collection{}
	}

	data, err := json.MarshalIndent(coll, "", "    ")
	if err != nil {
		return false, &ArtifactError{Path: path, Message: "failed to marshal records", Cause: err}
	}

	if err := os.Remove(path); err == nil {
		removed = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, &ArtifactError{Path: path, Message: "failed to remove existing artifact", Cause: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return removed, &ArtifactError{Path: path, Message: "failed to create output directory", Cause: err}
	}

	tmp, err := os.CreateTemp(dir, ".records-*.json")
	if err != nil {
		return removed, &ArtifactError{Path: path, Message: "failed to create temp file", Cause: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return removed, &ArtifactError{Path: path, Message: "failed to write artifact", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return removed, &ArtifactError{Path: path, Message: "failed to close artifact", Cause: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return removed, &ArtifactError{Path: path, Message: "failed to set artifact permissions", Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return removed, &ArtifactError{Path: path, Message: "failed to move artifact into place", Cause: err}
	}

	return removed, nil
}
