// Package records turns a directory of export dumps into a collection of
// file-tagged JSON objects and writes it out as the load artifact.
package records

import (
	"path/filepath"
	"strings"

	"github.com/jonathan/dumpstat/internal/extract"
)

// FilenameKey is the field added to every record to name its source file.
const FilenameKey = "filename"

// Record is one decoded block tagged with its source file.
type Record = *extract.Object

// Collection is the ordered list of records for one run: files in name order,
// then blocks in the order they appear.
type Collection []Record

// Collision describes a block that already carried a FilenameKey field.
type Collision struct {
	File     string
	Previous string
}

// FileBase returns the file name of path without directory and last extension.
// Dot files keep their name.
func FileBase(path string) string {
	base := filepath.Base(path)
	if trimmed := strings.TrimSuffix(base, filepath.Ext(base)); trimmed != "" {
		return trimmed
	}
	return base
}

// Decorate sets FilenameKey on rec. If rec already had the key the new value
// wins and the collision is returned so callers can report it.
func Decorate(rec Record, base string) *Collision {
	prev, replaced := rec.SetString(FilenameKey, base)
	if !replaced {
		return nil
	}
	return &Collision{File: base, Previous: string(prev)}
}
