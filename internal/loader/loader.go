// Package loader reads the JSON artifact produced by the parse step into BSON
// documents ready for insertion.
//
// The artifact may be plain JSON or MongoDB Extended JSON: wrapped values such
// as {"$numberLong": "5"} become their BSON types instead of nested objects.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonathan/dumpstat/internal/ingestion"
)

// Artifact is a decoded artifact file.
type Artifact struct {
	Path     string
	Encoding ingestion.Encoding
	Text     string // decoded file content
	Docs     []bson.D
}

// ReadArtifact reads path as UTF-8, falling back to UTF-16, and parses it as
// relaxed Extended JSON. A top-level array yields one document per element; a
// top-level object yields a single document.
func ReadArtifact(path string) (*Artifact, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Message: "JSON file not found", Cause: err}
		}
		return nil, &LoadError{Path: path, Message: "failed to read JSON file", Cause: err}
	}

	text, enc, err := ingestion.DecodeText(content)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to decode JSON file", Cause: err}
	}

	docs, err := ParseDocuments(text)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to decode JSON/EJSON", Cause: err}
	}

	return &Artifact{Path: path, Encoding: enc, Text: text, Docs: docs}, nil
}

// ParseDocuments parses text as an array of Extended JSON documents or a
// single document.
func ParseDocuments(text string) ([]bson.D, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrUnexpectedFormat
	}

	switch trimmed[0] {
	case '{':
		doc, err := parseDocument([]byte(trimmed))
		if err != nil {
			return nil, err
		}
		return []bson.D{doc}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, err
		}
		docs := make([]bson.D, 0, len(items))
		for i, item := range items {
			doc, err := parseDocument(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			docs = append(docs, doc)
		}
		return docs, nil
	default:
		return nil, ErrUnexpectedFormat
	}
}

func parseDocument(data []byte) (bson.D, error) {
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		return nil, ErrNotDocument
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
