// Package store defines the document store the loader writes to and the size
// aggregation it runs. Backends live in subpackages.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonathan/dumpstat/internal/report"
)

// Field names the size aggregation reads.
const (
	FieldProject     = "db"
	FieldFSTotalSize = "fsTotalSize"
	FieldIndexSize   = "indexSize"
)

// Store is a document collection backend.
type Store interface {
	// ReplaceCollection drops the named collection if it exists and inserts
	// docs into a fresh one. It returns the number of inserted documents.
	ReplaceCollection(ctx context.Context, name string, docs []bson.D) (int, error)

	// AggregateSizes groups documents that have a "db" field by that field,
	// taking the max of fsTotalSize and the sum of indexSize, both scaled to
	// GiB and rounded to three decimals. Rows are ordered by project.
	AggregateSizes(ctx context.Context, name string) ([]report.Row, error)

	Close(ctx context.Context) error
}

// Kind identifies a backend.
type Kind string

const (
	KindMongo    Kind = "mongo"
	KindPostgres Kind = "postgres"
)

// KindOf picks the backend for a connection URL by its scheme.
func KindOf(rawURL string) (Kind, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &Error{Op: "parse url", Cause: err}
	}
	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return KindMongo, nil
	case "postgres", "postgresql":
		return KindPostgres, nil
	default:
		return "", &Error{Op: "parse url", Cause: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
}

// Error is a storage failure. These are fatal to a run and never retried.
type Error struct {
	Op    string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
