// Package collect gathers database and collection statistics from a MongoDB
// deployment and writes them as a canonical Extended JSON array, the export
// format the parse step reads.
package collect

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/dumpstat/internal/logging"
)

// DefaultConcurrency bounds how many databases are queried at once.
const DefaultConcurrency = 4

// Stats returns dbStats for every database followed by collStats for each of
// its collections (views excluded). Databases and collections are visited in
// name order; the result does not depend on query scheduling.
func Stats(ctx context.Context, client *mongo.Client, concurrency int, log *logging.Logger) ([]bson.D, error) {
	log = logging.Named(log, "collect")
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	names, err := client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	slices.Sort(names)

	perDB := make([][]bson.D, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, name := range names {
		g.Go(func() error {
			docs, err := databaseStats(gctx, client.Database(name))
			if err != nil {
				return fmt.Errorf("database %s: %w", name, err)
			}
			log.Debug().Str("database", name).Int("documents", len(docs)).Msg("collected stats")
			perDB[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []bson.D
	for _, docs := range perDB {
		out = append(out, docs...)
	}
	return out, nil
}

func databaseStats(ctx context.Context, db *mongo.Database) ([]bson.D, error) {
	var dbStats bson.D
	if err := db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&dbStats); err != nil {
		return nil, fmt.Errorf("dbStats: %w", err)
	}
	out := []bson.D{dbStats}

	specs, err := db.ListCollectionSpecifications(ctx, bson.D{{Key: "type", Value: "collection"}})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	slices.SortFunc(specs, func(a, b *mongo.CollectionSpecification) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})

	for _, spec := range specs {
		var collStats bson.D
		if err := db.RunCommand(ctx, bson.D{{Key: "collStats", Value: spec.Name}}).Decode(&collStats); err != nil {
			return nil, fmt.Errorf("collStats %s: %w", spec.Name, err)
		}
		out = append(out, collStats)
	}
	return out, nil
}

// Render encodes docs as a single-line canonical Extended JSON array.
func Render(docs []bson.D) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := bson.MarshalExtJSON(d, true, false)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

// WriteFile renders docs to path, replacing any existing file.
func WriteFile(path string, docs []bson.D) error {
	data, err := Render(docs)
	if err != nil {
		return fmt.Errorf("failed to render stats: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stats file %s: %w", path, err)
	}
	return nil
}
