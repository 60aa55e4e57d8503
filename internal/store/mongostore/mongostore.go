// Package mongostore is the MongoDB backend of store.Store.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jonathan/dumpstat/internal/logging"
	"github.com/jonathan/dumpstat/internal/report"
	"github.com/jonathan/dumpstat/internal/store"
)

// Store writes to one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logging.Logger
}

var _ store.Store = (*Store)(nil)

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &store.Error{Op: "connect", Cause: err}
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &store.Error{Op: "connect", Cause: fmt.Errorf("ping: %w", err)}
	}
	return client, nil
}

// Open connects to uri and selects database.
func Open(ctx context.Context, uri, database string, log *logging.Logger) (*Store, error) {
	client, err := Connect(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &Store{client: client, db: client.Database(database), log: logging.Named(log, "mongostore")}, nil
}

// ReplaceCollection drops name if it exists, then inserts docs.
func (s *Store) ReplaceCollection(ctx context.Context, name string, docs []bson.D) (int, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return 0, &store.Error{Op: "list collections", Cause: err}
	}
	if len(names) > 0 {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return 0, &store.Error{Op: "drop collection", Cause: err}
		}
		s.log.Info().Str("collection", name).Msg("collection dropped")
	}

	if len(docs) == 0 {
		return 0, nil
	}

	items := make([]any, len(docs))
	for i, d := range docs {
		items[i] = d
	}
	res, err := s.db.Collection(name).InsertMany(ctx, items)
	if err != nil {
		return 0, &store.Error{Op: "insert", Cause: err}
	}
	return len(res.InsertedIDs), nil
}

// AggregateSizes runs SizePipeline on name.
func (s *Store) AggregateSizes(ctx context.Context, name string) ([]report.Row, error) {
	cursor, err := s.db.Collection(name).Aggregate(ctx, SizePipeline())
	if err != nil {
		return nil, &store.Error{Op: "aggregate", Cause: err}
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &store.Error{Op: "aggregate", Cause: err}
	}

	rows := make([]report.Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, rowFromDoc(d))
	}
	return rows, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// SizePipeline is the per-project size aggregation:
// match documents with a db field, group by it keeping the max fsTotalSize and
// the summed indexSize, scale both to GiB with three decimals, sort by project.
func SizePipeline() mongo.Pipeline {
	gib := func(field string) bson.D {
		return bson.D{{Key: "$round", Value: bson.A{
			bson.D{{Key: "$divide", Value: bson.A{"$" + field, report.GiB}}},
			3,
		}}}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: store.FieldProject, Value: bson.D{{Key: "$exists", Value: true}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + store.FieldProject},
			{Key: store.FieldFSTotalSize, Value: bson.D{{Key: "$max", Value: "$" + store.FieldFSTotalSize}}},
			{Key: store.FieldIndexSize, Value: bson.D{{Key: "$sum", Value: "$" + store.FieldIndexSize}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: report.ColumnProject, Value: "$_id"},
			{Key: report.ColumnFSTotalSize, Value: gib(store.FieldFSTotalSize)},
			{Key: report.ColumnIndexSize, Value: gib(store.FieldIndexSize)},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: report.ColumnProject, Value: 1}}}},
	}
}

func rowFromDoc(d bson.M) report.Row {
	row := report.Row{
		FSTotalSize: toFloat(d[report.ColumnFSTotalSize]),
		IndexSize:   toFloat(d[report.ColumnIndexSize]),
	}
	switch p := d[report.ColumnProject].(type) {
	case nil:
	case string:
		row.Project = p
	default:
		row.Project = fmt.Sprint(p)
	}
	return row
}

func toFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		return nil
	}
	return &f
}
