// Package pgstore is the PostgreSQL backend of store.Store. Each collection is
// a table of JSONB documents inside a schema named after the database.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonathan/dumpstat/internal/logging"
	"github.com/jonathan/dumpstat/internal/report"
	"github.com/jonathan/dumpstat/internal/store"
)

// Store wraps a PostgreSQL connection pool
type Store struct {
	pool   *pgxpool.Pool
	schema string
	log    *logging.Logger
}

var _ store.Store = (*Store)(nil)

// Open establishes a connection pool to the database
func Open(ctx context.Context, databaseURL, schema string, log *logging.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &store.Error{Op: "connect", Cause: err}
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &store.Error{Op: "connect", Cause: fmt.Errorf("ping: %w", err)}
	}

	return &Store{pool: pool, schema: schema, log: logging.Named(log, "pgstore")}, nil
}

// Close closes the connection pool
func (s *Store) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) table(name string) pgx.Identifier {
	return pgx.Identifier{s.schema, name}
}

// ReplaceCollection recreates the collection table and copies docs into it in
// one transaction.
func (s *Store) ReplaceCollection(ctx context.Context, name string, docs []bson.D) (int, error) {
	rows, err := DocumentRows(docs)
	if err != nil {
		return 0, &store.Error{Op: "encode documents", Cause: err}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, &store.Error{Op: "begin", Cause: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range replaceStatements(s.schema, s.table(name)) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return 0, &store.Error{Op: "recreate collection", Cause: err}
		}
	}
	s.log.Info().Str("collection", name).Msg("collection recreated")

	n, err := tx.CopyFrom(ctx, s.table(name), []string{"doc"}, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, &store.Error{Op: "insert", Cause: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &store.Error{Op: "commit", Cause: err}
	}
	return int(n), nil
}

// AggregateSizes runs the size aggregation in SQL. Only JSON numbers count
// toward max and sum; other values are skipped. This agrees with MongoDB's
// $sum but not with $max, which compares across BSON types (a string outranks
// any number). Groups are keyed by the text form of db (doc->>'db'), so 1 and
// "1" fall into one group where $group would keep them apart.
func (s *Store) AggregateSizes(ctx context.Context, name string) ([]report.Row, error) {
	rows, err := s.pool.Query(ctx, aggregateSQL(s.table(name)))
	if err != nil {
		return nil, &store.Error{Op: "aggregate", Cause: err}
	}
	defer rows.Close()

	var out []report.Row
	for rows.Next() {
		var (
			project   *string
			fsTotal   *float64
			indexSize float64
		)
		if err := rows.Scan(&project, &fsTotal, &indexSize); err != nil {
			return nil, &store.Error{Op: "aggregate", Cause: err}
		}
		row := report.Row{
			FSTotalSize: report.ScaleGiBPtr(fsTotal),
			IndexSize:   report.ScaleGiBPtr(&indexSize),
		}
		if project != nil {
			row.Project = *project
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.Error{Op: "aggregate", Cause: err}
	}
	return out, nil
}

// DocumentRows renders docs as relaxed Extended JSON, one CopyFrom row each.
func DocumentRows(docs []bson.D) ([][]any, error) {
	rows := make([][]any, 0, len(docs))
	for i, d := range docs {
		b, err := bson.MarshalExtJSON(d, false, false)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		rows = append(rows, []any{b})
	}
	return rows, nil
}

func replaceStatements(schema string, table pgx.Identifier) []string {
	return []string{
		"CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize(),
		"DROP TABLE IF EXISTS " + table.Sanitize(),
		"CREATE TABLE " + table.Sanitize() + " (id bigserial PRIMARY KEY, doc jsonb NOT NULL)",
	}
}

func aggregateSQL(table pgx.Identifier) string {
	numeric := func(field string) string {
		return fmt.Sprintf("CASE WHEN jsonb_typeof(doc->'%[1]s') = 'number' THEN (doc->>'%[1]s')::float8 END", field)
	}
	return fmt.Sprintf(`SELECT doc->>'%[1]s' AS project,
       MAX(%[2]s) AS fs_total_size,
       COALESCE(SUM(%[3]s), 0) AS index_size
  FROM %[4]s
 WHERE doc ? '%[1]s'
 GROUP BY doc->>'%[1]s'
 ORDER BY project`,
		store.FieldProject,
		numeric(store.FieldFSTotalSize),
		numeric(store.FieldIndexSize),
		table.Sanitize(),
	)
}
