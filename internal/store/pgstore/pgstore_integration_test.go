//go:build integration

package pgstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonathan/dumpstat/internal/report"
)

// startPostgres runs a throwaway PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, port.Port())
}

func TestIntegration_ReplaceAndAggregate(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := Open(ctx, dsn, "stats", nil)
	require.NoError(t, err)
	defer func() { _ = s.Close(ctx) }()

	_, err = s.ReplaceCollection(ctx, "sizes", []bson.D{{{Key: "db", Value: "stale"}}})
	require.NoError(t, err)

	docs := []bson.D{
		{{Key: "db", Value: "alpha"}, {Key: "fsTotalSize", Value: int64(2 * report.GiB)}, {Key: "indexSize", Value: int64(report.GiB / 2)}},
		{{Key: "db", Value: "alpha"}, {Key: "fsTotalSize", Value: int64(report.GiB)}, {Key: "indexSize", Value: int64(report.GiB / 4)}},
		{{Key: "db", Value: "beta"}, {Key: "fsTotalSize", Value: 1.5 * report.GiB}, {Key: "indexSize", Value: "n/a"}},
		{{Key: "ns", Value: "alpha.users"}, {Key: "indexSize", Value: int32(100)}},
	}
	n, err := s.ReplaceCollection(ctx, "sizes", docs)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	rows, err := s.AggregateSizes(ctx, "sizes")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "alpha", rows[0].Project)
	assert.Equal(t, 2.0, *rows[0].FSTotalSize)
	assert.Equal(t, 0.75, *rows[0].IndexSize)
	assert.Equal(t, "beta", rows[1].Project)
	assert.Equal(t, 1.5, *rows[1].FSTotalSize)
	assert.Equal(t, 0.0, *rows[1].IndexSize)
}

func TestIntegration_EmptyCollection(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	s, err := Open(ctx, dsn, "stats", nil)
	require.NoError(t, err)
	defer func() { _ = s.Close(ctx) }()

	n, err := s.ReplaceCollection(ctx, "empty", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := s.AggregateSizes(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
