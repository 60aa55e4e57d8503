package collect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonathan/dumpstat/internal/records"
)

func sampleStats() []bson.D {
	return []bson.D{
		{{Key: "db", Value: "app"}, {Key: "fsTotalSize", Value: int64(107374182400)}, {Key: "indexSize", Value: int64(4096)}},
		{{Key: "ns", Value: "app.users"}, {Key: "count", Value: int32(3)}},
	}
}

func TestRender_CanonicalExtendedJSON(t *testing.T) {
	out, err := Render(sampleStats())
	require.NoError(t, err)

	assert.Equal(t,
		`[{"db":"app","fsTotalSize":{"$numberLong":"107374182400"},"indexSize":{"$numberLong":"4096"}},`+
			`{"ns":"app.users","count":{"$numberInt":"3"}}]`+"\n",
		string(out))
}

func TestRender_Empty(t *testing.T) {
	out, err := Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(out))
}

func TestWriteFile_FeedsParseStep(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cluster-a.txt")
	require.NoError(t, WriteFile(path, sampleStats()))

	coll, stats, err := records.ParseDir(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t,
		`{"db":"app","fsTotalSize":{"$numberLong":"107374182400"},"indexSize":{"$numberLong":"4096"},"filename":"cluster-a"}`,
		coll[0].String())
}

func TestWriteFile_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stats.txt")
	require.NoError(t, WriteFile(path, sampleStats()))
	require.NoError(t, WriteFile(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
