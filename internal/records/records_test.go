package records

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dumpstat/internal/extract"
)

func TestFileBase(t *testing.T) {
	tests := map[string]string{
		"a.txt":              "a",
		"/data/cluster.log":  "cluster",
		"dir/archive.tar.gz": "archive.tar",
		"noext":              "noext",
		".env":               ".env",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileBase(in), "FileBase(%q)", in)
	}
}

func TestDecorate(t *testing.T) {
	obj, err := extract.Decode(`{"x": 1}`)
	require.NoError(t, err)

	assert.Nil(t, Decorate(obj, "a"))
	assert.Equal(t, `{"x":1,"filename":"a"}`, obj.String())
}

func TestDecorate_CollisionLastWriteWins(t *testing.T) {
	obj, err := extract.Decode(`{"filename": "original", "x": 1}`)
	require.NoError(t, err)

	c := Decorate(obj, "a")
	require.NotNil(t, c)
	assert.Equal(t, "a", c.File)
	assert.Equal(t, `"original"`, c.Previous)

	v, _ := obj.Get(FilenameKey)
	assert.Equal(t, `"a"`, string(v))
	assert.Equal(t, []string{"filename", "x"}, obj.Keys())
}

func TestCollection_MarshalsAsArray(t *testing.T) {
	obj, err := extract.Decode(`{"b": 2, "a": 1}`)
	require.NoError(t, err)

	out, err := json.Marshal(Collection{obj})
	require.NoError(t, err)
	assert.Equal(t, `[{"b":2,"a":1}]`, string(out))
}
