package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dumpstat/internal/config"
)

func TestCommands_MissingConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"parse", []string{"parse"}, []string{"DATA_PATH", "JSON_FILE_PATH"}},
		{"load", []string{"load"}, []string{"JSON_FILE_PATH", "MONGO_URL", "MONGO_DATABASE_NAME", "MONGO_COLLECTION_NAME", "RESULT_FILE_PATH"}},
		{"run", []string{"run"}, []string{"DATA_PATH", "RESULT_FILE_PATH"}},
		{"collect", []string{"collect"}, []string{"MONGO_URL", "STATS_FILE_PATH"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, nil, tt.args...)
			require.Error(t, err)
			var missing *config.MissingError
			require.ErrorAs(t, err, &missing)
			for _, v := range tt.want {
				assert.Contains(t, missing.Vars, v)
			}
		})
	}
}

func TestEnvFileMissing(t *testing.T) {
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "parse"})

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env file not found")
}
