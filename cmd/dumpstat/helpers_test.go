package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jonathan/dumpstat/internal/config"
	"github.com/jonathan/dumpstat/internal/logging"
	"github.com/jonathan/dumpstat/internal/report"
	"github.com/jonathan/dumpstat/internal/store"
)

var envVars = []string{
	"DATA_PATH", "JSON_FILE_PATH", "MONGO_URL", "MONGO_DATABASE_NAME",
	"MONGO_COLLECTION_NAME", "RESULT_FILE_PATH", "STATS_FILE_PATH",
	"LOG_LEVEL", "LOG_FORMAT",
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command in process with a clean environment and the
// given env file contents.
func execute(t *testing.T, env map[string]string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	var lines []string
	for k, v := range env {
		lines = append(lines, k+"="+v)
	}
	envPath := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--env-file", envPath}, args...))
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

type memStore struct {
	docs []bson.D
}

func (m *memStore) ReplaceCollection(_ context.Context, _ string, docs []bson.D) (int, error) {
	m.docs = docs
	return len(docs), nil
}

func (m *memStore) AggregateSizes(context.Context, string) ([]report.Row, error) {
	var rows []report.Row
	for _, d := range m.docs {
		if p, ok := d.Map()["db"].(string); ok {
			rows = append(rows, report.Row{Project: p})
		}
	}
	return rows, nil
}

func (m *memStore) Close(context.Context) error { return nil }

func useStore(t *testing.T, s store.Store) {
	t.Helper()
	prev := openStore
	openStore = func(context.Context, config.StoreConfig, *logging.Logger) (store.Store, error) {
		return s, nil
	}
	t.Cleanup(func() { openStore = prev })
}
